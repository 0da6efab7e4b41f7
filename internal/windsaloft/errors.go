package windsaloft

import (
	"errors"
	"fmt"

	"github.com/couchcryptid/aloft-etl/internal/domain"
)

var (
	// ErrEmptyReport is matched by every EmptyReportError.
	ErrEmptyReport = errors.New("empty winds aloft report")

	// ErrSourceUnavailable is returned when the requested source has no
	// configured fetcher.
	ErrSourceUnavailable = errors.New("winds aloft source unavailable")
)

// EmptyReportError means the primary fetch parsed to no usable hours. Unlike
// a failed extension it is fatal to the request.
type EmptyReportError struct {
	Source    domain.Source
	Latitude  float64
	Longitude float64
}

func (e *EmptyReportError) Error() string {
	return fmt.Sprintf("%s: %s at %.4f,%.4f", ErrEmptyReport, e.Source, e.Latitude, e.Longitude)
}

func (e *EmptyReportError) Unwrap() error { return ErrEmptyReport }

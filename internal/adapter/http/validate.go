package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidationError describes one rejected query parameter.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

type windsAloftQuery struct {
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon    *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	Source string   `json:"source" default:"gridded" validate:"oneof=gridded sounding"`
}

// parseWindsAloftQuery reads lat, lon, and source from the query string,
// fills defaults, and validates ranges.
func parseWindsAloftQuery(r *http.Request) (windsAloftQuery, []ValidationError) {
	var (
		q    windsAloftQuery
		errs []ValidationError
	)
	for _, p := range []struct {
		name string
		dst  **float64
	}{{"lat", &q.Lat}, {"lon", &q.Lon}} {
		v, verr := parseFloatParam(r, p.name)
		if verr != nil {
			errs = append(errs, *verr)
			continue
		}
		*p.dst = v
	}
	if len(errs) > 0 {
		return q, errs
	}

	q.Source = r.URL.Query().Get("source")
	if err := defaults.Set(&q); err != nil {
		return q, []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}
	if err := validate.Struct(q); err != nil {
		return q, validationErrors(err)
	}
	return q, nil
}

func validationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := strings.ToLower(fe.Field())
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   field,
			Message: errorMessage(field, fe),
		})
	}
	return out
}

func errorMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/couchcryptid/aloft-etl/internal/alerts"
	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/forecast"
)

var validate = validator.New()

// Envelope is one raw feed message. Kind selects which payload field is set.
type Envelope struct {
	Kind      domain.FeedKind           `json:"kind" validate:"required,oneof=gridded sounding alerts"`
	Latitude  float64                   `json:"lat" validate:"gte=-90,lte=90"`
	Longitude float64                   `json:"lon" validate:"gte=-180,lte=180"`
	Gridded   *forecast.GriddedResponse `json:"gridded,omitempty" validate:"required_if=Kind gridded"`
	Soundings []forecast.SoundingRecord `json:"soundings,omitempty" validate:"required_if=Kind sounding"`
	Alerts    *alerts.Snapshot          `json:"alerts,omitempty" validate:"required_if=Kind alerts"`
	ReadState alerts.ReadState          `json:"read_state,omitempty"`
}

// DecodeEnvelope parses and validates a raw feed message.
func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if err := validate.Struct(env); err != nil {
		return Envelope{}, fmt.Errorf("invalid envelope: %w", err)
	}
	return env, nil
}

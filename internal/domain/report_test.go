package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aloft-etl/internal/domain"
)

var baseHour = time.Date(2025, 6, 14, 12, 0, 0, 0, time.UTC)

func altitude(m, temp, dew, dir float64) domain.WindsAloftAltitude {
	return domain.WindsAloftAltitude{
		AltitudeInM:      m,
		PressureHPa:      1000 - m/10,
		WindSpeedKph:     10,
		WindDirectionDeg: dir,
		TemperatureC:     temp,
		DewpointC:        dew,
	}
}

func TestParseSource(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Source
		wantErr bool
	}{
		{in: "gridded", want: domain.SourceGridded},
		{in: "sounding", want: domain.SourceSounding},
		{in: "GRIDDED", wantErr: true},
		{in: "", wantErr: true},
		{in: "radar", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseSource(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "unknown report source")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindsAloftReport_Bounds(t *testing.T) {
	var empty domain.WindsAloftReport
	assert.True(t, empty.Empty())
	assert.True(t, empty.FirstHour().IsZero())
	assert.True(t, empty.LastHour().IsZero())

	r := domain.WindsAloftReport{Hours: []domain.WindsAloftHour{
		{Timestamp: baseHour},
		{Timestamp: baseHour.Add(time.Hour)},
		{Timestamp: baseHour.Add(2 * time.Hour)},
	}}
	assert.False(t, r.Empty())
	assert.Equal(t, baseHour, r.FirstHour())
	assert.Equal(t, baseHour.Add(2*time.Hour), r.LastHour())
}

func TestWindsAloftReport_Validate(t *testing.T) {
	tests := []struct {
		name    string
		hours   []domain.WindsAloftHour
		wantErr string
	}{
		{
			name: "valid",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour, Altitudes: []domain.WindsAloftAltitude{altitude(300, 15, 8, 270), altitude(1500, 8, 1, 359.9)}},
				{Timestamp: baseHour.Add(time.Hour), Altitudes: []domain.WindsAloftAltitude{altitude(300, 16, 16, 0)}},
			},
		},
		{
			name: "hours out of order",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour.Add(time.Hour)},
				{Timestamp: baseHour},
			},
			wantErr: "not after the previous hour",
		},
		{
			name: "duplicate hour",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour},
				{Timestamp: baseHour},
			},
			wantErr: "not after the previous hour",
		},
		{
			name: "altitudes not ascending",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour, Altitudes: []domain.WindsAloftAltitude{altitude(1500, 8, 1, 270), altitude(1500, 7, 0, 270)}},
			},
			wantErr: "not above",
		},
		{
			name: "dewpoint above temperature",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour, Altitudes: []domain.WindsAloftAltitude{altitude(300, 10, 10.5, 270)}},
			},
			wantErr: "dewpoint",
		},
		{
			name: "direction 360",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour, Altitudes: []domain.WindsAloftAltitude{altitude(300, 15, 8, 360)}},
			},
			wantErr: "wind direction",
		},
		{
			name: "negative direction",
			hours: []domain.WindsAloftHour{
				{Timestamp: baseHour, Altitudes: []domain.WindsAloftAltitude{altitude(300, 15, 8, -1)}},
			},
			wantErr: "wind direction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := domain.WindsAloftReport{Hours: tt.hours}.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

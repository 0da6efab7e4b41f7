package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/aloft-etl/internal/domain"
	"github.com/couchcryptid/aloft-etl/internal/units"
)

func soundingLevel(hpa, height float64, temp, dew, dir, speed int) SoundingLevel {
	return SoundingLevel{
		PressureHPa:          hpa,
		HeightM:              height,
		TemperatureTenthsC:   temp,
		DewpointTenthsC:      dew,
		WindDirectionDeg:     dir,
		WindSpeedTenthsKnots: speed,
	}
}

func TestNormalizeSoundings(t *testing.T) {
	cin := -12.0
	records := []SoundingRecord{
		{
			Timestamp: testHour1,
			CAPE:      80,
			Levels: []SoundingLevel{
				soundingLevel(960, 412, 181, 95, 200, 60),
				soundingLevel(925, 735, 155, 80, 220, 150),
			},
		},
		{
			Timestamp: testHour0,
			CAPE:      50,
			CIN:       &cin,
			Levels: []SoundingLevel{
				soundingLevel(960, 412, 172, 91, 190, 50),
				soundingLevel(950, 500, 165, InvalidValue, 195, 70),
				soundingLevel(925, 735, 150, 78, 210, 120),
				soundingLevel(900, 735, 148, 70, 215, 130),
				soundingLevel(850, 1460, 110, 40, 360, 200),
			},
		},
	}

	report := NormalizeSoundings(records, 46.5, -117.1, testFetchedAt)
	require.NoError(t, report.Validate())

	assert.Equal(t, domain.SourceSounding, report.Source)
	assert.Equal(t, 46.5, report.Latitude)
	require.NotNil(t, report.ElevationInM)
	assert.Equal(t, 412.0, *report.ElevationInM)

	require.Len(t, report.Hours, 2)
	assert.Equal(t, testHour0, report.Hours[0].Timestamp)
	assert.Equal(t, testHour1, report.Hours[1].Timestamp)

	h0 := report.Hours[0]
	assert.Equal(t, 50.0, h0.CAPE)
	require.NotNil(t, h0.CIN)
	assert.Equal(t, -12.0, *h0.CIN)

	// The sentinel level and the repeated 735 m level are dropped.
	require.Len(t, h0.Altitudes, 3)
	assert.Equal(t, []float64{412, 735, 1460}, altitudesOf(h0))

	lowest := h0.Altitudes[0]
	assert.InDelta(t, 17.2, lowest.TemperatureC, 1e-9)
	assert.InDelta(t, 9.1, lowest.DewpointC, 1e-9)
	assert.InDelta(t, units.KnotsToKph(5), lowest.WindSpeedKph, 1e-9)
	assert.Equal(t, 190.0, lowest.WindDirectionDeg)
	assert.Equal(t, 960.0, lowest.PressureHPa)

	assert.Equal(t, 925.0, h0.Altitudes[1].PressureHPa)
	assert.Equal(t, 0.0, h0.Altitudes[2].WindDirectionDeg)
}

func TestNormalizeSoundings_DuplicateTimestampKeepsFirst(t *testing.T) {
	records := []SoundingRecord{
		{Timestamp: testHour0, CAPE: 1, Levels: []SoundingLevel{soundingLevel(960, 412, 170, 90, 180, 40)}},
		{Timestamp: testHour0, CAPE: 2, Levels: []SoundingLevel{soundingLevel(960, 412, 170, 90, 180, 40)}},
	}

	report := NormalizeSoundings(records, 0, 0, testFetchedAt)
	require.Len(t, report.Hours, 1)
	assert.Equal(t, 1.0, report.Hours[0].CAPE)
}

func TestNormalizeSoundings_Empty(t *testing.T) {
	tests := []struct {
		name    string
		records []SoundingRecord
	}{
		{"no records", nil},
		{"only invalid levels", []SoundingRecord{{
			Timestamp: testHour0,
			Levels:    []SoundingLevel{soundingLevel(InvalidValue, 412, 170, 90, 180, 40)},
		}}},
		{"no levels", []SoundingRecord{{Timestamp: testHour0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := NormalizeSoundings(tt.records, 46.5, -117.1, testFetchedAt)
			assert.True(t, report.Empty())
			assert.Nil(t, report.ElevationInM)
			assert.True(t, report.FirstHour().IsZero())
		})
	}
}

func TestSoundingHours_DoesNotReorderInput(t *testing.T) {
	records := []SoundingRecord{
		{Timestamp: testHour1, Levels: []SoundingLevel{soundingLevel(960, 412, 170, 90, 180, 40)}},
		{Timestamp: testHour0, Levels: []SoundingLevel{soundingLevel(960, 412, 170, 90, 180, 40)}},
	}

	hours := SoundingHours(records)
	require.Len(t, hours, 2)
	assert.Equal(t, testHour1, records[0].Timestamp)
	assert.True(t, hours[0].Timestamp.Before(hours[1].Timestamp))
	assert.Equal(t, time.UTC, hours[0].Timestamp.Location())
}

func TestSoundingHours_MissingDewpointDropsLevel(t *testing.T) {
	hours := SoundingHours([]SoundingRecord{{
		Timestamp: testHour0,
		Levels: []SoundingLevel{
			soundingLevel(960, 412, 172, 91, 190, 50),
			soundingLevel(925, 735, 150, InvalidValue, 210, 120),
		},
	}})

	require.Len(t, hours, 1)
	assert.Equal(t, []float64{412}, altitudesOf(hours[0]))
}

package interp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVector(t *testing.T) {
	t.Run("opposite directions cancel at midpoint", func(t *testing.T) {
		w := Vector(Sample{HeightM: 200, SpeedKph: 20, DirectionDeg: 0}, Sample{HeightM: 400, SpeedKph: 20, DirectionDeg: 180}, 300)

		assert.InDelta(t, 0, w.SpeedKph, 1e-9)
		// Residual sin(180°) leaves a vanishing component perpendicular to both.
		assert.InDelta(t, 90, w.DirectionDeg, 1e-6)
	})

	t.Run("collinear speeds interpolate linearly", func(t *testing.T) {
		w := Vector(Sample{HeightM: 200, SpeedKph: 20, DirectionDeg: 0}, Sample{HeightM: 400, SpeedKph: 40, DirectionDeg: 0}, 300)

		assert.InDelta(t, 30, w.SpeedKph, 1e-9)
		assert.InDelta(t, 0, w.DirectionDeg, 1e-9)
	})

	t.Run("collinear off-axis keeps direction", func(t *testing.T) {
		w := Vector(Sample{HeightM: 0, SpeedKph: 10, DirectionDeg: 270}, Sample{HeightM: 100, SpeedKph: 30, DirectionDeg: 270}, 25)

		assert.InDelta(t, 15, w.SpeedKph, 1e-9)
		assert.InDelta(t, 270, w.DirectionDeg, 1e-9)
	})

	t.Run("small angle yields slightly slower vector average", func(t *testing.T) {
		w := Vector(Sample{HeightM: 200, SpeedKph: 20, DirectionDeg: 80}, Sample{HeightM: 400, SpeedKph: 20, DirectionDeg: 100}, 300)

		assert.Less(t, w.SpeedKph, 20.0)
		assert.InDelta(t, 20*0.98480775, w.SpeedKph, 1e-6) // 20·cos(10°)
		assert.InDelta(t, 90, w.DirectionDeg, 1e-9)
	})

	t.Run("wraparound takes the short arc through north", func(t *testing.T) {
		w := Vector(Sample{HeightM: 0, SpeedKph: 20, DirectionDeg: 350}, Sample{HeightM: 100, SpeedKph: 20, DirectionDeg: 10}, 50)

		assert.InDelta(t, 20*0.98480775, w.SpeedKph, 1e-6)
		assert.True(t, w.DirectionDeg < 1e-6 || w.DirectionDeg > 360-1e-6, "direction %f should be north", w.DirectionDeg)
	})

	t.Run("wraparound is symmetric", func(t *testing.T) {
		a := Vector(Sample{HeightM: 0, SpeedKph: 20, DirectionDeg: 10}, Sample{HeightM: 100, SpeedKph: 20, DirectionDeg: 350}, 75)
		b := Vector(Sample{HeightM: 0, SpeedKph: 20, DirectionDeg: 350}, Sample{HeightM: 100, SpeedKph: 20, DirectionDeg: 10}, 25)

		assert.InDelta(t, a.SpeedKph, b.SpeedKph, 1e-9)
		assert.InDelta(t, a.DirectionDeg, b.DirectionDeg, 1e-6)
	})

	t.Run("direction stays in range", func(t *testing.T) {
		w := Vector(Sample{HeightM: 0, SpeedKph: 15, DirectionDeg: 300}, Sample{HeightM: 100, SpeedKph: 25, DirectionDeg: 320}, 50)

		assert.GreaterOrEqual(t, w.DirectionDeg, 0.0)
		assert.Less(t, w.DirectionDeg, 360.0)
		assert.InDelta(t, 311.9, w.DirectionDeg, 1)
	})
}

func TestShortestArc(t *testing.T) {
	tests := []struct {
		name       string
		a, b       float64
		wantA      float64
		wantB      float64
	}{
		{"no wrap", 90, 180, 90, 180},
		{"exactly opposite", 0, 180, 0, 180},
		{"a smaller wraps", 10, 350, 370, 350},
		{"b smaller wraps", 350, 10, 350, 370},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := shortestArc(tt.a, tt.b)
			assert.Equal(t, tt.wantA, a)
			assert.Equal(t, tt.wantB, b)
		})
	}
}

func TestNormalizeDegrees(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{-360, 0},
		{359.5, 359.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, NormalizeDegrees(tt.input), 1e-9, "input %v", tt.input)
	}
}

func TestLinear(t *testing.T) {
	points := []Point{{0, 0}, {5, 50}, {10, 100}}

	t.Run("target on upper endpoint has no value", func(t *testing.T) {
		_, ok := Linear(10, points...)
		assert.False(t, ok)
	})

	t.Run("target on lower endpoint has no value", func(t *testing.T) {
		_, ok := Linear(0, points...)
		assert.False(t, ok)
	})

	t.Run("bounded target interpolates", func(t *testing.T) {
		v, ok := Linear(2, points...)
		require.True(t, ok)
		assert.InDelta(t, 20, v, 1e-9)
	})

	t.Run("interior known point uses strict neighbours", func(t *testing.T) {
		v, ok := Linear(5, points...)
		require.True(t, ok)
		assert.InDelta(t, 50, v, 1e-9)
	})

	t.Run("order does not matter", func(t *testing.T) {
		desc := []Point{{10, 100}, {5, 50}, {0, 0}}
		v, ok := Linear(2, desc...)
		require.True(t, ok)
		assert.InDelta(t, 20, v, 1e-9)

		shuffled := []Point{{5, 50}, {10, 100}, {0, 0}}
		v, ok = Linear(7.5, shuffled...)
		require.True(t, ok)
		assert.InDelta(t, 75, v, 1e-9)
	})

	t.Run("outside range", func(t *testing.T) {
		_, ok := Linear(-1, points...)
		assert.False(t, ok)
		_, ok = Linear(11, points...)
		assert.False(t, ok)
	})

	t.Run("fewer than two points", func(t *testing.T) {
		_, ok := Linear(1)
		assert.False(t, ok)
		_, ok = Linear(1, Point{0, 0})
		assert.False(t, ok)
	})
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"PT1H", time.Hour, false},
		{"PT3H", 3 * time.Hour, false},
		{"P1D", 24 * time.Hour, false},
		{"P1DT6H", 30 * time.Hour, false},
		{"PT90M", 90 * time.Minute, false},
		{"PT1H30M15S", time.Hour + 30*time.Minute + 15*time.Second, false},
		{"P1W", 7 * 24 * time.Hour, false},
		{"", 0, true},
		{"P", 0, true},
		{"1H", 0, true},
		{"PT", 0, false},
		{"P1M", 0, true},
		{"P1Y", 0, true},
		{"PTH", 0, true},
		{"PT5", 0, true},
		{"P1TT1H", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDuration(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDuration)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, d)
		})
	}
}

func TestParseValidTime(t *testing.T) {
	w, err := ParseValidTime("2024-04-26T15:00:00+00:00/PT3H")
	require.NoError(t, err)

	start := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)
	assert.True(t, w.Start.Equal(start))
	assert.True(t, w.End.Equal(start.Add(3*time.Hour-time.Second)))

	_, err = ParseValidTime("2024-04-26T15:00:00+00:00")
	require.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ParseValidTime("yesterday/PT1H")
	require.Error(t, err)
}

func TestValueAt(t *testing.T) {
	v1, v2 := 10.0, 20.0
	values := []GridValue{
		{ValidTime: "2024-04-26T15:00:00+00:00/PT1H", Value: &v1},
		{ValidTime: "2024-04-26T16:00:00+00:00/PT2H", Value: &v2},
		{ValidTime: "2024-04-26T18:00:00+00:00/PT1H", Value: nil},
	}
	base := time.Date(2024, 4, 26, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		at     time.Time
		want   float64
		wantOK bool
	}{
		{"start of first window", base, 10, true},
		{"inside first window", base.Add(30 * time.Minute), 10, true},
		{"second before boundary is excluded", base.Add(time.Hour - time.Second), 0, false},
		{"start of second window", base.Add(time.Hour), 20, true},
		{"inside second window", base.Add(2*time.Hour + 59*time.Minute), 20, true},
		{"null value", base.Add(3*time.Hour + 10*time.Minute), 0, false},
		{"before series", base.Add(-time.Minute), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ValueAt(values, tt.at)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

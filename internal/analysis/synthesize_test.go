package analysis

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesizer_Synthesize(t *testing.T) {
	synth := NewSynthesizer(30, 0.15, rand.New(rand.NewSource(1)))

	tests := []struct {
		name         string
		label        string
		assumedSpeed float64
		wantErr      bool
	}{
		{
			name:         "first segment",
			label:        "0-25m",
			assumedSpeed: 6.5,
		},
		{
			name:         "second segment",
			label:        "25-50m",
			assumedSpeed: 8.5,
		},
		{
			name:         "third segment",
			label:        "50-75m",
			assumedSpeed: 8.3,
		},
		{
			name:         "fourth segment",
			label:        "75-100m",
			assumedSpeed: 7.9,
		},
		{
			name:    "unknown segment",
			label:   "100-125m",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series, err := synth.Synthesize(tt.label, tt.assumedSpeed)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownSegment)
				return
			}
			require.NoError(t, err)
			require.NotEmpty(t, series.Samples)

			// The series starts at the segment origin and ends exactly at
			// the segment length.
			assert.Equal(t, 0.0, series.Samples[0].Time)
			assert.Equal(t, 0.0, series.Samples[0].Position)
			assert.InDelta(t, SegmentLength, series.FinalPosition(), 1e-9)

			// Duration matches the assumed speed.
			assert.InDelta(t, SegmentLength/tt.assumedSpeed, series.Duration(), 1e-9)

			for i, sample := range series.Samples {
				assert.GreaterOrEqual(t, sample.Velocity, 0.0)
				if i > 0 {
					prev := series.Samples[i-1]
					assert.Greater(t, sample.Time, prev.Time)
					assert.GreaterOrEqual(t, sample.Position, prev.Position)
				}
			}
		})
	}
}

func TestSynthesizer_SampleSpacing(t *testing.T) {
	synth := NewSynthesizer(30, 0, rand.New(rand.NewSource(7)))

	series, err := synth.Synthesize("25-50m", 8.5)
	require.NoError(t, err)

	dt := series.Samples[1].Time - series.Samples[0].Time
	for i := 1; i < len(series.Samples); i++ {
		assert.InDelta(t, dt, series.Samples[i].Time-series.Samples[i-1].Time, 1e-9)
	}
}

func TestSynthesizer_VelocityNearAssumedSpeed(t *testing.T) {
	synth := NewSynthesizer(30, 0, rand.New(rand.NewSource(42)))

	series, err := synth.Synthesize("50-75m", 8.3)
	require.NoError(t, err)

	// Without jitter the cruise segments stay within a few percent of the
	// assumed speed.
	for _, sample := range series.Samples {
		assert.InDelta(t, 8.3, sample.Velocity, 8.3*0.05)
	}
}

func TestSynthesizer_Deterministic(t *testing.T) {
	a := NewSynthesizer(30, 0.15, rand.New(rand.NewSource(99)))
	b := NewSynthesizer(30, 0.15, rand.New(rand.NewSource(99)))

	seriesA, err := a.Synthesize("0-25m", 6.5)
	require.NoError(t, err)
	seriesB, err := b.Synthesize("0-25m", 6.5)
	require.NoError(t, err)

	assert.Equal(t, seriesA, seriesB)
}

func TestParseSegment(t *testing.T) {
	for _, segment := range Segments {
		parsed, err := ParseSegment(segment.String())
		require.NoError(t, err)
		assert.Equal(t, segment, parsed)
	}

	_, err := ParseSegment("garbage")
	assert.ErrorIs(t, err, ErrUnknownSegment)
}

func TestSegment_Offset(t *testing.T) {
	assert.Equal(t, 0.0, Segment0to25.Offset())
	assert.Equal(t, 25.0, Segment25to50.Offset())
	assert.Equal(t, 50.0, Segment50to75.Offset())
	assert.Equal(t, 75.0, Segment75to100.Offset())
}

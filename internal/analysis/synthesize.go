package analysis

import (
	"math"
	"math/rand"
	"time"
)

// Sample is a single synthesized measurement within a segment.
// Time is the offset in seconds from the start of the segment, Position is
// relative to the start of the segment in meters.
type Sample struct {
	Time     float64
	Position float64
	Velocity float64
}

// Series is the ordered sample sequence for one segment.
type Series struct {
	Segment Segment
	Samples []Sample
}

// Duration returns the time span covered by the series.
func (s Series) Duration() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].Time
}

// FinalPosition returns the position of the last sample, or 0 for an empty series.
func (s Series) FinalPosition() float64 {
	if len(s.Samples) == 0 {
		return 0
	}
	return s.Samples[len(s.Samples)-1].Position
}

// Synthesizer fabricates per-segment time series from an assumed average
// speed. It is an explicit synthetic stand-in for a vision pipeline: the
// uploaded video content is never consulted.
type Synthesizer struct {
	sampleRate float64
	jitter     float64
	rng        *rand.Rand
}

// NewSynthesizer creates a synthesizer generating sampleRate samples per
// second with gaussian velocity noise of stddev jitter. If rng is nil a
// time-seeded source is used.
func NewSynthesizer(sampleRate, jitter float64, rng *rand.Rand) *Synthesizer {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec
	}
	return &Synthesizer{
		sampleRate: sampleRate,
		jitter:     jitter,
		rng:        rng,
	}
}

// Synthesize produces an evenly spaced, time-ordered sample sequence for the
// given segment label, spanning SegmentLength/assumedSpeed seconds. Jitter is
// applied to velocity only; positions are normalized so the final position
// equals the segment length exactly.
func (s *Synthesizer) Synthesize(label string, assumedSpeed float64) (Series, error) {
	segment, err := ParseSegment(label)
	if err != nil {
		return Series{}, err
	}
	if assumedSpeed <= 0 {
		assumedSpeed = 1
	}

	duration := SegmentLength / assumedSpeed
	n := int(math.Round(duration*s.sampleRate)) + 1
	if n < 2 {
		n = 2
	}
	dt := duration / float64(n-1)

	samples := make([]Sample, n)
	pos := 0.0
	for i := range n {
		t := float64(i) * dt
		v := assumedSpeed * velocityShape(segment, t/duration)
		v += s.rng.NormFloat64() * s.jitter
		if v < 0 {
			v = 0
		}
		if i > 0 {
			pos += v * dt
		}
		samples[i] = Sample{Time: t, Position: pos, Velocity: v}
	}

	// Normalize positions so the series ends exactly at the segment length.
	if final := samples[n-1].Position; final > 0 {
		scale := SegmentLength / final
		for i := range samples {
			samples[i].Position *= scale
		}
	} else {
		samples[n-1].Position = SegmentLength
	}

	return Series{Segment: segment, Samples: samples}, nil
}

// velocityShape returns the velocity multiplier at normalized time u in
// [0,1], emulating the typical phases of a 100m sprint: acceleration off the
// blocks, peak velocity, sustained speed and a slight fade at the line.
func velocityShape(segment Segment, u float64) float64 {
	switch segment {
	case Segment0to25:
		return 0.35 + 0.75*(1-math.Exp(-3.5*u))
	case Segment25to50:
		return 1 + 0.04*math.Sin(2*math.Pi*u)
	case Segment50to75:
		return 1.02 - 0.04*u
	case Segment75to100:
		return 1.03 - 0.06*u
	default:
		return 1
	}
}

package analysis

import (
	"gonum.org/v1/gonum/stat"
)

// Summary holds the session-level aggregates derived from the per-segment
// series. Summary fields are derived, never hand-edited.
type Summary struct {
	TotalDistance float64
	MaxVelocity   float64
	AvgVelocity   float64
	TotalTime     float64
}

// SegmentSummary holds the aggregates for a single segment.
type SegmentSummary struct {
	Segment  Segment
	MaxSpeed float64
	AvgSpeed float64
	Duration float64
	Distance float64
}

// Aggregate combines the per-segment series into session-level summary
// statistics. It is a pure function; empty input yields a zero Summary.
func Aggregate(series []Series) Summary {
	var summary Summary
	var velocities []float64

	for _, s := range series {
		summary.TotalDistance += s.FinalPosition()
		summary.TotalTime += s.Duration()
		for _, sample := range s.Samples {
			velocities = append(velocities, sample.Velocity)
			if sample.Velocity > summary.MaxVelocity {
				summary.MaxVelocity = sample.Velocity
			}
		}
	}

	if len(velocities) > 0 {
		summary.AvgVelocity = stat.Mean(velocities, nil)
	}

	return summary
}

// SummarizeSegment computes the aggregates for a single series.
func SummarizeSegment(s Series) SegmentSummary {
	summary := SegmentSummary{
		Segment:  s.Segment,
		Duration: s.Duration(),
		Distance: s.FinalPosition(),
	}

	velocities := make([]float64, 0, len(s.Samples))
	for _, sample := range s.Samples {
		velocities = append(velocities, sample.Velocity)
		if sample.Velocity > summary.MaxSpeed {
			summary.MaxSpeed = sample.Velocity
		}
	}
	if len(velocities) > 0 {
		summary.AvgSpeed = stat.Mean(velocities, nil)
	}

	return summary
}

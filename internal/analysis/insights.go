package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Smooth applies a centered moving average with the given window size.
// Inputs shorter than the window are returned unchanged.
func Smooth(data []float64, window int) []float64 {
	if len(data) < window || window < 2 {
		return data
	}

	smoothed := make([]float64, len(data))
	half := window / 2
	for i := range data {
		start := max(0, i-half)
		end := min(len(data), i+half+1)
		smoothed[i] = stat.Mean(data[start:end], nil)
	}
	return smoothed
}

// DetectOutliers returns the indices of values whose z-score exceeds the
// threshold. Fewer than three values never contain outliers.
func DetectOutliers(data []float64, threshold float64) []int {
	if len(data) < 3 {
		return nil
	}

	mean := stat.Mean(data, nil)
	std := stat.PopStdDev(data, nil)
	if std == 0 {
		return nil
	}

	var outliers []int
	for i, v := range data {
		if math.Abs(v-mean)/std > threshold {
			outliers = append(outliers, i)
		}
	}
	return outliers
}

// Accelerations derives accelerations from velocity samples. The first
// element is always zero.
func Accelerations(samples []Sample) []float64 {
	if len(samples) == 0 {
		return nil
	}
	accs := make([]float64, len(samples))
	for i := 1; i < len(samples); i++ {
		dt := samples[i].Time - samples[i-1].Time
		if dt > 0 {
			accs[i] = (samples[i].Velocity - samples[i-1].Velocity) / dt
		}
	}
	return accs
}

// Comparison describes the change between two session summaries.
type Comparison struct {
	MaxVelocityChange float64
	AvgVelocityChange float64
	TimeChange        float64
	Improvements      []string
	Regressions       []string
}

// Compare returns the deltas between the current and a previous summary.
func Compare(current, previous Summary) Comparison {
	c := Comparison{
		MaxVelocityChange: current.MaxVelocity - previous.MaxVelocity,
		AvgVelocityChange: current.AvgVelocity - previous.AvgVelocity,
		TimeChange:        current.TotalTime - previous.TotalTime,
	}

	if c.MaxVelocityChange > 0.1 {
		c.Improvements = append(c.Improvements, fmt.Sprintf("max velocity improved by %.3f m/s", c.MaxVelocityChange))
	}
	if c.TimeChange < -0.1 {
		c.Improvements = append(c.Improvements, fmt.Sprintf("time improved by %.3f s", -c.TimeChange))
	}
	if c.MaxVelocityChange < -0.1 {
		c.Regressions = append(c.Regressions, fmt.Sprintf("max velocity decreased by %.3f m/s", -c.MaxVelocityChange))
	}
	if c.TimeChange > 0.1 {
		c.Regressions = append(c.Regressions, fmt.Sprintf("time increased by %.3f s", c.TimeChange))
	}

	return c
}

// Recommendation is a training hint derived from the session aggregates.
type Recommendation struct {
	Category string
	Issue    string
	Advice   string
}

// Recommendations derives training hints from a session summary and its
// per-segment breakdown.
func Recommendations(summary Summary, segments []SegmentSummary) []Recommendation {
	var recs []Recommendation

	if summary.MaxVelocity > 0 {
		endurance := summary.AvgVelocity / summary.MaxVelocity * 100
		if endurance < 80 {
			recs = append(recs, Recommendation{
				Category: "Speed Endurance",
				Issue:    "significant speed drop-off detected",
				Advice:   "focus on speed endurance training with repeated 60-80m sprints",
			})
		}
	}

	if len(segments) >= 2 {
		if segments[0].AvgSpeed < segments[1].AvgSpeed*0.8 {
			recs = append(recs, Recommendation{
				Category: "Acceleration",
				Issue:    "slow initial acceleration",
				Advice:   "include explosive starts and plyometric exercises",
			})
		}
	}

	if summary.MaxVelocity > 0 && summary.MaxVelocity < 8.0 {
		recs = append(recs, Recommendation{
			Category: "Maximum Velocity",
			Issue:    "low maximum velocity",
			Advice:   "work on technique and strength training",
		})
	}

	if len(segments) >= 4 {
		peak := 0.0
		for _, s := range segments {
			if s.AvgSpeed > peak {
				peak = s.AvgSpeed
			}
		}
		if peak > 0 && segments[3].AvgSpeed < peak*0.85 {
			recs = append(recs, Recommendation{
				Category: "Speed Maintenance",
				Issue:    "significant deceleration in final phase",
				Advice:   "improve lactate threshold with tempo runs",
			})
		}
	}

	return recs
}

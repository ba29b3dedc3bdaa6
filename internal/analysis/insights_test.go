package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmooth(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}

	smoothed := Smooth(data, 3)
	assert.Len(t, smoothed, len(data))
	assert.InDelta(t, 1.5, smoothed[0], 1e-9)
	assert.InDelta(t, 2.0, smoothed[1], 1e-9)
	assert.InDelta(t, 3.0, smoothed[2], 1e-9)

	// Too-short input and degenerate windows pass through unchanged.
	assert.Equal(t, data, Smooth(data, 6))
	assert.Equal(t, data, Smooth(data, 1))
}

func TestDetectOutliers(t *testing.T) {
	data := []float64{8.0, 8.1, 7.9, 8.2, 8.0, 8.1, 7.9, 8.0, 20.0}

	assert.Equal(t, []int{8}, DetectOutliers(data, 2))
	assert.Empty(t, DetectOutliers(data, 10))

	// Fewer than three values and constant input have no outliers.
	assert.Nil(t, DetectOutliers([]float64{1, 100}, 2))
	assert.Nil(t, DetectOutliers([]float64{5, 5, 5, 5}, 2))
}

func TestAccelerations(t *testing.T) {
	samples := []Sample{
		{Time: 0, Velocity: 0},
		{Time: 1, Velocity: 4},
		{Time: 2, Velocity: 6},
		{Time: 3, Velocity: 6},
	}

	accs := Accelerations(samples)
	assert.Equal(t, []float64{0, 4, 2, 0}, accs)

	assert.Nil(t, Accelerations(nil))
}

func TestCompare(t *testing.T) {
	current := Summary{MaxVelocity: 9.5, AvgVelocity: 8.2, TotalTime: 12.1}
	previous := Summary{MaxVelocity: 9.0, AvgVelocity: 8.0, TotalTime: 12.8}

	c := Compare(current, previous)
	assert.InDelta(t, 0.5, c.MaxVelocityChange, 1e-9)
	assert.InDelta(t, 0.2, c.AvgVelocityChange, 1e-9)
	assert.InDelta(t, -0.7, c.TimeChange, 1e-9)
	assert.Len(t, c.Improvements, 2)
	assert.Empty(t, c.Regressions)

	c = Compare(previous, current)
	assert.Len(t, c.Regressions, 2)
	assert.Empty(t, c.Improvements)
}

func TestRecommendations(t *testing.T) {
	tests := []struct {
		name           string
		summary        Summary
		segments       []SegmentSummary
		wantCategories []string
	}{
		{
			name:    "healthy session",
			summary: Summary{MaxVelocity: 9.5, AvgVelocity: 8.5},
			segments: []SegmentSummary{
				{Segment: Segment0to25, AvgSpeed: 7.5},
				{Segment: Segment25to50, AvgSpeed: 8.8},
				{Segment: Segment50to75, AvgSpeed: 8.7},
				{Segment: Segment75to100, AvgSpeed: 8.4},
			},
			wantCategories: nil,
		},
		{
			name:           "poor speed endurance",
			summary:        Summary{MaxVelocity: 10, AvgVelocity: 7},
			wantCategories: []string{"Speed Endurance"},
		},
		{
			name:           "low max velocity",
			summary:        Summary{MaxVelocity: 7.5, AvgVelocity: 7},
			wantCategories: []string{"Maximum Velocity"},
		},
		{
			name:    "slow start and final fade",
			summary: Summary{MaxVelocity: 9.5, AvgVelocity: 8.5},
			segments: []SegmentSummary{
				{Segment: Segment0to25, AvgSpeed: 6.0},
				{Segment: Segment25to50, AvgSpeed: 9.0},
				{Segment: Segment50to75, AvgSpeed: 8.8},
				{Segment: Segment75to100, AvgSpeed: 7.0},
			},
			wantCategories: []string{"Acceleration", "Speed Maintenance"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := Recommendations(tt.summary, tt.segments)
			categories := make([]string, 0, len(recs))
			for _, rec := range recs {
				categories = append(categories, rec.Category)
			}
			if tt.wantCategories == nil {
				assert.Empty(t, categories)
			} else {
				assert.Equal(t, tt.wantCategories, categories)
			}
		})
	}
}

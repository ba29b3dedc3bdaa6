package charts

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

func testSeries(t *testing.T) []analysis.Series {
	t.Helper()

	synth := analysis.NewSynthesizer(30, 0.15, rand.New(rand.NewSource(11)))
	speeds := []float64{6.5, 8.5, 8.3, 7.9}

	series := make([]analysis.Series, 0, len(analysis.Segments))
	for i, segment := range analysis.Segments {
		s, err := synth.Synthesize(segment.String(), speeds[i])
		require.NoError(t, err)
		series = append(series, s)
	}
	return series
}

func TestRenderVelocity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderVelocity(&buf, "alice", testSeries(t)))

	html := buf.String()
	assert.Contains(t, html, "Velocity vs Time")
	assert.Contains(t, html, "runner=alice")
	for _, segment := range analysis.Segments {
		assert.Contains(t, html, segment.String())
	}
}

func TestRenderPosition(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPosition(&buf, "alice", testSeries(t)))

	html := buf.String()
	assert.Contains(t, html, "Position vs Time")
	assert.Contains(t, html, "position")
}

func TestRenderSegments(t *testing.T) {
	series := testSeries(t)
	summaries := make([]analysis.SegmentSummary, 0, len(series))
	for _, s := range series {
		summaries = append(summaries, analysis.SummarizeSegment(s))
	}

	var buf bytes.Buffer
	require.NoError(t, RenderSegments(&buf, "alice", summaries))

	html := buf.String()
	assert.Contains(t, html, "Speed by Segment")
	assert.Contains(t, html, "Max Speed")
	assert.Contains(t, html, "Avg Speed")
}

func TestRenderTrend(t *testing.T) {
	trend := []database.TrendPoint{
		{Date: time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC), MaxVelocity: 9.6, AvgVelocity: 8.4, TotalTime: 12.1},
		{Date: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), MaxVelocity: 9.2, AvgVelocity: 8.1, TotalTime: 12.6},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderTrend(&buf, "alice", trend))

	html := buf.String()
	assert.Contains(t, html, "Performance Trend")
	assert.Contains(t, html, "2026-03-10")
	assert.Contains(t, html, "2026-03-20")
}

// Package charts renders session data to self-contained HTML pages using
// go-echarts. The pages are served directly by the API; no client-side
// framework is involved.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

// Moving-average window applied to plotted velocities.
const smoothingWindow = 5

// RenderVelocity writes a velocity-vs-time line chart for a full session.
// The per-segment series are concatenated on a shared absolute time axis and
// smoothed to take the jitter out of the plot.
func RenderVelocity(w io.Writer, runnerName string, series []analysis.Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Velocity Profile", Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Velocity vs Time",
			Subtitle: fmt.Sprintf("runner=%s", runnerName),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Velocity (m/s)"}),
	)

	timeOffset := 0.0
	var xAxis []string
	perSegment := make(map[string][]opts.LineData)

	for _, s := range series {
		for _, sample := range s.Samples {
			xAxis = append(xAxis, fmt.Sprintf("%.3f", sample.Time+timeOffset))
		}
		timeOffset += s.Duration()
	}

	// Pad each segment's series so it lines up with its slice of the
	// shared axis.
	pos := 0
	for _, s := range series {
		data := make([]opts.LineData, len(xAxis))
		for i := range data {
			data[i] = opts.LineData{Value: nil}
		}
		velocities := make([]float64, len(s.Samples))
		for i, sample := range s.Samples {
			velocities[i] = sample.Velocity
		}
		for i, v := range analysis.Smooth(velocities, smoothingWindow) {
			data[pos+i] = opts.LineData{Value: v}
		}
		pos += len(s.Samples)
		perSegment[s.Segment.String()] = data
	}

	line.SetXAxis(xAxis)
	for _, segment := range analysis.Segments {
		if data, ok := perSegment[segment.String()]; ok {
			line.AddSeries(segment.String(), data)
		}
	}

	return line.Render(w)
}

// RenderPosition writes a position-vs-time line chart with positions offset
// to the absolute track position.
func RenderPosition(w io.Writer, runnerName string, series []analysis.Series) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Position Profile", Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Position vs Time",
			Subtitle: fmt.Sprintf("runner=%s", runnerName),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Time (s)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Position (m)", Max: analysis.TrackLength}),
	)

	var xAxis []string
	var data []opts.LineData
	timeOffset := 0.0
	for _, s := range series {
		for _, sample := range s.Samples {
			xAxis = append(xAxis, fmt.Sprintf("%.3f", sample.Time+timeOffset))
			data = append(data, opts.LineData{Value: sample.Position + s.Segment.Offset()})
		}
		timeOffset += s.Duration()
	}

	line.SetXAxis(xAxis)
	line.AddSeries("position", data)

	return line.Render(w)
}

// RenderSegments writes a grouped bar chart comparing max and average speed
// across the four segments.
func RenderSegments(w io.Writer, runnerName string, summaries []analysis.SegmentSummary) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Speed by Segment", Width: "800px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Speed by Segment",
			Subtitle: fmt.Sprintf("runner=%s", runnerName),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Speed (m/s)"}),
	)

	labels := make([]string, 0, len(summaries))
	maxData := make([]opts.BarData, 0, len(summaries))
	avgData := make([]opts.BarData, 0, len(summaries))
	for _, s := range summaries {
		labels = append(labels, s.Segment.String())
		maxData = append(maxData, opts.BarData{Value: s.MaxSpeed})
		avgData = append(avgData, opts.BarData{Value: s.AvgSpeed})
	}

	bar.SetXAxis(labels).
		AddSeries("Max Speed", maxData).
		AddSeries("Avg Speed", avgData)

	return bar.Render(w)
}

// RenderTrend writes a line chart of a runner's headline numbers across
// their recent sessions.
func RenderTrend(w io.Writer, runnerName string, trend []database.TrendPoint) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Performance Trend", Width: "1000px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Performance Trend",
			Subtitle: fmt.Sprintf("runner=%s sessions=%d", runnerName, len(trend)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "m/s"}),
	)

	// Trend points come newest first; plot oldest to newest.
	var xAxis []string
	var maxData, avgData []opts.LineData
	for i := len(trend) - 1; i >= 0; i-- {
		p := trend[i]
		xAxis = append(xAxis, p.Date.Format("2006-01-02"))
		maxData = append(maxData, opts.LineData{Value: p.MaxVelocity})
		avgData = append(avgData, opts.LineData{Value: p.AvgVelocity})
	}

	line.SetXAxis(xAxis).
		AddSeries("Max Velocity", maxData).
		AddSeries("Avg Velocity", avgData)

	return line.Render(w)
}

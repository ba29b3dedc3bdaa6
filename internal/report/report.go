// Package report builds the downloadable Excel workbook for a session.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/strideworks/sprintline/internal/analysis"
	"github.com/strideworks/sprintline/internal/database"
)

const (
	sheetSummary  = "Summary"
	sheetDetailed = "Detailed Data"
	sheetCharts   = "Charts"
	sheetAnalysis = "Analysis"
)

// Workbook holds everything needed to render one session export.
type Workbook struct {
	Session *database.Session
	Series  []analysis.Series
}

// Write renders the four-sheet workbook to w.
func (wb *Workbook) Write(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return fmt.Errorf("failed to rename summary sheet: %w", err)
	}
	for _, name := range []string{sheetDetailed, sheetCharts, sheetAnalysis} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F5597"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := wb.writeSummary(f, headerStyle); err != nil {
		return err
	}
	if err := wb.writeDetailed(f, headerStyle); err != nil {
		return err
	}
	if err := wb.writeCharts(f); err != nil {
		return err
	}
	if err := wb.writeAnalysis(f, headerStyle); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// writeSummary fills the Summary sheet with the session's stored headline
// numbers and the per-segment breakdown.
func (wb *Workbook) writeSummary(f *excelize.File, headerStyle int) error {
	s := wb.Session

	rows := [][]any{
		{"Runner", s.Runner.Username},
		{"Session Date", s.CreatedAt.Format("2006-01-02 15:04")},
		{"Total Distance (m)", s.TotalDistance},
		{"Max Velocity (m/s)", s.MaxVelocity},
		{"Avg Velocity (m/s)", s.AvgVelocity},
		{"Total Time (s)", s.TotalTime},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(sheetSummary, "A1", "A6", headerStyle); err != nil {
		return fmt.Errorf("failed to style summary sheet: %w", err)
	}

	header := []any{"Segment", "Max Speed (m/s)", "Avg Speed (m/s)", "Duration (s)", "Distance (m)"}
	if err := f.SetSheetRow(sheetSummary, "A8", &header); err != nil {
		return fmt.Errorf("failed to write segment header: %w", err)
	}
	if err := f.SetCellStyle(sheetSummary, "A8", "E8", headerStyle); err != nil {
		return fmt.Errorf("failed to style segment header: %w", err)
	}
	for i, series := range wb.Series {
		sum := analysis.SummarizeSegment(series)
		cell, err := excelize.CoordinatesToCellName(1, 9+i)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []any{sum.Segment.String(), sum.MaxSpeed, sum.AvgSpeed, sum.Duration, sum.Distance}
		if err := f.SetSheetRow(sheetSummary, cell, &row); err != nil {
			return fmt.Errorf("failed to write segment row: %w", err)
		}
	}

	if err := f.SetColWidth(sheetSummary, "A", "E", 20); err != nil {
		return fmt.Errorf("failed to set summary column widths: %w", err)
	}
	return nil
}

// writeDetailed dumps every stored sample, segment by segment.
func (wb *Workbook) writeDetailed(f *excelize.File, headerStyle int) error {
	header := []any{"Segment", "Time (s)", "Position (m)", "Velocity (m/s)", "Acceleration (m/s²)"}
	if err := f.SetSheetRow(sheetDetailed, "A1", &header); err != nil {
		return fmt.Errorf("failed to write detailed header: %w", err)
	}
	if err := f.SetCellStyle(sheetDetailed, "A1", "E1", headerStyle); err != nil {
		return fmt.Errorf("failed to style detailed header: %w", err)
	}

	rowNum := 2
	for _, series := range wb.Series {
		accelerations := analysis.Accelerations(series.Samples)
		for i, sample := range series.Samples {
			cell, err := excelize.CoordinatesToCellName(1, rowNum)
			if err != nil {
				return fmt.Errorf("failed to compute cell name: %w", err)
			}
			row := []any{series.Segment.String(), sample.Time, sample.Position, sample.Velocity, accelerations[i]}
			if err := f.SetSheetRow(sheetDetailed, cell, &row); err != nil {
				return fmt.Errorf("failed to write sample row: %w", err)
			}
			rowNum++
		}
	}

	if err := f.SetColWidth(sheetDetailed, "A", "E", 16); err != nil {
		return fmt.Errorf("failed to set detailed column widths: %w", err)
	}
	return nil
}

// writeCharts lays out a compact per-segment table and attaches native line
// charts referencing the Detailed Data sheet.
func (wb *Workbook) writeCharts(f *excelize.File) error {
	header := []any{"Segment", "Max Speed (m/s)", "Avg Speed (m/s)"}
	if err := f.SetSheetRow(sheetCharts, "A1", &header); err != nil {
		return fmt.Errorf("failed to write charts header: %w", err)
	}
	for i, series := range wb.Series {
		sum := analysis.SummarizeSegment(series)
		cell, err := excelize.CoordinatesToCellName(1, 2+i)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []any{sum.Segment.String(), sum.MaxSpeed, sum.AvgSpeed}
		if err := f.SetSheetRow(sheetCharts, cell, &row); err != nil {
			return fmt.Errorf("failed to write charts row: %w", err)
		}
	}

	n := len(wb.Series)
	if n == 0 {
		return nil
	}
	chart := &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{
			{
				Name:       fmt.Sprintf("%s!$B$1", sheetCharts),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetCharts, n+1),
				Values:     fmt.Sprintf("%s!$B$2:$B$%d", sheetCharts, n+1),
			},
			{
				Name:       fmt.Sprintf("%s!$C$1", sheetCharts),
				Categories: fmt.Sprintf("%s!$A$2:$A$%d", sheetCharts, n+1),
				Values:     fmt.Sprintf("%s!$C$2:$C$%d", sheetCharts, n+1),
			},
		},
		Title: []excelize.RichTextRun{{Text: "Speed by Segment"}},
	}
	if err := f.AddChart(sheetCharts, "E2", chart); err != nil {
		return fmt.Errorf("failed to add segment chart: %w", err)
	}
	return nil
}

// writeAnalysis fills the Analysis sheet with derived comparisons and
// recommendations.
func (wb *Workbook) writeAnalysis(f *excelize.File, headerStyle int) error {
	summary := analysis.Aggregate(wb.Series)
	segments := make([]analysis.SegmentSummary, 0, len(wb.Series))
	for _, series := range wb.Series {
		segments = append(segments, analysis.SummarizeSegment(series))
	}
	recs := analysis.Recommendations(summary, segments)

	outliers := 0
	for _, series := range wb.Series {
		velocities := make([]float64, len(series.Samples))
		for i, sample := range series.Samples {
			velocities[i] = sample.Velocity
		}
		outliers += len(analysis.DetectOutliers(velocities, 3))
	}
	if outliers > 0 {
		recs = append(recs, analysis.Recommendation{
			Category: "Data Quality",
			Issue:    fmt.Sprintf("%d velocity outliers detected", outliers),
			Advice:   "Review the segment videos for tracking glitches.",
		})
	}

	title := []any{"Category", "Issue", "Advice"}
	if err := f.SetSheetRow(sheetAnalysis, "A1", &title); err != nil {
		return fmt.Errorf("failed to write analysis header: %w", err)
	}
	if err := f.SetCellStyle(sheetAnalysis, "A1", "C1", headerStyle); err != nil {
		return fmt.Errorf("failed to style analysis header: %w", err)
	}

	for i, rec := range recs {
		cell, err := excelize.CoordinatesToCellName(1, 2+i)
		if err != nil {
			return fmt.Errorf("failed to compute cell name: %w", err)
		}
		row := []any{rec.Category, rec.Issue, rec.Advice}
		if err := f.SetSheetRow(sheetAnalysis, cell, &row); err != nil {
			return fmt.Errorf("failed to write recommendation row: %w", err)
		}
	}
	if len(recs) == 0 {
		none := []any{"General", "No issues detected", "Keep up the current training plan."}
		if err := f.SetSheetRow(sheetAnalysis, "A2", &none); err != nil {
			return fmt.Errorf("failed to write recommendation row: %w", err)
		}
	}

	if err := f.SetColWidth(sheetAnalysis, "A", "A", 24); err != nil {
		return fmt.Errorf("failed to set analysis column widths: %w", err)
	}
	if err := f.SetColWidth(sheetAnalysis, "B", "C", 60); err != nil {
		return fmt.Errorf("failed to set analysis column widths: %w", err)
	}
	return nil
}

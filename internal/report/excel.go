package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Sheet names in the exported workbook
const (
	ClaimsSheet  = "Claims"
	SummarySheet = "Summary"
)

var claimHeaders = []string{
	"Claim ID", "Lecturer", "Hours Worked", "Hourly Rate", "Total Amount",
	"Status", "Submitted", "Documents", "Notes",
}

var summaryHeaders = []string{"Status", "Claims", "Total Amount"}

// ExcelWriter renders a ClaimReport as an xlsx workbook
type ExcelWriter struct {
	logger *zap.Logger
}

// NewExcelWriter creates a new workbook writer
func NewExcelWriter(logger *zap.Logger) *ExcelWriter {
	return &ExcelWriter{logger: logger}
}

// Write streams the workbook for r to w
func (ew *ExcelWriter) Write(r *ClaimReport, w io.Writer) error {
	f, err := ew.Build(r)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	ew.logger.Info("Claims workbook written", zap.Int("claims", len(r.Claims)))
	return nil
}

// Build creates the workbook in memory
func (ew *ExcelWriter) Build(r *ClaimReport) (*excelize.File, error) {
	f := excelize.NewFile()

	// the default sheet becomes the claims sheet
	if err := f.SetSheetName(f.GetSheetName(0), ClaimsSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create summary sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	ew.writeRow(f, ClaimsSheet, 1, toCells(claimHeaders))
	for i, c := range r.Claims {
		ew.writeRow(f, ClaimsSheet, i+2, []interface{}{
			c.ID,
			c.LecturerName,
			c.HoursWorked.InexactFloat64(),
			c.HourlyRate.InexactFloat64(),
			c.TotalAmount.InexactFloat64(),
			c.Status.String(),
			c.SubmissionDate.Format("2006-01-02 15:04"),
			len(c.Documents),
			c.Notes,
		})
	}

	ew.writeRow(f, SummarySheet, 1, toCells(summaryHeaders))
	for i, s := range r.Summary {
		ew.writeRow(f, SummarySheet, i+2, []interface{}{
			s.Status.String(), s.Count, s.TotalAmount.InexactFloat64(),
		})
	}
	ew.writeRow(f, SummarySheet, len(r.Summary)+2, []interface{}{
		"TOTAL", r.TotalCount, r.TotalAmount.InexactFloat64(),
	})

	for sheet, cols := range map[string]int{ClaimsSheet: len(claimHeaders), SummarySheet: len(summaryHeaders)} {
		last, _ := excelize.CoordinatesToCellName(cols, 1)
		if err := f.SetCellStyle(sheet, "A1", last, header); err != nil {
			ew.logger.Warn("Failed to style header", zap.String("sheet", sheet), zap.Error(err))
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// writeRow sets a row starting at column A
func (ew *ExcelWriter) writeRow(f *excelize.File, sheet string, row int, values []interface{}) {
	cell, _ := excelize.CoordinatesToCellName(1, row)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		ew.logger.Warn("Failed to set row",
			zap.String("sheet", sheet),
			zap.Int("row", row),
			zap.Error(err))
	}
}

func toCells(s []string) []interface{} {
	out := make([]interface{}, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

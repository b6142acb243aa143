// Package export writes the question corpus to spreadsheet workbooks
// for offline review.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/prepdeck/prepdeck/internal/corpus"
)

const sheetName = "Questions"

var header = []string{"ID", "Topic", "Difficulty", "Question", "Answer", "Follow-ups", "Code sample"}

// Workbook writes all records as one xlsx worksheet.
func Workbook(w io.Writer, records []corpus.QARecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			rec.ID,
			string(rec.Topic),
			rec.Difficulty,
			rec.Question,
			rec.Answer,
			formatFollowUps(rec.FollowUps),
			rec.CodeSample,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write record %q: %w", rec.ID, err)
			}
		}
	}

	if err := f.SetColWidth(sheetName, "D", "G", 60); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func formatFollowUps(fus []corpus.FollowUp) string {
	if len(fus) == 0 {
		return ""
	}
	parts := make([]string, 0, len(fus))
	for _, fu := range fus {
		parts = append(parts, fmt.Sprintf("Q: %s\nA: %s", fu.Question, fu.Answer))
	}
	return strings.Join(parts, "\n\n")
}

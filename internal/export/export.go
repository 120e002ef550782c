// Package export writes metric comparisons to an Excel workbook.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/stwalsh4118/wardlens/internal/format"
	"github.com/stwalsh4118/wardlens/internal/models"
)

const defaultSheet = "Sheet1"

// ErrNoSheets is returned when a workbook would have no content.
var ErrNoSheets = errors.New("workbook needs at least one sheet")

// Sheet is one worksheet of metric comparisons.
type Sheet struct {
	Name    string
	Metrics []models.MetricComparison
}

func headers(districts models.DistrictPair) []string {
	a, b := districts.A.Name(), districts.B.Name()
	return []string{
		"Field Code", "Label", "Category", "Format",
		a, b, "Gap", "Gap %",
		a + " (display)", b + " (display)", "Gap (display)",
	}
}

// Workbook builds a workbook with one sheet per entry. Missing values are
// left blank in the numeric columns and shown as N/A in the display columns.
func Workbook(sheets []Sheet, districts models.DistrictPair) (*excelize.File, error) {
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}

	f := excelize.NewFile()
	for i, s := range sheets {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.Name); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to name sheet %q: %w", s.Name, err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", s.Name, err)
		}

		if err := writeSheet(f, s, districts); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write builds the workbook and writes it to w.
func Write(w io.Writer, sheets []Sheet, districts models.DistrictPair) error {
	f, err := Workbook(sheets, districts)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s Sheet, districts models.DistrictPair) error {
	hs := headers(districts)
	for i, h := range hs {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(s.Name, cell, h); err != nil {
			return fmt.Errorf("failed to write header %q: %w", h, err)
		}
	}
	last, err := excelize.ColumnNumberToName(len(hs))
	if err != nil {
		return err
	}
	if err := f.SetColWidth(s.Name, "A", last, 18); err != nil {
		return err
	}

	for i, m := range s.Metrics {
		values := []any{
			m.FieldCode,
			m.Label,
			m.Category,
			m.Format.String(),
			cellValue(m.ValueA),
			cellValue(m.ValueB),
			cellValue(m.Gap),
			cellValue(m.GapPercent),
			format.Optional(m.ValueA, m.Format),
			format.Optional(m.ValueB, m.Format),
			displayGap(m),
		}
		for j, v := range values {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(s.Name, cell, v); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", s.Name, i+2, err)
			}
		}
	}
	return nil
}

func cellValue(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func displayGap(m models.MetricComparison) string {
	if m.Gap == nil {
		return format.NotAvailable
	}
	return format.Gap(*m.Gap, m.Format)
}

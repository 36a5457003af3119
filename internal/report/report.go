package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/vbonduro/equipinv/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Format selects the output of Write.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatText Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("%w: unknown report format %q", domain.ErrValidation, s)
}

// Write renders items in the given format.
func Write(w io.Writer, items []*domain.Equipment, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, items)
	case FormatText:
		return WriteText(w, items)
	}
	return fmt.Errorf("%w: unknown report format %q", domain.ErrValidation, format)
}

// WriteText writes one Describe line per item followed by a total.
func WriteText(w io.Writer, items []*domain.Equipment) error {
	var total int64
	for _, e := range items {
		if _, err := fmt.Fprintln(w, domain.Describe(*e)); err != nil {
			return fmt.Errorf("failed to write report line: %w", err)
		}
		total += e.Value
	}
	if _, err := fmt.Fprintf(w, "%d items, total value %s\n", len(items), domain.FormatISK(total)); err != nil {
		return fmt.Errorf("failed to write report total: %w", err)
	}
	return nil
}

const sheetName = "Equipment"

var xlsxHeader = []string{"ID", "Kind", "Details", "Value (ISK)", "Location", "Building"}

var xlsxColumnWidths = []float64{
	8,  // ID
	12, // Kind
	20, // Details
	16, // Value
	12, // Location
	20, // Building
}

// WriteXLSX writes a single-sheet workbook with a header row, one row per
// item and a total value row.
func WriteXLSX(w io.Writer, items []*domain.Equipment) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close workbook: %w", cerr)
		}
	}()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 3}) // #,##0
	if err != nil {
		return fmt.Errorf("failed to create value style: %w", err)
	}

	if err := writeRow(f, 1, toAny(xlsxHeader)); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", cellName(len(xlsxHeader), 1), headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range xlsxColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	var total int64
	for i, e := range items {
		row := i + 2
		values := []any{
			e.ID,
			e.Kind().String(),
			domain.DetailsText(*e),
			e.Value,
			e.Location.String(),
			e.Location.Building.DisplayName(),
		}
		if err := writeRow(f, row, values); err != nil {
			return err
		}
		total += e.Value
	}

	totalRow := len(items) + 2
	if err := writeRow(f, totalRow, []any{nil, "Total", fmt.Sprintf("%d items", len(items)), total}); err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "D2", cellName(4, totalRow), moneyStyle); err != nil {
		return fmt.Errorf("failed to set value style: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell := cellName(col+1, row)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

func cellName(col, row int) string {
	// Columns and rows here are always small positive numbers.
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

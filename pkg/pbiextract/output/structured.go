package output

import (
	"fmt"
	"log/slog"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
	"github.com/xuri/excelize/v2"
)

// Structured workbook labels.
const (
	StructuredSheet = "Structured Data"
	StructuredTitle = "Data Model - Structured View"
	EmptyMessage    = "No structured data to display."
)

// WriteStructured writes all record sets as titled blocks on a single
// sheet, colouring data rows by parent. Values longer than a cell holds are
// truncated and logged to log, which may be nil.
func WriteStructured(path string, sets []models.RecordSet, log *slog.Logger) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), StructuredSheet); err != nil {
		return err
	}
	if err := renderStructured(f, sets, log); err != nil {
		return fmt.Errorf("render %s: %w", StructuredSheet, err)
	}
	return saveAs(f, path)
}

func renderStructured(f *excelize.File, sets []models.RecordSet, log *slog.Logger) error {
	styles := newStyleCache(f)
	w := newSheetWriter(f, StructuredSheet, styles, log)

	titleStyle, err := styles.font(true, false, 16)
	if err != nil {
		return err
	}
	if err := w.write([]string{StructuredTitle}, titleStyle, untracked); err != nil {
		return err
	}
	w.skip(1)

	if len(sets) == 0 {
		italic, err := styles.font(false, true, 11)
		if err != nil {
			return err
		}
		if err := w.write([]string{EmptyMessage}, italic, untracked); err != nil {
			return err
		}
		return f.SetColWidth(StructuredSheet, "A", "A", float64(len(StructuredTitle)+4)*1.1)
	}

	blockStyle, err := styles.font(true, false, 14)
	if err != nil {
		return err
	}
	headerStyle, err := styles.header(false)
	if err != nil {
		return err
	}

	for _, rs := range sets {
		if err := w.write([]string{rs.Title}, blockStyle, untracked); err != nil {
			return err
		}
		if err := w.write(rs.Headers, headerStyle, unlimited); err != nil {
			return err
		}
		for _, row := range rs.Rows {
			color := ""
			if !row.Parent.IsZero() {
				color = ParentColor(row.Parent.Name)
			}
			style, err := styles.row(color)
			if err != nil {
				return err
			}
			if err := w.write(row.Values, style, structuredCellCap); err != nil {
				return err
			}
		}
		w.skip(2)
	}

	return w.applyWidths(structuredWidth)
}

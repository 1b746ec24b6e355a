package output

import (
	"fmt"
	"log/slog"
	"os"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// TruncationMarker ends a value cut to fit in one cell.
const TruncationMarker = "..."

// sheetWriter appends styled rows to one worksheet.
type sheetWriter struct {
	f      *excelize.File
	sheet  string
	styles *styleCache
	widths widthTracker
	row    int
	log    *slog.Logger
}

func newSheetWriter(f *excelize.File, sheet string, styles *styleCache, log *slog.Logger) *sheetWriter {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &sheetWriter{f: f, sheet: sheet, styles: styles, widths: make(widthTracker), row: 1, log: log}
}

// fitCell cuts v to the cell character limit, ending it with TruncationMarker.
func fitCell(v string) (string, bool) {
	if utf8.RuneCountInString(v) <= excelize.TotalCellChars {
		return v, false
	}
	runes := []rune(v)
	return string(runes[:excelize.TotalCellChars-len(TruncationMarker)]) + TruncationMarker, true
}

// Width tracking limits for write.
const (
	unlimited = 0
	untracked = -1
)

// write sets values on the current row, styles the written range and
// advances. Content lengths count at most limit runes.
func (w *sheetWriter) write(values []string, style, limit int) error {
	if len(values) == 0 {
		w.row++
		return nil
	}
	start, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(values), w.row)
	if err != nil {
		return err
	}
	values = w.fit(values)
	if err := w.f.SetSheetRow(w.sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", w.sheet, w.row, err)
	}
	if style > 0 {
		if err := w.f.SetCellStyle(w.sheet, start, end, style); err != nil {
			return err
		}
	}
	if limit != untracked {
		for i, v := range values {
			w.widths.observe(i+1, v, limit)
		}
	}
	w.row++
	return nil
}

// fit returns values with over-long cells truncated, logging each one.
func (w *sheetWriter) fit(values []string) []string {
	out := values
	copied := false
	for i, v := range values {
		cut, ok := fitCell(v)
		if !ok {
			continue
		}
		if !copied {
			out = append([]string(nil), values...)
			copied = true
		}
		out[i] = cut
		cell, _ := excelize.CoordinatesToCellName(i+1, w.row)
		w.log.Warn("cell value truncated",
			"sheet", w.sheet,
			"cell", cell,
			"record", recordName(values[0]),
			"length", utf8.RuneCountInString(v))
	}
	return out
}

// recordName shortens a row's first value for log output.
func recordName(v string) string {
	const limit = 80
	if r := []rune(v); len(r) > limit {
		return string(r[:limit]) + TruncationMarker
	}
	return v
}

// skip advances past n blank rows.
func (w *sheetWriter) skip(n int) {
	w.row += n
}

// applyWidths sets every tracked column width through fn.
func (w *sheetWriter) applyWidths(fn func(int) float64) error {
	for col, n := range w.widths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(w.sheet, name, name, fn(n)); err != nil {
			return err
		}
	}
	return nil
}

// saveAs writes f to path, removing any partial file on failure.
func saveAs(f *excelize.File, path string) error {
	if err := f.SaveAs(path); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("save %s: %w (cleanup: %v)", path, err, rmErr)
		}
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

package output

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
	"github.com/xuri/excelize/v2"
)

// ErrNothingToWrite indicates every record set passed to a writer was empty.
var ErrNothingToWrite = errors.New("no records to write")

// WriteExtracted writes the granular table/column view and the KPI list to
// separate sheets. Empty sets are omitted; a failed save leaves no file.
// Over-long values are truncated as in WriteStructured.
func WriteExtracted(path string, granular, kpis *models.RecordSet, log *slog.Logger) error {
	var sheets []*models.RecordSet
	for _, rs := range []*models.RecordSet{granular, kpis} {
		if rs.Len() > 0 {
			sheets = append(sheets, rs)
		}
	}
	if len(sheets) == 0 {
		return ErrNothingToWrite
	}

	f := excelize.NewFile()
	defer f.Close()
	styles := newStyleCache(f)

	for i, rs := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), rs.Title); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(rs.Title); err != nil {
			return err
		}
		if err := renderFlat(f, styles, rs, rowColors(rs), log); err != nil {
			return fmt.Errorf("render %s: %w", rs.Title, err)
		}
	}

	return saveAs(f, path)
}

// rowColors picks the fill of each row: the palette by first appearance of
// a "Source" column value, else the hashed parent colour.
func rowColors(rs *models.RecordSet) []string {
	colors := make([]string, len(rs.Rows))

	if col := rs.Column("Source"); col >= 0 {
		keys := make([]string, len(rs.Rows))
		for i, row := range rs.Rows {
			keys[i] = row.Values[col]
		}
		palette := paletteColors(keys)
		for i, k := range keys {
			colors[i] = palette[k]
		}
		return colors
	}

	for i, row := range rs.Rows {
		colors[i] = ParentColor(row.Parent.Name)
	}
	return colors
}

func renderFlat(f *excelize.File, styles *styleCache, rs *models.RecordSet, colors []string, log *slog.Logger) error {
	w := newSheetWriter(f, rs.Title, styles, log)

	header, err := styles.header(true)
	if err != nil {
		return err
	}
	if err := w.write(rs.Headers, header, unlimited); err != nil {
		return err
	}
	for i, row := range rs.Rows {
		style, err := styles.row(colors[i])
		if err != nil {
			return err
		}
		if err := w.write(row.Values, style, unlimited); err != nil {
			return err
		}
	}

	return w.applyWidths(extractedWidth)
}

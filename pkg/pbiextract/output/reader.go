package output

import (
	"fmt"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
	"github.com/xuri/excelize/v2"
)

// ReadSheet reads a flat sheet written by WriteExtracted: the first row is
// the header, every following non-blank row is data.
func ReadSheet(path, sheet string) (*models.RecordSet, error) {
	rows, err := readRows(path, sheet)
	if err != nil {
		return nil, err
	}

	rs := &models.RecordSet{Title: sheet}
	if len(rows) == 0 {
		return rs, nil
	}
	rs.Headers = rows[0]
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rs.Append(models.ParentRef{}, row...)
	}
	return rs, nil
}

// ReadStructured reads back the titled blocks written by WriteStructured.
// Row colours are not recovered.
func ReadStructured(path string) ([]models.RecordSet, error) {
	rows, err := readRows(path, StructuredSheet)
	if err != nil {
		return nil, err
	}

	var sets []models.RecordSet
	// Row 0 is the sheet title.
	i := 1
	for i < len(rows) {
		if isBlank(rows[i]) {
			i++
			continue
		}
		if i+1 >= len(rows) || isBlank(rows[i+1]) {
			// A lone line, such as the empty-sheet message.
			i++
			continue
		}

		rs := models.RecordSet{Title: rows[i][0], Headers: rows[i+1]}
		i += 2
		for i < len(rows) && !isBlank(rows[i]) {
			rs.Append(models.ParentRef{}, rows[i]...)
			i++
		}
		sets = append(sets, rs)
	}
	return sets, nil
}

func readRows(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

// isBlank reports whether a row has no non-empty cell.
func isBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}

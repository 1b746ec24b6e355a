package parser

import (
	"regexp"
	"strings"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

var (
	wrappedTableRe    = regexp.MustCompile(`\(([^.()]+)\.`)
	plainTableRe      = regexp.MustCompile(`^([^.()]+)\.`)
	queryRefMeasureRe = regexp.MustCompile(`^[^.()]+\.([^()]+)$`)
)

// SourceTable returns the table prefix of a visual queryRef such as
// "Sales.Amount" or "Sum(Sales.Amount)", or models.NA.
func SourceTable(queryRef string) string {
	// An aggregation wrapper takes precedence over the leading prefix.
	for _, re := range []*regexp.Regexp{wrappedTableRe, plainTableRe} {
		if m := re.FindStringSubmatch(queryRef); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return models.NA
}

// MeasureName returns the field part of a plain "Table.Field" queryRef,
// or "" when the reference is wrapped in an aggregation.
func MeasureName(queryRef string) string {
	if m := queryRefMeasureRe.FindStringSubmatch(queryRef); m != nil {
		return m[1]
	}
	return ""
}

package output

import (
	"math"
	"unicode/utf8"
)

// Column width rules, in Excel character units.
const (
	structuredCellCap = 80
	structuredMin     = 10.0
	structuredMax     = 80.0

	extractedMin = 10.0
	extractedMax = 100.0
)

// widthTracker records the widest content seen per column.
type widthTracker map[int]int

// observe records s in column col, counting at most limit runes when limit > 0.
func (w widthTracker) observe(col int, s string, limit int) {
	n := utf8.RuneCountInString(s)
	if limit > 0 && n > limit {
		n = limit
	}
	if n > w[col] {
		w[col] = n
	}
}

// structuredWidth maps content length to a width clamped to [10, 80].
func structuredWidth(n int) float64 {
	return math.Min(math.Max(float64(n+2)*0.9, structuredMin), structuredMax)
}

// extractedWidth maps content length to min((n+4)*1.1, 100), floored at 10.
func extractedWidth(n int) float64 {
	return math.Max(math.Min(float64(n+4)*1.1, extractedMax), extractedMin)
}

package output

import (
	"github.com/xuri/excelize/v2"
)

// Header fill colour.
const headerColor = "FFFF00"

func thinBorder() []excelize.Border {
	sides := []string{"left", "right", "top", "bottom"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{Type: side, Color: "000000", Style: 1}
	}
	return borders
}

func solidFill(color string) excelize.Fill {
	return excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}}
}

// styleCache creates each distinct style once per workbook.
type styleCache struct {
	f     *excelize.File
	fills map[string]int
}

func newStyleCache(f *excelize.File) *styleCache {
	return &styleCache{f: f, fills: make(map[string]int)}
}

func (c *styleCache) font(bold, italic bool, size float64) (int, error) {
	return c.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: bold, Italic: italic, Size: size}})
}

// header returns the yellow bordered header style.
func (c *styleCache) header(bold bool) (int, error) {
	style := &excelize.Style{Fill: solidFill(headerColor), Border: thinBorder()}
	if bold {
		style.Font = &excelize.Font{Bold: true}
	}
	return c.f.NewStyle(style)
}

// row returns a bordered data style filled with color, or unfilled when
// color is empty.
func (c *styleCache) row(color string) (int, error) {
	if id, ok := c.fills[color]; ok {
		return id, nil
	}
	style := &excelize.Style{Border: thinBorder()}
	if color != "" {
		style.Fill = solidFill(color)
	}
	id, err := c.f.NewStyle(style)
	if err != nil {
		return 0, err
	}
	c.fills[color] = id
	return id, nil
}

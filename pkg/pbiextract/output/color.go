// Package output renders record sets as formatted spreadsheets and reads
// them back.
package output

import (
	"crypto/sha256"
	"fmt"
)

// White is the colour of rows without a parent.
const White = "FFFFFF"

// Pale colour range: each channel is mapped into [paleBase, paleBase+paleRange).
const (
	paleBase  = 200
	paleRange = 56
)

// KPIPalette colours KPI rows by provenance, cycling in order of first use.
var KPIPalette = []string{
	"D9E1F2", "E2EFDA", "FFF2CC", "FCE4D6",
	"E7E6E6", "FBE4D5", "C6E0B4", "BDD7EE",
}

// ParentColor derives a stable pale RGB colour ("RRGGBB") from a parent
// name. An empty name yields White.
func ParentColor(id string) string {
	if id == "" {
		return White
	}
	sum := sha256.Sum256([]byte(id))
	return fmt.Sprintf("%02X%02X%02X", pale(sum[0]), pale(sum[1]), pale(sum[2]))
}

func pale(b byte) int {
	return paleBase + int(b)%paleRange
}

// paletteColors assigns palette colours to keys in order of first appearance.
func paletteColors(keys []string) map[string]string {
	colors := make(map[string]string)
	for _, k := range keys {
		if _, ok := colors[k]; ok {
			continue
		}
		colors[k] = KPIPalette[len(colors)%len(KPIPalette)]
	}
	return colors
}

package parser

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

// MaxDisplayExpression is the rune limit of an expression shown in reports.
const MaxDisplayExpression = 500

var (
	fileContentsRe = regexp.MustCompile(`File\.Contents\("([^"]+)"\)`)
	sourceItemRe   = regexp.MustCompile(`Source\{\[Item="([^"]+)",Kind="Table"\]\}`)
	selectRowsRe   = regexp.MustCompile(`Table\.SelectRows\(.*?, (.*?)\)`)
)

// ExtractMSource mines an M (Power Query) expression for its file source,
// source table and row filters. Nothing is parsed; misses yield models.NA.
func ExtractMSource(expr string) models.MSource {
	src := models.MSource{
		Path:       models.NA,
		Table:      models.NA,
		Expression: truncateExpression(expr),
		Filters:    models.NA,
	}

	if m := fileContentsRe.FindStringSubmatch(expr); m != nil {
		src.Path = m[1]
	}

	if m := sourceItemRe.FindStringSubmatch(expr); m != nil {
		src.Table = m[1]
	} else if src.Path != models.NA {
		if name := fileStem(src.Path); name != "" {
			src.Table = name
		}
	}

	var filters []string
	for _, m := range selectRowsRe.FindAllStringSubmatch(expr, -1) {
		filters = append(filters, m[1])
	}
	if len(filters) > 0 {
		src.Filters = strings.Join(filters, " ; ")
	}

	return src
}

// fileStem returns the base name without extension, accepting both
// Windows and POSIX separators.
func fileStem(p string) string {
	if idx := strings.LastIndexAny(p, `\/`); idx >= 0 {
		p = p[idx+1:]
	}
	return strings.TrimSuffix(p, path.Ext(p))
}

func truncateExpression(expr string) string {
	if utf8.RuneCountInString(expr) > MaxDisplayExpression {
		runes := []rune(expr)
		expr = string(runes[:MaxDisplayExpression]) + "..."
	}
	return strings.TrimSpace(expr)
}

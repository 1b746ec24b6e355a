package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Larabi1/Data-Extractor/pkg/pbiextract/models"
)

// node is a decoded JSON object read with lenient, defaulting accessors.
type node map[string]any

// decodeObject decodes a JSON object, keeping numbers verbatim.
func decodeObject(data []byte) (node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected a JSON object, got %T", v)
	}
	return node(obj), nil
}

func (n node) has(key string) bool {
	_, ok := n[key]
	return ok
}

// str returns the value as text, or def when absent or null.
func (n node) str(key, def string) string {
	v, ok := n[key]
	if !ok || v == nil {
		return def
	}
	return stringify(v)
}

func (n node) boolean(key string, def bool) bool {
	if b, ok := n[key].(bool); ok {
		return b
	}
	return def
}

func (n node) child(key string) node {
	if m, ok := n[key].(map[string]any); ok {
		return node(m)
	}
	return node{}
}

// list returns the object elements of an array value.
func (n node) list(key string) []node {
	arr, ok := n[key].([]any)
	if !ok {
		return nil
	}
	out := make([]node, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, node(m))
		}
	}
	return out
}

// names collects the "name" of each element of an array value.
func (n node) names(key, def string) []string {
	var out []string
	for _, item := range n.list(key) {
		out = append(out, item.str("name", def))
	}
	return out
}

// expression normalises a string or array-of-lines expression.
func (n node) expression(key string) string {
	switch v := n[key].(type) {
	case nil:
		return models.NA
	case string:
		return strings.TrimSpace(v)
	case []any:
		var lines []string
		for _, item := range v {
			if item == nil {
				continue
			}
			if s := strings.TrimSpace(stringify(item)); s != "" {
				lines = append(lines, s)
			}
		}
		return strings.Join(lines, "\n")
	default:
		return models.NA
	}
}

// rawExpression joins array expressions without trimming, for text mining.
func (n node) rawExpression(key string) (string, bool) {
	switch v := n[key].(type) {
	case string:
		return v, v != ""
	case []any:
		lines := make([]string, 0, len(v))
		for _, item := range v {
			lines = append(lines, stringify(item))
		}
		return strings.Join(lines, "\n"), len(lines) > 0
	default:
		return "", false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return models.NA
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

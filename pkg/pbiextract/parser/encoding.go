// Package parser decodes Power BI payloads and flattens them into records.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// ErrNoDecodableText indicates no candidate encoding produced a JSON document.
var ErrNoDecodableText = errors.New("no encoding produced valid JSON")

// Encoding is a named text decoder.
type Encoding struct {
	// Name is the label reported in logs (utf-16, utf-16-le, utf-8-sig, utf-8).
	Name   string
	decode func([]byte) (string, error)
}

// Decode converts raw bytes to a string.
func (e Encoding) Decode(b []byte) (string, error) {
	return e.decode(b)
}

func xtextDecoder(enc encoding.Encoding) func([]byte) (string, error) {
	return func(b []byte) (string, error) {
		out, err := enc.NewDecoder().Bytes(b)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
}

func decodeUTF8(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", errors.New("invalid utf-8")
	}
	return string(b), nil
}

// Candidate encodings, tried in order. Layout payloads are usually UTF-16LE
// without a BOM; DataModelSchema files written by pbi-tools carry one.
var (
	UTF16   = Encoding{Name: "utf-16", decode: xtextDecoder(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))}
	UTF16LE = Encoding{Name: "utf-16-le", decode: xtextDecoder(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))}
	UTF8BOM = Encoding{Name: "utf-8-sig", decode: xtextDecoder(unicode.UTF8BOM)}
	UTF8    = Encoding{Name: "utf-8", decode: decodeUTF8}
)

// DefaultEncodings is the order used by DecodeJSONText.
var DefaultEncodings = []Encoding{UTF16, UTF16LE, UTF8BOM, UTF8}

// DecodeJSONText decodes b with the first encoding whose output is a JSON
// document once any prefix before the first '{' is dropped.
// It returns the JSON text and the name of the encoding that worked.
func DecodeJSONText(b []byte, encodings ...Encoding) ([]byte, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	for _, enc := range encodings {
		text, err := enc.Decode(b)
		if err != nil {
			continue
		}
		text = trimToJSON(text)
		if json.Valid([]byte(text)) {
			return []byte(text), enc.Name, nil
		}
	}
	return nil, "", ErrNoDecodableText
}

// ReadJSONFile reads a file and decodes it with DecodeJSONText.
func ReadJSONFile(path string) ([]byte, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	text, enc, err := DecodeJSONText(b)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", path, err)
	}
	return text, enc, nil
}

// trimToJSON drops anything before the first '{' and surrounding whitespace.
func trimToJSON(s string) string {
	if idx := strings.IndexByte(s, '{'); idx > 0 {
		s = s[idx:]
	}
	return strings.TrimRight(strings.TrimSpace(s), "\x00")
}

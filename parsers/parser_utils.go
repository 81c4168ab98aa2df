// parsers/parser_utils.go
package parsers

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// DecodeText returns the content as UTF-8 without a BOM. UTF-16 files are
// recognised by their BOM; bytes that are not valid UTF-8 are read as Windows-1252,
// which is what spreadsheet programs emit for "CSV (Windows)".
func DecodeText(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	// UTF-16 (LE or BE), as saved by "Unicode Text" exports
	if bytes.HasPrefix(raw, []byte{0xFF, 0xFE}) || bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) {
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decode UTF-16 text: %w", err)
		}
		return out, nil
	}

	// UTF-8, with or without the BOM Excel adds
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return raw, nil
	}
	// anything else is treated as a legacy single-byte export
	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Windows-1252 text: %w", err)
	}
	return out, nil
}

// getColIndex maps trimmed header names to column indexes. Each entry of
// required lists the accepted aliases of one mandatory column.
func getColIndex(header []string, required [][]string) (map[string]int, error) {
	colIndex := make(map[string]int)
	for i, colName := range header {
		name := strings.TrimSpace(colName)
		// the first of two equal headers wins; blank headers are ignored
		if _, dup := colIndex[name]; dup || name == "" {
			continue
		}
		colIndex[name] = i
	}
	// every required column must be present under one of its names
	for _, aliases := range required {
		found := false
		for _, a := range aliases {
			if _, ok := colIndex[a]; ok {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("required header not found: %s", strings.Join(aliases, " / "))
		}
	}
	return colIndex, nil
}

// barcode/barcode.go
package barcode

import (
	"fmt"
	"strings"
)

// Result holds the parts of a scanned product barcode.
type Result struct {
	Gtin14     string // (01) GTIN, 14 digits
	ExpiryDate string // (17) expiry, YYYYMM
	LotNumber  string // (10) lot
}

// aiLengths caps variable-length AIs (only lot (10) for now).
var aiLengths = map[string]int{
	"10": 20, // lot, at most 20 characters
}

// Parse identifies the barcode format from its length and decodes it.
func Parse(code string) (*Result, error) {
	code = strings.TrimSpace(code)
	length := len(code)

	if length == 0 {
		return nil, fmt.Errorf("barcode is empty")
	}
	// Scanners send digits only; anything else is a typed search term.
	if !isDigits(code) {
		return nil, fmt.Errorf("barcode %q is not numeric", code)
	}

	switch {
	case length >= 15:
		// 15 digits or more: a GS1 string with application identifiers
		if strings.HasPrefix(code, "01") {
			return parseAIString(code)
		}
		// a long code that does not open with the GTIN AI is not one we know
		return nil, fmt.Errorf("barcode has %d digits but does not start with AI(01)", length)
	case length == 14:
		// 14 digits: already a GTIN-14
		return &Result{Gtin14: code}, nil
	default:
		// EAN-13, EAN-8, UPC-A: left-pad to GTIN-14.
		return &Result{Gtin14: fmt.Sprintf("%014s", code)}, nil
	}
}

// SearchForms returns the strings a scanned code may appear as in a SKU column:
// the raw scan, the GTIN-14 and the GTIN-13 without its packaging digit.
// A term that is not a barcode yields nil.
func SearchForms(term string) []string {
	term = strings.TrimSpace(term)
	if len(term) < 8 || !isDigits(term) {
		return nil
	}
	res, err := Parse(term)
	if err != nil {
		return nil
	}

	// the raw scan first, then the normalised forms, without repeats
	forms := []string{term}
	add := func(s string) {
		for _, f := range forms {
			if f == s {
				return
			}
		}
		forms = append(forms, s)
	}
	add(res.Gtin14)
	// sheets usually store the 13-digit EAN, so drop the leading packaging 0
	if strings.HasPrefix(res.Gtin14, "0") {
		add(res.Gtin14[1:])
	}
	return forms
}

// parseAIString walks a GS1 element string AI by AI.
func parseAIString(code string) (*Result, error) {
	result := &Result{}
	i := 0
	length := len(code)

	for i < length {
		// (01) GTIN, fixed 14 digits
		if strings.HasPrefix(code[i:], "01") {
			if i+16 > length { // AI(2) + data(14)
				return nil, fmt.Errorf("AI(01) data is truncated")
			}
			result.Gtin14 = code[i+2 : i+16]
			i += 16
			continue
		}

		// (17) expiry, fixed YYMMDD; the day is dropped
		if strings.HasPrefix(code[i:], "17") {
			if i+8 > length { // AI(2) + data(6)
				return nil, fmt.Errorf("AI(17) data is truncated")
			}
			yymmdd := code[i+2 : i+8]
			result.ExpiryDate = "20" + yymmdd[0:2] + yymmdd[2:4]
			i += 8
			continue
		}

		// (10) lot, variable length up to the next AI or the cap
		if strings.HasPrefix(code[i:], "10") {
			dataStart := i + 2
			dataEnd := dataStart
			maxLength := aiLengths["10"]

			for dataEnd < length {
				if dataEnd-dataStart >= maxLength {
					break
				}
				// Only split on a following AI that is complete.
				remaining := code[dataEnd:]
				if len(remaining) >= 2 {
					nextAI := remaining[:2]
					if nextAI == "01" && len(remaining) >= 16 {
						break
					}
					if nextAI == "17" && len(remaining) >= 8 {
						break
					}
				}
				dataEnd++
			}

			result.LotNumber = code[dataStart:dataEnd]
			i = dataEnd
			continue
		}

		// unknown AI: skip a character and look again
		i++
	}

	if result.Gtin14 == "" {
		return nil, fmt.Errorf("no AI(01) GTIN found in barcode")
	}
	return result, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

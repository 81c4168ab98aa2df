// Package filter turns free-text location codes into base buckets and narrows
// picklist rows by bucket, by location group and by search term.
package filter

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/width"

	"picklist/model"
)

// NormalizeLocation trims, folds full-width characters (scanner and IME input)
// to ASCII and upper-cases a location code.
func NormalizeLocation(loc string) string {
	return strings.ToUpper(width.Fold.String(strings.TrimSpace(loc)))
}

// leadingDigits returns the run of ASCII digits at the start of s.
func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return s[:i]
}

// BaseLocation maps a location code to its base bucket:
// A4R1 -> A4, A10L2 -> A10, B5 -> B5, B-01 -> B, AG-001 -> AG, AGB-01 -> none.
// The second result is false when the code belongs to no bucket.
func BaseLocation(loc string) (string, bool) {
	upper := NormalizeLocation(loc)
	if upper == "" {
		return "", false
	}

	if strings.HasPrefix(upper, "A") {
		if digits := leadingDigits(upper[1:]); digits != "" {
			return "A" + digits, true
		}
	}
	if strings.HasPrefix(upper, "B") {
		return "B" + leadingDigits(upper[1:]), true
	}
	if isAG(upper) {
		return "AG", true
	}
	return "", false
}

// isAG reports whether an upper-cased code is in the AG area: AG, AG-001, AG3,
// but not AGB-01, which only shares the letters.
func isAG(upper string) bool {
	if !strings.HasPrefix(upper, "AG") {
		return false
	}
	rest := upper[2:]
	return rest == "" || rest[0] < 'A' || rest[0] > 'Z'
}

// MatchesBase reports whether loc falls in the base bucket. Matching is
// prefix-boundary safe: A1 matches A1, A1L1 and A1-002 but never A10.
func MatchesBase(loc, base string) bool {
	upper := NormalizeLocation(loc)
	b := NormalizeLocation(base)
	if upper == "" || b == "" {
		return false
	}

	switch {
	case b == "AG":
		return isAG(upper)
	case b == "B":
		if !strings.HasPrefix(upper, "B") {
			return false
		}
		return leadingDigits(upper[1:]) == ""
	case strings.HasPrefix(b, "A") || strings.HasPrefix(b, "B"):
		num := b[1:]
		if num == "" || leadingDigits(num) != num {
			return false
		}
		prefix := b[:1] + num
		if !strings.HasPrefix(upper, prefix) {
			return false
		}
		rest := upper[len(prefix):]
		return rest == "" || rest[0] < '0' || rest[0] > '9'
	}
	return false
}

// MatchesAny reports whether loc falls in at least one of the buckets.
func MatchesAny(loc string, bases []string) bool {
	for _, b := range bases {
		if MatchesBase(loc, b) {
			return true
		}
	}
	return false
}

// FilterByBases keeps the rows whose location matches any selected bucket.
// An empty selection keeps everything; rows without a location are dropped otherwise.
func FilterByBases(items []model.InventoryItem, bases []string) []model.InventoryItem {
	if len(bases) == 0 {
		return items
	}
	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if MatchesAny(it.Location, bases) {
			out = append(out, it)
		}
	}
	return out
}

// BaseLocations returns the distinct buckets present in items, ordered
// A by number, then B (bare B first) by number, then AG.
func BaseLocations(items []model.InventoryItem) []string {
	seen := make(map[string]bool)
	var bases []string
	for _, it := range items {
		b, ok := BaseLocation(it.Location)
		if !ok || seen[b] {
			continue
		}
		seen[b] = true
		bases = append(bases, b)
	}

	sort.Slice(bases, func(i, j int) bool {
		ri, ni := baseRank(bases[i])
		rj, nj := baseRank(bases[j])
		if ri != rj {
			return ri < rj
		}
		if ni != nj {
			return ni < nj
		}
		return bases[i] < bases[j]
	})
	return bases
}

func baseRank(base string) (rank, num int) {
	switch {
	case base == "AG":
		return 2, 0
	case base == "B":
		return 1, -1
	case strings.HasPrefix(base, "A"):
		n, _ := strconv.Atoi(base[1:])
		return 0, n
	case strings.HasPrefix(base, "B"):
		n, _ := strconv.Atoi(base[1:])
		return 1, n
	}
	return 3, 0
}

// ParseBases splits a comma separated selection such as "A1, b5,AG".
func ParseBases(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := NormalizeLocation(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

package filter

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"picklist/model"
)

// aisleNumber returns n for an A<n>... location, 0 otherwise.
func aisleNumber(upper string) int {
	if !strings.HasPrefix(upper, "A") {
		return 0
	}
	n, err := strconv.Atoi(leadingDigits(upper[1:]))
	if err != nil {
		return 0
	}
	return n
}

// sortKey orders A1..A12 first, then B1, B2, ..., then everything else.
func sortKey(upper string) int {
	if n := aisleNumber(upper); n > 0 || strings.HasPrefix(upper, "A0") {
		return n
	}
	if strings.HasPrefix(upper, "B") {
		if digits := leadingDigits(upper[1:]); digits != "" {
			n, _ := strconv.Atoi(digits)
			return 100 + n
		}
	}
	return 999
}

// GroupFor returns the location group a code belongs to.
func GroupFor(loc string) (model.FilterType, bool) {
	upper := NormalizeLocation(loc)
	if upper == "" {
		return "", false
	}
	if n := aisleNumber(upper); n >= 1 && n <= 6 {
		return model.FilterA1A6, true
	} else if n >= 7 && n <= 12 {
		return model.FilterA7A12, true
	}
	if strings.HasPrefix(upper, "B") || MatchesBase(upper, "AG") {
		return model.FilterBAG, true
	}
	return "", false
}

// inGroup reports group membership; rows without a location belong to every group.
func inGroup(loc string, ft model.FilterType) bool {
	if NormalizeLocation(loc) == "" {
		return true
	}
	g, ok := GroupFor(loc)
	return ok && g == ft
}

// FilterByGroup keeps the rows of one location group, sorted by location.
func FilterByGroup(items []model.InventoryItem, ft model.FilterType) []model.InventoryItem {
	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if inGroup(it.Location, ft) {
			out = append(out, it)
		}
	}
	SortByLocation(out)
	return out
}

// SortByLocation sorts in place; empty locations go last.
func SortByLocation(items []model.InventoryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a := NormalizeLocation(items[i].Location)
		b := NormalizeLocation(items[j].Location)
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		ka, kb := sortKey(a), sortKey(b)
		if ka != kb {
			return ka < kb
		}
		return a < b
	})
}

// GroupTitle is the heading shown for a group.
func GroupTitle(ft model.FilterType) string {
	switch ft {
	case model.FilterA1A6:
		return "Locations A1-A6"
	case model.FilterA7A12:
		return "Locations A7-A12"
	case model.FilterBAG:
		return "Locations B/AG"
	default:
		return "Inventory"
	}
}

// ParseFilterType accepts the group names case-insensitively.
func ParseFilterType(s string) (model.FilterType, error) {
	for _, ft := range model.AllFilterTypes {
		if strings.EqualFold(strings.TrimSpace(s), string(ft)) {
			return ft, nil
		}
	}
	return "", fmt.Errorf("unknown location group %q", s)
}

// GroupCounts counts the rows of every group, in dashboard order.
func GroupCounts(items []model.InventoryItem) []model.GroupCount {
	counts := make([]model.GroupCount, 0, len(model.AllFilterTypes))
	for _, ft := range model.AllFilterTypes {
		n := 0
		for _, it := range items {
			if inGroup(it.Location, ft) {
				n++
			}
		}
		counts = append(counts, model.GroupCount{Filter: ft, Title: GroupTitle(ft), Count: n})
	}
	return counts
}

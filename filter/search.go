package filter

import (
	"strings"

	"picklist/barcode"
	"picklist/model"
)

// Search keeps the rows where the term appears in the product name, VFID,
// SKU number or location. A scanned barcode also matches its GTIN forms.
func Search(items []model.InventoryItem, term string) []model.InventoryItem {
	term = strings.TrimSpace(term)
	if term == "" {
		return items
	}

	needles := []string{strings.ToLower(term)}
	for _, f := range barcode.SearchForms(term) {
		if f != term {
			needles = append(needles, strings.ToLower(f))
		}
	}

	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		fields := []string{
			strings.ToLower(it.ProductName),
			strings.ToLower(it.VFID),
			strings.ToLower(it.SkuNumber),
			strings.ToLower(NormalizeLocation(it.Location)),
		}
		if containsAny(fields, needles) {
			out = append(out, it)
		}
	}
	return out
}

func containsAny(fields, needles []string) bool {
	for _, f := range fields {
		if f == "" {
			continue
		}
		for _, n := range needles {
			if strings.Contains(f, n) {
				return true
			}
		}
	}
	return false
}

// Remaining keeps the rows not yet checked.
func Remaining(items []model.InventoryItem) []model.InventoryItem {
	out := make([]model.InventoryItem, 0, len(items))
	for _, it := range items {
		if !it.Checked {
			out = append(out, it)
		}
	}
	return out
}

// mappers/mappers.go
package mappers

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"picklist/model"
)

// Header aliases seen in uploaded sheets, in lookup order.
var (
	productNameKeys = []string{"ProductName", "Product Name"}
	locationKeys    = []string{"Location"}
	vfidKeys        = []string{"VFID", "VF_ID", "VF ID"}
	skuKeys         = []string{"SkuNumber", "Sku Number", "SKU"}
	notesKeys       = []string{"Notes", "Note"}
	quantityKeys    = []string{"Quantity"}
	ordersKeys      = []string{"OrdersCount", "Orders Count", "Orders"}
	checkedKeys     = []string{"Checked"}
)

var knownHeaders = func() map[string]bool {
	m := make(map[string]bool)
	for _, keys := range [][]string{productNameKeys, locationKeys, vfidKeys, skuKeys, notesKeys, quantityKeys, ordersKeys, checkedKeys} {
		for _, k := range keys {
			m[k] = true
		}
	}
	return m
}()

// ToInventoryItem maps one raw sheet row (header -> cell) to an InventoryItem.
// Headers that are numbers ("1", "3", ...) become dynamic numeric columns.
func ToInventoryItem(raw map[string]any) model.InventoryItem {
	item := model.InventoryItem{
		ProductName: str(first(raw, productNameKeys)),
		Location:    str(first(raw, locationKeys)),
		VFID:        str(first(raw, vfidKeys)),
		SkuNumber:   str(first(raw, skuKeys)),
		Notes:       str(first(raw, notesKeys)),
		Quantity:    int(num(first(raw, quantityKeys))),
		OrdersCount: int(num(first(raw, ordersKeys))),
		Checked:     IsChecked(first(raw, checkedKeys)),
	}

	for k, v := range raw {
		key := strings.TrimSpace(k)
		if knownHeaders[key] {
			continue
		}
		if _, err := strconv.ParseFloat(key, 64); err != nil {
			continue
		}
		if item.Columns == nil {
			item.Columns = make(map[string]float64)
		}
		item.Columns[key] = num(v)
	}
	return item
}

// ToInventoryItems maps every row and drops rows without a VFID.
func ToInventoryItems(rows []map[string]any) []model.InventoryItem {
	items := make([]model.InventoryItem, 0, len(rows))
	for _, raw := range rows {
		item := ToInventoryItem(raw)
		if item.VFID == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

// IsChecked accepts the boolean true and the strings a sheet stores for it.
func IsChecked(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return strings.EqualFold(strings.TrimSpace(b), "true")
	}
	return false
}

// first returns the first non-empty value under any of the keys.
func first(raw map[string]any, keys []string) any {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return nil
}

func str(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

// num coerces a cell to a number; anything unparseable is 0.
func num(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0
		}
		f = parsed
	case bool:
		if n {
			f = 1
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

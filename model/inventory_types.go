// model/inventory_types.go
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// InventoryItem is one picklist row. The JSON keys follow the spreadsheet headers
// so rows round-trip through the script endpoint unchanged.
type InventoryItem struct {
	ProductName string             `db:"product_name" json:"ProductName"`
	Location    string             `db:"location" json:"Location"`
	VFID        string             `db:"vfid" json:"VFID"`
	Quantity    int                `db:"quantity" json:"Quantity"`
	OrdersCount int                `db:"orders_count" json:"OrdersCount"`
	SkuNumber   string             `db:"sku_number" json:"SkuNumber"`
	Checked     bool               `db:"checked" json:"Checked"`
	Notes       string             `db:"notes" json:"Notes"`
	Columns     map[string]float64 `db:"-" json:"-"`
}

var fixedItemKeys = map[string]bool{
	"ProductName": true, "Location": true, "VFID": true, "Quantity": true,
	"OrdersCount": true, "SkuNumber": true, "Checked": true, "Notes": true,
}

// itemFields mirrors InventoryItem without the methods so encoding/json does not recurse.
type itemFields InventoryItem

// MarshalJSON flattens the numeric columns ("1", "3", ...) next to the fixed fields.
func (it InventoryItem) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(itemFields(it))
	if err != nil {
		return nil, err
	}
	if len(it.Columns) == 0 {
		return base, nil
	}

	var flat map[string]any
	if err := json.Unmarshal(base, &flat); err != nil {
		return nil, err
	}
	for k, v := range it.Columns {
		if fixedItemKeys[k] {
			continue
		}
		flat[k] = v
	}
	return json.Marshal(flat)
}

// UnmarshalJSON accepts the flattened form produced by MarshalJSON.
// Any extra key whose value is a number is kept in Columns.
func (it *InventoryItem) UnmarshalJSON(data []byte) error {
	var fields itemFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if fixedItemKeys[k] {
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err != nil {
			continue
		}
		if fields.Columns == nil {
			fields.Columns = make(map[string]float64)
		}
		fields.Columns[k] = n
	}

	*it = InventoryItem(fields)
	return nil
}

// ColumnKeys returns the dynamic column names in numeric order.
func (it InventoryItem) ColumnKeys() []string {
	keys := make([]string, 0, len(it.Columns))
	for k := range it.Columns {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA == nil && errB == nil && a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Clone returns a deep copy; Columns is the only reference field.
func (it InventoryItem) Clone() InventoryItem {
	out := it
	if it.Columns != nil {
		out.Columns = make(map[string]float64, len(it.Columns))
		for k, v := range it.Columns {
			out.Columns[k] = v
		}
	}
	return out
}

func (it InventoryItem) String() string {
	return fmt.Sprintf("%s@%s", it.VFID, it.Location)
}

// FilterType names one of the fixed location groups shown on the dashboard.
type FilterType string

const (
	FilterA1A6  FilterType = "A1-A6"
	FilterA7A12 FilterType = "A7-A12"
	FilterBAG   FilterType = "B-AG"
)

// AllFilterTypes lists the groups in dashboard order.
var AllFilterTypes = []FilterType{FilterA1A6, FilterA7A12, FilterBAG}

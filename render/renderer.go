// render/renderer.go
package render

import (
	"fmt"
	"html"
	"sort"
	"strconv"
	"strings"

	"picklist/model"
)

// RenderInventoryTableHTML renders the picklist rows as a table fragment the
// page swaps in. Every value is HTML-escaped. The row whose VFID equals
// highlight, if any, is marked for scrolling into view.
func RenderInventoryTableHTML(items []model.InventoryItem, highlight string) string {
	keys := columnKeys(items)
	var sb strings.Builder

	// header: fixed columns, then one per numeric sheet column, then notes
	sb.WriteString(`<thead><tr>`)
	sb.WriteString(`<th class="col-check">Done</th>`)
	sb.WriteString(`<th class="col-location">Location</th>`)
	sb.WriteString(`<th class="col-vfid">VFID</th>`)
	sb.WriteString(`<th class="col-product">Product</th>`)
	sb.WriteString(`<th class="col-sku">SKU</th>`)
	sb.WriteString(`<th class="col-qty">Qty</th>`)
	sb.WriteString(`<th class="col-orders">Orders</th>`)
	for _, k := range keys {
		fmt.Fprintf(&sb, `<th class="col-num">%s</th>`, html.EscapeString(k))
	}
	sb.WriteString(`<th class="col-notes">Notes</th>`)
	sb.WriteString(`</tr></thead>`)

	sb.WriteString(`<tbody>`)
	// one cell spanning every column when the view is empty
	if len(items) == 0 {
		fmt.Fprintf(&sb, `<tr><td colspan="%d" class="empty">No items found.</td></tr>`, 8+len(keys))
	}
	for _, it := range items {
		vfid := html.EscapeString(it.VFID)

		// row classes drive the greyed-out and highlighted styles
		var classes []string
		if it.Checked {
			classes = append(classes, "checked")
		}
		if highlight != "" && it.VFID == highlight {
			classes = append(classes, "highlight")
		}
		fmt.Fprintf(&sb, `<tr data-vfid="%s" class="%s">`, vfid, strings.Join(classes, " "))

		// the page posts the checkbox and note changes using data-vfid
		checked := ""
		if it.Checked {
			checked = " checked"
		}
		fmt.Fprintf(&sb, `<td class="col-check"><input type="checkbox" class="item-check" data-vfid="%s"%s></td>`, vfid, checked)

		// rows without a location are called out instead of left blank
		if loc := strings.TrimSpace(it.Location); loc != "" {
			fmt.Fprintf(&sb, `<td class="col-location">%s</td>`, html.EscapeString(loc))
		} else {
			sb.WriteString(`<td class="col-location unassigned">Unassigned</td>`)
		}
		fmt.Fprintf(&sb, `<td class="col-vfid">%s</td>`, vfid)
		fmt.Fprintf(&sb, `<td class="col-product">%s</td>`, html.EscapeString(it.ProductName))
		fmt.Fprintf(&sb, `<td class="col-sku">%s</td>`, html.EscapeString(it.SkuNumber))
		fmt.Fprintf(&sb, `<td class="col-qty">%d</td>`, it.Quantity)
		fmt.Fprintf(&sb, `<td class="col-orders">%d</td>`, it.OrdersCount)
		// a row missing a column shows 0, like an empty sheet cell
		for _, k := range keys {
			fmt.Fprintf(&sb, `<td class="col-num">%s</td>`, formatNumber(it.Columns[k]))
		}
		fmt.Fprintf(&sb, `<td class="col-notes"><textarea class="item-note" data-vfid="%s" rows="1">%s</textarea></td>`,
			vfid, html.EscapeString(it.Notes))
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody>`)
	return sb.String()
}

// columnKeys is the union of the rows' numeric column names in numeric order.
func columnKeys(items []model.InventoryItem) []string {
	seen := map[string]bool{}
	var keys []string
	for _, it := range items {
		for _, k := range it.ColumnKeys() {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	// "2" before "10"; names that are not numbers fall back to text order
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.ParseFloat(keys[i], 64)
		b, errB := strconv.ParseFloat(keys[j], 64)
		if errA == nil && errB == nil && a != b {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// formatNumber prints 3 rather than 3.000000.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

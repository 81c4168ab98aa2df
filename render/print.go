package render

import (
	"bytes"
	"html/template"
	"strings"
	"time"

	"picklist/model"
)

var printTemplate = template.Must(template.New("print").
	Funcs(template.FuncMap{"trim": strings.TrimSpace}).
	Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: sans-serif; font-size: 11px; margin: 0; }
  h1 { font-size: 16px; margin: 0 0 4px; }
  .meta { color: #555; margin-bottom: 8px; }
  table { border-collapse: collapse; width: 100%; }
  th, td { border: 1px solid #999; padding: 3px 5px; text-align: left; vertical-align: top; }
  th { background: #eee; }
  tr { page-break-inside: avoid; }
  tr.checked td { color: #888; text-decoration: line-through; }
  .box { width: 12px; height: 12px; border: 1px solid #333; display: inline-block; }
  .box.done { background: #333; }
  .unassigned { color: #a00; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<div class="meta">{{.Printed}} · {{.Stats.Total}} items · {{.Stats.Remaining}} remaining · {{.Stats.OrdersTotal}} orders</div>
<table>
<thead><tr><th></th><th>Location</th><th>VFID</th><th>Product</th><th>SKU</th><th>Qty</th><th>Orders</th><th>Notes</th></tr></thead>
<tbody>
{{range .Items}}<tr{{if .Checked}} class="checked"{{end}}>
<td><span class="box{{if .Checked}} done{{end}}"></span></td>
<td{{if not (trim .Location)}} class="unassigned"{{end}}>{{with trim .Location}}{{.}}{{else}}Unassigned{{end}}</td>
<td>{{.VFID}}</td><td>{{.ProductName}}</td><td>{{.SkuNumber}}</td>
<td>{{.Quantity}}</td><td>{{.OrdersCount}}</td><td>{{.Notes}}</td>
</tr>
{{else}}<tr><td colspan="8">No items found.</td></tr>
{{end}}</tbody>
</table>
</body>
</html>
`))

// RenderPrintPageHTML renders a standalone page for paper or PDF output.
func RenderPrintPageHTML(title string, items []model.InventoryItem, stats model.Stats, printed time.Time) (string, error) {
	var buf bytes.Buffer
	err := printTemplate.Execute(&buf, map[string]any{
		"Title":   title,
		"Items":   items,
		"Stats":   stats,
		"Printed": printed.Format("2006-01-02 15:04"),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

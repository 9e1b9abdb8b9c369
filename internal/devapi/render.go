package devapi

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/tillpad/internal/bill"
	"github.com/MrJamesThe3rd/tillpad/internal/format"
)

const landingHTML = `<!doctype html>
<html>
<head>
<meta charset="utf-8">
<meta name="csrf-token" content="{{.Token}}">
<title>Tillpad dev backend</title>
</head>
<body><p>Tillpad development backend.</p></body>
</html>
`

const billHTML = `<div class="bill">
<h2>{{.Title}}</h2>
<p class="status">{{.Status}}</p>
<table>
<thead><tr><th>Item</th><th>Qty</th><th>Price</th><th>Total</th></tr></thead>
<tbody>
{{- range .Items}}
<tr><td>{{.ProductName}}</td><td>{{.Quantity}}</td><td>{{money .UnitPrice}}</td><td>{{money .LineTotal}}</td></tr>
{{- end}}
</tbody>
</table>
<dl class="totals">
<dt>Subtotal</dt><dd>{{money .Totals.Subtotal}}</dd>
{{- if .Discount}}
<dt>Discount</dt><dd>-{{money .Totals.Discount}}</dd>
{{- end}}
{{- if .Tax}}
<dt>{{.Tax.Name}}</dt><dd>{{money .Totals.Tax}}</dd>
{{- end}}
<dt>Total</dt><dd>{{money .Totals.Total}}</dd>
</dl>
</div>
`

var (
	landingTemplate = template.Must(template.New("landing").Parse(landingHTML))
	billTemplate    = template.Must(template.New("bill").Funcs(template.FuncMap{
		"money": format.Currency,
	}).Parse(billHTML))
)

type billView struct {
	bill.Bill
	Title  string
	Totals bill.Totals
}

func newBillView(b bill.Bill) billView {
	title := b.Number
	if title == "" {
		title = fmt.Sprintf("Bill %d", b.ID)
	}

	return billView{Bill: b, Title: title, Totals: totalsOf(b)}
}

// totalsOf prefers the frozen totals of a finalized bill.
func totalsOf(b bill.Bill) bill.Totals {
	if b.Totals != nil {
		return *b.Totals
	}

	return bill.Compute(b.Items, b.Discount, b.Tax)
}

func renderHTML(w io.Writer, b bill.Bill) error {
	return billTemplate.Execute(w, newBillView(b))
}

func previewHTML(b bill.Bill) (string, error) {
	var sb strings.Builder
	if err := renderHTML(&sb, b); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// renderPDF writes an A4 invoice. The core fonts have no rupee glyph, so
// amounts are written with "Rs.".
func renderPDF(w io.Writer, b bill.Bill) error {
	v := newBillView(b)

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string { return format.CurrencyWith(d, "Rs. ", 2) }

	pdf.SetTitle(v.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(v.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, tr(string(v.Status)+"  "+format.Date(v.CreatedAt)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{95, 20, 35, 40}

	pdf.SetFont("Helvetica", "B", 10)

	for i, h := range []string{"Item", "Qty", "Price", "Total"} {
		pdf.CellFormat(widths[i], 7, h, "B", 0, "L", false, 0, "")
	}

	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)

	for _, it := range v.Items {
		pdf.CellFormat(widths[0], 6, tr(format.Truncate(it.ProductName, 50)), "", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, fmt.Sprint(it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, money(it.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, money(it.LineTotal()), "", 1, "R", false, 0, "")
	}

	pdf.Ln(4)

	line := func(label, value string) {
		pdf.CellFormat(150, 6, tr(label), "", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, value, "", 1, "R", false, 0, "")
	}

	line("Subtotal", money(v.Totals.Subtotal))

	if v.Discount != nil {
		line("Discount", "-"+money(v.Totals.Discount))
	}

	if v.Tax != nil {
		line(v.Tax.Name, money(v.Totals.Tax))
	}

	pdf.SetFont("Helvetica", "B", 11)
	line("Total", money(v.Totals.Total))

	return pdf.Output(w)
}

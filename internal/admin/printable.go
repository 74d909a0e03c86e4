package admin

import (
	"html/template"
	"strings"

	"github.com/rightwater/orderdesk/internal/orders"
)

// Printable renders an order as a self-contained RTL HTML document suitable
// for handing straight to a print dialog. It is a pure function of the order
// already in memory plus an optional logo data URL; no store access.
func Printable(o orders.Order, logoDataURL string) (string, error) {
	var logo template.URL
	if strings.HasPrefix(logoDataURL, "data:image/") {
		logo = template.URL(logoDataURL)
	}
	var b strings.Builder
	err := printableTmpl.Execute(&b, printableData{
		Order: o,
		Logo:  logo,
		Date:  o.CreatedAt.Format("2006-01-02"),
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

type printableData struct {
	Order orders.Order
	Logo  template.URL
	Date  string
}

var printableTmpl = template.Must(template.New("printable").Funcs(template.FuncMap{
	"egp": orders.FormatEGP,
	"line": func(it orders.Item) int {
		return it.PriceCents * it.Qty
	},
}).Parse(`<!doctype html>
<html dir="rtl" lang="ar">
<head>
<meta charset="utf-8">
<title>تفاصيل الطلب {{.Order.ID}}</title>
<style>
body { font-family: sans-serif; padding: 20px; direction: rtl; color: #1f2937; }
.header { text-align: center; margin-bottom: 30px; border-bottom: 1px solid #ccc; padding-bottom: 10px; }
.logo { max-height: 60px; margin-bottom: 10px; }
h1 { font-size: 24px; margin-bottom: 10px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { padding: 8px; border: 1px solid #ddd; text-align: right; }
tfoot td { font-weight: 600; }
.customer { background: #f3f4f6; border-radius: 8px; padding: 16px; margin-top: 16px; }
</style>
</head>
<body>
<div class="header">
{{if .Logo}}<img class="logo" src="{{.Logo}}" alt="شعار المتجر">{{end}}
<h1>تفاصيل الطلب</h1>
<p>رقم الطلب: {{.Order.ID}}</p>
<p>التاريخ: {{.Date}}</p>
</div>
<div class="customer">
<p><strong>الاسم:</strong> {{.Order.Customer.Name}}</p>
<p><strong>الهاتف:</strong> {{.Order.Customer.Phone}}</p>
<p><strong>العنوان:</strong> {{.Order.Customer.Address}}، {{.Order.Customer.City}}{{if .Order.Customer.PostalCode}}، {{.Order.Customer.PostalCode}}{{end}}، {{.Order.Customer.Country}}</p>
<p><strong>طريقة الدفع:</strong> {{if eq .Order.PaymentMethod "cod"}}الدفع عند الاستلام{{else}}{{.Order.PaymentMethod}}{{end}}</p>
</div>
<table>
<thead>
<tr><th>المنتج</th><th>الكمية</th><th>السعر</th><th>الإجمالي</th></tr>
</thead>
<tbody>
{{range .Order.Items}}<tr><td>{{.Name}}</td><td>{{.Qty}}</td><td>{{egp .PriceCents}}</td><td>{{egp (line .)}}</td></tr>
{{end}}</tbody>
<tfoot>
<tr><td colspan="3">المجموع الفرعي</td><td>{{egp .Order.SubtotalCents}}</td></tr>
<tr><td colspan="3">الشحن</td><td>{{egp .Order.ShippingCents}}</td></tr>
<tr><td colspan="3">المجموع الكلي</td><td>{{egp .Order.TotalCents}}</td></tr>
</tfoot>
</table>
</body>
</html>
`))

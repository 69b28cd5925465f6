// Package bill renders a finalized order as a printable RTL HTML bill.
package bill

import (
	"html/template"
	"io"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/aym0707/storefront/internal/checkout"
	"github.com/aym0707/storefront/internal/money"
)

var ErrNoOrder = errors.New("no finalized order to render")

var billTemplate = template.Must(template.New("bill").Funcs(template.FuncMap{
	"group": func(d decimal.Decimal) string { return money.FormatGroups(d) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(billHTML))

const billHTML = `<!DOCTYPE html>
<html lang="fa" dir="rtl">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>پرنت بل خرید - فروشگاه AYM</title>
<style>
body {
    font-family: Tahoma, Arial, sans-serif;
    direction: rtl;
    text-align: right;
    padding: 20px;
    max-width: 800px;
    margin: 0 auto;
}
.bill-header {
    text-align: center;
    margin-bottom: 20px;
    border-bottom: 2px solid #333;
    padding-bottom: 15px;
}
.bill-table {
    width: 100%;
    border-collapse: collapse;
    margin: 20px 0;
}
.bill-table th, .bill-table td {
    border: 1px solid #333;
    padding: 8px;
    text-align: center;
}
.bill-table th {
    background-color: #f2f2f2;
    font-weight: bold;
}
.customer-info {
    background-color: #f9f9f9;
    padding: 15px;
    border-radius: 5px;
    margin-bottom: 20px;
}
.bill-footer {
    text-align: center;
    margin-top: 20px;
}
@media print {
    body { padding: 0; }
}
</style>
</head>
<body>
<div class="bill-header">
    <h2>فروشگاه آنلاین AYM</h2>
    <h3>بل خرید</h3>
    <p>تاریخ: {{.CreatedAt.Format "2006/01/02"}}</p>
    <p>زمان: {{.CreatedAt.Format "15:04:05"}}</p>
</div>
<div class="customer-info">
    <h4>اطلاعات مشتری</h4>
    <div><span>نام:</span> <span>{{.Customer.Name}}</span></div>
    <div><span>شماره تماس:</span> <span>{{.Customer.Phone}}</span></div>
    <div><span>آدرس:</span> <span>{{.Customer.Address}}</span></div>
</div>
<table class="bill-table">
    <thead>
        <tr>
            <th>#</th>
            <th>جنس</th>
            <th>تعداد</th>
            <th>قیمت واحد</th>
            <th>مجموع</th>
        </tr>
    </thead>
    <tbody>
{{- range $i, $item := .Items}}
        <tr>
            <td>{{inc $i}}</td>
            <td>{{$item.Name}}</td>
            <td>{{$item.Quantity}}</td>
            <td>{{group $item.UnitPrice}}</td>
            <td>{{group $item.LineTotal}} افغانی</td>
        </tr>
{{- end}}
    </tbody>
    <tfoot>
        <tr>
            <td colspan="4">مجموع کل:</td>
            <td>{{group .Total}} افغانی</td>
        </tr>
    </tfoot>
</table>
<div class="bill-footer">
    <p>تشکر از خرید شما</p>
    <p>برای پیگیری سفارش با شماره ۰۷۸۹۲۸۱۷۷۰ تماس بگیرید</p>
    <p>شماره بل: {{.Serial}}</p>
</div>
</body>
</html>
`

// Render writes the printable bill for order to w.
func Render(w io.Writer, order *checkout.OrderRecord) error {
	if order == nil || order.Serial == "" {
		return ErrNoOrder
	}
	if err := billTemplate.Execute(w, order); err != nil {
		return errors.Wrap(err, "execute template")
	}
	return nil
}

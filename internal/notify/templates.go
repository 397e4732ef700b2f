package notify

import "text/template"

var funcs = template.FuncMap{
	"money": moneyString,
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`Hello {{.User.Username}},

Thank you for shopping with us. Order #{{.Order.OrderID}} has been received and is being processed.

ORDER SUMMARY
{{range .Order.Lines}}- {{.Quantity}}x {{.ProductName}} ({{money .Price}})
{{end}}
-----------------------------------
Shipping address: {{.Order.Address}}, {{.Order.PostalCode}} {{.Order.City}}
Shipping: {{money .Order.ShippingCost}}
Total paid: {{money .Order.TotalPaid}}
-----------------------------------

We will email you again when your order ships.
`))

var saleAlertTmpl = template.Must(template.New("sale").Funcs(funcs).Parse(`New order #{{.Order.OrderID}} received.

CUSTOMER
Name: {{.User.Username}}{{if .User.FirstName}} ({{.User.FirstName}} {{.User.LastName}}){{end}}
Email: {{.User.Email}}
Phone: {{.Order.Phone}}

ITEMS
{{range .Order.Lines}}- {{.Quantity}}x {{.ProductName}} ({{money .Price}})
{{end}}
SHIPPING ADDRESS
{{.Order.Address}}
{{.Order.PostalCode}} {{.Order.City}}

Total: {{money .Order.TotalPaid}}
`))

var shippedTmpl = template.Must(template.New("shipped").Funcs(funcs).Parse(`Hello {{.User.Username}},

Good news: order #{{.Order.OrderID}} has shipped and is on its way to
{{.Order.Address}}, {{.Order.PostalCode}} {{.Order.City}}.
`))

var contactTmpl = template.Must(template.New("contact").Parse(`Message from {{.Name}} <{{.Email}}>
Subject: {{.Subject}}

{{.Body}}
`))

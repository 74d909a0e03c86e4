package notify

import (
	"fmt"
	"html"
	"strings"

	"github.com/rightwater/orderdesk/internal/orders"
)

// ItemsTableHTML renders the order lines as table rows for the mail
// templates, which wrap them in their own <table>.
func ItemsTableHTML(items []orders.Item) string {
	var b strings.Builder
	for _, it := range items {
		fmt.Fprintf(&b,
			`<tr><td style="padding:8px; border:1px solid #ddd;">%s</td>`+
				`<td style="padding:8px; border:1px solid #ddd; text-align:center;">%d</td>`+
				`<td style="padding:8px; border:1px solid #ddd; text-align:left;">%s</td></tr>`,
			html.EscapeString(it.Name), it.Qty, orders.FormatEGP(it.PriceCents))
		b.WriteString("\n")
	}
	return b.String()
}

func addressLine(c orders.CustomerInfo) string {
	parts := []string{c.Address, c.City}
	if c.PostalCode != "" {
		parts = append(parts, c.PostalCode)
	}
	parts = append(parts, c.Country)
	return strings.Join(parts, ", ")
}

func paymentLabel(method string) string {
	if method == "cod" {
		return "الدفع عند الاستلام"
	}
	return method
}

// baseParams is shared between the customer and merchant mails.
func baseParams(p orders.OrderPlacedPayload) map[string]string {
	return map[string]string{
		"to_name":          p.Customer.Name,
		"order_id":         p.OrderID,
		"order_total":      orders.FormatEGP(p.TotalCents),
		"order_address":    addressLine(p.Customer),
		"order_items_html": ItemsTableHTML(p.Items),
		"customer_phone":   p.Customer.Phone,
		"payment_method":   paymentLabel(p.PaymentMethod),
	}
}

// CustomerParams addresses the confirmation mail to the buyer.
func CustomerParams(p orders.OrderPlacedPayload, storeName, merchantEmail string) map[string]string {
	m := baseParams(p)
	m["to_email"] = p.Customer.Email
	m["from_name"] = storeName
	m["support_email"] = merchantEmail
	return m
}

// MerchantParams addresses the new-order alert to the store, with reply-to
// pointing back at the buyer.
func MerchantParams(p orders.OrderPlacedPayload, storeName, merchantEmail string) map[string]string {
	m := baseParams(p)
	m["to_email"] = merchantEmail
	m["client_email"] = p.Customer.Email
	m["from_name"] = storeName + " - إشعار طلب جديد"
	m["reply_to"] = p.Customer.Email
	return m
}

package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rightwater/orderdesk/internal/orders"
)

func placedPayload() orders.OrderPlacedPayload {
	return orders.OrderPlacedPayload{
		OrderID: "ord-42",
		UserID:  "u1",
		Customer: orders.CustomerInfo{
			Name: "Ahmed Hassan", Email: "ahmed@example.com", Phone: "+201001234567",
			Address: "12 Nile Corniche Street", City: "Giza", Country: "Egypt",
		},
		Items: []orders.Item{
			{ProductID: "p1", Name: "Filter A", PriceCents: 10000, Qty: 2},
		},
		SubtotalCents: 20000,
		ShippingCents: 5000,
		TotalCents:    25000,
		PaymentMethod: "cod",
	}
}

func TestItemsTableHTMLEscapes(t *testing.T) {
	rows := ItemsTableHTML([]orders.Item{
		{Name: `<b>Filter & "Co"</b>`, PriceCents: 100, Qty: 1},
	})
	assert.NotContains(t, rows, "<b>")
	assert.Contains(t, rows, "&lt;b&gt;Filter &amp;")
	assert.Contains(t, rows, "1.00 ج.م")
}

func TestCustomerParams(t *testing.T) {
	m := CustomerParams(placedPayload(), "Right Water", "orders@rightwater.example")

	assert.Equal(t, "ahmed@example.com", m["to_email"])
	assert.Equal(t, "Ahmed Hassan", m["to_name"])
	assert.Equal(t, "Right Water", m["from_name"])
	assert.Equal(t, "orders@rightwater.example", m["support_email"])
	assert.Equal(t, "ord-42", m["order_id"])
	assert.Equal(t, "250.00 ج.م", m["order_total"])
	assert.Equal(t, "الدفع عند الاستلام", m["payment_method"])
	assert.Equal(t, "12 Nile Corniche Street, Giza, Egypt", m["order_address"])
	assert.Contains(t, m["order_items_html"], "Filter A")
}

func TestMerchantParams(t *testing.T) {
	m := MerchantParams(placedPayload(), "Right Water", "orders@rightwater.example")

	assert.Equal(t, "orders@rightwater.example", m["to_email"])
	assert.Equal(t, "ahmed@example.com", m["reply_to"])
	assert.Equal(t, "ahmed@example.com", m["client_email"])
	assert.Equal(t, "Right Water - إشعار طلب جديد", m["from_name"])
}

func TestAddressLineIncludesPostalCodeWhenPresent(t *testing.T) {
	p := placedPayload()
	p.Customer.PostalCode = "12511"
	m := CustomerParams(p, "Right Water", "orders@rightwater.example")
	assert.Equal(t, "12 Nile Corniche Street, Giza, 12511, Egypt", m["order_address"])
}

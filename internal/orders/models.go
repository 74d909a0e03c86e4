package orders

import "time"

// CustomerInfo is the shipping/contact snapshot captured at checkout.
// It is denormalized into the order and never re-synced to the user profile.
type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Item is one order line. Name and price are snapshots taken when the
// order was placed, not live catalog data.
type Item struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
	ImageURL   string `json:"image_url,omitempty"`
}

type Order struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	Customer      CustomerInfo `json:"customer"`
	Items         []Item       `json:"items"`
	SubtotalCents int          `json:"subtotal_cents"`
	ShippingCents int          `json:"shipping_cents"`
	TotalCents    int          `json:"total_cents"`
	Status        Status       `json:"status"`
	PaymentMethod string       `json:"payment_method"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Summary is the row shape used by the admin order list.
type Summary struct {
	ID           string    `json:"id"`
	CustomerName string    `json:"customer_name"`
	TotalCents   int       `json:"total_cents"`
	Status       Status    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StockAdjustment is one product decrement tied to an order line.
type StockAdjustment struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

type ProductSales struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	UnitsSold int    `json:"units_sold"`
}

// Stats backs the admin dashboard overview cards.
type Stats struct {
	TotalRevenueCents int64          `json:"total_revenue_cents"`
	TotalOrders       int            `json:"total_orders"`
	TotalProducts     int            `json:"total_products"`
	TotalCustomers    int            `json:"total_customers"`
	RecentOrders      []Summary      `json:"recent_orders"`
	TopProducts       []ProductSales `json:"top_products"`
}

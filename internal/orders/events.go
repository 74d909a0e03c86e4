package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced = "OrderPlaced"
)

// Envelope is the wire format for order events. Payload holds the
// event-specific body.
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// OrderPlacedPayload carries everything the notifier needs to build both
// the customer and merchant emails without reading the store.
type OrderPlacedPayload struct {
	OrderID       string       `json:"order_id"`
	UserID        string       `json:"user_id"`
	Customer      CustomerInfo `json:"customer"`
	Items         []Item       `json:"items"`
	SubtotalCents int          `json:"subtotal_cents"`
	ShippingCents int          `json:"shipping_cents"`
	TotalCents    int          `json:"total_cents"`
	PaymentMethod string       `json:"payment_method"`
}

package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/rightwater/orderdesk/internal/kafka"
	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
)

var (
	ErrEmptyCart   = errors.New("cart is empty")
	ErrInvalidItem = errors.New("invalid cart item")
)

// OrderStore persists the order document; success here is the durability
// point of a submission.
type OrderStore interface {
	CreateOrder(ctx context.Context, o *orders.Order) (string, error)
}

// StockStore applies the per-product decrements.
type StockStore interface {
	DecrementStock(ctx context.Context, adjs []orders.StockAdjustment) error
}

// Publisher is the async event producer feeding the notifier.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// ChangeFeed pushes order changes to live admin views.
type ChangeFeed interface {
	PublishChange(ctx context.Context, ev livefeed.Event)
}

// CartClearer drops the user's stored cart snapshot after a successful order.
type CartClearer interface {
	Clear(ctx context.Context, userID string) error
}

type Receipt struct {
	OrderID       string `json:"order_id"`
	SubtotalCents int    `json:"subtotal_cents"`
	ShippingCents int    `json:"shipping_cents"`
	TotalCents    int    `json:"total_cents"`
}

type Service struct {
	Orders OrderStore
	Stock  StockStore
	Events Publisher
	Feed   ChangeFeed
	Cart   CartClearer
	Log    *zap.Logger

	ShippingFeeCents int
	ServiceName      string

	validate *validator.Validate
}

func NewService(store OrderStore, stock StockStore, events Publisher, feed ChangeFeed,
	cart CartClearer, log *zap.Logger, shippingFeeCents int, serviceName string) *Service {
	return &Service{
		Orders:           store,
		Stock:            stock,
		Events:           events,
		Feed:             feed,
		Cart:             cart,
		Log:              log,
		ShippingFeeCents: shippingFeeCents,
		ServiceName:      serviceName,
		validate:         newValidator(),
	}
}

// Submit runs the order placement sequence: validate, persist, decrement
// stock, notify, clear cart. Once the order row is committed everything
// after it is best-effort; a recorded order with possibly stale inventory
// beats a lost order.
func (s *Service) Submit(ctx context.Context, userID string, form Form, items []orders.Item) (Receipt, error) {
	if len(items) == 0 {
		return Receipt{}, ErrEmptyCart
	}
	for _, it := range items {
		if it.ProductID == "" || it.Qty <= 0 || it.PriceCents < 0 {
			return Receipt{}, fmt.Errorf("%w: product=%q qty=%d", ErrInvalidItem, it.ProductID, it.Qty)
		}
	}
	if err := ValidateForm(s.validate, form); err != nil {
		return Receipt{}, err
	}

	subtotal := 0
	for _, it := range items {
		subtotal += it.PriceCents * it.Qty
	}
	shipping := 0
	if subtotal > 0 {
		shipping = s.ShippingFeeCents
	}

	o := &orders.Order{
		UserID: userID,
		Customer: orders.CustomerInfo{
			Name:       form.FirstName + " " + form.LastName,
			Email:      form.Email,
			Phone:      form.Phone,
			Address:    form.Address,
			City:       form.City,
			Country:    form.Country,
			PostalCode: form.PostalCode,
		},
		Items:         items,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    subtotal + shipping,
		Status:        orders.StatusPending,
		PaymentMethod: "cod",
	}
	orderID, err := s.Orders.CreateOrder(ctx, o)
	if err != nil {
		return Receipt{}, fmt.Errorf("create order: %w", err)
	}

	// The order exists; stock, events and cart cleanup must not undo it.
	adjs := make([]orders.StockAdjustment, 0, len(items))
	for _, it := range items {
		adjs = append(adjs, orders.StockAdjustment{ProductID: it.ProductID, Qty: it.Qty})
	}
	if err := s.Stock.DecrementStock(ctx, adjs); err != nil {
		s.Log.Error("stock decrement failed after order commit",
			zap.String("order_id", orderID), zap.Error(err))
	}

	s.publishPlaced(o)
	s.Feed.PublishChange(ctx, livefeed.Event{
		Type: livefeed.TypeCreated, OrderID: orderID, Status: o.Status,
	})

	if err := s.Cart.Clear(ctx, userID); err != nil {
		s.Log.Warn("clear cart failed", zap.String("user_id", userID), zap.Error(err))
	}

	return Receipt{
		OrderID:       orderID,
		SubtotalCents: subtotal,
		ShippingCents: shipping,
		TotalCents:    o.TotalCents,
	}, nil
}

func (s *Service) publishPlaced(o *orders.Order) {
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPlaced,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: o.ID,
		Payload: kafkax.MustMarshal(orders.OrderPlacedPayload{
			OrderID:       o.ID,
			UserID:        o.UserID,
			Customer:      o.Customer,
			Items:         o.Items,
			SubtotalCents: o.SubtotalCents,
			ShippingCents: o.ShippingCents,
			TotalCents:    o.TotalCents,
			PaymentMethod: o.PaymentMethod,
		}),
	}
	s.Events.Publish(orders.PartitionKey(o.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPlaced)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	kafkax "github.com/rightwater/orderdesk/internal/kafka"
	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
)

type fakeOrderStore struct {
	created []orders.Order
	err     error
}

func (f *fakeOrderStore) CreateOrder(ctx context.Context, o *orders.Order) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	o.ID = uuid.NewString()
	o.CreatedAt = time.Now().UTC()
	f.created = append(f.created, *o)
	return o.ID, nil
}

type fakeStock struct {
	batches [][]orders.StockAdjustment
	err     error
}

func (f *fakeStock) DecrementStock(ctx context.Context, adjs []orders.StockAdjustment) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, adjs)
	return nil
}

type fakePublisher struct{ values [][]byte }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.values = append(f.values, value)
}

type fakeFeed struct{ events []livefeed.Event }

func (f *fakeFeed) PublishChange(ctx context.Context, ev livefeed.Event) {
	f.events = append(f.events, ev)
}

type fakeCart struct {
	cleared []string
	err     error
}

func (f *fakeCart) Clear(ctx context.Context, userID string) error {
	if f.err != nil {
		return f.err
	}
	f.cleared = append(f.cleared, userID)
	return nil
}

type fixture struct {
	svc   *Service
	store *fakeOrderStore
	stock *fakeStock
	pub   *fakePublisher
	feed  *fakeFeed
	cart  *fakeCart
}

func newFixture() *fixture {
	f := &fixture{
		store: &fakeOrderStore{},
		stock: &fakeStock{},
		pub:   &fakePublisher{},
		feed:  &fakeFeed{},
		cart:  &fakeCart{},
	}
	f.svc = NewService(f.store, f.stock, f.pub, f.feed, f.cart, zap.NewNop(), 50, "test-api")
	return f
}

func cartOneFilter() []orders.Item {
	return []orders.Item{{ProductID: "p1", Name: "Filter A", PriceCents: 100, Qty: 2}}
}

func TestSubmitComputesTotals(t *testing.T) {
	f := newFixture()

	r, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.NoError(t, err)

	assert.Equal(t, 200, r.SubtotalCents)
	assert.Equal(t, 50, r.ShippingCents)
	assert.Equal(t, 250, r.TotalCents)
	assert.NotEmpty(t, r.OrderID)

	require.Len(t, f.store.created, 1)
	o := f.store.created[0]
	assert.Equal(t, orders.StatusPending, o.Status)
	assert.Equal(t, "cod", o.PaymentMethod)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, "Ahmed Hassan", o.Customer.Name)
	assert.Equal(t, o.SubtotalCents+o.ShippingCents, o.TotalCents)

	require.Len(t, f.stock.batches, 1)
	require.Len(t, f.stock.batches[0], 1)
	assert.Equal(t, orders.StockAdjustment{ProductID: "p1", Qty: 2}, f.stock.batches[0][0])

	require.Len(t, f.cart.cleared, 1)
	assert.Equal(t, "u1", f.cart.cleared[0])
}

func TestSubmitDistinctOrderIDs(t *testing.T) {
	f := newFixture()
	r1, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.NoError(t, err)
	r2, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.NoError(t, err)
	assert.NotEqual(t, r1.OrderID, r2.OrderID, "identical carts must still get fresh ids")
}

func TestSubmitEmptyCartRejectedBeforeStore(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Submit(context.Background(), "u1", validForm(), nil)
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Empty(t, f.store.created, "no order document may be created")
	assert.Empty(t, f.stock.batches)
	assert.Empty(t, f.pub.values)
}

func TestSubmitInvalidItemRejected(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Submit(context.Background(), "u1", validForm(),
		[]orders.Item{{ProductID: "p1", Qty: 0, PriceCents: 100}})
	require.ErrorIs(t, err, ErrInvalidItem)
	assert.Empty(t, f.store.created)
}

func TestSubmitValidationFailureSkipsStore(t *testing.T) {
	f := newFixture()
	form := validForm()
	form.Email = "nope"

	_, err := f.svc.Submit(context.Background(), "u1", form, cartOneFilter())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Empty(t, f.store.created)
	assert.Empty(t, f.stock.batches)
}

func TestSubmitStoreFailureStopsFlow(t *testing.T) {
	f := newFixture()
	f.store.err = errors.New("store down")

	_, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.Error(t, err)
	assert.Empty(t, f.stock.batches, "no decrement without a recorded order")
	assert.Empty(t, f.pub.values)
	assert.Empty(t, f.cart.cleared)
}

func TestSubmitStockFailureDoesNotUndoOrder(t *testing.T) {
	f := newFixture()
	f.stock.err = errors.New("catalog unavailable")

	r, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.NoError(t, err, "order wins: stock failure is non-fatal")
	assert.NotEmpty(t, r.OrderID)
	require.Len(t, f.store.created, 1)
	assert.Len(t, f.pub.values, 1, "notification still dispatched")
}

func TestSubmitCartClearFailureNonFatal(t *testing.T) {
	f := newFixture()
	f.cart.err = errors.New("redis down")

	_, err := f.svc.Submit(context.Background(), "u1", validForm(), cartOneFilter())
	require.NoError(t, err)
}

func TestSubmitPublishesOrderPlacedAndChange(t *testing.T) {
	f := newFixture()
	r, err := f.svc.Submit(context.Background(), "u9", validForm(), cartOneFilter())
	require.NoError(t, err)

	require.Len(t, f.pub.values, 1)
	var env orders.Envelope
	require.NoError(t, json.Unmarshal(f.pub.values[0], &env))
	assert.Equal(t, orders.EventOrderPlaced, env.EventType)
	assert.Equal(t, r.OrderID, env.CorrelationID)

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	require.NoError(t, err)
	assert.Equal(t, r.OrderID, p.OrderID)
	assert.Equal(t, 250, p.TotalCents)
	assert.Equal(t, "ahmed@example.com", p.Customer.Email)

	require.Len(t, f.feed.events, 1)
	assert.Equal(t, livefeed.TypeCreated, f.feed.events[0].Type)
	assert.Equal(t, r.OrderID, f.feed.events[0].OrderID)
}

package admin

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
)

// fakeStore keeps summaries newest-first, like the real repo's query does.
type fakeStore struct {
	rows    []orders.Summary
	details map[string]orders.Order
	stats   orders.Stats

	failBulk bool
	deleted  []string
}

func (f *fakeStore) ListOrders(ctx context.Context, status orders.Status) ([]orders.Summary, error) {
	var out []orders.Summary
	for _, s := range f.rows {
		if status == "" || s.Status == status {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) SetStatus(ctx context.Context, orderID string, status orders.Status) error {
	for i := range f.rows {
		if f.rows[i].ID == orderID {
			f.rows[i].Status = status
			return nil
		}
	}
	return orders.ErrNotFound
}

func (f *fakeStore) BulkSetStatus(ctx context.Context, orderIDs []string, status orders.Status) error {
	if f.failBulk {
		return errors.New("batch write failed")
	}
	// all-or-nothing: verify every id first, then apply
	idx := make(map[string]int, len(f.rows))
	for i, s := range f.rows {
		idx[s.ID] = i
	}
	for _, id := range orderIDs {
		if _, ok := idx[id]; !ok {
			return orders.ErrNotFound
		}
	}
	for _, id := range orderIDs {
		f.rows[idx[id]].Status = status
	}
	return nil
}

func (f *fakeStore) DeleteOrder(ctx context.Context, orderID string) error {
	for i, s := range f.rows {
		if s.ID == orderID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			f.deleted = append(f.deleted, orderID)
			return nil
		}
	}
	return orders.ErrNotFound
}

func (f *fakeStore) OrderDetail(ctx context.Context, orderID string) (orders.Order, error) {
	o, ok := f.details[orderID]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (f *fakeStore) Stats(ctx context.Context) (orders.Stats, error) { return f.stats, nil }

type recordingFeed struct{ events []livefeed.Event }

func (r *recordingFeed) PublishChange(ctx context.Context, ev livefeed.Event) {
	r.events = append(r.events, ev)
}

func seedStore(n int) *fakeStore {
	f := &fakeStore{details: map[string]orders.Order{}}
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		st := orders.StatusPending
		if i%2 == 1 {
			st = orders.StatusShipped
		}
		// newest first
		f.rows = append(f.rows, orders.Summary{
			ID:           fmt.Sprintf("ord-%03d", n-i),
			CustomerName: fmt.Sprintf("Customer %03d", n-i),
			TotalCents:   1000 * (n - i),
			Status:       st,
			CreatedAt:    base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return f
}

func newConsole(f *fakeStore) (*Console, *recordingFeed) {
	feed := &recordingFeed{}
	return &Console{Store: f, Feed: feed, Log: zap.NewNop()}, feed
}

func TestListPaginates(t *testing.T) {
	c, _ := newConsole(seedStore(25))

	p, err := c.List(context.Background(), Filter{}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 25, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	require.Len(t, p.Orders, 10)
	assert.Equal(t, "ord-025", p.Orders[0].ID, "newest first")

	p3, err := c.List(context.Background(), Filter{}, 3, 10)
	require.NoError(t, err)
	assert.Len(t, p3.Orders, 5)

	empty, err := c.List(context.Background(), Filter{}, 9, 10)
	require.NoError(t, err)
	assert.Empty(t, empty.Orders)
	assert.Equal(t, 25, empty.Total)
}

func TestListSearchMatchesIDAndName(t *testing.T) {
	c, _ := newConsole(seedStore(25))

	byID, err := c.List(context.Background(), Filter{Search: "ORD-007"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, byID.Orders, 1)
	assert.Equal(t, "ord-007", byID.Orders[0].ID)

	byName, err := c.List(context.Background(), Filter{Search: "customer 01"}, 1, 20)
	require.NoError(t, err)
	assert.Len(t, byName.Orders, 10, "customer 010..019")
}

func TestListStatusFilter(t *testing.T) {
	c, _ := newConsole(seedStore(10))
	p, err := c.List(context.Background(), Filter{Status: orders.StatusShipped}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Total)
	for _, s := range p.Orders {
		assert.Equal(t, orders.StatusShipped, s.Status)
	}

	_, err = c.List(context.Background(), Filter{Status: "bogus"}, 1, 20)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestSetStatusIsPermissive(t *testing.T) {
	f := seedStore(1)
	f.rows[0].Status = orders.StatusDelivered
	c, feed := newConsole(f)

	// any known status is assignable from any other, including going backwards
	for _, s := range orders.AllStatuses() {
		require.NoError(t, c.SetStatus(context.Background(), f.rows[0].ID, s))
		assert.Equal(t, s, f.rows[0].Status)
	}
	assert.Len(t, feed.events, len(orders.AllStatuses()))
}

func TestSetStatusUnknownRejected(t *testing.T) {
	f := seedStore(1)
	c, feed := newConsole(f)
	err := c.SetStatus(context.Background(), f.rows[0].ID, "refunded")
	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Empty(t, feed.events)
}

func TestBulkSetStatusAllOrNothing(t *testing.T) {
	f := seedStore(6)
	c, feed := newConsole(f)
	ids := []string{f.rows[0].ID, f.rows[2].ID, f.rows[4].ID}

	require.NoError(t, c.BulkSetStatus(context.Background(), ids, orders.StatusShipped))
	for _, i := range []int{0, 2, 4} {
		assert.Equal(t, orders.StatusShipped, f.rows[i].Status)
	}
	assert.Len(t, feed.events, 3, "one change event per updated order")

	// simulated batch failure: nothing is applied and nothing is announced
	before := statusSnapshot(f)
	f.failBulk = true
	feed.events = nil
	err := c.BulkSetStatus(context.Background(), ids, orders.StatusCancelled)
	require.Error(t, err)
	assert.Equal(t, before, statusSnapshot(f))
	assert.Empty(t, feed.events)
}

func TestBulkSetStatusMissingIDRollsBack(t *testing.T) {
	f := seedStore(3)
	c, _ := newConsole(f)
	before := statusSnapshot(f)
	err := c.BulkSetStatus(context.Background(),
		[]string{f.rows[0].ID, "ord-missing"}, orders.StatusDelivered)
	require.ErrorIs(t, err, orders.ErrNotFound)
	assert.Equal(t, before, statusSnapshot(f))
}

func TestBulkSetStatusEmptySelection(t *testing.T) {
	c, _ := newConsole(seedStore(3))
	err := c.BulkSetStatus(context.Background(), nil, orders.StatusShipped)
	assert.ErrorIs(t, err, ErrNoSelection)
}

func TestDeletePublishesChange(t *testing.T) {
	f := seedStore(2)
	c, feed := newConsole(f)
	id := f.rows[0].ID

	require.NoError(t, c.Delete(context.Background(), id))
	assert.Equal(t, []string{id}, f.deleted)
	require.Len(t, feed.events, 1)
	assert.Equal(t, livefeed.TypeDeleted, feed.events[0].Type)

	assert.ErrorIs(t, c.Delete(context.Background(), id), orders.ErrNotFound)
}

func statusSnapshot(f *fakeStore) map[string]orders.Status {
	m := make(map[string]orders.Status, len(f.rows))
	for _, s := range f.rows {
		m[s.ID] = s.Status
	}
	return m
}

package livefeed

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/orders"
)

func newFeed(t *testing.T) *Feed {
	t.Helper()
	mr := miniredis.RunT(t)
	return &Feed{
		RDB: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Log: zap.NewNop(),
	}
}

func TestPublishReachesSubscriber(t *testing.T) {
	f := newFeed(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := f.Subscribe(ctx)

	want := Event{Type: TypeStatus, OrderID: "ord-1", Status: orders.StatusShipped}

	// the subscription goroutine may not be attached yet, so keep
	// publishing until the event lands
	deadline := time.After(2 * time.Second)
	tick := time.NewTicker(20 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case got := <-ch:
			assert.Equal(t, want.Type, got.Type)
			assert.Equal(t, want.OrderID, got.OrderID)
			assert.Equal(t, want.Status, got.Status)
			assert.False(t, got.At.IsZero(), "publish stamps the event time")
			return
		case <-tick.C:
			f.PublishChange(ctx, want)
		case <-deadline:
			t.Fatal("event never arrived")
		}
	}
}

func TestSubscribeClosesOnContextCancel(t *testing.T) {
	f := newFeed(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch := f.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel must be closed, not delivering")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestPublishChangeSurvivesDownRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	f := &Feed{
		RDB: redis.NewClient(&redis.Options{Addr: mr.Addr()}),
		Log: zap.NewNop(),
	}
	mr.Close()

	// must not panic or block; errors are logged only
	f.PublishChange(context.Background(), Event{Type: TypeDeleted, OrderID: "ord-9"})
}

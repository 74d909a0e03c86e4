package livefeed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/orders"
	"github.com/rightwater/orderdesk/internal/redisx"
)

const (
	TypeCreated = "created"
	TypeStatus  = "status"
	TypeDeleted = "deleted"
)

// Event is one order change pushed to live admin views.
type Event struct {
	Type    string        `json:"type"`
	OrderID string        `json:"order_id"`
	Status  orders.Status `json:"status,omitempty"`
	At      time.Time     `json:"at"`
}

// Feed fans order changes out through a Redis pub/sub channel so every API
// instance sees mutations made through any other instance.
type Feed struct {
	RDB *redis.Client
	Log *zap.Logger
}

// PublishChange is best-effort: a down feed never fails the mutation that
// triggered it.
func (f *Feed) PublishChange(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	b, err := json.Marshal(ev)
	if err != nil {
		f.Log.Error("marshal change event", zap.Error(err))
		return
	}
	if err := f.RDB.Publish(ctx, redisx.ChannelOrderChanges, b).Err(); err != nil {
		f.Log.Warn("publish change event", zap.String("order_id", ev.OrderID), zap.Error(err))
	}
}

// Subscribe opens a subscription that lives exactly as long as ctx: the
// returned channel is closed when ctx ends, and the underlying pub/sub
// connection is released on every exit path. Events a slow receiver cannot
// keep up with are dropped rather than blocking the feed.
func (f *Feed) Subscribe(ctx context.Context) <-chan Event {
	sub := f.RDB.Subscribe(ctx, redisx.ChannelOrderChanges)
	out := make(chan Event, 64)

	go func() {
		defer close(out)
		defer sub.Close()
		in := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
					f.Log.Warn("bad change event", zap.Error(err))
					continue
				}
				select {
				case out <- ev:
				default:
					f.Log.Warn("dropping change event for slow subscriber",
						zap.String("order_id", ev.OrderID))
				}
			}
		}
	}()
	return out
}

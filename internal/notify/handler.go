package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/rightwater/orderdesk/internal/kafka"
	"github.com/rightwater/orderdesk/internal/orders"
	"github.com/rightwater/orderdesk/internal/redisx"
)

// Handler consumes order-placed events and dispatches the customer and
// merchant emails. Mail failures are logged and swallowed: notification is
// best-effort by contract and must never hold up or fail an order, so the
// handler always lets the offset commit.
type Handler struct {
	Mailer Mailer
	Redis  *redis.Client
	Log    *zap.Logger

	StoreName        string
	MerchantEmail    string
	CustomerTemplate string
	MerchantTemplate string
}

func (h *Handler) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	}

	// dedup by event id so a redelivered event does not double-mail
	dkey := fmt.Sprintf(redisx.KeyDedup, "notifier", env.EventID)
	if seen, _ := redisx.Exists(ctx, h.Redis, dkey); seen {
		return nil
	}
	_ = h.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	if err := h.Mailer.Send(ctx, h.CustomerTemplate,
		CustomerParams(p, h.StoreName, h.MerchantEmail)); err != nil {
		h.Log.Error("customer mail failed",
			zap.String("order_id", p.OrderID), zap.Error(err))
	}
	if err := h.Mailer.Send(ctx, h.MerchantTemplate,
		MerchantParams(p, h.StoreName, h.MerchantEmail)); err != nil {
		h.Log.Error("merchant mail failed",
			zap.String("order_id", p.OrderID), zap.Error(err))
	}
	return nil
}

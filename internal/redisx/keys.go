package redisx

import "time"

const (
	// Cart snapshot per user: cart:{user_id} -> JSON []orders.Item
	KeyCart = "cart:%s"

	// Dedup for event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

// Pub/sub channel carrying order change events for the live admin view.
const ChannelOrderChanges = "orders.changes"

var (
	TTLCart  = 7 * 24 * time.Hour
	TTLDedup = 48 * time.Hour
)

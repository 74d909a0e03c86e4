package orders

const (
	TopicOrderPlaced = "orders.placed"
)

// Partition key = order_id so events for one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

package orders

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusDelayed    Status = "delayed"
)

var known = map[Status]bool{
	StatusPending:    true,
	StatusProcessing: true,
	StatusShipped:    true,
	StatusDelivered:  true,
	StatusCancelled:  true,
	StatusDelayed:    true,
}

// Valid reports whether s is a known status value. There is deliberately no
// transition table: an admin may move an order between any two statuses and
// the last write wins.
func (s Status) Valid() bool { return known[s] }

func AllStatuses() []Status {
	return []Status{
		StatusPending, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusDelayed,
	}
}

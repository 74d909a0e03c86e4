package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
)

var (
	ErrUnknownStatus = errors.New("unknown status")
	ErrNoSelection   = errors.New("no orders selected")
)

// Store is the order-query/mutation surface the console needs. The pgx repo
// implements it; tests use an in-memory fake.
type Store interface {
	ListOrders(ctx context.Context, status orders.Status) ([]orders.Summary, error)
	SetStatus(ctx context.Context, orderID string, status orders.Status) error
	BulkSetStatus(ctx context.Context, orderIDs []string, status orders.Status) error
	DeleteOrder(ctx context.Context, orderID string) error
	OrderDetail(ctx context.Context, orderID string) (orders.Order, error)
	Stats(ctx context.Context) (orders.Stats, error)
}

type ChangeFeed interface {
	PublishChange(ctx context.Context, ev livefeed.Event)
}

// Console is the single canonical order-management component. Every admin
// surface goes through it instead of re-deriving query, filter and
// pagination logic per screen.
type Console struct {
	Store Store
	Feed  ChangeFeed
	Log   *zap.Logger
}

type Filter struct {
	// Search matches case-insensitively against order id and customer name.
	Search string
	// Status narrows to one status; empty means all.
	Status orders.Status
}

type Page struct {
	Orders     []orders.Summary `json:"orders"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	PageSize   int              `json:"page_size"`
	TotalPages int              `json:"total_pages"`
}

const DefaultPageSize = 10

// List pulls the status-filtered order list from the store (already
// newest-first), applies the text search in memory and paginates.
func (c *Console) List(ctx context.Context, f Filter, page, pageSize int) (Page, error) {
	if f.Status != "" && !f.Status.Valid() {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownStatus, f.Status)
	}
	all, err := c.Store.ListOrders(ctx, f.Status)
	if err != nil {
		return Page{}, err
	}

	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		kept := all[:0]
		for _, s := range all {
			if strings.Contains(strings.ToLower(s.ID), term) ||
				strings.Contains(strings.ToLower(s.CustomerName), term) {
				kept = append(kept, s)
			}
		}
		all = kept
	}

	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	total := len(all)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Orders:     all[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// SetStatus writes the new label. Any known status may be assigned from any
// current status; there is no transition guard and the last write wins.
func (c *Console) SetStatus(ctx context.Context, orderID string, status orders.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if err := c.Store.SetStatus(ctx, orderID, status); err != nil {
		return err
	}
	c.Feed.PublishChange(ctx, livefeed.Event{
		Type: livefeed.TypeStatus, OrderID: orderID, Status: status,
	})
	return nil
}

// BulkSetStatus applies one status to every selected order atomically; a
// concurrent viewer sees either all updates or none.
func (c *Console) BulkSetStatus(ctx context.Context, orderIDs []string, status orders.Status) error {
	if len(orderIDs) == 0 {
		return ErrNoSelection
	}
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, status)
	}
	if err := c.Store.BulkSetStatus(ctx, orderIDs, status); err != nil {
		return err
	}
	for _, id := range orderIDs {
		c.Feed.PublishChange(ctx, livefeed.Event{
			Type: livefeed.TypeStatus, OrderID: id, Status: status,
		})
	}
	return nil
}

// Delete is irreversible. The confirmation step lives at the HTTP surface;
// by the time this runs the admin has confirmed.
func (c *Console) Delete(ctx context.Context, orderID string) error {
	if err := c.Store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	c.Log.Info("order deleted", zap.String("order_id", orderID))
	c.Feed.PublishChange(ctx, livefeed.Event{Type: livefeed.TypeDeleted, OrderID: orderID})
	return nil
}

func (c *Console) Detail(ctx context.Context, orderID string) (orders.Order, error) {
	return c.Store.OrderDetail(ctx, orderID)
}

func (c *Console) Stats(ctx context.Context) (orders.Stats, error) {
	return c.Store.Stats(ctx)
}

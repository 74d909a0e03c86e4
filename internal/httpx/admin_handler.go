package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/admin"
	"github.com/rightwater/orderdesk/internal/livefeed"
	"github.com/rightwater/orderdesk/internal/orders"
)

type ConsoleAPI interface {
	List(ctx context.Context, f admin.Filter, page, pageSize int) (admin.Page, error)
	SetStatus(ctx context.Context, orderID string, status orders.Status) error
	BulkSetStatus(ctx context.Context, orderIDs []string, status orders.Status) error
	Delete(ctx context.Context, orderID string) error
	Detail(ctx context.Context, orderID string) (orders.Order, error)
	Stats(ctx context.Context) (orders.Stats, error)
}

type FeedSubscriber interface {
	Subscribe(ctx context.Context) <-chan livefeed.Event
}

// AdminHandler exposes the order management console over JSON plus a live
// SSE stream of order changes.
type AdminHandler struct {
	Console ConsoleAPI
	Feed    FeedSubscriber
	Log     *zap.Logger
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Get("/orders", h.listOrders)
	r.Get("/orders/stream", h.streamOrders)
	r.Get("/orders/{id}", h.orderDetail)
	r.Get("/orders/{id}/print", h.printOrder)
	r.Patch("/orders/{id}/status", h.setStatus)
	r.Post("/orders/bulk-status", h.bulkSetStatus)
	r.Delete("/orders/{id}", h.deleteOrder)
	r.Get("/stats", h.stats)
}

func (h *AdminHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	f := admin.Filter{
		Search: q.Get("search"),
		Status: orders.Status(q.Get("status")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	p, err := h.Console.List(ctx, f, page, pageSize)
	if err != nil {
		if errors.Is(err, admin.ErrUnknownStatus) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("list orders failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not load orders")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// streamOrders holds an SSE connection for the lifetime of the admin view.
// The feed subscription is torn down when the client goes away.
func (h *AdminHandler) streamOrders(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for ev := range h.Feed.Subscribe(r.Context()) {
		b, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		fmt.Fprintf(w, "event: order-change\ndata: %s\n\n", b)
		flusher.Flush()
	}
}

func (h *AdminHandler) orderDetail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	o, err := h.Console.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondMutationError(w, err, "could not load order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *AdminHandler) printOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	o, err := h.Console.Detail(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondMutationError(w, err, "could not load order")
		return
	}
	doc, err := admin.Printable(o, r.URL.Query().Get("logo"))
	if err != nil {
		h.Log.Error("render printable failed", zap.String("order_id", o.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not render order")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

type statusRequest struct {
	Status orders.Status `json:"status"`
}

func (h *AdminHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Console.SetStatus(ctx, chi.URLParam(r, "id"), req.Status); err != nil {
		h.respondMutationError(w, err, "could not update status")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bulkStatusRequest struct {
	OrderIDs []string      `json:"order_ids"`
	Status   orders.Status `json:"status"`
}

func (h *AdminHandler) bulkSetStatus(w http.ResponseWriter, r *http.Request) {
	var req bulkStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.Console.BulkSetStatus(ctx, req.OrderIDs, req.Status); err != nil {
		if errors.Is(err, admin.ErrNoSelection) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.respondMutationError(w, err, "could not update orders")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteOrder only acts when the caller explicitly confirms; without
// confirm=true nothing is touched.
func (h *AdminHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeError(w, http.StatusConflict, "deletion is irreversible; pass confirm=true to proceed")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	if err := h.Console.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.respondMutationError(w, err, "could not delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	st, err := h.Console.Stats(ctx)
	if err != nil {
		h.Log.Error("stats failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not load stats")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *AdminHandler) respondMutationError(w http.ResponseWriter, err error, generic string) {
	switch {
	case errors.Is(err, orders.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, admin.ErrUnknownStatus):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.Log.Error(generic, zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, generic)
	}
}

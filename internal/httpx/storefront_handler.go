package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/rightwater/orderdesk/internal/auth"
	"github.com/rightwater/orderdesk/internal/checkout"
	"github.com/rightwater/orderdesk/internal/orders"
)

type CheckoutService interface {
	Submit(ctx context.Context, userID string, form checkout.Form, items []orders.Item) (checkout.Receipt, error)
}

type CartStore interface {
	Put(ctx context.Context, userID string, items []orders.Item) error
	Get(ctx context.Context, userID string) ([]orders.Item, error)
}

// StorefrontHandler serves the authenticated customer surface: the cart
// snapshot and checkout. Authentication is required before submission; the
// guest variant is deliberately not supported.
type StorefrontHandler struct {
	Checkout CheckoutService
	Cart     CartStore
	Log      *zap.Logger
}

func (h *StorefrontHandler) Register(r chi.Router) {
	r.Put("/cart", h.putCart)
	r.Get("/cart", h.getCart)
	r.Post("/checkout", h.submitOrder)
}

type checkoutRequest struct {
	checkout.Form
	Items []orders.Item `json:"items"`
}

func (h *StorefrontHandler) submitOrder(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	receipt, err := h.Checkout.Submit(ctx, auth.UserID(ctx), req.Form, req.Items)
	if err != nil {
		var verr *checkout.ValidationError
		switch {
		case errors.As(err, &verr):
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation",
				"fields": verr.Fields,
			})
		case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrInvalidItem):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("checkout failed", zap.Error(err))
			writeError(w, http.StatusServiceUnavailable, "could not complete order, please retry")
		}
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (h *StorefrontHandler) putCart(w http.ResponseWriter, r *http.Request) {
	var items []orders.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	if err := h.Cart.Put(ctx, auth.UserID(ctx), items); err != nil {
		h.Log.Error("store cart failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not save cart")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *StorefrontHandler) getCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()
	items, err := h.Cart.Get(ctx, auth.UserID(ctx))
	if err != nil {
		h.Log.Error("load cart failed", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "could not load cart")
		return
	}
	if items == nil {
		items = []orders.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

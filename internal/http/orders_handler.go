package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

// OrdersGateway is the slice of the commerce API the order views read.
type OrdersGateway interface {
	GetOrder(ctx context.Context, orderID int64) (domain.Order, error)
	GetOrderPaymentStatus(ctx context.Context, orderID int64) (gateway.OrderPaymentStatus, error)
}

type OrdersHandler struct {
	orders OrdersGateway
	log    zerolog.Logger
}

func NewOrdersHandler(orders OrdersGateway, log zerolog.Logger) *OrdersHandler {
	return &OrdersHandler{orders: orders, log: log}
}

// GET /api/v1/orders/{order_id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to view orders")
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, order)
}

// GET /api/v1/orders/{order_id}/payment-status — the poll target for the
// asynchronous mobile push outcome.
func (h *OrdersHandler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok || !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "unauthorized", "sign in to view orders")
		return
	}

	orderID, err := strconv.ParseInt(chi.URLParam(r, "order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a positive integer")
		return
	}

	status, err := h.orders.GetOrderPaymentStatus(r.Context(), orderID)
	if err != nil {
		h.respondGatewayError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (h *OrdersHandler) respondGatewayError(w http.ResponseWriter, err error) {
	if errors.Is(err, gateway.ErrUnauthorized) {
		respondError(w, http.StatusUnauthorized, "session_expired", "your session has expired")
		return
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "not_found", "order not found")
			return
		}
		respondError(w, http.StatusBadGateway, "commerce_api_error", apiErr.Error())
		return
	}
	respondError(w, http.StatusBadGateway, "commerce_api_unreachable", "commerce api unreachable")
}

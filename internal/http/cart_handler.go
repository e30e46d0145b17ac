package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

// CartService is implemented by *cart.Store.
type CartService interface {
	Snapshot(sess session.Session) domain.Cart
	AddItem(ctx context.Context, sess session.Session, product domain.Product, quantity int32) domain.Cart
	UpdateQuantity(ctx context.Context, sess session.Session, productID int64, quantity int32) domain.Cart
	RemoveItem(ctx context.Context, sess session.Session, productID int64) domain.Cart
	Clear(ctx context.Context, sess session.Session) domain.Cart
}

// Catalog resolves products and advisory stock through the commerce API.
type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	CheckStock(ctx context.Context, productID int64, quantity int32) (gateway.StockCheck, error)
}

type CartHandler struct {
	carts   CartService
	catalog Catalog
	log     zerolog.Logger
}

func NewCartHandler(carts CartService, catalog Catalog, log zerolog.Logger) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, log: log}
}

type AddItemRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int32 `json:"quantity"`
}

type CartLineDTO struct {
	Product  domain.Product  `json:"product"`
	Quantity int32           `json:"quantity"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type CartResponseDTO struct {
	Items      []CartLineDTO   `json:"items"`
	TotalItems int32           `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

func cartResponse(cart domain.Cart) CartResponseDTO {
	items := make([]CartLineDTO, len(cart.Lines))
	for i, line := range cart.Lines {
		items[i] = CartLineDTO{Product: line.Product, Quantity: line.Quantity, Subtotal: line.Subtotal()}
	}
	return CartResponseDTO{
		Items:      items,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(h.carts.Snapshot(sess)))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		h.log.Warn().Err(err).Int64("product_id", req.ProductID).Msg("product lookup failed")
		respondError(w, http.StatusNotFound, "product_not_found", "product not found")
		return
	}

	cart := h.carts.AddItem(r.Context(), sess, product, req.Quantity)
	respondJSON(w, http.StatusCreated, cartResponse(cart))
}

// PUT /api/v1/cart/items/{product_id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}

	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	// quantity <= 0 is an explicit remove.
	cart := h.carts.UpdateQuantity(r.Context(), sess, productID, req.Quantity)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}

	productID, err := productIDParam(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return
	}

	cart := h.carts.RemoveItem(r.Context(), sess, productID)
	respondJSON(w, http.StatusOK, cartResponse(cart))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}
	respondJSON(w, http.StatusOK, cartResponse(h.carts.Clear(r.Context(), sess)))
}

type StockCheckRequestDTO struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// POST /api/v1/stock/check — advisory pass-through.
func (h *CartHandler) CheckStock(w http.ResponseWriter, r *http.Request) {
	var req StockCheckRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 || req.Quantity <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "product_id and quantity must be positive")
		return
	}

	check, err := h.catalog.CheckStock(r.Context(), req.ProductID, req.Quantity)
	if err != nil {
		respondError(w, http.StatusBadGateway, "stock_check_failed", "stock check unavailable")
		return
	}
	respondJSON(w, http.StatusOK, check)
}

func productIDParam(r *http.Request) (int64, error) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "product_id"), 10, 64)
	if err != nil || productID <= 0 {
		return 0, strconv.ErrSyntax
	}
	return productID, nil
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

// mockCartService implements CartService for testing
type mockCartService struct {
	cart     domain.Cart
	addCalls int
}

func (m *mockCartService) Snapshot(session.Session) domain.Cart { return m.cart }

func (m *mockCartService) AddItem(_ context.Context, _ session.Session, product domain.Product, quantity int32) domain.Cart {
	m.addCalls++
	m.cart.Lines = append(m.cart.Lines, domain.CartLine{Product: product, Quantity: quantity})
	return m.cart
}

func (m *mockCartService) UpdateQuantity(_ context.Context, _ session.Session, productID int64, quantity int32) domain.Cart {
	for i := range m.cart.Lines {
		if m.cart.Lines[i].Product.ID == productID {
			if quantity <= 0 {
				m.cart.Lines = append(m.cart.Lines[:i], m.cart.Lines[i+1:]...)
			} else {
				m.cart.Lines[i].Quantity = quantity
			}
			break
		}
	}
	return m.cart
}

func (m *mockCartService) RemoveItem(_ context.Context, _ session.Session, productID int64) domain.Cart {
	return m.UpdateQuantity(context.Background(), session.Session{}, productID, 0)
}

func (m *mockCartService) Clear(context.Context, session.Session) domain.Cart {
	m.cart.Lines = nil
	return m.cart
}

type mockCatalog struct {
	products map[int64]domain.Product
	stock    gateway.StockCheck
	stockErr error
}

func (m *mockCatalog) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return domain.Product{}, &gateway.APIError{Status: http.StatusNotFound, Message: "product not found"}
	}
	return p, nil
}

func (m *mockCatalog) CheckStock(context.Context, int64, int32) (gateway.StockCheck, error) {
	if m.stockErr != nil {
		return gateway.StockCheck{}, m.stockErr
	}
	return m.stock, nil
}

func sessionRequest(method, target, body string) *http.Request {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	sess := session.Session{Owner: session.GuestKey("g-1")}
	return r.WithContext(session.WithSession(r.Context(), sess))
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) CartResponseDTO {
	t.Helper()
	var resp CartResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func newCartFixture() (*CartHandler, *mockCartService, *mockCatalog) {
	carts := &mockCartService{}
	catalog := &mockCatalog{products: map[int64]domain.Product{
		1: {ID: 1, Name: "Widget", Price: decimal.NewFromInt(500), Stock: 10},
	}}
	return NewCartHandler(carts, catalog, zerolog.Nop()), carts, catalog
}

func TestGetCart_ReturnsTotals(t *testing.T) {
	h, carts, _ := newCartFixture()
	carts.cart.Lines = []domain.CartLine{
		{Product: domain.Product{ID: 1, Price: decimal.NewFromInt(500)}, Quantity: 2},
	}

	rec := httptest.NewRecorder()
	h.GetCart(rec, sessionRequest(http.MethodGet, "/api/v1/cart", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.EqualValues(t, 2, resp.TotalItems)
	assert.True(t, resp.TotalPrice.Equal(decimal.NewFromInt(1000)))
	require.Len(t, resp.Items, 1)
	assert.True(t, resp.Items[0].Subtotal.Equal(decimal.NewFromInt(1000)))
}

func TestAddItem_Success(t *testing.T) {
	h, carts, _ := newCartFixture()

	rec := httptest.NewRecorder()
	h.AddItem(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":1,"quantity":2}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, carts.addCalls)
	resp := decodeCart(t, rec)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Widget", resp.Items[0].Product.Name)
}

func TestAddItem_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code string
	}{
		{"malformed json", `{"product_id":`, "invalid_request"},
		{"zero product id", `{"product_id":0,"quantity":1}`, "invalid_product_id"},
		{"negative product id", `{"product_id":-5,"quantity":1}`, "invalid_product_id"},
		{"zero quantity", `{"product_id":1,"quantity":0}`, "invalid_quantity"},
		{"quantity above cap", `{"product_id":1,"quantity":100}`, "invalid_quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, carts, _ := newCartFixture()
			rec := httptest.NewRecorder()

			h.AddItem(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", tt.body))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, tt.code, resp.Code)
			assert.Zero(t, carts.addCalls, "an invalid request must not touch the cart")
		})
	}
}

func TestAddItem_UnknownProduct(t *testing.T) {
	h, carts, _ := newCartFixture()

	rec := httptest.NewRecorder()
	h.AddItem(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"product_id":999,"quantity":1}`))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, carts.addCalls)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	h, carts, _ := newCartFixture()
	carts.cart.Lines = []domain.CartLine{
		{Product: domain.Product{ID: 1, Price: decimal.NewFromInt(500)}, Quantity: 2},
	}

	rec := httptest.NewRecorder()
	r := sessionRequest(http.MethodPut, "/api/v1/cart/items/1", `{"quantity":0}`)
	h.UpdateQuantity(rec, withURLParam(r, "product_id", "1"))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
}

func TestUpdateQuantity_BadParam(t *testing.T) {
	h, _, _ := newCartFixture()

	rec := httptest.NewRecorder()
	r := sessionRequest(http.MethodPut, "/api/v1/cart/items/abc", `{"quantity":3}`)
	h.UpdateQuantity(rec, withURLParam(r, "product_id", "abc"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveItem_AbsentLineStillOK(t *testing.T) {
	h, _, _ := newCartFixture()

	rec := httptest.NewRecorder()
	r := sessionRequest(http.MethodDelete, "/api/v1/cart/items/42", "")
	h.RemoveItem(rec, withURLParam(r, "product_id", "42"))

	assert.Equal(t, http.StatusOK, rec.Code, "removing an absent line is a no-op, not an error")
}

func TestClearCart(t *testing.T) {
	h, carts, _ := newCartFixture()
	carts.cart.Lines = []domain.CartLine{
		{Product: domain.Product{ID: 1, Price: decimal.NewFromInt(500)}, Quantity: 2},
	}

	rec := httptest.NewRecorder()
	h.ClearCart(rec, sessionRequest(http.MethodDelete, "/api/v1/cart", ""))

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
	assert.True(t, resp.TotalPrice.IsZero())
}

func TestCheckStock_PassThrough(t *testing.T) {
	h, _, catalog := newCartFixture()
	catalog.stock = gateway.StockCheck{Available: true, CanPurchase: true, RequestedQuantity: 3}

	rec := httptest.NewRecorder()
	h.CheckStock(rec, sessionRequest(http.MethodPost, "/api/v1/stock/check", `{"product_id":1,"quantity":3}`))

	assert.Equal(t, http.StatusOK, rec.Code)
	var check gateway.StockCheck
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&check))
	assert.True(t, check.CanPurchase)
}

func TestCheckStock_GatewayDown(t *testing.T) {
	h, _, catalog := newCartFixture()
	catalog.stockErr = errors.New("backend down")

	rec := httptest.NewRecorder()
	h.CheckStock(rec, sessionRequest(http.MethodPost, "/api/v1/stock/check", `{"product_id":1,"quantity":3}`))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

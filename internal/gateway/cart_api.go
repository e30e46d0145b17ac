package gateway

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
)

// remoteCartItem tolerates both shapes the backend is known to return: a
// nested product object or the product fields inlined on the item.
type remoteCartItem struct {
	Product  *domain.Product `json:"product"`
	Quantity int32           `json:"quantity"`

	ProductID int64           `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Stock     int32           `json:"stock"`
	Category  string          `json:"category"`
}

func (i remoteCartItem) toLine() domain.CartLine {
	qty := i.Quantity
	if qty <= 0 {
		qty = 1
	}
	if i.Product != nil {
		return domain.CartLine{Product: *i.Product, Quantity: qty}
	}
	return domain.CartLine{
		Product: domain.Product{
			ID:       i.ProductID,
			Name:     i.Title,
			Price:    i.Price,
			Stock:    i.Stock,
			Category: i.Category,
		},
		Quantity: qty,
	}
}

type cartItemPayload struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity,omitempty"`
	UserID    int64 `json:"user_id"`
}

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": []string{strconv.FormatInt(userID, 10)}}
}

// FetchCart returns the server-held cart for the identity.
func (c *Client) FetchCart(ctx context.Context, userID int64) ([]domain.CartLine, error) {
	var items []remoteCartItem
	if err := c.get(ctx, "/redis/cart", userQuery(userID), &items); err != nil {
		return nil, fmt.Errorf("fetch remote cart: %w", err)
	}
	lines := make([]domain.CartLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.toLine())
	}
	return lines, nil
}

// AddCartItem propagates a local add; the remote total is incremented.
func (c *Client) AddCartItem(ctx context.Context, userID, productID int64, quantity int32) error {
	payload := cartItemPayload{ProductID: productID, Quantity: quantity, UserID: userID}
	if err := c.post(ctx, "/redis/cart/add", payload, nil); err != nil {
		return fmt.Errorf("remote cart add: %w", err)
	}
	return nil
}

// SetCartQuantity carries the full target quantity, not a delta, so reordered
// calls stay idempotent.
func (c *Client) SetCartQuantity(ctx context.Context, userID, productID int64, quantity int32) error {
	payload := cartItemPayload{ProductID: productID, Quantity: quantity, UserID: userID}
	if err := c.put(ctx, "/redis/cart/quantity", payload, nil); err != nil {
		return fmt.Errorf("remote cart set quantity: %w", err)
	}
	return nil
}

func (c *Client) RemoveCartItem(ctx context.Context, userID, productID int64) error {
	payload := cartItemPayload{ProductID: productID, UserID: userID}
	if err := c.delete(ctx, "/redis/cart/item", nil, payload, nil); err != nil {
		return fmt.Errorf("remote cart remove: %w", err)
	}
	return nil
}

func (c *Client) ClearCart(ctx context.Context, userID int64) error {
	if err := c.delete(ctx, "/redis/cart", userQuery(userID), nil, nil); err != nil {
		return fmt.Errorf("remote cart clear: %w", err)
	}
	return nil
}

package domain

import "github.com/shopspring/decimal"

// Product is owned by the remote catalog; the storefront only references it.
// Stock is advisory — the authoritative check happens server-side at order time.
type Product struct {
	ID       int64           `json:"id"`
	Name     string          `json:"name"`
	SKU      string          `json:"sku,omitempty"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Stock    int32           `json:"stock"`
}

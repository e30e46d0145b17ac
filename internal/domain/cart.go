package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is one (product, quantity) pair. A cart never holds two lines for
// the same product id; a repeated add merges by summing quantities.
type CartLine struct {
	Product  Product   `json:"product"`
	Quantity int32     `json:"quantity"`
	AddedAt  time.Time `json:"added_at"`
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt32(l.Quantity))
}

// Cart is an ordered set of lines scoped to one browser session. Totals are
// derived on every read, never stored.
type Cart struct {
	Owner string     `json:"owner"`
	Lines []CartLine `json:"lines"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

func (c Cart) TotalItems() int32 {
	var total int32
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

func (c Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// Find returns the line for productID, if any.
func (c Cart) Find(productID int64) (CartLine, bool) {
	for _, line := range c.Lines {
		if line.Product.ID == productID {
			return line, true
		}
	}
	return CartLine{}, false
}

package domain

import "errors"

var (
	// ErrEmptyCart rejects a checkout before any network call is made.
	ErrEmptyCart = errors.New("cart is empty, nothing to checkout")
	// ErrInvalidPhone rejects a malformed M-PESA number before any push is triggered.
	ErrInvalidPhone = errors.New("invalid M-PESA phone number")
	// ErrInvalidPaymentMethod rejects an unknown payment method selection.
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
)

package domain

// PaymentMethod selects the payment sub-protocol at checkout.
type PaymentMethod string

const (
	// PaymentMethodMpesa pushes an STK confirmation prompt to the customer's
	// phone; completion is asynchronous relative to initiation.
	PaymentMethodMpesa PaymentMethod = "mpesa"
	// PaymentMethodFlutterwave completes payment in a provider-hosted overlay
	// whose callback must be verified against the backend.
	PaymentMethodFlutterwave PaymentMethod = "flutterwave"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodMpesa || m == PaymentMethodFlutterwave
}

// PaymentAttempt is associated 1:1 with an order; a new attempt supersedes a
// prior failed one. The client never considers an order paid without a
// verification response for the correlation token it holds.
type PaymentAttempt struct {
	OrderID          int64         `json:"order_id"`
	Method           PaymentMethod `json:"method"`
	CorrelationToken string        `json:"correlation_token"`
	Status           PaymentStatus `json:"status"`
	Verified         bool          `json:"verified"`
}

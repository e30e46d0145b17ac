package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
)

// ProviderCallback is what the provider-hosted overlay reports back through
// the UI. It is an untrusted external event: a "successful" status is a hint
// that must be confirmed against the backend, never proof of payment.
type ProviderCallback struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

func (cb ProviderCallback) Successful() bool {
	return strings.EqualFold(cb.Status, "successful")
}

// Customer identifies the payer to the provider overlay. Guests initiate with
// empty fields.
type Customer struct {
	Name  string
	Email string
}

// CardPayment is what initiation hands back to the caller: the link the UI
// opens and the reference the overlay callback must carry.
type CardPayment struct {
	TransactionReference string
	PaymentLink          string
}

// CardGateway is the slice of the commerce API the redirect flow needs.
type CardGateway interface {
	InitiateFlutterwave(ctx context.Context, req gateway.FlutterwaveInitiateRequest) (gateway.FlutterwaveInitiateResponse, error)
	VerifyFlutterwave(ctx context.Context, transactionID string) (gateway.PaymentVerification, error)
}

// RedirectCard drives the redirect-card method: initiate with the backend to
// obtain a payment link, then verify the transaction the overlay callback
// reports. Payment itself completes asynchronously, outside any request this
// service holds open. Without a configured widget key the flow degrades to
// treating the order as already paid; this is a fallback for provider-less
// environments, not a security check.
type RedirectCard struct {
	gw        CardGateway
	publicKey string
	log       zerolog.Logger
}

func NewRedirectCard(gw CardGateway, publicKey string, log zerolog.Logger) *RedirectCard {
	return &RedirectCard{gw: gw, publicKey: publicKey, log: log}
}

// Configured reports whether a real widget key is present. Placeholder and
// sandbox keys count as absent.
func (r *RedirectCard) Configured() bool {
	return r.publicKey != "" && !strings.Contains(strings.ToUpper(r.publicKey), "SANDBOX")
}

// Initiate asks the backend for a provider payment link. The returned
// reference identifies the attempt to the overlay callback; nothing is paid
// yet when this returns.
func (r *RedirectCard) Initiate(ctx context.Context, orderID int64, amount decimal.Decimal, currency string, customer Customer) (CardPayment, error) {
	resp, err := r.gw.InitiateFlutterwave(ctx, gateway.FlutterwaveInitiateRequest{
		OrderID:       orderID,
		Amount:        amount,
		Currency:      currency,
		PaymentMethod: "card",
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
	})
	if err != nil {
		return CardPayment{}, fmt.Errorf("flutterwave initiation: %w", err)
	}

	r.log.Info().Int64("order_id", orderID).Str("transaction_reference", resp.TransactionReference).
		Str("payment_link", resp.PaymentLink).Msg("flutterwave payment initiated")

	return CardPayment{
		TransactionReference: resp.TransactionReference,
		PaymentLink:          resp.PaymentLink,
	}, nil
}

// Verify confirms a provider-reported outcome against the backend.
func (r *RedirectCard) Verify(ctx context.Context, transactionID string) (gateway.PaymentVerification, error) {
	resp, err := r.gw.VerifyFlutterwave(ctx, transactionID)
	if err != nil {
		return gateway.PaymentVerification{}, fmt.Errorf("flutterwave verification: %w", err)
	}
	return resp, nil
}

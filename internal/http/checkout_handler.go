package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/checkout"
	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/payment"
	"github.com/Emmakaranja1/symatech-storefront/internal/session"
)

// CheckoutService is implemented by *checkout.Orchestrator.
type CheckoutService interface {
	Checkout(ctx context.Context, sess session.Session, req checkout.Request) checkout.Outcome
}

// CardCallbacks finishes checkouts parked on a provider overlay result. Also
// implemented by *checkout.Orchestrator.
type CardCallbacks interface {
	ResolveCard(ctx context.Context, cb payment.ProviderCallback) (checkout.Outcome, bool)
}

// MpesaVerifier is implemented by *payment.MobilePush.
type MpesaVerifier interface {
	Verify(ctx context.Context, checkoutRequestID string) (domain.PaymentStatus, error)
}

type CheckoutHandler struct {
	checkouts CheckoutService
	callbacks CardCallbacks
	mpesa     MpesaVerifier
	log       zerolog.Logger
}

func NewCheckoutHandler(checkouts CheckoutService, callbacks CardCallbacks, mpesa MpesaVerifier, log zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{checkouts: checkouts, callbacks: callbacks, mpesa: mpesa, log: log}
}

type CheckoutRequestDTO struct {
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	PhoneNumber     string                 `json:"phone_number,omitempty"`
}

type CheckoutResponseDTO struct {
	CheckoutID       string          `json:"checkout_id"`
	Status           string          `json:"status"`
	OrderID          int64           `json:"order_id,omitempty"`
	Total            decimal.Decimal `json:"total,omitempty"`
	CorrelationToken string          `json:"correlation_token,omitempty"`
	PaymentLink      string          `json:"payment_link,omitempty"`
	Message          string          `json:"message,omitempty"`
}

func checkoutResponse(outcome checkout.Outcome) CheckoutResponseDTO {
	return CheckoutResponseDTO{
		CheckoutID:       outcome.CheckoutID,
		Status:           outcome.Status.String(),
		OrderID:          outcome.OrderID,
		Total:            outcome.Total,
		CorrelationToken: outcome.CorrelationToken,
		PaymentLink:      outcome.PaymentLink,
		Message:          outcome.CustomerMessage,
	}
}

func respondFailedCheckout(w http.ResponseWriter, outcome checkout.Outcome) {
	status := http.StatusBadGateway
	code := "order_failed"
	switch outcome.Kind {
	case checkout.FailureValidation:
		status = http.StatusBadRequest
		code = "invalid_checkout"
	case checkout.FailurePayment:
		status = http.StatusPaymentRequired
		code = "payment_failed"
	}
	respondError(w, status, code, outcome.Reason)
}

// POST /api/v1/checkout
//
// The card method answers 202 with the payment link and transaction
// reference: the UI opens the link and relays the overlay's result to the
// callback endpoint, which produces the terminal outcome.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		respondError(w, http.StatusInternalServerError, "no_session", "session not resolved")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome := h.checkouts.Checkout(r.Context(), sess, checkout.Request{
		Shipping: req.ShippingAddress,
		Method:   domain.PaymentMethod(req.PaymentMethod),
		Phone:    req.PhoneNumber,
	})

	switch {
	case outcome.AwaitingPayment():
		respondJSON(w, http.StatusAccepted, checkoutResponse(outcome))
	case outcome.Completed():
		respondJSON(w, http.StatusCreated, checkoutResponse(outcome))
	default:
		respondFailedCheckout(w, outcome)
	}
}

// POST /api/v1/payments/card/callback — the UI relays the provider overlay's
// result here to finish the checkout parked on the transaction reference. An
// unmatched callback is ignored.
func (h *CheckoutHandler) CardCallback(w http.ResponseWriter, r *http.Request) {
	var cb payment.ProviderCallback
	if err := json.NewDecoder(r.Body).Decode(&cb); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if cb.TransactionID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "transaction_id is required")
		return
	}

	outcome, ok := h.callbacks.ResolveCard(r.Context(), cb)
	if !ok {
		respondError(w, http.StatusNotFound, "no_pending_payment", "no checkout is waiting for this transaction")
		return
	}
	if !outcome.Completed() {
		respondFailedCheckout(w, outcome)
		return
	}
	respondJSON(w, http.StatusOK, checkoutResponse(outcome))
}

type MpesaVerifyRequestDTO struct {
	CheckoutRequestID string `json:"checkout_request_id"`
}

type MpesaVerifyResponseDTO struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
}

// POST /api/v1/payments/mpesa/verify — resolves a push's correlation token to
// a trusted payment status; the UI polls this until the status leaves pending.
func (h *CheckoutHandler) VerifyMpesa(w http.ResponseWriter, r *http.Request) {
	var req MpesaVerifyRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.CheckoutRequestID == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "checkout_request_id is required")
		return
	}

	status, err := h.mpesa.Verify(r.Context(), req.CheckoutRequestID)
	if err != nil {
		h.log.Warn().Err(err).Str("checkout_request_id", req.CheckoutRequestID).Msg("mpesa verification failed")
		respondError(w, http.StatusBadGateway, "verification_failed", "payment verification unavailable")
		return
	}
	respondJSON(w, http.StatusOK, MpesaVerifyResponseDTO{PaymentStatus: status})
}

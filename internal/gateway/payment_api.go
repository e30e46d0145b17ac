package gateway

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
)

// MpesaInitiateResponse carries the provider correlation token
// (checkout_request_id) the verification step keys on.
type MpesaInitiateResponse struct {
	PaymentID         int64  `json:"payment_id"`
	CheckoutRequestID string `json:"checkout_request_id"`
	MerchantRequestID string `json:"merchant_request_id"`
	CustomerMessage   string `json:"customer_message"`
	Message           string `json:"message"`
}

// InitiateMpesa triggers the STK push. phone must already be in canonical
// 254XXXXXXXXX form; the gateway does not re-validate.
func (c *Client) InitiateMpesa(ctx context.Context, orderID int64, phone string) (MpesaInitiateResponse, error) {
	payload := struct {
		OrderID     int64  `json:"order_id"`
		PhoneNumber string `json:"phone_number"`
	}{orderID, phone}

	var resp MpesaInitiateResponse
	if err := c.post(ctx, "/payments/mpesa/initiate", payload, &resp); err != nil {
		return MpesaInitiateResponse{}, fmt.Errorf("initiate mpesa push: %w", err)
	}
	return resp, nil
}

// PaymentVerification converts a provider-reported outcome into a trusted one.
type PaymentVerification struct {
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	OrderStatus   domain.OrderStatus   `json:"order_status"`
	Message       string               `json:"message"`
}

func (c *Client) VerifyMpesa(ctx context.Context, checkoutRequestID string) (PaymentVerification, error) {
	payload := struct {
		CheckoutRequestID string `json:"checkout_request_id"`
	}{checkoutRequestID}

	var resp PaymentVerification
	if err := c.post(ctx, "/payments/mpesa/verify", payload, &resp); err != nil {
		return PaymentVerification{}, fmt.Errorf("verify mpesa payment: %w", err)
	}
	return resp, nil
}

type FlutterwaveInitiateRequest struct {
	OrderID       int64           `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	CustomerName  string          `json:"customer_name,omitempty"`
	CustomerEmail string          `json:"customer_email,omitempty"`
}

type FlutterwaveInitiateResponse struct {
	PaymentID            int64  `json:"payment_id"`
	PaymentLink          string `json:"payment_link"`
	TransactionReference string `json:"transaction_reference"`
	Message              string `json:"message"`
}

func (c *Client) InitiateFlutterwave(ctx context.Context, req FlutterwaveInitiateRequest) (FlutterwaveInitiateResponse, error) {
	var resp FlutterwaveInitiateResponse
	if err := c.post(ctx, "/payments/flutterwave/initiate", req, &resp); err != nil {
		return FlutterwaveInitiateResponse{}, fmt.Errorf("initiate flutterwave payment: %w", err)
	}
	return resp, nil
}

func (c *Client) VerifyFlutterwave(ctx context.Context, transactionID string) (PaymentVerification, error) {
	payload := struct {
		TransactionID string `json:"transaction_id"`
	}{transactionID}

	var resp PaymentVerification
	if err := c.post(ctx, "/payments/flutterwave/verify", payload, &resp); err != nil {
		return PaymentVerification{}, fmt.Errorf("verify flutterwave payment: %w", err)
	}
	return resp, nil
}

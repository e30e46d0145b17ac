package payment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
)

// PushGateway is the slice of the commerce API the mobile push flow needs.
type PushGateway interface {
	InitiateMpesa(ctx context.Context, orderID int64, phone string) (gateway.MpesaInitiateResponse, error)
	VerifyMpesa(ctx context.Context, checkoutRequestID string) (gateway.PaymentVerification, error)
}

// MobilePush drives the STK push method. Initiation success means "push
// sent", not "paid": completion is asynchronous and observed via Verify or
// out-of-band notification.
type MobilePush struct {
	gw  PushGateway
	log zerolog.Logger
}

func NewMobilePush(gw PushGateway, log zerolog.Logger) *MobilePush {
	return &MobilePush{gw: gw, log: log}
}

// Initiate validates and submits the push. A gateway rejection is fatal to the
// current checkout; the provider's reason is surfaced as-is.
func (m *MobilePush) Initiate(ctx context.Context, orderID int64, rawPhone string) (domain.PaymentAttempt, error) {
	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return domain.PaymentAttempt{}, err
	}

	resp, err := m.gw.InitiateMpesa(ctx, orderID, phone)
	if err != nil {
		return domain.PaymentAttempt{}, fmt.Errorf("mpesa initiation: %w", err)
	}

	m.log.Info().Int64("order_id", orderID).Str("checkout_request_id", resp.CheckoutRequestID).
		Msg("mpesa push sent")

	return domain.PaymentAttempt{
		OrderID:          orderID,
		Method:           domain.PaymentMethodMpesa,
		CorrelationToken: resp.CheckoutRequestID,
		Status:           domain.PaymentStatusPending,
	}, nil
}

// Verify resolves the correlation token to a trusted payment status. The
// caller polls this until the status leaves pending.
func (m *MobilePush) Verify(ctx context.Context, checkoutRequestID string) (domain.PaymentStatus, error) {
	resp, err := m.gw.VerifyMpesa(ctx, checkoutRequestID)
	if err != nil {
		return "", fmt.Errorf("mpesa verification: %w", err)
	}
	return resp.PaymentStatus, nil
}

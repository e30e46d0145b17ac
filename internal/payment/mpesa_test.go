package payment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Emmakaranja1/symatech-storefront/internal/domain"
	"github.com/Emmakaranja1/symatech-storefront/internal/gateway"
)

// mockPushGateway implements PushGateway for testing
type mockPushGateway struct {
	initiatePhone string
	initiateResp  gateway.MpesaInitiateResponse
	initiateErr   error
	verifyResp    gateway.PaymentVerification
	verifyErr     error
	initiateCalls int
}

func (m *mockPushGateway) InitiateMpesa(_ context.Context, _ int64, phone string) (gateway.MpesaInitiateResponse, error) {
	m.initiateCalls++
	m.initiatePhone = phone
	return m.initiateResp, m.initiateErr
}

func (m *mockPushGateway) VerifyMpesa(_ context.Context, _ string) (gateway.PaymentVerification, error) {
	return m.verifyResp, m.verifyErr
}

func TestMobilePushInitiate_NormalizesPhone(t *testing.T) {
	gw := &mockPushGateway{
		initiateResp: gateway.MpesaInitiateResponse{CheckoutRequestID: "ws_CO_123"},
	}
	push := NewMobilePush(gw, zerolog.Nop())

	attempt, err := push.Initiate(context.Background(), 42, "0712345678")

	require.NoError(t, err)
	assert.Equal(t, "254712345678", gw.initiatePhone)
	assert.Equal(t, "ws_CO_123", attempt.CorrelationToken)
	assert.Equal(t, domain.PaymentMethodMpesa, attempt.Method)
	assert.Equal(t, domain.PaymentStatusPending, attempt.Status)
}

func TestMobilePushInitiate_RejectsMalformedPhoneBeforeAnyCall(t *testing.T) {
	gw := &mockPushGateway{}
	push := NewMobilePush(gw, zerolog.Nop())

	_, err := push.Initiate(context.Background(), 42, "12345")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPhone)
	assert.Zero(t, gw.initiateCalls, "malformed number must never trigger a push")
}

func TestMobilePushInitiate_GatewayRejection(t *testing.T) {
	gw := &mockPushGateway{initiateErr: errors.New("subscriber unreachable")}
	push := NewMobilePush(gw, zerolog.Nop())

	_, err := push.Initiate(context.Background(), 42, "254712345678")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscriber unreachable")
}

func TestMobilePushVerify(t *testing.T) {
	gw := &mockPushGateway{
		verifyResp: gateway.PaymentVerification{PaymentStatus: domain.PaymentStatusCompleted},
	}
	push := NewMobilePush(gw, zerolog.Nop())

	status, err := push.Verify(context.Background(), "ws_CO_123")

	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusCompleted, status)
}

package billing

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

func TestOrderStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  stripe.CheckoutSessionStatus
		payment stripe.CheckoutSessionPaymentStatus
		want    OrderStatus
	}{
		{"paid", stripe.CheckoutSessionStatusComplete, stripe.CheckoutSessionPaymentStatusPaid, OrderStatusPaid},
		{"open unpaid", stripe.CheckoutSessionStatusOpen, stripe.CheckoutSessionPaymentStatusUnpaid, OrderStatusCreated},
		{"complete but unpaid", stripe.CheckoutSessionStatusComplete, stripe.CheckoutSessionPaymentStatusUnpaid, OrderStatusCreated},
		{"expired", stripe.CheckoutSessionStatusExpired, stripe.CheckoutSessionPaymentStatusUnpaid, OrderStatusExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, orderStatus(tt.status, tt.payment))
		})
	}
}

func TestOrderFromSession(t *testing.T) {
	order := orderFromSession(&stripe.CheckoutSession{
		ID:                "cs_test_1",
		ClientReferenceID: "txn-1",
		AmountTotal:       1000,
		Currency:          stripe.Currency("inr"),
		URL:               "https://checkout.stripe.com/c/pay/cs_test_1",
		Status:            stripe.CheckoutSessionStatusOpen,
		PaymentStatus:     stripe.CheckoutSessionPaymentStatusUnpaid,
	})

	assert.Equal(t, &Order{
		ID:          "cs_test_1",
		Status:      OrderStatusCreated,
		Receipt:     "txn-1",
		Amount:      10,
		Currency:    "inr",
		CheckoutURL: "https://checkout.stripe.com/c/pay/cs_test_1",
	}, order)
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&stripe.Error{Code: stripe.ErrorCodeResourceMissing}))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", &stripe.Error{HTTPStatusCode: http.StatusNotFound})))
	assert.False(t, isNotFound(&stripe.Error{HTTPStatusCode: http.StatusUnauthorized}))
	assert.False(t, isNotFound(fmt.Errorf("connection reset")))
}

func TestVerifyWebhookSignature(t *testing.T) {
	const secret = "whsec_test"
	provider := NewStripeProvider(StripeConfig{SecretKey: "sk_test", WebhookSecret: secret})

	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_42","object":"checkout.session"}}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	event, err := provider.VerifyWebhookSignature(payload, signed.Header)
	require.NoError(t, err)
	assert.EqualValues(t, EventCheckoutSessionCompleted, event.Type)

	sessionID, err := CheckoutSessionID(event)
	require.NoError(t, err)
	assert.Equal(t, "cs_test_42", sessionID)

	_, err = provider.VerifyWebhookSignature(payload, "t=1,v1=deadbeef")
	assert.Error(t, err)
}

package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"
)

const EventCheckoutSessionCompleted = "checkout.session.completed"

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

type StripeProvider struct {
	sc            *stripe.Client
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	return &StripeProvider{
		sc:            stripe.NewClient(cfg.SecretKey),
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (b *StripeProvider) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	params := &stripe.CheckoutSessionCreateParams{
		ClientReferenceID:  stripe.String(req.Receipt),
		PaymentMethodTypes: []*string{stripe.String("card")},
		LineItems: []*stripe.CheckoutSessionCreateLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
					Currency: stripe.String(req.Currency),
					ProductData: &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
						Name:        stripe.String(fmt.Sprintf("%s credit plan", req.Plan.DisplayName)),
						Description: stripe.String(fmt.Sprintf("%d image credits", req.Plan.Credits)),
					},
					UnitAmount: stripe.Int64(req.Plan.MinorAmount()),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(b.successURL),
		CancelURL:  stripe.String(b.cancelURL),
		Metadata: map[string]string{
			"receipt": req.Receipt,
			"plan_id": req.Plan.ID,
			"credits": strconv.FormatInt(req.Plan.Credits, 10),
		},
	}
	params.SetIdempotencyKey("order_" + req.Receipt)

	session, err := b.sc.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create checkout session: %v", models.ErrPaymentProvider, err)
	}
	return orderFromSession(session), nil
}

func (b *StripeProvider) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	if orderID == "" {
		return nil, models.ErrOrderNotFound
	}

	session, err := b.sc.V1CheckoutSessions.Retrieve(ctx, orderID, nil)
	if err != nil {
		if isNotFound(err) {
			return nil, models.ErrOrderNotFound
		}
		return nil, fmt.Errorf("%w: failed to retrieve checkout session %s: %v", models.ErrPaymentProvider, orderID, err)
	}
	return orderFromSession(session), nil
}

func (b *StripeProvider) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, b.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("webhook signature verification failed: %w", err)
	}
	return &event, nil
}

// CheckoutSessionID extracts the session id from a checkout.session.* event.
func CheckoutSessionID(event *stripe.Event) (string, error) {
	var session struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return "", fmt.Errorf("failed to parse checkout session: %w", err)
	}
	if session.ID == "" {
		return "", errors.New("checkout session id missing from event")
	}
	return session.ID, nil
}

func orderFromSession(s *stripe.CheckoutSession) *Order {
	return &Order{
		ID:          s.ID,
		Status:      orderStatus(s.Status, s.PaymentStatus),
		Receipt:     s.ClientReferenceID,
		Amount:      s.AmountTotal / 100,
		Currency:    string(s.Currency),
		CheckoutURL: s.URL,
	}
}

func orderStatus(status stripe.CheckoutSessionStatus, payment stripe.CheckoutSessionPaymentStatus) OrderStatus {
	if payment == stripe.CheckoutSessionPaymentStatusPaid {
		return OrderStatusPaid
	}
	if status == stripe.CheckoutSessionStatusExpired {
		return OrderStatusExpired
	}
	return OrderStatusCreated
}

func isNotFound(err error) bool {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return false
	}
	return stripeErr.Code == stripe.ErrorCodeResourceMissing || stripeErr.HTTPStatusCode == http.StatusNotFound
}

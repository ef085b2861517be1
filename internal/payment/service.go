package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/imagify/internal/billing"
	"github.com/blagoySimandov/imagify/internal/ledger"
	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/blagoySimandov/imagify/internal/metrics"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/blagoySimandov/imagify/internal/transaction"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v84"
)

// ErrWebhookDisabled is returned when no webhook secret is configured.
var ErrWebhookDisabled = errors.New("payment webhook not configured")

// ErrAmountMismatch marks a paid order whose total differs from its purchase.
// Retrying cannot fix it.
var ErrAmountMismatch = fmt.Errorf("%w: paid amount does not match purchase", models.ErrPaymentProvider)

type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error)
}

// Settlement describes the outcome of verifying a paid order.
type Settlement struct {
	TransactionID    string
	Credits          int64
	Balance          int64
	AlreadyProcessed bool
}

type Service struct {
	txns     transaction.Store
	provider billing.PaymentProvider
	ledger   *ledger.Ledger
	currency string
	webhooks WebhookVerifier
}

type Option func(*Service)

// WithWebhookVerifier enables provider push notifications.
func WithWebhookVerifier(v WebhookVerifier) Option {
	return func(s *Service) {
		s.webhooks = v
	}
}

func NewService(txns transaction.Store, provider billing.PaymentProvider, l *ledger.Ledger, currency string, opts ...Option) *Service {
	s := &Service{
		txns:     txns,
		provider: provider,
		ledger:   l,
		currency: currency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateOrder records an unsettled purchase and opens a provider order for it.
// The transaction id travels to the provider as the order's receipt.
func (s *Service) CreateOrder(ctx context.Context, userID, planID string) (*billing.Order, error) {
	plan, err := s.ledger.PlanToAmount(planID)
	if err != nil {
		return nil, err
	}
	if _, err := s.ledger.CheckBalance(ctx, userID); err != nil {
		return nil, err
	}

	txn := &models.Transaction{
		ID:        uuid.New().String(),
		UserID:    userID,
		PlanID:    plan.ID,
		Amount:    plan.Amount,
		Currency:  s.currency,
		Credits:   plan.Credits,
		CreatedAt: time.Now(),
	}
	if err := s.txns.Create(ctx, txn); err != nil {
		return nil, err
	}
	logging.EnrichPurchase(ctx, plan.ID, txn.ID)

	order, err := s.provider.CreateOrder(ctx, billing.OrderRequest{
		Receipt:  txn.ID,
		Plan:     plan,
		Currency: s.currency,
	})
	if err != nil {
		log.Error().Err(err).Str("transaction_id", txn.ID).Msg("failed to open provider order")
		return nil, err
	}
	logging.EnrichOrder(ctx, order.ID)

	if err := s.txns.SetProviderOrderID(ctx, txn.ID, order.ID); err != nil {
		return nil, fmt.Errorf("failed to link order %s: %w", order.ID, err)
	}

	log.Info().
		Str("user_id", userID).
		Str("plan_id", plan.ID).
		Str("transaction_id", txn.ID).
		Str("order_id", order.ID).
		Msg("order created")
	return order, nil
}

// VerifySettlement grants a paid order's credits. Replays, concurrent or not,
// grant at most once.
func (s *Service) VerifySettlement(ctx context.Context, orderID string) (*Settlement, error) {
	if orderID == "" {
		return nil, models.Invalid("Missing Details")
	}
	logging.EnrichOrder(ctx, orderID)

	order, err := s.provider.FetchOrder(ctx, orderID)
	if err != nil {
		metrics.Settlements.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	if order.Status != billing.OrderStatusPaid {
		metrics.Settlements.WithLabelValues(metrics.OutcomeNotPaid).Inc()
		return nil, models.ErrPaymentNotCompleted
	}

	txn, err := s.txns.GetByID(ctx, order.Receipt)
	if err != nil {
		metrics.Settlements.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	logging.EnrichPurchase(ctx, txn.PlanID, txn.ID)

	if order.Amount != txn.Amount {
		metrics.Settlements.WithLabelValues(metrics.OutcomeError).Inc()
		log.Error().
			Str("order_id", order.ID).
			Str("transaction_id", txn.ID).
			Int64("order_amount", order.Amount).
			Int64("transaction_amount", txn.Amount).
			Msg("paid amount does not match purchase")
		return nil, fmt.Errorf("%w: order %s amount %d", ErrAmountMismatch, order.ID, order.Amount)
	}

	grant, err := s.ledger.Credit(ctx, txn)
	if err != nil {
		metrics.Settlements.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}
	logging.EnrichBalance(ctx, grant.Balance)

	if !grant.Applied {
		metrics.Settlements.WithLabelValues(metrics.OutcomeAlreadyProcessed).Inc()
		return &Settlement{TransactionID: txn.ID, Balance: grant.Balance, AlreadyProcessed: true}, nil
	}

	metrics.Settlements.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &Settlement{
		TransactionID: txn.ID,
		Credits:       grant.Credits,
		Balance:       grant.Balance,
	}, nil
}

// HandleWebhook settles completed checkouts pushed by the provider. Events of
// other types are acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhooks == nil {
		return ErrWebhookDisabled
	}

	event, err := s.webhooks.VerifyWebhookSignature(payload, signature)
	if err != nil {
		return models.Invalid(err.Error())
	}
	if string(event.Type) != billing.EventCheckoutSessionCompleted {
		log.Debug().Str("event_type", string(event.Type)).Msg("ignoring webhook event")
		return nil
	}

	orderID, err := billing.CheckoutSessionID(event)
	if err != nil {
		return models.Invalid(err.Error())
	}

	settlement, err := s.VerifySettlement(ctx, orderID)
	if errors.Is(err, models.ErrPaymentNotCompleted) {
		// async payment methods complete later with their own event
		return nil
	}
	if err != nil {
		return err
	}

	log.Info().
		Str("order_id", orderID).
		Str("transaction_id", settlement.TransactionID).
		Bool("already_processed", settlement.AlreadyProcessed).
		Msg("webhook settlement")
	return nil
}

func (s *Service) ListPlans() []billing.Plan {
	plans := make([]billing.Plan, 0, len(billing.PlanOrder))
	for _, id := range billing.PlanOrder {
		plans = append(plans, billing.Plans[id])
	}
	return plans
}

func (s *Service) ListTransactions(ctx context.Context, userID string, offset, limit int) ([]*models.Transaction, error) {
	offset, limit = transaction.ClampPage(offset, limit)
	return s.txns.ListByUser(ctx, userID, offset, limit)
}

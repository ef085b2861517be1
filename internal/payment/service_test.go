package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/blagoySimandov/imagify/internal/billing"
	"github.com/blagoySimandov/imagify/internal/ledger"
	"github.com/blagoySimandov/imagify/internal/memstore"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"
)

type fakeProvider struct {
	mu       sync.Mutex
	orders   map[string]*billing.Order
	requests []billing.OrderRequest
	err      error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{orders: make(map[string]*billing.Order)}
}

func (p *fakeProvider) CreateOrder(ctx context.Context, req billing.OrderRequest) (*billing.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return nil, p.err
	}
	p.requests = append(p.requests, req)
	order := &billing.Order{
		ID:       fmt.Sprintf("order_%d", len(p.orders)+1),
		Status:   billing.OrderStatusCreated,
		Receipt:  req.Receipt,
		Amount:   req.Plan.Amount,
		Currency: req.Currency,
	}
	p.orders[order.ID] = order
	cp := *order
	return &cp, nil
}

func (p *fakeProvider) FetchOrder(ctx context.Context, orderID string) (*billing.Order, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	order, ok := p.orders[orderID]
	if !ok {
		return nil, models.ErrOrderNotFound
	}
	cp := *order
	return &cp, nil
}

func (p *fakeProvider) markPaid(orderID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders[orderID].Status = billing.OrderStatusPaid
}

type fakeVerifier struct {
	event *stripe.Event
	err   error
}

func (v *fakeVerifier) VerifyWebhookSignature(payload []byte, signature string) (*stripe.Event, error) {
	return v.event, v.err
}

type fixture struct {
	store    *memstore.Store
	provider *fakeProvider
	service  *Service
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Create(context.Background(), &models.User{
		ID:            "u1",
		Name:          "Ada",
		Email:         "ada@example.com",
		CreditBalance: 5,
	}))
	provider := newFakeProvider()
	return &fixture{
		store:    store,
		provider: provider,
		service:  NewService(store.Transactions(), provider, ledger.New(store), "inr", opts...),
	}
}

func (f *fixture) balance(t *testing.T) int64 {
	t.Helper()
	balance, err := f.store.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	return balance
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)
	assert.Equal(t, int64(10), order.Amount)
	assert.Equal(t, "inr", order.Currency)
	assert.Equal(t, billing.OrderStatusCreated, order.Status)

	require.Len(t, f.provider.requests, 1)
	assert.Equal(t, int64(1000), f.provider.requests[0].Plan.MinorAmount())

	txn, err := f.store.GetTransaction(ctx, order.Receipt)
	require.NoError(t, err)
	assert.Equal(t, "u1", txn.UserID)
	assert.Equal(t, int64(100), txn.Credits)
	assert.False(t, txn.Payment)
	require.NotNil(t, txn.ProviderOrderID)
	assert.Equal(t, order.ID, *txn.ProviderOrderID)

	assert.Equal(t, int64(5), f.balance(t))
}

func TestCreateOrderRejects(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.service.CreateOrder(ctx, "u1", "Enterprise")
	assert.ErrorIs(t, err, models.ErrUnknownPlan)

	_, err = f.service.CreateOrder(ctx, "ghost", "Basic")
	assert.ErrorIs(t, err, models.ErrAccountNotFound)

	f.provider.err = fmt.Errorf("%w: down", models.ErrPaymentProvider)
	_, err = f.service.CreateOrder(ctx, "u1", "Basic")
	assert.ErrorIs(t, err, models.ErrPaymentProvider)
	assert.Empty(t, f.provider.requests)
}

func TestVerifySettlementGrantsOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)
	f.provider.markPaid(order.ID)

	settlement, err := f.service.VerifySettlement(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, settlement.AlreadyProcessed)
	assert.Equal(t, int64(100), settlement.Credits)
	assert.Equal(t, int64(105), settlement.Balance)
	assert.Equal(t, order.Receipt, settlement.TransactionID)

	settlement, err = f.service.VerifySettlement(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, settlement.AlreadyProcessed)
	assert.Equal(t, int64(105), f.balance(t))
}

func TestVerifySettlementConcurrentReplay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Advanced")
	require.NoError(t, err)
	f.provider.markPaid(order.ID)

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := f.service.VerifySettlement(ctx, order.ID)
			if err == nil && !s.AlreadyProcessed {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, int64(505), f.balance(t))
}

func TestVerifySettlementFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)

	_, err = f.service.VerifySettlement(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrPaymentNotCompleted)

	_, err = f.service.VerifySettlement(ctx, "order_missing")
	assert.ErrorIs(t, err, models.ErrOrderNotFound)

	_, err = f.service.VerifySettlement(ctx, "")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	// a paid order whose receipt points nowhere
	f.provider.orders["order_orphan"] = &billing.Order{ID: "order_orphan", Status: billing.OrderStatusPaid, Receipt: "nope"}
	_, err = f.service.VerifySettlement(ctx, "order_orphan")
	assert.ErrorIs(t, err, models.ErrTransactionNotFound)

	assert.Equal(t, int64(5), f.balance(t))
}

func TestVerifySettlementAmountMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Business")
	require.NoError(t, err)
	f.provider.orders[order.ID].Status = billing.OrderStatusPaid
	f.provider.orders[order.ID].Amount = 1

	_, err = f.service.VerifySettlement(ctx, order.ID)
	assert.ErrorIs(t, err, models.ErrPaymentProvider)
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, int64(5), f.balance(t))
}

func TestVerifySettlementZeroTotalIsNotCredited(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	order, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)
	f.provider.orders[order.ID].Status = billing.OrderStatusPaid
	f.provider.orders[order.ID].Amount = 0

	_, err = f.service.VerifySettlement(ctx, order.ID)
	assert.ErrorIs(t, err, ErrAmountMismatch)
	assert.Equal(t, int64(5), f.balance(t))
}

func checkoutEvent(t *testing.T, eventType, sessionID string) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(map[string]string{"id": sessionID, "object": "checkout.session"})
	require.NoError(t, err)
	return &stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleWebhook(t *testing.T) {
	ctx := context.Background()
	verifier := &fakeVerifier{}
	f := newFixture(t, WithWebhookVerifier(verifier))

	order, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)

	// completed but not yet paid: acknowledged, nothing granted
	verifier.event = checkoutEvent(t, billing.EventCheckoutSessionCompleted, order.ID)
	require.NoError(t, f.service.HandleWebhook(ctx, []byte("{}"), "sig"))
	assert.Equal(t, int64(5), f.balance(t))

	f.provider.markPaid(order.ID)
	require.NoError(t, f.service.HandleWebhook(ctx, []byte("{}"), "sig"))
	require.NoError(t, f.service.HandleWebhook(ctx, []byte("{}"), "sig"))
	assert.Equal(t, int64(105), f.balance(t))

	// the browser returning afterwards sees the purchase as already handled
	settlement, err := f.service.VerifySettlement(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, settlement.AlreadyProcessed)

	verifier.event = checkoutEvent(t, "charge.refunded", order.ID)
	assert.NoError(t, f.service.HandleWebhook(ctx, []byte("{}"), "sig"))

	verifier.err = errors.New("bad signature")
	assert.ErrorIs(t, f.service.HandleWebhook(ctx, []byte("{}"), "sig"), models.ErrInvalidInput)
}

func TestHandleWebhookDisabled(t *testing.T) {
	f := newFixture(t)
	err := f.service.HandleWebhook(context.Background(), []byte("{}"), "sig")
	assert.ErrorIs(t, err, ErrWebhookDisabled)
}

func TestListPlansAndTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	plans := f.service.ListPlans()
	require.Len(t, plans, 3)
	assert.Equal(t, "Basic", plans[0].ID)
	assert.Equal(t, "Business", plans[2].ID)

	_, err := f.service.CreateOrder(ctx, "u1", "Basic")
	require.NoError(t, err)
	_, err = f.service.CreateOrder(ctx, "u1", "Advanced")
	require.NoError(t, err)

	txns, err := f.service.ListTransactions(ctx, "u1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, txns, 2)

	txns, err = f.service.ListTransactions(ctx, "someone-else", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

package ledger

import (
	"context"
	"fmt"

	"github.com/blagoySimandov/imagify/internal/billing"
	"github.com/blagoySimandov/imagify/internal/metrics"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/rs/zerolog/log"
)

// Grant is the result of crediting a settled purchase.
type Grant struct {
	Credits int64
	Balance int64
	Applied bool
}

// Ledger is the single writer of account balances.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) CheckBalance(ctx context.Context, userID string) (int64, error) {
	return l.store.GetBalance(ctx, userID)
}

// Debit must only be called after the paid operation it charges for has
// succeeded.
func (l *Ledger) Debit(ctx context.Context, userID string, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, models.Invalid(fmt.Sprintf("debit amount must be positive, got %d", amount))
	}

	balance, err := l.store.DeductCredits(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	metrics.CreditsDebited.Add(float64(amount))
	log.Debug().
		Str("user_id", userID).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("credits debited")
	return balance, nil
}

// Credit grants a purchase's credits to its owner. Calling it again for the
// same transaction is a no-op that returns Applied=false.
func (l *Ledger) Credit(ctx context.Context, txn *models.Transaction) (*Grant, error) {
	if txn.Credits <= 0 {
		return nil, models.Invalid(fmt.Sprintf("transaction %s grants no credits", txn.ID))
	}

	if !txn.Payment {
		balance, applied, err := l.store.CreditSettlement(ctx, txn.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to credit transaction %s: %w", txn.ID, err)
		}
		if applied {
			metrics.CreditsGranted.Add(float64(txn.Credits))
			log.Info().
				Str("user_id", txn.UserID).
				Str("transaction_id", txn.ID).
				Int64("credits", txn.Credits).
				Int64("balance", balance).
				Msg("credits granted")
			return &Grant{Credits: txn.Credits, Balance: balance, Applied: true}, nil
		}
	}

	balance, err := l.store.GetBalance(ctx, txn.UserID)
	if err != nil {
		return nil, err
	}
	return &Grant{Balance: balance, Applied: false}, nil
}

func (l *Ledger) PlanToAmount(planID string) (billing.Plan, error) {
	return billing.GetPlan(planID)
}

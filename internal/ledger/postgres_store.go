package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	selectBalanceQuery = `SELECT credit_balance FROM users WHERE id = ?`

	deductCreditsQuery = `UPDATE users
SET credit_balance = credit_balance - ?, updated_at = now()
WHERE id = ? AND credit_balance >= ?
RETURNING credit_balance`

	creditSettlementQuery = `WITH settled AS (
	UPDATE transactions
	SET payment = TRUE, settled_at = now()
	WHERE id = ? AND payment = FALSE
	RETURNING user_id, credits
)
UPDATE users AS u
SET credit_balance = u.credit_balance + settled.credits, updated_at = now()
FROM settled
WHERE u.id = settled.user_id
RETURNING u.credit_balance`
)

type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetBalance(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, models.ErrAccountNotFound
	}

	var balance int64
	err := s.db.QueryRowContext(ctx, selectBalanceQuery, userID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read balance: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) DeductCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, models.ErrAccountNotFound
	}

	var balance int64
	err := s.db.QueryRowContext(ctx, deductCreditsQuery, amount, userID, amount).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to deduct credits: %w", err)
	}

	// the guard rejected the update: missing account or too few credits
	current, err := s.GetBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	return 0, &models.InsufficientCreditError{Balance: current}
}

func (s *PostgresStore) CreditSettlement(ctx context.Context, transactionID string) (int64, bool, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx, creditSettlementQuery, transactionID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to settle transaction: %w", err)
	}
	return balance, true, nil
}

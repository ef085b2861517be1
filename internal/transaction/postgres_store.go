package transaction

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const maxListLimit = 100

type PostgresStore struct {
	db *bun.DB
}

func NewPostgresStore(db *bun.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, txn *models.Transaction) error {
	if txn.CreatedAt.IsZero() {
		txn.CreatedAt = time.Now()
	}

	_, err := s.db.NewInsert().
		Model(models.TransactionFromDomain(txn)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	if _, err := uuid.Parse(transactionID); err != nil {
		return nil, models.ErrTransactionNotFound
	}

	txnDB := new(models.TransactionDB)
	err := s.db.NewSelect().
		Model(txnDB).
		Where("t.id = ?", transactionID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txnDB.ToTransaction(), nil
}

func (s *PostgresStore) SetProviderOrderID(ctx context.Context, transactionID, orderID string) error {
	res, err := s.db.NewUpdate().
		Model((*models.TransactionDB)(nil)).
		Set("provider_order_id = ?", orderID).
		Where("id = ?", transactionID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to set provider order id: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return models.ErrTransactionNotFound
	}
	return nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Transaction, error) {
	offset, limit = ClampPage(offset, limit)

	var rows []models.TransactionDB
	err := s.db.NewSelect().
		Model(&rows).
		Where("t.user_id = ?", userID).
		Order("t.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	txns := make([]*models.Transaction, 0, len(rows))
	for i := range rows {
		txns = append(txns, rows[i].ToTransaction())
	}
	return txns, nil
}

// ClampPage bounds a client-supplied page to something the store will serve.
func ClampPage(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	return offset, limit
}

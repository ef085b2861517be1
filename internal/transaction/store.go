package transaction

import (
	"context"

	"github.com/blagoySimandov/imagify/internal/models"
)

// Store persists purchase records. The settlement flag is deliberately absent
// from this interface: only the ledger flips it, together with the credit
// grant.
type Store interface {
	Create(ctx context.Context, txn *models.Transaction) error
	GetByID(ctx context.Context, transactionID string) (*models.Transaction, error)
	SetProviderOrderID(ctx context.Context, transactionID, orderID string) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Transaction, error)
}

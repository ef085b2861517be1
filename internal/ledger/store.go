package ledger

import "context"

// Store applies balance mutations as single conditional statements so that
// concurrent requests, on any number of server instances, cannot interleave
// into a lost update.
type Store interface {
	GetBalance(ctx context.Context, userID string) (int64, error)
	// DeductCredits decrements only if the balance covers amount. It returns
	// *models.InsufficientCreditError or models.ErrAccountNotFound otherwise.
	DeductCredits(ctx context.Context, userID string, amount int64) (int64, error)
	// CreditSettlement flips the transaction's payment flag and grants its
	// credits in one atomic step. applied is false if the flag was already set.
	CreditSettlement(ctx context.Context, transactionID string) (balance int64, applied bool, err error)
}

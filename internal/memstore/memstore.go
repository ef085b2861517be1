// Package memstore keeps accounts, purchases and balances in process memory.
// It honours the same contracts as the Postgres stores, including the
// conditional debit and the one-shot settlement, and backs the test suites.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/blagoySimandov/imagify/internal/models"
)

type Store struct {
	mu      sync.Mutex
	users   map[string]*models.User
	byEmail map[string]string
	txns    map[string]*models.Transaction
	orders  map[string]string
}

func New() *Store {
	return &Store{
		users:   make(map[string]*models.User),
		byEmail: make(map[string]string),
		txns:    make(map[string]*models.Transaction),
		orders:  make(map[string]string),
	}
}

// Users

func (s *Store) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return models.ErrDuplicateAccount
	}
	u := *user
	s.users[u.ID] = &u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) GetByID(ctx context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, models.ErrAccountNotFound
	}
	cp := *s.users[id]
	return &cp, nil
}

// Balances

func (s *Store) GetBalance(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, models.ErrAccountNotFound
	}
	return u.CreditBalance, nil
}

func (s *Store) DeductCredits(ctx context.Context, userID string, amount int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return 0, models.ErrAccountNotFound
	}
	if u.CreditBalance < amount {
		return 0, &models.InsufficientCreditError{Balance: u.CreditBalance}
	}
	u.CreditBalance -= amount
	return u.CreditBalance, nil
}

func (s *Store) CreditSettlement(ctx context.Context, transactionID string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.txns[transactionID]
	if !ok || txn.Payment {
		return 0, false, nil
	}
	u, ok := s.users[txn.UserID]
	if !ok {
		return 0, false, nil
	}

	now := time.Now()
	txn.Payment = true
	txn.SettledAt = &now
	u.CreditBalance += txn.Credits
	return u.CreditBalance, true, nil
}

// SetBalance is a test helper for seeding an account's balance.
func (s *Store) SetBalance(userID string, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.CreditBalance = balance
	}
}

// Transactions

func (s *Store) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := *txn
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
		txn.CreatedAt = t.CreatedAt
	}
	s.txns[t.ID] = &t
	return nil
}

func (s *Store) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txns[transactionID]
	if !ok {
		return nil, models.ErrTransactionNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *Store) SetProviderOrderID(ctx context.Context, transactionID, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.txns[transactionID]
	if !ok {
		return models.ErrTransactionNotFound
	}
	id := orderID
	t.ProviderOrderID = &id
	s.orders[orderID] = transactionID
	return nil
}

func (s *Store) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*models.Transaction
	for _, t := range s.txns {
		if t.UserID == userID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []*models.Transaction{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Transactions adapts the store to the transaction.Store method names, which
// collide with the user repository's.
func (s *Store) Transactions() *TransactionView {
	return &TransactionView{s: s}
}

type TransactionView struct {
	s *Store
}

func (v *TransactionView) Create(ctx context.Context, txn *models.Transaction) error {
	return v.s.CreateTransaction(ctx, txn)
}

func (v *TransactionView) GetByID(ctx context.Context, transactionID string) (*models.Transaction, error) {
	return v.s.GetTransaction(ctx, transactionID)
}

func (v *TransactionView) SetProviderOrderID(ctx context.Context, transactionID, orderID string) error {
	return v.s.SetProviderOrderID(ctx, transactionID, orderID)
}

func (v *TransactionView) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*models.Transaction, error) {
	return v.s.ListByUser(ctx, userID, offset, limit)
}

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blagoySimandov/imagify/internal/db"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository persists account identity. Balances are read here but only ever
// written through the ledger.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	userDB := models.UserFromDomain(user)
	now := time.Now()
	if userDB.CreatedAt.IsZero() {
		userDB.CreatedAt = now
	}
	userDB.UpdatedAt = now

	_, err := r.db.NewInsert().Model(userDB).Exec(ctx)
	if db.IsUniqueViolation(err) {
		return models.ErrDuplicateAccount
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return nil, models.ErrAccountNotFound
	}
	return r.getOne(ctx, "id = ?", userID)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg string) (*models.User, error) {
	userDB := new(models.UserDB)
	err := r.db.NewSelect().
		Model(userDB).
		Where(where, arg).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return userDB.ToUser(), nil
}

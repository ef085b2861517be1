package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/blagoySimandov/imagify/internal/user"
	"github.com/google/uuid"
)

// Service registers accounts and exchanges credentials for session tokens.
type Service struct {
	users  user.Repository
	issuer *TokenIssuer
}

func NewService(users user.Repository, issuer *TokenIssuer) *Service {
	return &Service{
		users:  users,
		issuer: issuer,
	}
}

func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = strings.TrimSpace(name)
	email = NormalizeEmail(email)

	if name == "" || email == "" || password == "" {
		return nil, models.Invalid("Missing Details")
	}
	// only a bare address is accepted so one mailbox maps to one account
	addr, err := mail.ParseAddress(email)
	if err != nil || NormalizeEmail(addr.Address) != email {
		return nil, models.Invalid("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, models.Invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}
	// bcrypt rejects longer inputs
	if len(password) > maxPasswordLength {
		return nil, models.Invalid(fmt.Sprintf("Password must be at most %d bytes", maxPasswordLength))
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, models.ErrDuplicateAccount
	} else if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &models.User{
		ID:            uuid.New().String(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		CreditBalance: models.DefaultCreditBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	// the unique index still catches a concurrent registration of the same email
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	return s.session(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, models.Invalid("Missing Details")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrAccountNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !CheckPassword(u.PasswordHash, password) {
		return nil, models.ErrInvalidCredentials
	}

	return s.session(u)
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Name: u.Name}, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

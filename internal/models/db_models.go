package models

import (
	"time"

	"github.com/uptrace/bun"
)

type UserDB struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID            string    `bun:"id,pk,type:uuid" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreditBalance int64     `bun:"credit_balance,notnull,default:5" json:"credit_balance"`
	CreatedAt     time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

func (u *UserDB) ToUser() *User {
	return &User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		CreditBalance: u.CreditBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func UserFromDomain(u *User) *UserDB {
	return &UserDB{
		ID:            u.ID,
		Name:          u.Name,
		Email:         u.Email,
		PasswordHash:  u.PasswordHash,
		CreditBalance: u.CreditBalance,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

type TransactionDB struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID              string     `bun:"id,pk,type:uuid" json:"id"`
	UserID          string     `bun:"user_id,notnull,type:uuid" json:"user_id"`
	User            *UserDB    `bun:"rel:belongs-to,join:user_id=id"`
	PlanID          string     `bun:"plan_id,notnull" json:"plan_id"`
	Amount          int64      `bun:"amount,notnull" json:"amount"`
	Currency        string     `bun:"currency,notnull" json:"currency"`
	Credits         int64      `bun:"credits,notnull" json:"credits"`
	ProviderOrderID *string    `bun:"provider_order_id,unique" json:"provider_order_id"`
	Payment         bool       `bun:"payment,notnull,default:false" json:"payment"`
	CreatedAt       time.Time  `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	SettledAt       *time.Time `bun:"settled_at" json:"settled_at"`
}

func (t *TransactionDB) ToTransaction() *Transaction {
	return &Transaction{
		ID:              t.ID,
		UserID:          t.UserID,
		PlanID:          t.PlanID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Credits:         t.Credits,
		ProviderOrderID: t.ProviderOrderID,
		Payment:         t.Payment,
		CreatedAt:       t.CreatedAt,
		SettledAt:       t.SettledAt,
	}
}

func TransactionFromDomain(t *Transaction) *TransactionDB {
	return &TransactionDB{
		ID:              t.ID,
		UserID:          t.UserID,
		PlanID:          t.PlanID,
		Amount:          t.Amount,
		Currency:        t.Currency,
		Credits:         t.Credits,
		ProviderOrderID: t.ProviderOrderID,
		Payment:         t.Payment,
		CreatedAt:       t.CreatedAt,
		SettledAt:       t.SettledAt,
	}
}

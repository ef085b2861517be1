package models

import "time"

// Transaction is a credit purchase. Payment flips to true exactly once, when
// the provider confirms the order was paid.
type Transaction struct {
	ID              string     `json:"_id"`
	UserID          string     `json:"userId"`
	PlanID          string     `json:"planId"`
	Amount          int64      `json:"amount"`
	Currency        string     `json:"currency"`
	Credits         int64      `json:"credits"`
	ProviderOrderID *string    `json:"providerOrderId,omitempty"`
	Payment         bool       `json:"payment"`
	CreatedAt       time.Time  `json:"date"`
	SettledAt       *time.Time `json:"settledAt,omitempty"`
}

package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateAccount   = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("not authorized")
	ErrAccountNotFound    = errors.New("user not found")

	ErrInsufficientCredit = errors.New("no credit balance")
	ErrUnknownPlan        = errors.New("plan not found")

	ErrGenerationProvider = errors.New("image generation failed")

	ErrOrderNotFound       = errors.New("order not found")
	ErrPaymentNotCompleted = errors.New("payment not completed")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrPaymentProvider     = errors.New("payment provider error")
)

// InsufficientCreditError reports the balance that failed the check.
type InsufficientCreditError struct {
	Balance int64
}

func (e *InsufficientCreditError) Error() string {
	return fmt.Sprintf("%s: balance %d", ErrInsufficientCredit, e.Balance)
}

func (e *InsufficientCreditError) Is(target error) bool {
	return target == ErrInsufficientCredit
}

// Invalid wraps ErrInvalidInput with a client-facing reason.
func Invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"invalid", models.Invalid("Missing Details"), http.StatusBadRequest, "Missing Details"},
		{"unknown plan", models.ErrUnknownPlan, http.StatusBadRequest, "Plan not found"},
		{"credentials", models.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"no account", fmt.Errorf("wrapped: %w", models.ErrAccountNotFound), http.StatusNotFound, "User not found"},
		{"no order", models.ErrOrderNotFound, http.StatusNotFound, "Order not found"},
		{"no transaction", models.ErrTransactionNotFound, http.StatusNotFound, "Transaction not found"},
		{"duplicate", models.ErrDuplicateAccount, http.StatusConflict, "User already exists"},
		{"unpaid", models.ErrPaymentNotCompleted, http.StatusPaymentRequired, "Payment Failed"},
		{"provider", fmt.Errorf("%w: 503", models.ErrGenerationProvider), http.StatusInternalServerError, "Image generation failed, no credits were used"},
		{"unclassified", errors.New("pq: connection refused"), http.StatusInternalServerError, internalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err, "test")

			assert.Equal(t, tt.status, rec.Code)
			var body errorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.Nil(t, body.CreditBalance)
		})
	}
}

func TestWriteErrorInsufficientCarriesBalance(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, httptest.NewRequest(http.MethodPost, "/", nil), &models.InsufficientCreditError{Balance: 0}, "generate")

	assert.Equal(t, http.StatusForbidden, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No Credit Balance", body["message"])
	assert.EqualValues(t, 0, body["creditBalance"])
}

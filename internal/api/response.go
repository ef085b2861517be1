package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	maxBodySize = 1 << 20

	invalidBodyMessage  = "Invalid request body"
	internalServerError = "Internal server error"
)

type errorResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	CreditBalance *int64 `json:"creditBalance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Success: false, Message: message})
}

// writeError maps a domain error onto a status code and the uniform failure
// body. Unclassified errors never leak their text to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error, stage string) {
	logging.EnrichError(r.Context(), err, stage)

	resp := errorResponse{Success: false}
	status := http.StatusInternalServerError

	var insufficient *models.InsufficientCreditError
	switch {
	case errors.As(err, &insufficient):
		status = http.StatusForbidden
		resp.Message = "No Credit Balance"
		resp.CreditBalance = &insufficient.Balance
	case errors.Is(err, models.ErrInvalidInput):
		status = http.StatusBadRequest
		resp.Message = invalidReason(err)
	case errors.Is(err, models.ErrUnknownPlan):
		status = http.StatusBadRequest
		resp.Message = "Plan not found"
	case errors.Is(err, models.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		resp.Message = "Invalid credentials"
	case errors.Is(err, models.ErrUnauthorized):
		status = http.StatusUnauthorized
		resp.Message = "Not Authorized. Login Again"
	case errors.Is(err, models.ErrAccountNotFound):
		status = http.StatusNotFound
		resp.Message = "User not found"
	case errors.Is(err, models.ErrTransactionNotFound):
		status = http.StatusNotFound
		resp.Message = "Transaction not found"
	case errors.Is(err, models.ErrOrderNotFound):
		status = http.StatusNotFound
		resp.Message = "Order not found"
	case errors.Is(err, models.ErrDuplicateAccount):
		status = http.StatusConflict
		resp.Message = "User already exists"
	case errors.Is(err, models.ErrPaymentNotCompleted):
		status = http.StatusPaymentRequired
		resp.Message = "Payment Failed"
	case errors.Is(err, models.ErrGenerationProvider):
		resp.Message = "Image generation failed, no credits were used"
	case errors.Is(err, models.ErrInsufficientCredit):
		status = http.StatusForbidden
		resp.Message = "No Credit Balance"
	default:
		resp.Message = internalServerError
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("stage", stage).Str("trace_id", logging.GetTraceID(r.Context())).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, resp)
}

func invalidReason(err error) string {
	prefix := models.ErrInvalidInput.Error() + ": "
	msg := err.Error()
	if i := strings.Index(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return "Invalid input"
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v zeroed.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

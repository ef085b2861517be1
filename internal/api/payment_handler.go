package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/blagoySimandov/imagify/internal/auth"
	"github.com/blagoySimandov/imagify/internal/billing"
	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/blagoySimandov/imagify/internal/payment"
	"github.com/rs/zerolog/log"
)

const (
	maxWebhookBodySize = 65536
	stripeSignature    = "Stripe-Signature"
)

type PaymentHandler struct {
	payments *payment.Service
}

func NewPaymentHandler(payments *payment.Service) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

type PayRequest struct {
	PlanID string `json:"planId"`
}

type PayResponse struct {
	Success bool           `json:"success"`
	Order   *billing.Order `json:"order"`
}

type VerifyPayRequest struct {
	OrderID string `json:"orderId"`
}

type VerifyPayResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Credits       int64  `json:"credits,omitempty"`
	CreditBalance int64  `json:"creditBalance"`
}

type PlanResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"desc"`
	Credits     int64  `json:"credits"`
	Price       int64  `json:"price"`
}

type PlansResponse struct {
	Success bool           `json:"success"`
	Plans   []PlanResponse `json:"plans"`
}

type TransactionsResponse struct {
	Success      bool                  `json:"success"`
	Transactions []*models.Transaction `json:"transactions"`
}

func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromRequest(r)
	if !ok {
		writeError(w, r, models.ErrUnauthorized, "pay")
		return
	}

	var req PayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}
	if req.PlanID == "" {
		writeError(w, r, models.Invalid("Missing Details"), "pay")
		return
	}

	order, err := h.payments.CreateOrder(r.Context(), userID, req.PlanID)
	if err != nil {
		writeError(w, r, err, "pay")
		return
	}

	writeJSON(w, http.StatusOK, PayResponse{Success: true, Order: order})
}

func (h *PaymentHandler) VerifyPay(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserIDFromRequest(r); !ok {
		writeError(w, r, models.ErrUnauthorized, "verify_pay")
		return
	}

	var req VerifyPayRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	settlement, err := h.payments.VerifySettlement(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, r, err, "verify_pay")
		return
	}

	if settlement.AlreadyProcessed {
		writeJSON(w, http.StatusOK, VerifyPayResponse{
			Success:       true,
			Message:       "Payment already processed",
			CreditBalance: settlement.Balance,
		})
		return
	}

	writeJSON(w, http.StatusOK, VerifyPayResponse{
		Success:       true,
		Message:       "Credits Added",
		Credits:       settlement.Credits,
		CreditBalance: settlement.Balance,
	})
}

func (h *PaymentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	plans := h.payments.ListPlans()
	resp := PlansResponse{Success: true, Plans: make([]PlanResponse, 0, len(plans))}
	for _, p := range plans {
		resp.Plans = append(resp.Plans, PlanResponse{
			ID:          p.ID,
			Name:        p.DisplayName,
			Description: p.Description,
			Credits:     p.Credits,
			Price:       p.Amount,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PaymentHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromRequest(r)
	if !ok {
		writeError(w, r, models.ErrUnauthorized, "transactions")
		return
	}

	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	txns, err := h.payments.ListTransactions(r.Context(), userID, offset, limit)
	if err != nil {
		writeError(w, r, err, "transactions")
		return
	}
	if txns == nil {
		txns = []*models.Transaction{}
	}

	writeJSON(w, http.StatusOK, TransactionsResponse{Success: true, Transactions: txns})
}

// Webhook lets the provider settle purchases without the browser returning.
// A non-2xx answer makes the provider retry, so only transient failures get
// one.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	err = h.payments.HandleWebhook(r.Context(), payload, r.Header.Get(stripeSignature))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, payment.ErrWebhookDisabled):
		writeMessage(w, http.StatusNotFound, "Webhook not configured")
	case errors.Is(err, models.ErrInvalidInput):
		log.Warn().Err(err).Msg("rejected webhook")
		writeError(w, r, err, "webhook")
	case errors.Is(err, models.ErrTransactionNotFound):
		// an order that was not opened by this service, nothing to retry
		log.Warn().Err(err).Msg("webhook for unknown transaction")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	case errors.Is(err, payment.ErrAmountMismatch):
		// retries cannot change a paid total, the order needs manual review
		logging.EnrichError(r.Context(), err, "webhook")
		log.Error().Err(err).Msg("webhook settlement refused")
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
	default:
		writeError(w, r, err, "webhook")
	}
}

package api

import (
	"net/http"

	"github.com/blagoySimandov/imagify/internal/auth"
	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/blagoySimandov/imagify/internal/user"
)

type UserHandler struct {
	auth  *auth.Service
	users user.Repository
}

func NewUserHandler(authService *auth.Service, users user.Repository) *UserHandler {
	return &UserHandler{auth: authService, users: users}
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionUser struct {
	Name string `json:"name"`
}

type SessionResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    sessionUser `json:"user"`
}

type CreditsResponse struct {
	Success bool         `json:"success"`
	Credits int64        `json:"credits"`
	User    *models.User `json:"user"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	session, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "register")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Success: true,
		Token:   session.Token,
		User:    sessionUser{Name: session.Name},
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, invalidBodyMessage)
		return
	}

	session, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		Success: true,
		Token:   session.Token,
		User:    sessionUser{Name: session.Name},
	})
}

func (h *UserHandler) Credits(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromRequest(r)
	if !ok {
		writeError(w, r, models.ErrUnauthorized, "credits")
		return
	}

	u, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		writeError(w, r, err, "credits")
		return
	}
	logging.EnrichBalance(r.Context(), u.CreditBalance)

	writeJSON(w, http.StatusOK, CreditsResponse{
		Success: true,
		Credits: u.CreditBalance,
		User:    u,
	})
}

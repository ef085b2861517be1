package api

import (
	"net/http"

	"github.com/blagoySimandov/imagify/internal/auth"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Users    *UserHandler
	Images   *ImageHandler
	Payments *PaymentHandler
}

type RouterConfig struct {
	AllowedOrigin string
	Auth          *auth.Middleware
	Limiter       *RateLimiter
}

func SetupRoutes(h Handlers, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()

	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)
	r.Use(MetricsMiddleware)
	r.Use(CORSMiddleware(cfg.AllowedOrigin))

	r.HandleFunc("/healthz", Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	requireAuth := cfg.Auth.RequireAuth
	var generate http.Handler = http.HandlerFunc(h.Images.GenerateImage)
	if cfg.Limiter != nil {
		generate = cfg.Limiter.Handler(generate)
	}
	generate = requireAuth(generate)

	// OPTIONS is listed so preflight requests reach the CORS middleware
	r.HandleFunc("/api/user/register", h.Users.Register).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/user/login", h.Users.Login).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/api/user/plans", h.Payments.Plans).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/api/billing/webhook", h.Payments.Webhook).Methods(http.MethodPost)

	r.Handle("/api/user/credits", requireAuth(http.HandlerFunc(h.Users.Credits))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/api/user/pay", requireAuth(http.HandlerFunc(h.Payments.Pay))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/api/user/verify-pay", requireAuth(http.HandlerFunc(h.Payments.VerifyPay))).Methods(http.MethodPost, http.MethodOptions)
	r.Handle("/api/user/transactions", requireAuth(http.HandlerFunc(h.Payments.Transactions))).Methods(http.MethodGet, http.MethodOptions)
	r.Handle("/api/image/generate-image", generate).Methods(http.MethodPost, http.MethodOptions)

	return r
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

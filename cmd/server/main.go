package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/blagoySimandov/imagify/internal/api"
	"github.com/blagoySimandov/imagify/internal/auth"
	"github.com/blagoySimandov/imagify/internal/billing"
	"github.com/blagoySimandov/imagify/internal/config"
	"github.com/blagoySimandov/imagify/internal/db"
	"github.com/blagoySimandov/imagify/internal/imagegen"
	"github.com/blagoySimandov/imagify/internal/ledger"
	"github.com/blagoySimandov/imagify/internal/logger"
	"github.com/blagoySimandov/imagify/internal/payment"
	"github.com/blagoySimandov/imagify/internal/transaction"
	"github.com/blagoySimandov/imagify/internal/user"
	"github.com/blagoySimandov/imagify/migrations"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Configure(cfg.LogLevel)

	bunDB, err := db.NewBunPostgresClient(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer bunDB.Close()

	group, err := migrations.Apply(ctx, bunDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}
	if !group.IsZero() {
		log.Info().Str("group", group.String()).Msg("applied migrations")
	}

	userRepo := user.NewUserRepository(bunDB)
	txnStore := transaction.NewPostgresStore(bunDB)
	creditLedger := ledger.New(ledger.NewPostgresStore(bunDB))

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	authService := auth.NewService(userRepo, issuer)

	generator, err := imagegen.NewFromConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create image generator")
	}
	gateway := imagegen.NewGateway(generator, creditLedger, cfg.ProviderTimeout)

	frontend := strings.TrimRight(cfg.FE_BASE_URL, "/")
	stripeProvider := billing.NewStripeProvider(billing.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		SuccessURL:    frontend + "/buy?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     frontend + "/buy",
	})
	var paymentOpts []payment.Option
	if cfg.StripeWebhookSecret != "" {
		paymentOpts = append(paymentOpts, payment.WithWebhookVerifier(stripeProvider))
	}
	payments := payment.NewService(txnStore, stripeProvider, creditLedger, cfg.PaymentCurrency, paymentOpts...)

	stopCleanup := make(chan struct{})
	limiter := api.NewRateLimiter(cfg.GenerateRatePerMinute)
	limiter.StartCleanup(10*time.Minute, stopCleanup)

	router := api.SetupRoutes(api.Handlers{
		Users:    api.NewUserHandler(authService, userRepo),
		Images:   api.NewImageHandler(gateway),
		Payments: api.NewPaymentHandler(payments),
	}, api.RouterConfig{
		AllowedOrigin: frontend,
		Auth:          auth.NewMiddleware(issuer),
		Limiter:       limiter,
	})

	srv := &http.Server{
		Addr:        cfg.ServerAddr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// generation can take as long as the provider timeout
		WriteTimeout: cfg.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		log.Info().Msg("shutting down server")
		close(stopCleanup)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown error")
		}
	}()

	log.Info().
		Str("addr", cfg.ServerAddr).
		Str("image_provider", generator.Name()).
		Msg("server starting")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed to start")
	}

	log.Info().Msg("server stopped")
}

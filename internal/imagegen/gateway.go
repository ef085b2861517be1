package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blagoySimandov/imagify/internal/logging"
	"github.com/blagoySimandov/imagify/internal/metrics"
	"github.com/blagoySimandov/imagify/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	MaxPromptLength = 1000
	CostPerImage    = 1
)

// CreditLedger is the slice of the ledger the gateway needs.
type CreditLedger interface {
	CheckBalance(ctx context.Context, userID string) (int64, error)
	Debit(ctx context.Context, userID string, amount int64) (int64, error)
}

type Result struct {
	Image         string
	CreditBalance int64
}

// Gateway charges one credit per image, and only for images that were
// actually produced.
type Gateway struct {
	generator ImageGenerator
	ledger    CreditLedger
	timeout   time.Duration
}

func NewGateway(generator ImageGenerator, ledger CreditLedger, timeout time.Duration) *Gateway {
	return &Gateway{
		generator: generator,
		ledger:    ledger,
		timeout:   timeout,
	}
}

func (g *Gateway) Generate(ctx context.Context, userID, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		metrics.Generations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, models.Invalid("Missing Details")
	}
	promptLength := utf8.RuneCountInString(prompt)
	if promptLength > MaxPromptLength {
		metrics.Generations.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, models.Invalid(fmt.Sprintf("Prompt must be at most %d characters", MaxPromptLength))
	}
	logging.EnrichGeneration(ctx, promptLength, g.generator.Name())

	balance, err := g.ledger.CheckBalance(ctx, userID)
	if err != nil {
		return nil, err
	}
	if balance < CostPerImage {
		metrics.Generations.WithLabelValues(metrics.OutcomeInsufficient).Inc()
		logging.EnrichBalance(ctx, balance)
		return nil, &models.InsufficientCreditError{Balance: balance}
	}

	image, err := g.generate(ctx, prompt)
	if err != nil {
		metrics.Generations.WithLabelValues(metrics.OutcomeProviderError).Inc()
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("provider", g.generator.Name()).
			Msg("image generation failed, no credit charged")
		return nil, fmt.Errorf("%w: %v", models.ErrGenerationProvider, err)
	}

	// someone else may have spent the last credit while the provider worked
	balance, err = g.ledger.Debit(ctx, userID, CostPerImage)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientCredit) {
			metrics.Generations.WithLabelValues(metrics.OutcomeInsufficient).Inc()
		}
		log.Warn().Err(err).Str("user_id", userID).Msg("debit failed after generation, image withheld")
		return nil, err
	}

	metrics.Generations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	logging.EnrichBalance(ctx, balance)
	return &Result{
		Image:         image.DataURI(),
		CreditBalance: balance,
	}, nil
}

func (g *Gateway) generate(ctx context.Context, prompt string) (*Image, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	image, err := g.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if image == nil || len(image.Data) == 0 {
		return nil, errors.New("provider returned no image data")
	}
	return image, nil
}

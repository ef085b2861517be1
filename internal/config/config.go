package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ImageProviderClipdrop = "clipdrop"
	ImageProviderGemini   = "gemini"
)

type Config struct {
	DatabaseURL           string
	ServerAddr            string
	FE_BASE_URL           string
	JWTSecret             string
	TokenTTL              time.Duration
	ImageProvider         string
	ClipdropAPIKey        string
	GeminiAPIKey          string
	GeminiImageModel      string
	ProviderTimeout       time.Duration
	StripeSecretKey       string
	StripeWebhookSecret   string
	PaymentCurrency       string
	GenerateRatePerMinute int
	LogLevel              string
}

// Load reads the process environment (and an optional .env file). Missing
// secrets are reported together so a misconfigured deploy fails once.
func Load() (*Config, error) {
	_ = godotenv.Load()

	if malformed := malformedEnv(); len(malformed) > 0 {
		return nil, fmt.Errorf("malformed environment variables: %s", strings.Join(malformed, ", "))
	}

	cfg := &Config{
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		ServerAddr:            getEnv("SERVER_ADDR", ":4000"),
		FE_BASE_URL:           getEnv("FE_BASE_URL", "http://localhost:5173"),
		JWTSecret:             getEnv("JWT_SECRET", ""),
		TokenTTL:              getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		ImageProvider:         strings.ToLower(getEnv("IMAGE_PROVIDER", ImageProviderClipdrop)),
		ClipdropAPIKey:        getEnv("CLIPDROP_API_KEY", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiImageModel:      getEnv("GEMINI_IMAGE_MODEL", "imagen-4.0-generate-001"),
		ProviderTimeout:       getEnvDuration("PROVIDER_TIMEOUT", 60*time.Second),
		StripeSecretKey:       getEnv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
		PaymentCurrency:       strings.ToLower(getEnv("PAYMENT_CURRENCY", "inr")),
		GenerateRatePerMinute: getEnvInt("GENERATE_RATE_PER_MINUTE", 10),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_SECRET_KEY")
	}

	switch c.ImageProvider {
	case ImageProviderClipdrop:
		if c.ClipdropAPIKey == "" {
			missing = append(missing, "CLIPDROP_API_KEY")
		}
	case ImageProviderGemini:
		if c.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	default:
		return fmt.Errorf("unknown IMAGE_PROVIDER %q", c.ImageProvider)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.TokenTTL <= 0 || c.ProviderTimeout <= 0 {
		return errors.New("TOKEN_TTL and PROVIDER_TIMEOUT must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

var (
	durationEnv = []string{"TOKEN_TTL", "PROVIDER_TIMEOUT"}
	intEnv      = []string{"GENERATE_RATE_PER_MINUTE"}
)

// malformedEnv lists set numeric variables that do not parse. An unset
// variable takes its default.
func malformedEnv() []string {
	var malformed []string
	for _, key := range durationEnv {
		if value := os.Getenv(key); value != "" {
			if _, err := time.ParseDuration(value); err != nil {
				malformed = append(malformed, key)
			}
		}
	}
	for _, key := range intEnv {
		if value := os.Getenv(key); value != "" {
			if _, err := strconv.Atoi(value); err != nil {
				malformed = append(malformed, key)
			}
		}
	}
	return malformed
}

// LoadDatabaseURL is for tools that only touch the database, such as the
// migrate command.
func LoadDatabaseURL() (string, error) {
	_ = godotenv.Load()

	dsn := getEnv("DATABASE_URL", "")
	if dsn == "" {
		return "", errors.New("missing required environment variable: DATABASE_URL")
	}
	return dsn, nil
}

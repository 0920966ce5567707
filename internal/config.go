package internal

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	LogLevel    string
	Port        uint16
	BaseURL     string
	DatabaseUrl string // empty runs the in-memory order store
	ThemeFile   string // optional YAML overrides for the storefront theme
	TrustProxy  bool   // honour X-Forwarded-For / X-Real-IP from a reverse proxy
	Lookup      LookupConfig
	Session     SessionConfig
	Delivery    DeliveryConfig
	NATS        NATSConfig
	Sentry      SentryConfig
}

// LookupConfig configures the postal-code directory client.
type LookupConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls how long an idle checkout session is kept.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
	CookieDomain  string
	CookieSecure  bool
}

// DeliveryConfig holds the flat delivery fee charged on every order.
type DeliveryConfig struct {
	FeeCents int64
	DaysMin  int
	DaysMax  int
}

// NATSConfig configures order event publishing. An empty URL disables it.
type NATSConfig struct {
	URL     string
	Subject string
}

// SentryConfig holds configuration for Sentry error tracking
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64
	TracesSampleRate float64
	Debug            bool
}

func NewConfig() (*Config, error) {
	// Try to load .env from current directory, then walk up to find it (max 2 levels)
	err := godotenv.Load()
	if err != nil {
		dir, _ := os.Getwd()
		found := false
		for i := 0; i < 2; i++ {
			dir = filepath.Join(dir, "..")
			if err := godotenv.Load(filepath.Join(dir, ".env")); err == nil {
				found = true
				break
			}
		}
		if !found {
			slog.Default().Warn("Warning: .env file not found, using environment variables and defaults")
		}
	}

	cfg := &Config{
		Env:         getEnv("ENV", "dev"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		Port:        getEnvInt("PORT", 3000),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseUrl: getEnv("DATABASE_URL", ""),
		ThemeFile:   getEnv("THEME_FILE", ""),
		TrustProxy:  getEnvBool("TRUST_PROXY", false),
		Lookup: LookupConfig{
			BaseURL: getEnv("VIACEP_BASE_URL", "https://viacep.com.br"),
			Timeout: getEnvDuration("LOOKUP_TIMEOUT", 5*time.Second),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("SESSION_TTL", 2*time.Hour),
			SweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			CookieDomain:  getEnv("COOKIE_DOMAIN", ""),
		},
		Delivery: DeliveryConfig{
			FeeCents: int64(getEnvInt("DELIVERY_FEE_CENTS", 350)),
			DaysMin:  int(getEnvInt("DELIVERY_DAYS_MIN", 0)),
			DaysMax:  int(getEnvInt("DELIVERY_DAYS_MAX", 1)),
		},
		NATS: NATSConfig{
			URL:     getEnv("NATS_URL", ""),
			Subject: getEnv("NATS_ORDER_SUBJECT", "checkout.order.placed"),
		},
		Sentry: SentryConfig{
			DSN:              getEnv("SENTRY_DSN", ""),
			Enabled:          getEnvBool("SENTRY_ENABLED", false), // Disabled by default for development
			Environment:      getEnv("SENTRY_ENVIRONMENT", "development"),
			Release:          getEnv("SENTRY_RELEASE", ""),
			SampleRate:       getEnvFloat("SENTRY_SAMPLE_RATE", 1.0),
			TracesSampleRate: getEnvFloat("SENTRY_TRACES_SAMPLE_RATE", 0.0),
			Debug:            getEnvBool("SENTRY_DEBUG", false),
		},
	}

	// Validate env
	validEnv := cfg.Env == "dev" || cfg.Env == "prod"
	if !validEnv {
		slog.Default().Warn("Invalid environment. Using default: prod", slog.String("env", cfg.Env))
		cfg.Env = "prod"
	}
	cfg.Session.CookieSecure = cfg.Env == "prod"

	// Validate log level
	validLevel := cfg.LogLevel == "info" || cfg.LogLevel == "debug" || cfg.LogLevel == "warn" || cfg.LogLevel == "error"
	if !validLevel {
		slog.Default().Warn("Invalid log level. Using default: info", slog.String("value", cfg.LogLevel))
		cfg.LogLevel = "info"
	}

	if cfg.Delivery.DaysMax < cfg.Delivery.DaysMin {
		return nil, fmt.Errorf("DELIVERY_DAYS_MAX (%d) must not be less than DELIVERY_DAYS_MIN (%d)", cfg.Delivery.DaysMax, cfg.Delivery.DaysMin)
	}

	if cfg.Session.TTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue uint16) uint16 {
	if value := os.Getenv(key); value != "" {
		var intValue uint16
		if _, err := fmt.Sscanf(value, "%d", &intValue); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var floatValue float64
		if _, err := fmt.Sscanf(value, "%f", &floatValue); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("750ms", "2h"). Zero disables
// the corresponding timeout.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Default().Warn("Invalid duration, using default", slog.String("key", key), slog.String("value", value))
	}
	return defaultValue
}

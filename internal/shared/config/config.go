package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"resume-portal/internal/shared/telemetry"
)

const (
	defaultCompletionURL = "https://api.textcortex.com/v1/texts/completions"
	devSessionSecret     = "dev-session-secret-change-me-0123456789"

	// MinSessionSecretLength is the shortest cookie signing key accepted in production.
	MinSessionSecretLength = 32
)

// Config holds application configuration.
type Config struct {
	Port               string
	Env                string
	DatabaseURL        string
	APIKey             string
	CompletionURL      string
	CompletionTimeout  time.Duration
	SessionSecret      string
	BcryptCost         int
	PasswordPepper     string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	AIRatePerMinute    float64
	AIRateBurst        int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles("config.env", ".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	dbURL := os.Getenv("DATABASE_URL")

	if env == "production" && dbURL == "" {
		telemetry.Warn("config.database_url_missing", map[string]any{"env": env})
	}

	// Production never falls back to the dev key; bootstrap rejects an empty secret there.
	sessionSecret := strings.TrimSpace(os.Getenv("SESSION_SECRET"))
	if sessionSecret == "" {
		if env == "production" {
			telemetry.Warn("config.session_secret_missing", map[string]any{"env": env})
		} else {
			sessionSecret = devSessionSecret
		}
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		Env:                env,
		DatabaseURL:        dbURL,
		APIKey:             strings.TrimSpace(os.Getenv("API_KEY")),
		CompletionURL:      getEnv("COMPLETION_URL", defaultCompletionURL),
		CompletionTimeout:  time.Duration(getEnvInt("COMPLETION_TIMEOUT_SECONDS", 0)) * time.Second,
		SessionSecret:      sessionSecret,
		BcryptCost:         getEnvInt("BCRYPT_COST", 12),
		PasswordPepper:     os.Getenv("PASSWORD_PEPPER"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
		AIRatePerMinute:    getEnvFloat("AI_RATE_PER_MINUTE", 10),
		AIRateBurst:        getEnvInt("AI_RATE_BURST", 5),
	}
}

// IsProduction reports whether the config targets production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("config.invalid_int", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func getEnvFloat(key string, def float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		telemetry.Warn("config.invalid_float", map[string]any{"key": key, "error": err.Error()})
		return def
	}
	return val
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Tracking   TrackingConfig
	Payout     PayoutConfig
	Webhook    WebhookConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

// TrackingConfig controls cookie issuance and click recording.
type TrackingConfig struct {
	CookieName          string
	DefaultCookieDays   int
	ClickWriteRetries   int
	ClickWriteBackoff   time.Duration
	RedirectFallbackURL string
}

// PayoutConfig controls payout batching and the disbursement provider.
type PayoutConfig struct {
	Currency           string
	MinAmount          float64
	ProviderBaseURL    string
	ProviderAPIKey     string
	ProviderWebhookURL string // callback will be ProviderWebhookURL + /api/v1/webhooks/payouts
}

// WebhookConfig holds the shared secret vendors sign conversion webhooks with.
type WebhookConfig struct {
	ConversionSecret string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         env("PORT", "8088"),
			Env:          env("APP_ENV", "development"),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "linkpulse:linkpulse@tcp(localhost:3306)/linkpulse?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "linkpulse",
		},
		Cloudinary: CloudinaryConfig{
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		Tracking: TrackingConfig{
			CookieName:          "lp_cid",
			DefaultCookieDays:   envInt("TRACKING_COOKIE_DAYS", 30),
			ClickWriteRetries:   3,
			ClickWriteBackoff:   100 * time.Millisecond,
			RedirectFallbackURL: env("REDIRECT_FALLBACK_URL", "https://linkpulse.io"),
		},
		Payout: PayoutConfig{
			Currency:           env("PAYOUT_CURRENCY", "USD"),
			MinAmount:          envFloat("PAYOUT_MIN_AMOUNT", 10),
			ProviderBaseURL:    env("PAYOUT_PROVIDER_URL", "https://api.payrail.example.com"),
			ProviderAPIKey:     env("PAYOUT_PROVIDER_KEY", ""),
			ProviderWebhookURL: env("PAYOUT_WEBHOOK_BASE_URL", "https://app.linkpulse.io"),
		},
		Webhook: WebhookConfig{
			ConversionSecret: env("CONVERSION_WEBHOOK_SECRET", ""),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

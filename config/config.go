package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	OAuth      OAuthConfig
	Cloudinary CloudinaryConfig
	Stripe     StripeConfig
	Checkout   CheckoutConfig
}

type ServerConfig struct {
	Port              string
	Env               string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

type DatabaseConfig struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

type CloudinaryConfig struct {
	CloudName string
	APIKey    string
	APISecret string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
}

// CheckoutConfig holds the storefront checkout parameters.
type CheckoutConfig struct {
	Currency          string
	MinChargeCents    int64 // processor minimum charge, 100 = $1.00
	RaffleTicketCents int64
	SnapshotTTL       time.Duration
	SuccessURL        string
	CancelURL         string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              env("PORT", "8080"),
			Env:               env("APP_ENV", "development"),
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			RateLimitRequests: int(envInt64("RATE_LIMIT_REQUESTS", 100)),
			RateLimitWindow:   time.Duration(envInt64("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		},
		Database: DatabaseConfig{
			DSN:             env("DATABASE_DSN", "tokyolore:tokyolore@tcp(localhost:3306)/tokyolore?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    10,
			MaxOpenConns:    100,
			ConnMaxLifetime: time.Hour,
		},
		Redis: RedisConfig{
			URL: env("REDIS_URL", "redis://localhost:6379/0"),
		},
		JWT: JWTConfig{
			AccessSecret:  env("JWT_ACCESS_SECRET", "change-me-in-production"),
			RefreshSecret: env("JWT_REFRESH_SECRET", "change-me-refresh"),
			AccessExpiry:  15 * time.Minute,
			RefreshExpiry: 168 * time.Hour,
			Issuer:        "tokyolore",
		},
		OAuth: OAuthConfig{
			GoogleClientID:     env("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: env("GOOGLE_CLIENT_SECRET", ""),
			GoogleRedirectURL:  env("GOOGLE_REDIRECT_URL", "http://localhost:8080/api/v1/auth/google/callback"),
		},
		Cloudinary: CloudinaryConfig{
			CloudName: env("CLOUDINARY_CLOUD_NAME", ""),
			APIKey:    env("CLOUDINARY_API_KEY", ""),
			APISecret: env("CLOUDINARY_API_SECRET", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     env("STRIPE_SECRET_KEY", ""),
			WebhookSecret: env("STRIPE_WEBHOOK_SECRET", ""),
		},
		Checkout: CheckoutConfig{
			Currency:          env("CHECKOUT_CURRENCY", "usd"),
			MinChargeCents:    envInt64("CHECKOUT_MIN_CHARGE_CENTS", 100),
			RaffleTicketCents: envInt64("RAFFLE_TICKET_CENTS", 500),
			SnapshotTTL:       2 * time.Hour,
			SuccessURL:        env("CHECKOUT_SUCCESS_URL", "http://localhost:3000/payment-success"),
			CancelURL:         env("CHECKOUT_CANCEL_URL", "http://localhost:3000/payment-cancelled"),
		},
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

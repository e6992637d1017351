// Package config loads service configuration from the environment.
package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port      string
	DBPath    string
	BaseURL   string
	LogLevel  string
	LogFormat string

	StripeSecretKey     string
	StripeWebhookSecret string
	MonthlyPriceID      string
	AnnualPriceID       string

	PostmarkToken string
	FromEmail     string

	OpenAIKey   string
	ReportModel string

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
}

// Load reads a .env file when present, then the process environment.
// Missing values fall back to local-development defaults.
func Load() Config {
	// A missing .env file is fine; real deployments set env directly.
	_ = godotenv.Load()

	cfg := Config{
		Port:      getenv("ROWAN_PORT", "8080"),
		DBPath:    getenv("ROWAN_DB_PATH", "rowan.db"),
		LogLevel:  getenv("ROWAN_LOG_LEVEL", "info"),
		LogFormat: getenv("ROWAN_LOG_FORMAT", "text"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		MonthlyPriceID:      os.Getenv("STRIPE_MONTHLY_PRICE_ID"),
		AnnualPriceID:       os.Getenv("STRIPE_ANNUAL_PRICE_ID"),

		PostmarkToken: os.Getenv("ROWAN_POSTMARK_TOKEN"),
		FromEmail:     os.Getenv("ROWAN_FROM_EMAIL"),

		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		ReportModel: os.Getenv("ROWAN_REPORT_MODEL"),

		VAPIDPublicKey:  os.Getenv("ROWAN_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("ROWAN_VAPID_PRIVATE_KEY"),
		VAPIDSubject:    getenv("ROWAN_VAPID_SUBJECT", "mailto:support@rowanhealth.app"),
	}
	cfg.BaseURL = getenv("ROWAN_BASE_URL", "http://localhost:"+cfg.Port)
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

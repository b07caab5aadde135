package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port string
	Mode string

	// Database configuration
	DatabaseURL string

	// Redis configuration (optional; empty disables attempt throttling)
	RedisURL string

	// Payment provider configuration
	WebhookSecret string

	// Product catalog: provider product id per category.
	// Shared by checkout-session creation and webhook interpretation,
	// the two must never diverge.
	SingleCourseProductID string
	SubscriptionProductID string
	LifetimeProductID     string

	// The one lesson accessible without any purchase
	FreeLessonID string

	// Operator alert configuration (Brevo transactional email)
	BrevoAPIKey    string
	BrevoFromEmail string
	AlertEmail     string
	ServiceName    string

	// Attempt rate limiting
	AttemptsPerMinute int
}

var AppConfig *Config

func InitConfig() error {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Ignore error if .env file doesn't exist
	}

	AppConfig = &Config{
		Port:                  getEnv("PORT", "8080"),
		Mode:                  getEnv("GIN_MODE", "debug"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		RedisURL:              getEnv("REDIS_URL", ""),
		WebhookSecret:         getEnv("CREEM_WEBHOOK_SECRET", ""),
		SingleCourseProductID: getEnv("SINGLE_COURSE_PRODUCT_ID", ""),
		SubscriptionProductID: getEnv("PRO_MEMBERSHIP_PRODUCT_ID", ""),
		LifetimeProductID:     getEnv("LIFETIME_PRO_PRODUCT_ID", ""),
		FreeLessonID:          getEnv("FREE_LESSON_ID", "greetings_l1"),
		BrevoAPIKey:           getEnv("BREVO_API_KEY", ""),
		BrevoFromEmail:        getEnv("BREVO_FROM_EMAIL", ""),
		AlertEmail:            getEnv("ALERT_EMAIL", ""),
		ServiceName:           getEnv("SERVICE_NAME", "Learning Service"),
		AttemptsPerMinute:     getEnvInt("ATTEMPTS_PER_MINUTE", 120),
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

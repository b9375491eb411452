package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds the full application configuration, populated from
// environment variables (with a .env file in development).
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Stripe   StripeConfig
	Jobs     JobConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

// StripeConfig switches the payment flow between real and mock intents.
// A present SecretKey means intents are authorized against the Stripe API
// with manual capture; otherwise mock references are issued. WebhookSecret
// is mandatory in production.
type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIURL        string
}

// JobConfig tunes the background worker.
type JobConfig struct {
	SweepCron      string // expire stale PENDING_PAYMENT bookings
	GraceCloseCron string // close COMPLETE_PENDING bookings past the grace window
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "OzzServe API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "ozzserve"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "change-me-in-production"),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			APIURL:        getEnv("STRIPE_API_URL", "https://api.stripe.com/v1"),
		},
		Jobs: JobConfig{
			SweepCron:      getEnv("JOB_SWEEP_CRON", "0 * * * *"),
			GraceCloseCron: getEnv("JOB_GRACE_CLOSE_CRON", "*/5 * * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the fatal-configuration rules. A production deploy
// without a webhook secret must refuse to start: an unsigned webhook
// endpoint would let anyone drive payment state.
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.Stripe.WebhookSecret == "" {
			return fmt.Errorf("STRIPE_WEBHOOK_SECRET is required in production")
		}
		if c.JWT.Secret == "" || c.JWT.Secret == "change-me-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

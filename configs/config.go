package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

type Config struct {
	AppName string `mapstructure:"APP_NAME"`
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"ENV"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	StripeSecretKey     string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	CloudinaryURL   string `mapstructure:"CLOUDINARY_URL"`
	ReceiptsEnabled bool   `mapstructure:"RECEIPTS_ENABLED"`

	BrevoAPIKey     string `mapstructure:"BREVO_API_KEY"`
	EmailSender     string `mapstructure:"EMAIL_SENDER"`
	EmailSenderName string `mapstructure:"EMAIL_SENDER_NAME"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
	AdminFullName string `mapstructure:"ADMIN_FULL_NAME"`

	// Percent retained by the platform when a listing has no rate of its own.
	DefaultCommissionRate float64       `mapstructure:"DEFAULT_COMMISSION_RATE"`
	SettlementLockTTL     time.Duration `mapstructure:"SETTLEMENT_LOCK_TTL"`
	ReconcileSchedule     string        `mapstructure:"RECONCILE_SCHEDULE"`
	ReconcileGrace        time.Duration `mapstructure:"RECONCILE_GRACE"`
	CompletionSchedule    string        `mapstructure:"COMPLETION_SCHEDULE"`

	AuthRequestsPerMinute int `mapstructure:"AUTH_REQUESTS_PER_MINUTE"`
}

var defaults = map[string]interface{}{
	"APP_NAME":                 "Stay Booking",
	"PORT":                     "8080",
	"ENV":                      "development",
	"LOG_LEVEL":                "info",
	"LOG_FORMAT":               "json",
	"DATABASE_URL":             "",
	"JWT_SECRET":               "",
	"JWT_TTL":                  "72h",
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"STRIPE_SECRET_KEY":        "",
	"STRIPE_WEBHOOK_SECRET":    "",
	"CLOUDINARY_URL":           "",
	"RECEIPTS_ENABLED":         false,
	"BREVO_API_KEY":            "",
	"EMAIL_SENDER":             "",
	"EMAIL_SENDER_NAME":        "",
	"ADMIN_EMAIL":              "",
	"ADMIN_PASSWORD":           "",
	"ADMIN_FULL_NAME":          "Platform Admin",
	"DEFAULT_COMMISSION_RATE":  10,
	"SETTLEMENT_LOCK_TTL":      "30s",
	"RECONCILE_SCHEDULE":       "*/10 * * * *",
	"RECONCILE_GRACE":          "1m",
	"COMPLETION_SCHEDULE":      "*/15 * * * *",
	"AUTH_REQUESTS_PER_MINUTE": 30,
}

// Load reads .env (when present) and the process environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.DefaultCommissionRate < 0 || c.DefaultCommissionRate > 100 {
		return errors.New("DEFAULT_COMMISSION_RATE must be between 0 and 100")
	}
	return nil
}

func (c *Config) CommissionRate() decimal.Decimal {
	return decimal.NewFromFloat(c.DefaultCommissionRate)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

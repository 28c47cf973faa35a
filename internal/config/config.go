package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Payroll  PayrollConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	FrontendURL string
}

// PayrollConfig holds the tunable business policy used by attendance
// derivation and the salary calculator. These are rules, not physics;
// they come from the environment with the company defaults below.
type PayrollConfig struct {
	StandardDayHours    float64
	OvertimeMultiplier  decimal.Decimal
	TaxRate             decimal.Decimal
	UnpaidLeaveDayHours decimal.Decimal
}

func Load() (*Config, error) {
	// A missing .env is fine in deployed environments; real env vars win.
	_ = godotenv.Load()

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "timeclock"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Payroll policy configuration
	standardDayHours, err := strconv.ParseFloat(getEnv("STANDARD_DAY_HOURS", "8"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid STANDARD_DAY_HOURS: %w", err)
	}

	overtimeMultiplier, err := decimal.NewFromString(getEnv("OVERTIME_MULTIPLIER", "1.5"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_MULTIPLIER: %w", err)
	}

	taxRate, err := decimal.NewFromString(getEnv("TAX_RATE", "0.20"))
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_RATE: %w", err)
	}

	unpaidLeaveDayHours, err := decimal.NewFromString(getEnv("UNPAID_LEAVE_DAY_HOURS", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid UNPAID_LEAVE_DAY_HOURS: %w", err)
	}

	config.Payroll = PayrollConfig{
		StandardDayHours:    standardDayHours,
		OvertimeMultiplier:  overtimeMultiplier,
		TaxRate:             taxRate,
		UnpaidLeaveDayHours: unpaidLeaveDayHours,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Payroll.StandardDayHours <= 0 {
		return fmt.Errorf("STANDARD_DAY_HOURS must be positive")
	}
	if c.Payroll.TaxRate.IsNegative() || c.Payroll.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("TAX_RATE must be in [0, 1)")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Business  BusinessConfig  `mapstructure:"business"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"SERVER_PORT"`
	Host         string        `mapstructure:"SERVER_HOST"`
	Env          string        `mapstructure:"ENV"`
	ReadTimeout  time.Duration `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int           `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int           `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
}

type SchedulerConfig struct {
	Timezone string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	MinMonthlyIncome     string `mapstructure:"MIN_MONTHLY_INCOME"`
	DebtServiceCeiling   string `mapstructure:"DEBT_SERVICE_CEILING"`
	DelinquencyThreshold int    `mapstructure:"DELINQUENCY_THRESHOLD"`
	ProductCacheTTL      string `mapstructure:"PRODUCT_CACHE_TTL"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "15s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "15s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DATABASE_CONN_MAX_LIFETIME", "5m")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")
	viper.SetDefault("MIN_MONTHLY_INCOME", "3000")
	viper.SetDefault("DEBT_SERVICE_CEILING", "0.5")
	viper.SetDefault("DELINQUENCY_THRESHOLD", 2)
	viper.SetDefault("PRODUCT_CACHE_TTL", "10m")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.DelinquencyThreshold <= 0 {
		return fmt.Errorf("DELINQUENCY_THRESHOLD must be greater than 0")
	}

	income, err := decimal.NewFromString(c.Business.MinMonthlyIncome)
	if err != nil {
		return fmt.Errorf("MIN_MONTHLY_INCOME must be a valid decimal: %w", err)
	}
	if income.IsNegative() {
		return fmt.Errorf("MIN_MONTHLY_INCOME must not be negative")
	}

	ceiling, err := decimal.NewFromString(c.Business.DebtServiceCeiling)
	if err != nil {
		return fmt.Errorf("DEBT_SERVICE_CEILING must be a valid decimal: %w", err)
	}
	if !ceiling.IsPositive() || ceiling.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("DEBT_SERVICE_CEILING must be in (0, 1]")
	}

	if _, err := time.ParseDuration(c.Business.ProductCacheTTL); err != nil {
		return fmt.Errorf("PRODUCT_CACHE_TTL must be a valid duration: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// GetMinMonthlyIncome returns the eligibility income floor as decimal
func (c *Config) GetMinMonthlyIncome() decimal.Decimal {
	income, _ := decimal.NewFromString(c.Business.MinMonthlyIncome)
	return income
}

// GetDebtServiceCeiling returns the affordability ceiling as decimal
func (c *Config) GetDebtServiceCeiling() decimal.Decimal {
	ceiling, _ := decimal.NewFromString(c.Business.DebtServiceCeiling)
	return ceiling
}

// GetProductCacheTTL returns the product catalog cache TTL as duration
func (c *Config) GetProductCacheTTL() time.Duration {
	ttl, _ := time.ParseDuration(c.Business.ProductCacheTTL)
	return ttl
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"
)

// DBConfig holds database configuration
type DBConfig struct {
	Adapter         string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	TestMode        bool
	TestDBName      string
	SSLMode         string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// Database returns the database name, honouring test mode
func (c *DBConfig) Database() string {
	if c.TestMode && c.TestDBName != "" {
		return c.TestDBName
	}
	return c.DBName
}

// GetDSN returns the connection string for the configured adapter
func (c *DBConfig) GetDSN() string {
	switch c.Adapter {
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.Database())
	case "sqlite":
		return c.Database()
	default:
		return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Database(), c.SSLMode)
	}
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Env             string
	ShutdownTimeout time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Prefix string
}

// InventoryConfig holds the currency table and soft-delete behaviour
type InventoryConfig struct {
	AllowedCurrencies     []string
	ConversionRates       map[string]float64
	DefaultCurrency       string
	RedirectSubcategories bool
}

// AuditConfig holds audit log retention settings
type AuditConfig struct {
	LogLimit    int
	LogInterval time.Duration
}

// Config holds all configuration
type Config struct {
	ServiceName string
	DB          DBConfig
	Server      ServerConfig
	Log         LogConfig
	Metrics     MetricsConfig
	Inventory   InventoryConfig
	Audit       AuditConfig
}

const defaultRates = "usd:1,eur:0.92,gbp:0.79,sek:10.5,nok:10.7,dkk:6.9"

// currencyFile mirrors the JSON layout accepted by CURRENCY_FILE
type currencyFile struct {
	AllowedCurrencies []string           `json:"allowed_currencies"`
	ConversionRates   map[string]float64 `json:"conversion_rates"`
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		// Not returning error as .env file is optional
		fmt.Printf("Warning: .env file not found, using environment variables\n")
	}

	rates, err := parseRates(getEnv("CURRENCY_RATES", defaultRates))
	if err != nil {
		return nil, err
	}

	config := &Config{
		ServiceName: serviceName,
		DB: DBConfig{
			Adapter:         strings.ToLower(getEnv("DB_ADAPTER", "postgres")),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", "password"),
			DBName:          getEnv("DB_NAME", "inventory"),
			TestMode:        getEnvAsBool("DB_TEST_MODE", false),
			TestDBName:      getEnv("DB_TEST_NAME", ""),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 1*time.Hour),
			LogLevel:        getEnvAsLogLevel("DB_LOG_LEVEL", logger.Warn),
		},
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("APP_ENV", "development"),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Prefix: getEnv("METRICS_PREFIX", serviceName),
		},
		Inventory: InventoryConfig{
			AllowedCurrencies:     getEnvAsList("ALLOWED_CURRENCIES", nil),
			ConversionRates:       rates,
			DefaultCurrency:       strings.ToLower(getEnv("DEFAULT_CURRENCY", "usd")),
			RedirectSubcategories: getEnvAsBool("INVENTORY_REDIRECT_SUBCATEGORIES", false),
		},
		Audit: AuditConfig{
			LogLimit:    getEnvAsInt("AUDIT_LOG_LIMIT", 100),
			LogInterval: getEnvAsDuration("AUDIT_LOG_INTERVAL", 60*time.Second),
		},
	}

	if path := getEnv("CURRENCY_FILE", ""); path != "" {
		if err := config.Inventory.loadCurrencyFile(path); err != nil {
			return nil, err
		}
	}
	if len(config.Inventory.AllowedCurrencies) == 0 {
		for code := range config.Inventory.ConversionRates {
			config.Inventory.AllowedCurrencies = append(config.Inventory.AllowedCurrencies, code)
		}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *InventoryConfig) loadCurrencyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read currency file: %w", err)
	}
	var f currencyFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse currency file: %w", err)
	}
	if len(f.AllowedCurrencies) > 0 {
		c.AllowedCurrencies = f.AllowedCurrencies
	}
	if len(f.ConversionRates) > 0 {
		c.ConversionRates = make(map[string]float64, len(f.ConversionRates))
		for code, rate := range f.ConversionRates {
			c.ConversionRates[strings.ToLower(code)] = rate
		}
	}
	return nil
}

// Validate checks that every allowed currency has a positive conversion rate
func (c *Config) Validate() error {
	inv := c.Inventory
	for i, code := range inv.AllowedCurrencies {
		code = strings.ToLower(code)
		inv.AllowedCurrencies[i] = code
		if len(code) != 3 {
			return fmt.Errorf("currency %q must be a 3-letter code", code)
		}
		rate, ok := inv.ConversionRates[code]
		if !ok || rate <= 0 {
			return fmt.Errorf("currency %q has no positive conversion rate", code)
		}
	}
	if !slices.Contains(inv.AllowedCurrencies, inv.DefaultCurrency) {
		return fmt.Errorf("default currency %q is not an allowed currency", inv.DefaultCurrency)
	}
	switch c.DB.Adapter {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported database adapter %q", c.DB.Adapter)
	}
	return nil
}

// AllowedRates returns the conversion rates restricted to the allowed currencies
func (c *InventoryConfig) AllowedRates() map[string]float64 {
	out := make(map[string]float64, len(c.AllowedCurrencies))
	for _, code := range c.AllowedCurrencies {
		out[code] = c.ConversionRates[code]
	}
	return out
}

// LogConfig returns the configuration as a zap logger-friendly format
func (c *Config) LogConfig() []zap.Field {
	return []zap.Field{
		zap.String("service", c.ServiceName),
		zap.String("environment", c.Server.Env),
		zap.String("db_adapter", c.DB.Adapter),
		zap.String("db_host", c.DB.Host),
		zap.String("db_port", c.DB.Port),
		zap.String("db_user", c.DB.User),
		zap.String("db_name", c.DB.Database()),
		zap.String("server_port", c.Server.Port),
		zap.Strings("currencies", c.Inventory.AllowedCurrencies),
	}
}

// parseRates reads "usd:1,eur:0.92" into a rate table
func parseRates(s string) (map[string]float64, error) {
	rates := make(map[string]float64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, value, ok := strings.Cut(pair, ":")
		if !ok {
			return nil, fmt.Errorf("invalid currency rate %q, expected code:rate", pair)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid rate for %q: %w", code, err)
		}
		rates[strings.ToLower(strings.TrimSpace(code))] = rate
	}
	return rates, nil
}

// Helper function to get environment variables with defaults
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as integers
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(valueStr, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, strings.ToLower(item))
		}
	}
	return out
}

// Helper function to get environment variables as durations
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// Helper function to get environment variables as log levels
func getEnvAsLogLevel(key string, defaultValue logger.LogLevel) logger.LogLevel {
	valueStr := getEnv(key, "")
	switch valueStr {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "warn":
		return logger.Warn
	case "info":
		return logger.Info
	default:
		return defaultValue
	}
}

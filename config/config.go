package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pricewatch/backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Perplexity PerplexityConfig `mapstructure:"perplexity"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"ratelimit"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Catalog    []ProductEntry   `mapstructure:"catalog"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// PerplexityConfig holds completion API configuration
type PerplexityConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds snapshot cache configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type"` // only "memory"
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration for the HTTP API
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute, 0 disables
}

// MonitorConfig holds price check settings
type MonitorConfig struct {
	Concurrency        int  `mapstructure:"concurrency"`
	EnableDebugLogging bool `mapstructure:"enable_debug_logging"`
}

// ProductEntry is one catalog product as written in the config file
type ProductEntry struct {
	Name           string   `mapstructure:"name"`
	Competitors    []string `mapstructure:"competitors"`
	TargetPrice    float64  `mapstructure:"target_price"`
	AlertThreshold float64  `mapstructure:"alert_threshold"`
}

// Load loads configuration from .env, environment variables and config files
func Load() (*Config, error) {
	v := newViper()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricewatch/")

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile loads configuration from an explicit config file
func LoadFromFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

// newViper prepares a viper instance with .env, env bindings and defaults
func newViper() *viper.Viper {
	if err := loadEnvFile(); err != nil {
		// A malformed .env should not prevent startup; env vars still apply
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	v := viper.New()

	v.SetEnvPrefix("PRICEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// PERPLEXITY_API_KEY is accepted as a fallback for the prefixed variable
	_ = v.BindEnv("perplexity.api_key", "PRICEWATCH_PERPLEXITY_API_KEY", "PERPLEXITY_API_KEY")

	setDefaults(v)
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads ./.env into the process environment without overriding
// variables that are already set. A missing file is not an error.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	// Perplexity defaults
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("perplexity.timeout", "60s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 30)

	// Monitor defaults
	v.SetDefault("monitor.concurrency", 2)
	v.SetDefault("monitor.enable_debug_logging", false)

	v.SetDefault("catalog", defaultCatalog())
}

// defaultCatalog is used when the config file declares no catalog
func defaultCatalog() []map[string]interface{} {
	return []map[string]interface{}{
		{
			"name":            "Xiaomi Smart Projector L1 PRO Full HD Noir",
			"competitors":     []string{"Fnac", "Cdiscount", "Boulanger", "Darty", "Amazon", "Rue du Commerce"},
			"target_price":    350.0,
			"alert_threshold": 15.0,
		},
		{
			"name":            "TONOR Cardioïde Dynamique USB/XLR",
			"competitors":     []string{"Amazon", "Cdiscount", "Thomann", "Music Store", "Fnac", "Woodbrass"},
			"target_price":    60.0,
			"alert_threshold": 8.0,
		},
	}
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Cache.Type != "memory" {
		return fmt.Errorf("cache type must be 'memory', got: %s", config.Cache.Type)
	}

	if config.Perplexity.BaseURL == "" {
		return fmt.Errorf("perplexity base URL is required")
	}

	if config.Monitor.Concurrency < 1 {
		return fmt.Errorf("monitor concurrency must be at least 1, got: %d", config.Monitor.Concurrency)
	}

	if len(config.Catalog) == 0 {
		return fmt.Errorf("catalog must contain at least one product")
	}

	if _, err := config.BuildCatalog(); err != nil {
		return err
	}

	return nil
}

// HasAPIKey reports whether a completion API key is configured
func (c *Config) HasAPIKey() bool {
	return c.Perplexity.APIKey != ""
}

// BuildCatalog converts the configured products into an immutable catalog
func (c *Config) BuildCatalog() (*domain.Catalog, error) {
	products := make([]domain.ProductConfig, 0, len(c.Catalog))
	for _, entry := range c.Catalog {
		products = append(products, domain.ProductConfig{
			Name:           strings.TrimSpace(entry.Name),
			Competitors:    entry.Competitors,
			TargetPrice:    decimal.NewFromFloat(entry.TargetPrice),
			AlertThreshold: decimal.NewFromFloat(entry.AlertThreshold),
		})
	}
	return domain.NewCatalog(products)
}

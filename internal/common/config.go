// Package common provides shared utilities for Borsa
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Borsa
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Clients     ClientsConfig   `toml:"clients"`
	Valuation   ValuationConfig `toml:"valuation"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds upstream data source configurations
type ClientsConfig struct {
	Yahoo     ClientConfig    `toml:"yahoo"`
	TCMB      ClientConfig    `toml:"tcmb"`
	Doviz     ClientConfig    `toml:"doviz"`
	WorldBank WorldBankConfig `toml:"worldbank"`
}

// ClientConfig holds the settings shared by every upstream client.
type ClientConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
	CacheTTL  string `toml:"cache_ttl"`
}

// GetTimeout parses and returns the timeout duration
func (c *ClientConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetCacheTTL parses the cache TTL, falling back to the supplied default.
func (c *ClientConfig) GetCacheTTL(fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(c.CacheTTL)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// WorldBankConfig adds the GDP lookup window to the client settings.
type WorldBankConfig struct {
	ClientConfig
	Country string `toml:"country"`
	Years   int    `toml:"years"`
}

// ValuationConfig holds DCF defaults and the fallbacks used when a live source is unavailable.
type ValuationConfig struct {
	RiskPremium            float64 `toml:"risk_premium"`
	ForecastYears          int     `toml:"forecast_years"`
	FallbackNominalRate    float64 `toml:"fallback_nominal_rate"`
	FallbackInflation      float64 `toml:"fallback_inflation"`
	FallbackGrowth         float64 `toml:"fallback_growth"`
	FallbackTerminalGrowth float64 `toml:"fallback_terminal_growth"`
	TerminalGrowthCap      float64 `toml:"terminal_growth_cap"`
	// Percent, used by the real growth calculator when TCMB is unreachable.
	FallbackInflationPct float64 `toml:"fallback_inflation_pct"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level    string   `toml:"level"`
	Format   string   `toml:"format"`
	Outputs  []string `toml:"outputs"`
	FilePath string   `toml:"file_path"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 4343,
		},
		Clients: ClientsConfig{
			Yahoo: ClientConfig{
				BaseURL:   "https://query2.finance.yahoo.com",
				RateLimit: 5,
				Timeout:   "30s",
				CacheTTL:  "1h",
			},
			TCMB: ClientConfig{
				BaseURL:   "https://www.tcmb.gov.tr",
				RateLimit: 2,
				Timeout:   "30s",
				CacheTTL:  "1h",
			},
			Doviz: ClientConfig{
				BaseURL:   "https://www.doviz.com",
				RateLimit: 2,
				Timeout:   "15s",
				CacheTTL:  "15m",
			},
			WorldBank: WorldBankConfig{
				ClientConfig: ClientConfig{
					BaseURL:   "https://api.worldbank.org",
					RateLimit: 5,
					Timeout:   "30s",
					CacheTTL:  "24h",
				},
				Country: "TR",
				Years:   10,
			},
		},
		Valuation: ValuationConfig{
			RiskPremium:            0.10,
			ForecastYears:          5,
			FallbackNominalRate:    0.30,
			FallbackInflation:      0.38,
			FallbackGrowth:         0.03,
			FallbackTerminalGrowth: 0.02,
			TerminalGrowthCap:      0.03,
			FallbackInflationPct:   50.0,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "text",
			Outputs:  []string{"console"},
			FilePath: "./logs/borsa.log",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Later files override earlier ones
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("BORSA_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("BORSA_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("BORSA_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("BORSA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("BORSA_RISK_PREMIUM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Valuation.RiskPremium = f
		}
	}

	if v := os.Getenv("BORSA_FORECAST_YEARS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Valuation.ForecastYears = n
		}
	}

	if v := os.Getenv("BORSA_YAHOO_BASE_URL"); v != "" {
		config.Clients.Yahoo.BaseURL = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Known provider names, used as dispatch tags for the fallback order and
// as keys for cooldown and call-budget state.
const (
	ProviderFinnhub      = "finnhub"
	ProviderAlphaVantage = "alphavantage"
	ProviderTwelveData   = "twelvedata"
)

type Config struct {
	FinnhubAPIKey      string
	AlphaVantageAPIKey string
	TwelveDataAPIKey   string

	// ProviderOrder is the fallback priority, highest first. Fixed for
	// the process lifetime.
	ProviderOrder []string

	// ProviderCooldown is how long a rate-limited provider is skipped.
	ProviderCooldown time.Duration
	RefreshInterval  time.Duration

	PortfolioPath   string
	SnapshotLogPath string
	TotalsLogPath   string
	HistoryDBPath   string

	ServerHost string
	ServerPort string

	LogLevel    string
	GeminiModel string
}

func Load() (*Config, error) {
	order, err := parseProviderOrder(getEnvOrDefault("PROVIDER_ORDER", "finnhub,alphavantage,twelvedata"))
	if err != nil {
		return nil, err
	}

	cooldown, err := time.ParseDuration(getEnvOrDefault("PROVIDER_COOLDOWN", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_COOLDOWN: %w", err)
	}

	refreshInterval, err := time.ParseDuration(getEnvOrDefault("REFRESH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}

	return &Config{
		FinnhubAPIKey:      os.Getenv("FINNHUB_API_KEY"),
		AlphaVantageAPIKey: os.Getenv("ALPHA_VANTAGE_API_KEY"),
		TwelveDataAPIKey:   os.Getenv("TWELVE_DATA_API_KEY"),
		ProviderOrder:      order,
		ProviderCooldown:   cooldown,
		RefreshInterval:    refreshInterval,
		PortfolioPath:      getEnvOrDefault("PORTFOLIO_CONFIG", "portfolio_config.json"),
		SnapshotLogPath:    getEnvOrDefault("PORTFOLIO_LOG", "portfolio_log.csv"),
		TotalsLogPath:      getEnvOrDefault("PORTFOLIO_TOTALS_LOG", "portfolio_totals_log.csv"),
		HistoryDBPath:      getEnvOrDefault("HISTORY_DB", "data/history.db"),
		ServerHost:         getEnvOrDefault("SERVER_HOST", "localhost"),
		ServerPort:         getEnvOrDefault("SERVER_PORT", "8090"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		GeminiModel:        getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
	}, nil
}

// APIKey returns the configured key for a provider name.
func (c *Config) APIKey(provider string) string {
	switch provider {
	case ProviderFinnhub:
		return c.FinnhubAPIKey
	case ProviderAlphaVantage:
		return c.AlphaVantageAPIKey
	case ProviderTwelveData:
		return c.TwelveDataAPIKey
	}
	return ""
}

func parseProviderOrder(raw string) ([]string, error) {
	var order []string
	for _, part := range strings.Split(raw, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		switch name {
		case ProviderFinnhub, ProviderAlphaVantage, ProviderTwelveData:
			order = append(order, name)
		default:
			return nil, fmt.Errorf("unknown provider %q in PROVIDER_ORDER", name)
		}
	}
	if len(order) == 0 {
		return nil, fmt.Errorf("PROVIDER_ORDER is empty")
	}
	return order, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

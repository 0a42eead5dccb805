package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"finnhub", "alphavantage", "twelvedata"}, cfg.ProviderOrder)
	assert.Equal(t, 5*time.Minute, cfg.ProviderCooldown)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, "portfolio_config.json", cfg.PortfolioPath)
	assert.Equal(t, "portfolio_log.csv", cfg.SnapshotLogPath)
	assert.Equal(t, "portfolio_totals_log.csv", cfg.TotalsLogPath)
	assert.Equal(t, "localhost", cfg.ServerHost)
	assert.Equal(t, "8090", cfg.ServerPort)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", "twelvedata, finnhub")
	t.Setenv("PROVIDER_COOLDOWN", "10m")
	t.Setenv("REFRESH_INTERVAL", "30m")
	t.Setenv("FINNHUB_API_KEY", "fh-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"twelvedata", "finnhub"}, cfg.ProviderOrder)
	assert.Equal(t, 10*time.Minute, cfg.ProviderCooldown)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, "fh-key", cfg.APIKey(ProviderFinnhub))
	assert.Empty(t, cfg.APIKey(ProviderTwelveData))
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", "finnhub,yahoo")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "yahoo")
}

func TestLoadRejectsEmptyProviderOrder(t *testing.T) {
	t.Setenv("PROVIDER_ORDER", " , ")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDurations(t *testing.T) {
	t.Setenv("PROVIDER_COOLDOWN", "five minutes")

	_, err := Load()
	assert.Error(t, err)
}

func TestAPIKeyUnknownProvider(t *testing.T) {
	cfg := &Config{}
	assert.Empty(t, cfg.APIKey("yahoo"))
}

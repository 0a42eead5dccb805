package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"foliotrack/internal/application"
	"foliotrack/internal/commentary"
	"foliotrack/internal/domain"
	"foliotrack/internal/infrastructure/config"
	"foliotrack/internal/infrastructure/marketdata"
	"foliotrack/internal/infrastructure/marketdata/alphavantage"
	"foliotrack/internal/infrastructure/marketdata/finnhub"
	"foliotrack/internal/infrastructure/marketdata/twelvedata"
	"foliotrack/internal/infrastructure/persistence"
	"foliotrack/internal/infrastructure/persistence/history"
	httpHandler "foliotrack/internal/interfaces/http"
	"foliotrack/internal/interfaces/tui"
)

// setupLogger configures structured logging. Output goes to a file so the
// terminal stays free for the UI.
func setupLogger(level string) (io.Closer, error) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	f, err := os.OpenFile("foliotrack.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return f, nil
}

// buildRateGate encodes the free-tier limits of each provider. Finnhub
// allows 60 calls per minute, Alpha Vantage 5 per minute with a 25 call
// daily budget, Twelve Data 8 per minute.
func buildRateGate() *marketdata.RateGate {
	return marketdata.NewRateGate(map[string]marketdata.Limit{
		config.ProviderFinnhub:      {MinInterval: time.Second},
		config.ProviderAlphaVantage: {MinInterval: 12 * time.Second, DailyQuota: 25},
		config.ProviderTwelveData:   {MinInterval: 8 * time.Second},
	})
}

// buildProviders creates one client per configured provider, in fallback
// order. Providers without an API key are skipped.
func buildProviders(cfg *config.Config, gate *marketdata.RateGate) []marketdata.Provider {
	var providers []marketdata.Provider
	for _, name := range cfg.ProviderOrder {
		key := cfg.APIKey(name)
		if key == "" {
			slog.Warn("Provider skipped, no API key configured", "provider", name)
			continue
		}
		switch name {
		case config.ProviderFinnhub:
			providers = append(providers, finnhub.NewClient(key, gate))
		case config.ProviderAlphaVantage:
			providers = append(providers, alphavantage.NewClient(key, gate))
		case config.ProviderTwelveData:
			providers = append(providers, twelvedata.NewClient(key, gate))
		}
	}
	return providers
}

// buildServer wires the control API the same way the UI is wired, so both
// surfaces share the coordinator's single-flight guarantee.
func buildServer(cfg *config.Config, service *application.PortfolioService, coordinator *application.Coordinator, hist *history.Store) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := httpHandler.NewHandler(service, coordinator, hist)
	httpHandler.SetupRoutes(router, handler)

	return &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := setupLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
		}
	}()

	gate := buildRateGate()
	providers := buildProviders(cfg, gate)
	if len(providers) == 0 {
		return fmt.Errorf("no market data providers configured, set at least one API key")
	}
	slog.Info("Market data providers ready", "count", len(providers))

	cache := marketdata.NewQuoteCache()
	fetcher := marketdata.NewFetcher(providers, marketdata.NewCooldownTracker(), cache, cfg.ProviderCooldown)

	store := persistence.NewStore(cfg.PortfolioPath)
	portfolio, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load portfolio: %w", err)
	}
	if portfolio == nil {
		portfolio = &domain.Portfolio{}
		slog.Info("No portfolio configuration found, starting empty", "path", cfg.PortfolioPath)
	}

	// Names persisted in the config file are authoritative, so seed the
	// cache and skip the provider lookup for them.
	for _, h := range portfolio.Holdings {
		if h.Name != "" && !strings.EqualFold(h.Name, h.Symbol) {
			cache.SetName(h.Symbol, h.Name)
		}
	}

	snapshotLog, err := persistence.NewSnapshotLog(cfg.SnapshotLogPath, cfg.TotalsLogPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot logs: %w", err)
	}

	hist, err := history.Open(cfg.HistoryDBPath)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}
	defer func() {
		if err := hist.Close(); err != nil {
			slog.Warn("Failed to close history database", "error", err)
		}
	}()

	queue := application.NewQueue()
	service := application.NewPortfolioService(portfolio, store, queue)
	coordinator := application.NewCoordinator(service, fetcher, queue, snapshotLog, hist)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := application.NewScheduler(coordinator, cfg.RefreshInterval)
	go scheduler.Start(ctx)
	defer scheduler.Stop()

	server := buildServer(cfg, service, coordinator, hist)
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("Control API starting", "host", cfg.ServerHost, "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	var commentator tui.Commentator
	if os.Getenv("GEMINI_API_KEY") != "" {
		gen, err := commentary.NewGenerator(ctx, cfg.GeminiModel, service, hist)
		if err != nil {
			slog.Warn("Commentary disabled", "error", err)
		} else {
			commentator = gen
		}
	}

	coordinator.BackfillNames(ctx)
	if err := coordinator.TriggerUpdate(ctx); err != nil && !errors.Is(err, application.ErrUpdateInProgress) {
		slog.Error("Initial update failed to start", "error", err)
	}

	program := tea.NewProgram(
		tui.NewModel(service, coordinator, queue, commentator),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("UI error: %w", err)
	}

	select {
	case err := <-serverErrors:
		return fmt.Errorf("control API error: %w", err)
	default:
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("control API shutdown error: %w", err)
	}

	slog.Info("Exited gracefully")
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

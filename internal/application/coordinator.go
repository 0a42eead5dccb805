package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"foliotrack/internal/domain"
)

// ErrUpdateInProgress is returned when a refresh is triggered while one is
// already running. The trigger is rejected, never queued.
var ErrUpdateInProgress = errors.New("update already in progress")

// PriceSource resolves prices and names for the refresh. Implemented by
// marketdata.Fetcher.
type PriceSource interface {
	CurrentPrices(ctx context.Context, symbols []string) map[string]*domain.Decimal
	CompanyName(ctx context.Context, symbol string) string
}

// Snapshot is one per-holding row recorded on every refresh.
type Snapshot struct {
	Timestamp      time.Time
	Symbol         string
	Name           string
	Allocation     float64
	Shares         float64
	InitialPrice   domain.Decimal
	CurrentPrice   domain.Decimal
	ProfitLoss     domain.Decimal
	PurchaseDate   string
	DaysOwned      int
	HasDays        bool
	PortfolioValue domain.Decimal
}

// Totals is the portfolio-wide row recorded once per refresh.
type Totals struct {
	Timestamp  time.Time
	TotalPL    domain.Decimal
	TotalValue domain.Decimal
}

// SnapshotRecorder receives append-only refresh output. Recorder failures
// are surfaced as log lines and never abort the refresh.
type SnapshotRecorder interface {
	RecordSnapshot(s Snapshot) error
	RecordTotals(t Totals) error
}

// Coordinator runs portfolio-wide price refreshes one at a time. The
// single-flight guard is a compare-and-swap flag: a trigger while a
// refresh is running observes failure immediately instead of waiting, and
// the flag is released on every exit path of the refresh body.
type Coordinator struct {
	service   *PortfolioService
	fetcher   PriceSource
	queue     *Queue
	recorders []SnapshotRecorder

	running atomic.Bool
	now     func() time.Time
}

func NewCoordinator(service *PortfolioService, fetcher PriceSource, queue *Queue, recorders ...SnapshotRecorder) *Coordinator {
	return &Coordinator{
		service:   service,
		fetcher:   fetcher,
		queue:     queue,
		recorders: recorders,
		now:       time.Now,
	}
}

// Updating reports whether a refresh is currently in flight.
func (c *Coordinator) Updating() bool {
	return c.running.Load()
}

// TriggerUpdate starts a refresh on its own goroutine and returns
// immediately. It is the shared entry point for the hourly schedule, the
// UI's manual refresh and the control API; all observe the same
// single-flight guarantee.
func (c *Coordinator) TriggerUpdate(ctx context.Context) error {
	if len(c.service.Symbols()) == 0 {
		c.queue.Push(LogLine{Text: "No stocks to update."})
		return nil
	}
	if !c.running.CompareAndSwap(false, true) {
		return ErrUpdateInProgress
	}

	c.queue.Push(StatusUpdate{Updating: true})
	go func() {
		defer func() {
			c.running.Store(false)
			c.queue.Push(StatusUpdate{Updating: false})
		}()
		c.refresh(ctx)
	}()
	return nil
}

// BackfillNames resolves company names for holdings that have none, each
// on its own short-lived goroutine. Results arrive through the queue; the
// UI applies them and persists via the service.
func (c *Coordinator) BackfillNames(ctx context.Context) {
	for i, h := range c.service.Holdings() {
		if h.Name != "" && !strings.EqualFold(h.Name, h.Symbol) {
			continue
		}
		go func(index int, symbol string) {
			name := c.fetcher.CompanyName(ctx, symbol)
			c.queue.Push(NameUpdate{Index: index, Symbol: symbol, Name: name})
		}(i, h.Symbol)
	}
}

func (c *Coordinator) refresh(ctx context.Context) {
	start := c.now()
	c.queue.Push(LogLine{Text: fmt.Sprintf("Updating prices at %s...", start.Format("15:04:05"))})

	holdings := c.service.Holdings()
	symbols := make([]string, len(holdings))
	for i, h := range holdings {
		symbols[i] = h.Symbol
	}

	prices := c.fetcher.CurrentPrices(ctx, symbols)
	if !anyPrice(prices) {
		c.queue.Push(LogLine{Text: "No prices fetched."})
		return
	}

	totalPL, totalValue, err := c.service.Totals(prices)
	if err != nil {
		c.queue.Push(LogLine{Text: fmt.Sprintf("Update error: %v", err)})
		return
	}

	ts := c.now()
	for i := range holdings {
		h := &holdings[i]
		price := prices[h.Symbol]
		if price == nil {
			continue
		}

		pl, err := h.ProfitLoss(*price)
		if err != nil {
			c.queue.Push(LogLine{Text: fmt.Sprintf("Update error for %s: %v", h.Symbol, err)})
			continue
		}
		days, hasDays := h.DaysOwned(ts)

		c.queue.Push(RowUpdate{
			Index:        i,
			Symbol:       h.Symbol,
			CurrentPrice: *price,
			ProfitLoss:   pl,
			DaysOwned:    days,
			HasDays:      hasDays,
		})

		name := h.Name
		if name == "" {
			name = h.Symbol
		}
		snap := Snapshot{
			Timestamp:      ts,
			Symbol:         h.Symbol,
			Name:           name,
			Allocation:     h.Allocation,
			Shares:         h.Shares,
			InitialPrice:   h.InitialPrice,
			CurrentPrice:   *price,
			ProfitLoss:     pl,
			PurchaseDate:   h.PurchaseDate,
			DaysOwned:      days,
			HasDays:        hasDays,
			PortfolioValue: totalValue,
		}
		for _, r := range c.recorders {
			if err := r.RecordSnapshot(snap); err != nil {
				c.queue.Push(LogLine{Text: fmt.Sprintf("Logging error: %v", err)})
			}
		}
	}

	c.queue.Push(TotalsUpdate{TotalPL: totalPL, TotalValue: totalValue, At: ts})
	for _, r := range c.recorders {
		if err := r.RecordTotals(Totals{Timestamp: ts, TotalPL: totalPL, TotalValue: totalValue}); err != nil {
			c.queue.Push(LogLine{Text: fmt.Sprintf("Logging error: %v", err)})
		}
	}

	value, _ := totalValue.Float64()
	c.queue.Push(LogLine{Text: fmt.Sprintf("Update complete. Total value: $%.2f", value)})
	slog.Info("portfolio refresh complete", "symbols", len(symbols), "elapsed", c.now().Sub(start))
}

func anyPrice(prices map[string]*domain.Decimal) bool {
	for _, p := range prices {
		if p != nil {
			return true
		}
	}
	return false
}

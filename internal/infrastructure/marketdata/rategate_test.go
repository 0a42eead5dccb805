package marketdata

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateGateUnknownProvider(t *testing.T) {
	gate := NewRateGate(map[string]Limit{})
	assert.NoError(t, gate.Acquire(context.Background(), "anything"))
}

func TestRateGateDailyQuota(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"alphavantage": {DailyQuota: 2},
	})
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return now }

	require.NoError(t, gate.Acquire(context.Background(), "alphavantage"))
	require.NoError(t, gate.Acquire(context.Background(), "alphavantage"))

	err := gate.Acquire(context.Background(), "alphavantage")
	require.Error(t, err)
	var quotaErr *QuotaExhaustedError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "alphavantage", quotaErr.Provider)
	assert.Equal(t, 2, quotaErr.Limit)

	// A failed acquire does not consume budget: the same error repeats.
	err = gate.Acquire(context.Background(), "alphavantage")
	require.ErrorAs(t, err, &quotaErr)
}

func TestRateGateQuotaResetsNextDay(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"alphavantage": {DailyQuota: 1},
	})
	now := time.Date(2026, 8, 28, 23, 0, 0, 0, time.UTC)
	gate.now = func() time.Time { return now }

	require.NoError(t, gate.Acquire(context.Background(), "alphavantage"))
	require.Error(t, gate.Acquire(context.Background(), "alphavantage"))

	now = now.Add(2 * time.Hour) // past midnight
	require.NoError(t, gate.Acquire(context.Background(), "alphavantage"))
}

func TestRateGateMinIntervalBlocks(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"finnhub": {MinInterval: 30 * time.Millisecond},
	})

	require.NoError(t, gate.Acquire(context.Background(), "finnhub"))

	start := time.Now()
	require.NoError(t, gate.Acquire(context.Background(), "finnhub"))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestRateGateMinIntervalUnderConcurrentCallers(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"finnhub": {MinInterval: 50 * time.Millisecond},
	})
	require.NoError(t, gate.Acquire(context.Background(), "finnhub"))

	// Name backfill fires one goroutine per holding at the same gate; each
	// admission must still land a full interval after the previous one.
	var mu sync.Mutex
	var admitted []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Acquire(context.Background(), "finnhub"); err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			admitted = append(admitted, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, admitted, 3)
	sort.Slice(admitted, func(i, j int) bool { return admitted[i].Before(admitted[j]) })
	for i := 1; i < len(admitted); i++ {
		assert.GreaterOrEqual(t, admitted[i].Sub(admitted[i-1]), 35*time.Millisecond)
	}
}

func TestRateGateQuotaUnderConcurrentCallers(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"alphavantage": {DailyQuota: 3},
	})

	var granted, rejected atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := gate.Acquire(context.Background(), "alphavantage")
			if err == nil {
				granted.Add(1)
				return
			}
			var quotaErr *QuotaExhaustedError
			if errors.As(err, &quotaErr) {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), granted.Load())
	assert.Equal(t, int32(7), rejected.Load())
}

func TestRateGateCancelledWaitRefundsQuota(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"finnhub": {MinInterval: time.Hour, DailyQuota: 2},
	})
	require.NoError(t, gate.Acquire(context.Background(), "finnhub"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, gate.Acquire(ctx, "finnhub"), context.Canceled)

	// The abandoned reservation is not counted against the daily budget.
	gate.mu.Lock()
	count := gate.states["finnhub"].dayCount
	gate.mu.Unlock()
	assert.Equal(t, 1, count)
}

func TestRateGateContextCancelled(t *testing.T) {
	gate := NewRateGate(map[string]Limit{
		"finnhub": {MinInterval: time.Hour},
	})
	require.NoError(t, gate.Acquire(context.Background(), "finnhub"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.Acquire(ctx, "finnhub")
	assert.ErrorIs(t, err, context.Canceled)
}

package marketdata

import (
	"context"
	"sync"
	"time"
)

// Limit describes the call budget for one provider.
type Limit struct {
	// MinInterval allows at most one call per interval, enforced by
	// blocking the calling goroutine.
	MinInterval time.Duration
	// DailyQuota caps calls per calendar day; zero means unlimited.
	DailyQuota int
}

type gateState struct {
	nextAllowed time.Time
	dayCount    int
	resetDate   string
}

// RateGate enforces per-provider call spacing and daily quotas. Acquire
// sleeps the caller to honor MinInterval and fails fast with
// *QuotaExhaustedError once the daily quota is spent, so callers can move
// on to the next provider instead of waiting for a reset.
type RateGate struct {
	mu     sync.Mutex
	limits map[string]Limit
	states map[string]*gateState

	now func() time.Time
}

func NewRateGate(limits map[string]Limit) *RateGate {
	return &RateGate{
		limits: limits,
		states: make(map[string]*gateState),
		now:    time.Now,
	}
}

// Acquire blocks until the provider may be called, or fails immediately
// with *QuotaExhaustedError. The slot is reserved under the lock before
// the wait: the admission time advances and the daily counter is consumed
// at reservation, so concurrent callers queue one interval apart instead
// of racing the same stale state. A quota rejection mutates nothing; a
// wait cancelled by ctx refunds the reserved quota slot.
func (g *RateGate) Acquire(ctx context.Context, provider string) error {
	limit, ok := g.limits[provider]
	if !ok || (limit.MinInterval <= 0 && limit.DailyQuota <= 0) {
		return nil
	}

	g.mu.Lock()
	st := g.states[provider]
	if st == nil {
		st = &gateState{}
		g.states[provider] = st
	}

	now := g.now()
	today := now.Format("2006-01-02")
	if st.resetDate != today {
		st.dayCount = 0
		st.resetDate = today
	}

	if limit.DailyQuota > 0 && st.dayCount >= limit.DailyQuota {
		g.mu.Unlock()
		return &QuotaExhaustedError{Provider: provider, Limit: limit.DailyQuota}
	}

	at := now
	if limit.MinInterval > 0 {
		if st.nextAllowed.After(at) {
			at = st.nextAllowed
		}
		st.nextAllowed = at.Add(limit.MinInterval)
	}
	st.dayCount++
	g.mu.Unlock()

	if wait := at.Sub(now); wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-ctx.Done():
			g.mu.Lock()
			st.dayCount--
			g.mu.Unlock()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

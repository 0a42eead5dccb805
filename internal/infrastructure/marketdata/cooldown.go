package marketdata

import (
	"sync"
	"time"
)

// CooldownTracker remembers, per provider, the time after which the
// provider may be tried again following a rate-limit signal. Eligibility is
// purely a function of the current time against the stored expiry, so
// passing time alone restores a provider without any explicit reset.
type CooldownTracker struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func NewCooldownTracker() *CooldownTracker {
	return &CooldownTracker{until: make(map[string]time.Time)}
}

// Eligible reports whether the provider may be called at the given time.
// A provider that was never marked is always eligible.
func (t *CooldownTracker) Eligible(provider string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !now.Before(t.until[provider])
}

// MarkRateLimited excludes the provider until now + d.
func (t *CooldownTracker) MarkRateLimited(provider string, now time.Time, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.until[provider] = now.Add(d)
}

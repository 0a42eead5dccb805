package marketdata

import (
	"errors"
	"fmt"
)

// ErrNoData reports a well-formed provider response that carried no usable
// price or name. Callers fall through to the next provider without touching
// cooldown state.
var ErrNoData = errors.New("no data for symbol")

// RateLimitError reports provider throttling. The provider should be put on
// cooldown before being tried again.
type RateLimitError struct {
	Provider string
	Reason   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %s", e.Provider, e.Reason)
}

// QuotaExhaustedError reports that a provider's daily call budget is spent.
// The provider is off the table until its quota resets.
type QuotaExhaustedError struct {
	Provider string
	Limit    int
}

func (e *QuotaExhaustedError) Error() string {
	return fmt.Sprintf("%s daily API limit reached (%d calls)", e.Provider, e.Limit)
}

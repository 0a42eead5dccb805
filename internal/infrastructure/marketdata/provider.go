package marketdata

import (
	"context"

	"foliotrack/internal/domain"
)

// Provider is the capability every market-data backend exposes: the current
// price and the company name for a ticker symbol.
//
// Both calls follow the same three-outcome contract:
//   - a usable result, returned with a nil error;
//   - a well-formed "no data" response, reported as ErrNoData;
//   - provider throttling, reported as *RateLimitError (or
//     *QuotaExhaustedError when the daily budget is gone).
//
// Anything else is a transient failure wrapped as a plain error. Each
// implementation is responsible for acquiring its RateGate slot before the
// network call and for translating its provider's error surface into the
// outcomes above.
type Provider interface {
	Name() string
	FetchPrice(ctx context.Context, symbol string) (domain.Decimal, error)
	FetchName(ctx context.Context, symbol string) (string, error)
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PurchaseDateLayout is the wire and display format for purchase dates.
const PurchaseDateLayout = "2006-01-02"

// Holding is one tracked stock position: how much of the portfolio it
// represents and what was paid for it. Current price, profit/loss and days
// owned are derived at refresh time, never stored.
type Holding struct {
	ID           string  `json:"id"`
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name,omitempty"`
	Allocation   float64 `json:"allocation"`
	Shares       float64 `json:"shares"`
	InitialPrice Decimal `json:"initial_price"`
	PurchaseDate string  `json:"purchase_date,omitempty"`
}

// NewHolding creates a holding with a fresh ID and a canonicalized symbol.
func NewHolding(symbol string, allocation, shares float64, initialPrice Decimal, purchaseDate string) Holding {
	return Holding{
		ID:           uuid.New().String(),
		Symbol:       CanonicalSymbol(symbol),
		Allocation:   allocation,
		Shares:       shares,
		InitialPrice: initialPrice,
		PurchaseDate: strings.TrimSpace(purchaseDate),
	}
}

// CanonicalSymbol normalizes ticker input to the uppercase form used as the
// key for price cache, name cache and cooldown lookups.
func CanonicalSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Value returns shares * current price.
func (h *Holding) Value(current Decimal) (Decimal, error) {
	shares, err := NewDecimalFromFloat(h.Shares)
	if err != nil {
		return Zero, err
	}
	return current.Mul(shares)
}

// ProfitLoss returns (current - initial) * shares.
func (h *Holding) ProfitLoss(current Decimal) (Decimal, error) {
	diff, err := current.Sub(h.InitialPrice)
	if err != nil {
		return Zero, err
	}
	shares, err := NewDecimalFromFloat(h.Shares)
	if err != nil {
		return Zero, err
	}
	return diff.Mul(shares)
}

// DaysOwned returns the whole days since the purchase date. The second
// return value is false when no date is set or it does not parse, matching
// the blank cell the UI shows in that case.
func (h *Holding) DaysOwned(now time.Time) (int, bool) {
	if strings.TrimSpace(h.PurchaseDate) == "" {
		return 0, false
	}
	bought, err := time.ParseInLocation(PurchaseDateLayout, h.PurchaseDate, now.Location())
	if err != nil {
		return 0, false
	}
	return int(now.Sub(bought).Hours() / 24), true
}

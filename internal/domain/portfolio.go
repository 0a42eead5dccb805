package domain

import (
	"fmt"
	"math"
	"strings"
)

// Portfolio is the set of tracked holdings plus the capital they were
// allocated from. It is loaded from persisted configuration at startup and
// saved back after every mutation.
type Portfolio struct {
	TotalInvestment float64   `json:"total_investment"`
	Holdings        []Holding `json:"holdings"`
	Description     string    `json:"description,omitempty"`
}

func NewPortfolio(totalInvestment float64) Portfolio {
	return Portfolio{TotalInvestment: totalInvestment}
}

// Initialize builds the holdings list from parallel symbol/allocation
// sequences, deriving share counts from the allocation and the purchase
// price. A manual purchase price wins over a fetched one; a symbol with
// neither is an error.
func (p *Portfolio) Initialize(totalInvestment float64, symbols []string, allocations []float64, prices map[string]*Decimal, purchasePrices []*Decimal, purchaseDates []string) error {
	if totalInvestment <= 0 {
		return fmt.Errorf("investment must be positive")
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no stocks entered")
	}
	if len(allocations) != len(symbols) {
		return fmt.Errorf("number of percentages must match number of stocks")
	}
	var sum float64
	for _, a := range allocations {
		if a <= 0 {
			return fmt.Errorf("percentages must be positive")
		}
		sum += a
	}
	if math.Abs(sum-100) > 0.01 {
		return fmt.Errorf("percentages must sum to 100")
	}

	holdings := make([]Holding, 0, len(symbols))
	for i, raw := range symbols {
		sym := CanonicalSymbol(raw)

		var price Decimal
		switch {
		case i < len(purchasePrices) && purchasePrices[i] != nil && !purchasePrices[i].IsZero():
			price = *purchasePrices[i]
		case prices[sym] != nil:
			price = *prices[sym]
		default:
			return fmt.Errorf("could not fetch price for %s, please enter a purchase price", sym)
		}

		priceF, err := price.Float64()
		if err != nil || priceF <= 0 {
			return fmt.Errorf("invalid purchase price for %s", sym)
		}
		invested := allocations[i] / 100 * totalInvestment
		shares := invested / priceF

		date := ""
		if i < len(purchaseDates) {
			date = strings.TrimSpace(purchaseDates[i])
		}
		holdings = append(holdings, NewHolding(sym, allocations[i], shares, price, date))
	}

	p.TotalInvestment = totalInvestment
	p.Holdings = holdings
	return nil
}

// AddHolding appends a holding; duplicate symbols are rejected.
func (p *Portfolio) AddHolding(h Holding) error {
	for _, existing := range p.Holdings {
		if existing.Symbol == h.Symbol {
			return fmt.Errorf("symbol %s already in portfolio", h.Symbol)
		}
	}
	p.Holdings = append(p.Holdings, h)
	return nil
}

// DeleteHolding removes the holding at the given zero-based index.
func (p *Portfolio) DeleteHolding(index int) error {
	if index < 0 || index >= len(p.Holdings) {
		return fmt.Errorf("invalid holding index %d", index)
	}
	p.Holdings = append(p.Holdings[:index], p.Holdings[index+1:]...)
	return nil
}

// IndexOf returns the position of a symbol in the holdings list, or -1.
func (p *Portfolio) IndexOf(symbol string) int {
	sym := CanonicalSymbol(symbol)
	for i, h := range p.Holdings {
		if h.Symbol == sym {
			return i
		}
	}
	return -1
}

// Symbols returns the canonical symbols in holding order.
func (p *Portfolio) Symbols() []string {
	out := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Symbol
	}
	return out
}

// Totals computes total profit/loss and total value over all holdings. A
// symbol with no current price falls back to its initial price, so a
// holding that never fetched contributes zero P&L but full value.
func (p *Portfolio) Totals(prices map[string]*Decimal) (totalPL, totalValue Decimal, err error) {
	totalPL, totalValue = Zero, Zero
	for i := range p.Holdings {
		h := &p.Holdings[i]
		current := h.InitialPrice
		if cp := prices[h.Symbol]; cp != nil {
			current = *cp
		}
		pl, err := h.ProfitLoss(current)
		if err != nil {
			return Zero, Zero, fmt.Errorf("profit/loss for %s: %w", h.Symbol, err)
		}
		value, err := h.Value(current)
		if err != nil {
			return Zero, Zero, fmt.Errorf("value for %s: %w", h.Symbol, err)
		}
		if totalPL, err = totalPL.Add(pl); err != nil {
			return Zero, Zero, err
		}
		if totalValue, err = totalValue.Add(value); err != nil {
			return Zero, Zero, err
		}
	}
	return totalPL, totalValue, nil
}

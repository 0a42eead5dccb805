package application

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"foliotrack/internal/domain"
)

// Saver persists the portfolio configuration after a mutation.
type Saver interface {
	Save(p *domain.Portfolio) error
}

// PortfolioService owns the live portfolio and serializes every mutation
// behind one lock, so a user edit arriving over the control API cannot
// race a background name backfill into a lost update. Reads hand out
// copies; nothing outside this type touches the portfolio directly.
type PortfolioService struct {
	mu        sync.RWMutex
	portfolio *domain.Portfolio
	store     Saver
	queue     *Queue
}

func NewPortfolioService(portfolio *domain.Portfolio, store Saver, queue *Queue) *PortfolioService {
	return &PortfolioService{
		portfolio: portfolio,
		store:     store,
		queue:     queue,
	}
}

// Holdings returns a copy of the current holdings in display order.
func (s *PortfolioService) Holdings() []domain.Holding {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Holding, len(s.portfolio.Holdings))
	copy(out, s.portfolio.Holdings)
	return out
}

// Symbols returns the canonical symbols in holding order.
func (s *PortfolioService) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portfolio.Symbols()
}

// Summary returns a copy of the whole portfolio for read-only consumers.
func (s *PortfolioService) Summary() domain.Portfolio {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := *s.portfolio
	p.Holdings = make([]domain.Holding, len(s.portfolio.Holdings))
	copy(p.Holdings, s.portfolio.Holdings)
	return p
}

// Totals computes portfolio totals against the given price set.
func (s *PortfolioService) Totals(prices map[string]*domain.Decimal) (domain.Decimal, domain.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.portfolio.Totals(prices)
}

// AddHolding validates and appends a new holding, persists the portfolio
// and notifies the UI.
func (s *PortfolioService) AddHolding(symbol string, allocation, shares float64, initialPrice domain.Decimal, purchaseDate string) (domain.Holding, error) {
	sym := domain.CanonicalSymbol(symbol)
	if sym == "" {
		return domain.Holding{}, fmt.Errorf("symbol is required")
	}
	if allocation <= 0 {
		return domain.Holding{}, fmt.Errorf("allocation must be positive")
	}
	if shares <= 0 {
		return domain.Holding{}, fmt.Errorf("shares must be positive")
	}
	if initialPrice.Cmp(domain.Zero) <= 0 {
		return domain.Holding{}, fmt.Errorf("purchase price must be positive")
	}
	purchaseDate = strings.TrimSpace(purchaseDate)
	if purchaseDate != "" {
		if _, err := time.Parse(domain.PurchaseDateLayout, purchaseDate); err != nil {
			return domain.Holding{}, fmt.Errorf("invalid purchase date %q, want %s", purchaseDate, domain.PurchaseDateLayout)
		}
	}

	h := domain.NewHolding(sym, allocation, shares, initialPrice, purchaseDate)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.portfolio.AddHolding(h); err != nil {
		return domain.Holding{}, err
	}
	if err := s.store.Save(s.portfolio); err != nil {
		return domain.Holding{}, fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.notifyChangedLocked()
	s.queue.Push(LogLine{Text: fmt.Sprintf("Added %s", sym)})
	return h, nil
}

// RemoveHolding deletes a holding by symbol, persists the portfolio and
// notifies the UI.
func (s *PortfolioService) RemoveHolding(symbol string) error {
	sym := domain.CanonicalSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.portfolio.IndexOf(sym)
	if index < 0 {
		return fmt.Errorf("symbol %s not in portfolio", sym)
	}
	if err := s.portfolio.DeleteHolding(index); err != nil {
		return err
	}
	if err := s.store.Save(s.portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	s.notifyChangedLocked()
	s.queue.Push(LogLine{Text: fmt.Sprintf("Deleted %s", sym)})
	return nil
}

// SetHoldingName records a resolved company name and persists it, so the
// next process start does not repeat the lookup.
func (s *PortfolioService) SetHoldingName(symbol, name string) error {
	sym := domain.CanonicalSymbol(symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	index := s.portfolio.IndexOf(sym)
	if index < 0 {
		return fmt.Errorf("symbol %s not in portfolio", sym)
	}
	if s.portfolio.Holdings[index].Name == name {
		return nil
	}
	s.portfolio.Holdings[index].Name = name
	if err := s.store.Save(s.portfolio); err != nil {
		return fmt.Errorf("failed to save portfolio: %w", err)
	}
	return nil
}

func (s *PortfolioService) notifyChangedLocked() {
	holdings := make([]domain.Holding, len(s.portfolio.Holdings))
	copy(holdings, s.portfolio.Holdings)
	s.queue.Push(PortfolioChanged{Holdings: holdings})
}

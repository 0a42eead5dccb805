package persistence

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"foliotrack/internal/domain"
)

// fileConfig mirrors the on-disk JSON: parallel sequences keyed the same
// way earlier versions of the tool wrote them, so existing config files
// keep loading unchanged.
type fileConfig struct {
	TotalInvestment float64          `json:"total_investment"`
	Stocks          []string         `json:"stocks"`
	Allocations     []float64        `json:"allocations"`
	Shares          []float64        `json:"shares"`
	InitialPrices   []domain.Decimal `json:"initial_prices"`
	PurchaseDates   []string         `json:"purchase_dates"`
	CompanyNames    []string         `json:"company_names,omitempty"`
	Description     string           `json:"description,omitempty"`
}

// Store persists the portfolio configuration as a JSON file. Writes are
// serialized through a mutex so concurrent savers (a background name
// backfill and a user edit) cannot interleave into a lost update, and the
// previous file is copied to a .bak sibling before every overwrite.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the portfolio to disk, backing up the previous version first.
func (s *Store) Save(p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := fileConfig{
		TotalInvestment: p.TotalInvestment,
		Stocks:          make([]string, 0, len(p.Holdings)),
		Allocations:     make([]float64, 0, len(p.Holdings)),
		Shares:          make([]float64, 0, len(p.Holdings)),
		InitialPrices:   make([]domain.Decimal, 0, len(p.Holdings)),
		PurchaseDates:   make([]string, 0, len(p.Holdings)),
		Description:     p.Description,
	}
	names := make([]string, 0, len(p.Holdings))
	haveNames := false
	for _, h := range p.Holdings {
		cfg.Stocks = append(cfg.Stocks, h.Symbol)
		cfg.Allocations = append(cfg.Allocations, h.Allocation)
		cfg.Shares = append(cfg.Shares, h.Shares)
		cfg.InitialPrices = append(cfg.InitialPrices, h.InitialPrice)
		cfg.PurchaseDates = append(cfg.PurchaseDates, h.PurchaseDate)
		names = append(names, h.Name)
		if h.Name != "" {
			haveNames = true
		}
	}
	if haveNames {
		cfg.CompanyNames = names
	}

	data, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode portfolio: %w", err)
	}

	// Best-effort backup of the previous version.
	if prev, err := os.ReadFile(s.path); err == nil {
		if err := os.WriteFile(s.path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("failed to back up %s: %w", s.path, err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

// Load reads the portfolio from disk. A missing file is not an error; it
// returns (nil, nil) and the caller starts with an empty portfolio.
func (s *Store) Load() (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var cfg fileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("malformed portfolio config %s: %w", s.path, err)
	}
	if len(cfg.Allocations) != len(cfg.Stocks) ||
		len(cfg.Shares) != len(cfg.Stocks) ||
		len(cfg.InitialPrices) != len(cfg.Stocks) {
		return nil, fmt.Errorf("malformed portfolio config %s: parallel sequences differ in length", s.path)
	}

	p := domain.NewPortfolio(cfg.TotalInvestment)
	p.Description = cfg.Description
	for i, sym := range cfg.Stocks {
		date := ""
		if i < len(cfg.PurchaseDates) {
			date = cfg.PurchaseDates[i]
		}
		h := domain.NewHolding(sym, cfg.Allocations[i], cfg.Shares[i], cfg.InitialPrices[i], date)
		if i < len(cfg.CompanyNames) {
			h.Name = cfg.CompanyNames[i]
		}
		p.Holdings = append(p.Holdings, h)
	}
	return &p, nil
}

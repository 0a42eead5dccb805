package persistence

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"sync"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

const logTimestampLayout = "2006-01-02 15:04:05"

var snapshotHeader = []string{
	"Timestamp", "% Invested", "Sym", "Name", "Shares Owned", "Purchase Price",
	"Current Price", "Profit/Loss", "Date Purchased", "Days Owned", "Portfolio Value",
}

var totalsHeader = []string{"Timestamp", "Total P/L", "Total Value"}

// SnapshotLog appends one CSV row per holding per refresh and one totals
// row per refresh. Each file gets its header when first created and is
// never rewritten afterwards; the plotter reads these files later.
type SnapshotLog struct {
	mu           sync.Mutex
	snapshotPath string
	totalsPath   string
}

func NewSnapshotLog(snapshotPath, totalsPath string) (*SnapshotLog, error) {
	l := &SnapshotLog{snapshotPath: snapshotPath, totalsPath: totalsPath}
	if err := ensureHeader(snapshotPath, snapshotHeader); err != nil {
		return nil, err
	}
	if err := ensureHeader(totalsPath, totalsHeader); err != nil {
		return nil, err
	}
	return l, nil
}

// RecordSnapshot appends one per-holding row.
func (l *SnapshotLog) RecordSnapshot(s application.Snapshot) error {
	days := ""
	if s.HasDays {
		days = strconv.Itoa(s.DaysOwned)
	}
	return l.append(l.snapshotPath, []string{
		s.Timestamp.Format(logTimestampLayout),
		formatFloat(s.Allocation),
		s.Symbol,
		s.Name,
		fmt.Sprintf("%.2f", s.Shares),
		decimal2(s.InitialPrice),
		decimal2(s.CurrentPrice),
		decimal2(s.ProfitLoss),
		s.PurchaseDate,
		days,
		decimal2(s.PortfolioValue),
	})
}

// RecordTotals appends the portfolio-wide row.
func (l *SnapshotLog) RecordTotals(t application.Totals) error {
	return l.append(l.totalsPath, []string{
		t.Timestamp.Format(logTimestampLayout),
		decimal2(t.TotalPL),
		decimal2(t.TotalValue),
	})
}

func (l *SnapshotLog) append(path string, row []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(row); err != nil {
		return fmt.Errorf("failed to append to %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return nil
}

func ensureHeader(path string, header []string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func decimal2(d domain.Decimal) string {
	v, err := d.Float64()
	if err != nil {
		return "0.00"
	}
	return fmt.Sprintf("%.2f", v)
}

package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foliotrack/internal/application"
	"foliotrack/internal/domain"
)

func testDecimal(t *testing.T, s string) domain.Decimal {
	t.Helper()
	d, err := domain.NewDecimalFromString(s)
	require.NoError(t, err)
	return d
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndQueryTotals(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.RecordTotals(application.Totals{
			Timestamp:  base.Add(time.Duration(i) * time.Hour),
			TotalPL:    testDecimal(t, "100.50"),
			TotalValue: testDecimal(t, "10100.50"),
		}))
	}

	rows, err := s.RecentTotals(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Newest first.
	assert.Equal(t, base.Add(2*time.Hour).Unix(), rows[0].Timestamp.Unix())
	assert.Equal(t, base.Add(time.Hour).Unix(), rows[1].Timestamp.Unix())
	assert.Equal(t, "100.50", rows[0].TotalPL.String())
	assert.Equal(t, "10100.50", rows[0].TotalValue.String())
}

func TestRecordAndQuerySnapshots(t *testing.T) {
	s := openTestStore(t)
	ts := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.RecordSnapshot(application.Snapshot{
		Timestamp:      ts,
		Symbol:         "AAPL",
		Name:           "Apple Inc",
		Allocation:     60,
		Shares:         30,
		InitialPrice:   testDecimal(t, "200"),
		CurrentPrice:   testDecimal(t, "210.50"),
		ProfitLoss:     testDecimal(t, "315"),
		PurchaseDate:   "2024-01-15",
		DaysOwned:      956,
		HasDays:        true,
		PortfolioValue: testDecimal(t, "10315"),
	}))
	require.NoError(t, s.RecordSnapshot(application.Snapshot{
		Timestamp:    ts,
		Symbol:       "MSFT",
		Name:         "MSFT",
		InitialPrice: testDecimal(t, "400"),
		CurrentPrice: testDecimal(t, "410"),
	}))

	rows, err := s.SymbolHistory(context.Background(), "aapl", 10)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	snap := rows[0]
	assert.Equal(t, "AAPL", snap.Symbol)
	assert.Equal(t, "Apple Inc", snap.Name)
	assert.Equal(t, "210.50", snap.CurrentPrice.String())
	assert.True(t, snap.HasDays)
	assert.Equal(t, 956, snap.DaysOwned)

	noDays, err := s.SymbolHistory(context.Background(), "MSFT", 10)
	require.NoError(t, err)
	require.Len(t, noDays, 1)
	assert.False(t, noDays[0].HasDays)
}

func TestQueryEmptyStore(t *testing.T) {
	s := openTestStore(t)

	totals, err := s.RecentTotals(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, totals)

	snaps, err := s.SymbolHistory(context.Background(), "AAPL", 10)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

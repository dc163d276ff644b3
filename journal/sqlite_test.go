package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func tx(id string, date time.Time) TransactionRecord {
	return TransactionRecord{
		ID:        id,
		Date:      date,
		Action:    "Buy",
		Symbol:    "AAPL",
		Quantity:  200,
		Price:     100,
		Costs:     2,
		CashAfter: 79998,
		Reason:    "signal",
	}
}

func TestSQLiteTransactionRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, j.RecordTransaction(tx("01HTX1", date)))

	got, err := j.GetTransaction("01HTX1")
	require.NoError(t, err)

	assert.Equal(t, "01HTX1", got.ID)
	assert.Equal(t, "Buy", got.Action)
	assert.Equal(t, "AAPL", got.Symbol)
	assert.Equal(t, 200, got.Quantity)
	assert.Equal(t, 100.0, got.Price)
	assert.Equal(t, 2.0, got.Costs)
	assert.True(t, got.Date.Equal(date))
}

func TestSQLiteGetTransactionNotFound(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	_, err := j.GetTransaction("missing")
	assert.ErrorContains(t, err, "not found")
}

func TestSQLiteListTransactionsBetween(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, j.RecordTransaction(tx(
			"ID"+string(rune('A'+i)), base.AddDate(0, 0, i))))
	}

	// Half-open window [day1, day4).
	recs, err := j.ListTransactionsBetween(base.AddDate(0, 0, 1), base.AddDate(0, 0, 4))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "IDB", recs[0].ID)
	assert.Equal(t, "IDD", recs[2].ID)
}

func TestSQLiteEquityRoundTrip(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, j.RecordEquity(EquityRecord{
			Date:           base.AddDate(0, 0, i),
			PortfolioValue: 100000 + float64(i),
			Cash:           80000,
			Quantity:       200,
		}))
	}

	recs, err := j.ListEquityBetween(base, base.AddDate(0, 0, 2))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, 100000.0, recs[0].PortfolioValue)
	assert.Equal(t, 100001.0, recs[1].PortfolioValue)
	assert.Equal(t, 200, recs[0].Quantity)
}

package risk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketforge/papertrade/perf"
	"github.com/marketforge/papertrade/signal"
)

// openLimits disables concentration limits so bookkeeping tests are not
// rejected before they start.
func openLimits() Limits {
	return Limits{
		MaxSingleStock:    1.0,
		MaxSectorExposure: 1.0,
		MaxPositions:      0,
		CashReserve:       0,
		StopLossPct:       0.05,
		TakeProfitPct:     0.15,
	}
}

func TestValidateTradeAccepts(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, DefaultLimits())

	ok, reason := m.ValidateTrade("AAPL", signal.Buy, 50, 100, "tech")
	assert.True(t, ok, reason)
}

func TestValidateTradeCashReserve(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, DefaultLimits())

	// 95% of cash breaches the 10% reserve even before concentration limits.
	ok, reason := m.ValidateTrade("AAPL", signal.Buy, 950, 100, "")
	assert.False(t, ok)
	assert.Contains(t, reason, "insufficient capital")
	assert.Contains(t, reason, "95000.00")
	assert.Contains(t, reason, "90000.00")
}

func TestValidateTradeSingleStockLimit(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, DefaultLimits())

	// 11% of capital in one symbol against a 10% cap.
	ok, reason := m.ValidateTrade("AAPL", signal.Buy, 110, 100, "")
	assert.False(t, ok)
	assert.Contains(t, reason, "single stock limit")
}

func TestValidateTradeSectorLimit(t *testing.T) {
	t.Parallel()

	limits := openLimits()
	limits.MaxSectorExposure = 0.30
	m := NewManager(100000, limits)

	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 250, 100, "tech"))
	require.NoError(t, m.UpdatePosition("MSFT", signal.Buy, 10, 500, "tech"))

	// tech now holds 30000; any further tech buy breaches 30%.
	ok, reason := m.ValidateTrade("GOOG", signal.Buy, 10, 100, "tech")
	assert.False(t, ok)
	assert.Contains(t, reason, "sector exposure limit")

	// A different sector is still fine.
	ok, _ = m.ValidateTrade("XOM", signal.Buy, 10, 100, "energy")
	assert.True(t, ok)
}

func TestValidateTradeMaxPositions(t *testing.T) {
	t.Parallel()

	limits := openLimits()
	limits.MaxPositions = 2
	m := NewManager(100000, limits)

	require.NoError(t, m.UpdatePosition("A", signal.Buy, 10, 100, ""))
	require.NoError(t, m.UpdatePosition("B", signal.Buy, 10, 100, ""))

	ok, reason := m.ValidateTrade("C", signal.Buy, 10, 100, "")
	assert.False(t, ok)
	assert.Contains(t, reason, "max open positions")

	// Adding to an existing position does not open a new slot.
	ok, _ = m.ValidateTrade("A", signal.Buy, 10, 100, "")
	assert.True(t, ok)
}

func TestValidateTradeSellQuantity(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())
	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 10, 100, ""))

	ok, reason := m.ValidateTrade("AAPL", signal.Sell, 20, 100, "")
	assert.False(t, ok)
	assert.Contains(t, reason, "insufficient shares")

	ok, _ = m.ValidateTrade("AAPL", signal.Sell, 10, 100, "")
	assert.True(t, ok)

	ok, _ = m.ValidateTrade("MSFT", signal.Sell, 1, 100, "")
	assert.False(t, ok)
}

func TestValidateTradeRejectsBadInputs(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())

	ok, _ := m.ValidateTrade("AAPL", signal.Buy, 0, 100, "")
	assert.False(t, ok)

	ok, _ = m.ValidateTrade("AAPL", signal.Buy, 10, 0, "")
	assert.False(t, ok)

	ok, _ = m.ValidateTrade("AAPL", signal.Hold, 10, 100, "")
	assert.False(t, ok)
}

func TestValidateTradeDailyLossLimit(t *testing.T) {
	t.Parallel()

	limits := openLimits()
	limits.DailyLossLimit = 0.02
	m := NewManager(100000, limits)

	m.AddDailyPnL(-2500)

	ok, reason := m.ValidateTrade("AAPL", signal.Buy, 10, 100, "")
	assert.False(t, ok)
	assert.Contains(t, reason, "daily loss limit")

	// Selling to reduce exposure stays allowed.
	require.NoError(t, m.UpdatePosition("MSFT", signal.Buy, 10, 100, ""))
	ok, _ = m.ValidateTrade("MSFT", signal.Sell, 10, 100, "")
	assert.True(t, ok)
}

func TestValidateTradeClosedSession(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2024, 1, 7, 12, 0, 0, 0, time.UTC)
	m := NewManager(100000, openLimits(),
		WithSession(Weekdays(0, 0, nil)),
		WithClock(func() time.Time { return sunday }),
	)

	ok, reason := m.ValidateTrade("AAPL", signal.Buy, 10, 100, "")
	assert.False(t, ok)
	assert.Equal(t, "market is closed", reason)
}

func TestUpdatePositionAveragesUp(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())

	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 100, 10, "tech"))
	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 100, 20, "tech"))

	p, ok := m.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 200, p.Quantity)
	assert.InDelta(t, 15.0, p.AvgPrice, 1e-12)
	assert.Equal(t, "tech", p.Sector)
	assert.InDelta(t, 97000.0, m.Cash(), 1e-9)
}

func TestUpdatePositionSellRemovesAtZero(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())
	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 100, 10, "tech"))

	require.NoError(t, m.UpdatePosition("AAPL", signal.Sell, 40, 12, "tech"))
	p, ok := m.Position("AAPL")
	require.True(t, ok)
	assert.Equal(t, 60, p.Quantity)

	require.NoError(t, m.UpdatePosition("AAPL", signal.Sell, 60, 12, "tech"))
	_, ok = m.Position("AAPL")
	assert.False(t, ok)
	assert.Equal(t, 0.0, m.SectorExposure("tech"))
}

func TestUpdatePositionErrorsOnUnvalidatedTrades(t *testing.T) {
	t.Parallel()

	m := NewManager(1000, openLimits())

	// Exceeds cash, sells without holdings, bad quantity, untradable action.
	assert.Error(t, m.UpdatePosition("AAPL", signal.Buy, 100, 100, ""))
	assert.Error(t, m.UpdatePosition("AAPL", signal.Sell, 1, 100, ""))
	assert.Error(t, m.UpdatePosition("AAPL", signal.Buy, -1, 100, ""))
	assert.Error(t, m.UpdatePosition("AAPL", signal.Hold, 10, 100, ""))
}

func TestPortfolioValueInvariant(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())

	check := func() {
		want := m.Cash()
		for _, p := range m.Positions() {
			want += float64(p.Quantity) * p.AvgPrice
		}
		// Positions are valued at their last trade price here, which equals
		// the entry price until prices move.
		assert.InDelta(t, want, m.PortfolioValue(), 1e-9)
	}

	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 100, 10, "tech"))
	check()
	require.NoError(t, m.UpdatePosition("MSFT", signal.Buy, 50, 20, "tech"))
	check()
	require.NoError(t, m.UpdatePosition("AAPL", signal.Sell, 100, 10, "tech"))
	check()
}

func TestMarkToMarketChangesValuation(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())
	require.NoError(t, m.UpdatePosition("AAPL", signal.Buy, 100, 10, "tech"))

	m.MarkToMarket(map[string]float64{"AAPL": 15})

	assert.InDelta(t, 99000+100*15, m.PortfolioValue(), 1e-9)
	assert.InDelta(t, 1500, m.SectorExposure("tech"), 1e-9)
}

func TestDailyPnLWindowEviction(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())
	for i := 0; i < perf.TradingDays+10; i++ {
		m.AddDailyPnL(float64(i))
	}

	window := m.DailyPnL()
	require.Len(t, window, perf.TradingDays)
	assert.Equal(t, 10.0, window[0])
	assert.Equal(t, float64(perf.TradingDays+9), window[len(window)-1])
}

func TestStopTakeProfitPrices(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, DefaultLimits())
	assert.InDelta(t, 95.0, m.StopLossPrice(100), 1e-12)
	assert.InDelta(t, 115.0, m.TakeProfitPrice(100), 1e-12)
}

func TestPortfolioMetrics(t *testing.T) {
	t.Parallel()

	m := NewManager(100000, openLimits())
	m.AddDailyPnL(1000)
	m.AddDailyPnL(-500)

	r := m.PortfolioMetrics()
	assert.InDelta(t, 500.0/100000.0, r.TotalReturn, 1e-12)
	assert.Less(t, r.MaxDrawdown, 0.0)
}

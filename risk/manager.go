// Package risk provides pre-trade validation, position sizing, and
// multi-symbol portfolio bookkeeping for the paper-trading engine.
//
// Expected rejections (limit breaches, insufficient cash or shares, closed
// market) are returned as (accepted, reason) values so a backtest loop can
// keep processing bars; hard errors are reserved for malformed state.
package risk

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketforge/papertrade/perf"
	"github.com/marketforge/papertrade/signal"
)

// Position is one open holding. Quantity reaching zero removes the position
// and its sector-exposure contribution.
type Position struct {
	Symbol   string
	Quantity int
	AvgPrice float64
	Sector   string
}

// MarketValue is the position's value at the given price.
func (p Position) MarketValue(price float64) float64 {
	return float64(p.Quantity) * price
}

// Limits is the portfolio-level constraint set. Fractions are of initial
// capital unless noted.
type Limits struct {
	MaxSingleStock    float64 // max single-symbol exposure, e.g. 0.10
	MaxSectorExposure float64 // max per-sector exposure, e.g. 0.30
	MaxPositions      int     // max distinct open symbols; 0 disables
	DailyLossLimit    float64 // halt new Buys after this daily loss; 0 disables
	CashReserve       float64 // fraction of cash a Buy may not touch, e.g. 0.10
	StopLossPct       float64 // forced-exit loss threshold, e.g. 0.05
	TakeProfitPct     float64 // forced-exit gain threshold, e.g. 0.15
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxSingleStock:    0.10,
		MaxSectorExposure: 0.30,
		MaxPositions:      10,
		DailyLossLimit:    0.02,
		CashReserve:       0.10,
		StopLossPct:       0.05,
		TakeProfitPct:     0.15,
	}
}

// Manager owns the multi-symbol book for one run: cash, positions, last
// seen prices, and the rolling daily P&L window. Not safe for concurrent
// use; each run gets its own Manager.
type Manager struct {
	limits  Limits
	session Session
	now     func() time.Time
	log     *logrus.Logger

	capital   float64
	cash      float64
	positions map[string]*Position
	lastPrice map[string]float64
	dailyPnL  []float64
}

// Option configures a Manager.
type Option func(*Manager)

// WithSession restricts trading to the given market session.
func WithSession(s Session) Option {
	return func(m *Manager) { m.session = s }
}

// WithClock injects the time source used for session checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger overrides the default logger.
func WithLogger(l *logrus.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(initialCapital float64, limits Limits, opts ...Option) *Manager {
	m := &Manager{
		limits:    limits,
		session:   AlwaysOpen(),
		now:       time.Now,
		log:       logrus.StandardLogger(),
		capital:   initialCapital,
		cash:      initialCapital,
		positions: make(map[string]*Position),
		lastPrice: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Cash() float64    { return m.cash }
func (m *Manager) Capital() float64 { return m.capital }
func (m *Manager) Limits() Limits   { return m.limits }

// Position returns a copy of the open position for symbol, if any.
func (m *Manager) Position(symbol string) (Position, bool) {
	p, ok := m.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *p, true
}

// Positions returns copies of all open positions ordered by symbol.
func (m *Manager) Positions() []Position {
	out := make([]Position, 0, len(m.positions))
	for _, p := range m.positions {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}

// MarkToMarket records the latest prices used to value open positions.
func (m *Manager) MarkToMarket(prices map[string]float64) {
	for sym, px := range prices {
		m.lastPrice[sym] = px
	}
}

// PortfolioValue is cash plus the market value of every open position at
// the last seen prices.
func (m *Manager) PortfolioValue() float64 {
	v := m.cash
	for sym, p := range m.positions {
		v += p.MarketValue(m.lastPrice[sym])
	}
	return v
}

// SectorExposure sums the market values of open positions tagged with the
// sector, at last seen prices. Always >= 0 and consistent with the book.
func (m *Manager) SectorExposure(sector string) float64 {
	var v float64
	for sym, p := range m.positions {
		if p.Sector == sector {
			v += p.MarketValue(m.lastPrice[sym])
		}
	}
	return v
}

// SectorExposures snapshots exposure per sector.
func (m *Manager) SectorExposures() map[string]float64 {
	out := make(map[string]float64)
	for sym, p := range m.positions {
		if p.Sector != "" {
			out[p.Sector] += p.MarketValue(m.lastPrice[sym])
		}
	}
	return out
}

// ValidateTrade checks a proposed trade against the session window and the
// portfolio limits. The reason explains the first rejection found.
func (m *Manager) ValidateTrade(symbol string, action signal.Signal, quantity int, price float64, sector string) (bool, string) {
	ok, reason := m.validateTrade(symbol, action, quantity, price, sector)
	if !ok {
		m.log.WithFields(logrus.Fields{
			"symbol":   symbol,
			"action":   action.String(),
			"quantity": quantity,
		}).Debug("trade rejected: ", reason)
	}
	return ok, reason
}

func (m *Manager) validateTrade(symbol string, action signal.Signal, quantity int, price float64, sector string) (bool, string) {
	if quantity <= 0 {
		return false, fmt.Sprintf("quantity must be positive, got %d", quantity)
	}
	if price <= 0 {
		return false, fmt.Sprintf("price must be positive, got %v", price)
	}
	if !m.session.Contains(m.now()) {
		return false, "market is closed"
	}

	tradeValue := float64(quantity) * price

	switch action {
	case signal.Buy:
		if m.limits.DailyLossLimit > 0 && len(m.dailyPnL) > 0 {
			if last := m.dailyPnL[len(m.dailyPnL)-1]; last <= -m.limits.DailyLossLimit*m.capital {
				return false, fmt.Sprintf("daily loss limit reached: %.2f <= %.2f",
					last, -m.limits.DailyLossLimit*m.capital)
			}
		}

		if _, held := m.positions[symbol]; !held && m.limits.MaxPositions > 0 &&
			len(m.positions) >= m.limits.MaxPositions {
			return false, fmt.Sprintf("max open positions reached: %d", m.limits.MaxPositions)
		}

		available := m.cash * (1 - m.limits.CashReserve)
		if tradeValue > available {
			return false, fmt.Sprintf("insufficient capital: need %.2f, available %.2f",
				tradeValue, available)
		}

		if m.limits.MaxSingleStock > 0 {
			current := 0.0
			if p, ok := m.positions[symbol]; ok {
				current = p.MarketValue(m.lastPrice[symbol])
			}
			exposure := (current + tradeValue) / m.capital
			if exposure > m.limits.MaxSingleStock {
				return false, fmt.Sprintf("single stock limit exceeded: max %.1f%%, would be %.1f%%",
					m.limits.MaxSingleStock*100, exposure*100)
			}
		}

		if sector != "" && m.limits.MaxSectorExposure > 0 {
			exposure := (m.SectorExposure(sector) + tradeValue) / m.capital
			if exposure > m.limits.MaxSectorExposure {
				return false, fmt.Sprintf("sector exposure limit exceeded: max %.1f%%, would be %.1f%%",
					m.limits.MaxSectorExposure*100, exposure*100)
			}
		}

	case signal.Sell:
		held := 0
		if p, ok := m.positions[symbol]; ok {
			held = p.Quantity
		}
		if quantity > held {
			return false, fmt.Sprintf("insufficient shares: have %d, selling %d", held, quantity)
		}

	default:
		return false, fmt.Sprintf("action %s is not tradable", action)
	}

	return true, "trade validated"
}

// UpdatePosition applies an already-validated trade to the book. A Buy
// recomputes the weighted-average entry price; a Sell that zeroes the
// quantity removes the position. Errors here mean the caller skipped
// validation.
func (m *Manager) UpdatePosition(symbol string, action signal.Signal, quantity int, price float64, sector string) error {
	if quantity <= 0 || price <= 0 {
		return fmt.Errorf("risk: update %s %s: bad quantity %d or price %v", action, symbol, quantity, price)
	}

	tradeValue := float64(quantity) * price
	m.lastPrice[symbol] = price

	switch action {
	case signal.Buy:
		if tradeValue > m.cash {
			return fmt.Errorf("risk: buy %d %s @ %v exceeds cash %.2f", quantity, symbol, price, m.cash)
		}
		m.cash -= tradeValue

		p, ok := m.positions[symbol]
		if !ok {
			m.positions[symbol] = &Position{Symbol: symbol, Quantity: quantity, AvgPrice: price, Sector: sector}
			return nil
		}
		totalCost := float64(p.Quantity)*p.AvgPrice + tradeValue
		p.Quantity += quantity
		p.AvgPrice = totalCost / float64(p.Quantity)
		if p.Sector == "" {
			p.Sector = sector
		}

	case signal.Sell:
		p, ok := m.positions[symbol]
		if !ok || quantity > p.Quantity {
			have := 0
			if ok {
				have = p.Quantity
			}
			return fmt.Errorf("risk: sell %d %s: only %d held", quantity, symbol, have)
		}
		m.cash += tradeValue
		p.Quantity -= quantity
		if p.Quantity == 0 {
			delete(m.positions, symbol)
		}

	default:
		return fmt.Errorf("risk: action %s is not tradable", action)
	}

	return nil
}

// StopLossPrice is the forced-exit price below entry.
func (m *Manager) StopLossPrice(entry float64) float64 {
	return entry * (1 - m.limits.StopLossPct)
}

// TakeProfitPrice is the forced-exit price above entry.
func (m *Manager) TakeProfitPrice(entry float64) float64 {
	return entry * (1 + m.limits.TakeProfitPct)
}

// AddDailyPnL appends one day's P&L to the rolling window. Only the most
// recent year of entries (252) is retained; older entries are evicted.
func (m *Manager) AddDailyPnL(pnl float64) {
	m.dailyPnL = append(m.dailyPnL, pnl)
	if len(m.dailyPnL) > perf.TradingDays {
		m.dailyPnL = m.dailyPnL[len(m.dailyPnL)-perf.TradingDays:]
	}
}

// DailyPnL returns a copy of the rolling P&L window.
func (m *Manager) DailyPnL() []float64 {
	cp := make([]float64, len(m.dailyPnL))
	copy(cp, m.dailyPnL)
	return cp
}

// PortfolioMetrics reports over the rolling daily P&L window using the same
// statistical routine the simulator uses.
func (m *Manager) PortfolioMetrics() perf.Report {
	return perf.SummarizePnL(m.capital, m.dailyPnL)
}

// Package sim simulates capital allocation over a signal-annotated price
// series: a single-symbol FLAT/LONG execution engine and a multi-symbol
// risk-gated book. Each run owns its state exclusively; callers wanting
// parallelism run independent engines and merge results afterwards.
package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/marketforge/papertrade/internal/id"
	"github.com/marketforge/papertrade/journal"
	"github.com/marketforge/papertrade/market"
	"github.com/marketforge/papertrade/perf"
	"github.com/marketforge/papertrade/risk"
	"github.com/marketforge/papertrade/signal"
)

// SizingMode selects how an entry's share count is computed.
type SizingMode int8

const (
	// RiskBased sizes entries so a stop-loss hit loses at most
	// RiskPerTrade of current cash.
	RiskBased SizingMode = iota

	// FixedFraction spends CashFraction of current cash per entry.
	FixedFraction
)

func (m SizingMode) String() string {
	switch m {
	case RiskBased:
		return "risk-based"
	case FixedFraction:
		return "fixed-fraction"
	}
	return fmt.Sprintf("SizingMode(%d)", int8(m))
}

// Config controls one simulation run.
type Config struct {
	InitialCapital float64
	RiskPerTrade   float64 // RiskBased: fraction of cash at risk per trade
	StopLossPct    float64
	TakeProfitPct  float64
	Sizing         SizingMode
	CashFraction   float64 // FixedFraction: share of cash per entry
	Costs          CostModel
}

// Engine walks one symbol's bars day by day, maintaining cash and a single
// long position. States are FLAT (quantity 0) and LONG (quantity > 0);
// stop-loss and take-profit exits are checked every bar, stop-loss first,
// and take priority over the day's signal.
type Engine struct {
	cfg     Config
	symbol  string
	log     *logrus.Logger
	journal journal.Journal

	cash       float64
	quantity   int
	entryPrice float64
	entryCost  float64

	history  []EquityPoint
	ledger   []Transaction
	realized []float64
}

func NewEngine(symbol string, cfg Config) *Engine {
	if cfg.Sizing == FixedFraction && cfg.CashFraction == 0 {
		cfg.CashFraction = 0.95
	}
	return &Engine{
		cfg:    cfg,
		symbol: symbol,
		log:    logrus.StandardLogger(),
	}
}

// SetJournal attaches an optional journal; every ledger entry and equity
// point is mirrored into it.
func (e *Engine) SetJournal(j journal.Journal) { e.journal = j }

// SetLogger overrides the default logger.
func (e *Engine) SetLogger(l *logrus.Logger) { e.log = l }

// Run simulates the series against its aligned signals. State is reset
// first, so running the same inputs twice yields identical output.
func (e *Engine) Run(series *market.Series, signals []signal.Signal) error {
	if series.Len() != len(signals) {
		return fmt.Errorf("sim: %d bars but %d signals", series.Len(), len(signals))
	}

	e.cash = e.cfg.InitialCapital
	e.quantity = 0
	e.entryPrice = 0
	e.entryCost = 0
	e.history = e.history[:0]
	e.ledger = e.ledger[:0]
	e.realized = e.realized[:0]

	for i := 0; i < series.Len(); i++ {
		if err := e.step(series.Bar(i), signals[i]); err != nil {
			return err
		}
	}
	return nil
}

// step processes one bar: snapshot first (so the first record always equals
// initial capital), then forced exits, then the day's signal. A forced exit
// consumes the bar; there is no same-bar re-entry.
func (e *Engine) step(bar market.Bar, sig signal.Signal) error {
	price := bar.Close

	if err := e.record(bar); err != nil {
		return err
	}

	if e.quantity > 0 {
		if price <= e.entryPrice*(1-e.cfg.StopLossPct) {
			return e.exit(bar, "stop loss")
		}
		if price >= e.entryPrice*(1+e.cfg.TakeProfitPct) {
			return e.exit(bar, "take profit")
		}
	}

	switch sig {
	case signal.Buy:
		if e.quantity == 0 {
			return e.enter(bar)
		}
		// Already LONG: the simple engine never averages up.
	case signal.Sell:
		if e.quantity > 0 {
			return e.exit(bar, "signal")
		}
	}
	return nil
}

func (e *Engine) record(bar market.Bar) error {
	pt := EquityPoint{
		Date:           bar.Date,
		PortfolioValue: e.cash + float64(e.quantity)*bar.Close,
		Cash:           e.cash,
		Quantity:       e.quantity,
	}
	e.history = append(e.history, pt)

	if e.journal != nil {
		return e.journal.RecordEquity(journal.EquityRecord{
			Date:           pt.Date,
			PortfolioValue: pt.PortfolioValue,
			Cash:           pt.Cash,
			Quantity:       pt.Quantity,
		})
	}
	return nil
}

func (e *Engine) shares(price float64) (int, error) {
	var shares int
	switch e.cfg.Sizing {
	case FixedFraction:
		shares = int(e.cash * e.cfg.CashFraction / price)
	default:
		var err error
		shares, err = risk.PositionSize(e.cash, e.cfg.RiskPerTrade, e.cfg.StopLossPct, price)
		if err != nil {
			return 0, err
		}
	}

	// A risk-based size can exceed what cash buys outright; cap it so a
	// Buy can never drive cash negative.
	if max := int(e.cash / price); shares > max {
		shares = max
	}
	return shares, nil
}

func (e *Engine) enter(bar market.Bar) error {
	price := bar.Close

	shares, err := e.shares(price)
	if err != nil {
		return err
	}
	if shares == 0 {
		// Risk budget below one share's worth: no trade, no mutation.
		return nil
	}

	total, costs := e.cfg.Costs.BuyCost(price, shares)
	if total > e.cash {
		e.log.WithFields(logrus.Fields{
			"symbol": e.symbol,
			"date":   bar.Date.Format("2006-01-02"),
			"shares": shares,
		}).Debug("entry skipped: cost exceeds cash after slippage")
		return nil
	}

	e.cash -= total
	e.quantity = shares
	e.entryPrice = price
	e.entryCost = total

	return e.append(Transaction{
		ID:        id.New(),
		Date:      bar.Date,
		Action:    signal.Buy,
		Symbol:    e.symbol,
		Quantity:  shares,
		Price:     price,
		Costs:     costs,
		CashAfter: e.cash,
		Reason:    "signal",
	})
}

func (e *Engine) exit(bar market.Bar, reason string) error {
	price := bar.Close
	shares := e.quantity

	total, costs := e.cfg.Costs.SellProceeds(price, shares)

	e.cash += total
	e.realized = append(e.realized, total-e.entryCost)
	e.quantity = 0
	e.entryPrice = 0
	e.entryCost = 0

	if reason != "signal" {
		e.log.WithFields(logrus.Fields{
			"symbol": e.symbol,
			"date":   bar.Date.Format("2006-01-02"),
			"price":  price,
		}).Debug("forced exit: ", reason)
	}

	return e.append(Transaction{
		ID:        id.New(),
		Date:      bar.Date,
		Action:    signal.Sell,
		Symbol:    e.symbol,
		Quantity:  shares,
		Price:     price,
		Costs:     costs,
		CashAfter: e.cash,
		Reason:    reason,
	})
}

func (e *Engine) append(t Transaction) error {
	e.ledger = append(e.ledger, t)
	if e.journal != nil {
		return e.journal.RecordTransaction(journal.TransactionRecord{
			ID:        t.ID,
			Date:      t.Date,
			Action:    t.Action.String(),
			Symbol:    t.Symbol,
			Quantity:  t.Quantity,
			Price:     t.Price,
			Costs:     t.Costs,
			CashAfter: t.CashAfter,
			Reason:    t.Reason,
		})
	}
	return nil
}

// Cash is the current cash balance.
func (e *Engine) Cash() float64 { return e.cash }

// History returns the per-bar equity curve, one point per input bar.
func (e *Engine) History() []EquityPoint { return e.history }

// Ledger returns the append-only transaction list.
func (e *Engine) Ledger() []Transaction { return e.ledger }

// RealizedPnL returns net P&L per closed round trip.
func (e *Engine) RealizedPnL() []float64 { return e.realized }

// Values returns the portfolio value series for the metrics routines.
func (e *Engine) Values() []float64 {
	out := make([]float64, len(e.history))
	for i, pt := range e.history {
		out[i] = pt.PortfolioValue
	}
	return out
}

// Report summarizes the run's equity curve.
func (e *Engine) Report() perf.Report {
	return perf.Summarize(e.Values())
}

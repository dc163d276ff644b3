package sim

import (
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marketforge/papertrade/internal/id"
	"github.com/marketforge/papertrade/journal"
	"github.com/marketforge/papertrade/perf"
	"github.com/marketforge/papertrade/risk"
	"github.com/marketforge/papertrade/signal"
)

// Book is the risk-managed, multi-symbol variant of the engine. Every
// proposed trade passes through the risk manager's pre-trade gate; unlike
// the single-symbol engine, a Buy while already long averages up the
// position's cost basis.
//
// The manager owns cash, positions, and sector exposure; the Book drives it
// bar by bar and keeps the run's equity curve and ledger.
type Book struct {
	cfg     Config
	mgr     *risk.Manager
	sectors map[string]string
	log     *logrus.Logger
	journal journal.Journal

	lastClose map[string]float64
	prevValue float64
	havePrev  bool

	history []EquityPoint
	ledger  []Transaction
}

// NewBook wires a Book to its risk manager. sectors maps symbol to sector
// tag and may be nil.
func NewBook(cfg Config, mgr *risk.Manager, sectors map[string]string) *Book {
	if sectors == nil {
		sectors = map[string]string{}
	}
	return &Book{
		cfg:       cfg,
		mgr:       mgr,
		sectors:   sectors,
		log:       logrus.StandardLogger(),
		lastClose: make(map[string]float64),
	}
}

func (b *Book) SetJournal(j journal.Journal) { b.journal = j }
func (b *Book) SetLogger(l *logrus.Logger)   { b.log = l }

// ProcessBar advances the book one trading day. A symbol with no price this
// bar is skipped for new entries, but an existing position is still valued
// at its last known price; the skip is logged, never silently dropped.
//
// Forced stop-loss/take-profit exits run before the day's signals.
func (b *Book) ProcessBar(date time.Time, prices map[string]float64, signals map[string]signal.Signal) error {
	effective := b.effectivePrices(date, prices, signals)

	// Forced exits first, on symbols that actually priced today.
	for _, alert := range b.mgr.CheckStopTakeProfit(prices) {
		reason := "stop loss"
		if alert.Type == risk.AlertTakeProfit {
			reason = "take profit"
		}
		if err := b.execute(date, alert.Symbol, signal.Sell, alert.Quantity, alert.Price, reason); err != nil {
			return err
		}
	}

	for _, sym := range sortedSymbols(signals) {
		price, priced := prices[sym]
		if !priced {
			continue
		}
		switch signals[sym] {
		case signal.Buy:
			if err := b.tryBuy(date, sym, price); err != nil {
				return err
			}
		case signal.Sell:
			if pos, held := b.mgr.Position(sym); held {
				if ok, _ := b.mgr.ValidateTrade(sym, signal.Sell, pos.Quantity, price, pos.Sector); ok {
					if err := b.execute(date, sym, signal.Sell, pos.Quantity, price, "signal"); err != nil {
						return err
					}
				}
			}
		}
	}

	b.mgr.MarkToMarket(effective)
	value := b.mgr.PortfolioValue()

	qty := 0
	for _, p := range b.mgr.Positions() {
		qty += p.Quantity
	}

	pt := EquityPoint{Date: date, PortfolioValue: value, Cash: b.mgr.Cash(), Quantity: qty}
	b.history = append(b.history, pt)
	if b.journal != nil {
		err := b.journal.RecordEquity(journal.EquityRecord{
			Date:           pt.Date,
			PortfolioValue: pt.PortfolioValue,
			Cash:           pt.Cash,
			Quantity:       pt.Quantity,
		})
		if err != nil {
			return err
		}
	}

	if b.havePrev {
		b.mgr.AddDailyPnL(value - b.prevValue)
	}
	b.prevValue = value
	b.havePrev = true

	return nil
}

// effectivePrices merges today's prices with carry-forward closes for open
// positions that did not price.
func (b *Book) effectivePrices(date time.Time, prices map[string]float64, signals map[string]signal.Signal) map[string]float64 {
	effective := make(map[string]float64, len(prices))
	for sym, px := range prices {
		effective[sym] = px
		b.lastClose[sym] = px
	}

	for _, pos := range b.mgr.Positions() {
		if _, ok := effective[pos.Symbol]; ok {
			continue
		}
		last, known := b.lastClose[pos.Symbol]
		if !known {
			last = pos.AvgPrice
		}
		effective[pos.Symbol] = last
		b.log.WithFields(logrus.Fields{
			"symbol": pos.Symbol,
			"date":   date.Format("2006-01-02"),
			"last":   last,
		}).Warn("no price for bar; carrying forward last close")
	}

	for sym := range signals {
		if _, ok := prices[sym]; !ok {
			if _, held := b.mgr.Position(sym); !held {
				b.log.WithFields(logrus.Fields{
					"symbol": sym,
					"date":   date.Format("2006-01-02"),
				}).Warn("no price for bar; skipping signal")
			}
		}
	}

	return effective
}

func (b *Book) tryBuy(date time.Time, sym string, price float64) error {
	shares, err := risk.PositionSize(b.mgr.Cash(), b.cfg.RiskPerTrade, b.cfg.StopLossPct, price)
	if err != nil {
		return err
	}
	if shares == 0 {
		return nil
	}

	sector := b.sectors[sym]
	if ok, _ := b.mgr.ValidateTrade(sym, signal.Buy, shares, price, sector); !ok {
		// Rejection reasons are logged by the manager; the run continues.
		return nil
	}
	return b.execute(date, sym, signal.Buy, shares, price, "signal")
}

func (b *Book) execute(date time.Time, sym string, action signal.Signal, qty int, price float64, reason string) error {
	if err := b.mgr.UpdatePosition(sym, action, qty, price, b.sectors[sym]); err != nil {
		return err
	}

	t := Transaction{
		ID:        id.New(),
		Date:      date,
		Action:    action,
		Symbol:    sym,
		Quantity:  qty,
		Price:     price,
		CashAfter: b.mgr.Cash(),
		Reason:    reason,
	}
	b.ledger = append(b.ledger, t)

	if b.journal != nil {
		return b.journal.RecordTransaction(journal.TransactionRecord{
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

// History returns the per-bar equity curve.
func (b *Book) History() []EquityPoint { return b.history }

// Ledger returns the append-only transaction list.
func (b *Book) Ledger() []Transaction { return b.ledger }

// Values returns the portfolio value series.
func (b *Book) Values() []float64 {
	out := make([]float64, len(b.history))
	for i, pt := range b.history {
		out[i] = pt.PortfolioValue
	}
	return out
}

// Report summarizes the run's equity curve with the shared routine.
func (b *Book) Report() perf.Report {
	return perf.Summarize(b.Values())
}

func sortedSymbols(signals map[string]signal.Signal) []string {
	out := make([]string, 0, len(signals))
	for sym := range signals {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}

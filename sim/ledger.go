package sim

import (
	"time"

	"github.com/marketforge/papertrade/signal"
)

// Transaction is one append-only ledger entry; immutable once recorded.
type Transaction struct {
	ID        string
	Date      time.Time
	Action    signal.Signal // Buy or Sell
	Symbol    string
	Quantity  int
	Price     float64
	Costs     float64 // commission + slippage
	CashAfter float64
	Reason    string // "signal", "stop loss", "take profit"
}

// EquityPoint is one per-bar portfolio snapshot. PortfolioValue always
// equals Cash + Quantity * that bar's close.
type EquityPoint struct {
	Date           time.Time
	PortfolioValue float64
	Cash           float64
	Quantity       int
}

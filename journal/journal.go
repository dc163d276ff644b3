// Package journal persists backtest output: the transaction ledger and the
// per-bar equity curve. Persistence happens outside the simulation loop's
// hot invariants; a run that needs no persistence uses no journal at all.
package journal

import "time"

// TransactionRecord mirrors one ledger entry.
type TransactionRecord struct {
	ID        string
	Date      time.Time
	Action    string
	Symbol    string
	Quantity  int
	Price     float64
	Costs     float64
	CashAfter float64
	Reason    string
}

// EquityRecord mirrors one per-bar portfolio snapshot.
type EquityRecord struct {
	Date           time.Time
	PortfolioValue float64
	Cash           float64
	Quantity       int
}

type Journal interface {
	RecordTransaction(TransactionRecord) error
	RecordEquity(EquityRecord) error
	Close() error
}

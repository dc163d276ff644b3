package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordTransaction(t TransactionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, date, action, symbol, quantity, price, costs, cash_after, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Date, t.Action, t.Symbol, t.Quantity,
		t.Price, t.Costs, t.CashAfter, t.Reason,
	)
	return err
}

func (j *SQLite) RecordEquity(e EquityRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO equity
		(date, portfolio_value, cash, quantity)
		VALUES (?, ?, ?, ?)`,
		e.Date, e.PortfolioValue, e.Cash, e.Quantity,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

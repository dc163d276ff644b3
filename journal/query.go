package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetTransaction returns a single ledger entry by ID.
func (j *SQLite) GetTransaction(id string) (TransactionRecord, error) {
	var rec TransactionRecord

	row := j.db.QueryRow(`
		SELECT id, date, action, symbol, quantity, price, costs, cash_after, reason
		FROM transactions
		WHERE id = ?`, id)

	err := row.Scan(
		&rec.ID,
		&rec.Date,
		&rec.Action,
		&rec.Symbol,
		&rec.Quantity,
		&rec.Price,
		&rec.Costs,
		&rec.CashAfter,
		&rec.Reason,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return TransactionRecord{}, fmt.Errorf("transaction %q not found", id)
		}
		return TransactionRecord{}, err
	}
	return rec, nil
}

// ListTransactionsBetween returns ledger entries with date in [start, end).
func (j *SQLite) ListTransactionsBetween(start, end time.Time) ([]TransactionRecord, error) {
	rows, err := j.db.Query(`
		SELECT id, date, action, symbol, quantity, price, costs, cash_after, reason
		FROM transactions
		WHERE date >= ? AND date < ?
		ORDER BY date ASC, id ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransactionRecord
	for rows.Next() {
		var rec TransactionRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Date,
			&rec.Action,
			&rec.Symbol,
			&rec.Quantity,
			&rec.Price,
			&rec.Costs,
			&rec.CashAfter,
			&rec.Reason,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListEquityBetween returns equity snapshots with date in [start, end).
func (j *SQLite) ListEquityBetween(start, end time.Time) ([]EquityRecord, error) {
	rows, err := j.db.Query(`
		SELECT date, portfolio_value, cash, quantity
		FROM equity
		WHERE date >= ? AND date < ?
		ORDER BY date ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EquityRecord
	for rows.Next() {
		var rec EquityRecord
		if err := rows.Scan(
			&rec.Date,
			&rec.PortfolioValue,
			&rec.Cash,
			&rec.Quantity,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

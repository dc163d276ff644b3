// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

type CSVJournal struct {
	transactions *csv.Writer
	equity       *csv.Writer
	tf, ef       *os.File
}

func NewCSV(transactionsPath, equityPath string) (*CSVJournal, error) {
	tf, err := os.Create(transactionsPath)
	if err != nil {
		return nil, err
	}
	ef, err := os.Create(equityPath)
	if err != nil {
		tf.Close()
		return nil, err
	}

	tw := csv.NewWriter(tf)
	ew := csv.NewWriter(ef)

	if err := tw.Write([]string{"id", "date", "action", "symbol", "quantity", "price", "costs", "cash_after", "reason"}); err != nil {
		return nil, err
	}
	if err := ew.Write([]string{"date", "portfolio_value", "cash", "quantity"}); err != nil {
		return nil, err
	}

	tw.Flush()
	if err := tw.Error(); err != nil {
		return nil, err
	}
	ew.Flush()
	if err := ew.Error(); err != nil {
		return nil, err
	}

	return &CSVJournal{tw, ew, tf, ef}, nil
}

func (j *CSVJournal) RecordTransaction(t TransactionRecord) error {
	err := j.transactions.Write([]string{
		t.ID,
		t.Date.Format(time.RFC3339),
		t.Action,
		t.Symbol,
		strconv.Itoa(t.Quantity),
		f(t.Price),
		f(t.Costs),
		f(t.CashAfter),
		t.Reason,
	})
	if err != nil {
		return err
	}

	j.transactions.Flush()
	return j.transactions.Error()
}

func (j *CSVJournal) RecordEquity(e EquityRecord) error {
	err := j.equity.Write([]string{
		e.Date.Format(time.RFC3339),
		f(e.PortfolioValue),
		f(e.Cash),
		strconv.Itoa(e.Quantity),
	})
	if err != nil {
		return err
	}

	j.equity.Flush()
	return j.equity.Error()
}

func (j *CSVJournal) Close() error {
	j.transactions.Flush()
	if err := j.transactions.Error(); err != nil {
		return err
	}
	j.equity.Flush()
	if err := j.equity.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	if err := j.ef.Close(); err != nil {
		return err
	}
	return nil
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}

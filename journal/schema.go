// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id TEXT PRIMARY KEY,
	date DATETIME NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price REAL NOT NULL,
	costs REAL NOT NULL,
	cash_after REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS equity (
	date DATETIME NOT NULL,
	portfolio_value REAL NOT NULL,
	cash REAL NOT NULL,
	quantity INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_equity_date ON equity(date);
`

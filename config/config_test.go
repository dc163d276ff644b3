package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marketforge/papertrade/sim"
)

func TestDefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Default().Validate())
}

func TestRoundTripYAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Account.InitialCapital = 50000
	cfg.Strategy.SignalThreshold = 0.03
	cfg.Strategy.Sizing = "fraction"
	cfg.Strategy.CashFraction = 0.8
	cfg.Costs.Enabled = false
	cfg.Risk.MaxPositions = 5
	cfg.Risk.StatePath = "./state.json"
	cfg.Journal.Type = "sqlite"
	cfg.Journal.DBPath = "./run.db"
	cfg.Journal.TransactionsFile = ""
	cfg.Journal.EquityFile = ""

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestRoundTripJSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.Strategy.RiskPerTrade = 0.02

	require.NoError(t, cfg.SaveToFile(path))

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadFromFileRejectsInvalid(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Account.InitialCapital = -1
	require.NoError(t, cfg.SaveToFile(path))

	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "initial_capital")
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero capital", func(c *Config) { c.Account.InitialCapital = 0 }, "initial_capital"},
		{"negative threshold", func(c *Config) { c.Strategy.SignalThreshold = -0.01 }, "signal_threshold"},
		{"risk above one", func(c *Config) { c.Strategy.RiskPerTrade = 1.5 }, "risk_per_trade"},
		{"zero stop loss", func(c *Config) { c.Strategy.StopLossPct = 0 }, "stop_loss_pct"},
		{"zero take profit", func(c *Config) { c.Strategy.TakeProfitPct = 0 }, "take_profit_pct"},
		{"unknown sizing", func(c *Config) { c.Strategy.Sizing = "martingale" }, "sizing"},
		{"negative commission", func(c *Config) { c.Costs.CommissionPct = -1 }, "costs"},
		{"reserve of one", func(c *Config) { c.Risk.CashReserve = 1 }, "cash_reserve"},
		{"unknown session", func(c *Config) { c.Risk.Session = "lse" }, "session"},
		{"csv without files", func(c *Config) { c.Journal.TransactionsFile = "" }, "transactions_file"},
		{"sqlite without path", func(c *Config) {
			c.Journal.Type = "sqlite"
			c.Journal.DBPath = ""
		}, "db_path"},
		{"unknown journal", func(c *Config) { c.Journal.Type = "parquet" }, "journal.type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSimConfig(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Strategy.Sizing = "fraction"
	cfg.Strategy.CashFraction = 0.7

	sc := cfg.SimConfig()
	assert.Equal(t, cfg.Account.InitialCapital, sc.InitialCapital)
	assert.Equal(t, sim.FixedFraction, sc.Sizing)
	assert.Equal(t, 0.7, sc.CashFraction)
	assert.True(t, sc.Costs.Enabled)
}

func TestRiskLimits(t *testing.T) {
	t.Parallel()

	cfg := Default()
	limits := cfg.RiskLimits()

	assert.Equal(t, cfg.Risk.MaxSingleStock, limits.MaxSingleStock)
	assert.Equal(t, cfg.Risk.CashReserve, limits.CashReserve)
	// Forced-exit thresholds come from the strategy section.
	assert.Equal(t, cfg.Strategy.StopLossPct, limits.StopLossPct)
	assert.Equal(t, cfg.Strategy.TakeProfitPct, limits.TakeProfitPct)
}

func TestSessionPresets(t *testing.T) {
	t.Parallel()

	cfg := Default()

	cfg.Risk.Session = "always"
	s, err := cfg.Session()
	require.NoError(t, err)
	assert.Empty(t, s.Days)

	cfg.Risk.Session = "nyse"
	s, err = cfg.Session()
	require.NoError(t, err)
	assert.True(t, s.Days[time.Monday])
	assert.False(t, s.Days[time.Saturday])

	cfg.Risk.Session = "lse"
	_, err = cfg.Session()
	assert.Error(t, err)
}

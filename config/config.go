// Package config loads and validates run configuration from YAML or JSON.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marketforge/papertrade/risk"
	"github.com/marketforge/papertrade/sim"
)

// Config represents the complete run configuration.
type Config struct {
	Account  AccountConfig  `json:"account" yaml:"account"`
	Strategy StrategyConfig `json:"strategy" yaml:"strategy"`
	Costs    CostsConfig    `json:"costs" yaml:"costs"`
	Risk     RiskConfig     `json:"risk" yaml:"risk"`
	Journal  JournalConfig  `json:"journal" yaml:"journal"`
}

// AccountConfig contains account initialization parameters.
type AccountConfig struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
}

// StrategyConfig contains signal and sizing parameters.
type StrategyConfig struct {
	SignalThreshold float64 `json:"signal_threshold" yaml:"signal_threshold"`
	RiskPerTrade    float64 `json:"risk_per_trade" yaml:"risk_per_trade"`
	StopLossPct     float64 `json:"stop_loss_pct" yaml:"stop_loss_pct"`
	TakeProfitPct   float64 `json:"take_profit_pct" yaml:"take_profit_pct"`
	Sizing          string  `json:"sizing" yaml:"sizing"` // "risk" or "fraction"
	CashFraction    float64 `json:"cash_fraction,omitempty" yaml:"cash_fraction,omitempty"`
}

// SizingMode maps the configured sizing name to the simulator's mode.
func (s StrategyConfig) SizingMode() sim.SizingMode {
	if s.Sizing == "fraction" {
		return sim.FixedFraction
	}
	return sim.RiskBased
}

// CostsConfig contains the transaction cost model.
type CostsConfig struct {
	Enabled       bool    `json:"enabled" yaml:"enabled"`
	CommissionPct float64 `json:"commission_pct" yaml:"commission_pct"`
	SlippagePct   float64 `json:"slippage_pct" yaml:"slippage_pct"`
}

// RiskConfig contains portfolio-level limits and the market session.
type RiskConfig struct {
	MaxSingleStock    float64 `json:"max_single_stock" yaml:"max_single_stock"`
	MaxSectorExposure float64 `json:"max_sector_exposure" yaml:"max_sector_exposure"`
	MaxPositions      int     `json:"max_positions" yaml:"max_positions"`
	DailyLossLimit    float64 `json:"daily_loss_limit" yaml:"daily_loss_limit"`
	CashReserve       float64 `json:"cash_reserve" yaml:"cash_reserve"`
	Session           string  `json:"session" yaml:"session"` // "always" or "nyse"
	StatePath         string  `json:"state_path,omitempty" yaml:"state_path,omitempty"`
}

// JournalConfig contains journaling parameters.
type JournalConfig struct {
	Type             string `json:"type" yaml:"type"` // "csv", "sqlite" or "none"
	TransactionsFile string `json:"transactions_file,omitempty" yaml:"transactions_file,omitempty"`
	EquityFile       string `json:"equity_file,omitempty" yaml:"equity_file,omitempty"`
	DBPath           string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
}

// SimConfig assembles the simulator configuration from the loaded sections.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		InitialCapital: c.Account.InitialCapital,
		RiskPerTrade:   c.Strategy.RiskPerTrade,
		StopLossPct:    c.Strategy.StopLossPct,
		TakeProfitPct:  c.Strategy.TakeProfitPct,
		Sizing:         c.Strategy.SizingMode(),
		CashFraction:   c.Strategy.CashFraction,
		Costs: sim.CostModel{
			Enabled:       c.Costs.Enabled,
			CommissionPct: c.Costs.CommissionPct,
			SlippagePct:   c.Costs.SlippagePct,
		},
	}
}

// RiskLimits assembles the risk manager limits from the loaded sections.
func (c *Config) RiskLimits() risk.Limits {
	return risk.Limits{
		MaxSingleStock:    c.Risk.MaxSingleStock,
		MaxSectorExposure: c.Risk.MaxSectorExposure,
		MaxPositions:      c.Risk.MaxPositions,
		DailyLossLimit:    c.Risk.DailyLossLimit,
		CashReserve:       c.Risk.CashReserve,
		StopLossPct:       c.Strategy.StopLossPct,
		TakeProfitPct:     c.Strategy.TakeProfitPct,
	}
}

// Session resolves the configured session preset.
func (c *Config) Session() (risk.Session, error) {
	switch c.Risk.Session {
	case "", "always":
		return risk.AlwaysOpen(), nil
	case "nyse":
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			return risk.Session{}, err
		}
		return risk.Weekdays(9*time.Hour+30*time.Minute, 16*time.Hour, loc), nil
	}
	return risk.Session{}, fmt.Errorf("unknown session %q", c.Risk.Session)
}

// LoadFromFile loads configuration from a file, YAML or JSON by content.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file, format chosen by extension.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Account.InitialCapital <= 0 {
		return fmt.Errorf("account.initial_capital must be positive")
	}
	if c.Strategy.SignalThreshold < 0 {
		return fmt.Errorf("strategy.signal_threshold must not be negative")
	}
	if c.Strategy.RiskPerTrade <= 0 || c.Strategy.RiskPerTrade > 1 {
		return fmt.Errorf("strategy.risk_per_trade must be between 0 and 1")
	}
	if c.Strategy.StopLossPct <= 0 || c.Strategy.StopLossPct >= 1 {
		return fmt.Errorf("strategy.stop_loss_pct must be between 0 and 1")
	}
	if c.Strategy.TakeProfitPct <= 0 {
		return fmt.Errorf("strategy.take_profit_pct must be positive")
	}
	if c.Strategy.Sizing != "" && c.Strategy.Sizing != "risk" && c.Strategy.Sizing != "fraction" {
		return fmt.Errorf("strategy.sizing must be 'risk' or 'fraction'")
	}
	if c.Strategy.CashFraction < 0 || c.Strategy.CashFraction > 1 {
		return fmt.Errorf("strategy.cash_fraction must be between 0 and 1")
	}
	if c.Costs.CommissionPct < 0 || c.Costs.SlippagePct < 0 {
		return fmt.Errorf("costs must not be negative")
	}
	if c.Risk.MaxSingleStock < 0 || c.Risk.MaxSingleStock > 1 {
		return fmt.Errorf("risk.max_single_stock must be between 0 and 1")
	}
	if c.Risk.MaxSectorExposure < 0 || c.Risk.MaxSectorExposure > 1 {
		return fmt.Errorf("risk.max_sector_exposure must be between 0 and 1")
	}
	if c.Risk.MaxPositions < 0 {
		return fmt.Errorf("risk.max_positions must not be negative")
	}
	if c.Risk.CashReserve < 0 || c.Risk.CashReserve >= 1 {
		return fmt.Errorf("risk.cash_reserve must be between 0 and 1")
	}
	if s := c.Risk.Session; s != "" && s != "always" && s != "nyse" {
		return fmt.Errorf("risk.session must be 'always' or 'nyse'")
	}
	switch c.Journal.Type {
	case "csv":
		if c.Journal.TransactionsFile == "" || c.Journal.EquityFile == "" {
			return fmt.Errorf("journal transactions_file and equity_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	case "", "none":
	default:
		return fmt.Errorf("journal.type must be 'csv', 'sqlite' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Account: AccountConfig{
			InitialCapital: 100000,
		},
		Strategy: StrategyConfig{
			SignalThreshold: 0.02,
			RiskPerTrade:    0.01,
			StopLossPct:     0.05,
			TakeProfitPct:   0.15,
			Sizing:          "risk",
		},
		Costs: CostsConfig{
			Enabled:       true,
			CommissionPct: 0.001,
			SlippagePct:   0.0005,
		},
		Risk: RiskConfig{
			MaxSingleStock:    0.10,
			MaxSectorExposure: 0.30,
			MaxPositions:      10,
			DailyLossLimit:    0.02,
			CashReserve:       0.10,
			Session:           "always",
		},
		Journal: JournalConfig{
			Type:             "csv",
			TransactionsFile: "./transactions.csv",
			EquityFile:       "./equity.csv",
		},
	}
}

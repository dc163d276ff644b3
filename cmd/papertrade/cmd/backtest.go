package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marketforge/papertrade/backtest"
	"github.com/marketforge/papertrade/config"
	"github.com/marketforge/papertrade/journal"
	"github.com/marketforge/papertrade/sim"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Simulate model predictions against historical bars",
	Long: `Backtest generates signals by comparing predicted prices to actual
closes, then simulates the trades with position sizing, stop-loss and
take-profit exits, and transaction costs.

The bars CSV has columns date,open,high,low,close,volume; the predictions
CSV has one predicted price per row. Both may be xz-compressed.

Example:
  papertrade backtest --bars data/AAPL.csv.xz --predictions preds.csv --symbol AAPL`,
	RunE: runBacktest,
}

var (
	btBarsPath  string
	btPredsPath string
	btSymbol    string
	btConfig    string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btBarsPath, "bars", "b", "", "path to bar CSV (date,open,high,low,close,volume) (required)")
	backtestCmd.Flags().StringVarP(&btPredsPath, "predictions", "p", "", "path to predicted price CSV (required)")
	backtestCmd.Flags().StringVarP(&btSymbol, "symbol", "s", "SIM", "symbol label for the run")
	backtestCmd.Flags().StringVarP(&btConfig, "config", "c", "", "path to config file (defaults apply if empty)")

	backtestCmd.MarkFlagRequired("bars")
	backtestCmd.MarkFlagRequired("predictions")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if btConfig != "" {
		var err error
		cfg, err = config.LoadFromFile(btConfig)
		if err != nil {
			return err
		}
	}

	feed, err := backtest.OpenCSVBars(btBarsPath)
	if err != nil {
		return fmt.Errorf("open bars: %w", err)
	}
	series, err := backtest.ReadSeries(btSymbol, feed)
	if err != nil {
		return fmt.Errorf("read bars: %w", err)
	}

	predicted, err := backtest.ReadPredictions(btPredsPath)
	if err != nil {
		return fmt.Errorf("read predictions: %w", err)
	}

	engine := sim.NewEngine(btSymbol, cfg.SimConfig())

	j, err := openJournal(cfg.Journal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		engine.SetJournal(j)
	}

	runner := &backtest.Runner{Engine: engine, Threshold: cfg.Strategy.SignalThreshold}
	result, err := runner.Run(series, predicted)
	if err != nil {
		return err
	}

	backtest.PrintResult(os.Stdout, result)
	return nil
}

func openJournal(jc config.JournalConfig) (journal.Journal, error) {
	switch jc.Type {
	case "sqlite":
		return journal.NewSQLite(jc.DBPath)
	case "csv":
		return journal.NewCSV(jc.TransactionsFile, jc.EquityFile)
	}
	return nil, nil
}

package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "papertrade",
	Short: "An educational backtesting and risk-managed paper-trading engine",
	Long: `Papertrade simulates trading model predictions against historical bars.

It provides tools for:
  - Generating Buy/Sell/Hold signals from predicted vs actual prices
  - Risk-based position sizing with stop-loss and take-profit exits
  - Transaction cost modeling (commission and size-scaled slippage)
  - Portfolio-level risk limits and forced-exit alerts
  - Performance metrics: Sharpe, drawdown, win rate, VaR
  - Journaling every transaction and equity point to CSV or SQLite`,
}

var verbose bool

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	}
}

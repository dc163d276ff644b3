package backtest

import (
	"fmt"
	"io"
	"time"

	"github.com/marketforge/papertrade/market"
	"github.com/marketforge/papertrade/perf"
	"github.com/marketforge/papertrade/signal"
	"github.com/marketforge/papertrade/sim"
)

// Result summarizes one backtest run.
type Result struct {
	Symbol     string
	Start, End time.Time
	Bars       int
	Trades     int
	Wins       int
	Losses     int
	FinalCash  float64
	FinalValue float64
	Report     perf.Report
}

// Runner wires a price series and a prediction series through signal
// generation into the execution engine.
type Runner struct {
	Engine    *sim.Engine
	Threshold float64
}

// Run generates signals from the predictions and simulates them over the
// series. Predictions may be shorter than the series (models that need a
// warm-up window emit no prediction for the first bars); they are aligned
// to the tail of the series, with Hold for the uncovered prefix.
func (r *Runner) Run(series *market.Series, predicted []float64) (Result, error) {
	if r.Engine == nil {
		return Result{}, fmt.Errorf("backtest: Engine is required")
	}
	if len(predicted) > series.Len() {
		return Result{}, fmt.Errorf("backtest: %d predictions for %d bars", len(predicted), series.Len())
	}

	offset := series.Len() - len(predicted)
	actual := series.Closes()[offset:]

	tail, err := signal.Generate(predicted, actual, r.Threshold)
	if err != nil {
		return Result{}, err
	}

	signals := make([]signal.Signal, series.Len())
	copy(signals[offset:], tail)

	if err := r.Engine.Run(series, signals); err != nil {
		return Result{}, err
	}

	wins, losses := 0, 0
	for _, pnl := range r.Engine.RealizedPnL() {
		if pnl > 0 {
			wins++
		} else if pnl < 0 {
			losses++
		}
	}

	history := r.Engine.History()
	res := Result{
		Symbol:    series.Symbol,
		Bars:      series.Len(),
		Trades:    len(r.Engine.Ledger()),
		Wins:      wins,
		Losses:    losses,
		FinalCash: r.Engine.Cash(),
		Report:    r.Engine.Report(),
	}
	if len(history) > 0 {
		res.Start = history[0].Date
		res.End = history[len(history)-1].Date
		res.FinalValue = history[len(history)-1].PortfolioValue
	}
	return res, nil
}

// PrintResult writes a human-readable run summary.
func PrintResult(w io.Writer, r Result) {
	fmt.Fprintf(w, "Backtest %s  %s .. %s  (%d bars)\n",
		r.Symbol, r.Start.Format("2006-01-02"), r.End.Format("2006-01-02"), r.Bars)
	fmt.Fprintf(w, "  transactions: %d  (wins %d, losses %d)\n", r.Trades, r.Wins, r.Losses)
	fmt.Fprintf(w, "  final cash:   %.2f\n", r.FinalCash)
	fmt.Fprintf(w, "  final value:  %.2f\n", r.FinalValue)
	fmt.Fprintf(w, "  total return: %.2f%%\n", r.Report.TotalReturn*100)
	fmt.Fprintf(w, "  sharpe:       %.3f\n", r.Report.SharpeRatio)
	fmt.Fprintf(w, "  max drawdown: %.2f%%\n", r.Report.MaxDrawdown*100)
	fmt.Fprintf(w, "  win rate:     %.1f%%\n", r.Report.WinRate*100)
	fmt.Fprintf(w, "  VaR(95):      %.4f\n", r.Report.ValueAtRisk)
}

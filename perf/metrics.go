// Package perf computes summary statistics over portfolio value and daily
// P&L series. One routine serves every caller, so the simulator and the
// risk-managed book report identical numbers for identical curves.
package perf

import (
	"math"
	"sort"
)

// TradingDays is the annualization factor for daily returns.
const TradingDays = 252

// Metrics is the core risk/return triple over a portfolio value series.
type Metrics struct {
	SharpeRatio float64
	MaxDrawdown float64
	TotalReturn float64
}

// Report is the full performance snapshot exposed to callers. Derived and
// read-only; recomputed on demand from the value history.
type Report struct {
	TotalReturn float64
	SharpeRatio float64
	MaxDrawdown float64
	WinRate     float64
	ValueAtRisk float64
}

// DailyReturns is the percent change between consecutive values. The first
// value has no return and is dropped.
func DailyReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		prev := values[i-1]
		if prev == 0 {
			// Degenerate bar: a zero value has no defined return.
			out = append(out, 0)
			continue
		}
		out = append(out, values[i]/prev-1)
	}
	return out
}

// Sharpe annualizes mean/stdev of daily returns. Returns 0 when the series
// has fewer than two returns or zero variance; the unguarded formula would
// divide by zero.
func Sharpe(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	std := math.Sqrt(ss / float64(len(returns)-1))
	if std == 0 {
		return 0
	}
	return mean / std * math.Sqrt(TradingDays)
}

// MaxDrawdown is the worst peak-to-trough decline as a fraction, 0 or
// negative. A monotonically non-decreasing series has drawdown 0.
func MaxDrawdown(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	peak := values[0]
	worst := 0.0
	for _, v := range values {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (v - peak) / peak
			if dd < worst {
				worst = dd
			}
		}
	}
	return worst
}

// TotalReturn is final/initial - 1, or 0 for degenerate input.
func TotalReturn(values []float64) float64 {
	if len(values) < 2 || values[0] == 0 {
		return 0
	}
	return values[len(values)-1]/values[0] - 1
}

// WinRate is the fraction of positive entries, 0 for an empty series.
func WinRate(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	wins := 0
	for _, x := range xs {
		if x > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(xs))
}

// Percentile interpolates linearly between order statistics, with p in
// [0, 100]. Returns 0 for an empty series.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ValueAtRisk is the historical 5th-percentile daily return: the loss
// threshold exceeded on the worst 5% of days.
func ValueAtRisk(returns []float64) float64 {
	return Percentile(returns, 5)
}

// RiskMetrics computes the Sharpe/drawdown/return triple over a portfolio
// value series.
func RiskMetrics(values []float64) Metrics {
	returns := DailyReturns(values)
	return Metrics{
		SharpeRatio: Sharpe(returns),
		MaxDrawdown: MaxDrawdown(values),
		TotalReturn: TotalReturn(values),
	}
}

// Summarize builds the full report from a portfolio value series.
func Summarize(values []float64) Report {
	returns := DailyReturns(values)
	return Report{
		TotalReturn: TotalReturn(values),
		SharpeRatio: Sharpe(returns),
		MaxDrawdown: MaxDrawdown(values),
		WinRate:     WinRate(returns),
		ValueAtRisk: ValueAtRisk(returns),
	}
}

// SummarizePnL reports over a daily P&L series by rebuilding the implied
// value curve from the starting capital.
func SummarizePnL(initial float64, pnl []float64) Report {
	values := make([]float64, len(pnl)+1)
	values[0] = initial
	for i, p := range pnl {
		values[i+1] = values[i] + p
	}
	return Summarize(values)
}

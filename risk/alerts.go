package risk

import "sort"

// AlertType classifies a forced-exit trigger.
type AlertType string

const (
	AlertStopLoss   AlertType = "STOP_LOSS"
	AlertTakeProfit AlertType = "TAKE_PROFIT"
)

// Alert reports a position whose P&L crossed a forced-exit threshold. It
// carries enough data for the caller to construct the corresponding Sell.
type Alert struct {
	Type       AlertType
	Symbol     string
	Quantity   int
	Price      float64 // trigger price
	EntryPrice float64
	PnLPct     float64
}

// CheckStopTakeProfit scans every open position against current prices and
// emits a STOP_LOSS alert at pnl <= -StopLossPct or a TAKE_PROFIT alert at
// pnl >= TakeProfitPct. Positions without a current price are skipped.
// Alerts are ordered by symbol.
func (m *Manager) CheckStopTakeProfit(prices map[string]float64) []Alert {
	m.MarkToMarket(prices)

	var alerts []Alert
	for sym, p := range m.positions {
		current, ok := prices[sym]
		if !ok || p.AvgPrice <= 0 {
			continue
		}

		pnlPct := (current - p.AvgPrice) / p.AvgPrice

		switch {
		case pnlPct <= -m.limits.StopLossPct:
			alerts = append(alerts, Alert{
				Type:       AlertStopLoss,
				Symbol:     sym,
				Quantity:   p.Quantity,
				Price:      current,
				EntryPrice: p.AvgPrice,
				PnLPct:     pnlPct,
			})
		case pnlPct >= m.limits.TakeProfitPct:
			alerts = append(alerts, Alert{
				Type:       AlertTakeProfit,
				Symbol:     sym,
				Quantity:   p.Quantity,
				Price:      current,
				EntryPrice: p.AvgPrice,
				PnLPct:     pnlPct,
			})
		}
	}

	sort.Slice(alerts, func(i, j int) bool { return alerts[i].Symbol < alerts[j].Symbol })
	return alerts
}

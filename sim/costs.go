package sim

import "math"

// CostModel applies commission and slippage to simulated fills. Slippage
// grows with order size to model market impact; commission is a flat
// fraction of trade value. Both are added to buy costs and subtracted from
// sell proceeds.
type CostModel struct {
	Enabled       bool
	CommissionPct float64
	SlippagePct   float64
}

// Slippage is the per-share price penalty for an order of the given size:
// price * slippagePct * (1 + log10(shares)).
func (c CostModel) Slippage(price float64, shares int) float64 {
	if !c.Enabled || shares <= 0 {
		return 0
	}
	return price * c.SlippagePct * (1 + math.Log10(float64(shares)))
}

// Commission is shares * price * commissionPct.
func (c CostModel) Commission(price float64, shares int) float64 {
	if !c.Enabled {
		return 0
	}
	return float64(shares) * price * c.CommissionPct
}

// BuyCost returns the total cash debited for a buy and the cost portion
// (commission plus aggregate slippage).
func (c CostModel) BuyCost(price float64, shares int) (total, costs float64) {
	slip := c.Slippage(price, shares)
	comm := c.Commission(price, shares)
	total = float64(shares)*(price+slip) + comm
	costs = comm + slip*float64(shares)
	return total, costs
}

// SellProceeds returns the cash credited for a sell and the cost portion.
func (c CostModel) SellProceeds(price float64, shares int) (total, costs float64) {
	slip := c.Slippage(price, shares)
	comm := c.Commission(price, shares)
	total = float64(shares)*(price-slip) - comm
	costs = comm + slip*float64(shares)
	return total, costs
}

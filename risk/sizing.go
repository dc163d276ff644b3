package risk

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter reports sizing inputs outside their valid domain.
var ErrInvalidParameter = errors.New("risk: invalid parameter")

// PositionSize computes how many whole shares to buy so that a stop-loss
// hit loses at most riskPerTrade of capital:
//
//	shares = floor((capital * riskPerTrade) / (price * stopLossPct))
//
// A result of 0 means the risk budget does not cover one share's worth of
// risk; callers must treat 0 as "do not trade", not as an error.
func PositionSize(capital, riskPerTrade, stopLossPct, price float64) (int, error) {
	if price <= 0 {
		return 0, fmt.Errorf("%w: price %v must be positive", ErrInvalidParameter, price)
	}
	if stopLossPct <= 0 {
		return 0, fmt.Errorf("%w: stop loss pct %v must be positive", ErrInvalidParameter, stopLossPct)
	}
	if riskPerTrade <= 0 || riskPerTrade > 1 {
		return 0, fmt.Errorf("%w: risk per trade %v must be in (0, 1]", ErrInvalidParameter, riskPerTrade)
	}

	shares := math.Floor((capital * riskPerTrade) / (price * stopLossPct))
	if shares < 0 {
		shares = 0
	}
	return int(shares), nil
}

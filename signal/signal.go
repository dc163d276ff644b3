// Package signal converts a forecast price series into discrete trading
// signals by comparing it against the actual price series.
package signal

import (
	"errors"
	"fmt"
)

// Signal is a discrete trading label attached to one bar.
type Signal int8

const (
	Hold Signal = iota
	Buy
	Sell
)

func (s Signal) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	case Hold:
		return "Hold"
	}
	return fmt.Sprintf("Signal(%d)", int8(s))
}

var (
	// ErrLengthMismatch reports predicted/actual series of different lengths.
	ErrLengthMismatch = errors.New("signal: predicted and actual series lengths differ")

	// ErrInvalidPrice reports a non-positive actual price, which would make
	// the relative change undefined.
	ErrInvalidPrice = errors.New("signal: actual price must be positive")
)

// Generate labels each aligned (predicted, actual) pair:
// Buy when (p-a)/a > threshold, Sell when (p-a)/a < -threshold, Hold
// otherwise. Both comparisons are strict, so a relative change exactly at
// the threshold yields Hold.
//
// Pure and deterministic; the inputs are never modified.
func Generate(predicted, actual []float64, threshold float64) ([]Signal, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("%w: predicted=%d actual=%d",
			ErrLengthMismatch, len(predicted), len(actual))
	}

	signals := make([]Signal, len(predicted))
	for i, a := range actual {
		if a <= 0 {
			return nil, fmt.Errorf("%w: actual[%d]=%v", ErrInvalidPrice, i, a)
		}
		change := (predicted[i] - a) / a
		switch {
		case change > threshold:
			signals[i] = Buy
		case change < -threshold:
			signals[i] = Sell
		default:
			signals[i] = Hold
		}
	}
	return signals, nil
}

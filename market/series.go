package market

import "fmt"

// Series is an ordered run of daily bars for one symbol. Dates are strictly
// increasing; bars are immutable once the series is built.
type Series struct {
	Symbol string
	bars   []Bar
}

// NewSeries validates and wraps bars into a Series. Bars must be ordered by
// strictly increasing date with positive close prices.
func NewSeries(symbol string, bars []Bar) (*Series, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("series %q: no bars", symbol)
	}
	for i, b := range bars {
		if b.Close <= 0 {
			return nil, fmt.Errorf("series %q: bar %d (%s): non-positive close %v",
				symbol, i, b.Date.Format("2006-01-02"), b.Close)
		}
		if i > 0 && !b.Date.After(bars[i-1].Date) {
			return nil, fmt.Errorf("series %q: bar %d (%s): date not after previous bar (%s)",
				symbol, i, b.Date.Format("2006-01-02"), bars[i-1].Date.Format("2006-01-02"))
		}
	}
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return &Series{Symbol: symbol, bars: cp}, nil
}

func (s *Series) Len() int { return len(s.bars) }

func (s *Series) Bar(i int) Bar { return s.bars[i] }

// Bars returns a copy of the underlying bars.
func (s *Series) Bars() []Bar {
	cp := make([]Bar, len(s.bars))
	copy(cp, s.bars)
	return cp
}

// Closes returns the close prices in bar order.
func (s *Series) Closes() []float64 {
	out := make([]float64, len(s.bars))
	for i, b := range s.bars {
		out[i] = b.Close
	}
	return out
}

package market

import "time"

// Bar represents one trading day of OHLCV price data.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Package backtest loads historical bar data and drives the simulator over
// it, producing a summarized Result.
package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/marketforge/papertrade/market"
)

// BarFeed yields daily bars one at a time. Implementations should be
// deterministic and return (ok=false, err=nil) at EOF.
type BarFeed interface {
	Next() (b market.Bar, ok bool, err error)
	Close() error
}

// CSVBarsFeed reads bars from a CSV file with columns
// date,open,high,low,close,volume. A header row is detected and skipped.
// Files ending in .xz are decompressed on the fly.
type CSVBarsFeed struct {
	f   *os.File
	r   *csv.Reader
	row int
}

func OpenCSVBars(path string) (*CSVBarsFeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("backtest: open %s: %w", path, err)
		}
		src = xr
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return &CSVBarsFeed{f: f, r: r}, nil
}

func (c *CSVBarsFeed) Next() (market.Bar, bool, error) {
	for {
		rec, err := c.r.Read()
		if err == io.EOF {
			return market.Bar{}, false, nil
		}
		if err != nil {
			return market.Bar{}, false, err
		}
		c.row++

		if len(rec) > 0 && c.row == 1 && strings.EqualFold(rec[0], "date") {
			continue
		}
		if len(rec) < 5 {
			return market.Bar{}, false, fmt.Errorf("backtest: row %d: want at least 5 fields, got %d", c.row, len(rec))
		}

		date, err := parseDate(rec[0])
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("backtest: row %d: %w", c.row, err)
		}

		vals := make([]float64, 0, 5)
		for _, s := range rec[1:] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return market.Bar{}, false, fmt.Errorf("backtest: row %d: %w", c.row, err)
			}
			vals = append(vals, v)
		}

		bar := market.Bar{
			Date:  date,
			Open:  vals[0],
			High:  vals[1],
			Low:   vals[2],
			Close: vals[3],
		}
		if len(vals) > 4 {
			bar.Volume = vals[4]
		}
		return bar, true, nil
	}
}

func (c *CSVBarsFeed) Close() error { return c.f.Close() }

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ReadSeries drains a feed into a Series for the given symbol.
func ReadSeries(symbol string, feed BarFeed) (*market.Series, error) {
	defer feed.Close()

	var bars []market.Bar
	for {
		b, ok, err := feed.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		bars = append(bars, b)
	}
	return market.NewSeries(symbol, bars)
}

// ReadPredictions loads a one-column CSV of model price predictions, one
// value per row, optionally headed. Files ending in .xz are decompressed.
func ReadPredictions(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		xr, err := xz.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("backtest: open %s: %w", path, err)
		}
		src = xr
	}

	r := csv.NewReader(src)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out []float64
	row := 0
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row++
		if len(rec) == 0 {
			continue
		}
		v, err := strconv.ParseFloat(rec[len(rec)-1], 64)
		if err != nil {
			if row == 1 {
				continue // header
			}
			return nil, fmt.Errorf("backtest: row %d: %w", row, err)
		}
		out = append(out, v)
	}
	return out, nil
}

package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/marketforge/papertrade/perf"
)

// State is the persisted slice of a Manager: the rolling daily P&L window
// plus informational snapshots. Loaded once before a run and saved once
// after; never touched mid-run.
type State struct {
	DailyPnL       []float64          `json:"daily_pnl"`
	SectorExposure map[string]float64 `json:"sector_exposure"`
	Metrics        perf.Report        `json:"risk_metrics"`
	LastUpdated    time.Time          `json:"last_updated"`
}

// LoadState restores the daily P&L window from path. A missing file is a
// fresh start, not an error.
func (m *Manager) LoadState(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("risk: read state: %w", err)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return fmt.Errorf("risk: parse state %s: %w", path, err)
	}

	m.dailyPnL = st.DailyPnL
	if len(m.dailyPnL) > perf.TradingDays {
		m.dailyPnL = m.dailyPnL[len(m.dailyPnL)-perf.TradingDays:]
	}
	return nil
}

// SaveState writes the current window and snapshots to path.
func (m *Manager) SaveState(path string) error {
	st := State{
		DailyPnL:       m.DailyPnL(),
		SectorExposure: m.SectorExposures(),
		Metrics:        m.PortfolioMetrics(),
		LastUpdated:    m.now(),
	}

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("risk: marshal state: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("risk: write state: %w", err)
	}
	return nil
}

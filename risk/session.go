package risk

import "time"

// Session is a trading-window predicate: which weekdays and which intraday
// window accept new trades. The zero value accepts every instant, which is
// what a batch backtest over historical bars wants.
type Session struct {
	// Days marks tradable weekdays. An empty map means all days trade.
	Days map[time.Weekday]bool

	// Open and Close are offsets from midnight in Location. Both zero
	// means the whole day trades.
	Open  time.Duration
	Close time.Duration

	// Location for the intraday window; nil means the time's own location.
	Location *time.Location
}

// AlwaysOpen returns a session that never rejects.
func AlwaysOpen() Session { return Session{} }

// Weekdays returns a Mon-Fri session with the given intraday window.
func Weekdays(open, close time.Duration, loc *time.Location) Session {
	return Session{
		Days: map[time.Weekday]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
		Open:     open,
		Close:    close,
		Location: loc,
	}
}

// Contains reports whether t falls inside the session.
func (s Session) Contains(t time.Time) bool {
	if s.Location != nil {
		t = t.In(s.Location)
	}
	if len(s.Days) > 0 && !s.Days[t.Weekday()] {
		return false
	}
	if s.Open == 0 && s.Close == 0 {
		return true
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	elapsed := t.Sub(midnight)
	return elapsed >= s.Open && elapsed <= s.Close
}

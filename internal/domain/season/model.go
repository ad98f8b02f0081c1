package season

import (
	"fmt"
	"time"
)

// Season identifies an NBA season by the calendar year it ends in. The
// 2024-25 season is Season(2025).
type Season int

// Label renders the season the way the stats API expects it, e.g.
// "2024-25" for Season(2025).
func (s Season) Label() string {
	return fmt.Sprintf("%d-%02d", int(s)-1, int(s)%100)
}

// StartYear is the calendar year the season tips off in.
func (s Season) StartYear() int {
	return int(s) - 1
}

// Valid reports whether the season falls in the supported window.
func (s Season) Valid(first, current Season) bool {
	return s >= first && s <= current
}

// Range returns every season from first through current inclusive, in
// ascending order.
func Range(first, current Season) []Season {
	if current < first {
		return nil
	}
	out := make([]Season, 0, int(current-first)+1)
	for s := first; s <= current; s++ {
		out = append(out, s)
	}
	return out
}

// CutoffDate is the moment after which a season can no longer gain
// games. The Finals never run past June, so July 1 of the ending year
// is a safe boundary.
func (s Season) CutoffDate() time.Time {
	return time.Date(int(s), time.July, 1, 0, 0, 0, 0, time.UTC)
}

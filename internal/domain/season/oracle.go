package season

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MarkerRepository persists the set of seasons already known to be
// complete so finality survives process restarts.
type MarkerRepository interface {
	Load(ctx context.Context) ([]Season, error)
	Store(ctx context.Context, seasons []Season) error
}

// Oracle answers whether a season can still gain games. A season is
// final once its cutoff date has passed or once it was previously
// marked final. Finality is monotone: the oracle never un-finals a
// season within or across runs.
type Oracle struct {
	now     func() time.Time
	markers MarkerRepository

	mu    sync.Mutex
	known map[Season]bool
	dirty bool
}

// NewOracle builds an oracle over the given marker store. A nil
// markers repository disables persistence but the cutoff rule still
// applies. nowFn defaults to time.Now.
func NewOracle(markers MarkerRepository, nowFn func() time.Time) *Oracle {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Oracle{
		now:     nowFn,
		markers: markers,
		known:   make(map[Season]bool),
	}
}

// Load pulls previously persisted markers into memory. Call once
// before the first IsFinal check.
func (o *Oracle) Load(ctx context.Context) error {
	if o.markers == nil {
		return nil
	}
	seasons, err := o.markers.Load(ctx)
	if err != nil {
		return err
	}
	o.mu.Lock()
	for _, s := range seasons {
		o.known[s] = true
	}
	o.mu.Unlock()
	return nil
}

// IsFinal reports whether the season can no longer gain games. Safe
// for concurrent use by refresh workers.
func (o *Oracle) IsFinal(s Season) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.known[s] {
		return true
	}
	if !o.now().Before(s.CutoffDate()) {
		o.known[s] = true
		o.dirty = true
		return true
	}
	return false
}

// MarkFinal records a season as complete regardless of the calendar.
func (o *Oracle) MarkFinal(s Season) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.known[s] {
		return
	}
	o.known[s] = true
	o.dirty = true
}

// Flush persists any newly discovered markers. A no-op when nothing
// changed since the last flush.
func (o *Oracle) Flush(ctx context.Context) error {
	o.mu.Lock()
	if o.markers == nil || !o.dirty {
		o.mu.Unlock()
		return nil
	}
	seasons := make([]Season, 0, len(o.known))
	for s := range o.known {
		seasons = append(seasons, s)
	}
	o.mu.Unlock()

	sort.Slice(seasons, func(i, j int) bool { return seasons[i] < seasons[j] })
	if err := o.markers.Store(ctx, seasons); err != nil {
		return err
	}
	o.mu.Lock()
	o.dirty = false
	o.mu.Unlock()
	return nil
}

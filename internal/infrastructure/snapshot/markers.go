package snapshot

import (
	"context"

	"github.com/courtsync/courtsync/internal/domain/season"
)

const markersFileName = "completed_seasons.json"

// Markers persists the completed-season set as a JSON array next to
// the snapshots it gates. Implements season.MarkerRepository.
type Markers struct {
	store *Store
}

func NewMarkers(store *Store) *Markers {
	return &Markers{store: store}
}

func (m *Markers) Load(ctx context.Context) ([]season.Season, error) {
	var seasons []season.Season
	if _, err := m.store.ReadJSON(ctx, markersFileName, &seasons); err != nil {
		return nil, err
	}
	return seasons, nil
}

func (m *Markers) Store(ctx context.Context, seasons []season.Season) error {
	return m.store.WriteJSON(ctx, markersFileName, seasons)
}

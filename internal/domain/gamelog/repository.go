package gamelog

import (
	"context"
	"time"

	"github.com/courtsync/courtsync/internal/domain/season"
)

// Repository describes season table persistence needs from use cases.
type Repository interface {
	// LoadSeason returns the stored rows for one season and kind. A
	// missing table yields an empty slice, not an error.
	LoadSeason(ctx context.Context, kind Kind, s season.Season) ([]Row, error)
	// StoreSeason atomically replaces the stored table for one season
	// and kind.
	StoreSeason(ctx context.Context, kind Kind, s season.Season, rows []Row) error
	// StoreUnion atomically replaces the all-seasons table for a kind.
	StoreUnion(ctx context.Context, kind Kind, rows []Row) error
	// SeasonModTime reports when the season table was last written.
	// ok is false when no table exists yet.
	SeasonModTime(ctx context.Context, kind Kind, s season.Season) (mtime time.Time, ok bool, err error)
}

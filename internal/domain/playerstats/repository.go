package playerstats

import (
	"context"
	"time"

	"github.com/courtsync/courtsync/internal/domain/season"
)

// Repository persists the wide per-player season tables and their
// all-seasons union.
type Repository interface {
	LoadSeason(ctx context.Context, sn season.Season) (Table, error)
	StoreSeason(ctx context.Context, sn season.Season, t Table) error
	StoreUnion(ctx context.Context, t Table) error
	SeasonModTime(ctx context.Context, sn season.Season) (time.Time, bool, error)
}

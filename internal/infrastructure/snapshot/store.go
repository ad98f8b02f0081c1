package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
	"github.com/courtsync/courtsync/internal/domain/season"
	"github.com/courtsync/courtsync/internal/platform/logging"
)

// Store persists season tables and summary files under one data
// directory. Every write lands in a temp file first and is renamed
// into place, so a crash mid-write never truncates a prior snapshot.
type Store struct {
	dir    string
	logger *logging.Logger
}

func NewStore(dir string, logger *logging.Logger) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Dir returns the data directory the store writes into.
func (s *Store) Dir() string {
	return s.dir
}

func seasonFileName(kind gamelog.Kind, sn season.Season) string {
	if kind == gamelog.KindPlayer {
		return fmt.Sprintf("playerlog_%d.parquet", int(sn))
	}
	return fmt.Sprintf("gamelog_%d.parquet", int(sn))
}

func unionFileName(kind gamelog.Kind) string {
	if kind == gamelog.KindPlayer {
		return "player_game_logs.parquet"
	}
	return "gamelogs.parquet"
}

func (s *Store) LoadSeason(_ context.Context, kind gamelog.Kind, sn season.Season) ([]gamelog.Row, error) {
	path := filepath.Join(s.dir, seasonFileName(kind, sn))
	rows, err := parquet.ReadFile[gamelog.Row](path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func (s *Store) StoreSeason(ctx context.Context, kind gamelog.Kind, sn season.Season, rows []gamelog.Row) error {
	return s.writeParquet(ctx, seasonFileName(kind, sn), rows)
}

func (s *Store) StoreUnion(ctx context.Context, kind gamelog.Kind, rows []gamelog.Row) error {
	return s.writeParquet(ctx, unionFileName(kind), rows)
}

func (s *Store) SeasonModTime(_ context.Context, kind gamelog.Kind, sn season.Season) (time.Time, bool, error) {
	info, err := os.Stat(filepath.Join(s.dir, seasonFileName(kind, sn)))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

var rowSchema = parquet.SchemaOf(new(gamelog.Row))

func (s *Store) writeParquet(ctx context.Context, name string, rows []gamelog.Row) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w := parquet.NewWriter(tmp, rowSchema, parquet.Compression(&parquet.Snappy))
	for _, r := range rows {
		if err := w.Write(r); err != nil {
			_ = w.Close()
			cleanup()
			return fmt.Errorf("write parquet row: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}

	s.logger.DebugContext(ctx, "snapshot written", "file", name, "rows", len(rows))
	return nil
}

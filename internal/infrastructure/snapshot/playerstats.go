package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/courtsync/courtsync/internal/domain/playerstats"
	"github.com/courtsync/courtsync/internal/domain/season"
)

const playerStatsUnionFileName = "playerstats.parquet"

func playerStatsFileName(sn season.Season) string {
	return fmt.Sprintf("players_%d.parquet", int(sn))
}

// PlayerStatsStore is the wide player table side of the data
// directory. These files have no fixed row struct because the column
// set varies by season and per mode, so the schema is inferred per
// write.
type PlayerStatsStore struct {
	store *Store
}

// PlayerStats returns the player stats view over the same directory.
func (s *Store) PlayerStats() *PlayerStatsStore {
	return &PlayerStatsStore{store: s}
}

func (p *PlayerStatsStore) LoadSeason(_ context.Context, sn season.Season) (playerstats.Table, error) {
	return readStatsTable(filepath.Join(p.store.dir, playerStatsFileName(sn)))
}

func (p *PlayerStatsStore) StoreSeason(ctx context.Context, sn season.Season, t playerstats.Table) error {
	return p.writeStatsTable(ctx, playerStatsFileName(sn), t)
}

func (p *PlayerStatsStore) StoreUnion(ctx context.Context, t playerstats.Table) error {
	return p.writeStatsTable(ctx, playerStatsUnionFileName, t)
}

func (p *PlayerStatsStore) SeasonModTime(_ context.Context, sn season.Season) (time.Time, bool, error) {
	info, err := os.Stat(filepath.Join(p.store.dir, playerStatsFileName(sn)))
	if err != nil {
		if os.IsNotExist(err) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

// statsSchema infers a parquet schema from the table's cells. Every
// column is optional because the all-seasons union leaves gaps where
// an endpoint gained a column.
func statsSchema(t playerstats.Table) *parquet.Schema {
	group := parquet.Group{}
	for col, pos := range t.ColumnIndex() {
		group[col] = parquet.Optional(columnNode(t.Rows, pos))
	}
	return parquet.NewSchema("playerstats", group)
}

func columnNode(rows [][]any, pos int) parquet.Node {
	for _, row := range rows {
		if pos >= len(row) || row[pos] == nil {
			continue
		}
		switch row[pos].(type) {
		case string:
			return parquet.String()
		case int32:
			return parquet.Int(32)
		case int64, int:
			return parquet.Int(64)
		default:
			return parquet.Leaf(parquet.DoubleType)
		}
	}
	return parquet.Leaf(parquet.DoubleType)
}

func (p *PlayerStatsStore) writeStatsTable(ctx context.Context, name string, t playerstats.Table) error {
	tmp, err := os.CreateTemp(p.store.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	w := parquet.NewGenericWriter[map[string]any](tmp, statsSchema(t), parquet.Compression(&parquet.Snappy))
	records := make([]map[string]any, 0, len(t.Rows))
	for _, row := range t.Rows {
		record := make(map[string]any, len(t.Columns))
		for i, col := range t.Columns {
			if i < len(row) && row[i] != nil {
				record[col] = row[i]
			}
		}
		records = append(records, record)
	}
	if len(records) > 0 {
		if _, err := w.Write(records); err != nil {
			_ = w.Close()
			cleanup()
			return fmt.Errorf("write parquet rows: %w", err)
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
	if err := os.Rename(tmpName, filepath.Join(p.store.dir, name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename snapshot into place: %w", err)
	}

	p.store.logger.DebugContext(ctx, "snapshot written", "file", name, "rows", len(t.Rows), "columns", len(t.Columns))
	return nil
}

// readStatsTable loads a wide stats file back into a table. Column
// order follows the stored schema, which parquet keeps sorted by
// name.
func readStatsTable(path string) (playerstats.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return playerstats.Table{}, nil
		}
		return playerstats.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := parquet.NewGenericReader[map[string]any](f)
	defer reader.Close()

	fields := reader.Schema().Fields()
	cols := make([]string, 0, len(fields))
	for _, field := range fields {
		cols = append(cols, field.Name())
	}
	sort.Strings(cols)

	table := playerstats.Table{Columns: cols}
	buf := make([]map[string]any, 64)
	for {
		for i := range buf {
			buf[i] = make(map[string]any, len(cols))
		}
		n, readErr := reader.Read(buf)
		for _, record := range buf[:n] {
			row := make([]any, len(cols))
			for i, col := range cols {
				if v, ok := record[col]; ok {
					row[i] = v
				}
			}
			table.Rows = append(table.Rows, row)
		}
		if readErr != nil || n == 0 {
			break
		}
	}
	return table, nil
}

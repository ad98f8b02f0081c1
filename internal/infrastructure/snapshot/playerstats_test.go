package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/courtsync/courtsync/internal/domain/playerstats"
)

func sampleStatsTable() playerstats.Table {
	return playerstats.Table{
		Columns: []string{"player_id", "player_name", "pts", "pts_pergame", "year"},
		Rows: [][]any{
			{float64(1628369), "Jayson Tatum", float64(2140), 26.9, int32(2025)},
			{float64(201939), "Stephen Curry", float64(1956), 24.5, int32(2025)},
		},
	}
}

func TestPlayerStatsRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	stats := testStore(t).PlayerStats()

	if err := stats.StoreSeason(ctx, 2025, sampleStatsTable()); err != nil {
		t.Fatalf("StoreSeason: %v", err)
	}
	got, err := stats.LoadSeason(ctx, 2025)
	if err != nil {
		t.Fatalf("LoadSeason: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}

	idx := got.ColumnIndex()
	for _, col := range []string{"player_id", "player_name", "pts", "pts_pergame", "year"} {
		if _, ok := idx[col]; !ok {
			t.Fatalf("column %q missing after round trip: %v", col, got.Columns)
		}
	}

	// Identify the row regardless of stored order.
	var tatum []any
	for _, row := range got.Rows {
		if row[idx["player_name"]] == "Jayson Tatum" {
			tatum = row
		}
	}
	if tatum == nil {
		t.Fatalf("tatum row lost: %v", got.Rows)
	}
	if tatum[idx["pts"]] != float64(2140) {
		t.Fatalf("pts = %v, want 2140", tatum[idx["pts"]])
	}
	if tatum[idx["year"]] != int32(2025) {
		t.Fatalf("year = %v, want int32 2025", tatum[idx["year"]])
	}
}

func TestPlayerStatsLoadMissingSeason(t *testing.T) {
	t.Parallel()

	stats := testStore(t).PlayerStats()
	got, err := stats.LoadSeason(context.Background(), 1990)
	if err != nil {
		t.Fatalf("LoadSeason: %v", err)
	}
	if !got.Empty() {
		t.Fatalf("missing season should load empty, got %+v", got)
	}
}

func TestPlayerStatsUnionWithGaps(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testStore(t)
	stats := store.PlayerStats()

	union := playerstats.Union([]playerstats.Table{
		{Columns: []string{"player_id", "pts"}, Rows: [][]any{{float64(1), float64(100)}}},
		{Columns: []string{"player_id", "pts", "nba_fantasy_pts"}, Rows: [][]any{{float64(2), float64(200), 310.5}}},
	})
	if err := stats.StoreUnion(ctx, union); err != nil {
		t.Fatalf("StoreUnion: %v", err)
	}

	got, err := readStatsTable(filepath.Join(store.Dir(), "playerstats.parquet"))
	if err != nil {
		t.Fatalf("read union: %v", err)
	}
	if len(got.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(got.Rows))
	}
	idx := got.ColumnIndex()
	var older []any
	for _, row := range got.Rows {
		if row[idx["player_id"]] == float64(1) {
			older = row
		}
	}
	if older == nil {
		t.Fatalf("older row lost: %v", got.Rows)
	}
	if older[idx["nba_fantasy_pts"]] != nil {
		t.Fatalf("gap column should stay nil, got %v", older[idx["nba_fantasy_pts"]])
	}
}

func TestPlayerStatsSeasonModTime(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := testStore(t)
	stats := store.PlayerStats()

	if _, ok, err := stats.SeasonModTime(ctx, 2025); err != nil || ok {
		t.Fatalf("missing file: ok=%v err=%v", ok, err)
	}

	if err := stats.StoreSeason(ctx, 2025, sampleStatsTable()); err != nil {
		t.Fatalf("StoreSeason: %v", err)
	}
	mtime, ok, err := stats.SeasonModTime(ctx, 2025)
	if err != nil || !ok {
		t.Fatalf("stored file: ok=%v err=%v", ok, err)
	}
	if time.Since(mtime) > time.Minute {
		t.Fatalf("mod time looks stale: %v", mtime)
	}

	// Writes must not leave temp files behind.
	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".parquet" {
			t.Fatalf("unexpected leftover file %q", e.Name())
		}
	}
}

package gamelog

import (
	"reflect"
	"testing"
)

func row(gameID string, entityID int64, date string, pts int32) Row {
	return Row{
		Season:   2024,
		GameID:   gameID,
		EntityID: entityID,
		TeamID:   entityID,
		TeamAbbr: "BOS",
		GameDate: date,
		Points:   pts,
	}
}

func TestMergeEmptyExisting(t *testing.T) {
	t.Parallel()

	incoming := []Row{
		row("0022300005", 3, "2024-01-05", 99),
		row("0022300001", 1, "2024-01-01", 100),
		row("0022300003", 1, "2024-01-03", 105),
		row("0022300002", 2, "2024-01-02", 90),
		row("0022300004", 2, "2024-01-04", 112),
	}

	got := Merge(nil, incoming, false)
	if len(got) != 5 {
		t.Fatalf("merged %d rows, want 5", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].GameDate > got[i].GameDate {
			t.Fatalf("rows not sorted by game date: %q before %q", got[i-1].GameDate, got[i].GameDate)
		}
	}
}

func TestMergeOverwritesCorrectedStats(t *testing.T) {
	t.Parallel()

	existing := []Row{row("0022300001", 1, "2023-11-01", 100)}
	incoming := []Row{row("0022300001", 1, "2023-11-01", 102)}

	got := Merge(existing, incoming, false)
	if len(got) != 1 {
		t.Fatalf("merged %d rows, want 1", len(got))
	}
	if got[0].Points != 102 {
		t.Fatalf("merged points = %d, want corrected 102", got[0].Points)
	}
}

func TestMergeFinalSeasonUntouched(t *testing.T) {
	t.Parallel()

	existing := []Row{
		row("0022300001", 1, "2023-11-01", 100),
		row("0022300002", 2, "2023-11-02", 95),
	}
	incoming := []Row{row("0022300001", 1, "2023-11-01", 120)}

	got := Merge(existing, incoming, true)
	if !reflect.DeepEqual(got, existing) {
		t.Fatal("final season with stored rows must be returned unchanged")
	}
}

func TestMergeFinalSeasonEmptyExistingStillFills(t *testing.T) {
	t.Parallel()

	incoming := []Row{row("0022300001", 1, "2023-11-01", 100)}
	got := Merge(nil, incoming, true)
	if len(got) != 1 {
		t.Fatalf("backfill of an empty final season yielded %d rows, want 1", len(got))
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	incoming := []Row{
		row("0022300001", 1, "2023-11-01", 100),
		row("0022300001", 2, "2023-11-01", 97),
		row("0022300002", 1, "2023-11-03", 110),
	}

	once := Merge(nil, incoming, false)
	twice := Merge(once, incoming, false)
	if !reflect.DeepEqual(once, twice) {
		t.Fatal("re-merging the same batch changed the table")
	}
}

func TestMergeNoDuplicateKeys(t *testing.T) {
	t.Parallel()

	existing := []Row{
		row("0022300001", 1, "2023-11-01", 100),
		row("0022300002", 1, "2023-11-03", 108),
	}
	incoming := []Row{
		row("0022300001", 1, "2023-11-01", 101),
		row("0022300003", 1, "2023-11-05", 99),
	}

	got := Merge(existing, incoming, false)
	seen := make(map[Key]bool, len(got))
	for _, r := range got {
		if seen[r.Key()] {
			t.Fatalf("duplicate key %+v in merged table", r.Key())
		}
		seen[r.Key()] = true
	}
	if len(got) != 3 {
		t.Fatalf("merged %d rows, want 3", len(got))
	}
}

func TestDedupKeepsLast(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("0022300001", 1, "2023-11-01", 100),
		row("0022300001", 1, "2023-11-01", 103),
	}
	got := Dedup(rows)
	if len(got) != 1 {
		t.Fatalf("dedup kept %d rows, want 1", len(got))
	}
	if got[0].Points != 103 {
		t.Fatalf("dedup kept points %d, want the later 103", got[0].Points)
	}
}

func TestGameIndexOpponent(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("0022300001", 1610612738, "2023-11-01", 112),
		row("0022300001", 1610612747, "2023-11-01", 104),
		row("0022300002", 1610612738, "2023-11-03", 99),
	}
	idx := NewGameIndex(rows)

	opp, ok := idx.Opponent("0022300001", 1610612738)
	if !ok {
		t.Fatal("opponent not found")
	}
	if opp.TeamID != 1610612747 {
		t.Fatalf("opponent team = %d, want 1610612747", opp.TeamID)
	}
	if _, ok := idx.Opponent("0022300002", 1610612738); ok {
		t.Fatal("single-row game should have no opponent")
	}

	if got := idx.Rows("0022300001"); len(got) != 2 {
		t.Fatalf("game rows = %d, want 2", len(got))
	}
	if got := idx.Rows("0022309999"); got != nil {
		t.Fatalf("unknown game should yield nil, got %v", got)
	}
}

func TestMaxGameDate(t *testing.T) {
	t.Parallel()

	rows := []Row{
		row("0022300001", 1, "2023-11-01", 100),
		row("0022300002", 1, "2024-02-10", 90),
		row("0022300003", 1, "2023-12-25", 120),
	}
	got := MaxGameDate(rows)
	if got.Format("2006-01-02") != "2024-02-10" {
		t.Fatalf("max game date = %s, want 2024-02-10", got.Format("2006-01-02"))
	}
	if !MaxGameDate(nil).IsZero() {
		t.Fatal("empty table should yield the zero time")
	}
}

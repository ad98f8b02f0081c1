package usecase

import (
	"errors"
	"testing"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
)

func teamBaseTable(rows ...[]any) ResultTable {
	return ResultTable{
		Name: "TeamGameLogs",
		Headers: []string{
			"TEAM_ID", "TEAM_ABBREVIATION", "GAME_ID", "GAME_DATE", "MATCHUP", "WL",
			"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
			"OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS", "PLUS_MINUS",
		},
		Rows: rows,
	}
}

func teamBaseRow(teamID float64, abbr, gameID, date string, pts float64) []any {
	return []any{
		teamID, abbr, gameID, date, abbr + " vs. NYK", "W",
		240.0, 40.0, 88.0, 12.0, 35.0, 18.0, 22.0,
		10.0, 34.0, 44.0, 25.0, 7.0, 5.0, 13.0, 18.0, pts, 6.0,
	}
}

func teamAdvancedTable(rows ...[]any) ResultTable {
	return ResultTable{
		Name: "TeamGameLogs",
		Headers: []string{
			"TEAM_ID", "GAME_ID", "OFF_RATING", "DEF_RATING", "NET_RATING", "PACE", "POSS", "TS_PCT",
		},
		Rows: rows,
	}
}

func TestTeamRowsJoinsAdvancedRatings(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	base := teamBaseTable(
		teamBaseRow(1610612738, "BOS", "0022400010", "2024-10-22", 110),
		teamBaseRow(1610612752, "NYK", "0022400010", "2024-10-22", 104),
	)
	advanced := teamAdvancedTable(
		[]any{1610612738.0, "0022400010", 118.3, 111.8, 6.5, 98.4, 99.0, 0.601},
	)

	rows, err := n.TeamRows(base, advanced, 2025)
	if err != nil {
		t.Fatalf("TeamRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	var bos gamelog.Row
	for _, r := range rows {
		if r.TeamAbbr == "BOS" {
			bos = r
		}
	}
	if bos.Points != 110 || bos.OffRating != 118.3 || bos.Possessions != 99.0 {
		t.Fatalf("joined row is wrong: %+v", bos)
	}
	if bos.Season != 2025 || bos.GameDate != "2024-10-22" {
		t.Fatalf("season/date are wrong: %+v", bos)
	}
	for _, r := range rows {
		if r.TeamAbbr == "NYK" && r.OffRating != 0 {
			t.Fatalf("unmatched row should keep zero ratings: %+v", r)
		}
	}
}

func TestTeamRowsAllowsEmptyAdvancedTable(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	rows, err := n.TeamRows(teamBaseTable(teamBaseRow(1610612738, "BOS", "0022400010", "2024-10-22", 110)), ResultTable{}, 2025)
	if err != nil {
		t.Fatalf("TeamRows: %v", err)
	}
	if len(rows) != 1 || rows[0].OffRating != 0 {
		t.Fatalf("expected one row with zero ratings, got %+v", rows)
	}
}

func TestTeamRowsRejectsMissingColumns(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	table := ResultTable{
		Name:    "TeamGameLogs",
		Headers: []string{"TEAM_ID", "GAME_ID"},
		Rows:    [][]any{{1610612738.0, "0022400010"}},
	}

	_, err := n.TeamRows(table, ResultTable{}, 2025)
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected ErrNormalization, got %v", err)
	}
}

func TestTeamRowsNormalizesDateFormats(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	for _, raw := range []string{"2024-10-22", "2024-10-22T00:00:00", "OCT 22, 2024"} {
		rows, err := n.TeamRows(teamBaseTable(teamBaseRow(1610612738, "BOS", "0022400010", raw, 110)), ResultTable{}, 2025)
		if err != nil {
			t.Fatalf("TeamRows(%q): %v", raw, err)
		}
		if rows[0].GameDate != "2024-10-22" {
			t.Fatalf("date %q normalized to %q", raw, rows[0].GameDate)
		}
	}
}

func TestTeamRowsFallsBackToTeamDirectory(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	rows, err := n.TeamRows(teamBaseTable(teamBaseRow(1610612747, "", "0022400010", "2024-10-22", 110)), ResultTable{}, 2025)
	if err != nil {
		t.Fatalf("TeamRows: %v", err)
	}
	if rows[0].TeamAbbr != "LAL" {
		t.Fatalf("expected directory fallback to LAL, got %q", rows[0].TeamAbbr)
	}
}

func playerTraditionalTable(rows ...[]any) ResultTable {
	return ResultTable{
		Name: "PlayerStats",
		Headers: []string{
			"GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PLAYER_ID", "PLAYER_NAME",
			"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
			"OREB", "DREB", "REB", "AST", "STL", "BLK", "TO", "PF", "PTS", "PLUS_MINUS",
		},
		Rows: rows,
	}
}

func TestPlayerRowsJoinAndDNPSkip(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	traditional := playerTraditionalTable(
		[]any{"0022400010", 1610612738.0, "BOS", 1628369.0, "Jayson Tatum",
			"36:30", 11.0, 23.0, 4.0, 10.0, 5.0, 6.0,
			1.0, 8.0, 9.0, 6.0, 1.0, 0.0, 3.0, 2.0, 31.0, 8.0},
		[]any{"0022400010", 1610612738.0, "BOS", 999999.0, "Bench Player",
			"", 0.0, 0.0, 0.0, 0.0, 0.0, 0.0,
			0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0, 0.0},
	)
	advanced := ResultTable{
		Name: "PlayerStats",
		Headers: []string{
			"GAME_ID", "PLAYER_ID", "OFF_RATING", "DEF_RATING", "NET_RATING", "PACE", "POSS", "TS_PCT",
		},
		Rows: [][]any{
			{"0022400010", 1628369.0, 121.0, 108.0, 13.0, 97.5, 74.0, 0.612},
		},
	}

	rows, err := n.PlayerRows(traditional, advanced, 2025, "2024-10-22")
	if err != nil {
		t.Fatalf("PlayerRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("DNP row should be dropped, got %d rows", len(rows))
	}

	r := rows[0]
	if r.EntityID != 1628369 || r.EntityName != "Jayson Tatum" {
		t.Fatalf("player identity is wrong: %+v", r)
	}
	if r.Minutes < 36.4 || r.Minutes > 36.6 {
		t.Fatalf("minutes %v not parsed from MM:SS", r.Minutes)
	}
	if r.TrueShooting != 0.612 || r.GameDate != "2024-10-22" {
		t.Fatalf("joined row is wrong: %+v", r)
	}
}

func TestPlayerRowsRejectBadDate(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	traditional := playerTraditionalTable(
		[]any{"0022400010", 1610612738.0, "BOS", 1628369.0, "Jayson Tatum",
			"30:00", 11.0, 23.0, 4.0, 10.0, 5.0, 6.0,
			1.0, 8.0, 9.0, 6.0, 1.0, 0.0, 3.0, 2.0, 31.0, 8.0},
	)

	_, err := n.PlayerRows(traditional, ResultTable{}, 2025, "not a date")
	if !errors.Is(err, ErrNormalization) {
		t.Fatalf("expected ErrNormalization, got %v", err)
	}
}

package usecase

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
	"github.com/courtsync/courtsync/internal/domain/season"
	"github.com/courtsync/courtsync/internal/domain/team"
)

// Column names of the provider's team game log table. The normalizer
// refuses tables missing any of them instead of defaulting, so a
// provider schema change can never corrupt stored snapshots.
var teamBaseColumns = []string{
	"TEAM_ID", "TEAM_ABBREVIATION", "GAME_ID", "GAME_DATE", "MATCHUP", "WL",
	"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
	"OREB", "DREB", "REB", "AST", "STL", "BLK", "TOV", "PF", "PTS", "PLUS_MINUS",
}

var teamAdvancedColumns = []string{
	"TEAM_ID", "GAME_ID", "OFF_RATING", "DEF_RATING", "NET_RATING", "PACE", "POSS", "TS_PCT",
}

var playerBaseColumns = []string{
	"GAME_ID", "TEAM_ID", "TEAM_ABBREVIATION", "PLAYER_ID", "PLAYER_NAME",
	"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
	"OREB", "DREB", "REB", "AST", "STL", "BLK", "TO", "PF", "PTS", "PLUS_MINUS",
}

var playerAdvancedColumns = []string{
	"GAME_ID", "PLAYER_ID", "OFF_RATING", "DEF_RATING", "NET_RATING", "PACE", "POSS", "TS_PCT",
}

// Normalizer reshapes raw provider tables into canonical rows.
type Normalizer struct {
	validate *validator.Validate
}

func NewNormalizer() *Normalizer {
	return &Normalizer{validate: validator.New()}
}

// TeamRows joins one season's Base and Advanced team log tables on
// (GAME_ID, TEAM_ID) and emits one canonical row per team per game.
// An empty advanced table is allowed: ratings stay zero.
func (n *Normalizer) TeamRows(base, advanced ResultTable, s season.Season) ([]gamelog.Row, error) {
	baseIdx, err := requireColumns(base, teamBaseColumns)
	if err != nil {
		return nil, err
	}

	ratings, err := indexAdvanced(advanced, teamAdvancedColumns, "TEAM_ID")
	if err != nil {
		return nil, err
	}

	rows := make([]gamelog.Row, 0, len(base.Rows))
	for i, raw := range base.Rows {
		row, err := n.teamRow(raw, baseIdx, s)
		if err != nil {
			return nil, fmt.Errorf("%w: team log row %d: %v", ErrNormalization, i, err)
		}
		if adv, ok := ratings[joinKey(row.GameID, row.TeamID)]; ok {
			applyRatings(&row, adv)
		}
		if err := n.validate.Struct(row); err != nil {
			return nil, fmt.Errorf("%w: team log row %d: %v", ErrNormalization, i, err)
		}
		rows = append(rows, row)
	}
	return gamelog.Dedup(rows), nil
}

// PlayerRows joins one game's traditional and advanced box score
// tables on PLAYER_ID. The box score tables carry no game date, so
// the caller passes the date known from the team log.
func (n *Normalizer) PlayerRows(traditional, advanced ResultTable, s season.Season, gameDate string) ([]gamelog.Row, error) {
	baseIdx, err := requireColumns(traditional, playerBaseColumns)
	if err != nil {
		return nil, err
	}

	ratings, err := indexAdvanced(advanced, playerAdvancedColumns, "PLAYER_ID")
	if err != nil {
		return nil, err
	}

	rows := make([]gamelog.Row, 0, len(traditional.Rows))
	for i, raw := range traditional.Rows {
		row, err := n.playerRow(raw, baseIdx, s, gameDate)
		if err != nil {
			return nil, fmt.Errorf("%w: box score row %d: %v", ErrNormalization, i, err)
		}
		// DNP entries carry a reason string (or nothing) in MIN and
		// zeros everywhere else. They add nothing to the log.
		if row.Minutes == 0 && row.Points == 0 && row.FGA == 0 && row.Rebounds == 0 && row.Assists == 0 {
			continue
		}
		if adv, ok := ratings[joinKey(row.GameID, row.EntityID)]; ok {
			applyRatings(&row, adv)
		}
		if err := n.validate.Struct(row); err != nil {
			return nil, fmt.Errorf("%w: box score row %d: %v", ErrNormalization, i, err)
		}
		rows = append(rows, row)
	}
	return gamelog.Dedup(rows), nil
}

func (n *Normalizer) teamRow(raw []any, idx map[string]int, s season.Season) (gamelog.Row, error) {
	teamID, err := cellInt64(raw, idx["TEAM_ID"])
	if err != nil {
		return gamelog.Row{}, fmt.Errorf("TEAM_ID: %v", err)
	}
	gameDate, err := normalizeGameDate(cellString(raw, idx["GAME_DATE"]))
	if err != nil {
		return gamelog.Row{}, err
	}

	row := gamelog.Row{
		Season:   int32(s),
		GameID:   cellString(raw, idx["GAME_ID"]),
		EntityID: teamID,
		TeamID:   teamID,
		TeamAbbr: cellString(raw, idx["TEAM_ABBREVIATION"]),
		GameDate: gameDate,
		Matchup:  cellString(raw, idx["MATCHUP"]),
		WinLoss:  cellString(raw, idx["WL"]),
	}
	if row.TeamAbbr == "" {
		if t, ok := team.Lookup(teamID); ok {
			row.TeamAbbr = t.Tricode
		}
	}
	if row.Minutes, err = parseMinutes(raw, idx["MIN"]); err != nil {
		return gamelog.Row{}, err
	}
	if err := fillCountingStats(&row, raw, idx, "TOV"); err != nil {
		return gamelog.Row{}, err
	}
	return row, nil
}

func (n *Normalizer) playerRow(raw []any, idx map[string]int, s season.Season, gameDate string) (gamelog.Row, error) {
	teamID, err := cellInt64(raw, idx["TEAM_ID"])
	if err != nil {
		return gamelog.Row{}, fmt.Errorf("TEAM_ID: %v", err)
	}
	playerID, err := cellInt64(raw, idx["PLAYER_ID"])
	if err != nil {
		return gamelog.Row{}, fmt.Errorf("PLAYER_ID: %v", err)
	}
	date, err := normalizeGameDate(gameDate)
	if err != nil {
		return gamelog.Row{}, err
	}

	row := gamelog.Row{
		Season:     int32(s),
		GameID:     cellString(raw, idx["GAME_ID"]),
		EntityID:   playerID,
		TeamID:     teamID,
		TeamAbbr:   cellString(raw, idx["TEAM_ABBREVIATION"]),
		EntityName: cellString(raw, idx["PLAYER_NAME"]),
		GameDate:   date,
	}
	// Some box score vintages omit the abbreviation column value.
	if row.TeamAbbr == "" {
		if t, ok := team.Lookup(teamID); ok {
			row.TeamAbbr = t.Tricode
		}
	}
	if row.Minutes, err = parseMinutes(raw, idx["MIN"]); err != nil {
		return gamelog.Row{}, err
	}
	if err := fillCountingStats(&row, raw, idx, "TO"); err != nil {
		return gamelog.Row{}, err
	}
	return row, nil
}

// fillCountingStats reads the shared counting columns. tovColumn
// differs between tables: team logs use TOV, box scores use TO.
func fillCountingStats(row *gamelog.Row, raw []any, idx map[string]int, tovColumn string) error {
	targets := []struct {
		column string
		dst    *int32
	}{
		{"FGM", &row.FGM}, {"FGA", &row.FGA},
		{"FG3M", &row.FG3M}, {"FG3A", &row.FG3A},
		{"FTM", &row.FTM}, {"FTA", &row.FTA},
		{"OREB", &row.OffRebounds}, {"DREB", &row.DefRebounds}, {"REB", &row.Rebounds},
		{"AST", &row.Assists}, {"STL", &row.Steals}, {"BLK", &row.Blocks},
		{tovColumn, &row.Turnovers}, {"PF", &row.Fouls},
		{"PTS", &row.Points}, {"PLUS_MINUS", &row.PlusMinus},
	}
	for _, t := range targets {
		v, err := cellInt64(raw, idx[t.column])
		if err != nil {
			return fmt.Errorf("%s: %v", t.column, err)
		}
		*t.dst = int32(v)
	}
	return nil
}

type advancedCells struct {
	offRating, defRating, netRating, pace, poss, tsPct float64
}

func applyRatings(row *gamelog.Row, adv advancedCells) {
	row.OffRating = adv.offRating
	row.DefRating = adv.defRating
	row.NetRating = adv.netRating
	row.Pace = adv.pace
	row.Possessions = adv.poss
	row.TrueShooting = adv.tsPct
}

// indexAdvanced builds a (GAME_ID, entity) lookup over an Advanced
// table once, so the base/advanced join costs one probe per row.
func indexAdvanced(advanced ResultTable, columns []string, entityColumn string) (map[string]advancedCells, error) {
	if len(advanced.Headers) == 0 && len(advanced.Rows) == 0 {
		return nil, nil
	}
	idx, err := requireColumns(advanced, columns)
	if err != nil {
		return nil, err
	}

	out := make(map[string]advancedCells, len(advanced.Rows))
	for i, raw := range advanced.Rows {
		entityID, err := cellInt64(raw, idx[entityColumn])
		if err != nil {
			return nil, fmt.Errorf("%w: advanced row %d: %s: %v", ErrNormalization, i, entityColumn, err)
		}
		var cells advancedCells
		targets := []struct {
			column string
			dst    *float64
		}{
			{"OFF_RATING", &cells.offRating}, {"DEF_RATING", &cells.defRating},
			{"NET_RATING", &cells.netRating}, {"PACE", &cells.pace},
			{"POSS", &cells.poss}, {"TS_PCT", &cells.tsPct},
		}
		for _, t := range targets {
			if *t.dst, err = cellFloat64(raw, idx[t.column]); err != nil {
				return nil, fmt.Errorf("%w: advanced row %d: %s: %v", ErrNormalization, i, t.column, err)
			}
		}
		out[joinKey(cellString(raw, idx["GAME_ID"]), entityID)] = cells
	}
	return out, nil
}

func joinKey(gameID string, entityID int64) string {
	return gameID + ":" + strconv.FormatInt(entityID, 10)
}

func requireColumns(table ResultTable, columns []string) (map[string]int, error) {
	idx := table.ColumnIndex()
	missing := make([]string, 0, 2)
	for _, col := range columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: table %q missing columns %s", ErrNormalization, table.Name, strings.Join(missing, ", "))
	}
	return idx, nil
}

// normalizeGameDate accepts the provider's date shapes ("2024-10-22",
// "2024-10-22T00:00:00", "OCT 22, 2024") and emits ISO yyyy-mm-dd.
func normalizeGameDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("game date is empty")
	}
	for _, layout := range []string{"2006-01-02", "2006-01-02T15:04:05", "Jan 2, 2006"} {
		if d, err := time.Parse(layout, raw); err == nil {
			return d.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("game date %q is not parseable", raw)
}

// parseMinutes handles both minute shapes: a plain number in team
// logs, "MM:SS" (or a DNP reason, treated as zero) in box scores.
func parseMinutes(raw []any, col int) (float64, error) {
	if col < 0 || col >= len(raw) || raw[col] == nil {
		return 0, nil
	}
	if v, ok := raw[col].(float64); ok {
		return v, nil
	}
	s := strings.TrimSpace(cellString(raw, col))
	if s == "" {
		return 0, nil
	}
	if strings.Contains(s, ":") {
		parts := strings.SplitN(s, ":", 2)
		mins, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return 0, nil
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return mins, nil
		}
		return mins + secs/60, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// DNP markers ("DNP - Coach's Decision") land in MIN.
		return 0, nil
	}
	return v, nil
}

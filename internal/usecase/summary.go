package usecase

import (
	"fmt"
	"time"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
	"github.com/courtsync/courtsync/internal/domain/season"
)

// summaryColumns is the whitelist of league-dash advanced stats kept
// in the team summary files. Everything else the endpoint returns is
// rank noise downstream consumers never use.
var summaryColumns = []string{
	"GP", "W", "L", "W_PCT",
	"OFF_RATING", "DEF_RATING", "NET_RATING",
	"PACE", "POSS", "TS_PCT", "EFG_PCT",
	"AST_PCT", "REB_PCT", "TM_TOV_PCT",
}

// TeamSummary keys whitelisted advanced aggregates by team
// abbreviation, the shape downstream dashboards read.
type TeamSummary map[string]map[string]float64

// TeamSummaryFile is the on-disk shape of team_summary_{year}.json.
type TeamSummaryFile struct {
	Updated time.Time   `json:"updated"`
	Teams   TeamSummary `json:"teams"`
}

// AllTeamSummaries is team_summary.json: every covered season's teams
// map keyed by ending year.
type AllTeamSummaries struct {
	Updated time.Time                     `json:"updated"`
	Data    map[season.Season]TeamSummary `json:"data"`
}

// BuildTeamSummary reduces a LeagueDashTeamStats Advanced table to
// the whitelisted columns.
func BuildTeamSummary(table ResultTable) (TeamSummary, error) {
	idx, err := requireColumns(table, append([]string{"TEAM_ID", "TEAM_NAME"}, summaryColumns...))
	if err != nil {
		return nil, err
	}

	out := make(TeamSummary, len(table.Rows))
	for i, raw := range table.Rows {
		abbr := teamAbbreviation(raw, idx)
		if abbr == "" {
			return nil, fmt.Errorf("%w: summary row %d has no team identity", ErrNormalization, i)
		}
		stats := make(map[string]float64, len(summaryColumns))
		for _, col := range summaryColumns {
			v, err := cellFloat64(raw, idx[col])
			if err != nil {
				return nil, fmt.Errorf("%w: summary row %d: %s: %v", ErrNormalization, i, col, err)
			}
			stats[col] = v
		}
		out[abbr] = stats
	}
	return out, nil
}

func teamAbbreviation(raw []any, idx map[string]int) string {
	if col, ok := idx["TEAM_ABBREVIATION"]; ok {
		if abbr := cellString(raw, col); abbr != "" {
			return abbr
		}
	}
	// LeagueDash omits the abbreviation; fall back to the name.
	return cellString(raw, idx["TEAM_NAME"])
}

// EfficiencyFile is the on-disk shape of team_efficiency_{year}.json.
type EfficiencyFile struct {
	Updated time.Time       `json:"updated"`
	Games   []EfficiencyRow `json:"games"`
}

// EfficiencyRow is one team's ratings in one game with the opposing
// side's points and possessions attached.
type EfficiencyRow struct {
	GameID         string  `json:"gameId"`
	GameDate       string  `json:"gameDate"`
	TeamID         int64   `json:"teamId"`
	TeamAbbr       string  `json:"teamAbbreviation"`
	Points         int32   `json:"pts"`
	Possessions    float64 `json:"poss"`
	OffRating      float64 `json:"offRating"`
	DefRating      float64 `json:"defRating"`
	NetRating      float64 `json:"netRating"`
	Pace           float64 `json:"pace"`
	OppTeamAbbr    string  `json:"oppTeamAbbreviation"`
	OppPoints      int32   `json:"oppPts"`
	OppPossessions float64 `json:"oppPoss"`
}

// BuildEfficiency pairs each team game log row with its opponent
// through a game index built once, never a per-row scan.
func BuildEfficiency(rows []gamelog.Row) []EfficiencyRow {
	idx := gamelog.NewGameIndex(rows)

	out := make([]EfficiencyRow, 0, len(rows))
	for _, r := range rows {
		eff := EfficiencyRow{
			GameID:      r.GameID,
			GameDate:    r.GameDate,
			TeamID:      r.TeamID,
			TeamAbbr:    r.TeamAbbr,
			Points:      r.Points,
			Possessions: r.Possessions,
			OffRating:   r.OffRating,
			DefRating:   r.DefRating,
			NetRating:   r.NetRating,
			Pace:        r.Pace,
		}
		if opp, ok := idx.Opponent(r.GameID, r.TeamID); ok {
			eff.OppTeamAbbr = opp.TeamAbbr
			eff.OppPoints = opp.Points
			eff.OppPossessions = opp.Possessions
		}
		out = append(out, eff)
	}
	return out
}

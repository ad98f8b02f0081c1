package gamelog

import (
	"time"

	"github.com/courtsync/courtsync/internal/domain/season"
)

// Kind separates the two log shapes stored side by side: one row per
// team per game, or one row per player per game.
type Kind string

const (
	KindTeam   Kind = "team"
	KindPlayer Kind = "player"
)

func (k Kind) Valid() bool {
	return k == KindTeam || k == KindPlayer
}

// Key uniquely identifies a log row. EntityID is the team ID for team
// rows and the player ID for player rows.
type Key struct {
	Season   season.Season
	GameID   string
	EntityID int64
}

// Row is one entity's box score for one game. Counting stats stay
// int32 because downstream JS consumers cannot represent int64
// precisely. GameDate is ISO yyyy-mm-dd so lexicographic order equals
// chronological order.
type Row struct {
	Season       int32   `parquet:"season" json:"season" validate:"required"`
	GameID       string  `parquet:"game_id" json:"gameId" validate:"required"`
	EntityID     int64   `parquet:"entity_id" json:"entityId" validate:"required"`
	TeamID       int64   `parquet:"team_id" json:"teamId" validate:"required"`
	TeamAbbr     string  `parquet:"team_abbreviation" json:"teamAbbreviation" validate:"required"`
	EntityName   string  `parquet:"entity_name,optional" json:"entityName,omitempty"`
	GameDate     string  `parquet:"game_date" json:"gameDate" validate:"required,datetime=2006-01-02"`
	Matchup      string  `parquet:"matchup,optional" json:"matchup,omitempty"`
	WinLoss      string  `parquet:"wl,optional" json:"wl,omitempty"`
	Minutes      float64 `parquet:"min,optional" json:"min"`
	FGM          int32   `parquet:"fgm,optional" json:"fgm"`
	FGA          int32   `parquet:"fga,optional" json:"fga"`
	FG3M         int32   `parquet:"fg3m,optional" json:"fg3m"`
	FG3A         int32   `parquet:"fg3a,optional" json:"fg3a"`
	FTM          int32   `parquet:"ftm,optional" json:"ftm"`
	FTA          int32   `parquet:"fta,optional" json:"fta"`
	OffRebounds  int32   `parquet:"oreb,optional" json:"oreb"`
	DefRebounds  int32   `parquet:"dreb,optional" json:"dreb"`
	Rebounds     int32   `parquet:"reb,optional" json:"reb"`
	Assists      int32   `parquet:"ast,optional" json:"ast"`
	Steals       int32   `parquet:"stl,optional" json:"stl"`
	Blocks       int32   `parquet:"blk,optional" json:"blk"`
	Turnovers    int32   `parquet:"tov,optional" json:"tov"`
	Fouls        int32   `parquet:"pf,optional" json:"pf"`
	Points       int32   `parquet:"pts,optional" json:"pts"`
	PlusMinus    int32   `parquet:"plus_minus,optional" json:"plusMinus"`
	OffRating    float64 `parquet:"off_rating,optional" json:"offRating"`
	DefRating    float64 `parquet:"def_rating,optional" json:"defRating"`
	NetRating    float64 `parquet:"net_rating,optional" json:"netRating"`
	Pace         float64 `parquet:"pace,optional" json:"pace"`
	Possessions  float64 `parquet:"poss,optional" json:"poss"`
	TrueShooting float64 `parquet:"ts_pct,optional" json:"tsPct"`
}

func (r Row) Key() Key {
	return Key{
		Season:   season.Season(r.Season),
		GameID:   r.GameID,
		EntityID: r.EntityID,
	}
}

// MaxGameDate returns the most recent game date across rows, or the
// zero time when rows is empty or holds no parseable dates. Used as
// the incremental fetch cursor for an in-progress season.
func MaxGameDate(rows []Row) time.Time {
	var max time.Time
	for _, r := range rows {
		d, err := time.Parse("2006-01-02", r.GameDate)
		if err != nil {
			continue
		}
		if d.After(max) {
			max = d
		}
	}
	return max
}

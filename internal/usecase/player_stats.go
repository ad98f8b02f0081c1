package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/courtsync/courtsync/internal/domain/playerstats"
	"github.com/courtsync/courtsync/internal/domain/season"
)

// suffixedStatColumns are the counting stats whose PerGame, Per36 and
// Per100Possessions variants keep a suffix after the join, so the
// bare PTS column stays the season total.
var suffixedStatColumns = []string{
	"MIN", "FGM", "FGA", "FG3M", "FG3A", "FTM", "FTA",
	"OREB", "DREB", "REB", "AST", "TOV", "STL", "BLK", "BLKA",
	"PF", "PFD", "PTS", "PLUS_MINUS", "NBA_FANTASY_PTS", "DEF_WS",
	"OPP_PTS_OFF_TOV", "OPP_PTS_2ND_CHANCE", "OPP_PTS_FB", "OPP_PTS_PAINT",
}

var (
	playerStatsPerModes = []string{"Totals", "PerGame", "Per36", "Per100Possessions"}
	playerStatsMeasures = []string{"Base", "Defense"}
)

func toStatsTable(t ResultTable) playerstats.Table {
	return playerstats.Table{Columns: t.Headers, Rows: t.Rows}
}

// buildSeasonPlayerStats assembles the wide per-player table for one
// season: Base and Defense dash stats across every per mode, advanced
// aggregates, two-point shooting, and bio measurements, all joined on
// PLAYER_ID.
func (s *RefreshService) buildSeasonPlayerStats(ctx context.Context, sn season.Season) (playerstats.Table, error) {
	label := sn.Label()
	parts := make([]playerstats.Table, 0, len(playerStatsPerModes)*len(playerStatsMeasures)+3)

	for _, perMode := range playerStatsPerModes {
		for _, measure := range playerStatsMeasures {
			table, err := s.provider.LeagueDashPlayerStats(ctx, label, measure, perMode)
			if err != nil {
				return playerstats.Table{}, fmt.Errorf("fetch player dash stats season=%s measure=%s per=%s: %w", label, measure, perMode, err)
			}
			part := toStatsTable(table)
			if perMode != "Totals" {
				part = playerstats.Suffix(part, suffixedStatColumns, "_"+perMode)
			}
			parts = append(parts, part)
		}
	}

	// Advanced aggregates are identical under every per mode, so one
	// fetch covers them.
	advanced, err := s.provider.LeagueDashPlayerStats(ctx, label, "Advanced", "Totals")
	if err != nil {
		return playerstats.Table{}, fmt.Errorf("fetch advanced player stats season=%s: %w", label, err)
	}
	parts = append(parts, toStatsTable(advanced))

	shooting, err := s.provider.LeagueDashPlayerShooting(ctx, label)
	if err != nil {
		return playerstats.Table{}, fmt.Errorf("fetch player shooting season=%s: %w", label, err)
	}
	parts = append(parts, toStatsTable(shooting))

	bio, err := s.provider.LeagueDashPlayerBio(ctx, label)
	if err != nil {
		return playerstats.Table{}, fmt.Errorf("fetch player bio stats season=%s: %w", label, err)
	}
	parts = append(parts, toStatsTable(bio))

	joined, err := playerstats.Join(parts, "PLAYER_ID")
	if err != nil {
		return playerstats.Table{}, fmt.Errorf("%w: join player stats season=%s: %v", ErrNormalization, label, err)
	}
	joined = playerstats.WithColumn(joined, "YEAR", int32(sn))
	return playerstats.LowerColumns(joined), nil
}

// runPlayerStats refreshes the per-season wide player tables and
// rebuilds the all-seasons union when anything changed. A failed
// season is recorded and the rest proceed.
func (s *RefreshService) runPlayerStats(ctx context.Context, seasons []season.Season) ([]RefreshTaskResult, error) {
	rows := make([]RefreshTaskResult, 0, len(seasons))
	changed := false

	for _, sn := range seasons {
		start := time.Now()
		row := RefreshTaskResult{Season: sn, Kind: "playerstats"}

		if mtime, ok, err := s.playerStats.SeasonModTime(ctx, sn); err == nil && ok {
			if s.oracle.IsFinal(sn) && sn != s.cfg.CurrentSeason {
				row.Status = refreshStatusSkipped
				row.Message = "season is final"
				row.DurationMs = time.Since(start).Milliseconds()
				rows = append(rows, row)
				continue
			}
			if s.now().Sub(mtime) < s.cfg.RefreshTTL {
				row.Status = refreshStatusSkipped
				row.Message = "snapshot is fresh"
				row.DurationMs = time.Since(start).Milliseconds()
				rows = append(rows, row)
				continue
			}
		}

		table, err := s.buildSeasonPlayerStats(ctx, sn)
		if err != nil {
			row.Status = refreshStatusFailed
			row.Message = err.Error()
			row.DurationMs = time.Since(start).Milliseconds()
			rows = append(rows, row)
			s.logger.WarnContext(ctx, "player stats refresh failed",
				"season", sn.Label(), "error", err.Error())
			continue
		}
		if err := s.playerStats.StoreSeason(ctx, sn, table); err != nil {
			row.Status = refreshStatusFailed
			row.Message = fmt.Sprintf("store player stats table: %v", err)
			row.DurationMs = time.Since(start).Milliseconds()
			rows = append(rows, row)
			continue
		}

		changed = true
		row.Status = refreshStatusSuccess
		row.Rows = len(table.Rows)
		row.DurationMs = time.Since(start).Milliseconds()
		rows = append(rows, row)
	}

	if changed {
		tables := make([]playerstats.Table, 0, len(seasons))
		for _, sn := range seasons {
			t, err := s.playerStats.LoadSeason(ctx, sn)
			if err != nil {
				return rows, fmt.Errorf("load player stats season %d for union: %w", sn, err)
			}
			if t.Empty() {
				continue
			}
			tables = append(tables, t)
		}
		if err := s.playerStats.StoreUnion(ctx, playerstats.Union(tables)); err != nil {
			return rows, fmt.Errorf("store player stats union: %w", err)
		}
	}
	return rows, nil
}

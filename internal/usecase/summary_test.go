package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtsync/courtsync/internal/domain/gamelog"
)

func TestBuildTeamSummary(t *testing.T) {
	t.Parallel()

	headers := append([]string{"TEAM_ID", "TEAM_NAME", "TEAM_ABBREVIATION", "OFF_RATING_RANK"}, summaryColumns...)
	row := []any{1610612738.0, "Boston Celtics", "BOS", 1.0}
	for i := range summaryColumns {
		row = append(row, float64(i)+0.5)
	}
	table := ResultTable{Name: "LeagueDashTeamStats", Headers: headers, Rows: [][]any{row}}

	summary, err := BuildTeamSummary(table)
	require.NoError(t, err)
	require.Contains(t, summary, "BOS")

	stats := summary["BOS"]
	assert.Len(t, stats, len(summaryColumns))
	assert.Equal(t, 0.5, stats["GP"])
	assert.NotContains(t, stats, "OFF_RATING_RANK", "rank columns must be filtered out")
}

func TestBuildTeamSummaryFallsBackToTeamName(t *testing.T) {
	t.Parallel()

	headers := append([]string{"TEAM_ID", "TEAM_NAME"}, summaryColumns...)
	row := []any{1610612738.0, "Boston Celtics"}
	for range summaryColumns {
		row = append(row, 1.0)
	}
	table := ResultTable{Name: "LeagueDashTeamStats", Headers: headers, Rows: [][]any{row}}

	summary, err := BuildTeamSummary(table)
	require.NoError(t, err)
	assert.Contains(t, summary, "Boston Celtics")
}

func TestBuildTeamSummaryMissingColumns(t *testing.T) {
	t.Parallel()

	table := ResultTable{Name: "LeagueDashTeamStats", Headers: []string{"TEAM_ID"}, Rows: nil}
	_, err := BuildTeamSummary(table)
	require.ErrorIs(t, err, ErrNormalization)
}

func TestBuildEfficiencyJoinsOpponents(t *testing.T) {
	t.Parallel()

	rows := []gamelog.Row{
		{Season: 2025, GameID: "0022400010", EntityID: 1610612738, TeamID: 1610612738,
			TeamAbbr: "BOS", GameDate: "2024-10-22", Points: 110, Possessions: 99, OffRating: 111.1},
		{Season: 2025, GameID: "0022400010", EntityID: 1610612752, TeamID: 1610612752,
			TeamAbbr: "NYK", GameDate: "2024-10-22", Points: 104, Possessions: 98},
	}

	eff := BuildEfficiency(rows)
	require.Len(t, eff, 2)

	assert.Equal(t, "NYK", eff[0].OppTeamAbbr)
	assert.Equal(t, int32(104), eff[0].OppPoints)
	assert.Equal(t, 98.0, eff[0].OppPossessions)
	assert.Equal(t, "BOS", eff[1].OppTeamAbbr)
}

func TestBuildEfficiencyWithoutOpponentRow(t *testing.T) {
	t.Parallel()

	rows := []gamelog.Row{
		{Season: 2025, GameID: "0022400010", EntityID: 1610612738, TeamID: 1610612738,
			TeamAbbr: "BOS", GameDate: "2024-10-22", Points: 110},
	}

	eff := BuildEfficiency(rows)
	require.Len(t, eff, 1)
	assert.Empty(t, eff[0].OppTeamAbbr)
	assert.Zero(t, eff[0].OppPoints)
}

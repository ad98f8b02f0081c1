package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ResultTable is one tabular block from the stats provider: column
// names plus untyped rows, provider quirks already stripped off.
type ResultTable struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// ColumnIndex maps header name to column position. The lookup is
// case-insensitive to survive provider drift.
func (t ResultTable) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		idx[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return idx
}

// StatsProvider is the outbound boundary to the statistics source.
// Season strings use the provider form, e.g. "2024-25"; dateFrom is
// the incremental cursor in MM/DD/YYYY form, empty for a full fetch.
// Implementations must be safe for concurrent use and honor context
// cancellation.
type StatsProvider interface {
	TeamGameLogs(ctx context.Context, seasonLabel, measureType, dateFrom string) (ResultTable, error)
	BoxScoreTraditional(ctx context.Context, gameID string) (ResultTable, error)
	BoxScoreAdvanced(ctx context.Context, gameID string) (ResultTable, error)
	LeagueDashTeamStats(ctx context.Context, seasonLabel, measureType string) (ResultTable, error)
	LeagueDashPlayerStats(ctx context.Context, seasonLabel, measureType, perMode string) (ResultTable, error)
	LeagueDashPlayerShooting(ctx context.Context, seasonLabel string) (ResultTable, error)
	LeagueDashPlayerBio(ctx context.Context, seasonLabel string) (ResultTable, error)
}

// Cell accessors coerce untyped provider cells. The provider mixes
// JSON numbers, strings, and nulls for the same column across rows.

func cellString(row []any, col int) string {
	if col < 0 || col >= len(row) || row[col] == nil {
		return ""
	}
	switch v := row[col].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func cellInt64(row []any, col int) (int64, error) {
	if col < 0 || col >= len(row) || row[col] == nil {
		return 0, nil
	}
	switch v := row[col].(type) {
	case float64:
		return int64(v), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cell %q is not an integer", s)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cell type %T is not numeric", row[col])
	}
}

func cellFloat64(row []any, col int) (float64, error) {
	if col < 0 || col >= len(row) || row[col] == nil {
		return 0, nil
	}
	switch v := row[col].(type) {
	case float64:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("cell %q is not a number", s)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("cell type %T is not numeric", row[col])
	}
}

package nbastats

import "strings"

// MeasureType selects which stat family an endpoint returns.
type MeasureType string

const (
	MeasureBase     MeasureType = "Base"
	MeasureAdvanced MeasureType = "Advanced"
	MeasureDefense  MeasureType = "Defense"
)

// PerMode selects the denominator for aggregate endpoints.
type PerMode string

const (
	PerModeTotals  PerMode = "Totals"
	PerModePerGame PerMode = "PerGame"
	PerModePer36   PerMode = "Per36"
	PerModePer100  PerMode = "Per100Possessions"
)

// Envelope is the response shape shared by every stats.nba.com
// endpoint: a list of named header/rowSet tables.
type Envelope struct {
	Resource   string      `json:"resource"`
	Parameters any         `json:"parameters"`
	ResultSets []ResultSet `json:"resultSets"`
}

// ResultSet is one tabular block: column names plus untyped rows.
type ResultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

func (e Envelope) resultSet(name string) (ResultSet, bool) {
	for _, rs := range e.ResultSets {
		if strings.EqualFold(rs.Name, name) {
			return rs, true
		}
	}
	return ResultSet{}, false
}

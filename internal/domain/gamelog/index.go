package gamelog

// GameIndex groups a table's rows by game id so cross-row lookups
// (an entity's opponent in the same game) cost one map probe instead
// of a table scan per row.
type GameIndex struct {
	byGame map[string][]Row
}

// NewGameIndex builds the index once for a table.
func NewGameIndex(rows []Row) *GameIndex {
	idx := &GameIndex{byGame: make(map[string][]Row)}
	for _, r := range rows {
		idx.byGame[r.GameID] = append(idx.byGame[r.GameID], r)
	}
	return idx
}

// Rows returns every row recorded for a game.
func (idx *GameIndex) Rows(gameID string) []Row {
	return idx.byGame[gameID]
}

// Opponent returns the row of the other team in a game. Only
// meaningful for team tables, where a game has exactly two rows.
func (idx *GameIndex) Opponent(gameID string, teamID int64) (Row, bool) {
	for _, r := range idx.Rows(gameID) {
		if r.TeamID != teamID {
			return r, true
		}
	}
	return Row{}, false
}

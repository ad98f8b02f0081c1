package gamelog

import "sort"

// Merge unions existing and incoming rows keyed by (season, game_id,
// entity_id). Incoming rows win on key collisions because in-progress
// games receive stat corrections upstream. When the season is final
// and rows already exist the stored table is returned untouched, so a
// re-run over finalized seasons is byte stable.
//
// The result never holds duplicate keys and is sorted by game date,
// then game id, then entity id.
func Merge(existing, incoming []Row, seasonFinal bool) []Row {
	if seasonFinal && len(existing) > 0 {
		return existing
	}
	if len(incoming) == 0 && len(existing) == 0 {
		return nil
	}

	merged := make(map[Key]Row, len(existing)+len(incoming))
	for _, r := range existing {
		merged[r.Key()] = r
	}
	for _, r := range incoming {
		merged[r.Key()] = r
	}

	out := make([]Row, 0, len(merged))
	for _, r := range merged {
		out = append(out, r)
	}
	Sort(out)
	return out
}

// Sort orders rows by game date, game id, entity id. Keeping one
// canonical order makes snapshot diffs reproducible.
func Sort(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].GameDate != rows[j].GameDate {
			return rows[i].GameDate < rows[j].GameDate
		}
		if rows[i].GameID != rows[j].GameID {
			return rows[i].GameID < rows[j].GameID
		}
		return rows[i].EntityID < rows[j].EntityID
	})
}

// Dedup removes rows sharing a key, keeping the last occurrence, and
// returns the rows in canonical order. Used when a single fetch batch
// can repeat games.
func Dedup(rows []Row) []Row {
	if len(rows) == 0 {
		return rows
	}
	seen := make(map[Key]Row, len(rows))
	for _, r := range rows {
		seen[r.Key()] = r
	}
	out := make([]Row, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	Sort(out)
	return out
}

package playerstats

import "fmt"

// Join inner-joins the tables on the key column, left to right. When
// two tables carry a column of the same name the leftmost wins, so
// the unsuffixed totals stay first.
func Join(tables []Table, key string) (Table, error) {
	if len(tables) == 0 {
		return Table{}, nil
	}
	out := tables[0]
	if _, ok := out.ColumnIndex()[key]; !ok {
		return Table{}, fmt.Errorf("join key %q missing from %v", key, out.Columns)
	}
	for _, t := range tables[1:] {
		var err error
		out, err = joinTwo(out, t, key)
		if err != nil {
			return Table{}, err
		}
	}
	return out, nil
}

func joinTwo(left, right Table, key string) (Table, error) {
	rightKey, ok := right.ColumnIndex()[key]
	if !ok {
		return Table{}, fmt.Errorf("join key %q missing from %v", key, right.Columns)
	}

	have := make(map[string]bool, len(left.Columns))
	for _, c := range left.Columns {
		have[c] = true
	}
	var newCols []string
	var newPos []int
	for i, c := range right.Columns {
		if have[c] {
			continue
		}
		newCols = append(newCols, c)
		newPos = append(newPos, i)
	}

	byKey := make(map[any][]any, len(right.Rows))
	for _, row := range right.Rows {
		byKey[keyValue(row, rightKey)] = row
	}

	out := Table{Columns: append(append(make([]string, 0, len(left.Columns)+len(newCols)), left.Columns...), newCols...)}
	leftKey := left.ColumnIndex()[key]
	for _, row := range left.Rows {
		match, ok := byKey[keyValue(row, leftKey)]
		if !ok {
			continue
		}
		joined := make([]any, 0, len(out.Columns))
		joined = append(joined, row...)
		for _, pos := range newPos {
			if pos < len(match) {
				joined = append(joined, match[pos])
			} else {
				joined = append(joined, nil)
			}
		}
		out.Rows = append(out.Rows, joined)
	}
	return out, nil
}

// keyValue folds every numeric representation of an id into float64
// so the same player matches across differently typed tables.
func keyValue(row []any, col int) any {
	if col < 0 || col >= len(row) {
		return nil
	}
	switch v := row[col].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return v
	}
}

// Union stacks tables with possibly different column sets, aligning
// columns by name and leaving gaps nil.
func Union(tables []Table) Table {
	var cols []string
	seen := make(map[string]bool)
	total := 0
	for _, t := range tables {
		total += len(t.Rows)
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				cols = append(cols, c)
			}
		}
	}

	out := Table{Columns: cols, Rows: make([][]any, 0, total)}
	for _, t := range tables {
		pos := t.ColumnIndex()
		for _, row := range t.Rows {
			aligned := make([]any, len(cols))
			for i, c := range cols {
				if j, ok := pos[c]; ok && j < len(row) {
					aligned[i] = row[j]
				}
			}
			out.Rows = append(out.Rows, aligned)
		}
	}
	return out
}

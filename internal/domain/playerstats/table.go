// Package playerstats holds the wide per-player season tables built
// from the league dash endpoints. The column set varies by season and
// per mode, so rows stay positional against Columns instead of a
// fixed struct.
package playerstats

import "strings"

// Table is a column-ordered stats table. Cells are untyped: numbers
// arrive as float64 and identity columns as strings, nulls as nil.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// ColumnIndex maps column name to position. Names match exactly.
func (t Table) ColumnIndex() map[string]int {
	idx := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		idx[c] = i
	}
	return idx
}

// Suffix renames the listed columns by appending suffix and leaves
// the rest alone, so identity columns stay joinable across per modes.
func Suffix(t Table, columns []string, suffix string) Table {
	mark := make(map[string]bool, len(columns))
	for _, c := range columns {
		mark[c] = true
	}
	renamed := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		if mark[c] {
			renamed[i] = c + suffix
		} else {
			renamed[i] = c
		}
	}
	t.Columns = renamed
	return t
}

// WithColumn appends a constant-valued column to every row.
func WithColumn(t Table, name string, value any) Table {
	out := Table{
		Columns: append(append(make([]string, 0, len(t.Columns)+1), t.Columns...), name),
		Rows:    make([][]any, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append(append(make([]any, 0, len(row)+1), row...), value)
	}
	return out
}

// LowerColumns lowercases every column name, the casing stored
// tables use.
func LowerColumns(t Table) Table {
	lowered := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		lowered[i] = strings.ToLower(c)
	}
	t.Columns = lowered
	return t
}

package catalog

import "fmt"

// FactRow is the full row of a joined fact table — its resolved
// dimension foreign keys plus its own extra columns — as opposed to
// JoinOps's T, which carries only the extra columns. The installer's
// CSV bulk load needs this full shape: spec.md §6.4's CSV header names
// "columns exactly as in the mapped table", and the original program's
// db_install loads fact-table CSVs through the same generic bulk
// INSERT it uses for dimension tables (already-resolved foreign key
// ids in the file), not through the natural-key-resolving
// insert_joined_table path.
type FactRow[T any] struct {
	FKValues []int64
	Extra    T
}

type factRowMapper[T any] struct {
	def    TableDef
	dims   []Dimension
	extras FactExtrasMapper[T]
}

// NewFactRowMapper builds the RowMapper[FactRow[T]] for a fact table,
// ordering columns foreign-keys-first (dims order) then extras, which
// is how every fact TableDef in this package declares its Columns.
func NewFactRowMapper[T any](def TableDef, dims []Dimension, extras FactExtrasMapper[T]) RowMapper[FactRow[T]] {
	return factRowMapper[T]{def: def, dims: dims, extras: extras}
}

func (m factRowMapper[T]) Def() TableDef { return m.def }

func (m factRowMapper[T]) Values(row FactRow[T]) []any {
	out := make([]any, 0, len(m.dims)+len(m.extras.ExtraColumns()))
	for _, id := range row.FKValues {
		out = append(out, id)
	}
	out = append(out, m.extras.Values(row.Extra)...)
	return out
}

func (m factRowMapper[T]) FromRow(id int64, cols []any) (FactRow[T], error) {
	if len(cols) != len(m.dims)+len(m.extras.ExtraColumns()) {
		return FactRow[T]{}, fmt.Errorf("%s: expected %d columns, got %d",
			m.def.Name, len(m.dims)+len(m.extras.ExtraColumns()), len(cols))
	}
	fks := make([]int64, len(m.dims))
	for i := range m.dims {
		fk, err := asInt64(cols[i])
		if err != nil {
			return FactRow[T]{}, err
		}
		fks[i] = fk
	}
	extra, err := m.extras.FromExtras(cols[len(m.dims):])
	if err != nil {
		return FactRow[T]{}, err
	}
	return FactRow[T]{FKValues: fks, Extra: extra}, nil
}

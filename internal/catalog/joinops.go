package catalog

import (
	"context"
	"fmt"
	"strings"

	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/logging"
)

// Dimension describes one of a fact table's lookup dimensions: its
// table, the name of its sole non-key unique column, and the fact
// table's foreign-key column that references it. Every fact table
// declares these in a fixed order matching SUBTABLES in the original
// program (spec.md §4.4).
type Dimension struct {
	Def      TableDef
	Column   string
	FKColumn string
}

// FactExtrasMapper converts between T and the fact table's own columns
// (everything except its primary key and its dimension foreign keys) —
// the columns a joined-insert dataclass actually carries, since foreign
// keys are resolved from dimension values at insert time rather than
// supplied directly.
type FactExtrasMapper[T any] interface {
	// ExtraColumns names the fact table's non-key, non-foreign-key
	// columns, in the order Values/FromExtras use.
	ExtraColumns() []string
	Values(row T) []any
	FromExtras(cols []any) (T, error)
}

// JoinOps implements the fact-joined-to-dimensions CRUD surface of
// spec.md §4.4, generic over T, the fact table's own (non-key,
// non-foreign-key) row type.
type JoinOps[T any] struct {
	factDef TableDef
	dims    []Dimension
	extras  FactExtrasMapper[T]
	backend Backend
	log     *logging.Logger
}

// NewJoinOps builds joined operations for a fact table over its
// dimensions, in SUBTABLES order.
func NewJoinOps[T any](factDef TableDef, dims []Dimension, extras FactExtrasMapper[T], backend Backend, log *logging.Logger) *JoinOps[T] {
	if log == nil {
		log = logging.New(nil)
	}
	return &JoinOps[T]{factDef: factDef, dims: dims, extras: extras, backend: backend, log: log}
}

// GetJoinStmt builds the left-to-right JOIN of the fact table to each
// of its dimensions, using natural foreign-key equality.
func (j *JoinOps[T]) GetJoinStmt() string {
	b := j.backend
	stmt := "FROM " + b.QuoteIdentifier(j.factDef.Name)
	for _, d := range j.dims {
		stmt += fmt.Sprintf(" JOIN %s ON %s.%s = %s.%s",
			b.QuoteIdentifier(d.Def.Name),
			b.QuoteIdentifier(j.factDef.Name), b.QuoteIdentifier(d.FKColumn),
			b.QuoteIdentifier(d.Def.Name), b.QuoteIdentifier(d.Def.PrimaryKey))
	}
	return stmt
}

// JoinedRow is one row of a ReadJoinedTable result: a display row
// number, each dimension's value in dims order, and the fact table's
// own (non-key, non-FK) columns as T.
type JoinedRow[T any] struct {
	Row        int
	Dimensions []any
	Fact       T
}

// ReadJoinedTable selects every dimension's value column and the fact
// table's own non-key columns, ordered by the dimension columns, with a
// 1..N row number prepended (spec.md §4.4).
func (j *JoinOps[T]) ReadJoinedTable(ctx context.Context, tx *Tx, filter string, limit int) ([]JoinedRow[T], error) {
	b := j.backend
	var selectCols []string
	for _, d := range j.dims {
		selectCols = append(selectCols, b.QuoteIdentifier(d.Def.Name)+"."+b.QuoteIdentifier(d.Column))
	}
	for _, c := range j.extras.ExtraColumns() {
		selectCols = append(selectCols, b.QuoteIdentifier(j.factDef.Name)+"."+b.QuoteIdentifier(c))
	}
	stmt := "SELECT " + strings.Join(selectCols, ", ") + " " + j.GetJoinStmt()
	if filter != "" {
		stmt += " WHERE " + filter
	}
	var orderCols []string
	for _, d := range j.dims {
		orderCols = append(orderCols, b.QuoteIdentifier(d.Def.Name)+"."+b.QuoteIdentifier(d.Column))
	}
	if len(orderCols) > 0 {
		stmt += " ORDER BY " + strings.Join(orderCols, ", ")
	}
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := tx.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "read joined table %q", j.factDef.Name)
	}
	defer rows.Close()

	var out []JoinedRow[T]
	n := 1
	for rows.Next() {
		nDims := len(j.dims)
		nExtras := len(j.extras.ExtraColumns())
		dest := make([]any, nDims+nExtras)
		ptrs := make([]any, len(dest))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "scan joined row of %q", j.factDef.Name)
		}
		fact, err := j.extras.FromExtras(dest[nDims:])
		if err != nil {
			return nil, err
		}
		out = append(out, JoinedRow[T]{Row: n, Dimensions: dest[:nDims], Fact: fact})
		n++
	}
	return out, rows.Err()
}

// JoinedInsert is one row of an InsertJoinedTable call: the value for
// each dimension (in dims order) and the fact table's own extra column
// values.
type JoinedInsert[T any] struct {
	DimensionValues []any
	Extra           T
}

// InsertJoinedTable implements spec.md §4.4's insert_joined_table:
// dimensions are inserted (duplicates silently deduplicated), resolved
// to ids, and the fact row inserted only if at least one dimension
// insert was fresh.
func (j *JoinOps[T]) InsertJoinedTable(ctx context.Context, tx *Tx, rows []JoinedInsert[T]) (int, error) {
	if len(rows) == 0 {
		return 0, errs.New(errs.BadInput, "insert into joined table %q requires at least one row", j.factDef.Name)
	}
	b := j.backend
	inserted := 0
	for _, row := range rows {
		if len(row.DimensionValues) != len(j.dims) {
			return inserted, errs.New(errs.BadInput, "insert into %q: expected %d dimension values, got %d",
				j.factDef.Name, len(j.dims), len(row.DimensionValues))
		}

		fresh := false
		dimIDs := make([]any, len(j.dims))
		for i, d := range j.dims {
			stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
				b.QuoteIdentifier(d.Def.Name), b.QuoteIdentifier(d.Column), b.Placeholder(1))
			_, err := tx.ExecContext(ctx, stmt, row.DimensionValues[i])
			switch {
			case err == nil:
				fresh = true
			case b.IsUniqueViolation(err):
				j.log.Quiet().Info("dimension %q value %v already present", d.Def.Name, row.DimensionValues[i])
			default:
				return inserted, errs.Wrap(errs.BackendError, err, "insert dimension %q", d.Def.Name)
			}

			idStmt := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
				b.QuoteIdentifier(d.Def.PrimaryKey), b.QuoteIdentifier(d.Def.Name),
				b.QuoteIdentifier(d.Column), b.Placeholder(1))
			var id int64
			if err := tx.QueryRowContext(ctx, idStmt, row.DimensionValues[i]).Scan(&id); err != nil {
				return inserted, errs.Wrap(errs.BackendError, err, "resolve dimension %q id", d.Def.Name)
			}
			dimIDs[i] = id
		}

		if !fresh {
			j.log.Info("fact row for %q not inserted: 0 unique", j.factDef.Name)
			continue
		}

		extraCols := j.extras.ExtraColumns()
		cols := make([]string, 0, len(j.dims)+len(extraCols))
		placeholders := make([]string, 0, cap(cols))
		args := make([]any, 0, cap(cols))
		for i, d := range j.dims {
			cols = append(cols, b.QuoteIdentifier(d.FKColumn))
			placeholders = append(placeholders, b.Placeholder(len(placeholders)+1))
			args = append(args, dimIDs[i])
		}
		for _, c := range extraCols {
			cols = append(cols, b.QuoteIdentifier(c))
			placeholders = append(placeholders, b.Placeholder(len(placeholders)+1))
		}
		args = append(args, j.extras.Values(row.Extra)...)

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			b.QuoteIdentifier(j.factDef.Name), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return inserted, errs.Wrap(errs.BackendError, err, "insert fact row into %q", j.factDef.Name)
		}
		inserted++
	}
	return inserted, nil
}

// UpdateJoinedTable implements spec.md §4.4's update_joined_table: two
// independent updates keyed by the dimension values in oldSource
// (dimension table name -> current value).
//
//   - Fact-row edit: locate the fact row by joining each dimension to
//     its oldSource value, then SET the non-nil columns named in
//     targetRow (fact extra column name -> new value).
//   - Dimension edit: for each dimension table named in newSource, update its
//     value where it currently equals oldSource's value for that
//     dimension; the fact table's foreign key follows via cascade.
func (j *JoinOps[T]) UpdateJoinedTable(ctx context.Context, tx *Tx, oldSource, newSource, targetRow map[string]any) (int, error) {
	b := j.backend
	matched := 0

	if len(targetRow) > 0 {
		var setClause []string
		var args []any
		for col, val := range targetRow {
			if val == nil {
				continue
			}
			setClause = append(setClause, fmt.Sprintf("%s = %s", b.QuoteIdentifier(col), b.Placeholder(len(args)+1)))
			args = append(args, val)
		}
		if len(setClause) == 0 {
			return matched, errs.New(errs.BadInput, "update fact row of %q: targetRow has no non-nil columns after filtering", j.factDef.Name)
		}
		var whereClause []string
		for _, d := range j.dims {
			old, ok := oldSource[d.Def.Name]
			if !ok {
				continue
			}
			whereClause = append(whereClause, fmt.Sprintf(
				"%s = (SELECT %s FROM %s WHERE %s = %s)",
				b.QuoteIdentifier(d.FKColumn), b.QuoteIdentifier(d.Def.PrimaryKey), b.QuoteIdentifier(d.Def.Name),
				b.QuoteIdentifier(d.Column), b.Placeholder(len(args)+1)))
			args = append(args, old)
		}
		if len(setClause) > 0 && len(whereClause) > 0 {
			stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s",
				b.QuoteIdentifier(j.factDef.Name), strings.Join(setClause, ", "), strings.Join(whereClause, " AND "))
			res, err := tx.ExecContext(ctx, stmt, args...)
			if err != nil {
				return matched, errs.Wrap(errs.BackendError, err, "update fact row of %q", j.factDef.Name)
			}
			n, _ := res.RowsAffected()
			matched += int(n)
		}
	}

	for _, d := range j.dims {
		newVal, ok := newSource[d.Def.Name]
		if !ok {
			continue
		}
		oldVal, ok := oldSource[d.Def.Name]
		if !ok {
			continue
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s = %s WHERE %s = %s",
			b.QuoteIdentifier(d.Def.Name), b.QuoteIdentifier(d.Column), b.Placeholder(1),
			b.QuoteIdentifier(d.Column), b.Placeholder(2))
		res, err := tx.ExecContext(ctx, stmt, newVal, oldVal)
		if err != nil {
			return matched, errs.Wrap(errs.BackendError, err, "update dimension %q of %q", d.Def.Name, j.factDef.Name)
		}
		n, _ := res.RowsAffected()
		matched += int(n)
	}

	return matched, nil
}

// DeleteJoinedTable implements spec.md §4.4's delete_joined_table.
// When fromSource is false, source describes a single fact row by its
// dimension values (dimension table name -> value) and only that row
// is deleted. When true, source names dimension rows to delete outright
// (dimension table name -> value); foreign-key cascades remove
// dependent fact rows, surfacing as IntegrityFault if the backend
// rejects the cascade.
func (j *JoinOps[T]) DeleteJoinedTable(ctx context.Context, tx *Tx, source map[string]any, fromSource bool) (int, error) {
	if len(source) == 0 {
		return 0, errs.New(errs.BadInput, "delete from joined table %q requires at least one source value", j.factDef.Name)
	}
	b := j.backend

	if !fromSource {
		var whereClause []string
		var args []any
		for _, d := range j.dims {
			val, ok := source[d.Def.Name]
			if !ok {
				continue
			}
			whereClause = append(whereClause, fmt.Sprintf(
				"%s = (SELECT %s FROM %s WHERE %s = %s)",
				b.QuoteIdentifier(d.FKColumn), b.QuoteIdentifier(d.Def.PrimaryKey), b.QuoteIdentifier(d.Def.Name),
				b.QuoteIdentifier(d.Column), b.Placeholder(len(args)+1)))
			args = append(args, val)
		}
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s",
			b.QuoteIdentifier(j.factDef.Name), strings.Join(whereClause, " AND "))
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return 0, errs.Wrap(errs.BackendError, err, "delete fact row of %q", j.factDef.Name)
		}
		n, _ := res.RowsAffected()
		return int(n), nil
	}

	deleted := 0
	for _, d := range j.dims {
		val, ok := source[d.Def.Name]
		if !ok {
			continue
		}
		stmt := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
			b.QuoteIdentifier(d.Def.Name), b.QuoteIdentifier(d.Column), b.Placeholder(1))
		res, err := tx.ExecContext(ctx, stmt, val)
		if err != nil {
			return deleted, errs.Wrap(errs.IntegrityFault, err, "delete dimension %q of %q", d.Def.Name, j.factDef.Name)
		}
		n, _ := res.RowsAffected()
		deleted += int(n)
	}
	return deleted, nil
}

// ResetID implements spec.md §4.4's joined reset_id override. On MySQL
// this is the same @count-based compaction BaseOps.ResetID does. On
// SQLite, dropping and recreating loses nothing by itself (rowid reuse
// already assigns the next free id) but a prior deletion can have left
// gaps; the original program repairs this by copying every row out,
// clearing the table, resetting the sequence, and reinserting — the
// row-copy/delete/resequence/reinsert dance this method performs
// directly against the fact table's own foreign-key and extra columns,
// without depending on BaseOps[T] (whose T would have to carry the
// resolved foreign keys, which JoinOps's T deliberately does not).
func (j *JoinOps[T]) ResetID(ctx context.Context, tx *Tx) error {
	b := j.backend
	if !b.ResequenceNeedsRowCopy() {
		if _, err := tx.ExecContext(ctx, "SET @sc_count = 0"); err != nil {
			return errs.Wrap(errs.BackendError, err, "reset id of %q", j.factDef.Name)
		}
		stmt := fmt.Sprintf("UPDATE %s SET %s = (@sc_count := @sc_count + 1)",
			b.QuoteIdentifier(j.factDef.Name), b.QuoteIdentifier(j.factDef.PrimaryKey))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errs.Wrap(errs.BackendError, err, "reset id of %q", j.factDef.Name)
		}
		_, err := tx.ExecContext(ctx, b.ResetAutoIncrement(j.factDef.Name))
		return errOrWrap(err, "reset auto_increment of %q", j.factDef.Name)
	}

	allCols := j.factDef.ColumnNames()
	quotedCols := make([]string, len(allCols))
	for i, c := range allCols {
		quotedCols[i] = b.QuoteIdentifier(c)
	}
	selectStmt := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(quotedCols, ", "), b.QuoteIdentifier(j.factDef.Name), b.QuoteIdentifier(j.factDef.PrimaryKey))
	rows, err := tx.QueryContext(ctx, selectStmt)
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "read %q for id reset", j.factDef.Name)
	}
	var copies [][]any
	for rows.Next() {
		dest := make([]any, len(allCols))
		ptrs := make([]any, len(dest))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			rows.Close()
			return errs.Wrap(errs.BackendError, err, "scan %q for id reset", j.factDef.Name)
		}
		copies = append(copies, dest)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return errs.Wrap(errs.BackendError, err, "read %q for id reset", j.factDef.Name)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+b.QuoteIdentifier(j.factDef.Name)); err != nil {
		return errs.Wrap(errs.BackendError, err, "clear %q for id reset", j.factDef.Name)
	}
	if _, err := tx.ExecContext(ctx, b.ResetAutoIncrement(j.factDef.Name)); err != nil {
		return errs.Wrap(errs.BackendError, err, "reset auto increment of %q", j.factDef.Name)
	}

	if len(copies) == 0 {
		return nil
	}
	placeholders := make([]string, len(allCols))
	for i := range allCols {
		placeholders[i] = b.Placeholder(i + 1)
	}
	insertStmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.QuoteIdentifier(j.factDef.Name), strings.Join(quotedCols, ", "), strings.Join(placeholders, ", "))
	for _, row := range copies {
		if _, err := tx.ExecContext(ctx, insertStmt, row...); err != nil {
			return errs.Wrap(errs.BackendError, err, "reinsert row into %q during id reset", j.factDef.Name)
		}
	}
	return nil
}

func errOrWrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errs.Wrap(errs.BackendError, err, format, args...)
}

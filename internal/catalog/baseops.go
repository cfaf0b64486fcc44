package catalog

import (
	"context"
	"fmt"
	"strings"

	"shortcircuitcalc/internal/errs"
)

// RowMapper bridges a Go struct T to its TableDef without reflection:
// the table's columns are data (tables.go), and the conversions
// between T and column values are written once per table in
// internal/catalog's table-specific files (e.g. othercontact.go).
type RowMapper[T any] interface {
	// Def returns the fixed schema description of the mapped table.
	Def() TableDef

	// Values returns row's non-primary-key column values in
	// Def().ColumnNames() order, for INSERT/UPDATE statements.
	Values(row T) []any

	// FromRow builds a T from its primary key and non-primary-key
	// column values (same order as Values), for SELECT results and
	// CSV ingestion.
	FromRow(id int64, cols []any) (T, error)
}

// BaseOps implements the single-table CRUD surface of spec.md §4.3 over
// a row type T described by a RowMapper[T]. It never branches on the
// backend's name directly; every dialect difference is reached through
// the Backend interface (spec.md §4.2's "implementer must gate every
// dialect-specific statement" resolved once, at Backend construction).
type BaseOps[T any] struct {
	mapper  RowMapper[T]
	backend Backend
}

// NewBaseOps builds generic operations for the table mapper describes,
// quoting and placeholding statements for backend.
func NewBaseOps[T any](mapper RowMapper[T], backend Backend) *BaseOps[T] {
	return &BaseOps[T]{mapper: mapper, backend: backend}
}

// Def exposes the wrapped table's metadata.
func (b *BaseOps[T]) Def() TableDef { return b.mapper.Def() }

// BuildRow converts a row of already-typed, non-primary-key column
// values (in NonKeys(true) order) into T, the same conversion
// ReadTable applies to a database row — reused by CSV ingestion so a
// row never needs building through reflection over T.
func (b *BaseOps[T]) BuildRow(cols []any) (T, error) {
	return b.mapper.FromRow(0, cols)
}

// CreateTable creates the table if absent. When dropFirst is set the
// table is dropped first; forcedDrop additionally disables foreign-key
// checks for the duration of that drop.
func (b *BaseOps[T]) CreateTable(ctx context.Context, tx *Tx, dropFirst, forcedDrop bool) error {
	if dropFirst {
		if err := b.DropTable(ctx, tx, b.Def().Name, forcedDrop); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, b.Def().CreateTableSQL(b.backend))
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "create table %q", b.Def().Name)
	}
	return nil
}

// DropTable drops the table, requiring confirm to equal the table's
// name (spec.md §4.3's accidental-drop guard). forced disables
// foreign-key checks around the drop.
func (b *BaseOps[T]) DropTable(ctx context.Context, tx *Tx, confirm string, forced bool) error {
	def := b.Def()
	if confirm != def.Name {
		return errs.New(errs.BadInput, "drop of table %q not confirmed", def.Name)
	}
	if forced {
		if _, err := tx.ExecContext(ctx, b.backend.SetForeignKeyChecks(false)); err != nil {
			return errs.Wrap(errs.BackendError, err, "disable foreign key checks")
		}
		defer tx.ExecContext(ctx, b.backend.SetForeignKeyChecks(true))
	}
	stmt := "DROP TABLE IF EXISTS " + b.backend.QuoteIdentifier(def.Name)
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errs.Wrap(errs.BackendError, err, "drop table %q", def.Name)
	}
	return nil
}

// ReadTable selects every column, ordered by the table's non-primary-key
// columns, optionally filtered by a raw SQL boolean expression and
// capped to limit rows (limit <= 0 means unlimited).
func (b *BaseOps[T]) ReadTable(ctx context.Context, tx *Tx, filter string, limit int) ([]T, error) {
	def := b.Def()
	cols := make([]string, len(def.AllColumnNames()))
	for i, c := range def.AllColumnNames() {
		cols[i] = b.backend.QuoteIdentifier(c)
	}
	stmt := "SELECT " + strings.Join(cols, ", ") + " FROM " + b.backend.QuoteIdentifier(def.Name)
	if filter != "" {
		stmt += " WHERE " + filter
	}
	orderCols := make([]string, len(def.ColumnNames()))
	for i, c := range def.ColumnNames() {
		orderCols[i] = b.backend.QuoteIdentifier(c)
	}
	if len(orderCols) > 0 {
		stmt += " ORDER BY " + strings.Join(orderCols, ", ")
	}
	if limit > 0 {
		stmt += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := tx.QueryContext(ctx, stmt)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "read table %q", def.Name)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		dest := make([]any, len(def.AllColumnNames()))
		ptrs := make([]any, len(dest))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "scan row of table %q", def.Name)
		}
		id, err := asInt64(dest[0])
		if err != nil {
			return nil, errs.Wrap(errs.BackendError, err, "read primary key of table %q", def.Name)
		}
		row, err := b.mapper.FromRow(id, dest[1:])
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// InsertTable bulk-inserts rows, failing with BadInput if rows is
// empty (the Go analogue of "both arguments absent").
func (b *BaseOps[T]) InsertTable(ctx context.Context, tx *Tx, rows []T) (int, error) {
	if len(rows) == 0 {
		return 0, errs.New(errs.BadInput, "insert into %q requires at least one row", b.Def().Name)
	}
	def := b.Def()
	quotedCols := make([]string, len(def.Columns))
	placeholders := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		quotedCols[i] = b.backend.QuoteIdentifier(c.Name)
		placeholders[i] = b.backend.Placeholder(i + 1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		b.backend.QuoteIdentifier(def.Name), strings.Join(quotedCols, ", "), strings.Join(placeholders, ", "))

	inserted := 0
	for _, row := range rows {
		if _, err := tx.ExecContext(ctx, stmt, b.mapper.Values(row)...); err != nil {
			return inserted, errs.Wrap(errs.BackendError, err, "insert into %q", def.Name)
		}
		inserted++
	}
	return inserted, nil
}

// UpdateByPrimaryKey is one row of the "primary_keys" update mode: set
// every non-id column of the table row identified by ID.
type UpdateByPrimaryKey[T any] struct {
	ID  int64
	Row T
}

// UpdateByPrimaryKeys implements spec.md §4.3's primary_keys update
// mode: each entry's non-id columns overwrite the row with that id.
func (b *BaseOps[T]) UpdateByPrimaryKeys(ctx context.Context, tx *Tx, updates []UpdateByPrimaryKey[T]) (int, error) {
	def := b.Def()
	setClause := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		setClause[i] = fmt.Sprintf("%s = %s", b.backend.QuoteIdentifier(c.Name), b.backend.Placeholder(i+1))
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		b.backend.QuoteIdentifier(def.Name), strings.Join(setClause, ", "),
		b.backend.QuoteIdentifier(def.PrimaryKey), b.backend.Placeholder(len(def.Columns)+1))

	matched := 0
	for _, u := range updates {
		args := append(b.mapper.Values(u.Row), u.ID)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return matched, errs.Wrap(errs.BackendError, err, "update %q by primary key", def.Name)
		}
		n, _ := res.RowsAffected()
		matched += int(n)
	}
	return matched, nil
}

// AliasUpdate is one row of the "with_alias" update mode.
type AliasUpdate[T any] struct {
	Alias any
	Row   T
}

// UpdateWithAlias implements spec.md §4.3's with_alias update mode: for
// each update, rows matching attr = Alias get their columns overwritten
// from Row.
func (b *BaseOps[T]) UpdateWithAlias(ctx context.Context, tx *Tx, attr string, updates []AliasUpdate[T]) (int, error) {
	def := b.Def()
	setClause := make([]string, len(def.Columns))
	for i, c := range def.Columns {
		setClause[i] = fmt.Sprintf("%s = %s", b.backend.QuoteIdentifier(c.Name), b.backend.Placeholder(i+1))
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		b.backend.QuoteIdentifier(def.Name), strings.Join(setClause, ", "),
		b.backend.QuoteIdentifier(attr), b.backend.Placeholder(len(def.Columns)+1))

	matched := 0
	for _, u := range updates {
		args := append(b.mapper.Values(u.Row), u.Alias)
		res, err := tx.ExecContext(ctx, stmt, args...)
		if err != nil {
			return matched, errs.Wrap(errs.BackendError, err, "update %q with alias %q", def.Name, attr)
		}
		n, _ := res.RowsAffected()
		matched += int(n)
	}
	return matched, nil
}

// UpdateWhereCondition implements spec.md §4.3's where_condition update
// mode: every row whose attr is in criteria gets its columns
// overwritten from row.
func (b *BaseOps[T]) UpdateWhereCondition(ctx context.Context, tx *Tx, attr string, criteria []any, row T) (int, error) {
	if len(criteria) == 0 {
		return 0, errs.New(errs.BadInput, "update %q where_condition requires at least one criterion", b.Def().Name)
	}
	def := b.Def()
	setClause := make([]string, len(def.Columns))
	args := b.mapper.Values(row)
	for i, c := range def.Columns {
		setClause[i] = fmt.Sprintf("%s = %s", b.backend.QuoteIdentifier(c.Name), b.backend.Placeholder(i+1))
	}
	placeholders := make([]string, len(criteria))
	for i, c := range criteria {
		placeholders[i] = b.backend.Placeholder(len(def.Columns) + i + 1)
		args = append(args, c)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s IN (%s)",
		b.backend.QuoteIdentifier(def.Name), strings.Join(setClause, ", "),
		b.backend.QuoteIdentifier(attr), strings.Join(placeholders, ", "))

	res, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errs.Wrap(errs.BackendError, err, "update %q where_condition", def.Name)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteTable deletes rows matching a raw SQL boolean expression.
func (b *BaseOps[T]) DeleteTable(ctx context.Context, tx *Tx, filter string) (int, error) {
	def := b.Def()
	stmt := "DELETE FROM " + b.backend.QuoteIdentifier(def.Name)
	if filter != "" {
		stmt += " WHERE " + filter
	}
	res, err := tx.ExecContext(ctx, stmt)
	if err != nil {
		return 0, errs.Wrap(errs.BackendError, err, "delete from %q", def.Name)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ResetID compacts the primary-key sequence to 1..N, following
// whichever of the two dialect-specific strategies backend implements.
// On SQLite, resetting a standalone (non-joined) table's id is a no-op:
// rowid semantics already assign the next free id, so there is nothing
// to compact ahead of time (spec.md §4.3).
func (b *BaseOps[T]) ResetID(ctx context.Context, tx *Tx) error {
	if b.backend.ResequenceNeedsRowCopy() {
		return nil
	}
	def := b.Def()
	if _, err := tx.ExecContext(ctx, "SET @sc_count = 0"); err != nil {
		return errs.Wrap(errs.BackendError, err, "reset id of %q", def.Name)
	}
	stmt := fmt.Sprintf("UPDATE %s SET %s = (@sc_count := @sc_count + 1)",
		b.backend.QuoteIdentifier(def.Name), b.backend.QuoteIdentifier(def.PrimaryKey))
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return errs.Wrap(errs.BackendError, err, "reset id of %q", def.Name)
	}
	if _, err := tx.ExecContext(ctx, b.backend.ResetAutoIncrement(def.Name)); err != nil {
		return errs.Wrap(errs.BackendError, err, "reset auto_increment of %q", def.Name)
	}
	return nil
}

// AllKeys returns every column name, primary key first.
func (b *BaseOps[T]) AllKeys() []string { return b.Def().AllColumnNames() }

// PrimaryKey returns the primary key column name.
func (b *BaseOps[T]) PrimaryKey() string { return b.Def().PrimaryKey }

// ForeignKeys returns the table's declared foreign keys.
func (b *BaseOps[T]) ForeignKeys() []ForeignKey { return b.Def().ForeignKeys }

// NonKeys returns non-primary-key column names. When allowForeign is
// false, foreign-key columns are also excluded.
func (b *BaseOps[T]) NonKeys(allowForeign bool) []string {
	def := b.Def()
	var out []string
	for _, c := range def.Columns {
		if !allowForeign {
			isFK := false
			for _, fk := range def.ForeignKeys {
				if fk.Column == c.Name {
					isFK = true
					break
				}
			}
			if isFK {
				continue
			}
		}
		out = append(out, c.Name)
	}
	return out
}

func asInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	case []byte:
		var i int64
		_, err := fmt.Sscanf(string(n), "%d", &i)
		return i, err
	default:
		return 0, fmt.Errorf("unexpected primary key type %T", v)
	}
}

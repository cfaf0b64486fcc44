// Package catalog implements the electrical-component catalog database:
// schema, generic CRUD over the pivot/dimension tables, and the session
// that binds either backend to a *sql.DB. It mirrors the shape of the
// teacher's internal/dialect package (a registered-by-name interface
// with one implementation per engine) but drops the schema-diff/
// migration-generation machinery that package exists for, since this
// catalog has a single fixed schema that is never diffed or
// introspected at runtime.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Name identifies a supported catalog backend.
type Name string

const (
	MySQL  Name = "mysql"
	SQLite Name = "sqlite"
)

// Backend captures the handful of ways MySQL and SQLite disagree about
// DDL/DML syntax that the generic BaseOps/JoinOps need to paper over:
// identifier quoting, autoincrement clause, foreign-key-check toggling
// and how a table's auto-increment counter gets reset. Everything else
// (parameter placeholders, joins, WHERE clauses) is plain ANSI SQL built
// the same way for both.
type Backend interface {
	Name() Name

	// Open returns a live connection pool for the backend, already
	// verified with a ping. source is a MySQL DSN for the mysql backend
	// and a filesystem path for the sqlite backend.
	Open(ctx context.Context, source string) (*sql.DB, error)

	// QuoteIdentifier quotes a table or column name for inclusion in a
	// generated statement.
	QuoteIdentifier(name string) string

	// AutoIncrementClause returns the column-definition suffix that
	// makes an INTEGER PRIMARY KEY column auto-increment.
	AutoIncrementClause() string

	// SetForeignKeyChecks returns the statement that enables or disables
	// foreign-key constraint checking for the duration of a destructive
	// bulk operation (spec.md §4.2's "clear and reinstall" path).
	SetForeignKeyChecks(enabled bool) string

	// ResetAutoIncrement returns the statement that resets table's
	// auto-increment counter, used by ResetID after the ids have been
	// compacted (or the table cleared) so new rows continue from the
	// compacted sequence (spec.md §4.3 reset_id).
	ResetAutoIncrement(table string) string

	// Placeholder returns the parameter placeholder for the i'th bound
	// argument (1-based) in a generated statement.
	Placeholder(i int) string

	// IsUniqueViolation reports whether err is a unique-constraint
	// violation, the error JoinOps.InsertJoinedTable treats as "value
	// already present" rather than a real failure (spec.md §4.4).
	IsUniqueViolation(err error) bool

	// TableExistsQuery returns a query that selects one row if table is
	// present in the current database, none otherwise — the installer's
	// "not in metadata.tables" check (spec.md §4.8), expressed against
	// each backend's own system catalog since ANSI SQL has no portable
	// equivalent.
	TableExistsQuery(table string) string

	// ResequenceNeedsRowCopy reports whether ResetID must fall back to
	// the row-copy/delete/resequence/reinsert dance instead of the
	// @count-based UPDATE-then-ResetAutoIncrement compaction. MySQL's
	// ALTER TABLE ... AUTO_INCREMENT reset applies directly to a
	// populated table, so it answers false; SQLite's rowid reuse has no
	// equivalent direct reset once gaps exist, so it answers true.
	ResequenceNeedsRowCopy() bool
}

var (
	registryMu sync.RWMutex
	registry   = map[Name]func() Backend{}
)

// Register adds a backend constructor to the registry. Backend
// implementations call this from an init() func, the way the teacher's
// dialect packages call dialect.RegisterDialect.
func Register(name Name, ctor func() Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// Get looks up a registered backend by name.
func Get(name Name) (Backend, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	ctor, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("catalog: backend %q is not registered", name)
	}
	return ctor(), nil
}

// Package sqlitebackend registers catalog.SQLite, the embedded,
// driver-only backend used for local development and tests. It is
// backed by modernc.org/sqlite, a pure-Go SQLite driver that needs no
// cgo toolchain — the same reason the rest of the example pack reaches
// for it over mattn/go-sqlite3.
package sqlitebackend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"shortcircuitcalc/internal/catalog"
	"shortcircuitcalc/internal/errs"
)

type backend struct{}

func init() {
	catalog.Register(catalog.SQLite, func() catalog.Backend { return backend{} })
}

func (backend) Name() catalog.Name { return catalog.SQLite }

func (backend) Open(ctx context.Context, source string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", source)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "open sqlite database %q", source)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.BackendError, err, "connect sqlite database %q", source)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.BackendError, err, "enable foreign keys on %q", source)
	}
	return db, nil
}

func (backend) QuoteIdentifier(name string) string {
	return `"` + name + `"`
}

func (backend) AutoIncrementClause() string {
	return "AUTOINCREMENT"
}

func (backend) SetForeignKeyChecks(enabled bool) string {
	if enabled {
		return "PRAGMA foreign_keys = ON"
	}
	return "PRAGMA foreign_keys = OFF"
}

func (backend) ResetAutoIncrement(table string) string {
	return fmt.Sprintf(`DELETE FROM sqlite_sequence WHERE name = '%s'`, table)
}

func (backend) Placeholder(i int) string {
	return "?"
}

func (backend) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed: unique")
}

func (backend) TableExistsQuery(table string) string {
	return fmt.Sprintf(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = '%s'`, table)
}

func (backend) ResequenceNeedsRowCopy() bool {
	return true
}

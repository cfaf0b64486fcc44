// Package mysqlbackend registers catalog.MySQL, the production backend
// used when DB_EXISTING_CONNECTION is "MySQL". Quoting rules follow the
// teacher's internal/dialect/mysql's QuoteIdentifier/QuoteString (MySQL
// backtick escaping), adapted here to the catalog's connection needs
// rather than DDL generation.
package mysqlbackend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"shortcircuitcalc/internal/catalog"
	"shortcircuitcalc/internal/errs"
)

type backend struct{}

func init() {
	catalog.Register(catalog.MySQL, func() catalog.Backend { return backend{} })
}

func (backend) Name() catalog.Name { return catalog.MySQL }

func (backend) Open(ctx context.Context, source string) (*sql.DB, error) {
	db, err := sql.Open("mysql", source)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "open mysql connection")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.Wrap(errs.BackendError, err, "connect mysql")
	}
	return db, nil
}

func (backend) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (backend) AutoIncrementClause() string {
	return "AUTO_INCREMENT"
}

func (backend) SetForeignKeyChecks(enabled bool) string {
	if enabled {
		return "SET FOREIGN_KEY_CHECKS = 1"
	}
	return "SET FOREIGN_KEY_CHECKS = 0"
}

func (backend) ResetAutoIncrement(table string) string {
	return fmt.Sprintf("ALTER TABLE `%s` AUTO_INCREMENT = 1", strings.ReplaceAll(table, "`", "``"))
}

func (backend) Placeholder(i int) string {
	return "?"
}

func (backend) IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1062
	}
	return strings.Contains(strings.ToLower(err.Error()), "duplicate entry")
}

func (backend) TableExistsQuery(table string) string {
	return fmt.Sprintf(
		"SELECT 1 FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = '%s'",
		strings.ReplaceAll(table, "'", "''"))
}

func (backend) ResequenceNeedsRowCopy() bool {
	return false
}

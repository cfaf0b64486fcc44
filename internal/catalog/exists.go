package catalog

import (
	"context"
	"database/sql"

	"shortcircuitcalc/internal/errs"
)

// TableExists reports whether table is present in the connected
// database, the Go equivalent of the original program's
// "table.__tablename__ not in metadata.tables" check (spec.md §4.8).
func TableExists(ctx context.Context, tx *Tx, name string) (bool, error) {
	var discard any
	err := tx.QueryRowContext(ctx, tx.Backend().TableExistsQuery(name)).Scan(&discard)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, errs.Wrap(errs.BackendError, err, "check existence of table %q", name)
	default:
		return true, nil
	}
}

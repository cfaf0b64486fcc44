package catalog

import (
	"context"
	"database/sql"

	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/logging"
)

// Session binds a live *sql.DB to the backend that opened it, the Go
// shape of the original program's module-level SQLAlchemy engine plus
// its session_scope() context manager (spec.md §4.1, §4.3).
type Session struct {
	db      *sql.DB
	backend Backend
	log     *logging.Logger
}

// Open resolves DB_EXISTING_CONNECTION from settings and connects to
// the matching backend: SQLiteDBName for SQLite, or the credentials
// file at credentialsPath for MySQL.
func Open(ctx context.Context, settings *config.Settings, credentialsPath string, log *logging.Logger) (*Session, error) {
	kind, err := settings.Backend()
	if err != nil {
		return nil, err
	}

	var (
		name   Name
		source string
	)
	switch kind {
	case config.BackendSQLite:
		dbName, err := settings.SQLiteDBName()
		if err != nil {
			return nil, err
		}
		name, source = SQLite, dbName
	case config.BackendMySQL:
		creds, err := config.LoadCredentials(credentialsPath)
		if err != nil {
			return nil, err
		}
		name, source = MySQL, creds.DSN()
	default:
		return nil, errs.New(errs.ConfigError, "no catalog backend configured (DB_EXISTING_CONNECTION=%s)", kind)
	}

	backend, err := Get(name)
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "resolve backend %q", name)
	}
	db, err := backend.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.New(nil)
	}
	log.Info("connected to %s catalog", name)
	return &Session{db: db, backend: backend, log: log}, nil
}

// Backend returns the backend the session is bound to.
func (s *Session) Backend() Backend { return s.backend }

// DB returns the underlying pool, for callers (installer bulk loads)
// that need direct access outside a Tx.
func (s *Session) DB() *sql.DB { return s.db }

// QueryImpedances runs a single-row impedance lookup outside any
// explicit transaction, returning the four scalars as their raw driver
// string form. It implements the elements.Catalog interface so element
// variants can resolve their natural key without importing the rest of
// this package's CRUD surface.
func (s *Session) QueryImpedances(ctx context.Context, query string, args ...any) (bool, string, string, string, string, error) {
	var r1, x1, r0, x0 sql.NullString
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&r1, &x1, &r0, &x0)
	if err == sql.ErrNoRows {
		return false, "", "", "", "", nil
	}
	if err != nil {
		return false, "", "", "", "", errs.Wrap(errs.BackendError, err, "query impedances")
	}
	if !r1.Valid || !x1.Valid || !r0.Valid || !x0.Valid {
		return false, "", "", "", "", nil
	}
	return true, r1.String, x1.String, r0.String, x0.String, nil
}

// Close releases the underlying connection pool.
func (s *Session) Close() error {
	return s.db.Close()
}

// Tx is a transaction bound to the same backend as its parent Session,
// passed into the closure given to Scope.
type Tx struct {
	tx      *sql.Tx
	backend Backend
}

// Scope runs fn inside a transaction, committing if fn returns nil and
// rolling back otherwise — the Go analogue of session_scope()'s
// try/commit/except-rollback block.
func (s *Session) Scope(ctx context.Context, fn func(*Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.Wrap(errs.BackendError, err, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Tx{tx: sqlTx, backend: s.backend}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			s.log.Error("rollback failed: %v (original error: %v)", rbErr, err)
		}
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return errs.Wrap(errs.BackendError, err, "commit transaction")
	}
	return nil
}

// Backend returns the backend this transaction's statements are quoted
// and placeheld for.
func (t *Tx) Backend() Backend { return t.backend }

// ExecContext runs a non-query statement within the transaction.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// QueryContext runs a query within the transaction.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query within the transaction.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

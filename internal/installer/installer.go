// Package installer deploys the catalog schema and its CSV-sourced
// contents, the Go shape of the original program's db_install (spec.md
// §4.8): dimension tables before the fact tables that reference them,
// in a fixed per-equipment-category order.
package installer

import (
	"context"
	"path/filepath"

	"shortcircuitcalc/internal/catalog"
	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/logging"
)

// Options configures one deployment run.
type Options struct {
	// DataDir is the root of the CSV catalog tree (DATA_DIR in the
	// original program): DataDir/transformer_catalog, .../cable_catalog,
	// .../current_breaker_catalog, and DataDir itself for other_contact.
	DataDir string
	// RulesPath is the optional TOML sanity-check overlay (SPEC_FULL.md's
	// C8 addendum). Empty skips the check entirely.
	RulesPath string
}

// Deploy installs or reinstalls the catalog per settings'
// DB_TABLES_CLEAR_INSTALL, following the fixed deployment order of
// spec.md §4.8: transformer cluster, cable cluster, current-breaker
// cluster, other-contact table.
func Deploy(ctx context.Context, session *catalog.Session, reg *catalog.Registry, settings *config.Settings, opts Options, log *logging.Logger) error {
	if log == nil {
		log = logging.New(nil)
	}
	clear, err := settings.ClearInstall()
	if err != nil {
		return err
	}
	rules, err := loadRules(opts.RulesPath)
	if err != nil {
		return err
	}

	if reg.Backend.Name() == catalog.SQLite {
		if err := bootstrapSQLiteSequence(ctx, session); err != nil {
			return err
		}
	}

	transformerDir := filepath.Join(opts.DataDir, "transformer_catalog")
	if err := deployTable(ctx, session, reg.PowerNominal, filepath.Join(transformerDir, "power_nominals"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.VoltageNominal, filepath.Join(transformerDir, "voltage_nominals"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.Scheme, filepath.Join(transformerDir, "schemes"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.TransformerRows, filepath.Join(transformerDir, "transformers"), clear, rules, log); err != nil {
		return err
	}

	cableDir := filepath.Join(opts.DataDir, "cable_catalog")
	if err := deployTable(ctx, session, reg.Mark, filepath.Join(cableDir, "marks"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.Amount, filepath.Join(cableDir, "amounts"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.RangeVal, filepath.Join(cableDir, "range_vals"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.CableRows, filepath.Join(cableDir, "cables"), clear, rules, log); err != nil {
		return err
	}

	breakerDir := filepath.Join(opts.DataDir, "current_breaker_catalog")
	if err := deployTable(ctx, session, reg.Device, filepath.Join(breakerDir, "devices"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.CurrentNominal, filepath.Join(breakerDir, "current_nominals"), clear, rules, log); err != nil {
		return err
	}
	if err := deployTable(ctx, session, reg.CurrentBreakerRows, filepath.Join(breakerDir, "current_breakers"), clear, rules, log); err != nil {
		return err
	}

	if err := deployTable(ctx, session, reg.OtherContact, filepath.Join(opts.DataDir, "other_contacts"), clear, rules, log); err != nil {
		return err
	}

	return nil
}

// bootstrapSQLiteSequence ensures sqlite_sequence exists before any
// table is deployed, by creating and immediately dropping a throwaway
// autoincrement table (spec.md §4.8).
func bootstrapSQLiteSequence(ctx context.Context, session *catalog.Session) error {
	return session.Scope(ctx, func(tx *catalog.Tx) error {
		b := tx.Backend()
		create := "CREATE TABLE sc_installer_bootstrap (id INTEGER PRIMARY KEY " + b.AutoIncrementClause() + ")"
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return errs.Wrap(errs.BackendError, err, "create sqlite sequence bootstrap table")
		}
		if _, err := tx.ExecContext(ctx, "DROP TABLE sc_installer_bootstrap"); err != nil {
			return errs.Wrap(errs.BackendError, err, "drop sqlite sequence bootstrap table")
		}
		return nil
	})
}

// deployTable deploys one table: if clear is set or the table is
// absent, it is created (dropped first when clear) and bulk-loaded from
// its CSV file; otherwise it is left untouched (spec.md §4.8).
func deployTable[T any](ctx context.Context, session *catalog.Session, ops *catalog.BaseOps[T], csvPath string, clear bool, rules map[string]int, log *logging.Logger) error {
	return session.Scope(ctx, func(tx *catalog.Tx) error {
		name := ops.Def().Name
		exists, err := catalog.TableExists(ctx, tx, name)
		if err != nil {
			return err
		}
		if !clear && exists {
			log.Info("table %q already present, left untouched", name)
			return nil
		}

		if err := ops.CreateTable(ctx, tx, clear, clear); err != nil {
			return err
		}
		csvRows, err := readCSV(csvPath)
		if err != nil {
			return err
		}
		inserted, err := ingestRows(ctx, tx, ops, csvRows)
		if err != nil {
			return err
		}
		log.Info("table %q deployed: %d row(s) inserted", name, inserted)

		if minRows, ok := rules[name]; ok && inserted < minRows {
			log.Warn("table %q inserted %d row(s), below configured minimum %d", name, inserted, minRows)
		}
		return nil
	})
}

// ingestRows converts CSV records (header name -> typed cell) into T
// via ops's own RowMapper, in the table's declared non-primary-key
// column order, then bulk-inserts them.
func ingestRows[T any](ctx context.Context, tx *catalog.Tx, ops *catalog.BaseOps[T], csvRows []map[string]any) (int, error) {
	if len(csvRows) == 0 {
		return 0, nil
	}
	cols := ops.NonKeys(true)
	rows := make([]T, 0, len(csvRows))
	for i, rec := range csvRows {
		ordered := make([]any, len(cols))
		for j, col := range cols {
			v, ok := rec[col]
			if !ok {
				return 0, errs.New(errs.BadInput, "%s: csv row %d missing column %q", ops.Def().Name, i+1, col)
			}
			ordered[j] = v
		}
		row, err := ops.BuildRow(ordered)
		if err != nil {
			return 0, err
		}
		rows = append(rows, row)
	}
	return ops.InsertTable(ctx, tx, rows)
}

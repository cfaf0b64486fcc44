package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "shortcircuitcalc/internal/catalog/sqlitebackend"
	"shortcircuitcalc/internal/logging"
)

func setupSQLiteSession(t *testing.T) *Session {
	t.Helper()
	ctx := context.Background()

	backend, err := Get(SQLite)
	require.NoError(t, err)
	db, err := backend.Open(ctx, ":memory:")
	require.NoError(t, err)

	session := &Session{db: db, backend: backend, log: logging.New(nil)}
	t.Cleanup(func() { session.Close() })
	return session
}

// TestUpdateJoinedTableSkipsNilTargetColumns guards spec.md §4.4's
// non-null-only update_joined_table variant: a targetRow carrying an
// explicit nil alongside a real value must leave the nil-targeted
// column untouched rather than overwriting it with NULL.
func TestUpdateJoinedTableSkipsNilTargetColumns(t *testing.T) {
	session := setupSQLiteSession(t)
	reg := NewRegistry(session.Backend(), logging.New(nil))
	ctx := context.Background()

	err := session.Scope(ctx, func(tx *Tx) error {
		for _, ops := range []*BaseOps[DimensionRow]{reg.PowerNominal, reg.VoltageNominal, reg.Scheme} {
			if err := ops.CreateTable(ctx, tx, true, true); err != nil {
				return err
			}
		}
		return reg.Transformer.CreateTable(ctx, tx, true, true)
	})
	require.NoError(t, err)

	extra := TransformerExtra{
		PowerShortCircuit:   mustDecimal(t, "2.27"),
		VoltageShortCircuit: mustDecimal(t, "4.5"),
		ResistanceR1:        mustDecimal(t, "0.055"),
		ReactanceX1:         mustDecimal(t, "0.041"),
		ResistanceR0:        mustDecimal(t, "0.167"),
		ReactanceX0:         mustDecimal(t, "0.223"),
	}
	err = session.Scope(ctx, func(tx *Tx) error {
		inserted, err := reg.Transformer.InsertJoinedTable(ctx, tx, []JoinedInsert[TransformerExtra]{
			{DimensionValues: []any{int64(160), "0.4", "У/Ун-0"}, Extra: extra},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)
		return nil
	})
	require.NoError(t, err)

	err = session.Scope(ctx, func(tx *Tx) error {
		oldSource := map[string]any{"power_nominal": int64(160), "voltage_nominal": "0.4", "scheme": "У/Ун-0"}
		targetRow := map[string]any{
			"power_short_circuit":   "3.14",
			"voltage_short_circuit": nil,
		}
		n, err := reg.Transformer.UpdateJoinedTable(ctx, tx, oldSource, nil, targetRow)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		return nil
	})
	require.NoError(t, err)

	err = session.Scope(ctx, func(tx *Tx) error {
		joined, err := reg.Transformer.ReadJoinedTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, joined, 1)
		assert.Equal(t, "3.14", joined[0].Fact.PowerShortCircuit.String(), "non-nil target column must change")
		assert.Equal(t, "4.5", joined[0].Fact.VoltageShortCircuit.String(), "nil-targeted column must be left untouched")
		return nil
	})
	require.NoError(t, err)
}

// TestUpdateJoinedTableErrorsWhenAllTargetColumnsNil guards the other
// side of the non-null-only variant: a targetRow that is non-empty but
// entirely nil has no column left to SET and must be rejected rather
// than silently becoming a no-op UPDATE.
func TestUpdateJoinedTableErrorsWhenAllTargetColumnsNil(t *testing.T) {
	session := setupSQLiteSession(t)
	reg := NewRegistry(session.Backend(), logging.New(nil))
	ctx := context.Background()

	err := session.Scope(ctx, func(tx *Tx) error {
		for _, ops := range []*BaseOps[DimensionRow]{reg.PowerNominal, reg.VoltageNominal, reg.Scheme} {
			if err := ops.CreateTable(ctx, tx, true, true); err != nil {
				return err
			}
		}
		return reg.Transformer.CreateTable(ctx, tx, true, true)
	})
	require.NoError(t, err)

	err = session.Scope(ctx, func(tx *Tx) error {
		oldSource := map[string]any{"power_nominal": int64(160)}
		targetRow := map[string]any{"power_short_circuit": nil}
		_, err := reg.Transformer.UpdateJoinedTable(ctx, tx, oldSource, nil, targetRow)
		return err
	})
	require.Error(t, err)
}

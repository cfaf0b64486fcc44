package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	_ "shortcircuitcalc/internal/catalog/mysqlbackend"
	"shortcircuitcalc/internal/logging"
	"shortcircuitcalc/internal/numeric"
)

// setupMySQLSession spins up a disposable MySQL container and returns a
// *Session bound to it, the way apply_connector_test.go sets up its
// container-backed connector test, adapted here to exercise C2/C3/C4
// (BaseOps/JoinOps CRUD) instead of a migration applier.
func setupMySQLSession(t *testing.T) *Session {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := mysql.Run(ctx, "mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("root"),
		mysql.WithPassword("testpass"),
	)
	require.NoError(t, err, "failed to start MySQL container")
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	backend, err := Get(MySQL)
	require.NoError(t, err)
	db, err := backend.Open(ctx, dsn)
	require.NoError(t, err)

	session := &Session{db: db, backend: backend, log: logging.New(nil)}
	t.Cleanup(func() { session.Close() })
	return session
}

func mustDecimal(t *testing.T, s string) numeric.Decimal {
	t.Helper()
	d, err := decimalFromDriverValue(s)
	require.NoError(t, err)
	return d
}

func TestCatalogMySQLDimensionAndJoinedCRUD(t *testing.T) {
	session := setupMySQLSession(t)
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
		n, err := reg.PowerNominal.InsertTable(ctx, tx, []DimensionRow{{Value: int64(160)}})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		rows, err := reg.PowerNominal.ReadTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.EqualValues(t, 160, rows[0].Value)

		extra := TransformerExtra{
			PowerShortCircuit:   mustDecimal(t, "2.27"),
			VoltageShortCircuit: mustDecimal(t, "4.5"),
			ResistanceR1:        mustDecimal(t, "0.055"),
			ReactanceX1:         mustDecimal(t, "0.041"),
			ResistanceR0:        mustDecimal(t, "0.167"),
			ReactanceX0:         mustDecimal(t, "0.223"),
		}
		inserted, err := reg.Transformer.InsertJoinedTable(ctx, tx, []JoinedInsert[TransformerExtra]{
			{DimensionValues: []any{int64(160), "0.4", "У/Ун-0"}, Extra: extra},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, inserted)

		joined, err := reg.Transformer.ReadJoinedTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, joined, 1)
		assert.Equal(t, "2.27", joined[0].Fact.PowerShortCircuit.String())
		return nil
	})
	require.NoError(t, err)
}

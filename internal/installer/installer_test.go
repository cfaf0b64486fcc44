package installer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortcircuitcalc/internal/catalog"
	_ "shortcircuitcalc/internal/catalog/sqlitebackend"
	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/logging"
)

func writeCSV(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}

// seedDataDir lays out one row per table across the three equipment
// clusters plus other_contact, enough for Deploy to exercise every
// table in order.
func seedDataDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	trans := filepath.Join(dir, "transformer_catalog")
	writeCSV(t, trans, "power_nominals", "power\n160\n")
	writeCSV(t, trans, "voltage_nominals", "voltage\n0.4\n")
	writeCSV(t, trans, "schemes", "vector_group\nУ/Ун-0\n")
	writeCSV(t, trans, "transformers",
		"power_id,voltage_id,scheme_id,power_short_circuit,voltage_short_circuit,resistance_r1,reactance_x1,resistance_r0,reactance_x0\n"+
			"1,1,1,2.27,4.5,0.055,0.041,0.167,0.223\n")

	cable := filepath.Join(dir, "cable_catalog")
	writeCSV(t, cable, "marks", "mark_name\nВВГ\n")
	writeCSV(t, cable, "amounts", "multicore_amount\n3\n")
	writeCSV(t, cable, "range_vals", "cable_range\n4\n")
	writeCSV(t, cable, "cables",
		"mark_id,amount_id,range_id,continuous_current,resistance_r1,reactance_x1,resistance_r0,reactance_x0\n"+
			"1,1,1,27,7.81,0.09,3.11,0.231\n")

	breaker := filepath.Join(dir, "current_breaker_catalog")
	writeCSV(t, breaker, "devices", "device_type\nАвтомат\n")
	writeCSV(t, breaker, "current_nominals", "current_value\n100\n")
	writeCSV(t, breaker, "current_breakers",
		"device_id,current_id,resistance_r1,reactance_x1,resistance_r0,reactance_x0\n"+
			"1,1,0.00065,0.00049,0,0\n")

	writeCSV(t, dir, "other_contacts",
		"contact_type,resistance_r1,reactance_x1,resistance_r0,reactance_x0\n"+
			"РУ,0.01,0.01,0.01,0.01\n")

	return dir
}

func openSession(t *testing.T) (*catalog.Session, *config.Settings) {
	t.Helper()
	confPath := filepath.Join(t.TempDir(), "config.txt")
	contents := "SQLITE_DB_NAME = '" + filepath.Join(t.TempDir(), "catalog.db") + "'\n" +
		"DB_EXISTING_CONNECTION = 'SQLite'\n" +
		"DB_TABLES_CLEAR_INSTALL = True\n"
	require.NoError(t, os.WriteFile(confPath, []byte(contents), 0o644))
	settings := config.NewSettings(confPath)

	session, err := catalog.Open(context.Background(), settings, "", logging.New(nil))
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })
	return session, settings
}

func TestDeploySeedsEveryTable(t *testing.T) {
	ctx := context.Background()
	session, settings := openSession(t)
	reg := catalog.NewRegistry(session.Backend(), logging.New(nil))
	dataDir := seedDataDir(t)

	require.NoError(t, Deploy(ctx, session, reg, settings, Options{DataDir: dataDir}, logging.New(nil)))

	err := session.Scope(ctx, func(tx *catalog.Tx) error {
		rows, err := reg.Transformer.ReadJoinedTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "2.27", rows[0].Fact.PowerShortCircuit.String())

		cables, err := reg.Cable.ReadJoinedTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, cables, 1)

		contacts, err := reg.OtherContact.ReadTable(ctx, tx, "", 0)
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, "РУ", contacts[0].ContactType)
		return nil
	})
	require.NoError(t, err)
}

func TestDeployLeavesExistingTableUntouchedWhenNotClear(t *testing.T) {
	ctx := context.Background()
	session, settings := openSession(t)
	reg := catalog.NewRegistry(session.Backend(), logging.New(nil))
	dataDir := seedDataDir(t)

	require.NoError(t, Deploy(ctx, session, reg, settings, Options{DataDir: dataDir}, logging.New(nil)))
	require.NoError(t, settings.Set(config.KeyDBTablesClearInstall, config.BoolValue(false)))
	require.NoError(t, Deploy(ctx, session, reg, settings, Options{DataDir: dataDir}, logging.New(nil)))

	err := session.Scope(ctx, func(tx *catalog.Tx) error {
		rows, err := reg.PowerNominal.ReadTable(ctx, tx, "", 0)
		require.NoError(t, err)
		assert.Len(t, rows, 1)
		return nil
	})
	require.NoError(t, err)
}

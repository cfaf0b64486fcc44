package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortcircuitcalc/internal/numeric"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestConfigStoreGet(t *testing.T) {
	path := writeTempConfig(t, "SQLITE_DB_NAME = 'electrical_product_catalog.db'\n"+
		"DB_EXISTING_CONNECTION = 'SQLite'\n"+
		"DB_TABLES_CLEAR_INSTALL = False\n"+
		"ENGINE_ECHO = False\n"+
		"SYSTEM_PHASES = 3\n"+
		"SYSTEM_VOLTAGE_IN_KILOVOLTS = Decimal('0.4')\n"+
		"CALCULATIONS_ACCURACY = 3\n")
	store := NewConfigStore(path)

	v, ok, err := store.Get("SYSTEM_VOLTAGE_IN_KILOVOLTS")
	require.NoError(t, err)
	require.True(t, ok)
	dec, isDec := v.Dec()
	require.True(t, isDec)
	assert.Equal(t, "0.4", dec.String())

	v, ok, err = store.Get("DB_TABLES_CLEAR_INSTALL")
	require.NoError(t, err)
	require.True(t, ok)
	b, isBool := v.Bool()
	require.True(t, isBool)
	assert.False(t, b)

	v, ok, err = store.Get("SYSTEM_PHASES")
	require.NoError(t, err)
	require.True(t, ok)
	i, isInt := v.Int()
	require.True(t, isInt)
	assert.EqualValues(t, 3, i)

	_, ok, err = store.Get("NOT_A_KEY")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfigStoreSetPreservesOtherLines(t *testing.T) {
	original := "A = 1\nB = 'x'\nC = Decimal('0.4')\n"
	path := writeTempConfig(t, original)
	store := NewConfigStore(path)

	require.NoError(t, store.Set("B", StringValue("y")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A = 1\nB = 'y'\nC = Decimal('0.4')\n", string(data))

	dec, err := numeric.NewFromString("0.5")
	require.NoError(t, err)
	require.NoError(t, store.Set("C", DecValue(dec)))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A = 1\nB = 'y'\nC = Decimal('0.5')\n", string(data))
}

func TestConfigStoreSetMissingKey(t *testing.T) {
	path := writeTempConfig(t, "A = 1\n")
	store := NewConfigStore(path)
	err := store.Set("MISSING", IntValue(2))
	assert.Error(t, err)
}

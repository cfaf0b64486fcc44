package chainparser

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/errs"
)

// fakeCatalog answers every impedance lookup with the same fixed row,
// regardless of query or args, which is all the parser's own behavior
// needs exercised.
type fakeCatalog struct{}

func (fakeCatalog) QueryImpedances(ctx context.Context, query string, args ...any) (bool, string, string, string, string, error) {
	return true, "0.1", "0.2", "0.3", "0.4", nil
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.txt")
	contents := "SYSTEM_VOLTAGE_IN_KILOVOLTS = Decimal('0.4')\nCALCULATIONS_ACCURACY = 3\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return config.NewSettings(path)
}

func TestParseSequence(t *testing.T) {
	sys, err := Parse(context.Background(), fakeCatalog{}, testSettings(t),
		`T(160, 'У/Ун-0'), W('ВВГ', 3, 4, 20), QF(100), Line()`)
	require.NoError(t, err)
	require.Equal(t, 1, sys.Len())

	c := sys.At(0)
	assert.Equal(t, 4, c.Len())
	assert.False(t, c.Named())

	_, e0 := c.At(0)
	assert.Equal(t, "T 160/0.4 (У/Ун-0)", e0.String())
	_, e3 := c.At(3)
	assert.Equal(t, "РУ", e3.String())
}

func TestParseNamedMapping(t *testing.T) {
	sys, err := Parse(context.Background(), fakeCatalog{}, testSettings(t),
		`trans: T(160, 'У/Ун-0'), breaker: QF(100)`)
	require.NoError(t, err)
	c := sys.At(0)
	require.True(t, c.Named())
	name0, _ := c.At(0)
	assert.Equal(t, "trans", name0)
	name1, _ := c.At(1)
	assert.Equal(t, "breaker", name1)
}

func TestParseMultipleChains(t *testing.T) {
	sys, err := Parse(context.Background(), fakeCatalog{}, testSettings(t),
		`QF(100), Line(); QS(63), Arc()`)
	require.NoError(t, err)
	require.Equal(t, 2, sys.Len())
	assert.Equal(t, 2, sys.At(0).Len())
	assert.Equal(t, 2, sys.At(1).Len())
}

func TestParseMixedNamedAndUnnamedIsBadInput(t *testing.T) {
	_, err := Parse(context.Background(), fakeCatalog{}, testSettings(t),
		`trans: T(160, 'У/Ун-0'), QF(100)`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestParseUnknownTypeIsBadInput(t *testing.T) {
	_, err := Parse(context.Background(), fakeCatalog{}, testSettings(t), `Bogus(1, 2)`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestParseArityMismatchIsBadInput(t *testing.T) {
	_, err := Parse(context.Background(), fakeCatalog{}, testSettings(t), `QF(100, 200)`)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestParseEmptyIsBadInput(t *testing.T) {
	_, err := Parse(context.Background(), fakeCatalog{}, testSettings(t), `   `)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

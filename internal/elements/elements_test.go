package elements

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// countingCatalog answers every lookup with a fixed row, counting how
// many times it was actually queried — used to verify the sync.Once
// memoization in cache.
type countingCatalog struct {
	calls int
	found bool
	row   [4]string
}

func (c *countingCatalog) QueryImpedances(ctx context.Context, query string, args ...any) (bool, string, string, string, string, error) {
	c.calls++
	if !c.found {
		return false, "", "", "", "", nil
	}
	return true, c.row[0], c.row[1], c.row[2], c.row[3], nil
}

func okCatalog() *countingCatalog {
	return &countingCatalog{found: true, row: [4]string{"0.1", "0.2", "0.3", "0.4"}}
}

func mustDec(t *testing.T, s string) numeric.Decimal {
	t.Helper()
	d, err := numeric.NewFromString(s)
	require.NoError(t, err)
	return d
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	require.NoError(t, os.WriteFile(path, []byte("SYSTEM_VOLTAGE_IN_KILOVOLTS = Decimal('0.4')\n"), 0o644))
	return config.NewSettings(path)
}

func TestTImpedancesMemoizeSingleQuery(t *testing.T) {
	cat := okCatalog()
	elem, err := NewT(cat, testSettings(t), 160, "У/Ун-0")
	require.NoError(t, err)

	ctx := context.Background()
	r1, err := elem.ResistanceR1(ctx)
	require.NoError(t, err)
	assert.True(t, r1.Equal(mustDec(t, "0.1")))

	_, err = elem.ReactanceX1(ctx)
	require.NoError(t, err)
	_, err = elem.ResistanceR0(ctx)
	require.NoError(t, err)
	_, err = elem.ReactanceX0(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, cat.calls, "four accessors must share one catalog round trip")
	assert.Equal(t, "T 160/0.4 (У/Ун-0)", elem.String())
}

func TestTRequiresVectorGroup(t *testing.T) {
	_, err := NewT(okCatalog(), testSettings(t), 160, "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestNotFoundIsNotInCatalog(t *testing.T) {
	cat := &countingCatalog{found: false}
	elem, err := NewT(cat, testSettings(t), 160, "У/Ун-0")
	require.NoError(t, err)

	_, err = elem.ResistanceR1(context.Background())
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotInCatalog))
}

func TestWScalesImpedancesByLength(t *testing.T) {
	cat := okCatalog()
	elem, err := NewW(cat, "ВВГ", 3, numeric.NewFromInt(4), numeric.NewFromInt(2000))
	require.NoError(t, err)

	r1, err := elem.ResistanceR1(context.Background())
	require.NoError(t, err)
	assert.True(t, r1.Equal(mustDec(t, "0.2")), "2000m at 0.1/km should scale to 0.2")
	assert.Equal(t, "ВВГ 3х4 2000m", elem.String())
}

func TestWRequiresMark(t *testing.T) {
	_, err := NewW(okCatalog(), "", 3, numeric.NewFromInt(4), numeric.NewFromInt(10))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestBreakerDefaultDeviceTypes(t *testing.T) {
	cat := okCatalog()
	qf, err := NewQF(cat, 100)
	require.NoError(t, err)
	assert.Equal(t, "QF 100A", qf.String())

	qs, err := NewQS(cat, 63)
	require.NoError(t, err)
	assert.Equal(t, "QS 63A", qs.String())

	q, err := NewQ(cat, 16, "Контактор")
	require.NoError(t, err)
	assert.Equal(t, "Q 16A", q.String())
}

func TestQRequiresExplicitDeviceType(t *testing.T) {
	_, err := NewQ(okCatalog(), 16, "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestFixedContacts(t *testing.T) {
	cat := okCatalog()
	line := NewLine(cat)
	assert.Equal(t, "РУ", line.String())

	arc := NewArc(cat)
	assert.Equal(t, "Дуга", arc.String())

	r, err := NewR(cat, "Щит")
	require.NoError(t, err)
	assert.Equal(t, "R", r.String())
}

func TestRRequiresContactType(t *testing.T) {
	_, err := NewR(okCatalog(), "")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

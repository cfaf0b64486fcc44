package chain

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/elements"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// fakeElement is a fixed-impedance stand-in for a catalog-backed
// elements.Element, so chain arithmetic can be tested without a
// database.
type fakeElement struct {
	label          string
	r1, x1, r0, x0 numeric.Decimal
	err            error
}

func (f *fakeElement) ResistanceR1(context.Context) (numeric.Decimal, error) { return f.r1, f.err }
func (f *fakeElement) ReactanceX1(context.Context) (numeric.Decimal, error)  { return f.x1, f.err }
func (f *fakeElement) ResistanceR0(context.Context) (numeric.Decimal, error) { return f.r0, f.err }
func (f *fakeElement) ReactanceX0(context.Context) (numeric.Decimal, error)  { return f.x0, f.err }
func (f *fakeElement) String() string                                       { return f.label }

func unitElement(label string) *fakeElement {
	one := numeric.NewFromInt(1)
	two := numeric.NewFromInt(2)
	return &fakeElement{label: label, r1: one, x1: one, r0: two, x0: two}
}

func testSettings(t *testing.T, accuracy int64) *config.Settings {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.txt")
	contents := "SYSTEM_VOLTAGE_IN_KILOVOLTS = Decimal('0.4')\nCALCULATIONS_ACCURACY = " +
		numeric.NewFromInt(accuracy).String() + "\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return config.NewSettings(path)
}

func TestThreePhaseCurrentMatchesFormula(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, 5)
	c := NewSequence([]elements.Element{unitElement("a"), unitElement("b")})

	i3, err := c.ThreePhaseCurrent(ctx, settings)
	require.NoError(t, err)

	u, _ := settings.SystemVoltageInKilovolts()
	r1 := numeric.NewFromInt(2) // two unit elements summed
	x1 := numeric.NewFromInt(2)
	z3 := numeric.Sqrt(r1.Mul(r1).Add(x1.Mul(x1)))
	want := numeric.Round(u.Div(sqrt3).Div(z3), 5)
	assert.True(t, i3.Equal(want), "got %s want %s", i3.String(), want.String())
}

func TestTwoPhaseCurrentDerivesFromRoundedThreePhase(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, 3)
	c := NewSequence([]elements.Element{unitElement("a")})

	i3, err := c.ThreePhaseCurrent(ctx, settings)
	require.NoError(t, err)
	i2, err := c.TwoPhaseCurrent(ctx, settings)
	require.NoError(t, err)

	want := numeric.Round(sqrt3.Div(numeric.NewFromInt(2)).Mul(i3), 3)
	assert.True(t, i2.Equal(want), "got %s want %s", i2.String(), want.String())
}

func TestOnePhaseCurrentDiffersWhenZeroSequenceDiffers(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, 3)
	c := NewSequence([]elements.Element{unitElement("a")})

	i1, err := c.OnePhaseCurrent(ctx, settings)
	require.NoError(t, err)
	i3, err := c.ThreePhaseCurrent(ctx, settings)
	require.NoError(t, err)
	assert.False(t, i1.Equal(i3), "r0/x0 differ from r1/x1 in unitElement, so z1 != z3")
}

func TestElementErrorPropagates(t *testing.T) {
	boom := errs.New(errs.NotInCatalog, "no such element")
	c := NewSequence([]elements.Element{&fakeElement{label: "bad", err: boom}})
	_, err := c.ThreePhaseCurrent(context.Background(), testSettings(t, 3))
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.NotInCatalog))
}

func TestNewNamedRequiresMatchingLengths(t *testing.T) {
	_, err := NewNamed([]string{"only-one"}, []elements.Element{unitElement("a"), unitElement("b")})
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.BadInput))
}

func TestChainStringFormatting(t *testing.T) {
	seq := NewSequence([]elements.Element{unitElement("a"), unitElement("b")})
	assert.Equal(t, "a -> b", seq.String())

	named, err := NewNamed([]string{"x", "y"}, []elements.Element{unitElement("a"), unitElement("b")})
	require.NoError(t, err)
	assert.Equal(t, "x: a -> y: b", named.String())
	assert.True(t, named.Named())
	assert.False(t, seq.Named())
}

func TestSliceReturnsPrefix(t *testing.T) {
	c := NewSequence([]elements.Element{unitElement("a"), unitElement("b"), unitElement("c")})
	sub := c.Slice(2)
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, "a -> b", sub.String())
}

func TestFaultPointCurrentsCoversEveryPrefix(t *testing.T) {
	ctx := context.Background()
	settings := testSettings(t, 3)
	c := NewSequence([]elements.Element{unitElement("a"), unitElement("b"), unitElement("c")})

	points, err := c.FaultPointCurrents(ctx, settings)
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i, p := range points {
		assert.Equal(t, i+1, p.Length)
	}

	full, err := c.ThreePhaseCurrent(ctx, settings)
	require.NoError(t, err)
	assert.True(t, points[2].ThreePhase.Equal(full))
}

func TestSystemAccessorsAndString(t *testing.T) {
	c1 := NewSequence([]elements.Element{unitElement("a")})
	c2 := NewSequence([]elements.Element{unitElement("b"), unitElement("c")})
	sys := NewSystem([]*Chain{c1, c2})

	assert.Equal(t, 2, sys.Len())
	assert.Same(t, c1, sys.At(0))
	assert.Equal(t, "[ChainsSystem of 2 chains / 3 elements]", sys.String())
}

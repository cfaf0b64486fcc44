package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundHalfAwayFromZero(t *testing.T) {
	cases := []struct {
		in     string
		places int32
		want   string
	}{
		{"1.2345", 3, "1.235"},
		{"1.2344", 3, "1.234"},
		{"-1.2345", 3, "-1.235"},
		{"0.5", 0, "1"},
		{"-0.5", 0, "-1"},
		{"2.0005", 3, "2.001"},
	}
	for _, c := range cases {
		d, err := NewFromString(c.in)
		require.NoError(t, err)
		got := Round(d, c.places)
		assert.Equal(t, c.want, got.String(), "Round(%s, %d)", c.in, c.places)
	}
}

func TestSqrt(t *testing.T) {
	d, err := NewFromString("9")
	require.NoError(t, err)
	got := Sqrt(d)
	assert.True(t, got.Sub(NewFromInt(3)).Abs().LessThan(mustDec(t, "0.0001")))
}

func mustDec(t *testing.T, s string) Decimal {
	t.Helper()
	d, err := NewFromString(s)
	require.NoError(t, err)
	return d
}

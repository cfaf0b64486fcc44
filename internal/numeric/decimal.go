// Package numeric provides the fixed-point decimal arithmetic the
// calculation engine uses for every electrical quantity, plus the one
// float round-trip permitted for square roots.
package numeric

import (
	"math"

	"github.com/shopspring/decimal"
)

// Decimal is the fixed-point type used throughout the catalog and
// calculation engine. It is wide enough for the widest stored column
// (8 integer + 5 fractional digits) and never loses precision on its
// own — shopspring/decimal is arbitrary-precision, so the width
// constraint is enforced by the catalog schema, not by this type.
type Decimal = decimal.Decimal

// Zero is the additive identity, exported for readability at call
// sites that accumulate a running sum.
var Zero = decimal.Zero

// NewFromString parses a decimal literal such as "0.4" or "-12.5".
func NewFromString(s string) (Decimal, error) {
	return decimal.NewFromString(s)
}

// NewFromInt builds a Decimal from an integer.
func NewFromInt(i int64) Decimal {
	return decimal.NewFromInt(i)
}

// Sqrt computes the square root of d. This is the single transcendental
// step the engine performs in float64: d is converted to float64,
// math.Sqrt is applied, and the result is converted back to Decimal.
// Callers round the final output to the configured accuracy; Sqrt
// itself does not round.
func Sqrt(d Decimal) Decimal {
	f, _ := d.Float64()
	return decimal.NewFromFloat(math.Sqrt(f))
}

// Round rounds d to places fractional digits using half-away-from-zero,
// the rounding mode spec.md mandates for final results. This is pinned
// explicitly rather than relying on decimal.Decimal.Round, whose
// tie-breaking behavior is an implementation detail of the library and
// must not silently change the engine's rounding under a dependency
// bump.
func Round(d Decimal, places int32) Decimal {
	if places < 0 {
		places = 0
	}
	scale := decimal.New(1, places)
	scaled := d.Mul(scale)

	neg := scaled.IsNegative()
	if neg {
		scaled = scaled.Neg()
	}

	floor := scaled.Truncate(0)
	frac := scaled.Sub(floor)
	half := decimal.NewFromFloat(0.5)

	if frac.Cmp(half) >= 0 {
		floor = floor.Add(decimal.NewFromInt(1))
	}
	if neg {
		floor = floor.Neg()
	}
	return floor.Div(scale).Truncate(places)
}

// Package chain implements the chain/system data structure of spec.md
// §3.4/§4.6: an aggregate of elements (ordered sequence or named
// mapping) that sums impedances and evaluates the three short-circuit
// current formulas, plus an ordered System of chains.
package chain

import (
	"context"
	"fmt"

	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/elements"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// Chain is either an ordered sequence of elements or an ordered mapping
// of project name to element; both forms yield the same impedance sum,
// the mapping additionally preserving labels for display (spec.md
// §3.4). The two are modeled as one struct with an optional parallel
// names slice rather than two Sequence/Mapping types, so the shared
// current-computation and slicing logic is written once.
type Chain struct {
	names []string // nil for a plain sequence
	elems []elements.Element
}

// NewSequence builds an ordered, unlabeled chain.
func NewSequence(elems []elements.Element) *Chain {
	return &Chain{elems: elems}
}

// NewNamed builds an ordered, labeled chain. names and elems must be
// the same length and share index-for-index correspondence.
func NewNamed(names []string, elems []elements.Element) (*Chain, error) {
	if len(names) != len(elems) {
		return nil, errs.New(errs.BadInput, "chain: %d names but %d elements", len(names), len(elems))
	}
	return &Chain{names: names, elems: elems}, nil
}

// Len returns the number of elements in the chain.
func (c *Chain) Len() int { return len(c.elems) }

// Named reports whether the chain is a named mapping rather than a
// plain sequence.
func (c *Chain) Named() bool { return c.names != nil }

// At returns the i'th element (and its name, if any).
func (c *Chain) At(i int) (name string, elem elements.Element) {
	if c.names != nil {
		return c.names[i], c.elems[i]
	}
	return "", c.elems[i]
}

// Slice returns the sub-chain of the first k elements, used to
// tabulate currents at each intermediate fault point along the chain
// (spec.md §3.4).
func (c *Chain) Slice(k int) *Chain {
	if c.names != nil {
		return &Chain{names: append([]string(nil), c.names[:k]...), elems: append([]elements.Element(nil), c.elems[:k]...)}
	}
	return &Chain{elems: append([]elements.Element(nil), c.elems[:k]...)}
}

// String renders the chain the way the original program does: elements
// joined by " -> ", each prefixed by "name: " when the chain is named.
func (c *Chain) String() string {
	var out string
	for i, e := range c.elems {
		if i > 0 {
			out += " -> "
		}
		if c.names != nil {
			out += c.names[i] + ": " + e.String()
		} else {
			out += e.String()
		}
	}
	return out
}

func (c *Chain) sumR1X1(ctx context.Context) (r1, x1 numeric.Decimal, err error) {
	r1, x1 = numeric.Zero, numeric.Zero
	for _, e := range c.elems {
		r, err := e.ResistanceR1(ctx)
		if err != nil {
			return numeric.Zero, numeric.Zero, err
		}
		x, err := e.ReactanceX1(ctx)
		if err != nil {
			return numeric.Zero, numeric.Zero, err
		}
		r1 = r1.Add(r)
		x1 = x1.Add(x)
	}
	return r1, x1, nil
}

func (c *Chain) sumR0X0(ctx context.Context) (r0, x0 numeric.Decimal, err error) {
	r0, x0 = numeric.Zero, numeric.Zero
	for _, e := range c.elems {
		r, err := e.ResistanceR0(ctx)
		if err != nil {
			return numeric.Zero, numeric.Zero, err
		}
		x, err := e.ReactanceX0(ctx)
		if err != nil {
			return numeric.Zero, numeric.Zero, err
		}
		r0 = r0.Add(r)
		x0 = x0.Add(x)
	}
	return r0, x0, nil
}

// threePhaseImpedance computes z3 = sqrt((Σr1)^2 + (Σx1)^2).
func (c *Chain) threePhaseImpedance(ctx context.Context) (numeric.Decimal, error) {
	r1, x1, err := c.sumR1X1(ctx)
	if err != nil {
		return numeric.Zero, err
	}
	sumSquares := r1.Mul(r1).Add(x1.Mul(x1))
	return numeric.Sqrt(sumSquares), nil
}

// onePhaseImpedance computes z1 = sqrt((2Σr1+Σr0)^2 + (2Σx1+Σx0)^2).
func (c *Chain) onePhaseImpedance(ctx context.Context) (numeric.Decimal, error) {
	r1, x1, err := c.sumR1X1(ctx)
	if err != nil {
		return numeric.Zero, err
	}
	r0, x0, err := c.sumR0X0(ctx)
	if err != nil {
		return numeric.Zero, err
	}
	two := numeric.NewFromInt(2)
	rSum := two.Mul(r1).Add(r0)
	xSum := two.Mul(x1).Add(x0)
	sumSquares := rSum.Mul(rSum).Add(xSum.Mul(xSum))
	return numeric.Sqrt(sumSquares), nil
}

var sqrt3 = numeric.Sqrt(numeric.NewFromInt(3))

// ThreePhaseCurrent computes I_k(3) = U / (sqrt(3) * z3), rounded to
// settings' CALCULATIONS_ACCURACY (spec.md §4.6).
func (c *Chain) ThreePhaseCurrent(ctx context.Context, settings *config.Settings) (numeric.Decimal, error) {
	u, err := settings.SystemVoltageInKilovolts()
	if err != nil {
		return numeric.Zero, err
	}
	accuracy, err := settings.CalculationsAccuracy()
	if err != nil {
		return numeric.Zero, err
	}
	z3, err := c.threePhaseImpedance(ctx)
	if err != nil {
		return numeric.Zero, err
	}
	i3 := u.Div(sqrt3).Div(z3)
	return numeric.Round(i3, accuracy), nil
}

// TwoPhaseCurrent computes I_k(2) = (sqrt(3)/2) * I_k(3), using the
// already-rounded three-phase current as input, the same dependency
// the original program's property has on its sibling property.
func (c *Chain) TwoPhaseCurrent(ctx context.Context, settings *config.Settings) (numeric.Decimal, error) {
	i3, err := c.ThreePhaseCurrent(ctx, settings)
	if err != nil {
		return numeric.Zero, err
	}
	accuracy, err := settings.CalculationsAccuracy()
	if err != nil {
		return numeric.Zero, err
	}
	two := numeric.NewFromInt(2)
	i2 := sqrt3.Div(two).Mul(i3)
	return numeric.Round(i2, accuracy), nil
}

// OnePhaseCurrent computes I_k(1) = (sqrt(3) * U) / z1.
func (c *Chain) OnePhaseCurrent(ctx context.Context, settings *config.Settings) (numeric.Decimal, error) {
	u, err := settings.SystemVoltageInKilovolts()
	if err != nil {
		return numeric.Zero, err
	}
	accuracy, err := settings.CalculationsAccuracy()
	if err != nil {
		return numeric.Zero, err
	}
	z1, err := c.onePhaseImpedance(ctx)
	if err != nil {
		return numeric.Zero, err
	}
	i1 := sqrt3.Mul(u).Div(z1)
	return numeric.Round(i1, accuracy), nil
}

// FaultPoint is the three currents evaluated at one intermediate fault
// point along a chain.
type FaultPoint struct {
	Length      int
	ThreePhase  numeric.Decimal
	TwoPhase    numeric.Decimal
	OnePhase    numeric.Decimal
}

// FaultPointCurrents tabulates the three currents at every prefix
// length 1..len(chain), the computation spec.md §3.4 describes as
// "used to compute currents at each intermediate fault point along the
// chain" — supplemented here as an explicit operation since the core
// (not the excluded GUI) owns the underlying math.
func (c *Chain) FaultPointCurrents(ctx context.Context, settings *config.Settings) ([]FaultPoint, error) {
	out := make([]FaultPoint, 0, c.Len())
	for k := 1; k <= c.Len(); k++ {
		sub := c.Slice(k)
		i3, err := sub.ThreePhaseCurrent(ctx, settings)
		if err != nil {
			return nil, err
		}
		i2, err := sub.TwoPhaseCurrent(ctx, settings)
		if err != nil {
			return nil, err
		}
		i1, err := sub.OnePhaseCurrent(ctx, settings)
		if err != nil {
			return nil, err
		}
		out = append(out, FaultPoint{Length: k, ThreePhase: i3, TwoPhase: i2, OnePhase: i1})
	}
	return out, nil
}

// System is an ordered collection of chains; it is a container with no
// aggregate operations of its own (spec.md §4.6).
type System struct {
	chains []*Chain
}

// NewSystem builds a system from chains in declared order.
func NewSystem(chains []*Chain) *System { return &System{chains: chains} }

// Len returns the number of chains.
func (s *System) Len() int { return len(s.chains) }

// At returns the chain at index i.
func (s *System) At(i int) *Chain { return s.chains[i] }

// Chains returns the chains in declared order.
func (s *System) Chains() []*Chain { return s.chains }

// String renders a one-line summary the way the original program's
// ChainsSystem.__str__ does.
func (s *System) String() string {
	elems := 0
	for _, c := range s.chains {
		elems += c.Len()
	}
	return fmt.Sprintf("[ChainsSystem of %d chains / %d elements]", len(s.chains), elems)
}

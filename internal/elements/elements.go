// Package elements implements the typed element taxonomy of spec.md
// §3.3/§4.5: transformer, cable, breaker and passive-contact variants
// that resolve their own impedances from the catalog by natural key.
package elements

import (
	"context"
	"fmt"
	"sync"

	"shortcircuitcalc/internal/catalog"
	"shortcircuitcalc/internal/config"
	"shortcircuitcalc/internal/errs"
	"shortcircuitcalc/internal/numeric"
)

// Element is implemented by every variant in the taxonomy. The four
// impedance accessors issue (and memoize) one catalog round trip per
// instance; a null scalar fails with NotInCatalog naming the element's
// textual form.
type Element interface {
	ResistanceR1(ctx context.Context) (numeric.Decimal, error)
	ReactanceX1(ctx context.Context) (numeric.Decimal, error)
	ResistanceR0(ctx context.Context) (numeric.Decimal, error)
	ReactanceX0(ctx context.Context) (numeric.Decimal, error)
	String() string
}

type impedances struct {
	r1, x1, r0, x0 numeric.Decimal
}

// cache memoizes a single catalog round trip: the four impedance
// scalars come from one query (spec.md §4.5/§8.1), so a sync.Once
// around that query is enough — there is no need to cache each scalar
// independently.
type cache struct {
	once   sync.Once
	values impedances
	err    error
}

func (c *cache) get(ctx context.Context, fetch func(context.Context) (impedances, error)) (impedances, error) {
	c.once.Do(func() {
		c.values, c.err = fetch(ctx)
	})
	return c.values, c.err
}

func (c *cache) r1(ctx context.Context, fetch func(context.Context) (impedances, error)) (numeric.Decimal, error) {
	v, err := c.get(ctx, fetch)
	return v.r1, err
}
func (c *cache) x1(ctx context.Context, fetch func(context.Context) (impedances, error)) (numeric.Decimal, error) {
	v, err := c.get(ctx, fetch)
	return v.x1, err
}
func (c *cache) r0(ctx context.Context, fetch func(context.Context) (impedances, error)) (numeric.Decimal, error) {
	v, err := c.get(ctx, fetch)
	return v.r0, err
}
func (c *cache) x0(ctx context.Context, fetch func(context.Context) (impedances, error)) (numeric.Decimal, error) {
	v, err := c.get(ctx, fetch)
	return v.x0, err
}

// Catalog is the subset of catalog.Session elements need: a single
// query returning exactly one row of four impedance scalars, or
// sql.ErrNoRows semantics surfaced as "not found".
type Catalog interface {
	QueryImpedances(ctx context.Context, query string, args ...any) (found bool, r1, x1, r0, x0 string, err error)
}

func fetchRow(ctx context.Context, cat Catalog, label, query string, args ...any) (impedances, error) {
	found, r1s, x1s, r0s, x0s, err := cat.QueryImpedances(ctx, query, args...)
	if err != nil {
		return impedances{}, err
	}
	if !found {
		return impedances{}, errs.New(errs.NotInCatalog, "no catalog entry for %s", label)
	}
	r1, err := numeric.NewFromString(r1s)
	if err != nil {
		return impedances{}, errs.Wrap(errs.BackendError, err, "parse resistance_r1 for %s", label)
	}
	x1, err := numeric.NewFromString(x1s)
	if err != nil {
		return impedances{}, errs.Wrap(errs.BackendError, err, "parse reactance_x1 for %s", label)
	}
	r0, err := numeric.NewFromString(r0s)
	if err != nil {
		return impedances{}, errs.Wrap(errs.BackendError, err, "parse resistance_r0 for %s", label)
	}
	x0, err := numeric.NewFromString(x0s)
	if err != nil {
		return impedances{}, errs.Wrap(errs.BackendError, err, "parse reactance_x0 for %s", label)
	}
	return impedances{r1: r1, x1: x1, r0: r0, x0: x0}, nil
}

// T is a transformer, keyed by (power, system voltage, vector group).
type T struct {
	Power       int64
	Voltage     numeric.Decimal
	VectorGroup string

	cat   Catalog
	cache cache
}

// NewT constructs a transformer element, reading the system voltage
// from settings as spec.md §3.3 requires ("populated from global
// configuration at construction time").
func NewT(cat Catalog, settings *config.Settings, power int64, vectorGroup string) (*T, error) {
	voltage, err := settings.SystemVoltageInKilovolts()
	if err != nil {
		return nil, err
	}
	if vectorGroup == "" {
		return nil, errs.New(errs.BadInput, "transformer vector group is required")
	}
	return &T{Power: power, Voltage: voltage, VectorGroup: vectorGroup, cat: cat}, nil
}

func (t *T) fetch(ctx context.Context) (impedances, error) {
	join := catalog.TransformerDimensions()
	query := fmt.Sprintf(
		`SELECT f.resistance_r1, f.reactance_x1, f.resistance_r0, f.reactance_x0
		 FROM transformer f
		 JOIN power_nominal d0 ON f.%s = d0.id
		 JOIN voltage_nominal d1 ON f.%s = d1.id
		 JOIN scheme d2 ON f.%s = d2.id
		 WHERE d0.power = ? AND d1.voltage = ? AND d2.vector_group = ?`,
		join[0].FKColumn, join[1].FKColumn, join[2].FKColumn)
	return fetchRow(ctx, t.cat, t.String(), query, t.Power, t.Voltage.String(), t.VectorGroup)
}

func (t *T) ResistanceR1(ctx context.Context) (numeric.Decimal, error) { return t.cache.r1(ctx, t.fetch) }
func (t *T) ReactanceX1(ctx context.Context) (numeric.Decimal, error)  { return t.cache.x1(ctx, t.fetch) }
func (t *T) ResistanceR0(ctx context.Context) (numeric.Decimal, error) { return t.cache.r0(ctx, t.fetch) }
func (t *T) ReactanceX0(ctx context.Context) (numeric.Decimal, error)  { return t.cache.x0(ctx, t.fetch) }

func (t *T) String() string {
	return fmt.Sprintf("T %d/%s (%s)", t.Power, t.Voltage.String(), t.VectorGroup)
}

// W is a cable/wire run, keyed by (mark, amount, range) plus length.
// Stored impedances are per kilometer; queries scale by length/1000.
type W struct {
	Mark   string
	Amount int64
	Range  numeric.Decimal
	Length numeric.Decimal // meters

	cat   Catalog
	cache cache
}

// NewW constructs a cable element. lengthMeters must coerce to a
// non-negative decimal; coercion failure is BadInput.
func NewW(cat Catalog, mark string, amount int64, rangeVal numeric.Decimal, lengthMeters numeric.Decimal) (*W, error) {
	if mark == "" {
		return nil, errs.New(errs.BadInput, "cable mark is required")
	}
	if lengthMeters.IsNegative() {
		return nil, errs.New(errs.BadInput, "cable length must be non-negative, got %s", lengthMeters.String())
	}
	return &W{Mark: mark, Amount: amount, Range: rangeVal, Length: lengthMeters, cat: cat}, nil
}

func (w *W) fetch(ctx context.Context) (impedances, error) {
	join := catalog.CableDimensions()
	query := fmt.Sprintf(
		`SELECT f.resistance_r1, f.reactance_x1, f.resistance_r0, f.reactance_x0
		 FROM cable f
		 JOIN mark d0 ON f.%s = d0.id
		 JOIN amount d1 ON f.%s = d1.id
		 JOIN range_val d2 ON f.%s = d2.id
		 WHERE d0.mark_name = ? AND d1.multicore_amount = ? AND d2.cable_range = ?`,
		join[0].FKColumn, join[1].FKColumn, join[2].FKColumn)
	raw, err := fetchRow(ctx, w.cat, w.String(), query, w.Mark, w.Amount, w.Range.String())
	if err != nil {
		return impedances{}, err
	}
	scale := w.Length.Div(numeric.NewFromInt(1000))
	return impedances{
		r1: raw.r1.Mul(scale),
		x1: raw.x1.Mul(scale),
		r0: raw.r0.Mul(scale),
		x0: raw.x0.Mul(scale),
	}, nil
}

func (w *W) ResistanceR1(ctx context.Context) (numeric.Decimal, error) { return w.cache.r1(ctx, w.fetch) }
func (w *W) ReactanceX1(ctx context.Context) (numeric.Decimal, error)  { return w.cache.x1(ctx, w.fetch) }
func (w *W) ResistanceR0(ctx context.Context) (numeric.Decimal, error) { return w.cache.r0(ctx, w.fetch) }
func (w *W) ReactanceX0(ctx context.Context) (numeric.Decimal, error)  { return w.cache.x0(ctx, w.fetch) }

func (w *W) String() string {
	length := w.Length.StringFixed(0)
	rangeStr := w.Range.String()
	if w.Range.Equal(w.Range.Truncate(0)) {
		rangeStr = w.Range.Truncate(0).String()
	}
	return fmt.Sprintf("%s %dх%s %sm", w.Mark, w.Amount, rangeStr, length)
}

// breakerKind distinguishes Q/QF/QS, which share a query shape but
// differ in the device_type natural key and textual form.
type breakerKind struct {
	label      string
	deviceType string
}

var (
	kindQ  = breakerKind{label: "Q"}
	kindQF = breakerKind{label: "QF", deviceType: "Автомат"}
	kindQS = breakerKind{label: "QS", deviceType: "Рубильник"}
)

type breaker struct {
	kind    breakerKind
	Current int64
	Device  string

	cat   Catalog
	cache cache
}

func newBreaker(cat Catalog, kind breakerKind, current int64, device string) (*breaker, error) {
	if device == "" {
		device = kind.deviceType
	}
	if device == "" {
		return nil, errs.New(errs.BadInput, "%s breaker requires a device type", kind.label)
	}
	return &breaker{kind: kind, Current: current, Device: device, cat: cat}, nil
}

// NewQ constructs a generic breaker with an explicit device type.
func NewQ(cat Catalog, current int64, deviceType string) (Element, error) {
	return newBreaker(cat, kindQ, current, deviceType)
}

// NewQF constructs an automatic-breaker ("Автомат") element. The
// discriminator is set after construction, matching the Python
// default-typed subvariants of spec.md §4.5.
func NewQF(cat Catalog, current int64) (Element, error) {
	return newBreaker(cat, kindQF, current, "")
}

// NewQS constructs a disconnector ("Рубильник") element.
func NewQS(cat Catalog, current int64) (Element, error) {
	return newBreaker(cat, kindQS, current, "")
}

func (q *breaker) fetch(ctx context.Context) (impedances, error) {
	join := catalog.CurrentBreakerDimensions()
	query := fmt.Sprintf(
		`SELECT f.resistance_r1, f.reactance_x1, f.resistance_r0, f.reactance_x0
		 FROM current_breaker f
		 JOIN device d0 ON f.%s = d0.id
		 JOIN current_nominal d1 ON f.%s = d1.id
		 WHERE d0.device_type = ? AND d1.current_value = ?`,
		join[0].FKColumn, join[1].FKColumn)
	return fetchRow(ctx, q.cat, q.String(), query, q.Device, q.Current)
}

func (q *breaker) ResistanceR1(ctx context.Context) (numeric.Decimal, error) { return q.cache.r1(ctx, q.fetch) }
func (q *breaker) ReactanceX1(ctx context.Context) (numeric.Decimal, error)  { return q.cache.x1(ctx, q.fetch) }
func (q *breaker) ResistanceR0(ctx context.Context) (numeric.Decimal, error) { return q.cache.r0(ctx, q.fetch) }
func (q *breaker) ReactanceX0(ctx context.Context) (numeric.Decimal, error)  { return q.cache.x0(ctx, q.fetch) }

func (q *breaker) String() string {
	return fmt.Sprintf("%s %dA", q.kind.label, q.Current)
}

// contact is the shared implementation of R/Line/Arc, all backed by
// OtherContact and differing only in their fixed natural key and
// textual label.
type contact struct {
	label       string
	contactType string

	cat   Catalog
	cache cache
}

// NewR constructs a generic passive-contact element with an explicit
// contact type.
func NewR(cat Catalog, contactType string) (Element, error) {
	if contactType == "" {
		return nil, errs.New(errs.BadInput, "R contact requires a contact type")
	}
	return &contact{label: "R", contactType: contactType, cat: cat}, nil
}

// NewLine constructs the fixed "РУ" (switchgear busbar) contact.
func NewLine(cat Catalog) Element {
	return &contact{label: "Line", contactType: "РУ", cat: cat}
}

// NewArc constructs the fixed "Дуга" (arc fault) contact.
func NewArc(cat Catalog) Element {
	return &contact{label: "Arc", contactType: "Дуга", cat: cat}
}

func (c *contact) fetch(ctx context.Context) (impedances, error) {
	query := `SELECT resistance_r1, reactance_x1, resistance_r0, reactance_x0
		 FROM other_contact WHERE contact_type = ?`
	return fetchRow(ctx, c.cat, c.String(), query, c.contactType)
}

func (c *contact) ResistanceR1(ctx context.Context) (numeric.Decimal, error) { return c.cache.r1(ctx, c.fetch) }
func (c *contact) ReactanceX1(ctx context.Context) (numeric.Decimal, error)  { return c.cache.x1(ctx, c.fetch) }
func (c *contact) ResistanceR0(ctx context.Context) (numeric.Decimal, error) { return c.cache.r0(ctx, c.fetch) }
func (c *contact) ReactanceX0(ctx context.Context) (numeric.Decimal, error)  { return c.cache.x0(ctx, c.fetch) }

func (c *contact) String() string {
	if c.label == "R" {
		return "R"
	}
	return c.contactType
}

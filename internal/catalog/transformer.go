package catalog

import (
	"fmt"

	"shortcircuitcalc/internal/numeric"
)

// Dimension table definitions for the Transformer cluster (spec.md §3.1).
var (
	PowerNominalTable = TableDef{
		Name:       "power_nominal",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "power", Kind: ColInt, Unique: true}},
	}
	VoltageNominalTable = TableDef{
		Name:       "voltage_nominal",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "voltage", Kind: ColDecimal, Unique: true}},
	}
	SchemeTable = TableDef{
		Name:       "scheme",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "vector_group", Kind: ColString, Unique: true}},
	}

	TransformerTable = TableDef{
		Name:       "transformer",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "power_id", Kind: ColInt},
			{Name: "voltage_id", Kind: ColInt},
			{Name: "scheme_id", Kind: ColInt},
			{Name: "power_short_circuit", Kind: ColDecimal},
			{Name: "voltage_short_circuit", Kind: ColDecimal},
			{Name: "resistance_r1", Kind: ColDecimal},
			{Name: "reactance_x1", Kind: ColDecimal},
			{Name: "resistance_r0", Kind: ColDecimal},
			{Name: "reactance_x0", Kind: ColDecimal},
		},
		ForeignKeys: []ForeignKey{
			{Column: "power_id", RefTable: "power_nominal", RefColumn: "id"},
			{Column: "voltage_id", RefTable: "voltage_nominal", RefColumn: "id"},
			{Column: "scheme_id", RefTable: "scheme", RefColumn: "id"},
		},
	}
)

// TransformerDimensions lists the Transformer fact table's dimensions
// in the fixed order SUBTABLES declares them in the original program.
func TransformerDimensions() []Dimension {
	return []Dimension{
		{Def: PowerNominalTable, Column: "power", FKColumn: "power_id"},
		{Def: VoltageNominalTable, Column: "voltage", FKColumn: "voltage_id"},
		{Def: SchemeTable, Column: "vector_group", FKColumn: "scheme_id"},
	}
}

// TransformerExtra is the Transformer fact table's own data: the two
// nameplate short-circuit figures and the four sequence impedances.
// Foreign keys to its dimensions are resolved separately by JoinOps.
type TransformerExtra struct {
	PowerShortCircuit   numeric.Decimal
	VoltageShortCircuit numeric.Decimal
	ResistanceR1        numeric.Decimal
	ReactanceX1         numeric.Decimal
	ResistanceR0        numeric.Decimal
	ReactanceX0         numeric.Decimal
}

type transformerExtrasMapper struct{}

func (transformerExtrasMapper) ExtraColumns() []string {
	return []string{
		"power_short_circuit", "voltage_short_circuit",
		"resistance_r1", "reactance_x1", "resistance_r0", "reactance_x0",
	}
}

func (transformerExtrasMapper) Values(t TransformerExtra) []any {
	return []any{
		t.PowerShortCircuit, t.VoltageShortCircuit,
		t.ResistanceR1, t.ReactanceX1, t.ResistanceR0, t.ReactanceX0,
	}
}

func (transformerExtrasMapper) FromExtras(cols []any) (TransformerExtra, error) {
	vals, err := decimalsFrom(cols, 6)
	if err != nil {
		return TransformerExtra{}, err
	}
	return TransformerExtra{
		PowerShortCircuit:   vals[0],
		VoltageShortCircuit: vals[1],
		ResistanceR1:        vals[2],
		ReactanceX1:         vals[3],
		ResistanceR0:        vals[4],
		ReactanceX0:         vals[5],
	}, nil
}

// TransformerExtrasMapper is the FactExtrasMapper[TransformerExtra]
// instance shared by NewJoinOps callers.
var TransformerExtrasMapper transformerExtrasMapper

// decimalsFrom coerces n raw driver column values into numeric.Decimal,
// accepting strings, byte slices or float64 (drivers vary in how they
// surface NUMERIC columns).
func decimalsFrom(cols []any, n int) ([]numeric.Decimal, error) {
	if len(cols) != n {
		return nil, fmt.Errorf("expected %d columns, got %d", n, len(cols))
	}
	out := make([]numeric.Decimal, n)
	for i, c := range cols {
		d, err := decimalFromDriverValue(c)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}

func decimalFromDriverValue(v any) (numeric.Decimal, error) {
	switch x := v.(type) {
	case string:
		return numeric.NewFromString(x)
	case []byte:
		return numeric.NewFromString(string(x))
	case float64:
		return numeric.NewFromString(fmt.Sprintf("%v", x))
	case int64:
		return numeric.NewFromInt(x), nil
	default:
		return numeric.Decimal{}, fmt.Errorf("cannot convert %T to decimal", v)
	}
}

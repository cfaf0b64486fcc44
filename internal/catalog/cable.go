package catalog

import "shortcircuitcalc/internal/numeric"

// Dimension table definitions for the Cable cluster (spec.md §3.1).
var (
	MarkTable = TableDef{
		Name:       "mark",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "mark_name", Kind: ColString, Unique: true}},
	}
	AmountTable = TableDef{
		Name:       "amount",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "multicore_amount", Kind: ColInt, Unique: true}},
	}
	RangeValTable = TableDef{
		Name:       "range_val",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "cable_range", Kind: ColDecimal, Unique: true}},
	}

	CableTable = TableDef{
		Name:       "cable",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "mark_id", Kind: ColInt},
			{Name: "amount_id", Kind: ColInt},
			{Name: "range_id", Kind: ColInt},
			{Name: "continuous_current", Kind: ColDecimal},
			{Name: "resistance_r1", Kind: ColDecimal},
			{Name: "reactance_x1", Kind: ColDecimal},
			{Name: "resistance_r0", Kind: ColDecimal},
			{Name: "reactance_x0", Kind: ColDecimal},
		},
		ForeignKeys: []ForeignKey{
			{Column: "mark_id", RefTable: "mark", RefColumn: "id"},
			{Column: "amount_id", RefTable: "amount", RefColumn: "id"},
			{Column: "range_id", RefTable: "range_val", RefColumn: "id"},
		},
	}
)

// CableDimensions lists the Cable fact table's dimensions in SUBTABLES
// order.
func CableDimensions() []Dimension {
	return []Dimension{
		{Def: MarkTable, Column: "mark_name", FKColumn: "mark_id"},
		{Def: AmountTable, Column: "multicore_amount", FKColumn: "amount_id"},
		{Def: RangeValTable, Column: "cable_range", FKColumn: "range_id"},
	}
}

// CableExtra is the Cable fact table's own data. The four impedances
// are stored per kilometer; W elements scale them by length/1000
// (spec.md §3.1, §4.5).
type CableExtra struct {
	ContinuousCurrent numeric.Decimal
	ResistanceR1      numeric.Decimal
	ReactanceX1       numeric.Decimal
	ResistanceR0      numeric.Decimal
	ReactanceX0       numeric.Decimal
}

type cableExtrasMapper struct{}

func (cableExtrasMapper) ExtraColumns() []string {
	return []string{"continuous_current", "resistance_r1", "reactance_x1", "resistance_r0", "reactance_x0"}
}

func (cableExtrasMapper) Values(c CableExtra) []any {
	return []any{c.ContinuousCurrent, c.ResistanceR1, c.ReactanceX1, c.ResistanceR0, c.ReactanceX0}
}

func (cableExtrasMapper) FromExtras(cols []any) (CableExtra, error) {
	vals, err := decimalsFrom(cols, 5)
	if err != nil {
		return CableExtra{}, err
	}
	return CableExtra{
		ContinuousCurrent: vals[0],
		ResistanceR1:      vals[1],
		ReactanceX1:       vals[2],
		ResistanceR0:      vals[3],
		ReactanceX0:       vals[4],
	}, nil
}

// CableExtrasMapper is the FactExtrasMapper[CableExtra] instance.
var CableExtrasMapper cableExtrasMapper

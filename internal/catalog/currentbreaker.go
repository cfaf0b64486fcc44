package catalog

import "shortcircuitcalc/internal/numeric"

// Dimension table definitions for the CurrentBreaker cluster (spec.md §3.1).
var (
	DeviceTable = TableDef{
		Name:       "device",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "device_type", Kind: ColString, Unique: true}},
	}
	CurrentNominalTable = TableDef{
		Name:       "current_nominal",
		PrimaryKey: "id",
		Columns:    []Column{{Name: "current_value", Kind: ColInt, Unique: true}},
	}

	CurrentBreakerTable = TableDef{
		Name:       "current_breaker",
		PrimaryKey: "id",
		Columns: []Column{
			{Name: "device_id", Kind: ColInt},
			{Name: "current_id", Kind: ColInt},
			{Name: "resistance_r1", Kind: ColDecimal},
			{Name: "reactance_x1", Kind: ColDecimal, Nullable: true},
			{Name: "resistance_r0", Kind: ColDecimal, Nullable: true},
			{Name: "reactance_x0", Kind: ColDecimal, Nullable: true},
		},
		ForeignKeys: []ForeignKey{
			{Column: "device_id", RefTable: "device", RefColumn: "id"},
			{Column: "current_id", RefTable: "current_nominal", RefColumn: "id"},
		},
	}
)

// CurrentBreakerDimensions lists the CurrentBreaker fact table's
// dimensions in SUBTABLES order.
func CurrentBreakerDimensions() []Dimension {
	return []Dimension{
		{Def: DeviceTable, Column: "device_type", FKColumn: "device_id"},
		{Def: CurrentNominalTable, Column: "current_value", FKColumn: "current_id"},
	}
}

// CurrentBreakerExtra is the CurrentBreaker fact table's own data.
// Reactance and zero-sequence figures default to zero when absent
// (spec.md §3.1).
type CurrentBreakerExtra struct {
	ResistanceR1 numeric.Decimal
	ReactanceX1  numeric.Decimal
	ResistanceR0 numeric.Decimal
	ReactanceX0  numeric.Decimal
}

type currentBreakerExtrasMapper struct{}

func (currentBreakerExtrasMapper) ExtraColumns() []string {
	return []string{"resistance_r1", "reactance_x1", "resistance_r0", "reactance_x0"}
}

func (currentBreakerExtrasMapper) Values(c CurrentBreakerExtra) []any {
	return []any{c.ResistanceR1, c.ReactanceX1, c.ResistanceR0, c.ReactanceX0}
}

func (currentBreakerExtrasMapper) FromExtras(cols []any) (CurrentBreakerExtra, error) {
	vals, err := decimalsFrom(cols, 4)
	if err != nil {
		return CurrentBreakerExtra{}, err
	}
	return CurrentBreakerExtra{
		ResistanceR1: vals[0],
		ReactanceX1:  vals[1],
		ResistanceR0: vals[2],
		ReactanceX0:  vals[3],
	}, nil
}

// CurrentBreakerExtrasMapper is the FactExtrasMapper[CurrentBreakerExtra] instance.
var CurrentBreakerExtrasMapper currentBreakerExtrasMapper

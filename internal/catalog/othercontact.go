package catalog

import (
	"fmt"

	"shortcircuitcalc/internal/numeric"
)

// OtherContactTable is the flat table backing R/Line/Arc elements
// (spec.md §3.1): no dimensions, just a unique contact_type key plus
// four impedances.
var OtherContactTable = TableDef{
	Name:       "other_contact",
	PrimaryKey: "id",
	Columns: []Column{
		{Name: "contact_type", Kind: ColString, Unique: true},
		{Name: "resistance_r1", Kind: ColDecimal},
		{Name: "reactance_x1", Kind: ColDecimal},
		{Name: "resistance_r0", Kind: ColDecimal},
		{Name: "reactance_x0", Kind: ColDecimal},
	},
}

// OtherContact is one row of other_contact.
type OtherContact struct {
	ID           int64
	ContactType  string
	ResistanceR1 numeric.Decimal
	ReactanceX1  numeric.Decimal
	ResistanceR0 numeric.Decimal
	ReactanceX0  numeric.Decimal
}

type otherContactMapper struct{}

func (otherContactMapper) Def() TableDef { return OtherContactTable }

func (otherContactMapper) Values(row OtherContact) []any {
	return []any{row.ContactType, row.ResistanceR1, row.ReactanceX1, row.ResistanceR0, row.ReactanceX0}
}

func (otherContactMapper) FromRow(id int64, cols []any) (OtherContact, error) {
	if len(cols) != 5 {
		return OtherContact{}, fmt.Errorf("other_contact: expected 5 columns, got %d", len(cols))
	}
	contactType, ok := cols[0].(string)
	if !ok {
		if b, isBytes := cols[0].([]byte); isBytes {
			contactType = string(b)
		}
	}
	decs, err := decimalsFrom(cols[1:], 4)
	if err != nil {
		return OtherContact{}, err
	}
	return OtherContact{
		ID:           id,
		ContactType:  contactType,
		ResistanceR1: decs[0],
		ReactanceX1:  decs[1],
		ResistanceR0: decs[2],
		ReactanceX0:  decs[3],
	}, nil
}

// OtherContactMapper is the RowMapper[OtherContact] instance.
var OtherContactMapper otherContactMapper

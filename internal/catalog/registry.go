package catalog

import "shortcircuitcalc/internal/logging"

// Registry bundles every table's operations bound to one backend and
// logger, so the installer and the CLI each construct it once instead
// of repeating the NewBaseOps/NewJoinOps wiring (spec.md §4.2, §4.8).
type Registry struct {
	Backend Backend

	PowerNominal   *BaseOps[DimensionRow]
	VoltageNominal *BaseOps[DimensionRow]
	Scheme         *BaseOps[DimensionRow]
	Mark           *BaseOps[DimensionRow]
	Amount         *BaseOps[DimensionRow]
	RangeVal       *BaseOps[DimensionRow]
	Device         *BaseOps[DimensionRow]
	CurrentNominal *BaseOps[DimensionRow]
	OtherContact   *BaseOps[OtherContact]

	Transformer    *JoinOps[TransformerExtra]
	Cable          *JoinOps[CableExtra]
	CurrentBreaker *JoinOps[CurrentBreakerExtra]

	// *Rows are full-row BaseOps over the same fact tables, used only by
	// the installer's CSV bulk load (see FactRow's doc comment).
	TransformerRows    *BaseOps[FactRow[TransformerExtra]]
	CableRows          *BaseOps[FactRow[CableExtra]]
	CurrentBreakerRows *BaseOps[FactRow[CurrentBreakerExtra]]
}

// NewRegistry builds the full set of table operations for backend.
func NewRegistry(backend Backend, log *logging.Logger) *Registry {
	return &Registry{
		Backend: backend,

		PowerNominal:   NewBaseOps(NewDimensionMapper(PowerNominalTable), backend),
		VoltageNominal: NewBaseOps(NewDimensionMapper(VoltageNominalTable), backend),
		Scheme:         NewBaseOps(NewDimensionMapper(SchemeTable), backend),
		Mark:           NewBaseOps(NewDimensionMapper(MarkTable), backend),
		Amount:         NewBaseOps(NewDimensionMapper(AmountTable), backend),
		RangeVal:       NewBaseOps(NewDimensionMapper(RangeValTable), backend),
		Device:         NewBaseOps(NewDimensionMapper(DeviceTable), backend),
		CurrentNominal: NewBaseOps(NewDimensionMapper(CurrentNominalTable), backend),
		OtherContact:   NewBaseOps[OtherContact](OtherContactMapper, backend),

		Transformer:    NewJoinOps(TransformerTable, TransformerDimensions(), TransformerExtrasMapper, backend, log),
		Cable:          NewJoinOps(CableTable, CableDimensions(), CableExtrasMapper, backend, log),
		CurrentBreaker: NewJoinOps(CurrentBreakerTable, CurrentBreakerDimensions(), CurrentBreakerExtrasMapper, backend, log),

		TransformerRows: NewBaseOps(
			NewFactRowMapper(TransformerTable, TransformerDimensions(), TransformerExtrasMapper), backend),
		CableRows: NewBaseOps(
			NewFactRowMapper(CableTable, CableDimensions(), CableExtrasMapper), backend),
		CurrentBreakerRows: NewBaseOps(
			NewFactRowMapper(CurrentBreakerTable, CurrentBreakerDimensions(), CurrentBreakerExtrasMapper), backend),
	}
}

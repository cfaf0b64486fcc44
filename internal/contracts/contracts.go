// Package contracts defines the read/write surface a rendering
// collaborator is handed (spec.md §6.5): tabular access to the catalog
// and iteration over a parsed chain system. Nothing here imports a
// presentation package — the rendering layer itself, and any
// image/SVG conversion it performs, stays outside the core by
// construction.
package contracts

import (
	"context"

	"shortcircuitcalc/internal/catalog"
	"shortcircuitcalc/internal/chain"
)

// TableReader is satisfied by *catalog.BaseOps[T] for every dimension
// and flat fact table (spec.md §6.5's read_table).
type TableReader[T any] interface {
	ReadTable(ctx context.Context, tx *catalog.Tx, filter string, limit int) ([]T, error)
}

// JoinedTableReader is satisfied by *catalog.JoinOps[T] for every
// equipment table (spec.md §6.5's read_joined_table).
type JoinedTableReader[T any] interface {
	ReadJoinedTable(ctx context.Context, tx *catalog.Tx, filter string, limit int) ([]catalog.JoinedRow[T], error)
}

// JoinedTableWriter is satisfied by *catalog.JoinOps[T], the CRUD
// surface a rendering collaborator drives with validated input
// structs mirroring the extras dataclasses (spec.md §6.5,
// insert/update/delete_joined_table).
type JoinedTableWriter[T any] interface {
	InsertJoinedTable(ctx context.Context, tx *catalog.Tx, rows []catalog.JoinedInsert[T]) (int, error)
	UpdateJoinedTable(ctx context.Context, tx *catalog.Tx, oldSource, newSource, targetRow map[string]any) (int, error)
	DeleteJoinedTable(ctx context.Context, tx *catalog.Tx, source map[string]any, fromSource bool) (int, error)
}

// ChainsSystemView is satisfied by *chain.System: iteration over its
// chains, each of which in turn exposes its own length, item access,
// slicing, and the three current properties directly on *chain.Chain
// (spec.md §6.5).
type ChainsSystemView interface {
	Len() int
	At(i int) *chain.Chain
	Chains() []*chain.Chain
	String() string
}

var (
	_ TableReader[catalog.DimensionRow]     = (*catalog.BaseOps[catalog.DimensionRow])(nil)
	_ JoinedTableReader[catalog.CableExtra] = (*catalog.JoinOps[catalog.CableExtra])(nil)
	_ JoinedTableWriter[catalog.CableExtra] = (*catalog.JoinOps[catalog.CableExtra])(nil)
	_ ChainsSystemView                      = (*chain.System)(nil)
)

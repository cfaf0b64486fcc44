package catalog

// ColumnKind is the declared SQL type of a Column. Table metadata is
// written out as plain data at schema-definition time (see each table
// file's TableDef var) rather than produced by reflecting over struct
// tags at runtime.
type ColumnKind int

const (
	ColInt ColumnKind = iota
	ColDecimal
	ColString
)

// Column describes one column of a catalog table.
type Column struct {
	Name     string
	Kind     ColumnKind
	Nullable bool
	Unique   bool
}

// ForeignKey describes a single-column foreign key from a fact table to
// one of its dimension tables.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
}

// TableDef is the fixed schema description of one catalog table: its
// name, primary key, columns and foreign keys. Every concrete table
// (PowerNominal, Transformer, ...) exposes a package-level TableDef so
// BaseOps/JoinOps can build statements without reflection.
type TableDef struct {
	Name        string
	PrimaryKey  string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// ColumnNames returns the non-primary-key column names in declaration
// order, the set that INSERT/UPDATE statements touch.
func (t TableDef) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// AllColumnNames returns the primary key followed by every other
// column, the order SELECT * effectively uses.
func (t TableDef) AllColumnNames() []string {
	return append([]string{t.PrimaryKey}, t.ColumnNames()...)
}

// ForeignKeyTo returns the foreign key referencing refTable, if any.
func (t TableDef) ForeignKeyTo(refTable string) (ForeignKey, bool) {
	for _, fk := range t.ForeignKeys {
		if fk.RefTable == refTable {
			return fk, true
		}
	}
	return ForeignKey{}, false
}

// CreateTableSQL renders a CREATE TABLE statement for t using b's
// identifier quoting and autoincrement clause.
func (t TableDef) CreateTableSQL(b Backend) string {
	stmt := "CREATE TABLE IF NOT EXISTS " + b.QuoteIdentifier(t.Name) + " (\n"
	stmt += "  " + b.QuoteIdentifier(t.PrimaryKey) + " INTEGER PRIMARY KEY " + b.AutoIncrementClause()
	for _, c := range t.Columns {
		stmt += ",\n  " + b.QuoteIdentifier(c.Name) + " " + sqlType(c.Kind)
		if !c.Nullable {
			stmt += " NOT NULL"
		}
		if c.Unique {
			stmt += " UNIQUE"
		}
	}
	for _, fk := range t.ForeignKeys {
		stmt += renderForeignKey(b, fk)
	}
	stmt += "\n)"
	return stmt
}

func sqlType(k ColumnKind) string {
	switch k {
	case ColDecimal:
		return "NUMERIC(13,5)"
	case ColString:
		return "VARCHAR(255)"
	default:
		return "INTEGER"
	}
}

func renderForeignKey(b Backend, fk ForeignKey) string {
	return ",\n  FOREIGN KEY (" + b.QuoteIdentifier(fk.Column) + ") REFERENCES " +
		b.QuoteIdentifier(fk.RefTable) + " (" + b.QuoteIdentifier(fk.RefColumn) + ")" +
		" ON UPDATE CASCADE ON DELETE CASCADE"
}

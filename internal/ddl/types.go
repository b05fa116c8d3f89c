package ddl

import "layoffs/internal/schema"

// ColumnDef describes one column of a table. Name is unquoted; quoting
// happens at render time through the backend's Quoter.
type ColumnDef struct {
	Name     string
	SQLType  string
	Nullable bool
	Default  string
}

// TableDef holds the table name in dotted form ("schema.table" or "table")
// and the ordered column list.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// TypeMap maps a contract field type ("text", "int", "float", "date") to a
// backend SQL type.
type TypeMap func(fieldType string) string

// LayoffsTable derives the cleaned layoffs table from the schema contract.
// Required contract fields become NOT NULL.
func LayoffsTable(fqn string, types TypeMap) TableDef {
	cols := make([]ColumnDef, 0, len(schema.Layoffs.Fields))
	for _, f := range schema.Layoffs.Fields {
		cols = append(cols, ColumnDef{
			Name:     f.Name,
			SQLType:  types(f.Type),
			Nullable: !f.Required,
		})
	}
	return TableDef{FQN: fqn, Columns: cols}
}

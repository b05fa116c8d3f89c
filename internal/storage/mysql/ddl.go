package mysql

import (
	"context"
	"fmt"
	"strings"

	"layoffs/internal/ddl"
	"layoffs/internal/storage"
)

// quoteIdent quotes a MySQL identifier with backticks.
func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }

// MapType maps a contract field type to a MySQL column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "DOUBLE"
	case "date":
		return "DATE"
	default:
		return "TEXT"
	}
}

// CreateTableSQL renders CREATE TABLE IF NOT EXISTS for the layoffs table.
func CreateTableSQL(table string) (string, error) {
	return ddl.BuildCreateTableSQL(ddl.LayoffsTable(table, MapType), quoteIdent, true)
}

// EnsureTable creates the layoffs table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	stmt, err := CreateTableSQL(table)
	if err != nil {
		return fmt.Errorf("mysql ddl: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("mysql ddl: apply: %w", err)
	}
	return nil
}

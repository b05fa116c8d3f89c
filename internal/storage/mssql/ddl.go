package mssql

import (
	"context"
	"fmt"
	"strings"

	"layoffs/internal/ddl"
	"layoffs/internal/storage"
)

// msIdent quotes a SQL Server identifier using [brackets], escaping ].
func msIdent(id string) string { return `[` + strings.ReplaceAll(id, `]`, `]]`) + `]` }

// MapType maps a contract field type to a SQL Server column type.
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int":
		return "BIGINT"
	case "float":
		return "FLOAT"
	case "date":
		return "DATE"
	default:
		return "NVARCHAR(MAX)"
	}
}

// CreateTableSQL renders the layoffs table wrapped in an IF OBJECT_ID guard;
// T-SQL has no CREATE TABLE IF NOT EXISTS.
func CreateTableSQL(table string) (string, error) {
	stmt, err := ddl.BuildCreateTableSQL(ddl.LayoffsTable(table, MapType), msIdent, false)
	if err != nil {
		return "", err
	}
	fqn := strings.ReplaceAll(ddl.QuoteFQN(strings.TrimSpace(table), msIdent), "'", "''")
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n%s\nEND;", fqn, stmt), nil
}

// EnsureTable creates the layoffs table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, table string) error {
	stmt, err := CreateTableSQL(table)
	if err != nil {
		return fmt.Errorf("mssql ddl: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("mssql ddl: apply: %w", err)
	}
	return nil
}

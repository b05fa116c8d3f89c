package mssql

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"layoffs/internal/schema"
	"layoffs/internal/storage"
)

// TestRegistrationUsesNewRepositoryHook verifies that the "mssql" backend
// registered in init() uses the newRepository hook and that wrappedRepo
// propagates configuration and Close. Not parallel: it swaps a package
// variable.
func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
		fake   = &Repository{}
	)
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return fake, func() { closed = true }, nil
	}

	cfg := storage.Config{Kind: "mssql", DSN: "sqlserver://example", Table: "dbo.layoffs_clean", Columns: schema.Columns}
	repo, err := storage.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("storage.New() error = %v, want nil", err)
	}
	if gotCfg.DSN != cfg.DSN || gotCfg.Table != cfg.Table || len(gotCfg.Columns) != len(cfg.Columns) {
		t.Errorf("hook cfg = %+v", gotCfg)
	}
	w, ok := repo.(*wrappedRepo)
	if !ok || w.Repository != fake {
		t.Fatalf("storage.New() = %T, want *wrappedRepo around the hook's repository", repo)
	}

	repo.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}

func TestMsIdent(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"simple", "[simple]"},
		{"brack]et", "[brack]]et]"},
	}
	for _, tc := range cases {
		if got := msIdent(tc.in); got != tc.want {
			t.Fatalf("msIdent(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := CreateTableSQL("dbo.layoffs_clean")
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	if !strings.HasPrefix(got, "IF OBJECT_ID(N'[dbo].[layoffs_clean]', N'U') IS NULL\nBEGIN\nCREATE TABLE [dbo].[layoffs_clean] (\n") {
		t.Fatalf("unexpected guard:\n%s", got)
	}
	for _, want := range []string{
		"[company] NVARCHAR(MAX) NOT NULL,",
		"[total_laid_off] BIGINT,",
		"[percentage_laid_off] FLOAT,",
		"[date] DATE,",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("CreateTableSQL missing %q:\n%s", want, got)
		}
	}
	if !strings.HasSuffix(got, "\nEND;") {
		t.Fatalf("missing END:\n%s", got)
	}

	if _, err := CreateTableSQL(""); err == nil {
		t.Fatalf("expected error for empty table")
	}
}

// TestPersistIntegration runs only when MSSQL_TEST_DSN is set.
func TestPersistIntegration(t *testing.T) {
	dsn := os.Getenv("MSSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MSSQL_TEST_DSN not set; skipping MSSQL integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	const table = "dbo.layoffs_persist_test"
	repo, err := storage.New(ctx, storage.Config{Kind: "mssql", DSN: dsn, Table: table, Columns: schema.Columns})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	if err := storage.EnsureTable(ctx, "mssql", repo, table); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	n := int64(3)
	res, err := storage.Persist(ctx, repo, []schema.Record{{Company: "Acme", TotalLaidOff: &n}}, storage.PersistOptions{Table: table, Truncate: true})
	if err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if res.Rows != 1 {
		t.Fatalf("rows = %d, want 1", res.Rows)
	}
}

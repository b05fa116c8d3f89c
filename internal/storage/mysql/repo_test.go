package mysql

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"layoffs/internal/schema"
	"layoffs/internal/storage"
)

// TestRegistrationUsesNewRepositoryHook is not parallel: it swaps a package
// variable.
func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var gotCfg Config
	closed := false
	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{
		Kind: "mysql", DSN: "user:pass@tcp(localhost:3306)/layoffs", Table: "layoffs_clean", Columns: schema.Columns,
	})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg.Table != "layoffs_clean" || len(gotCfg.Columns) != len(schema.Columns) {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatalf("Close did not invoke closeFn")
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "no-database-separator"}); err == nil || !strings.Contains(err.Error(), "mysql dsn") {
		t.Fatalf("err = %v, want mysql dsn error", err)
	}
}

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	d := time.Date(2023, time.January, 5, 0, 0, 0, 0, time.UTC)
	stmt, args, err := insertSQL("db.layoffs", []string{"company", "date"}, [][]any{
		{"Acme", d},
		{"Beta", nil},
	})
	if err != nil {
		t.Fatalf("insertSQL: %v", err)
	}
	if want := "INSERT INTO `db`.`layoffs` (`company`, `date`) VALUES (?,?),(?,?)"; stmt != want {
		t.Fatalf("stmt = %s\nwant %s", stmt, want)
	}
	if diff := cmp.Diff([]any{"Acme", "2023-01-05", "Beta", nil}, args); diff != "" {
		t.Fatalf("args (-want +got):\n%s", diff)
	}

	if _, _, err := insertSQL("t", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatalf("expected row length error")
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	got, err := CreateTableSQL("layoffs_clean")
	if err != nil {
		t.Fatalf("CreateTableSQL: %v", err)
	}
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS `layoffs_clean` (",
		"`company` TEXT NOT NULL,",
		"`percentage_laid_off` DOUBLE,",
		"`date` DATE,",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("CreateTableSQL missing %q:\n%s", want, got)
		}
	}
	if quoteIdent("we`ird") != "`we``ird`" {
		t.Fatalf("quoteIdent did not escape backtick")
	}
}

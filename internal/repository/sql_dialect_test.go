package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestGreatestExprByDialectSQLite(t *testing.T) {
	got := greatestExprByDialect("sqlite", "total_earnings - ?", "0")
	want := "MAX(total_earnings - ?, 0)"
	if got != want {
		t.Fatalf("sqlite greatest expr mismatch, want %s got %s", want, got)
	}
}

func TestGreatestExprByDialectPostgres(t *testing.T) {
	got := greatestExprByDialect("postgres", "total_earnings - ?", "0")
	want := "GREATEST(total_earnings - ?, 0)"
	if got != want {
		t.Fatalf("postgres greatest expr mismatch, want %s got %s", want, got)
	}
}

func TestIsTableMissing(t *testing.T) {
	if isTableMissing(nil) {
		t.Fatalf("nil error should not be table missing")
	}
	if !isTableMissing(errors.New("no such table: affiliates")) {
		t.Fatalf("sqlite missing table error should match")
	}
	if !isTableMissing(&pgconn.PgError{Code: "42P01"}) {
		t.Fatalf("postgres undefined_table should match")
	}
	if isTableMissing(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("unique violation should not match")
	}
	if isTableMissing(errors.New("connection refused")) {
		t.Fatalf("unrelated error should not match")
	}
}

func TestNormalizeSchemaErr(t *testing.T) {
	if err := normalizeSchemaErr(nil); err != nil {
		t.Fatalf("nil should stay nil, got %v", err)
	}

	wrapped := normalizeSchemaErr(errors.New("no such table: king_midas_daily_stats"))
	if !errors.Is(wrapped, ErrTableMissing) {
		t.Fatalf("missing table should normalize to ErrTableMissing, got %v", wrapped)
	}

	passthrough := fmt.Errorf("disk io error")
	if got := normalizeSchemaErr(passthrough); got != passthrough {
		t.Fatalf("other errors should pass through, got %v", got)
	}
}

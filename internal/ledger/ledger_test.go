package ledger

import (
	"context"
	"strings"
	"testing"
)

func TestQueriesKeepRunAndOutcomesCorrelated(t *testing.T) {
	if !strings.Contains(createOutcomesTableQuery, "REFERENCES runs(run_id)") {
		t.Fatalf("expected outcome rows to reference their run")
	}
	if !strings.Contains(createOutcomesTableQuery, "PRIMARY KEY (run_id, seq)") {
		t.Fatalf("expected outcomes keyed by run and sequence")
	}
	if !strings.Contains(insertRunQuery, "dry_run") {
		t.Fatalf("expected the run row to record dry_run")
	}
	if !strings.Contains(insertOutcomeQuery, "error_message") {
		t.Fatalf("expected outcome rows to carry the error text")
	}
}

func TestNilStore(t *testing.T) {
	if NewStore(nil) != nil {
		t.Fatal("NewStore(nil) should return nil")
	}
	var s *Store
	if err := s.EnsureSchema(context.Background()); err == nil {
		t.Fatal("nil store EnsureSchema should error")
	}
}

func TestNullIfEmpty(t *testing.T) {
	if nullIfEmpty("") != nil {
		t.Fatal("empty string should map to NULL")
	}
	if nullIfEmpty("x") != "x" {
		t.Fatal("non-empty string should pass through")
	}
}

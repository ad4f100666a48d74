//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/GulmanM/Restraints-Quality-Calculator/internal/restraint"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to ensure schema: %v", err)
	}

	t.Cleanup(func() {
		// Truncate in dependency order
		_, _ = s.pool.Exec(ctx, "TRUNCATE restraint_run_records CASCADE")
		_, _ = s.pool.Exec(ctx, "TRUNCATE restraint_runs CASCADE")
		s.Close()
	})

	return s
}

func TestCreateAndGetRun(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	run := &Run{
		Source:      "integration-test",
		Pipeline:    "sh3-bench",
		Constants:   restraint.Constants{Ls: 10, Lx: 40, Ly: 35, Lz: 28},
		DecayName:   "reciprocal",
		RecordCount: 2,
		MeanOmega:   0.75,
		SigmaP:      0.41,
		SigmaL:      0.22,
		FinalScore:  0.0676,
	}
	records := []RunRecord{
		{RecordID: "8", X: 1, Y: 2, Z: 3, SL: 2, WI: 0.9, Dij: 1.5, FDij: 0.4, Omega: 0.36},
		{RecordID: "9", X: 9, Y: 8, Z: 7, SL: 7, WI: 0.6, Dij: 3.0, FDij: 0.25, Omega: 0.15},
	}

	if err := s.CreateRun(ctx, run, records); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	if run.ID == uuid.Nil {
		t.Fatal("expected non-nil run ID after create")
	}
	if run.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.FinalScore != run.FinalScore {
		t.Errorf("expected score %f, got %f", run.FinalScore, got.FinalScore)
	}
	if got.Constants != run.Constants {
		t.Errorf("constants mismatch: %+v vs %+v", got.Constants, run.Constants)
	}

	recs, err := s.GetRunRecords(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRunRecords failed: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].RecordID != "8" || recs[0].Omega != 0.36 {
		t.Errorf("unexpected first record %+v", recs[0])
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := setupTestDB(t)
	got, err := s.GetRun(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing run, got %+v", got)
	}
}

func TestListRunsFilter(t *testing.T) {
	s := setupTestDB(t)
	ctx := context.Background()

	for _, src := range []string{"api", "api", "cli"} {
		run := &Run{
			Source:      src,
			Constants:   restraint.Constants{Ls: 10, Lx: 10, Ly: 10, Lz: 10},
			DecayName:   "reciprocal",
			RecordCount: 1,
		}
		if err := s.CreateRun(ctx, run, []RunRecord{{RecordID: "1"}}); err != nil {
			t.Fatalf("CreateRun failed: %v", err)
		}
	}

	runs, err := s.ListRuns(ctx, RunFilter{Source: "api"})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 api runs, got %d", len(runs))
	}

	runs, err = s.ListRuns(ctx, RunFilter{Limit: 1})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected limit of 1, got %d", len(runs))
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.TotalRuns != 3 {
		t.Errorf("expected 3 total runs, got %d", st.TotalRuns)
	}
}

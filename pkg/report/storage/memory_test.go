package storage

import (
	"context"
	"testing"
	"time"

	"mercator-hq/prism/pkg/report"
)

func testRun(id string, startedAt time.Time, success bool) *report.RunRecord {
	return &report.RunRecord{
		ID:          id,
		StartedAt:   startedAt,
		FinishedAt:  startedAt.Add(50 * time.Millisecond),
		Duration:    50 * time.Millisecond,
		ToolVersion: "test",
		Success:     success,
	}
}

func seedRuns(t *testing.T, store *MemoryStorage, runs ...*report.RunRecord) {
	t.Helper()
	for _, run := range runs {
		if err := store.StoreRun(context.Background(), run); err != nil {
			t.Fatalf("StoreRun(%s) failed: %v", run.ID, err)
		}
	}
}

func TestMemoryStorage_RoundTrip(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()
	now := time.Now()

	run := testRun("run-1", now, true)
	seedRuns(t, store, run)

	decisions := []*report.Decision{
		{ID: "d-1", RunID: "run-1", Unit: "pool", Switch: "pool-impl", ArmIndex: 0, RecordedAt: now},
		{ID: "d-2", RunID: "run-1", Unit: "net", Switch: "transport", ArmIndex: -1, Empty: true, RecordedAt: now.Add(time.Millisecond)},
	}
	if err := store.StoreDecisions(ctx, decisions); err != nil {
		t.Fatalf("StoreDecisions() failed: %v", err)
	}

	runs, err := store.QueryRuns(ctx, &report.Query{RunID: "run-1"})
	if err != nil {
		t.Fatalf("QueryRuns() failed: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-1" {
		t.Fatalf("QueryRuns() = %v, want run-1", runs)
	}

	// Stored records are copies; mutating the original must not leak in.
	run.Success = false
	runs, _ = store.QueryRuns(ctx, &report.Query{RunID: "run-1"})
	if !runs[0].Success {
		t.Error("stored run shares memory with the caller's record")
	}

	got, err := store.QueryDecisions(ctx, &report.Query{RunID: "run-1", Unit: "net"})
	if err != nil {
		t.Fatalf("QueryDecisions() failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d-2" {
		t.Errorf("QueryDecisions(unit=net) = %v, want d-2", got)
	}
}

func TestMemoryStorage_QueryRuns_Filters(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()
	base := time.Now()

	seedRuns(t, store,
		testRun("old", base.Add(-2*time.Hour), true),
		testRun("failed", base.Add(-time.Hour), false),
		testRun("recent", base, true),
	)

	t.Run("newest first", func(t *testing.T) {
		runs, err := store.QueryRuns(ctx, &report.Query{})
		if err != nil {
			t.Fatalf("QueryRuns() failed: %v", err)
		}
		if len(runs) != 3 || runs[0].ID != "recent" || runs[2].ID != "old" {
			t.Errorf("order = %v, want newest first", runIDs(runs))
		}
	})

	t.Run("only failed", func(t *testing.T) {
		runs, err := store.QueryRuns(ctx, &report.Query{OnlyFailed: true})
		if err != nil {
			t.Fatalf("QueryRuns() failed: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "failed" {
			t.Errorf("runs = %v, want only the failed run", runIDs(runs))
		}
	})

	t.Run("since and until window", func(t *testing.T) {
		runs, err := store.QueryRuns(ctx, &report.Query{
			Since: base.Add(-90 * time.Minute),
			Until: base.Add(-30 * time.Minute),
		})
		if err != nil {
			t.Fatalf("QueryRuns() failed: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "failed" {
			t.Errorf("runs = %v, want the one run inside the window", runIDs(runs))
		}
	})

	t.Run("pagination", func(t *testing.T) {
		runs, err := store.QueryRuns(ctx, &report.Query{Limit: 1, Offset: 1})
		if err != nil {
			t.Fatalf("QueryRuns() failed: %v", err)
		}
		if len(runs) != 1 || runs[0].ID != "failed" {
			t.Errorf("page = %v, want the second-newest run", runIDs(runs))
		}

		runs, err = store.QueryRuns(ctx, &report.Query{Offset: 10})
		if err != nil {
			t.Fatalf("QueryRuns() failed: %v", err)
		}
		if len(runs) != 0 {
			t.Errorf("out-of-range page = %v, want empty", runIDs(runs))
		}
	})
}

func TestMemoryStorage_Deletion(t *testing.T) {
	store := NewMemoryStorage()
	ctx := context.Background()
	base := time.Now()

	seedRuns(t, store,
		testRun("a", base.Add(-3*time.Hour), true),
		testRun("b", base.Add(-2*time.Hour), true),
		testRun("c", base.Add(-time.Hour), true),
	)
	if err := store.StoreDecisions(ctx, []*report.Decision{
		{ID: "d-a", RunID: "a", Unit: "u", RecordedAt: base},
	}); err != nil {
		t.Fatalf("StoreDecisions() failed: %v", err)
	}

	deleted, err := store.DeleteRunsBefore(ctx, base.Add(-150*time.Minute))
	if err != nil {
		t.Fatalf("DeleteRunsBefore() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteRunsBefore() = %d, want 1", deleted)
	}

	// Deleting a run also drops its decisions.
	decisions, err := store.QueryDecisions(ctx, &report.Query{RunID: "a"})
	if err != nil {
		t.Fatalf("QueryDecisions() failed: %v", err)
	}
	if len(decisions) != 0 {
		t.Errorf("decisions for deleted run = %d, want 0", len(decisions))
	}

	oldest, err := store.OldestRuns(ctx, 1)
	if err != nil {
		t.Fatalf("OldestRuns() failed: %v", err)
	}
	if len(oldest) != 1 || oldest[0] != "b" {
		t.Errorf("OldestRuns(1) = %v, want [b]", oldest)
	}

	deleted, err = store.DeleteRuns(ctx, []string{"b", "missing"})
	if err != nil {
		t.Fatalf("DeleteRuns() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("DeleteRuns() = %d, want 1", deleted)
	}

	count, err := store.CountRuns(ctx)
	if err != nil {
		t.Fatalf("CountRuns() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("CountRuns() = %d, want 1", count)
	}
}

func runIDs(runs []*report.RunRecord) []string {
	ids := make([]string, 0, len(runs))
	for _, run := range runs {
		ids = append(ids, run.ID)
	}
	return ids
}

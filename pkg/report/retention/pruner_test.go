package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/prism/pkg/report"
	"mercator-hq/prism/pkg/report/storage"
)

func seedRun(t *testing.T, store report.Storage, id string, age time.Duration) {
	t.Helper()
	err := store.StoreRun(context.Background(), &report.RunRecord{
		ID:        id,
		StartedAt: time.Now().Add(-age),
		Success:   true,
	})
	if err != nil {
		t.Fatalf("StoreRun(%s) failed: %v", id, err)
	}
}

func TestPruner_ByAge(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRun(t, store, "ancient", 100*24*time.Hour)
	seedRun(t, store, "recent", 24*time.Hour)

	pruner := NewPruner(store, &Config{RetentionDays: 90})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() = %d, want 1", deleted)
	}

	count, _ := store.CountRuns(context.Background())
	if count != 1 {
		t.Errorf("remaining runs = %d, want 1", count)
	}
	runs, _ := store.QueryRuns(context.Background(), &report.Query{})
	if len(runs) != 1 || runs[0].ID != "recent" {
		t.Error("the recent run should survive age pruning")
	}
}

func TestPruner_ByCount(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRun(t, store, "oldest", 3*time.Hour)
	seedRun(t, store, "middle", 2*time.Hour)
	seedRun(t, store, "newest", time.Hour)

	pruner := NewPruner(store, &Config{MaxRuns: 2})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Prune() = %d, want 1", deleted)
	}

	runs, _ := store.QueryRuns(context.Background(), &report.Query{})
	for _, run := range runs {
		if run.ID == "oldest" {
			t.Error("count pruning kept the oldest run")
		}
	}
}

func TestPruner_ZeroConfigKeepsEverything(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRun(t, store, "ancient", 365*24*time.Hour)

	pruner := NewPruner(store, &Config{})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0", deleted)
	}

	count, _ := store.CountRuns(context.Background())
	if count != 1 {
		t.Errorf("remaining runs = %d, want 1", count)
	}
}

func TestPruner_UnderCountLimit(t *testing.T) {
	store := storage.NewMemoryStorage()
	seedRun(t, store, "only", time.Hour)

	pruner := NewPruner(store, &Config{MaxRuns: 10})
	deleted, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune() failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("Prune() = %d, want 0", deleted)
	}
}

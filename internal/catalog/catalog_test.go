package catalog

import (
	"context"
	"testing"

	"tierkit/internal/testsupport"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(testsupport.Config(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Begin(ctx, "anonymize", "/data/session.eaf", "/out")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Complete(ctx, id, 3, 5); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	runs, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(runs))
	}
	run := runs[0]
	if run.ID != id || run.Kind != "anonymize" || run.Status != StatusCompleted {
		t.Errorf("run = %+v", run)
	}
	if run.Segments != 3 || run.Outputs != 5 {
		t.Errorf("counters = %d/%d, want 3/5", run.Segments, run.Outputs)
	}
	if run.CreatedAt.IsZero() || run.UpdatedAt.IsZero() {
		t.Error("timestamps not recorded")
	}
}

func TestFailedRunKeepsError(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.Begin(ctx, "export", "/data/session.eaf", "/out")
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := store.Fail(ctx, id, "no WAV media"); err != nil {
		t.Fatalf("Fail: %v", err)
	}

	runs, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if runs[0].Status != StatusFailed || runs[0].Error != "no WAV media" {
		t.Errorf("run = %+v", runs[0])
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, transcript := range []string{"a.eaf", "b.eaf", "c.eaf"} {
		if _, err := store.Begin(ctx, "anonymize", transcript, "/out"); err != nil {
			t.Fatalf("Begin: %v", err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want limit of 2", len(runs))
	}
	if runs[0].Transcript != "c.eaf" || runs[1].Transcript != "b.eaf" {
		t.Errorf("order = %s, %s", runs[0].Transcript, runs[1].Transcript)
	}
}

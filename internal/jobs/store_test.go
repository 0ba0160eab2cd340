package jobs_test

import (
	"context"
	"path/filepath"
	"testing"

	"uniqvid/internal/jobs"
	"uniqvid/internal/profile"
)

func openStore(t *testing.T) *jobs.Store {
	t.Helper()
	store, err := jobs.Open(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job := &jobs.Job{
		ID:           "job-1",
		Source:       "/tmp/upload-1.mp4",
		OriginalName: "holiday.mp4",
		Copies:       5,
		Strength:     profile.StrengthHigh,
		Status:       jobs.StatusQueued,
	}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-1")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got == nil {
		t.Fatal("job not found after create")
	}
	if got.OriginalName != "holiday.mp4" || got.Copies != 5 ||
		got.Strength != profile.StrengthHigh || got.Status != jobs.StatusQueued {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatal("timestamps not persisted")
	}
}

func TestStoreUpdateJob(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job := &jobs.Job{ID: "job-2", Source: "s", Copies: 1, Strength: profile.StrengthMedium, Status: jobs.StatusQueued}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	job.Status = jobs.StatusRendering
	job.Produced = 2
	if err := store.UpdateJob(ctx, job); err != nil {
		t.Fatalf("UpdateJob: %v", err)
	}

	got, err := store.GetJob(ctx, "job-2")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got.Status != jobs.StatusRendering || got.Produced != 2 {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestStoreListJobsOrdersByCreation(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		job := &jobs.Job{ID: id, Source: "s", Copies: 1, Strength: profile.StrengthMedium, Status: jobs.StatusQueued}
		if err := store.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob %s: %v", id, err)
		}
	}

	list, err := store.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 jobs, got %d", len(list))
	}
	for i, want := range []string{"a", "b", "c"} {
		if list[i].ID != want {
			t.Fatalf("list[%d] = %s, want %s", i, list[i].ID, want)
		}
	}
}

func TestStoreDeleteJobIsIdempotent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	job := &jobs.Job{ID: "job-3", Source: "s", Copies: 1, Strength: profile.StrengthMedium, Status: jobs.StatusQueued}
	if err := store.CreateJob(ctx, job); err != nil {
		t.Fatalf("CreateJob: %v", err)
	}
	if err := store.DeleteJob(ctx, "job-3"); err != nil {
		t.Fatalf("DeleteJob: %v", err)
	}
	if err := store.DeleteJob(ctx, "job-3"); err != nil {
		t.Fatalf("second DeleteJob: %v", err)
	}
	got, err := store.GetJob(ctx, "job-3")
	if err != nil {
		t.Fatalf("GetJob: %v", err)
	}
	if got != nil {
		t.Fatalf("job still present after delete: %+v", got)
	}
}

func TestStorePruneClearsLeftovers(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, id := range []string{"x", "y"} {
		job := &jobs.Job{ID: id, Source: "s", Copies: 1, Strength: profile.StrengthMedium, Status: jobs.StatusRendering}
		if err := store.CreateJob(ctx, job); err != nil {
			t.Fatalf("CreateJob: %v", err)
		}
	}

	pruned, err := store.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if pruned != 2 {
		t.Fatalf("pruned %d rows, want 2", pruned)
	}
	list, err := store.ListJobs(ctx)
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty ledger, got %d rows", len(list))
	}
}

package intake_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"uniqvid/internal/config"
	"uniqvid/internal/intake"
)

func newStore(t *testing.T, maxFileMB int, opts ...intake.StoreOption) (*intake.Store, string) {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	cfg.Jobs.MaxFileMB = maxFileMB

	store, err := intake.NewStore(&cfg, nil, opts...)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store, filepath.Join(cfg.Paths.WorkDir, "uploads")
}

func TestSaveAndClaimRoundTrip(t *testing.T) {
	store, _ := newStore(t, 1)

	upload, err := store.Save("holiday.mp4", strings.NewReader("source bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if upload.OriginalName != "holiday.mp4" || upload.Size != int64(len("source bytes")) {
		t.Fatalf("unexpected upload %+v", upload)
	}
	if _, err := os.Stat(upload.Path); err != nil {
		t.Fatalf("upload file missing: %v", err)
	}

	claimed, err := store.Claim(upload.ID)
	if err != nil {
		t.Fatalf("Claim: %v", err)
	}
	if claimed.Path != upload.Path {
		t.Fatalf("claimed path %q, want %q", claimed.Path, upload.Path)
	}

	// Tokens are one-shot.
	if _, err := store.Claim(upload.ID); !errors.Is(err, intake.ErrUnknownUpload) {
		t.Fatalf("second claim: expected ErrUnknownUpload, got %v", err)
	}
}

func TestSaveRejectsOversizedUploadBeforeAnyJobExists(t *testing.T) {
	store, uploads := newStore(t, 1)

	oversized := bytes.Repeat([]byte("x"), 1024*1024+1)
	_, err := store.Save("big.mp4", bytes.NewReader(oversized))
	if !errors.Is(err, intake.ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}

	// Nothing may linger on disk after the rejection.
	entries, err := os.ReadDir(uploads)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected upload left %d files behind", len(entries))
	}
}

func TestSaveAcceptsUploadAtExactLimit(t *testing.T) {
	store, _ := newStore(t, 1)

	payload := bytes.Repeat([]byte("x"), 1024*1024)
	upload, err := store.Save("exact.mp4", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("Save at limit: %v", err)
	}
	if upload.Size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", upload.Size, len(payload))
	}
}

func TestExpiredUploadIsRejectedAndFileRemoved(t *testing.T) {
	now := time.Now()
	clock := &now
	store, _ := newStore(t, 1, intake.WithClock(func() time.Time { return *clock }))

	upload, err := store.Save("reel.mp4", strings.NewReader("bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := now.Add(time.Hour)
	*clock = later

	if _, err := store.Claim(upload.ID); !errors.Is(err, intake.ErrUploadExpired) {
		t.Fatalf("expected ErrUploadExpired, got %v", err)
	}
	if _, err := os.Stat(upload.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expired upload file still present: %v", err)
	}
}

func TestSweepRemovesExpiredUploads(t *testing.T) {
	now := time.Now()
	clock := &now
	store, _ := newStore(t, 1, intake.WithClock(func() time.Time { return *clock }))

	first, err := store.Save("a.mp4", strings.NewReader("a"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := now.Add(time.Hour)
	*clock = later
	if removed := store.Sweep(); removed != 1 {
		t.Fatalf("Sweep removed %d, want 1", removed)
	}
	if _, err := os.Stat(first.Path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("swept upload file still present")
	}
}


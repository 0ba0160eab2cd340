package variant_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"uniqvid/internal/config"
	"uniqvid/internal/media"
	"uniqvid/internal/profile"
	"uniqvid/internal/render"
	"uniqvid/internal/variant"
)

type stubProber struct {
	info *media.Info
	err  error
}

func (s *stubProber) Probe(_ context.Context, path string) (*media.Info, error) {
	if s.err != nil {
		return nil, s.err
	}
	info := *s.info
	info.Path = path
	return &info, nil
}

type stubEncoder struct {
	calls   int
	failOn  int
	outputs []string
}

func (s *stubEncoder) Encode(_ context.Context, _ render.Plan, overlayPath, outputPath string) error {
	s.calls++
	if s.failOn != 0 && s.calls == s.failOn {
		return fmt.Errorf("%w: boom", render.ErrEncodeFailed)
	}
	if err := os.WriteFile(outputPath, []byte("video"), 0o644); err != nil {
		return err
	}
	s.outputs = append(s.outputs, outputPath)
	return nil
}

func testInfo() *media.Info {
	return &media.Info{
		Width:       1280,
		Height:      720,
		Duration:    8,
		FrameRate:   30,
		HasAudio:    true,
		BitrateKbps: 2500,
	}
}

func newService(t *testing.T, encoder variant.Encoder, prober variant.Prober) *variant.Service {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.WorkDir = t.TempDir()
	service, err := variant.NewService(&cfg, nil, variant.WithProber(prober), variant.WithEncoder(encoder))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return service
}

func TestUniqueVideoProducesRequestedCopies(t *testing.T) {
	encoder := &stubEncoder{}
	service := newService(t, encoder, &stubProber{info: testInfo()})

	outputDir := t.TempDir()
	input := filepath.Join(t.TempDir(), "reel.mp4")

	var seen []int
	var seenPaths []string
	paths, err := service.UniqueVideo(context.Background(), input, 4, outputDir, profile.StrengthMedium,
		func(index int, path string) {
			seen = append(seen, index)
			seenPaths = append(seenPaths, path)
		})
	if err != nil {
		t.Fatalf("UniqueVideo: %v", err)
	}
	if len(paths) != 4 {
		t.Fatalf("expected 4 paths, got %d", len(paths))
	}
	for i, p := range paths {
		want := filepath.Join(outputDir, fmt.Sprintf("reel_%d.mp4", i+1))
		if p != want {
			t.Fatalf("path %d = %q, want %q", i, p, want)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("output %q missing: %v", p, err)
		}
	}
	if len(seen) != 4 || seen[3] != 4 {
		t.Fatalf("progress callbacks = %v, want 1..4", seen)
	}
	for i, p := range seenPaths {
		if p != paths[i] {
			t.Fatalf("progress path %d = %q, want %q", i, p, paths[i])
		}
	}
}

func TestUniqueVideoStopsAtFirstFailure(t *testing.T) {
	encoder := &stubEncoder{failOn: 3}
	service := newService(t, encoder, &stubProber{info: testInfo()})

	paths, err := service.UniqueVideo(context.Background(),
		filepath.Join(t.TempDir(), "reel.mp4"), 5, t.TempDir(), profile.StrengthLow, nil)
	if !errors.Is(err, render.ErrEncodeFailed) {
		t.Fatalf("expected ErrEncodeFailed, got %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected the 2 copies produced before the failure, got %d", len(paths))
	}
	if encoder.calls != 3 {
		t.Fatalf("expected encoding to stop after the failure, got %d calls", encoder.calls)
	}
}

func TestUniqueVideoDefaultsToSiblingDirectory(t *testing.T) {
	sourceDir := t.TempDir()
	input := filepath.Join(sourceDir, "clip.mp4")
	service := newService(t, &stubEncoder{}, &stubProber{info: testInfo()})

	paths, err := service.UniqueVideo(context.Background(), input, 1, "", profile.StrengthMedium, nil)
	if err != nil {
		t.Fatalf("UniqueVideo: %v", err)
	}
	want := filepath.Join(sourceDir, variant.DefaultOutputDirName, "clip_1.mp4")
	if len(paths) != 1 || paths[0] != want {
		t.Fatalf("paths = %v, want [%s]", paths, want)
	}
}

func TestUniqueVideoSurvivesPanickingProgressCallback(t *testing.T) {
	service := newService(t, &stubEncoder{}, &stubProber{info: testInfo()})

	paths, err := service.UniqueVideo(context.Background(),
		filepath.Join(t.TempDir(), "clip.mp4"), 2, t.TempDir(), profile.StrengthMedium,
		func(index int, path string) { panic("listener went away") })
	if err != nil {
		t.Fatalf("UniqueVideo: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}
}

func TestUniqueVideoRejectsNonPositiveCopies(t *testing.T) {
	service := newService(t, &stubEncoder{}, &stubProber{info: testInfo()})
	if _, err := service.UniqueVideo(context.Background(), "in.mp4", 0, t.TempDir(), profile.StrengthMedium, nil); err == nil {
		t.Fatal("expected error for zero copies")
	}
}

func TestUniqueVideoPropagatesProbeFailure(t *testing.T) {
	service := newService(t, &stubEncoder{}, &stubProber{err: media.ErrUnreadableMedia})
	_, err := service.UniqueVideo(context.Background(), "in.mp4", 2, t.TempDir(), profile.StrengthMedium, nil)
	if !errors.Is(err, media.ErrUnreadableMedia) {
		t.Fatalf("expected ErrUnreadableMedia, got %v", err)
	}
}

func TestUniqueVideoHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	encoder := &stubEncoder{}
	service := newService(t, encoder, &stubProber{info: testInfo()})

	cancel()
	paths, err := service.UniqueVideo(ctx, filepath.Join(t.TempDir(), "clip.mp4"), 3, t.TempDir(), profile.StrengthMedium, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(paths) != 0 || encoder.calls != 0 {
		t.Fatalf("expected no encodes after cancellation, got %d paths %d calls", len(paths), encoder.calls)
	}
}

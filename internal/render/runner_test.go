package render_test

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"uniqvid/internal/profile"
	"uniqvid/internal/render"
)

type stubExecutor struct {
	calls    int
	lastArgs []string
	err      error
	onRun    func(args []string) error
}

func (s *stubExecutor) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	s.calls++
	s.lastArgs = args
	if s.onRun != nil {
		if err := s.onRun(args); err != nil {
			return nil, err
		}
	}
	return nil, s.err
}

func mediumPlan(t *testing.T) render.Plan {
	t.Helper()
	src := sourceInfo()
	sampler := profile.NewSamplerWithRand(profile.StrengthMedium, rand.New(rand.NewSource(5)))
	return render.BuildPlan(src, sampler, render.Options{MaxDim: 720, Threads: 1, Preset: "veryfast"})
}

func TestRunnerEncodeWritesOverlayAndChecksOutput(t *testing.T) {
	dir := t.TempDir()
	overlayPath := filepath.Join(dir, "overlay.png")
	outputPath := filepath.Join(dir, "clip_1.mp4")

	exec := &stubExecutor{onRun: func(args []string) error {
		return os.WriteFile(outputPath, []byte("encoded"), 0o644)
	}}
	runner, err := render.NewRunner("ffmpeg", nil, render.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	plan := mediumPlan(t)
	if err := runner.Encode(context.Background(), plan, overlayPath, outputPath); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if exec.calls != 1 {
		t.Fatalf("expected one ffmpeg invocation, got %d", exec.calls)
	}

	file, err := os.Open(overlayPath)
	if err != nil {
		t.Fatalf("overlay not written: %v", err)
	}
	defer file.Close()
	img, err := png.Decode(file)
	if err != nil {
		t.Fatalf("overlay is not a png: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != plan.OutW || bounds.Dy() != plan.OutH {
		t.Fatalf("overlay %dx%d does not match output frame %dx%d",
			bounds.Dx(), bounds.Dy(), plan.OutW, plan.OutH)
	}
}

func TestRunnerEncodeSurfacesFfmpegFailure(t *testing.T) {
	dir := t.TempDir()
	exec := &stubExecutor{err: fmt.Errorf("exit status 1")}
	runner, err := render.NewRunner("ffmpeg", nil, render.WithExecutor(exec))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	err = runner.Encode(context.Background(), mediumPlan(t),
		filepath.Join(dir, "overlay.png"), filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, render.ErrEncodeFailed) {
		t.Fatalf("expected ErrEncodeFailed, got %v", err)
	}
}

func TestRunnerEncodeRejectsMissingOutput(t *testing.T) {
	dir := t.TempDir()
	runner, err := render.NewRunner("ffmpeg", nil, render.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}

	err = runner.Encode(context.Background(), mediumPlan(t),
		filepath.Join(dir, "overlay.png"), filepath.Join(dir, "out.mp4"))
	if !errors.Is(err, render.ErrEncodeFailed) {
		t.Fatalf("expected ErrEncodeFailed for missing output, got %v", err)
	}
}

func TestNewRunnerRequiresBinary(t *testing.T) {
	if _, err := render.NewRunner("  ", nil); err == nil {
		t.Fatal("expected error for blank binary")
	}
}

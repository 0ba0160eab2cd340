package render

import (
	"context"
	"errors"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"uniqvid/internal/logging"
	"uniqvid/internal/media"
)

// ErrEncodeFailed marks ffmpeg invocations that did not produce a usable
// output file.
var ErrEncodeFailed = errors.New("encode failed")

// Runner drives ffmpeg for a single plan.
type Runner struct {
	binary string
	exec   media.Executor
	logger *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(executor media.Executor) RunnerOption {
	return func(r *Runner) {
		if executor != nil {
			r.exec = executor
		}
	}
}

// NewRunner creates a runner for the given ffmpeg binary.
func NewRunner(binary string, logger *slog.Logger, opts ...RunnerOption) (*Runner, error) {
	if strings.TrimSpace(binary) == "" {
		return nil, fmt.Errorf("ffmpeg binary not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	runner := &Runner{binary: binary, exec: media.NewCommandExecutor(), logger: logger}
	for _, opt := range opts {
		opt(runner)
	}
	return runner, nil
}

// Encode rasterizes the plan's overlay element to overlayPath, runs ffmpeg,
// and verifies that outputPath exists and is non-empty. The overlay PNG is
// left in place for the caller's workspace cleanup.
func (r *Runner) Encode(ctx context.Context, plan Plan, overlayPath, outputPath string) error {
	if err := WriteOverlayPNG(plan, overlayPath); err != nil {
		return fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	args := plan.Args(overlayPath, outputPath)
	r.logger.Debug("running ffmpeg",
		logging.String("binary", r.binary),
		logging.String("output", outputPath),
		logging.Int("bitrate_kbps", plan.BitrateKbps))

	if _, err := r.exec.Run(ctx, r.binary, args); err != nil {
		return fmt.Errorf("%w: %s", ErrEncodeFailed, describeExecError(err))
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return fmt.Errorf("%w: output missing: %v", ErrEncodeFailed, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%w: output empty: %s", ErrEncodeFailed, outputPath)
	}
	return nil
}

// WriteOverlayPNG renders the plan's overlay element at the output frame size
// and writes it as a PNG.
func WriteOverlayPNG(plan Plan, path string) error {
	buf, err := plan.Element.Render(plan.OutW, plan.OutH)
	if err != nil {
		return fmt.Errorf("render overlay: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create overlay file: %w", err)
	}
	if err := png.Encode(file, buf.Image); err != nil {
		file.Close()
		return fmt.Errorf("encode overlay png: %w", err)
	}
	return file.Close()
}

// describeExecError folds the stderr tail into the message when the executor
// surfaces an *exec.ExitError.
func describeExecError(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Sprintf("%v: %s", err, tailLines(string(exitErr.Stderr), 5))
	}
	return err.Error()
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}

// Package delivery publishes rendered variant files to their destination.
// Files are delivered one at a time so a single bad file cannot sink the
// rest of a job's output.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"uniqvid/internal/fileutil"
	"uniqvid/internal/logging"
)

// ErrNothingDelivered marks a delivery where no file reached the destination.
var ErrNothingDelivered = errors.New("nothing delivered")

// Result summarizes one delivery attempt.
type Result struct {
	Dir       string
	Delivered []string
	Failed    int
}

// Deliverer publishes a job's output files.
type Deliverer interface {
	Deliver(ctx context.Context, jobID string, files []string) (Result, error)
}

// DirDeliverer copies outputs into a per-job directory under a results root.
type DirDeliverer struct {
	root   string
	logger *slog.Logger
}

// NewDirDeliverer creates a deliverer rooted at resultsDir.
func NewDirDeliverer(resultsDir string, logger *slog.Logger) (*DirDeliverer, error) {
	if resultsDir == "" {
		return nil, fmt.Errorf("results directory not configured")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &DirDeliverer{
		root:   resultsDir,
		logger: logging.NewComponentLogger(logger, "delivery"),
	}, nil
}

// Deliver copies files into root/{jobID}/. Each file is attempted
// independently; failures are counted and logged. The returned error is
// non-nil only when the destination cannot be created or no file at all was
// delivered.
func (d *DirDeliverer) Deliver(ctx context.Context, jobID string, files []string) (Result, error) {
	dir := filepath.Join(d.root, jobID)
	result := Result{Dir: dir}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("create delivery directory: %w", err)
	}

	for _, src := range files {
		if err := ctx.Err(); err != nil {
			result.Failed += len(files) - len(result.Delivered) - result.Failed
			return result, err
		}

		dst := filepath.Join(dir, filepath.Base(src))
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			result.Failed++
			d.logger.Error("file delivery failed",
				logging.String(logging.FieldJobID, jobID),
				logging.String("file", src),
				logging.Error(err))
			continue
		}
		result.Delivered = append(result.Delivered, dst)
	}

	if len(files) > 0 && len(result.Delivered) == 0 {
		return result, fmt.Errorf("%w: %d files failed", ErrNothingDelivered, result.Failed)
	}
	return result, nil
}

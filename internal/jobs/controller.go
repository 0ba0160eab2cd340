package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"uniqvid/internal/config"
	"uniqvid/internal/delivery"
	"uniqvid/internal/logging"
	"uniqvid/internal/profile"
	"uniqvid/internal/variant"
)

// ErrShuttingDown is returned by Submit once Stop has begun.
var ErrShuttingDown = errors.New("controller shutting down")

// Generator produces the variant copies for one job.
type Generator interface {
	UniqueVideo(ctx context.Context, input string, copies int, outputDir string, strength profile.Strength, progress variant.Progress) ([]string, error)
}

// Notifier receives job lifecycle events. Implementations must not block for
// long; they run on the job goroutine.
type Notifier interface {
	JobQueued(ctx context.Context, job *Job)
	JobCompleted(ctx context.Context, job *Job)
	JobFailed(ctx context.Context, job *Job, cause error)
}

// SubmitRequest describes one job to enqueue. Source must be a file the
// controller may delete during cleanup.
type SubmitRequest struct {
	Source       string
	OriginalName string
	Copies       int
	Strength     string
}

// Controller owns the worker pool. At most Workers jobs render concurrently;
// queued jobs wait on the semaphore. Delivery happens after the render slot
// is released, so a slow results disk never starves the encoders.
type Controller struct {
	store     *Store
	generator Generator
	deliverer delivery.Deliverer
	notifier  Notifier
	logger    *slog.Logger

	slots     chan struct{}
	maxCopies int
	workRoot  string

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewController wires a controller from configuration. The notifier may be
// nil.
func NewController(cfg *config.Config, store *Store, generator Generator, deliverer delivery.Deliverer, notifier Notifier, logger *slog.Logger) (*Controller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("controller requires configuration")
	}
	if store == nil || generator == nil || deliverer == nil {
		return nil, fmt.Errorf("controller requires store, generator, and deliverer")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	workers := cfg.Jobs.Workers
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		store:     store,
		generator: generator,
		deliverer: deliverer,
		notifier:  notifier,
		logger:    logging.NewComponentLogger(logger, "jobs"),
		slots:     make(chan struct{}, workers),
		maxCopies: cfg.Jobs.MaxCopies,
		workRoot:  cfg.Paths.WorkDir,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Submit records a job and starts it in the background. The copy count is
// clamped to [1, max_copies]; unknown strength names fall back to medium.
func (c *Controller) Submit(ctx context.Context, req SubmitRequest) (*Job, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrShuttingDown
	}
	c.wg.Add(1)
	c.mu.Unlock()

	copies := req.Copies
	if copies < 1 {
		copies = 1
	}
	if c.maxCopies > 0 && copies > c.maxCopies {
		copies = c.maxCopies
	}

	job := &Job{
		ID:           uuid.NewString(),
		Source:       req.Source,
		OriginalName: req.OriginalName,
		Copies:       copies,
		Strength:     profile.ParseStrength(req.Strength),
		Status:       StatusQueued,
	}
	if err := c.store.CreateJob(ctx, job); err != nil {
		c.wg.Done()
		return nil, fmt.Errorf("record job: %w", err)
	}

	c.logger.Info("job queued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String(logging.FieldSource, job.OriginalName),
		logging.Int("copies", job.Copies),
		logging.String(logging.FieldStrength, string(job.Strength)))
	if c.notifier != nil {
		c.notifier.JobQueued(ctx, job)
	}

	// The run goroutine owns job from here on; callers get a snapshot so
	// concurrent reads never race with status updates.
	snapshot := *job
	go c.run(job)
	return &snapshot, nil
}

// Job returns the ledger row for id, or nil when the job is no longer
// active.
func (c *Controller) Job(ctx context.Context, id string) (*Job, error) {
	return c.store.GetJob(ctx, id)
}

// Jobs lists the active jobs in creation order.
func (c *Controller) Jobs(ctx context.Context) ([]*Job, error) {
	return c.store.ListJobs(ctx)
}

// Stop refuses new submissions, cancels in-flight work, and waits for all
// job goroutines (including their cleanup) to finish or for ctx to expire.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.cancel()

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) run(job *Job) {
	defer c.wg.Done()

	workspace := filepath.Join(c.workRoot, job.ID)
	log := c.logger.With(logging.String(logging.FieldJobID, job.ID))

	cleanup := sync.OnceFunc(func() {
		if err := os.RemoveAll(workspace); err != nil {
			log.Warn("workspace cleanup failed", logging.Error(err))
		}
		if err := os.Remove(job.Source); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("source cleanup failed", logging.Error(err))
		}
		if err := c.store.DeleteJob(context.Background(), job.ID); err != nil {
			log.Warn("ledger cleanup failed", logging.Error(err))
		}
	})
	defer cleanup()

	// Hold a render slot for the encode phase only.
	select {
	case c.slots <- struct{}{}:
	case <-c.ctx.Done():
		c.fail(job, cleanup, fmt.Errorf("%w: daemon stopping before render", ErrEncode))
		return
	}
	release := sync.OnceFunc(func() { <-c.slots })
	defer release()

	if err := os.MkdirAll(workspace, 0o755); err != nil {
		c.fail(job, cleanup, fmt.Errorf("%w: create workspace: %v", ErrIntake, err))
		return
	}

	c.setStatus(job, StatusRendering)
	outputDir := filepath.Join(workspace, "out")
	produced, err := c.generator.UniqueVideo(c.ctx, job.Source, job.Copies, outputDir, job.Strength,
		func(index int, path string) {
			log.Info("copy finished", logging.Int(logging.FieldCopyIndex, index), logging.String("output", path))
		})
	job.Produced = len(produced)
	release()
	if err != nil {
		c.fail(job, cleanup, Classify(err))
		return
	}

	c.setStatus(job, StatusDelivering)
	result, err := c.deliverer.Deliver(c.ctx, job.ID, produced)
	job.Delivered = len(result.Delivered)
	job.ResultDir = result.Dir
	if err != nil {
		c.fail(job, cleanup, Classify(err))
		return
	}

	cleanup()
	job.Status = StatusCompleted
	log.Info("job completed",
		logging.Int("produced", job.Produced),
		logging.Int("delivered", job.Delivered),
		logging.String("result_dir", job.ResultDir))
	if c.notifier != nil {
		c.notifier.JobCompleted(context.Background(), job)
	}
}

// fail records the terminal failure after cleanup has run.
func (c *Controller) fail(job *Job, cleanup func(), cause error) {
	cleanup()
	job.Status = StatusFailed
	job.ErrorMessage = cause.Error()
	c.logger.Error("job failed",
		logging.String(logging.FieldJobID, job.ID),
		logging.Int("produced", job.Produced),
		logging.Error(cause))
	if c.notifier != nil {
		c.notifier.JobFailed(context.Background(), job, cause)
	}
}

// setStatus persists a non-terminal transition. Ledger write failures are
// logged and do not interrupt the job.
func (c *Controller) setStatus(job *Job, status Status) {
	job.Status = status
	if err := c.store.UpdateJob(context.Background(), job); err != nil {
		c.logger.Warn("status update failed",
			logging.String(logging.FieldJobID, job.ID),
			logging.String("status", string(status)),
			logging.Error(err))
	}
}

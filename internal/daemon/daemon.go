package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"uniqvid/internal/config"
	"uniqvid/internal/intake"
	"uniqvid/internal/jobs"
	"uniqvid/internal/logging"
)

// Daemon coordinates the background services and enforces single-instance
// execution.
type Daemon struct {
	cfg        *config.Config
	logger     *slog.Logger
	controller *jobs.Controller
	uploads    *intake.Store
	api        *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, controller *jobs.Controller, uploads *intake.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || controller == nil || uploads == nil {
		return nil, errors.New("daemon requires config, controller, and upload store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "uniqvidd.lock")
	d := &Daemon{
		cfg:        cfg,
		logger:     logging.NewComponentLogger(logger, "daemon"),
		controller: controller,
		uploads:    uploads,
		lockPath:   lockPath,
		lock:       flock.New(lockPath),
	}
	api, err := newAPIServer(cfg, controller, uploads, logger)
	if err != nil {
		return nil, err
	}
	d.api = api
	return d, nil
}

// Start acquires the daemon lock, starts the API server, and launches the
// upload sweeper.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another uniqvid daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	if err := d.api.start(d.ctx); err != nil {
		_ = d.lock.Unlock()
		d.cancel()
		return err
	}
	go d.sweepLoop(d.ctx)

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API, drains in-flight jobs, and releases the lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	d.api.stop()

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.controller.Stop(stopCtx); err != nil {
		d.logger.Warn("jobs did not drain before shutdown deadline", logging.Error(err))
	}
	d.uploads.Close()

	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Addr reports the API listen address once started.
func (d *Daemon) Addr() string {
	return d.api.addr()
}

// LockPath returns the single-instance lock file location.
func (d *Daemon) LockPath() string {
	return d.lockPath
}

func (d *Daemon) sweepLoop(ctx context.Context) {
	interval := time.Duration(d.cfg.Jobs.SessionTTLSeconds) * time.Second / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := d.uploads.Sweep(); removed > 0 {
				d.logger.Info("expired uploads removed", logging.Int("count", removed))
			}
		}
	}
}

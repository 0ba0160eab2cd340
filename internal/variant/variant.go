// Package variant produces randomized, visually near-identical copies of a
// source video. Each copy draws an independent parameter set, so no two
// outputs share a transform chain or an overlay element.
package variant

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"uniqvid/internal/config"
	"uniqvid/internal/logging"
	"uniqvid/internal/media"
	"uniqvid/internal/profile"
	"uniqvid/internal/render"
)

// DefaultOutputDirName is used when the caller does not name an output
// directory: a sibling of the source file.
const DefaultOutputDirName = "unique"

// Progress is invoked after each copy finishes, with the 1-based copy index
// and the produced file path. Callbacks are advisory; a panicking callback is
// logged and ignored so it cannot abort the run.
type Progress func(index int, path string)

// Prober reports stream metadata for a source file.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
}

// Encoder runs one resolved plan to completion.
type Encoder interface {
	Encode(ctx context.Context, plan render.Plan, overlayPath, outputPath string) error
}

// Service generates variant copies.
type Service struct {
	prober  Prober
	encoder Encoder
	opts    render.Options
	workDir string
	logger  *slog.Logger
}

// Option adjusts service construction, primarily for tests.
type Option func(*Service)

// WithProber replaces the ffprobe-backed prober.
func WithProber(p Prober) Option {
	return func(s *Service) {
		if p != nil {
			s.prober = p
		}
	}
}

// WithEncoder replaces the ffmpeg-backed encoder.
func WithEncoder(e Encoder) Option {
	return func(s *Service) {
		if e != nil {
			s.encoder = e
		}
	}
}

// NewService wires a variant service from configuration.
func NewService(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, fmt.Errorf("variant service requires configuration")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	prober, err := media.NewProber(cfg.FFprobeBinary())
	if err != nil {
		return nil, err
	}
	runner, err := render.NewRunner(cfg.FFmpegBinary(), logger)
	if err != nil {
		return nil, err
	}

	service := &Service{
		prober:  prober,
		encoder: runner,
		opts: render.Options{
			MaxDim:  cfg.Video.MaxDim,
			Threads: cfg.Video.Threads,
			Preset:  cfg.Video.Preset,
		},
		workDir: cfg.Paths.WorkDir,
		logger:  logging.NewComponentLogger(logger, "variant"),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// UniqueVideo renders copies randomized variants of inputPath into outputDir
// and returns the produced file paths in order. When outputDir is empty, a
// "unique" directory beside the source is used. On a copy failure the paths
// produced so far are returned together with the error; remaining copies are
// not attempted.
func (s *Service) UniqueVideo(ctx context.Context, inputPath string, copies int, outputDir string, strength profile.Strength, progress Progress) ([]string, error) {
	if copies <= 0 {
		return nil, fmt.Errorf("copy count must be positive, got %d", copies)
	}
	if outputDir == "" {
		outputDir = filepath.Join(filepath.Dir(inputPath), DefaultOutputDirName)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	info, err := s.prober.Probe(ctx, inputPath)
	if err != nil {
		return nil, err
	}

	scratch, err := os.MkdirTemp(s.scratchRoot(), "variant-")
	if err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	s.logger.Info("generating variants",
		logging.String(logging.FieldSource, inputPath),
		logging.Int("copies", copies),
		logging.String(logging.FieldStrength, string(strength)))

	produced := make([]string, 0, copies)
	for i := 1; i <= copies; i++ {
		if err := ctx.Err(); err != nil {
			return produced, err
		}

		sampler := profile.NewSampler(strength)
		plan := render.BuildPlan(*info, sampler, s.opts)
		overlayPath := filepath.Join(scratch, fmt.Sprintf("overlay_%d.png", i))
		outputPath := filepath.Join(outputDir, render.OutputName(inputPath, i))

		if err := s.encoder.Encode(ctx, plan, overlayPath, outputPath); err != nil {
			return produced, fmt.Errorf("copy %d of %d: %w", i, copies, err)
		}
		produced = append(produced, outputPath)

		s.logger.Info("variant ready",
			logging.Int(logging.FieldCopyIndex, i),
			logging.Int("total", copies),
			logging.String("output", outputPath))
		s.notify(progress, i, outputPath)
	}
	return produced, nil
}

func (s *Service) scratchRoot() string {
	if s.workDir == "" {
		return os.TempDir()
	}
	return s.workDir
}

// notify shields the run from misbehaving progress callbacks.
func (s *Service) notify(progress Progress, index int, path string) {
	if progress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("progress callback panicked", logging.Any("panic", r))
		}
	}()
	progress(index, path)
}

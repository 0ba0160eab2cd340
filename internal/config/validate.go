package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateJobs(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.WorkDir == "" {
		return errors.New("paths.work_dir must be set")
	}
	if c.Paths.ResultsDir == "" {
		return errors.New("paths.results_dir must be set")
	}
	if c.Paths.WorkDir == c.Paths.ResultsDir {
		return errors.New("paths.work_dir and paths.results_dir must differ; job cleanup removes the work dir")
	}
	return nil
}

func (c *Config) validateJobs() error {
	if c.Jobs.Workers < 1 {
		return errors.New("jobs.workers must be at least 1")
	}
	if c.Jobs.MaxCopies < 1 {
		return errors.New("jobs.max_copies must be at least 1")
	}
	if c.Jobs.MaxFileMB < 1 {
		return errors.New("jobs.max_file_mb must be at least 1")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.MaxDim < 2 {
		return errors.New("video.max_dim must be at least 2")
	}
	if c.Video.Threads < 1 {
		return errors.New("video.threads must be at least 1")
	}
	switch c.Video.DefaultStrength {
	case "low", "medium", "high":
	default:
		return fmt.Errorf("video.default_strength must be low, medium, or high, got %q", c.Video.DefaultStrength)
	}
	return nil
}

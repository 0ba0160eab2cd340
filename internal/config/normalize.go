package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeJobs()
	c.normalizeVideo()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeJobs() {
	c.Jobs.Workers = envIntOverride("WORKERS", c.Jobs.Workers)
	c.Jobs.MaxCopies = envIntOverride("MAX_COPIES", c.Jobs.MaxCopies)
	c.Jobs.MaxFileMB = envIntOverride("MAX_FILE_MB", c.Jobs.MaxFileMB)
	if c.Jobs.Workers <= 0 {
		c.Jobs.Workers = defaultWorkers
	}
	if c.Jobs.MaxCopies <= 0 {
		c.Jobs.MaxCopies = defaultMaxCopies
	}
	if c.Jobs.MaxFileMB <= 0 {
		c.Jobs.MaxFileMB = defaultMaxFileMB
	}
	if c.Jobs.SessionTTLSeconds <= 0 {
		c.Jobs.SessionTTLSeconds = defaultSessionTTLSeconds
	}
}

func (c *Config) normalizeVideo() {
	c.Video.MaxDim = envIntOverride("MAX_DIM", c.Video.MaxDim)
	c.Video.Threads = envIntOverride("VIDEO_THREADS", c.Video.Threads)
	if value, ok := os.LookupEnv("FFMPEG_PRESET"); ok && strings.TrimSpace(value) != "" {
		c.Video.Preset = strings.TrimSpace(value)
	}
	if c.Video.MaxDim <= 0 {
		c.Video.MaxDim = defaultMaxDim
	}
	if c.Video.Threads <= 0 {
		c.Video.Threads = defaultVideoThreads
	}
	c.Video.Preset = strings.TrimSpace(c.Video.Preset)
	if c.Video.Preset == "" {
		c.Video.Preset = defaultFFmpegPreset
	}
	c.Video.DefaultStrength = strings.ToLower(strings.TrimSpace(c.Video.DefaultStrength))
	if c.Video.DefaultStrength == "" {
		c.Video.DefaultStrength = defaultStrength
	}
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = strings.TrimSpace(value)
		}
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envIntOverride(name string, current int) int {
	value, ok := os.LookupEnv(name)
	if !ok {
		return current
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return current
	}
	return parsed
}

// Package logging builds the slog loggers used across uniqvid and provides
// shared attribute helpers so log fields stay consistent between the daemon,
// the CLI, and the job pipeline.
package logging

// Package daemon runs the long-lived uniqvid service: it enforces
// single-instance execution with a lock file, owns the HTTP intake API, and
// sweeps expired uploads in the background.
package daemon

// Package api defines the wire-format types shared by the daemon's HTTP
// surface and the CLI, plus a small client for talking to a running daemon.
// DTOs use snake_case JSON tags and expose internal enums as lowercase
// strings so consumers never couple to internal types.
package api

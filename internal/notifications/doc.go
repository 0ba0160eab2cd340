// Package notifications pushes job lifecycle events to an ntfy topic.
//
// The service degrades to a no-op when no topic is configured, so callers
// never guard their calls. Send failures are logged, not surfaced: a dead
// notification channel must not fail a job.
package notifications

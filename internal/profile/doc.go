// Package profile defines the named transformation strength profiles and the
// sampler that draws randomized variant parameters from them. Every sampler
// owns its own generator seeded independently, so parameters never correlate
// across copies, jobs, or process restarts.
package profile

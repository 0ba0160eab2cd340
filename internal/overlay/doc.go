// Package overlay synthesizes the translucent visual element composited on
// top of each variant. An element is sampled as a tagged variant over five
// kinds, each carrying its own geometry, then rendered to a full-frame RGBA
// buffer. Noise and gradient kinds render on a downscaled grid and upscale to
// bound memory on large frames.
package overlay

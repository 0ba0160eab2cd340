package profile

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"sync/atomic"
	"time"
)

// Params is one realization of the six profile ranges.
type Params struct {
	Resize  float64
	Speed   float64
	Rotate  float64
	Density float64
	Opacity float64
	Bitrate float64
}

// Sampler draws uniform values from a strength profile using its own
// explicitly seeded generator. It is not safe for concurrent use; construct
// one per copy instead of sharing.
type Sampler struct {
	strength Strength
	ranges   Ranges
	rng      *rand.Rand
}

var seedCounter atomic.Uint64

// NewSampler constructs a sampler for the named strength with a fresh,
// independently seeded generator.
func NewSampler(strength Strength) *Sampler {
	return NewSamplerWithRand(strength, NewSeededRand())
}

// NewSamplerWithRand constructs a sampler around a caller-owned generator.
// Tests use this to make draws reproducible.
func NewSamplerWithRand(strength Strength, rng *rand.Rand) *Sampler {
	s := ParseStrength(string(strength))
	return &Sampler{
		strength: s,
		ranges:   RangesFor(s),
		rng:      rng,
	}
}

// NewSeededRand returns a generator seeded from the operating system's
// entropy source, falling back to the clock plus a process-local counter when
// that fails. Each call yields an independent stream.
func NewSeededRand() *rand.Rand {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err == nil {
		return rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(buf[:]))))
	}
	seed := time.Now().UnixNano() + int64(seedCounter.Add(1))
	return rand.New(rand.NewSource(seed))
}

// Strength returns the normalized profile name the sampler draws from.
func (s *Sampler) Strength() Strength {
	return s.strength
}

// Ranges returns the profile ranges backing the sampler.
func (s *Sampler) Ranges() Ranges {
	return s.ranges
}

// Draw produces one independent realization of all six parameters.
func (s *Sampler) Draw() Params {
	return Params{
		Resize:  s.Uniform(s.ranges.Resize),
		Speed:   s.Uniform(s.ranges.Speed),
		Rotate:  s.Uniform(s.ranges.Rotate),
		Density: s.Uniform(s.ranges.Density),
		Opacity: s.Uniform(s.ranges.Opacity),
		Bitrate: s.Uniform(s.ranges.Bitrate),
	}
}

// Uniform draws a single value uniformly from the given range.
func (s *Sampler) Uniform(r Range) float64 {
	if r.Max <= r.Min {
		return r.Min
	}
	return r.Min + s.rng.Float64()*(r.Max-r.Min)
}

// IntN draws an integer uniformly from [min, max). When max <= min it
// returns min, matching the degenerate-range behavior the overlay geometry
// relies on for tiny frames.
func (s *Sampler) IntN(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min)
}

// Float64 exposes a raw uniform draw in [0, 1).
func (s *Sampler) Float64() float64 {
	return s.rng.Float64()
}

// Package random provides the injectable pseudo-random sources used by the
// simulation core. Every simulation task owns its Source; nothing in this
// package keeps global generator state.
package random

import (
	"math"
	"math/rand/v2"
)

// Source yields uniform variates in [0, 1).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	Float64() float64
}

// Factory creates an independent Source for the given stream number
type Factory func(stream uint64) Source

// NewSource returns a PCG generator for (seed, stream)
func NewSource(seed, stream uint64) Source {
	return rand.New(rand.NewPCG(seed, stream))
}

// SeededFactory returns a Factory whose streams are reproducible for seed
func SeededFactory(seed uint64) Factory {
	return func(stream uint64) Source {
		return NewSource(seed, stream)
	}
}

// EntropyFactory returns a Factory seeded once from system entropy
func EntropyFactory() Factory {
	return SeededFactory(rand.Uint64())
}

// StandardNormal draws one N(0,1) variate with the Box-Muller transform.
// Zero uniforms are redrawn so ln(u1) stays finite.
func StandardNormal(src Source) float64 {
	u1 := src.Float64()
	for u1 == 0 {
		u1 = src.Float64()
	}
	u2 := src.Float64()
	for u2 == 0 {
		u2 = src.Float64()
	}
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// Sign returns -1 or +1 with equal probability
func Sign(src Source) float64 {
	if src.Float64() < 0.5 {
		return -1
	}
	return 1
}

// Sequence is a deterministic Source cycling through fixed values.
// It is meant for tests that need an exact, injected random sequence.
type Sequence struct {
	values []float64
	next   int
}

// NewSequence creates a Sequence; values must lie in [0, 1) and at least
// one must be non-zero.
func NewSequence(values ...float64) *Sequence {
	return &Sequence{values: values}
}

// Float64 returns the next value, wrapping around at the end
func (s *Sequence) Float64() float64 {
	v := s.values[s.next]
	s.next = (s.next + 1) % len(s.values)
	return v
}

// SequenceFactory returns a Factory whose streams all replay values from the start
func SequenceFactory(values ...float64) Factory {
	return func(uint64) Source {
		return NewSequence(values...)
	}
}

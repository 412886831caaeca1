package vmath

import "math"

// RNG is a PCG-XSH-RR 64/32 random number generator. Each pixel owns one RNG
// value; the state is never shared between goroutines.
type RNG struct {
	state uint64
	inc   uint64
}

// NewRNG creates a generator from a seed and a stream selector. Distinct
// streams produce independent sequences for the same seed.
func NewRNG(seed, stream uint64) RNG {
	rng := RNG{state: 0, inc: (stream << 1) | 1}
	rng.next()
	rng.state += seed
	rng.next()
	return rng
}

// next advances the state and returns 32 random bits.
func (r *RNG) next() uint32 {
	old := r.state
	r.state = old*6364136223846793005 + r.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := uint32(old >> 59)
	return (xorshifted >> rot) | (xorshifted << ((-rot) & 31))
}

// Rand1i returns a uniform integer in [0, n).
func (r *RNG) Rand1i(n int) int {
	return int(r.next() % uint32(n))
}

// Rand1f returns a uniform float32 in [0, 1).
func (r *RNG) Rand1f() float32 {
	// map the high mantissa bits into [1, 2) and subtract one
	return math.Float32frombits((r.next()>>9)|0x3f800000) - 1
}

// Rand2f returns two uniform float32 values in [0, 1).
func (r *RNG) Rand2f() Vec2 {
	x := r.Rand1f()
	y := r.Rand1f()
	return Vec2{x, y}
}

// Rand3f returns three uniform float32 values in [0, 1).
func (r *RNG) Rand3f() Vec3 {
	x := r.Rand1f()
	y := r.Rand1f()
	z := r.Rand1f()
	return Vec3{x, y, z}
}

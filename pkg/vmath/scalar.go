// Package vmath provides the single-precision math core used throughout the
// renderer: vectors of width 2/3/4, orthonormal frames, rays, bounding boxes,
// a PCG random number generator and the sampling warps shared by the BSDF
// library and the light sampler.
package vmath

import "math"

// Pi as a float32 constant.
const Pi = float32(math.Pi)

// MaxFloat is the largest representable float32, used as the default ray tmax.
const MaxFloat = float32(math.MaxFloat32)

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 { return float32(math.Sqrt(float64(x))) }

// Abs returns the absolute value of x.
func Abs(x float32) float32 { return math.Float32frombits(math.Float32bits(x) &^ (1 << 31)) }

// Cos returns the cosine of x.
func Cos(x float32) float32 { return float32(math.Cos(float64(x))) }

// Sin returns the sine of x.
func Sin(x float32) float32 { return float32(math.Sin(float64(x))) }

// Tan returns the tangent of x.
func Tan(x float32) float32 { return float32(math.Tan(float64(x))) }

// Acos returns the arc cosine of x.
func Acos(x float32) float32 { return float32(math.Acos(float64(x))) }

// Atan returns the arc tangent of x.
func Atan(x float32) float32 { return float32(math.Atan(float64(x))) }

// Atan2 returns the arc tangent of y/x using the signs to pick the quadrant.
func Atan2(y, x float32) float32 { return float32(math.Atan2(float64(y), float64(x))) }

// Pow returns x**y.
func Pow(x, y float32) float32 { return float32(math.Pow(float64(x), float64(y))) }

// Log returns the natural logarithm of x.
func Log(x float32) float32 { return float32(math.Log(float64(x))) }

// Exp returns e**x.
func Exp(x float32) float32 { return float32(math.Exp(float64(x))) }

// Floor returns the largest integer value less than or equal to x.
func Floor(x float32) float32 { return float32(math.Floor(float64(x))) }

// Round returns the nearest integer to x, rounding half away from zero.
func Round(x float32) float32 { return float32(math.Round(float64(x))) }

// Clamp restricts x to the range [lo, hi].
func Clamp(x, lo, hi float32) float32 {
	return min(max(x, lo), hi)
}

// Lerp linearly interpolates between a and b by t.
func Lerp(a, b, t float32) float32 { return a*(1-t) + b*t }

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float32) bool {
	f := float64(x)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

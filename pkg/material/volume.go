package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// EvalTransmittance returns the fraction of light surviving the given
// distance through a medium with per-channel extinction density.
func EvalTransmittance(density vmath.Vec3, distance float32) vmath.Vec3 {
	return density.Multiply(-distance).Exp()
}

// SampleTransmittance samples a free-flight distance through the medium,
// clamped to maxDistance. The channel is picked uniformly with rl; rd drives
// the exponential inversion.
func SampleTransmittance(density vmath.Vec3, maxDistance, rl, rd float32) float32 {
	channel := vmath.ClampInt(int(rl*3), 0, 2)
	sigma := density.Axis(channel)
	var distance float32
	if sigma == 0 {
		distance = vmath.MaxFloat
	} else {
		distance = -vmath.Log(1-rd) / sigma
	}
	return min(distance, maxDistance)
}

// SampleTransmittancePDF returns the density of SampleTransmittance: the
// channel-averaged exponential density for in-medium events and the residual
// probability mass for reaching maxDistance.
func SampleTransmittancePDF(density vmath.Vec3, distance, maxDistance float32) float32 {
	if distance < maxDistance {
		return density.MultiplyVec(density.Multiply(-distance).Exp()).Sum() / 3
	}
	return density.Multiply(-maxDistance).Exp().Sum() / 3
}

// EvalScattering evaluates the in-medium scattering contribution: the
// extinction density times the single-scattering albedo (together the
// scattering coefficient) times the phase function.
func EvalScattering(p Point, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	return p.Density.MultiplyVec(p.Scattering).
		Multiply(EvalPhaseHG(p.Anisotropy, outgoing, incoming))
}

// SampleScattering samples an incoming direction from the medium's phase
// function.
func SampleScattering(p Point, outgoing vmath.Vec3, ruv vmath.Vec2) vmath.Vec3 {
	return SamplePhaseHG(p.Anisotropy, outgoing, ruv)
}

// SampleScatteringPDF returns the density of SampleScattering.
func SampleScatteringPDF(p Point, outgoing, incoming vmath.Vec3) float32 {
	return SamplePhaseHGPDF(p.Anisotropy, outgoing, incoming)
}

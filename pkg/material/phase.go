package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// EvalPhaseHG evaluates the Henyey-Greenstein phase function for anisotropy
// g in (-1, 1). Directions follow the shading convention of pointing away
// from the scattering point.
func EvalPhaseHG(g float32, outgoing, incoming vmath.Vec3) float32 {
	cosine := -outgoing.Dot(incoming)
	denom := 1 + g*g - 2*g*cosine
	if denom <= 0 {
		return 0
	}
	return (1 - g*g) / (4 * vmath.Pi * denom * vmath.Sqrt(denom))
}

// SamplePhaseHG samples an incoming direction from the Henyey-Greenstein
// distribution around the outgoing direction.
func SamplePhaseHG(g float32, outgoing vmath.Vec3, ruv vmath.Vec2) vmath.Vec3 {
	var cosTheta float32
	if vmath.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*ruv.Y
	} else {
		square := (1 - g*g) / (1 + g - 2*g*ruv.Y)
		cosTheta = (1 + g*g - square*square) / (2 * g)
	}

	sinTheta := vmath.Sqrt(max(0, 1-cosTheta*cosTheta))
	phi := 2 * vmath.Pi * ruv.X
	local := vmath.Vec3{
		X: sinTheta * vmath.Cos(phi),
		Y: sinTheta * vmath.Sin(phi),
		Z: cosTheta,
	}
	return vmath.FrameFromZ(vmath.Vec3{}, outgoing.Negate()).TransformDirection(local)
}

// SamplePhaseHGPDF returns the density of SamplePhaseHG, which equals the
// phase function itself.
func SamplePhaseHGPDF(g float32, outgoing, incoming vmath.Vec3) float32 {
	return EvalPhaseHG(g, outgoing, incoming)
}

package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// MicrofacetDistribution evaluates the GGX normal distribution for the given
// halfway vector, zero below the horizon.
func MicrofacetDistribution(roughness float32, normal, halfway vmath.Vec3) float32 {
	cosine := normal.Dot(halfway)
	if cosine <= 0 {
		return 0
	}
	roughness2 := roughness * roughness
	cosine2 := cosine * cosine
	d := cosine2*roughness2 + 1 - cosine2
	return roughness2 / (vmath.Pi * d * d)
}

// microfacetShadowing1 is the Smith masking term for a single direction.
func microfacetShadowing1(roughness float32, normal, halfway, direction vmath.Vec3) float32 {
	cosine := normal.Dot(direction)
	cosineh := halfway.Dot(direction)
	if cosine*cosineh <= 0 {
		return 0
	}
	roughness2 := roughness * roughness
	cosine2 := cosine * cosine
	return 2 * vmath.Abs(cosine) /
		(vmath.Abs(cosine) + vmath.Sqrt(cosine2-roughness2*cosine2+roughness2))
}

// MicrofacetShadowing evaluates the Smith shadowing-masking term for an
// outgoing/incoming direction pair.
func MicrofacetShadowing(roughness float32, normal, halfway, outgoing, incoming vmath.Vec3) float32 {
	return microfacetShadowing1(roughness, normal, halfway, outgoing) *
		microfacetShadowing1(roughness, normal, halfway, incoming)
}

// SampleMicrofacet samples a halfway vector from the GGX distribution of
// normals around the given shading normal.
func SampleMicrofacet(roughness float32, normal vmath.Vec3, ruv vmath.Vec2) vmath.Vec3 {
	phi := 2 * vmath.Pi * ruv.X
	theta := vmath.Atan(roughness * vmath.Sqrt(ruv.Y/(1-ruv.Y)))
	local := vmath.Vec3{
		X: vmath.Sin(theta) * vmath.Cos(phi),
		Y: vmath.Sin(theta) * vmath.Sin(phi),
		Z: vmath.Cos(theta),
	}
	return vmath.FrameFromZ(vmath.Vec3{}, normal).TransformDirection(local)
}

// SampleMicrofacetPDF returns the density of SampleMicrofacet for the given
// halfway vector.
func SampleMicrofacetPDF(roughness float32, normal, halfway vmath.Vec3) float32 {
	cosine := normal.Dot(halfway)
	if cosine < 0 {
		return 0
	}
	return MicrofacetDistribution(roughness, normal, halfway) * cosine
}

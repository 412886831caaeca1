// Package material implements the BSDF and phase-function library: for each
// material class a closed-form evaluation, an importance sampler and the
// matching density, split into a smooth family and a delta family for
// materials whose scattering is a Dirac distribution in direction.
package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Kind discriminates the material classes. Shading dispatches on Kind with a
// plain switch; the integrator's inner loop relies on this staying a tagged
// union rather than an interface.
type Kind int

const (
	Matte Kind = iota
	Glossy
	Reflective
	Transparent
	Refractive
	Subsurface
	GltfPbr
	Volumetric
)

// String returns the lowercase name of the material kind.
func (k Kind) String() string {
	switch k {
	case Matte:
		return "matte"
	case Glossy:
		return "glossy"
	case Reflective:
		return "reflective"
	case Transparent:
		return "transparent"
	case Refractive:
		return "refractive"
	case Subsurface:
		return "subsurface"
	case GltfPbr:
		return "gltfpbr"
	case Volumetric:
		return "volumetric"
	default:
		return "unknown"
	}
}

// Point is a material evaluated at a shading point: all texture lookups are
// already folded in and roughness is squared from its perceptual value.
type Point struct {
	Kind       Kind
	Emission   vmath.Vec3
	Color      vmath.Vec3
	Opacity    float32
	Roughness  float32
	Metallic   float32
	IOR        float32
	Density    vmath.Vec3 // extinction per channel
	Scattering vmath.Vec3 // single-scattering albedo
	Anisotropy float32
	TrDepth    float32
}

// IsDelta reports whether the point scatters along a Dirac distribution:
// perfectly smooth reflective/transparent/refractive surfaces and volumetric
// boundaries.
func IsDelta(p Point) bool {
	switch p.Kind {
	case Reflective, Transparent, Refractive:
		return p.Roughness == 0
	case Volumetric:
		return true
	default:
		return false
	}
}

// IsVolumetric reports whether crossing the surface enters or leaves a
// participating medium.
func IsVolumetric(p Point) bool {
	return p.Kind == Refractive || p.Kind == Subsurface || p.Kind == Volumetric
}

// EvalEmission returns the emitted radiance leaving the point towards
// outgoing, zero when seen from behind.
func EvalEmission(p Point, normal, outgoing vmath.Vec3) vmath.Vec3 {
	if normal.Dot(outgoing) < 0 {
		return vmath.Vec3{}
	}
	return p.Emission
}

package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// EvalDelta evaluates the Dirac-integrated scattering of delta materials:
// perfect mirrors, thin transparents, perfect refraction and volumetric
// passthrough. Smooth materials evaluate to zero here.
func EvalDelta(p Point, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if p.Roughness != 0 {
		return vmath.Vec3{}
	}

	switch p.Kind {
	case Reflective:
		return evalReflectiveDelta(p.Color, normal, outgoing, incoming)
	case Transparent:
		return evalTransparentDelta(p.Color, p.IOR, normal, outgoing, incoming)
	case Refractive:
		return evalRefractiveDelta(p.IOR, normal, outgoing, incoming)
	case Volumetric:
		return evalPassthrough(normal, outgoing, incoming)
	default:
		return vmath.Vec3{}
	}
}

// SampleDelta picks the single (or Fresnel-selected) direction of a delta
// material. Returns the zero vector for smooth materials.
func SampleDelta(p Point, normal, outgoing vmath.Vec3, rnl float32) vmath.Vec3 {
	if p.Roughness != 0 {
		return vmath.Vec3{}
	}

	switch p.Kind {
	case Reflective:
		up := upNormal(normal, outgoing)
		return outgoing.Reflect(up)
	case Transparent:
		return sampleTransparentDelta(p.IOR, normal, outgoing, rnl)
	case Refractive:
		return sampleRefractiveDelta(p.IOR, normal, outgoing, rnl)
	case Volumetric:
		return outgoing.Negate()
	default:
		return vmath.Vec3{}
	}
}

// SampleDeltaPDF returns the discrete selection probability of SampleDelta.
func SampleDeltaPDF(p Point, normal, outgoing, incoming vmath.Vec3) float32 {
	if p.Roughness != 0 {
		return 0
	}

	switch p.Kind {
	case Reflective:
		if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
			return 0
		}
		return 1
	case Transparent:
		up := upNormal(normal, outgoing)
		f := FresnelDielectric(p.IOR, up, outgoing)
		if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
			return f
		}
		return 1 - f
	case Refractive:
		return sampleRefractiveDeltaPDF(p.IOR, normal, outgoing, incoming)
	case Volumetric:
		if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
			return 0
		}
		return 1
	default:
		return 0
	}
}

func evalReflectiveDelta(color, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return vmath.Vec3{}
	}
	up := upNormal(normal, outgoing)
	return FresnelConductor(ReflectivityToEta(color), vmath.Vec3{}, up, outgoing)
}

func evalTransparentDelta(color vmath.Vec3, ior float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	f := FresnelDielectric(ior, up, outgoing)
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		return white.Multiply(f)
	}
	return color.Multiply(1 - f)
}

func sampleTransparentDelta(ior float32, normal, outgoing vmath.Vec3, rnl float32) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	if rnl < FresnelDielectric(ior, up, outgoing) {
		return outgoing.Reflect(up)
	}
	return outgoing.Negate()
}

func evalRefractiveDelta(ior float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if vmath.Abs(ior-1) < 1e-3 {
		if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
			return white
		}
		return vmath.Vec3{}
	}
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
	}
	f := FresnelDielectric(relIOR, up, outgoing)
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		return white.Multiply(f)
	}
	// radiance compression across the interface
	return white.Multiply((1 - f) / (relIOR * relIOR))
}

func sampleRefractiveDelta(ior float32, normal, outgoing vmath.Vec3, rnl float32) vmath.Vec3 {
	if vmath.Abs(ior-1) < 1e-3 {
		return outgoing.Negate()
	}
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	invEta := 1 / ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
		invEta = ior
	}
	if rnl < FresnelDielectric(relIOR, up, outgoing) {
		return outgoing.Reflect(up)
	}
	return outgoing.Refract(up, invEta)
}

func sampleRefractiveDeltaPDF(ior float32, normal, outgoing, incoming vmath.Vec3) float32 {
	if vmath.Abs(ior-1) < 1e-3 {
		if normal.Dot(incoming)*normal.Dot(outgoing) < 0 {
			return 1
		}
		return 0
	}
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
	}
	f := FresnelDielectric(relIOR, up, outgoing)
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		return f
	}
	return 1 - f
}

func evalPassthrough(normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		return vmath.Vec3{}
	}
	return white
}

package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

var white = vmath.Vec3{X: 1, Y: 1, Z: 1}

// upNormal orients the shading normal towards the outgoing direction.
func upNormal(normal, outgoing vmath.Vec3) vmath.Vec3 {
	if normal.Dot(outgoing) <= 0 {
		return normal.Negate()
	}
	return normal
}

// sameHemisphere reports whether outgoing and incoming lie on the same side
// of the surface.
func sameHemisphere(normal, outgoing, incoming vmath.Vec3) bool {
	return normal.Dot(outgoing)*normal.Dot(incoming) >= 0
}

// EvalBSDFCos evaluates the BSDF times the cosine of the incoming direction
// for smooth materials. Delta materials evaluate to zero here; use EvalDelta.
func EvalBSDFCos(p Point, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if p.Roughness == 0 {
		return vmath.Vec3{}
	}

	switch p.Kind {
	case Matte:
		return evalMatte(p.Color, normal, outgoing, incoming)
	case Glossy:
		return evalGlossy(p.Color, p.IOR, p.Roughness, normal, outgoing, incoming)
	case Reflective:
		return evalReflective(p.Color, p.Roughness, normal, outgoing, incoming)
	case Transparent:
		return evalTransparent(p.Color, p.IOR, p.Roughness, normal, outgoing, incoming)
	case Refractive, Subsurface:
		return evalRefractive(p.IOR, p.Roughness, normal, outgoing, incoming)
	case GltfPbr:
		return evalGltfPbr(p.Color, p.IOR, p.Roughness, p.Metallic, normal, outgoing, incoming)
	default:
		return vmath.Vec3{}
	}
}

// SampleBSDFCos picks an incoming direction proportionally to the BSDF times
// cosine for smooth materials. Returns the zero vector on failure.
func SampleBSDFCos(p Point, normal, outgoing vmath.Vec3, rnl float32, ruv vmath.Vec2) vmath.Vec3 {
	if p.Roughness == 0 {
		return vmath.Vec3{}
	}

	switch p.Kind {
	case Matte:
		return sampleMatte(normal, outgoing, ruv)
	case Glossy:
		return sampleGlossy(p.IOR, p.Roughness, normal, outgoing, rnl, ruv)
	case Reflective:
		return sampleReflective(p.Roughness, normal, outgoing, ruv)
	case Transparent:
		return sampleTransparent(p.IOR, p.Roughness, normal, outgoing, rnl, ruv)
	case Refractive, Subsurface:
		return sampleRefractive(p.IOR, p.Roughness, normal, outgoing, rnl, ruv)
	case GltfPbr:
		return sampleGltfPbr(p.Color, p.IOR, p.Roughness, p.Metallic, normal, outgoing, rnl, ruv)
	default:
		return vmath.Vec3{}
	}
}

// SampleBSDFCosPDF returns the density of SampleBSDFCos for the given pair
// of directions.
func SampleBSDFCosPDF(p Point, normal, outgoing, incoming vmath.Vec3) float32 {
	if p.Roughness == 0 {
		return 0
	}

	switch p.Kind {
	case Matte:
		return sampleMattePDF(normal, outgoing, incoming)
	case Glossy:
		return sampleGlossyPDF(p.IOR, p.Roughness, normal, outgoing, incoming)
	case Reflective:
		return sampleReflectivePDF(p.Roughness, normal, outgoing, incoming)
	case Transparent:
		return sampleTransparentPDF(p.IOR, p.Roughness, normal, outgoing, incoming)
	case Refractive, Subsurface:
		return sampleRefractivePDF(p.IOR, p.Roughness, normal, outgoing, incoming)
	case GltfPbr:
		return sampleGltfPbrPDF(p.Color, p.IOR, p.Roughness, p.Metallic, normal, outgoing, incoming)
	default:
		return 0
	}
}

// Lambertian lobe.

func evalMatte(color, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return vmath.Vec3{}
	}
	up := upNormal(normal, outgoing)
	return color.Multiply(vmath.Abs(up.Dot(incoming)) / vmath.Pi)
}

func sampleMatte(normal, outgoing vmath.Vec3, ruv vmath.Vec2) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	return vmath.SampleHemisphereCos(up, ruv)
}

func sampleMattePDF(normal, outgoing, incoming vmath.Vec3) float32 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return 0
	}
	up := upNormal(normal, outgoing)
	return vmath.SampleHemisphereCosPDF(up, incoming)
}

// Diffuse base under a GGX dielectric coat, Fresnel-weighted lobe selection.

func evalGlossy(color vmath.Vec3, ior, roughness float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return vmath.Vec3{}
	}
	up := upNormal(normal, outgoing)
	f1 := FresnelDielectric(ior, up, outgoing)
	halfway := incoming.Add(outgoing).Normalize()
	f := FresnelDielectric(ior, halfway, incoming)
	d := MicrofacetDistribution(roughness, up, halfway)
	g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
	cosine := vmath.Abs(up.Dot(incoming))
	diffuse := color.Multiply((1 - f1) / vmath.Pi * cosine)
	specular := white.Multiply(f * d * g / (4 * up.Dot(outgoing) * up.Dot(incoming)) * cosine)
	return diffuse.Add(specular)
}

func sampleGlossy(ior, roughness float32, normal, outgoing vmath.Vec3, rnl float32, ruv vmath.Vec2) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	if rnl < FresnelDielectric(ior, up, outgoing) {
		halfway := SampleMicrofacet(roughness, up, ruv)
		incoming := outgoing.Reflect(halfway)
		if !sameHemisphere(up, outgoing, incoming) {
			return vmath.Vec3{}
		}
		return incoming
	}
	return vmath.SampleHemisphereCos(up, ruv)
}

func sampleGlossyPDF(ior, roughness float32, normal, outgoing, incoming vmath.Vec3) float32 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return 0
	}
	up := upNormal(normal, outgoing)
	halfway := outgoing.Add(incoming).Normalize()
	f := FresnelDielectric(ior, up, outgoing)
	return f*SampleMicrofacetPDF(roughness, up, halfway)/(4*vmath.Abs(outgoing.Dot(halfway))) +
		(1-f)*vmath.SampleHemisphereCosPDF(up, incoming)
}

// GGX conductor; the color sets the complex index via its reflectivity.

func evalReflective(color vmath.Vec3, roughness float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return vmath.Vec3{}
	}
	up := upNormal(normal, outgoing)
	halfway := incoming.Add(outgoing).Normalize()
	f := FresnelConductor(ReflectivityToEta(color), vmath.Vec3{}, halfway, incoming)
	d := MicrofacetDistribution(roughness, up, halfway)
	g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
	cosine := vmath.Abs(up.Dot(incoming))
	return f.Multiply(d * g / (4 * up.Dot(outgoing) * up.Dot(incoming)) * cosine)
}

func sampleReflective(roughness float32, normal, outgoing vmath.Vec3, ruv vmath.Vec2) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	halfway := SampleMicrofacet(roughness, up, ruv)
	incoming := outgoing.Reflect(halfway)
	if !sameHemisphere(up, outgoing, incoming) {
		return vmath.Vec3{}
	}
	return incoming
}

func sampleReflectivePDF(roughness float32, normal, outgoing, incoming vmath.Vec3) float32 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return 0
	}
	up := upNormal(normal, outgoing)
	halfway := outgoing.Add(incoming).Normalize()
	return SampleMicrofacetPDF(roughness, up, halfway) / (4 * vmath.Abs(outgoing.Dot(halfway)))
}

// Thin-surface beam splitter with a single dielectric Fresnel.

func evalTransparent(color vmath.Vec3, ior, roughness float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		halfway := incoming.Add(outgoing).Normalize()
		f := FresnelDielectric(ior, halfway, outgoing)
		d := MicrofacetDistribution(roughness, up, halfway)
		g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
		cosine := vmath.Abs(up.Dot(incoming))
		return white.Multiply(f * d * g / (4 * up.Dot(outgoing) * up.Dot(incoming)) * cosine)
	}
	reflected := incoming.Negate().Reflect(up)
	halfway := reflected.Add(outgoing).Normalize()
	f := FresnelDielectric(ior, halfway, outgoing)
	d := MicrofacetDistribution(roughness, up, halfway)
	g := MicrofacetShadowing(roughness, up, halfway, outgoing, reflected)
	cosine := vmath.Abs(up.Dot(reflected))
	return color.Multiply((1 - f) * d * g / (4 * up.Dot(outgoing) * up.Dot(reflected)) * cosine)
}

func sampleTransparent(ior, roughness float32, normal, outgoing vmath.Vec3, rnl float32, ruv vmath.Vec2) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	halfway := SampleMicrofacet(roughness, up, ruv)
	if rnl < FresnelDielectric(ior, halfway, outgoing) {
		incoming := outgoing.Reflect(halfway)
		if !sameHemisphere(up, outgoing, incoming) {
			return vmath.Vec3{}
		}
		return incoming
	}
	reflected := outgoing.Reflect(halfway)
	incoming := reflected.Reflect(up).Negate()
	if sameHemisphere(up, outgoing, incoming) {
		return vmath.Vec3{}
	}
	return incoming
}

func sampleTransparentPDF(ior, roughness float32, normal, outgoing, incoming vmath.Vec3) float32 {
	up := upNormal(normal, outgoing)
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		halfway := incoming.Add(outgoing).Normalize()
		f := FresnelDielectric(ior, halfway, outgoing)
		return f * SampleMicrofacetPDF(roughness, up, halfway) / (4 * vmath.Abs(outgoing.Dot(halfway)))
	}
	reflected := incoming.Negate().Reflect(up)
	halfway := reflected.Add(outgoing).Normalize()
	f := FresnelDielectric(ior, halfway, outgoing)
	return (1 - f) * SampleMicrofacetPDF(roughness, up, halfway) / (4 * vmath.Abs(outgoing.Dot(halfway)))
}

// True refraction with Snell's law and Fresnel lobe selection.

func evalRefractive(ior, roughness float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
	}
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		halfway := incoming.Add(outgoing).Normalize()
		f := FresnelDielectric(relIOR, halfway, outgoing)
		d := MicrofacetDistribution(roughness, up, halfway)
		g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
		cosine := vmath.Abs(normal.Dot(incoming))
		return white.Multiply(f * d * g / vmath.Abs(4*normal.Dot(outgoing)*normal.Dot(incoming)) * cosine)
	}
	halfway := incoming.Multiply(relIOR).Add(outgoing).Normalize().Negate()
	if !entering {
		halfway = halfway.Negate()
	}
	f := FresnelDielectric(relIOR, halfway, outgoing)
	d := MicrofacetDistribution(roughness, up, halfway)
	g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
	cosO := normal.Dot(outgoing)
	cosI := normal.Dot(incoming)
	dotOH := outgoing.Dot(halfway)
	dotIH := incoming.Dot(halfway)
	denom := relIOR*dotIH + dotOH
	return white.Multiply(
		vmath.Abs(dotOH*dotIH/(cosO*cosI)) *
			(1 - f) * d * g / (denom * denom) *
			vmath.Abs(cosI))
}

func sampleRefractive(ior, roughness float32, normal, outgoing vmath.Vec3, rnl float32, ruv vmath.Vec2) vmath.Vec3 {
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	invEta := 1 / ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
		invEta = ior
	}
	halfway := SampleMicrofacet(roughness, up, ruv)
	if rnl < FresnelDielectric(relIOR, halfway, outgoing) {
		incoming := outgoing.Reflect(halfway)
		if !sameHemisphere(up, outgoing, incoming) {
			return vmath.Vec3{}
		}
		return incoming
	}
	incoming := outgoing.Refract(halfway, invEta)
	if sameHemisphere(up, outgoing, incoming) || incoming.IsZero() {
		return vmath.Vec3{}
	}
	return incoming
}

func sampleRefractivePDF(ior, roughness float32, normal, outgoing, incoming vmath.Vec3) float32 {
	entering := normal.Dot(outgoing) >= 0
	up := normal
	relIOR := ior
	if !entering {
		up = normal.Negate()
		relIOR = 1 / ior
	}
	if normal.Dot(incoming)*normal.Dot(outgoing) >= 0 {
		halfway := incoming.Add(outgoing).Normalize()
		f := FresnelDielectric(relIOR, halfway, outgoing)
		return f * SampleMicrofacetPDF(roughness, up, halfway) / (4 * vmath.Abs(outgoing.Dot(halfway)))
	}
	halfway := incoming.Multiply(relIOR).Add(outgoing).Normalize().Negate()
	if !entering {
		halfway = halfway.Negate()
	}
	f := FresnelDielectric(relIOR, halfway, outgoing)
	dotIH := incoming.Dot(halfway)
	dotOH := outgoing.Dot(halfway)
	denom := relIOR*dotIH + dotOH
	// jacobian of the half-vector transform, Walter et al. 2007, eq. 17
	return (1 - f) * SampleMicrofacetPDF(roughness, up, halfway) *
		vmath.Abs(dotIH) / (denom * denom)
}

// Metal-rough workflow with Fresnel-Schlick.

func gltfReflectivity(color vmath.Vec3, ior, metallic float32) vmath.Vec3 {
	base := EtaToReflectivity(ior)
	return vmath.Vec3{X: base, Y: base, Z: base}.Lerp(color, metallic)
}

func evalGltfPbr(color vmath.Vec3, ior, roughness, metallic float32, normal, outgoing, incoming vmath.Vec3) vmath.Vec3 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return vmath.Vec3{}
	}
	up := upNormal(normal, outgoing)
	reflectivity := gltfReflectivity(color, ior, metallic)
	f1 := FresnelSchlick(reflectivity, up, outgoing)
	halfway := incoming.Add(outgoing).Normalize()
	f := FresnelSchlick(reflectivity, halfway, incoming)
	d := MicrofacetDistribution(roughness, up, halfway)
	g := MicrofacetShadowing(roughness, up, halfway, outgoing, incoming)
	cosine := vmath.Abs(up.Dot(incoming))
	diffuse := color.Multiply(1 - metallic).MultiplyVec(white.Subtract(f1)).Multiply(cosine / vmath.Pi)
	specular := f.Multiply(d * g / (4 * up.Dot(outgoing) * up.Dot(incoming)) * cosine)
	return diffuse.Add(specular)
}

func sampleGltfPbr(color vmath.Vec3, ior, roughness, metallic float32, normal, outgoing vmath.Vec3, rnl float32, ruv vmath.Vec2) vmath.Vec3 {
	up := upNormal(normal, outgoing)
	reflectivity := gltfReflectivity(color, ior, metallic)
	if rnl < FresnelSchlick(reflectivity, up, outgoing).Mean() {
		halfway := SampleMicrofacet(roughness, up, ruv)
		incoming := outgoing.Reflect(halfway)
		if !sameHemisphere(up, outgoing, incoming) {
			return vmath.Vec3{}
		}
		return incoming
	}
	return vmath.SampleHemisphereCos(up, ruv)
}

func sampleGltfPbrPDF(color vmath.Vec3, ior, roughness, metallic float32, normal, outgoing, incoming vmath.Vec3) float32 {
	if normal.Dot(incoming)*normal.Dot(outgoing) <= 0 {
		return 0
	}
	up := upNormal(normal, outgoing)
	halfway := outgoing.Add(incoming).Normalize()
	reflectivity := gltfReflectivity(color, ior, metallic)
	f := FresnelSchlick(reflectivity, up, outgoing).Mean()
	return f*SampleMicrofacetPDF(roughness, up, halfway)/(4*vmath.Abs(outgoing.Dot(halfway))) +
		(1-f)*vmath.SampleHemisphereCosPDF(up, incoming)
}

package material

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// FresnelDielectric computes the exact unpolarized Fresnel reflectance of a
// dielectric interface with relative index of refraction eta, handling rays
// arriving from either side and total internal reflection.
func FresnelDielectric(eta float32, normal, outgoing vmath.Vec3) float32 {
	cosw := normal.Dot(outgoing)
	if cosw < 0 {
		eta = 1 / eta
		cosw = -cosw
	}

	sin2 := 1 - cosw*cosw
	eta2 := eta * eta

	cos2t := 1 - sin2/eta2
	if cos2t < 0 {
		return 1 // tir
	}

	t0 := vmath.Sqrt(cos2t)
	t1 := eta * t0
	t2 := eta * cosw

	rs := (cosw - t1) / (cosw + t1)
	rp := (t0 - t2) / (t0 + t2)

	return (rs*rs + rp*rp) / 2
}

// FresnelConductor computes the unpolarized Fresnel reflectance of a
// conductor with complex index of refraction eta + i*etak per channel.
func FresnelConductor(eta, etak vmath.Vec3, normal, outgoing vmath.Vec3) vmath.Vec3 {
	cosw := normal.Dot(outgoing)
	if cosw <= 0 {
		return vmath.Vec3{}
	}
	cosw = vmath.Clamp(cosw, -1, 1)

	cos2 := cosw * cosw
	sin2 := vmath.Clamp(1-cos2, 0, 1)
	eta2 := eta.MultiplyVec(eta)
	etak2 := etak.MultiplyVec(etak)

	t0 := eta2.Subtract(etak2).Subtract(vmath.Vec3{X: sin2, Y: sin2, Z: sin2})
	a2plusb2 := sqrtVec(t0.MultiplyVec(t0).Add(eta2.MultiplyVec(etak2).Multiply(4)))
	t1 := a2plusb2.Add(vmath.Vec3{X: cos2, Y: cos2, Z: cos2})
	a := sqrtVec(a2plusb2.Add(t0).Multiply(0.5))
	t2 := a.Multiply(2 * cosw)
	rs := t1.Subtract(t2).DivideVec(t1.Add(t2))

	s4 := sin2 * sin2
	t3 := a2plusb2.Multiply(cos2).Add(vmath.Vec3{X: s4, Y: s4, Z: s4})
	t4 := t2.Multiply(sin2)
	rp := rs.MultiplyVec(t3.Subtract(t4)).DivideVec(t3.Add(t4))

	return rp.Add(rs).Multiply(0.5)
}

// FresnelSchlick computes the Schlick approximation to the Fresnel term with
// the given reflectivity at normal incidence.
func FresnelSchlick(specular vmath.Vec3, normal, outgoing vmath.Vec3) vmath.Vec3 {
	if specular.IsZero() {
		return vmath.Vec3{}
	}
	cosine := normal.Dot(outgoing)
	weight := vmath.Pow(vmath.Clamp(1-vmath.Abs(cosine), 0, 1), 5)
	return specular.Add(white.Subtract(specular).Multiply(weight))
}

// EtaToReflectivity converts an index of refraction to the reflectivity at
// normal incidence.
func EtaToReflectivity(eta float32) float32 {
	return ((eta - 1) * (eta - 1)) / ((eta + 1) * (eta + 1))
}

// ReflectivityToEta converts a reflectivity at normal incidence back to an
// index of refraction, per channel.
func ReflectivityToEta(reflectivity vmath.Vec3) vmath.Vec3 {
	r := reflectivity.Clamp(0, 0.99)
	s := sqrtVec(r)
	one := vmath.Vec3{X: 1, Y: 1, Z: 1}
	return one.Add(s).DivideVec(one.Subtract(s))
}

func sqrtVec(v vmath.Vec3) vmath.Vec3 {
	return vmath.Vec3{X: vmath.Sqrt(v.X), Y: vmath.Sqrt(v.Y), Z: vmath.Sqrt(v.Z)}
}

package integrator

import (
	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// ShadePathtrace is the next-event-estimation path tracer: at every smooth
// surface it mixes BSDF sampling and light sampling 50/50 and weights the
// contribution with the balance heuristic over both densities.
func ShadePathtrace(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	primary vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	if params.Bounces == 0 {
		return shadeEmissionOnly(scn, tree, primary)
	}
	radiance := vmath.Vec3{}
	weight := vmath.Vec3{X: 1, Y: 1, Z: 1}
	ray := primary
	hit := false

	for bounce := 0; bounce < params.Bounces; bounce++ {
		isec := bvh.IntersectScene(tree, scn, ray, false)
		if !isec.Hit {
			radiance = radiance.Add(weight.MultiplyVec(scene.EvalEnvironment(scn, ray.Direction)))
			break
		}

		// prepare shading point
		outgoing := ray.Direction.Negate()
		position := scene.EvalShadingPosition(scn, isec.Instance, isec.Element, isec.UV, outgoing)
		normal := scene.EvalShadingNormal(scn, isec.Instance, isec.Element, isec.UV, outgoing)
		point := scene.EvalMaterial(scn, isec.Instance, isec.Element, isec.UV)

		// stochastic opacity cut-out; does not consume a bounce
		if point.Opacity < 1 && rng.Rand1f() >= point.Opacity {
			ray = vmath.NewRay(position.Add(ray.Direction.Multiply(opacityEps)), ray.Direction)
			bounce--
			continue
		}

		if bounce == 0 {
			hit = true
		}

		radiance = radiance.Add(weight.MultiplyVec(material.EvalEmission(point, normal, outgoing)))

		// next direction
		var incoming vmath.Vec3
		if !material.IsDelta(point) {
			if rng.Rand1f() < 0.5 {
				incoming = material.SampleBSDFCos(point, normal, outgoing, rng.Rand1f(), rng.Rand2f())
			} else {
				incoming = lights.Sample(scn, lts, position, rng.Rand1f(), rng.Rand1f(), rng.Rand2f())
			}
			if incoming.IsZero() {
				break
			}
			bsdfPDF := material.SampleBSDFCosPDF(point, normal, outgoing, incoming)
			lightPDF := lights.PDF(scn, tree, lts, position, incoming)
			weight = weight.
				MultiplyVec(material.EvalBSDFCos(point, normal, outgoing, incoming)).
				Multiply(1 / (0.5*bsdfPDF + 0.5*lightPDF))
		} else {
			incoming = material.SampleDelta(point, normal, outgoing, rng.Rand1f())
			if incoming.IsZero() {
				break
			}
			weight = weight.
				MultiplyVec(material.EvalDelta(point, normal, outgoing, incoming)).
				Multiply(1 / material.SampleDeltaPDF(point, normal, outgoing, incoming))
		}

		ray = vmath.NewRay(position, incoming)

		if weight.IsZero() || !weight.IsFinite() {
			break
		}

		// russian roulette
		if bounce > rrMinBounce {
			prob := min(rrMaxProb, weight.MaxComponent())
			if rng.Rand1f() >= prob {
				break
			}
			weight = weight.Multiply(1 / prob)
		}
	}

	alpha := float32(0)
	if hit {
		alpha = 1
	}
	return vmath.Vec4{X: radiance.X, Y: radiance.Y, Z: radiance.Z, W: alpha}
}

// ShadeNaive is path tracing without next-event estimation: directions come
// from the BSDF alone and the weight divides by the BSDF density only.
func ShadeNaive(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	primary vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	if params.Bounces == 0 {
		return shadeEmissionOnly(scn, tree, primary)
	}
	radiance := vmath.Vec3{}
	weight := vmath.Vec3{X: 1, Y: 1, Z: 1}
	ray := primary
	hit := false

	for bounce := 0; bounce < params.Bounces; bounce++ {
		isec := bvh.IntersectScene(tree, scn, ray, false)
		if !isec.Hit {
			radiance = radiance.Add(weight.MultiplyVec(scene.EvalEnvironment(scn, ray.Direction)))
			break
		}

		outgoing := ray.Direction.Negate()
		position := scene.EvalShadingPosition(scn, isec.Instance, isec.Element, isec.UV, outgoing)
		normal := scene.EvalShadingNormal(scn, isec.Instance, isec.Element, isec.UV, outgoing)
		point := scene.EvalMaterial(scn, isec.Instance, isec.Element, isec.UV)

		if point.Opacity < 1 && rng.Rand1f() >= point.Opacity {
			ray = vmath.NewRay(position.Add(ray.Direction.Multiply(opacityEps)), ray.Direction)
			bounce--
			continue
		}

		if bounce == 0 {
			hit = true
		}

		radiance = radiance.Add(weight.MultiplyVec(material.EvalEmission(point, normal, outgoing)))

		var incoming vmath.Vec3
		if point.Roughness != 0 {
			incoming = material.SampleBSDFCos(point, normal, outgoing, rng.Rand1f(), rng.Rand2f())
			if incoming.IsZero() {
				break
			}
			weight = weight.
				MultiplyVec(material.EvalBSDFCos(point, normal, outgoing, incoming)).
				Multiply(1 / material.SampleBSDFCosPDF(point, normal, outgoing, incoming))
		} else {
			incoming = material.SampleDelta(point, normal, outgoing, rng.Rand1f())
			if incoming.IsZero() {
				break
			}
			weight = weight.
				MultiplyVec(material.EvalDelta(point, normal, outgoing, incoming)).
				Multiply(1 / material.SampleDeltaPDF(point, normal, outgoing, incoming))
		}

		if weight.IsZero() || !weight.IsFinite() {
			break
		}

		if bounce > rrMinBounce {
			prob := min(rrMaxProb, weight.MaxComponent())
			if rng.Rand1f() >= prob {
				break
			}
			weight = weight.Multiply(1 / prob)
		}

		ray = vmath.NewRay(position, incoming)
	}

	alpha := float32(0)
	if hit {
		alpha = 1
	}
	return vmath.Vec4{X: radiance.X, Y: radiance.Y, Z: radiance.Z, W: alpha}
}

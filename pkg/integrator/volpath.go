package integrator

import (
	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// ShadeVolPathtrace extends path tracing with homogeneous participating
// media. A LIFO stack tracks the media the path is currently inside; while
// inside, free-flight distances are sampled against the top medium's
// extinction and in-medium scattering events mix phase-function and light
// sampling with the balance heuristic.
func ShadeVolPathtrace(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	primary vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	if params.Bounces == 0 {
		return shadeEmissionOnly(scn, tree, primary)
	}
	radiance := vmath.Vec3{}
	weight := vmath.Vec3{X: 1, Y: 1, Z: 1}
	ray := primary
	hit := false
	var vstack []material.Point

	for bounce := 0; bounce < params.Bounces; bounce++ {
		isec := bvh.IntersectScene(tree, scn, ray, false)
		if !isec.Hit {
			radiance = radiance.Add(weight.MultiplyVec(scene.EvalEnvironment(scn, ray.Direction)))
			break
		}

		// sample the free flight through the enclosing medium, if any
		inVolume := false
		if len(vstack) > 0 {
			density := vstack[len(vstack)-1].Density
			distance := material.SampleTransmittance(
				density, isec.Distance, rng.Rand1f(), rng.Rand1f())
			weight = weight.
				MultiplyVec(material.EvalTransmittance(density, distance)).
				Multiply(1 / material.SampleTransmittancePDF(density, distance, isec.Distance))
			inVolume = distance < isec.Distance
			isec.Distance = distance
		}

		if !inVolume {
			// surface event
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

			// push or pop the medium only when the ray actually crossed
			if scn.IsVolumetric(isec.Instance) &&
				normal.Dot(outgoing)*normal.Dot(incoming) < 0 {
				if len(vstack) == 0 {
					vstack = append(vstack, point)
				} else {
					vstack = vstack[:len(vstack)-1]
				}
			}

			ray = vmath.NewRay(position, incoming)
		} else {
			// volume event
			outgoing := ray.Direction.Negate()
			position := ray.At(isec.Distance)
			vol := vstack[len(vstack)-1]

			radiance = radiance.Add(weight.MultiplyVec(material.EvalEmission(vol, position, outgoing)))

			var incoming vmath.Vec3
			if rng.Rand1f() < 0.5 {
				incoming = material.SampleScattering(vol, outgoing, rng.Rand2f())
			} else {
				incoming = lights.Sample(scn, lts, position, rng.Rand1f(), rng.Rand1f(), rng.Rand2f())
			}
			if incoming.IsZero() {
				break
			}
			phasePDF := material.SampleScatteringPDF(vol, outgoing, incoming)
			lightPDF := lights.PDF(scn, tree, lts, position, incoming)
			weight = weight.
				MultiplyVec(material.EvalScattering(vol, outgoing, incoming)).
				Multiply(1 / (0.5*phasePDF + 0.5*lightPDF))

			ray = vmath.NewRay(position, incoming)
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
	}

	alpha := float32(0)
	if hit {
		alpha = 1
	}
	return vmath.Vec4{X: radiance.X, Y: radiance.Y, Z: radiance.Z, W: alpha}
}

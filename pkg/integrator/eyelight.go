package integrator

import (
	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// ShadeEyelight lights every surface from the camera for quick previews,
// chaining only through delta materials so mirrors and glass stay readable.
func ShadeEyelight(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	primary vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	radiance := vmath.Vec3{}
	weight := vmath.Vec3{X: 1, Y: 1, Z: 1}
	ray := primary
	hit := false

	for bounce := 0; bounce < max(params.Bounces, 4); bounce++ {
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

		incoming := outgoing
		radiance = radiance.Add(weight.MultiplyVec(material.EvalEmission(point, normal, outgoing)))
		radiance = radiance.Add(weight.
			MultiplyVec(material.EvalBSDFCos(point, normal, outgoing, incoming)).
			Multiply(vmath.Pi))

		if !material.IsDelta(point) {
			break
		}
		incoming = material.SampleDelta(point, normal, outgoing, rng.Rand1f())
		if incoming.IsZero() {
			break
		}
		weight = weight.
			MultiplyVec(material.EvalDelta(point, normal, outgoing, incoming)).
			Multiply(1 / material.SampleDeltaPDF(point, normal, outgoing, incoming))
		if weight.IsZero() || !weight.IsFinite() {
			break
		}

		ray = vmath.NewRay(position, incoming)
	}

	alpha := float32(0)
	if hit {
		alpha = 1
	}
	return vmath.Vec4{X: radiance.X, Y: radiance.Y, Z: radiance.Z, W: alpha}
}

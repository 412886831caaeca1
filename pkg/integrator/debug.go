package integrator

import (
	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Debug shaders return an aux channel at the primary intersection instead
// of estimating radiance.

// ShadeNormal renders the shading normal.
func ShadeNormal(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	ray vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	isec := bvh.IntersectScene(tree, scn, ray, false)
	if !isec.Hit {
		return vmath.Vec4{}
	}
	outgoing := ray.Direction.Negate()
	normal := scene.EvalShadingNormal(scn, isec.Instance, isec.Element, isec.UV, outgoing)
	return vmath.Vec4{X: normal.X, Y: normal.Y, Z: normal.Z, W: 1}
}

// ShadeTexcoord renders the texture coordinates.
func ShadeTexcoord(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	ray vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	isec := bvh.IntersectScene(tree, scn, ray, false)
	if !isec.Hit {
		return vmath.Vec4{}
	}
	texcoord := scene.EvalTexcoord(scn, isec.Instance, isec.Element, isec.UV)
	return vmath.Vec4{X: texcoord.X, Y: texcoord.Y, W: 1}
}

// ShadeColor renders the evaluated material color.
func ShadeColor(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	ray vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4 {
	isec := bvh.IntersectScene(tree, scn, ray, false)
	if !isec.Hit {
		return vmath.Vec4{}
	}
	color := scene.EvalMaterial(scn, isec.Instance, isec.Element, isec.UV).Color
	return vmath.Vec4{X: color.X, Y: color.Y, Z: color.Z, W: 1}
}

// Package integrator implements the Monte-Carlo estimators that turn camera
// rays into radiance: volumetric and surface path tracing with multiple
// importance sampling, a naive BSDF-only tracer, an eyelight preview and the
// debug shaders. All variants share the same shading-point loop and differ
// in their variance-reduction strategy.
package integrator

import (
	"fmt"

	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Shader estimates the radiance arriving along a camera ray. The returned
// alpha channel is 1 when the primary ray hit geometry.
type Shader func(scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	ray vmath.Ray, rng *vmath.RNG, params Params) vmath.Vec4

// ShaderNames lists the recognized shader option values.
var ShaderNames = []string{
	"volpathtrace", "pathtrace", "naive", "eyelight", "normal", "texcoord", "color",
}

// Params configures a render. Camera and Shader are validated by the driver
// before any parallel work starts.
type Params struct {
	Camera     int
	Resolution int
	Shader     string
	Samples    int
	Bounces    int
	NoParallel bool
	PRatio     int
	Exposure   float32
	Filmic     bool
}

// DefaultParams returns the base configuration. The CLI starts from it and
// overrides each field that has a flag with the flag's value.
func DefaultParams() Params {
	return Params{
		Camera:     0,
		Resolution: 720,
		Shader:     "pathtrace",
		Samples:    512,
		Bounces:    4,
		PRatio:     8,
	}
}

// GetShader resolves the shader name, or errors for unknown names. This is
// a config error surfaced at setup, never inside the render loop.
func GetShader(params Params) (Shader, error) {
	switch params.Shader {
	case "volpathtrace":
		return ShadeVolPathtrace, nil
	case "pathtrace":
		return ShadePathtrace, nil
	case "naive":
		return ShadeNaive, nil
	case "eyelight":
		return ShadeEyelight, nil
	case "normal":
		return ShadeNormal, nil
	case "texcoord":
		return ShadeTexcoord, nil
	case "color":
		return ShadeColor, nil
	default:
		return nil, fmt.Errorf("unknown shader %q", params.Shader)
	}
}

// opacityEps offsets rays restarted by the stochastic opacity cut-out so
// they do not re-hit the surface they passed through.
const opacityEps = 1e-2

// rrMinBounce is the last bounce exempt from Russian roulette; terminating
// earlier paths would add visible noise for little saving.
const rrMinBounce = 3

// shadeEmissionOnly handles renders with a zero bounce budget: the primary
// intersection contributes its emission and nothing else scatters. Misses
// still see the environment.
func shadeEmissionOnly(scn *scene.Scene, tree *bvh.Tree, ray vmath.Ray) vmath.Vec4 {
	isec := bvh.IntersectScene(tree, scn, ray, false)
	if !isec.Hit {
		emission := scene.EvalEnvironment(scn, ray.Direction)
		return vmath.Vec4{X: emission.X, Y: emission.Y, Z: emission.Z, W: 0}
	}
	outgoing := ray.Direction.Negate()
	normal := scene.EvalShadingNormal(scn, isec.Instance, isec.Element, isec.UV, outgoing)
	point := scene.EvalMaterial(scn, isec.Instance, isec.Element, isec.UV)
	emission := material.EvalEmission(point, normal, outgoing)
	return vmath.Vec4{X: emission.X, Y: emission.Y, Z: emission.Z, W: 1}
}

// rrMaxProb caps the survival probability.
const rrMaxProb = 0.99

package integrator

import (
	"testing"

	"github.com/rfeld/go-pathtracer/pkg/bvh"
	"github.com/rfeld/go-pathtracer/pkg/lights"
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// traceAverage runs a shader repeatedly over the same primary ray and
// returns the sample mean.
func traceAverage(shader Shader, scn *scene.Scene, tree *bvh.Tree, lts *lights.Lights,
	ray vmath.Ray, params Params, n int) vmath.Vec4 {
	rng := vmath.NewRNG(961748941, 1)
	var sum vmath.Vec4
	for i := 0; i < n; i++ {
		sum = sum.Add(shader(scn, tree, lts, ray, &rng, params))
	}
	return sum.Multiply(1 / float32(n))
}

func sceneSetup(scn *scene.Scene) (*bvh.Tree, *lights.Lights) {
	tree := bvh.MakeSceneBVH(scn, true, true)
	return &tree, lights.MakeLights(scn)
}

func TestEmptySceneConstantEnvironment(t *testing.T) {
	// spec scenario: empty scene under a unit environment returns exactly
	// (1,1,1) with alpha zero
	scn := scene.MakeEnvScene(vmath.Vec3{X: 1, Y: 1, Z: 1})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 1

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	for _, name := range []string{"pathtrace", "volpathtrace", "naive", "eyelight"} {
		params.Shader = name
		shader, err := GetShader(params)
		if err != nil {
			t.Fatal(err)
		}
		rng := vmath.NewRNG(42, 1)
		got := shader(scn, tree, lts, ray, &rng, params)
		want := vmath.Vec4{X: 1, Y: 1, Z: 1, W: 0}
		if got != want {
			t.Errorf("%s: got %v, expected %v", name, got, want)
		}
	}
}

func TestWhiteQuadUnderGreyEnvironment(t *testing.T) {
	// spec scenario: a perfectly white Lambertian quad under a 0.5 grey
	// environment reflects the environment: radiance near 0.5, alpha 1
	mat := scene.NewMaterial()
	mat.Color = vmath.Vec3{X: 1, Y: 1, Z: 1}
	mat.Roughness = 1
	scn := scene.MakeQuadScene(mat, vmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	tree, lts := sceneSetup(scn)

	params := DefaultParams()
	params.Bounces = 4

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	got := traceAverage(ShadePathtrace, scn, tree, lts, ray, params, 4000)
	if got.W != 1 {
		t.Errorf("alpha should be 1 for a primary hit, got %v", got.W)
	}
	for _, c := range []float32{got.X, got.Y, got.Z} {
		if c < 0.4 || c > 0.6 {
			t.Errorf("radiance channel out of [0.4, 0.6]: %v", c)
		}
	}
}

func TestAbsorbingSlabTransmittance(t *testing.T) {
	// spec scenario: a purely absorbing slab of unit optical depth passes
	// exp(-1) of the environment along a normal-incidence ray
	mat := scene.NewMaterial()
	mat.Type = material.Volumetric
	mat.Color = vmath.Vec3{X: vmath.Exp(-1), Y: vmath.Exp(-1), Z: vmath.Exp(-1)}
	mat.TrDepth = 1
	mat.Roughness = 0
	// no scattering: pure absorption
	mat.Scattering = vmath.Vec3{}

	scn := &scene.Scene{}
	camera := scene.NewCamera()
	camera.Frame = vmath.Translation(vmath.Vec3{Z: 2})
	camera.Aspect = 1
	scn.Cameras = append(scn.Cameras, camera)
	scn.Materials = append(scn.Materials, mat)
	scn.Shapes = append(scn.Shapes, scene.MakeCube(0.5))
	scn.Instances = append(scn.Instances, scene.Instance{
		Frame: vmath.IdentityFrame, Shape: 0, Material: 0,
	})
	env := scene.NewEnvironment()
	env.Emission = vmath.Vec3{X: 1, Y: 1, Z: 1}
	scn.Environments = append(scn.Environments, env)
	tree, lts := sceneSetup(scn)

	params := DefaultParams()
	params.Bounces = 8
	params.Shader = "volpathtrace"

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	got := traceAverage(ShadeVolPathtrace, scn, tree, lts, ray, params, 30000)
	want := vmath.Exp(-1)
	if vmath.Abs(got.X-want) > 0.02 {
		t.Errorf("slab transmittance off: got %v, expected %v", got.X, want)
	}
}

func TestFurnaceWithRussianRoulette(t *testing.T) {
	// closed cube, every wall emits E and reflects albedo a: the interior
	// radiance is E/(1-a). Paths are unboundedly deep, so agreement with
	// the closed form requires Russian roulette to stay unbiased.
	const albedo = 0.5
	const emission = 0.2
	mat := scene.NewMaterial()
	mat.Color = vmath.Vec3{X: albedo, Y: albedo, Z: albedo}
	mat.Emission = vmath.Vec3{X: emission, Y: emission, Z: emission}
	mat.Roughness = 1

	scn := &scene.Scene{}
	camera := scene.NewCamera()
	scn.Cameras = append(scn.Cameras, camera)
	scn.Materials = append(scn.Materials, mat)
	scn.Shapes = append(scn.Shapes, scene.MakeCube(1))
	scn.Instances = append(scn.Instances, scene.Instance{
		Frame: vmath.IdentityFrame, Shape: 0, Material: 0,
	})
	tree, lts := sceneSetup(scn)

	params := DefaultParams()
	params.Bounces = 64

	ray := vmath.NewRay(vmath.Vec3{}, vmath.NewVec3(0.3, 0.2, -1).Normalize())
	got := traceAverage(ShadeNaive, scn, tree, lts, ray, params, 30000)
	want := float32(emission / (1 - albedo))
	for _, c := range []float32{got.X, got.Y, got.Z} {
		if vmath.Abs(c-want) > 0.02 {
			t.Errorf("furnace radiance off: got %v, expected %v", c, want)
		}
	}
}

func TestBouncesZeroReturnsPrimaryEmission(t *testing.T) {
	// with no bounce budget, the primary intersection contributes its
	// emission and nothing else
	mat := scene.NewMaterial()
	mat.Emission = vmath.Vec3{X: 3, Y: 3, Z: 3}
	mat.Color = vmath.Vec3{X: 0.8, Y: 0.8, Z: 0.8}
	scn := scene.MakeQuadScene(mat, vmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 0

	hit := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	for _, shader := range []Shader{ShadePathtrace, ShadeNaive, ShadeVolPathtrace} {
		rng := vmath.NewRNG(42, 1)
		got := shader(scn, tree, lts, hit, &rng, params)
		want := vmath.Vec4{X: 3, Y: 3, Z: 3, W: 1}
		if got != want {
			t.Errorf("zero bounces should see emission only: got %v, expected %v", got, want)
		}
	}

	// a miss still sees the environment
	miss := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: 1})
	rng := vmath.NewRNG(42, 1)
	got := ShadePathtrace(scn, tree, lts, miss, &rng, params)
	want := vmath.Vec4{X: 0.5, Y: 0.5, Z: 0.5, W: 0}
	if got != want {
		t.Errorf("zero-bounce miss should see the environment: got %v, expected %v", got, want)
	}
}

func TestEmissiveQuadSingleBounce(t *testing.T) {
	// a single bounce sees only the emitter itself
	mat := scene.NewMaterial()
	mat.Emission = vmath.Vec3{X: 3, Y: 3, Z: 3}
	scn := scene.MakeQuadScene(mat, vmath.Vec3{})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 1

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	rng := vmath.NewRNG(42, 1)
	got := ShadePathtrace(scn, tree, lts, ray, &rng, params)
	if vmath.Abs(got.X-3) > 1e-5 || got.W != 1 {
		t.Errorf("single bounce should see emission only: got %v", got)
	}
}

func TestOpacityZeroPassesThrough(t *testing.T) {
	// fully transparent quad: every ray escapes to the environment and
	// alpha stays zero
	mat := scene.NewMaterial()
	mat.Color = vmath.Vec3{X: 1, Y: 1, Z: 1}
	mat.Opacity = 0
	scn := scene.MakeQuadScene(mat, vmath.Vec3{X: 0.25, Y: 0.25, Z: 0.25})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 4

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	rng := vmath.NewRNG(42, 1)
	got := ShadePathtrace(scn, tree, lts, ray, &rng, params)
	want := vmath.Vec4{X: 0.25, Y: 0.25, Z: 0.25, W: 0}
	if got != want {
		t.Errorf("opacity cut-out should pass through: got %v, expected %v", got, want)
	}
}

func TestMirrorReflectsEnvironment(t *testing.T) {
	// a delta mirror under pathtrace passes the path on to the environment
	mat := scene.NewMaterial()
	mat.Type = material.Reflective
	mat.Color = vmath.Vec3{X: 1, Y: 1, Z: 1}
	mat.Roughness = 0
	scn := scene.MakeQuadScene(mat, vmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 4

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	rng := vmath.NewRNG(42, 1)
	got := ShadePathtrace(scn, tree, lts, ray, &rng, params)
	if got.W != 1 {
		t.Errorf("mirror primary hit should set alpha, got %v", got.W)
	}
	// the reflected ray returns to the environment scaled by the mirror's
	// fresnel reflectivity, which is high for a white conductor
	if got.X < 0.3 || got.X > 0.55 {
		t.Errorf("mirror reflection out of range: got %v", got.X)
	}
}

func TestNaiveAndPathtraceAgree(t *testing.T) {
	// both estimators are unbiased, so their means must match within noise
	mat := scene.NewMaterial()
	mat.Color = vmath.Vec3{X: 0.7, Y: 0.7, Z: 0.7}
	mat.Roughness = 1
	scn := scene.MakeQuadScene(mat, vmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	params.Bounces = 4

	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	pt := traceAverage(ShadePathtrace, scn, tree, lts, ray, params, 6000)
	nv := traceAverage(ShadeNaive, scn, tree, lts, ray, params, 6000)
	if vmath.Abs(pt.X-nv.X) > 0.03 {
		t.Errorf("estimators disagree: pathtrace %v, naive %v", pt.X, nv.X)
	}
}

func TestDebugShaders(t *testing.T) {
	mat := scene.NewMaterial()
	mat.Color = vmath.Vec3{X: 0.2, Y: 0.4, Z: 0.6}
	scn := scene.MakeQuadScene(mat, vmath.Vec3{})
	tree, lts := sceneSetup(scn)
	params := DefaultParams()
	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	rng := vmath.NewRNG(42, 1)

	normal := ShadeNormal(scn, tree, lts, ray, &rng, params)
	if vmath.Abs(normal.Z-1) > 1e-5 || normal.W != 1 {
		t.Errorf("normal shader incorrect: got %v", normal)
	}

	texcoord := ShadeTexcoord(scn, tree, lts, ray, &rng, params)
	if texcoord.W != 1 || texcoord.X < 0 || texcoord.X > 1 {
		t.Errorf("texcoord shader incorrect: got %v", texcoord)
	}

	color := ShadeColor(scn, tree, lts, ray, &rng, params)
	if vmath.Abs(color.X-0.2) > 1e-5 || vmath.Abs(color.Z-0.6) > 1e-5 {
		t.Errorf("color shader incorrect: got %v", color)
	}

	miss := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: 1})
	if got := ShadeNormal(scn, tree, lts, miss, &rng, params); got != (vmath.Vec4{}) {
		t.Errorf("debug shader on miss should be zero, got %v", got)
	}
}

func TestGetShaderNames(t *testing.T) {
	for _, name := range ShaderNames {
		params := DefaultParams()
		params.Shader = name
		if _, err := GetShader(params); err != nil {
			t.Errorf("known shader %q rejected: %v", name, err)
		}
	}
	params := DefaultParams()
	params.Shader = "bogus"
	if _, err := GetShader(params); err == nil {
		t.Error("unknown shader should error")
	}
}

func TestVolumetricStackPushPop(t *testing.T) {
	// crossing into and out of a clear volume leaves radiance unchanged
	mat := scene.NewMaterial()
	mat.Type = material.Volumetric
	mat.Color = vmath.Vec3{X: 0.9999, Y: 0.9999, Z: 0.9999} // nearly clear
	mat.TrDepth = 1000
	mat.Roughness = 0

	scn := &scene.Scene{}
	camera := scene.NewCamera()
	camera.Frame = vmath.Translation(vmath.Vec3{Z: 2})
	scn.Cameras = append(scn.Cameras, camera)
	scn.Materials = append(scn.Materials, mat)
	scn.Shapes = append(scn.Shapes, scene.MakeCube(0.5))
	scn.Instances = append(scn.Instances, scene.Instance{
		Frame: vmath.IdentityFrame, Shape: 0, Material: 0,
	})
	env := scene.NewEnvironment()
	env.Emission = vmath.Vec3{X: 1, Y: 1, Z: 1}
	scn.Environments = append(scn.Environments, env)
	tree, lts := sceneSetup(scn)

	params := DefaultParams()
	params.Bounces = 8
	ray := vmath.NewRay(vmath.Vec3{Z: 2}, vmath.Vec3{Z: -1})
	got := traceAverage(ShadeVolPathtrace, scn, tree, lts, ray, params, 2000)
	if vmath.Abs(got.X-1) > 0.01 {
		t.Errorf("clear volume should pass the environment: got %v", got.X)
	}
}

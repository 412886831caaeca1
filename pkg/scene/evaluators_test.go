package scene

import (
	"testing"

	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// singleTriangleScene builds a scene with one unit triangle in the XY plane.
func singleTriangleScene() *Scene {
	s := &Scene{}
	s.Materials = append(s.Materials, NewMaterial())
	s.Shapes = append(s.Shapes, Shape{
		Triangles: [][3]int{{0, 1, 2}},
		Positions: []vmath.Vec3{{}, {X: 1}, {Y: 1}},
		Normals:   []vmath.Vec3{{Z: 1}, {Z: 1}, {Z: 1}},
		Texcoords: []vmath.Vec2{{}, {X: 1}, {Y: 1}},
	})
	s.Instances = append(s.Instances, Instance{Frame: vmath.IdentityFrame, Shape: 0, Material: 0})
	return s
}

func TestEvalPositionBarycentric(t *testing.T) {
	s := singleTriangleScene()
	p := EvalPosition(s, 0, 0, vmath.Vec2{X: 0.25, Y: 0.25})
	want := vmath.NewVec3(0.25, 0.25, 0)
	if p.Subtract(want).Length() > 1e-6 {
		t.Errorf("EvalPosition incorrect: got %v, expected %v", p, want)
	}
}

func TestEvalPositionTransformed(t *testing.T) {
	s := singleTriangleScene()
	s.Instances[0].Frame = vmath.Translation(vmath.NewVec3(10, 0, 0))
	p := EvalPosition(s, 0, 0, vmath.Vec2{})
	if p.Subtract(vmath.NewVec3(10, 0, 0)).Length() > 1e-6 {
		t.Errorf("instance frame not applied: got %v", p)
	}
}

func TestEvalNormalFallsBackToGeometric(t *testing.T) {
	s := singleTriangleScene()
	s.Shapes[0].Normals = nil
	n := EvalNormal(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	if n.Subtract(vmath.NewVec3(0, 0, 1)).Length() > 1e-6 {
		t.Errorf("geometric normal incorrect: got %v", n)
	}
}

func TestEvalShadingNormalFlips(t *testing.T) {
	s := singleTriangleScene()
	// seen from below, the shading normal flips towards the viewer
	n := EvalShadingNormal(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3}, vmath.NewVec3(0, 0, -1))
	if n.Z >= 0 {
		t.Errorf("shading normal should flip against outgoing: got %v", n)
	}
}

func TestEvalShadingNormalRefractiveKeepsOrientation(t *testing.T) {
	s := singleTriangleScene()
	s.Materials[0].Type = material.Refractive
	n := EvalShadingNormal(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3}, vmath.NewVec3(0, 0, -1))
	if n.Z <= 0 {
		t.Errorf("refractive shading normal should keep orientation: got %v", n)
	}
}

func TestEvalMaterialRoughnessSquaredAndClamped(t *testing.T) {
	s := singleTriangleScene()
	s.Materials[0].Roughness = 0.5
	point := EvalMaterial(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	if vmath.Abs(point.Roughness-0.25) > 1e-6 {
		t.Errorf("roughness should square: got %v, expected 0.25", point.Roughness)
	}

	s.Materials[0].Roughness = 0.001
	point = EvalMaterial(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	if point.Roughness < 0.03*0.03 {
		t.Errorf("matte roughness should clamp up: got %v", point.Roughness)
	}

	s.Materials[0].Type = material.Reflective
	s.Materials[0].Roughness = 0.001
	point = EvalMaterial(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	if point.Roughness != 0 {
		t.Errorf("tiny reflective roughness should snap to delta: got %v", point.Roughness)
	}
}

func TestEvalMaterialDensityFromColor(t *testing.T) {
	s := singleTriangleScene()
	s.Materials[0].Type = material.Refractive
	s.Materials[0].Color = vmath.Vec3{X: 0.5, Y: 0.5, Z: 0.5}
	s.Materials[0].TrDepth = 0.1
	point := EvalMaterial(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	want := -vmath.Log(0.5) / 0.1
	if vmath.Abs(point.Density.X-want) > 1e-4 {
		t.Errorf("density incorrect: got %v, expected %v", point.Density.X, want)
	}

	s.Materials[0].Type = material.Matte
	point = EvalMaterial(s, 0, 0, vmath.Vec2{X: 0.3, Y: 0.3})
	if !point.Density.IsZero() {
		t.Errorf("surface materials carry no density: got %v", point.Density)
	}
}

func TestEvalEnvironmentConstant(t *testing.T) {
	s := &Scene{}
	env := NewEnvironment()
	env.Emission = vmath.Vec3{X: 2, Y: 3, Z: 4}
	s.Environments = append(s.Environments, env)

	rng := vmath.NewRNG(42, 1)
	for i := 0; i < 100; i++ {
		d := vmath.SampleSphere(rng.Rand2f())
		got := EvalEnvironment(s, d)
		if got.Subtract(env.Emission).Length() > 1e-5 {
			t.Fatalf("constant environment should be direction independent: got %v", got)
		}
	}
}

func TestEvalEnvironmentSums(t *testing.T) {
	s := &Scene{}
	for i := 0; i < 2; i++ {
		env := NewEnvironment()
		env.Emission = vmath.Vec3{X: 1, Y: 1, Z: 1}
		s.Environments = append(s.Environments, env)
	}
	got := EvalEnvironment(s, vmath.NewVec3(0, 0, 1))
	if got.Subtract(vmath.NewVec3(2, 2, 2)).Length() > 1e-5 {
		t.Errorf("environments should sum: got %v", got)
	}
}

func TestEvalCameraCenterRay(t *testing.T) {
	camera := NewCamera()
	camera.Aspect = 1
	ray := EvalCamera(&camera, vmath.Vec2{X: 0.5, Y: 0.5}, vmath.Vec2{})
	// the centre ray leaves along -Z in camera space
	if ray.Direction.Subtract(vmath.NewVec3(0, 0, -1)).Length() > 1e-5 {
		t.Errorf("centre ray direction incorrect: got %v", ray.Direction)
	}
	if ray.Origin.Length() > 1e-6 {
		t.Errorf("pinhole origin should sit at the frame origin: got %v", ray.Origin)
	}
}

func TestEvalCameraFilmOrientation(t *testing.T) {
	camera := NewCamera()
	camera.Aspect = 1
	left := EvalCamera(&camera, vmath.Vec2{X: 0, Y: 0.5}, vmath.Vec2{})
	right := EvalCamera(&camera, vmath.Vec2{X: 1, Y: 0.5}, vmath.Vec2{})
	if left.Direction.X >= right.Direction.X {
		t.Errorf("film X should flip to camera space: left %v, right %v",
			left.Direction, right.Direction)
	}
}

func TestTextureBilinear(t *testing.T) {
	s := &Scene{}
	s.Textures = append(s.Textures, Texture{
		Width: 2, Height: 2, Linear: true,
		PixelsF: []vmath.Vec4{
			{X: 0, W: 1}, {X: 1, W: 1},
			{X: 0, W: 1}, {X: 1, W: 1},
		},
	})
	// a quarter across blends the black and white columns evenly
	got := EvalTexture(s, 0, vmath.Vec2{X: 0.25, Y: 0.25}, true)
	if vmath.Abs(got.X-0.5) > 1e-5 {
		t.Errorf("bilinear blend incorrect: got %v, expected 0.5", got.X)
	}
}

func TestTextureInvalidIsWhite(t *testing.T) {
	s := &Scene{}
	got := EvalTexture(s, InvalidID, vmath.Vec2{X: 0.3, Y: 0.7}, true)
	if got != (vmath.Vec4{X: 1, Y: 1, Z: 1, W: 1}) {
		t.Errorf("invalid texture should evaluate to white: got %v", got)
	}
}

func TestTextureSRGBConversion(t *testing.T) {
	s := &Scene{}
	s.Textures = append(s.Textures, Texture{
		Width: 1, Height: 1,
		PixelsB: [][4]byte{{128, 128, 128, 255}},
		Nearest: true,
	})
	linear := EvalTexture(s, 0, vmath.Vec2{}, true)
	// mid-grey sRGB decodes to ~0.2158 linear
	if vmath.Abs(linear.X-0.2158) > 0.01 {
		t.Errorf("sRGB decode incorrect: got %v, expected ~0.216", linear.X)
	}
	raw := EvalTexture(s, 0, vmath.Vec2{}, false)
	if vmath.Abs(raw.X-128.0/255) > 1e-4 {
		t.Errorf("raw lookup should skip decoding: got %v", raw.X)
	}
}

func TestQuadsToTriangles(t *testing.T) {
	quads := [][4]int{{0, 1, 2, 3}, {4, 5, 6, 6}}
	triangles := QuadsToTriangles(quads)
	if len(triangles) != 3 {
		t.Fatalf("expected 3 triangles, got %d", len(triangles))
	}
}

func TestTriangleQuadArea(t *testing.T) {
	p0, p1, p2, p3 := vmath.Vec3{}, vmath.Vec3{X: 1}, vmath.Vec3{X: 1, Y: 1}, vmath.Vec3{Y: 1}
	if a := TriangleArea(p0, p1, p2); vmath.Abs(a-0.5) > 1e-6 {
		t.Errorf("triangle area incorrect: got %v", a)
	}
	if a := QuadArea(p0, p1, p2, p3); vmath.Abs(a-1) > 1e-6 {
		t.Errorf("quad area incorrect: got %v", a)
	}
}

package scene

import (
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Built-in scenes used by the CLI demo and across the package tests.

// MakeCornellBox builds the classic Cornell box: white walls, red and green
// sides, an area light in the ceiling and two boxes replaced here by a
// matte and a mirror sphere.
func MakeCornellBox() *Scene {
	s := &Scene{}

	camera := NewCamera()
	camera.Frame = vmath.Translation(vmath.Vec3{Z: 3.9})
	camera.Lens = 0.035
	camera.Aperture = 0
	camera.Focus = 3.9
	camera.Aspect = 1
	s.Cameras = append(s.Cameras, camera)

	white := NewMaterial()
	white.Color = vmath.Vec3{X: 0.725, Y: 0.71, Z: 0.68}
	red := NewMaterial()
	red.Color = vmath.Vec3{X: 0.63, Y: 0.065, Z: 0.05}
	green := NewMaterial()
	green.Color = vmath.Vec3{X: 0.14, Y: 0.45, Z: 0.091}
	light := NewMaterial()
	light.Emission = vmath.Vec3{X: 17, Y: 12, Z: 4}
	mirror := NewMaterial()
	mirror.Type = material.Reflective
	mirror.Color = vmath.Vec3{X: 0.9, Y: 0.9, Z: 0.9}
	mirror.Roughness = 0
	matte := NewMaterial()
	matte.Color = vmath.Vec3{X: 0.725, Y: 0.71, Z: 0.68}
	s.Materials = append(s.Materials, white, red, green, light, mirror, matte)

	addWall := func(shape Shape, frame vmath.Frame, mat int) {
		s.Shapes = append(s.Shapes, shape)
		s.Instances = append(s.Instances, Instance{
			Frame: frame, Shape: len(s.Shapes) - 1, Material: mat,
		})
	}

	// walls face into the box
	floor := MakeRect(1)
	addWall(floor, vmath.Frame{
		X: vmath.Vec3{X: 1}, Y: vmath.Vec3{Z: -1}, Z: vmath.Vec3{Y: 1},
		O: vmath.Vec3{Y: -1},
	}, 0)
	ceiling := MakeRect(1)
	addWall(ceiling, vmath.Frame{
		X: vmath.Vec3{X: 1}, Y: vmath.Vec3{Z: 1}, Z: vmath.Vec3{Y: -1},
		O: vmath.Vec3{Y: 1},
	}, 0)
	back := MakeRect(1)
	addWall(back, vmath.Frame{
		X: vmath.Vec3{X: 1}, Y: vmath.Vec3{Y: 1}, Z: vmath.Vec3{Z: 1},
		O: vmath.Vec3{Z: -1},
	}, 0)
	left := MakeRect(1)
	addWall(left, vmath.Frame{
		X: vmath.Vec3{Z: -1}, Y: vmath.Vec3{Y: 1}, Z: vmath.Vec3{X: 1},
		O: vmath.Vec3{X: -1},
	}, 1)
	right := MakeRect(1)
	addWall(right, vmath.Frame{
		X: vmath.Vec3{Z: 1}, Y: vmath.Vec3{Y: 1}, Z: vmath.Vec3{X: -1},
		O: vmath.Vec3{X: 1},
	}, 2)

	// ceiling light, facing down
	lightShape := MakeRect(0.25)
	addWall(lightShape, vmath.Frame{
		X: vmath.Vec3{X: 1}, Y: vmath.Vec3{Z: 1}, Z: vmath.Vec3{Y: -1},
		O: vmath.Vec3{Y: 0.995},
	}, 3)

	// spheres
	sphere := MakeUVSphere(32, 0.35)
	addWall(sphere, vmath.Translation(vmath.Vec3{X: -0.4, Y: -0.65, Z: 0.2}), 5)
	mirrorSphere := MakeUVSphere(32, 0.35)
	addWall(mirrorSphere, vmath.Translation(vmath.Vec3{X: 0.45, Y: -0.65, Z: -0.3}), 4)

	return s
}

// MakeEnvScene builds an empty scene with a single camera and a constant
// environment of the given emission.
func MakeEnvScene(emission vmath.Vec3) *Scene {
	s := &Scene{}
	camera := NewCamera()
	camera.Frame = vmath.Translation(vmath.Vec3{Z: 2})
	camera.Aspect = 1
	s.Cameras = append(s.Cameras, camera)
	env := NewEnvironment()
	env.Emission = emission
	s.Environments = append(s.Environments, env)
	return s
}

// MakeQuadScene builds a single quad of the given material facing the
// camera, optionally under a constant environment.
func MakeQuadScene(mat Material, envEmission vmath.Vec3) *Scene {
	s := &Scene{}
	camera := NewCamera()
	camera.Frame = vmath.Translation(vmath.Vec3{Z: 2})
	camera.Aspect = 1
	camera.Lens = 0.035
	s.Cameras = append(s.Cameras, camera)

	s.Materials = append(s.Materials, mat)
	s.Shapes = append(s.Shapes, MakeRect(0.5))
	s.Instances = append(s.Instances, Instance{
		Frame: vmath.IdentityFrame, Shape: 0, Material: 0,
	})

	if !envEmission.IsZero() {
		env := NewEnvironment()
		env.Emission = envEmission
		s.Environments = append(s.Environments, env)
	}
	return s
}

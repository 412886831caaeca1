// Package scene holds the renderer's scene description - cameras, shapes,
// instances, materials, textures, environments and subdivision surfaces -
// together with the evaluators that reconstruct shading data at an
// intersection. The scene is loaded once and is immutable during a render.
package scene

import (
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// InvalidID marks an absent reference into one of the scene arrays.
const InvalidID = -1

// Camera describes a thin-lens or orthographic camera. Film is the size of
// the sensor's longer side in meters; Aspect (width over height) derives the
// shorter side.
type Camera struct {
	Frame        vmath.Frame
	Orthographic bool
	Lens         float32
	Film         float32
	Aspect       float32
	Focus        float32
	Aperture     float32
}

// NewCamera returns a camera with the conventional 35mm-like defaults.
func NewCamera() Camera {
	return Camera{
		Frame:  vmath.IdentityFrame,
		Lens:   0.050,
		Film:   0.036,
		Aspect: 1.5,
		Focus:  10000,
	}
}

// Shape is an indexed mesh of points, lines, triangles or quads with
// parallel per-vertex attribute arrays. Only one element array is expected
// to be non-empty.
type Shape struct {
	// elements
	Points    []int
	Lines     [][2]int
	Triangles [][3]int
	Quads     [][4]int

	// vertex attributes
	Positions []vmath.Vec3
	Normals   []vmath.Vec3
	Texcoords []vmath.Vec2
	Colors    []vmath.Vec4
	Radius    []float32
}

// NumElements returns the number of primitive elements in the shape.
func (s *Shape) NumElements() int {
	switch {
	case len(s.Triangles) > 0:
		return len(s.Triangles)
	case len(s.Quads) > 0:
		return len(s.Quads)
	case len(s.Lines) > 0:
		return len(s.Lines)
	default:
		return len(s.Points)
	}
}

// Instance places a shape with a material at a rigid frame. Instances are
// the unit of scene-level BVH leaves.
type Instance struct {
	Frame    vmath.Frame
	Shape    int
	Material int
}

// NewInstance returns an instance with the identity frame and no references.
func NewInstance() Instance {
	return Instance{Frame: vmath.IdentityFrame, Shape: InvalidID, Material: InvalidID}
}

// Material describes a surface or volume; Type selects which fields are
// meaningful, everything else stays at inert defaults.
type Material struct {
	Type     material.Kind
	Emission vmath.Vec3
	Color    vmath.Vec3
	// Roughness is perceptual; it is squared when evaluated at a point.
	Roughness    float32
	Metallic     float32
	IOR          float32
	Opacity      float32
	Scattering   vmath.Vec3
	ScAnisotropy float32
	TrDepth      float32

	EmissionTex   int
	ColorTex      int
	RoughnessTex  int
	ScatteringTex int
	NormalTex     int
}

// NewMaterial returns a matte material with inert defaults.
func NewMaterial() Material {
	return Material{
		Type:          material.Matte,
		IOR:           1.5,
		Opacity:       1,
		TrDepth:       0.01,
		EmissionTex:   InvalidID,
		ColorTex:      InvalidID,
		RoughnessTex:  InvalidID,
		ScatteringTex: InvalidID,
		NormalTex:     InvalidID,
	}
}

// Environment is an infinitely distant emitter, optionally modulated by an
// equirectangular texture.
type Environment struct {
	Frame       vmath.Frame
	Emission    vmath.Vec3
	EmissionTex int
}

// NewEnvironment returns a dark environment with the identity frame.
func NewEnvironment() Environment {
	return Environment{Frame: vmath.IdentityFrame, EmissionTex: InvalidID}
}

// Subdiv is a face-varying Catmull-Clark control mesh targeting a shape
// slot. Each attribute carries its own quad topology.
type Subdiv struct {
	QuadsPos      [][4]int
	QuadsNorm     [][4]int
	QuadsTexcoord [][4]int

	Positions []vmath.Vec3
	Normals   []vmath.Vec3
	Texcoords []vmath.Vec2

	Subdivisions    int
	Smooth          bool
	Displacement    float32
	DisplacementTex int

	Shape int
}

// NewSubdiv returns an empty control mesh with no displacement texture.
func NewSubdiv() Subdiv {
	return Subdiv{DisplacementTex: InvalidID, Shape: InvalidID}
}

// Scene is the read-only input to the renderer. All cross references are
// indices into the parallel arrays.
type Scene struct {
	Cameras      []Camera
	Instances    []Instance
	Shapes       []Shape
	Materials    []Material
	Textures     []Texture
	Environments []Environment
	Subdivs      []Subdiv
}

// IsVolumetric reports whether crossing the instance's surface enters or
// leaves a participating medium.
func (s *Scene) IsVolumetric(instance int) bool {
	m := &s.Materials[s.Instances[instance].Material]
	return m.Type == material.Refractive ||
		m.Type == material.Subsurface ||
		m.Type == material.Volumetric
}

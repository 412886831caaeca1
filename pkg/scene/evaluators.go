package scene

import (
	"github.com/rfeld/go-pathtracer/pkg/material"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// minRoughness keeps diffuse-style lobes away from the delta regime; squared
// because material points carry squared roughness.
const minRoughness = 0.03 * 0.03

// lerpable constrains attribute types that can be barycentrically blended.
type lerpable[T any] interface {
	Add(T) T
	Multiply(float32) T
}

// interpolateTriangle blends a per-vertex attribute with barycentric uv.
func interpolateTriangle[T lerpable[T]](p0, p1, p2 T, uv vmath.Vec2) T {
	return p0.Multiply(1 - uv.X - uv.Y).Add(p1.Multiply(uv.X)).Add(p2.Multiply(uv.Y))
}

// interpolateQuad blends a per-vertex attribute over a quad split into two
// triangles along its diagonal, linearly within each triangle.
func interpolateQuad[T lerpable[T]](p0, p1, p2, p3 T, uv vmath.Vec2) T {
	if uv.X+uv.Y <= 1 {
		return interpolateTriangle(p0, p1, p3, uv)
	}
	return interpolateTriangle(p2, p3, p1, vmath.Vec2{X: 1 - uv.X, Y: 1 - uv.Y})
}

// interpolateLine blends a per-vertex attribute along a segment.
func interpolateLine[T lerpable[T]](p0, p1 T, u float32) T {
	return p0.Multiply(1 - u).Add(p1.Multiply(u))
}

// TriangleArea returns the area of the triangle (p0, p1, p2).
func TriangleArea(p0, p1, p2 vmath.Vec3) float32 {
	return p1.Subtract(p0).Cross(p2.Subtract(p0)).Length() / 2
}

// QuadArea returns the area of the quad (p0, p1, p2, p3) as two triangles.
func QuadArea(p0, p1, p2, p3 vmath.Vec3) float32 {
	area := TriangleArea(p0, p1, p3)
	if p2 != p3 {
		area += TriangleArea(p2, p3, p1)
	}
	return area
}

// TriangleNormal returns the unit geometric normal of a triangle.
func TriangleNormal(p0, p1, p2 vmath.Vec3) vmath.Vec3 {
	return p1.Subtract(p0).Cross(p2.Subtract(p0)).Normalize()
}

// QuadNormal returns the unit area-weighted geometric normal of a quad.
func QuadNormal(p0, p1, p2, p3 vmath.Vec3) vmath.Vec3 {
	n := p1.Subtract(p0).Cross(p3.Subtract(p0)).
		Add(p3.Subtract(p2).Cross(p1.Subtract(p2)))
	return n.Normalize()
}

// orthonormalize projects a out of b and normalizes, with b assumed unit.
func orthonormalize(a, b vmath.Vec3) vmath.Vec3 {
	return a.Subtract(b.Multiply(a.Dot(b))).Normalize()
}

// EvalPosition interpolates the surface position of an element at uv and
// transforms it by the instance frame.
func EvalPosition(s *Scene, instance, element int, uv vmath.Vec2) vmath.Vec3 {
	inst := &s.Instances[instance]
	shape := &s.Shapes[inst.Shape]
	var local vmath.Vec3
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		local = interpolateTriangle(
			shape.Positions[t[0]], shape.Positions[t[1]], shape.Positions[t[2]], uv)
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		local = interpolateQuad(
			shape.Positions[q[0]], shape.Positions[q[1]],
			shape.Positions[q[2]], shape.Positions[q[3]], uv)
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		local = interpolateLine(shape.Positions[l[0]], shape.Positions[l[1]], uv.X)
	case len(shape.Points) > 0:
		local = shape.Positions[shape.Points[element]]
	default:
		return vmath.Vec3{}
	}
	return inst.Frame.TransformPoint(local)
}

// EvalElementNormal returns the geometric normal of an element, transformed
// as a direction by the instance frame.
func EvalElementNormal(s *Scene, instance, element int) vmath.Vec3 {
	inst := &s.Instances[instance]
	shape := &s.Shapes[inst.Shape]
	var local vmath.Vec3
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		local = TriangleNormal(
			shape.Positions[t[0]], shape.Positions[t[1]], shape.Positions[t[2]])
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		local = QuadNormal(
			shape.Positions[q[0]], shape.Positions[q[1]],
			shape.Positions[q[2]], shape.Positions[q[3]])
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		local = shape.Positions[l[1]].Subtract(shape.Positions[l[0]]).Normalize()
	default:
		local = vmath.Vec3{Z: 1}
	}
	return inst.Frame.TransformNormal(local, false)
}

// EvalNormal interpolates the per-vertex shading normal at uv, falling back
// to the geometric normal when the shape carries none.
func EvalNormal(s *Scene, instance, element int, uv vmath.Vec2) vmath.Vec3 {
	inst := &s.Instances[instance]
	shape := &s.Shapes[inst.Shape]
	if len(shape.Normals) == 0 {
		return EvalElementNormal(s, instance, element)
	}
	var local vmath.Vec3
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		local = interpolateTriangle(
			shape.Normals[t[0]], shape.Normals[t[1]], shape.Normals[t[2]], uv)
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		local = interpolateQuad(
			shape.Normals[q[0]], shape.Normals[q[1]],
			shape.Normals[q[2]], shape.Normals[q[3]], uv)
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		local = interpolateLine(shape.Normals[l[0]], shape.Normals[l[1]], uv.X)
	case len(shape.Points) > 0:
		local = shape.Normals[shape.Points[element]]
	default:
		return vmath.Vec3{}
	}
	return inst.Frame.TransformNormal(local.Normalize(), false)
}

// EvalTexcoord interpolates the texture coordinates of an element at uv, or
// returns uv itself when the shape carries none.
func EvalTexcoord(s *Scene, instance, element int, uv vmath.Vec2) vmath.Vec2 {
	shape := &s.Shapes[s.Instances[instance].Shape]
	if len(shape.Texcoords) == 0 {
		return uv
	}
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		return interpolateTriangle(
			shape.Texcoords[t[0]], shape.Texcoords[t[1]], shape.Texcoords[t[2]], uv)
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		return interpolateQuad(
			shape.Texcoords[q[0]], shape.Texcoords[q[1]],
			shape.Texcoords[q[2]], shape.Texcoords[q[3]], uv)
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		return interpolateLine(shape.Texcoords[l[0]], shape.Texcoords[l[1]], uv.X)
	case len(shape.Points) > 0:
		return shape.Texcoords[shape.Points[element]]
	default:
		return uv
	}
}

// EvalColor interpolates the per-vertex color of an element at uv, white
// when the shape carries none.
func EvalColor(s *Scene, instance, element int, uv vmath.Vec2) vmath.Vec4 {
	shape := &s.Shapes[s.Instances[instance].Shape]
	if len(shape.Colors) == 0 {
		return vmath.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	}
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		return interpolateTriangle(
			shape.Colors[t[0]], shape.Colors[t[1]], shape.Colors[t[2]], uv)
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		return interpolateQuad(
			shape.Colors[q[0]], shape.Colors[q[1]],
			shape.Colors[q[2]], shape.Colors[q[3]], uv)
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		return interpolateLine(shape.Colors[l[0]], shape.Colors[l[1]], uv.X)
	case len(shape.Points) > 0:
		return shape.Colors[shape.Points[element]]
	default:
		return vmath.Vec4{X: 1, Y: 1, Z: 1, W: 1}
	}
}

// EvalShadingPosition returns the position used for shading; for meshes this
// is the interpolated surface position.
func EvalShadingPosition(s *Scene, instance, element int, uv vmath.Vec2, outgoing vmath.Vec3) vmath.Vec3 {
	return EvalPosition(s, instance, element, uv)
}

// evalNormalMap perturbs the shading normal with a tangent-space normal map.
func evalNormalMap(s *Scene, instance, element int, uv vmath.Vec2, normal vmath.Vec3) vmath.Vec3 {
	inst := &s.Instances[instance]
	shape := &s.Shapes[inst.Shape]
	mat := &s.Materials[inst.Material]
	if len(shape.Triangles) == 0 || len(shape.Texcoords) == 0 {
		return normal
	}

	texcoord := EvalTexcoord(s, instance, element, uv)
	lookup := EvalTexture(s, mat.NormalTex, texcoord, false).XYZ()
	tangentSpace := lookup.Multiply(2).Subtract(vmath.Vec3{X: 1, Y: 1, Z: 1})

	tri := shape.Triangles[element]
	tu, tv := triangleTangentsFromUV(
		shape.Positions[tri[0]], shape.Positions[tri[1]], shape.Positions[tri[2]],
		shape.Texcoords[tri[0]], shape.Texcoords[tri[1]], shape.Texcoords[tri[2]])
	tu = inst.Frame.TransformDirection(tu)
	tv = inst.Frame.TransformVector(tv)

	x := orthonormalize(tu, normal)
	y := normal.Cross(x)
	if y.Dot(tv) < 0 {
		tangentSpace.Y = -tangentSpace.Y
	}
	frame := vmath.NewFrame(x, y.Normalize(), normal, vmath.Vec3{})
	return frame.TransformDirection(tangentSpace)
}

// triangleTangentsFromUV derives the tangent/bitangent pair aligned with the
// texture parameterization of a triangle.
func triangleTangentsFromUV(p0, p1, p2 vmath.Vec3, uv0, uv1, uv2 vmath.Vec2) (vmath.Vec3, vmath.Vec3) {
	p := p1.Subtract(p0)
	q := p2.Subtract(p0)
	s := vmath.Vec2{X: uv1.X - uv0.X, Y: uv2.X - uv0.X}
	t := vmath.Vec2{X: uv1.Y - uv0.Y, Y: uv2.Y - uv0.Y}
	div := s.X*t.Y - s.Y*t.X
	if div == 0 {
		return vmath.Vec3{X: 1}, vmath.Vec3{Y: 1}
	}
	tu := p.Multiply(t.Y).Subtract(q.Multiply(t.X)).Multiply(1 / div)
	tv := q.Multiply(s.X).Subtract(p.Multiply(s.Y)).Multiply(1 / div)
	return tu, tv
}

// EvalShadingNormal returns the normal used for shading: normal-mapped if
// the material carries a map, and flipped towards the outgoing direction
// except for refractive surfaces which keep their orientation.
func EvalShadingNormal(s *Scene, instance, element int, uv vmath.Vec2, outgoing vmath.Vec3) vmath.Vec3 {
	inst := &s.Instances[instance]
	shape := &s.Shapes[inst.Shape]
	mat := &s.Materials[inst.Material]
	switch {
	case len(shape.Triangles) > 0 || len(shape.Quads) > 0:
		normal := EvalNormal(s, instance, element, uv)
		if mat.NormalTex != InvalidID {
			normal = evalNormalMap(s, instance, element, uv, normal)
		}
		if mat.Type == material.Refractive {
			return normal
		}
		if normal.Dot(outgoing) >= 0 {
			return normal
		}
		return normal.Negate()
	case len(shape.Lines) > 0:
		tangent := EvalNormal(s, instance, element, uv)
		return orthonormalize(outgoing, tangent)
	default:
		return outgoing
	}
}

// EvalMaterial reconstructs the material at a surface point, folding in
// texture and vertex-color modulation and squaring perceptual roughness.
func EvalMaterial(s *Scene, instance, element int, uv vmath.Vec2) material.Point {
	inst := &s.Instances[instance]
	mat := &s.Materials[inst.Material]
	texcoord := EvalTexcoord(s, instance, element, uv)

	emissionTex := EvalTexture(s, mat.EmissionTex, texcoord, true)
	colorTex := EvalTexture(s, mat.ColorTex, texcoord, true)
	roughnessTex := EvalTexture(s, mat.RoughnessTex, texcoord, false)
	scatteringTex := EvalTexture(s, mat.ScatteringTex, texcoord, true)
	colorShape := EvalColor(s, instance, element, uv)

	point := material.Point{
		Kind:       mat.Type,
		Emission:   mat.Emission.MultiplyVec(emissionTex.XYZ()),
		Color:      mat.Color.MultiplyVec(colorTex.XYZ()).MultiplyVec(colorShape.XYZ()),
		Opacity:    mat.Opacity * colorTex.W * colorShape.W,
		Roughness:  mat.Roughness * roughnessTex.X,
		Metallic:   mat.Metallic,
		IOR:        mat.IOR,
		Scattering: mat.Scattering.MultiplyVec(scatteringTex.XYZ()),
		Anisotropy: mat.ScAnisotropy,
		TrDepth:    mat.TrDepth,
	}
	point.Roughness *= point.Roughness

	// volume density from transmission color
	if mat.Type == material.Refractive ||
		mat.Type == material.Subsurface ||
		mat.Type == material.Volumetric {
		c := point.Color.Clamp(0.0001, 1)
		point.Density = vmath.Vec3{
			X: -vmath.Log(c.X),
			Y: -vmath.Log(c.Y),
			Z: -vmath.Log(c.Z),
		}.Multiply(1 / point.TrDepth)
	}

	switch mat.Type {
	case material.Matte, material.GltfPbr, material.Glossy:
		point.Roughness = vmath.Clamp(point.Roughness, minRoughness, 1)
	default:
		if point.Roughness < minRoughness {
			point.Roughness = 0
		}
	}

	if point.Opacity > 0.999 {
		point.Opacity = 1
	}

	return point
}

// EvalEnvironment sums the emission of all environments along a direction.
func EvalEnvironment(s *Scene, direction vmath.Vec3) vmath.Vec3 {
	emission := vmath.Vec3{}
	for i := range s.Environments {
		env := &s.Environments[i]
		wl := env.Frame.Inverse(false).TransformDirection(direction)
		texcoord := vmath.Vec2{
			X: vmath.Atan2(wl.Z, wl.X) / (2 * vmath.Pi),
			Y: vmath.Acos(vmath.Clamp(wl.Y, -1, 1)) / vmath.Pi,
		}
		if texcoord.X < 0 {
			texcoord.X += 1
		}
		emission = emission.Add(
			env.Emission.MultiplyVec(EvalTexture(s, env.EmissionTex, texcoord, true).XYZ()))
	}
	return emission
}

// EvalCamera builds the primary ray through normalized film coordinates uv
// with a lens sample for depth of field.
func EvalCamera(cam *Camera, uv vmath.Vec2, lensUV vmath.Vec2) vmath.Ray {
	film := vmath.Vec2{X: cam.Film, Y: cam.Film / cam.Aspect}
	if cam.Aspect < 1 {
		film = vmath.Vec2{X: cam.Film * cam.Aspect, Y: cam.Film}
	}

	if !cam.Orthographic {
		q := vmath.Vec3{
			X: film.X * (0.5 - uv.X),
			Y: film.Y * (uv.Y - 0.5),
			Z: cam.Lens,
		}
		// central ray direction through the pinhole
		dc := q.Normalize().Negate()
		e := vmath.Vec3{
			X: lensUV.X * cam.Aperture / 2,
			Y: lensUV.Y * cam.Aperture / 2,
		}
		// focus plane intersection
		p := dc.Multiply(cam.Focus / vmath.Abs(dc.Z))
		d := p.Subtract(e).Normalize()
		return vmath.NewRay(
			cam.Frame.TransformPoint(e),
			cam.Frame.TransformDirection(d))
	}

	scale := 1 / cam.Lens
	q := vmath.Vec3{
		X: film.X * (0.5 - uv.X) * scale,
		Y: film.Y * (uv.Y - 0.5) * scale,
		Z: cam.Lens,
	}
	e := vmath.Vec3{X: -q.X, Y: -q.Y}.Add(vmath.Vec3{
		X: lensUV.X * cam.Aperture / 2,
		Y: lensUV.Y * cam.Aperture / 2,
	})
	p := vmath.Vec3{X: -q.X, Y: -q.Y, Z: -cam.Focus}
	d := p.Subtract(e).Normalize()
	return vmath.NewRay(
		cam.Frame.TransformPoint(e),
		cam.Frame.TransformDirection(d))
}

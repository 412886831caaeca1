package scene

import (
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Shape construction and mesh utilities shared by the tesselator, the test
// scenes and the CLI demo scenes.

// MakeRect returns a unit quad in the XY plane facing +Z, scaled by scale.
func MakeRect(scale float32) Shape {
	return Shape{
		Quads: [][4]int{{0, 1, 2, 3}},
		Positions: []vmath.Vec3{
			{X: -scale, Y: -scale}, {X: scale, Y: -scale},
			{X: scale, Y: scale}, {X: -scale, Y: scale},
		},
		Normals: []vmath.Vec3{
			{Z: 1}, {Z: 1}, {Z: 1}, {Z: 1},
		},
		Texcoords: []vmath.Vec2{
			{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}, {X: 0, Y: 0},
		},
	}
}

// MakeCube returns the unit cube as six quads with eight shared vertices,
// the canonical Catmull-Clark control mesh.
func MakeCube(scale float32) Shape {
	p := []vmath.Vec3{
		{X: -1, Y: -1, Z: -1}, {X: 1, Y: -1, Z: -1},
		{X: 1, Y: 1, Z: -1}, {X: -1, Y: 1, Z: -1},
		{X: -1, Y: -1, Z: 1}, {X: 1, Y: -1, Z: 1},
		{X: 1, Y: 1, Z: 1}, {X: -1, Y: 1, Z: 1},
	}
	for i := range p {
		p[i] = p[i].Multiply(scale)
	}
	return Shape{
		Quads: [][4]int{
			{0, 3, 2, 1}, {4, 5, 6, 7},
			{0, 1, 5, 4}, {2, 3, 7, 6},
			{1, 2, 6, 5}, {3, 0, 4, 7},
		},
		Positions: p,
	}
}

// MakeUVSphere returns a sphere triangulated from an equirectangular grid
// with steps segments in longitude and latitude.
func MakeUVSphere(steps int, scale float32) Shape {
	var shape Shape
	for j := 0; j <= steps; j++ {
		v := float32(j) / float32(steps)
		theta := v * vmath.Pi
		for i := 0; i <= steps; i++ {
			u := float32(i) / float32(steps)
			phi := u * 2 * vmath.Pi
			n := vmath.Vec3{
				X: vmath.Cos(phi) * vmath.Sin(theta),
				Y: vmath.Cos(theta),
				Z: vmath.Sin(phi) * vmath.Sin(theta),
			}
			shape.Positions = append(shape.Positions, n.Multiply(scale))
			shape.Normals = append(shape.Normals, n)
			shape.Texcoords = append(shape.Texcoords, vmath.Vec2{X: u, Y: v})
		}
	}
	stride := steps + 1
	for j := 0; j < steps; j++ {
		for i := 0; i < steps; i++ {
			v00 := j*stride + i
			v10 := j*stride + i + 1
			v01 := (j+1)*stride + i
			v11 := (j+1)*stride + i + 1
			shape.Triangles = append(shape.Triangles,
				[3]int{v00, v10, v11}, [3]int{v00, v11, v01})
		}
	}
	return shape
}

// QuadsToTriangles splits each quad into two triangles, emitting a single
// triangle for degenerate quads with a repeated last vertex.
func QuadsToTriangles(quads [][4]int) [][3]int {
	triangles := make([][3]int, 0, 2*len(quads))
	for _, q := range quads {
		triangles = append(triangles, [3]int{q[0], q[1], q[3]})
		if q[2] != q[3] {
			triangles = append(triangles, [3]int{q[2], q[3], q[1]})
		}
	}
	return triangles
}

// TrianglesNormals computes area-weighted smooth vertex normals.
func TrianglesNormals(triangles [][3]int, positions []vmath.Vec3) []vmath.Vec3 {
	normals := make([]vmath.Vec3, len(positions))
	for _, t := range triangles {
		n := positions[t[1]].Subtract(positions[t[0]]).
			Cross(positions[t[2]].Subtract(positions[t[0]]))
		for _, v := range t {
			normals[v] = normals[v].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// QuadsNormals computes area-weighted smooth vertex normals over quads.
func QuadsNormals(quads [][4]int, positions []vmath.Vec3) []vmath.Vec3 {
	normals := make([]vmath.Vec3, len(positions))
	for _, q := range quads {
		n := positions[q[1]].Subtract(positions[q[0]]).
			Cross(positions[q[3]].Subtract(positions[q[0]])).
			Add(positions[q[3]].Subtract(positions[q[2]]).
				Cross(positions[q[1]].Subtract(positions[q[2]])))
		for k, v := range q {
			if k == 3 && q[2] == q[3] {
				continue
			}
			normals[v] = normals[v].Add(n)
		}
	}
	for i := range normals {
		normals[i] = normals[i].Normalize()
	}
	return normals
}

// ShapeBounds returns the bounding box of a shape's positions.
func ShapeBounds(shape *Shape) vmath.BBox {
	bounds := vmath.EmptyBBox()
	for _, p := range shape.Positions {
		bounds = bounds.UnionPoint(p)
	}
	return bounds
}

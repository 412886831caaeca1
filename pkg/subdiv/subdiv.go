// Package subdiv implements the Catmull-Clark subdivision tesselator: an
// iterated face-vertex refinement over face-varying quad topology with
// boundary and crease rules, followed by a face-varying split into a
// triangle mesh and optional displacement mapping.
package subdiv

import (
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// vertex valence classes used by the averaging pass
const (
	classCorner   = 0 // locked
	classCrease   = 1 // boundary or crease edge
	classInterior = 2
)

// EdgeMap assigns a unique index to every undirected edge of a quad mesh
// and counts the faces sharing each edge.
type EdgeMap struct {
	index map[[2]int]int
	edges [][2]int
	faces []int
}

// edgeKey canonicalizes an undirected edge.
func edgeKey(a, b int) [2]int {
	if a < b {
		return [2]int{a, b}
	}
	return [2]int{b, a}
}

// MakeEdgeMap builds the edge map of a quad mesh; triangles are quads whose
// last two indices coincide.
func MakeEdgeMap(quads [][4]int) *EdgeMap {
	em := &EdgeMap{index: make(map[[2]int]int)}
	for _, q := range quads {
		if q[2] != q[3] {
			em.insert(q[0], q[1])
			em.insert(q[1], q[2])
			em.insert(q[2], q[3])
			em.insert(q[3], q[0])
		} else {
			em.insert(q[0], q[1])
			em.insert(q[1], q[2])
			em.insert(q[2], q[0])
		}
	}
	return em
}

func (em *EdgeMap) insert(a, b int) {
	key := edgeKey(a, b)
	if idx, ok := em.index[key]; ok {
		em.faces[idx]++
		return
	}
	em.index[key] = len(em.edges)
	em.edges = append(em.edges, [2]int{a, b})
	em.faces = append(em.faces, 1)
}

// EdgeIndex returns the index assigned to the undirected edge (a, b).
func (em *EdgeMap) EdgeIndex(a, b int) int {
	return em.index[edgeKey(a, b)]
}

// Edges returns all edges in insertion order.
func (em *EdgeMap) Edges() [][2]int { return em.edges }

// Boundary returns the edges used by exactly one face.
func (em *EdgeMap) Boundary() [][2]int {
	var boundary [][2]int
	for i, e := range em.edges {
		if em.faces[i] == 1 {
			boundary = append(boundary, e)
		}
	}
	return boundary
}

// attribute constrains the vertex attribute types the refinement blends.
type attribute[T any] interface {
	Add(T) T
	Subtract(T) T
	Multiply(float32) T
}

// SubdivideCatmullClark performs one Catmull-Clark refinement step over a
// face-varying quad topology and its vertex attribute, returning the new
// topology and attribute arrays. With lockBoundary, boundary vertices stay
// fixed; otherwise boundary edges act as creases.
func SubdivideCatmullClark[T attribute[T]](quads [][4]int, verts []T, lockBoundary bool) ([][4]int, []T) {
	emap := MakeEdgeMap(quads)
	edges := emap.Edges()
	boundary := emap.Boundary()

	nv := len(verts)
	ne := len(edges)

	// new vertices: originals, edge midpoints, face centroids
	tverts := make([]T, 0, nv+ne+len(quads))
	tverts = append(tverts, verts...)
	for _, e := range edges {
		tverts = append(tverts, verts[e[0]].Add(verts[e[1]]).Multiply(0.5))
	}
	for _, q := range quads {
		if q[2] != q[3] {
			tverts = append(tverts,
				verts[q[0]].Add(verts[q[1]]).Add(verts[q[2]]).Add(verts[q[3]]).Multiply(0.25))
		} else {
			tverts = append(tverts,
				verts[q[0]].Add(verts[q[1]]).Add(verts[q[2]]).Multiply(1.0/3.0))
		}
	}

	// each quad splits into four faces, each triangle into three
	tquads := make([][4]int, 0, 4*len(quads))
	for i, q := range quads {
		face := nv + ne + i
		if q[2] != q[3] {
			tquads = append(tquads,
				[4]int{q[0], nv + emap.EdgeIndex(q[0], q[1]), face, nv + emap.EdgeIndex(q[3], q[0])},
				[4]int{q[1], nv + emap.EdgeIndex(q[1], q[2]), face, nv + emap.EdgeIndex(q[0], q[1])},
				[4]int{q[2], nv + emap.EdgeIndex(q[2], q[3]), face, nv + emap.EdgeIndex(q[1], q[2])},
				[4]int{q[3], nv + emap.EdgeIndex(q[3], q[0]), face, nv + emap.EdgeIndex(q[2], q[3])})
		} else {
			tquads = append(tquads,
				[4]int{q[0], nv + emap.EdgeIndex(q[0], q[1]), face, nv + emap.EdgeIndex(q[2], q[0])},
				[4]int{q[1], nv + emap.EdgeIndex(q[1], q[2]), face, nv + emap.EdgeIndex(q[0], q[1])},
				[4]int{q[2], nv + emap.EdgeIndex(q[2], q[0]), face, nv + emap.EdgeIndex(q[1], q[2])})
		}
	}

	// refined boundary: each boundary edge splits at its midpoint
	tboundary := make([][2]int, 0, 2*len(boundary))
	for _, e := range boundary {
		mid := nv + emap.EdgeIndex(e[0], e[1])
		tboundary = append(tboundary, [2]int{e[0], mid}, [2]int{mid, e[1]})
	}

	var creaseEdges [][2]int
	var creaseVerts []int
	if lockBoundary {
		for _, b := range tboundary {
			creaseVerts = append(creaseVerts, b[0], b[1])
		}
	} else {
		creaseEdges = tboundary
	}

	valence := make([]int, len(tverts))
	for i := range valence {
		valence[i] = classInterior
	}
	for _, e := range tboundary {
		class := classCrease
		if lockBoundary {
			class = classCorner
		}
		valence[e[0]] = class
		valence[e[1]] = class
	}

	// averaging pass
	avert := make([]T, len(tverts))
	acount := make([]int, len(tverts))
	for _, p := range creaseVerts {
		if valence[p] != classCorner {
			continue
		}
		avert[p] = avert[p].Add(tverts[p])
		acount[p]++
	}
	for _, e := range creaseEdges {
		c := tverts[e[0]].Add(tverts[e[1]]).Multiply(0.5)
		for _, vid := range e {
			if valence[vid] != classCrease {
				continue
			}
			avert[vid] = avert[vid].Add(c)
			acount[vid]++
		}
	}
	for _, q := range tquads {
		c := tverts[q[0]].Add(tverts[q[1]]).Add(tverts[q[2]]).Add(tverts[q[3]]).Multiply(0.25)
		for _, vid := range q {
			if valence[vid] != classInterior {
				continue
			}
			avert[vid] = avert[vid].Add(c)
			acount[vid]++
		}
	}
	for i := range avert {
		avert[i] = avert[i].Multiply(1 / float32(acount[i]))
	}

	// correction for interior vertices
	for i := range avert {
		if valence[i] != classInterior {
			continue
		}
		avert[i] = tverts[i].Add(avert[i].Subtract(tverts[i]).Multiply(4 / float32(acount[i])))
	}

	return tquads, avert
}

// SplitFacevarying converts face-varying topology into a single shared
// topology by deduplicating (position, normal, texcoord) index triples.
func SplitFacevarying(
	quadsPos, quadsNorm, quadsTexcoord [][4]int,
	positions, normals []vmath.Vec3, texcoords []vmath.Vec2,
) (quads [][4]int, splitPositions, splitNormals []vmath.Vec3, splitTexcoords []vmath.Vec2) {
	type corner struct{ pos, norm, tex int }
	indices := make(map[corner]int)

	quads = make([][4]int, len(quadsPos))
	for f := range quadsPos {
		for k := 0; k < 4; k++ {
			c := corner{pos: quadsPos[f][k], norm: -1, tex: -1}
			if len(quadsNorm) > 0 {
				c.norm = quadsNorm[f][k]
			}
			if len(quadsTexcoord) > 0 {
				c.tex = quadsTexcoord[f][k]
			}
			idx, ok := indices[c]
			if !ok {
				idx = len(indices)
				indices[c] = idx
				splitPositions = append(splitPositions, positions[c.pos])
				if c.norm >= 0 {
					splitNormals = append(splitNormals, normals[c.norm])
				}
				if c.tex >= 0 {
					splitTexcoords = append(splitTexcoords, texcoords[c.tex])
				}
			}
			quads[f][k] = idx
		}
	}
	return quads, splitPositions, splitNormals, splitTexcoords
}

// Tesselate refines a subdivision surface to its configured level, splits
// the face-varying attributes into a triangle mesh and applies the optional
// displacement map.
func Tesselate(subdiv *scene.Subdiv, scn *scene.Scene) scene.Shape {
	quadsPos := subdiv.QuadsPos
	positions := subdiv.Positions
	quadsTexcoord := subdiv.QuadsTexcoord
	texcoords := subdiv.Texcoords
	quadsNorm := subdiv.QuadsNorm
	normals := subdiv.Normals

	if subdiv.Subdivisions > 0 {
		for level := 0; level < subdiv.Subdivisions; level++ {
			quadsPos, positions = SubdivideCatmullClark(quadsPos, positions, false)
		}
		// texcoords lock their boundary to keep uv seams in place
		for level := 0; level < subdiv.Subdivisions; level++ {
			quadsTexcoord, texcoords = SubdivideCatmullClark(quadsTexcoord, texcoords, true)
		}
		if subdiv.Smooth {
			normals = scene.QuadsNormals(quadsPos, positions)
			quadsNorm = quadsPos
		} else {
			normals = nil
			quadsNorm = nil
		}
	}

	var shape scene.Shape
	quads, splitPositions, splitNormals, splitTexcoords := SplitFacevarying(
		quadsPos, quadsNorm, quadsTexcoord, positions, normals, texcoords)
	shape.Positions = splitPositions
	shape.Normals = splitNormals
	shape.Texcoords = splitTexcoords
	shape.Triangles = scene.QuadsToTriangles(quads)

	if subdiv.Displacement != 0 && subdiv.DisplacementTex != scene.InvalidID &&
		len(shape.Triangles) > 0 {
		displaceShape(&shape, subdiv, scn)
	}

	return shape
}

// displaceShape offsets vertices along their normals by the displacement
// texture; byte textures are recentred so mid-grey maps to zero.
func displaceShape(shape *scene.Shape, subdiv *scene.Subdiv, scn *scene.Scene) {
	if len(shape.Normals) == 0 {
		shape.Normals = scene.TrianglesNormals(shape.Triangles, shape.Positions)
	}
	texture := &scn.Textures[subdiv.DisplacementTex]
	for idx := range shape.Positions {
		var uv vmath.Vec2
		if len(shape.Texcoords) > 0 {
			uv = shape.Texcoords[idx]
		}
		disp := scene.EvalTexture(scn, subdiv.DisplacementTex, uv, true).XYZ().Mean()
		if len(texture.PixelsB) > 0 {
			disp -= 0.5
		}
		shape.Positions[idx] = shape.Positions[idx].
			Add(shape.Normals[idx].Multiply(subdiv.Displacement * disp))
	}
	if subdiv.Smooth {
		shape.Normals = scene.TrianglesNormals(shape.Triangles, shape.Positions)
	} else {
		shape.Normals = nil
	}
}

// TesselateSurfaces refines every subdivision surface of the scene into its
// target shape slot. Runs once before rendering.
func TesselateSurfaces(scn *scene.Scene) {
	for i := range scn.Subdivs {
		subdiv := &scn.Subdivs[i]
		scn.Shapes[subdiv.Shape] = Tesselate(subdiv, scn)
	}
}

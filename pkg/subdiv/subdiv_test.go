package subdiv

import (
	"testing"

	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

func TestEdgeMapCube(t *testing.T) {
	cube := scene.MakeCube(1)
	emap := MakeEdgeMap(cube.Quads)
	if got := len(emap.Edges()); got != 12 {
		t.Errorf("cube should have 12 edges, got %d", got)
	}
	if got := len(emap.Boundary()); got != 0 {
		t.Errorf("closed cube should have no boundary, got %d edges", got)
	}
	// undirected lookup
	if emap.EdgeIndex(0, 1) != emap.EdgeIndex(1, 0) {
		t.Error("edge lookup should ignore direction")
	}
}

func TestEdgeMapBoundary(t *testing.T) {
	quad := [][4]int{{0, 1, 2, 3}}
	emap := MakeEdgeMap(quad)
	if got := len(emap.Boundary()); got != 4 {
		t.Errorf("single quad should have 4 boundary edges, got %d", got)
	}
}

func TestSubdivideVertexCountRecurrence(t *testing.T) {
	// V' = V + E + F for a closed quad mesh
	cube := scene.MakeCube(1)
	quads, verts := cube.Quads, cube.Positions
	for level := 0; level < 3; level++ {
		emap := MakeEdgeMap(quads)
		wantVerts := len(verts) + len(emap.Edges()) + len(quads)
		wantFaces := 4 * len(quads)
		quads, verts = SubdivideCatmullClark(quads, verts, true)
		if len(verts) != wantVerts {
			t.Fatalf("level %d: vertex count %d, expected %d", level, len(verts), wantVerts)
		}
		if len(quads) != wantFaces {
			t.Fatalf("level %d: face count %d, expected %d", level, len(quads), wantFaces)
		}
	}
}

func TestSubdivideCubeThreeLevels(t *testing.T) {
	cube := scene.MakeCube(1)
	quads, verts := cube.Quads, cube.Positions
	for level := 0; level < 3; level++ {
		quads, verts = SubdivideCatmullClark(quads, verts, true)
	}
	if len(verts) != 386 {
		t.Errorf("cube at level 3 should have 386 vertices, got %d", len(verts))
	}
	if len(quads) != 384 {
		t.Errorf("cube at level 3 should have 384 quads, got %d", len(quads))
	}
}

func TestSubdivideCubeApproachesSphere(t *testing.T) {
	// the limit surface of a cube is sphere-like; check the radius spread
	cube := scene.MakeCube(1)
	quads, verts := cube.Quads, cube.Positions
	for level := 0; level < 3; level++ {
		quads, verts = SubdivideCatmullClark(quads, verts, true)
	}

	mean := float32(0)
	for _, v := range verts {
		mean += v.Length()
	}
	mean /= float32(len(verts))

	maxDev := float32(0)
	for _, v := range verts {
		maxDev = max(maxDev, vmath.Abs(v.Length()-mean))
	}
	if maxDev/mean > 0.04 {
		t.Errorf("level-3 cube deviates from sphere by %v (relative), expected <= 0.04",
			maxDev/mean)
	}
	if len(quads) != 384 {
		t.Fatalf("unexpected face count %d", len(quads))
	}
}

func TestSubdivideLockedBoundaryStaysPut(t *testing.T) {
	// a flat quad with locked boundary keeps its corners
	quads := [][4]int{{0, 1, 2, 3}}
	verts := []vmath.Vec3{{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}}
	corners := append([]vmath.Vec3(nil), verts...)

	newQuads, newVerts := SubdivideCatmullClark(quads, verts, true)
	if len(newQuads) != 4 {
		t.Fatalf("quad should split into 4, got %d", len(newQuads))
	}
	for _, c := range corners {
		found := false
		for _, v := range newVerts {
			if v.Subtract(c).Length() < 1e-6 {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("locked corner %v moved", c)
		}
	}
}

func TestSubdivideTrianglesSplitInThree(t *testing.T) {
	quads := [][4]int{{0, 1, 2, 2}}
	verts := []vmath.Vec3{{}, {X: 1}, {Y: 1}}
	newQuads, newVerts := SubdivideCatmullClark(quads, verts, true)
	if len(newQuads) != 3 {
		t.Errorf("triangle should split into 3 quads, got %d", len(newQuads))
	}
	// originals + 3 edge points + 1 face point
	if len(newVerts) != 7 {
		t.Errorf("expected 7 vertices, got %d", len(newVerts))
	}
}

func TestSplitFacevarying(t *testing.T) {
	// two quads sharing an edge but with distinct texcoords along it
	quadsPos := [][4]int{{0, 1, 2, 3}, {1, 4, 5, 2}}
	positions := []vmath.Vec3{
		{}, {X: 1}, {X: 1, Y: 1}, {Y: 1}, {X: 2}, {X: 2, Y: 1},
	}
	quadsTexcoord := [][4]int{{0, 1, 2, 3}, {4, 5, 6, 7}}
	texcoords := []vmath.Vec2{
		{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
		{}, {X: 1}, {X: 1, Y: 1}, {Y: 1},
	}

	quads, splitPos, _, splitTex := SplitFacevarying(
		quadsPos, nil, quadsTexcoord, positions, nil, texcoords)
	if len(quads) != 2 {
		t.Fatalf("face count changed: %d", len(quads))
	}
	// the shared corners split because their texcoords differ
	if len(splitPos) != 8 || len(splitTex) != 8 {
		t.Errorf("expected 8 split vertices, got %d positions, %d texcoords",
			len(splitPos), len(splitTex))
	}
}

func TestTesselateProducesTriangleMesh(t *testing.T) {
	scn := &scene.Scene{}
	scn.Shapes = append(scn.Shapes, scene.Shape{})
	cube := scene.MakeCube(1)
	subdiv := scene.NewSubdiv()
	subdiv.QuadsPos = cube.Quads
	subdiv.Positions = cube.Positions
	subdiv.Subdivisions = 2
	subdiv.Smooth = true
	subdiv.Shape = 0
	scn.Subdivs = append(scn.Subdivs, subdiv)

	TesselateSurfaces(scn)
	shape := &scn.Shapes[0]
	if len(shape.Triangles) == 0 {
		t.Fatal("tesselation should produce triangles")
	}
	if len(shape.Quads) != 0 {
		t.Error("tesselation should clear quads")
	}
	if len(shape.Normals) != len(shape.Positions) {
		t.Errorf("smooth tesselation should carry normals: %d normals, %d positions",
			len(shape.Normals), len(shape.Positions))
	}
}

func TestTesselateDisplacement(t *testing.T) {
	scn := &scene.Scene{}
	scn.Shapes = append(scn.Shapes, scene.Shape{})
	// constant white float displacement texture pushes along the normal
	scn.Textures = append(scn.Textures, scene.Texture{
		Width: 1, Height: 1, Linear: true,
		PixelsF: []vmath.Vec4{{X: 1, Y: 1, Z: 1, W: 1}},
		Nearest: true,
	})

	rect := scene.MakeRect(1)
	subdiv := scene.NewSubdiv()
	subdiv.QuadsPos = rect.Quads
	subdiv.Positions = rect.Positions
	subdiv.QuadsTexcoord = rect.Quads
	subdiv.Texcoords = rect.Texcoords
	subdiv.Subdivisions = 0
	subdiv.Smooth = true
	subdiv.Displacement = 0.5
	subdiv.DisplacementTex = 0
	subdiv.Shape = 0
	scn.Subdivs = append(scn.Subdivs, subdiv)

	TesselateSurfaces(scn)
	shape := &scn.Shapes[0]
	for _, p := range shape.Positions {
		if vmath.Abs(p.Z-0.5) > 1e-5 {
			t.Fatalf("displacement should lift the rect to z=0.5, got %v", p.Z)
		}
	}
}

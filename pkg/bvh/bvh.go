// Package bvh implements the two-level bounding volume hierarchy used for
// ray intersection and point overlap queries: one BVH per shape over its
// primitives, and one scene BVH over instances whose leaves defer into the
// per-shape trees. Nodes live in a flat array in breadth-first order, with
// the two children of a node adjacent, and reference children and
// primitives by index, so trees build into arenas and traverse without
// pointer chasing.
package bvh

import (
	"sync"

	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// maxLeafPrims bounds the number of primitives referenced by a leaf.
const maxLeafPrims = 4

// sahBinCount is the number of bins tested per axis by the high-quality
// split.
const sahBinCount = 16

// Node is a BVH node. Internal nodes store the index of their first child
// in Start and Num == 2; leaves store an offset into the primitive index
// array and the primitive count.
type Node struct {
	BBox     vmath.BBox
	Start    int32
	Num      int16
	Axis     int8
	Internal bool
}

// Tree is a BVH stored as a node array plus the permuted primitive indices.
// Scene-level trees also carry the per-shape trees, indexed like the
// scene's shape array.
type Tree struct {
	Nodes      []Node
	Primitives []int
	Shapes     []Tree
}

// primitiveBounds returns one bounding box per element of the shape.
func primitiveBounds(shape *scene.Shape) []vmath.BBox {
	switch {
	case len(shape.Triangles) > 0:
		bboxes := make([]vmath.BBox, len(shape.Triangles))
		for i, t := range shape.Triangles {
			bboxes[i] = vmath.PointBBox(shape.Positions[t[0]]).
				UnionPoint(shape.Positions[t[1]]).
				UnionPoint(shape.Positions[t[2]])
		}
		return bboxes
	case len(shape.Quads) > 0:
		bboxes := make([]vmath.BBox, len(shape.Quads))
		for i, q := range shape.Quads {
			bboxes[i] = vmath.PointBBox(shape.Positions[q[0]]).
				UnionPoint(shape.Positions[q[1]]).
				UnionPoint(shape.Positions[q[2]]).
				UnionPoint(shape.Positions[q[3]])
		}
		return bboxes
	case len(shape.Lines) > 0:
		bboxes := make([]vmath.BBox, len(shape.Lines))
		for i, l := range shape.Lines {
			r0, r1 := radiusAt(shape, l[0]), radiusAt(shape, l[1])
			bboxes[i] = vmath.PointBBox(shape.Positions[l[0]]).Expand(r0).
				Union(vmath.PointBBox(shape.Positions[l[1]]).Expand(r1))
		}
		return bboxes
	default:
		bboxes := make([]vmath.BBox, len(shape.Points))
		for i, p := range shape.Points {
			bboxes[i] = vmath.PointBBox(shape.Positions[p]).Expand(radiusAt(shape, p))
		}
		return bboxes
	}
}

// buildTree constructs the node hierarchy over the given primitive bounds.
func buildTree(bboxes []vmath.BBox, highQuality bool) Tree {
	tree := Tree{}
	if len(bboxes) == 0 {
		return tree
	}

	primitives := make([]int, len(bboxes))
	centers := make([]vmath.Vec3, len(bboxes))
	for i := range bboxes {
		primitives[i] = i
		centers[i] = bboxes[i].Center()
	}

	type span struct {
		node, start, end int
	}

	tree.Nodes = make([]Node, 1, 2*len(bboxes))
	queue := []span{{0, 0, len(bboxes)}}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		node := &tree.Nodes[current.node]

		node.BBox = vmath.EmptyBBox()
		for _, p := range primitives[current.start:current.end] {
			node.BBox = node.BBox.Union(bboxes[p])
		}

		if current.end-current.start > maxLeafPrims {
			var mid, axis int
			if highQuality {
				mid, axis = splitSAH(primitives, bboxes, centers, current.start, current.end)
			} else {
				mid, axis = splitMiddle(primitives, centers, current.start, current.end)
			}

			node.Internal = true
			node.Axis = int8(axis)
			node.Num = 2
			node.Start = int32(len(tree.Nodes))
			tree.Nodes = append(tree.Nodes, Node{}, Node{})
			queue = append(queue,
				span{int(node.Start), current.start, mid},
				span{int(node.Start) + 1, mid, current.end})
		} else {
			node.Start = int32(current.start)
			node.Num = int16(current.end - current.start)
		}
	}

	tree.Primitives = primitives
	return tree
}

// splitMiddle partitions primitives at the spatial midpoint of the largest
// centroid extent, falling back to an equal-count split when degenerate.
func splitMiddle(primitives []int, centers []vmath.Vec3, start, end int) (int, int) {
	cbbox := vmath.EmptyBBox()
	for _, p := range primitives[start:end] {
		cbbox = cbbox.UnionPoint(centers[p])
	}
	csize := cbbox.Size()
	if csize == (vmath.Vec3{}) {
		return (start + end) / 2, 0
	}

	axis := cbbox.LongestAxis()
	split := cbbox.Center().Axis(axis)
	mid := partition(primitives[start:end], func(p int) bool {
		return centers[p].Axis(axis) < split
	}) + start

	if mid == start || mid == end {
		// degenerate split, use an equal-count median instead
		mid = (start + end) / 2
		nthElement(primitives[start:end], mid-start, func(a, b int) bool {
			return centers[a].Axis(axis) < centers[b].Axis(axis)
		})
	}
	return mid, axis
}

// splitSAH picks the binned split minimizing the surface-area heuristic
// cost over all axes.
func splitSAH(primitives []int, bboxes []vmath.BBox, centers []vmath.Vec3, start, end int) (int, int) {
	cbbox := vmath.EmptyBBox()
	for _, p := range primitives[start:end] {
		cbbox = cbbox.UnionPoint(centers[p])
	}
	csize := cbbox.Size()
	if csize == (vmath.Vec3{}) {
		return (start + end) / 2, 0
	}

	axis := 0
	var split float32
	bestCost := vmath.MaxFloat
	for tryAxis := 0; tryAxis < 3; tryAxis++ {
		if csize.Axis(tryAxis) == 0 {
			continue
		}
		for b := 1; b < sahBinCount; b++ {
			trySplit := cbbox.Min.Axis(tryAxis) +
				csize.Axis(tryAxis)*float32(b)/float32(sahBinCount)
			leftBBox, rightBBox := vmath.EmptyBBox(), vmath.EmptyBBox()
			leftCount, rightCount := 0, 0
			for _, p := range primitives[start:end] {
				if centers[p].Axis(tryAxis) < trySplit {
					leftBBox = leftBBox.Union(bboxes[p])
					leftCount++
				} else {
					rightBBox = rightBBox.Union(bboxes[p])
					rightCount++
				}
			}
			cost := 1 +
				float32(leftCount)*leftBBox.Area()/cbbox.Area() +
				float32(rightCount)*rightBBox.Area()/cbbox.Area()
			if cost < bestCost {
				bestCost = cost
				split = trySplit
				axis = tryAxis
			}
		}
	}

	mid := partition(primitives[start:end], func(p int) bool {
		return centers[p].Axis(axis) < split
	}) + start
	if mid == start || mid == end {
		mid = (start + end) / 2
		nthElement(primitives[start:end], mid-start, func(a, b int) bool {
			return centers[a].Axis(axis) < centers[b].Axis(axis)
		})
	}
	return mid, axis
}

// partition reorders the slice so elements satisfying pred come first and
// returns the boundary index.
func partition(s []int, pred func(int) bool) int {
	i := 0
	for j := range s {
		if pred(s[j]) {
			s[i], s[j] = s[j], s[i]
			i++
		}
	}
	return i
}

// nthElement partially sorts the slice so the nth element is in its sorted
// position, with smaller elements before and larger after.
func nthElement(s []int, n int, less func(a, b int) bool) {
	lo, hi := 0, len(s)-1
	for lo < hi {
		pivot := s[(lo+hi)/2]
		i, j := lo, hi
		for i <= j {
			for less(s[i], pivot) {
				i++
			}
			for less(pivot, s[j]) {
				j--
			}
			if i <= j {
				s[i], s[j] = s[j], s[i]
				i++
				j--
			}
		}
		if n <= j {
			hi = j
		} else if n >= i {
			lo = i
		} else {
			return
		}
	}
}

// MakeShapeBVH builds the BVH over a shape's primitives.
func MakeShapeBVH(shape *scene.Shape, highQuality bool) Tree {
	return buildTree(primitiveBounds(shape), highQuality)
}

// MakeSceneBVH builds the scene BVH over instances plus one BVH per shape.
// Shape builds run in parallel unless noParallel is set.
func MakeSceneBVH(scn *scene.Scene, highQuality, noParallel bool) Tree {
	shapes := make([]Tree, len(scn.Shapes))
	if noParallel {
		for i := range scn.Shapes {
			shapes[i] = MakeShapeBVH(&scn.Shapes[i], highQuality)
		}
	} else {
		var wg sync.WaitGroup
		for i := range scn.Shapes {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				shapes[idx] = MakeShapeBVH(&scn.Shapes[idx], highQuality)
			}(i)
		}
		wg.Wait()
	}

	bboxes := make([]vmath.BBox, len(scn.Instances))
	for i := range scn.Instances {
		inst := &scn.Instances[i]
		if len(shapes[inst.Shape].Nodes) == 0 {
			bboxes[i] = vmath.PointBBox(inst.Frame.O)
			continue
		}
		bboxes[i] = shapes[inst.Shape].Nodes[0].BBox.Transform(inst.Frame)
	}

	tree := buildTree(bboxes, highQuality)
	tree.Shapes = shapes
	return tree
}

// refitTree recomputes node bounds bottom-up along the existing topology.
func refitTree(tree *Tree, bboxes []vmath.BBox) {
	for i := len(tree.Nodes) - 1; i >= 0; i-- {
		node := &tree.Nodes[i]
		node.BBox = vmath.EmptyBBox()
		if node.Internal {
			for c := int32(0); c < int32(node.Num); c++ {
				node.BBox = node.BBox.Union(tree.Nodes[node.Start+c].BBox)
			}
		} else {
			for _, p := range tree.Primitives[node.Start : int(node.Start)+int(node.Num)] {
				node.BBox = node.BBox.Union(bboxes[p])
			}
		}
	}
}

// UpdateShapeBVH refits a shape tree after its vertices moved. The topology
// is kept, so quality degrades only with large motion.
func UpdateShapeBVH(tree *Tree, shape *scene.Shape) {
	refitTree(tree, primitiveBounds(shape))
}

// UpdateSceneBVH refits the scene tree for the given updated instances and
// shapes without re-splitting.
func UpdateSceneBVH(tree *Tree, scn *scene.Scene, updatedInstances, updatedShapes []int) {
	for _, s := range updatedShapes {
		UpdateShapeBVH(&tree.Shapes[s], &scn.Shapes[s])
	}
	// instance bounds are cheap enough to recompute wholesale
	_ = updatedInstances

	bboxes := make([]vmath.BBox, len(scn.Instances))
	for i := range scn.Instances {
		inst := &scn.Instances[i]
		if len(tree.Shapes[inst.Shape].Nodes) == 0 {
			bboxes[i] = vmath.PointBBox(inst.Frame.O)
			continue
		}
		bboxes[i] = tree.Shapes[inst.Shape].Nodes[0].BBox.Transform(inst.Frame)
	}
	refitTree(tree, bboxes)
}

// radiusAt returns the per-vertex radius of a line or point shape,
// defaulting to a hair-thin value when the array is absent.
func radiusAt(shape *scene.Shape, idx int) float32 {
	if len(shape.Radius) == 0 {
		return 0.001
	}
	return shape.Radius[idx]
}

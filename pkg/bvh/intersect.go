package bvh

import (
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Intersection is the result of a ray or overlap query. Instance is set only
// by scene-level queries; values are meaningful only when Hit is true.
type Intersection struct {
	Instance int
	Element  int
	UV       vmath.Vec2
	Distance float32
	Hit      bool
}

// stackSize bounds the traversal stack; trees deeper than this do not occur
// for the primitive counts the builder produces.
const stackSize = 128

// intersectBBox is the slab test against a node bounding box with the
// reciprocal direction precomputed.
func intersectBBox(ray vmath.Ray, dInv vmath.Vec3, bbox vmath.BBox) bool {
	itMinX := (bbox.Min.X - ray.Origin.X) * dInv.X
	itMaxX := (bbox.Max.X - ray.Origin.X) * dInv.X
	itMinY := (bbox.Min.Y - ray.Origin.Y) * dInv.Y
	itMaxY := (bbox.Max.Y - ray.Origin.Y) * dInv.Y
	itMinZ := (bbox.Min.Z - ray.Origin.Z) * dInv.Z
	itMaxZ := (bbox.Max.Z - ray.Origin.Z) * dInv.Z

	t0 := max(min(itMinX, itMaxX), min(itMinY, itMaxY), min(itMinZ, itMaxZ), ray.TMin)
	t1 := min(max(itMinX, itMaxX), max(itMinY, itMaxY), max(itMinZ, itMaxZ), ray.TMax)
	// widen slightly to absorb rounding in the slab arithmetic
	return t0 <= t1*1.00000024
}

// intersectTriangle is Moeller-Trumbore.
func intersectTriangle(ray vmath.Ray, p0, p1, p2 vmath.Vec3) (vmath.Vec2, float32, bool) {
	edge1 := p1.Subtract(p0)
	edge2 := p2.Subtract(p0)
	pvec := ray.Direction.Cross(edge2)
	det := edge1.Dot(pvec)
	if det == 0 {
		return vmath.Vec2{}, 0, false
	}
	invDet := 1 / det

	tvec := ray.Origin.Subtract(p0)
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return vmath.Vec2{}, 0, false
	}

	qvec := tvec.Cross(edge1)
	v := ray.Direction.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return vmath.Vec2{}, 0, false
	}

	t := edge2.Dot(qvec) * invDet
	if t < ray.TMin || t > ray.TMax {
		return vmath.Vec2{}, 0, false
	}

	return vmath.Vec2{X: u, Y: v}, t, true
}

// intersectQuad tests the quad's two triangles, keeping the closest hit and
// remapping the second triangle's uv to the quad parameterization.
func intersectQuad(ray vmath.Ray, p0, p1, p2, p3 vmath.Vec3) (vmath.Vec2, float32, bool) {
	if p2 == p3 {
		return intersectTriangle(ray, p0, p1, p3)
	}
	hitUV, hitT, hit := intersectTriangle(ray, p0, p1, p3)
	if hit {
		ray.TMax = hitT
	}
	if uv, t, ok := intersectTriangle(ray, p2, p3, p1); ok {
		hitUV = vmath.Vec2{X: 1 - uv.X, Y: 1 - uv.Y}
		hitT = t
		hit = true
	}
	return hitUV, hitT, hit
}

// intersectPoint approximates a point primitive as a small sphere facing
// the ray.
func intersectPoint(ray vmath.Ray, p vmath.Vec3, radius float32) (vmath.Vec2, float32, bool) {
	t := p.Subtract(ray.Origin).Dot(ray.Direction) / ray.Direction.Dot(ray.Direction)
	if t < ray.TMin || t > ray.TMax {
		return vmath.Vec2{}, 0, false
	}
	rp := ray.At(t)
	if p.Subtract(rp).LengthSquared() > radius*radius {
		return vmath.Vec2{}, 0, false
	}
	return vmath.Vec2{}, t, true
}

// intersectLine approximates a line primitive as a capped cone between the
// two radii, tested at the point of closest approach.
func intersectLine(ray vmath.Ray, p0, p1 vmath.Vec3, r0, r1 float32) (vmath.Vec2, float32, bool) {
	u := ray.Direction
	v := p1.Subtract(p0)
	w := ray.Origin.Subtract(p0)

	a := u.Dot(u)
	b := u.Dot(v)
	c := v.Dot(v)
	d := u.Dot(w)
	e := v.Dot(w)
	det := a*c - b*b
	if det == 0 {
		return vmath.Vec2{}, 0, false
	}

	t := (b*e - c*d) / det
	s := (a*e - b*d) / det
	if t < ray.TMin || t > ray.TMax {
		return vmath.Vec2{}, 0, false
	}
	s = vmath.Clamp(s, 0, 1)

	pr := ray.At(t)
	pl := p0.Add(v.Multiply(s))
	r := r0*(1-s) + r1*s
	if pl.Subtract(pr).LengthSquared() > r*r {
		return vmath.Vec2{}, 0, false
	}
	return vmath.Vec2{X: s}, t, true
}

// intersectElement dispatches to the shape's primitive type.
func intersectElement(shape *scene.Shape, element int, ray vmath.Ray) (vmath.Vec2, float32, bool) {
	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		return intersectTriangle(ray,
			shape.Positions[t[0]], shape.Positions[t[1]], shape.Positions[t[2]])
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		return intersectQuad(ray,
			shape.Positions[q[0]], shape.Positions[q[1]],
			shape.Positions[q[2]], shape.Positions[q[3]])
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		return intersectLine(ray,
			shape.Positions[l[0]], shape.Positions[l[1]],
			radiusAt(shape, l[0]), radiusAt(shape, l[1]))
	case len(shape.Points) > 0:
		p := shape.Points[element]
		return intersectPoint(ray, shape.Positions[p], radiusAt(shape, p))
	default:
		return vmath.Vec2{}, 0, false
	}
}

// IntersectShape traverses a shape BVH, returning the closest hit or, with
// findAny, the first.
func IntersectShape(tree *Tree, shape *scene.Shape, ray vmath.Ray, findAny bool) Intersection {
	var result Intersection
	if len(tree.Nodes) == 0 {
		return result
	}

	var stack [stackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	dInv := vmath.Vec3{X: 1 / ray.Direction.X, Y: 1 / ray.Direction.Y, Z: 1 / ray.Direction.Z}
	dNeg := [3]bool{ray.Direction.X < 0, ray.Direction.Y < 0, ray.Direction.Z < 0}

	for stackTop > 0 {
		stackTop--
		node := &tree.Nodes[stack[stackTop]]

		if !intersectBBox(ray, dInv, node.BBox) {
			continue
		}

		if node.Internal {
			// walk the split axis front to back
			if dNeg[node.Axis] {
				stack[stackTop] = node.Start
				stack[stackTop+1] = node.Start + 1
			} else {
				stack[stackTop] = node.Start + 1
				stack[stackTop+1] = node.Start
			}
			stackTop += 2
			continue
		}

		for _, p := range tree.Primitives[node.Start : int(node.Start)+int(node.Num)] {
			uv, distance, hit := intersectElement(shape, p, ray)
			if !hit {
				continue
			}
			result = Intersection{Element: p, UV: uv, Distance: distance, Hit: true}
			ray.TMax = distance
			if findAny {
				return result
			}
		}
	}

	return result
}

// IntersectScene traverses the scene BVH, deferring into shape BVHs at the
// leaves with the ray transformed into the instance's local frame.
func IntersectScene(tree *Tree, scn *scene.Scene, ray vmath.Ray, findAny bool) Intersection {
	var result Intersection
	if len(tree.Nodes) == 0 {
		return result
	}

	var stack [stackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	dInv := vmath.Vec3{X: 1 / ray.Direction.X, Y: 1 / ray.Direction.Y, Z: 1 / ray.Direction.Z}
	dNeg := [3]bool{ray.Direction.X < 0, ray.Direction.Y < 0, ray.Direction.Z < 0}

	for stackTop > 0 {
		stackTop--
		node := &tree.Nodes[stack[stackTop]]

		if !intersectBBox(ray, dInv, node.BBox) {
			continue
		}

		if node.Internal {
			if dNeg[node.Axis] {
				stack[stackTop] = node.Start
				stack[stackTop+1] = node.Start + 1
			} else {
				stack[stackTop] = node.Start + 1
				stack[stackTop+1] = node.Start
			}
			stackTop += 2
			continue
		}

		for _, p := range tree.Primitives[node.Start : int(node.Start)+int(node.Num)] {
			inst := &scn.Instances[p]
			localRay := inst.Frame.Inverse(false).TransformRay(ray)
			sub := IntersectShape(&tree.Shapes[inst.Shape], &scn.Shapes[inst.Shape], localRay, findAny)
			if !sub.Hit {
				continue
			}
			result = Intersection{
				Instance: p,
				Element:  sub.Element,
				UV:       sub.UV,
				Distance: sub.Distance,
				Hit:      true,
			}
			ray.TMax = sub.Distance
			if findAny {
				return result
			}
		}
	}

	return result
}

// IntersectInstance intersects the ray with a single instance's shape,
// used by the light sampler to walk one emitter.
func IntersectInstance(tree *Tree, scn *scene.Scene, instance int, ray vmath.Ray, findAny bool) Intersection {
	inst := &scn.Instances[instance]
	localRay := inst.Frame.Inverse(false).TransformRay(ray)
	sub := IntersectShape(&tree.Shapes[inst.Shape], &scn.Shapes[inst.Shape], localRay, findAny)
	sub.Instance = instance
	return sub
}

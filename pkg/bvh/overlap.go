package bvh

import (
	"github.com/rfeld/go-pathtracer/pkg/scene"
	"github.com/rfeld/go-pathtracer/pkg/vmath"
)

// Point overlap queries: find the closest primitive within maxDistance of a
// query point, or any such primitive with findAny.

// distanceBBox returns the squared distance from a point to a box, zero
// inside.
func distanceBBox(p vmath.Vec3, bbox vmath.BBox) float32 {
	dx := max(bbox.Min.X-p.X, 0, p.X-bbox.Max.X)
	dy := max(bbox.Min.Y-p.Y, 0, p.Y-bbox.Max.Y)
	dz := max(bbox.Min.Z-p.Z, 0, p.Z-bbox.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

// closestPointTriangle returns the point on the triangle closest to p and
// its barycentric uv.
func closestPointTriangle(p, p0, p1, p2 vmath.Vec3) (vmath.Vec3, vmath.Vec2) {
	ab := p1.Subtract(p0)
	ac := p2.Subtract(p0)
	ap := p.Subtract(p0)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return p0, vmath.Vec2{}
	}

	bp := p.Subtract(p1)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return p1, vmath.Vec2{X: 1}
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		u := d1 / (d1 - d3)
		return p0.Add(ab.Multiply(u)), vmath.Vec2{X: u}
	}

	cp := p.Subtract(p2)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return p2, vmath.Vec2{Y: 1}
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		v := d2 / (d2 - d6)
		return p0.Add(ac.Multiply(v)), vmath.Vec2{Y: v}
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return p1.Add(p2.Subtract(p1).Multiply(w)), vmath.Vec2{X: 1 - w, Y: w}
	}

	denom := 1 / (va + vb + vc)
	u := vb * denom
	v := vc * denom
	return p0.Add(ab.Multiply(u)).Add(ac.Multiply(v)), vmath.Vec2{X: u, Y: v}
}

// overlapElement returns the uv and distance of the closest point on the
// element if within maxDistance.
func overlapElement(shape *scene.Shape, element int, p vmath.Vec3, maxDistance float32) (vmath.Vec2, float32, bool) {
	check := func(closest vmath.Vec3, uv vmath.Vec2, radius float32) (vmath.Vec2, float32, bool) {
		d := p.Subtract(closest).Length() - radius
		if d < 0 {
			d = 0
		}
		if d > maxDistance {
			return vmath.Vec2{}, 0, false
		}
		return uv, d, true
	}

	switch {
	case len(shape.Triangles) > 0:
		t := shape.Triangles[element]
		closest, uv := closestPointTriangle(p,
			shape.Positions[t[0]], shape.Positions[t[1]], shape.Positions[t[2]])
		return check(closest, uv, 0)
	case len(shape.Quads) > 0:
		q := shape.Quads[element]
		c1, uv1 := closestPointTriangle(p,
			shape.Positions[q[0]], shape.Positions[q[1]], shape.Positions[q[3]])
		c2, uv2 := closestPointTriangle(p,
			shape.Positions[q[2]], shape.Positions[q[3]], shape.Positions[q[1]])
		if q[2] == q[3] || p.Subtract(c1).LengthSquared() <= p.Subtract(c2).LengthSquared() {
			return check(c1, uv1, 0)
		}
		return check(c2, vmath.Vec2{X: 1 - uv2.X, Y: 1 - uv2.Y}, 0)
	case len(shape.Lines) > 0:
		l := shape.Lines[element]
		v := shape.Positions[l[1]].Subtract(shape.Positions[l[0]])
		s := vmath.Clamp(p.Subtract(shape.Positions[l[0]]).Dot(v)/v.Dot(v), 0, 1)
		closest := shape.Positions[l[0]].Add(v.Multiply(s))
		radius := radiusAt(shape, l[0])*(1-s) + radiusAt(shape, l[1])*s
		return check(closest, vmath.Vec2{X: s}, radius)
	case len(shape.Points) > 0:
		idx := shape.Points[element]
		return check(shape.Positions[idx], vmath.Vec2{}, radiusAt(shape, idx))
	default:
		return vmath.Vec2{}, 0, false
	}
}

// OverlapShape finds the closest primitive of a shape within maxDistance of
// the query point.
func OverlapShape(tree *Tree, shape *scene.Shape, p vmath.Vec3, maxDistance float32, findAny bool) Intersection {
	var result Intersection
	if len(tree.Nodes) == 0 {
		return result
	}

	var stack [stackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	for stackTop > 0 {
		stackTop--
		node := &tree.Nodes[stack[stackTop]]

		if distanceBBox(p, node.BBox) > maxDistance*maxDistance {
			continue
		}

		if node.Internal {
			stack[stackTop] = node.Start
			stack[stackTop+1] = node.Start + 1
			stackTop += 2
			continue
		}

		for _, prim := range tree.Primitives[node.Start : int(node.Start)+int(node.Num)] {
			uv, distance, hit := overlapElement(shape, prim, p, maxDistance)
			if !hit {
				continue
			}
			result = Intersection{Element: prim, UV: uv, Distance: distance, Hit: true}
			maxDistance = distance
			if findAny {
				return result
			}
		}
	}

	return result
}

// OverlapScene finds the closest primitive of any instance within
// maxDistance of the query point.
func OverlapScene(tree *Tree, scn *scene.Scene, p vmath.Vec3, maxDistance float32, findAny bool) Intersection {
	var result Intersection
	if len(tree.Nodes) == 0 {
		return result
	}

	var stack [stackSize]int32
	stackTop := 0
	stack[stackTop] = 0
	stackTop++

	for stackTop > 0 {
		stackTop--
		node := &tree.Nodes[stack[stackTop]]

		if distanceBBox(p, node.BBox) > maxDistance*maxDistance {
			continue
		}

		if node.Internal {
			stack[stackTop] = node.Start
			stack[stackTop+1] = node.Start + 1
			stackTop += 2
			continue
		}

		for _, prim := range tree.Primitives[node.Start : int(node.Start)+int(node.Num)] {
			inst := &scn.Instances[prim]
			localP := inst.Frame.Inverse(false).TransformPoint(p)
			sub := OverlapShape(&tree.Shapes[inst.Shape], &scn.Shapes[inst.Shape], localP, maxDistance, findAny)
			if !sub.Hit {
				continue
			}
			result = Intersection{
				Instance: prim,
				Element:  sub.Element,
				UV:       sub.UV,
				Distance: sub.Distance,
				Hit:      true,
			}
			maxDistance = sub.Distance
			if findAny {
				return result
			}
		}
	}

	return result
}

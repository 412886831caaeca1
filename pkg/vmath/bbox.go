package vmath

// BBox is an axis-aligned bounding box.
type BBox struct {
	Min, Max Vec3
}

// EmptyBBox returns the inverted box that unions as the identity.
func EmptyBBox() BBox {
	return BBox{
		Min: Vec3{MaxFloat, MaxFloat, MaxFloat},
		Max: Vec3{-MaxFloat, -MaxFloat, -MaxFloat},
	}
}

// PointBBox returns the degenerate box containing a single point.
func PointBBox(p Vec3) BBox { return BBox{Min: p, Max: p} }

// Union returns the smallest box containing both boxes.
func (b BBox) Union(other BBox) BBox {
	return BBox{
		Min: Vec3{min(b.Min.X, other.Min.X), min(b.Min.Y, other.Min.Y), min(b.Min.Z, other.Min.Z)},
		Max: Vec3{max(b.Max.X, other.Max.X), max(b.Max.Y, other.Max.Y), max(b.Max.Z, other.Max.Z)},
	}
}

// UnionPoint returns the smallest box containing the box and a point.
func (b BBox) UnionPoint(p Vec3) BBox {
	return b.Union(PointBBox(p))
}

// Expand returns the box grown by eps on every side.
func (b BBox) Expand(eps float32) BBox {
	e := Vec3{eps, eps, eps}
	return BBox{Min: b.Min.Subtract(e), Max: b.Max.Add(e)}
}

// Center returns the center point of the box.
func (b BBox) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// Size returns the extents of the box along each axis.
func (b BBox) Size() Vec3 { return b.Max.Subtract(b.Min) }

// LongestAxis returns the index of the largest extent (0=X, 1=Y, 2=Z),
// breaking ties towards the smaller axis index.
func (b BBox) LongestAxis() int {
	size := b.Size()
	axis := 0
	if size.Y > size.X {
		axis = 1
	}
	if size.Z > size.Axis(axis) {
		axis = 2
	}
	return axis
}

// Contains reports whether the point lies inside the box (inclusive).
func (b BBox) Contains(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ContainsBBox reports whether other lies entirely inside the box.
func (b BBox) ContainsBBox(other BBox) bool {
	return b.Contains(other.Min) && b.Contains(other.Max)
}

// Area returns the surface area of the box, used by the SAH cost metric.
func (b BBox) Area() float32 {
	size := b.Size()
	if size.X < 0 || size.Y < 0 || size.Z < 0 {
		return 0
	}
	return 2 * (size.X*size.Y + size.Y*size.Z + size.Z*size.X)
}

// Transform returns the box containing the transformed corners of the box.
func (b BBox) Transform(f Frame) BBox {
	out := EmptyBBox()
	corners := [8]Vec3{
		{b.Min.X, b.Min.Y, b.Min.Z}, {b.Min.X, b.Min.Y, b.Max.Z},
		{b.Min.X, b.Max.Y, b.Min.Z}, {b.Min.X, b.Max.Y, b.Max.Z},
		{b.Max.X, b.Min.Y, b.Min.Z}, {b.Max.X, b.Min.Y, b.Max.Z},
		{b.Max.X, b.Max.Y, b.Min.Z}, {b.Max.X, b.Max.Y, b.Max.Z},
	}
	for _, c := range corners {
		out = out.UnionPoint(f.TransformPoint(c))
	}
	return out
}

// Axis returns the vector component with the given index.
func (v Vec3) Axis(axis int) float32 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

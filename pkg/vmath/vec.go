package vmath

// Vec2 represents a 2D vector or a texture coordinate.
type Vec2 struct {
	X, Y float32
}

// NewVec2 creates a new Vec2.
func NewVec2(x, y float32) Vec2 { return Vec2{X: x, Y: y} }

// Add returns the sum of two vectors.
func (v Vec2) Add(other Vec2) Vec2 { return Vec2{v.X + other.X, v.Y + other.Y} }

// Subtract returns the difference of two vectors.
func (v Vec2) Subtract(other Vec2) Vec2 { return Vec2{v.X - other.X, v.Y - other.Y} }

// Multiply returns the vector scaled by a scalar.
func (v Vec2) Multiply(scalar float32) Vec2 { return Vec2{v.X * scalar, v.Y * scalar} }

// Dot returns the dot product of two vectors.
func (v Vec2) Dot(other Vec2) float32 { return v.X*other.X + v.Y*other.Y }

// Length returns the magnitude of the vector.
func (v Vec2) Length() float32 { return Sqrt(v.Dot(v)) }

// Vec3 represents a 3D vector, a point or an RGB color.
type Vec3 struct {
	X, Y, Z float32
}

// NewVec3 creates a new Vec3.
func NewVec3(x, y, z float32) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns the sum of two vectors.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Subtract returns the difference of two vectors.
func (v Vec3) Subtract(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Multiply returns the vector scaled by a scalar.
func (v Vec3) Multiply(scalar float32) Vec3 {
	return Vec3{v.X * scalar, v.Y * scalar, v.Z * scalar}
}

// MultiplyVec returns the component-wise product of two vectors.
func (v Vec3) MultiplyVec(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// DivideVec returns the component-wise quotient of two vectors.
func (v Vec3) DivideVec(other Vec3) Vec3 {
	return Vec3{v.X / other.X, v.Y / other.Y, v.Z / other.Z}
}

// Length returns the magnitude of the vector.
func (v Vec3) Length() float32 { return Sqrt(v.Dot(v)) }

// LengthSquared returns the squared magnitude of the vector.
func (v Vec3) LengthSquared() float32 { return v.Dot(v) }

// Dot returns the dot product of two vectors.
func (v Vec3) Dot(other Vec3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product of two vectors.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		X: v.Y*other.Z - v.Z*other.Y,
		Y: v.Z*other.X - v.X*other.Z,
		Z: v.X*other.Y - v.Y*other.X,
	}
}

// Normalize returns a unit vector in the same direction.
func (v Vec3) Normalize() Vec3 {
	length := v.Length()
	if length == 0 {
		return Vec3{}
	}
	return Vec3{v.X / length, v.Y / length, v.Z / length}
}

// Negate returns the negative of the vector.
func (v Vec3) Negate() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// Clamp returns a vector with components clamped to [lo, hi].
func (v Vec3) Clamp(lo, hi float32) Vec3 {
	return Vec3{Clamp(v.X, lo, hi), Clamp(v.Y, lo, hi), Clamp(v.Z, lo, hi)}
}

// Lerp linearly interpolates between v and other by t.
func (v Vec3) Lerp(other Vec3, t float32) Vec3 {
	return Vec3{Lerp(v.X, other.X, t), Lerp(v.Y, other.Y, t), Lerp(v.Z, other.Z, t)}
}

// MaxComponent returns the largest component of the vector.
func (v Vec3) MaxComponent() float32 { return max(v.X, v.Y, v.Z) }

// Mean returns the average of the three components.
func (v Vec3) Mean() float32 { return (v.X + v.Y + v.Z) / 3 }

// Sum returns the sum of the three components.
func (v Vec3) Sum() float32 { return v.X + v.Y + v.Z }

// Exp returns the component-wise exponential of the vector.
func (v Vec3) Exp() Vec3 { return Vec3{Exp(v.X), Exp(v.Y), Exp(v.Z)} }

// IsZero reports whether every component is exactly zero.
func (v Vec3) IsZero() bool { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// IsFinite reports whether every component is neither NaN nor infinite.
func (v Vec3) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z)
}

// Reflect returns the direction v mirrored about the normal n.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return n.Multiply(2 * n.Dot(v)).Subtract(v)
}

// Refract returns the direction v refracted at the normal n with inverse
// relative index of refraction invEta, or the zero vector on total internal
// reflection.
func (v Vec3) Refract(n Vec3, invEta float32) Vec3 {
	cosine := n.Dot(v)
	k := 1 + invEta*invEta*(cosine*cosine-1)
	if k < 0 {
		return Vec3{} // tir
	}
	return v.Multiply(-invEta).Add(n.Multiply(invEta*cosine - Sqrt(k)))
}

// Vec4 represents an RGBA color or a homogeneous vector.
type Vec4 struct {
	X, Y, Z, W float32
}

// NewVec4 creates a new Vec4.
func NewVec4(x, y, z, w float32) Vec4 { return Vec4{X: x, Y: y, Z: z, W: w} }

// Add returns the sum of two vectors.
func (v Vec4) Add(other Vec4) Vec4 {
	return Vec4{v.X + other.X, v.Y + other.Y, v.Z + other.Z, v.W + other.W}
}

// Multiply returns the vector scaled by a scalar.
func (v Vec4) Multiply(scalar float32) Vec4 {
	return Vec4{v.X * scalar, v.Y * scalar, v.Z * scalar, v.W * scalar}
}

// XYZ returns the first three components as a Vec3.
func (v Vec4) XYZ() Vec3 { return Vec3{v.X, v.Y, v.Z} }

// IsFinite reports whether every component is neither NaN nor infinite.
func (v Vec4) IsFinite() bool {
	return IsFinite(v.X) && IsFinite(v.Y) && IsFinite(v.Z) && IsFinite(v.W)
}

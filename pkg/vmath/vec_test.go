package vmath

import (
	"testing"
)

func TestVec3Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	if got := a.Add(b); got != NewVec3(5, 7, 9) {
		t.Errorf("Add incorrect: got %v", got)
	}
	if got := b.Subtract(a); got != NewVec3(3, 3, 3) {
		t.Errorf("Subtract incorrect: got %v", got)
	}
	if got := a.Multiply(2); got != NewVec3(2, 4, 6) {
		t.Errorf("Multiply incorrect: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot incorrect: got %v, expected 32", got)
	}
	if got := NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)); got != NewVec3(0, 0, 1) {
		t.Errorf("Cross incorrect: got %v, expected +Z", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()
	if Abs(v.Length()-1) > 1e-6 {
		t.Errorf("Normalize length incorrect: got %v", v.Length())
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Errorf("Normalize of zero should be zero, got %v", got)
	}
}

func TestVec3Reflect(t *testing.T) {
	// incoming 45 degrees onto the XY plane
	v := NewVec3(1, 0, 1).Normalize()
	n := NewVec3(0, 0, 1)
	r := v.Reflect(n)
	want := NewVec3(-1, 0, 1).Normalize()
	if r.Subtract(want).Length() > 1e-6 {
		t.Errorf("Reflect incorrect: got %v, expected %v", r, want)
	}
}

func TestVec3Refract(t *testing.T) {
	n := NewVec3(0, 0, 1)
	v := NewVec3(0, 0, 1) // normal incidence

	r := v.Refract(n, 1/1.5)
	want := NewVec3(0, 0, -1)
	if r.Subtract(want).Length() > 1e-6 {
		t.Errorf("Refract at normal incidence incorrect: got %v", r)
	}

	// grazing exit from the dense side triggers total internal reflection
	grazing := NewVec3(0.99, 0, 0.141).Normalize()
	if got := grazing.Refract(n, 1.5); !got.IsZero() {
		t.Errorf("expected total internal reflection, got %v", got)
	}
}

func TestVec3Finite(t *testing.T) {
	if !NewVec3(1, 2, 3).IsFinite() {
		t.Error("finite vector reported non-finite")
	}
	inf := NewVec3(1, 0, 0).Multiply(MaxFloat).Multiply(2)
	if inf.IsFinite() {
		t.Error("overflowed vector reported finite")
	}
	nan := Vec3{X: Sqrt(-1)}
	if nan.IsFinite() {
		t.Error("NaN vector reported finite")
	}
}

func TestFrameTransform(t *testing.T) {
	frame := Translation(NewVec3(1, 2, 3))
	p := frame.TransformPoint(NewVec3(1, 0, 0))
	if p != NewVec3(2, 2, 3) {
		t.Errorf("TransformPoint incorrect: got %v", p)
	}
	// directions ignore the origin
	d := frame.TransformDirection(NewVec3(0, 1, 0))
	if d != NewVec3(0, 1, 0) {
		t.Errorf("TransformDirection incorrect: got %v", d)
	}
}

func TestFrameInverseRoundTrip(t *testing.T) {
	frame := LookAtFrame(NewVec3(1, 2, 3), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	inv := frame.Inverse(false)
	p := NewVec3(0.3, -0.7, 2.1)
	back := inv.TransformPoint(frame.TransformPoint(p))
	if back.Subtract(p).Length() > 1e-5 {
		t.Errorf("Inverse round trip drifted: got %v, expected %v", back, p)
	}
}

func TestLookAtFrameOrthonormal(t *testing.T) {
	frame := LookAtFrame(NewVec3(4, 1, -2), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	if Abs(frame.X.Dot(frame.Y)) > 1e-6 || Abs(frame.Y.Dot(frame.Z)) > 1e-6 ||
		Abs(frame.X.Dot(frame.Z)) > 1e-6 {
		t.Error("LookAtFrame basis not orthogonal")
	}
	for _, axis := range []Vec3{frame.X, frame.Y, frame.Z} {
		if Abs(axis.Length()-1) > 1e-6 {
			t.Errorf("LookAtFrame basis not unit: %v", axis)
		}
	}
}

func TestBBoxUnion(t *testing.T) {
	b := EmptyBBox().UnionPoint(NewVec3(1, 2, 3)).UnionPoint(NewVec3(-1, 0, 5))
	if b.Min != NewVec3(-1, 0, 3) || b.Max != NewVec3(1, 2, 5) {
		t.Errorf("BBox union incorrect: %v", b)
	}
	if b.LongestAxis() != 0 {
		t.Errorf("LongestAxis incorrect: got %d, expected 0", b.LongestAxis())
	}
}

func TestBBoxTransformContains(t *testing.T) {
	b := BBox{Min: NewVec3(-1, -1, -1), Max: NewVec3(1, 1, 1)}
	frame := Translation(NewVec3(5, 0, 0))
	moved := b.Transform(frame)
	if !moved.Contains(NewVec3(5, 0, 0)) {
		t.Error("transformed box should contain moved center")
	}
	if moved.Contains(NewVec3(0, 0, 0)) {
		t.Error("transformed box should not contain origin")
	}
}

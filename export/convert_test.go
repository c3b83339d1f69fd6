package export

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestUnrealLocation(t *testing.T) {
	got := UnrealLocation(mgl32.Vec3{1, 2, 3})
	expected := mgl32.Vec3{100, -200, 300}
	if got != expected {
		t.Errorf("UnrealLocation(1,2,3)=%v; expected %v", got, expected)
	}
}

func TestUnrealQuat(t *testing.T) {
	// UnrealQuat must agree with UnrealRotation on the euler angles
	q := mgl32.QuatRotate(math.Pi/3, mgl32.Vec3{0, 0, 1}).
		Mul(mgl32.QuatRotate(math.Pi/5, mgl32.Vec3{0, 1, 0}))

	viaQuat := QuatToEuler(UnrealQuat(q))
	viaEuler := UnrealRotation(QuatToEuler(q))
	expected := mgl32.Vec3{
		mgl32.DegToRad(viaEuler[0]),
		mgl32.DegToRad(viaEuler[1]),
		mgl32.DegToRad(viaEuler[2]),
	}
	if !viaQuat.ApproxEqualThreshold(expected, 1e-5) {
		t.Errorf("UnrealQuat euler=%v; expected %v", viaQuat, expected)
	}
}

func TestUnrealRotation(t *testing.T) {
	got := UnrealRotation(mgl32.Vec3{math.Pi, math.Pi / 2, math.Pi / 4})
	expected := mgl32.Vec3{180, -90, -45}
	if !got.ApproxEqualThreshold(expected, 1e-4) {
		t.Errorf("UnrealRotation=%v; expected %v", got, expected)
	}
}

func TestQuatToEuler(t *testing.T) {
	if e := QuatToEuler(mgl32.QuatIdent()); !e.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Errorf("QuatToEuler(ident)=%v; expected zero", e)
	}

	q := mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 0, 1})
	e := QuatToEuler(q)
	if !e.ApproxEqualThreshold(mgl32.Vec3{0, 0, math.Pi / 2}, 1e-5) {
		t.Errorf("QuatToEuler(rotZ 90)=%v; expected (0,0,pi/2)", e)
	}
}

func TestTransformParts(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2))

	location, rotation, scale := TransformParts(m)
	if !location.ApproxEqual(mgl32.Vec3{1, 2, 3}) {
		t.Errorf("location=%v; expected (1,2,3)", location)
	}
	if !rotation.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5) {
		t.Errorf("rotation=%v; expected zero", rotation)
	}
	if !scale.ApproxEqualThreshold(mgl32.Vec3{2, 2, 2}, 1e-5) {
		t.Errorf("scale=%v; expected (2,2,2)", scale)
	}
}

func TestTransformQuat(t *testing.T) {
	m := mgl32.HomogRotate3DZ(math.Pi / 2).Mul4(mgl32.Scale3D(3, 3, 3))
	e := QuatToEuler(TransformQuat(m))
	if !e.ApproxEqualThreshold(mgl32.Vec3{0, 0, math.Pi / 2}, 1e-5) {
		t.Errorf("TransformQuat euler=%v; expected (0,0,pi/2)", e)
	}
}

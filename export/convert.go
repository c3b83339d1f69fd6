// Package export implements the send pipeline: asset discovery over
// the export collection, coordinate conversion into unreal space, FBX
// and glTF file writers and the deferred job queue that pushes
// exported files into the editor.
package export

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Unreal works in centimeters with a flipped Y axis; the content tool
// works in meters, right-handed Z-up.
const metersToCentimeters = 100

// UnrealLocation converts a location into unreal coordinates.
func UnrealLocation(location mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		location[0] * metersToCentimeters,
		-location[1] * metersToCentimeters,
		location[2] * metersToCentimeters,
	}
}

// UnrealRotation converts euler radians into unreal degrees, negating
// pitch and yaw for the handedness flip.
func UnrealRotation(rotation mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{
		mgl32.RadToDeg(rotation[0]),
		-mgl32.RadToDeg(rotation[1]),
		-mgl32.RadToDeg(rotation[2]),
	}
}

// UnrealScale passes scale through; both sides are unitless.
func UnrealScale(scale mgl32.Vec3) mgl32.Vec3 {
	return scale
}

// UnrealQuat is UnrealRotation in quaternion form: conjugation by a
// 180 degree X rotation, which negates the Y and Z euler components.
func UnrealQuat(q mgl32.Quat) mgl32.Quat {
	return mgl32.Quat{
		W: q.W,
		V: mgl32.Vec3{q.X(), -q.Y(), -q.Z()},
	}
}

// QuatToEuler decomposes a quaternion into XYZ euler radians.
func QuatToEuler(q mgl32.Quat) (e mgl32.Vec3) {
	sinrCosp := float64(2 * (q.W*q.X() + q.Y()*q.Z()))
	cosrCosp := float64(1 - 2*(q.X()*q.X()+q.Y()*q.Y()))
	e[0] = float32(math.Atan2(sinrCosp, cosrCosp))

	sinp := float64(2 * (q.W*q.Y() - q.Z()*q.X()))
	if math.Abs(sinp) >= 1 {
		e[1] = math.Pi / 2
		if sinp < 0 {
			e[1] *= -1
		}
	} else {
		e[1] = float32(math.Asin(sinp))
	}

	sinyCosp := float64(2 * (q.W*q.Z() + q.X()*q.Y()))
	cosyCosp := float64(1 - 2*(q.Y()*q.Y()+q.Z()*q.Z()))
	e[2] = float32(math.Atan2(sinyCosp, cosyCosp))

	return e
}

// TransformQuat extracts the rotation part of a local matrix as a
// quaternion, with scale divided out.
func TransformQuat(m mgl32.Mat4) mgl32.Quat {
	scale := mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
	rotationMat := mgl32.Mat4FromCols(
		m.Col(0).Mul(1/scale[0]),
		m.Col(1).Mul(1/scale[1]),
		m.Col(2).Mul(1/scale[2]),
		mgl32.Vec4{0, 0, 0, 1},
	)
	return mgl32.Mat4ToQuat(rotationMat)
}

// TransformParts splits a local matrix into location, euler rotation
// and scale, all still in source coordinates.
func TransformParts(m mgl32.Mat4) (location, rotation, scale mgl32.Vec3) {
	location = m.Col(3).Vec3()
	scale = mgl32.Vec3{
		m.Col(0).Vec3().Len(),
		m.Col(1).Vec3().Len(),
		m.Col(2).Vec3().Len(),
	}
	rotation = QuatToEuler(TransformQuat(m))
	return location, rotation, scale
}

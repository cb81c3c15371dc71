package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// singularDeterminant is the determinant magnitude below which a matrix is treated as non-invertible
const singularDeterminant = 1e-12

// Transform is an affine world transform together with its precomputed inverse
type Transform struct {
	Matrix  mgl64.Mat4
	Inverse mgl64.Mat4
}

// IdentityTransform returns the transform that leaves everything in place
func IdentityTransform() Transform {
	return Transform{Matrix: mgl64.Ident4(), Inverse: mgl64.Ident4()}
}

// NewTransform wraps m and inverts it, failing when m is singular
func NewTransform(m mgl64.Mat4) (Transform, error) {
	det := m.Det()
	if math.Abs(det) < singularDeterminant || math.IsNaN(det) {
		return Transform{}, errors.Errorf("transform is not invertible (determinant %g)", det)
	}
	return Transform{Matrix: m, Inverse: m.Inv()}, nil
}

// Translation returns a matrix translating by offset
func Translation(offset Vec3) mgl64.Mat4 {
	return mgl64.Translate3D(offset.X, offset.Y, offset.Z)
}

// Scaling returns a matrix scaling each axis independently
func Scaling(factors Vec3) mgl64.Mat4 {
	return mgl64.Scale3D(factors.X, factors.Y, factors.Z)
}

// RotationX returns a rotation about the X axis, in degrees
func RotationX(degrees float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DX(mgl64.DegToRad(degrees))
}

// RotationY returns a rotation about the Y axis, in degrees
func RotationY(degrees float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DY(mgl64.DegToRad(degrees))
}

// RotationZ returns a rotation about the Z axis, in degrees
func RotationZ(degrees float64) mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(mgl64.DegToRad(degrees))
}

// Compose multiplies matrices so that the last one is applied first
func Compose(matrices ...mgl64.Mat4) mgl64.Mat4 {
	result := mgl64.Ident4()
	for _, m := range matrices {
		result = result.Mul4(m)
	}
	return result
}

// TransformPoint applies m to p including translation
func TransformPoint(m mgl64.Mat4, p Vec3) Vec3 {
	return fromMgl(mgl64.TransformCoordinate(toMgl(p), m))
}

// TransformVector applies m to v ignoring translation
func TransformVector(m mgl64.Mat4, v Vec3) Vec3 {
	return fromMgl(mgl64.TransformNormal(toMgl(v), m))
}

// TransformAABB returns the box bounding all eight transformed corners of box
func TransformAABB(m mgl64.Mat4, box AABB) AABB {
	if box.IsEmpty() {
		return EmptyAABB
	}
	corners := box.Corners()
	points := make([]Vec3, 0, len(corners))
	for _, corner := range corners {
		points = append(points, TransformPoint(m, corner))
	}
	return NewAABBFromPoints(points...)
}

// PointToWorld maps a local point into world space
func (t Transform) PointToWorld(p Vec3) Vec3 {
	return TransformPoint(t.Matrix, p)
}

// PointToLocal maps a world point into local space
func (t Transform) PointToLocal(p Vec3) Vec3 {
	return TransformPoint(t.Inverse, p)
}

// VectorToWorld maps a local direction into world space
func (t Transform) VectorToWorld(v Vec3) Vec3 {
	return TransformVector(t.Matrix, v)
}

// VectorToLocal maps a world direction into local space
func (t Transform) VectorToLocal(v Vec3) Vec3 {
	return TransformVector(t.Inverse, v)
}

// BoundsToWorld transforms a local bounding box into world space
func (t Transform) BoundsToWorld(box AABB) AABB {
	return TransformAABB(t.Matrix, box)
}

func toMgl(v Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

package geometry

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// lengthTolerance is how far a transformed length may drift from the original before it is renormalized
const lengthTolerance = 1e-12

// Instance places a shared prototype in world space through a transform.
// The prototype is queried in its local space; nothing is copied per instance.
type Instance struct {
	prototype   core.Hittable
	transform   core.Transform
	material    core.Material // Overrides the prototype's materials when non-nil
	worldBounds core.AABB     // Derived from transform, never patched
}

// NewInstance creates an instance of prototype. A nil material keeps the
// materials stored on the prototype's primitives.
func NewInstance(prototype core.Hittable, transform core.Transform, material core.Material) *Instance {
	return &Instance{
		prototype:   prototype,
		transform:   transform,
		material:    material,
		worldBounds: transform.BoundsToWorld(prototype.BoundingBox()),
	}
}

// Transform returns the instance's local-to-world transform
func (inst *Instance) Transform() core.Transform {
	return inst.transform
}

// BoundingBox returns the prototype bounds transformed into world space
func (inst *Instance) BoundingBox() core.AABB {
	return inst.worldBounds
}

// Hit culls against the world bounds, then intersects the ray with the
// prototype in local space and maps the result back to world space.
// T on the returned record is in world units.
//
// Under scaling the local direction is renormalized to the world ray's
// length and the interval is scaled to match. Normals are mapped with the forward matrix,
// which is exact only for rotations, translations and uniform scales.
func (inst *Instance) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	if !inst.worldBounds.Hit(ray, rayT) {
		return nil, false
	}

	localDirection := inst.transform.VectorToLocal(ray.Direction)
	worldLength := ray.Direction.Length()
	localLength := localDirection.Length()
	if worldLength == 0 || localLength == 0 || math.IsNaN(localLength) {
		return nil, false
	}

	// Scaling transforms change the direction's speed; restore it and track
	// the factor so local parameters convert back to world units.
	scale := localLength / worldLength
	rescaled := math.Abs(scale-1) > lengthTolerance
	localT := rayT
	if rescaled {
		localDirection = localDirection.Divide(scale)
		localT = core.NewInterval(rayT.Min*scale, rayT.Max*scale)
	}
	localRay := core.NewRayWithTime(inst.transform.PointToLocal(ray.Origin), localDirection, ray.Time)

	rec, ok := inst.prototype.Hit(localRay, localT)
	if !ok {
		return nil, false
	}

	if rescaled {
		rec.T /= scale
	}
	rec.Point = inst.transform.PointToWorld(rec.Point)
	normal := inst.transform.VectorToWorld(rec.Normal)
	if lengthSquared := normal.LengthSquared(); math.Abs(lengthSquared-1) > lengthTolerance {
		normal = normal.Divide(math.Sqrt(lengthSquared))
	}
	if normal.Dot(ray.Direction) > 0 {
		normal = normal.Negate()
	}
	rec.Normal = normal
	if inst.material != nil {
		rec.Material = inst.material
	}

	// Guard against rounding pushing the converted parameter outside the caller's interval
	if !rayT.Contains(rec.T) {
		return nil, false
	}
	return rec, true
}

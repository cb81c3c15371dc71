package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// touchingDistance ends the instance scan early: no later instance can beat a hit this close
const touchingDistance = 0.001

// InstancedGeometry places one prototype many times and tests the
// instances with a linear scan, culling each by its world bounds.
type InstancedGeometry struct {
	prototype core.Hittable
	material  core.Material
	instances []*Instance
	bbox      core.AABB
}

// NewInstancedGeometry creates one instance of prototype per transform.
// A nil material keeps the prototype's own materials.
func NewInstancedGeometry(prototype core.Hittable, transforms []core.Transform, material core.Material) *InstancedGeometry {
	g := &InstancedGeometry{
		prototype: prototype,
		material:  material,
		instances: make([]*Instance, 0, len(transforms)),
		bbox:      core.EmptyAABB,
	}
	for _, transform := range transforms {
		inst := NewInstance(prototype, transform, material)
		g.instances = append(g.instances, inst)
		g.bbox = g.bbox.Union(inst.BoundingBox())
	}
	return g
}

// InstanceCount returns the number of placed instances
func (g *InstancedGeometry) InstanceCount() int {
	return len(g.instances)
}

// Instances returns the placed instances
func (g *InstancedGeometry) Instances() []*Instance {
	return g.instances
}

// Prototype returns the shared local-space geometry
func (g *InstancedGeometry) Prototype() core.Hittable {
	return g.prototype
}

// SetTransform replaces the transform of instance i and recomputes the
// cached world bounds. It must not be called while a render is in flight.
func (g *InstancedGeometry) SetTransform(i int, transform core.Transform) error {
	if i < 0 || i >= len(g.instances) {
		return errors.Errorf("instance index %d out of range [0, %d)", i, len(g.instances))
	}
	g.instances[i] = NewInstance(g.prototype, transform, g.material)

	g.bbox = core.EmptyAABB
	for _, inst := range g.instances {
		g.bbox = g.bbox.Union(inst.BoundingBox())
	}
	return nil
}

// Hit returns the closest hit across all instances
func (g *InstancedGeometry) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := rayT.Max

	for _, inst := range g.instances {
		if hit, isHit := inst.Hit(ray, core.NewInterval(rayT.Min, closestSoFar)); isHit {
			closestSoFar = hit.T
			closestHit = hit
			if closestSoFar < touchingDistance {
				break
			}
		}
	}

	return closestHit, closestHit != nil
}

// BoundingBox returns the union of all instance world bounds
func (g *InstancedGeometry) BoundingBox() core.AABB {
	return g.bbox
}

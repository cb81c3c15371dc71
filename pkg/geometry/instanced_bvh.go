package geometry

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// InstancedBVH is the two-level form of instancing: a top-level BVH whose
// leaves are instances, each referencing a shared bottom-level prototype.
type InstancedBVH struct {
	instances []*Instance
	top       *core.BVH
}

// NewInstancedBVH builds the top-level hierarchy over the instances' world bounds
func NewInstancedBVH(instances []*Instance, strategy core.SplitStrategy) *InstancedBVH {
	leaves := make([]core.Hittable, len(instances))
	for i, inst := range instances {
		leaves[i] = inst
	}
	return &InstancedBVH{
		instances: instances,
		top:       core.NewBVHWithStrategy(leaves, strategy),
	}
}

// InstanceCount returns the number of instances in the hierarchy
func (b *InstancedBVH) InstanceCount() int {
	return len(b.instances)
}

// Stats returns the shape of the top-level hierarchy
func (b *InstancedBVH) Stats() core.BVHStats {
	return b.top.Stats()
}

// Hit traverses the top-level BVH, descending into prototypes only for
// instances whose world bounds the ray reaches before the closest hit so far.
func (b *InstancedBVH) Hit(ray core.Ray, rayT core.Interval) (*core.HitRecord, bool) {
	return b.top.Hit(ray, rayT)
}

// BoundingBox returns the bounds of every instance
func (b *InstancedBVH) BoundingBox() core.AABB {
	return b.top.BoundingBox()
}

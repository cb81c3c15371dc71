package geometry

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// NewBox creates the twelve triangles of an axis-aligned box.
// Size represents half-extents (so a size of (1,1,1) creates a 2x2x2 box).
// Rotated boxes are placed through an instance transform.
func NewBox(center, size core.Vec3, material core.Material) []core.Hittable {
	corners := [8]core.Vec3{
		core.NewVec3(-1, -1, -1), // 0: left-bottom-back
		core.NewVec3(1, -1, -1),  // 1: right-bottom-back
		core.NewVec3(1, 1, -1),   // 2: right-top-back
		core.NewVec3(-1, 1, -1),  // 3: left-top-back
		core.NewVec3(-1, -1, 1),  // 4: left-bottom-front
		core.NewVec3(1, -1, 1),   // 5: right-bottom-front
		core.NewVec3(1, 1, 1),    // 6: right-top-front
		core.NewVec3(-1, 1, 1),   // 7: left-top-front
	}
	for i := range corners {
		corners[i] = corners[i].MultiplyVec(size).Add(center)
	}

	// Each face is a corner and two edges ordered so u × v points outward
	faces := [6][3]int{
		{4, 5, 7}, // front (Z+)
		{1, 0, 2}, // back (Z-)
		{5, 1, 6}, // right (X+)
		{0, 4, 3}, // left (X-)
		{3, 7, 2}, // top (Y+)
		{4, 0, 5}, // bottom (Y-)
	}

	triangles := make([]core.Hittable, 0, 12)
	for _, face := range faces {
		corner := corners[face[0]]
		u := corners[face[1]].Subtract(corner)
		v := corners[face[2]].Subtract(corner)
		triangles = append(triangles, NewQuad(corner, u, v, material)...)
	}
	return triangles
}

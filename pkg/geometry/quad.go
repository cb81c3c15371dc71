package geometry

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// NewQuad splits the parallelogram spanned by edge vectors u and v at corner
// into two triangles. Both triangles face along u × v.
func NewQuad(corner, u, v core.Vec3, material core.Material) []core.Hittable {
	normal := u.Cross(v)
	p1 := corner.Add(u)
	p2 := corner.Add(u).Add(v)
	p3 := corner.Add(v)

	return []core.Hittable{
		NewTriangleWithNormal(corner, p1, p2, normal, material),
		NewTriangleWithNormal(corner, p2, p3, normal, material),
	}
}

package scene

import (
	"math/rand"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

// spheresSeed fixes the layout of the small spheres
const spheresSeed = 1

// NewSpheresScene creates the classic spheres scene: a huge ground sphere,
// three large spheres and a field of small spheres. Every small sphere is
// an instance of one unit sphere prototype.
func NewSpheresScene() *Scene {
	s := New("spheres")
	s.Camera = s.Camera.
		WithResolution(800, 450).
		WithPosition(core.NewVec3(13, 2, 3), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		WithLens(20, 0.6, 10)
	s.Render.SamplesPerPixel = 50
	s.Render.MaxDepth = 10
	s.Render.UseSkyGradient = true

	ground := geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))
	glass := geometry.NewSphere(core.NewVec3(0, 1, 0), 1, material.NewDielectric(1.5))
	matte := geometry.NewSphere(core.NewVec3(-4, 1, 0), 1, material.NewLambertian(core.NewColor(0.4, 0.2, 0.1)))
	metal := geometry.NewSphere(core.NewVec3(4, 1, 0), 1, material.NewMetal(core.NewColor(0.7, 0.6, 0.5), 0))
	s.AddStatic("large-spheres", ground, glass, matte, metal)

	unitSphere := NewPrototype("unit-sphere", geometry.NewSphere(core.NewVec3(0, 0, 0), 1, nil))
	radius := 0.2
	scale := core.Scaling(core.NewVec3(radius, radius, radius))
	random := rand.New(rand.NewSource(spheresSeed))

	for a := -5; a < 5; a++ {
		for b := -5; b < 5; b++ {
			center := core.NewVec3(float64(a)+0.9*random.Float64(), radius, float64(b)+0.9*random.Float64())
			if center.Subtract(core.NewVec3(4, radius, 0)).Length() <= 0.9 {
				continue
			}

			var mat core.Material
			switch choose := random.Float64(); {
			case choose < 0.8:
				albedo := core.NewColor(
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
					random.Float64()*random.Float64(),
				)
				mat = material.NewLambertian(albedo)
			case choose < 0.95:
				albedo := core.NewColor(
					0.5+0.5*random.Float64(),
					0.5+0.5*random.Float64(),
					0.5+0.5*random.Float64(),
				)
				mat = material.NewMetal(albedo, 0.5*random.Float64())
			default:
				mat = material.NewDielectric(1.5)
			}

			s.AddGroup(unitSphere, mat, core.Compose(core.Translation(center), scale))
		}
	}

	return s
}

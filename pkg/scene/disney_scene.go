package scene

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

// disneyColumns is the number of roughness steps per row
const disneyColumns = 5

// NewDisneyScene lays out three rows of principled spheres: metals, plastics
// and clearcoated diffuse with sheen, with roughness increasing left to right.
// All fifteen spheres instance one unit sphere.
func NewDisneyScene() *Scene {
	s := New("disney")
	s.Camera = s.Camera.
		WithResolution(800, 450).
		WithPosition(core.NewVec3(0, 3.5, 9), core.NewVec3(0, 1.4, 0), core.NewVec3(0, 1, 0)).
		WithLens(35, 0, 1)
	s.Render.SamplesPerPixel = 128
	s.Render.MaxDepth = 16
	s.Render.UseSkyGradient = true

	checker := material.NewChecker(core.NewColor(0.8, 0.8, 0.8), core.NewColor(0.3, 0.3, 0.3), 200)
	ground := geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, material.NewTexturedLambertian(checker))
	s.AddStatic("ground", ground)

	gold := core.NewColor(1.0, 0.78, 0.34)
	red := core.NewColor(0.8, 0.1, 0.1)
	blue := core.NewColor(0.15, 0.3, 0.75)

	rows := []func(roughness float64) core.Material{
		func(roughness float64) core.Material {
			return material.NewDisneyMetal(gold, roughness)
		},
		func(roughness float64) core.Material {
			return material.NewDisneyPlastic(red, roughness)
		},
		func(roughness float64) core.Material {
			return material.NewDisneyDiffuse(blue).
				WithRoughness(roughness).
				WithSheen(0.5, 0.5).
				WithClearcoat(1, 1-roughness)
		},
	}

	unitSphere := NewPrototype("unit-sphere", geometry.NewSphere(core.NewVec3(0, 0, 0), 1, nil))
	radius := 0.45
	spacing := 1.1
	for row, newMaterial := range rows {
		for col := 0; col < disneyColumns; col++ {
			roughness := float64(col) / float64(disneyColumns-1)
			center := core.NewVec3(
				(float64(col)-float64(disneyColumns-1)/2)*spacing,
				radius+float64(row)*spacing,
				-float64(row)*0.6,
			)
			transform := core.Compose(core.Translation(center), core.Scaling(core.NewVec3(radius, radius, radius)))
			s.AddGroup(unitSphere, newMaterial(roughness), transform)
		}
	}

	// A mirror-and-glass mix behind the rows
	mix := material.NewMix(material.NewMetal(core.NewColor(0.9, 0.9, 0.9), 0.05), material.NewDielectric(1.5), 0.5)
	s.AddStatic("backdrop", geometry.NewSphere(core.NewVec3(0, 1.5, -4), 1.5, mix))

	return s
}

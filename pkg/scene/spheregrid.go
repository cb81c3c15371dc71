package scene

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

const (
	gridSeed    = 7
	gridSize    = 24 // Instances per side
	gridPalette = 8  // Distinct hues, one instance group each
)

// hclColor converts an HCL color (hue in degrees, chroma and luminance in
// [0, 1]) to linear RGB, clamped to the displayable gamut
func hclColor(hue, chroma, luminance float64) core.Color {
	r, g, b := colorful.Hcl(hue, chroma, luminance).Clamped().LinearRgb()
	return core.NewColor(r, g, b)
}

// NewInstancedGridScene creates a grid of boxes that all share one
// prototype. Each box gets its own rotation, height and color group.
func NewInstancedGridScene() *Scene {
	s := New("instanced")
	s.Camera = s.Camera.
		WithResolution(800, 450).
		WithPosition(core.NewVec3(0, 14, 22), core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)).
		WithLens(40, 0, 1)
	s.Render.SamplesPerPixel = 64
	s.Render.MaxDepth = 12
	s.Render.UseSkyGradient = true

	// The ground sits just below y = 0 so it stays inside one layer of checker cubes
	checker := material.NewSpatialChecker(core.NewColor(0.2, 0.3, 0.1), core.NewColor(0.9, 0.9, 0.9), 2)
	s.AddStatic("ground", NewGroundQuad(core.NewVec3(0, -0.001, 0), 200, material.NewTexturedLambertian(checker))...)

	// Unit box resting on y = 0
	box := NewPrototype("box", geometry.NewBox(core.NewVec3(0, 0.5, 0), core.NewVec3(0.5, 0.5, 0.5), nil)...)

	materials := make([]core.Material, gridPalette)
	transforms := make([][]mgl64.Mat4, gridPalette)
	for i := range materials {
		color := hclColor(360*float64(i)/gridPalette, 0.45, 0.65)
		if i%2 == 0 {
			materials[i] = material.NewLambertian(color)
		} else {
			materials[i] = material.NewMetal(color, 0.2)
		}
	}

	random := rand.New(rand.NewSource(gridSeed))
	spacing := 1.2
	offset := spacing * float64(gridSize-1) / 2
	for i := 0; i < gridSize; i++ {
		for j := 0; j < gridSize; j++ {
			x := float64(i)*spacing - offset
			z := float64(j)*spacing - offset
			distance := math.Hypot(x, z)

			height := 0.3 + 2.5*math.Exp(-distance*distance/60) + 0.3*random.Float64()
			rotation := mgl64.QuatRotate(random.Float64()*math.Pi/2, mgl64.Vec3{0, 1, 0})
			transform := SRT(core.NewVec3(x, 0, z), rotation, core.NewVec3(0.7, height, 0.7))

			palette := int(distance/2) % gridPalette
			transforms[palette] = append(transforms[palette], transform)
		}
	}

	for i := range materials {
		if len(transforms[i]) > 0 {
			s.AddGroup(box, materials[i], transforms[i]...)
		}
	}

	return s
}

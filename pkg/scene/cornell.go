package scene

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box scene with quad walls and a
// ceiling light. Both inner boxes are instances of one unit cube.
func NewCornellScene() *Scene {
	s := New("cornell")
	s.Camera = s.Camera.
		WithResolution(400, 400).
		WithPosition(core.NewVec3(278, 278, -800), core.NewVec3(278, 278, 0), core.NewVec3(0, 1, 0)).
		WithLens(40, 0, 1)
	s.Render.SamplesPerPixel = 200
	s.Render.MaxDepth = 40
	s.Render.Background = core.NewColor(0, 0, 0)
	s.Render.RussianRouletteMinBounces = 4

	white := material.NewLambertian(core.NewColor(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewColor(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewColor(0.12, 0.45, 0.15))

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0

	var walls []core.Hittable
	// Floor and ceiling (XZ planes)
	walls = append(walls, geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white)...)
	walls = append(walls, geometry.NewQuad(core.NewVec3(0, boxSize, 0), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, 0, boxSize), white)...)
	// Back wall (XY plane at z=boxSize)
	walls = append(walls, geometry.NewQuad(core.NewVec3(0, 0, boxSize), core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), white)...)
	// Left (red) and right (green) walls
	walls = append(walls, geometry.NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, boxSize), core.NewVec3(0, boxSize, 0), red)...)
	walls = append(walls, geometry.NewQuad(core.NewVec3(boxSize, 0, 0), core.NewVec3(0, boxSize, 0), core.NewVec3(0, 0, boxSize), green)...)
	s.AddStatic("walls", walls...)

	// Ceiling light, slightly below the ceiling
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	s.AddQuadLight(
		core.NewVec3(lightOffset, boxSize-1, lightOffset),
		core.NewVec3(lightSize, 0, 0),
		core.NewVec3(0, 0, lightSize),
		core.NewColor(15, 15, 15),
	)

	// Unit cube with its base centered on the origin
	cube := NewPrototype("cube", geometry.NewBox(core.NewVec3(0, 0.5, 0), core.NewVec3(0.5, 0.5, 0.5), white)...)

	tall := core.Compose(
		core.Translation(core.NewVec3(347.5, 0, 377.5)),
		core.RotationY(15),
		core.Scaling(core.NewVec3(165, 330, 165)),
	)
	s.AddGroup(cube, nil, tall)

	// The short box is half matte, half mirror
	short := core.Compose(
		core.Translation(core.NewVec3(212.5, 0, 147.5)),
		core.RotationY(-18),
		core.Scaling(core.NewVec3(165, 165, 165)),
	)
	s.AddGroup(cube, material.NewMix(white, material.NewMetal(core.NewColor(0.8, 0.85, 0.88), 0), 0.5), short)

	return s
}

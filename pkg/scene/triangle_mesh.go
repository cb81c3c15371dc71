package scene

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/loaders"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

// meshSeed fixes the rotations of mesh instances
const meshSeed = 3

// meshPalette is the number of material groups mesh instances are spread over
const meshPalette = 6

// NewMeshPrototype turns a loaded mesh into a prototype normalized to unit
// height with its base centered on the origin. Shading uses smoothed
// vertex normals unless the mesh carries its own.
func NewMeshPrototype(name string, mesh *loaders.Mesh) (*Prototype, error) {
	if mesh == nil || len(mesh.Indices) == 0 {
		return nil, errors.Errorf("mesh %q has no triangles", name)
	}

	bounds := mesh.Bounds()
	size := bounds.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent <= 0 || math.IsInf(extent, 0) || math.IsNaN(extent) {
		return nil, errors.Errorf("mesh %q has degenerate bounds", name)
	}
	scale := 1 / extent
	center := bounds.Center()
	base := core.NewVec3(center.X, bounds.Min().Y, center.Z)

	positions := make([]core.Vec3, len(mesh.Positions))
	for i, p := range mesh.Positions {
		positions[i] = p.Subtract(base).Multiply(scale)
	}

	options := &geometry.TriangleMeshOptions{SmoothNormals: true}
	if len(mesh.Normals) == len(mesh.Positions) {
		options.Normals = make([]core.Vec3, 0, mesh.TriangleCount())
		for i := 0; i+2 < len(mesh.Indices); i += 3 {
			n := mesh.Normals[mesh.Indices[i]].
				Add(mesh.Normals[mesh.Indices[i+1]]).
				Add(mesh.Normals[mesh.Indices[i+2]])
			options.Normals = append(options.Normals, n)
		}
	}

	triangles, err := geometry.NewTriangleMesh(positions, mesh.Indices, nil, options)
	if err != nil {
		return nil, errors.Wrapf(err, "building mesh %q", name)
	}
	return NewPrototype(name, triangles...), nil
}

// NewMeshScene places count instances of prototype on a square grid, each
// with its own rotation about Y, spread across a small palette of materials.
func NewMeshScene(prototype *Prototype, count int) (*Scene, error) {
	if count < 1 {
		return nil, errors.Errorf("instance count must be at least 1, got %d", count)
	}

	s := New("mesh")
	side := int(math.Ceil(math.Sqrt(float64(count))))
	spacing := 1.5
	extent := spacing * float64(side)

	s.Camera = s.Camera.
		WithResolution(800, 450).
		WithPosition(core.NewVec3(0, 0.6*extent+1, 0.9*extent+2), core.NewVec3(0, 0.3, 0), core.NewVec3(0, 1, 0)).
		WithLens(40, 0, 1)
	s.Render.SamplesPerPixel = 32
	s.Render.MaxDepth = 8
	s.Render.UseSkyGradient = true

	s.AddStatic("ground", NewGroundQuad(core.NewVec3(0, 0, 0), 10*extent+20, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5)))...)

	transforms := make([][]mgl64.Mat4, meshPalette)
	random := rand.New(rand.NewSource(meshSeed))
	offset := spacing * float64(side-1) / 2
	for i := 0; i < count; i++ {
		x := float64(i%side)*spacing - offset
		z := float64(i/side)*spacing - offset
		rotation := mgl64.QuatRotate(random.Float64()*2*math.Pi, mgl64.Vec3{0, 1, 0})
		transforms[i%meshPalette] = append(transforms[i%meshPalette], SRT(core.NewVec3(x, 0, z), rotation, core.NewVec3(1, 1, 1)))
	}

	for i, group := range transforms {
		if len(group) == 0 {
			continue
		}
		color := hclColor(360*float64(i)/meshPalette, 0.4, 0.7)
		var mat core.Material = material.NewDisneyPlastic(color, 0.4)
		if i%3 == 2 {
			mat = material.NewDisneyMetal(color, 0.25)
		}
		s.AddGroup(prototype, mat, group...)
	}

	return s, nil
}

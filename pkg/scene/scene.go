package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/pkg/material"
	"github.com/df07/go-instanced-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name   string
	Groups []InstanceGroup       // Prototypes and their placements
	Camera renderer.CameraConfig // Camera placement and lens
	Render renderer.RenderConfig // Sampling and scheduling defaults
	World  core.Hittable         // Set by Preprocess
}

// New creates an empty scene with default camera and render settings
func New(name string) *Scene {
	return &Scene{
		Name:   name,
		Camera: renderer.DefaultCameraConfig(),
		Render: renderer.DefaultRenderConfig(),
	}
}

// AddGroup places prototype once per transform
func (s *Scene) AddGroup(prototype *Prototype, material core.Material, transforms ...mgl64.Mat4) {
	s.Groups = append(s.Groups, InstanceGroup{
		Prototype:  prototype,
		Transforms: transforms,
		Material:   material,
	})
}

// AddStatic adds world-space primitives as a single identity instance
func (s *Scene) AddStatic(name string, primitives ...core.Hittable) {
	s.AddGroup(NewPrototype(name, primitives...), nil, mgl64.Ident4())
}

// AddQuadLight adds an emissive parallelogram
func (s *Scene) AddQuadLight(corner, u, v core.Vec3, emission core.Color) {
	s.AddStatic("light", geometry.NewQuad(corner, u, v, material.NewDiffuseLight(emission))...)
}

// NewGroundQuad creates a large quad to replace infinite ground planes
// Creates a horizontal quad centered at the given point with normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, mat core.Material) []core.Hittable {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) = (0,size²,0)
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, mat)
}

// Preprocess assembles the groups into the world used for rendering
func (s *Scene) Preprocess(mode InstancingMode, logger logging.Logger) error {
	world, err := Assemble(s.Groups, mode, logger)
	if err != nil {
		return errors.Wrapf(err, "assembling scene %q", s.Name)
	}
	s.World = world
	return nil
}

// InstanceCount returns the number of placed instances
func (s *Scene) InstanceCount() int {
	count := 0
	for _, group := range s.Groups {
		count += len(group.Transforms)
	}
	return count
}

// GetPrimitiveCount returns the number of primitives the world would hold
// if every instance were flattened into world space
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, group := range s.Groups {
		if group.Prototype == nil {
			continue
		}
		count += len(group.Prototype.Primitives) * len(group.Transforms)
	}
	return count
}

// PrototypeCount returns the number of distinct prototypes
func (s *Scene) PrototypeCount() int {
	seen := make(map[*Prototype]bool)
	for _, group := range s.Groups {
		seen[group.Prototype] = true
	}
	return len(seen)
}

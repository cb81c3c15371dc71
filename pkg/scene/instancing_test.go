package scene

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/loaders"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

var forward = core.NewInterval(0.001, math.Inf(1))

func unitSpherePrototype() *Prototype {
	return NewPrototype("sphere", geometry.NewSphere(core.NewVec3(0, 0, 0), 1, material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))))
}

func TestParseInstancingMode(t *testing.T) {
	tests := []struct {
		input    string
		expected InstancingMode
	}{
		{"linear", InstancingLinear},
		{"LINEAR", InstancingLinear},
		{"bvh", InstancingTwoLevel},
		{" two-level ", InstancingTwoLevel},
	}
	for _, tt := range tests {
		mode, err := ParseInstancingMode(tt.input)
		if err != nil {
			t.Errorf("ParseInstancingMode(%q) failed: %v", tt.input, err)
			continue
		}
		if mode != tt.expected {
			t.Errorf("ParseInstancingMode(%q) = %v, want %v", tt.input, mode, tt.expected)
		}
	}

	_, err := ParseInstancingMode("octree")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, InstancingMode(9).String(), test.ShouldEqual, "unknown")
}

func TestSRT(t *testing.T) {
	rotation := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0})
	m := SRT(core.NewVec3(1, 2, 3), rotation, core.NewVec3(2, 2, 2))

	// Scale first, then rotate +X onto -Z, then translate
	p := core.TransformPoint(m, core.NewVec3(1, 0, 0))
	test.That(t, p.X, test.ShouldAlmostEqual, 1.0)
	test.That(t, p.Y, test.ShouldAlmostEqual, 2.0)
	test.That(t, p.Z, test.ShouldAlmostEqual, 1.0)
}

func TestAssemble_Errors(t *testing.T) {
	sphere := unitSpherePrototype()
	singular := core.Scaling(core.NewVec3(1, 0, 1))

	tests := []struct {
		name    string
		groups  []InstanceGroup
		mode    InstancingMode
		message string
	}{
		{"no groups", nil, InstancingLinear, "no instance groups"},
		{"bad mode", []InstanceGroup{{Prototype: sphere, Transforms: []mgl64.Mat4{mgl64.Ident4()}}}, InstancingMode(5), "unknown instancing mode"},
		{"nil prototype", []InstanceGroup{{Transforms: []mgl64.Mat4{mgl64.Ident4()}}}, InstancingLinear, "missing prototype"},
		{"empty prototype", []InstanceGroup{{Prototype: NewPrototype("empty"), Transforms: []mgl64.Mat4{mgl64.Ident4()}}}, InstancingTwoLevel, "no primitives"},
		{"no transforms", []InstanceGroup{{Prototype: sphere}}, InstancingLinear, "no instance transforms"},
		{"singular transform", []InstanceGroup{{Prototype: sphere, Transforms: []mgl64.Mat4{mgl64.Ident4(), singular}}}, InstancingTwoLevel, "instance 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			world, err := Assemble(tt.groups, tt.mode, logging.NewTestLogger(t))
			test.That(t, world, test.ShouldBeNil)
			test.That(t, err, test.ShouldNotBeNil)
			test.That(t, err.Error(), test.ShouldContainSubstring, tt.message)
		})
	}
}

func TestAssemble_ReportsEveryBadGroup(t *testing.T) {
	groups := []InstanceGroup{
		{Prototype: nil, Transforms: []mgl64.Mat4{mgl64.Ident4()}},
		{Prototype: unitSpherePrototype(), Transforms: []mgl64.Mat4{mgl64.Ident4()}},
		{Prototype: unitSpherePrototype()},
	}
	_, err := Assemble(groups, InstancingLinear, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "group 0")
	test.That(t, err.Error(), test.ShouldContainSubstring, "group 2")
	test.That(t, err.Error(), test.ShouldNotContainSubstring, "group 1")
}

func TestAssemble_ModesAgree(t *testing.T) {
	sphere := unitSpherePrototype()
	red := material.NewLambertian(core.NewColor(1, 0, 0))
	random := rand.New(rand.NewSource(11))

	var groups []InstanceGroup
	for g := 0; g < 4; g++ {
		var transforms []mgl64.Mat4
		for i := 0; i < 25; i++ {
			offset := core.NewVec3(random.Float64()*40-20, random.Float64()*40-20, random.Float64()*40-20)
			scale := 0.2 + random.Float64()
			transforms = append(transforms, core.Compose(core.Translation(offset), core.RotationY(random.Float64()*360), core.Scaling(core.NewVec3(scale, scale*0.5, scale))))
		}
		var mat core.Material
		if g%2 == 0 {
			mat = red
		}
		groups = append(groups, InstanceGroup{Prototype: sphere, Transforms: transforms, Material: mat})
	}

	logger, logs := logging.NewObservedTestLogger(t)
	linear, err := Assemble(groups, InstancingLinear, logger)
	test.That(t, err, test.ShouldBeNil)
	twoLevel, err := Assemble(groups, InstancingTwoLevel, logger)
	test.That(t, err, test.ShouldBeNil)

	_, ok := twoLevel.(*geometry.InstancedBVH)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, logs.FilterMessage("assembled scene").Len(), test.ShouldEqual, 2)
	// One shared prototype BVH per assembly
	test.That(t, logs.FilterMessage("built prototype").Len(), test.ShouldEqual, 2)

	test.That(t, linear.BoundingBox(), test.ShouldResemble, twoLevel.BoundingBox())

	hits := 0
	for i := 0; i < 500; i++ {
		origin := core.NewVec3(random.Float64()*60-30, random.Float64()*60-30, 40)
		target := core.NewVec3(random.Float64()*40-20, random.Float64()*40-20, 0)
		ray := core.NewRay(origin, target.Subtract(origin).Normalize())

		expected, expectedHit := linear.Hit(ray, forward)
		actual, actualHit := twoLevel.Hit(ray, forward)
		if expectedHit != actualHit {
			t.Fatalf("ray %d: linear hit=%v, two-level hit=%v", i, expectedHit, actualHit)
		}
		if !expectedHit {
			continue
		}
		hits++
		if math.Abs(expected.T-actual.T) > 1e-9 {
			t.Errorf("ray %d: linear T=%v, two-level T=%v", i, expected.T, actual.T)
		}
		if expected.Material != actual.Material {
			t.Errorf("ray %d: materials differ", i)
		}
	}
	test.That(t, hits, test.ShouldBeGreaterThan, 0)
}

func TestAssemble_SingleLinearGroupIsUnwrapped(t *testing.T) {
	groups := []InstanceGroup{{Prototype: unitSpherePrototype(), Transforms: []mgl64.Mat4{mgl64.Ident4(), core.Translation(core.NewVec3(3, 0, 0))}}}
	world, err := Assemble(groups, InstancingLinear, nil)
	test.That(t, err, test.ShouldBeNil)

	instanced, ok := world.(*geometry.InstancedGeometry)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, instanced.InstanceCount(), test.ShouldEqual, 2)

	hit, isHit := world.Hit(core.NewRay(core.NewVec3(3, 0, 5), core.NewVec3(0, 0, -1)), forward)
	test.That(t, isHit, test.ShouldBeTrue)
	test.That(t, hit.T, test.ShouldAlmostEqual, 4.0)
}

func TestSceneCounts(t *testing.T) {
	s := New("counts")
	sphere := unitSpherePrototype()
	s.AddGroup(sphere, nil, mgl64.Ident4(), core.Translation(core.NewVec3(2, 0, 0)))
	s.AddGroup(sphere, nil, core.Translation(core.NewVec3(4, 0, 0)))
	s.AddStatic("ground", NewGroundQuad(core.NewVec3(0, -1, 0), 10, nil)...)

	test.That(t, s.InstanceCount(), test.ShouldEqual, 4)
	test.That(t, s.PrototypeCount(), test.ShouldEqual, 2)
	test.That(t, s.GetPrimitiveCount(), test.ShouldEqual, 5)

	test.That(t, s.Preprocess(InstancingTwoLevel, nil), test.ShouldBeNil)
	hit, isHit := s.World.Hit(core.NewRay(core.NewVec3(0, 5, 0.5), core.NewVec3(0, -1, 0)), forward)
	test.That(t, isHit, test.ShouldBeTrue)
	test.That(t, hit.Normal.Y, test.ShouldBeGreaterThan, 0.0)

	// The ground faces up
	hit, isHit = s.World.Hit(core.NewRay(core.NewVec3(-3, 5, 0), core.NewVec3(0, -1, 0)), forward)
	test.That(t, isHit, test.ShouldBeTrue)
	test.That(t, hit.T, test.ShouldAlmostEqual, 6.0)
	test.That(t, hit.Normal, test.ShouldResemble, core.NewVec3(0, 1, 0))

	empty := New("empty")
	err := empty.Preprocess(InstancingLinear, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "empty")
}

func TestMeshScene(t *testing.T) {
	// Tetrahedron twice as tall as it is wide, floating above the origin
	mesh := &loaders.Mesh{
		Positions: []core.Vec3{
			core.NewVec3(0, 2, 0),
			core.NewVec3(0, 6, 0),
			core.NewVec3(2, 2, 0),
			core.NewVec3(0, 2, 2),
		},
		Indices: []int{0, 2, 1, 0, 1, 3, 0, 3, 2, 1, 2, 3},
	}

	prototype, err := NewMeshPrototype("tetra", mesh)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prototype.Primitives, test.ShouldHaveLength, 4)
	for _, primitive := range prototype.Primitives {
		if _, ok := primitive.(*geometry.Triangle); !ok {
			t.Errorf("mesh primitive is %T, want *geometry.Triangle", primitive)
		}
	}

	bounds := core.NewHittableList(prototype.Primitives...).BoundingBox()
	test.That(t, bounds.Min().Y, test.ShouldAlmostEqual, 0.0, 1e-3)
	test.That(t, bounds.Max().Y, test.ShouldAlmostEqual, 1.0, 1e-3)

	s, err := NewMeshScene(prototype, 10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.InstanceCount(), test.ShouldEqual, 11)
	test.That(t, s.Camera.Validate(), test.ShouldBeNil)
	test.That(t, s.Preprocess(InstancingTwoLevel, nil), test.ShouldBeNil)

	_, err = NewMeshScene(prototype, 0)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewMeshPrototype("empty", &loaders.Mesh{})
	test.That(t, err, test.ShouldNotBeNil)
}

package integrator

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/geometry"
	"github.com/df07/go-instanced-raytracer/pkg/material"
)

// createTestWorld creates a simple world with a diffuse sphere in front of the origin
func createTestWorld() core.Hittable {
	lambertian := material.NewLambertian(core.NewColor(0.7, 0.3, 0.3))
	return core.NewBVH([]core.Hittable{geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, lambertian)})
}

func TestPathTracingDepthTermination(t *testing.T) {
	world := createTestWorld()
	integrator := NewPathTracingIntegrator(Config{UseSkyGradient: true})
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	tests := []struct {
		name string
		ray  core.Ray
	}{
		{"ray at sphere", ray},
		{"ray at sky", core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := integrator.RayColor(tt.ray, world, 0, core.NewSeededSampler(42))
			if color != (core.Color{}) {
				t.Errorf("Expected black color for depth 0, got %v", color)
			}
		})
	}

	color := integrator.RayColor(ray, world, 10, core.NewSeededSampler(42))
	if color.X <= 0 && color.Y <= 0 && color.Z <= 0 {
		t.Errorf("Expected some light with positive depth, got %v", color)
	}
}

func TestPathTracingSolidBackground(t *testing.T) {
	background := core.NewColor(0.2, 0.4, 0.6)
	integrator := NewPathTracingIntegrator(Config{Background: background})
	empty := core.NewHittableList()

	for _, dir := range []core.Vec3{{X: 0, Y: 1, Z: 0}, {X: 1, Y: -1, Z: 0}, {X: 0.3, Y: 0.1, Z: -1}} {
		color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), dir), empty, 5, core.NewSeededSampler(1))
		test.That(t, color, test.ShouldResemble, background)
	}
}

func TestPathTracingSkyGradient(t *testing.T) {
	integrator := NewPathTracingIntegrator(Config{UseSkyGradient: true})

	tests := []struct {
		name     string
		dir      core.Vec3
		expected core.Color
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewColor(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -1, 0), core.NewColor(1, 1, 1)},
		{"horizon", core.NewVec3(1, 0, 0), core.NewColor(0.75, 0.85, 1.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := integrator.Background(core.NewRay(core.NewVec3(0, 0, 0), tt.dir))
			if color.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestPathTracingEmission(t *testing.T) {
	light := material.NewDiffuseLight(core.NewColor(4, 2, 1))
	world := core.NewHittableList(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, light))
	integrator := NewPathTracingIntegrator(Config{Background: core.NewColor(0.5, 0.5, 0.5)})

	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, 3, core.NewSeededSampler(1))
	test.That(t, color, test.ShouldResemble, core.NewColor(4, 2, 1))
}

func TestPathTracingMirrorReflectsBackground(t *testing.T) {
	// A perfect white mirror facing the camera returns the background unchanged
	mirror := material.NewMetal(core.NewColor(1, 1, 1), 0)
	world := core.NewHittableList(geometry.NewSphere(core.NewVec3(0, 0, -3), 1, mirror))
	background := core.NewColor(0.1, 0.9, 0.3)
	integrator := NewPathTracingIntegrator(Config{Background: background})

	color := integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, 2, core.NewSeededSampler(1))
	test.That(t, color, test.ShouldResemble, background)

	// One bounce is not enough to escape
	color = integrator.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), world, 1, core.NewSeededSampler(1))
	test.That(t, color, test.ShouldResemble, core.Color{})
}

func TestPathTracingReproducible(t *testing.T) {
	world := createTestWorld()
	integrator := NewPathTracingIntegrator(Config{UseSkyGradient: true})
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0.1, 0.05, -1))

	render := func() core.Color {
		sampler := core.NewSeededSampler(1234)
		sum := core.Color{}
		for i := 0; i < 64; i++ {
			sum = sum.Add(integrator.RayColor(ray, world, 8, sampler))
		}
		return sum
	}
	test.That(t, render(), test.ShouldResemble, render())
}

func TestPathTracingRussianRoulette(t *testing.T) {
	world := createTestWorld()
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))
	sampler := core.NewSeededSampler(99)

	plain := NewPathTracingIntegrator(Config{UseSkyGradient: true})
	roulette := NewPathTracingIntegrator(Config{UseSkyGradient: true, RussianRouletteMinBounces: 1})

	const samples = 4000
	var plainSum, rouletteSum float64
	for i := 0; i < samples; i++ {
		plainSum += plain.RayColor(ray, world, 10, sampler).Luminance()
		rouletteSum += roulette.RayColor(ray, world, 10, sampler).Luminance()
	}
	plainMean := plainSum / samples
	rouletteMean := rouletteSum / samples

	// Roulette is unbiased: both estimators converge on the same value
	if math.Abs(plainMean-rouletteMean) > 0.1*plainMean {
		t.Errorf("Russian roulette changed the estimate: %f vs %f", rouletteMean, plainMean)
	}
}

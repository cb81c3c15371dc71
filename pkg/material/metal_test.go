package material

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

func TestMetal_FuzzClamping(t *testing.T) {
	tests := []struct {
		name     string
		fuzz     float64
		expected float64
	}{
		{"negative", -0.5, 0.0},
		{"mirror", 0.0, 0.0},
		{"in range", 0.3, 0.3},
		{"too large", 2.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			metal := NewMetal(core.NewColor(0.8, 0.8, 0.8), tt.fuzz)
			if metal.Fuzz != tt.expected {
				t.Errorf("Expected fuzz %f, got %f", tt.expected, metal.Fuzz)
			}
		})
	}
}

func TestMetal_PerfectReflection(t *testing.T) {
	albedo := core.NewColor(0.9, 0.6, 0.3)
	metal := NewMetal(albedo, 0)
	ray := core.NewRay(core.NewVec3(-1, 1, 0), core.NewVec3(1, -1, 0))

	scatter, didScatter := metal.Scatter(ray, upHit(metal), seededSampler(42))
	test.That(t, didScatter, test.ShouldBeTrue)
	test.That(t, scatter.PDF, test.ShouldEqual, 0.0)
	test.That(t, scatter.Attenuation, test.ShouldResemble, albedo)

	expected := core.NewVec3(1, 1, 0).Normalize()
	direction := scatter.Scattered.Direction.Normalize()
	if direction.Subtract(expected).Length() > 1e-10 {
		t.Errorf("Expected reflection %v, got %v", expected, direction)
	}
}

func TestMetal_FuzzyReflectionStaysAboveSurface(t *testing.T) {
	metal := NewMetal(core.NewColor(0.8, 0.8, 0.8), 1.0)
	hit := upHit(metal)
	// Grazing incidence so fuzz regularly pushes rays into the surface
	ray := core.NewRay(core.NewVec3(-1, 0.05, 0), core.NewVec3(1, -0.05, 0))
	sampler := seededSampler(7)

	absorbed := 0
	for i := 0; i < 500; i++ {
		scatter, didScatter := metal.Scatter(ray, hit, sampler)
		if !didScatter {
			absorbed++
			continue
		}
		if scatter.Scattered.Direction.Dot(hit.Normal) <= 0 {
			t.Fatalf("Scattered ray %v points into the surface", scatter.Scattered.Direction)
		}
	}
	if absorbed == 0 {
		t.Error("Expected some grazing rays to be absorbed")
	}
}

func TestMetal_DeltaLobe(t *testing.T) {
	metal := NewMetal(core.NewColor(0.8, 0.8, 0.8), 0.2)
	hit := upHit(metal)
	wo := core.NewVec3(-1, 1, 0).Normalize()
	wi := core.NewVec3(1, 1, 0).Normalize()

	test.That(t, metal.PDF(wo, wi, hit), test.ShouldEqual, 0.0)
	test.That(t, metal.BSDF(wo, wi, hit), test.ShouldResemble, core.NewColor(0, 0, 0))
	test.That(t, math.IsNaN(metal.Emitted(0, 0, hit.Point).X), test.ShouldBeFalse)
}

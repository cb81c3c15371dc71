package core

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleCosineHemisphere(t *testing.T) {
	sampler := NewRandomSampler(rand.New(rand.NewSource(42)))
	normals := []Vec3{
		NewVec3(0, 1, 0),
		NewVec3(1, 0, 0),
		NewVec3(0, 0, -1),
		NewVec3(1, 1, 1).Normalize(),
	}

	for _, normal := range normals {
		var cosSum float64
		const n = 2000
		for i := 0; i < n; i++ {
			dir := SampleCosineHemisphere(normal, sampler.Get2D())
			if math.Abs(dir.Length()-1) > 1e-9 {
				t.Fatalf("Expected unit direction, got length %f", dir.Length())
			}
			cos := dir.Dot(normal)
			if cos < -1e-9 {
				t.Fatalf("Direction %v is below the hemisphere of %v", dir, normal)
			}
			cosSum += cos
		}
		// E[cos] for a cosine-weighted hemisphere is 2/3
		if mean := cosSum / n; math.Abs(mean-2.0/3.0) > 0.03 {
			t.Errorf("Expected mean cosine near 2/3 for normal %v, got %f", normal, mean)
		}
	}
}

func TestSampleOnUnitSphere(t *testing.T) {
	sampler := NewSeededSampler(1)
	for i := 0; i < 500; i++ {
		dir := SampleOnUnitSphere(sampler.Get2D())
		if math.Abs(dir.Length()-1) > 1e-9 {
			t.Fatalf("Expected unit vector, got length %f", dir.Length())
		}
	}
}

func TestSamplePointInUnitDisk(t *testing.T) {
	sampler := NewSeededSampler(3)
	for i := 0; i < 500; i++ {
		p := SamplePointInUnitDisk(sampler.Get2D())
		if p.Z != 0 || p.Length() > 1+1e-9 {
			t.Fatalf("Point %v is outside the unit disk", p)
		}
	}
	if p := SamplePointInUnitDisk(NewVec2(0.5, 0.5)); p != (Vec3{}) {
		t.Errorf("Expected center sample to map to origin, got %v", p)
	}
}

func TestOrthonormalBasis(t *testing.T) {
	for _, n := range []Vec3{NewVec3(1, 0, 0), NewVec3(0, 1, 0), NewVec3(0.6, 0.8, 0)} {
		tangent, bitangent := OrthonormalBasis(n)
		if math.Abs(tangent.Dot(n)) > 1e-9 || math.Abs(bitangent.Dot(n)) > 1e-9 || math.Abs(tangent.Dot(bitangent)) > 1e-9 {
			t.Errorf("Basis for %v is not orthogonal: %v %v", n, tangent, bitangent)
		}
		if math.Abs(tangent.Length()-1) > 1e-9 || math.Abs(bitangent.Length()-1) > 1e-9 {
			t.Errorf("Basis for %v is not normalized", n)
		}
	}
}

func TestSeededSamplerIsReproducible(t *testing.T) {
	a := NewSeededSampler(99)
	b := NewSeededSampler(99)
	for i := 0; i < 10; i++ {
		if a.Get3D() != b.Get3D() {
			t.Fatal("Expected identical sequences for identical seeds")
		}
	}
}

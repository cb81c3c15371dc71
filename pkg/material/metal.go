package material

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Color // Metal color
	Fuzz   float64    // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material
func NewMetal(albedo core.Color, fuzz float64) *Metal {
	// Clamp fuzz to valid range
	if fuzz > 1.0 {
		fuzz = 1.0
	}
	if fuzz < 0.0 {
		fuzz = 0.0
	}
	return &Metal{Albedo: albedo, Fuzz: fuzz}
}

// Scatter reflects the incoming ray about the normal, perturbed by fuzz.
// Rays perturbed into the surface are absorbed.
func (m *Metal) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	reflected := reflect(rayIn.Direction.Normalize(), hit.Normal)
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.SampleOnUnitSphere(sampler.Get2D()).Multiply(m.Fuzz))
	}

	if reflected.Dot(hit.Normal) <= 0 {
		return core.ScatterResult{}, false
	}

	return core.ScatterResult{
		Scattered:   core.NewRayWithTime(hit.Point, reflected, rayIn.Time),
		Attenuation: m.Albedo, // No π factor for specular
		PDF:         0,        // Specular materials have no PDF
	}, true
}

// Emitted returns black
func (m *Metal) Emitted(u, v float64, p core.Vec3) core.Color {
	return black
}

// BSDF is a delta function and evaluates to zero for any given direction pair
func (m *Metal) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	return black
}

// PDF is zero for delta lobes
func (m *Metal) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	return 0.0
}

package material

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo ColorSource // Base color/reflectance (can be solid or textured)
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Color) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedo ColorSource) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter samples a cosine-weighted direction about the normal. The BRDF
// (albedo/π) times cos/pdf reduces to the albedo, which is the attenuation.
func (l *Lambertian) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	scatterDirection := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())

	// Catch degenerate scatter direction
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	cosTheta := math.Max(0, scatterDirection.Normalize().Dot(hit.Normal))

	return core.ScatterResult{
		Scattered:   core.NewRayWithTime(hit.Point, scatterDirection, rayIn.Time),
		Attenuation: l.Albedo.Evaluate(hit.U, hit.V, hit.Point),
		PDF:         cosTheta / math.Pi,
	}, true
}

// Emitted returns black
func (l *Lambertian) Emitted(u, v float64, p core.Vec3) core.Color {
	return black
}

// BSDF is albedo/π above the surface and zero below it
func (l *Lambertian) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	if wi.Dot(hit.Normal) <= 0 {
		return black
	}
	return l.Albedo.Evaluate(hit.U, hit.V, hit.Point).Multiply(1.0 / math.Pi)
}

// PDF returns cos(θ)/π for cosine-weighted hemisphere sampling
func (l *Lambertian) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	cosTheta := wi.Normalize().Dot(hit.Normal)
	if cosTheta <= 0 {
		return 0.0
	}
	return cosTheta / math.Pi
}

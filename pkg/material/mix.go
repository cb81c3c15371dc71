package material

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// Mix represents a material that probabilistically chooses between two materials
type Mix struct {
	Material1 core.Material
	Material2 core.Material
	Ratio     float64 // 0.0 = all material1, 1.0 = all material2
}

// NewMix creates a new mix material
func NewMix(material1, material2 core.Material, ratio float64) *Mix {
	// Clamp ratio to valid range
	ratio = math.Max(0.0, math.Min(ratio, 1.0))

	return &Mix{
		Material1: material1,
		Material2: material2,
		Ratio:     ratio,
	}
}

// Scatter delegates to one of the two materials chosen by ratio
func (m *Mix) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	if sampler.Get1D() < m.Ratio {
		return m.Material2.Scatter(rayIn, hit, sampler)
	}
	return m.Material1.Scatter(rayIn, hit, sampler)
}

// Emitted blends the emission of both materials
func (m *Mix) Emitted(u, v float64, p core.Vec3) core.Color {
	return m.Material1.Emitted(u, v, p).Lerp(m.Material2.Emitted(u, v, p), m.Ratio)
}

// BSDF blends both materials' scattering functions with the mix weights
func (m *Mix) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	return m.Material1.BSDF(wo, wi, hit).Lerp(m.Material2.BSDF(wo, wi, hit), m.Ratio)
}

// PDF blends both densities; delta components contribute zero
func (m *Mix) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	return lerp(m.Material1.PDF(wo, wi, hit), m.Material2.PDF(wo, wi, hit), m.Ratio)
}

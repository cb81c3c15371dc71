package material

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// DiffuseLight represents a light-emitting material
type DiffuseLight struct {
	Emit core.Color // Emitted radiance
}

// NewDiffuseLight creates a new emissive material
func NewDiffuseLight(emit core.Color) *DiffuseLight {
	return &DiffuseLight{Emit: emit}
}

// Scatter always absorbs: lights only emit
func (e *DiffuseLight) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

// Emitted returns the emitted light for this material
func (e *DiffuseLight) Emitted(u, v float64, p core.Vec3) core.Color {
	return e.Emit
}

// BSDF returns black; lights don't reflect
func (e *DiffuseLight) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	return black
}

// PDF returns 0 since nothing is ever scattered
func (e *DiffuseLight) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	return 0.0
}

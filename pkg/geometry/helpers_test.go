package geometry

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// mockMaterial identifies which primitive or group produced a hit
type mockMaterial struct {
	name string
}

func (m *mockMaterial) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

func (m *mockMaterial) Emitted(u, v float64, p core.Vec3) core.Color {
	return core.Color{}
}

func (m *mockMaterial) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	return core.Color{}
}

func (m *mockMaterial) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	return 0
}

var forward = core.NewInterval(0.001, 1000.0)

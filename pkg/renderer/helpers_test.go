package renderer

import (
	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// fixedSampler returns the same value on every call
type fixedSampler struct {
	value float64
}

func (s fixedSampler) Get1D() float64 { return s.value }
func (s fixedSampler) Get2D() core.Vec2 { return core.NewVec2(s.value, s.value) }
func (s fixedSampler) Get3D() core.Vec3 { return core.NewVec3(s.value, s.value, s.value) }

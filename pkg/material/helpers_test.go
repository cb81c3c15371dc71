package material

import (
	"math/rand"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// upHit is a front-facing hit at the origin on a surface facing +Y
func upHit(material core.Material) *core.HitRecord {
	return &core.HitRecord{
		Point:     core.NewVec3(0, 0, 0),
		Normal:    core.NewVec3(0, 1, 0),
		T:         1.0,
		FrontFace: true,
		Material:  material,
	}
}

func seededSampler(seed int64) core.Sampler {
	return core.NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// fixedSampler returns the same values on every call
type fixedSampler struct {
	value float64
}

func (s fixedSampler) Get1D() float64 { return s.value }
func (s fixedSampler) Get2D() core.Vec2 { return core.NewVec2(s.value, s.value) }
func (s fixedSampler) Get3D() core.Vec3 { return core.NewVec3(s.value, s.value, s.value) }

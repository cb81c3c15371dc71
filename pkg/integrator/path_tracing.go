package integrator

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// hitEpsilon is the minimum hit distance, keeping scattered rays off their own surface
const hitEpsilon = 0.001

var (
	skyHorizon = core.NewColor(1.0, 1.0, 1.0)
	skyZenith  = core.NewColor(0.5, 0.7, 1.0)
)

// Config controls what rays that escape the scene see and how long paths live
type Config struct {
	Background     core.Color // Returned on a miss unless UseSkyGradient is set
	UseSkyGradient bool       // Blend white to sky blue by ray direction instead
	// RussianRouletteMinBounces is the bounce after which low-throughput
	// paths may be terminated early. Zero disables Russian roulette.
	RussianRouletteMinBounces int
}

// PathTracingIntegrator implements unidirectional path tracing by recursive
// BSDF sampling. There is no explicit light sampling.
type PathTracingIntegrator struct {
	config Config
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config Config) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor returns the radiance arriving along ray, following at most depth bounces
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world core.Hittable, depth int, sampler core.Sampler) core.Color {
	return pt.rayColor(ray, world, depth, 0, core.NewColor(1, 1, 1), sampler)
}

func (pt *PathTracingIntegrator) rayColor(ray core.Ray, world core.Hittable, depth, bounce int, throughput core.Color, sampler core.Sampler) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return core.Color{}
	}

	shouldTerminate, rrCompensation := pt.applyRussianRoulette(bounce, throughput, sampler)
	if shouldTerminate {
		return core.Color{}
	}

	hit, isHit := world.Hit(ray, core.NewInterval(hitEpsilon, math.Inf(1)))
	if !isHit {
		return pt.Background(ray).Multiply(rrCompensation)
	}
	if hit.Material == nil {
		return core.Color{}
	}

	colorEmitted := hit.Material.Emitted(hit.U, hit.V, hit.Point)

	scatter, didScatter := hit.Material.Scatter(ray, hit, sampler)
	if !didScatter {
		// Material absorbed the ray, only return emitted light
		return colorEmitted.Multiply(rrCompensation)
	}

	newThroughput := throughput.MultiplyVec(scatter.Attenuation)
	incoming := pt.rayColor(scatter.Scattered, world, depth-1, bounce+1, newThroughput, sampler)
	colorScattered := scatter.Attenuation.MultiplyVec(incoming)

	return colorEmitted.Add(colorScattered).Multiply(rrCompensation)
}

// applyRussianRoulette determines if a ray should be terminated and returns the compensation factor
func (pt *PathTracingIntegrator) applyRussianRoulette(bounce int, throughput core.Color, sampler core.Sampler) (bool, float64) {
	if pt.config.RussianRouletteMinBounces <= 0 || bounce < pt.config.RussianRouletteMinBounces {
		return false, 1.0
	}

	// Conservative bounds keep the compensation between 1.05x and 2x
	survivalProb := math.Min(0.95, math.Max(0.5, throughput.Luminance()))
	if sampler.Get1D() > survivalProb {
		return true, 0.0
	}
	return false, 1.0 / survivalProb
}

// Background returns the color seen by a ray that leaves the scene
func (pt *PathTracingIntegrator) Background(r core.Ray) core.Color {
	if !pt.config.UseSkyGradient {
		return pt.config.Background
	}

	unitDirection := r.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)
	return skyHorizon.Multiply(1.0 - t).Add(skyZenith.Multiply(t))
}

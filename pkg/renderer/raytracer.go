package renderer

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/integrator"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
)

// RenderConfig contains sampling and scheduling configuration
type RenderConfig struct {
	SamplesPerPixel int        // Number of rays per pixel
	MaxDepth        int        // Maximum ray bounce depth
	Background      core.Color // Color of rays that leave the scene
	UseSkyGradient  bool       // Use the white-to-blue sky instead of Background
	BucketSize      int        // Bucket edge length in pixels
	NumWorkers      int        // Parallel workers (0 = use CPU count)
	Seed            int64      // Base seed; each bucket derives its own from it
	// RussianRouletteMinBounces enables path termination after this many bounces (0 = off)
	RussianRouletteMinBounces int
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Background:      core.NewColor(0, 0, 0),
		UseSkyGradient:  false,
		BucketSize:      DefaultBucketSize,
		NumWorkers:      0,
		Seed:            42,
	}
}

// Validate reports every problem with the configuration
func (c RenderConfig) Validate() error {
	var err error
	if c.SamplesPerPixel < 1 {
		err = multierr.Append(err, errors.Errorf("samples per pixel must be at least 1, got %d", c.SamplesPerPixel))
	}
	if c.MaxDepth < 0 {
		err = multierr.Append(err, errors.Errorf("max depth must not be negative, got %d", c.MaxDepth))
	}
	if c.BucketSize < 1 {
		err = multierr.Append(err, errors.Errorf("bucket size must be at least 1, got %d", c.BucketSize))
	}
	if c.NumWorkers < 0 {
		err = multierr.Append(err, errors.Errorf("worker count must not be negative, got %d", c.NumWorkers))
	}
	if c.RussianRouletteMinBounces < 0 {
		err = multierr.Append(err, errors.Errorf("russian roulette bounce count must not be negative, got %d", c.RussianRouletteMinBounces))
	}
	if !c.Background.IsFinite() {
		err = multierr.Append(err, errors.New("background color must be finite"))
	}
	return err
}

// Raytracer renders a world through a camera. The world, camera and
// materials are read concurrently during a render and must not be mutated.
type Raytracer struct {
	world      core.Hittable
	camera     *Camera
	config     RenderConfig
	integrator *integrator.PathTracingIntegrator
	logger     logging.Logger

	completedBuckets *atomic.Int64
	tracedSamples    *atomic.Int64
}

// NewRaytracer creates a new raytracer. A nil logger discards output.
func NewRaytracer(world core.Hittable, camera *Camera, config RenderConfig, logger logging.Logger) (*Raytracer, error) {
	if world == nil {
		return nil, errors.New("world must not be nil")
	}
	if camera == nil {
		return nil, errors.New("camera must be initialized")
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid render configuration")
	}

	return &Raytracer{
		world:  world,
		camera: camera,
		config: config,
		integrator: integrator.NewPathTracingIntegrator(integrator.Config{
			Background:                config.Background,
			UseSkyGradient:            config.UseSkyGradient,
			RussianRouletteMinBounces: config.RussianRouletteMinBounces,
		}),
		logger:           logging.OrNop(logger),
		completedBuckets: atomic.NewInt64(0),
		tracedSamples:    atomic.NewInt64(0),
	}, nil
}

// Config returns the render configuration
func (rt *Raytracer) Config() RenderConfig {
	return rt.config
}

// Progress returns the buckets completed and camera rays traced so far.
// It is safe to call while a render is running.
func (rt *Raytracer) Progress() (buckets, samples int64) {
	return rt.completedBuckets.Load(), rt.tracedSamples.Load()
}

// RenderPixel accumulates SamplesPerPixel path samples through pixel (x, y)
func (rt *Raytracer) RenderPixel(x, y int, sampler core.Sampler) PixelStats {
	var ps PixelStats
	for s := 0; s < rt.config.SamplesPerPixel; s++ {
		ray := rt.camera.GetRay(x, y, sampler)
		ps.AddSample(rt.integrator.RayColor(ray, rt.world, rt.config.MaxDepth, sampler))
	}
	return ps
}

// bucketSeed derives a bucket's seed from its grid position so results do
// not depend on which worker renders it or when.
func (rt *Raytracer) bucketSeed(bucket Bucket) int64 {
	return rt.config.Seed + int64(bucket.ID)
}

// RenderBucket renders every pixel in the bucket with a sampler owned by this call
func (rt *Raytracer) RenderBucket(bucket Bucket) BucketResult {
	start := time.Now()
	sampler := core.NewSeededSampler(rt.bucketSeed(bucket))

	pixels := make([]core.Color, 0, bucket.PixelCount())
	var variance float64
	for y := bucket.Bounds.Min.Y; y < bucket.Bounds.Max.Y; y++ {
		for x := bucket.Bounds.Min.X; x < bucket.Bounds.Max.X; x++ {
			ps := rt.RenderPixel(x, y, sampler)
			pixels = append(pixels, ps.GetColor())
			variance += ps.LuminanceVariance()
		}
	}

	samples := int64(bucket.PixelCount()) * int64(rt.config.SamplesPerPixel)
	rt.completedBuckets.Inc()
	rt.tracedSamples.Add(samples)

	return BucketResult{
		Bucket:   bucket,
		Pixels:   pixels,
		Samples:  samples,
		Variance: variance / float64(bucket.PixelCount()),
		Duration: time.Since(start),
	}
}

// Buckets returns the render order for the camera's image
func (rt *Raytracer) Buckets() []Bucket {
	return GenerateBuckets(rt.camera.Width(), rt.camera.Height(), rt.config.BucketSize)
}

// Render renders the whole image on the calling goroutine, bucket by bucket
func (rt *Raytracer) Render() (*ImageBuffer, RenderStats) {
	start := time.Now()
	img := NewImageBuffer(rt.camera.Width(), rt.camera.Height())
	stats := RenderStats{Workers: 1}

	for _, bucket := range rt.Buckets() {
		result := rt.RenderBucket(bucket)
		img.SetBucket(result)
		stats.AddBucket(result)
	}

	stats.Finalize(time.Since(start))
	rt.logger.Infow("render complete",
		"buckets", stats.Buckets,
		"samples", stats.TotalSamples,
		"wall_time", stats.WallTime)
	return img, stats
}

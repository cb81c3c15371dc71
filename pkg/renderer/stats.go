package renderer

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Buckets          int           // Buckets completed
	TotalPixels      int           // Total number of pixels rendered
	TotalSamples     int64         // Total number of camera rays traced
	Workers          int           // Goroutines rendering concurrently
	WallTime         time.Duration // Time from first dispatch to last bucket
	BucketTimeMean   time.Duration // Mean time spent rendering one bucket
	BucketTimeStdDev time.Duration // Spread of per-bucket times
	PixelVariance    float64       // Mean luminance variance of a pixel's samples

	bucketSeconds   []float64
	bucketVariances []float64
	bucketPixels    []float64
}

// AddBucket records a completed bucket
func (s *RenderStats) AddBucket(result BucketResult) {
	s.Buckets++
	s.TotalPixels += result.Bucket.PixelCount()
	s.TotalSamples += result.Samples
	s.bucketSeconds = append(s.bucketSeconds, result.Duration.Seconds())
	s.bucketVariances = append(s.bucketVariances, result.Variance)
	s.bucketPixels = append(s.bucketPixels, float64(result.Bucket.PixelCount()))
}

// Finalize computes the per-bucket timing summary and the pixel variance
// weighted by bucket size
func (s *RenderStats) Finalize(wallTime time.Duration) {
	s.WallTime = wallTime
	if len(s.bucketSeconds) == 0 {
		return
	}
	mean, stdDev := stat.MeanStdDev(s.bucketSeconds, nil)
	if len(s.bucketSeconds) < 2 {
		stdDev = 0
	}
	s.BucketTimeMean = time.Duration(mean * float64(time.Second))
	s.BucketTimeStdDev = time.Duration(stdDev * float64(time.Second))
	s.PixelVariance = stat.Mean(s.bucketVariances, s.bucketPixels)
}

// SamplesPerSecond returns camera-ray throughput over the wall time
func (s RenderStats) SamplesPerSecond() float64 {
	if s.WallTime <= 0 {
		return 0
	}
	return float64(s.TotalSamples) / s.WallTime.Seconds()
}

// PixelStats accumulates the samples of a single pixel as a running mean.
// A constant sample stream yields exactly that constant.
type PixelStats struct {
	Mean        core.Color // Running mean of the samples
	luminanceM2 float64    // Sum of squared luminance deviations (Welford)
	SampleCount int        // Number of samples taken
}

// AddSample adds a new color sample. Non-finite samples count as black.
func (ps *PixelStats) AddSample(color core.Color) {
	if !color.IsFinite() {
		color = core.Color{}
	}
	oldLuminance := ps.Mean.Luminance()
	ps.SampleCount++
	ps.Mean = ps.Mean.Add(color.Subtract(ps.Mean).Divide(float64(ps.SampleCount)))
	ps.luminanceM2 += (color.Luminance() - oldLuminance) * (color.Luminance() - ps.Mean.Luminance())
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Color {
	return ps.Mean
}

// LuminanceVariance returns the sample variance of the pixel's luminance
func (ps *PixelStats) LuminanceVariance() float64 {
	if ps.SampleCount < 2 {
		return 0
	}
	return ps.luminanceM2 / float64(ps.SampleCount-1)
}

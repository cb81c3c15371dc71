package renderer

import (
	"image"
	"sort"
	"time"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// DefaultBucketSize is the edge length of a bucket in pixels
const DefaultBucketSize = 64

// Bucket is a rectangular region of the image rendered as one unit of work
type Bucket struct {
	ID     int             // Position in the row-major grid; seeds the bucket's sampler
	Index  int             // Position in render order (center first)
	Bounds image.Rectangle // Pixel bounds, Max exclusive
}

// PixelCount returns the number of pixels in the bucket
func (b Bucket) PixelCount() int {
	return b.Bounds.Dx() * b.Bounds.Dy()
}

// BucketResult holds the linear colors of one rendered bucket
type BucketResult struct {
	Bucket   Bucket
	Pixels   []core.Color // Row-major within the bucket bounds
	Samples  int64        // Camera rays traced
	Variance float64      // Mean luminance variance over the bucket's pixels
	Duration time.Duration
}

// GenerateBuckets tiles a width x height image with size x size buckets,
// clipped at the right and bottom edges, ordered by distance of their
// centers from the image center. Ties keep row-major order.
func GenerateBuckets(width, height, size int) []Bucket {
	if size <= 0 {
		size = DefaultBucketSize
	}

	var buckets []Bucket
	id := 0
	for y := 0; y < height; y += size {
		for x := 0; x < width; x += size {
			bounds := image.Rect(x, y, min(x+size, width), min(y+size, height))
			buckets = append(buckets, Bucket{ID: id, Bounds: bounds})
			id++
		}
	}

	centerX := float64(width) / 2
	centerY := float64(height) / 2
	distance := func(b Bucket) float64 {
		dx := float64(b.Bounds.Min.X+b.Bounds.Max.X)/2 - centerX
		dy := float64(b.Bounds.Min.Y+b.Bounds.Max.Y)/2 - centerY
		return dx*dx + dy*dy
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return distance(buckets[i]) < distance(buckets[j])
	})

	for i := range buckets {
		buckets[i].Index = i
	}
	return buckets
}

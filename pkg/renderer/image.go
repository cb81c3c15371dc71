package renderer

import (
	"image"
	"image/color"
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// ImageBuffer is a row-major buffer of linear RGB colors, row 0 at the top
type ImageBuffer struct {
	Width, Height int
	Pixels        []core.Color
}

// NewImageBuffer creates a black image
func NewImageBuffer(width, height int) *ImageBuffer {
	return &ImageBuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// Get returns the color at (x, y)
func (img *ImageBuffer) Get(x, y int) core.Color {
	return img.Pixels[y*img.Width+x]
}

// Set stores the color at (x, y)
func (img *ImageBuffer) Set(x, y int, c core.Color) {
	img.Pixels[y*img.Width+x] = c
}

// SetBucket copies a rendered bucket into place
func (img *ImageBuffer) SetBucket(result BucketResult) {
	bounds := result.Bucket.Bounds
	width := bounds.Dx()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := (y - bounds.Min.Y) * width
		copy(img.Pixels[y*img.Width+bounds.Min.X:y*img.Width+bounds.Max.X], result.Pixels[row:row+width])
	}
}

// ToRGBA converts the buffer to 8-bit gamma-corrected pixels
func (img *ImageBuffer) ToRGBA() *image.RGBA {
	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			rgba.SetRGBA(x, y, ColorToRGBA(img.Get(x, y)))
		}
	}
	return rgba
}

// LinearToGamma applies gamma 2 (square root). Non-positive and NaN values map to 0.
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

func toByte(linear float64) uint8 {
	return uint8(255 * math.Min(1, LinearToGamma(linear)))
}

// ColorToRGBA converts a linear color to an opaque 8-bit sRGB-ish pixel
func ColorToRGBA(c core.Color) color.RGBA {
	return color.RGBA{
		R: toByte(c.X),
		G: toByte(c.Y),
		B: toByte(c.Z),
		A: 255,
	}
}

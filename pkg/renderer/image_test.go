package renderer

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

func TestLinearToGamma(t *testing.T) {
	tests := []struct {
		linear   float64
		expected float64
	}{
		{0.0, 0.0},
		{1.0, 1.0},
		{0.25, 0.5},
		{-0.5, 0.0},
		{math.NaN(), 0.0},
	}

	for _, tt := range tests {
		if got := LinearToGamma(tt.linear); math.Abs(got-tt.expected) > 1e-12 {
			t.Errorf("LinearToGamma(%f) = %f, expected %f", tt.linear, got, tt.expected)
		}
	}
}

func TestColorToRGBA(t *testing.T) {
	tests := []struct {
		name     string
		color    core.Color
		expected color.RGBA
	}{
		{"black", core.NewColor(0, 0, 0), color.RGBA{0, 0, 0, 255}},
		{"white", core.NewColor(1, 1, 1), color.RGBA{255, 255, 255, 255}},
		{"quarter is half", core.NewColor(0.25, 0.25, 0.25), color.RGBA{127, 127, 127, 255}},
		{"over bright clamps", core.NewColor(4, 2, 1.5), color.RGBA{255, 255, 255, 255}},
		{"negative clamps", core.NewColor(-1, 0, 1), color.RGBA{0, 0, 255, 255}},
		{"nan is black", core.NewColor(math.NaN(), 0, 0), color.RGBA{0, 0, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			test.That(t, ColorToRGBA(tt.color), test.ShouldResemble, tt.expected)
		})
	}
}

func TestImageBufferSetBucket(t *testing.T) {
	img := NewImageBuffer(4, 3)
	red := core.NewColor(1, 0, 0)
	img.SetBucket(BucketResult{
		Bucket: Bucket{Bounds: image.Rect(2, 1, 4, 3)},
		Pixels: []core.Color{red, red, red, red},
	})

	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			expected := core.Color{}
			if x >= 2 && y >= 1 {
				expected = red
			}
			test.That(t, img.Get(x, y), test.ShouldResemble, expected)
		}
	}

	rgba := img.ToRGBA()
	test.That(t, rgba.Bounds(), test.ShouldResemble, image.Rect(0, 0, 4, 3))
	test.That(t, rgba.RGBAAt(3, 2), test.ShouldResemble, color.RGBA{255, 0, 0, 255})
	test.That(t, rgba.RGBAAt(0, 0), test.ShouldResemble, color.RGBA{0, 0, 0, 255})
}

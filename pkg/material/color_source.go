package material

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// ColorSource provides spatially-varying colors for materials
type ColorSource interface {
	// Evaluate returns the color at surface coordinates (u, v) and point p
	Evaluate(u, v float64, p core.Vec3) core.Color
}

// SolidColor provides uniform color
type SolidColor struct {
	Color core.Color
}

// NewSolidColor creates a new solid color source
func NewSolidColor(color core.Color) *SolidColor {
	return &SolidColor{Color: color}
}

// Evaluate returns the solid color regardless of UV or position
func (s *SolidColor) Evaluate(u, v float64, p core.Vec3) core.Color {
	return s.Color
}

// Checker alternates two colors in a surface-space checkerboard
type Checker struct {
	Even, Odd core.Color
	Scale     float64 // Checks per unit of u and v
}

// NewChecker creates a checkerboard with scale checks along each surface axis
func NewChecker(even, odd core.Color, scale float64) *Checker {
	return &Checker{Even: even, Odd: odd, Scale: scale}
}

// Evaluate picks the check containing (u, v)
func (c *Checker) Evaluate(u, v float64, p core.Vec3) core.Color {
	checkU := int(math.Floor(u * c.Scale))
	checkV := int(math.Floor(v * c.Scale))
	if (checkU+checkV)%2 == 0 {
		return c.Even
	}
	return c.Odd
}

// SpatialChecker alternates two colors in world-space cubes of edge Size
type SpatialChecker struct {
	Even, Odd core.Color
	Size      float64
}

// NewSpatialChecker creates a solid checkerboard with cubes of edge size
func NewSpatialChecker(even, odd core.Color, size float64) *SpatialChecker {
	return &SpatialChecker{Even: even, Odd: odd, Size: size}
}

// Evaluate picks the cube containing p
func (c *SpatialChecker) Evaluate(u, v float64, p core.Vec3) core.Color {
	inv := 1 / c.Size
	sum := int(math.Floor(p.X*inv)) + int(math.Floor(p.Y*inv)) + int(math.Floor(p.Z*inv))
	if sum%2 == 0 {
		return c.Even
	}
	return c.Odd
}

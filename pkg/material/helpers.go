package material

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	// r = v - 2*dot(v,n)*n
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refract calculates the refraction of a unit vector using Snell's law
func refract(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := math.Min(-uv.Dot(n), 1.0)
	rOutPerp := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	rOutParallel := n.Multiply(-math.Sqrt(math.Abs(1.0 - rOutPerp.LengthSquared())))
	return rOutPerp.Add(rOutParallel)
}

// schlickWeight returns (1 - cosTheta)^5 with the argument clamped to [0, 1]
func schlickWeight(cosTheta float64) float64 {
	x := math.Max(0, math.Min(1, 1-cosTheta))
	x2 := x * x
	return x2 * x2 * x
}

// schlickFresnel blends f0 toward white at grazing angles
func schlickFresnel(f0 core.Color, cosTheta float64) core.Color {
	return f0.Lerp(core.NewColor(1, 1, 1), schlickWeight(cosTheta))
}

// lerp interpolates linearly between a and b
func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

var black = core.NewColor(0, 0, 0)

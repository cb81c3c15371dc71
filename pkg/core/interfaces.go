package core

// Hittable is anything a ray can be intersected with
type Hittable interface {
	// Hit returns the closest intersection with parameter t inside rayT,
	// or nil and false when the ray misses.
	Hit(ray Ray, rayT Interval) (*HitRecord, bool)
	// BoundingBox returns the world-space bounds, cached at construction
	BoundingBox() AABB
}

// HitRecord contains information about a ray-object intersection.
// It is only valid for the duration of the query that produced it.
type HitRecord struct {
	Point     Vec3     // Point of intersection
	Normal    Vec3     // Unit normal, always facing against the incoming ray
	U, V      float64  // Surface coordinates
	T         float64  // Parameter t along the ray
	FrontFace bool     // Whether the ray hit the outward-facing side
	Material  Material // Material at the hit point
}

// SetFaceNormal sets the normal vector and determines front/back face.
// outwardNormal is assumed to have unit length.
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Material describes how light interacts with a surface
type Material interface {
	// Scatter samples an outgoing ray. False means the ray was absorbed.
	Scatter(rayIn Ray, hit *HitRecord, sampler Sampler) (ScatterResult, bool)
	// Emitted returns the radiance emitted at the hit point
	Emitted(u, v float64, p Vec3) Color
	// BSDF evaluates the scattering function for view direction wo and light direction wi
	BSDF(wo, wi Vec3, hit *HitRecord) Color
	// PDF returns the sampling density Scatter would assign to wi
	PDF(wo, wi Vec3, hit *HitRecord) float64
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Attenuation Color   // Throughput weight applied to the scattered radiance
	Scattered   Ray     // The scattered ray
	PDF         float64 // Density of the sampled direction (0 for delta lobes)
}

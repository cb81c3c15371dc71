package material

import (
	"math"

	"github.com/df07/go-instanced-raytracer/pkg/core"
)

// minAlpha keeps the GGX distribution away from a delta at roughness 0
const minAlpha = 0.001

// Disney is the principled BSDF from "Physically Based Shading at Disney" (2012).
// All scalar parameters are in [0, 1].
type Disney struct {
	BaseColor      core.Color // Albedo for dielectrics, reflectance for metals
	Metallic       float64    // 0 = dielectric, 1 = metal
	Roughness      float64    // 0 = smooth, 1 = rough
	Specular       float64    // Fresnel reflectance at normal incidence; 0.5 is IOR 1.5
	SpecularTint   float64    // Tints the dielectric specular toward base color
	Sheen          float64    // Grazing retro-reflection for cloth
	SheenTint      float64    // Tints the sheen toward base color
	Clearcoat      float64    // Second specular lobe for lacquer and car paint
	ClearcoatGloss float64    // 0 = satin, 1 = gloss
	Subsurface     float64    // Blend toward the subsurface flattening approximation
	Anisotropic    float64    // Stored for completeness; the GGX lobe is isotropic
}

// NewDisney returns the default principled material: a mid-grey semi-rough dielectric
func NewDisney() *Disney {
	return &Disney{
		BaseColor:      core.NewColor(0.8, 0.8, 0.8),
		Roughness:      0.5,
		Specular:       0.5,
		SheenTint:      0.5,
		ClearcoatGloss: 1.0,
	}
}

// NewDisneyDiffuse creates a fully rough material without a specular lobe
func NewDisneyDiffuse(color core.Color) *Disney {
	d := NewDisney()
	d.BaseColor = color
	d.Roughness = 1.0
	d.Specular = 0.0
	return d
}

// NewDisneyMetal creates a metal with the given roughness
func NewDisneyMetal(color core.Color, roughness float64) *Disney {
	d := NewDisney()
	d.BaseColor = color
	d.Metallic = 1.0
	d.Specular = 1.0
	return d.WithRoughness(roughness)
}

// NewDisneyPlastic creates a glossy dielectric with the given roughness
func NewDisneyPlastic(color core.Color, roughness float64) *Disney {
	d := NewDisney()
	d.BaseColor = color
	return d.WithRoughness(roughness)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// WithBaseColor sets the base color
func (d *Disney) WithBaseColor(color core.Color) *Disney {
	d.BaseColor = color
	return d
}

// WithMetallic sets metallic, clamped to [0, 1]
func (d *Disney) WithMetallic(metallic float64) *Disney {
	d.Metallic = clamp01(metallic)
	return d
}

// WithRoughness sets roughness, clamped to [0, 1]
func (d *Disney) WithRoughness(roughness float64) *Disney {
	d.Roughness = clamp01(roughness)
	return d
}

// WithSpecular sets specular, clamped to [0, 1]
func (d *Disney) WithSpecular(specular float64) *Disney {
	d.Specular = clamp01(specular)
	return d
}

// WithSheen sets sheen and its tint, clamped to [0, 1]
func (d *Disney) WithSheen(sheen, tint float64) *Disney {
	d.Sheen = clamp01(sheen)
	d.SheenTint = clamp01(tint)
	return d
}

// WithClearcoat sets clearcoat and its gloss, clamped to [0, 1]
func (d *Disney) WithClearcoat(clearcoat, gloss float64) *Disney {
	d.Clearcoat = clamp01(clearcoat)
	d.ClearcoatGloss = clamp01(gloss)
	return d
}

// WithSubsurface sets the subsurface blend, clamped to [0, 1]
func (d *Disney) WithSubsurface(subsurface float64) *Disney {
	d.Subsurface = clamp01(subsurface)
	return d
}

// diffuseProbability is the chance Scatter picks the diffuse lobe
func (d *Disney) diffuseProbability() float64 {
	return (1 - d.Metallic) * (1 - d.Specular*0.5)
}

func (d *Disney) alpha() float64 {
	return math.Max(d.Roughness*d.Roughness, minAlpha)
}

// Scatter picks the diffuse or specular lobe and samples it. The returned
// attenuation is the lobe's throughput weight divided by the selection probability.
func (d *Disney) Scatter(rayIn core.Ray, hit *core.HitRecord, sampler core.Sampler) (core.ScatterResult, bool) {
	wo := rayIn.Direction.Normalize().Negate()
	n := hit.Normal
	pDiffuse := d.diffuseProbability()

	var wi core.Vec3
	var weight core.Color
	if sampler.Get1D() < pDiffuse {
		wi = core.SampleCosineHemisphere(n, sampler.Get2D())
		nDotL := n.Dot(wi)
		if nDotL <= 0 {
			return core.ScatterResult{}, false
		}
		// f·cos/pdf with pdf = cos/π
		weight = d.diffuse(wo, wi, n).Multiply(math.Pi / pDiffuse)
	} else {
		alpha := d.alpha()
		h := sampleGGX(n, alpha, sampler.Get2D())
		wi = reflect(wo.Negate(), h)

		nDotL := n.Dot(wi)
		nDotV := n.Dot(wo)
		nDotH := n.Dot(h)
		if nDotL <= 0 || nDotV <= 0 || nDotH <= 0 {
			return core.ScatterResult{}, false
		}
		lDotH := math.Max(0, wi.Dot(h))

		// D drove the sampling and cancels out of the estimator
		g := smithGGX(nDotL, nDotV, alpha)
		f := schlickFresnel(d.fresnel0(), lDotH)
		weight = f.Multiply(g * lDotH / (nDotH * nDotV) / (1 - pDiffuse))
	}

	if !weight.IsFinite() {
		return core.ScatterResult{}, false
	}

	return core.ScatterResult{
		Scattered:   core.NewRayWithTime(hit.Point, wi, rayIn.Time),
		Attenuation: weight,
		PDF:         d.PDF(wo, wi, hit),
	}, true
}

// Emitted returns black
func (d *Disney) Emitted(u, v float64, p core.Vec3) core.Color {
	return black
}

// BSDF evaluates the diffuse, sheen, specular and clearcoat lobes for
// view direction wo and light direction wi, both pointing away from the surface.
func (d *Disney) BSDF(wo, wi core.Vec3, hit *core.HitRecord) core.Color {
	n := hit.Normal
	wo, wi = wo.Normalize(), wi.Normalize()
	nDotL := n.Dot(wi)
	nDotV := n.Dot(wo)
	if nDotL <= 0 || nDotV <= 0 {
		return black
	}

	h := wo.Add(wi).Normalize()
	nDotH := math.Max(0, n.Dot(h))
	lDotH := math.Max(0, wi.Dot(h))
	alpha := d.alpha()

	result := d.diffuse(wo, wi, n).Multiply(1 - d.Metallic)

	specular := schlickFresnel(d.fresnel0(), lDotH).
		Multiply(ggxD(nDotH, alpha) * smithGGX(nDotL, nDotV, alpha) / (4 * nDotL * nDotV))
	result = result.Add(specular)

	if d.Clearcoat > 0 {
		clearcoatAlpha := lerp(0.1, 0.001, d.ClearcoatGloss)
		fr := lerp(0.04, 1.0, schlickWeight(lDotH))
		gr := smithGGX(nDotL, nDotV, 0.25)
		cc := 0.25 * d.Clearcoat * gtr1(nDotH, clearcoatAlpha) * fr * gr / (4 * nDotL * nDotV)
		result = result.Add(core.NewColor(cc, cc, cc))
	}
	return result
}

// PDF returns the mixture density of the two lobes Scatter samples from
func (d *Disney) PDF(wo, wi core.Vec3, hit *core.HitRecord) float64 {
	n := hit.Normal
	wo, wi = wo.Normalize(), wi.Normalize()
	nDotL := n.Dot(wi)
	if nDotL <= 0 {
		return 0
	}
	pDiffuse := d.diffuseProbability()

	h := wo.Add(wi).Normalize()
	nDotH := math.Max(0, n.Dot(h))
	lDotH := wi.Dot(h)

	pdf := pDiffuse * nDotL / math.Pi
	if lDotH > 0 {
		pdf += (1 - pDiffuse) * ggxD(nDotH, d.alpha()) * nDotH / (4 * lDotH)
	}
	return pdf
}

// diffuse evaluates Burley diffuse with the subsurface blend plus tinted sheen
func (d *Disney) diffuse(wo, wi, n core.Vec3) core.Color {
	nDotL := math.Max(0, n.Dot(wi))
	nDotV := math.Max(0, n.Dot(wo))
	h := wo.Add(wi).Normalize()
	lDotH := math.Max(0, wi.Dot(h))

	fl := schlickWeight(nDotL)
	fv := schlickWeight(nDotV)

	fd90 := 0.5 + 2*d.Roughness*lDotH*lDotH
	fd := lerp(1, fd90, fl) * lerp(1, fd90, fv)

	// Hanrahan-Krueger inspired flattening
	var ss float64
	if nDotL+nDotV > 0 {
		fss90 := lDotH * lDotH * d.Roughness
		fss := lerp(1, fss90, fl) * lerp(1, fss90, fv)
		ss = 1.25 * (fss*(1/(nDotL+nDotV)-0.5) + 0.5)
	}

	result := d.BaseColor.Multiply(lerp(fd, ss, d.Subsurface) / math.Pi)
	if d.Sheen > 0 {
		sheenColor := core.NewColor(1, 1, 1).Lerp(d.tint(), d.SheenTint)
		result = result.Add(sheenColor.Multiply(schlickWeight(lDotH) * d.Sheen))
	}
	return result
}

// tint is the base color normalized to unit luminance
func (d *Disney) tint() core.Color {
	lum := d.BaseColor.Luminance()
	if lum <= 0 {
		return core.NewColor(1, 1, 1)
	}
	return d.BaseColor.Divide(lum)
}

// fresnel0 is the reflectance at normal incidence, blended toward base color for metals
func (d *Disney) fresnel0() core.Color {
	dielectric := 0.08 * d.Specular
	specularColor := core.NewColor(dielectric, dielectric, dielectric).Lerp(d.tint().Multiply(dielectric), d.SpecularTint)
	return specularColor.Lerp(d.BaseColor, d.Metallic)
}

// ggxD is the GGX (Trowbridge-Reitz) normal distribution
func ggxD(nDotH, alpha float64) float64 {
	a2 := alpha * alpha
	denom := nDotH*nDotH*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

// gtr1 is the Berry distribution used by the clearcoat lobe
func gtr1(nDotH, alpha float64) float64 {
	if alpha >= 1 {
		return 1 / math.Pi
	}
	a2 := alpha * alpha
	t := 1 + (a2-1)*nDotH*nDotH
	return (a2 - 1) / (math.Pi * math.Log(a2) * t)
}

// smithGGX is the separable Smith shadowing-masking term for GGX
func smithGGX(nDotL, nDotV, alpha float64) float64 {
	a2 := alpha * alpha
	g1 := func(nDotX float64) float64 {
		return 2 * nDotX / (nDotX + math.Sqrt(a2+(1-a2)*nDotX*nDotX))
	}
	return g1(nDotL) * g1(nDotV)
}

// sampleGGX draws a microfacet normal around n proportional to D(h)·(n·h)
func sampleGGX(n core.Vec3, alpha float64, sample core.Vec2) core.Vec3 {
	theta := math.Atan(alpha * math.Sqrt(sample.X) / math.Sqrt(math.Max(1-sample.X, 1e-12)))
	phi := 2 * math.Pi * sample.Y

	sinTheta, cosTheta := math.Sincos(theta)
	sinPhi, cosPhi := math.Sincos(phi)
	return core.ToWorld(core.NewVec3(sinTheta*cosPhi, sinTheta*sinPhi, cosTheta), n)
}

package server

import (
	"math"
	"net/http"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/material"
	"github.com/df07/go-instanced-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for surface inspection
type InspectResponse struct {
	Hit          bool                   `json:"hit"`
	MaterialType string                 `json:"materialType,omitempty"`
	Point        [3]float64             `json:"point"`
	Normal       [3]float64             `json:"normal"`
	Distance     float64                `json:"distance"`
	FrontFace    bool                   `json:"frontFace"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
}

// centerSampler aims camera rays through pixel centers and the lens center
type centerSampler struct{}

func (centerSampler) Get1D() float64 { return 0.5 }

func (centerSampler) Get2D() core.Vec2 { return core.NewVec2(0.5, 0.5) }

func (centerSampler) Get3D() core.Vec3 { return core.NewVec3(0.5, 0.5, 0.5) }

func vecArray(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

// hexColor formats a linear color as an sRGB hex string
func hexColor(c core.Color) string {
	return colorful.LinearRgb(c.X, c.Y, c.Z).Clamped().Hex()
}

func colorSourceInfo(source material.ColorSource) map[string]interface{} {
	switch src := source.(type) {
	case *material.SolidColor:
		return map[string]interface{}{"type": "solid", "color": hexColor(src.Color)}
	case *material.Checker:
		return map[string]interface{}{"type": "checker", "even": hexColor(src.Even), "odd": hexColor(src.Odd), "scale": src.Scale}
	case *material.SpatialChecker:
		return map[string]interface{}{"type": "spatial_checker", "even": hexColor(src.Even), "odd": hexColor(src.Odd), "size": src.Size}
	default:
		return map[string]interface{}{"type": "unknown"}
	}
}

// extractMaterialInfo extracts detailed material information with type assertions
func extractMaterialInfo(mat core.Material) (string, map[string]interface{}) {
	properties := make(map[string]interface{})

	switch m := mat.(type) {
	case *material.Lambertian:
		properties["albedo"] = colorSourceInfo(m.Albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = vecArray(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["refractionIndex"] = m.RefractionIndex
		return "dielectric", properties

	case *material.DiffuseLight:
		properties["emission"] = vecArray(m.Emit)
		return "diffuse_light", properties

	case *material.Mix:
		type1, props1 := extractMaterialInfo(m.Material1)
		type2, props2 := extractMaterialInfo(m.Material2)
		properties["ratio"] = m.Ratio
		properties["material1"] = map[string]interface{}{"type": type1, "properties": props1}
		properties["material2"] = map[string]interface{}{"type": type2, "properties": props2}
		return "mix", properties

	case *material.Disney:
		properties["baseColor"] = hexColor(m.BaseColor)
		properties["metallic"] = m.Metallic
		properties["roughness"] = m.Roughness
		properties["specular"] = m.Specular
		properties["specularTint"] = m.SpecularTint
		properties["sheen"] = m.Sheen
		properties["sheenTint"] = m.SheenTint
		properties["clearcoat"] = m.Clearcoat
		properties["clearcoatGloss"] = m.ClearcoatGloss
		properties["subsurface"] = m.Subsurface
		return "disney", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts the ray through the center of pixel (x, y) into the
// assembled scene and returns the closest hit
func inspectPixel(sc *scene.Scene, x, y int) (*core.HitRecord, bool, error) {
	camera, err := sc.Camera.Initialize()
	if err != nil {
		return nil, false, err
	}
	ray := camera.GetRay(x, y, centerSampler{})
	hit, ok := sc.World.Hit(ray, core.NewInterval(0.001, math.Inf(1)))
	return hit, ok, nil
}

// handleInspect reports what the camera sees through one pixel
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseRenderRequest(values)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid scene parameters"))
		return
	}

	pixelX, err := parseIntParam(values, "x", -1, 0, math.MaxInt32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	pixelY, err := parseIntParam(values, "y", -1, 0, math.MaxInt32)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	sc, err := s.setupScene(req)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if pixelX < 0 || pixelX >= sc.Camera.Width || pixelY < 0 || pixelY >= sc.Camera.Height {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("pixel (%d, %d) outside %dx%d image", pixelX, pixelY, sc.Camera.Width, sc.Camera.Height))
		return
	}

	hit, ok, err := inspectPixel(sc, pixelX, pixelY)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	if !ok {
		s.writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, properties := extractMaterialInfo(hit.Material)
	s.writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        vecArray(hit.Point),
		Normal:       vecArray(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		Properties:   properties,
	})
}

package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.viam.com/test"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/pkg/material"
	"github.com/df07/go-instanced-raytracer/pkg/scene"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	return NewServer(0, "", logging.NewTestLogger(t)).Handler()
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

// sseEvents splits a recorded event stream into (event, data) pairs
func sseEvents(body string) [][2]string {
	var events [][2]string
	for _, block := range strings.Split(body, "\n\n") {
		var event, data string
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "event: ") {
				event = strings.TrimPrefix(line, "event: ")
			} else if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
		if event != "" {
			events = append(events, [2]string{event, data})
		}
	}
	return events
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/health")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	test.That(t, rec.Body.String(), test.ShouldContainSubstring, `"ok"`)
}

func TestScenes(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/scenes")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)

	var summaries []SceneSummary
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &summaries), test.ShouldBeNil)
	test.That(t, summaries, test.ShouldHaveLength, len(scene.Names()))
	for _, summary := range summaries {
		test.That(t, summary.Width, test.ShouldBeGreaterThan, 0)
		test.That(t, summary.Instances, test.ShouldBeGreaterThanOrEqualTo, summary.Prototypes)
	}
}

func TestParseRenderRequest(t *testing.T) {
	req, err := parseRenderRequest(url.Values{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, req.Scene, test.ShouldEqual, "cornell")
	test.That(t, req.Width, test.ShouldEqual, 0)
	test.That(t, req.Instancing, test.ShouldEqual, scene.InstancingTwoLevel)

	req, err = parseRenderRequest(url.Values{"scene": {"disney"}, "spp": {"4"}, "instancing": {"linear"}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, req.SamplesPerPixel, test.ShouldEqual, 4)
	test.That(t, req.Instancing, test.ShouldEqual, scene.InstancingLinear)

	tests := []struct {
		values  url.Values
		message string
	}{
		{url.Values{"width": {"abc"}}, "invalid width"},
		{url.Values{"height": {"4"}}, "height must be between"},
		{url.Values{"spp": {"0"}}, "spp must be between"},
		{url.Values{"instancing": {"octree"}}, "unknown instancing mode"},
	}
	for _, tt := range tests {
		_, err := parseRenderRequest(tt.values)
		if err == nil {
			t.Errorf("parseRenderRequest(%v) succeeded, want error", tt.values)
			continue
		}
		test.That(t, err.Error(), test.ShouldContainSubstring, tt.message)
	}
}

func TestRenderStreamsBuckets(t *testing.T) {
	for _, mode := range []string{"linear", "bvh"} {
		t.Run(mode, func(t *testing.T) {
			rec := get(t, newTestServer(t), "/api/render?scene=cornell&width=16&height=16&spp=1&depth=2&bucketSize=8&instancing="+mode)
			test.That(t, rec.Header().Get("Content-Type"), test.ShouldEqual, "text/event-stream")

			events := sseEvents(rec.Body.String())
			test.That(t, events, test.ShouldHaveLength, 5)

			seen := map[[2]int]bool{}
			for i, event := range events[:4] {
				test.That(t, event[0], test.ShouldEqual, "bucket")
				var update BucketUpdate
				test.That(t, json.Unmarshal([]byte(event[1]), &update), test.ShouldBeNil)
				test.That(t, update.Completed, test.ShouldEqual, i+1)
				test.That(t, update.Total, test.ShouldEqual, 4)
				test.That(t, update.Width, test.ShouldEqual, 8)
				test.That(t, update.ImageData, test.ShouldNotBeEmpty)
				seen[[2]int{update.X, update.Y}] = true
			}
			test.That(t, seen, test.ShouldHaveLength, 4)

			test.That(t, events[4][0], test.ShouldEqual, "complete")
			var complete CompleteUpdate
			test.That(t, json.Unmarshal([]byte(events[4][1]), &complete), test.ShouldBeNil)
			test.That(t, complete.Stats.Buckets, test.ShouldEqual, 4)
			test.That(t, complete.Stats.TotalPixels, test.ShouldEqual, 256)
			test.That(t, complete.Stats.TotalSamples, test.ShouldEqual, 256)
			// One sample per pixel has no spread
			test.That(t, complete.Stats.PixelVariance, test.ShouldEqual, 0.0)
			test.That(t, complete.ImageData, test.ShouldNotBeEmpty)
		})
	}
}

func TestRenderErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		message string
	}{
		{"unknown scene", "scene=dragon", "unknown scene"},
		{"bad parameter", "width=99999", "invalid request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, newTestServer(t), "/api/render?"+tt.query)
			events := sseEvents(rec.Body.String())
			test.That(t, events, test.ShouldHaveLength, 1)
			test.That(t, events[0][0], test.ShouldEqual, "error")
			test.That(t, events[0][1], test.ShouldContainSubstring, tt.message)
		})
	}
}

func TestInspect(t *testing.T) {
	handler := newTestServer(t)

	// The center of the Cornell box is enclosed by walls and boxes
	rec := get(t, handler, "/api/inspect?scene=cornell&width=40&height=40&x=20&y=20")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	var response InspectResponse
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &response), test.ShouldBeNil)
	test.That(t, response.Hit, test.ShouldBeTrue)
	test.That(t, response.MaterialType, test.ShouldBeIn, "lambertian", "mix")
	test.That(t, response.Distance, test.ShouldBeGreaterThan, 0.0)

	// The top row of the spheres scene looks over the horizon
	rec = get(t, handler, "/api/inspect?scene=spheres&width=40&height=30&x=0&y=0")
	test.That(t, rec.Code, test.ShouldEqual, http.StatusOK)
	response = InspectResponse{}
	test.That(t, json.Unmarshal(rec.Body.Bytes(), &response), test.ShouldBeNil)
	test.That(t, response.Hit, test.ShouldBeFalse)
}

func TestInspectErrors(t *testing.T) {
	handler := newTestServer(t)
	for _, query := range []string{
		"scene=cornell&width=40&height=40&x=40&y=0",
		"scene=cornell&x=abc&y=0",
		"scene=cornell&y=3",
		"scene=dragon&x=1&y=1",
	} {
		rec := get(t, handler, "/api/inspect?"+query)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("inspect %q returned %d, want %d", query, rec.Code, http.StatusBadRequest)
		}
		test.That(t, rec.Body.String(), test.ShouldContainSubstring, "error")
	}
}

func TestExtractMaterialInfo(t *testing.T) {
	red := core.NewColor(1, 0, 0)
	tests := []struct {
		mat      core.Material
		expected string
		property string
	}{
		{material.NewLambertian(red), "lambertian", "albedo"},
		{material.NewTexturedLambertian(material.NewSpatialChecker(red, red, 1)), "lambertian", "albedo"},
		{material.NewMetal(red, 0.1), "metal", "fuzz"},
		{material.NewDielectric(1.5), "dielectric", "refractionIndex"},
		{material.NewDiffuseLight(red), "diffuse_light", "emission"},
		{material.NewMix(material.NewLambertian(red), material.NewDielectric(1.5), 0.3), "mix", "material2"},
		{material.NewDisneyMetal(red, 0.2), "disney", "roughness"},
		{nil, "unknown", ""},
	}
	for _, tt := range tests {
		materialType, properties := extractMaterialInfo(tt.mat)
		test.That(t, materialType, test.ShouldEqual, tt.expected)
		if tt.property != "" {
			test.That(t, properties, test.ShouldContainKey, tt.property)
		}
	}

	_, properties := extractMaterialInfo(material.NewLambertian(red))
	albedo := properties["albedo"].(map[string]interface{})
	test.That(t, albedo["color"], test.ShouldEqual, "#ff0000")
}

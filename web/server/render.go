package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/renderer"
	"github.com/df07/go-instanced-raytracer/pkg/scene"
)

// RenderRequest holds the query parameters of a render or inspect request.
// Zero values keep the scene's own defaults.
type RenderRequest struct {
	Scene           string
	Width           int
	Height          int
	SamplesPerPixel int
	MaxDepth        int
	BucketSize      int
	Seed            int
	Instancing      scene.InstancingMode
}

// BucketUpdate is sent once per finished bucket
type BucketUpdate struct {
	X          int    `json:"x"`
	Y          int    `json:"y"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	ImageData  string `json:"imageData"` // Base64 encoded PNG of just this bucket
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
	DurationMs int64  `json:"durationMs"`
}

// Stats represents render statistics
type Stats struct {
	Buckets          int     `json:"buckets"`
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int64   `json:"totalSamples"`
	Workers          int     `json:"workers"`
	WallTimeMs       int64   `json:"wallTimeMs"`
	BucketTimeMeanMs float64 `json:"bucketTimeMeanMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	PixelVariance    float64 `json:"pixelVariance"`
}

// CompleteUpdate is the final event of a successful render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG of the full image
	Stats     Stats  `json:"stats"`
}

// parseRenderRequest parses and validates request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: values.Get("scene")}
	if req.Scene == "" {
		req.Scene = "cornell"
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 0, 8, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(values, "height", 0, 8, 2000); err != nil {
		return nil, err
	}
	if req.SamplesPerPixel, err = parseIntParam(values, "spp", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", 0, 1, 1000); err != nil {
		return nil, err
	}
	if req.BucketSize, err = parseIntParam(values, "bucketSize", 0, 4, 512); err != nil {
		return nil, err
	}
	if req.Seed, err = parseIntParam(values, "seed", 0, 0, 1<<30); err != nil {
		return nil, err
	}

	req.Instancing = scene.InstancingTwoLevel
	if mode := values.Get("instancing"); mode != "" {
		if req.Instancing, err = scene.ParseInstancingMode(mode); err != nil {
			return nil, err
		}
	}
	return req, nil
}

// setupScene builds and assembles the requested scene with overrides applied
func (s *Server) setupScene(req *RenderRequest) (*scene.Scene, error) {
	sc, err := scene.Build(req.Scene)
	if err != nil {
		return nil, err
	}

	width, height := sc.Camera.Width, sc.Camera.Height
	if req.Width > 0 {
		width = req.Width
	}
	if req.Height > 0 {
		height = req.Height
	}
	sc.Camera = sc.Camera.WithResolution(width, height)
	if req.SamplesPerPixel > 0 {
		sc.Render.SamplesPerPixel = req.SamplesPerPixel
	}
	if req.MaxDepth > 0 {
		sc.Render.MaxDepth = req.MaxDepth
	}
	if req.BucketSize > 0 {
		sc.Render.BucketSize = req.BucketSize
	}
	if req.Seed > 0 {
		sc.Render.Seed = int64(req.Seed)
	}

	if err := sc.Preprocess(req.Instancing, s.logger); err != nil {
		return nil, err
	}
	return sc, nil
}

// setupRaytracer builds the scene and a raytracer over it
func (s *Server) setupRaytracer(req *RenderRequest) (*renderer.Raytracer, error) {
	sc, err := s.setupScene(req)
	if err != nil {
		return nil, err
	}
	camera, err := sc.Camera.Initialize()
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(sc.World, camera, sc.Render, s.logger)
}

// handleRender renders a scene and streams every finished bucket via SSE
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}
	setSSEHeaders(w)

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		s.sendSSEEvent(w, flusher, "error", fmt.Sprintf("invalid request: %v", err))
		return
	}

	raytracer, err := s.setupRaytracer(req)
	if err != nil {
		s.sendSSEEvent(w, flusher, "error", err.Error())
		return
	}

	total := len(raytracer.Buckets())
	completed := 0
	s.logger.Infow("starting web render", "scene", req.Scene, "buckets", total, "instancing", req.Instancing)

	// Callbacks arrive on one goroutine, so writes to w never interleave
	img, stats, err := raytracer.RenderParallel(r.Context(), func(result renderer.BucketResult) {
		completed++
		update, err := newBucketUpdate(result, completed, total)
		if err != nil {
			s.logger.Warnw("failed to encode bucket", "bucket", result.Bucket.ID, "error", err)
			return
		}
		s.sendSSEJSON(w, flusher, "bucket", update)
	})
	if err != nil {
		s.logger.Infow("web render stopped", "scene", req.Scene, "completed", completed, "error", err)
		s.sendSSEEvent(w, flusher, "error", err.Error())
		return
	}

	imageData, err := encodePNG(img.ToRGBA())
	if err != nil {
		s.sendSSEEvent(w, flusher, "error", err.Error())
		return
	}
	s.sendSSEJSON(w, flusher, "complete", CompleteUpdate{
		ImageData: imageData,
		Stats: Stats{
			Buckets:          stats.Buckets,
			TotalPixels:      stats.TotalPixels,
			TotalSamples:     stats.TotalSamples,
			Workers:          stats.Workers,
			WallTimeMs:       stats.WallTime.Milliseconds(),
			BucketTimeMeanMs: float64(stats.BucketTimeMean) / float64(time.Millisecond),
			SamplesPerSecond: stats.SamplesPerSecond(),
			PixelVariance:    stats.PixelVariance,
		},
	})
}

// newBucketUpdate encodes a finished bucket as a PNG tile
func newBucketUpdate(result renderer.BucketResult, completed, total int) (BucketUpdate, error) {
	bounds := result.Bucket.Bounds
	tile := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			tile.SetRGBA(x, y, renderer.ColorToRGBA(result.Pixels[y*bounds.Dx()+x]))
		}
	}

	imageData, err := encodePNG(tile)
	if err != nil {
		return BucketUpdate{}, err
	}
	return BucketUpdate{
		X:          bounds.Min.X,
		Y:          bounds.Min.Y,
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		ImageData:  imageData,
		Completed:  completed,
		Total:      total,
		DurationMs: result.Duration.Milliseconds(),
	}, nil
}

// encodePNG converts an image to base64-encoded PNG
func encodePNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "failed to encode image")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func (s *Server) sendSSEJSON(w http.ResponseWriter, flusher http.Flusher, event string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warnw("failed to marshal event", "event", event, "error", err)
		return
	}
	s.sendSSEEvent(w, flusher, event, string(data))
}

// sendSSEEvent writes one event. A failed write means the client left; the
// request context then stops the render.
func (s *Server) sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event, data string) {
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		s.logger.Debugw("client disconnected", "event", event, "error", err)
		return
	}
	flusher.Flush()
}

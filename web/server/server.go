package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/pkg/scene"
)

// shutdownTimeout bounds how long in-flight renders get to finish on shutdown
const shutdownTimeout = 5 * time.Second

// Server serves scene listings, streamed bucket renders and pixel inspection
type Server struct {
	port      int
	staticDir string
	logger    logging.Logger
}

// NewServer creates a new web server. Static files are served from
// staticDir when it is not empty.
func NewServer(port int, staticDir string, logger logging.Logger) *Server {
	return &Server{port: port, staticDir: staticDir, logger: logging.OrNop(logger)}
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Infow("starting web server", "addr", "http://localhost"+srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "web server stopped")
	case <-ctx.Done():
	}

	s.logger.Infow("shutting down web server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SceneSummary describes a built-in scene and its default settings
type SceneSummary struct {
	ID              string `json:"id"`
	DisplayName     string `json:"displayName"`
	Description     string `json:"description"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"samplesPerPixel"`
	MaxDepth        int    `json:"maxDepth"`
	Prototypes      int    `json:"prototypes"`
	Instances       int    `json:"instances"`
	Primitives      int    `json:"primitives"`
}

// handleScenes lists the built-in scenes with their defaults
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	infos := scene.ListAllScenes()
	summaries := make([]SceneSummary, 0, len(infos))
	for _, info := range infos {
		sc, err := scene.Build(info.ID)
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, err)
			return
		}
		summaries = append(summaries, SceneSummary{
			ID:              info.ID,
			DisplayName:     info.DisplayName,
			Description:     info.Description,
			Width:           sc.Camera.Width,
			Height:          sc.Camera.Height,
			SamplesPerPixel: sc.Render.SamplesPerPixel,
			MaxDepth:        sc.Render.MaxDepth,
			Prototypes:      sc.PrototypeCount(),
			Instances:       sc.InstanceCount(),
			Primitives:      sc.GetPrimitiveCount(),
		})
	}
	s.writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debugw("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, errors.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/ppm"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"

	"github.com/df07/go-instanced-raytracer/pkg/core"
	"github.com/df07/go-instanced-raytracer/pkg/loaders"
	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/pkg/renderer"
	"github.com/df07/go-instanced-raytracer/pkg/scene"
)

const (
	flagScene      = "scene"
	flagWidth      = "width"
	flagHeight     = "height"
	flagSPP        = "spp"
	flagDepth      = "depth"
	flagBucketSize = "bucket-size"
	flagWorkers    = "workers"
	flagSeed       = "seed"
	flagBackground = "background"
	flagSky        = "sky"
	flagInstancing = "instancing"
	flagMesh       = "mesh"
	flagInstances  = "instances"
	flagOut        = "out"
	flagVerbose    = "verbose"
)

func envVar(flag string) []string {
	return []string{"RAYTRACER_" + strings.ToUpper(strings.ReplaceAll(flag, "-", "_"))}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "raytracer",
		Usage: "render scenes of instanced geometry with a bucketed path tracer",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagVerbose,
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
				EnvVars: envVar(flagVerbose),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "render",
				Usage:  "render a scene to an image file",
				Action: renderAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagScene,
						Aliases: []string{"s"},
						Value:   "spheres",
						Usage:   "built-in scene to render (see the scenes command)",
						EnvVars: envVar(flagScene),
					},
					&cli.IntFlag{
						Name:    flagWidth,
						Usage:   "image width in pixels (default: the scene's)",
						EnvVars: envVar(flagWidth),
					},
					&cli.IntFlag{
						Name:    flagHeight,
						Usage:   "image height in pixels (default: the scene's)",
						EnvVars: envVar(flagHeight),
					},
					&cli.IntFlag{
						Name:    flagSPP,
						Usage:   "samples per pixel (default: the scene's)",
						EnvVars: envVar(flagSPP),
					},
					&cli.IntFlag{
						Name:    flagDepth,
						Usage:   "maximum bounce depth (default: the scene's)",
						EnvVars: envVar(flagDepth),
					},
					&cli.IntFlag{
						Name:    flagBucketSize,
						Value:   renderer.DefaultBucketSize,
						Usage:   "bucket edge length in pixels",
						EnvVars: envVar(flagBucketSize),
					},
					&cli.IntFlag{
						Name:    flagWorkers,
						Usage:   "parallel workers, 0 for one per CPU",
						EnvVars: envVar(flagWorkers),
					},
					&cli.Int64Flag{
						Name:    flagSeed,
						Value:   42,
						Usage:   "base random seed",
						EnvVars: envVar(flagSeed),
					},
					&cli.StringFlag{
						Name:    flagBackground,
						Usage:   "solid background as a hex color such as #1a1a2e (disables the sky)",
						EnvVars: envVar(flagBackground),
					},
					&cli.BoolFlag{
						Name:    flagSky,
						Usage:   "use the sky gradient for rays that leave the scene",
						EnvVars: envVar(flagSky),
					},
					&cli.StringFlag{
						Name:    flagInstancing,
						Value:   scene.InstancingTwoLevel.String(),
						Usage:   "instancing mode: linear or bvh",
						EnvVars: envVar(flagInstancing),
					},
					&cli.PathFlag{
						Name:    flagMesh,
						Usage:   "render instances of a PLY mesh instead of a built-in scene",
						EnvVars: envVar(flagMesh),
					},
					&cli.IntFlag{
						Name:    flagInstances,
						Value:   16,
						Usage:   "number of mesh instances placed with --mesh",
						EnvVars: envVar(flagInstances),
					},
					&cli.PathFlag{
						Name:    flagOut,
						Aliases: []string{"o"},
						Value:   "render.png",
						Usage:   "output `FILE`, .png or .ppm",
						EnvVars: envVar(flagOut),
					},
				},
			},
			{
				Name:   "scenes",
				Usage:  "list the built-in scenes",
				Action: scenesAction,
			},
		},
	}
}

func newLogger(c *cli.Context) logging.Logger {
	if c.Bool(flagVerbose) {
		return logging.NewDebugLogger("raytracer")
	}
	return logging.NewLogger("raytracer")
}

// parseBackground converts a hex sRGB color to linear RGB
func parseBackground(hex string) (core.Color, error) {
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return core.Color{}, errors.Wrapf(err, "invalid background %q", hex)
	}
	r, g, b := c.LinearRgb()
	return core.NewColor(r, g, b), nil
}

// loadScene builds the selected scene and applies command line overrides
func loadScene(c *cli.Context, logger logging.Logger) (*scene.Scene, error) {
	var s *scene.Scene
	if meshPath := c.Path(flagMesh); meshPath != "" {
		mesh, err := loaders.LoadPLY(meshPath)
		if err != nil {
			return nil, err
		}
		logger.Infow("loaded mesh",
			"path", meshPath,
			"vertices", len(mesh.Positions),
			"triangles", mesh.TriangleCount())

		name := strings.TrimSuffix(filepath.Base(meshPath), filepath.Ext(meshPath))
		prototype, err := scene.NewMeshPrototype(name, mesh)
		if err != nil {
			return nil, err
		}
		if s, err = scene.NewMeshScene(prototype, c.Int(flagInstances)); err != nil {
			return nil, err
		}
	} else {
		var err error
		if s, err = scene.Build(c.String(flagScene)); err != nil {
			return nil, err
		}
	}

	width, height := s.Camera.Width, s.Camera.Height
	if c.IsSet(flagWidth) {
		width = c.Int(flagWidth)
	}
	if c.IsSet(flagHeight) {
		height = c.Int(flagHeight)
	}
	s.Camera = s.Camera.WithResolution(width, height)

	if c.IsSet(flagSPP) {
		s.Render.SamplesPerPixel = c.Int(flagSPP)
	}
	if c.IsSet(flagDepth) {
		s.Render.MaxDepth = c.Int(flagDepth)
	}
	s.Render.BucketSize = c.Int(flagBucketSize)
	s.Render.NumWorkers = c.Int(flagWorkers)
	s.Render.Seed = c.Int64(flagSeed)

	if c.IsSet(flagBackground) {
		background, err := parseBackground(c.String(flagBackground))
		if err != nil {
			return nil, err
		}
		s.Render.Background = background
		s.Render.UseSkyGradient = false
	}
	if c.IsSet(flagSky) {
		s.Render.UseSkyGradient = c.Bool(flagSky)
	}

	return s, multierr.Combine(s.Camera.Validate(), s.Render.Validate())
}

func renderAction(c *cli.Context) error {
	logger := newLogger(c)
	defer func() {
		// Sync fails on terminals; nothing to do about it
		_ = logger.Sync()
	}()

	out := c.Path(flagOut)
	encode, err := encoderFor(out)
	if err != nil {
		return err
	}
	mode, err := scene.ParseInstancingMode(c.String(flagInstancing))
	if err != nil {
		return err
	}

	s, err := loadScene(c, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	if err := s.Preprocess(mode, logger); err != nil {
		return err
	}
	buildTime := time.Since(start)

	camera, err := s.Camera.Initialize()
	if err != nil {
		return err
	}
	rt, err := renderer.NewRaytracer(s.World, camera, s.Render, logger)
	if err != nil {
		return err
	}

	logger.Infow("rendering",
		"scene", s.Name,
		"width", camera.Width(),
		"height", camera.Height(),
		"spp", s.Render.SamplesPerPixel,
		"depth", s.Render.MaxDepth,
		"instancing", mode.String(),
		"instances", s.InstanceCount(),
		"primitives", s.GetPrimitiveCount())

	total := len(rt.Buckets())
	nextReport := 0.1
	img, stats, renderErr := rt.RenderParallel(c.Context, func(result renderer.BucketResult) {
		completed, _ := rt.Progress()
		if fraction := float64(completed) / float64(total); fraction >= nextReport {
			logger.Infof("progress %3.0f%%", 100*fraction)
			for nextReport <= fraction {
				nextReport += 0.1
			}
		}
	})

	if err := writeImage(out, img.ToRGBA(), encode); err != nil {
		return multierr.Append(renderErr, err)
	}
	logger.Infow("saved image", "path", out)
	printStats(c.App.Writer, s, buildTime, stats)

	return renderErr
}

type encoder func(io.Writer, image.Image) error

func encoderFor(path string) (encoder, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".png":
		return png.Encode, nil
	case ".ppm":
		return ppm.Encode, nil
	default:
		return nil, errors.Errorf("unsupported output format %q (want .png or .ppm)", ext)
	}
}

func writeImage(path string, img image.Image, encode encoder) (err error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "creating output directory")
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating output file")
	}
	defer func() {
		err = multierr.Append(err, file.Close())
	}()

	if err := encode(file, img); err != nil {
		return errors.Wrapf(err, "encoding %s", path)
	}
	return nil
}

func printStats(w io.Writer, s *scene.Scene, buildTime time.Duration, stats renderer.RenderStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Statistic", "Value"})
	table.AppendBulk([][]string{
		{"Scene", s.Name},
		{"Instances", fmt.Sprintf("%d", s.InstanceCount())},
		{"Primitives (flattened)", fmt.Sprintf("%d", s.GetPrimitiveCount())},
		{"Build time", buildTime.Round(time.Microsecond).String()},
		{"Buckets", fmt.Sprintf("%d", stats.Buckets)},
		{"Workers", fmt.Sprintf("%d", stats.Workers)},
		{"Pixels", fmt.Sprintf("%d", stats.TotalPixels)},
		{"Samples", fmt.Sprintf("%d", stats.TotalSamples)},
		{"Bucket time", fmt.Sprintf("%s ± %s", stats.BucketTimeMean.Round(time.Microsecond), stats.BucketTimeStdDev.Round(time.Microsecond))},
		{"Samples/sec", fmt.Sprintf("%.0f", stats.SamplesPerSecond())},
		{"Pixel variance", fmt.Sprintf("%.5f", stats.PixelVariance)},
	})
	table.SetFooter([]string{"Render time", stats.WallTime.Round(time.Millisecond).String()})
	table.Render()
	fmt.Fprint(w, buf.String())
}

func scenesAction(c *cli.Context) error {
	table := tablewriter.NewWriter(c.App.Writer)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"ID", "Name", "Description"})
	for _, info := range scene.ListAllScenes() {
		table.Append([]string{info.ID, info.DisplayName, info.Description})
	}
	table.Render()
	return nil
}

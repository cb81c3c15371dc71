package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/urfave/cli/v2"

	"github.com/df07/go-instanced-raytracer/pkg/logging"
	"github.com/df07/go-instanced-raytracer/web/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	app := &cli.App{
		Name:  "raytracer-web",
		Usage: "serve streamed bucket renders over HTTP",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Value:   8080,
				Usage:   "port to serve on",
				EnvVars: []string{"RAYTRACER_PORT"},
			},
			&cli.PathFlag{
				Name:    "static",
				Value:   "static",
				Usage:   "directory of static files served at /",
				EnvVars: []string{"RAYTRACER_STATIC"},
			},
		},
		Action: func(c *cli.Context) error {
			logger := logging.NewLogger("raytracer-web")
			defer func() { _ = logger.Sync() }()

			port := c.Int("port")
			logger.Infow("visit the web server to start rendering", "url", fmt.Sprintf("http://localhost:%d", port))
			return server.NewServer(port, c.Path("static"), logger).Start(c.Context)
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

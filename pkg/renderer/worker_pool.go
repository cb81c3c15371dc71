package renderer

import (
	"context"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// BucketCallback receives each finished bucket in completion order. Calls
// come from a single goroutine, never concurrently.
type BucketCallback func(BucketResult)

// workerCount resolves the configured worker count
func (rt *Raytracer) workerCount() int {
	if rt.config.NumWorkers > 0 {
		return rt.config.NumWorkers
	}
	return runtime.NumCPU()
}

// RenderParallel renders buckets on a bounded pool of goroutines. Each
// bucket owns its sampler and pixel slice; workers share only the
// read-only world and camera. Cancelling ctx stops dispatch and skips
// buckets that have not started, returning the partial image with the error.
func (rt *Raytracer) RenderParallel(ctx context.Context, callback BucketCallback) (*ImageBuffer, RenderStats, error) {
	start := time.Now()
	buckets := rt.Buckets()
	workers := rt.workerCount()

	img := NewImageBuffer(rt.camera.Width(), rt.camera.Height())
	stats := RenderStats{Workers: workers}

	rt.logger.Debugw("starting parallel render",
		"width", img.Width,
		"height", img.Height,
		"buckets", len(buckets),
		"workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	// Buffered so workers never block on a slow callback
	results := make(chan BucketResult, len(buckets))
	done := make(chan error, 1)

	go func() {
		for _, bucket := range buckets {
			if gctx.Err() != nil {
				break
			}
			bucket := bucket
			g.Go(func() error {
				// Cooperative cancellation between buckets
				if err := gctx.Err(); err != nil {
					return err
				}
				results <- rt.RenderBucket(bucket)
				return nil
			})
		}
		done <- g.Wait()
		close(results)
	}()

	for result := range results {
		img.SetBucket(result)
		stats.AddBucket(result)
		rt.logger.Debugw("bucket complete",
			"index", result.Bucket.Index,
			"completed", stats.Buckets,
			"total", len(buckets),
			"duration", result.Duration)
		if callback != nil {
			callback(result)
		}
	}

	err := <-done
	if err == nil {
		// A cancellation that lands after the last dispatch leaves g.Wait clean
		err = ctx.Err()
	}
	stats.Finalize(time.Since(start))

	if err != nil && stats.Buckets < len(buckets) {
		rt.logger.Warnw("render cancelled", "completed", stats.Buckets, "total", len(buckets))
		return img, stats, errors.Wrap(err, "render cancelled")
	}

	rt.logger.Infow("render complete",
		"buckets", stats.Buckets,
		"samples", stats.TotalSamples,
		"workers", workers,
		"wall_time", stats.WallTime,
		"bucket_mean", stats.BucketTimeMean,
		"bucket_stddev", stats.BucketTimeStdDev)
	return img, stats, nil
}

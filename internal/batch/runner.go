// Package batch runs a per-file operation over many files with bounded
// parallelism. Files are independent: one failure never stops the others,
// and every file reports its own outcome.
package batch

import (
	"context"
	"time"

	"fjacquet/tering/internal/logging"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Result is the outcome of processing one file.
type Result[T any] struct {
	Path     string
	Value    T
	Err      error
	Duration time.Duration
}

// Runner bounds the number of files processed at once and tags its log
// entries with a run identifier.
type Runner struct {
	workers int
	runID   string
	logger  logging.Logger
}

// NewRunner creates a Runner with the given parallelism (at least 1).
func NewRunner(workers int, logger logging.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = logging.Nop()
	}
	runID := uuid.NewString()
	return &Runner{
		workers: workers,
		runID:   runID,
		logger:  logger.WithField(logging.FieldRunID, runID),
	}
}

// RunID identifies this runner's runs in logs and manifests.
func (r *Runner) RunID() string { return r.runID }

// Workers is the configured parallelism.
func (r *Runner) Workers() int { return r.workers }

// Logger is the run-scoped logger.
func (r *Runner) Logger() logging.Logger { return r.logger }

// Run applies fn to every path and returns one Result per path, in input
// order. Once ctx is done, files not yet started are reported with
// ctx.Err() instead of being processed.
func Run[T any](ctx context.Context, r *Runner, paths []string, fn func(ctx context.Context, path string) (T, error)) []Result[T] {
	results := make([]Result[T], len(paths))

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, path := range paths {
		results[i].Path = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			start := time.Now()
			value, err := fn(ctx, path)
			results[i].Value = value
			results[i].Err = err
			results[i].Duration = time.Since(start)

			if err != nil {
				r.logger.WithError(err).Error("File failed",
					logging.F(logging.FieldFile, path))
			} else {
				r.logger.Debug("File done",
					logging.F(logging.FieldFile, path),
					logging.F(logging.FieldDuration, results[i].Duration.Milliseconds()))
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed returns the results that carry an error.
func Failed[T any](results []Result[T]) []Result[T] {
	var failed []Result[T]
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Values returns the values of the successful results, in order.
func Values[T any](results []Result[T]) []T {
	values := make([]T, 0, len(results))
	for _, res := range results {
		if res.Err == nil {
			values = append(values, res.Value)
		}
	}
	return values
}

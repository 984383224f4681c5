// Package fileset drives internal/engine across more than one FILE
// argument concurrently: grepcidr-family tools traditionally accept
// exactly one file, but nothing about the core pipeline requires that,
// and the compiled index is read-only and safe to share across
// goroutines.
//
// Concurrency is bounded by a golang.org/x/sync/semaphore.Weighted worker
// pool and driven by a golang.org/x/sync/errgroup.Group. Each file's
// output is buffered independently so the across-file concatenation can
// happen in argument order regardless of completion order, preserving
// each file's own line ordering while parallelizing across files.
package fileset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/netreduce/rgcidr/internal/engine"
	"github.com/netreduce/rgcidr/internal/ipindex"
	"github.com/netreduce/rgcidr/internal/policy"
)

// DefaultMaxWorkers bounds how many files are scanned concurrently when
// the caller doesn't request a specific limit.
const DefaultMaxWorkers = 5

// Result is the combined, argument-ordered outcome across every file.
type Result struct {
	EmittedAny bool
	Count      int64
}

// Run scans each of paths concurrently (bounded by maxWorkers, or
// DefaultMaxWorkers if <= 0) and writes their matching lines to w in
// argument order. In count mode, per-file counts are summed before the
// combined result is returned; cmd/rgcidr is responsible for printing that
// sum.
func Run(ctx context.Context, paths []string, w io.Writer, idx *ipindex.Index, flags policy.Flags, opts engine.Options, maxWorkers int) (Result, error) {
	if maxWorkers <= 0 {
		maxWorkers = DefaultMaxWorkers
	}

	type fileOutcome struct {
		buf bytes.Buffer
		res engine.Result
	}
	outcomes := make([]fileOutcome, len(paths))

	sem := semaphore.NewWeighted(int64(maxWorkers))
	g, gctx := errgroup.WithContext(ctx)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return fmt.Errorf("acquiring worker for %s: %w", path, err)
			}
			defer sem.Release(1)

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("opening %s: %w", path, err)
			}
			defer f.Close()

			res, err := engine.Run(gctx, f, &outcomes[i].buf, idx, flags, opts)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", path, err)
			}
			outcomes[i].res = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var combined Result
	for _, o := range outcomes {
		if _, err := w.Write(o.buf.Bytes()); err != nil {
			return Result{}, fmt.Errorf("writing combined output: %w", err)
		}
		combined.Count += o.res.Count
		combined.EmittedAny = combined.EmittedAny || o.res.EmittedAny
	}
	return combined, nil
}

// Watch treats path as a growing log file, scanning newly appended lines
// as they arrive until ctx is cancelled — analogous to `tail -f`. Poll
// cadence is capped by a rate.Limiter so a fast-growing file can't busy-
// loop the poller.
func Watch(ctx context.Context, path string, w io.Writer, idx *ipindex.Index, flags policy.Flags, opts engine.Options, pollIntervalMS int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	if pollIntervalMS <= 0 {
		pollIntervalMS = 200
	}
	limiter := rate.NewLimiter(rate.Every(time.Duration(pollIntervalMS)*time.Millisecond), 1)

	var offset int64
	for {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat %s: %w", path, err)
		}
		if info.Size() > offset {
			if _, err := f.Seek(offset, io.SeekStart); err != nil {
				return fmt.Errorf("seeking %s: %w", path, err)
			}
			section := io.LimitReader(f, info.Size()-offset)
			if _, err := engine.Run(ctx, section, w, idx, flags, opts); err != nil {
				return fmt.Errorf("scanning appended data in %s: %w", path, err)
			}
			offset = info.Size()
			// a writer appending mid-line between polls is read as a
			// complete line on this pass; tailing assumes line-buffered
			// producers, same assumption tail -f itself makes.
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

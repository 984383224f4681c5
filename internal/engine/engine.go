// Package engine wires the core components (internal/scanner,
// internal/ipindex, internal/policy) and the ambient line I/O layer
// (internal/lineio) into the single-stream pipeline described in §2's data
// flow: lines in, scan each for candidate addresses, query the compiled
// index, let policy decide, write or count. It is the one pipeline both
// cmd/rgcidr (stdin/single file) and internal/fileset (concurrent multi-
// file, §10.4) run — per §5, each invocation of Run is single-threaded and
// synchronous; concurrency across streams is internal/fileset's job, not
// this package's.
package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/netreduce/rgcidr/internal/ipindex"
	"github.com/netreduce/rgcidr/internal/lineio"
	"github.com/netreduce/rgcidr/internal/policy"
	"github.com/netreduce/rgcidr/internal/scanner"
)

// Options configures line and buffer sizing. MaxLineBytes may be left at 0,
// which keeps lineio's default line limit; the buffer sizes and
// FlushFraction should be derived from internal/config.
type Options struct {
	MaxLineBytes     int
	BufferClass      lineio.BufferClass
	SmallBufferBytes int
	LargeBufferBytes int
	FlushFraction    float64
}

// Result is a single stream's outcome.
type Result struct {
	EmittedAny bool
	Count      int64
}

// Run reads lines from r, decides emission per policy.Flags against idx,
// and writes matching lines to w. In count mode nothing is written to w;
// the tally is returned in Result.Count for the caller to print.
// Cancellation is checked between lines, per §5's cooperative
// cancellation model.
func Run(ctx context.Context, r io.Reader, w io.Writer, idx *ipindex.Index, flags policy.Flags, opts Options) (Result, error) {
	reader := lineio.NewReader(r, opts.MaxLineBytes)

	var lw *lineio.Writer
	if !flags.Count {
		lw = lineio.NewWriter(w, opts.BufferClass, opts.SmallBufferBytes, opts.LargeBufferBytes, opts.FlushFraction)
	}

	var counters policy.Counters
	scratch := &scanner.Scratch{}
	emittedAny := false

	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		line, ok := reader.Next()
		if !ok {
			break
		}

		hasAny, hasMatching := evaluateLine(line, idx, flags, scratch)
		emit := policy.Decide(hasAny, hasMatching, flags)

		if flags.Count {
			counters.Record(emit)
			continue
		}
		if emit {
			emittedAny = true
			if err := lw.WriteLine(line); err != nil {
				return Result{}, fmt.Errorf("writing output: %w", err)
			}
		}
	}
	if err := reader.Err(); err != nil {
		return Result{}, fmt.Errorf("reading input: %w", err)
	}
	if !flags.Count {
		if err := lw.Flush(); err != nil {
			return Result{}, fmt.Errorf("flushing output: %w", err)
		}
	}
	if flags.Count {
		emittedAny = counters.Matches > 0
	}

	return Result{EmittedAny: emittedAny, Count: counters.Matches}, nil
}

// evaluateLine computes has_any_ip / has_matching_ip per §4.D's two
// scanning modes: early-exit when neither invert nor include-non-ip is
// active (the common case, since the policy result collapses to just
// "did we find a match"), full-scan otherwise, and the single-candidate
// exact-at-start mode under -x.
func evaluateLine(line []byte, idx *ipindex.Index, flags policy.Flags, scratch *scanner.Scratch) (hasAny, hasMatching bool) {
	if flags.ExactAtStart {
		c, ok := scanner.ExactAtStart(line)
		if !ok {
			return false, false
		}
		return true, candidateMatches(c, idx)
	}

	if !flags.Invert && !flags.IncludeNonIP {
		matched := false
		scanner.Scan(line, func(c scanner.Candidate) bool {
			if candidateMatches(c, idx) {
				matched = true
				return true
			}
			return false
		})
		return matched, matched
	}

	scanner.ScanAll(line, scratch)
	hasAny = len(scratch.Found) > 0
	for _, c := range scratch.Found {
		if candidateMatches(c, idx) {
			hasMatching = true
			break
		}
	}
	return hasAny, hasMatching
}

func candidateMatches(c scanner.Candidate, idx *ipindex.Index) bool {
	if c.IsV4 {
		return idx.ContainsV4(c.V4)
	}
	return idx.ContainsV6(c.V6)
}

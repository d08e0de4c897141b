// Package parallel runs a function over disjoint index ranges and joins the
// results before returning.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Span is a half-open index range [Lo, Hi).
type Span struct {
	Lo, Hi int
}

// Len returns the number of indices in the span.
func (s Span) Len() int { return s.Hi - s.Lo }

// Split divides [0, n) into at most parts contiguous spans of near-equal size.
// Earlier spans absorb the remainder.
func Split(n, parts int) []Span {
	if n <= 0 {
		return nil
	}
	if parts <= 0 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	spans := make([]Span, 0, parts)
	base, extra := n/parts, n%parts
	lo := 0
	for i := 0; i < parts; i++ {
		size := base
		if i < extra {
			size++
		}
		spans = append(spans, Span{Lo: lo, Hi: lo + size})
		lo += size
	}
	return spans
}

// Workers resolves a requested worker count, treating values <= 0 as "one per CPU".
func Workers(requested int) int {
	if requested <= 0 {
		return runtime.NumCPU()
	}
	return requested
}

// Map calls fn for every span using at most workers goroutines and returns
// the results indexed like spans. Map is the join point: it returns only after
// every call has finished.
func Map[T any](workers int, spans []Span, fn func(Span) T) []T {
	out := make([]T, len(spans))
	if len(spans) == 0 {
		return out
	}
	workers = Workers(workers)
	if workers == 1 || len(spans) == 1 {
		for i, s := range spans {
			out[i] = fn(s)
		}
		return out
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i, s := range spans {
		g.Go(func() error {
			out[i] = fn(s)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// Sum folds per-span results with an associative add.
func Sum[T any](parts []T, add func(acc, v T) T) T {
	var acc T
	for _, p := range parts {
		acc = add(acc, p)
	}
	return acc
}

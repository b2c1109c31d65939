// Package rundiff compares two equal-length slices element by element and
// reports every maximal run of consecutive differing positions.
//
// The intended use is mirroring fixed-size state to a slow or transactional
// target (a device register file, a framebuffer, a flash image) by writing
// only the ranges that changed. The comparison is a single pass over both
// inputs, allocates nothing, and reports each run the moment it closes, so a
// caller can interleave its own writes with the scan.
package rundiff

import (
	"errors"
	"iter"
)

// Diff compares x and y and calls fn once per maximal run of consecutive
// positions where x and y differ, in ascending offset order. fn receives the
// offset of the run's first element and the run's elements. The run slice
// aliases y and is only valid for the duration of the call.
//
// Diff panics if the lengths of x and y differ: the operation is defined over
// two views of the same fixed-size state, a mismatch is a programming error
// rather than a condition to handle.
func Diff[T comparable](x, y []T, fn func(offset int, run []T)) {
	scan(x, y, equal, infallible(fn))
}

// DiffFunc is like [Diff] but uses eq to compare elements.
func DiffFunc[T any](x, y []T, eq func(a, b T) bool, fn func(offset int, run []T)) {
	scan(x, y, eq, infallible(fn))
}

// TryDiff is like [Diff] for callbacks that can fail: if fn returns a non-nil
// error the scan stops immediately and TryDiff returns that error. Runs before
// the failing one have already been reported.
func TryDiff[T comparable](x, y []T, fn func(offset int, run []T) error) error {
	return scan(x, y, equal, fn)
}

// TryDiffFunc is like [TryDiff] but uses eq to compare elements.
func TryDiffFunc[T any](x, y []T, eq func(a, b T) bool, fn func(offset int, run []T) error) error {
	return scan(x, y, eq, fn)
}

// All returns an iterator over the differing runs of x and y, yielding the
// offset and elements of each run as described in [Diff]. Breaking out of the
// loop stops the scan.
func All[T comparable](x, y []T) iter.Seq2[int, []T] {
	return func(yield func(int, []T) bool) {
		scan(x, y, equal, func(offset int, run []T) error {
			if !yield(offset, run) {
				return errStop
			}
			return nil
		})
	}
}

func equal[T comparable](a, b T) bool { return a == b }

func infallible[T any](fn func(offset int, run []T)) func(int, []T) error {
	return func(offset int, run []T) error {
		fn(offset, run)
		return nil
	}
}

// errStop aborts the scan when an [All] consumer breaks out of its loop.
var errStop = errors.New("stop")

// scan is the single pass shared by all entry points. start is the offset of
// the run currently open, or -1 while inside a matching stretch. A run closes
// on the first matching position after it, or at the end of the input.
func scan[T any](x, y []T, eq func(a, b T) bool, fn func(offset int, run []T) error) error {
	if len(x) != len(y) {
		panic("rundiff: slices have different lengths")
	}
	start := -1
	for i := range x {
		switch same := eq(x[i], y[i]); {
		case same && start >= 0:
			if err := fn(start, y[start:i:i]); err != nil {
				return err
			}
			start = -1
		case !same && start < 0:
			start = i
		}
	}
	if start >= 0 {
		return fn(start, y[start:len(y):len(y)])
	}
	return nil
}

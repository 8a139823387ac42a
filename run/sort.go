package run

import (
	"context"
	"slices"

	"github.com/davidvella/xsort/order"
	"golang.org/x/sync/errgroup"
)

// minSegment is the smallest segment worth sorting on its own goroutine.
const minSegment = 4096

// sortLines sorts lines in place. With parallelism above one the slice is cut
// into segments that are sorted concurrently and then merged pairwise, level
// by level. The result is not stable.
func sortLines(ctx context.Context, lines []string, cmp order.Func, parallelism int) error {
	segments := parallelism
	if n := len(lines) / minSegment; n < segments {
		segments = n
	}
	if segments <= 1 {
		slices.SortFunc(lines, cmp)
		return nil
	}

	size := (len(lines) + segments - 1) / segments
	bounds := make([]int, 0, segments+1)
	for lo := 0; lo < len(lines); lo += size {
		bounds = append(bounds, lo)
	}
	bounds = append(bounds, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i+1 < len(bounds); i++ {
		seg := lines[bounds[i]:bounds[i+1]]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			slices.SortFunc(seg, cmp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	src, dst := lines, make([]string, len(lines))
	for len(bounds) > 2 {
		var err error
		if bounds, err = mergeLevel(ctx, src, dst, bounds, cmp); err != nil {
			return err
		}
		src, dst = dst, src
	}
	if &src[0] != &lines[0] {
		copy(lines, src)
	}
	return nil
}

// mergeLevel merges neighbouring segments of src into dst and returns the
// bounds of the merged segments.
func mergeLevel(ctx context.Context, src, dst []string, bounds []int, cmp order.Func) ([]int, error) {
	segments := len(bounds) - 1
	next := make([]int, 0, segments/2+2)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < segments; i += 2 {
		lo := bounds[i]
		next = append(next, lo)
		if i+1 == segments {
			copy(dst[lo:], src[lo:bounds[i+1]])
			continue
		}
		mid, hi := bounds[i+1], bounds[i+2]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			mergeInto(dst[lo:hi], src[lo:mid], src[mid:hi], cmp)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return append(next, bounds[segments]), nil
}

func mergeInto(dst, a, b []string, cmp order.Func) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if cmp(a[i], b[j]) <= 0 {
			dst[k] = a[i]
			i++
		} else {
			dst[k] = b[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}

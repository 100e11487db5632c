package precompute

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"polycubes/internal/config"
	"polycubes/internal/polycube"
)

const (
	// Below this many base cubes a level is always expanded on one goroutine.
	parallelThreshold = 100

	// Base cubes between progress lines.
	progressStep = 500
)

// cubeRange is a half-open slice of base cube indices owned by one worker.
type cubeRange struct {
	start, end int
}

// partitionRanges splits n items into workers contiguous ranges that cover
// [0, n) without overlap. Range i is [n*i/workers, n*(i+1)/workers).
func partitionRanges(n, workers int) []cubeRange {
	if workers < 1 {
		workers = 1
	}
	ranges := make([]cubeRange, workers)
	for i := range ranges {
		ranges[i] = cubeRange{start: n * i / workers, end: n * (i + 1) / workers}
	}
	return ranges
}

// expandLevel grows every cube of base into dst, which must be empty and set
// to base.Order()+1.
func (g *Generator) expandLevel(ctx context.Context, base, dst *polycube.Hashy) error {
	if g.opts.Threads == 1 || base.Size() < parallelThreshold {
		return g.expandPart(ctx, 0, base.Size(), cubesOf(base), dst)
	}
	return g.expandParallel(ctx, base.Flatten(), dst)
}

// expandParallel hands each worker its own range of base. With the shared
// strategy all workers insert into dst; with merge each worker fills a private
// index that is folded into dst once every worker has returned.
func (g *Generator) expandParallel(ctx context.Context, base []polycube.Cube, dst *polycube.Hashy) error {
	ranges := partitionRanges(len(base), g.opts.Threads)

	var private []*polycube.Hashy
	if g.opts.Strategy == config.StrategyMerge {
		private = make([]*polycube.Hashy, len(ranges))
		for i := range private {
			private[i] = polycube.New(dst.Order())
		}
	}

	g.progress(fmt.Sprintf("Expanding %d base cubes with %d workers (%s)", len(base), len(ranges), g.opts.Strategy))

	eg, ctx := errgroup.WithContext(ctx)
	for w, r := range ranges {
		var target polycube.Inserter = dst
		if private != nil {
			target = private[w]
		}
		part := base[r.start:r.end]
		eg.Go(func() error {
			return g.expandPart(ctx, w, len(part), slices.Values(part), target)
		})
	}

	if err := eg.Wait(); err != nil {
		return err
	}

	for _, p := range private {
		dst.Merge(p)
	}
	return nil
}

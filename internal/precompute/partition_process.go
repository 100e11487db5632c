package precompute

import (
	"context"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"

	"polycubes/internal/polycube"
)

// cubesOf yields the cubes of h without their shapes.
func cubesOf(h *polycube.Hashy) iter.Seq[polycube.Cube] {
	return func(yield func(polycube.Cube) bool) {
		for _, c := range h.All() {
			if !yield(c) {
				return
			}
		}
	}
}

// expandPart is one worker: it expands total cubes from base into dst.
// Only worker 0 reports progress, so the numbers describe its own range.
func (g *Generator) expandPart(ctx context.Context, id, total int, base iter.Seq[polycube.Cube], dst polycube.Inserter) error {
	log := g.opts.Logger.With(zap.Int("worker", id))
	log.Debug("Worker started", zap.Int("cubes", total))

	g.opts.Metrics.ActiveWorkers.Inc()
	defer g.opts.Metrics.ActiveWorkers.Dec()

	e := polycube.NewExpander()
	start := time.Now()
	processed, candidates := 0, 0

	flush := func() {
		g.opts.Metrics.BaseCubes.Add(float64(processed % progressStep))
		g.opts.Metrics.Candidates.Add(float64(candidates))
		candidates = 0
	}

	for c := range base {
		candidates += e.Expand(c, dst)
		processed++

		if processed%progressStep != 0 {
			continue
		}
		g.opts.Metrics.BaseCubes.Add(progressStep)
		g.opts.Metrics.Candidates.Add(float64(candidates))
		candidates = 0

		if err := ctx.Err(); err != nil {
			return err
		}
		if id == 0 {
			g.progress(progressLine(processed, total, time.Since(start)))
		}
	}
	flush()

	log.Debug("Worker finished", zap.Int("processed", processed), zap.Duration("elapsed", time.Since(start)))
	return nil
}

// progressLine formats completion, throughput and a naive time estimate.
func progressLine(done, total int, elapsed time.Duration) string {
	if total <= 0 || done <= 0 {
		return "  0%"
	}
	rate := float64(done) / elapsed.Seconds()
	remaining := float64(total-done) / rate
	return fmt.Sprintf(" %3d%%, %5.0f base cubes/s, remaining: %.0fs", done*100/total, rate, remaining)
}

package precompute

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"polycubes/internal/cache"
	"polycubes/internal/config"
	"polycubes/internal/polycube"
)

// Source says where a level came from.
type Source string

const (
	SourceBase     Source = "base"
	SourceCache    Source = "cache"
	SourceComputed Source = "computed"
)

// LevelStat summarises one level produced during a run.
type LevelStat struct {
	Order    int           `json:"order"`
	Count    int           `json:"count"`
	Source   Source        `json:"source"`
	Duration time.Duration `json:"duration"`
}

// Options control a Generator. Zero values pick the defaults: one thread,
// the merge strategy, the built-in reference table, a no-op logger and an
// unregistered set of metrics.
type Options struct {
	Threads   int
	UseCache  bool
	Strategy  string
	Reference Reference
	Progress  func(string)
	Logger    *zap.Logger
	Metrics   *Metrics
}

// Generator produces the set of distinct polycubes of a given order by
// growing each level from the one below it.
type Generator struct {
	store cache.Store
	opts  Options

	mu    sync.Mutex
	stats []LevelStat
}

// NewGenerator returns a generator persisting levels to store. A nil store
// disables both reading and writing.
func NewGenerator(store cache.Store, opts Options) *Generator {
	if opts.Threads < 1 {
		opts.Threads = 1
	}
	if opts.Strategy == "" {
		opts.Strategy = config.DefaultStrategy
	}
	if opts.Reference == nil {
		opts.Reference = KnownCounts()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	return &Generator{store: store, opts: opts}
}

// Generate returns every polycube of size order in canonical form. Orders
// below 1 give an empty index. Each computed level is saved to the store
// before its size is checked against the reference table; a disagreement is
// reported as a *MismatchError.
func (g *Generator) Generate(ctx context.Context, order int) (*polycube.Hashy, error) {
	switch {
	case order < 1:
		return polycube.New(0), nil
	case order <= 2:
		return g.seed(order), nil
	}

	if h, ok := g.lookup(ctx, order); ok {
		return h, nil
	}

	base, err := g.Generate(ctx, order-1)
	if err != nil {
		return nil, err
	}

	g.progress(fmt.Sprintf("N = %d || generating new cubes from %d base cubes.", order, base.Size()))
	start := time.Now()

	h := polycube.New(order)
	if err := g.expandLevel(ctx, base, h); err != nil {
		return nil, fmt.Errorf("failed to expand order %d: %w", order, err)
	}
	elapsed := time.Since(start)

	g.opts.Logger.Info("Level computed",
		zap.Int("order", order),
		zap.Int("count", h.Size()),
		zap.Int("shapes", len(h.Shapes())),
		zap.Duration("elapsed", elapsed))

	if g.store != nil {
		if err := g.store.Save(ctx, order, h); err != nil {
			return nil, fmt.Errorf("failed to save order %d: %w", order, err)
		}
	}

	if err := g.opts.Reference.check(order, h.Size()); err != nil {
		return nil, err
	}

	g.record(order, h.Size(), SourceComputed, elapsed)
	return h, nil
}

// Stats returns the levels produced so far, in ascending order.
func (g *Generator) Stats() []LevelStat {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := slices.Clone(g.stats)
	slices.SortFunc(out, func(a, b LevelStat) int { return a.Order - b.Order })
	return out
}

// seed builds the hard-coded levels 1 and 2.
func (g *Generator) seed(order int) *polycube.Hashy {
	h := polycube.New(order)
	c := polycube.Cube{{0, 0, 0}}
	if order == 2 {
		c = append(c, polycube.XYZ{0, 0, 1})
	}
	h.Insert(c, c.Shape())
	g.record(order, h.Size(), SourceBase, 0)
	return h
}

// lookup reads a level from the store. Any failure, including an empty
// level, is treated as a miss.
func (g *Generator) lookup(ctx context.Context, order int) (*polycube.Hashy, bool) {
	if !g.opts.UseCache || g.store == nil {
		return nil, false
	}

	start := time.Now()
	h, err := g.store.Load(ctx, order)
	switch {
	case err == nil && h != nil && h.Size() > 0:
		g.opts.Metrics.CacheLookups.WithLabelValues("hit").Inc()
		g.progress(fmt.Sprintf("N = %d || loaded %d cubes from cache.", order, h.Size()))
		g.record(order, h.Size(), SourceCache, time.Since(start))
		return h, true
	case err == nil, errors.Is(err, cache.ErrCacheMiss):
		g.opts.Logger.Debug("Cache miss", zap.Int("order", order), zap.Error(err))
	default:
		g.opts.Logger.Warn("Cache read failed, recomputing", zap.Int("order", order), zap.Error(err))
	}
	g.opts.Metrics.CacheLookups.WithLabelValues("miss").Inc()
	return nil, false
}

func (g *Generator) record(order, count int, src Source, elapsed time.Duration) {
	label := strconv.Itoa(order)
	g.opts.Metrics.LevelCubes.WithLabelValues(label).Set(float64(count))
	g.opts.Metrics.LevelSeconds.WithLabelValues(label, string(src)).Set(elapsed.Seconds())

	g.mu.Lock()
	defer g.mu.Unlock()
	g.stats = append(g.stats, LevelStat{Order: order, Count: count, Source: src, Duration: elapsed})
}

func (g *Generator) progress(msg string) {
	if g.opts.Progress != nil {
		g.opts.Progress(msg)
	}
}

package check

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/rap"
	"github.com/ardnew/derap/source"
)

// Option configures [Collect].
type Option func(*collector)

type collector struct {
	jobs    int
	logger  log.Logger
	cache   *rap.Cache
	decoder *rap.Decoder
}

// WithJobs limits the number of units decoded at once. Values less than 1
// select runtime.GOMAXPROCS(0).
func WithJobs(n int) Option {
	return func(c *collector) { c.jobs = n }
}

// WithLogger sets the logger for progress and decode failures.
func WithLogger(logger log.Logger) Option {
	return func(c *collector) { c.logger = logger }
}

// WithCache decodes through cache, so identical configs are decoded once.
func WithCache(cache *rap.Cache) Option {
	return func(c *collector) { c.cache = cache }
}

// WithDecoder sets the decoder used when no cache is configured.
func WithDecoder(dec *rap.Decoder) Option {
	return func(c *collector) { c.decoder = dec }
}

func (c *collector) decode(buf []byte) (*rap.Tree, error) {
	if c.cache != nil {
		return c.cache.Decode(buf)
	}

	return c.decoder.Decode(buf)
}

// Collect decodes the configs of every source and indexes their declarations.
//
// Sources are decoded in parallel. A config that fails to decode is reported
// as a [Failure] and the rest of the batch continues. The returned units are
// in the order of sources.
func Collect(
	ctx context.Context,
	sources []*source.Source,
	opts ...Option,
) (*Index, []*Unit, []Failure) {
	c := &collector{}

	for _, opt := range opts {
		opt(c)
	}

	if c.jobs < 1 {
		c.jobs = runtime.GOMAXPROCS(0)
	}

	if c.decoder == nil {
		c.decoder = rap.NewDecoder(rap.WithContext(ctx), rap.WithLogger(c.logger))
	}

	units := make([]*Unit, len(sources))
	fails := make([][]Failure, len(sources))

	var g errgroup.Group

	g.SetLimit(c.jobs)

	for i, src := range sources {
		g.Go(func() error {
			units[i], fails[i] = c.unit(ctx, src)

			return nil
		})
	}

	_ = g.Wait()

	var failures []Failure

	for _, f := range fails {
		failures = append(failures, f...)
	}

	idx := NewIndex(units...)

	c.logger.DebugContext(ctx, "collected",
		slog.Int("units", len(units)),
		slog.Int("classes", idx.Classes.Len()),
		slog.Int("files", idx.Files.Len()),
		slog.Int("failures", len(failures)))

	if c.cache != nil {
		hits, misses := c.cache.Stats()
		c.logger.DebugContext(ctx, "decode cache",
			slog.Int64("hits", hits),
			slog.Int64("misses", misses))
	}

	return idx, units, failures
}

// unit decodes the configs of src. It only touches its own result.
func (c *collector) unit(ctx context.Context, src *source.Source) (*Unit, []Failure) {
	u := &Unit{
		Source:  src,
		Classes: make(rap.Set[string]),
		Files:   src.DataFiles(),
	}

	if err := ctx.Err(); err != nil {
		return u, []Failure{{Unit: src.Name, Err: err}}
	}

	var fails []Failure

	// Only classes owned by the mod count as declared.
	tag := src.Tag()

	cfgs := src.Configs()
	if len(cfgs) == 0 {
		c.logger.WarnContext(ctx, "addon has no config",
			slog.String("unit", src.Name))
	}

	for _, f := range cfgs {
		tree, err := c.decode(f.Data)
		if err != nil {
			fail := Failure{Unit: src.Name, File: f.Name, Err: err}
			c.logger.ErrorContext(ctx, "decode failed", slog.Any("failure", fail))
			fails = append(fails, fail)

			continue
		}

		u.Configs = append(u.Configs, Config{Name: f.Name, Tree: tree})

		for name := range rap.DeclaredClasses(tree, tag).All() {
			u.Classes.Add(name)
		}
	}

	c.logger.TraceContext(ctx, "unit",
		slog.String("unit", src.Name),
		slog.String("prefix", src.Prefix),
		slog.Int("configs", len(u.Configs)),
		slog.Int("classes", u.Classes.Len()),
		slog.Int("files", u.Files.Len()))

	return u, fails
}

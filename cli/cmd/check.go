package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/derap/check"
	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/rap"
	"github.com/ardnew/derap/source"
)

const defaultSuggestions = 3

// CheckFlags are shared by the cross-reference checks.
type CheckFlags struct {
	Dir     string   `arg:"" default:"." help:"Directory inside the project." name:"dir" type:"existingdir"`
	Build   string   `help:"Build directory (default: discovered from dir)." short:"b" type:"existingdir"`
	Only    []string `help:"Check only addons whose name contains one of these." short:"o"`
	Match   string   `default:"prefix" enum:"prefix,contains" help:"How references are matched to the addon's tag."`
	Jobs    int      `default:"${jobs}" help:"Number of addons decoded at once." short:"j"`
	Suggest int      `default:"${suggest}" help:"Maximum suggestions per unresolved reference (0 disables)."`
	Format  string   `default:"text" enum:"text,json,yaml" help:"Report format." short:"f"`
}

// Classes checks that every class an addon references with its own tag is
// declared by some addon of the build.
type Classes struct {
	Flags CheckFlags `embed:""`

	EnableCfgPatches bool `help:"Also check the units and weapons arrays of CfgPatches." name:"enable-cfgpatches"`
}

// Run executes the classes command.
func (c *Classes) Run(ctx context.Context) error {
	return c.Flags.run(ctx, check.KindClasses, !c.EnableCfgPatches)
}

// Paths checks that every file an addon references below its mod root is
// shipped by some addon of the build.
type Paths struct {
	Flags CheckFlags `embed:""`
}

// Run executes the paths command.
func (p *Paths) Run(ctx context.Context) error {
	return p.Flags.run(ctx, check.KindPaths, false)
}

func (f *CheckFlags) run(ctx context.Context, kind check.Kind, skipPatches bool) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	match, ok := check.ParseMatch(f.Match)
	if !ok {
		return ErrUnknownMatch.With(slog.String("match", f.Match))
	}

	sources, _, err := loadSources(ctx, f.Dir, f.Build)
	if err != nil {
		return err
	}

	idx, units, failures, err := collect(ctx, sources, f.Jobs)
	if err != nil {
		return err
	}

	checker := check.Checker{
		Index:       idx,
		Match:       match,
		SkipPatches: skipPatches,
		Suggestions: f.Suggest,
		Logger:      log.Default(),
	}

	sum := checker.Run(ctx, kind, units, failures, f.Only...)

	if err := writeSummary(ctx, outputFrom(ctx), f.Format, sum); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	if !sum.OK() {
		return ErrCheckFailed.
			With(slog.String("kind", kind.String())).
			With(slog.Any("failed", sum.Failed))
	}

	return nil
}

// loadSources reads the addons of the build directory, which is build when
// set and otherwise discovered upward from dir.
func loadSources(ctx context.Context, dir, build string) ([]*source.Source, string, error) {
	if build == "" {
		found, err := source.FindBuildDir(dir)
		if err != nil {
			return nil, "", ErrLoad.With(slog.String("dir", dir)).Wrap(err)
		}

		build = found
	}

	log.DebugContext(ctx, "build directory", slog.String("path", build))

	sources, err := source.Dir(build,
		source.WithContext(ctx),
		source.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, "", ErrLoad.With(slog.String("build", build)).Wrap(err)
	}

	return sources, build, nil
}

// collect decodes the configs of sources through a shared decode cache.
func collect(
	ctx context.Context,
	sources []*source.Source,
	jobs int,
) (*check.Index, []*check.Unit, []check.Failure, error) {
	logger := log.Default()

	cache, err := rap.NewCache(0, rap.WithContext(ctx), rap.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, ErrLoad.Wrap(err)
	}

	idx, units, failures := check.Collect(ctx, sources,
		check.WithJobs(jobs),
		check.WithLogger(logger),
		check.WithCache(cache),
	)

	for _, f := range failures {
		logger.WarnContext(ctx, "decode failed", slog.Any("failure", f))
	}

	return idx, units, failures, nil
}

package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/derap/cli/cmd"
	"github.com/ardnew/derap/pkg"
)

// CLI is the top-level command-line interface for derap.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Classes cmd.Classes `cmd:"" help:"Check class references between the addons of a build."`
	Paths   cmd.Paths   `cmd:"" help:"Check file references between the addons of a build."`
	Gear    cmd.Gear    `cmd:"" help:"Generate XtdGearModels compat configs."`
	Dump    cmd.Dump    `cmd:"" help:"Decode a rapified config."`
	Bones   cmd.Bones   `cmd:"" help:"List the compiled skeleton bones of a model config."`
	Prop    cmd.Prop    `cmd:"" help:"Resolve an inherited class property."`

	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Version cmd.Version `cmd:"" help:"Print the version."`
}

// Run executes the derap CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. This also catches boolean flags like --log-pretty.
	cli.Log.scan(args)

	// Flags can be set by DERAP_* variables, also read from .env files.
	loadEnv(envFiles()...)

	// Commands receive ctx as it is when they run, after the values below
	// have been added.
	parser, err := newParser(&cli, exit, func() context.Context { return ctx })
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

// newParser returns the kong parser of cli. Flag values are resolved from
// the command line, then the environment, then the YAML and JSON
// configuration files, then defaults.
func newParser(
	cli *CLI,
	exit func(int),
	provide func() context.Context,
) (*kong.Kong, error) {
	vars := kong.Vars{
		cmd.ConfigIdentifier: pkg.ConfigPath(yamlConfig),
		cmd.CacheIdentifier:  pkg.CacheDir(),
	}.
		CloneWith(cmd.Vars()).
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	return kong.New(cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.DefaultEnvars(envPrefix()),
		kong.BindSingletonProvider(provide),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolveYAML, pkg.ConfigPath(yamlConfig)),
		kong.Configuration(kong.JSON, pkg.ConfigPath(jsonConfig)),
		vars,
	)
}

package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/derap/check"
	"github.com/ardnew/derap/gear"
	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/pkg"
	"github.com/ardnew/derap/rap"
)

// fileMode is the permission mode of generated files.
const fileMode os.FileMode = 0o644

// Gear generates the XtdGearModels compat config of each addon from the
// XtdGearInfo classes of its gear.
type Gear struct {
	Dir    string   `arg:"" default:"." help:"Directory inside the project." name:"dir" type:"existingdir"`
	Build  string   `help:"Build directory (default: discovered from dir)." short:"b" type:"existingdir"`
	Dest   string   `help:"Project directory the compat files are written below (default: the project of the build directory)." short:"d" type:"path"`
	Author string   `help:"Author of every generated model." short:"a"`
	Only   []string `help:"Generate only for addons whose name contains one of these." short:"o"`
	Jobs   int      `default:"${jobs}" help:"Number of addons decoded at once." short:"j"`
	Stdout bool     `help:"Print the compat configs instead of writing files."`
}

// Run executes the gear command.
func (g *Gear) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources, build, err := loadSources(ctx, g.Dir, g.Build)
	if err != nil {
		return err
	}

	dest := g.Dest
	if dest == "" {
		// <project>/.hemttout/build
		dest = filepath.Dir(filepath.Dir(build))
	}

	_, units, failures, err := collect(ctx, sources, g.Jobs)
	if err != nil {
		return err
	}

	for _, u := range units {
		if !check.Selected(u.Name(), g.Only) {
			continue
		}

		if err := g.unit(ctx, dest, u); err != nil {
			return err
		}
	}

	if len(failures) > 0 {
		return ErrDecode.With(slog.Int("failures", len(failures))).Wrap(failures[0])
	}

	return nil
}

func (g *Gear) unit(ctx context.Context, dest string, u *check.Unit) error {
	logger := log.Default().With(slog.String("unit", u.Name()))

	trees := make([]*rap.Tree, 0, len(u.Configs))
	for _, cfg := range u.Configs {
		trees = append(trees, cfg.Tree)
	}

	compat := gear.Generator{
		Tag:    u.Source.Tag(),
		Author: g.Author,
		Logger: logger,
	}.Generate(ctx, trees...)

	if compat.Empty() {
		logger.DebugContext(ctx, "no gear")

		return nil
	}

	if g.Stdout {
		if err := compat.Write(ctx, outputFrom(ctx)); err != nil {
			return ErrWriteOutput.Wrap(err)
		}

		return nil
	}

	path := gear.Path(dest, u.Source)

	if err := os.MkdirAll(filepath.Dir(path), pkg.DirMode); err != nil {
		return ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	if err := compat.Write(ctx, file); err != nil {
		_ = file.Close()

		return ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	if err := file.Close(); err != nil {
		return ErrWriteOutput.With(slog.String("file", path)).Wrap(err)
	}

	logger.InfoContext(ctx, "wrote gear compat",
		slog.String("file", path),
		slog.Int("sections", len(compat.Sections)))

	return nil
}

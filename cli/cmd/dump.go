package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/ardnew/derap/rap"
)

// Dump decodes a rapified config and prints it in the chosen format.
type Dump struct {
	Native Native `cmd:"" default:"withargs" help:"Print as native config syntax (default)."`
	JSON   JSON   `cmd:""                    help:"Print as JSON."`
	YAML   YAML   `cmd:""                    help:"Print as YAML."`
}

// Native prints a config in native config syntax.
type Native struct {
	Indent int `default:"0" help:"Indent width, or 0 to indent with tabs." short:"i"`

	Source string `arg:"" default:"-" help:"Rapified input file or '-' for stdin." name:"source"`
}

// Run executes the native command.
func (n *Native) Run(ctx context.Context) error {
	return dump(ctx, n.Source, "native", func(t *rap.Tree, w io.Writer) error {
		return t.Format(ctx, w, n.Indent)
	})
}

// JSON prints a config as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output, or 0 for compact." short:"i"`

	Source string `arg:"" default:"-" help:"Rapified input file or '-' for stdin." name:"source"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return dump(ctx, j.Source, formatJSON, func(t *rap.Tree, w io.Writer) error {
		return t.FormatJSON(ctx, w, j.Indent)
	})
}

// YAML prints a config as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output, or 0 for flow style." short:"i"`

	Source string `arg:"" default:"-" help:"Rapified input file or '-' for stdin." name:"source"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return dump(ctx, y.Source, formatYAML, func(t *rap.Tree, w io.Writer) error {
		return t.FormatYAML(ctx, w, y.Indent)
	})
}

func dump(
	ctx context.Context,
	name, format string,
	write func(*rap.Tree, io.Writer) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tree, err := decodeInput(ctx, name)
	if err != nil {
		return err
	}

	if err := write(tree, outputFrom(ctx)); err != nil {
		return ErrWriteOutput.With(slog.String("format", format)).Wrap(err)
	}

	return nil
}

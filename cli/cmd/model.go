package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/rap"
)

// Bones lists the skeletons of a rapified model.cfg with their compiled bones.
type Bones struct {
	Lower    bool     `help:"Lower-case bone names."`
	Skeleton []string `help:"Compile only these skeletons." short:"k"`
	Format   string   `default:"text" enum:"text,json,yaml" help:"Output format." short:"f"`

	Source string `arg:"" default:"-" help:"Rapified model.cfg or '-' for stdin." name:"source"`
}

// Run executes the bones command.
func (b *Bones) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tree, err := decodeInput(ctx, b.Source)
	if err != nil {
		return err
	}

	skels := b.compile(ctx, tree)
	if len(skels) == 0 {
		return ErrNoSkeletons.With(slog.String("file", b.Source))
	}

	if err := writeSkeletons(ctx, outputFrom(ctx), b.Format, skels); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

func (b *Bones) compile(ctx context.Context, tree *rap.Tree) []rap.Skeleton {
	var out []rap.Skeleton

	for _, cl := range tree.Skeletons() {
		if len(b.Skeleton) > 0 && !slices.ContainsFunc(b.Skeleton, func(s string) bool {
			return strings.EqualFold(s, cl.Name)
		}) {
			continue
		}

		sk := tree.CompileSkeleton(cl.Name)

		for _, c := range sk.Conflicts {
			log.WarnContext(ctx, "bone conflict",
				slog.String("skeleton", sk.Name),
				slog.String("bone", c.Dropped.Name),
				slog.String("kept", c.Kept.Parent),
				slog.String("dropped", c.Dropped.Parent))
		}

		if b.Lower {
			for i := range sk.Bones {
				sk.Bones[i] = sk.Bones[i].Lower()
			}
		}

		out = append(out, sk)
	}

	return out
}

// writeSkeletons writes skels to w. The text format prints each skeleton
// followed by one "bone <- parent" line per bone.
func writeSkeletons(ctx context.Context, w io.Writer, format string, skels []rap.Skeleton) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(skels, "", strings.Repeat(" ", reportIndent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		data, err := yaml.MarshalContext(ctx, skels, yaml.Indent(reportIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err
	}

	var sb strings.Builder

	for _, sk := range skels {
		fmt.Fprintf(&sb, "%s (%d bones)\n", sk.Name, len(sk.Bones))

		for _, bone := range sk.Bones {
			if bone.Parent == "" {
				fmt.Fprintf(&sb, "\t%s\n", bone.Name)
			} else {
				fmt.Fprintf(&sb, "\t%s <- %s\n", bone.Name, bone.Parent)
			}
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// Prop resolves a property of a class through its inheritance chain.
type Prop struct {
	Scope string `help:"Slash-separated path of the class body holding the class (default: root)." short:"s"`

	Class    string `arg:"" help:"Class name."    name:"class"`
	Property string `arg:"" help:"Property name." name:"property"`
	Source   string `arg:"" default:"-" help:"Rapified input file or '-' for stdin." name:"source"`
}

// Run executes the prop command.
func (p *Prop) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	tree, err := decodeInput(ctx, p.Source)
	if err != nil {
		return err
	}

	scope, err := p.scope(tree)
	if err != nil {
		return err
	}

	e, ok := scope.ResolveProperty(p.Class, p.Property)
	if !ok {
		return ErrNotFound.
			With(slog.String("class", p.Class)).
			With(slog.String("property", p.Property))
	}

	out := &rap.Tree{Root: &rap.Body{Entries: []rap.Entry{e}}}
	if err := out.Format(ctx, outputFrom(ctx), 0); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// scope returns the class body named by p.Scope.
func (p *Prop) scope(tree *rap.Tree) (*rap.Body, error) {
	body := tree.Root

	for name := range strings.SplitSeq(p.Scope, "/") {
		if name == "" {
			continue
		}

		cl, ok := body.Class(name)
		if !ok || cl.Body == nil {
			return nil, ErrNotFound.With(slog.String("scope", p.Scope), slog.String("class", name))
		}

		body = cl.Body
	}

	return body, nil
}

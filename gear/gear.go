// Package gear generates the XtdGearModels config that groups the gear of an
// addon into models with selectable options for arsenal extensions.
//
// A gear class takes part when its name starts with the mod tag and it holds
// an XtdGearInfo class. The model property of XtdGearInfo names the model the
// class belongs to; every other property is an option of that model, and its
// value one of the option's values.
//
//	class CfgWeapons {
//		class mod_helmet_black {
//			class XtdGearInfo {
//				model = "mod_helmet";
//				color = "Black";
//			};
//		};
//	};
//
// becomes
//
//	class XtdGearModels {
//		class CfgWeapons {
//			class mod_helmet {
//				label = "";
//				author = "";
//				options[] = {"color"};
//				class color {
//					changeingame = 0;
//					values[] = {"Black"};
//					class Black {
//						label = "Black";
//					};
//				};
//			};
//		};
//	};
package gear

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/pkg"
	"github.com/ardnew/derap/rap"
	"github.com/ardnew/derap/source"
)

// FileName is the name of the generated file.
const FileName = "XtdGearModels.hpp"

// Class names read and written by the generator.
const (
	RootClass = "XtdGearModels"
	InfoClass = "XtdGearInfo"
	ModelKey  = "model"
)

// Sections lists the root classes scanned for gear, in output order.
var Sections = []string{"CfgGlasses", "CfgWeapons", "CfgVehicles"}

// maxDepth is the deepest level below a section at which gear classes are
// found. Deeper classes are attachments and variants of those.
const maxDepth = 1

// Option is a property of a model and the sorted, distinct values it takes.
type Option struct {
	Name   string   `json:"name"   yaml:"name"`
	Values []string `json:"values" yaml:"values"`
}

// Model groups the gear classes sharing one model name.
type Model struct {
	Name    string   `json:"name"    yaml:"name"`
	Classes []string `json:"classes" yaml:"classes"`
	Options []Option `json:"options" yaml:"options"`
}

// Section holds the models found in one root class.
type Section struct {
	Name   string  `json:"name"   yaml:"name"`
	Models []Model `json:"models" yaml:"models"`
}

// Compat is the generated XtdGearModels content.
type Compat struct {
	Author   string    `json:"author"   yaml:"author"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Empty reports whether c has no models.
func (c Compat) Empty() bool {
	return len(c.Sections) == 0
}

// Classes returns the number of gear classes in section name.
func (c Compat) Classes(name string) int {
	n := 0

	for _, s := range c.Sections {
		if strings.EqualFold(s.Name, name) {
			for _, m := range s.Models {
				n += len(m.Classes)
			}
		}
	}

	return n
}

// Generator collects gear classes.
type Generator struct {
	// Tag is the prefix of the gear class names, normally the mod tag.
	Tag    string
	Author string
	Logger log.Logger
}

// Generate collects the gear of trees. Models and options keep the order in
// which they are first seen.
func (g Generator) Generate(ctx context.Context, trees ...*rap.Tree) Compat {
	c := Compat{Author: g.Author}

	for _, name := range Sections {
		acc := newAccumulator()

		for _, t := range trees {
			if sec, ok := t.Class(name); ok {
				g.scan(ctx, sec.Body, 0, acc)
			}
		}

		if models := acc.models(); len(models) > 0 {
			c.Sections = append(c.Sections, Section{Name: name, Models: models})

			g.Logger.DebugContext(ctx, "gear section",
				slog.String("section", name),
				slog.Int("models", len(models)))
		}
	}

	return c
}

func (g Generator) scan(ctx context.Context, b *rap.Body, depth int, acc *accumulator) {
	if depth > maxDepth {
		return
	}

	for _, cl := range b.Classes() {
		if rap.HasPrefixFold(cl.Name, g.Tag) {
			if model, opts, ok := gearInfo(cl); ok {
				g.Logger.TraceContext(ctx, "gear class",
					slog.String("class", cl.Name),
					slog.String("model", model))

				acc.add(model, cl.Name, opts)
			}
		}

		g.scan(ctx, cl.Body, depth+1, acc)
	}
}

// gearInfo returns the model and options declared by the XtdGearInfo class
// of cl. Only scalar properties count.
func gearInfo(cl *rap.Class) (model string, opts [][2]string, ok bool) {
	info, ok := cl.Body.Class(InfoClass)
	if !ok {
		return "", nil, false
	}

	for _, e := range info.Body.Entries {
		sc, isScalar := e.(*rap.Scalar)
		if !isScalar {
			continue
		}

		if strings.EqualFold(sc.Name, ModelKey) {
			model = sc.Value.String()

			continue
		}

		opts = append(opts, [2]string{sc.Name, sc.Value.String()})
	}

	return model, opts, model != ""
}

// accumulator merges gear classes into models in first-seen order.
type accumulator struct {
	order  []string
	byName map[string]*modelAcc
}

type modelAcc struct {
	classes []string
	order   []string
	values  map[string]rap.Set[string]
}

func newAccumulator() *accumulator {
	return &accumulator{byName: make(map[string]*modelAcc)}
}

func (a *accumulator) add(model, class string, opts [][2]string) {
	m, ok := a.byName[model]
	if !ok {
		m = &modelAcc{values: make(map[string]rap.Set[string])}
		a.byName[model] = m
		a.order = append(a.order, model)
	}

	m.classes = append(m.classes, class)

	for _, kv := range opts {
		vals, ok := m.values[kv[0]]
		if !ok {
			vals = make(rap.Set[string])
			m.values[kv[0]] = vals
			m.order = append(m.order, kv[0])
		}

		vals.Add(kv[1])
	}
}

func (a *accumulator) models() []Model {
	out := make([]Model, 0, len(a.order))

	for _, name := range a.order {
		m := a.byName[name]
		model := Model{Name: name, Classes: m.classes}

		for _, opt := range m.order {
			model.Options = append(model.Options, Option{
				Name:   opt,
				Values: rap.SortedOrdered(m.values[opt]),
			})
		}

		out = append(out, model)
	}

	return out
}

// Tree returns c as a config tree rooted at the XtdGearModels class.
func (c Compat) Tree() *rap.Tree {
	root := &rap.Class{Name: RootClass, Body: &rap.Body{}}

	for _, s := range c.Sections {
		sec := &rap.Class{Name: s.Name, Body: &rap.Body{}}

		for _, m := range s.Models {
			sec.Body.Entries = append(sec.Body.Entries, c.model(m))
		}

		root.Body.Entries = append(root.Body.Entries, sec)
	}

	return &rap.Tree{Root: &rap.Body{Entries: []rap.Entry{root}}}
}

func (c Compat) model(m Model) *rap.Class {
	names := make([]rap.Value, len(m.Options))
	for i, o := range m.Options {
		names[i] = rap.String(o.Name)
	}

	body := &rap.Body{Entries: []rap.Entry{
		&rap.Scalar{Name: "label", Value: rap.String("")},
		&rap.Scalar{Name: "author", Value: rap.String(c.Author)},
		&rap.Array{Name: "options", Elements: names},
	}}

	for _, o := range m.Options {
		body.Entries = append(body.Entries, option(o))
	}

	return &rap.Class{Name: m.Name, Body: body}
}

func option(o Option) *rap.Class {
	values := make([]rap.Value, len(o.Values))
	for i, v := range o.Values {
		values[i] = rap.String(v)
	}

	body := &rap.Body{Entries: []rap.Entry{
		&rap.Scalar{Name: "changeingame", Value: rap.Long(0)},
		&rap.Array{Name: "values", Elements: values},
	}}

	for _, v := range o.Values {
		body.Entries = append(body.Entries, &rap.Class{
			Name: ClassName(v),
			Body: &rap.Body{Entries: []rap.Entry{
				&rap.Scalar{Name: "label", Value: rap.String(v)},
			}},
		})
	}

	return &rap.Class{Name: o.Name, Body: body}
}

// ClassName returns v usable as a class name: spaces become underscores.
func ClassName(v string) string {
	return strings.ReplaceAll(v, " ", "_")
}

// Write writes c as a config file with a generated-file banner.
func (c Compat) Write(ctx context.Context, w io.Writer) error {
	if _, err := fmt.Fprintf(w,
		"// This file is automatically generated by %s gear\n// Do not edit this file manually!\n\n",
		pkg.Name); err != nil {
		return err
	}

	return c.Tree().Format(ctx, w, 0)
}

// Path returns the file the compat config of src is written to below the
// project directory dest: the last two components of the source prefix name
// the addon's source directory.
func Path(dest string, src *source.Source) string {
	parts := strings.Split(source.NormalizePrefix(src.Prefix), `\`)
	parts = slices.DeleteFunc(parts, func(s string) bool { return s == "" })

	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}

	if len(parts) == 0 {
		parts = []string{source.AddonsDir, src.Name}
	}

	return filepath.Join(append(append([]string{dest}, parts...), FileName)...)
}

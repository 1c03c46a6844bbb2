package rap

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// Format writes the tree in native config syntax. Each nesting level is
// indented by indent spaces, or by one tab when indent is not positive.
func (t *Tree) Format(_ context.Context, w io.Writer, indent int) error {
	unit := "\t"
	if indent > 0 {
		unit = strings.Repeat(" ", indent)
	}

	f := &cfgWriter{w: bufio.NewWriter(w), unit: unit}

	if t != nil {
		f.body(t.Root)

		if len(t.Enums) > 0 {
			f.line("enum {")
			f.depth++

			for _, e := range t.Enums {
				f.line("%s = %d;", e.Name, e.Value)
			}

			f.depth--
			f.line("};")
		}
	}

	return f.flush()
}

// FormatJSON writes the tree as JSON. See [Tree.ToMap] for the layout.
func (t *Tree) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		data []byte
		err  error
	)

	if indent > 0 {
		data, err = json.MarshalIndent(t.ToMap(), "", strings.Repeat(" ", indent))
	} else {
		data, err = json.Marshal(t.ToMap())
	}

	if err != nil {
		return WrapError(err)
	}

	_, err = fmt.Fprintln(w, string(data))

	return err
}

// FormatYAML writes the tree as YAML. A positive indent selects block style
// with that indentation; otherwise flow style is used.
func (t *Tree) FormatYAML(ctx context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalContext(ctx, t.ToMap(), opts...)
	if err != nil {
		return WrapError(err)
	}

	_, err = w.Write(data)

	return err
}

// QuoteString returns s as a config string literal. Embedded quotes are
// doubled.
func QuoteString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// FormatValue returns v in native config syntax.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case String:
		return QuoteString(string(v))
	case Float:
		return strconv.FormatFloat(float64(v), 'f', 6, 32)
	case Long:
		return strconv.FormatInt(int64(v), 10)
	case Variable:
		return string(v)
	case List:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FormatValue(e)
		}

		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}

// cfgWriter writes indented lines and keeps the first write error.
type cfgWriter struct {
	w     *bufio.Writer
	unit  string
	depth int
	err   error
}

func (f *cfgWriter) line(format string, args ...any) {
	if f.err != nil {
		return
	}

	_, f.err = fmt.Fprintf(f.w, strings.Repeat(f.unit, f.depth)+format+"\n", args...)
}

func (f *cfgWriter) flush() error {
	if f.err != nil {
		return f.err
	}

	return f.w.Flush()
}

func (f *cfgWriter) body(b *Body) {
	if b == nil {
		return
	}

	for _, e := range b.Entries {
		switch v := e.(type) {
		case *Class:
			f.class(v)
		case *Scalar:
			f.line("%s = %s;", v.Name, FormatValue(v.Value))
		case *Array:
			f.array(v.Name, "=", v.Elements)
		case *FlaggedArray:
			f.array(v.Name, "+=", v.Elements)
		case *ExternalClass:
			f.line("class %s;", v.Name)
		case *DeleteClass:
			f.line("delete %s;", v.Name)
		}
	}
}

func (f *cfgWriter) class(c *Class) {
	head := "class " + c.Name
	if c.Body != nil && c.Body.Inherits != "" {
		head += ": " + c.Body.Inherits
	}

	if c.Body == nil || len(c.Body.Entries) == 0 {
		f.line("%s {};", head)

		return
	}

	f.line("%s {", head)
	f.depth++
	f.body(c.Body)
	f.depth--
	f.line("};")
}

func (f *cfgWriter) array(name, op string, elems []Value) {
	if len(elems) == 0 {
		f.line("%s[] %s {};", name, op)

		return
	}

	f.line("%s[] %s {", name, op)
	f.depth++

	for i, v := range elems {
		sep := ","
		if i == len(elems)-1 {
			sep = ""
		}

		f.line("%s%s", FormatValue(v), sep)
	}

	f.depth--
	f.line("};")
}

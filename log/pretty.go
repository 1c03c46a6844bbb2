package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// palette holds the styles of the pretty handlers. Styles are bound to a
// renderer for the handler's output so that color is only emitted when that
// output is a terminal.
type palette struct {
	key    lipgloss.Style
	text   lipgloss.Style
	number lipgloss.Style
	yes    lipgloss.Style
	no     lipgloss.Style
	other  lipgloss.Style
	time   lipgloss.Style
	source lipgloss.Style
	msg    lipgloss.Style
	trace  lipgloss.Style
	debug  lipgloss.Style
	info   lipgloss.Style
	warn   lipgloss.Style
	err    lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return palette{
		key:    fg("8"),
		text:   fg("6"),
		number: fg("3"),
		yes:    fg("2"),
		no:     fg("1"),
		other:  fg("5"),
		time:   fg("8"),
		source: fg("8").Italic(true),
		msg:    r.NewStyle().Bold(true),
		trace:  fg("4"),
		debug:  fg("4").Bold(true),
		info:   fg("2").Bold(true),
		warn:   fg("3").Bold(true),
		err:    fg("1").Bold(true),
	}
}

func (p palette) level(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return p.err
	case l >= slog.LevelWarn:
		return p.warn
	case l >= slog.LevelInfo:
		return p.info
	case l >= slog.LevelDebug:
		return p.debug
	default:
		return p.trace
	}
}

func (p palette) value(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return p.text.Render(v.String())
	case slog.KindInt64:
		return p.number.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.number.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.number.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindAny:
		if v.Any() == nil {
			return p.key.Render("null")
		}

		if err, ok := v.Any().(error); ok {
			return p.no.Render(err.Error())
		}

		return p.other.Render(v.String())
	default:
		return p.other.Render(v.String())
	}
}

// field is an attribute flattened to a dotted key.
type field struct {
	key string
	val slog.Value
}

// appendField flattens a into dst, resolving LogValuers and expanding
// groups into dotted keys.
func appendField(dst []field, prefix string, a slog.Attr) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return dst
	}

	key := a.Key
	if prefix != "" && key != "" {
		key = prefix + "." + key
	} else if key == "" {
		key = prefix
	}

	if a.Value.Kind() == slog.KindGroup {
		for _, ga := range a.Value.Group() {
			dst = appendField(dst, key, ga)
		}

		return dst
	}

	return append(dst, field{key: key, val: a.Value})
}

// prettyHandler holds what the text and JSON pretty handlers share.
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime FormatTime
	colors     palette
	mu         *sync.Mutex
	w          io.Writer
	group      string
	fields     []field
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) prettyHandler {
	return prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		colors:     newPalette(w),
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h prettyHandler) enabled(level slog.Level) bool {
	threshold := slog.LevelInfo
	if h.opts.Level != nil {
		threshold = h.opts.Level.Level()
	}

	return level >= threshold
}

func (h prettyHandler) withAttrs(attrs []slog.Attr) prettyHandler {
	fields := slices.Clip(h.fields)
	for _, a := range attrs {
		fields = appendField(fields, h.group, a)
	}

	h.fields = fields

	return h
}

func (h prettyHandler) withGroup(name string) prettyHandler {
	if name == "" {
		return h
	}

	if h.group != "" {
		name = h.group + "." + name
	}

	h.group = name

	return h
}

// header returns the time, level, source and message of r in order, omitting
// the ones that are disabled.
func (h prettyHandler) header(r slog.Record) []field {
	var out []field

	if !r.Time.IsZero() && h.formatTime != nil {
		if ts := h.formatTime(r.Time); ts != "" {
			out = append(out, field{slog.TimeKey, slog.StringValue(ts)})
		}
	}

	out = append(out, field{
		slog.LevelKey,
		slog.StringValue(strings.ToUpper(Level(r.Level).String())),
	})

	if h.opts.AddSource {
		if src := r.Source(); src != nil {
			out = append(out, field{
				slog.SourceKey,
				slog.StringValue(fmt.Sprintf("%s:%d", src.File, src.Line)),
			})
		}
	}

	return append(out, field{slog.MessageKey, slog.StringValue(r.Message)})
}

func (h prettyHandler) attrs(r slog.Record) []field {
	fields := slices.Clone(h.fields)

	r.Attrs(func(a slog.Attr) bool {
		fields = appendField(fields, h.group, a)

		return true
	})

	return fields
}

func (h prettyHandler) write(b []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(b)

	return err
}

// prettyTextHandler writes one styled line per record:
//
//	TIME LEVEL source message key=value ...
type prettyTextHandler struct {
	prettyHandler
}

func newPrettyTextHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyTextHandler {
	return &prettyTextHandler{newPrettyHandler(w, opts, formatTime)}
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	for _, f := range h.header(r) {
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}

		switch f.key {
		case slog.TimeKey:
			buf.WriteString(h.colors.time.Render(f.val.String()))
		case slog.LevelKey:
			buf.WriteString(h.colors.level(r.Level).Render(fmt.Sprintf("%-5s", f.val.String())))
		case slog.SourceKey:
			buf.WriteString(h.colors.source.Render(f.val.String()))
		default:
			buf.WriteString(h.colors.msg.Render(f.val.String()))
		}
	}

	for _, f := range h.attrs(r) {
		buf.WriteByte(' ')
		buf.WriteString(h.colors.key.Render(f.key))
		buf.WriteByte('=')
		buf.WriteString(h.colors.value(f.val))
	}

	buf.WriteByte('\n')

	return h.write(buf.Bytes())
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyTextHandler{h.withAttrs(attrs)}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	return &prettyTextHandler{h.withGroup(name)}
}

// prettyJSONHandler writes each record as an indented block with one styled
// field per line. The output is meant for reading, not for parsing.
type prettyJSONHandler struct {
	prettyHandler
}

func newPrettyJSONHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	formatTime FormatTime,
) *prettyJSONHandler {
	return &prettyJSONHandler{newPrettyHandler(w, opts, formatTime)}
}

func (h *prettyJSONHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.enabled(level)
}

func (h *prettyJSONHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	buf.WriteString("{\n")

	fields := append(h.header(r), h.attrs(r)...)

	for i, f := range fields {
		buf.WriteString("  ")
		buf.WriteString(h.colors.key.Render(f.key))
		buf.WriteString(": ")

		if f.key == slog.LevelKey {
			buf.WriteString(h.colors.level(r.Level).Render(f.val.String()))
		} else {
			buf.WriteString(h.colors.value(f.val))
		}

		if i < len(fields)-1 {
			buf.WriteByte(',')
		}

		buf.WriteByte('\n')
	}

	buf.WriteString("}\n")

	return h.write(buf.Bytes())
}

func (h *prettyJSONHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &prettyJSONHandler{h.withAttrs(attrs)}
}

func (h *prettyJSONHandler) WithGroup(name string) slog.Handler {
	return &prettyJSONHandler{h.withGroup(name)}
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/derap/check"
)

// Output formats of the report commands.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

const reportIndent = 2

// reportStyle styles a text report. Styles are bound to the report's writer,
// so color is only emitted to terminals.
type reportStyle struct {
	pass  lipgloss.Style
	fail  lipgloss.Style
	unit  lipgloss.Style
	kind  lipgloss.Style
	ref   lipgloss.Style
	where lipgloss.Style
	hint  lipgloss.Style
}

func newReportStyle(w io.Writer) reportStyle {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style {
		return r.NewStyle().Foreground(lipgloss.Color(c))
	}

	return reportStyle{
		pass:  fg("2").Bold(true),
		fail:  fg("1").Bold(true),
		unit:  r.NewStyle().Bold(true),
		kind:  fg("8"),
		ref:   fg("3"),
		where: fg("8"),
		hint:  fg("6").Italic(true),
	}
}

// writeSummary writes s to w in format.
func writeSummary(ctx context.Context, w io.Writer, format string, s check.Summary) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(s, "", strings.Repeat(" ", reportIndent))
		if err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case formatYAML:
		data, err := yaml.MarshalContext(ctx, s, yaml.Indent(reportIndent))
		if err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	default:
		return writeSummaryText(w, s)
	}
}

// writeSummaryText writes one line per unit, followed by its unresolved
// references and a closing tally:
//
//	PASS main     classes  4 checked
//	FAIL weapons  classes  3 checked, 1 unresolved
//	     myprefix_riffle (class cfgweapons >> 'ammo')  did you mean myprefix_rifle
//	1 of 2 addons failed
func writeSummaryText(w io.Writer, s check.Summary) error {
	st := newReportStyle(w)

	width := 0
	for _, r := range s.Reports {
		width = max(width, len(r.Unit))
	}

	for _, f := range s.Failures {
		width = max(width, len(f.Unit))
	}

	var b strings.Builder

	for _, f := range s.Failures {
		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			st.fail.Render("FAIL"),
			st.unit.Render(fmt.Sprintf("%-*s", width, f.Unit)),
			st.kind.Render("decode "),
			f.Error())
	}

	for _, r := range s.Reports {
		status := st.pass.Render("PASS")
		tally := fmt.Sprintf("%d checked", r.Checked)

		if !r.OK() {
			status = st.fail.Render("FAIL")
			tally += fmt.Sprintf(", %d unresolved", len(r.Unresolved))
		}

		fmt.Fprintf(&b, "%s %s  %s  %s\n",
			status,
			st.unit.Render(fmt.Sprintf("%-*s", width, r.Unit)),
			st.kind.Render(fmt.Sprintf("%-7s", r.Kind)),
			tally)

		for _, f := range r.Unresolved {
			fmt.Fprintf(&b, "     %s %s",
				st.ref.Render(f.Name),
				st.where.Render(fmt.Sprintf("(class %s >> '%s')", f.Class, f.Property)))

			if len(f.Suggestions) > 0 {
				fmt.Fprintf(&b, "  %s", st.hint.Render("did you mean "+strings.Join(f.Suggestions, ", ")))
			}

			b.WriteByte('\n')
		}
	}

	units := len(s.Reports)
	for _, f := range s.Failures {
		if !reported(s.Reports, f.Unit) {
			units++
		}
	}

	if s.OK() {
		fmt.Fprintf(&b, "%s\n", st.pass.Render(fmt.Sprintf("%d addons passed", units)))
	} else {
		fmt.Fprintf(&b, "%s\n", st.fail.Render(fmt.Sprintf("%d of %d addons failed", len(s.Failed), units)))
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func reported(reports []check.Report, unit string) bool {
	for _, r := range reports {
		if r.Unit == unit {
			return true
		}
	}

	return false
}

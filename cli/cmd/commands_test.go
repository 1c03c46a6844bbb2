package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/derap/gear"
	"github.com/ardnew/derap/internal/raptest"
	"github.com/ardnew/derap/rap"
)

func mainTree() *rap.Tree {
	return raptest.Tree(
		raptest.Class("CfgPatches", "",
			raptest.Class("mod_main", "",
				raptest.Strings("units", "mod_soldier"),
				raptest.Strings("weapons", "mod_rifle"),
			),
		),
		raptest.Class("CfgWeapons", "",
			raptest.Class("mod_rifle", "",
				raptest.String("model", `\x\mod\addons\main\data\rifle.p3d`),
			),
			raptest.Class("mod_cap_red", "",
				raptest.Class(gear.InfoClass, "",
					raptest.String("model", "cap_mod"),
					raptest.String("color", "Red"),
				),
			),
		),
	)
}

func unitsTree(weapon string) *rap.Tree {
	return raptest.Tree(
		raptest.Class("CfgVehicles", "",
			raptest.Class("mod_soldier", "",
				raptest.Strings("weapons", weapon),
			),
		),
	)
}

// writeProject lays out a project with a built main and units addon and
// returns its root.
func writeProject(t *testing.T, weapon string) string {
	t.Helper()

	root := t.TempDir()
	addons := filepath.Join(root, ".hemttout", "build", "addons")

	files := map[string][]byte{
		"main/$PBOPREFIX$":    []byte(`x\mod\addons\main`),
		"main/config.bin":     raptest.Encode(mainTree()),
		"main/data/rifle.p3d": nil,
		"units/$PBOPREFIX$":   []byte("prefix=x\\mod\\addons\\units\n"),
		"units/config.bin":    raptest.Encode(unitsTree(weapon)),
	}

	for name, data := range files {
		p := filepath.Join(addons, filepath.FromSlash(name))

		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}

		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return root
}

func checkFlags(dir, format string) CheckFlags {
	return CheckFlags{Dir: dir, Match: "prefix", Jobs: 2, Suggest: defaultSuggestions, Format: format}
}

func TestClasses_Pass(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cmd := &Classes{Flags: checkFlags(writeProject(t, "mod_rifle"), formatText)}

	if err := cmd.Run(WithOutput(context.Background(), &buf)); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, buf.String())
	}

	out := buf.String()

	for _, want := range []string{"PASS main", "PASS units", "2 addons passed"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClasses_Unresolved(t *testing.T) {
	t.Parallel()

	root := writeProject(t, "mod_riffle")

	var buf bytes.Buffer

	err := (&Classes{Flags: checkFlags(root, formatText)}).Run(WithOutput(context.Background(), &buf))
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("Run() error = %v, want ErrCheckFailed", err)
	}

	out := buf.String()

	for _, want := range []string{
		"FAIL units",
		"mod_riffle",
		"(class mod_soldier >> 'weapons')",
		"did you mean mod_rifle",
		"1 of 2 addons failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()

	err = (&Classes{Flags: checkFlags(root, formatJSON)}).Run(WithOutput(context.Background(), &buf))
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("Run(json) error = %v, want ErrCheckFailed", err)
	}

	var got struct {
		Kind    string   `json:"kind"`
		Failed  []string `json:"failed"`
		Reports []struct {
			Unit       string `json:"unit"`
			Unresolved []struct {
				Name        string   `json:"name"`
				Suggestions []string `json:"suggestions"`
			} `json:"unresolved"`
		} `json:"reports"`
	}

	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("report is not JSON: %v\n%s", err, buf.String())
	}

	if got.Kind != "classes" || !cmp.Equal(got.Failed, []string{"units"}) {
		t.Errorf("kind %q failed %v", got.Kind, got.Failed)
	}

	if len(got.Reports) != 2 || len(got.Reports[1].Unresolved) != 1 ||
		!cmp.Equal(got.Reports[1].Unresolved[0].Suggestions, []string{"mod_rifle"}) {
		t.Errorf("reports = %+v", got.Reports)
	}

	// Selecting only the main addon skips the failing one.
	flags := checkFlags(root, formatText)
	flags.Only = []string{"main"}

	buf.Reset()

	if err := (&Classes{Flags: flags}).Run(WithOutput(context.Background(), &buf)); err != nil {
		t.Errorf("Run(--only main) error = %v\n%s", err, buf.String())
	}
}

func TestClasses_UnknownMatch(t *testing.T) {
	t.Parallel()

	flags := checkFlags(writeProject(t, "mod_rifle"), formatText)
	flags.Match = "regex"

	err := (&Classes{Flags: flags}).Run(context.Background())
	if !errors.Is(err, ErrUnknownMatch) {
		t.Errorf("Run() error = %v, want ErrUnknownMatch", err)
	}
}

func TestPaths(t *testing.T) {
	t.Parallel()

	root := writeProject(t, "mod_rifle")

	var buf bytes.Buffer

	if err := (&Paths{Flags: checkFlags(root, formatYAML)}).Run(WithOutput(context.Background(), &buf)); err != nil {
		t.Fatalf("Run() error = %v\n%s", err, buf.String())
	}

	if err := os.Remove(filepath.Join(root, ".hemttout", "build", "addons", "main", "data", "rifle.p3d")); err != nil {
		t.Fatal(err)
	}

	buf.Reset()

	err := (&Paths{Flags: checkFlags(root, formatText)}).Run(WithOutput(context.Background(), &buf))
	if !errors.Is(err, ErrCheckFailed) {
		t.Fatalf("Run() error = %v, want ErrCheckFailed", err)
	}

	if !strings.Contains(buf.String(), `\x\mod\addons\main\data\rifle.p3d`) {
		t.Errorf("missing path not reported:\n%s", buf.String())
	}
}

func TestLoadSources_NoBuildDir(t *testing.T) {
	t.Parallel()

	_, _, err := loadSources(context.Background(), t.TempDir(), "")
	if !errors.Is(err, ErrLoad) {
		t.Errorf("loadSources() error = %v, want ErrLoad", err)
	}
}

func TestDump(t *testing.T) {
	t.Parallel()

	name := filepath.Join(t.TempDir(), "config.bin")
	if err := os.WriteFile(name, raptest.Encode(unitsTree("mod_rifle")), 0o644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer

	ctx := WithOutput(context.Background(), &buf)

	if err := (&Native{Source: name, Indent: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		"class CfgVehicles {",
		"  class mod_soldier {",
		"    weapons[] = {",
		`      "mod_rifle"`,
		"    };",
		"  };",
		"};",
		"",
	}, "\n")

	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("native mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()

	stdin := WithInput(ctx, bytes.NewReader(raptest.Encode(unitsTree("mod_rifle"))))

	if err := (&JSON{Source: stdinSource, Indent: 2}).Run(stdin); err != nil {
		t.Fatal(err)
	}

	if !json.Valid(buf.Bytes()) {
		t.Errorf("json output is not valid JSON:\n%s", buf.String())
	}

	buf.Reset()

	if err := (&YAML{Source: name, Indent: 2}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(buf.String(), "mod_soldier") {
		t.Errorf("yaml output:\n%s", buf.String())
	}

	err := (&Native{Source: stdinSource}).Run(WithInput(ctx, strings.NewReader("junk")))
	if !errors.Is(err, ErrDecode) || !errors.Is(err, rap.ErrBadSignature) {
		t.Errorf("Run(junk) error = %v, want ErrDecode wrapping ErrBadSignature", err)
	}
}

func TestBones(t *testing.T) {
	t.Parallel()

	tree := raptest.Tree(
		raptest.Class(rap.SkeletonsClass, "",
			raptest.Class("Skel_A", "",
				raptest.Strings(rap.SkeletonBones, "Root", "", "Arm", "Root"),
			),
			raptest.Class("Skel_B", "",
				raptest.Strings(rap.SkeletonBones, "Hand", "Arm"),
				raptest.String(rap.SkeletonInherit, "Skel_A"),
			),
		),
	)

	ctx := WithInput(context.Background(), bytes.NewReader(raptest.Encode(tree)))

	var buf bytes.Buffer

	cmd := &Bones{Lower: true, Skeleton: []string{"skel_b"}, Format: formatText, Source: stdinSource}
	if err := cmd.Run(WithOutput(ctx, &buf)); err != nil {
		t.Fatal(err)
	}

	want := "Skel_B (3 bones)\n\thand <- arm\n\troot\n\tarm <- root\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("bones mismatch (-want +got):\n%s", diff)
	}

	ctx = WithInput(context.Background(), bytes.NewReader(raptest.Encode(raptest.Tree())))

	err := (&Bones{Format: formatText, Source: stdinSource}).Run(WithOutput(ctx, &buf))
	if !errors.Is(err, ErrNoSkeletons) {
		t.Errorf("Run(no skeletons) error = %v, want ErrNoSkeletons", err)
	}
}

func TestProp(t *testing.T) {
	t.Parallel()

	tree := raptest.Tree(
		raptest.Class("CfgWeapons", "",
			raptest.Class("Base", "",
				raptest.String("displayName", "Base Rifle"),
			),
			raptest.Class("Child", "Base"),
		),
	)
	data := raptest.Encode(tree)

	tests := []struct {
		name    string
		prop    Prop
		want    string
		wantErr error
	}{
		{
			name: "inherited",
			prop: Prop{Scope: "CfgWeapons", Class: "child", Property: "displayname"},
			want: "displayName = \"Base Rifle\";\n",
		},
		{
			name:    "missing property",
			prop:    Prop{Scope: "CfgWeapons", Class: "Child", Property: "mass"},
			wantErr: ErrNotFound,
		},
		{
			name:    "missing scope",
			prop:    Prop{Scope: "CfgVehicles", Class: "Child", Property: "mass"},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			ctx := WithOutput(WithInput(context.Background(), bytes.NewReader(data)), &buf)

			tt.prop.Source = stdinSource

			err := tt.prop.Run(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if buf.String() != tt.want {
				t.Errorf("Run() = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestGear(t *testing.T) {
	t.Parallel()

	root := writeProject(t, "mod_rifle")

	if err := (&Gear{Dir: root, Author: "me", Jobs: 1}).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(root, "addons", "main", gear.FileName))
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"class XtdGearModels {", "class cap_mod {", `author = "me";`, "class Red {"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("compat file missing %q:\n%s", want, data)
		}
	}

	if _, err := os.Stat(filepath.Join(root, "addons", "units", gear.FileName)); !os.IsNotExist(err) {
		t.Errorf("compat file written for addon without gear: %v", err)
	}

	var buf bytes.Buffer

	cmd := &Gear{Dir: root, Stdout: true, Only: []string{"main"}}
	if err := cmd.Run(WithOutput(context.Background(), &buf)); err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(buf.String(), "// This file is automatically generated") {
		t.Errorf("stdout output:\n%s", buf.String())
	}
}

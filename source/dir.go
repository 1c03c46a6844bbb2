package source

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/readahead"

	"github.com/ardnew/derap/log"
)

// PrefixFile names the file holding an addon's virtual path.
const PrefixFile = "$PBOPREFIX$"

// Build output layout searched by [FindBuildDir].
const (
	OutputDir = ".hemttout"
	BuildDir  = "build"
	AddonsDir = "addons"
)

// Option configures [Dir] and [ReadAddon].
type Option func(*loader)

type loader struct {
	ctx    context.Context
	logger log.Logger
}

// WithLogger sets the logger used to trace discovered files.
func WithLogger(logger log.Logger) Option {
	return func(l *loader) { l.logger = logger }
}

// WithContext sets the context used for cancellation and logging.
func WithContext(ctx context.Context) Option {
	return func(l *loader) {
		if ctx != nil {
			l.ctx = ctx
		}
	}
}

func newLoader(opts ...Option) *loader {
	l := &loader{ctx: context.Background()}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// FindBuildDir returns the build output directory of the project containing
// start. It checks start and each of its parents for a .hemttout directory,
// which must contain build/.
func FindBuildDir(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", ErrNoBuildDir.Wrap(err).With(slog.String("start", start))
	}

	for {
		out := filepath.Join(dir, OutputDir)
		if isDir(out) {
			build := filepath.Join(out, BuildDir)
			if !isDir(build) {
				return "", ErrNoBuildDir.With(slog.String("output", out))
			}

			return build, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoBuildDir.With(slog.String("start", start))
		}

		dir = parent
	}
}

// Dir reads every addon under root/addons, sorted by name.
func Dir(root string, opts ...Option) ([]*Source, error) {
	l := newLoader(opts...)

	addons := filepath.Join(root, AddonsDir)

	ents, err := os.ReadDir(addons)
	if err != nil {
		return nil, ErrNoAddons.Wrap(err).With(slog.String("dir", addons))
	}

	var out []*Source

	for _, ent := range ents {
		if !ent.IsDir() {
			l.logger.TraceContext(l.ctx, "skip non-directory",
				slog.String("name", ent.Name()))

			continue
		}

		src, err := l.addon(filepath.Join(addons, ent.Name()))
		if err != nil {
			return nil, err
		}

		out = append(out, src)
	}

	slices.SortFunc(out, func(a, b *Source) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out, nil
}

// ReadAddon reads the single addon in dir.
func ReadAddon(dir string, opts ...Option) (*Source, error) {
	return newLoader(opts...).addon(dir)
}

func (l *loader) addon(dir string) (*Source, error) {
	src := &Source{
		Name: filepath.Base(dir),
		Dir:  dir,
	}

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if cerr := l.ctx.Err(); cerr != nil {
			return cerr
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		if rel == PrefixFile {
			prefix, err := readPrefix(p)
			if err != nil {
				return err
			}

			src.Prefix = prefix

			return nil
		}

		f := File{Name: strings.ReplaceAll(filepath.ToSlash(rel), "/", `\`)}

		if f.IsConfig() {
			if f.Data, err = readFile(p); err != nil {
				return err
			}
		}

		src.Files = append(src.Files, f)

		return nil
	})
	if err != nil {
		return nil, ErrReadAddon.Wrap(err).With(slog.String("dir", dir))
	}

	if src.Prefix == "" {
		src.Prefix = NormalizePrefix(src.Name)
	}

	l.logger.TraceContext(l.ctx, "addon",
		slog.String("name", src.Name),
		slog.String("prefix", src.Prefix),
		slog.Int("files", len(src.Files)),
		slog.Int("configs", len(src.Configs())))

	return src, nil
}

// readPrefix parses a prefix file. The file either holds key=value lines, of
// which prefix is used, or the bare prefix on its first line.
func readPrefix(name string) (string, error) {
	data, err := readFile(name)
	if err != nil {
		return "", err
	}

	return ParsePrefix(string(data)), nil
}

// ParsePrefix returns the prefix named by the content of a prefix file.
func ParsePrefix(content string) string {
	var first string

	for line := range strings.Lines(content) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, val, ok := strings.Cut(line, "=")
		if !ok {
			if first == "" {
				first = line
			}

			continue
		}

		if strings.EqualFold(strings.TrimSpace(key), "prefix") {
			return NormalizePrefix(val)
		}
	}

	return NormalizePrefix(first)
}

func readFile(name string) ([]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	ra := readahead.NewReader(f)
	defer ra.Close()

	return io.ReadAll(ra)
}

func isDir(name string) bool {
	fi, err := os.Stat(name)

	return err == nil && fi.IsDir()
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/readahead"

	"github.com/ardnew/derap/log"
	"github.com/ardnew/derap/rap"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// readInput returns the content of the file name, or of the command input
// when name is "-".
func readInput(ctx context.Context, name string) ([]byte, error) {
	var r io.Reader

	if name == stdinSource || name == "" {
		r = inputFrom(ctx)
	} else {
		file, err := os.Open(name)
		if err != nil {
			return nil, ErrReadInput.With(slog.String("file", name)).Wrap(err)
		}
		defer file.Close()

		ra := readahead.NewReader(file)
		defer ra.Close()

		r = ra
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.With(slog.String("file", name)).Wrap(err)
	}

	log.TraceContext(ctx, "read input",
		slog.String("file", name),
		slog.Int("size", len(data)))

	return data, nil
}

// decodeInput reads and decodes the rapified config name.
func decodeInput(ctx context.Context, name string) (*rap.Tree, error) {
	data, err := readInput(ctx, name)
	if err != nil {
		return nil, err
	}

	tree, err := rap.Decode(data,
		rap.WithContext(ctx),
		rap.WithLogger(log.Default()),
	)
	if err != nil {
		return nil, ErrDecode.With(slog.String("file", name)).Wrap(err)
	}

	return tree, nil
}

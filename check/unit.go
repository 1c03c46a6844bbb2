package check

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"

	"github.com/ardnew/derap/rap"
	"github.com/ardnew/derap/source"
)

// Config is a decoded config of a unit.
type Config struct {
	Name string
	Tree *rap.Tree
}

// Unit is an addon with its decoded configs.
type Unit struct {
	Source  *source.Source
	Configs []Config
	// Classes holds every class declared by the unit's configs, lower case.
	Classes rap.Set[string]
	// Files holds the normalized virtual paths of the unit's data files.
	Files rap.Set[string]
}

// Name returns the name of the unit's source.
func (u *Unit) Name() string { return u.Source.Name }

// Failure records a config that could not be decoded.
type Failure struct {
	Unit string `json:"unit" yaml:"unit"`
	File string `json:"file" yaml:"file"`
	Err  error  `json:"-"    yaml:"-"`
}

func (f Failure) Error() string {
	if f.File == "" {
		return fmt.Sprintf("%s: %v", f.Unit, f.Err)
	}

	return fmt.Sprintf("%s: %s: %v", f.Unit, f.File, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// failureView is the serialized form of a [Failure].
type failureView struct {
	Unit  string `json:"unit"           yaml:"unit"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Error string `json:"error"          yaml:"error"`
}

func (f Failure) view() failureView {
	v := failureView{Unit: f.Unit, File: f.File}
	if f.Err != nil {
		v.Error = f.Err.Error()
	}

	return v
}

// MarshalJSON implements [json.Marshaler].
func (f Failure) MarshalJSON() ([]byte, error) { return json.Marshal(f.view()) }

// MarshalYAML implements the goccy/go-yaml InterfaceMarshaler.
func (f Failure) MarshalYAML() (any, error) { return f.view(), nil }

// LogValue implements [slog.LogValuer].
func (f Failure) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("unit", f.Unit),
		slog.String("file", f.File),
		slog.Any("error", f.Err),
	)
}

// Index is the union of the declarations of a batch of units. It is built
// once by [Collect] and only read afterwards.
type Index struct {
	Classes rap.Set[string]
	Files   rap.Set[string]
}

// NewIndex returns the index of units.
func NewIndex(units ...*Unit) *Index {
	idx := &Index{
		Classes: make(rap.Set[string]),
		Files:   make(rap.Set[string]),
	}

	for _, u := range units {
		if u == nil {
			continue
		}

		maps.Copy(idx.Classes, u.Classes)
		maps.Copy(idx.Files, u.Files)
	}

	return idx
}

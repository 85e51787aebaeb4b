package classpath

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"nominal/internal/diag"
)

// Schema is the descriptor format version this reader understands. Packs
// must carry it; manifests may omit it.
const Schema uint16 = 1

// Manifest is a set of class descriptors. The same shape is read from
// TOML and YAML manifests and from msgpack class packs.
type Manifest struct {
	Schema  uint16      `toml:"schema" yaml:"schema" msgpack:"schema"`
	Classes []ClassDesc `toml:"class" yaml:"class" msgpack:"class"`
}

// ClassDesc describes one class. Name is the flat name: packages joined
// by '.', member classes by '$'. Type strings use the signature syntax
// accepted by ParseType.
type ClassDesc struct {
	Name        string           `toml:"name" yaml:"name" msgpack:"name"`
	Flags       []string         `toml:"flags" yaml:"flags" msgpack:"flags"`
	TypeParams  []string         `toml:"typeparams" yaml:"typeparams" msgpack:"typeparams"`
	Extends     string           `toml:"extends" yaml:"extends" msgpack:"extends"`
	Implements  []string         `toml:"implements" yaml:"implements" msgpack:"implements"`
	Fields      []FieldDesc      `toml:"field" yaml:"field" msgpack:"field"`
	Methods     []MethodDesc     `toml:"method" yaml:"method" msgpack:"method"`
	Annotations []AnnotationDesc `toml:"annotation" yaml:"annotation" msgpack:"annotation"`
}

// FieldDesc describes a field. Const, when present, is the field's
// compile-time constant.
type FieldDesc struct {
	Name        string           `toml:"name" yaml:"name" msgpack:"name"`
	Type        string           `toml:"type" yaml:"type" msgpack:"type"`
	Flags       []string         `toml:"flags" yaml:"flags" msgpack:"flags"`
	Const       any              `toml:"const" yaml:"const" msgpack:"const"`
	Annotations []AnnotationDesc `toml:"annotation" yaml:"annotation" msgpack:"annotation"`
}

// MethodDesc describes a method or, named "<init>", a constructor. An
// empty Returns means void. ParamNames may be shorter than Params or hold
// empty strings for parameters whose names were not recorded. Default is
// the default value of an annotation type element.
type MethodDesc struct {
	Name        string           `toml:"name" yaml:"name" msgpack:"name"`
	Flags       []string         `toml:"flags" yaml:"flags" msgpack:"flags"`
	TypeParams  []string         `toml:"typeparams" yaml:"typeparams" msgpack:"typeparams"`
	Params      []string         `toml:"params" yaml:"params" msgpack:"params"`
	ParamNames  []string         `toml:"paramnames" yaml:"paramnames" msgpack:"paramnames"`
	Returns     string           `toml:"returns" yaml:"returns" msgpack:"returns"`
	Throws      []string         `toml:"throws" yaml:"throws" msgpack:"throws"`
	Default     any              `toml:"default" yaml:"default" msgpack:"default"`
	Annotations []AnnotationDesc `toml:"annotation" yaml:"annotation" msgpack:"annotation"`
}

// AnnotationDesc is an annotation use. Values are interpreted against the
// element types of the annotation type: strings name enum constants or
// class types where the element wants those, lists fill arrays and
// tables nest annotations.
type AnnotationDesc struct {
	Type   string         `toml:"type" yaml:"type" msgpack:"type"`
	Values map[string]any `toml:"values" yaml:"values" msgpack:"values"`
}

// Format is the encoding of a class path entry.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
	FormatPack
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatPack:
		return "pack"
	}
	return "unknown"
}

// PackExt is the file extension of class packs.
const PackExt = ".ntp"

// FormatOf picks the format from a file name.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case PackExt:
		return FormatPack
	}
	return FormatUnknown
}

// ErrUnknownFormat is returned for class path entries of no known format.
var ErrUnknownFormat = errors.New("unknown class path entry format")

// Decode reads a manifest in the given format.
func Decode(format Format, data []byte) (*Manifest, error) {
	var m Manifest
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &m)
		if err != nil {
			return nil, fmt.Errorf("failed to parse TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return nil, diag.Err(diag.ClpReadError, fmt.Sprintf("unknown keys %v", undecoded))
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case FormatPack:
		return ReadPack(bytes.NewReader(data))
	default:
		return nil, ErrUnknownFormat
	}
	if m.Schema != 0 && m.Schema != Schema {
		return nil, diag.Err(diag.ClpSchemaMismatch, m.Schema, Schema)
	}
	return &m, nil
}

// ReadFile reads one class path entry.
func ReadFile(path string) (*Manifest, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// ReadPack decodes a class pack.
func ReadPack(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := msgpack.NewDecoder(r).Decode(&m); err != nil {
		return nil, diag.Err(diag.ClpReadError, err)
	}
	if m.Schema != Schema {
		return nil, diag.Err(diag.ClpSchemaMismatch, m.Schema, Schema)
	}
	return &m, nil
}

// WritePack encodes m as a class pack stamped with the current schema.
func WritePack(w io.Writer, m *Manifest) error {
	out := *m
	out.Schema = Schema
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	enc.UseCompactInts(true)
	return enc.Encode(&out)
}

// WritePackFile writes a class pack next to its final location and moves
// it into place.
func WritePackFile(path string, m *Manifest) error {
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*"+PackExt)
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if err := WritePack(f, m); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Entry is a decoded class path entry.
type Entry struct {
	Path     string
	Manifest *Manifest
}

// ReadAll decodes the entries in parallel with at most jobs readers and
// returns them in path order. The first failure cancels the rest.
func ReadAll(ctx context.Context, paths []string, jobs int) ([]Entry, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Entry, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			m, err := ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = Entry{Path: path, Manifest: m}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

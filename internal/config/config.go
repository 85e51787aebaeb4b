// Package config loads session options from nominal.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"nominal/internal/diag"
	"nominal/internal/trace"
	"nominal/internal/types"
)

// FileName is the configuration file looked up by Find.
const FileName = "nominal.toml"

// Language selects the language level the engine honors.
type Language struct {
	AllowBoxing           bool `toml:"allow_boxing"`
	AllowCovariantReturns bool `toml:"allow_covariant_returns"`
	AllowDefaultMethods   bool `toml:"allow_default_methods"`
	AllowGenerics         bool `toml:"allow_generics"`
}

// Cache bounds the engine's caches.
type Cache struct {
	ImplementationCacheSize int `toml:"implementation_cache_size"`
}

// Trace configures the session tracer.
type Trace struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Options is the content of nominal.toml.
type Options struct {
	Language  Language `toml:"language"`
	Cache     Cache    `toml:"cache"`
	Trace     Trace    `toml:"trace"`
	Classpath []string `toml:"classpath"`
	// NoCore leaves the embedded core library off the class path.
	NoCore bool `toml:"no_core"`
}

// Default enables the full language with tracing off.
func Default() Options {
	d := types.DefaultOptions()
	return Options{
		Language: Language{
			AllowBoxing:           d.AllowBoxing,
			AllowCovariantReturns: d.AllowCovariantReturns,
			AllowDefaultMethods:   d.AllowDefaultMethods,
			AllowGenerics:         d.AllowGenerics,
		},
		Cache: Cache{ImplementationCacheSize: d.ImplementationCacheSize},
		Trace: Trace{Level: "off", Mode: "stream", Format: "auto", Output: "-"},
	}
}

// Load reads path over the defaults. Keys the file leaves out keep their
// default values; unknown keys are an error.
func Load(path string) (Options, error) {
	opts := Default()
	meta, err := toml.DecodeFile(path, &opts)
	if err != nil {
		return Options{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, fmt.Errorf("%s: %w", path, diag.Err(diag.CfgUnknownKey, strings.Join(keys, ", ")))
	}
	if err := opts.Validate(); err != nil {
		return Options{}, fmt.Errorf("%s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, p := range opts.Classpath {
		if !filepath.IsAbs(p) {
			opts.Classpath[i] = filepath.Join(base, filepath.FromSlash(p))
		}
	}
	return opts, nil
}

// Validate checks values the decoder cannot.
func (o Options) Validate() error {
	if o.Cache.ImplementationCacheSize < 0 {
		return diag.Err(diag.CfgInvalid, "cache.implementation_cache_size", o.Cache.ImplementationCacheSize)
	}
	if _, err := trace.ParseLevel(o.Trace.Level); err != nil {
		return diag.Err(diag.CfgInvalid, "trace.level", err)
	}
	if _, err := trace.ParseMode(o.Trace.Mode); err != nil {
		return diag.Err(diag.CfgInvalid, "trace.mode", err)
	}
	if _, err := trace.ParseFormat(o.Trace.Format); err != nil {
		return diag.Err(diag.CfgInvalid, "trace.format", err)
	}
	return nil
}

// Types converts the language and cache settings to engine options.
func (o Options) Types() types.Options {
	return types.Options{
		AllowBoxing:             o.Language.AllowBoxing,
		AllowCovariantReturns:   o.Language.AllowCovariantReturns,
		AllowDefaultMethods:     o.Language.AllowDefaultMethods,
		AllowGenerics:           o.Language.AllowGenerics,
		ImplementationCacheSize: o.Cache.ImplementationCacheSize,
	}
}

// TraceConfig converts the trace settings. Validate must have passed.
func (o Options) TraceConfig() trace.Config {
	level, _ := trace.ParseLevel(o.Trace.Level)
	mode, _ := trace.ParseMode(o.Trace.Mode)
	format, _ := trace.ParseFormat(o.Trace.Format)
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: o.Trace.Output}
}

// Find walks up from startDir to locate nominal.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest nominal.toml above startDir, or the defaults
// when there is none.
func Discover(startDir string) (Options, string, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return Default(), "", err
	}
	opts, err := Load(path)
	return opts, path, err
}

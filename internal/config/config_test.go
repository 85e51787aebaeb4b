package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"nominal/internal/diag"
	"nominal/internal/trace"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
classpath = ["lib/extra.toml", "/abs/pack.ntp"]

[language]
allow_boxing = false

[cache]
implementation_cache_size = 16

[trace]
level = "debug"
format = "ndjson"
`)
	opts, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.Language.AllowBoxing {
		t.Errorf("allow_boxing not applied")
	}
	if !opts.Language.AllowGenerics || !opts.Language.AllowDefaultMethods {
		t.Errorf("unset keys lost their defaults: %+v", opts.Language)
	}
	if opts.Types().ImplementationCacheSize != 16 {
		t.Errorf("cache size = %d", opts.Types().ImplementationCacheSize)
	}
	tc := opts.TraceConfig()
	if tc.Level != trace.LevelDebug || tc.Format != trace.FormatNDJSON || tc.Mode != trace.ModeStream {
		t.Errorf("trace config = %+v", tc)
	}
	if want := filepath.Join(dir, "lib", "extra.toml"); opts.Classpath[0] != want {
		t.Errorf("relative class path entry = %s, want %s", opts.Classpath[0], want)
	}
	if opts.Classpath[1] != "/abs/pack.ntp" {
		t.Errorf("absolute class path entry = %s", opts.Classpath[1])
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		code    diag.Code
	}{
		{"unknown key", "[language]\nallow_lambdas = true\n", diag.CfgUnknownKey},
		{"bad level", "[trace]\nlevel = \"loud\"\n", diag.CfgInvalid},
		{"negative cache", "[cache]\nimplementation_cache_size = -1\n", diag.CfgInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(path)
			var fe *diag.FragmentError
			if !errors.As(err, &fe) || fe.Fragment.Code != tt.code {
				t.Fatalf("Load() = %v, want code %v", err, tt.code)
			}
		})
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	want := writeConfig(t, root, "")
	deep := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(deep, 0o755); err != nil {
		t.Fatal(err)
	}
	got, ok, err := Find(deep)
	if err != nil || !ok {
		t.Fatalf("Find() = %q, %v, %v", got, ok, err)
	}
	if got != want {
		t.Fatalf("Find() = %q, want %q", got, want)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	opts, path, err := Discover(t.TempDir())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if path != "" && filepath.Base(path) != FileName {
		t.Fatalf("Discover found %q", path)
	}
	if path == "" && opts.Types() != Default().Types() {
		t.Fatalf("defaults not used: %+v", opts)
	}
}

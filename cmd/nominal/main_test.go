package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the CLI with args and returns stdout and the error.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestRelationCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"subtype", "lang.Integer", "lang.Number"}, "true"},
		{[]string{"subtype", "lang.Number", "lang.Integer"}, "false"},
		{[]string{"subtype", "util.ArrayList<lang.String>", "util.List<? extends lang.CharSequence>"}, "true"},
		{[]string{"same", "util.List<lang.String>", "util.List<lang.String>"}, "true"},
		{[]string{"castable", "lang.Object", "lang.String"}, "true"},
		{[]string{"castable", "int", "boolean"}, "false"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Fatalf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"lub", "lang.Integer", "lang.Integer"}, "lang.Integer"},
		{[]string{"glb", "util.ArrayList<lang.String>", "util.List<lang.String>"}, "util.ArrayList<lang.String>"},
		{[]string{"erasure", "util.Map<lang.String,util.List<lang.Integer>>"}, "util.Map"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if got := strings.TrimSpace(out); got != tt.want {
				t.Fatalf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListingCommands(t *testing.T) {
	out, err := run(t, "closure", "util.ArrayList<lang.String>")
	if err != nil {
		t.Fatalf("closure: %v", err)
	}
	for _, want := range []string{"util.List<lang.String>", "lang.Iterable<lang.String>", "lang.Object"} {
		if !strings.Contains(out, want) {
			t.Errorf("closure output lacks %s:\n%s", want, out)
		}
	}

	out, err = run(t, "members", "util.function.Supplier<lang.String>")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if !strings.Contains(out, "Supplier.get") || !strings.Contains(out, "lang.String") {
		t.Errorf("members output:\n%s", out)
	}

	out, err = run(t, "descriptor", "util.function.Function<lang.String,lang.Integer>")
	if err != nil {
		t.Fatalf("descriptor: %v", err)
	}
	if !strings.Contains(out, "apply") || !strings.Contains(out, "lang.Integer") {
		t.Errorf("descriptor output:\n%s", out)
	}
	if !strings.Contains(out, "params") || !strings.Contains(out, " t\n") {
		t.Errorf("descriptor output lacks the recorded parameter name:\n%s", out)
	}

	out, err = run(t, "capture", "util.List<? extends lang.Number>")
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if !strings.Contains(out, "extends lang.Number") {
		t.Errorf("capture output:\n%s", out)
	}
}

func TestQueryErrors(t *testing.T) {
	tests := [][]string{
		{"subtype", "lang.Missing", "lang.Object"},
		{"subtype", "util.List<", "lang.Object"},
		{"descriptor", "lang.Object"},
		{"members", "int"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			if _, err := run(t, args...); err == nil {
				t.Fatalf("no error")
			}
		})
	}
}

func TestPackThenQuery(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "shapes.yaml")
	err := os.WriteFile(manifest, []byte(`
schema: 1
class:
  - name: geo.Shape
    flags: [public, interface]
  - name: geo.Circle
    flags: [public]
    implements: [geo.Shape]
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	pack := filepath.Join(dir, "shapes.ntp")
	if _, err := run(t, "pack", manifest, "-o", pack); err != nil {
		t.Fatalf("pack: %v", err)
	}

	out, err := run(t, "--classpath", pack, "subtype", "geo.Circle", "geo.Shape")
	if err != nil {
		t.Fatalf("subtype: %v", err)
	}
	if strings.TrimSpace(out) != "true" {
		t.Fatalf("output = %q", out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, "version", "--format", "json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if payload.Tool != "nominal" || payload.Version == "" {
		t.Fatalf("payload = %+v", payload)
	}
}

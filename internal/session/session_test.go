package session

import (
	"os"
	"path/filepath"
	"testing"

	"nominal/internal/classpath"
	"nominal/internal/config"
	"nominal/internal/trace"
)

const extraManifest = `
schema = 1

[[class]]
name = "app.Widget"
flags = ["public"]
implements = ["lang.Runnable"]

[[class.method]]
name = "run"
flags = ["public"]
`

func TestEventsCarrySessionID(t *testing.T) {
	ring := trace.NewRingTracer(256, trace.LevelDebug)
	s := New(config.Default(), ring)
	if err := s.AddCore(); err != nil {
		t.Fatalf("AddCore: %v", err)
	}
	if _, err := s.Class("lang.String"); err != nil {
		t.Fatalf("Class: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	events := ring.Snapshot()
	if len(events) == 0 {
		t.Fatal("no events recorded")
	}
	completions := 0
	for _, ev := range events {
		if ev.Session != s.ID.String() {
			t.Fatalf("event %s has session %q, want %q", ev.Name, ev.Session, s.ID)
		}
		if ev.Scope == trace.ScopeCompletion {
			completions++
		}
	}
	if completions == 0 {
		t.Errorf("no completion events recorded")
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	a := New(config.Default(), nil)
	b := New(config.Default(), nil)
	if a.ID == b.ID {
		t.Fatalf("sessions share ID %s", a.ID)
	}
	if err := a.AddCore(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Class("lang.Object"); err != nil {
		t.Fatalf("Class: %v", err)
	}
	if _, err := b.Class("lang.Object"); err == nil {
		t.Fatalf("class leaked between sessions")
	}
}

func TestOpenLoadsClasspath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "widget.toml")
	if err := os.WriteFile(path, []byte(extraManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	opts := config.Default()
	opts.Classpath = []string{path}
	s, err := Open(t.Context(), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	widget, err := s.Class("app.Widget")
	if err != nil {
		t.Fatalf("Class: %v", err)
	}
	if widget.Origin != path {
		t.Errorf("origin = %q, want %q", widget.Origin, path)
	}
	runnable, err := s.ParseType("lang.Runnable")
	if err != nil {
		t.Fatal(err)
	}
	if !s.Types.IsSubtype(widget.Type(), runnable) {
		t.Errorf("%s is not a subtype of %s", widget.Type(), runnable)
	}
	if s.Bag.HasErrors() {
		t.Errorf("unexpected diagnostics: %v", s.Bag.Items())
	}
}

func TestOpenWithoutCore(t *testing.T) {
	opts := config.Default()
	opts.NoCore = true
	s, err := Open(t.Context(), opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if s.Loader.Has(s.Names.FromString("lang.Object")) {
		t.Fatal("core library loaded with no_core")
	}
}

func TestOpenRejectsMissingEntry(t *testing.T) {
	opts := config.Default()
	opts.Classpath = []string{filepath.Join(t.TempDir(), "missing"+classpath.PackExt)}
	if _, err := Open(t.Context(), opts); err == nil {
		t.Fatal("Open succeeded with a missing class path entry")
	}
}

func TestOpenUsesContextTracer(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelPhase)
	ctx := trace.WithTracer(t.Context(), ring)
	s, err := Open(ctx, config.Default())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var sessions int
	for _, ev := range ring.Snapshot() {
		if ev.Scope == trace.ScopeSession && ev.Session == s.ID.String() {
			sessions++
		}
	}
	if sessions == 0 {
		t.Fatal("context tracer saw no session events")
	}
}

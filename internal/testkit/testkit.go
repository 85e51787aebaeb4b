// Package testkit builds sessions for tests from inline class manifests.
package testkit

import (
	"testing"

	"nominal/internal/classpath"
	"nominal/internal/code"
	"nominal/internal/config"
	"nominal/internal/names"
	"nominal/internal/session"
)

// Session creates a session over the core library and the given TOML
// manifests, added in order.
func Session(tb testing.TB, manifests ...string) *session.Session {
	tb.Helper()
	return SessionWith(tb, config.Default(), classpath.FormatTOML, manifests...)
}

// SessionYAML is Session for YAML manifests.
func SessionYAML(tb testing.TB, manifests ...string) *session.Session {
	tb.Helper()
	return SessionWith(tb, config.Default(), classpath.FormatYAML, manifests...)
}

// SessionWith creates a session with explicit options. The core library
// is added unless opts disables it.
func SessionWith(tb testing.TB, opts config.Options, format classpath.Format, manifests ...string) *session.Session {
	tb.Helper()
	s := session.New(opts, nil)
	if !opts.NoCore {
		if err := s.AddCore(); err != nil {
			tb.Fatalf("core library: %v", err)
		}
	}
	for i, text := range manifests {
		m, err := classpath.Decode(format, []byte(text))
		if err != nil {
			tb.Fatalf("manifest %d: %v", i, err)
		}
		s.AddManifest(m, "inline")
	}
	tb.Cleanup(func() { _ = s.Close() })
	return s
}

// Type parses a type in signature syntax.
func Type(tb testing.TB, s *session.Session, text string) code.Type {
	tb.Helper()
	t, err := s.ParseType(text)
	if err != nil {
		tb.Fatalf("parse %q: %v", text, err)
	}
	return t
}

// Types parses several types.
func Types(tb testing.TB, s *session.Session, texts ...string) []code.Type {
	tb.Helper()
	out := make([]code.Type, len(texts))
	for i, text := range texts {
		out[i] = Type(tb, s, text)
	}
	return out
}

// Class completes a class that must exist.
func Class(tb testing.TB, s *session.Session, flat string) *code.ClassSymbol {
	tb.Helper()
	c, err := s.Class(flat)
	if err != nil {
		tb.Fatalf("class %s: %v", flat, err)
	}
	return c
}

// Method finds the only method of c with the given name.
func Method(tb testing.TB, s *session.Session, c *code.ClassSymbol, name string) *code.MethodSymbol {
	tb.Helper()
	n, ok := s.Names.Lookup(name)
	if !ok {
		tb.Fatalf("%s has no method %s", c, name)
	}
	return only(tb, c, n)
}

func only(tb testing.TB, c *code.ClassSymbol, n *names.Name) *code.MethodSymbol {
	tb.Helper()
	var found *code.MethodSymbol
	for sym := range c.Members().SymbolsByName(n, nil) {
		m, ok := sym.(*code.MethodSymbol)
		if !ok {
			continue
		}
		if found != nil {
			tb.Fatalf("%s has several methods %s", c, n)
		}
		found = m
	}
	if found == nil {
		tb.Fatalf("%s has no method %s", c, n)
	}
	return found
}

// NoErrors fails when the session collected error diagnostics.
func NoErrors(tb testing.TB, s *session.Session) {
	tb.Helper()
	if s.Bag.HasErrors() {
		for _, d := range s.Bag.Items() {
			tb.Errorf("%s", d)
		}
		tb.FailNow()
	}
}

// Package session wires the parts of one compilation session: the name
// table, the class path loader, the symbol table, the type engine, the
// tracer and the diagnostics bag.
//
// A session is single-threaded. Concurrent work uses one session per
// goroutine; the session ID on every trace event tells them apart.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"nominal/internal/classpath"
	"nominal/internal/code"
	"nominal/internal/config"
	"nominal/internal/diag"
	"nominal/internal/names"
	"nominal/internal/symtab"
	"nominal/internal/trace"
	"nominal/internal/types"
)

// MaxDiagnostics bounds the session's diagnostics bag.
const MaxDiagnostics = 1000

// Session owns every table of one compilation.
type Session struct {
	ID     uuid.UUID
	Names  *names.Table
	Loader *classpath.Loader
	Syms   *symtab.Symtab
	Types  *types.Types
	Tracer trace.Tracer
	Bag    *diag.Bag

	span       *trace.Span
	ownsTracer bool
}

// New creates a session with an empty class path. tracer may be nil; it
// is stamped with the session ID and stays open after Close.
func New(opts config.Options, tracer trace.Tracer) *Session {
	id := uuid.New()
	if tracer == nil {
		tracer = trace.Nop
	}
	tracer = trace.WithSession(tracer, id.String())
	bag := diag.NewBag(MaxDiagnostics)
	tab := names.NewTable()
	loader := classpath.NewLoader(tab, diag.NewDedupReporter(diag.BagReporter{Bag: bag}), tracer)
	syms := symtab.New(tab, loader)
	t := types.New(syms, opts.Types(), tracer)
	loader.Bind(syms, t)
	return &Session{
		ID:     id,
		Names:  tab,
		Loader: loader,
		Syms:   syms,
		Types:  t,
		Tracer: tracer,
		Bag:    bag,
		span:   trace.Begin(tracer, trace.ScopeSession, "session", 0),
	}
}

// Open creates a session from opts: a tracer built from the trace
// settings, or the one carried by ctx when tracing is off, the core
// library unless disabled, then the configured class path entries in
// order.
func Open(ctx context.Context, opts config.Options) (*Session, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	tracer, err := trace.New(opts.TraceConfig())
	if err != nil {
		return nil, err
	}
	owned := tracer.Enabled()
	if !owned {
		tracer = trace.FromContext(ctx)
	}
	s := New(opts, tracer)
	s.ownsTracer = owned
	if !opts.NoCore {
		if err := s.AddCore(); err != nil {
			return nil, errors.Join(err, s.Close())
		}
	}
	if err := s.LoadClasspath(ctx, opts.Classpath); err != nil {
		return nil, errors.Join(err, s.Close())
	}
	return s, nil
}

// AddCore puts the embedded core library on the class path.
func (s *Session) AddCore() error {
	core, err := classpath.Core()
	if err != nil {
		return fmt.Errorf("core library: %w", err)
	}
	s.Loader.Add(core, classpath.CoreOrigin)
	return nil
}

// AddManifest puts m on the class path under the given origin.
func (s *Session) AddManifest(m *classpath.Manifest, origin string) {
	s.Loader.Add(m, origin)
}

// LoadClasspath reads the entries in parallel and adds them in order, so
// an earlier entry wins over a later one declaring the same class.
func (s *Session) LoadClasspath(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	sp := trace.Begin(s.Tracer, trace.ScopeSession, "classpath", s.span.ID())
	entries, err := classpath.ReadAll(ctx, paths, 0)
	if err != nil {
		sp.End(err.Error())
		return err
	}
	for _, e := range entries {
		s.Loader.Add(e.Manifest, e.Path)
	}
	sp.End(fmt.Sprintf("%d entries, %d classes", len(entries), s.Loader.Len()))
	return nil
}

// ParseType reads a type in class path signature syntax.
func (s *Session) ParseType(text string) (code.Type, error) {
	return classpath.ParseType(s.Syms, text)
}

// Class completes the class with the given flat name. A class missing
// from the class path is an error.
func (s *Session) Class(flat string) (*code.ClassSymbol, error) {
	c := s.Syms.EnterClass(s.Names.FromString(flat))
	if err := c.Complete(); err != nil {
		return nil, err
	}
	return c, nil
}

// Close ends the session span and flushes the tracer. A tracer Open
// created is closed as well; one supplied by the caller is not.
func (s *Session) Close() error {
	s.span.End(fmt.Sprintf("%d classes entered", s.Syms.ClassCount()))
	if err := s.Tracer.Flush(); err != nil {
		return err
	}
	if !s.ownsTracer {
		return nil
	}
	return s.Tracer.Close()
}

// Package types is the type engine: subtyping, sameness, containment,
// conversions, substitution, erasure, capture conversion, supertype
// closures with their least upper and greatest lower bounds, and the
// member, override and functional-descriptor queries built on them.
//
// A Types value belongs to one session. It caches types and symbols of
// that session's symbol table and is not safe for concurrent use.
package types

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"nominal/internal/code"
	"nominal/internal/names"
	"nominal/internal/symtab"
	"nominal/internal/trace"
)

// Options selects the language features the relations honor.
type Options struct {
	AllowBoxing           bool
	AllowCovariantReturns bool
	AllowDefaultMethods   bool
	AllowGenerics         bool
	// ImplementationCacheSize bounds the method implementation cache.
	ImplementationCacheSize int
}

// DefaultOptions enables every feature.
func DefaultOptions() Options {
	return Options{
		AllowBoxing:             true,
		AllowCovariantReturns:   true,
		AllowDefaultMethods:     true,
		AllowGenerics:           true,
		ImplementationCacheSize: 1024,
	}
}

// Types answers type queries against one symbol table.
type Types struct {
	syms   *symtab.Symtab
	names  *names.Table
	opts   Options
	tracer trace.Tracer

	captured int

	closures   map[code.Type][]code.Type
	derivedRaw map[code.Type]bool
	members    map[membersKey]*membersEntry
	impls      *lru.Cache[implKey, implEntry]
	descs      map[code.Symbol]*descEntry
	arraySuper code.Type

	// recursion guards, one per relation that can revisit a pair
	containsCache []typePair
	disjointCache []typePair
	sameTVCache   []typePair
	mergeCache    []typePair
	seenMembers   []code.Symbol
}

// New creates an engine over syms. tracer may be nil.
func New(syms *symtab.Symtab, opts Options, tracer trace.Tracer) *Types {
	if tracer == nil {
		tracer = trace.Nop
	}
	size := opts.ImplementationCacheSize
	if size <= 0 {
		size = DefaultOptions().ImplementationCacheSize
	}
	impls, err := lru.New[implKey, implEntry](size)
	if err != nil {
		panic(fmt.Sprintf("types: implementation cache: %v", err))
	}
	return &Types{
		syms:       syms,
		names:      syms.Names,
		opts:       opts,
		tracer:     tracer,
		closures:   make(map[code.Type][]code.Type),
		derivedRaw: make(map[code.Type]bool),
		members:    make(map[membersKey]*membersEntry),
		impls:      impls,
		descs:      make(map[code.Symbol]*descEntry),
	}
}

// Symtab is the table the engine was built over.
func (t *Types) Symtab() *symtab.Symtab { return t.syms }

// Options returns the feature switches in effect.
func (t *Types) Options() Options { return t.opts }

func (t *Types) span(name string) *trace.Span {
	return trace.Begin(t.tracer, trace.ScopeNode, name, 0)
}

func (t *Types) tracing() bool { return t.tracer.Enabled() }

type typePair struct{ a, b code.Type }

// enter pushes the pair onto a recursion guard. It reports false when an
// equal pair is already on the guard.
func (t *Types) enter(guard *[]typePair, a, b code.Type, strict bool) bool {
	for _, p := range *guard {
		if t.sameType(p.a, a, strict) && t.sameType(p.b, b, strict) {
			return false
		}
	}
	*guard = append(*guard, typePair{a, b})
	return true
}

func leave(guard *[]typePair) { *guard = (*guard)[:len(*guard)-1] }

// Warner collects unchecked warnings raised by conversion checks. A nil
// *Warner discards them.
type Warner struct {
	Unchecked bool
	// Silent is set when the unchecked conversion is to a reifiable type.
	Silent bool
}

func (w *Warner) warn() {
	if w != nil {
		w.Unchecked = true
	}
}

func (w *Warner) silentWarn() {
	if w != nil {
		w.Silent = true
	}
}

func (w *Warner) clear() {
	if w != nil {
		*w = Warner{}
	}
}

// unannotated strips type annotations, which no relation looks at.
func unannotated(ty code.Type) code.Type { return code.Unannotated(ty) }

func sameSlice(a, b []code.Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (t *Types) objectSym() code.Symbol { return t.syms.ObjectType.TSym() }

func isTag(ty code.Type, tags ...code.TypeTag) bool {
	tag := ty.Tag()
	for _, x := range tags {
		if tag == x {
			return true
		}
	}
	return false
}

// Package code models the symbols and types of a class-based object-oriented
// language: packages, classes, members, type variables and the closed family
// of type representations the engine reasons about.
//
// Symbols may be created before their contents are known. A symbol carries a
// Completer that fills it in on first use; accessors such as Flags, Members
// and Type arguments trigger completion transparently.
package code

import (
	"errors"
	"fmt"
	"strings"

	"nominal/internal/diag"
	"nominal/internal/flags"
	"nominal/internal/names"
	"nominal/internal/scope"
)

// Symbol is the common interface of every named entity.
type Symbol interface {
	Kind() Kind
	Name() *names.Name
	Owner() Symbol
	Type() Type
	SetType(t Type)

	// Flags completes the symbol before answering; RawFlags does not.
	Flags() flags.Flags
	RawFlags() flags.Flags
	SetFlags(f flags.Flags)
	AddFlags(f flags.Flags)

	Complete() error
	SetCompleter(c Completer)
	CompletionState() CompletionState
	Failure() *CompletionFailure

	Metadata() *Metadata
	Attribute(annoType Symbol) *Compound

	IsStatic() bool
	IsInterface() bool
	IsConstructor() bool
	IsLocal() bool
	EnclClass() *ClassSymbol
	OutermostClass() *ClassSymbol
	Package() *PackageSymbol
	QualifiedName() *names.Name
	FlatName() *names.Name
	String() string

	base() *symbolBase
}

// Members is the symbol table type used by classes and packages.
type Members = scope.Scope[Symbol]

// CompletionState tracks lazy completion of a symbol.
type CompletionState uint8

const (
	Completed CompletionState = iota
	Uncompleted
	Completing
	Failed
)

func (s CompletionState) String() string {
	switch s {
	case Completed:
		return "complete"
	case Uncompleted:
		return "uncompleted"
	case Completing:
		return "completing"
	case Failed:
		return "failed"
	default:
		return "invalid"
	}
}

// Completer fills in a symbol on first use.
type Completer interface {
	Complete(sym Symbol) error
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(sym Symbol) error

func (f CompleterFunc) Complete(sym Symbol) error { return f(sym) }

// ErrCyclicCompletion is returned when a symbol is asked to complete while
// its own completer is still running.
var ErrCyclicCompletion = errors.New("cyclic completion")

// CompletionFailure records why a symbol could not be completed.
type CompletionFailure struct {
	Sym      Symbol
	Fragment diag.Fragment
	Err      error
}

func (e *CompletionFailure) Error() string {
	return fmt.Sprintf("cannot complete %s: %s", e.Sym.QualifiedName(), e.Fragment)
}

func (e *CompletionFailure) Unwrap() error { return e.Err }

// NewCompletionFailure builds a failure for sym from a fragment.
func NewCompletionFailure(sym Symbol, f diag.Fragment) *CompletionFailure {
	return &CompletionFailure{Sym: sym, Fragment: f}
}

type symbolBase struct {
	self      Symbol
	kind      Kind
	name      *names.Name
	owner     Symbol
	typ       Type
	flags     flags.Flags
	state     CompletionState
	completer Completer
	failure   *CompletionFailure
	meta      *Metadata
}

func (b *symbolBase) init(self Symbol, kind Kind, fl flags.Flags, name *names.Name, typ Type, owner Symbol) {
	b.self = self
	b.kind = kind
	b.flags = fl
	b.name = name
	b.typ = typ
	b.owner = owner
}

func (b *symbolBase) base() *symbolBase { return b }

func (b *symbolBase) Kind() Kind             { return b.kind }
func (b *symbolBase) Name() *names.Name      { return b.name }
func (b *symbolBase) Owner() Symbol          { return b.owner }
func (b *symbolBase) Type() Type             { return b.typ }
func (b *symbolBase) SetType(t Type)         { b.typ = t }
func (b *symbolBase) RawFlags() flags.Flags  { return b.flags }
func (b *symbolBase) SetFlags(f flags.Flags) { b.flags = f }
func (b *symbolBase) AddFlags(f flags.Flags) { b.flags |= f }

func (b *symbolBase) Flags() flags.Flags {
	_ = b.self.Complete()
	return b.flags
}

func (b *symbolBase) CompletionState() CompletionState { return b.state }

func (b *symbolBase) Failure() *CompletionFailure { return b.failure }

// SetCompleter installs c and marks the symbol uncompleted. A nil completer
// marks the symbol complete.
func (b *symbolBase) SetCompleter(c Completer) {
	b.completer = c
	if c == nil {
		b.state = Completed
		return
	}
	b.state = Uncompleted
	b.failure = nil
}

// Complete runs the completer once. A failed completion degrades the symbol
// and is remembered; asking again returns the same failure. Asking while the
// completer runs reports a cycle instead of recursing.
func (b *symbolBase) Complete() error {
	switch b.state {
	case Completed:
		return nil
	case Failed:
		return b.failure
	case Completing:
		return &CompletionFailure{Sym: b.self, Fragment: diag.Frag(diag.CmpCyclic, b.self.QualifiedName()), Err: ErrCyclicCompletion}
	}
	c := b.completer
	b.completer = nil
	b.state = Completing
	if err := c.Complete(b.self); err != nil {
		var cf *CompletionFailure
		if !errors.As(err, &cf) || cf.Sym != b.self {
			cf = &CompletionFailure{Sym: b.self, Fragment: diag.Frag(diag.CmpClassNotFound, b.self.QualifiedName()), Err: err}
		}
		b.state = Failed
		b.failure = cf
		if d, ok := b.self.(interface{ degrade() }); ok {
			d.degrade()
		}
		return cf
	}
	b.state = Completed
	return nil
}

func (b *symbolBase) Metadata() *Metadata {
	if b.meta == nil {
		b.meta = newMetadata(b.self)
	}
	return b.meta
}

// Attribute finds the declaration annotation whose type symbol is annoType.
func (b *symbolBase) Attribute(annoType Symbol) *Compound {
	_ = b.self.Complete()
	if b.meta == nil {
		return nil
	}
	for _, c := range b.meta.DeclarationAttributes() {
		if c.Type() != nil && c.Type().TSym() == annoType {
			return c
		}
	}
	return nil
}

func (b *symbolBase) IsStatic() bool {
	if b.self.Flags()&flags.Static != 0 {
		return true
	}
	return b.owner != nil && b.owner.Flags()&flags.Interface != 0 &&
		b.kind != KindMethod && b.kind != KindOperator && b.name.String() != "this"
}

func (b *symbolBase) IsInterface() bool {
	return b.self.Flags()&flags.Interface != 0
}

func (b *symbolBase) IsConstructor() bool {
	return b.kind == KindMethod && b.name.String() == "<init>"
}

// IsLocal reports whether the symbol is declared inside a method or a
// variable initializer, directly or through local classes.
func (b *symbolBase) IsLocal() bool {
	if b.owner == nil {
		return false
	}
	switch b.owner.Kind() {
	case KindVar, KindMethod, KindOperator:
		return true
	case KindClass:
		return b.owner.IsLocal()
	}
	return false
}

// EnclClass is the closest enclosing class, the symbol itself included.
func (b *symbolBase) EnclClass() *ClassSymbol {
	for s := b.self; s != nil; s = s.Owner() {
		if c, ok := s.(*ClassSymbol); ok {
			return c
		}
	}
	return nil
}

// OutermostClass is the top-level class enclosing the symbol.
func (b *symbolBase) OutermostClass() *ClassSymbol {
	var prev *ClassSymbol
	for s := b.self; s != nil; s = s.Owner() {
		if _, ok := s.(*PackageSymbol); ok {
			break
		}
		if c, ok := s.(*ClassSymbol); ok {
			prev = c
		}
	}
	return prev
}

func (b *symbolBase) Package() *PackageSymbol {
	for s := b.self; s != nil; s = s.Owner() {
		if p, ok := s.(*PackageSymbol); ok {
			return p
		}
	}
	return nil
}

func (b *symbolBase) QualifiedName() *names.Name { return b.name }

func (b *symbolBase) FlatName() *names.Name { return b.self.QualifiedName() }

func (b *symbolBase) String() string { return b.name.String() }

// IsInheritedIn reports whether sym's access allows it to be inherited into
// clazz. Package-private members are inherited only along a superclass chain
// that stays inside the declaring package. supertype is the engine's
// supertype function.
func IsInheritedIn(sym Symbol, clazz Symbol, supertype func(Type) Type) bool {
	fl := sym.RawFlags()
	if m, ok := sym.(*MethodSymbol); ok && fl&flags.AccessFlags == flags.Public {
		return !m.owner.IsInterface() || clazz == m.owner || fl&flags.Static == 0
	}
	switch fl & flags.AccessFlags {
	case flags.Private:
		return sym.Owner() == clazz
	case flags.Protected:
		// interfaces are modelled as extending Object
		return clazz.Flags()&flags.Interface == 0
	case 0:
		pkg := sym.Package()
		for sup := clazz; sup != nil && sup != sym.Owner(); {
			for sup.Type() != nil && sup.Type().Tag() == TagTypeVar {
				ub := sup.Type().UpperBound()
				if ub == nil || ub.TSym() == nil {
					return true
				}
				sup = ub.TSym()
			}
			if sup.Type() == nil || sup.Type().IsErroneous() {
				return true
			}
			if sup.Flags()&flags.Compound == 0 && sup.Package() != pkg {
				return false
			}
			st := supertype(sup.Type())
			if st == nil || st.TSym() == nil || (st.Tag() != TagClass && st.Tag() != TagTypeVar) {
				break
			}
			sup = st.TSym()
		}
		return clazz.Flags()&flags.Interface == 0
	default:
		return true
	}
}

// IsOverridableIn reports whether a method with sym's access can be
// overridden from within origin.
func IsOverridableIn(sym Symbol, origin Symbol) bool {
	fl := sym.RawFlags()
	switch fl & flags.AccessFlags {
	case flags.Private:
		return false
	case flags.Public:
		return !sym.Owner().IsInterface() || fl&flags.Static == 0
	case flags.Protected:
		return origin.Flags()&flags.Interface == 0
	case 0:
		return sym.Package() == origin.Package() && origin.Flags()&flags.Interface == 0
	default:
		return false
	}
}

func formFullName(tab *names.Table, name *names.Name, owner Symbol) *names.Name {
	if owner == nil {
		return name
	}
	if owner.Kind() != KindError {
		switch owner.Kind() {
		case KindVar, KindMethod, KindOperator, KindTypeVar:
			return name
		}
	}
	prefix := owner.QualifiedName()
	if prefix.IsEmpty() {
		return name
	}
	return tab.FromString(prefix.String() + "." + name.String())
}

func formFlatName(tab *names.Table, name *names.Name, owner Symbol) *names.Name {
	if owner == nil {
		return name
	}
	switch owner.Kind() {
	case KindVar, KindMethod, KindOperator, KindTypeVar:
		return name
	}
	sep := "."
	if owner.Kind() == KindClass || owner.Kind() == KindError {
		sep = "$"
	}
	prefix := owner.FlatName()
	if prefix.IsEmpty() {
		return name
	}
	return tab.FromString(prefix.String() + sep + name.String())
}

// Location describes where sym lives, for messages.
func Location(sym Symbol) string {
	owner := sym.Owner()
	if owner == nil || owner.Name().IsEmpty() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(owner.Kind().String())
	sb.WriteByte(' ')
	sb.WriteString(owner.QualifiedName().String())
	return sb.String()
}

package code

import (
	"strconv"
	"strings"

	"nominal/internal/names"
)

// TypeVar is a declared type variable. Its upper bound may be an
// intersection; its lower bound is the bottom type unless the variable
// was produced by capture of a super-bounded wildcard.
type TypeVar struct {
	typeBase
	bound Type
	lower Type
	rank  int
}

// NewTypeVar creates a fresh variable that shares sym, as done when a
// generic method's variables are renamed.
func NewTypeVar(sym Symbol, bound, lower Type) *TypeVar {
	return &TypeVar{typeBase: typeBase{tag: TagTypeVar, tsym: sym}, bound: bound, lower: lower, rank: -1}
}

// UpperBound falls back to the declared variable's bound while this copy
// has none of its own.
func (v *TypeVar) UpperBound() Type {
	if (v.bound == nil || v.bound.Tag() == TagNone) && v.tsym != nil && !v.isDeclared() {
		v.bound = v.tsym.Type().UpperBound()
	}
	return v.bound
}

// isDeclared reports whether v is the type of its own symbol.
func (v *TypeVar) isDeclared() bool {
	switch t := v.tsym.Type().(type) {
	case *TypeVar:
		return t == v
	case *CapturedType:
		return &t.TypeVar == v
	}
	return false
}

func (v *TypeVar) SetUpperBound(t Type) { v.bound = t }

func (v *TypeVar) LowerBound() Type {
	if v.lower == nil {
		return Bot
	}
	return v.lower
}

func (v *TypeVar) SetLowerBound(t Type) { v.lower = t }

func (v *TypeVar) RankField() int     { return v.rank }
func (v *TypeVar) SetRankField(r int) { v.rank = r }

func (v *TypeVar) Map(func(Type) Type) Type { return v }

func (v *TypeVar) String() string { return v.tsym.Name().String() }

// CapturedType is the fresh variable that capture conversion substitutes
// for a wildcard argument.
type CapturedType struct {
	TypeVar
	Wildcard *WildcardType
	id       int
}

// NewCapturedType creates the variable together with its symbol. id is a
// session-unique number used when printing.
func NewCapturedType(name *names.Name, owner Symbol, upper, lower Type, w *WildcardType, id int) *CapturedType {
	c := &CapturedType{Wildcard: w, id: id}
	sym := &TypeVariableSymbol{}
	sym.init(sym, KindTypeVar, 0, name, c, owner)
	c.TypeVar = TypeVar{typeBase: typeBase{tag: TagTypeVar, tsym: sym}, bound: upper, lower: lower, rank: -1}
	return c
}

func (c *CapturedType) Map(func(Type) Type) Type { return c }

func (c *CapturedType) String() string {
	return "capture#" + strconv.Itoa(c.id) + " of " + c.Wildcard.String()
}

// WildcardType is a wildcard type argument. Formal links the wildcard to
// the type parameter it instantiates, when known.
type WildcardType struct {
	typeBase
	Kind   BoundKind
	Bound  Type
	Formal *TypeVar
}

// NewWildcardType creates a wildcard over the synthetic bound class symbol.
// Unbounded wildcards carry the root class as their bound.
func NewWildcardType(bound Type, kind BoundKind, boundClass Symbol) *WildcardType {
	return &WildcardType{typeBase: typeBase{tag: TagWildcard, tsym: boundClass}, Kind: kind, Bound: bound}
}

func (w *WildcardType) IsExtendsBound() bool { return w.Kind != BoundSuper }
func (w *WildcardType) IsSuperBound() bool   { return w.Kind != BoundExtends }
func (w *WildcardType) IsUnbound() bool      { return w.Kind == BoundUnbound }

func (w *WildcardType) IsErroneous() bool {
	return w.Bound != nil && w.Bound.IsErroneous()
}

// ExtendsBound is the bound of a "? extends" wildcard, nil otherwise.
func (w *WildcardType) ExtendsBound() Type {
	if w.Kind == BoundExtends {
		return w.Bound
	}
	return nil
}

// SuperBound is the bound of a "? super" wildcard, nil otherwise.
func (w *WildcardType) SuperBound() Type {
	if w.Kind == BoundSuper {
		return w.Bound
	}
	return nil
}

// WithFormal returns a copy linked to the type parameter it instantiates.
func (w *WildcardType) WithFormal(formal *TypeVar) *WildcardType {
	cp := *w
	cp.Formal = formal
	return &cp
}

func (w *WildcardType) Map(f func(Type) Type) Type {
	if w.Bound == nil {
		return w
	}
	b := f(w.Bound)
	if b == w.Bound {
		return w
	}
	return &WildcardType{typeBase: w.typeBase, Kind: w.Kind, Bound: b, Formal: w.Formal}
}

func (w *WildcardType) String() string {
	var sb strings.Builder
	sb.WriteString(w.Kind.String())
	if w.Kind != BoundUnbound && w.Bound != nil {
		sb.WriteString(w.Bound.String())
	}
	return sb.String()
}

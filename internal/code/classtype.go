package code

import (
	"strings"

	"nominal/internal/flags"
)

// ClassType is a class or interface type, possibly parameterized and
// possibly an inner type of an enclosing instance type. The supertype,
// interface and rank fields are filled in on demand by the engine.
type ClassType struct {
	typeBase
	outer         Type
	typarams      []Type
	typaramsSet   bool
	allparams     []Type
	allparamsSet  bool
	supertype     Type
	interfaces    []Type
	interfacesSet bool
	rank          int
	constValue    any
	base          *ClassType
	erased        bool
}

// NewClassType creates a class type with fixed type arguments. A nil
// slice means no type arguments.
func NewClassType(outer Type, typarams []Type, sym Symbol) *ClassType {
	ct := newLazyClassType(outer, sym)
	ct.typarams = typarams
	ct.typaramsSet = true
	return ct
}

// NewErasedClassType is the erasure of a generic class whose supertypes
// are erased as well.
func NewErasedClassType(outer Type, sym Symbol) *ClassType {
	ct := NewClassType(outer, nil, sym)
	ct.erased = true
	return ct
}

// HasErasedSupertypes reports whether supertypes are computed by erasure.
func (c *ClassType) HasErasedSupertypes() bool { return c.erased || c.IsRaw() }

// newLazyClassType leaves the type arguments to be set by completion.
func newLazyClassType(outer Type, sym Symbol) *ClassType {
	if outer == nil {
		outer = NoType
	}
	return &ClassType{typeBase: typeBase{tag: TagClass, tsym: sym}, outer: outer, rank: -1}
}

// TypeArguments completes the class symbol if the arguments are not known yet.
func (c *ClassType) TypeArguments() []Type {
	if !c.typaramsSet {
		if c.tsym != nil {
			_ = c.tsym.Complete()
		}
		c.typaramsSet = true
	}
	return c.typarams
}

// SetTypeArguments is used by class completion to record the formals.
func (c *ClassType) SetTypeArguments(ts []Type) {
	c.typarams = ts
	c.typaramsSet = true
	c.allparams = nil
	c.allparamsSet = false
}

// AllParams lists the type arguments of the enclosing types, outermost
// first, followed by this type's own arguments.
func (c *ClassType) AllParams() []Type {
	if !c.allparamsSet {
		own := c.TypeArguments()
		if c.outer.IsParameterized() {
			outer := c.outer.AllParams()
			all := make([]Type, 0, len(outer)+len(own))
			all = append(all, outer...)
			c.allparams = append(all, own...)
		} else {
			c.allparams = own
		}
		c.allparamsSet = true
	}
	return c.allparams
}

func (c *ClassType) EnclosingType() Type { return c.outer }

func (c *ClassType) SetEnclosingType(t Type) {
	c.outer = t
	c.allparams = nil
	c.allparamsSet = false
}

// SupertypeField is the memoized direct supertype, or nil when not computed.
func (c *ClassType) SupertypeField() Type { return c.supertype }

func (c *ClassType) SetSupertypeField(t Type) { c.supertype = t }

// InterfacesField is the memoized interface list; ok is false when it has
// not been computed yet.
func (c *ClassType) InterfacesField() (ts []Type, ok bool) { return c.interfaces, c.interfacesSet }

func (c *ClassType) SetInterfacesField(ts []Type) {
	c.interfaces = ts
	c.interfacesSet = true
}

// RankField is the memoized inheritance rank, -1 when unknown.
func (c *ClassType) RankField() int { return c.rank }

func (c *ClassType) SetRankField(r int) { c.rank = r }

func (c *ClassType) ConstValue() any { return c.constValue }

// ConstType returns a copy of c carrying the constant v. The copy is a
// distinct value whose BaseType is c's base.
func (c *ClassType) ConstType(v any) *ClassType {
	cp := *c
	cp.constValue = v
	cp.base = c.BaseType().(*ClassType)
	return &cp
}

func (c *ClassType) BaseType() Type {
	if c.base != nil {
		return c.base
	}
	return c
}

func (c *ClassType) declared() Type {
	if c.tsym == nil {
		return nil
	}
	return c.tsym.Type()
}

func (c *ClassType) IsErroneous() bool {
	if c.outer.IsErroneous() || anyErroneous(c.TypeArguments()) {
		return true
	}
	d := c.declared()
	return d != nil && Type(c) != d && d.IsErroneous()
}

func (c *ClassType) IsParameterized() bool { return len(c.AllParams()) > 0 }

// IsRaw reports a generic class used without type arguments.
func (c *ClassType) IsRaw() bool {
	d := c.declared()
	if d == nil || d == Type(c) {
		return false
	}
	return len(d.AllParams()) > 0 && len(c.AllParams()) == 0
}

func (c *ClassType) IsCompound() bool {
	cs, ok := c.tsym.(*ClassSymbol)
	return ok && cs.IsCompound()
}

func (c *ClassType) IsInterface() bool {
	return c.tsym != nil && c.tsym.Flags()&flags.Interface != 0
}

func (c *ClassType) containsType(elem Type) bool {
	if elem == Type(c) {
		return true
	}
	if c.IsParameterized() && (Contains(c.outer, elem) || ContainsIn(c.TypeArguments(), elem)) {
		return true
	}
	if c.IsCompound() {
		return c.supertype != nil && Contains(c.supertype, elem) || ContainsIn(c.interfaces, elem)
	}
	return false
}

func (c *ClassType) Map(f func(Type) Type) Type {
	outer := c.outer
	if outer != nil && outer.Tag() != TagNone {
		outer = f(outer)
	}
	args := c.TypeArguments()
	mapped := MapTypes(args, f)
	if outer == c.outer && sameSlice(mapped, args) {
		return c
	}
	return NewClassType(outer, mapped, c.tsym)
}

func (c *ClassType) String() string {
	var sb strings.Builder
	if c.outer.Tag() == TagClass && c.tsym.Owner() != nil && c.tsym.Owner().Kind() == KindClass {
		sb.WriteString(c.outer.String())
		sb.WriteByte('.')
		sb.WriteString(c.className(false))
	} else {
		sb.WriteString(c.className(true))
	}
	if args := c.TypeArguments(); len(args) > 0 {
		sb.WriteByte('<')
		writeTypes(&sb, args)
		sb.WriteByte('>')
	}
	return sb.String()
}

func (c *ClassType) className(long bool) string {
	if c.tsym == nil {
		return "<none>"
	}
	if c.IsCompound() {
		var sb strings.Builder
		if c.supertype != nil {
			sb.WriteString(c.supertype.String())
		}
		for _, i := range c.interfaces {
			sb.WriteByte('&')
			sb.WriteString(i.String())
		}
		return sb.String()
	}
	if long {
		return c.tsym.QualifiedName().String()
	}
	return c.tsym.Name().String()
}

// IntersectionClassType is the type of an intersection of bounds. The first
// component is the supertype and the rest are interfaces; when every
// component is an interface the supertype is the root class.
type IntersectionClassType struct {
	ClassType
	AllInterfaces bool
}

// NewIntersectionClassType builds the intersection over the synthetic
// compound symbol csym. bounds must not be empty.
func NewIntersectionClassType(bounds []Type, csym Symbol, allInterfaces bool) *IntersectionClassType {
	it := &IntersectionClassType{AllInterfaces: allInterfaces}
	it.ClassType = *NewClassType(NoType, nil, csym)
	it.supertype = bounds[0]
	it.interfaces = append([]Type(nil), bounds[1:]...)
	it.interfacesSet = true
	return it
}

// Components returns the supertype followed by the interfaces.
func (it *IntersectionClassType) Components() []Type {
	out := make([]Type, 0, 1+len(it.interfaces))
	out = append(out, it.supertype)
	return append(out, it.interfaces...)
}

// ExplicitComponents omits the implicit root class of an all-interface
// intersection.
func (it *IntersectionClassType) ExplicitComponents() []Type {
	if it.AllInterfaces {
		return it.interfaces
	}
	return it.Components()
}

func (it *IntersectionClassType) IsCompound() bool { return true }

func (it *IntersectionClassType) containsType(elem Type) bool {
	return elem == Type(it) || ContainsIn(it.Components(), elem)
}

func (it *IntersectionClassType) IsErroneous() bool { return anyErroneous(it.Components()) }

func (it *IntersectionClassType) Map(f func(Type) Type) Type {
	comps := it.Components()
	mapped := MapTypes(comps, f)
	if sameSlice(comps, mapped) {
		return it
	}
	return NewIntersectionClassType(mapped, it.tsym, it.AllInterfaces)
}

func (it *IntersectionClassType) String() string {
	var sb strings.Builder
	for i, c := range it.ExplicitComponents() {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(c.String())
	}
	return sb.String()
}

// UnionClassType is the type of a multi-catch parameter. It behaves as its
// least upper bound, held in the embedded class type.
type UnionClassType struct {
	ClassType
	Alternatives []Type
}

func NewUnionClassType(lub *ClassType, alternatives []Type) *UnionClassType {
	u := &UnionClassType{Alternatives: alternatives}
	u.ClassType = *NewClassType(lub.outer, lub.TypeArguments(), lub.tsym)
	return u
}

// Lub is the least upper bound the union stands for.
func (u *UnionClassType) Lub() *ClassType { return &u.ClassType }

func (u *UnionClassType) containsType(elem Type) bool {
	return elem == Type(u) || ContainsIn(u.Alternatives, elem)
}

func (u *UnionClassType) Map(f func(Type) Type) Type {
	alts := MapTypes(u.Alternatives, f)
	if sameSlice(alts, u.Alternatives) {
		return u
	}
	return &UnionClassType{ClassType: u.ClassType, Alternatives: alts}
}

func (u *UnionClassType) String() string {
	var sb strings.Builder
	for i, a := range u.Alternatives {
		if i > 0 {
			sb.WriteByte('|')
		}
		sb.WriteString(a.String())
	}
	return sb.String()
}

// ErrorType stands for a type that failed to resolve. Every relation
// accepts it so that one failure does not cascade.
type ErrorType struct {
	ClassType
	Original Type
}

func NewErrorType(sym Symbol, original Type) *ErrorType {
	if original == nil {
		original = NoType
	}
	e := &ErrorType{Original: original}
	e.ClassType = *NewClassType(NoType, nil, sym)
	e.tag = TagError
	return e
}

func (e *ErrorType) IsErroneous() bool           { return true }
func (e *ErrorType) IsParameterized() bool       { return false }
func (e *ErrorType) IsRaw() bool                 { return false }
func (e *ErrorType) IsCompound() bool            { return false }
func (e *ErrorType) IsInterface() bool           { return false }
func (e *ErrorType) EnclosingType() Type         { return NoType }
func (e *ErrorType) ReturnType() Type            { return e }
func (e *ErrorType) UpperBound() Type            { return e }
func (e *ErrorType) LowerBound() Type            { return e }
func (e *ErrorType) Map(func(Type) Type) Type    { return e }
func (e *ErrorType) containsType(elem Type) bool { return elem == Type(e) }

func (e *ErrorType) String() string {
	if e.tsym != nil && !e.tsym.Name().IsEmpty() {
		return e.tsym.Name().String()
	}
	return "<error>"
}

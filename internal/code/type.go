package code

import (
	"strings"

	"nominal/internal/flags"
)

// Type is the closed family of type representations. Every variant is a
// pointer type defined in this package; callers discriminate with type
// switches or Tag.
type Type interface {
	Tag() TypeTag
	TSym() Symbol
	ConstValue() any

	TypeArguments() []Type
	AllParams() []Type
	EnclosingType() Type
	UpperBound() Type
	LowerBound() Type
	ParameterTypes() []Type
	ReturnType() Type
	ThrownTypes() []Type
	ReceiverType() Type

	IsPrimitive() bool
	IsPrimitiveOrVoid() bool
	IsNumeric() bool
	IsReference() bool
	IsErroneous() bool
	IsParameterized() bool
	IsRaw() bool
	IsCompound() bool
	IsInterface() bool
	IsPartial() bool
	IsExtendsBound() bool
	IsSuperBound() bool
	IsUnbound() bool

	// Map applies f to the immediate children and rebuilds the type only
	// when some child changed.
	Map(f func(Type) Type) Type

	String() string

	isType()
}

// typeBase carries the fields every variant has and the default answers.
type typeBase struct {
	tag  TypeTag
	tsym Symbol
}

func (b *typeBase) isType()                {}
func (b *typeBase) Tag() TypeTag           { return b.tag }
func (b *typeBase) TSym() Symbol           { return b.tsym }
func (b *typeBase) ConstValue() any        { return nil }
func (b *typeBase) TypeArguments() []Type  { return nil }
func (b *typeBase) AllParams() []Type      { return nil }
func (b *typeBase) EnclosingType() Type    { return nil }
func (b *typeBase) UpperBound() Type       { return nil }
func (b *typeBase) LowerBound() Type       { return nil }
func (b *typeBase) ParameterTypes() []Type { return nil }
func (b *typeBase) ReturnType() Type       { return nil }
func (b *typeBase) ThrownTypes() []Type    { return nil }
func (b *typeBase) ReceiverType() Type     { return nil }
func (b *typeBase) IsPrimitive() bool      { return b.tag.IsPrimitive() }
func (b *typeBase) IsNumeric() bool        { return b.tag.IsNumeric() }
func (b *typeBase) IsPartial() bool        { return b.tag.IsPartial() }
func (b *typeBase) IsErroneous() bool      { return false }
func (b *typeBase) IsParameterized() bool  { return false }
func (b *typeBase) IsRaw() bool            { return false }
func (b *typeBase) IsCompound() bool       { return false }
func (b *typeBase) IsExtendsBound() bool   { return false }
func (b *typeBase) IsSuperBound() bool     { return false }
func (b *typeBase) IsUnbound() bool        { return false }

func (b *typeBase) IsPrimitiveOrVoid() bool {
	return b.tag.IsPrimitive() || b.tag == TagVoid
}

func (b *typeBase) IsReference() bool {
	switch b.tag {
	case TagClass, TagArray, TagTypeVar, TagWildcard, TagError:
		return true
	}
	return false
}

func (b *typeBase) IsInterface() bool {
	return b.tsym != nil && b.tsym.Flags()&flags.Interface != 0
}

// PrimType is a primitive type or void. Constant-folded expressions get a
// copy that records the value; BaseType strips it.
type PrimType struct {
	typeBase
	constValue any
	base       *PrimType
}

func NewPrimType(tag TypeTag, sym Symbol) *PrimType {
	return &PrimType{typeBase: typeBase{tag: tag, tsym: sym}}
}

func (p *PrimType) ConstValue() any { return p.constValue }

// ConstType returns a copy of p carrying v.
func (p *PrimType) ConstType(v any) *PrimType {
	return &PrimType{typeBase: p.typeBase, constValue: v, base: p.BaseType().(*PrimType)}
}

func (p *PrimType) BaseType() Type {
	if p.base != nil {
		return p.base
	}
	return p
}

func (p *PrimType) Map(func(Type) Type) Type { return p }

func (p *PrimType) String() string { return p.tag.String() }

// NoneType is the absence of a type, e.g. the supertype of the root class.
type NoneType struct{ typeBase }

func (n *NoneType) Map(func(Type) Type) Type { return n }
func (n *NoneType) String() string           { return "none" }

// BottomType is the type of the null literal.
type BottomType struct{ typeBase }

func (b *BottomType) Map(func(Type) Type) Type { return b }
func (b *BottomType) String() string           { return "<nulltype>" }
func (b *BottomType) IsReference() bool        { return false }

// UnknownType stands for a type that could not be determined.
type UnknownType struct{ typeBase }

func NewUnknownType(sym Symbol) *UnknownType {
	return &UnknownType{typeBase{tag: TagUnknown, tsym: sym}}
}

func (u *UnknownType) Map(func(Type) Type) Type { return u }
func (u *UnknownType) String() string           { return "<any>" }

// Shared singletons with no session state.
var (
	NoType Type = &NoneType{typeBase{tag: TagNone}}
	Bot    Type = &BottomType{typeBase{tag: TagBot}}
)

// PackageType is the type of a package symbol.
type PackageType struct{ typeBase }

func (p *PackageType) Map(func(Type) Type) Type { return p }
func (p *PackageType) String() string           { return p.tsym.QualifiedName().String() }

// ArrayType is an array of an element type. Varargs marks the last
// parameter of a variable-arity method.
type ArrayType struct {
	typeBase
	Elem    Type
	Varargs bool
}

func NewArrayType(elem Type, arrayClass Symbol) *ArrayType {
	return &ArrayType{typeBase: typeBase{tag: TagArray, tsym: arrayClass}, Elem: elem}
}

func (a *ArrayType) IsErroneous() bool { return a.Elem.IsErroneous() }
func (a *ArrayType) IsRaw() bool       { return a.Elem.IsRaw() }

func (a *ArrayType) Map(f func(Type) Type) Type {
	elem := f(a.Elem)
	if elem == a.Elem {
		return a
	}
	return &ArrayType{typeBase: a.typeBase, Elem: elem, Varargs: a.Varargs}
}

// MakeVarargs returns a copy flagged as a variable-arity parameter.
func (a *ArrayType) MakeVarargs() *ArrayType {
	return &ArrayType{typeBase: a.typeBase, Elem: a.Elem, Varargs: true}
}

func (a *ArrayType) String() string {
	var sb strings.Builder
	elem := a.Elem
	sb.WriteString(elem.String())
	if a.Varargs {
		sb.WriteString("...")
	} else {
		sb.WriteString("[]")
	}
	return sb.String()
}

// Dimensions counts nested array levels.
func (a *ArrayType) Dimensions() int {
	n := 1
	for e := a.Elem; e.Tag() == TagArray; e = e.(*ArrayType).Elem {
		n++
	}
	return n
}

// MethodType is the signature of a method without its type parameters.
type MethodType struct {
	typeBase
	Params   []Type
	Result   Type
	Thrown   []Type
	RecvType Type
}

func NewMethodType(params []Type, result Type, thrown []Type, methodClass Symbol) *MethodType {
	return &MethodType{
		typeBase: typeBase{tag: TagMethod, tsym: methodClass},
		Params:   params,
		Result:   result,
		Thrown:   thrown,
	}
}

func (m *MethodType) ParameterTypes() []Type { return m.Params }
func (m *MethodType) ReturnType() Type       { return m.Result }
func (m *MethodType) ThrownTypes() []Type    { return m.Thrown }
func (m *MethodType) ReceiverType() Type     { return m.RecvType }

func (m *MethodType) IsErroneous() bool {
	return anyErroneous(m.Params) || m.Result != nil && m.Result.IsErroneous()
}

func (m *MethodType) Map(f func(Type) Type) Type {
	params := MapTypes(m.Params, f)
	result := m.Result
	if result != nil {
		result = f(result)
	}
	thrown := MapTypes(m.Thrown, f)
	if sameSlice(params, m.Params) && result == m.Result && sameSlice(thrown, m.Thrown) {
		return m
	}
	return &MethodType{typeBase: m.typeBase, Params: params, Result: result, Thrown: thrown, RecvType: m.RecvType}
}

func (m *MethodType) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	writeTypes(&sb, m.Params)
	sb.WriteByte(')')
	if m.Result != nil {
		sb.WriteString(m.Result.String())
	}
	return sb.String()
}

// ForAll is a generic method type: type variables quantified over a method
// type.
type ForAll struct {
	typeBase
	TVars []Type
	QType Type
}

func NewForAll(tvars []Type, qtype Type) *ForAll {
	return &ForAll{typeBase: typeBase{tag: TagForAll, tsym: qtype.TSym()}, TVars: tvars, QType: qtype}
}

func (f *ForAll) TypeArguments() []Type  { return f.TVars }
func (f *ForAll) ParameterTypes() []Type { return f.QType.ParameterTypes() }
func (f *ForAll) ReturnType() Type       { return f.QType.ReturnType() }
func (f *ForAll) ThrownTypes() []Type    { return f.QType.ThrownTypes() }
func (f *ForAll) ReceiverType() Type     { return f.QType.ReceiverType() }
func (f *ForAll) IsErroneous() bool      { return f.QType.IsErroneous() }

func (f *ForAll) Map(fn func(Type) Type) Type {
	q := fn(f.QType)
	if q == f.QType {
		return f
	}
	return &ForAll{typeBase: f.typeBase, TVars: f.TVars, QType: q}
}

func (f *ForAll) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	writeTypes(&sb, f.TVars)
	sb.WriteByte('>')
	sb.WriteString(f.QType.String())
	return sb.String()
}

// AnnotatedType attaches type annotations to an underlying type. It never
// wraps another AnnotatedType, and relations look through it.
type AnnotatedType struct {
	Type
	Annotations []*TypeCompound
}

// Annotate wraps t, merging with existing annotations instead of nesting.
func Annotate(t Type, annos []*TypeCompound) Type {
	if len(annos) == 0 {
		return t
	}
	if at, ok := t.(*AnnotatedType); ok {
		merged := append(append([]*TypeCompound(nil), at.Annotations...), annos...)
		return &AnnotatedType{Type: at.Type, Annotations: merged}
	}
	return &AnnotatedType{Type: t, Annotations: annos}
}

// Unannotated strips type annotations.
func Unannotated(t Type) Type {
	if at, ok := t.(*AnnotatedType); ok {
		return at.Type
	}
	return t
}

func (a *AnnotatedType) Map(f func(Type) Type) Type {
	inner := a.Type.Map(f)
	if inner == a.Type {
		return a
	}
	return Annotate(inner, a.Annotations)
}

func (a *AnnotatedType) String() string {
	var sb strings.Builder
	for _, c := range a.Annotations {
		sb.WriteString(c.String())
		sb.WriteByte(' ')
	}
	sb.WriteString(a.Type.String())
	return sb.String()
}

// BaseType strips constant values from primitive and string types.
func BaseType(t Type) Type {
	switch t := t.(type) {
	case *PrimType:
		return t.BaseType()
	case *ClassType:
		return t.BaseType()
	case *UndetVar:
		if t.Inst != nil {
			return BaseType(t.Inst)
		}
	case *AnnotatedType:
		return BaseType(t.Type)
	}
	return t
}

// MapTypes applies f to every element, returning ts itself when nothing
// changed.
func MapTypes(ts []Type, f func(Type) Type) []Type {
	var out []Type
	for i, t := range ts {
		m := f(t)
		if out == nil && m != t {
			out = make([]Type, len(ts))
			copy(out, ts[:i])
		}
		if out != nil {
			out[i] = m
		}
	}
	if out == nil {
		return ts
	}
	return out
}

func sameSlice(a, b []Type) bool {
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

func anyErroneous(ts []Type) bool {
	for _, t := range ts {
		if t.IsErroneous() {
			return true
		}
	}
	return false
}

func writeTypes(sb *strings.Builder, ts []Type) {
	for i, t := range ts {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(t.String())
	}
}

// TypesString joins the printed types with commas.
func TypesString(ts []Type) string {
	var sb strings.Builder
	writeTypes(&sb, ts)
	return sb.String()
}

// Contains reports whether elem occurs in t, structurally.
func Contains(t, elem Type) bool {
	if t == elem {
		return true
	}
	switch t := t.(type) {
	case *ClassType:
		return t.containsType(elem)
	case *IntersectionClassType:
		return t.containsType(elem)
	case *UnionClassType:
		return t.containsType(elem)
	case *ArrayType:
		return Contains(t.Elem, elem)
	case *MethodType:
		return ContainsIn(t.Params, elem) || t.Result != nil && Contains(t.Result, elem) || ContainsIn(t.Thrown, elem)
	case *WildcardType:
		return t.Kind != BoundUnbound && t.Bound != nil && Contains(t.Bound, elem)
	case *ForAll:
		return Contains(t.QType, elem)
	case *AnnotatedType:
		return Contains(t.Type, elem)
	}
	return false
}

// ContainsIn reports whether elem occurs in any of ts.
func ContainsIn(ts []Type, elem Type) bool {
	for _, t := range ts {
		if Contains(t, elem) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether any of elems occurs in t.
func ContainsAny(t Type, elems []Type) bool {
	for _, e := range elems {
		if Contains(t, e) {
			return true
		}
	}
	return false
}

// ContainsAnyIn reports whether any of elems occurs in any of ts.
func ContainsAnyIn(ts, elems []Type) bool {
	for _, t := range ts {
		if ContainsAny(t, elems) {
			return true
		}
	}
	return false
}

// IsErroneousIn reports whether any element is erroneous.
func IsErroneousIn(ts []Type) bool { return anyErroneous(ts) }

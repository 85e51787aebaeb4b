package types

import (
	"nominal/internal/code"
	"nominal/internal/flags"
)

// AsSuper returns the supertype of ty whose symbol is sym, or nil when
// sym is not a supertype symbol of ty.
func (t *Types) AsSuper(ty code.Type, sym code.Symbol) code.Type {
	if sym == nil {
		return nil
	}
	ty = unannotated(ty)
	if sym == t.objectSym() && ty.IsReference() {
		return t.syms.ObjectType
	}
	switch ty := ty.(type) {
	case *code.ClassType, *code.IntersectionClassType, *code.UnionClassType:
		return t.classAsSuper(ty, sym)
	case *code.ArrayType:
		if t.IsSubtype(ty, sym.Type()) {
			return sym.Type()
		}
		return nil
	case *code.TypeVar, *code.CapturedType:
		if ty.TSym() == sym {
			return ty
		}
		return t.AsSuper(t.varBound(ty), sym)
	case *code.ErrorType:
		return ty
	}
	return nil
}

func (t *Types) classAsSuper(ty code.Type, sym code.Symbol) code.Type {
	if ty.TSym() == sym {
		return ty
	}
	c := ty.TSym()
	if c.RawFlags()&flags.Locked != 0 {
		return nil
	}
	c.AddFlags(flags.Locked)
	defer func() { c.SetFlags(c.RawFlags() &^ flags.Locked) }()

	if st := t.Supertype(ty); isTag(st, code.TagClass, code.TagTypeVar, code.TagError) {
		if x := t.AsSuper(st, sym); x != nil {
			return x
		}
	}
	if sym.Flags()&flags.Interface != 0 {
		for _, i := range t.Interfaces(ty) {
			if i.Tag() == code.TagError {
				continue
			}
			if x := t.AsSuper(i, sym); x != nil {
				return x
			}
		}
	}
	return nil
}

// AsOuterSuper is AsSuper tried on ty and then on each enclosing type.
func (t *Types) AsOuterSuper(ty code.Type, sym code.Symbol) code.Type {
	ty = unannotated(ty)
	switch ty.Tag() {
	case code.TagClass:
		for cur := ty; cur != nil && cur.Tag() == code.TagClass; cur = cur.EnclosingType() {
			if s := t.AsSuper(cur, sym); s != nil {
				return s
			}
		}
		return nil
	case code.TagArray:
		if t.IsSubtype(ty, sym.Type()) {
			return sym.Type()
		}
		return nil
	case code.TagTypeVar:
		if ty.TSym() == sym {
			return ty
		}
		return nil
	case code.TagError:
		return ty
	}
	return nil
}

// AsEnclosingSuper is AsOuterSuper that also walks the lexically
// enclosing classes of types without an enclosing instance type.
func (t *Types) AsEnclosingSuper(ty code.Type, sym code.Symbol) code.Type {
	ty = unannotated(ty)
	switch ty.Tag() {
	case code.TagClass:
		for cur := ty; cur != nil; {
			if s := t.AsSuper(cur, sym); s != nil {
				return s
			}
			outer := cur.EnclosingType()
			if outer != nil && outer.Tag() == code.TagClass {
				cur = outer
				continue
			}
			owner := cur.TSym().Owner()
			if owner == nil {
				return nil
			}
			encl := owner.EnclClass()
			if encl == nil {
				return nil
			}
			cur = encl.Type()
		}
		return nil
	case code.TagArray:
		if t.IsSubtype(ty, sym.Type()) {
			return sym.Type()
		}
		return nil
	case code.TagTypeVar:
		if ty.TSym() == sym {
			return ty
		}
		return nil
	case code.TagError:
		return ty
	}
	return nil
}

// Supertype is the direct superclass type of ty, with the class's type
// arguments substituted in. Interfaces answer the root class. Types with
// no supertype answer the none type.
func (t *Types) Supertype(ty code.Type) code.Type {
	ty = unannotated(ty)
	switch ty := ty.(type) {
	case *code.ErrorType:
		return ty
	case *code.IntersectionClassType:
		return ty.SupertypeField()
	case *code.UnionClassType:
		return t.Supertype(ty.Lub())
	case *code.ClassType:
		return t.classSupertype(ty)
	case *code.TypeVar, *code.CapturedType:
		b := t.varBound(ty)
		if b.Tag() == code.TagTypeVar || !b.IsCompound() && !b.IsInterface() {
			return b
		}
		return t.Supertype(b)
	case *code.ArrayType:
		if ty.Elem.IsPrimitive() || t.IsSameType(ty.Elem, t.syms.ObjectType) {
			return t.ArraySuperType()
		}
		return code.NewArrayType(t.Supertype(ty.Elem), t.syms.ArrayClass)
	}
	return code.NoType
}

func (t *Types) classSupertype(ct *code.ClassType) code.Type {
	if st := ct.SupertypeField(); st != nil {
		return st
	}
	cs, ok := ct.TSym().(*code.ClassSymbol)
	if !ok {
		return code.NoType
	}
	st := cs.Superclass()
	if ct.IsInterface() {
		st = cs.ClassType().SupertypeField()
		if st == nil {
			st = t.syms.ObjectType
		}
	}
	if ct.SupertypeField() != nil {
		return ct.SupertypeField()
	}
	formals := ct.TSym().Type().AllParams()
	switch {
	case ct.HasErasedSupertypes():
		st = t.ErasureRecursive(st)
	case len(formals) > 0:
		st = t.Subst(st, formals, t.ClassBound(ct).AllParams())
	}
	ct.SetSupertypeField(st)
	return st
}

// Interfaces lists the direct superinterfaces of ty with the class's
// type arguments substituted in.
func (t *Types) Interfaces(ty code.Type) []code.Type {
	ty = unannotated(ty)
	switch ty := ty.(type) {
	case *code.ErrorType:
		return nil
	case *code.IntersectionClassType:
		is, _ := ty.InterfacesField()
		return is
	case *code.UnionClassType:
		return t.Interfaces(ty.Lub())
	case *code.ClassType:
		return t.classInterfaces(ty)
	case *code.TypeVar, *code.CapturedType:
		b := t.varBound(ty)
		if b.IsCompound() {
			return t.Interfaces(b)
		}
		if b.IsInterface() {
			return []code.Type{b}
		}
	}
	return nil
}

func (t *Types) classInterfaces(ct *code.ClassType) []code.Type {
	if is, ok := ct.InterfacesField(); ok {
		return is
	}
	cs, ok := ct.TSym().(*code.ClassSymbol)
	if !ok {
		return nil
	}
	declared := cs.Interfaces()
	if is, ok := ct.InterfacesField(); ok {
		return is
	}
	formals := ct.TSym().Type().AllParams()
	var is []code.Type
	switch {
	case ct.HasErasedSupertypes():
		is = code.MapTypes(declared, t.ErasureRecursive)
	case len(formals) > 0:
		is = t.upperBounds(t.SubstList(declared, formals, ct.AllParams()))
	default:
		is = declared
	}
	ct.SetInterfacesField(is)
	return is
}

// IsDerivedRaw reports whether ty is raw or inherits from a raw type.
func (t *Types) IsDerivedRaw(ty code.Type) bool {
	if r, ok := t.derivedRaw[ty]; ok {
		return r
	}
	t.derivedRaw[ty] = false
	st := t.Supertype(ty)
	r := !ty.IsErroneous() && (ty.IsRaw() ||
		st.Tag() != code.TagNone && t.IsDerivedRaw(st) ||
		t.isDerivedRawAny(t.Interfaces(ty)))
	t.derivedRaw[ty] = r
	return r
}

func (t *Types) isDerivedRawAny(ts []code.Type) bool {
	for _, x := range ts {
		if t.IsDerivedRaw(x) {
			return true
		}
	}
	return false
}

// ClassBound replaces type-variable enclosing types by their class
// bounds.
func (t *Types) ClassBound(ty code.Type) code.Type {
	ty = unannotated(ty)
	switch ty := ty.(type) {
	case *code.ClassType:
		outer := ty.EnclosingType()
		outer1 := t.ClassBound(outer)
		if outer1 != outer {
			return code.NewClassType(outer1, ty.TypeArguments(), ty.TSym())
		}
		return ty
	case *code.TypeVar, *code.CapturedType:
		return t.ClassBound(t.Supertype(ty))
	}
	return ty
}

// MemberType is the type of sym as a member of ty: the owner's type
// parameters are replaced by the matching arguments of ty.
func (t *Types) MemberType(ty code.Type, sym code.Symbol) code.Type {
	if sym.Flags()&flags.Static != 0 {
		return sym.Type()
	}
	ty = unannotated(ty)
	switch ty.Tag() {
	case code.TagWildcard:
		return t.MemberType(t.WildUpperBound(ty), sym)
	case code.TagClass:
		owner := sym.Owner()
		if owner == nil || owner.Type() == nil || !owner.Type().IsParameterized() {
			return sym.Type()
		}
		base := t.AsOuterSuper(ty, owner)
		if base != nil && ty.IsCompound() {
			base = t.Capture(base)
		}
		if base == nil {
			return sym.Type()
		}
		ownerParams := owner.Type().AllParams()
		baseParams := base.AllParams()
		if len(ownerParams) == 0 {
			return sym.Type()
		}
		if len(baseParams) == 0 {
			return t.Erasure(sym.Type())
		}
		return t.Subst(sym.Type(), ownerParams, baseParams)
	case code.TagTypeVar:
		return t.MemberType(t.varBound(ty), sym)
	case code.TagError:
		return ty
	}
	return sym.Type()
}

// Erasure removes type arguments, replaces type variables by the erasure
// of their bounds and wildcards by the erasure of their upper bounds.
// Primitive types and the string type are returned unchanged so their
// constant values survive.
func (t *Types) Erasure(ty code.Type) code.Type { return t.erasure(ty, false) }

// ErasureRecursive is Erasure whose class results also erase their
// supertypes.
func (t *Types) ErasureRecursive(ty code.Type) code.Type { return t.erasure(ty, true) }

// Erasures erases every type of ts.
func (t *Types) Erasures(ts []code.Type) []code.Type { return code.MapTypes(ts, t.Erasure) }

func (t *Types) erasure(ty code.Type, recurse bool) code.Type {
	if ty == nil {
		return nil
	}
	ty = unannotated(ty)
	if ty.IsPrimitiveOrVoid() {
		return ty
	}
	if ty.Tag() == code.TagClass && ty.TSym() == t.syms.StringType.TSym() {
		return ty
	}
	erase := func(x code.Type) code.Type { return t.erasure(x, recurse) }
	switch ty := ty.(type) {
	case *code.WildcardType:
		return t.erasure(t.WildUpperBound(ty), recurse)
	case *code.ErrorType:
		return ty
	case *code.ClassType, *code.IntersectionClassType, *code.UnionClassType:
		cs, ok := ty.TSym().(*code.ClassSymbol)
		if !ok {
			return ty
		}
		erased := cs.Erasure(t.Erasure)
		if recurse {
			return code.NewErasedClassType(erased.EnclosingType(), erased.TSym())
		}
		return erased
	case *code.TypeVar, *code.CapturedType:
		return t.erasure(t.varBound(ty), recurse)
	case *code.ForAll:
		return t.erasure(ty.QType, recurse)
	case *code.UndetVar:
		return ty
	}
	return ty.Map(erase)
}

// MakeIntersectionType builds the intersection of bounds. The first bound
// becomes the supertype unless every bound is an interface, in which case
// the root class is.
func (t *Types) MakeIntersectionType(bounds ...code.Type) *code.IntersectionClassType {
	return t.makeIntersectionType(bounds, bounds[0].TSym() != nil && bounds[0].TSym().IsInterface())
}

func (t *Types) makeIntersectionType(bounds []code.Type, allInterfaces bool) *code.IntersectionClassType {
	first := bounds[0]
	if allInterfaces {
		bounds = append([]code.Type{t.syms.ObjectType}, bounds...)
	}
	fl := flags.Abstract | flags.Public | flags.Synthetic | flags.Compound | flags.Acyclic
	cs := code.NewClassSymbol(t.names, fl, t.names.Empty, t.syms.NoSymbol)
	it := code.NewIntersectionClassType(bounds, cs, allInterfaces)
	cs.SetType(it)
	if first.Tag() == code.TagTypeVar {
		cs.SetErasure(t.syms.ObjectType)
	} else {
		cs.SetErasure(t.Erasure(first))
	}
	return it
}

// SetBounds installs the upper bound of a declared type variable: the
// single bound itself or the intersection of several.
func (t *Types) SetBounds(tv *code.TypeVar, bounds []code.Type) {
	if len(bounds) == 1 {
		tv.SetUpperBound(bounds[0])
	} else {
		tv.SetUpperBound(t.MakeIntersectionType(bounds...))
	}
	tv.SetRankField(-1)
}

// GetBounds lists the declared bounds of tv.
func (t *Types) GetBounds(tv code.Type) []code.Type {
	b := tv.UpperBound()
	if b == nil || b.Tag() == code.TagNone {
		return nil
	}
	if b.IsErroneous() || !b.IsCompound() {
		return []code.Type{b}
	}
	if e := t.Erasure(tv); e.TSym() == nil || e.TSym().Flags()&flags.Interface == 0 {
		return append([]code.Type{t.Supertype(tv)}, t.Interfaces(tv)...)
	}
	return t.Interfaces(tv)
}

// Rank is the length of the longest supertype path from ty to the root
// class.
func (t *Types) Rank(ty code.Type) int {
	ty = unannotated(ty)
	switch ty := ty.(type) {
	case *code.ClassType:
		return t.rankOf(ty, ty)
	case *code.IntersectionClassType:
		return t.rankOf(&ty.ClassType, ty)
	case *code.UnionClassType:
		return t.rankOf(&ty.ClassType, ty)
	case *code.TypeVar:
		return t.rankOf(ty, ty)
	case *code.CapturedType:
		return t.rankOf(&ty.TypeVar, ty)
	case *code.ErrorType:
		return 0
	}
	return -1
}

type rankHolder interface {
	RankField() int
	SetRankField(int)
}

func (t *Types) rankOf(h rankHolder, ty code.Type) int {
	if r := h.RankField(); r >= 0 {
		return r
	}
	if ty.Tag() == code.TagClass && ty.TSym() == t.objectSym() {
		h.SetRankField(0)
		return 0
	}
	r := t.Rank(t.Supertype(ty))
	for _, i := range t.Interfaces(ty) {
		if ri := t.Rank(i); ri > r {
			r = ri
		}
	}
	h.SetRankField(r + 1)
	return r + 1
}

// Elemtype is the element type of an array, looking through wildcards
// and captured variables; nil for non-arrays.
func (t *Types) Elemtype(ty code.Type) code.Type {
	ty = unannotated(ty)
	switch ty := ty.(type) {
	case *code.WildcardType:
		return t.Elemtype(t.WildUpperBound(ty))
	case *code.ArrayType:
		return ty.Elem
	case *code.ForAll:
		return t.Elemtype(ty.QType)
	case *code.ErrorType:
		return ty
	case *code.CapturedType:
		return t.Elemtype(t.varBound(ty))
	}
	return nil
}

// Dimensions counts array nesting; zero for non-arrays.
func (t *Types) Dimensions(ty code.Type) int {
	n := 0
	for ty = unannotated(ty); ty != nil && ty.Tag() == code.TagArray; ty = t.Elemtype(ty) {
		n++
	}
	return n
}

// ArraySuperType is the intersection of the root class with the
// cloneable and serializable interfaces that every array type extends.
func (t *Types) ArraySuperType() code.Type {
	if t.arraySuper == nil {
		t.arraySuper = t.makeIntersectionType([]code.Type{t.syms.SerializableType, t.syms.CloneableType}, true)
	}
	return t.arraySuper
}

// MakeArrayType wraps elem in an array type.
func (t *Types) MakeArrayType(elem code.Type) *code.ArrayType {
	return code.NewArrayType(elem, t.syms.ArrayClass)
}

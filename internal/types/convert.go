package types

import (
	"nominal/internal/code"
	"nominal/internal/flags"
)

// IsConvertible reports assignment compatibility without constant
// narrowing: subtyping, unchecked conversion and, when enabled, boxing
// and unboxing.
func (t *Types) IsConvertible(a, b code.Type) bool { return t.IsConvertibleWarn(a, b, nil) }

// IsConvertibleWarn is IsConvertible recording unchecked conversions in w.
func (t *Types) IsConvertibleWarn(a, b code.Type, w *Warner) bool {
	a, b = unannotated(a), unannotated(b)
	if a.Tag() == code.TagError {
		return true
	}
	if a.IsPrimitive() == b.IsPrimitive() {
		return t.IsSubtypeUncheckedWarn(a, b, w)
	}
	if !t.opts.AllowBoxing {
		return false
	}
	if a.IsPrimitive() {
		return t.IsSubtype(t.BoxedClass(a).Type(), b)
	}
	return t.IsSubtype(t.UnboxedType(a), b)
}

// IsSubtypeUnchecked is subtyping extended with unchecked conversion from
// raw types.
func (t *Types) IsSubtypeUnchecked(a, b code.Type) bool { return t.IsSubtypeUncheckedWarn(a, b, nil) }

// IsSubtypeUncheckedWarn is IsSubtypeUnchecked recording unchecked
// conversions in w.
func (t *Types) IsSubtypeUncheckedWarn(a, b code.Type, w *Warner) bool {
	return t.isSubtypeUnchecked(unannotated(a), unannotated(b), true, w)
}

func (t *Types) isSubtypeUnchecked(a, b code.Type, capture bool, w *Warner) bool {
	if a.Tag() == code.TagArray && b.Tag() == code.TagArray {
		ae := t.Elemtype(a)
		if ae.IsPrimitive() {
			return t.IsSameType(ae, t.Elemtype(b))
		}
		return t.isSubtypeUnchecked(ae, t.Elemtype(b), false, w)
	}
	if t.isSubtype(a, b, capture) {
		return true
	}
	if a.Tag() == code.TagTypeVar {
		return t.isSubtypeUnchecked(t.varBound(a), b, false, w)
	}
	if !b.IsRaw() {
		if sup := t.AsSuper(a, b.TSym()); sup != nil && sup.IsRaw() {
			if t.IsReifiable(b) {
				w.silentWarn()
			} else {
				w.warn()
			}
			return true
		}
	}
	return false
}

// IsAssignable is IsConvertible plus narrowing of integer constants that
// fit the target's range.
func (t *Types) IsAssignable(a, b code.Type) bool { return t.IsAssignableWarn(a, b, nil) }

// IsAssignableWarn is IsAssignable recording unchecked conversions in w.
func (t *Types) IsAssignableWarn(a, b code.Type, w *Warner) bool {
	a, b = unannotated(a), unannotated(b)
	if a.Tag() == code.TagError {
		return true
	}
	if a.Tag() <= code.TagInt {
		if v, ok := intConstant(a.ConstValue()); ok {
			switch b.Tag() {
			case code.TagByte:
				if v >= -128 && v <= 127 {
					return true
				}
			case code.TagChar:
				if v >= 0 && v <= 0xFFFF {
					return true
				}
			case code.TagShort:
				if v >= -32768 && v <= 32767 {
					return true
				}
			case code.TagInt:
				return true
			case code.TagClass:
				switch u := t.UnboxedType(b); u.Tag() {
				case code.TagByte, code.TagChar, code.TagShort:
					return t.IsAssignableWarn(a, u, w)
				}
			}
		}
	}
	return t.IsConvertibleWarn(a, b, w)
}

func intConstant(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint16:
		return int64(v), true
	}
	return 0, false
}

// BoxedClass is the wrapper class of a primitive type.
func (t *Types) BoxedClass(ty code.Type) *code.ClassSymbol {
	name, ok := t.syms.BoxedName(ty.Tag())
	if !ok {
		return t.syms.ErrSymbol
	}
	return t.syms.EnterClass(name)
}

// BoxedTypeOrType boxes primitive types and returns the others unchanged.
func (t *Types) BoxedTypeOrType(ty code.Type) code.Type {
	if ty.IsPrimitive() {
		return t.BoxedClass(ty).Type()
	}
	return ty
}

// UnboxedType is the primitive type a wrapper class unboxes to, or the
// none type.
func (t *Types) UnboxedType(ty code.Type) code.Type {
	if !t.opts.AllowBoxing {
		return code.NoType
	}
	for _, p := range t.syms.PrimTypes() {
		name, ok := t.syms.BoxedName(p.Tag())
		if !ok {
			continue
		}
		if t.AsSuper(ty, t.syms.EnterClass(name)) != nil {
			return p
		}
	}
	return code.NoType
}

// UnboxedTypeOrType unboxes wrapper classes and returns the others
// unchanged.
func (t *Types) UnboxedTypeOrType(ty code.Type) code.Type {
	if u := t.UnboxedType(ty); u.Tag() != code.TagNone {
		return u
	}
	return ty
}

// IsCastable reports whether a cast from a to b may succeed at run time.
func (t *Types) IsCastable(a, b code.Type) bool { return t.IsCastableWarn(a, b, nil) }

// IsCastableWarn is IsCastable recording unchecked casts in w.
func (t *Types) IsCastableWarn(a, b code.Type, w *Warner) bool {
	a, b = unannotated(a), unannotated(b)
	if a == b {
		return true
	}
	if a.IsPrimitive() != b.IsPrimitive() {
		a = t.skipTypeVars(a)
		return t.IsConvertibleWarn(a, b, w) ||
			t.opts.AllowBoxing && b.IsPrimitive() && t.IsSubtype(t.BoxedClass(b).Type(), a)
	}
	return t.castable(a, b, w)
}

func (t *Types) skipTypeVars(ty code.Type) code.Type {
	for ty.Tag() == code.TagTypeVar {
		ty = t.varBound(ty)
	}
	return ty
}

func (t *Types) castable(a, b code.Type, w *Warner) bool {
	switch a := a.(type) {
	case *code.PrimType, *code.BottomType, *code.NoneType:
		return t.primCastable(a, b)
	case *code.ErrorType, *code.UnknownType:
		return true
	case *code.ClassType, *code.IntersectionClassType, *code.UnionClassType:
		return t.classCastable(a, b, w)
	case *code.ArrayType:
		return t.arrayCastable(a, b, w)
	case *code.TypeVar, *code.CapturedType:
		switch b.Tag() {
		case code.TagError, code.TagBot:
			return true
		case code.TagTypeVar:
			if t.IsSubtype(a, b) {
				return true
			}
			if t.IsCastable(t.varBound(a), b) {
				w.warn()
				return true
			}
			return false
		}
		return t.IsCastableWarn(t.varBound(a), b, w)
	case *code.WildcardType:
		return t.IsCastableWarn(t.WildUpperBound(a), b, w)
	case *code.UndetVar:
		return t.undetCastable(a, b, w)
	}
	return false
}

func (t *Types) primCastable(a, b code.Type) bool {
	if b.Tag() == code.TagError || a.Tag() == code.TagNone {
		return true
	}
	switch a.Tag() {
	case code.TagBoolean:
		return b.Tag() == code.TagBoolean
	case code.TagVoid:
		return false
	case code.TagBot:
		return t.IsSubtype(a, b)
	}
	if a.IsNumeric() {
		return b.IsNumeric()
	}
	return false
}

// undetCastable casts the variable's instantiation when there is one, an
// equality bound next, and otherwise requires every upper bound to be
// castable.
func (t *Types) undetCastable(uv *code.UndetVar, b code.Type, w *Warner) bool {
	if uv.Inst != nil {
		return t.IsCastableWarn(uv.Inst, b, w)
	}
	if eq := uv.Bounds(code.BoundEq); len(eq) > 0 {
		return t.IsCastableWarn(eq[0], b, w)
	}
	uppers := uv.Bounds(code.BoundUpper)
	if len(uppers) == 0 {
		return t.IsCastableWarn(t.syms.ObjectType, b, w)
	}
	for _, u := range uppers {
		if !t.IsCastableWarn(u, b, w) {
			return false
		}
	}
	return true
}

func (t *Types) classCastable(a, b code.Type, w *Warner) bool {
	switch b.Tag() {
	case code.TagError, code.TagBot:
		return true
	case code.TagTypeVar:
		if t.IsCastable(a, t.varBound(b)) {
			w.warn()
			return true
		}
		return false
	}
	if a.IsCompound() || b.IsCompound() {
		if !a.IsCompound() {
			return t.compoundCastable(b, a, true, w)
		}
		return t.compoundCastable(a, b, false, w)
	}
	if b.Tag() != code.TagClass && b.Tag() != code.TagArray {
		return false
	}
	upcast := t.IsSubtype(t.Erasure(a), t.Erasure(b))
	if upcast || t.IsSubtype(t.Erasure(b), t.Erasure(a)) {
		switch {
		case !upcast && b.Tag() == code.TagArray:
			if !t.IsReifiable(b) {
				w.warn()
			}
			return true
		case b.IsRaw():
			return true
		case a.IsRaw():
			if !t.IsUnbounded(b) {
				w.warn()
			}
			return true
		}
		lo, hi := a, b
		if !upcast {
			lo, hi = b, a
		}
		if t.parameterizedCastable(lo, hi, upcast, w) {
			return true
		}
		if t.IsReifiable(b) {
			return t.IsSubtypeUnchecked(lo, hi)
		}
		return t.IsSubtypeUncheckedWarn(lo, hi, w)
	}
	if b.Tag() == code.TagClass {
		switch {
		case b.TSym().Flags()&flags.Interface != 0:
			if a.TSym().Flags()&flags.Final == 0 {
				return t.sideCast(a, b, w)
			}
			return t.sideCastFinal(a, b, w)
		case a.TSym().Flags()&flags.Interface != 0:
			if b.TSym().Flags()&flags.Final == 0 {
				return t.sideCast(a, b, w)
			}
			return t.sideCastFinal(a, b, w)
		}
	}
	return false
}

// parameterizedCastable checks the type arguments of a cast between
// related parameterizations, where the erasure of lo is a subtype of the
// erasure of hi.
func (t *Types) parameterizedCastable(lo, hi code.Type, upcast bool, w *Warner) bool {
	try := func(rewriteTypeVars bool) (loHigh, loLow, highSub, lowSub code.Type) {
		loHigh = t.rewriteQuantifiers(lo, true, rewriteTypeVars)
		loLow = t.rewriteQuantifiers(lo, false, rewriteTypeVars)
		hiHigh := t.rewriteQuantifiers(hi, true, rewriteTypeVars)
		hiLow := t.rewriteQuantifiers(hi, false, rewriteTypeVars)
		lowSub = t.AsSub(hiLow, loLow.TSym())
		if lowSub != nil {
			highSub = t.AsSub(hiHigh, loHigh.TSym())
		}
		return
	}
	loHigh, loLow, highSub, lowSub := try(false)
	if highSub == nil {
		loHigh, loLow, highSub, lowSub = try(true)
	}
	if highSub == nil || lowSub == nil {
		return false
	}
	if lo.TSym() != highSub.TSym() || lo.TSym() != lowSub.TSym() {
		return false
	}
	if t.DisjointTypes(loHigh.AllParams(), highSub.AllParams()) ||
		t.DisjointTypes(loHigh.AllParams(), lowSub.AllParams()) ||
		t.DisjointTypes(loLow.AllParams(), highSub.AllParams()) ||
		t.DisjointTypes(loLow.AllParams(), lowSub.AllParams()) {
		return false
	}
	if upcast {
		if t.giveWarning(lo, hi) {
			w.warn()
		}
	} else if t.giveWarning(hi, lo) {
		w.warn()
	}
	return true
}

func (t *Types) compoundCastable(ct, other code.Type, reverse bool, w *Warner) bool {
	var inner Warner
	for _, c := range t.directSupertypes(ct) {
		inner.clear()
		var ok bool
		if reverse {
			ok = t.IsCastableWarn(other, c, &inner)
		} else {
			ok = t.IsCastableWarn(c, other, &inner)
		}
		if !ok {
			return false
		}
	}
	if inner.Unchecked {
		w.warn()
	}
	return true
}

func (t *Types) arrayCastable(a *code.ArrayType, b code.Type, w *Warner) bool {
	switch b.Tag() {
	case code.TagError, code.TagBot:
		return true
	case code.TagTypeVar:
		if t.IsCastable(b, a) {
			w.warn()
			return true
		}
		return false
	case code.TagClass:
		return t.IsSubtype(a, b)
	case code.TagArray:
		ae, be := t.Elemtype(a), t.Elemtype(b)
		if ae.IsPrimitive() || be.IsPrimitive() {
			return ae.Tag() == be.Tag()
		}
		return t.IsCastableWarn(ae, be, w)
	}
	return false
}

// sideCast checks a cast between a non-final class and an interface, or
// two interfaces: their common generic supertypes must agree on type
// arguments.
func (t *Types) sideCast(from, to code.Type, w *Warner) bool {
	reverse := false
	if to.TSym().Flags()&flags.Interface == 0 {
		from, to = to, from
		reverse = true
	}
	commonSupers := t.superClosure(to, t.Erasure(from))
	for _, cs := range commonSupers {
		a1 := t.AsSuper(from, cs.TSym())
		b1 := t.AsSuper(to, cs.TSym())
		if a1 == nil || b1 == nil {
			continue
		}
		if t.DisjointTypes(a1.AllParams(), b1.AllParams()) {
			return false
		}
		if reverse {
			if t.giveWarning(b1, a1) {
				w.warn()
			}
		} else if t.giveWarning(a1, b1) {
			w.warn()
		}
	}
	if !t.IsReifiable(to) && !t.IsReifiable(from) {
		w.warn()
	}
	return true
}

// sideCastFinal checks a cast between an interface and a final class,
// which must implement it.
func (t *Types) sideCastFinal(from, to code.Type, w *Warner) bool {
	reverse := false
	if to.TSym().Flags()&flags.Interface == 0 {
		from, to = to, from
		reverse = true
	}
	t1 := t.AsSuper(from, to.TSym())
	if t1 == nil {
		return false
	}
	if t.DisjointTypes(t1.AllParams(), to.AllParams()) {
		return false
	}
	if !t.IsReifiable(to) {
		if reverse {
			if t.giveWarning(to, t1) {
				w.warn()
			}
		} else if t.giveWarning(t1, to) {
			w.warn()
		}
	}
	return true
}

// superClosure lists the parameterized supertypes of t that s is a
// subtype of in erasure.
func (t *Types) superClosure(ty, s code.Type) []code.Type {
	var cl []code.Type
	for _, l := range t.Interfaces(ty) {
		if t.IsSubtype(s, t.Erasure(l)) {
			cl = t.Insert(cl, l)
		} else {
			cl = t.Union(cl, t.superClosure(l, s))
		}
	}
	return cl
}

func (t *Types) giveWarning(from, to code.Type) bool {
	subFrom := t.AsSub(from, to.TSym())
	return to.IsParameterized() &&
		(!(t.IsUnbounded(to) || t.IsSubtype(from, to) ||
			subFrom != nil && t.containsTypeEquivalents(subFrom.AllParams(), from.AllParams())))
}

// DisjointTypes reports whether some pair of corresponding arguments is
// provably disjoint.
func (t *Types) DisjointTypes(as, bs []code.Type) bool {
	for i := 0; i < len(as) && i < len(bs); i++ {
		if t.DisjointType(as[i], bs[i]) {
			return true
		}
	}
	return false
}

// DisjointType reports whether two type arguments can have no common
// instantiation.
func (t *Types) DisjointType(a, b code.Type) bool {
	a, b = unannotated(a), unannotated(b)
	if w, ok := a.(*code.WildcardType); ok {
		return t.disjointWildcard(w, b)
	}
	if w, ok := b.(*code.WildcardType); ok {
		return t.disjointWildcard(w, a)
	}
	return t.notSoftSubtypeRecursive(a, b) || t.notSoftSubtypeRecursive(b, a)
}

func (t *Types) disjointWildcard(w *code.WildcardType, s code.Type) bool {
	if w.IsUnbound() {
		return false
	}
	o, ok := s.(*code.WildcardType)
	if !ok {
		if w.IsExtendsBound() {
			return t.notSoftSubtypeRecursive(s, w.Bound)
		}
		return t.notSoftSubtypeRecursive(w.Bound, s)
	}
	if o.IsUnbound() {
		return false
	}
	if w.IsExtendsBound() {
		if o.IsExtendsBound() {
			return !t.isCastableRecursive(w.Bound, t.WildUpperBound(o))
		}
		if o.IsSuperBound() {
			return t.notSoftSubtypeRecursive(t.WildLowerBound(o), w.Bound)
		}
	} else if w.IsSuperBound() && o.IsExtendsBound() {
		return t.notSoftSubtypeRecursive(w.Bound, t.WildUpperBound(o))
	}
	return false
}

func (t *Types) isCastableRecursive(a, b code.Type) bool {
	if !t.enter(&t.disjointCache, a, b, false) {
		return true
	}
	defer leave(&t.disjointCache)
	return t.IsCastable(a, b)
}

func (t *Types) notSoftSubtypeRecursive(a, b code.Type) bool {
	if !t.enter(&t.disjointCache, a, b, false) {
		return false
	}
	defer leave(&t.disjointCache)
	return t.NotSoftSubtype(a, b)
}

// NotSoftSubtype is the negation of a relaxed subtype test used by the
// disjointness check: type variables are compared by castability of their
// bounds.
func (t *Types) NotSoftSubtype(a, b code.Type) bool {
	a, b = unannotated(a), unannotated(b)
	if a == b {
		return false
	}
	if a.Tag() == code.TagTypeVar {
		return !t.IsCastable(t.varBound(a), t.relaxBound(b))
	}
	if b.Tag() != code.TagWildcard {
		b = t.CvarUpperBound(b)
	}
	return !t.IsSubtype(a, t.relaxBound(b))
}

func (t *Types) relaxBound(ty code.Type) code.Type {
	if ty.Tag() != code.TagTypeVar {
		return ty
	}
	return t.rewriteQuantifiers(t.skipTypeVars(ty), true, true)
}

// IsReifiable reports whether ty is fully available at run time.
func (t *Types) IsReifiable(ty code.Type) bool {
	switch ty := unannotated(ty).(type) {
	case *code.ClassType:
		if !ty.IsParameterized() {
			return true
		}
		for _, p := range ty.AllParams() {
			if !p.IsUnbound() {
				return false
			}
		}
		return true
	case *code.IntersectionClassType:
		return false
	case *code.ArrayType:
		return t.IsReifiable(ty.Elem)
	case *code.TypeVar, *code.CapturedType:
		return false
	}
	return true
}

// IsUnbounded reports whether every argument of ty contains the unbounded
// wildcard of its type parameter.
func (t *Types) IsUnbounded(ty code.Type) bool {
	ct, ok := unannotated(ty).(*code.ClassType)
	if !ok {
		return true
	}
	params := ct.TSym().Type().AllParams()
	args := ct.AllParams()
	for i := 0; i < len(params) && i < len(args); i++ {
		unb := code.NewWildcardType(t.syms.ObjectType, code.BoundUnbound, t.syms.BoundClass)
		if tv, ok := params[i].(*code.TypeVar); ok {
			unb.Formal = tv
		}
		if !t.ContainsType(args[i], unb) {
			return false
		}
	}
	return true
}

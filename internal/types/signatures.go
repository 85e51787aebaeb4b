package types

import "nominal/internal/code"

// HasSameArgs reports whether two method types have equivalent parameter
// types. Generic methods must also have the same bounds, after renaming
// the type variables of b to those of a.
func (t *Types) HasSameArgs(a, b code.Type) bool { return t.hasSameArgs(a, b, true) }

// HasSameArgsLoose is HasSameArgs that lets a generic method match a
// non-generic one.
func (t *Types) HasSameArgsLoose(a, b code.Type) bool { return t.hasSameArgs(a, b, false) }

func (t *Types) hasSameArgs(a, b code.Type, strict bool) bool {
	a, b = unannotated(a), unannotated(b)
	switch a := a.(type) {
	case *code.MethodType:
		return b.Tag() == code.TagMethod && t.containsTypeEquivalents(a.Params, b.ParameterTypes())
	case *code.ForAll:
		fb, ok := b.(*code.ForAll)
		if !ok {
			if strict {
				return false
			}
			return t.hasSameArgs(a.QType, b, strict)
		}
		return t.HasSameBounds(a, fb) && t.hasSameArgs(a.QType, t.Subst(fb.QType, fb.TVars, a.TVars), strict)
	}
	return false
}

// IsSubSignature reports whether a has the same arguments as b or as the
// erasure of b.
func (t *Types) IsSubSignature(a, b code.Type) bool { return t.isSubSignature(a, b, true) }

// IsSubSignatureLoose is IsSubSignature with loose argument matching.
func (t *Types) IsSubSignatureLoose(a, b code.Type) bool { return t.isSubSignature(a, b, false) }

func (t *Types) isSubSignature(a, b code.Type, strict bool) bool {
	return t.hasSameArgs(a, b, strict) || t.hasSameArgs(a, t.Erasure(b), strict)
}

// OverrideEquivalent reports whether either signature is a subsignature
// of the other.
func (t *Types) OverrideEquivalent(a, b code.Type) bool {
	return t.HasSameArgs(a, b) || t.HasSameArgs(a, t.Erasure(b)) || t.HasSameArgs(t.Erasure(a), b)
}

// ResultSubtype checks that the return type of a is return-type
// substitutable for that of b once b's type variables are renamed to a's.
func (t *Types) ResultSubtype(a, b code.Type, w *Warner) bool {
	res := t.Subst(b.ReturnType(), b.TypeArguments(), a.TypeArguments())
	return t.CovariantReturnType(a.ReturnType(), res, w)
}

// ReturnTypeSubstitutable checks a's return type against b's, erasing
// b's when the signatures differ.
func (t *Types) ReturnTypeSubstitutable(a, b code.Type) bool {
	if t.HasSameArgs(a, b) {
		return t.ResultSubtype(a, b, nil)
	}
	return t.CovariantReturnType(a.ReturnType(), t.Erasure(b.ReturnType()), nil)
}

// ReturnTypeSubstitutableTo checks a's return type against bres, the
// already adapted return type of b.
func (t *Types) ReturnTypeSubstitutableTo(a, b, bres code.Type, w *Warner) bool {
	ares := a.ReturnType()
	switch {
	case t.IsSameType(ares, bres):
		return true
	case ares.IsPrimitive() || bres.IsPrimitive():
		return false
	case t.HasSameArgs(a, b):
		return t.CovariantReturnType(ares, bres, w)
	case !t.opts.AllowCovariantReturns:
		return false
	case t.IsSubtypeUncheckedWarn(ares, bres, w):
		return true
	case !t.IsSubtype(ares, t.Erasure(bres)):
		return false
	}
	w.warn()
	return true
}

// CovariantReturnType reports whether a may replace b as a return type.
func (t *Types) CovariantReturnType(a, b code.Type, w *Warner) bool {
	return t.IsSameType(a, b) ||
		t.opts.AllowCovariantReturns && !a.IsPrimitive() && !b.IsPrimitive() && t.IsAssignableWarn(a, b, w)
}

// CreateMethodTypeWithThrown copies a method type, or the method type
// under a generic one, with thrown replaced.
func (t *Types) CreateMethodTypeWithThrown(mt code.Type, thrown []code.Type) code.Type {
	switch mt := unannotated(mt).(type) {
	case *code.MethodType:
		if sameSlice(mt.Thrown, thrown) {
			return mt
		}
		c := code.NewMethodType(mt.Params, mt.Result, thrown, mt.TSym())
		c.RecvType = mt.RecvType
		return c
	case *code.ForAll:
		q := t.CreateMethodTypeWithThrown(mt.QType, thrown)
		if q == mt.QType {
			return mt
		}
		return code.NewForAll(mt.TVars, q)
	}
	return mt
}

// CreateMethodTypeWithReturn copies a method type with a new result.
func (t *Types) CreateMethodTypeWithReturn(mt code.Type, res code.Type) code.Type {
	switch mt := unannotated(mt).(type) {
	case *code.MethodType:
		c := code.NewMethodType(mt.Params, res, mt.Thrown, mt.TSym())
		c.RecvType = mt.RecvType
		return c
	case *code.ForAll:
		return code.NewForAll(mt.TVars, t.CreateMethodTypeWithReturn(mt.QType, res))
	}
	return mt
}

// thrownIntersection keeps the exceptions of as covered by bs and those
// of bs covered by as, without redundant subtypes.
func (t *Types) thrownIntersection(as, bs []code.Type) []code.Type {
	var out []code.Type
	for _, a := range as {
		if t.subsetOf(a, bs) {
			out = t.incl(a, out)
		}
	}
	for _, b := range bs {
		if t.subsetOf(b, as) {
			out = t.incl(b, out)
		}
	}
	return out
}

func (t *Types) subsetOf(ty code.Type, ts []code.Type) bool {
	for _, s := range ts {
		if t.IsSubtype(ty, s) {
			return true
		}
	}
	return false
}

func (t *Types) incl(ty code.Type, ts []code.Type) []code.Type {
	if t.subsetOf(ty, ts) {
		return ts
	}
	out := []code.Type{ty}
	for _, s := range ts {
		if !t.IsSubtype(s, ty) {
			out = append(out, s)
		}
	}
	return out
}

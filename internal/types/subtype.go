package types

import (
	"fmt"

	"nominal/internal/code"
)

// WildUpperBound is the upper bound of a wildcard, looking through nested
// wildcards. A super-bounded wildcard answers the bound of the type
// parameter it instantiates. Other types are returned unchanged.
func (t *Types) WildUpperBound(ty code.Type) code.Type {
	if w, ok := unannotated(ty).(*code.WildcardType); ok {
		if w.IsSuperBound() {
			if w.Formal == nil {
				return t.syms.ObjectType
			}
			return t.WildUpperBound(w.Formal.UpperBound())
		}
		return t.WildUpperBound(w.Bound)
	}
	return ty
}

// CvarUpperBound replaces a captured variable by its upper bound.
func (t *Types) CvarUpperBound(ty code.Type) code.Type {
	if c, ok := unannotated(ty).(*code.CapturedType); ok {
		return t.CvarUpperBound(c.UpperBound())
	}
	return ty
}

// WildLowerBound is the lower bound of a wildcard; extends-bounded and
// unbounded wildcards have the bottom type.
func (t *Types) WildLowerBound(ty code.Type) code.Type {
	if w, ok := unannotated(ty).(*code.WildcardType); ok {
		if w.IsExtendsBound() {
			return t.syms.BotType
		}
		return t.WildLowerBound(w.Bound)
	}
	return ty
}

// CvarLowerBound replaces a captured variable by its lower bound.
func (t *Types) CvarLowerBound(ty code.Type) code.Type {
	if c, ok := unannotated(ty).(*code.CapturedType); ok {
		return t.CvarLowerBound(c.LowerBound())
	}
	return ty
}

// UpperBound looks through wildcards and captured variables.
func (t *Types) UpperBound(ty code.Type) code.Type {
	return t.CvarUpperBound(t.WildUpperBound(ty))
}

// LowerBound looks through wildcards and captured variables.
func (t *Types) LowerBound(ty code.Type) code.Type {
	return t.CvarLowerBound(t.WildLowerBound(ty))
}

func (t *Types) upperBounds(ts []code.Type) []code.Type {
	return code.MapTypes(ts, t.WildUpperBound)
}

// IsSubtype reports whether a is a subtype of b, applying capture
// conversion to a first.
func (t *Types) IsSubtype(a, b code.Type) bool { return t.isSubtype(a, b, true) }

// IsSubtypeNoCapture is IsSubtype without capture conversion.
func (t *Types) IsSubtypeNoCapture(a, b code.Type) bool { return t.isSubtype(a, b, false) }

// IsSubtypes compares two lists pairwise; they must have equal length.
func (t *Types) IsSubtypes(as, bs []code.Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !t.IsSubtype(as[i], bs[i]) {
			return false
		}
	}
	return true
}

func (t *Types) isSubtype(a, b code.Type, capture bool) bool {
	a, b = unannotated(a), unannotated(b)
	if a == b {
		return true
	}
	if b.IsPartial() {
		return t.IsSuperType(b, a)
	}
	if b.IsCompound() {
		for _, c := range t.directSupertypes(b) {
			if !t.isSubtype(a, c, capture) {
				return false
			}
		}
		return true
	}
	if capture {
		a = t.Capture(a)
	}
	if lower := t.CvarLowerBound(t.WildLowerBound(b)); lower != b && lower.Tag() != code.TagBot {
		return t.isSubtype(a, lower, false)
	}
	return t.subtype(a, b)
}

// varBound is the upper bound of a type variable, the root class when
// none was recorded.
func (t *Types) varBound(v code.Type) code.Type {
	if ub := v.UpperBound(); ub != nil {
		return ub
	}
	return t.syms.ObjectType
}

func (t *Types) directSupertypes(ty code.Type) []code.Type {
	ifaces := t.Interfaces(ty)
	out := make([]code.Type, 0, 1+len(ifaces))
	out = append(out, t.Supertype(ty))
	return append(out, ifaces...)
}

func (t *Types) subtype(a, b code.Type) bool {
	switch a := a.(type) {
	case *code.PrimType:
		switch a.Tag() {
		case code.TagBoolean, code.TagVoid:
			return b.Tag() == a.Tag()
		}
		return a.Tag().IsSubRangeOf(b.Tag())
	case *code.TypeVar, *code.CapturedType:
		return t.isSubtype(t.varBound(a), b, false)
	case *code.BottomType:
		return isTag(b, code.TagBot, code.TagClass, code.TagArray, code.TagTypeVar)
	case *code.NoneType, *code.WildcardType:
		return false
	case *code.ErrorType, *code.UnknownType:
		return true
	case *code.ClassType, *code.IntersectionClassType, *code.UnionClassType:
		return t.classSubtype(a, b)
	case *code.ArrayType:
		return t.arraySubtype(a, b)
	case *code.UndetVar:
		if code.Type(a) == b || a.QType == b || isTag(b, code.TagError, code.TagUnknown) {
			return true
		}
		if b.Tag() == code.TagBot {
			return false
		}
		if a.Inst != nil {
			return t.isSubtype(a.Inst, b, false)
		}
		a.AddBound(code.BoundUpper, b, t)
		return true
	}
	panic(fmt.Sprintf("types: subtype query on %s", a.Tag()))
}

func (t *Types) classSubtype(a, b code.Type) bool {
	if b.TSym() == nil {
		return false
	}
	sup := t.AsSuper(a, b.TSym())
	if sup == nil {
		return false
	}
	if sup.Tag() != code.TagClass {
		return t.isSubtype(sup, b, false)
	}
	return sup.TSym() == b.TSym() &&
		(!b.IsParameterized() || t.containsTypeRecursive(b, sup)) &&
		t.isSubtype(sup.EnclosingType(), b.EnclosingType(), false)
}

func (t *Types) arraySubtype(a *code.ArrayType, b code.Type) bool {
	switch b := b.(type) {
	case *code.ArrayType:
		if a.Elem.IsPrimitive() {
			return a.Elem.Tag() == b.Elem.Tag()
		}
		return t.IsSubtypeNoCapture(a.Elem, b.Elem)
	case *code.ClassType:
		sym := b.TSym()
		return sym == t.objectSym() || sym == t.syms.CloneableType.TSym() || sym == t.syms.SerializableType.TSym()
	}
	return false
}

// IsSuperType reports whether a is a supertype of b.
func (t *Types) IsSuperType(a, b code.Type) bool {
	a, b = unannotated(a), unannotated(b)
	switch a := a.(type) {
	case *code.ErrorType, *code.UnknownType:
		return true
	case *code.UndetVar:
		if code.Type(a) == b || a.QType == b || isTag(b, code.TagError, code.TagBot) {
			return true
		}
		if a.Inst != nil {
			return t.IsSubtype(b, a.Inst)
		}
		a.AddBound(code.BoundLower, b, t)
		return true
	}
	return t.IsSubtype(b, a)
}

func (t *Types) containsTypeRecursive(a, b code.Type) bool {
	if t.enter(&t.containsCache, a, b, false) {
		defer leave(&t.containsCache)
		return t.ContainsTypes(a.TypeArguments(), b.TypeArguments())
	}
	return t.ContainsTypes(a.TypeArguments(), t.rewriteSupers(b).TypeArguments())
}

// rewriteSupers widens the arguments of a parameterized type that
// mention super-bounded wildcards, so a recursive containment check
// can terminate.
func (t *Types) rewriteSupers(ty code.Type) code.Type {
	if !ty.IsParameterized() {
		return ty
	}
	from, to, err := t.AdaptSelf(ty)
	if err != nil || len(from) == 0 {
		return ty
	}
	rewrite := make([]code.Type, len(to))
	changed := false
	for i, orig := range to {
		s := t.rewriteSupers(orig)
		switch {
		case s.IsSuperBound() && !s.IsExtendsBound():
			s = code.NewWildcardType(t.syms.ObjectType, code.BoundUnbound, t.syms.BoundClass)
			changed = true
		case s != orig:
			s = code.NewWildcardType(t.WildUpperBound(s), code.BoundExtends, t.syms.BoundClass)
			changed = true
		}
		rewrite[i] = s
	}
	if !changed {
		return ty
	}
	return t.Subst(ty.TSym().Type(), from, rewrite)
}

// IsSameType is loose type identity: type variables are identified by
// symbol and bounds, and arguments by mutual containment.
func (t *Types) IsSameType(a, b code.Type) bool { return t.sameType(a, b, false) }

// IsSameTypeStrict identifies type variables by reference and compares
// wildcards structurally.
func (t *Types) IsSameTypeStrict(a, b code.Type) bool { return t.sameType(a, b, true) }

// IsSameTypes compares two lists pairwise.
func (t *Types) IsSameTypes(as, bs []code.Type) bool { return t.sameTypes(as, bs, false) }

func (t *Types) sameTypes(as, bs []code.Type, strict bool) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !t.sameType(as[i], bs[i], strict) {
			return false
		}
	}
	return true
}

func (t *Types) sameType(a, b code.Type, strict bool) bool {
	a, b = unannotated(a), unannotated(b)
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if b.IsPartial() && !a.IsPartial() {
		return t.sameType(b, a, strict)
	}
	switch a := a.(type) {
	case *code.PrimType, *code.BottomType, *code.NoneType:
		return a.Tag() == b.Tag()
	case *code.TypeVar, *code.CapturedType:
		return t.sameTypeVar(a, b, strict)
	case *code.WildcardType:
		if strict {
			w, ok := b.(*code.WildcardType)
			return ok && w.Kind == a.Kind && (a.IsUnbound() || t.sameType(a.Bound, w.Bound, true))
		}
		return false
	case *code.ErrorType, *code.UnknownType:
		return true
	case *code.ClassType, *code.IntersectionClassType, *code.UnionClassType:
		return t.sameClassType(a, b, strict)
	case *code.ArrayType:
		s, ok := b.(*code.ArrayType)
		return ok && t.containsTypeEquivalent(a.Elem, s.Elem)
	case *code.MethodType:
		return t.hasSameArgs(a, b, strict) && t.sameType(a.ReturnType(), b.ReturnType(), strict)
	case *code.PackageType:
		return false
	case *code.ForAll:
		s, ok := b.(*code.ForAll)
		if !ok {
			return false
		}
		return t.HasSameBounds(a, s) && t.sameType(a.QType, t.Subst(s.QType, s.TVars, a.TVars), strict)
	case *code.UndetVar:
		if b.Tag() == code.TagWildcard {
			return false
		}
		if code.Type(a) == b || a.QType == b || isTag(b, code.TagError, code.TagUnknown) {
			return true
		}
		if a.Inst != nil {
			return t.sameType(a.Inst, b, strict)
		}
		a.AddBound(code.BoundEq, b, t)
		return true
	}
	return false
}

func (t *Types) sameTypeVar(a, b code.Type, strict bool) bool {
	switch b.Tag() {
	case code.TagTypeVar:
		if strict {
			return false
		}
		if a.TSym() != b.TSym() {
			return false
		}
		if !t.enter(&t.sameTVCache, a, b, true) {
			return false
		}
		defer leave(&t.sameTVCache)
		return t.sameType(a.UpperBound(), b.UpperBound(), false)
	case code.TagWildcard:
		return b.IsSuperBound() && !b.IsExtendsBound() &&
			t.sameType(a, t.WildUpperBound(b), strict) && t.sameType(a, t.WildLowerBound(b), strict)
	}
	return false
}

func (t *Types) sameClassType(a, b code.Type, strict bool) bool {
	if b.IsSuperBound() && !b.IsExtendsBound() {
		return t.sameType(a, t.WildUpperBound(b), strict) && t.sameType(a, t.WildLowerBound(b), strict)
	}
	if a.IsCompound() && b.IsCompound() {
		if !t.sameType(t.Supertype(a), t.Supertype(b), strict) {
			return false
		}
		ai, bi := t.Interfaces(a), t.Interfaces(b)
		if len(ai) != len(bi) {
			return false
		}
		for _, x := range ai {
			found := false
			for _, y := range bi {
				if t.sameType(x, y, strict) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}
	if a.TSym() != b.TSym() || b.Tag() != code.TagClass {
		return false
	}
	if !t.sameType(a.EnclosingType(), b.EnclosingType(), strict) {
		return false
	}
	if strict {
		return t.sameTypes(a.TypeArguments(), b.TypeArguments(), true)
	}
	return t.containsTypeEquivalents(a.TypeArguments(), b.TypeArguments())
}

// ContainsTypeEquivalent reports identity or mutual containment.
func (t *Types) ContainsTypeEquivalent(a, b code.Type) bool {
	return t.containsTypeEquivalent(a, b)
}

func (t *Types) containsTypeEquivalent(a, b code.Type) bool {
	return t.IsSameType(a, b) || t.ContainsType(a, b) && t.ContainsType(b, a)
}

func (t *Types) containsTypeEquivalents(as, bs []code.Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !t.containsTypeEquivalent(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// ContainsTypes reports pairwise containment of two argument lists of
// equal length.
func (t *Types) ContainsTypes(as, bs []code.Type) bool {
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if !t.ContainsType(as[i], bs[i]) {
			return false
		}
	}
	return true
}

// ContainsType reports whether the type argument a contains b.
func (t *Types) ContainsType(a, b code.Type) bool {
	a, b = unannotated(a), unannotated(b)
	switch a := a.(type) {
	case *code.WildcardType:
		if b.IsPartial() {
			return t.ContainedBy(b, a)
		}
		return t.isSameWildcard(a, b) || t.isCaptureOf(b, a) ||
			(a.IsExtendsBound() || t.IsSubtypeNoCapture(t.WildLowerBound(a), t.CvarLowerBound(t.WildLowerBound(b)))) &&
				(a.IsSuperBound() || t.IsSubtypeNoCapture(t.CvarUpperBound(t.WildUpperBound(b)), t.WildUpperBound(a)))
	case *code.UndetVar:
		if b.Tag() != code.TagWildcard {
			return t.IsSameType(a, b)
		}
		return false
	case *code.ErrorType:
		return true
	}
	if b.IsPartial() {
		return t.ContainedBy(b, a)
	}
	return t.IsSameType(a, b)
}

// ContainedBy reports whether a is contained by b. An inference variable
// contained by a bounded wildcard picks up the wildcard's bound.
func (t *Types) ContainedBy(a, b code.Type) bool {
	a, b = unannotated(a), unannotated(b)
	switch a := a.(type) {
	case *code.UndetVar:
		w, ok := b.(*code.WildcardType)
		if !ok {
			return t.IsSameType(a, b)
		}
		switch w.Kind {
		case code.BoundExtends:
			a.AddBound(code.BoundUpper, t.WildUpperBound(w), t)
		case code.BoundSuper:
			a.AddBound(code.BoundLower, t.WildLowerBound(w), t)
		}
		return true
	case *code.ErrorType, *code.UnknownType:
		return true
	}
	return t.ContainsType(b, a)
}

func (t *Types) isSameWildcard(w *code.WildcardType, ty code.Type) bool {
	o, ok := ty.(*code.WildcardType)
	if !ok || o.Kind != w.Kind {
		return false
	}
	if w.IsUnbound() {
		return true
	}
	return o.Bound == w.Bound || t.IsSameType(o.Bound, w.Bound)
}

func (t *Types) isCaptureOf(ty code.Type, w *code.WildcardType) bool {
	c, ok := ty.(*code.CapturedType)
	return ok && t.isSameWildcard(w, c.Wildcard)
}

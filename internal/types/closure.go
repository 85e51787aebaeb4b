package types

import (
	"slices"

	"nominal/internal/code"
)

// Closure lists every supertype of ty, itself included, in precedence
// order: type variables first, then classes by descending rank, ties
// broken by reverse qualified name.
func (t *Types) Closure(ty code.Type) []code.Type {
	ty = unannotated(ty)
	if cl, ok := t.closures[ty]; ok {
		return cl
	}
	var cl []code.Type
	st := t.Supertype(ty)
	switch {
	case ty.IsCompound():
		cl = t.Closure(st)
	case st.Tag() == code.TagClass:
		cl = t.Insert(t.Closure(st), ty)
	case st.Tag() == code.TagTypeVar:
		cl = append([]code.Type{ty}, t.Closure(st)...)
	default:
		cl = []code.Type{ty}
	}
	for _, i := range t.Interfaces(ty) {
		cl = t.Union(cl, t.Closure(i))
	}
	t.closures[ty] = cl
	return cl
}

// Insert adds ty to an ordered closure unless a type with the same
// symbol is already there.
func (t *Types) Insert(cl []code.Type, ty code.Type) []code.Type {
	for i, c := range cl {
		if t.precedes(ty.TSym(), c.TSym()) {
			return slices.Insert(slices.Clone(cl), i, ty)
		}
		if !t.precedes(c.TSym(), ty.TSym()) {
			return cl
		}
	}
	return append(slices.Clip(cl), ty)
}

// Union merges two ordered closures.
func (t *Types) Union(cl1, cl2 []code.Type) []code.Type {
	if len(cl1) == 0 {
		return cl2
	}
	if len(cl2) == 0 {
		return cl1
	}
	out := make([]code.Type, 0, len(cl1)+len(cl2))
	for len(cl1) > 0 && len(cl2) > 0 {
		switch {
		case t.precedes(cl1[0].TSym(), cl2[0].TSym()):
			out = append(out, cl1[0])
			cl1 = cl1[1:]
		case t.precedes(cl2[0].TSym(), cl1[0].TSym()):
			out = append(out, cl2[0])
			cl2 = cl2[1:]
		default:
			out = append(out, cl1[0])
			cl1, cl2 = cl1[1:], cl2[1:]
		}
	}
	out = append(out, cl1...)
	return append(out, cl2...)
}

// Intersect keeps the types present in both ordered closures. Different
// parameterizations of one generic class merge into a wildcard
// parameterization; a raw member makes the result raw.
func (t *Types) Intersect(cl1, cl2 []code.Type) []code.Type {
	var out []code.Type
	for len(cl1) > 0 && len(cl2) > 0 {
		a, b := cl1[0], cl2[0]
		switch {
		case t.precedes(a.TSym(), b.TSym()):
			cl1 = cl1[1:]
			continue
		case t.precedes(b.TSym(), a.TSym()):
			cl2 = cl2[1:]
			continue
		case t.IsSameType(a, b):
			out = append(out, a)
		case a.TSym() == b.TSym() && a.Tag() == code.TagClass && b.Tag() == code.TagClass:
			if a.IsParameterized() && b.IsParameterized() {
				out = append(out, t.merge(a, b))
			} else if a.IsRaw() || b.IsRaw() {
				out = append(out, t.Erasure(a))
			}
		}
		cl1, cl2 = cl1[1:], cl2[1:]
	}
	return out
}

func (t *Types) merge(c1, c2 code.Type) code.Type {
	act1, act2 := c1.TypeArguments(), c2.TypeArguments()
	formals := c1.TSym().Type().TypeArguments()
	n := min(len(act1), len(act2), len(formals))
	merged := make([]code.Type, n)
	for i := 0; i < n; i++ {
		switch {
		case t.ContainsType(act1[i], act2[i]):
			merged[i] = act1[i]
		case t.ContainsType(act2[i], act1[i]):
			merged[i] = act2[i]
		default:
			var w *code.WildcardType
			if t.enter(&t.mergeCache, c1, c2, false) {
				w = code.NewWildcardType(t.Lub(t.WildUpperBound(act1[i]), t.WildUpperBound(act2[i])), code.BoundExtends, t.syms.BoundClass)
				leave(&t.mergeCache)
			} else {
				w = code.NewWildcardType(t.syms.ObjectType, code.BoundUnbound, t.syms.BoundClass)
			}
			if tv, ok := formals[i].(*code.TypeVar); ok {
				w = w.WithFormal(tv)
			}
			merged[i] = w
		}
	}
	return code.NewClassType(c1.EnclosingType(), merged, c1.TSym())
}

// precedes is the total order closures are kept in.
func (t *Types) precedes(a, b code.Symbol) bool {
	if a == b {
		return false
	}
	at, bt := a.Type(), b.Type()
	if at.Tag() == bt.Tag() {
		switch at.Tag() {
		case code.TagClass:
			ra, rb := t.Rank(at), t.Rank(bt)
			return rb < ra || rb == ra && b.QualifiedName().Compare(a.QualifiedName()) < 0
		case code.TagTypeVar:
			return t.IsSubtype(at, bt)
		}
	}
	return at.Tag() == code.TagTypeVar
}

// closureMin drops from cl every element that is a supertype of an
// earlier one and every type variable with a subtype later in cl.
// Classes come before interfaces in the result.
func (t *Types) closureMin(cl []code.Type) []code.Type {
	var classes, ifaces []code.Type
	skip := make(map[code.Type]bool)
	for i, cur := range cl {
		keep := !skip[cur]
		if keep && cur.Tag() == code.TagTypeVar {
			for _, later := range cl[i+1:] {
				if t.IsSubtypeNoCapture(later, cur) {
					keep = false
					break
				}
			}
		}
		if !keep {
			continue
		}
		if cur.IsInterface() {
			ifaces = append(ifaces, cur)
		} else {
			classes = append(classes, cur)
		}
		for _, later := range cl[i+1:] {
			if t.IsSubtypeNoCapture(cur, later) {
				skip[later] = true
			}
		}
	}
	return append(classes, ifaces...)
}

// compoundMin is the single minimal element of cl or the intersection of
// the minimal elements.
func (t *Types) compoundMin(cl []code.Type) code.Type {
	if len(cl) == 0 {
		return t.syms.ObjectType
	}
	mins := t.closureMin(cl)
	switch len(mins) {
	case 0:
		return nil
	case 1:
		return mins[0]
	}
	return t.MakeIntersectionType(mins...)
}

func (t *Types) erasedSupertypes(ty code.Type) []code.Type {
	cl := t.Closure(ty)
	out := make([]code.Type, len(cl))
	for i, s := range cl {
		if s.Tag() == code.TagTypeVar {
			out[i] = s
		} else {
			out[i] = t.Erasure(s)
		}
	}
	return out
}

// MinimalErasedCandidates is the minimal erased candidate set of ts: the
// erased supertypes common to every input, without those that are
// supertypes of another candidate.
func (t *Types) MinimalErasedCandidates(ts ...code.Type) []code.Type {
	var cl []code.Type
	first := true
	for _, ty := range ts {
		if !isTag(ty, code.TagClass, code.TagTypeVar) {
			continue
		}
		if first {
			cl = t.erasedSupertypes(ty)
			first = false
		} else {
			cl = t.Intersect(cl, t.erasedSupertypes(ty))
		}
	}
	return t.closureMin(cl)
}

const (
	unknownBound = 0
	arrayBound   = 1
	classBound   = 2
)

// Lub is the least upper bound of ts. The null type is the lub of no
// reference types; a primitive argument yields the error type.
func (t *Types) Lub(ts ...code.Type) code.Type {
	if !t.tracing() {
		return t.lub(ts)
	}
	sp := t.span("lub")
	res := t.lub(ts)
	sp.End(res.String())
	return res
}

func (t *Types) lub(in []code.Type) code.Type {
	ts := make([]code.Type, len(in))
	kinds := make([]int, len(in))
	bound := unknownBound
	for i, ty := range in {
		ty = unannotated(ty)
		ts[i] = ty
		switch ty.Tag() {
		case code.TagClass:
			kinds[i] = classBound
		case code.TagArray:
			kinds[i] = arrayBound
		case code.TagTypeVar:
			ub := ty
			for ub.Tag() == code.TagTypeVar {
				ub = t.varBound(ub)
			}
			if ub.Tag() == code.TagArray {
				kinds[i] = arrayBound
				ts[i] = ub
			} else {
				kinds[i] = classBound
			}
		default:
			if ty.IsPrimitive() {
				return t.syms.ErrType
			}
		}
		bound |= kinds[i]
	}
	switch bound {
	case unknownBound:
		return t.syms.BotType
	case arrayBound:
		elems := make([]code.Type, len(ts))
		for i, ty := range ts {
			elems[i] = t.Elemtype(ty)
			if elems[i].IsPrimitive() {
				for _, other := range ts[1:] {
					if !t.IsSameType(ts[0], other) {
						return t.ArraySuperType()
					}
				}
				return ts[0]
			}
		}
		return t.MakeArrayType(t.lub(elems))
	case classBound:
		start := slices.IndexFunc(ts, func(ty code.Type) bool { return isTag(ty, code.TagClass, code.TagTypeVar) })
		mec := t.MinimalErasedCandidates(ts[start:]...)
		var candidates []code.Type
		for _, erased := range mec {
			lci := []code.Type{t.AsSuper(ts[start], erased.TSym())}
			for _, ty := range ts[start+1:] {
				var sup []code.Type
				if s := t.AsSuper(ty, erased.TSym()); s != nil {
					sup = []code.Type{s}
				}
				lci = t.Intersect(lci, sup)
			}
			candidates = append(candidates, lci...)
		}
		if res := t.compoundMin(candidates); res != nil {
			return res
		}
		return t.syms.ObjectType
	}
	classes := []code.Type{t.ArraySuperType()}
	for i, ty := range ts {
		if kinds[i] != arrayBound {
			classes = append([]code.Type{ty}, classes...)
		}
	}
	return t.lub(classes)
}

// Glb is the greatest lower bound of ts, folded pairwise. An intersection
// needing two unrelated classes yields an error type.
func (t *Types) Glb(ts ...code.Type) code.Type {
	if len(ts) == 0 {
		return t.syms.ObjectType
	}
	res := unannotated(ts[0])
	for _, s := range ts[1:] {
		if res.IsErroneous() {
			return res
		}
		res = t.glb(res, unannotated(s))
	}
	return res
}

func (t *Types) glb(a, b code.Type) code.Type {
	switch {
	case b == nil:
		return a
	case a.IsPrimitive() || b.IsPrimitive():
		return t.syms.ErrType
	case t.IsSubtypeNoCapture(a, b):
		return a
	case t.IsSubtypeNoCapture(b, a):
		return b
	}
	return t.glbFlattened(t.Union(t.Closure(a), t.Closure(b)), a)
}

func (t *Types) glbFlattened(flat []code.Type, errT code.Type) code.Type {
	bounds := t.closureMin(flat)
	switch len(bounds) {
	case 0:
		return t.syms.ObjectType
	case 1:
		return bounds[0]
	}
	classes := 0
	var lowers []code.Type
	for _, b := range bounds {
		if b.IsInterface() {
			continue
		}
		classes++
		if lower := t.CvarLowerBound(b); lower != b && lower.Tag() != code.TagBot {
			lowers = t.Insert(lowers, lower)
		}
	}
	if classes > 1 {
		if len(lowers) == 0 {
			return code.NewErrorType(t.syms.ErrSymbol, errT)
		}
		return t.glbFlattened(t.Union(bounds, lowers), errT)
	}
	return t.MakeIntersectionType(bounds...)
}

// MakeUnionType is the type of a multi-catch parameter: the lub of the
// alternatives, remembering the alternatives.
func (t *Types) MakeUnionType(alternatives ...code.Type) *code.UnionClassType {
	var base *code.ClassType
	switch lub := t.Lub(alternatives...).(type) {
	case *code.ClassType:
		base = lub
	case *code.IntersectionClassType:
		base = &lub.ClassType
	default:
		base = t.syms.ObjectType.(*code.ClassType)
	}
	return code.NewUnionClassType(base, alternatives)
}

package types

import (
	"nominal/internal/code"
	"nominal/internal/diag"
)

// Subst replaces every occurrence of from[i] in ty by to[i]. The lists are
// matched from the right when their lengths differ. Types that mention
// none of from come back unchanged.
func (t *Types) Subst(ty code.Type, from, to []code.Type) code.Type {
	from, to = alignRight(from, to)
	if len(from) == 0 || ty == nil {
		return ty
	}
	s := &substituter{t: t, from: from, to: to}
	return s.subst(ty)
}

// SubstList applies Subst to every element of ts.
func (t *Types) SubstList(ts, from, to []code.Type) []code.Type {
	from, to = alignRight(from, to)
	if len(from) == 0 {
		return ts
	}
	s := &substituter{t: t, from: from, to: to}
	return code.MapTypes(ts, s.subst)
}

func alignRight(from, to []code.Type) ([]code.Type, []code.Type) {
	switch {
	case len(from) > len(to):
		from = from[len(from)-len(to):]
	case len(to) > len(from):
		to = to[len(to)-len(from):]
	}
	return from, to
}

type substituter struct {
	t        *Types
	from, to []code.Type
}

func (s *substituter) subst(ty code.Type) code.Type {
	t := s.t
	switch ty := ty.(type) {
	case nil:
		return nil
	case *code.AnnotatedType:
		inner := s.subst(ty.Type)
		if inner == ty.Type {
			return ty
		}
		return code.Annotate(inner, ty.Annotations)
	case *code.TypeVar:
		return s.substVar(ty, ty)
	case *code.CapturedType:
		return s.substVar(ty, &ty.TypeVar)
	case *code.ErrorType:
		return ty
	case *code.MethodType:
		return ty.Map(s.subst)
	case *code.IntersectionClassType:
		st := s.subst(ty.SupertypeField())
		ifaces, _ := ty.InterfacesField()
		is := t.upperBounds(code.MapTypes(ifaces, s.subst))
		if st == ty.SupertypeField() && sameSlice(is, ifaces) {
			return ty
		}
		if ty.AllInterfaces {
			return t.makeIntersectionType(is, true)
		}
		return t.MakeIntersectionType(append([]code.Type{st}, is...)...)
	case *code.ClassType:
		if !ty.IsParameterized() {
			return ty
		}
		args := ty.TypeArguments()
		args1 := code.MapTypes(args, s.subst)
		outer := ty.EnclosingType()
		outer1 := outer
		if outer.Tag() != code.TagNone {
			outer1 = s.subst(outer)
		}
		if sameSlice(args, args1) && outer == outer1 {
			return ty
		}
		return code.NewClassType(outer1, args1, ty.TSym())
	case *code.UnionClassType:
		return ty.Map(s.subst)
	case *code.WildcardType:
		if ty.IsUnbound() || ty.Bound == nil {
			return ty
		}
		bound := s.subst(ty.Bound)
		if bound == ty.Bound {
			return ty
		}
		if ty.IsExtendsBound() && bound.IsExtendsBound() {
			bound = t.WildUpperBound(bound)
		}
		w := code.NewWildcardType(bound, ty.Kind, t.syms.BoundClass)
		w.Formal = ty.Formal
		return w
	case *code.ArrayType:
		elem := s.subst(ty.Elem)
		if elem == ty.Elem {
			return ty
		}
		a := code.NewArrayType(elem, ty.TSym())
		a.Varargs = ty.Varargs
		return a
	case *code.ForAll:
		return s.substForAll(ty)
	}
	return ty
}

func (s *substituter) substVar(ty code.Type, tv *code.TypeVar) code.Type {
	for i, f := range s.from {
		if f == ty {
			to := s.to[i]
			if w, ok := to.(*code.WildcardType); ok && w.Formal != tv {
				return w.WithFormal(tv)
			}
			return to
		}
	}
	return ty
}

func (s *substituter) substForAll(f *code.ForAll) code.Type {
	t := s.t
	if code.ContainsAnyIn(s.to, f.TVars) {
		// rename variables that would be captured by the replacement
		fresh := t.NewInstances(f.TVars)
		f = code.NewForAll(fresh, t.Subst(f.QType, f.TVars, fresh))
	}
	tvars1 := t.SubstBounds(f.TVars, s.from, s.to)
	qtype1 := s.subst(f.QType)
	switch {
	case sameSlice(tvars1, f.TVars) && qtype1 == f.QType:
		return f
	case sameSlice(tvars1, f.TVars):
		return code.NewForAll(tvars1, qtype1)
	}
	return code.NewForAll(tvars1, t.Subst(qtype1, f.TVars, tvars1))
}

// SubstBounds substitutes in the bounds of tvars. When any bound changes,
// fresh variables sharing the old symbols are returned, with their bounds
// rewritten to refer to the fresh variables.
func (t *Types) SubstBounds(tvars, from, to []code.Type) []code.Type {
	if len(tvars) == 0 {
		return tvars
	}
	bounds := make([]code.Type, len(tvars))
	changed := false
	for i, v := range tvars {
		old := t.varBound(v)
		bounds[i] = t.Subst(old, from, to)
		if bounds[i] != old {
			changed = true
		}
	}
	if !changed {
		return tvars
	}
	fresh := make([]code.Type, len(tvars))
	vars := make([]*code.TypeVar, len(tvars))
	for i, v := range tvars {
		vars[i] = code.NewTypeVar(v.TSym(), nil, t.syms.BotType)
		fresh[i] = vars[i]
	}
	for i, b := range bounds {
		vars[i].SetUpperBound(t.Subst(b, tvars, fresh))
	}
	return fresh
}

// SubstBound substitutes in the bound of one variable.
func (t *Types) SubstBound(tv code.Type, from, to []code.Type) code.Type {
	old := t.varBound(tv)
	bound := t.Subst(old, from, to)
	if bound == old {
		return tv
	}
	fresh := code.NewTypeVar(tv.TSym(), nil, t.syms.BotType)
	fresh.SetUpperBound(t.Subst(bound, []code.Type{tv}, []code.Type{fresh}))
	return fresh
}

// HasSameBounds reports whether two generic method types quantify over
// variables with the same bounds, after renaming s's variables to t's.
func (t *Types) HasSameBounds(a, b *code.ForAll) bool {
	if len(a.TVars) != len(b.TVars) {
		return false
	}
	for i := range a.TVars {
		if !t.IsSameType(t.varBound(a.TVars[i]), t.Subst(t.varBound(b.TVars[i]), b.TVars, a.TVars)) {
			return false
		}
	}
	return true
}

// NewInstances copies tvars, rewriting their bounds to mention the
// copies.
func (t *Types) NewInstances(tvars []code.Type) []code.Type {
	fresh := make([]code.Type, len(tvars))
	vars := make([]*code.TypeVar, len(tvars))
	for i, v := range tvars {
		vars[i] = code.NewTypeVar(v.TSym(), nil, v.LowerBound())
		fresh[i] = vars[i]
	}
	for i, v := range tvars {
		vars[i].SetUpperBound(t.Subst(t.varBound(v), tvars, fresh))
	}
	return fresh
}

// ErrAdaptMismatch is returned by Adapt when one variable would have to
// map to two incompatible types.
var ErrAdaptMismatch = diag.Err(diag.TypAdaptMismatch)

// Adapt matches source against target and returns the type variables of
// source with the types they correspond to in target.
func (t *Types) Adapt(source, target code.Type) (from, to []code.Type, err error) {
	a := &adapter{t: t, mapping: make(map[code.Symbol]code.Type)}
	if err := a.adapt(unannotated(source), unannotated(target)); err != nil {
		return nil, nil, err
	}
	to = make([]code.Type, len(a.from))
	for i, f := range a.from {
		to[i] = a.mapping[f.TSym()]
	}
	return a.from, to, nil
}

// AdaptSelf adapts the declared type of ty's class to ty.
func (t *Types) AdaptSelf(ty code.Type) (from, to []code.Type, err error) {
	return t.Adapt(ty.TSym().Type(), ty)
}

type adapter struct {
	t       *Types
	mapping map[code.Symbol]code.Type
	from    []code.Type
	cache   []typePair
}

func (a *adapter) adapt(source, target code.Type) error {
	t := a.t
	switch source := source.(type) {
	case *code.ClassType:
		if target.Tag() == code.TagClass {
			return a.adaptList(source.AllParams(), target.AllParams())
		}
	case *code.ArrayType:
		if target.Tag() == code.TagArray {
			return a.adaptRecursive(t.Elemtype(source), t.Elemtype(target))
		}
	case *code.WildcardType:
		switch {
		case source.IsExtendsBound():
			return a.adaptRecursive(t.WildUpperBound(source), t.WildUpperBound(target))
		case source.IsSuperBound():
			return a.adaptRecursive(t.WildLowerBound(source), t.WildLowerBound(target))
		}
	case *code.TypeVar, *code.CapturedType:
		return a.adaptVar(source, target)
	}
	return nil
}

func (a *adapter) adaptList(source, target []code.Type) error {
	if len(source) != len(target) {
		return nil
	}
	for i := range source {
		if err := a.adaptRecursive(source[i], target[i]); err != nil {
			return err
		}
	}
	return nil
}

func (a *adapter) adaptRecursive(source, target code.Type) error {
	for _, p := range a.cache {
		if a.t.IsSameType(p.a, source) && a.t.IsSameType(p.b, target) {
			return nil
		}
	}
	a.cache = append(a.cache, typePair{source, target})
	defer func() { a.cache = a.cache[:len(a.cache)-1] }()
	return a.adapt(source, target)
}

func (a *adapter) adaptVar(source, target code.Type) error {
	t := a.t
	val, ok := a.mapping[source.TSym()]
	if !ok {
		a.from = append(a.from, source)
		a.mapping[source.TSym()] = target
		return nil
	}
	switch {
	case val.IsSuperBound() && target.IsSuperBound():
		if t.IsSubtype(t.WildLowerBound(val), t.WildLowerBound(target)) {
			val = target
		}
	case val.IsExtendsBound() && target.IsExtendsBound():
		if !t.IsSubtype(t.WildUpperBound(val), t.WildUpperBound(target)) {
			val = target
		}
	case !t.IsSameType(val, target):
		return ErrAdaptMismatch
	}
	a.mapping[source.TSym()] = val
	return nil
}

// rewriteQuantifiers replaces the captured variables among the arguments
// of ty by wildcards: the upper bound when high is set, the lower bound
// otherwise. Type variable arguments are rewritten the same way when
// rewriteTypeVars is set.
func (t *Types) rewriteQuantifiers(ty code.Type, high, rewriteTypeVars bool) code.Type {
	from, to, err := t.AdaptSelf(ty)
	if err != nil || len(from) == 0 {
		return ty
	}
	rewritten := make([]code.Type, len(to))
	changed := false
	for i, arg := range to {
		bound := t.rewriteArg(arg, high, rewriteTypeVars)
		if bound != arg {
			changed = true
			bound = t.quantifier(bound, high, from[i])
		}
		rewritten[i] = bound
	}
	if !changed {
		return ty
	}
	return t.Subst(ty.TSym().Type(), from, rewritten)
}

func (t *Types) rewriteArg(arg code.Type, high, rewriteTypeVars bool) code.Type {
	switch arg := unannotated(arg).(type) {
	case *code.CapturedType:
		bound := t.rewriteArg(arg.Wildcard, high, rewriteTypeVars)
		if code.Contains(bound, arg) {
			return t.Erasure(bound)
		}
		return bound
	case *code.TypeVar:
		if !rewriteTypeVars {
			return arg
		}
		if high {
			return t.varBound(arg)
		}
		return t.syms.BotType
	case *code.WildcardType:
		if high {
			if b := arg.ExtendsBound(); b != nil {
				return b
			}
			return t.syms.ObjectType
		}
		if b := arg.SuperBound(); b != nil {
			return b
		}
		return t.syms.BotType
	}
	if high {
		return t.UpperBound(arg)
	}
	return t.LowerBound(arg)
}

func (t *Types) quantifier(bound code.Type, high bool, formal code.Type) code.Type {
	var w *code.WildcardType
	switch {
	case high && bound == t.syms.ObjectType, !high && bound.Tag() == code.TagBot:
		w = code.NewWildcardType(t.syms.ObjectType, code.BoundUnbound, t.syms.BoundClass)
	case high:
		w = code.NewWildcardType(bound, code.BoundExtends, t.syms.BoundClass)
	default:
		w = code.NewWildcardType(bound, code.BoundSuper, t.syms.BoundClass)
	}
	if tv, ok := formal.(*code.TypeVar); ok {
		w.Formal = tv
	}
	return w
}

// AsSub returns the subtype of ty whose symbol is sym, or nil when no
// such parameterization exists. Type parameters of sym that ty does not
// determine become unbounded wildcards.
func (t *Types) AsSub(ty code.Type, sym code.Symbol) code.Type {
	ty = unannotated(ty)
	switch ty.Tag() {
	case code.TagError:
		return ty
	case code.TagClass:
	default:
		return nil
	}
	if ty.TSym() == sym {
		return ty
	}
	base := t.AsSuper(sym.Type(), ty.TSym())
	if base == nil {
		return nil
	}
	from, to, err := t.Adapt(base, ty)
	if err != nil {
		return nil
	}
	res := t.Subst(sym.Type(), from, to)
	if !t.IsSubtype(res, ty) {
		return nil
	}
	var open []code.Type
	for _, p := range sym.Type().AllParams() {
		if code.Contains(res, p) && !code.Contains(ty, p) {
			open = append(open, p)
		}
	}
	if len(open) == 0 {
		return res
	}
	if ty.IsRaw() {
		return t.Erasure(res)
	}
	qs := make([]code.Type, len(open))
	for i, p := range open {
		w := code.NewWildcardType(t.syms.ObjectType, code.BoundUnbound, t.syms.BoundClass)
		if tv, ok := p.(*code.TypeVar); ok {
			w.Formal = tv
		}
		qs[i] = w
	}
	return t.Subst(res, open, qs)
}

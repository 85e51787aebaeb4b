package types

import (
	"slices"

	"nominal/internal/code"
	"nominal/internal/flags"
	"nominal/internal/scope"
)

// IsSubClass reports whether sym is base or inherits from it, following
// superclasses and, when base is an interface, their interfaces.
func (t *Types) IsSubClass(sym, base code.Symbol) bool {
	if sym == base {
		return true
	}
	if sym.Kind() != code.KindClass || sym.Type() == nil {
		return false
	}
	if base.Flags()&flags.Interface != 0 {
		for ty := sym.Type(); ty.Tag() == code.TagClass; ty = t.Supertype(ty) {
			for _, i := range t.Interfaces(ty) {
				if t.IsSubClass(i.TSym(), base) {
					return true
				}
			}
		}
		return false
	}
	for ty := sym.Type(); ty.Tag() == code.TagClass; ty = t.Supertype(ty) {
		if ty.TSym() == base {
			return true
		}
	}
	return false
}

// IsEnclosedBy reports whether clazz is sym or one of its owners below
// the package level.
func IsEnclosedBy(sym, clazz code.Symbol) bool {
	for s := sym; s != nil && s.Kind() != code.KindPackage; s = s.Owner() {
		if s == clazz {
			return true
		}
	}
	return false
}

// IsInheritedIn reports whether sym's access lets clazz inherit it.
func (t *Types) IsInheritedIn(sym, clazz code.Symbol) bool {
	return code.IsInheritedIn(sym, clazz, t.Supertype)
}

// IsMemberOf reports whether sym is a member of clazz: declared there, or
// inherited and not hidden.
func (t *Types) IsMemberOf(sym, clazz code.Symbol) bool {
	if sym.Owner() == clazz {
		return true
	}
	cs, ok := clazz.(*code.ClassSymbol)
	return ok && t.IsSubClass(clazz, sym.Owner()) && t.IsInheritedIn(sym, clazz) && !t.hiddenIn(sym, cs)
}

// hiddenIn reports whether a field, nested class or static method sym is
// hidden by a declaration of the same kind along clazz's superclass chain.
func (t *Types) hiddenIn(sym code.Symbol, clazz *code.ClassSymbol) bool {
	if sym.Kind() == code.KindMethod && sym.Flags()&flags.Static == 0 {
		return false
	}
	for {
		if sym.Owner() == clazz {
			return false
		}
		for other := range clazz.Members().SymbolsByName(sym.Name(), nil) {
			if other == sym {
				return false
			}
			if other.Kind() == sym.Kind() &&
				(sym.Kind() != code.KindMethod || other.Flags()&flags.Static != 0 && t.IsSubSignature(other.Type(), sym.Type())) {
				return true
			}
		}
		st := t.Supertype(clazz.Type())
		next, ok := st.TSym().(*code.ClassSymbol)
		if st.Tag() != code.TagClass || !ok {
			return false
		}
		clazz = next
	}
}

// Overrides reports whether m overrides other when both are seen as
// members of origin. With checkResult the return types must also be
// substitutable.
func (t *Types) Overrides(m *code.MethodSymbol, other code.Symbol, origin code.Symbol, checkResult bool) bool {
	if m.IsConstructor() || other.Kind() != code.KindMethod {
		return false
	}
	if code.Symbol(m) == other {
		return true
	}
	owner := m.Owner()
	if code.IsOverridableIn(other, owner) && t.AsSuper(owner.Type(), other.Owner()) != nil {
		mt := t.MemberType(owner.Type(), m)
		ot := t.MemberType(owner.Type(), other)
		if t.IsSubSignature(mt, ot) {
			if !checkResult || t.ReturnTypeSubstitutable(mt, ot) {
				return true
			}
		}
	}
	if m.Flags()&flags.Abstract != 0 ||
		other.Flags()&(flags.Abstract|flags.Default) == 0 ||
		!code.IsOverridableIn(other, origin) ||
		!t.IsMemberOf(m, origin) {
		return false
	}
	mt := t.MemberType(origin.Type(), m)
	ot := t.MemberType(origin.Type(), other)
	return t.IsSubSignature(mt, ot) && (!checkResult || t.ResultSubtype(mt, ot, nil))
}

// OverridesObjectMethod reports whether m overrides a method of the root
// class when seen from origin.
func (t *Types) OverridesObjectMethod(origin code.Symbol, m *code.MethodSymbol) bool {
	obj, ok := t.objectSym().(*code.ClassSymbol)
	if !ok {
		return false
	}
	for sym := range obj.Members().SymbolsByName(m.Name(), nil) {
		if t.Overrides(m, sym, origin, true) {
			return true
		}
	}
	return false
}

type membersKey struct {
	sym           code.Symbol
	skipInterface bool
}

type membersEntry struct {
	scope *scope.CompoundScope[code.Symbol]
}

// MembersClosure is the union of the member scopes of site and all its
// supertypes, the interfaces' omitted when skipInterface is set. Scopes
// of subclasses are consulted before those of their supertypes.
func (t *Types) MembersClosure(site code.Type, skipInterface bool) *scope.CompoundScope[code.Symbol] {
	site = unannotated(site)
	switch site.Tag() {
	case code.TagTypeVar:
		return t.MembersClosure(t.varBound(site), skipInterface)
	case code.TagClass:
	default:
		return scope.NewCompound[code.Symbol](t.syms.NoSymbol)
	}
	csym, ok := site.TSym().(*code.ClassSymbol)
	if !ok || slices.Contains(t.seenMembers, code.Symbol(csym)) {
		return scope.NewCompound[code.Symbol](site.TSym())
	}
	t.seenMembers = append(t.seenMembers, csym)
	defer func() { t.seenMembers = t.seenMembers[:len(t.seenMembers)-1] }()

	key := membersKey{csym, skipInterface}
	if e, ok := t.members[key]; ok {
		return e.scope
	}
	cs := scope.NewCompound[code.Symbol](csym)
	if !skipInterface {
		for _, i := range t.Interfaces(site) {
			cs.AddSubScope(t.MembersClosure(i, skipInterface))
		}
	}
	cs.AddSubScope(t.MembersClosure(t.Supertype(site), skipInterface))
	cs.AddSubScope(csym.Members())
	t.members[key] = &membersEntry{scope: cs}
	return cs
}

type implKey struct {
	ms          *code.MethodSymbol
	origin      code.Symbol
	checkResult bool
}

type implEntry struct {
	impl *code.MethodSymbol
	mark int
}

func implementationFilter(s code.Symbol) bool {
	return s.Kind() == code.KindMethod && s.Flags()&flags.Synthetic == 0
}

// Implementation finds the method implementing ms in origin or its
// superclasses. Results are cached per origin and dropped when a scope
// along origin's superclass chain changes.
func (t *Types) Implementation(ms *code.MethodSymbol, origin code.Symbol, checkResult bool) *code.MethodSymbol {
	if res := t.implementation(ms, origin, checkResult); res != nil {
		return res
	}
	if origin.Type() != nil && t.IsDerivedRaw(origin.Type()) && !origin.IsInterface() {
		if st := t.Supertype(origin.Type()); st.TSym() != nil && st.Tag() == code.TagClass {
			return t.Implementation(ms, st.TSym(), checkResult)
		}
	}
	return nil
}

func (t *Types) implementation(ms *code.MethodSymbol, origin code.Symbol, checkResult bool) *code.MethodSymbol {
	key := implKey{ms, origin, checkResult}
	mark := t.MembersClosure(origin.Type(), true).Mark()
	if e, ok := t.impls.Get(key); ok && e.mark == mark {
		return e.impl
	}
	impl := t.implementationInternal(ms, origin, checkResult)
	t.impls.Add(key, implEntry{impl: impl, mark: mark})
	return impl
}

func (t *Types) implementationInternal(ms *code.MethodSymbol, origin code.Symbol, checkResult bool) *code.MethodSymbol {
	for ty := origin.Type(); ty != nil && isTag(ty, code.TagClass, code.TagTypeVar); ty = t.Supertype(ty) {
		for ty.Tag() == code.TagTypeVar {
			ty = t.varBound(ty)
		}
		c, ok := ty.TSym().(*code.ClassSymbol)
		if !ok {
			break
		}
		for sym := range c.Members().SymbolsByName(ms.Name(), implementationFilter) {
			if m, ok := sym.(*code.MethodSymbol); ok && t.Overrides(m, ms, origin, checkResult) {
				return m
			}
		}
	}
	return nil
}

// InterfaceCandidates lists the most specific methods override-equivalent
// to ms that site inherits. A concrete class method wins outright.
func (t *Types) InterfaceCandidates(site code.Type, ms *code.MethodSymbol) []*code.MethodSymbol {
	site = unannotated(site)
	msType := t.MemberType(site, ms)
	filter := func(s code.Symbol) bool {
		return s.Kind() == code.KindMethod &&
			s.Name() == ms.Name() &&
			s.Flags()&flags.Synthetic == 0 &&
			t.IsInheritedIn(s, site.TSym()) &&
			t.OverrideEquivalent(t.MemberType(site, s), msType)
	}
	var candidates []*code.MethodSymbol
	for s := range t.MembersClosure(site, false).Symbols(filter) {
		m, ok := s.(*code.MethodSymbol)
		if !ok {
			continue
		}
		if !site.TSym().IsInterface() && !m.Owner().IsInterface() {
			return []*code.MethodSymbol{m}
		}
		if !slices.Contains(candidates, m) {
			candidates = append([]*code.MethodSymbol{m}, candidates...)
		}
	}
	return t.Prune(candidates)
}

// Prune drops every method whose owner is a supertype of another
// method's owner.
func (t *Types) Prune(methods []*code.MethodSymbol) []*code.MethodSymbol {
	var out []*code.MethodSymbol
	for _, m1 := range methods {
		minimal := true
		for _, m2 := range methods {
			if m1 == m2 {
				continue
			}
			if m2.Owner() != m1.Owner() && t.AsSuper(m2.Owner().Type(), m1.Owner()) != nil {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, m1)
		}
	}
	return out
}

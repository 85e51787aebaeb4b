package types

import (
	"iter"

	"nominal/internal/code"
	"nominal/internal/diag"
	"nominal/internal/flags"
	"nominal/internal/trace"
)

// FunctionDescriptorLookupError reports why an interface has no function
// descriptor.
type FunctionDescriptorLookupError struct {
	Fragment diag.Fragment
}

func (e *FunctionDescriptorLookupError) Error() string { return e.Fragment.String() }

func descriptorFailure(origin code.Symbol, reason diag.Code) *FunctionDescriptorLookupError {
	if reason == diag.FnNotAFunctionalIntf {
		return &FunctionDescriptorLookupError{Fragment: diag.Frag(reason, origin)}
	}
	return &FunctionDescriptorLookupError{
		Fragment: diag.Frag(diag.FnNotAFunctionalIntf, origin, diag.Frag(reason, origin.Kind(), origin)),
	}
}

// FunctionDescriptor is the single abstract method of a functional
// interface. When several override-equivalent abstract methods were
// merged, Thrown holds the intersection of their throws clauses.
type FunctionDescriptor struct {
	Symbol *code.MethodSymbol
	Thrown []code.Type
	merged bool
}

type descEntry struct {
	desc *FunctionDescriptor
	mark int
}

// FindDescriptorSymbol is the descriptor method of the functional
// interface origin.
func (t *Types) FindDescriptorSymbol(origin code.Symbol) (*code.MethodSymbol, error) {
	d, err := t.descriptor(origin)
	if err != nil {
		return nil, err
	}
	return d.Symbol, nil
}

// FindDescriptorType is the descriptor's method type as a member of site,
// with wildcard arguments of site replaced by their bounds.
func (t *Types) FindDescriptorType(site code.Type) (code.Type, error) {
	site = unannotated(site)
	d, err := t.descriptor(site.TSym())
	if err != nil {
		return nil, err
	}
	site = t.removeWildcards(site)
	mt := t.MemberType(site, d.Symbol)
	if d.merged {
		mt = t.CreateMethodTypeWithThrown(mt, d.Thrown)
	}
	return mt, nil
}

// IsFunctionalInterface reports whether site has a function descriptor.
func (t *Types) IsFunctionalInterface(site code.Type) bool {
	_, err := t.FindDescriptorType(site)
	return err == nil
}

// IsFunctionalInterfaceSymbol reports whether the interface declared by
// sym has a function descriptor.
func (t *Types) IsFunctionalInterfaceSymbol(sym code.Symbol) bool {
	_, err := t.FindDescriptorSymbol(sym)
	return err == nil
}

func (t *Types) descriptor(origin code.Symbol) (*FunctionDescriptor, error) {
	if origin == nil || origin.Type() == nil {
		return nil, descriptorFailure(t.syms.NoSymbol, diag.FnNotAFunctionalIntf)
	}
	members := t.MembersClosure(origin.Type(), false)
	if e, ok := t.descs[origin]; ok && e.mark == members.Mark() {
		return e.desc, nil
	}
	sp := trace.Begin(t.tracer, trace.ScopeQuery, "descriptor", 0).WithExtra("origin", origin.String())
	d, err := t.findDescriptor(origin, members.Symbols(nil))
	if err != nil {
		sp.End(err.Error())
		return nil, err
	}
	sp.End(d.Symbol.String())
	t.descs[origin] = &descEntry{desc: d, mark: members.Mark()}
	return d, nil
}

func (t *Types) findDescriptor(origin code.Symbol, members iter.Seq[code.Symbol]) (*FunctionDescriptor, error) {
	if origin.Flags()&flags.Annotation != 0 {
		return nil, descriptorFailure(origin, diag.FnIsAnnotation)
	}
	if !origin.IsInterface() {
		return nil, descriptorFailure(origin, diag.FnNotAFunctionalIntf)
	}
	site := origin.Type()
	var abstracts []*code.MethodSymbol
	var firstType code.Type
	for sym := range members {
		m, ok := sym.(*code.MethodSymbol)
		if !ok || !t.isDescriptorCandidate(origin, m) {
			continue
		}
		mt := t.MemberType(site, m)
		if len(abstracts) == 0 {
			abstracts = append(abstracts, m)
			firstType = mt
			continue
		}
		if m.Name() == abstracts[0].Name() && t.OverrideEquivalent(mt, firstType) {
			abstracts = append(abstracts, m)
			continue
		}
		return nil, descriptorFailure(origin, diag.FnIncompatAbstracts)
	}
	switch len(abstracts) {
	case 0:
		return nil, descriptorFailure(origin, diag.FnNoAbstracts)
	case 1:
		return &FunctionDescriptor{Symbol: abstracts[0], Thrown: abstracts[0].Type().ThrownTypes()}, nil
	}
	merged, ok := t.MergeAbstracts(abstracts, site, false)
	if !ok {
		descs := make([]any, 0, len(abstracts)+1)
		descs = append(descs, origin)
		for _, m := range abstracts {
			descs = append(descs, m)
		}
		return nil, &FunctionDescriptorLookupError{Fragment: diag.Frag(diag.FnIncompatDescs, descs...)}
	}
	return &FunctionDescriptor{Symbol: merged.BaseSymbol(), Thrown: merged.Type().ThrownTypes(), merged: true}, nil
}

func (t *Types) isDescriptorCandidate(origin code.Symbol, m *code.MethodSymbol) bool {
	if m.Flags()&(flags.Abstract|flags.Default) != flags.Abstract || t.OverridesObjectMethod(origin, m) {
		return false
	}
	cands := t.InterfaceCandidates(origin.Type(), m)
	return len(cands) == 0 || cands[0].Flags()&flags.Default == 0
}

// MergeAbstracts picks, among override-equivalent abstract methods, one
// whose signature is a subsignature of all others and whose return type is
// most specific. Its throws clause becomes the intersection of all the
// throws clauses. With sigCheck the erased parameter types must agree.
func (t *Types) MergeAbstracts(ms []*code.MethodSymbol, site code.Type, sigCheck bool) (*code.MethodSymbol, bool) {
	if len(ms) == 0 {
		return nil, false
	}
	shouldErase := false
	erasedParams := t.Erasure(ms[0].Type()).ParameterTypes()
	for _, m := range ms {
		if m.Flags()&flags.Abstract == 0 ||
			sigCheck && !t.IsSameTypes(erasedParams, t.Erasure(m.Type()).ParameterTypes()) {
			return nil, false
		}
		if m.Type().Tag() == code.TagForAll {
			shouldErase = true
		}
	}
	returnChecks := []func(a, b code.Type) bool{t.basicReturnCheck, t.ReturnTypeSubstitutable}
	for _, check := range returnChecks {
	outer:
		for _, m := range ms {
			mt := t.MemberType(site, m)
			thrown := mt.ThrownTypes()
			for _, m2 := range ms {
				if m == m2 {
					continue
				}
				mt2 := t.MemberType(site, m2)
				if !t.IsSubSignature(mt, mt2) || !check(mt, mt2) {
					continue outer
				}
				thrown2 := mt2.ThrownTypes()
				switch {
				case mt.Tag() != code.TagForAll && shouldErase:
					thrown2 = t.Erasures(thrown2)
				case mt.Tag() == code.TagForAll:
					thrown2 = t.SubstList(thrown2, mt2.TypeArguments(), mt.TypeArguments())
				}
				thrown = t.thrownIntersection(thrown, thrown2)
			}
			if sameSlice(thrown, mt.ThrownTypes()) {
				return m, true
			}
			return m.WithType(t.CreateMethodTypeWithThrown(m.Type(), thrown)), true
		}
	}
	return nil, false
}

func (t *Types) basicReturnCheck(a, b code.Type) bool {
	ares := a.ReturnType()
	bres := t.Subst(b.ReturnType(), b.TypeArguments(), a.TypeArguments())
	return t.IsSameType(ares, bres) ||
		!ares.IsPrimitiveOrVoid() && !bres.IsPrimitiveOrVoid() &&
			(t.IsSubtype(ares, bres) || t.IsSubtype(ares, t.Erasure(bres)))
}

// removeWildcards replaces the wildcard arguments of a functional
// interface type by their bounds, preferring the captured bound when it
// does not mention other captured arguments.
func (t *Types) removeWildcards(site code.Type) code.Type {
	captured := t.Capture(site)
	if captured == site {
		return site
	}
	formals := site.TSym().Type().TypeArguments()
	actuals := site.TypeArguments()
	caps := captured.TypeArguments()
	args := make([]code.Type, len(formals))
	for i := range formals {
		if i >= len(actuals) {
			args[i] = formals[i]
			continue
		}
		w, ok := unannotated(actuals[i]).(*code.WildcardType)
		if !ok {
			args[i] = actuals[i]
			continue
		}
		args[i] = w.Bound
		if w.Kind != code.BoundSuper && i < len(caps) {
			if c, ok := caps[i].(*code.CapturedType); ok && !code.ContainsAny(c.UpperBound(), caps) {
				args[i] = c.UpperBound()
			}
		}
	}
	return t.Subst(site.TSym().Type(), formals, args)
}

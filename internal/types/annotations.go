package types

import (
	"nominal/internal/code"
	"nominal/internal/diag"
)

// Retention is the retention policy of the annotation type sym: the value
// of its retention meta-annotation, class retention when absent or
// malformed.
func (t *Types) Retention(sym code.Symbol) code.RetentionPolicy {
	c := sym.Attribute(t.syms.RetentionType.TSym())
	if c == nil {
		return code.RetentionClass
	}
	e, ok := c.Member(t.names.Value).(*code.Enum)
	if !ok || e.Value == nil {
		return code.RetentionClass
	}
	switch e.Value.Name() {
	case t.names.Source:
		return code.RetentionSource
	case t.names.Runtime:
		return code.RetentionRuntime
	}
	return code.RetentionClass
}

// CompoundRetention is the retention of an annotation's type.
func (t *Types) CompoundRetention(c *code.Compound) code.RetentionPolicy {
	if c.Type() == nil || c.Type().TSym() == nil {
		return code.RetentionClass
	}
	return t.Retention(c.Type().TSym())
}

// ContainerFunc returns the function that wraps repeated annotations into
// their container annotation. Problems are reported to r and leave the
// repeated annotations out.
func (t *Types) ContainerFunc(r diag.Reporter) code.ContainerFunc {
	return func(repeated []*code.Compound, on code.Symbol) *code.Compound {
		c, f := t.makeContainer(repeated)
		if c == nil {
			diag.ReportFragment(r, on.String(), f)
		}
		return c
	}
}

func (t *Types) makeContainer(repeated []*code.Compound) (*code.Compound, diag.Fragment) {
	annoType := repeated[0].Type()
	repSym := annoType.TSym()
	meta := repSym.Attribute(t.syms.RepeatableType.TSym())
	if meta == nil {
		return nil, diag.Frag(diag.AnnNoContainer, annoType)
	}
	cls, ok := meta.Member(t.names.Value).(*code.Class)
	if !ok || cls.ClassType == nil || cls.ClassType.IsErroneous() {
		return nil, diag.Frag(diag.AnnInvalidContainer, annoType)
	}
	containerType := cls.ClassType
	containerSym, ok := containerType.TSym().(*code.ClassSymbol)
	if !ok || !containerSym.IsAnnotationType() {
		return nil, diag.Frag(diag.AnnInvalidContainer, containerType)
	}
	value, ok := t.containerValueMethod(containerSym, annoType)
	if !ok {
		return nil, diag.Frag(diag.AnnInvalidContainer, containerType)
	}
	if !retentionCovers(t.Retention(containerSym), t.Retention(repSym)) {
		return nil, diag.Frag(diag.AnnContainerRetention, containerType, t.Retention(containerSym), annoType, t.Retention(repSym))
	}
	elems := make([]code.Attribute, len(repeated))
	for i, a := range repeated {
		elems[i] = a
	}
	arr := code.NewArray(value.ReturnType(), elems)
	c := code.NewCompound(containerType, []code.Pair{{Sym: value, Value: arr}})
	c.SetSynthesized(true)
	return c, diag.Fragment{}
}

// containerValueMethod finds the value element of a container, which must
// return an array of the repeated annotation type.
func (t *Types) containerValueMethod(container *code.ClassSymbol, annoType code.Type) (*code.MethodSymbol, bool) {
	for sym := range container.Members().SymbolsByName(t.names.Value, nil) {
		m, ok := sym.(*code.MethodSymbol)
		if !ok || len(m.Type().ParameterTypes()) != 0 {
			continue
		}
		res := m.ReturnType()
		if res.Tag() == code.TagArray && t.IsSameType(t.Elemtype(res), annoType) {
			return m, true
		}
	}
	return nil, false
}

// retentionCovers reports whether a container with retention outer may
// hold annotations with retention inner.
func retentionCovers(outer, inner code.RetentionPolicy) bool {
	return outer >= inner
}

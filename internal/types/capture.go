package types

import "nominal/internal/code"

// Capture applies capture conversion: every wildcard argument of a
// parameterized class type is replaced by a fresh captured variable whose
// bounds combine the wildcard's bound with the declared bound of the
// parameter. Types without wildcard arguments are returned unchanged.
func (t *Types) Capture(ty code.Type) code.Type {
	ty = unannotated(ty)
	if ty.Tag() != code.TagClass {
		return ty
	}
	if outer := ty.EnclosingType(); outer != nil && outer.Tag() != code.TagNone {
		if co := t.Capture(outer); co != outer {
			member := t.MemberType(co, ty.TSym())
			ty = t.Subst(member, ty.TSym().Type().TypeArguments(), ty.TypeArguments())
		}
	}
	cls, ok := ty.(*code.ClassType)
	if !ok || cls.IsRaw() || !cls.IsParameterized() {
		return ty
	}
	formals := cls.TSym().Type().TypeArguments()
	actuals := cls.TypeArguments()
	if len(formals) != len(actuals) {
		return t.Erasure(cls)
	}
	fresh := make([]code.Type, len(actuals))
	captured := false
	for i, a := range actuals {
		if w, ok := unannotated(a).(*code.WildcardType); ok {
			t.captured++
			fresh[i] = code.NewCapturedType(t.names.Captured, t.syms.NoSymbol, nil, t.syms.BotType, w, t.captured)
			captured = true
		} else {
			fresh[i] = a
		}
	}
	if !captured {
		return ty
	}
	for i := range fresh {
		c, ok := fresh[i].(*code.CapturedType)
		if !ok {
			continue
		}
		ui := formals[i].UpperBound()
		if ui == nil {
			ui = t.syms.ObjectType
		}
		declared := t.Subst(ui, formals, fresh)
		w := c.Wildcard
		switch w.Kind {
		case code.BoundUnbound:
			c.SetUpperBound(declared)
			c.SetLowerBound(t.syms.BotType)
		case code.BoundExtends:
			c.SetUpperBound(t.Glb(w.ExtendsBound(), declared))
			c.SetLowerBound(t.syms.BotType)
		case code.BoundSuper:
			c.SetUpperBound(declared)
			c.SetLowerBound(w.SuperBound())
		}
		ub, lb := c.UpperBound(), c.LowerBound()
		if uv, ok := ub.(*code.UndetVar); ok {
			ub = uv.QType
		}
		if uv, ok := lb.(*code.UndetVar); ok {
			lb = uv.QType
		}
		if ub.Tag() != code.TagError && lb.Tag() != code.TagError && t.IsSameType(ub, lb) {
			fresh[i] = c.UpperBound()
		}
	}
	return code.NewClassType(cls.EnclosingType(), fresh, cls.TSym())
}

// Captures applies capture conversion to each type.
func (t *Types) Captures(ts []code.Type) []code.Type { return code.MapTypes(ts, t.Capture) }

package code

import "slices"

// TypeOps is the part of the engine an inference variable needs to
// maintain its bounds.
type TypeOps interface {
	IsSameTypeStrict(a, b Type) bool
	Subst(t Type, from, to []Type) Type
}

// UndetVarListener observes bound changes. update is true when the bound
// replaced a previous one during SubstBounds.
type UndetVarListener interface {
	BoundChanged(uv *UndetVar, ib InferenceBound, bound Type, update bool)
}

// UndetVarListenerFunc adapts a function to UndetVarListener.
type UndetVarListenerFunc func(uv *UndetVar, ib InferenceBound, bound Type, update bool)

func (f UndetVarListenerFunc) BoundChanged(uv *UndetVar, ib InferenceBound, bound Type, update bool) {
	f(uv, ib, bound, update)
}

// UndetVar is an inference variable standing for QType while a generic
// call is being inferred. Bounds are kept per kind in insertion order,
// declared upper bounds first.
type UndetVar struct {
	typeBase
	QType         Type
	Inst          Type
	Listener      UndetVarListener
	bounds        [len(InferenceBounds)][]Type
	declaredCount int
}

// NewUndetVar creates the variable for origin, a *TypeVar or
// *CapturedType, with its declared upper bounds. A captured origin with a
// proper lower bound also gets that bound.
func NewUndetVar(origin Type, declared []Type, ops TypeOps, l UndetVarListener) *UndetVar {
	uv := &UndetVar{typeBase: typeBase{tag: TagUndetVar, tsym: origin.TSym()}, QType: origin, Listener: l}
	for _, b := range declared {
		uv.addBound(BoundUpper, b, ops, true)
	}
	uv.declaredCount = len(uv.bounds[BoundUpper])
	if uv.IsCaptured() && origin.LowerBound().Tag() != TagBot {
		uv.addBound(BoundLower, origin.LowerBound(), ops, true)
	}
	return uv
}

// IsCaptured reports whether the variable stands for a captured wildcard.
func (uv *UndetVar) IsCaptured() bool {
	_, ok := uv.QType.(*CapturedType)
	return ok
}

// Bounds returns the bounds of the requested kinds, concatenated in the
// order asked.
func (uv *UndetVar) Bounds(ibs ...InferenceBound) []Type {
	var out []Type
	for _, ib := range ibs {
		out = append(out, uv.bounds[ib]...)
	}
	return out
}

// DeclaredBounds are the upper bounds the variable started with.
func (uv *UndetVar) DeclaredBounds() []Type {
	return slices.Clone(uv.bounds[BoundUpper][:uv.declaredCount])
}

// SetBounds replaces one bound set without notification.
func (uv *UndetVar) SetBounds(ib InferenceBound, ts []Type) {
	uv.bounds[ib] = slices.Clone(ts)
}

// AddBound records bound under ib unless an identical bound is already
// there. Nested inference variables in bound are replaced by the
// variables they stand for before storing.
func (uv *UndetVar) AddBound(ib InferenceBound, bound Type, ops TypeOps) {
	uv.addBound(ib, bound, ops, false)
}

func (uv *UndetVar) addBound(ib InferenceBound, bound Type, ops TypeOps, update bool) {
	if bound == uv.QType {
		return
	}
	bound2 := BaseType(toTypeVar(bound))
	for _, b := range uv.bounds[ib] {
		if ops.IsSameTypeStrict(b, bound2) {
			return
		}
	}
	uv.bounds[ib] = append(uv.bounds[ib], bound2)
	uv.notify(ib, bound2, update)
}

func (uv *UndetVar) notify(ib InferenceBound, bound Type, update bool) {
	if uv.Listener != nil {
		uv.Listener.BoundChanged(uv, ib, bound, update)
	}
}

// SubstBounds replaces from with to in every bound that mentions one of
// from. Listeners hear about each replaced bound once all sets have been
// rewritten.
func (uv *UndetVar) SubstBounds(from, to []Type, ops TypeOps) {
	type change struct {
		ib    InferenceBound
		bound Type
	}
	var changed []change
	prev := uv.Listener
	uv.Listener = UndetVarListenerFunc(func(_ *UndetVar, ib InferenceBound, t Type, _ bool) {
		changed = append(changed, change{ib, t})
	})
	defer func() {
		uv.Listener = prev
		for _, c := range changed {
			uv.notify(c.ib, c.bound, true)
		}
	}()
	for _, ib := range InferenceBounds {
		var kept, deps []Type
		for _, t := range uv.bounds[ib] {
			if ContainsAny(t, from) {
				deps = append(deps, t)
			} else {
				kept = append(kept, t)
			}
		}
		uv.bounds[ib] = kept
		for _, dep := range deps {
			uv.addBound(ib, ops.Subst(dep, from, to), ops, true)
		}
	}
}

// toTypeVar maps every inference variable inside t back to its variable.
func toTypeVar(t Type) Type {
	if uv, ok := t.(*UndetVar); ok {
		return uv.QType
	}
	return t.Map(toTypeVar)
}

func (uv *UndetVar) IsPartial() bool { return true }

func (uv *UndetVar) IsReference() bool { return true }

func (uv *UndetVar) Map(func(Type) Type) Type { return uv }

func (uv *UndetVar) String() string {
	if uv.Inst != nil {
		return uv.Inst.String()
	}
	return uv.QType.String() + "?"
}

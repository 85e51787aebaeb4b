package types

import (
	"nominal/internal/code"
	"nominal/internal/diag"
	"nominal/internal/flags"
)

// InferenceStep is one way of choosing an instantiation for an
// inference variable from its bounds.
type InferenceStep uint8

const (
	// StepEq picks a proper equality bound.
	StepEq InferenceStep = iota
	// StepLower picks the lub of the proper lower bounds.
	StepLower
	// StepThrows picks the unchecked exception class for an otherwise
	// unconstrained variable of a throws clause.
	StepThrows
	// StepUpper picks the glb of the proper upper bounds.
	StepUpper
)

var inferenceSteps = [...]InferenceStep{StepEq, StepLower, StepThrows, StepUpper}

func (s InferenceStep) String() string {
	switch s {
	case StepEq:
		return "eq"
	case StepLower:
		return "lower"
	case StepThrows:
		return "throws"
	case StepUpper:
		return "upper"
	}
	return "invalid"
}

// Instantiate solves uv from its bounds, trying the steps in order. A
// bound is proper when it mentions none of the free variables. On success
// the solution is recorded in uv.Inst.
func (t *Types) Instantiate(uv *code.UndetVar, free []code.Type) (code.Type, InferenceStep, error) {
	for _, step := range inferenceSteps {
		if !t.stepAccepts(step, uv, free) {
			continue
		}
		inst, err := t.stepSolve(step, uv, free)
		if err != nil {
			return nil, step, err
		}
		uv.Inst = inst
		return inst, step, nil
	}
	return nil, StepUpper, diag.Err(diag.TypNoUniqueMaximal, uv.QType, code.TypesString(uv.Bounds(code.BoundUpper)))
}

func (s InferenceStep) bound() code.InferenceBound {
	switch s {
	case StepEq:
		return code.BoundEq
	case StepLower:
		return code.BoundLower
	}
	return code.BoundUpper
}

func properBounds(uv *code.UndetVar, ib code.InferenceBound, free []code.Type) []code.Type {
	var out []code.Type
	for _, b := range uv.Bounds(ib) {
		if b.Tag() == code.TagUndetVar || code.ContainsAny(b, free) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (t *Types) stepAccepts(step InferenceStep, uv *code.UndetVar, free []code.Type) bool {
	if step != StepThrows {
		return !uv.IsCaptured() && len(properBounds(uv, step.bound(), free)) > 0
	}
	if uv.QType.TSym() == nil || uv.QType.TSym().RawFlags()&flags.Throws == 0 {
		return false
	}
	declared := uv.DeclaredBounds()
	for _, b := range uv.Bounds(code.BoundEq, code.BoundLower, code.BoundUpper) {
		if !code.ContainsIn(declared, b) {
			return false
		}
	}
	for _, db := range declared {
		if db.IsInterface() {
			continue
		}
		if t.AsSuper(t.syms.RuntimeExceptionType, db.TSym()) != nil {
			return true
		}
	}
	return false
}

func (t *Types) stepSolve(step InferenceStep, uv *code.UndetVar, free []code.Type) (code.Type, error) {
	bounds := properBounds(uv, step.bound(), free)
	switch step {
	case StepEq:
		return bounds[0], nil
	case StepLower:
		inst := bounds[0]
		if len(bounds) > 1 {
			inst = t.Lub(bounds...)
		}
		if inst.IsPrimitive() || inst.Tag() == code.TagError {
			return nil, diag.Err(diag.TypNoUniqueMinimal, uv.QType, code.TypesString(bounds))
		}
		return inst, nil
	case StepThrows:
		return t.syms.RuntimeExceptionType, nil
	}
	inst := bounds[0]
	if len(bounds) > 1 {
		inst = t.Glb(bounds...)
	}
	if inst.IsPrimitive() || inst.Tag() == code.TagError {
		return nil, diag.Err(diag.TypNoUniqueMaximal, uv.QType, code.TypesString(bounds))
	}
	return inst, nil
}

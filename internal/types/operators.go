package types

import (
	"nominal/internal/code"
	"nominal/internal/diag"
)

// ResolveUnary picks the predefined overload of a unary operator for an
// operand of type arg.
func (t *Types) ResolveUnary(name string, arg code.Type) (*code.OperatorSymbol, error) {
	return t.resolveOperator(name, []code.Type{arg})
}

// ResolveBinary picks the predefined overload of a binary operator for
// operands of types left and right.
func (t *Types) ResolveBinary(name string, left, right code.Type) (*code.OperatorSymbol, error) {
	return t.resolveOperator(name, []code.Type{left, right})
}

// resolveOperator looks for applicable overloads first by subtyping
// alone, then allowing boxing and unboxing, and picks the most specific
// one of the first phase that finds any.
func (t *Types) resolveOperator(name string, args []code.Type) (*code.OperatorSymbol, error) {
	for _, a := range args {
		if a.IsErroneous() {
			return nil, diag.Err(diag.OpNotFound, name, code.TypesString(args))
		}
	}
	ops := t.syms.Operators.Lookup(name)
	phases := []func(a, p code.Type) bool{t.IsSubtypeUnchecked}
	if t.opts.AllowBoxing {
		phases = append(phases, t.IsConvertible)
	}
	for _, applicable := range phases {
		var cands []*code.OperatorSymbol
		for _, op := range ops {
			params := op.Type().ParameterTypes()
			if len(params) != len(args) {
				continue
			}
			ok := true
			for i := range args {
				if !applicable(args[i], params[i]) {
					ok = false
					break
				}
			}
			if ok {
				cands = append(cands, op)
			}
		}
		if len(cands) == 0 {
			continue
		}
		return t.mostSpecificOperator(name, cands, applicable)
	}
	return nil, diag.Err(diag.OpNotFound, name, code.TypesString(args))
}

func (t *Types) mostSpecificOperator(name string, cands []*code.OperatorSymbol, applicable func(a, p code.Type) bool) (*code.OperatorSymbol, error) {
	var best *code.OperatorSymbol
	for _, c := range cands {
		if best == nil || operatorMoreSpecific(c, best, applicable) {
			best = c
		}
	}
	for _, c := range cands {
		if c != best && !operatorMoreSpecific(best, c, applicable) {
			return nil, diag.Err(diag.OpAmbiguous, name, best, c)
		}
	}
	return best, nil
}

// operatorMoreSpecific reports whether b applies to the parameter types
// of a in the current phase.
func operatorMoreSpecific(a, b *code.OperatorSymbol, applicable func(a, p code.Type) bool) bool {
	ap, bp := a.Type().ParameterTypes(), b.Type().ParameterTypes()
	for i := range ap {
		if !applicable(ap[i], bp[i]) {
			return false
		}
	}
	return true
}

package symtab

import (
	"nominal/internal/code"
	"nominal/internal/names"
)

// Operators holds the predefined operator overloads keyed by operator name.
// Every overload is also a member of the predefined class.
type Operators struct {
	syms   *Symtab
	byName map[*names.Name][]*code.OperatorSymbol
	order  []*names.Name
}

func newOperators(s *Symtab) *Operators {
	o := &Operators{syms: s, byName: make(map[*names.Name][]*code.OperatorSymbol)}
	o.enterAll()
	return o
}

// Lookup returns the overloads of the operator called name in the order
// they were entered.
func (o *Operators) Lookup(name string) []*code.OperatorSymbol {
	n, ok := o.syms.Names.Lookup(name)
	if !ok {
		return nil
	}
	return o.byName[n]
}

// Names lists the operator names in order of first definition.
func (o *Operators) Names() []*names.Name { return o.order }

func (o *Operators) enter(name string, params []code.Type, res code.Type, op code.Opcode) *code.OperatorSymbol {
	s := o.syms
	n := s.Names.FromString(name)
	mt := code.NewMethodType(params, res, nil, s.MethodClass)
	sym := code.NewOperatorSymbol(n, mt, op, s.PredefClass)
	if _, seen := o.byName[n]; !seen {
		o.order = append(o.order, n)
	}
	o.byName[n] = append(o.byName[n], sym)
	s.PredefClass.RawMembers().Enter(sym)
	return sym
}

func (o *Operators) unop(name string, arg, res code.Type, op code.Opcode) {
	o.enter(name, []code.Type{arg}, res, op)
}

func (o *Operators) binop(name string, left, right, res code.Type, op code.Opcode) {
	o.enter(name, []code.Type{left, right}, res, op)
}

func (o *Operators) enterAll() {
	s := o.syms
	num := []code.Type{s.DoubleType, s.FloatType, s.LongType, s.IntType}
	integral := []code.Type{s.LongType, s.IntType}

	for _, t := range num {
		o.unop("+", t, t, code.OpNop)
	}
	for _, t := range num {
		o.unop("-", t, t, code.OpNeg)
	}
	for _, t := range integral {
		o.unop("~", t, t, code.OpCompl)
	}
	incr := []code.Type{s.DoubleType, s.FloatType, s.LongType, s.IntType, s.CharType, s.ShortType, s.ByteType}
	for _, t := range incr {
		o.unop("++", t, t, code.OpIncr)
	}
	for _, t := range incr {
		o.unop("--", t, t, code.OpDecr)
	}
	o.unop("!", s.BooleanType, s.BooleanType, code.OpNot)
	o.unop("<*nullchk*>", s.ObjectType, s.ObjectType, code.OpNullCheck)

	// string concatenation
	concat := []code.Type{s.ObjectType, s.StringType, s.IntType, s.LongType, s.FloatType, s.DoubleType, s.BooleanType, s.BotType}
	for _, t := range concat {
		o.binop("+", s.StringType, t, s.StringType, code.OpStringAdd)
	}
	for _, t := range concat {
		if t == s.StringType {
			continue
		}
		o.binop("+", t, s.StringType, s.StringType, code.OpStringAdd)
	}

	// combinations with the null type that would otherwise be taken for
	// string concatenation
	nullOps := []code.Type{s.BotType, s.IntType, s.LongType, s.FloatType, s.DoubleType, s.BooleanType, s.ObjectType}
	for _, t := range nullOps {
		o.binop("+", s.BotType, t, s.BotType, code.OpError)
	}
	for _, t := range nullOps[1:] {
		o.binop("+", t, s.BotType, s.BotType, code.OpError)
	}

	arith := []struct {
		name string
		op   code.Opcode
	}{{"+", code.OpAdd}, {"-", code.OpSub}, {"*", code.OpMul}, {"/", code.OpDiv}, {"%", code.OpRem}}
	for _, a := range arith {
		for _, t := range num {
			o.binop(a.name, t, t, t, a.op)
		}
	}

	bitwise := []struct {
		name string
		op   code.Opcode
	}{{"&", code.OpAnd}, {"|", code.OpOr}, {"^", code.OpXor}}
	for _, b := range bitwise {
		o.binop(b.name, s.BooleanType, s.BooleanType, s.BooleanType, b.op)
		for _, t := range integral {
			o.binop(b.name, t, t, t, b.op)
		}
	}

	shifts := []struct {
		name string
		op   code.Opcode
	}{{"<<", code.OpShl}, {">>", code.OpShr}, {">>>", code.OpUshr}}
	for _, sh := range shifts {
		o.binop(sh.name, s.LongType, s.LongType, s.LongType, sh.op)
		o.binop(sh.name, s.IntType, s.LongType, s.IntType, sh.op)
		o.binop(sh.name, s.LongType, s.IntType, s.LongType, sh.op)
		o.binop(sh.name, s.IntType, s.IntType, s.IntType, sh.op)
	}

	compare := []struct {
		name string
		op   code.Opcode
	}{{"<", code.OpLt}, {">", code.OpGt}, {"<=", code.OpLe}, {">=", code.OpGe}}
	for _, c := range compare {
		for _, t := range num {
			o.binop(c.name, t, t, s.BooleanType, c.op)
		}
	}

	equality := []struct {
		name      string
		ref, prim code.Opcode
	}{{"==", code.OpRefEq, code.OpEq}, {"!=", code.OpRefNe, code.OpNe}}
	for _, e := range equality {
		o.binop(e.name, s.ObjectType, s.ObjectType, s.BooleanType, e.ref)
		o.binop(e.name, s.BooleanType, s.BooleanType, s.BooleanType, e.prim)
		for _, t := range num {
			o.binop(e.name, t, t, s.BooleanType, e.prim)
		}
	}

	o.binop("&&", s.BooleanType, s.BooleanType, s.BooleanType, code.OpBoolAnd)
	o.binop("||", s.BooleanType, s.BooleanType, s.BooleanType, code.OpBoolOr)
}

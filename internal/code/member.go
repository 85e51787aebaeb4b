package code

import (
	"strconv"
	"strings"

	"nominal/internal/flags"
	"nominal/internal/names"
)

// VarSymbol is a field, parameter or local variable.
type VarSymbol struct {
	symbolBase
	constValue any
	lazyConst  func() any
	evaluating bool
	// Pos is the declaration position within the owner, for parameters.
	Pos int
}

func NewVarSymbol(fl flags.Flags, name *names.Name, typ Type, owner Symbol) *VarSymbol {
	v := &VarSymbol{}
	v.init(v, KindVar, fl, name, typ, owner)
	return v
}

// ConstValue is the compile-time constant of a final field, or nil. A
// lazy initializer runs on first request; asking again while it runs
// yields nil.
func (v *VarSymbol) ConstValue() any {
	if v.lazyConst != nil {
		if v.evaluating {
			return nil
		}
		v.evaluating = true
		v.constValue = v.lazyConst()
		v.lazyConst = nil
		v.evaluating = false
	}
	return v.constValue
}

func (v *VarSymbol) SetConstValue(val any) {
	v.constValue = val
	v.lazyConst = nil
}

// SetLazyConstValue defers evaluation of the constant until first use.
func (v *VarSymbol) SetLazyConstValue(eval func() any) { v.lazyConst = eval }

func (v *VarSymbol) String() string { return v.name.String() }

var (
	_ Symbol = (*MethodSymbol)(nil)
	_ Symbol = (*OperatorSymbol)(nil)
)

// MethodSymbol is a method or constructor.
type MethodSymbol struct {
	symbolBase
	params     []*VarSymbol
	paramNames []*names.Name
	baseSym    *MethodSymbol
	// DefaultValue is the default of an annotation type element.
	DefaultValue Attribute
}

func NewMethodSymbol(fl flags.Flags, name *names.Name, typ Type, owner Symbol) *MethodSymbol {
	m := &MethodSymbol{}
	m.init(m, KindMethod, fl, name, typ, owner)
	return m
}

// Params returns the parameter symbols. Parameters without a recorded name
// are called arg<i>, with '$' appended while that collides with another
// parameter's name.
func (m *MethodSymbol) Params(tab *names.Table) []*VarSymbol {
	if m.owner != nil {
		_ = m.owner.Complete()
	}
	if m.params == nil && m.typ != nil {
		pts := m.typ.ParameterTypes()
		taken := make(map[*names.Name]bool, len(m.paramNames))
		for _, n := range m.paramNames {
			if !n.IsEmpty() {
				taken[n] = true
			}
		}
		m.params = make([]*VarSymbol, len(pts))
		for i, t := range pts {
			var name *names.Name
			if i < len(m.paramNames) && !m.paramNames[i].IsEmpty() {
				name = m.paramNames[i]
			} else {
				text := "arg" + strconv.Itoa(i)
				for name = tab.FromString(text); taken[name]; name = tab.FromString(text) {
					text += "$"
				}
				taken[name] = true
			}
			p := NewVarSymbol(flags.Parameter, name, t, m)
			p.Pos = i
			m.params[i] = p
		}
	}
	return m.params
}

// SetParamNames records declared parameter names. Nil or empty entries are
// synthesized by Params.
func (m *MethodSymbol) SetParamNames(ns []*names.Name) {
	m.paramNames = ns
	m.params = nil
}

func (m *MethodSymbol) SetParams(ps []*VarSymbol) { m.params = ps }

func (m *MethodSymbol) IsDefault() bool { return m.Flags()&flags.Default != 0 }

func (m *MethodSymbol) IsVarArgs() bool { return m.Flags()&flags.Varargs != 0 }

func (m *MethodSymbol) IsAbstract() bool { return m.Flags()&flags.Abstract != 0 }

// ReturnType is the return type of the method's type, through ForAll.
func (m *MethodSymbol) ReturnType() Type {
	if m.typ == nil {
		return nil
	}
	return m.typ.ReturnType()
}

// Clone copies the method under a new owner.
func (m *MethodSymbol) Clone(newOwner Symbol) *MethodSymbol {
	c := NewMethodSymbol(m.flags, m.name, m.typ, newOwner)
	c.params = m.params
	c.paramNames = m.paramNames
	c.DefaultValue = m.DefaultValue
	return c
}

// WithType copies the method with a different signature. The copy
// remembers m as its base symbol.
func (m *MethodSymbol) WithType(t Type) *MethodSymbol {
	c := m.Clone(m.owner)
	c.typ = t
	c.baseSym = m.BaseSymbol()
	return c
}

// BaseSymbol is the method a copy made by WithType came from, or m itself.
func (m *MethodSymbol) BaseSymbol() *MethodSymbol {
	if m.baseSym != nil {
		return m.baseSym
	}
	return m
}

func (m *MethodSymbol) String() string {
	var sb strings.Builder
	if m.IsConstructor() {
		sb.WriteString(m.owner.Name().String())
	} else {
		sb.WriteString(m.name.String())
	}
	if m.typ != nil {
		if fa, ok := m.typ.(*ForAll); ok {
			sb.WriteString("<")
			writeTypes(&sb, fa.TVars)
			sb.WriteString(">")
		}
		sb.WriteString("(")
		writeTypes(&sb, m.typ.ParameterTypes())
		sb.WriteString(")")
	}
	return sb.String()
}

// Opcode identifies the operation a predefined operator performs.
type Opcode uint16

const (
	OpNop Opcode = iota
	OpError
	OpStringAdd
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpCompl
	OpNot
	OpAnd
	OpOr
	OpXor
	OpShl
	OpShr
	OpUshr
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNe
	OpRefEq
	OpRefNe
	OpBoolAnd
	OpBoolOr
	OpIncr
	OpDecr
	OpNullCheck
)

// OperatorSymbol is a predefined unary or binary operator overload.
type OperatorSymbol struct {
	MethodSymbol
	Opcode Opcode
}

func NewOperatorSymbol(name *names.Name, typ *MethodType, op Opcode, owner Symbol) *OperatorSymbol {
	o := &OperatorSymbol{Opcode: op}
	o.init(o, KindOperator, flags.Public|flags.Static, name, typ, owner)
	return o
}

// TypeVariableSymbol declares a type variable of a class or method.
type TypeVariableSymbol struct {
	symbolBase
}

// NewTypeVariableSymbol creates the symbol and its TypeVar with the given
// upper bound; a nil bound is filled in later.
func NewTypeVariableSymbol(fl flags.Flags, name *names.Name, owner Symbol, bound Type) *TypeVariableSymbol {
	s := &TypeVariableSymbol{}
	tv := &TypeVar{typeBase: typeBase{tag: TagTypeVar, tsym: s}, bound: bound, lower: nil, rank: -1}
	s.init(s, KindTypeVar, fl, name, tv, owner)
	return s
}

// TypeVar is the symbol's type.
func (s *TypeVariableSymbol) TypeVar() *TypeVar {
	tv, _ := s.typ.(*TypeVar)
	return tv
}

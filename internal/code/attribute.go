package code

import (
	"fmt"
	"strconv"
	"strings"

	"nominal/internal/names"
)

// Attribute is an annotation element value or a whole annotation.
type Attribute interface {
	Type() Type
	String() string
	isAttribute()
}

type attrBase struct{ typ Type }

func (a *attrBase) Type() Type   { return a.typ }
func (a *attrBase) isAttribute() {}

// Constant is a primitive or string element value.
type Constant struct {
	attrBase
	Value any
}

func NewConstant(typ Type, v any) *Constant { return &Constant{attrBase{typ}, v} }

func (c *Constant) String() string { return FormatConstant(c.Value, c.typ) }

// FormatConstant prints v the way it would appear in source, using t to
// pick literal suffixes and quoting.
func FormatConstant(v any, t Type) string {
	tag := TagClass
	if t != nil {
		tag = BaseType(t).Tag()
	}
	switch tag {
	case TagChar:
		switch r := v.(type) {
		case rune:
			return strconv.QuoteRune(r)
		case uint16:
			return strconv.QuoteRune(rune(r))
		}
	case TagLong:
		return fmt.Sprint(v) + "L"
	case TagFloat:
		return fmt.Sprint(v) + "f"
	case TagClass:
		if s, ok := v.(string); ok {
			return strconv.Quote(s)
		}
	}
	return fmt.Sprint(v)
}

// Class is a class literal element value; its type is the parameterized
// class-of type and ClassType the literal's type.
type Class struct {
	attrBase
	ClassType Type
}

func NewClass(typ, classType Type) *Class { return &Class{attrBase{typ}, classType} }

func (c *Class) String() string { return c.ClassType.String() + ".class" }

// Enum is an enum constant element value.
type Enum struct {
	attrBase
	Value *VarSymbol
}

func NewEnum(typ Type, v *VarSymbol) *Enum { return &Enum{attrBase{typ}, v} }

func (e *Enum) String() string {
	if c := e.Value.EnclClass(); c != nil {
		return c.String() + "." + e.Value.String()
	}
	return e.Value.String()
}

// Array is an array element value.
type Array struct {
	attrBase
	Values []Attribute
}

func NewArray(typ Type, vs []Attribute) *Array { return &Array{attrBase{typ}, vs} }

func (a *Array) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, v := range a.Values {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.String())
	}
	sb.WriteByte('}')
	return sb.String()
}

// Error stands for an element value that could not be attributed.
type Error struct {
	attrBase
}

func NewError(typ Type) *Error { return &Error{attrBase{typ}} }

func (e *Error) String() string { return "<error>" }

// UnresolvedClass is a class literal whose class was not found.
type UnresolvedClass struct {
	Error
	ClassType Type
}

func NewUnresolvedClass(typ, classType Type) *UnresolvedClass {
	return &UnresolvedClass{Error{attrBase{typ}}, classType}
}

// Pair binds an annotation element to its value.
type Pair struct {
	Sym   *MethodSymbol
	Value Attribute
}

// Compound is an annotation: its type and element values. A compound
// built for several repeated annotations before their container exists is
// a placeholder; it is replaced once the repeated context is flushed.
type Compound struct {
	attrBase
	Values      []Pair
	synthesized bool

	placeholderFor []*Compound
	ctx            *RepeatedContext
	on             Symbol
}

func NewCompound(typ Type, values []Pair) *Compound {
	return &Compound{attrBase: attrBase{typ}, Values: values}
}

// NewPlaceholder stands for repeated on sym until ctx is flushed.
func NewPlaceholder(ctx *RepeatedContext, repeated []*Compound, on Symbol) *Compound {
	var typ Type
	if len(repeated) > 0 {
		typ = repeated[0].typ
	}
	return &Compound{attrBase: attrBase{typ}, placeholderFor: repeated, ctx: ctx, on: on}
}

func (c *Compound) IsPlaceholder() bool { return c.placeholderFor != nil }

// PlaceholderFor lists the annotations a placeholder stands for.
func (c *Compound) PlaceholderFor() []*Compound { return c.placeholderFor }

// IsSynthesized marks containers created for repeated annotations.
func (c *Compound) IsSynthesized() bool { return c.synthesized }

func (c *Compound) SetSynthesized(v bool) { c.synthesized = v }

// Member returns the value of the element called name, or nil.
func (c *Compound) Member(name *names.Name) Attribute {
	for _, p := range c.Values {
		if p.Sym.Name() == name {
			return p.Value
		}
	}
	return nil
}

// ElementValues maps each element symbol to its value, including defaults
// of elements not given explicitly.
func (c *Compound) ElementValues() map[*MethodSymbol]Attribute {
	out := make(map[*MethodSymbol]Attribute)
	if c.typ != nil {
		if cs, ok := c.typ.TSym().(*ClassSymbol); ok {
			for sym := range cs.Members().Symbols(nil) {
				if m, ok := sym.(*MethodSymbol); ok && m.DefaultValue != nil {
					out[m] = m.DefaultValue
				}
			}
		}
	}
	for _, p := range c.Values {
		out[p.Sym] = p.Value
	}
	return out
}

func (c *Compound) String() string {
	var sb strings.Builder
	if c.IsPlaceholder() {
		sb.WriteString("<placeholder: ")
		for i, r := range c.placeholderFor {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.String())
		}
		sb.WriteByte('>')
		return sb.String()
	}
	sb.WriteByte('@')
	if c.typ != nil {
		sb.WriteString(c.typ.String())
	}
	if len(c.Values) > 0 {
		sb.WriteByte('(')
		for i, p := range c.Values {
			if i > 0 {
				sb.WriteString(", ")
			}
			if len(c.Values) > 1 || p.Sym.Name().String() != "value" {
				sb.WriteString(p.Sym.Name().String())
				sb.WriteByte('=')
			}
			sb.WriteString(p.Value.String())
		}
		sb.WriteByte(')')
	}
	return sb.String()
}

// TypeCompound is a type annotation; Position describes where in the
// annotated type it applies.
type TypeCompound struct {
	Compound
	Position string
}

func NewTypeCompound(c *Compound, position string) *TypeCompound {
	return &TypeCompound{Compound: *c, Position: position}
}

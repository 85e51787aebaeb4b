package code

import (
	"nominal/internal/flags"
	"nominal/internal/names"
	"nominal/internal/scope"
)

// ClassSymbol is a class, interface, enum or annotation type.
type ClassSymbol struct {
	symbolBase
	members  *Members
	fullname *names.Name
	flatname *names.Name
	erasure  Type
	// Origin names where the declaration came from, e.g. a class path entry.
	Origin string
}

// NewClassSymbol creates a class symbol together with its declared type. The
// declared type has no type arguments until the symbol is completed.
func NewClassSymbol(tab *names.Table, fl flags.Flags, name *names.Name, owner Symbol) *ClassSymbol {
	c := &ClassSymbol{}
	ct := newLazyClassType(NoType, c)
	c.init(c, KindClass, fl, name, ct, owner)
	c.fullname = formFullName(tab, name, owner)
	c.flatname = formFlatName(tab, name, owner)
	c.members = scope.New[Symbol](c)
	return c
}

// ClassType is the declared type of the class, with its formal parameters
// as type arguments.
func (c *ClassSymbol) ClassType() *ClassType {
	switch t := c.typ.(type) {
	case *ClassType:
		return t
	case *ErrorType:
		return &t.ClassType
	case *IntersectionClassType:
		return &t.ClassType
	}
	return nil
}

// Members completes the class and returns its member scope.
func (c *ClassSymbol) Members() *Members {
	_ = c.Complete()
	return c.members
}

// RawMembers returns the member scope without completing the class.
func (c *ClassSymbol) RawMembers() *Members { return c.members }

func (c *ClassSymbol) SetMembers(m *Members) { c.members = m }

func (c *ClassSymbol) QualifiedName() *names.Name { return c.fullname }

func (c *ClassSymbol) FlatName() *names.Name { return c.flatname }

func (c *ClassSymbol) String() string { return c.fullname.String() }

// IsCompound marks the synthetic symbols of intersection types.
func (c *ClassSymbol) IsCompound() bool {
	return c.completer == nil && c.flags&flags.Compound != 0
}

// IsAnnotationType reports whether the class declares an annotation type.
func (c *ClassSymbol) IsAnnotationType() bool {
	return c.Flags()&flags.Annotation != 0
}

// IsEnum reports whether the class declares an enum.
func (c *ClassSymbol) IsEnum() bool {
	return c.Flags()&flags.Enum != 0
}

// TypeParameters completes the class and returns its formal type parameters.
func (c *ClassSymbol) TypeParameters() []Type {
	if ct := c.ClassType(); ct != nil {
		return ct.TypeArguments()
	}
	return nil
}

// Superclass completes the class and returns the declared superclass, or
// NoType for interfaces and the root class. The declared type of an
// interface still records the root class as its supertype.
func (c *ClassSymbol) Superclass() Type {
	_ = c.Complete()
	ct := c.ClassType()
	if ct == nil || ct.supertype == nil || c.flags&flags.Interface != 0 {
		return NoType
	}
	return ct.supertype
}

// Interfaces completes the class and returns its declared interfaces.
func (c *ClassSymbol) Interfaces() []Type {
	_ = c.Complete()
	if ct := c.ClassType(); ct != nil {
		return ct.interfaces
	}
	return nil
}

// Erasure returns the erased declared type, computed once.
func (c *ClassSymbol) Erasure(erase func(Type) Type) Type {
	if c.erasure == nil {
		ct := c.ClassType()
		if ct == nil {
			return c.typ
		}
		c.erasure = NewClassType(erase(ct.EnclosingType()), nil, c)
	}
	return c.erasure
}

// SetErasure overrides the cached erasure.
func (c *ClassSymbol) SetErasure(t Type) { c.erasure = t }

// degrade turns a class whose completion failed into an error class: it
// becomes public and static, its type becomes an error type and every
// member lookup resolves to the class itself.
func (c *ClassSymbol) degrade() {
	c.flags |= flags.Public | flags.Static
	c.typ = NewErrorType(c, NoType)
	c.kind = KindError
	c.members = scope.NewError[Symbol](c)
}

// PackageSymbol is a package; its members are the classes and subpackages
// found for it.
type PackageSymbol struct {
	symbolBase
	members  *Members
	fullname *names.Name
	// Exists is set once any class of the package has been found.
	Exists bool
}

func NewPackageSymbol(tab *names.Table, name *names.Name, owner Symbol) *PackageSymbol {
	p := &PackageSymbol{}
	p.init(p, KindPackage, 0, name, nil, owner)
	p.typ = &PackageType{typeBase{tag: TagPackage, tsym: p}}
	p.fullname = formFullName(tab, name, owner)
	p.members = scope.New[Symbol](p)
	return p
}

func (p *PackageSymbol) Members() *Members {
	_ = p.Complete()
	return p.members
}

func (p *PackageSymbol) RawMembers() *Members { return p.members }

func (p *PackageSymbol) QualifiedName() *names.Name { return p.fullname }

func (p *PackageSymbol) FlatName() *names.Name { return p.fullname }

func (p *PackageSymbol) String() string { return p.fullname.String() }

func (p *PackageSymbol) IsUnnamed() bool { return p.name.IsEmpty() && p.owner != nil }

// degrade keeps the package kind and type so qualified names still
// resolve through it; lookups in its members resolve to the package.
func (p *PackageSymbol) degrade() {
	p.flags |= flags.Public | flags.Static
	p.members = scope.NewError[Symbol](p)
}

// NewErrorClassSymbol creates a class symbol that is already an error
// class, used for the session's error and unknown symbols.
func NewErrorClassSymbol(tab *names.Table, name *names.Name, owner Symbol, original Type) *ClassSymbol {
	c := NewClassSymbol(tab, flags.Public|flags.Static|flags.Acyclic, name, owner)
	c.degrade()
	c.typ = NewErrorType(c, original)
	return c
}

// NewNoSymbol creates the placeholder symbol owning synthetic classes that
// belong to no package.
func NewNoSymbol(tab *names.Table, owner Symbol) *ClassSymbol {
	c := NewClassSymbol(tab, 0, tab.Empty, owner)
	c.kind = KindNil
	c.typ = NoType
	return c
}

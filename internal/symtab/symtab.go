// Package symtab builds the predefined entities of a session: primitive
// types, the root package, the error and array pseudo-classes, predefined
// operators and the well-known classes the engine recognizes by identity.
//
// Classes and packages are entered lazily. Entering a name creates the
// symbol and installs the session's Finder as its completer; the class
// path supplies the contents on first use.
package symtab

import (
	"iter"
	"maps"
	"slices"
	"strings"

	"nominal/internal/code"
	"nominal/internal/flags"
	"nominal/internal/names"
	"nominal/internal/scope"
)

// Finder fills in classes and packages entered through the table.
type Finder interface {
	code.Completer
}

// Symtab owns the predefined symbols and the class and package tables of
// one session. It is not safe for concurrent use.
type Symtab struct {
	Names *names.Table

	ByteType    *code.PrimType
	CharType    *code.PrimType
	ShortType   *code.PrimType
	IntType     *code.PrimType
	LongType    *code.PrimType
	FloatType   *code.PrimType
	DoubleType  *code.PrimType
	BooleanType *code.PrimType
	VoidType    *code.PrimType
	BotType     code.Type

	NoSymbol       *code.ClassSymbol
	RootPackage    *code.PackageSymbol
	UnnamedPackage *code.PackageSymbol
	ErrSymbol      *code.ClassSymbol
	ErrType        *code.ErrorType
	UnknownSymbol  *code.ClassSymbol
	UnknownType    *code.UnknownType

	// PredefClass owns the primitive type symbols and the operators.
	PredefClass      *code.ClassSymbol
	ArrayClass       *code.ClassSymbol
	ArrayClassType   *code.ClassType
	LengthVar        *code.VarSymbol
	ArrayCloneMethod *code.MethodSymbol
	BoundClass       *code.ClassSymbol
	MethodClass      *code.ClassSymbol

	ObjectType               code.Type
	StringType               code.Type
	ClassType                code.Type
	CloneableType            code.Type
	SerializableType         code.Type
	NumberType               code.Type
	ThrowableType            code.Type
	ExceptionType            code.Type
	RuntimeExceptionType     code.Type
	ErrorClassType           code.Type
	EnumType                 code.Type
	ComparableType           code.Type
	IterableType             code.Type
	CharSequenceType         code.Type
	AutoCloseableType        code.Type
	VoidClassType            code.Type
	FunctionalInterfaceType  code.Type
	DeprecatedType           code.Type
	OverrideType             code.Type
	AnnotationType           code.Type
	RetentionType            code.Type
	RetentionPolicyType      code.Type
	RepeatableType           code.Type
	TargetType               code.Type
	InheritedType            code.Type
	DocumentedType           code.Type
	SignaturePolymorphicType code.Type

	Operators *Operators

	finder   Finder
	classes  map[*names.Name]*code.ClassSymbol
	packages map[*names.Name]*code.PackageSymbol
	boxed    map[code.TypeTag]*names.Name
	byTag    map[code.TypeTag]*code.PrimType
}

// New builds the table. finder may be nil, in which case entered classes
// are complete and empty.
func New(tab *names.Table, finder Finder) *Symtab {
	s := &Symtab{
		Names:    tab,
		finder:   finder,
		classes:  make(map[*names.Name]*code.ClassSymbol),
		packages: make(map[*names.Name]*code.PackageSymbol),
		boxed:    make(map[code.TypeTag]*names.Name),
		byTag:    make(map[code.TypeTag]*code.PrimType),
	}

	s.RootPackage = code.NewPackageSymbol(tab, tab.Empty, nil)
	s.RootPackage.Exists = true
	s.packages[tab.Empty] = s.RootPackage
	s.UnnamedPackage = code.NewPackageSymbol(tab, tab.Empty, s.RootPackage)
	s.UnnamedPackage.Exists = true
	if finder != nil {
		s.UnnamedPackage.SetCompleter(finder)
	}
	s.NoSymbol = code.NewNoSymbol(tab, s.RootPackage)

	s.ErrSymbol = code.NewErrorClassSymbol(tab, tab.Any, s.RootPackage, code.NoType)
	s.ErrType = s.ErrSymbol.Type().(*code.ErrorType)
	s.UnknownSymbol = code.NewErrorClassSymbol(tab, tab.FromString("<any?>"), s.RootPackage, code.NoType)
	s.UnknownType = code.NewUnknownType(s.UnknownSymbol)
	s.UnknownSymbol.SetType(s.UnknownType)
	s.BotType = code.Bot

	s.PredefClass = code.NewClassSymbol(tab, flags.Public|flags.Acyclic, tab.Empty, s.RootPackage)
	s.PredefClass.ClassType().SetTypeArguments(nil)

	s.ByteType = s.initPrim(code.TagByte, "byte", "Byte")
	s.CharType = s.initPrim(code.TagChar, "char", "Character")
	s.ShortType = s.initPrim(code.TagShort, "short", "Short")
	s.IntType = s.initPrim(code.TagInt, "int", "Integer")
	s.LongType = s.initPrim(code.TagLong, "long", "Long")
	s.FloatType = s.initPrim(code.TagFloat, "float", "Float")
	s.DoubleType = s.initPrim(code.TagDouble, "double", "Double")
	s.BooleanType = s.initPrim(code.TagBoolean, "boolean", "Boolean")
	s.VoidType = s.initPrim(code.TagVoid, "void", "Void")

	s.ObjectType = s.enterWellKnown("lang.Object")
	s.StringType = s.enterWellKnown("lang.String")
	s.ClassType = s.enterWellKnown("lang.Class")
	s.CloneableType = s.enterWellKnown("lang.Cloneable")
	s.SerializableType = s.enterWellKnown("io.Serializable")
	s.NumberType = s.enterWellKnown("lang.Number")
	s.ThrowableType = s.enterWellKnown("lang.Throwable")
	s.ExceptionType = s.enterWellKnown("lang.Exception")
	s.RuntimeExceptionType = s.enterWellKnown("lang.RuntimeException")
	s.ErrorClassType = s.enterWellKnown("lang.Error")
	s.EnumType = s.enterWellKnown("lang.Enum")
	s.ComparableType = s.enterWellKnown("lang.Comparable")
	s.IterableType = s.enterWellKnown("lang.Iterable")
	s.CharSequenceType = s.enterWellKnown("lang.CharSequence")
	s.AutoCloseableType = s.enterWellKnown("lang.AutoCloseable")
	s.VoidClassType = s.enterWellKnown("lang.Void")
	s.FunctionalInterfaceType = s.enterWellKnown("lang.FunctionalInterface")
	s.DeprecatedType = s.enterWellKnown("lang.Deprecated")
	s.OverrideType = s.enterWellKnown("lang.Override")
	s.AnnotationType = s.enterWellKnown("lang.annotation.Annotation")
	s.RetentionType = s.enterWellKnown("lang.annotation.Retention")
	s.RetentionPolicyType = s.enterWellKnown("lang.annotation.RetentionPolicy")
	s.RepeatableType = s.enterWellKnown("lang.annotation.Repeatable")
	s.TargetType = s.enterWellKnown("lang.annotation.Target")
	s.InheritedType = s.enterWellKnown("lang.annotation.Inherited")
	s.DocumentedType = s.enterWellKnown("lang.annotation.Documented")
	s.SignaturePolymorphicType = s.enterWellKnown("lang.invoke.MethodHandle$PolymorphicSignature")

	s.initArrayClass()

	s.BoundClass = code.NewClassSymbol(tab, flags.Public|flags.Interface, tab.Bound, s.NoSymbol)
	s.BoundClass.ClassType().SetTypeArguments(nil)
	s.BoundClass.ClassType().SetSupertypeField(s.ObjectType)
	s.BoundClass.ClassType().SetInterfacesField(nil)
	s.MethodClass = code.NewClassSymbol(tab, flags.Public|flags.Acyclic, tab.Method, s.NoSymbol)
	s.MethodClass.ClassType().SetTypeArguments(nil)

	s.Operators = newOperators(s)
	return s
}

func (s *Symtab) initPrim(tag code.TypeTag, name, boxed string) *code.PrimType {
	n := s.Names.FromString(name)
	sym := code.NewClassSymbol(s.Names, flags.Public, n, s.RootPackage)
	t := code.NewPrimType(tag, sym)
	sym.SetType(t)
	s.PredefClass.RawMembers().Enter(sym)
	s.byTag[tag] = t
	s.boxed[tag] = s.Names.FromString("lang." + boxed)
	return t
}

func (s *Symtab) enterWellKnown(flat string) code.Type {
	return s.EnterClass(s.Names.FromString(flat)).Type()
}

// initArrayClass sets up the pseudo-class every array type uses as its
// symbol: a public length field and a clone method, with the root class
// as supertype and the cloneable and serializable interfaces.
func (s *Symtab) initArrayClass() {
	tab := s.Names
	s.ArrayClass = code.NewClassSymbol(tab, flags.Public|flags.Acyclic, tab.Array, s.NoSymbol)
	ct := s.ArrayClass.ClassType()
	ct.SetTypeArguments(nil)
	ct.SetSupertypeField(s.ObjectType)
	ct.SetInterfacesField([]code.Type{s.CloneableType, s.SerializableType})
	s.ArrayClassType = ct

	s.LengthVar = code.NewVarSymbol(flags.Public|flags.Final, tab.Length, s.IntType, s.ArrayClass)
	s.ArrayClass.RawMembers().Enter(s.LengthVar)
	s.ArrayCloneMethod = code.NewMethodSymbol(flags.Public, tab.Clone,
		code.NewMethodType(nil, s.ObjectType, nil, nil), s.ArrayClass)
	s.ArrayClass.RawMembers().Enter(s.ArrayCloneMethod)
}

// PrimType returns the primitive type for tag, or nil.
func (s *Symtab) PrimType(tag code.TypeTag) *code.PrimType { return s.byTag[tag] }

// PrimTypes lists the primitive types in tag order, void last.
func (s *Symtab) PrimTypes() []*code.PrimType {
	return []*code.PrimType{s.ByteType, s.CharType, s.ShortType, s.IntType, s.LongType, s.FloatType, s.DoubleType, s.BooleanType, s.VoidType}
}

// BoxedName is the flat name of the wrapper class for a primitive tag.
func (s *Symtab) BoxedName(tag code.TypeTag) (*names.Name, bool) {
	n, ok := s.boxed[tag]
	return n, ok
}

// LookupPrim finds a primitive type by its keyword.
func (s *Symtab) LookupPrim(name string) (*code.PrimType, bool) {
	n, ok := s.Names.Lookup(name)
	if !ok {
		return nil, false
	}
	sym, ok := s.PredefClass.RawMembers().Lookup(n, func(sym code.Symbol) bool { return sym.Kind() == code.KindClass })
	if !ok {
		return nil, false
	}
	pt, ok := sym.Type().(*code.PrimType)
	return pt, ok
}

// EnterPackage returns the package with the given qualified name, creating
// it and its enclosing packages when needed.
func (s *Symtab) EnterPackage(fullname *names.Name) *code.PackageSymbol {
	if p, ok := s.packages[fullname]; ok {
		return p
	}
	owner := s.EnterPackage(s.Names.PackagePart(fullname))
	p := code.NewPackageSymbol(s.Names, s.Names.ShortName(fullname), owner)
	if s.finder != nil {
		p.SetCompleter(s.finder)
	}
	s.packages[fullname] = p
	owner.RawMembers().Enter(p)
	return p
}

// EnterClass returns the class with the given flat name, creating it when
// needed. A '$' in the last segment names a member class of the class
// before it.
func (s *Symtab) EnterClass(flatname *names.Name) *code.ClassSymbol {
	if c, ok := s.classes[flatname]; ok {
		return c
	}
	text := flatname.String()
	var owner code.Symbol
	simple := text
	if dot := strings.LastIndexByte(text, '.'); dot >= 0 {
		simple = text[dot+1:]
	}
	if dollar := strings.LastIndexByte(simple, '$'); dollar > 0 && dollar < len(simple)-1 {
		outer := text[:len(text)-len(simple)+dollar]
		owner = s.EnterClass(s.Names.FromString(outer))
		simple = simple[dollar+1:]
	} else if pkg := s.Names.PackagePart(flatname); pkg.IsEmpty() {
		owner = s.UnnamedPackage
	} else {
		owner = s.EnterPackage(pkg)
	}
	c := code.NewClassSymbol(s.Names, 0, s.Names.FromString(simple), owner)
	if s.finder != nil {
		c.SetCompleter(s.finder)
	}
	s.classes[flatname] = c
	switch o := owner.(type) {
	case *code.PackageSymbol:
		o.RawMembers().Enter(c)
	case *code.ClassSymbol:
		o.RawMembers().Enter(c)
	}
	return c
}

// LookupClass finds an entered class without creating one.
func (s *Symtab) LookupClass(flatname *names.Name) (*code.ClassSymbol, bool) {
	c, ok := s.classes[flatname]
	return c, ok
}

// LookupPackage finds an entered package without creating one.
func (s *Symtab) LookupPackage(fullname *names.Name) (*code.PackageSymbol, bool) {
	p, ok := s.packages[fullname]
	return p, ok
}

// Classes yields every entered class ordered by flat name.
func (s *Symtab) Classes() iter.Seq[*code.ClassSymbol] {
	keys := slices.SortedFunc(maps.Keys(s.classes), (*names.Name).Compare)
	return func(yield func(*code.ClassSymbol) bool) {
		for _, k := range keys {
			if !yield(s.classes[k]) {
				return
			}
		}
	}
}

// ClassCount reports how many classes have been entered.
func (s *Symtab) ClassCount() int { return len(s.classes) }

// NewMembers creates an empty member scope owned by sym.
func NewMembers(sym code.Symbol) *code.Members { return scope.New[code.Symbol](sym) }

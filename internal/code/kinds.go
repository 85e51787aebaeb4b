package code

// Kind classifies a symbol.
type Kind uint8

const (
	KindNil Kind = iota
	KindPackage
	KindClass
	KindTypeVar
	KindVar
	KindMethod
	KindOperator
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindPackage:
		return "package"
	case KindClass:
		return "class"
	case KindTypeVar:
		return "type variable"
	case KindVar:
		return "variable"
	case KindMethod:
		return "method"
	case KindOperator:
		return "operator"
	case KindError:
		return "error"
	default:
		return "nil"
	}
}

// IsType reports whether symbols of this kind name types.
func (k Kind) IsType() bool {
	return k == KindClass || k == KindTypeVar || k == KindError
}

// TypeTag identifies the variant of a Type. The numeric order of the
// primitive tags encodes the widening lattice used by subtyping.
type TypeTag uint8

const (
	TagByte TypeTag = iota + 1
	TagChar
	TagShort
	TagInt
	TagLong
	TagFloat
	TagDouble
	TagBoolean
	TagVoid
	TagClass
	TagArray
	TagMethod
	TagPackage
	TagTypeVar
	TagWildcard
	TagForAll
	TagBot
	TagNone
	TagError
	TagUnknown
	TagUndetVar
)

var tagNames = [...]string{
	TagByte:     "byte",
	TagChar:     "char",
	TagShort:    "short",
	TagInt:      "int",
	TagLong:     "long",
	TagFloat:    "float",
	TagDouble:   "double",
	TagBoolean:  "boolean",
	TagVoid:     "void",
	TagClass:    "class",
	TagArray:    "array",
	TagMethod:   "method",
	TagPackage:  "package",
	TagTypeVar:  "typevar",
	TagWildcard: "wildcard",
	TagForAll:   "forall",
	TagBot:      "bot",
	TagNone:     "none",
	TagError:    "error",
	TagUnknown:  "unknown",
	TagUndetVar: "undetvar",
}

func (t TypeTag) String() string {
	if int(t) < len(tagNames) && tagNames[t] != "" {
		return tagNames[t]
	}
	return "invalid"
}

// IsPrimitive covers the numeric kinds and boolean.
func (t TypeTag) IsPrimitive() bool { return t >= TagByte && t <= TagBoolean }

func (t TypeTag) IsNumeric() bool { return t >= TagByte && t <= TagDouble }

// IsPartial is true for the tags that stand for not-yet-known types.
func (t TypeTag) IsPartial() bool { return t >= TagError }

// IsSubRangeOf implements primitive widening: byte and char widen to int and
// beyond but not to each other, short and up widen to every later numeric tag.
func (t TypeTag) IsSubRangeOf(s TypeTag) bool {
	switch t {
	case TagByte, TagChar:
		return t == s || t+2 <= s && s <= TagDouble
	case TagShort, TagInt, TagLong, TagFloat, TagDouble:
		return t <= s && s <= TagDouble
	default:
		return t == s
	}
}

// BoundKind is the variance of a wildcard.
type BoundKind uint8

const (
	BoundExtends BoundKind = iota
	BoundSuper
	BoundUnbound
)

func (k BoundKind) String() string {
	switch k {
	case BoundExtends:
		return "? extends "
	case BoundSuper:
		return "? super "
	default:
		return "?"
	}
}

// InferenceBound is one of the three bound sets of an inference variable.
type InferenceBound uint8

const (
	BoundUpper InferenceBound = iota
	BoundLower
	BoundEq
)

// InferenceBounds lists the bound kinds in their canonical iteration order.
var InferenceBounds = [...]InferenceBound{BoundUpper, BoundLower, BoundEq}

func (ib InferenceBound) String() string {
	switch ib {
	case BoundUpper:
		return "upper"
	case BoundLower:
		return "lower"
	case BoundEq:
		return "eq"
	default:
		return "invalid"
	}
}

// Complement swaps upper and lower; eq is its own complement.
func (ib InferenceBound) Complement() InferenceBound {
	switch ib {
	case BoundUpper:
		return BoundLower
	case BoundLower:
		return BoundUpper
	default:
		return BoundEq
	}
}

// ParseInferenceBound accepts the names printed by String.
func ParseInferenceBound(s string) (InferenceBound, bool) {
	for _, ib := range InferenceBounds {
		if ib.String() == s {
			return ib, true
		}
	}
	return 0, false
}

// Package flags defines the modifier and attribute bits carried by symbols.
package flags

import (
	"slices"
	"strings"
)

// Flags is a bitset of declaration modifiers and internal attributes.
type Flags uint64

const (
	Public Flags = 1 << iota
	Private
	Protected
	Static
	Final
	Synchronized
	Volatile
	Transient
	Native
	Interface
	Abstract
	Strictfp
	Synthetic
	Annotation
	Enum
	Mandated
	Deprecated
	HasInit
	Block
	NoOuterThis
	Exists
	Compound
	ClassSeen
	SourceSeen
	Locked
	Unattributed
	AnonConstr
	Acyclic
	Bridge
	Parameter
	Varargs
	AcyclicAnn
	GeneratedConstr
	Hypothetical
	Proprietary
	Union
	EffectivelyFinal
	Clash
	Default
	Auxiliary
	BadOverride
	SignaturePolymorphic
	Throws
	LambdaMethod
	Captured
)

// Groupings used by access checks and modifier validation.
const (
	AccessFlags = Public | Protected | Private

	LocalClassFlags       = Final | Abstract | Strictfp | Enum | Synthetic
	MemberClassFlags      = LocalClassFlags | Interface | AccessFlags
	ClassFlags            = LocalClassFlags | Interface | Public | Annotation
	InterfaceVarFlags     = Final | Static | Public
	VarFlags              = AccessFlags | Final | Static | Volatile | Transient | Enum
	ConstructorFlags      = AccessFlags
	InterfaceMethodFlags  = Abstract | Public
	MethodFlags           = AccessFlags | Abstract | Static | Native | Synchronized | Final | Strictfp
	ExtendedStandardFlags = MethodFlags | VarFlags | ClassFlags | Default

	// ModifierFlags are the bits a source declaration can spell.
	ModifierFlags = (MethodFlags | VarFlags | ClassFlags | Default) &^ Interface

	InterfaceMethodMask       = Abstract | Static | Public | Strictfp | Default
	AnnotationTypeElementMask = Abstract | Public
)

type labelled struct {
	bit   Flags
	label string
}

var labels = []labelled{
	{Public, "public"},
	{Private, "private"},
	{Protected, "protected"},
	{Static, "static"},
	{Final, "final"},
	{Synchronized, "synchronized"},
	{Volatile, "volatile"},
	{Transient, "transient"},
	{Native, "native"},
	{Interface, "interface"},
	{Abstract, "abstract"},
	{Strictfp, "strictfp"},
	{Synthetic, "synthetic"},
	{Annotation, "annotation"},
	{Enum, "enum"},
	{Mandated, "mandated"},
	{Deprecated, "deprecated"},
	{HasInit, "hasinit"},
	{Block, "block"},
	{NoOuterThis, "noouterthis"},
	{Exists, "exists"},
	{Compound, "compound"},
	{ClassSeen, "class_seen"},
	{SourceSeen, "source_seen"},
	{Locked, "locked"},
	{Unattributed, "unattributed"},
	{AnonConstr, "anonconstr"},
	{Acyclic, "acyclic"},
	{Bridge, "bridge"},
	{Parameter, "parameter"},
	{Varargs, "varargs"},
	{AcyclicAnn, "acyclic_ann"},
	{GeneratedConstr, "generatedconstr"},
	{Hypothetical, "hypothetical"},
	{Proprietary, "proprietary"},
	{Union, "union"},
	{EffectivelyFinal, "effectively_final"},
	{Clash, "clash"},
	{Default, "default"},
	{Auxiliary, "auxiliary"},
	{BadOverride, "bad_override"},
	{SignaturePolymorphic, "signature_polymorphic"},
	{Throws, "throws"},
	{LambdaMethod, "lambda_method"},
	{Captured, "captured"},
}

func (f Flags) Has(bits Flags) bool { return f&bits == bits }

func (f Flags) Any(bits Flags) bool { return f&bits != 0 }

// Access returns only the visibility bits.
func (f Flags) Access() Flags { return f & AccessFlags }

// Strings returns a slice of textual flag labels in bit order.
func (f Flags) Strings() []string {
	if f == 0 {
		return nil
	}
	out := make([]string, 0, 4)
	for _, l := range labels {
		if f&l.bit != 0 {
			out = append(out, l.label)
		}
	}
	return out
}

func (f Flags) String() string {
	return strings.Join(f.Strings(), " ")
}

// Parse maps labels back to bits; unknown labels are returned separately.
func Parse(words []string) (Flags, []string) {
	var f Flags
	var unknown []string
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		i := slices.IndexFunc(labels, func(l labelled) bool { return l.label == w })
		if i < 0 {
			unknown = append(unknown, w)
			continue
		}
		f |= labels[i].bit
	}
	return f, unknown
}

// Modifier is a source-level modifier keyword.
type Modifier uint8

const (
	ModPublic Modifier = iota
	ModProtected
	ModPrivate
	ModAbstract
	ModStatic
	ModFinal
	ModTransient
	ModVolatile
	ModSynchronized
	ModNative
	ModStrictfp
	ModDefault
)

var modifierBits = [...]Flags{
	ModPublic:       Public,
	ModProtected:    Protected,
	ModPrivate:      Private,
	ModAbstract:     Abstract,
	ModStatic:       Static,
	ModFinal:        Final,
	ModTransient:    Transient,
	ModVolatile:     Volatile,
	ModSynchronized: Synchronized,
	ModNative:       Native,
	ModStrictfp:     Strictfp,
	ModDefault:      Default,
}

func (m Modifier) String() string {
	switch m {
	case ModPublic:
		return "public"
	case ModProtected:
		return "protected"
	case ModPrivate:
		return "private"
	case ModAbstract:
		return "abstract"
	case ModStatic:
		return "static"
	case ModFinal:
		return "final"
	case ModTransient:
		return "transient"
	case ModVolatile:
		return "volatile"
	case ModSynchronized:
		return "synchronized"
	case ModNative:
		return "native"
	case ModStrictfp:
		return "strictfp"
	case ModDefault:
		return "default"
	default:
		return "invalid"
	}
}

// Modifiers returns the set-valued modifier view in canonical source order.
func (f Flags) Modifiers() []Modifier {
	var out []Modifier
	for m, bit := range modifierBits {
		if f&bit != 0 {
			out = append(out, Modifier(m))
		}
	}
	return out
}

// FromModifiers is the inverse of Modifiers.
func FromModifiers(mods ...Modifier) Flags {
	var f Flags
	for _, m := range mods {
		if int(m) < len(modifierBits) {
			f |= modifierBits[m]
		}
	}
	return f
}

// ModifierString renders the source modifiers separated by spaces.
func (f Flags) ModifierString() string {
	mods := f.Modifiers()
	parts := make([]string, len(mods))
	for i, m := range mods {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}

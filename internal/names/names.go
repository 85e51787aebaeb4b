// Package names interns identifiers so that equal names compare by pointer.
package names

import (
	"fmt"
	"hash/fnv"
	"slices"
	"strings"

	"fortio.org/safecast"
	"golang.org/x/text/unicode/norm"
)

// Name is an interned identifier. Two names with the same text obtained from
// the same Table are the same pointer.
type Name struct {
	text  string
	hash  uint32
	index uint32
}

func (n *Name) String() string {
	if n == nil {
		return ""
	}
	return n.text
}

// Hash returns the precomputed hash used by scope tables.
func (n *Name) Hash() uint32 { return n.hash }

// Index is the position of the name in its table; the empty name has index 0.
func (n *Name) Index() uint32 { return n.index }

func (n *Name) IsEmpty() bool { return n == nil || n.text == "" }

func (n *Name) Len() int { return len(n.text) }

// LastIndexByte reports the last position of b in the name, or -1.
func (n *Name) LastIndexByte(b byte) int { return strings.LastIndexByte(n.text, b) }

// Compare orders names by their text.
func (n *Name) Compare(other *Name) int {
	if n == other {
		return 0
	}
	return strings.Compare(n.String(), other.String())
}

func (n *Name) StartsWith(prefix *Name) bool {
	return strings.HasPrefix(n.text, prefix.text)
}

// Table owns all names of a session.
type Table struct {
	byID  []*Name
	index map[string]*Name

	Empty    *Name
	Init     *Name
	Clinit   *Name
	Length   *Name
	Clone    *Name
	Value    *Name
	This     *Name
	Super    *Name
	Any      *Name
	Error    *Name
	Array    *Name
	Method   *Name
	Bound    *Name
	Captured *Name
	Package  *Name
	Java     *Name
	Lang     *Name
	Source   *Name
	Class    *Name
	Runtime  *Name
	Dollar   *Name
	Dot      *Name
}

// NewTable creates a table with the well-known names pre-entered.
func NewTable() *Table {
	t := &Table{
		byID:  make([]*Name, 0, 256),
		index: make(map[string]*Name, 256),
	}
	t.Empty = t.FromString("")
	t.Init = t.FromString("<init>")
	t.Clinit = t.FromString("<clinit>")
	t.Length = t.FromString("length")
	t.Clone = t.FromString("clone")
	t.Value = t.FromString("value")
	t.This = t.FromString("this")
	t.Super = t.FromString("super")
	t.Any = t.FromString("<any>")
	t.Error = t.FromString("<error>")
	t.Array = t.FromString("Array")
	t.Method = t.FromString("Method")
	t.Bound = t.FromString("Bound")
	t.Captured = t.FromString("<captured wildcard>")
	t.Package = t.FromString("package")
	t.Java = t.FromString("java")
	t.Lang = t.FromString("lang")
	t.Source = t.FromString("SOURCE")
	t.Class = t.FromString("CLASS")
	t.Runtime = t.FromString("RUNTIME")
	t.Dollar = t.FromString("$")
	t.Dot = t.FromString(".")
	return t
}

// FromString returns the interned name for s. Text is normalized to NFC so
// that canonically equivalent identifiers intern to one name.
func (t *Table) FromString(s string) *Name {
	if n, ok := t.index[s]; ok {
		return n
	}
	key := s
	if !norm.NFC.IsNormalString(s) {
		key = norm.NFC.String(s)
		if n, ok := t.index[key]; ok {
			t.index[s] = n
			return n
		}
	}
	idx, err := safecast.Conv[uint32](len(t.byID))
	if err != nil {
		panic(fmt.Errorf("name table overflow: %w", err))
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	n := &Name{text: strings.Clone(key), hash: h.Sum32(), index: idx}
	t.byID = append(t.byID, n)
	t.index[n.text] = n
	if key != s {
		t.index[s] = n
	}
	return n
}

// Lookup returns a previously interned name without creating one.
func (t *Table) Lookup(s string) (*Name, bool) {
	n, ok := t.index[s]
	if !ok && !norm.NFC.IsNormalString(s) {
		n, ok = t.index[norm.NFC.String(s)]
	}
	return n, ok
}

// ByIndex returns the name at index, or nil when out of range.
func (t *Table) ByIndex(idx uint32) *Name {
	if int(idx) >= len(t.byID) {
		return nil
	}
	return t.byID[idx]
}

// Len reports how many distinct names the table holds, the empty name included.
func (t *Table) Len() int { return len(t.byID) }

// Snapshot returns the text of every name in index order.
func (t *Table) Snapshot() []string {
	out := make([]string, 0, len(t.byID))
	for _, n := range t.byID {
		out = append(out, n.text)
	}
	return out
}

// Concat interns the concatenation of the given names and strings.
func (t *Table) Concat(parts ...fmt.Stringer) *Name {
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(p.String())
	}
	return t.FromString(sb.String())
}

// Qualified joins prefix and simple with a dot; an empty prefix yields simple.
func (t *Table) Qualified(prefix, simple *Name) *Name {
	if prefix.IsEmpty() {
		return simple
	}
	return t.FromString(prefix.text + "." + simple.text)
}

// ShortName returns the part of a qualified name after its last dot.
func (t *Table) ShortName(n *Name) *Name {
	i := n.LastIndexByte('.')
	if i < 0 {
		return n
	}
	return t.FromString(n.text[i+1:])
}

// PackagePart returns everything before the last dot, or the empty name.
func (t *Table) PackagePart(n *Name) *Name {
	i := n.LastIndexByte('.')
	if i < 0 {
		return t.Empty
	}
	return t.FromString(n.text[:i])
}

// Sorted returns the names ordered by text.
func Sorted(ns []*Name) []*Name {
	out := slices.Clone(ns)
	slices.SortFunc(out, (*Name).Compare)
	return out
}

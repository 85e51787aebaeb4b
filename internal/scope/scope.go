// Package scope implements the symbol tables used for class members,
// packages and nested lexical blocks.
//
// A Scope is an open-addressing hash table keyed by interned name. Nested
// scopes created with Dup share their parent's table; entries entered by the
// child shadow the parent's entries in the same bucket, and Leave pops them
// again in time proportional to what the child entered.
package scope

import (
	"fmt"
	"iter"

	"fortio.org/safecast"

	"nominal/internal/names"
)

// Symbol is anything a scope can hold.
type Symbol interface {
	comparable
	Name() *names.Name
}

// Filter selects symbols during lookup and iteration. A nil filter accepts everything.
type Filter[S Symbol] func(S) bool

func (f Filter[S]) accepts(s S) bool { return f == nil || f(s) }

// Listener observes symbols entering or leaving a scope.
type Listener[S Symbol] interface {
	SymbolAdded(sym S, from View[S])
	SymbolRemoved(sym S, from View[S])
}

// View is the read side shared by plain and compound scopes.
type View[S Symbol] interface {
	Lookup(name *names.Name, filter Filter[S]) (S, bool)
	SymbolsByName(name *names.Name, filter Filter[S]) iter.Seq[S]
	Symbols(filter Filter[S]) iter.Seq[S]
	AddListener(l Listener[S])
}

const (
	emptySlot int32 = 0
	// sentinel ends every shadow chain and marks vacated slots.
	sentinel int32 = 1

	initialSize = 0x10
)

type entry[S Symbol] struct {
	sym      S
	shadowed int32 // next older entry in the same bucket
	sibling  int32 // previous entry of the owning scope
	owner    *Scope[S]
	live     bool
}

// table is the storage shared by a scope and the children it was duplicated into.
type table[S Symbol] struct {
	slots   []int32
	entries []entry[S]
	used    int // occupied slots, vacated ones included
}

func newTable[S Symbol](size int) *table[S] {
	return &table[S]{
		slots:   make([]int32, size),
		entries: make([]entry[S], 2, 2+size/2),
	}
}

func (t *table[S]) clone() *table[S] {
	return &table[S]{
		slots:   append([]int32(nil), t.slots...),
		entries: append([]entry[S](nil), t.entries...),
		used:    t.used,
	}
}

// index finds the slot for name by double hashing. The probe step is odd, so
// it is coprime with the power-of-two table length and visits every slot.
func (t *table[S]) index(name *names.Name) int {
	mask := uint32(len(t.slots) - 1)
	h := name.Hash()
	i := h & mask
	step := mask - ((h + (h >> 16)) << 1)
	vacated := -1
	for {
		e := t.slots[i]
		switch {
		case e == emptySlot:
			if vacated >= 0 {
				return vacated
			}
			return int(i)
		case e == sentinel:
			if vacated < 0 {
				vacated = int(i)
			}
		case t.entries[e].sym.Name() == name:
			return int(i)
		}
		i = (i + step) & mask
	}
}

func (t *table[S]) alloc(e entry[S]) int32 {
	idx, err := safecast.Conv[int32](len(t.entries))
	if err != nil {
		panic(fmt.Errorf("scope entry overflow: %w", err))
	}
	t.entries = append(t.entries, e)
	return idx
}

// trim releases dead entries at the end of the arena.
func (t *table[S]) trim() {
	n := len(t.entries)
	for n > 2 && !t.entries[n-1].live {
		n--
	}
	clear(t.entries[n:])
	t.entries = t.entries[:n]
}

// Scope is a mutable symbol table owned by a symbol.
type Scope[S Symbol] struct {
	owner     S
	next      *Scope[S]
	tab       *table[S]
	elems     int32
	count     int
	shared    int
	listeners []Listener[S]
	// errorFallback resolves every missing name to the owner.
	errorFallback bool
}

// New creates an empty outermost scope.
func New[S Symbol](owner S) *Scope[S] {
	return &Scope[S]{owner: owner, tab: newTable[S](initialSize)}
}

// NewError creates the scope given to a symbol whose completion failed:
// lookups that miss resolve to the owner so callers do not cascade errors.
func NewError[S Symbol](owner S) *Scope[S] {
	s := New(owner)
	s.errorFallback = true
	return s
}

func (s *Scope[S]) Owner() S { return s.owner }

// Next is the enclosing scope, or nil for an outermost scope.
func (s *Scope[S]) Next() *Scope[S] { return s.next }

// Len reports how many symbols were entered directly in this scope.
func (s *Scope[S]) Len() int { return s.count }

func (s *Scope[S]) IsEmpty() bool { return s.count == 0 }

// Shared reports how many live nested scopes share this scope's table.
func (s *Scope[S]) Shared() int { return s.shared }

func (s *Scope[S]) IsError() bool { return s.errorFallback }

// Dup opens a nested scope that shares this scope's table. This scope must
// not be modified until the nested one is left.
func (s *Scope[S]) Dup(owner S) *Scope[S] {
	s.shared++
	return &Scope[S]{owner: owner, next: s, tab: s.tab}
}

// DupUnshared opens a nested scope over a private copy of the table, so the
// parent stays mutable.
func (s *Scope[S]) DupUnshared() *Scope[S] {
	return &Scope[S]{owner: s.owner, next: s, tab: s.tab.clone()}
}

// Leave discards everything entered in s and returns the enclosing scope,
// whose view is exactly what it was before Dup.
func (s *Scope[S]) Leave() *Scope[S] {
	if s.shared != 0 {
		panic("scope: leave with live nested scopes")
	}
	if s.next == nil {
		panic("scope: leave of an outermost scope")
	}
	if s.tab != s.next.tab {
		return s.next
	}
	t := s.tab
	for s.elems != emptySlot {
		e := &t.entries[s.elems]
		i := t.index(e.sym.Name())
		if t.slots[i] != s.elems {
			panic(fmt.Sprintf("scope: %s is not the newest entry of its bucket", e.sym.Name()))
		}
		t.slots[i] = e.shadowed
		e.live = false
		s.elems = e.sibling
	}
	s.count = 0
	t.trim()
	s.next.shared--
	return s.next
}

// Enter adds sym, shadowing older entries of the same name.
func (s *Scope[S]) Enter(sym S) {
	if s.shared != 0 {
		panic("scope: enter into a shared scope")
	}
	t := s.tab
	if t.used*3 >= (len(t.slots)-1)*2 {
		s.grow()
	}
	i := t.index(sym.Name())
	old := t.slots[i]
	if old == emptySlot {
		old = sentinel
		t.used++
	}
	e := t.alloc(entry[S]{sym: sym, shadowed: old, sibling: s.elems, owner: s, live: true})
	t.slots[i] = e
	s.elems = e
	s.count++
	for _, l := range s.listeners {
		l.SymbolAdded(sym, s)
	}
}

// EnterUnique enters sym unless a visible symbol of the same name is
// accepted by clash. It reports whether sym was entered.
func (s *Scope[S]) EnterUnique(sym S, clash Filter[S]) bool {
	if s.LookupEntry(sym.Name(), clash).Exists() {
		return false
	}
	s.Enter(sym)
	return true
}

// grow doubles the slot array and rehashes every chain head. Scopes that
// share the table see the new slots through the shared pointer.
func (s *Scope[S]) grow() {
	t := s.tab
	old := t.slots
	t.slots = make([]int32, len(old)*2)
	n := 0
	for _, e := range old {
		if e == emptySlot || e == sentinel {
			continue
		}
		t.slots[t.index(t.entries[e].sym.Name())] = e
		n++
	}
	t.used = n
}

// Remove deletes sym from this scope. Only symbols entered directly in s
// can be removed; it reports whether anything changed.
func (s *Scope[S]) Remove(sym S) bool {
	if s.shared != 0 {
		panic("scope: remove from a shared scope")
	}
	t := s.tab
	i := t.index(sym.Name())
	prev := int32(-1)
	cur := t.slots[i]
	if cur == emptySlot {
		return false
	}
	for cur != sentinel && (t.entries[cur].sym != sym || t.entries[cur].owner != s) {
		prev = cur
		cur = t.entries[cur].shadowed
	}
	if cur == sentinel {
		return false
	}
	e := &t.entries[cur]
	if prev < 0 {
		t.slots[i] = e.shadowed
	} else {
		t.entries[prev].shadowed = e.shadowed
	}
	if s.elems == cur {
		s.elems = e.sibling
	} else {
		for x := s.elems; x != emptySlot; x = t.entries[x].sibling {
			if t.entries[x].sibling == cur {
				t.entries[x].sibling = e.sibling
				break
			}
		}
	}
	e.live = false
	s.count--
	t.trim()
	for _, l := range s.listeners {
		l.SymbolRemoved(sym, s)
	}
	return true
}

// Lookup returns the most recently entered symbol named name accepted by filter.
func (s *Scope[S]) Lookup(name *names.Name, filter Filter[S]) (S, bool) {
	e := s.LookupEntry(name, filter)
	if e.Exists() {
		return e.Sym(), true
	}
	if s.errorFallback && filter.accepts(s.owner) {
		return s.owner, true
	}
	var zero S
	return zero, false
}

// LookupEntry is Lookup returning a handle that can walk to older entries.
// Handles are invalidated by Leave and Remove.
func (s *Scope[S]) LookupEntry(name *names.Name, filter Filter[S]) Entry[S] {
	t := s.tab
	e := t.slots[t.index(name)]
	if e == emptySlot {
		e = sentinel
	}
	for e != sentinel && (t.entries[e].sym.Name() != name || !filter.accepts(t.entries[e].sym)) {
		e = t.entries[e].shadowed
	}
	return Entry[S]{tab: t, idx: e, filter: filter}
}

// Includes reports whether sym is visible through s.
func (s *Scope[S]) Includes(sym S) bool {
	for e := s.LookupEntry(sym.Name(), nil); e.Exists(); e = e.Next() {
		if e.Sym() == sym {
			return true
		}
	}
	return false
}

// SymbolsByName yields every visible symbol named name, newest first.
func (s *Scope[S]) SymbolsByName(name *names.Name, filter Filter[S]) iter.Seq[S] {
	return func(yield func(S) bool) {
		for e := s.LookupEntry(name, filter); e.Exists(); e = e.Next() {
			if !yield(e.Sym()) {
				return
			}
		}
	}
}

// Symbols yields the symbols of s newest first, then those of the
// enclosing scopes.
func (s *Scope[S]) Symbols(filter Filter[S]) iter.Seq[S] {
	return func(yield func(S) bool) {
		for cur := s; cur != nil; cur = cur.next {
			t := cur.tab
			for x := cur.elems; x != emptySlot; x = t.entries[x].sibling {
				sym := t.entries[x].sym
				if filter.accepts(sym) && !yield(sym) {
					return
				}
			}
		}
	}
}

// Local yields only the symbols entered directly in s, newest first.
func (s *Scope[S]) Local(filter Filter[S]) iter.Seq[S] {
	return func(yield func(S) bool) {
		t := s.tab
		for x := s.elems; x != emptySlot; x = t.entries[x].sibling {
			sym := t.entries[x].sym
			if filter.accepts(sym) && !yield(sym) {
				return
			}
		}
	}
}

func (s *Scope[S]) AddListener(l Listener[S]) {
	s.listeners = append(s.listeners, l)
}

// Entry is a position in a bucket's shadow chain.
type Entry[S Symbol] struct {
	tab    *table[S]
	idx    int32
	filter Filter[S]
}

// Exists is false once the chain is exhausted.
func (e Entry[S]) Exists() bool { return e.tab != nil && e.idx != sentinel && e.idx != emptySlot }

func (e Entry[S]) Sym() S {
	if !e.Exists() {
		var zero S
		return zero
	}
	return e.tab.entries[e.idx].sym
}

// Scope is the scope the symbol was entered in.
func (e Entry[S]) Scope() *Scope[S] {
	if !e.Exists() {
		return nil
	}
	return e.tab.entries[e.idx].owner
}

// Next moves to the next older entry with the same name accepted by the
// handle's filter.
func (e Entry[S]) Next() Entry[S] {
	if !e.Exists() {
		return e
	}
	name := e.tab.entries[e.idx].sym.Name()
	x := e.tab.entries[e.idx].shadowed
	for x != sentinel && (e.tab.entries[x].sym.Name() != name || !e.filter.accepts(e.tab.entries[x].sym)) {
		x = e.tab.entries[x].shadowed
	}
	return Entry[S]{tab: e.tab, idx: x, filter: e.filter}
}

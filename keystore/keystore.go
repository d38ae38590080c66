// Package keystore implements the Key Store bookkeeping structure: a
// global record, per parse or per build, of every fully qualified key
// path that has been bound, every explicit table header, and every
// array-of-tables and its element count, enforcing the cross-cutting
// uniqueness and redefinition rules a document must satisfy. It is
// grounded on the seenKeys/openTableArrays bookkeeping in
// cuelang.org/go/encoding/toml.Decoder, generalized from that decoder's
// ad hoc fields into an explicit predicate/mutator API.
package keystore

import (
	"fmt"
	"strconv"
	"strings"
)

// KeyStore tracks the cross-cutting redefinition rules of a single parse
// or build. It has no notion of values; the Value Tree (package value)
// holds those separately and trusts the Key Store to have already
// rejected any conflicting declaration.
//
// Two kinds of name are at play throughout this package: a static
// dotted name (e.g. "fruit.variety", built directly from header
// segments) identifies a key's declared TYPE — whether "variety" under
// "fruit" is a table or an array of tables, which must stay consistent
// across every element of an enclosing array. An instantiated name
// (e.g. "fruit0.variety1") additionally threads through the current
// element index of every enclosing array of tables, and is what
// actually distinguishes one array element's keys from another's.
// Redefinition and key-uniqueness bookkeeping is instantiated; type
// bookkeeping (table vs. array of tables, implicit parents) is static.
type KeyStore struct {
	keys                   map[string]bool // instantiated leaf keys already bound
	explicitTables         map[string]bool // instantiated names declared via [name]
	arrayStaticNames       map[string]bool // static names ever declared via [[name]]
	tableStaticNames       map[string]bool // static names ever declared via [name]
	implicitStaticParents  map[string]bool // static names auto-vivified by a deeper [[...]]
	arrayCounts            map[string]int  // instantiated array name -> element count

	currentScope string // instantiated prefix new bare keys are bound under
}

// New returns an empty KeyStore, positioned at the document root.
func New() *KeyStore {
	return &KeyStore{
		keys:                  make(map[string]bool),
		explicitTables:        make(map[string]bool),
		arrayStaticNames:      make(map[string]bool),
		tableStaticNames:      make(map[string]bool),
		implicitStaticParents: make(map[string]bool),
		arrayCounts:           make(map[string]int),
	}
}

// trimDots collapses runs of '.' produced by an empty prefix and strips
// any leading/trailing '.'.
func trimDots(s string) string {
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return strings.Trim(s, ".")
}

// join builds a dotted static header name from segments. Quoted
// segments may legally contain '.'; ZCONF keeps segments as a list from
// the lexer/parser onward rather than splitting a joined string, so
// this join is purely for bookkeeping/display and is never re-split.
func join(segments []string) string {
	return trimDots(strings.Join(segments, "."))
}

func properPrefixes(name string) []string {
	parts := strings.Split(name, ".")
	var prefixes []string
	for i := 1; i < len(parts); i++ {
		prefixes = append(prefixes, strings.Join(parts[:i], "."))
	}
	return prefixes
}

// walkInstantiated resolves the instantiated name of a dotted ancestor
// path, replacing each segment that is statically known to be an array
// of tables with "segment"+index, where index is that array's current
// element count minus one.
func (ks *KeyStore) walkInstantiated(segments []string) string {
	instPrefix := ""
	staticPrefix := ""
	for _, seg := range segments {
		staticPrefix = trimDots(staticPrefix + "." + seg)
		if ks.arrayStaticNames[staticPrefix] {
			arrKey := trimDots(instPrefix + "." + seg)
			idx := ks.arrayCounts[arrKey] - 1
			if idx < 0 {
				idx = 0
			}
			instPrefix = trimDots(instPrefix + "." + seg + strconv.Itoa(idx))
		} else {
			instPrefix = trimDots(instPrefix + "." + seg)
		}
	}
	return instPrefix
}

// FullKey computes the fully qualified instantiated path of leaf key k
// under the current scope.
func (ks *KeyStore) FullKey(k string) string {
	return trimDots(ks.currentScope + "." + k)
}

// IsValidKey reports whether k may be bound as a new leaf under the
// current scope.
func (ks *KeyStore) IsValidKey(k string) bool {
	return !ks.keys[ks.FullKey(k)]
}

// AddKey binds leaf key k under the current scope, failing if it was
// already bound.
func (ks *KeyStore) AddKey(k string) error {
	full := ks.FullKey(k)
	if ks.keys[full] {
		return fmt.Errorf("duplicate key %q", k)
	}
	ks.keys[full] = true
	return nil
}

// AddInlineTableKey is AddKey for a key that is about to become an
// inline table; it is named separately to match spec.md §4.3's API even
// though the uniqueness rule is identical.
func (ks *KeyStore) AddInlineTableKey(k string) error {
	return ks.AddKey(k)
}

// BeginInline descends the bookkeeping cursor into key for the
// duration of an inline table literal, mirroring value.Tree.BeginInline.
// It returns a token that must be passed to EndInline to restore the
// cursor.
func (ks *KeyStore) BeginInline(key string) (savedScope string) {
	saved := ks.currentScope
	ks.currentScope = trimDots(ks.currentScope + "." + key)
	return saved
}

// EndInline restores the cursor saved by BeginInline.
func (ks *KeyStore) EndInline(saved string) {
	ks.currentScope = saved
}

// IsRegisteredAsTable reports whether the static name was declared via
// AddTableKey, at any array instance.
func (ks *KeyStore) IsRegisteredAsTable(staticName string) bool {
	return ks.tableStaticNames[staticName]
}

// IsRegisteredAsArrayTable reports whether the static name was declared
// via AddArrayTableKey, at any array instance; an implicit ancestor of
// one (see IsTableImplicitFromArrayTable) is not reported. package value's Tree uses this, through the Parser,
// to decide whether to follow a header segment to its last array
// element or descend a plain table.
func (ks *KeyStore) IsRegisteredAsArrayTable(staticName string) bool {
	return ks.arrayStaticNames[staticName]
}

// IsTableImplicitFromArrayTable reports whether the static name is an
// implicit parent created by some deeper [[a.b.c]] header (invariant I4).
func (ks *KeyStore) IsTableImplicitFromArrayTable(staticName string) bool {
	return ks.implicitStaticParents[staticName]
}

// IsValidTableKey reports whether the static dotted name may be
// declared as a new explicit [name] header at the current array
// instance (invariants I2, I3), applying the same checks as AddTableKey.
func (ks *KeyStore) IsValidTableKey(segments []string) bool {
	staticName := join(segments)
	if ks.arrayStaticNames[staticName] {
		return false
	}
	if ks.implicitStaticParents[staticName] && !ks.tableStaticNames[staticName] {
		return false
	}
	instFull := trimDots(ks.walkInstantiated(segments[:len(segments)-1]) + "." + segments[len(segments)-1])
	return !ks.explicitTables[instFull] && !ks.keys[instFull]
}

// AddTableKey registers segments as an explicit table at the current
// array instance, repositioning the bookkeeping cursor the way
// spec.md §4.3 describes.
func (ks *KeyStore) AddTableKey(segments []string) error {
	staticName := join(segments)
	if ks.arrayStaticNames[staticName] {
		return fmt.Errorf("table %q is already declared as an array of tables", staticName)
	}
	if ks.implicitStaticParents[staticName] && !ks.tableStaticNames[staticName] {
		return fmt.Errorf("table %q is an implicit parent of an array of tables", staticName)
	}
	ancestorInst := ks.walkInstantiated(segments[:len(segments)-1])
	leaf := segments[len(segments)-1]
	instFull := trimDots(ancestorInst + "." + leaf)
	if ks.explicitTables[instFull] {
		return fmt.Errorf("table %q redefined", staticName)
	}
	if ks.keys[instFull] {
		return fmt.Errorf("table %q conflicts with an existing key", staticName)
	}
	ks.explicitTables[instFull] = true
	ks.keys[instFull] = true
	ks.tableStaticNames[staticName] = true
	ks.currentScope = instFull
	return nil
}

// IsValidArrayTableKey reports whether the static dotted name may be
// declared as a new [[name]] element (invariants I3, I4).
func (ks *KeyStore) IsValidArrayTableKey(segments []string) bool {
	staticName := join(segments)
	if ks.tableStaticNames[staticName] {
		return false
	}
	if ks.implicitStaticParents[staticName] && !ks.arrayStaticNames[staticName] {
		return false
	}
	instFull := trimDots(ks.walkInstantiated(segments[:len(segments)-1]) + "." + segments[len(segments)-1])
	return ks.arrayCounts[instFull] > 0 || !ks.keys[instFull]
}

// AddArrayTableKey registers a new element of the array of tables named
// by segments, creating it on first use at this array instance or
// appending on subsequent uses, and records every proper prefix as an
// implicit array-of-tables parent (spec.md §4.3).
func (ks *KeyStore) AddArrayTableKey(segments []string) error {
	staticName := join(segments)
	if ks.tableStaticNames[staticName] {
		return fmt.Errorf("%q is already declared as a table", staticName)
	}
	// Invariant I4: a name implicitly vivified as a parent of a deeper
	// array of tables (e.g. "a" for [[a.b]]) can never itself become an
	// array of tables, even though it was never an explicit header.
	if ks.implicitStaticParents[staticName] && !ks.arrayStaticNames[staticName] {
		return fmt.Errorf("%q is an implicit parent of an array of tables", staticName)
	}
	ancestorInst := ks.walkInstantiated(segments[:len(segments)-1])
	leaf := segments[len(segments)-1]
	instFull := trimDots(ancestorInst + "." + leaf)
	if ks.arrayCounts[instFull] == 0 {
		if ks.keys[instFull] {
			return fmt.Errorf("array of tables %q conflicts with an existing key", staticName)
		}
		ks.keys[instFull] = true
	}

	ks.arrayStaticNames[staticName] = true
	for _, p := range properPrefixes(staticName) {
		ks.implicitStaticParents[p] = true
	}

	ks.arrayCounts[instFull]++
	newIndex := ks.arrayCounts[instFull] - 1
	ks.currentScope = trimDots(instFull + strconv.Itoa(newIndex))
	return nil
}

// IsValidInlineTable reports whether key may be bound to a new inline
// table under the current scope.
func (ks *KeyStore) IsValidInlineTable(key string) bool {
	return ks.IsValidKey(key)
}

// ResetToRoot repositions the cursor at the document root without
// touching any already-recorded keys; New() starts in this state.
func (ks *KeyStore) ResetToRoot() {
	ks.currentScope = ""
}

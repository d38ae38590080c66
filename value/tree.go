package value

import "fmt"

// Tree is the mutable value tree under construction during a parse: a
// root Table plus the movable "current insertion point" and the stack
// of saved cursors used by inline tables, per spec.md §3.
type Tree struct {
	root    *TableValue
	current *TableValue
	stack   []*TableValue
}

// NewTree returns a Tree with an empty root table as its cursor.
func NewTree() *Tree {
	root := NewTableValue()
	return &Tree{root: root, current: root}
}

// Root returns the tree's root table.
func (t *Tree) Root() *TableValue {
	return t.root
}

// Put binds key to v at the current cursor.
func (t *Tree) Put(key string, v *Value) {
	t.current.Set(key, v)
}

// BeginInline pushes the current cursor and descends into (or creates)
// the sub-table bound to key, for the duration of an inline table
// literal (spec.md §4.4).
func (t *Tree) BeginInline(key string) {
	sub := t.descendOrCreate(key)
	t.stack = append(t.stack, t.current)
	t.current = sub
}

// EndInline pops the cursor saved by the matching BeginInline.
func (t *Tree) EndInline() {
	n := len(t.stack)
	t.current = t.stack[n-1]
	t.stack = t.stack[:n-1]
}

func (t *Tree) descendOrCreate(key string) *TableValue {
	existing := t.current.Get(key)
	if existing == nil {
		sub := NewTableValue()
		t.current.Set(key, NewTable(sub))
		return sub
	}
	if existing.Kind != Table {
		panic(fmt.Sprintf("value: %q is not a table", key))
	}
	return existing.TableVal
}

// EnterTable resets the cursor to the root and walks/creates every
// segment of path, following array-of-tables indirection at any
// intermediate segment that is itself an array (spec.md §4.4). isArray
// reports, for the path prefix of the given length, whether that prefix
// names a registered array-of-tables; the caller (the Parser, backed by
// the Key Store) is the authority on that question.
func (t *Tree) EnterTable(path []string, isArray func(prefixLen int) bool) {
	cur := t.root
	for i, seg := range path {
		cur = step(cur, seg, isArray(i+1))
	}
	t.current = cur
	t.stack = nil
}

// EnterArrayTable performs the same walk as EnterTable over path[:len-1],
// then appends a new empty table to the array named by the full path
// and points the cursor at that new element.
func (t *Tree) EnterArrayTable(path []string, isArray func(prefixLen int) bool) {
	cur := t.root
	for i, seg := range path[:len(path)-1] {
		cur = step(cur, seg, isArray(i+1))
	}
	last := path[len(path)-1]
	elem := NewTableValue()
	existing := cur.Get(last)
	if existing == nil {
		cur.Set(last, NewArray([]*Value{NewTable(elem)}))
	} else {
		if existing.Kind != Array {
			panic(fmt.Sprintf("value: %q is not an array of tables", last))
		}
		existing.Elems = append(existing.Elems, NewTable(elem))
	}
	t.current = elem
	t.stack = nil
}

// step resolves one path segment from cur: descending into an existing
// table, following an array-of-tables to its last element, or creating
// a new sub-table when the segment is unseen.
func step(cur *TableValue, seg string, arraySegment bool) *TableValue {
	existing := cur.Get(seg)
	if existing == nil {
		sub := NewTableValue()
		if arraySegment {
			cur.Set(seg, NewArray([]*Value{NewTable(sub)}))
		} else {
			cur.Set(seg, NewTable(sub))
		}
		return sub
	}
	switch existing.Kind {
	case Table:
		return existing.TableVal
	case Array:
		return existing.Elems[len(existing.Elems)-1].TableVal
	default:
		panic(fmt.Sprintf("value: %q is not a table", seg))
	}
}

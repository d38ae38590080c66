// Package value implements the Value Tree of spec.md §3/§4.4: the
// nested, insertion-ordered associative structure the Parser builds and
// the Builder mirrors when encoding. Unlike the design note in spec.md
// §9, which suggests modeling the cursor as a path of keys re-resolved
// on every write (for languages without safe interior aliasing), ZCONF
// keeps a direct pointer to the current *Table, the same way
// cuelang.org/go/encoding/toml.Decoder holds currentTable *ast.StructLit
// — Go's garbage-collected pointers make that aliasing safe, so the
// extra indirection the note warns about isn't needed here.
package value

import "time"

// Kind tags the variant a Value holds.
type Kind int

const (
	Null Kind = iota
	Bool
	Integer
	Float
	String
	Datetime
	Array
	Table
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Datetime:
		return "datetime"
	case Array:
		return "array"
	case Table:
		return "table"
	default:
		return "unknown"
	}
}

// Value is the tagged variant described in spec.md §3. Only the field
// matching Kind is meaningful.
type Value struct {
	Kind     Kind
	Bool     bool
	Int      int64
	Float    float64
	Str      string
	Time     time.Time
	HasZone  bool // whether Time carries explicit zone/offset information
	Elems    []*Value
	TableVal *TableValue
}

func NewNull() *Value                { return &Value{Kind: Null} }
func NewBool(b bool) *Value          { return &Value{Kind: Bool, Bool: b} }
func NewInteger(i int64) *Value      { return &Value{Kind: Integer, Int: i} }
func NewFloat(f float64) *Value      { return &Value{Kind: Float, Float: f} }
func NewString(s string) *Value      { return &Value{Kind: String, Str: s} }
func NewDatetime(t time.Time) *Value { return &Value{Kind: Datetime, Time: t, HasZone: true} }
func NewArray(elems []*Value) *Value { return &Value{Kind: Array, Elems: elems} }
func NewTable(t *TableValue) *Value  { return &Value{Kind: Table, TableVal: t} }

// ElemTag returns the shared tag of an Array's elements, used to
// enforce invariant I5 (homogeneous arrays). For a nested array element
// the tag is always reported as Array regardless of the inner element
// type, matching spec.md §3: "tag equality includes nested Array vs.
// scalars".
func ElemTag(v *Value) Kind {
	return v.Kind
}

// TableValue is an insertion-ordered string-to-Value mapping.
type TableValue struct {
	order []string
	elems map[string]*Value
}

// NewTableValue returns an empty table.
func NewTableValue() *TableValue {
	return &TableValue{elems: make(map[string]*Value)}
}

// Set binds key to v, appending key to the insertion order on first use
// and leaving the order unchanged on overwrite. Callers are expected to
// have already checked uniqueness via the Key Store; Set itself does not
// reject redefinition.
func (t *TableValue) Set(key string, v *Value) {
	if _, ok := t.elems[key]; !ok {
		t.order = append(t.order, key)
	}
	t.elems[key] = v
}

// Get returns the value bound to key, or nil if unbound.
func (t *TableValue) Get(key string) *Value {
	return t.elems[key]
}

// Keys returns the table's keys in insertion order.
func (t *TableValue) Keys() []string {
	return append([]string(nil), t.order...)
}

// Len reports the number of keys in the table.
func (t *TableValue) Len() int {
	return len(t.order)
}

// Package builder implements a fluent emitter: the inverse of package
// parser, sharing its Key Store and escape rules (package value) so
// that anything the Builder emits re-parses to the same value tree. It
// follows the Encoder-wraps-a-writer-of-text shape of
// cuelang.org/go/encoding/toml.Encoder, generalized from that encoder's
// cue.Value walk to ZCONF's explicit add_* call sequence.
package builder

import (
	"strconv"
	"strings"

	"github.com/localzet/ZConf/keystore"
	"github.com/localzet/ZConf/value"
	"github.com/localzet/ZConf/zconferrors"
)

// Option configures a Builder, mirroring parser.Option.
type Option func(*Builder)

// WithIndent sets the number of spaces used to indent array elements
// written one-per-line; the default is 0 (no indentation), which writes
// arrays on a single line. Inline tables are always written on a single
// line, whatever the indent.
func WithIndent(spaces int) Option {
	return func(b *Builder) { b.indent = spaces }
}

// WithStrictTOML disables the `null` literal extension, so AddValue
// rejects a value.Null.
func WithStrictTOML() Option {
	return func(b *Builder) { b.allowNull = false }
}

// Builder accumulates ZCONF source text through an ordered sequence of
// add_* calls, validating every key against a keystore.KeyStore exactly
// as the Parser does, so a Builder can never emit a document a Parser
// would reject.
type Builder struct {
	ks        *keystore.KeyStore
	out       strings.Builder
	indent    int
	allowNull bool

	// wroteAnything tracks whether a blank line is needed before the
	// next table/array-of-tables header: headers other than the first
	// are preceded by a blank line.
	wroteAnything bool
}

// New returns an empty Builder.
func New(opts ...Option) *Builder {
	b := &Builder{ks: keystore.New(), allowNull: true}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// AddComment appends a standalone comment line.
func (b *Builder) AddComment(text string) *Builder {
	b.out.WriteString("# ")
	b.out.WriteString(text)
	b.out.WriteString("\n")
	b.wroteAnything = true
	return b
}

// AddTable opens an explicit [a.b.c] header, validating it against the
// Key Store the same way parser.consumeTableHeader does. segments is the
// dotted name pre-split by the caller: the ZCONF name "data.bool" from
// spec.md §8 is passed as AddTable("data", "bool"), not
// AddTable("data.bool").
func (b *Builder) AddTable(segments ...string) error {
	if err := validateHeaderSegments(segments); err != nil {
		return err
	}
	if err := b.ks.AddTableKey(segments); err != nil {
		return zconferrors.NewDumpError("%s", err.Error())
	}
	b.writeHeaderBlankLine()
	b.out.WriteString("[")
	b.out.WriteString(joinHeader(segments))
	b.out.WriteString("]\n")
	b.wroteAnything = true
	return nil
}

// AddArrayOfTable opens an [[a.b.c]] header, appending a new element to
// (or creating) the named array of tables. segments is pre-split the
// same way as AddTable's.
func (b *Builder) AddArrayOfTable(segments ...string) error {
	if err := validateHeaderSegments(segments); err != nil {
		return err
	}
	if err := b.ks.AddArrayTableKey(segments); err != nil {
		return zconferrors.NewDumpError("%s", err.Error())
	}
	b.writeHeaderBlankLine()
	b.out.WriteString("[[")
	b.out.WriteString(joinHeader(segments))
	b.out.WriteString("]]\n")
	b.wroteAnything = true
	return nil
}

// validateHeaderSegments rejects a table/array-of-tables name, per
// spec.md §4.6, that is empty (zero segments) or has any segment that is
// empty after trimming or contains a character outside [A-Za-z0-9_-].
// Called before the Key Store ever sees segments, so a malformed or
// empty call can never reach keystore.walkInstantiated's
// segments[:len(segments)-1] slice.
func validateHeaderSegments(segments []string) error {
	if len(segments) == 0 {
		return zconferrors.NewDumpError("table name must have at least one segment")
	}
	for _, s := range segments {
		if strings.TrimSpace(s) == "" {
			return zconferrors.NewDumpError("table name segment %q is empty", s)
		}
		if !isBareKey(s) {
			return zconferrors.NewDumpError("table name segment %q is not a valid bare key", s)
		}
	}
	return nil
}

func (b *Builder) writeHeaderBlankLine() {
	if b.wroteAnything {
		b.out.WriteString("\n")
	}
}

// AddValue writes "key = value" under the current table scope,
// optionally followed by a trailing "# comment". v must be a scalar,
// array, or (via nested *value.Value with Kind Table) inline table;
// callers normally build v with the value package's constructors.
func (b *Builder) AddValue(key string, v *value.Value, comment string) error {
	if v.Kind == value.Null && !b.allowNull {
		return zconferrors.NewDumpError("null is not permitted in strict TOML mode")
	}
	encoded, err := b.encodeValue(v, 0)
	if err != nil {
		return err
	}
	if err := b.ks.AddKey(key); err != nil {
		return zconferrors.NewDumpError("%s", err.Error())
	}
	b.out.WriteString(quoteKeyIfNeeded(key))
	b.out.WriteString(" = ")
	b.out.WriteString(encoded)
	if comment != "" {
		b.out.WriteString(" # ")
		b.out.WriteString(comment)
	}
	b.out.WriteString("\n")
	b.wroteAnything = true
	return nil
}

// GetString returns the accumulated document text.
func (b *Builder) GetString() string {
	return b.out.String()
}

func (b *Builder) encodeValue(v *value.Value, depth int) (string, error) {
	switch v.Kind {
	case value.Null:
		if !b.allowNull {
			return "", zconferrors.NewDumpError("null is not permitted in strict TOML mode")
		}
		return "null", nil
	case value.Bool:
		return strconv.FormatBool(v.Bool), nil
	case value.Integer:
		return strconv.FormatInt(v.Int, 10), nil
	case value.Float:
		return encodeFloat(v.Float), nil
	case value.String:
		return encodeString(v.Str)
	case value.Datetime:
		return encodeDatetime(v), nil
	case value.Array:
		return b.encodeArray(v, depth)
	case value.Table:
		return b.encodeInlineTable(v, depth)
	default:
		return "", zconferrors.NewDumpError("unsupported value kind %s", v.Kind)
	}
}

func (b *Builder) encodeArray(v *value.Value, depth int) (string, error) {
	if len(v.Elems) == 0 {
		return "[]", nil
	}
	var sb strings.Builder
	sb.WriteString("[")
	pad, sep := b.layout(depth)
	tag := value.ElemTag(v.Elems[0])
	for i, elem := range v.Elems {
		if elem.Kind == value.Table {
			return "", zconferrors.NewDumpError("inline table cannot be an array element")
		}
		if elemTag := value.ElemTag(elem); elemTag != tag {
			return "", zconferrors.NewDumpError("mixed array element type %s, expected %s", elemTag, tag)
		}
		switch {
		case i > 0:
			sb.WriteString(",")
			sb.WriteString(sep)
			sb.WriteString(pad)
		case b.indent > 0:
			sb.WriteString(sep)
			sb.WriteString(pad)
		}
		encoded, err := b.encodeValue(elem, depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(encoded)
	}
	if b.indent > 0 {
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", b.indent*depth))
	}
	sb.WriteString("]")
	return sb.String(), nil
}

// encodeInlineTable renders a *value.Value of Kind Table as "{ k = v, ... }".
// The Builder's principal emission path is AddTable/AddArrayOfTable plus
// AddValue for leaves; this path exists so a caller can still bind an
// inline table value to a key programmatically. encodeArray rejects an
// inline table as an array element, since the Parser does not accept one.
func (b *Builder) encodeInlineTable(v *value.Value, depth int) (string, error) {
	keys := v.TableVal.Keys()
	if len(keys) == 0 {
		return "{}", nil
	}
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteKeyIfNeeded(k))
		sb.WriteString(" = ")
		encoded, err := b.encodeValue(v.TableVal.Get(k), depth+1)
		if err != nil {
			return "", err
		}
		sb.WriteString(encoded)
	}
	sb.WriteString(" }")
	return sb.String(), nil
}

// layout returns the per-element padding and separator used by
// encodeArray: one-line when indent is 0, one-element-per-line
// otherwise.
func (b *Builder) layout(depth int) (pad, sep string) {
	if b.indent == 0 {
		return "", " "
	}
	return strings.Repeat(" ", b.indent*(depth+1)), "\n"
}

// encodeString renders s per spec.md §4.6: a leading '@' selects a
// literal (apostrophe-quoted) string, verbatim after stripping the '@';
// otherwise s is normalized and emitted as a basic (quotation-mark)
// string. After normalization a remaining backslash the Builder cannot
// prove is a pre-existing \uXXXX/\UXXXXXXXX escape fails outright; the
// Builder does not silently repair it by switching quoting styles.
func encodeString(s string) (string, error) {
	if strings.HasPrefix(s, "@") {
		return encodeLiteralString(s[1:])
	}
	if value.HasUnescapedBackslash(s) {
		return "", zconferrors.NewDumpError("string %q cannot be safely encoded: unescaped backslash", s)
	}
	return `"` + value.EscapeBasicString(s) + `"`, nil
}

// encodeLiteralString renders s verbatim between apostrophes, the
// Builder-side counterpart of the Parser's literal-string form (spec.md
// §4.1/§4.5). It widens to a triple-apostrophe literal when s itself
// contains a newline or an apostrophe that would otherwise terminate a
// single-apostrophe literal early.
func encodeLiteralString(s string) (string, error) {
	if strings.Contains(s, "'''") {
		return "", zconferrors.NewDumpError("literal string %q cannot contain \"'''\"", s)
	}
	if strings.ContainsAny(s, "'\n") {
		return "'''" + s + "'''", nil
	}
	return "'" + s + "'", nil
}

func encodeFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func encodeDatetime(v *value.Value) string {
	if v.HasZone {
		return v.Time.Format("2006-01-02T15:04:05Z07:00")
	}
	return v.Time.Format("2006-01-02T15:04:05")
}

// quoteKeyIfNeeded wraps key in double quotes, escaping it, unless it
// is already a valid bare UNQUOTED_KEY lexeme.
func quoteKeyIfNeeded(key string) string {
	if key != "" && isBareKey(key) {
		return key
	}
	return `"` + value.EscapeBasicString(key) + `"`
}

func isBareKey(key string) bool {
	for _, r := range key {
		if !(r == '_' || r == '-' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

// joinHeader renders the dotted segments of a table header. Callers must
// run validateHeaderSegments first: every segment is already a bare key
// by the time joinHeader sees it, so no quoting is needed.
func joinHeader(segments []string) string {
	return strings.Join(segments, ".")
}

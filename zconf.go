// Package zconf is the public entry surface of the library: ParseString
// and ParseFile drive package lexer/stream/keystore/parser and convert
// any *zconferrors.SyntaxError into a *zconferrors.ParseError enriched
// with filename and a source snippet, matching spec.md §4.7's
// propagation policy and the Decoder/Encoder-at-the-boundary shape of
// cuelang.org/go/encoding/toml.
package zconf

import (
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/localzet/ZConf/builder"
	"github.com/localzet/ZConf/parser"
	"github.com/localzet/ZConf/value"
	"github.com/localzet/ZConf/zconferrors"
)

// Document is the as_object view of a parsed table: a thin, read-only
// wrapper around *value.TableValue offering typed lookups instead of
// requiring callers to switch on value.Kind themselves.
type Document struct {
	table *value.TableValue
}

func newDocument(t *value.TableValue) *Document {
	return &Document{table: t}
}

// Table returns the underlying value tree, for callers that need the
// raw representation (e.g. to feed into a Builder).
func (d *Document) Table() *value.TableValue {
	return d.table
}

// Keys returns the document's top-level keys in declaration order.
func (d *Document) Keys() []string {
	return d.table.Keys()
}

// Get returns the raw value bound to key, if any.
func (d *Document) Get(key string) (*value.Value, bool) {
	v := d.table.Get(key)
	return v, v != nil
}

// GetTable returns the sub-document bound to key, if key names a table.
func (d *Document) GetTable(key string) (*Document, bool) {
	v := d.table.Get(key)
	if v == nil || v.Kind != value.Table {
		return nil, false
	}
	return newDocument(v.TableVal), true
}

// GetArray returns the array elements bound to key, if key names an array.
func (d *Document) GetArray(key string) ([]*value.Value, bool) {
	v := d.table.Get(key)
	if v == nil || v.Kind != value.Array {
		return nil, false
	}
	return v.Elems, true
}

// GetString returns the string bound to key, if key names a string.
func (d *Document) GetString(key string) (string, bool) {
	v := d.table.Get(key)
	if v == nil || v.Kind != value.String {
		return "", false
	}
	return v.Str, true
}

// GetInt returns the integer bound to key, if key names an integer.
func (d *Document) GetInt(key string) (int64, bool) {
	v := d.table.Get(key)
	if v == nil || v.Kind != value.Integer {
		return 0, false
	}
	return v.Int, true
}

// GetBool returns the boolean bound to key, if key names a boolean.
func (d *Document) GetBool(key string) (bool, bool) {
	v := d.table.Get(key)
	if v == nil || v.Kind != value.Bool {
		return false, false
	}
	return v.Bool, true
}

// ParseString parses ZCONF source text already in memory. When
// asObject is true the result is a *Document; otherwise it is the raw
// *value.TableValue root of the value tree. Empty input is not an
// error: it parses to an empty table (spec.md §8), not a nil/sentinel
// result, so callers can always range over Keys()/Get() without a nil
// check.
func ParseString(src string, asObject bool, opts ...parser.Option) (interface{}, error) {
	if !utf8.ValidString(src) {
		return nil, &zconferrors.ParseError{Err: fmt.Errorf("input is not valid UTF-8")}
	}
	table, file, err := parser.Parse(src, opts...)
	if err != nil {
		return nil, zconferrors.Wrap(err, "", file)
	}
	if asObject {
		return newDocument(table), nil
	}
	return table, nil
}

// ParseFile reads and parses the ZCONF document at path, distinguishing
// a missing file from one that exists but could not be read (spec.md
// §4.7), and otherwise behaving like ParseString.
func ParseFile(path string, asObject bool, opts ...parser.Option) (interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &zconferrors.FileError{Path: path, Message: "file not found", Err: err}
		}
		return nil, &zconferrors.FileError{Path: path, Message: "could not read file", Err: err}
	}
	if !utf8.ValidString(string(data)) {
		return nil, &zconferrors.ParseError{Filename: path, Err: fmt.Errorf("input is not valid UTF-8")}
	}
	table, file, err := parser.Parse(string(data), opts...)
	if err != nil {
		return nil, zconferrors.Wrap(err, path, file)
	}
	if asObject {
		return newDocument(table), nil
	}
	return table, nil
}

// NewBuilder returns an empty builder.Builder, re-exported here so
// callers need only import package zconf for the common case.
func NewBuilder(opts ...builder.Option) *builder.Builder {
	return builder.New(opts...)
}

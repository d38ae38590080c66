// Package token defines the lexical tokens of the ZCONF configuration
// language and a simple line-tracking source File, mirroring the way
// cuelang.org/go/cue/token separates token kinds from position bookkeeping.
package token

import "fmt"

// Kind identifies the lexical class of a Token. The set is closed: the
// lexer never emits a Kind outside this list.
type Kind int

const (
	ILLEGAL Kind = iota
	EOS
	NEWLINE

	EQUAL
	NULL
	BOOLEAN
	DATE_TIME
	FLOAT
	INTEGER

	TRIPLE_QUOTATION_MARK
	QUOTATION_MARK
	TRIPLE_APOSTROPHE
	APOSTROPHE

	HASH
	SPACE

	LEFT_SQUARE_BRACKET
	RIGHT_SQUARE_BRACKET
	LEFT_CURLY_BRACE
	RIGHT_CURLY_BRACE
	COMMA
	DOT

	UNQUOTED_KEY

	ESCAPED_CHARACTER
	ESCAPE

	BASIC_UNESCAPED
)

var kindNames = map[Kind]string{
	ILLEGAL:                "ILLEGAL",
	EOS:                    "EOS",
	NEWLINE:                "NEWLINE",
	EQUAL:                  "EQUAL",
	NULL:                   "NULL",
	BOOLEAN:                "BOOLEAN",
	DATE_TIME:              "DATE_TIME",
	FLOAT:                  "FLOAT",
	INTEGER:                "INTEGER",
	TRIPLE_QUOTATION_MARK:  "3_QUOTATION_MARK",
	QUOTATION_MARK:         "QUOTATION_MARK",
	TRIPLE_APOSTROPHE:      "3_APOSTROPHE",
	APOSTROPHE:             "APOSTROPHE",
	HASH:                   "HASH",
	SPACE:                  "SPACE",
	LEFT_SQUARE_BRACKET:    "LEFT_SQUARE_BRACKET",
	RIGHT_SQUARE_BRACKET:   "RIGHT_SQUARE_BRACKET",
	LEFT_CURLY_BRACE:       "LEFT_CURLY_BRACE",
	RIGHT_CURLY_BRACE:      "RIGHT_CURLY_BRACE",
	COMMA:                  "COMMA",
	DOT:                    "DOT",
	UNQUOTED_KEY:           "UNQUOTED_KEY",
	ESCAPED_CHARACTER:      "ESCAPED_CHARACTER",
	ESCAPE:                 "ESCAPE",
	BASIC_UNESCAPED:        "BASIC_UNESCAPED",
}

// String returns the human-readable name of k, used in syntax error
// messages that name "expected X, got Y".
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Token is an immutable (kind, lexeme, line) triple in source order.
type Token struct {
	Kind   Kind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Lexeme, t.Line)
}

// File is a minimal line-addressed source handle. Unlike
// cuelang.org/go/cue/token.File, which maps arbitrary byte offsets to
// line/column for an expression-oriented scanner, ZCONF's lexer already
// works line-by-line (spec: §4.1), so File only needs to remember the
// name attached to a parse and hand back whole source lines for error
// snippets.
type File struct {
	Name  string
	lines []string
}

// NewFile splits src into lines (already newline-normalized by the
// caller) and records name for error reporting.
func NewFile(name string, lines []string) *File {
	return &File{Name: name, lines: lines}
}

// Line returns the 1-based source line n, or "" if out of range.
func (f *File) Line(n int) string {
	if f == nil || n < 1 || n > len(f.lines) {
		return ""
	}
	return f.lines[n-1]
}

// LineCount reports how many lines the file has.
func (f *File) LineCount() int {
	if f == nil {
		return 0
	}
	return len(f.lines)
}

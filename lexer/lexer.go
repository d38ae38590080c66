// Package lexer implements a line-based tokenizer for ZCONF source text,
// mirroring the shape of cuelang.org/go/cue/scanner.Scanner: an explicit
// per-line cursor, an ordered table of terminal matchers tried in priority
// order (spec.md §4.1), and a *zconferrors.SyntaxError returned for the
// first position no terminal matches, instead of a panic.
package lexer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/localzet/ZConf/token"
	"github.com/localzet/ZConf/zconferrors"
)

// Mode is a set of bit flags controlling lexer behavior, following the
// cue/scanner.Mode idiom of a small bitmask passed to Init/Lex instead of
// a struct of booleans.
type Mode uint

const (
	// EmitNewlines causes a NEWLINE token to be inserted between source
	// lines (spec.md §4.1). The Parser always wants this; tests that only
	// care about per-line tokenization may omit it.
	EmitNewlines Mode = 1 << iota

	// AllowNull enables the `null` literal extension (spec.md §9 Open
	// Question). On by default everywhere ZCONF constructs a Lexer;
	// WithStrictTOML in the parser/builder packages clears it.
	AllowNull
)

// DefaultMode is the mode used by the public entry points.
const DefaultMode = EmitNewlines | AllowNull

// Normalize applies the source-encoding rules of spec.md §6: CRLF and CR
// are folded to LF, and tabs become single spaces.
func Normalize(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	src = strings.ReplaceAll(src, "\t", " ")
	return src
}

// Lex tokenizes already-normalized source text and returns the full token
// sequence ending in an EOS token, or a *zconferrors.SyntaxError if no
// terminal matches at some position.
func Lex(src string, mode Mode) ([]token.Token, error) {
	lines := strings.Split(src, "\n")
	// strings.Split on a trailing "\n" produces one trailing empty
	// string; an empty normalized input produces a single empty line.
	var tokens []token.Token
	for i, line := range lines {
		lineNo := i + 1
		isLastLine := i == len(lines)-1
		pos := 0
		for pos < len(line) {
			kind, length, err := matchAt(line, pos)
			if err != nil {
				return nil, zconferrors.NewSyntaxError(lineNo, "%s", err.Error())
			}
			if length == 0 {
				r, _ := utf8.DecodeRuneInString(line[pos:])
				return nil, zconferrors.NewSyntaxError(lineNo, "no terminal matches character %q", r)
			}
			lexeme := line[pos : pos+length]
			if kind == token.NULL && mode&AllowNull == 0 {
				kind = token.UNQUOTED_KEY
			}
			tokens = append(tokens, token.Token{Kind: kind, Lexeme: lexeme, Line: lineNo})
			pos += length
		}
		if !isLastLine {
			if mode&EmitNewlines != 0 {
				tokens = append(tokens, token.Token{Kind: token.NEWLINE, Lexeme: "\n", Line: lineNo})
			}
		}
	}
	eosLine := len(lines)
	tokens = append(tokens, token.Token{Kind: token.EOS, Lexeme: "", Line: eosLine})
	return tokens, nil
}

// matcher tries to match a terminal at pos in line, returning the kind
// and match length, or length 0 if it does not apply there.
type matcher struct {
	kind Kind
	try  func(line string, pos int) int
}

// Kind is an alias kept local to avoid stuttering lexer.token.Kind at
// every call site below.
type Kind = token.Kind

// patterns is evaluated strictly in order; the first matcher that
// reports a nonzero length wins (spec.md §4.1: "order is significant,
// earlier patterns win ties").
var patterns = []matcher{
	{token.EQUAL, literalRune('=')},
	{token.NULL, keyword("null")},
	{token.BOOLEAN, keywordAny("true", "false")},
	{token.DATE_TIME, regexMatcher(reDateTime)},
	{token.FLOAT, regexMatcher(reFloat)},
	{token.INTEGER, regexMatcher(reInteger)},
	{token.TRIPLE_QUOTATION_MARK, literalStr(`"""`)},
	{token.QUOTATION_MARK, literalRune('"')},
	{token.TRIPLE_APOSTROPHE, literalStr(`'''`)},
	{token.APOSTROPHE, literalRune('\'')},
	{token.HASH, literalRune('#')},
	{token.SPACE, regexMatcher(reSpace)},
	{token.LEFT_SQUARE_BRACKET, literalRune('[')},
	{token.RIGHT_SQUARE_BRACKET, literalRune(']')},
	{token.LEFT_CURLY_BRACE, literalRune('{')},
	{token.RIGHT_CURLY_BRACE, literalRune('}')},
	{token.COMMA, literalRune(',')},
	{token.DOT, literalRune('.')},
	{token.UNQUOTED_KEY, regexMatcher(reUnquotedKey)},
	{token.ESCAPED_CHARACTER, regexMatcher(reEscapedChar)},
	{token.ESCAPE, literalRune('\\')},
	{token.BASIC_UNESCAPED, regexMatcher(reBasicUnescaped)},
}

var (
	reDateTime = regexp.MustCompile(
		`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}:\d{2}(\.\d{1,9})?(Z|[+-]\d{2}:\d{2})?)?`)
	reFloat = regexp.MustCompile(
		`^[+-]?\d[\d_]*((\.\d[\d_]*)([eE][+-]?\d[\d_]*)?|[eE][+-]?\d[\d_]*)`)
	reInteger        = regexp.MustCompile(`^[+-]?\d[\d_]*`)
	reSpace          = regexp.MustCompile(`^ +`)
	reUnquotedKey    = regexp.MustCompile(`^[A-Za-z0-9_-]+`)
	reEscapedChar    = regexp.MustCompile(`^\\([btnfr"\\]|u[0-9A-Fa-f]{4}|U[0-9A-Fa-f]{8})`)
	reBasicUnescaped = regexp.MustCompile(`^[^"'\\\x00-\x1f\x7f]+`)
)

func matchAt(line string, pos int) (token.Kind, int, error) {
	for _, m := range patterns {
		if n := m.try(line, pos); n > 0 {
			return m.kind, n, nil
		}
	}
	return token.ILLEGAL, 0, nil
}

func literalRune(r rune) func(string, int) int {
	return func(line string, pos int) int {
		c, w := utf8.DecodeRuneInString(line[pos:])
		if c == r {
			return w
		}
		return 0
	}
}

func literalStr(s string) func(string, int) int {
	return func(line string, pos int) int {
		if strings.HasPrefix(line[pos:], s) {
			return len(s)
		}
		return 0
	}
}

// keyword matches word exactly, requiring that it not be immediately
// followed by another identifier character (so "nullable" lexes as a
// single UNQUOTED_KEY rather than NULL + "able").
func keyword(word string) func(string, int) int {
	return func(line string, pos int) int {
		rest := line[pos:]
		if !strings.HasPrefix(rest, word) {
			return 0
		}
		if n := len(rest); n > len(word) {
			r, _ := utf8.DecodeRuneInString(rest[len(word):])
			if isIdentRune(r) {
				return 0
			}
		}
		return len(word)
	}
}

func keywordAny(words ...string) func(string, int) int {
	return func(line string, pos int) int {
		for _, w := range words {
			if n := keyword(w)(line, pos); n > 0 {
				return n
			}
		}
		return 0
	}
}

func regexMatcher(re *regexp.Regexp) func(string, int) int {
	return func(line string, pos int) int {
		loc := re.FindStringIndex(line[pos:])
		if loc == nil || loc[0] != 0 {
			return 0
		}
		return loc[1]
	}
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '-' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

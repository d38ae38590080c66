// Package parser implements a recursive-descent driver: it consumes the
// token stream produced by package lexer and mutates a value.Tree and a
// keystore.KeyStore in lockstep, the same top-level dispatch-loop shape
// as cuelang.org/go/encoding/toml.Decoder.nextRootNode and
// cuelang.org/go/cue/parser.parser, generalized to ZCONF's grammar.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/localzet/ZConf/keystore"
	"github.com/localzet/ZConf/lexer"
	"github.com/localzet/ZConf/stream"
	"github.com/localzet/ZConf/token"
	"github.com/localzet/ZConf/value"
	"github.com/localzet/ZConf/zconferrors"
)

// Option configures a parse, following the cue/scanner.Mode bitmask
// idiom via functional options instead of exported struct fields.
type Option func(*options)

type options struct {
	mode lexer.Mode
}

// WithStrictTOML disables the `null` literal extension, rejecting the
// bare word null as a value.
func WithStrictTOML() Option {
	return func(o *options) { o.mode &^= lexer.AllowNull }
}

// Parse tokenizes and parses already-UTF-8-validated, not yet
// newline/tab-normalized source text, returning the root table of the
// resulting value tree and the token.File used for line lookups (so the
// entry surface can build a source snippet for errors).
func Parse(src string, opts ...Option) (*value.TableValue, *token.File, error) {
	o := &options{mode: lexer.DefaultMode}
	for _, opt := range opts {
		opt(o)
	}
	normalized := lexer.Normalize(src)
	file := token.NewFile("", strings.Split(normalized, "\n"))
	tokens, err := lexer.Lex(normalized, o.mode)
	if err != nil {
		return nil, file, err
	}
	p := &parser{
		ts:   stream.New(tokens),
		ks:   keystore.New(),
		tree: value.NewTree(),
	}
	if err := p.parseDocument(); err != nil {
		return nil, file, err
	}
	return p.tree.Root(), file, nil
}

type parser struct {
	ts   *stream.TokenStream
	ks   *keystore.KeyStore
	tree *value.Tree
}

func (p *parser) parseDocument() error {
	for !p.ts.Exhausted() {
		switch {
		case p.ts.Matches(token.HASH):
			p.consumeComment()
		case p.ts.MatchesAny(token.QUOTATION_MARK, token.UNQUOTED_KEY, token.INTEGER):
			if err := p.consumeKeyValue(false); err != nil {
				return err
			}
		case p.ts.MatchesSequence(token.LEFT_SQUARE_BRACKET, token.LEFT_SQUARE_BRACKET):
			if err := p.consumeArrayOfTablesHeader(); err != nil {
				return err
			}
		case p.ts.Matches(token.LEFT_SQUARE_BRACKET):
			if err := p.consumeTableHeader(); err != nil {
				return err
			}
		case p.ts.MatchesAny(token.SPACE, token.NEWLINE, token.EOS):
			p.ts.Advance()
		default:
			t := p.ts.Peek()
			return zconferrors.NewSyntaxError(t.Line, "unexpected %s %q", t.Kind, t.Lexeme)
		}
	}
	return nil
}

func (p *parser) consumeComment() {
	p.ts.Advance() // '#'
	for !p.ts.MatchesAny(token.NEWLINE, token.EOS) {
		p.ts.Advance()
	}
}

func (p *parser) skipSpace() {
	for p.ts.Matches(token.SPACE) {
		p.ts.Advance()
	}
}

// consumeTrailer consumes optional trailing whitespace and a comment at
// the end of a table header or top-level assignment, then requires the
// expression to end at a NEWLINE or EOS (spec.md §6 grammar: "expression
// (NEWLINE | EOS)"; §4.5: "a trailing end-of-line or EOS ... is
// required"), consuming that terminator too.
func (p *parser) consumeTrailer() error {
	p.skipSpace()
	if p.ts.Matches(token.HASH) {
		p.consumeComment()
	}
	if !p.ts.MatchesAny(token.NEWLINE, token.EOS) {
		t := p.ts.Peek()
		return zconferrors.NewSyntaxError(t.Line, "expected end of line, got %s %q", t.Kind, t.Lexeme)
	}
	p.ts.Advance()
	return nil
}

func (p *parser) consumeKeyValue(inline bool) error {
	key, err := p.parseKeyName()
	if err != nil {
		return err
	}
	p.skipSpace()
	if _, err := p.ts.Expect(token.EQUAL); err != nil {
		return err
	}
	p.skipSpace()

	switch {
	case p.ts.Matches(token.LEFT_CURLY_BRACE):
		if err := p.ks.AddInlineTableKey(key); err != nil {
			return p.wrapAt(err)
		}
		p.tree.BeginInline(key)
		saved := p.ks.BeginInline(key)
		bodyErr := p.parseInlineTableBody()
		p.tree.EndInline()
		p.ks.EndInline(saved)
		if bodyErr != nil {
			return bodyErr
		}
	case p.ts.Matches(token.LEFT_SQUARE_BRACKET):
		arr, err := p.parseArray()
		if err != nil {
			return err
		}
		if err := p.ks.AddKey(key); err != nil {
			return p.wrapAt(err)
		}
		p.tree.Put(key, arr)
	default:
		v, err := p.parseSimpleValue()
		if err != nil {
			return err
		}
		if err := p.ks.AddKey(key); err != nil {
			return p.wrapAt(err)
		}
		p.tree.Put(key, v)
	}

	if !inline {
		return p.consumeTrailer()
	}
	return nil
}

// wrapAt attaches the current token's line to an error raised by the
// Key Store, which has no notion of position.
func (p *parser) wrapAt(err error) error {
	return zconferrors.NewSyntaxError(p.ts.Peek().Line, "%s", err.Error())
}

func (p *parser) parseKeyName() (string, error) {
	t := p.ts.Peek()
	switch t.Kind {
	case token.UNQUOTED_KEY, token.INTEGER:
		p.ts.Advance()
		return t.Lexeme, nil
	case token.QUOTATION_MARK:
		v, err := p.parseBasicString(false)
		if err != nil {
			return "", err
		}
		return v.Str, nil
	default:
		return "", zconferrors.NewSyntaxError(t.Line, "expected a key, got %s %q", t.Kind, t.Lexeme)
	}
}

// parseKeySegments parses a dotted sequence of keys as used by table
// and array-of-tables headers: key ('.' key)*.
func (p *parser) parseKeySegments() ([]string, error) {
	var segs []string
	for {
		seg, err := p.parseKeyName()
		if err != nil {
			return nil, err
		}
		segs = append(segs, seg)
		if p.ts.Matches(token.DOT) {
			p.ts.Advance()
			continue
		}
		break
	}
	return segs, nil
}

func (p *parser) consumeTableHeader() error {
	if _, err := p.ts.Expect(token.LEFT_SQUARE_BRACKET); err != nil {
		return err
	}
	line := p.ts.Peek().Line
	segments, err := p.parseKeySegments()
	if err != nil {
		return err
	}
	if _, err := p.ts.Expect(token.RIGHT_SQUARE_BRACKET); err != nil {
		return err
	}
	if err := p.ks.AddTableKey(segments); err != nil {
		return zconferrors.NewSyntaxError(line, "%s", err.Error())
	}
	p.tree.EnterTable(segments, p.arraySegmentChecker(segments))
	return p.consumeTrailer()
}

func (p *parser) consumeArrayOfTablesHeader() error {
	if _, err := p.ts.Expect(token.LEFT_SQUARE_BRACKET); err != nil {
		return err
	}
	if _, err := p.ts.Expect(token.LEFT_SQUARE_BRACKET); err != nil {
		return err
	}
	line := p.ts.Peek().Line
	segments, err := p.parseKeySegments()
	if err != nil {
		return err
	}
	if _, err := p.ts.Expect(token.RIGHT_SQUARE_BRACKET); err != nil {
		return err
	}
	if _, err := p.ts.Expect(token.RIGHT_SQUARE_BRACKET); err != nil {
		return err
	}
	if err := p.ks.AddArrayTableKey(segments); err != nil {
		return zconferrors.NewSyntaxError(line, "%s", err.Error())
	}
	p.tree.EnterArrayTable(segments, p.arraySegmentChecker(segments))
	return p.consumeTrailer()
}

// arraySegmentChecker builds the isArray callback value.Tree needs to
// follow array-of-tables indirection while walking a dotted header.
func (p *parser) arraySegmentChecker(segments []string) func(prefixLen int) bool {
	return func(prefixLen int) bool {
		prefix := strings.Join(segments[:prefixLen], ".")
		return p.ks.IsRegisteredAsArrayTable(prefix)
	}
}

func (p *parser) parseInlineTableBody() error {
	if _, err := p.ts.Expect(token.LEFT_CURLY_BRACE); err != nil {
		return err
	}
	p.skipSpace()
	if !p.ts.Matches(token.RIGHT_CURLY_BRACE) {
		for {
			if err := p.consumeKeyValue(true); err != nil {
				return err
			}
			p.skipSpace()
			if p.ts.Matches(token.COMMA) {
				p.ts.Advance()
				p.skipSpace()
				continue
			}
			break
		}
	}
	p.skipSpace()
	if _, err := p.ts.Expect(token.RIGHT_CURLY_BRACE); err != nil {
		return err
	}
	return nil
}

func (p *parser) skipArrayFiller() {
	for {
		switch {
		case p.ts.MatchesAny(token.SPACE, token.NEWLINE):
			p.ts.Advance()
		case p.ts.Matches(token.HASH):
			p.consumeComment()
		default:
			return
		}
	}
}

func (p *parser) parseArray() (*value.Value, error) {
	if _, err := p.ts.Expect(token.LEFT_SQUARE_BRACKET); err != nil {
		return nil, err
	}
	var elems []*value.Value
	tagSet := false
	var tag value.Kind
	p.skipArrayFiller()
	for !p.ts.Matches(token.RIGHT_SQUARE_BRACKET) {
		var elem *value.Value
		var err error
		if p.ts.Matches(token.LEFT_SQUARE_BRACKET) {
			elem, err = p.parseArray()
		} else {
			elem, err = p.parseSimpleValue()
		}
		if err != nil {
			return nil, err
		}
		elemTag := value.ElemTag(elem)
		if !tagSet {
			tag, tagSet = elemTag, true
		} else if elemTag != tag {
			t := p.ts.Peek()
			return nil, zconferrors.NewSyntaxError(t.Line, "mixed array element type %s, expected %s", elemTag, tag)
		}
		elems = append(elems, elem)
		p.skipArrayFiller()
		if p.ts.Matches(token.COMMA) {
			p.ts.Advance()
			p.skipArrayFiller()
			continue
		}
		break
	}
	if _, err := p.ts.Expect(token.RIGHT_SQUARE_BRACKET); err != nil {
		return nil, err
	}
	return value.NewArray(elems), nil
}

func (p *parser) parseSimpleValue() (*value.Value, error) {
	t := p.ts.Peek()
	switch t.Kind {
	case token.NULL:
		p.ts.Advance()
		return value.NewNull(), nil
	case token.BOOLEAN:
		p.ts.Advance()
		return value.NewBool(t.Lexeme == "true"), nil
	case token.INTEGER:
		p.ts.Advance()
		n, err := parseInteger(t.Lexeme)
		if err != nil {
			return nil, zconferrors.NewSyntaxError(t.Line, "%s", err.Error())
		}
		return value.NewInteger(n), nil
	case token.FLOAT:
		p.ts.Advance()
		f, err := parseFloat(t.Lexeme)
		if err != nil {
			return nil, zconferrors.NewSyntaxError(t.Line, "%s", err.Error())
		}
		return value.NewFloat(f), nil
	case token.QUOTATION_MARK:
		return p.parseBasicString(false)
	case token.TRIPLE_QUOTATION_MARK:
		return p.parseBasicString(true)
	case token.APOSTROPHE:
		return p.parseLiteralString(false)
	case token.TRIPLE_APOSTROPHE:
		return p.parseLiteralString(true)
	case token.DATE_TIME:
		p.ts.Advance()
		dt, err := parseDatetime(t.Lexeme)
		if err != nil {
			return nil, zconferrors.NewSyntaxError(t.Line, "%s", err.Error())
		}
		return value.NewDatetime(dt), nil
	default:
		return nil, zconferrors.NewSyntaxError(t.Line, "expected a value, got %s %q", t.Kind, t.Lexeme)
	}
}

func (p *parser) parseBasicString(multiline bool) (*value.Value, error) {
	openKind := token.QUOTATION_MARK
	if multiline {
		openKind = token.TRIPLE_QUOTATION_MARK
	}
	if _, err := p.ts.Expect(openKind); err != nil {
		return nil, err
	}
	if multiline && p.ts.Matches(token.NEWLINE) {
		p.ts.Advance()
	}
	var sb strings.Builder
	for {
		if p.ts.Matches(openKind) {
			p.ts.Advance()
			break
		}
		t := p.ts.Peek()
		switch t.Kind {
		case token.ESCAPE:
			if !multiline {
				return nil, zconferrors.NewSyntaxError(t.Line, "invalid escape in basic string")
			}
			p.ts.Advance()
			for p.ts.MatchesAny(token.ESCAPE, token.SPACE, token.NEWLINE) {
				p.ts.Advance()
			}
		case token.ESCAPED_CHARACTER:
			p.ts.Advance()
			decoded, err := value.DecodeEscape(t.Lexeme)
			if err != nil {
				return nil, zconferrors.NewSyntaxError(t.Line, "%s", err.Error())
			}
			sb.WriteString(decoded)
		case token.NEWLINE:
			if !multiline {
				return nil, zconferrors.NewSyntaxError(t.Line, "string literal not terminated")
			}
			p.ts.Advance()
			sb.WriteString("\n")
		case token.EOS:
			return nil, zconferrors.NewSyntaxError(t.Line, "string literal not terminated")
		default:
			p.ts.Advance()
			sb.WriteString(t.Lexeme)
		}
	}
	return value.NewString(sb.String()), nil
}

func (p *parser) parseLiteralString(multiline bool) (*value.Value, error) {
	openKind := token.APOSTROPHE
	if multiline {
		openKind = token.TRIPLE_APOSTROPHE
	}
	if _, err := p.ts.Expect(openKind); err != nil {
		return nil, err
	}
	if multiline && p.ts.Matches(token.NEWLINE) {
		p.ts.Advance()
	}
	var sb strings.Builder
	for {
		if p.ts.Matches(openKind) {
			p.ts.Advance()
			break
		}
		t := p.ts.Peek()
		if t.Kind == token.EOS {
			return nil, zconferrors.NewSyntaxError(t.Line, "literal string not terminated")
		}
		if t.Kind == token.NEWLINE && !multiline {
			return nil, zconferrors.NewSyntaxError(t.Line, "literal string not terminated")
		}
		p.ts.Advance()
		if t.Kind == token.NEWLINE {
			sb.WriteString("\n")
		} else {
			sb.WriteString(t.Lexeme)
		}
	}
	return value.NewString(sb.String()), nil
}

// parseInteger validates and decodes an INTEGER lexeme: underscores
// only between digits, no leading zeroes except the literal "0".
func parseInteger(lexeme string) (int64, error) {
	digits, _, err := validateNumberLexeme(lexeme, false)
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}

// parseFloat validates and decodes a FLOAT lexeme, applying the same
// underscore rule as parseInteger to each of its integer/fractional/
// exponent parts.
func parseFloat(lexeme string) (float64, error) {
	_, cleaned, err := validateNumberLexeme(lexeme, true)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	return f, nil
}

// validateNumberLexeme checks the underscore and leading-zero rules
// shared by integers and floats, returning the digit run with its sign
// (no underscores) and, for floats, the full cleaned lexeme.
func validateNumberLexeme(lexeme string, isFloat bool) (digitsOnly string, cleaned string, err error) {
	sign := ""
	body := lexeme
	if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
		sign, body = body[:1], body[1:]
	}

	// Split into integer/fraction/exponent parts without assuming a
	// particular order of validation vs. stripping, so that "1_.0",
	// "1._0", "1e_1", and "1_e1" are all rejected before underscores
	// are removed.
	intPart, fracPart, expPart := splitNumber(body)

	for _, part := range []string{intPart, fracPart, expPart} {
		if err := checkUnderscoreRun(part); err != nil {
			return "", "", err
		}
	}
	if fracPart != "" && (strings.HasSuffix(intPart, "_") || strings.HasPrefix(fracPart, "_")) {
		return "", "", fmt.Errorf("illegal '_' adjacent to '.'")
	}

	if len(intPart) > 1 && intPart[0] == '0' {
		return "", "", fmt.Errorf("leading zero in number %q", lexeme)
	}

	digitsOnly = sign + strings.ReplaceAll(intPart, "_", "")
	if !isFloat {
		return digitsOnly, "", nil
	}

	var cleanedBuilder strings.Builder
	cleanedBuilder.WriteString(sign)
	cleanedBuilder.WriteString(strings.ReplaceAll(intPart, "_", ""))
	if fracPart != "" {
		cleanedBuilder.WriteByte('.')
		cleanedBuilder.WriteString(strings.ReplaceAll(fracPart, "_", ""))
	}
	if expPart != "" {
		cleanedBuilder.WriteString(strings.ReplaceAll(expPart, "_", ""))
	}
	return digitsOnly, cleanedBuilder.String(), nil
}

// splitNumber splits the unsigned body of a number lexeme into its
// integer digit run, fractional digit run (without the '.'), and
// exponent text (including the e/E marker and optional sign), any of
// which may be empty.
func splitNumber(body string) (intPart, fracPart, expPart string) {
	rest := body
	if i := strings.IndexAny(rest, "eE"); i >= 0 && !strings.Contains(rest[:i], ".") {
		// exponent with no fraction, e.g. "1e10"
		intPart, expPart = rest[:i], rest[i:]
		return
	}
	if i := strings.Index(rest, "."); i >= 0 {
		intPart = rest[:i]
		rest = rest[i+1:]
		if j := strings.IndexAny(rest, "eE"); j >= 0 {
			fracPart, expPart = rest[:j], rest[j:]
		} else {
			fracPart = rest
		}
		return
	}
	intPart = rest
	return
}

// checkUnderscoreRun rejects a leading/trailing underscore or a marker
// character (e/E) adjacent to one, within a single digit run. part may
// include a leading e/E exponent marker and sign, which are skipped.
func checkUnderscoreRun(part string) error {
	if part == "" {
		return nil
	}
	digits := part
	if digits[0] == 'e' || digits[0] == 'E' {
		digits = digits[1:]
		if len(digits) > 0 && digits[0] == '_' {
			return fmt.Errorf("illegal '_' adjacent to exponent marker")
		}
		if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
			digits = digits[1:]
		}
	}
	if len(digits) == 0 {
		return nil
	}
	if digits[0] == '_' || digits[len(digits)-1] == '_' {
		return fmt.Errorf("illegal '_' in number")
	}
	if strings.Contains(digits, "__") {
		return fmt.Errorf("illegal '_' in number")
	}
	return nil
}

var datetimeLayouts = []string{
	"2006-01-02T15:04:05.999999Z07:00",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDatetime(lexeme string) (time.Time, error) {
	var firstErr error
	for _, layout := range datetimeLayouts {
		t, err := time.Parse(layout, lexeme)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

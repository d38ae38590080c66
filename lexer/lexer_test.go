package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/localzet/ZConf/token"
)

func kinds(tokens []token.Token) []token.Kind {
	out := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		out[i] = t.Kind
	}
	return out
}

func TestLexSimpleAssignment(t *testing.T) {
	tokens, err := Lex(`name = "value"`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{
		token.UNQUOTED_KEY, token.SPACE, token.EQUAL, token.SPACE,
		token.QUOTATION_MARK, token.UNQUOTED_KEY, token.QUOTATION_MARK,
		token.EOS,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexNullKeyword(t *testing.T) {
	tokens, err := Lex(`x = null`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{token.UNQUOTED_KEY, token.SPACE, token.EQUAL, token.SPACE, token.NULL, token.EOS}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexNullKeywordDisabled(t *testing.T) {
	tokens, err := Lex(`x = null`, DefaultMode&^AllowNull)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{token.UNQUOTED_KEY, token.SPACE, token.EQUAL, token.SPACE, token.UNQUOTED_KEY, token.EOS}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexNullPrefixIsIdentifier(t *testing.T) {
	tokens, err := Lex(`nullable = true`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Kind != token.UNQUOTED_KEY || tokens[0].Lexeme != "nullable" {
		t.Errorf("first token = %v, want UNQUOTED_KEY %q", tokens[0], "nullable")
	}
}

func TestLexNewlinesBetweenLines(t *testing.T) {
	tokens, err := Lex("a = 1\nb = 2", DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var newlineCount int
	for _, tok := range tokens {
		if tok.Kind == token.NEWLINE {
			newlineCount++
		}
	}
	if newlineCount != 1 {
		t.Errorf("newline count = %d, want 1", newlineCount)
	}
}

func TestLexIntegerAndFloat(t *testing.T) {
	tokens, err := Lex(`1_000 3.14 1e10`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var got []string
	for _, tok := range tokens {
		if tok.Kind == token.INTEGER || tok.Kind == token.FLOAT {
			got = append(got, tok.Lexeme)
		}
	}
	want := []string{"1_000", "3.14", "1e10"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("number lexemes mismatch (-want +got):\n%s", diff)
	}
}

func TestLexDateTime(t *testing.T) {
	tokens, err := Lex(`1979-05-27T07:32:00Z`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if tokens[0].Kind != token.DATE_TIME {
		t.Fatalf("first token kind = %s, want DATE_TIME", tokens[0].Kind)
	}
	if tokens[0].Lexeme != "1979-05-27T07:32:00Z" {
		t.Errorf("lexeme = %q", tokens[0].Lexeme)
	}
}

func TestLexIllegalCharacter(t *testing.T) {
	_, err := Lex("a = \x01", DefaultMode)
	if err == nil {
		t.Fatal("expected error for illegal character")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize("a\r\nb\rc\td")
	want := "a\nb\nc d"
	if got != want {
		t.Errorf("Normalize = %q, want %q", got, want)
	}
}

func TestLexTableHeaderBrackets(t *testing.T) {
	tokens, err := Lex(`[[a.b]]`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	got := kinds(tokens)
	want := []token.Kind{
		token.LEFT_SQUARE_BRACKET, token.LEFT_SQUARE_BRACKET,
		token.UNQUOTED_KEY, token.DOT, token.UNQUOTED_KEY,
		token.RIGHT_SQUARE_BRACKET, token.RIGHT_SQUARE_BRACKET,
		token.EOS,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Lex kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestLexEscapedCharacter(t *testing.T) {
	tokens, err := Lex(`"a\nb"`, DefaultMode)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var sawEscaped bool
	for _, tok := range tokens {
		if tok.Kind == token.ESCAPED_CHARACTER {
			sawEscaped = true
			if tok.Lexeme != `\n` {
				t.Errorf("escaped char lexeme = %q, want %q", tok.Lexeme, `\n`)
			}
		}
	}
	if !sawEscaped {
		t.Fatal("expected an ESCAPED_CHARACTER token")
	}
}

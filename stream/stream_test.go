package stream

import (
	"testing"

	"github.com/localzet/ZConf/token"
)

func sample() []token.Token {
	return []token.Token{
		{Kind: token.UNQUOTED_KEY, Lexeme: "a", Line: 1},
		{Kind: token.EQUAL, Lexeme: "=", Line: 1},
		{Kind: token.INTEGER, Lexeme: "1", Line: 1},
		{Kind: token.EOS, Lexeme: "", Line: 1},
	}
}

func TestAdvancePeek(t *testing.T) {
	s := New(sample())
	if got := s.Peek().Kind; got != token.UNQUOTED_KEY {
		t.Fatalf("Peek = %s", got)
	}
	tok := s.Advance()
	if tok.Kind != token.UNQUOTED_KEY {
		t.Fatalf("Advance = %s", tok.Kind)
	}
	if got := s.Peek().Kind; got != token.EQUAL {
		t.Fatalf("Peek after advance = %s", got)
	}
}

func TestExpectSuccess(t *testing.T) {
	s := New(sample())
	s.Advance()
	lex, err := s.Expect(token.EQUAL)
	if err != nil {
		t.Fatalf("Expect: %v", err)
	}
	if lex != "=" {
		t.Fatalf("lexeme = %q", lex)
	}
}

func TestExpectFailure(t *testing.T) {
	s := New(sample())
	if _, err := s.Expect(token.EQUAL); err == nil {
		t.Fatal("expected error")
	}
}

func TestMatchesSequence(t *testing.T) {
	s := New(sample())
	if !s.MatchesSequence(token.UNQUOTED_KEY, token.EQUAL, token.INTEGER) {
		t.Error("MatchesSequence should match")
	}
	if s.Peek().Kind != token.UNQUOTED_KEY {
		t.Error("MatchesSequence should not consume")
	}
	if s.MatchesSequence(token.EQUAL, token.EQUAL) {
		t.Error("MatchesSequence should not match")
	}
}

func TestSkipWhile(t *testing.T) {
	s := New(sample())
	s.SkipWhile(token.UNQUOTED_KEY, token.EQUAL)
	if got := s.Peek().Kind; got != token.INTEGER {
		t.Fatalf("Peek after SkipWhile = %s", got)
	}
}

func TestExhaustedAndPastEnd(t *testing.T) {
	s := New(sample())
	for !s.Exhausted() {
		s.Advance()
	}
	if got := s.Advance().Kind; got != token.EOS {
		t.Fatalf("Advance past end = %s, want EOS", got)
	}
	if got := s.PeekAt(5).Kind; got != token.EOS {
		t.Fatalf("PeekAt past end = %s, want EOS", got)
	}
}

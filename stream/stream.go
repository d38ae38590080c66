// Package stream implements the cursor over a token sequence used by the
// Parser. It exposes non-consuming Peek/Matches/MatchesSequence
// primitives directly, rather than relying on advance-then-roll-back.
package stream

import (
	"github.com/localzet/ZConf/token"
	"github.com/localzet/ZConf/zconferrors"
)

// TokenStream is a cursor over an ordered token sequence produced by the
// lexer, modeled on cuelang.org/go/cue/parser's lookahead helpers
// (p.next/p.expect) but implemented as a free-standing, reusable type
// rather than methods embedded in the parser itself.
type TokenStream struct {
	tokens []token.Token
	pos    int
}

// New wraps tokens (which must end in an EOS token) in a TokenStream.
func New(tokens []token.Token) *TokenStream {
	return &TokenStream{tokens: tokens}
}

func (s *TokenStream) current() token.Token {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1] // EOS
	}
	return s.tokens[s.pos]
}

// Advance returns the current token and moves the cursor forward, or
// returns the trailing EOS token forever once exhausted.
func (s *TokenStream) Advance() token.Token {
	t := s.current()
	if s.pos < len(s.tokens) {
		s.pos++
	}
	return t
}

// Peek returns the current token without advancing.
func (s *TokenStream) Peek() token.Token {
	return s.current()
}

// PeekAt returns the token offset positions ahead of the cursor without
// advancing, clamped to the trailing EOS once past the end.
func (s *TokenStream) PeekAt(offset int) token.Token {
	idx := s.pos + offset
	if idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}
	if idx < 0 {
		idx = 0
	}
	return s.tokens[idx]
}

// Expect advances past the current token if it has kind, returning its
// lexeme; otherwise it fails with a syntax error naming the expected and
// actual kinds.
func (s *TokenStream) Expect(kind token.Kind) (string, error) {
	t := s.current()
	if t.Kind != kind {
		return "", zconferrors.UnexpectedToken(t, kind)
	}
	s.Advance()
	return t.Lexeme, nil
}

// Matches reports whether the current token has kind, without consuming.
func (s *TokenStream) Matches(kind token.Kind) bool {
	return s.current().Kind == kind
}

// MatchesAny reports whether the current token has any of kinds, without
// consuming.
func (s *TokenStream) MatchesAny(kinds ...token.Kind) bool {
	cur := s.current().Kind
	for _, k := range kinds {
		if cur == k {
			return true
		}
	}
	return false
}

// MatchesSequence reports whether the upcoming tokens match kinds in
// order, without consuming; the cursor is always restored.
func (s *TokenStream) MatchesSequence(kinds ...token.Kind) bool {
	for i, k := range kinds {
		if s.PeekAt(i).Kind != k {
			return false
		}
	}
	return true
}

// SkipWhile advances past every leading token whose kind is in kinds.
func (s *TokenStream) SkipWhile(kinds ...token.Kind) {
	for s.MatchesAny(kinds...) {
		s.Advance()
	}
}

// Exhausted reports whether only the trailing EOS token remains.
func (s *TokenStream) Exhausted() bool {
	return s.current().Kind == token.EOS
}

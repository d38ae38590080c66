// Package zconferrors defines the error taxonomy of the ZCONF library,
// modeled on cuelang.org/go/cue/errors: an internal, position-carrying
// error raised during scanning/parsing, and a public, user-facing error
// enriched with filename and a source snippet at the API boundary
// (spec.md §7).
package zconferrors

import (
	"errors"
	"fmt"

	"github.com/localzet/ZConf/token"
)

// SyntaxError is raised immediately by the lexer or parser and never
// escapes the library directly; the entry surface always converts it to
// a ParseError (spec.md §7 propagation policy).
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// NewSyntaxError builds a SyntaxError pinned to line.
func NewSyntaxError(line int, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// UnexpectedToken builds the standard "expected X, got Y" syntax error
// produced by stream.TokenStream.Expect.
func UnexpectedToken(got token.Token, want ...token.Kind) *SyntaxError {
	return NewSyntaxError(got.Line, "expected %v, got %s %q", want, got.Kind, got.Lexeme)
}

// ParseError is the public error returned by ParseString/ParseFile. It
// optionally carries the filename, the 1-based source line, and a short
// snippet of the offending line, matching spec.md §6/§7.
type ParseError struct {
	Filename string
	Line     int
	Snippet  string
	Err      error
}

func (e *ParseError) Error() string {
	if e.Filename != "" && e.Line > 0 {
		if e.Snippet != "" {
			return fmt.Sprintf("%s:%d: %s (near %q)", e.Filename, e.Line, e.Err, e.Snippet)
		}
		return fmt.Sprintf("%s:%d: %s", e.Filename, e.Line, e.Err)
	}
	if e.Line > 0 {
		if e.Snippet != "" {
			return fmt.Sprintf("line %d: %s (near %q)", e.Line, e.Err, e.Snippet)
		}
		return fmt.Sprintf("line %d: %s", e.Line, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Wrap converts any error raised inside the parser (typically a
// *SyntaxError) into a ParseError enriched with filename and, if the
// file is available, a source snippet for the offending line.
func Wrap(err error, filename string, file *token.File) *ParseError {
	if err == nil {
		return nil
	}
	pe := &ParseError{Filename: filename, Err: err}
	var se *SyntaxError
	if errors.As(err, &se) {
		pe.Line = se.Line
		if file != nil {
			pe.Snippet = snippet(file.Line(se.Line))
		}
	}
	return pe
}

const maxSnippetLen = 60

func snippet(line string) string {
	line = trimLeadingSpace(line)
	if len(line) > maxSnippetLen {
		return line[:maxSnippetLen] + "..."
	}
	return line
}

func trimLeadingSpace(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// DumpError is raised immediately by the Builder and never repaired
// in place (spec.md §7 emit-side errors).
type DumpError struct {
	Message string
}

func (e *DumpError) Error() string { return e.Message }

// NewDumpError builds a DumpError.
func NewDumpError(format string, args ...interface{}) *DumpError {
	return &DumpError{Message: fmt.Sprintf(format, args...)}
}

// FileError reports structural, file-level failures distinct from
// parse errors (spec.md §4.7): file missing vs. file unreadable.
type FileError struct {
	Path    string
	Message string
	Err     error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Message, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

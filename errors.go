// errors.go — error types and caret-snippet rendering.
//
// Two error kinds cross the public surface:
//
//   - *LexerError, raised when the token stream does not match what the
//     parser expects (the Expect family) or when a literal is malformed.
//     Carries a 1-based line and 0-based column.
//   - *RuntimeError, raised during evaluation: unknown variable, method
//     not found, divide by zero, incompatible operands, and so on. The
//     AST carries no positions, so a RuntimeError is message-only.
//
// WrapErrorWithSource upgrades a positioned error into a multi-line,
// Python-style snippet with a caret under the offending column:
//
//	LEXER ERROR at 2:7: expected Char{:}, got Newline
//
//	   1 | class A
//	   2 | class A
//	     |       ^
//
// Errors without a position (RuntimeError, anything else) pass through
// unchanged. The renderer clamps out-of-range coordinates so it never
// fails on short or empty sources.
package mython

import (
	"errors"
	"fmt"
	"strings"
)

// LexerError reports a token-stream mismatch or a malformed literal.
// AtEOF is set when the failure happened because input ran out; the
// REPL uses it to keep reading instead of rejecting the line.
type LexerError struct {
	Line  int
	Col   int
	Msg   string
	AtEOF bool
}

func (e *LexerError) Error() string {
	return fmt.Sprintf("LEXER ERROR at %d:%d: %s", e.Line, e.Col+1, e.Msg)
}

// RuntimeError reports an evaluation failure.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return "RUNTIME ERROR: " + e.Msg
}

// IsIncomplete reports whether err is a LexerError caused by the input
// ending too early, meaning more source lines could still complete the
// program.
func IsIncomplete(err error) bool {
	var le *LexerError
	return errors.As(err, &le) && le.AtEOF
}

// WrapErrorWithSource returns err augmented with a caret-annotated
// snippet of src when err carries a position; other errors are returned
// unchanged.
func WrapErrorWithSource(err error, src string) error {
	var le *LexerError
	if errors.As(err, &le) {
		return fmt.Errorf("%s", caretSnippet(src, "LEXER ERROR", le.Line, le.Col+1, le.Msg))
	}
	return err
}

// caretSnippet builds the snippet: header, one line of context before
// and after when available, and a caret under the 1-based column.
func caretSnippet(src, header string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if col < 1 {
		col = 1
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lines[line-1])
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", col-1))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}

// errors_test.go
package mython

import (
	"errors"
	"strings"
	"testing"
)

func Test_Errors_LexerErrorMessage(t *testing.T) {
	err := &LexerError{Line: 2, Col: 6, Msg: "expected Char{:}, got Newline"}
	want := "LEXER ERROR at 2:7: expected Char{:}, got Newline"
	if err.Error() != want {
		t.Fatalf("want %q, got %q", want, err.Error())
	}
}

func Test_Errors_RuntimeErrorMessage(t *testing.T) {
	err := &RuntimeError{Msg: "divide by zero"}
	if err.Error() != "RUNTIME ERROR: divide by zero" {
		t.Fatalf("got %q", err.Error())
	}
}

func Test_Errors_WrapWithSourceAddsCaret(t *testing.T) {
	src := "x = 1\nclass A\ny = 2\n"
	_, perr := ParseString(src)
	if perr == nil {
		t.Fatalf("source must not parse")
	}

	wrapped := WrapErrorWithSource(perr, src)
	msg := wrapped.Error()
	if !strings.Contains(msg, "LEXER ERROR") {
		t.Fatalf("missing header: %q", msg)
	}
	if !strings.Contains(msg, "^") {
		t.Fatalf("missing caret: %q", msg)
	}
	if !strings.Contains(msg, "class A") {
		t.Fatalf("missing offending line: %q", msg)
	}
}

func Test_Errors_WrapWithSourcePassesOthersThrough(t *testing.T) {
	err := &RuntimeError{Msg: "divide by zero"}
	if got := WrapErrorWithSource(err, "print 1/0\n"); got != error(err) {
		t.Fatalf("runtime errors must pass through unchanged, got %v", got)
	}
}

func Test_Errors_CaretSnippetClampsCoordinates(t *testing.T) {
	out := caretSnippet("only line", "LEXER ERROR", 99, 99, "msg")
	if !strings.Contains(out, "only line") || !strings.Contains(out, "^") {
		t.Fatalf("clamped snippet broken: %q", out)
	}
	out = caretSnippet("", "LEXER ERROR", 0, 0, "msg")
	if !strings.Contains(out, "^") {
		t.Fatalf("empty-source snippet broken: %q", out)
	}
}

func Test_Errors_IsIncomplete(t *testing.T) {
	if !IsIncomplete(&LexerError{AtEOF: true}) {
		t.Fatalf("AtEOF lexer error must read as incomplete")
	}
	if IsIncomplete(&LexerError{}) {
		t.Fatalf("positioned mismatch must not read as incomplete")
	}
	if IsIncomplete(&RuntimeError{Msg: "x"}) {
		t.Fatalf("runtime error must not read as incomplete")
	}
	if IsIncomplete(errors.New("plain")) {
		t.Fatalf("plain error must not read as incomplete")
	}
}

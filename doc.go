// Package mython implements an interpreter for Mython, a small
// Python-like language with integers, strings, booleans, None,
// single-inheritance classes with dunder methods, arithmetic and
// comparison operators, if/else, print, and indentation-based blocks.
//
// The pipeline is the classic one: source text goes through the
// indentation-aware Lexer (lexer.go) into a token stream, the
// recursive-descent parser (parser.go) builds a Statement tree, and the
// tree evaluates itself against a Closure and a Context (runtime.go,
// statement.go). ExecuteProgram and Interpreter.Run in interpreter.go
// are the entry points; cmd/mython wraps them in a CLI with a REPL.
//
// Evaluation is single-threaded and synchronous. Statement execution is
// deep recursion over the AST, so the Go stack bounds program nesting
// depth. Runtime failures surface as *RuntimeError, token-stream
// mismatches as *LexerError; `return` travels as a separate control
// signal that only a method body frame intercepts.
package mython

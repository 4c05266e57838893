// interpreter.go — public entry points.
//
// ExecuteProgram is the boundary where the evaluator's panic discipline
// ends: runtime errors and a stray top-level `return` come back as
// ordinary errors. Interpreter bundles a persistent global closure so a
// REPL can carry definitions across inputs; RunProgram is the one-shot
// convenience for whole scripts.
package mython

import (
	"io"
	"strings"
)

// ExecuteProgram runs a parsed program against the given global closure
// and context. A `return` escaping to the top level is reported as a
// runtime error.
func ExecuteProgram(root Statement, closure Closure, ctx Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch e := r.(type) {
		case returnSignal:
			err = &RuntimeError{Msg: "return outside of a method body"}
		case *RuntimeError:
			err = e
		case *LexerError:
			err = e
		default:
			panic(r)
		}
	}()
	root.Execute(closure, ctx)
	return nil
}

// Interpreter executes sources against a global closure that persists
// across Run calls. The class table persists too, so a class defined by
// one input can be instantiated by the next.
type Interpreter struct {
	Globals Closure

	classes map[string]*Class
}

func NewInterpreter() *Interpreter {
	return &Interpreter{Globals: Closure{}, classes: map[string]*Class{}}
}

// Run parses src and executes it, writing program output to out.
// Definitions and assignments stay in Globals for later calls.
func (in *Interpreter) Run(src string, out io.Writer) error {
	prog, err := parseWithClasses(strings.NewReader(src), in.classes)
	if err != nil {
		return err
	}
	return ExecuteProgram(prog, in.Globals, NewSimpleContext(out))
}

// RunProgram parses and executes src in a fresh environment.
func RunProgram(src string, out io.Writer) error {
	return NewInterpreter().Run(src, out)
}

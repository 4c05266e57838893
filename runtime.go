// runtime.go — runtime values, ownership handles, classes, and the
// comparison protocol.
//
// Every evaluator-visible value travels inside an ObjectHolder. The
// holder is either null (the None value) or refers to a live Object.
// Own wraps a freshly created value, Share wraps a value whose lifetime
// somebody else guarantees (an instance already bound elsewhere, a class
// owned by the global closure). Under Go's garbage collector the two
// behave identically; the split is kept because call sites read better
// and because reference cycles through instance fields (an instance
// storing itself) are then plainly the collector's problem, not ours.
//
// Runtime failures panic with *RuntimeError and are recovered at the
// ExecuteProgram boundary. The `return` statement travels as the
// distinct returnSignal so a value-carrying exit can never be mistaken
// for an error.
package mython

import (
	"bytes"
	"fmt"
	"io"
)

// Dunder methods the interpreter itself consults.
const (
	initMethod = "__init__"
	strMethod  = "__str__"
	eqMethod   = "__eq__"
	ltMethod   = "__lt__"
	addMethod  = "__add__"
)

// Context supplies the evaluator-visible environment of the host, which
// for Mython is just the output stream print and str() write to.
type Context interface {
	OutputStream() io.Writer
}

// SimpleContext is the production Context: a plain writer.
type SimpleContext struct {
	out io.Writer
}

func NewSimpleContext(out io.Writer) *SimpleContext { return &SimpleContext{out: out} }

func (c *SimpleContext) OutputStream() io.Writer { return c.out }

// DummyContext buffers all output; tests read it back with Output.
type DummyContext struct {
	buf bytes.Buffer
}

func (c *DummyContext) OutputStream() io.Writer { return &c.buf }

func (c *DummyContext) Output() string { return c.buf.String() }

// Closure maps identifiers to value handles. It serves both as the
// global environment of a program and as the local frame of a method
// call. Frames are independent: a call frame holds self plus the formal
// parameters and nothing from the caller.
type Closure map[string]ObjectHolder

// Object is any runtime value. Print writes the user-visible form.
type Object interface {
	Print(w io.Writer, ctx Context)
}

// ObjectHolder carries a runtime value, or nothing: the zero holder is
// the None value.
type ObjectHolder struct {
	data Object
}

// Own wraps a newly created value the holder is responsible for.
func Own(obj Object) ObjectHolder { return ObjectHolder{data: obj} }

// Share wraps a value whose lifetime is guaranteed elsewhere, such as
// the receiver an instance method binds to self.
func Share(obj Object) ObjectHolder { return ObjectHolder{data: obj} }

// None returns the null holder representing the None value.
func None() ObjectHolder { return ObjectHolder{} }

// Get returns the held value, or nil for the None holder.
func (h ObjectHolder) Get() Object { return h.data }

// returnSignal carries the value of a `return` statement up to the
// nearest method-body frame. It is not an error.
type returnSignal struct {
	value ObjectHolder
}

func throwf(format string, args ...any) {
	panic(&RuntimeError{Msg: fmt.Sprintf(format, args...)})
}

// ----- scalar values -----

// Number is an immutable integer value.
type Number struct {
	value int
}

func NewNumber(v int) *Number { return &Number{value: v} }

func (n *Number) Value() int { return n.value }

func (n *Number) Print(w io.Writer, _ Context) { fmt.Fprintf(w, "%d", n.value) }

// String is an immutable byte-string value. Print writes the raw bytes,
// no quoting, no escaping.
type String struct {
	value string
}

func NewString(v string) *String { return &String{value: v} }

func (s *String) Value() string { return s.value }

func (s *String) Print(w io.Writer, _ Context) { io.WriteString(w, s.value) }

// Bool is an immutable boolean value printed as True/False.
type Bool struct {
	value bool
}

func NewBool(v bool) *Bool { return &Bool{value: v} }

func (b *Bool) Value() bool { return b.value }

func (b *Bool) Print(w io.Writer, _ Context) {
	if b.value {
		io.WriteString(w, "True")
	} else {
		io.WriteString(w, "False")
	}
}

// IsTrue converts a value to its truthiness: None is false, Bool is
// itself, Number is value != 0, String is non-empty, everything else
// (classes, instances) is false.
func IsTrue(object ObjectHolder) bool {
	switch v := object.Get().(type) {
	case *Bool:
		return v.Value()
	case *Number:
		return v.Value() != 0
	case *String:
		return v.Value() != ""
	default:
		return false
	}
}

// ----- classes and instances -----

// Method is a named method: formal parameter names in declaration order
// plus the body statement the parser wrapped in a MethodBody.
type Method struct {
	Name         string
	FormalParams []string
	Body         Statement
}

// Class is immutable once defined: a name, methods in declaration
// order, and an optional parent. The parent must outlive every instance
// of the child; holding classes in the global closure guarantees that.
type Class struct {
	name    string
	methods []Method
	parent  *Class
}

func NewClass(name string, methods []Method, parent *Class) *Class {
	return &Class{name: name, methods: methods, parent: parent}
}

func (c *Class) Name() string { return c.name }

// GetMethod scans the class's own methods in declaration order, then
// the inheritance chain. Returns nil when the method does not exist.
func (c *Class) GetMethod(name string) *Method {
	for i := range c.methods {
		if c.methods[i].Name == name {
			return &c.methods[i]
		}
	}
	if c.parent != nil {
		return c.parent.GetMethod(name)
	}
	return nil
}

func (c *Class) Print(w io.Writer, _ Context) { fmt.Fprintf(w, "Class %s", c.name) }

// ClassInstance is an object of a class: a non-owning class reference
// plus the mutable per-instance field bindings.
type ClassInstance struct {
	cls    *Class
	fields Closure
}

func NewClassInstance(cls *Class) *ClassInstance {
	return &ClassInstance{cls: cls, fields: Closure{}}
}

func (ci *ClassInstance) Class() *Class { return ci.cls }

// Fields exposes the instance's field closure for reading and mutation.
func (ci *ClassInstance) Fields() Closure { return ci.fields }

// HasMethod reports whether the class chain defines method with exactly
// argumentCount formal parameters.
func (ci *ClassInstance) HasMethod(method string, argumentCount int) bool {
	m := ci.cls.GetMethod(method)
	return m != nil && len(m.FormalParams) == argumentCount
}

// Call invokes method with the given arguments. The call frame is a
// fresh closure holding self and the formals; nothing leaks in from the
// caller. The result is the value carried by a `return` exit, or None
// when the body finishes normally. An unknown method or an arity
// mismatch is a runtime error.
func (ci *ClassInstance) Call(method string, args []ObjectHolder, ctx Context) (result ObjectHolder) {
	if !ci.HasMethod(method, len(args)) {
		throwf("method not found: %s.%s/%d", ci.cls.Name(), method, len(args))
	}
	m := ci.cls.GetMethod(method)
	closure := Closure{"self": Share(ci)}
	for i, param := range m.FormalParams {
		closure[param] = args[i]
	}
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(returnSignal)
			if !ok {
				panic(r)
			}
			result = sig.value
		}
	}()
	m.Body.Execute(closure, ctx)
	return None()
}

// Print writes the __str__ form when the class defines a zero-argument
// __str__, else an opaque pointer identity.
func (ci *ClassInstance) Print(w io.Writer, ctx Context) {
	if ci.HasMethod(strMethod, 0) {
		res := ci.Call(strMethod, nil, ctx)
		if obj := res.Get(); obj != nil {
			obj.Print(w, ctx)
		} else {
			io.WriteString(w, "None")
		}
		return
	}
	fmt.Fprintf(w, "%p", ci)
}

// ----- comparison protocol -----

// Comparator is a binary comparison over value handles.
type Comparator func(lhs, rhs ObjectHolder, ctx Context) bool

// scalarComparator applies one relation across the three scalar kinds.
type scalarComparator struct {
	bools   func(a, b bool) bool
	numbers func(a, b int) bool
	strings func(a, b string) bool
}

var scalarEq = scalarComparator{
	bools:   func(a, b bool) bool { return a == b },
	numbers: func(a, b int) bool { return a == b },
	strings: func(a, b string) bool { return a == b },
}

var scalarLess = scalarComparator{
	bools:   func(a, b bool) bool { return !a && b },
	numbers: func(a, b int) bool { return a < b },
	strings: func(a, b string) bool { return a < b },
}

// compareValues requires both operands to be scalars of the same kind.
// Anything else, including None on either side, is a runtime error.
func compareValues(lhs, rhs ObjectHolder, cmp scalarComparator) bool {
	if l, ok := lhs.Get().(*Bool); ok {
		if r, ok := rhs.Get().(*Bool); ok {
			return cmp.bools(l.Value(), r.Value())
		}
		throwf("cannot compare values of different types")
	}
	if l, ok := lhs.Get().(*Number); ok {
		if r, ok := rhs.Get().(*Number); ok {
			return cmp.numbers(l.Value(), r.Value())
		}
		throwf("cannot compare values of different types")
	}
	if l, ok := lhs.Get().(*String); ok {
		if r, ok := rhs.Get().(*String); ok {
			return cmp.strings(l.Value(), r.Value())
		}
		throwf("cannot compare values of different types")
	}
	throwf("values are not comparable")
	return false
}

// Equal implements ==: both None is true; an instance delegates to a
// one-argument __eq__ whose Bool result is taken as is; scalars compare
// by kind and value.
func Equal(lhs, rhs ObjectHolder, ctx Context) bool {
	if lhs.Get() == nil && rhs.Get() == nil {
		return true
	}
	if inst, ok := lhs.Get().(*ClassInstance); ok {
		if inst.HasMethod(eqMethod, 1) {
			res := inst.Call(eqMethod, []ObjectHolder{rhs}, ctx)
			if b, ok := res.Get().(*Bool); ok {
				return b.Value()
			}
		}
		throwf("cannot compare objects for equality")
	}
	return compareValues(lhs, rhs, scalarEq)
}

// Less implements <, delegating to a one-argument __lt__ on instances.
func Less(lhs, rhs ObjectHolder, ctx Context) bool {
	if inst, ok := lhs.Get().(*ClassInstance); ok {
		if inst.HasMethod(ltMethod, 1) {
			res := inst.Call(ltMethod, []ObjectHolder{rhs}, ctx)
			if b, ok := res.Get().(*Bool); ok {
				return b.Value()
			}
		}
		throwf("cannot compare objects for less")
	}
	return compareValues(lhs, rhs, scalarLess)
}

func NotEqual(lhs, rhs ObjectHolder, ctx Context) bool {
	return !Equal(lhs, rhs, ctx)
}

func Greater(lhs, rhs ObjectHolder, ctx Context) bool {
	return !Less(lhs, rhs, ctx) && !Equal(lhs, rhs, ctx)
}

func LessOrEqual(lhs, rhs ObjectHolder, ctx Context) bool {
	return Less(lhs, rhs, ctx) || Equal(lhs, rhs, ctx)
}

func GreaterOrEqual(lhs, rhs ObjectHolder, ctx Context) bool {
	return !Less(lhs, rhs, ctx)
}

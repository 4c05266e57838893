// statement.go — AST nodes and their execution contracts.
//
// Every node implements Statement and evaluates against a Closure and a
// Context, returning a value handle. Expression nodes return the value,
// statement nodes return None. `return` panics with returnSignal, which
// every intermediate node propagates untouched; MethodBody (and
// ClassInstance.Call) recover it and yield the carried value, so a
// return terminates the current method invocation no matter how deeply
// it sits inside IfElse or Compound nesting. At the top level the
// signal escapes and ExecuteProgram reports it as a runtime error.
package mython

import (
	"bytes"
	"io"
)

// Statement is a node of the program tree.
type Statement interface {
	Execute(closure Closure, ctx Context) ObjectHolder
}

// ----- literals -----

// valueConst yields the same prebuilt value on every execution.
type valueConst struct {
	value Object
}

func (s *valueConst) Execute(Closure, Context) ObjectHolder {
	if s.value == nil {
		return None()
	}
	return Share(s.value)
}

func NewNumericConst(v int) Statement   { return &valueConst{value: NewNumber(v)} }
func NewStringConst(v string) Statement { return &valueConst{value: NewString(v)} }
func NewBoolConst(v bool) Statement     { return &valueConst{value: NewBool(v)} }
func NewNoneConst() Statement           { return &valueConst{} }

// ----- names and assignment -----

// Assignment binds name in the executing closure to the value of rv.
type Assignment struct {
	name string
	rv   Statement
}

func NewAssignment(name string, rv Statement) *Assignment {
	return &Assignment{name: name, rv: rv}
}

func (s *Assignment) Execute(closure Closure, ctx Context) ObjectHolder {
	value := s.rv.Execute(closure, ctx)
	closure[s.name] = value
	return value
}

// VariableValue resolves a dotted identifier chain: the head in the
// executing closure, every further id in the fields of the class
// instance resolved so far.
type VariableValue struct {
	ids []string
}

func NewVariableValue(ids ...string) *VariableValue {
	return &VariableValue{ids: ids}
}

func (s *VariableValue) Execute(closure Closure, _ Context) ObjectHolder {
	object, ok := closure[s.ids[0]]
	if !ok {
		throwf("unknown variable: %s", s.ids[0])
	}
	for _, field := range s.ids[1:] {
		inst, ok := object.Get().(*ClassInstance)
		if !ok {
			throwf("field access on non-instance value")
		}
		object, ok = inst.Fields()[field]
		if !ok {
			throwf("unknown variable: %s", field)
		}
	}
	return object
}

// FieldAssignment stores the value of rv into a field of the instance
// the object chain resolves to.
type FieldAssignment struct {
	object *VariableValue
	field  string
	rv     Statement
}

func NewFieldAssignment(object *VariableValue, field string, rv Statement) *FieldAssignment {
	return &FieldAssignment{object: object, field: field, rv: rv}
}

func (s *FieldAssignment) Execute(closure Closure, ctx Context) ObjectHolder {
	inst, ok := s.object.Execute(closure, ctx).Get().(*ClassInstance)
	if !ok {
		throwf("field assignment on non-instance")
	}
	value := s.rv.Execute(closure, ctx)
	inst.Fields()[s.field] = value
	return value
}

// ----- statements -----

// Print evaluates its arguments in order and writes them to the context
// stream, space separated and newline terminated. None prints as the
// literal None.
type Print struct {
	args []Statement
}

func NewPrint(args ...Statement) *Print { return &Print{args: args} }

// NewPrintVariable prints a single named variable.
func NewPrintVariable(name string) *Print {
	return &Print{args: []Statement{NewVariableValue(name)}}
}

func (s *Print) Execute(closure Closure, ctx Context) ObjectHolder {
	out := ctx.OutputStream()
	for i, arg := range s.args {
		if i > 0 {
			io.WriteString(out, " ")
		}
		value := arg.Execute(closure, ctx)
		if obj := value.Get(); obj != nil {
			obj.Print(out, ctx)
		} else {
			io.WriteString(out, "None")
		}
	}
	io.WriteString(out, "\n")
	return None()
}

// MethodCall evaluates the receiver, then the arguments left to right,
// and dispatches through the instance's class chain.
type MethodCall struct {
	object Statement
	method string
	args   []Statement
}

func NewMethodCall(object Statement, method string, args ...Statement) *MethodCall {
	return &MethodCall{object: object, method: method, args: args}
}

func (s *MethodCall) Execute(closure Closure, ctx Context) ObjectHolder {
	inst, ok := s.object.Execute(closure, ctx).Get().(*ClassInstance)
	if !ok {
		throwf("method call on non-instance value")
	}
	args := make([]ObjectHolder, len(s.args))
	for i, arg := range s.args {
		args[i] = arg.Execute(closure, ctx)
	}
	return inst.Call(s.method, args, ctx)
}

// NewInstance allocates a fresh instance of its class and, when the
// class chain defines __init__ with matching arity, runs it on the new
// instance with the evaluated arguments.
type NewInstance struct {
	class *Class
	args  []Statement
}

func NewInstanceOf(class *Class, args ...Statement) *NewInstance {
	return &NewInstance{class: class, args: args}
}

func (s *NewInstance) Execute(closure Closure, ctx Context) ObjectHolder {
	inst := NewClassInstance(s.class)
	if inst.HasMethod(initMethod, len(s.args)) {
		args := make([]ObjectHolder, len(s.args))
		for i, arg := range s.args {
			args[i] = arg.Execute(closure, ctx)
		}
		inst.Call(initMethod, args, ctx)
	}
	return Share(inst)
}

// Return evaluates its expression and exits the current method
// invocation with that value.
type Return struct {
	statement Statement
}

func NewReturn(statement Statement) *Return { return &Return{statement: statement} }

func (s *Return) Execute(closure Closure, ctx Context) ObjectHolder {
	panic(returnSignal{value: s.statement.Execute(closure, ctx)})
}

// Compound executes its statements in order.
type Compound struct {
	statements []Statement
}

func NewCompound(statements ...Statement) *Compound {
	return &Compound{statements: statements}
}

func (s *Compound) AddStatement(st Statement) {
	s.statements = append(s.statements, st)
}

func (s *Compound) Execute(closure Closure, ctx Context) ObjectHolder {
	for _, st := range s.statements {
		st.Execute(closure, ctx)
	}
	return None()
}

// IfElse runs the branch selected by the truthiness of the condition.
// The else branch may be nil.
type IfElse struct {
	condition Statement
	ifBody    Statement
	elseBody  Statement
}

func NewIfElse(condition, ifBody, elseBody Statement) *IfElse {
	return &IfElse{condition: condition, ifBody: ifBody, elseBody: elseBody}
}

func (s *IfElse) Execute(closure Closure, ctx Context) ObjectHolder {
	if IsTrue(s.condition.Execute(closure, ctx)) {
		return s.ifBody.Execute(closure, ctx)
	}
	if s.elseBody != nil {
		return s.elseBody.Execute(closure, ctx)
	}
	return None()
}

// MethodBody wraps the statements of a method and is the only frame
// that intercepts the return signal.
type MethodBody struct {
	body Statement
}

func NewMethodBody(body Statement) *MethodBody { return &MethodBody{body: body} }

func (s *MethodBody) Execute(closure Closure, ctx Context) (result ObjectHolder) {
	defer func() {
		if r := recover(); r != nil {
			sig, ok := r.(returnSignal)
			if !ok {
				panic(r)
			}
			result = sig.value
		}
	}()
	s.body.Execute(closure, ctx)
	return None()
}

// ClassDefinition binds the class's name in the executing closure.
type ClassDefinition struct {
	cls ObjectHolder
}

func NewClassDefinition(cls ObjectHolder) *ClassDefinition {
	return &ClassDefinition{cls: cls}
}

func (s *ClassDefinition) Execute(closure Closure, _ Context) ObjectHolder {
	cls, ok := s.cls.Get().(*Class)
	if !ok {
		throwf("class definition does not hold a class")
	}
	closure[cls.Name()] = s.cls
	return None()
}

// ----- logical operators -----

// Or short-circuits: a truthy left side yields True without evaluating
// the right side.
type Or struct {
	lhs, rhs Statement
}

func NewOr(lhs, rhs Statement) *Or { return &Or{lhs: lhs, rhs: rhs} }

func (s *Or) Execute(closure Closure, ctx Context) ObjectHolder {
	if IsTrue(s.lhs.Execute(closure, ctx)) {
		return Own(NewBool(true))
	}
	return Own(NewBool(IsTrue(s.rhs.Execute(closure, ctx))))
}

// And short-circuits dually: a falsy left side yields False.
type And struct {
	lhs, rhs Statement
}

func NewAnd(lhs, rhs Statement) *And { return &And{lhs: lhs, rhs: rhs} }

func (s *And) Execute(closure Closure, ctx Context) ObjectHolder {
	if !IsTrue(s.lhs.Execute(closure, ctx)) {
		return Own(NewBool(false))
	}
	return Own(NewBool(IsTrue(s.rhs.Execute(closure, ctx))))
}

// Not negates truthiness.
type Not struct {
	argument Statement
}

func NewNot(argument Statement) *Not { return &Not{argument: argument} }

func (s *Not) Execute(closure Closure, ctx Context) ObjectHolder {
	return Own(NewBool(!IsTrue(s.argument.Execute(closure, ctx))))
}

// Comparison applies one of the protocol comparators to its evaluated
// operands and wraps the outcome as Bool.
type Comparison struct {
	comparator Comparator
	lhs, rhs   Statement
}

func NewComparison(comparator Comparator, lhs, rhs Statement) *Comparison {
	return &Comparison{comparator: comparator, lhs: lhs, rhs: rhs}
}

func (s *Comparison) Execute(closure Closure, ctx Context) ObjectHolder {
	left := s.lhs.Execute(closure, ctx)
	right := s.rhs.Execute(closure, ctx)
	return Own(NewBool(s.comparator(left, right, ctx)))
}

// ----- arithmetic -----

// Add handles Number+Number, String+String, and delegates to __add__
// when the left operand is a class instance.
type Add struct {
	lhs, rhs Statement
}

func NewAdd(lhs, rhs Statement) *Add { return &Add{lhs: lhs, rhs: rhs} }

func (s *Add) Execute(closure Closure, ctx Context) ObjectHolder {
	left := s.lhs.Execute(closure, ctx)
	right := s.rhs.Execute(closure, ctx)
	if l, ok := left.Get().(*Number); ok {
		if r, ok := right.Get().(*Number); ok {
			return Own(NewNumber(l.Value() + r.Value()))
		}
	}
	if l, ok := left.Get().(*String); ok {
		if r, ok := right.Get().(*String); ok {
			return Own(NewString(l.Value() + r.Value()))
		}
	}
	if inst, ok := left.Get().(*ClassInstance); ok {
		return inst.Call(addMethod, []ObjectHolder{right}, ctx)
	}
	throwf("cannot add these operands")
	return None()
}

// Sub subtracts numbers.
type Sub struct {
	lhs, rhs Statement
}

func NewSub(lhs, rhs Statement) *Sub { return &Sub{lhs: lhs, rhs: rhs} }

func (s *Sub) Execute(closure Closure, ctx Context) ObjectHolder {
	left, right := numericOperands(s.lhs, s.rhs, closure, ctx, "subtract")
	return Own(NewNumber(left - right))
}

// Mult multiplies numbers.
type Mult struct {
	lhs, rhs Statement
}

func NewMult(lhs, rhs Statement) *Mult { return &Mult{lhs: lhs, rhs: rhs} }

func (s *Mult) Execute(closure Closure, ctx Context) ObjectHolder {
	left, right := numericOperands(s.lhs, s.rhs, closure, ctx, "multiply")
	return Own(NewNumber(left * right))
}

// Div divides numbers with host integer semantics.
type Div struct {
	lhs, rhs Statement
}

func NewDiv(lhs, rhs Statement) *Div { return &Div{lhs: lhs, rhs: rhs} }

func (s *Div) Execute(closure Closure, ctx Context) ObjectHolder {
	left, right := numericOperands(s.lhs, s.rhs, closure, ctx, "divide")
	if right == 0 {
		throwf("divide by zero")
	}
	return Own(NewNumber(left / right))
}

func numericOperands(lhs, rhs Statement, closure Closure, ctx Context, op string) (int, int) {
	left, lok := lhs.Execute(closure, ctx).Get().(*Number)
	right, rok := rhs.Execute(closure, ctx).Get().(*Number)
	if !lok || !rok {
		throwf("cannot %s non-number operands", op)
	}
	return left.Value(), right.Value()
}

// Stringify renders its argument through the value model into a String.
// None stringifies to "None".
type Stringify struct {
	argument Statement
}

func NewStringify(argument Statement) *Stringify { return &Stringify{argument: argument} }

func (s *Stringify) Execute(closure Closure, ctx Context) ObjectHolder {
	value := s.argument.Execute(closure, ctx)
	obj := value.Get()
	if obj == nil {
		return Own(NewString("None"))
	}
	var buf bytes.Buffer
	obj.Print(&buf, ctx)
	return Own(NewString(buf.String()))
}

// runtime_test.go
package mython

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func wantRuntimeError(t *testing.T, substr string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("no runtime error, want one containing %q", substr)
		}
		re, ok := r.(*RuntimeError)
		if !ok {
			t.Fatalf("want *RuntimeError, got %v", r)
		}
		if !strings.Contains(re.Msg, substr) {
			t.Fatalf("want error containing %q, got %q", substr, re.Msg)
		}
	}()
	fn()
}

func printed(t *testing.T, obj Object) string {
	t.Helper()
	ctx := &DummyContext{}
	obj.Print(ctx.OutputStream(), ctx)
	return ctx.Output()
}

// greeterClass defines __str__ returning "hi".
func greeterClass() *Class {
	return NewClass("Greeter", []Method{
		{Name: strMethod, Body: NewMethodBody(NewReturn(NewStringConst("hi")))},
	}, nil)
}

// --- values ----------------------------------------------------------------

func Test_Runtime_ScalarPrinting(t *testing.T) {
	if got := printed(t, NewNumber(-7)); got != "-7" {
		t.Fatalf("number printed as %q", got)
	}
	if got := printed(t, NewString("a b")); got != "a b" {
		t.Fatalf("string printed as %q", got)
	}
	if got := printed(t, NewBool(true)); got != "True" {
		t.Fatalf("bool printed as %q", got)
	}
	if got := printed(t, NewBool(false)); got != "False" {
		t.Fatalf("bool printed as %q", got)
	}
}

func Test_Runtime_Truthiness(t *testing.T) {
	cases := []struct {
		value ObjectHolder
		want  bool
	}{
		{None(), false},
		{Own(NewBool(true)), true},
		{Own(NewBool(false)), false},
		{Own(NewNumber(0)), false},
		{Own(NewNumber(-1)), true},
		{Own(NewString("")), false},
		{Own(NewString("x")), true},
		{Own(greeterClass()), false},
		{Share(NewClassInstance(greeterClass())), false},
	}
	for i, c := range cases {
		if got := IsTrue(c.value); got != c.want {
			t.Fatalf("case %d: IsTrue = %v, want %v", i, got, c.want)
		}
	}
}

// --- comparison protocol ---------------------------------------------------

func Test_Runtime_ScalarComparisons(t *testing.T) {
	ctx := &DummyContext{}
	num := func(n int) ObjectHolder { return Own(NewNumber(n)) }
	str := func(s string) ObjectHolder { return Own(NewString(s)) }
	boolean := func(b bool) ObjectHolder { return Own(NewBool(b)) }

	if !Equal(num(3), num(3), ctx) || Equal(num(3), num(4), ctx) {
		t.Fatalf("number equality broken")
	}
	if !Less(num(3), num(4), ctx) || Less(num(4), num(3), ctx) {
		t.Fatalf("number less broken")
	}
	if !Less(str("abc"), str("abd"), ctx) {
		t.Fatalf("string less broken")
	}
	if !Equal(str("a"), str("a"), ctx) {
		t.Fatalf("string equality broken")
	}
	if !Less(boolean(false), boolean(true), ctx) || Less(boolean(true), boolean(false), ctx) {
		t.Fatalf("bool less broken: False < True only")
	}
	if !Equal(boolean(true), boolean(true), ctx) {
		t.Fatalf("bool equality broken")
	}
}

func Test_Runtime_ComparisonAlgebra(t *testing.T) {
	ctx := &DummyContext{}
	pairs := [][2]int{{1, 2}, {2, 1}, {5, 5}, {-3, 0}}
	for _, p := range pairs {
		a, b := Own(NewNumber(p[0])), Own(NewNumber(p[1]))
		if NotEqual(a, b, ctx) == Equal(a, b, ctx) {
			t.Fatalf("%v: NotEqual must be !Equal", p)
		}
		if GreaterOrEqual(a, b, ctx) == Less(a, b, ctx) {
			t.Fatalf("%v: GreaterOrEqual must be !Less", p)
		}
		trues := 0
		for _, v := range []bool{Less(a, b, ctx), Equal(a, b, ctx), Greater(a, b, ctx)} {
			if v {
				trues++
			}
		}
		if trues != 1 {
			t.Fatalf("%v: exactly one of Less/Equal/Greater must hold, got %d", p, trues)
		}
	}
}

func Test_Runtime_CompareMismatchedKinds(t *testing.T) {
	ctx := &DummyContext{}
	wantRuntimeError(t, "different types", func() {
		Equal(Own(NewNumber(1)), Own(NewString("1")), ctx)
	})
	wantRuntimeError(t, "different types", func() {
		Less(Own(NewBool(true)), Own(NewNumber(1)), ctx)
	})
}

func Test_Runtime_CompareNone(t *testing.T) {
	ctx := &DummyContext{}
	if !Equal(None(), None(), ctx) {
		t.Fatalf("None == None must hold")
	}
	wantRuntimeError(t, "not comparable", func() {
		Equal(None(), Own(NewNumber(1)), ctx)
	})
	wantRuntimeError(t, "not comparable", func() {
		Less(None(), None(), ctx)
	})
}

func Test_Runtime_DunderEqAndLt(t *testing.T) {
	ctx := &DummyContext{}
	cls := NewClass("P", []Method{
		{Name: eqMethod, FormalParams: []string{"other"}, Body: NewMethodBody(NewReturn(NewBoolConst(true)))},
		{Name: ltMethod, FormalParams: []string{"other"}, Body: NewMethodBody(NewReturn(NewBoolConst(false)))},
	}, nil)
	inst := Share(NewClassInstance(cls))

	if !Equal(inst, Own(NewNumber(1)), ctx) {
		t.Fatalf("__eq__ result must drive Equal")
	}
	if Less(inst, Own(NewNumber(1)), ctx) {
		t.Fatalf("__lt__ result must drive Less")
	}
	// !Less && !Equal would need both dunders; here Less is false and
	// Equal is true, so Greater is false.
	if Greater(inst, Own(NewNumber(1)), ctx) {
		t.Fatalf("Greater must compose from __lt__ and __eq__")
	}
}

func Test_Runtime_CompareInstanceWithoutDunders(t *testing.T) {
	ctx := &DummyContext{}
	inst := Share(NewClassInstance(greeterClass()))
	wantRuntimeError(t, "equality", func() {
		Equal(inst, Own(NewNumber(1)), ctx)
	})
	wantRuntimeError(t, "less", func() {
		Less(inst, Own(NewNumber(1)), ctx)
	})
}

// --- classes and dispatch --------------------------------------------------

func Test_Runtime_GetMethodWalksParentChain(t *testing.T) {
	parent := greeterClass()
	child := NewClass("Child", []Method{
		{Name: "own", Body: NewMethodBody(NewReturn(NewNumericConst(1)))},
	}, parent)

	if child.GetMethod("own") == nil {
		t.Fatalf("own method must resolve")
	}
	if m := child.GetMethod(strMethod); m == nil {
		t.Fatalf("__str__ must resolve through the parent")
	}
	if child.GetMethod("absent") != nil {
		t.Fatalf("unknown method must resolve to nil")
	}
}

func Test_Runtime_MethodOverrideShadowsParent(t *testing.T) {
	parent := greeterClass()
	child := NewClass("Child", []Method{
		{Name: strMethod, Body: NewMethodBody(NewReturn(NewStringConst("bye")))},
	}, parent)
	inst := NewClassInstance(child)

	res := inst.Call(strMethod, nil, &DummyContext{})
	s, ok := res.Get().(*String)
	if !ok || s.Value() != "bye" {
		t.Fatalf("override must win, got %v", res.Get())
	}
}

func Test_Runtime_CallBindsSelfAndFormals(t *testing.T) {
	// def keep(v): self.v = v ... return self.v
	cls := NewClass("Box", []Method{
		{
			Name:         "keep",
			FormalParams: []string{"v"},
			Body: NewMethodBody(NewCompound(
				NewFieldAssignment(NewVariableValue("self"), "v", NewVariableValue("v")),
				NewReturn(NewVariableValue("self", "v")),
			)),
		},
	}, nil)
	inst := NewClassInstance(cls)

	res := inst.Call("keep", []ObjectHolder{Own(NewNumber(9))}, &DummyContext{})
	n, ok := res.Get().(*Number)
	if !ok || n.Value() != 9 {
		t.Fatalf("want 9 back, got %v", res.Get())
	}
	field, ok := inst.Fields()["v"]
	if !ok {
		t.Fatalf("field v must be set on the receiver")
	}
	if stored := field.Get().(*Number).Value(); stored != 9 {
		t.Fatalf("field v = %d, want 9", stored)
	}
}

func Test_Runtime_CallWithoutReturnYieldsNone(t *testing.T) {
	cls := NewClass("Quiet", []Method{
		{Name: "noop", Body: NewMethodBody(NewCompound())},
	}, nil)
	res := NewClassInstance(cls).Call("noop", nil, &DummyContext{})
	if res.Get() != nil {
		t.Fatalf("want None, got %v", res.Get())
	}
}

func Test_Runtime_CallArityAndUnknownMethod(t *testing.T) {
	inst := NewClassInstance(greeterClass())
	ctx := &DummyContext{}

	if !inst.HasMethod(strMethod, 0) {
		t.Fatalf("HasMethod(__str__, 0) must hold")
	}
	if inst.HasMethod(strMethod, 1) {
		t.Fatalf("HasMethod must check arity")
	}
	wantRuntimeError(t, "method not found", func() {
		inst.Call(strMethod, []ObjectHolder{None()}, ctx)
	})
	wantRuntimeError(t, "method not found", func() {
		inst.Call("absent", nil, ctx)
	})
}

func Test_Runtime_InstancePrintUsesStr(t *testing.T) {
	if got := printed(t, NewClassInstance(greeterClass())); got != "hi" {
		t.Fatalf("instance with __str__ printed as %q", got)
	}

	bare := NewClassInstance(NewClass("Bare", []Method{
		{Name: "noop", Body: NewMethodBody(NewCompound())},
	}, nil))
	if got := printed(t, bare); got == "" {
		t.Fatalf("instance without __str__ must print an identity")
	}
}

func Test_Runtime_ClassPrint(t *testing.T) {
	if got := printed(t, greeterClass()); got != "Class Greeter" {
		t.Fatalf("class printed as %q", got)
	}
}

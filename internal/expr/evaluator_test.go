package expr

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func newTestEvaluator() (*Evaluator, *registry.Registry, *MapScope) {
	reg := registry.New()
	scope := NewMapScope()
	return New(reg, scope, nil), reg, scope
}

func TestOperatorPrecedence(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval("5*4-3*2"); got.AsNumber() != 14 {
		t.Errorf(`Eval("5*4-3*2") = %v, want 14`, got)
	}
	if got := ev.Eval("5*(4-3)*2"); got.AsNumber() != 10 {
		t.Errorf(`Eval("5*(4-3)*2") = %v, want 10`, got)
	}
}

func TestDivisionByZero(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval("1/0"); got.AsNumber() != value.InfinitySentinel {
		t.Errorf(`Eval("1/0") = %v, want %v`, got, value.InfinitySentinel)
	}
	if got := ev.Eval("-1/0"); got.AsNumber() != -value.InfinitySentinel {
		t.Errorf(`Eval("-1/0") = %v, want %v`, got, -value.InfinitySentinel)
	}
	if got := ev.Eval("0/0"); got.AsNumber() != 0 {
		t.Errorf(`Eval("0/0") = %v, want 0`, got)
	}
}

func TestRangeOperator(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	got := ev.Eval("2:5")
	if got.Tag != value.Array {
		t.Fatalf(`Eval("2:5") tag = %v, want array`, got.Tag)
	}
	want := []float64{2, 3, 4, 5}
	arr := got.AsArray()
	if len(arr) != len(want) {
		t.Fatalf(`Eval("2:5") len = %d, want %d`, len(arr), len(want))
	}
	for i, w := range want {
		if arr[i].AsNumber() != w {
			t.Errorf("Eval(2:5)[%d] = %v, want %v", i, arr[i], w)
		}
	}

	bad := ev.Eval("5:2")
	if !bad.IsError() {
		t.Errorf(`Eval("5:2") = %v, want error (a>b)`, bad)
	}
}

func TestArrayIndexing(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval("[10,20,30][1]"); got.AsNumber() != 20 {
		t.Errorf(`Eval("[10,20,30][1]") = %v, want 20`, got)
	}
	if got := ev.Eval("[10,20,30][9]"); got.Tag != value.String || got.AsString() != "" {
		t.Errorf(`Eval("[10,20,30][9]") = %v, want empty string`, got)
	}
}

func TestDictLiteralAndDotAccess(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval("{a:1,b:2}.b + 10"); got.AsNumber() != 12 {
		t.Errorf(`Eval("{a:1,b:2}.b + 10") = %v, want 12`, got)
	}

	missing := ev.Eval("{a:1}.z")
	if !missing.IsError() || missing.ErrorCode() != 16 {
		t.Errorf(`Eval("{a:1}.z") = %v, want error code 16`, missing)
	}
}

func TestStringConcatenationAndCoercion(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval(`"ab"+"cd"`); got.Tag != value.String || got.AsString() != "abcd" {
		t.Errorf(`Eval("ab"+"cd") = %v, want "abcd"`, got)
	}
	// "x" has no numeric prefix so coerces to 0; result is number 1.
	if got := ev.Eval(`"x" + 1`); got.Tag != value.Number || got.AsNumber() != 1 {
		t.Errorf(`Eval("x" + 1) = %v, want number 1`, got)
	}
}

func TestAssignmentIsAReference(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	got := ev.Eval("a = 5; a += 3; a == 8")
	if got.AsNumber() != 1 {
		t.Errorf(`Eval("a = 5; a += 3; a == 8") = %v, want 1`, got)
	}
}

func TestLogicalAndBitwise(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	cases := map[string]float64{
		"1 && 0": 0,
		"1 || 0": 1,
		"6 & 3":  2,
		"6 | 1":  7,
		"5 ^ 1":  4,
	}
	for src, want := range cases {
		if got := ev.Eval(src); got.AsNumber() != want {
			t.Errorf("Eval(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestStringComparisonIsLexicographic(t *testing.T) {
	ev, _, _ := newTestEvaluator()

	if got := ev.Eval(`"a" < "b"`); got.AsNumber() != 1 {
		t.Errorf(`Eval("a" < "b") = %v, want 1`, got)
	}
	if got := ev.Eval(`"b" < "a"`); got.AsNumber() != 0 {
		t.Errorf(`Eval("b" < "a") = %v, want 0`, got)
	}
}

func TestStrictEqualityRequiresSameTag(t *testing.T) {
	ev, _, _ := newTestEvaluator()
	if got := ev.Eval(`1 === "1"`); got.AsNumber() != 0 {
		t.Errorf(`Eval(1 === "1") = %v, want 0`, got)
	}
}

func TestUnknownFunctionIsError(t *testing.T) {
	ev, _, _ := newTestEvaluator()
	got := ev.Eval("foo(1)")
	if !got.IsError() || got.ErrorCode() != 3 {
		t.Errorf(`Eval("foo(1)") = %v, want error code 3`, got)
	}
}

func TestBadArityIsError(t *testing.T) {
	ev, reg, _ := newTestEvaluator()
	reg.SetFunction("double", func(args []value.Value) value.Value {
		return value.Num(args[0].AsNumber() * 2)
	}, 1, 1)

	got := ev.Eval("double()")
	if !got.IsError() || got.ErrorCode() != 4 {
		t.Errorf(`Eval("double()") = %v, want error code 4`, got)
	}
	if got := ev.Eval("double(4)"); got.AsNumber() != 8 {
		t.Errorf(`Eval("double(4)") = %v, want 8`, got)
	}
}

func TestDanglingQuoteIsError(t *testing.T) {
	ev, _, _ := newTestEvaluator()
	got := ev.Eval(`"unterminated`)
	if !got.IsError() || got.ErrorCode() != 1 {
		t.Errorf(`Eval(unterminated string) = %v, want error code 1`, got)
	}
}

func TestEmptyExpressionIsError(t *testing.T) {
	ev, _, _ := newTestEvaluator()
	got := ev.Eval("   ")
	if !got.IsError() || got.ErrorCode() != 2 {
		t.Errorf(`Eval("   ") = %v, want error code 2`, got)
	}
}

type mockObject struct {
	props map[string]value.Value
}

func (o *mockObject) GetProperty(name string) (value.Value, bool) {
	v, ok := o.props[name]
	return v, ok
}

func TestObjectPropertyAndMethodDispatch(t *testing.T) {
	ev, reg, _ := newTestEvaluator()
	obj := &mockObject{props: map[string]value.Value{
		"width": value.Num(3),
		"area": value.Fn(func(args []value.Value) value.Value {
			return value.Num(args[0].AsNumber() * args[1].AsNumber())
		}, 2, 2),
	}}
	reg.SetObject("box", obj)

	if got := ev.Eval("box.width"); got.AsNumber() != 3 {
		t.Errorf(`Eval("box.width") = %v, want 3`, got)
	}
	if got := ev.Eval("box.area(4,5)"); got.AsNumber() != 20 {
		t.Errorf(`Eval("box.area(4,5)") = %v, want 20`, got)
	}
}

func TestScriptVariableSurvivesAcrossEvalCalls(t *testing.T) {
	ev, _, scope := newTestEvaluator()
	ev.Eval("x = 41")
	ev.Eval("x = x + 1")
	p, ok := scope.Check("x")
	if !ok || p.AsNumber() != 42 {
		t.Errorf("scope[x] = %v,%v, want 42,true", p, ok)
	}
}

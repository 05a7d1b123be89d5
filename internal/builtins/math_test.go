package builtins

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func callFn(t *testing.T, reg *registry.Registry, name string, args ...value.Value) value.Value {
	t.Helper()
	fn, ok := reg.Function(name)
	if !ok {
		t.Fatalf("function %q not registered", name)
	}
	return fn.Call(args)
}

func TestMathFunctions(t *testing.T) {
	reg := registry.New()
	registerMath(reg)

	tests := []struct {
		name string
		args []value.Value
		want float64
	}{
		{"abs", []value.Value{value.Num(-4)}, 4},
		{"min", []value.Value{value.Num(3), value.Num(1)}, 1},
		{"max", []value.Value{value.Num(3), value.Num(1)}, 3},
		{"min", []value.Value{value.Num(10), value.Num(11), value.Num(48), value.Num(-11), value.Num(15)}, -11},
		{"max", []value.Value{value.Num(10), value.Num(11), value.Num(48), value.Num(-11), value.Num(15)}, 48},
		{"sign", []value.Value{value.Num(-9)}, -1},
		{"sqrt", []value.Value{value.Num(9)}, 3},
		{"pow", []value.Value{value.Num(2), value.Num(10)}, 1024},
		{"floor", []value.Value{value.Num(1.9)}, 1},
		{"ceil", []value.Value{value.Num(1.1)}, 2},
		{"round", []value.Value{value.Num(1.5)}, 2},
		{"trunc", []value.Value{value.Num(-1.9)}, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := callFn(t, reg, tt.name, tt.args...)
			if got.ToFloat() != tt.want {
				t.Errorf("%s(%v) = %v, want %v", tt.name, tt.args, got.ToFloat(), tt.want)
			}
		})
	}
}

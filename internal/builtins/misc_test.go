package builtins

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func TestTypeOfReportsEachTag(t *testing.T) {
	reg := registry.New()
	registerMisc(reg)

	cases := []struct {
		v    value.Value
		want string
	}{
		{value.Num(1), "number"},
		{value.Str("x"), "string"},
		{value.Arr(nil), "array"},
	}
	for _, c := range cases {
		got := callFn(t, reg, "typeof", c.v)
		if got.AsString() != c.want {
			t.Errorf("typeof(%v) = %q, want %q", c.v, got.AsString(), c.want)
		}
	}
}

func TestAssertPassesOnTruthy(t *testing.T) {
	reg := registry.New()
	registerMisc(reg)

	got := callFn(t, reg, "assert", value.Num(1))
	if got.Tag != value.Number || got.ToFloat() != 1 {
		t.Errorf("assert(truthy) = %v, want number 1", got)
	}
}

func TestAssertFailsOnFalsyWithMessage(t *testing.T) {
	reg := registry.New()
	registerMisc(reg)

	got := callFn(t, reg, "assert", value.Num(0), value.Str("counter must be positive"))
	if got.Tag != value.Error {
		t.Fatalf("assert(falsy) = %v, want an error Value", got)
	}
}

package builtins

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func TestStringLenAcrossTags(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	if got := callFn(t, reg, "len", value.Str("héllo")); got.ToFloat() != 5 {
		t.Errorf("len(string) = %v, want 5", got.ToFloat())
	}
	if got := callFn(t, reg, "len", value.Arr([]value.Value{value.Num(1), value.Num(2)})); got.ToFloat() != 2 {
		t.Errorf("len(array) = %v, want 2", got.ToFloat())
	}
}

func TestStringCaseAndTrim(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	if got := callFn(t, reg, "upper", value.Str("abc")); got.AsString() != "ABC" {
		t.Errorf("upper = %q", got.AsString())
	}
	if got := callFn(t, reg, "lower", value.Str("ABC")); got.AsString() != "abc" {
		t.Errorf("lower = %q", got.AsString())
	}
	if got := callFn(t, reg, "trim", value.Str("  hi  ")); got.AsString() != "hi" {
		t.Errorf("trim = %q", got.AsString())
	}
}

func TestStringSubstringClampsBounds(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	got := callFn(t, reg, "substr", value.Str("hello"), value.Num(2), value.Num(100))
	if got.AsString() != "llo" {
		t.Errorf("substr overrun = %q, want %q", got.AsString(), "llo")
	}

	got = callFn(t, reg, "substr", value.Str("hello"), value.Num(-5))
	if got.AsString() != "hello" {
		t.Errorf("substr negative start = %q, want %q", got.AsString(), "hello")
	}
}

func TestStringSubstrSpecExample(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	got := callFn(t, reg, "substr", value.Str("--Str"+"ing--"), value.Num(2), value.Num(6))
	if got.AsString() != "String" {
		t.Errorf("substr(\"--String--\",2,6) = %q, want %q", got.AsString(), "String")
	}
}

func TestStringSplitJoinRoundTrip(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	parts := callFn(t, reg, "split", value.Str("a,b,c"), value.Str(","))
	if len(parts.AsArray()) != 3 {
		t.Fatalf("split produced %d parts, want 3", len(parts.AsArray()))
	}

	joined := callFn(t, reg, "join", parts, value.Str("-"))
	if joined.AsString() != "a-b-c" {
		t.Errorf("join = %q, want %q", joined.AsString(), "a-b-c")
	}
}

func TestStringContainsAndIndexOf(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	if got := callFn(t, reg, "contains", value.Str("hello world"), value.Str("world")); got.ToFloat() != 1 {
		t.Errorf("contains = %v, want true", got.ToFloat())
	}
	if got := callFn(t, reg, "indexof", value.Str("hello world"), value.Str("world")); got.ToFloat() != 6 {
		t.Errorf("indexof = %v, want 6", got.ToFloat())
	}
}

func TestStringReplaceAndRepeat(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	if got := callFn(t, reg, "replace", value.Str("ababab"), value.Str("a"), value.Str("x")); got.AsString() != "xbxbxb" {
		t.Errorf("replace = %q", got.AsString())
	}
	if got := callFn(t, reg, "repeat", value.Str("ab"), value.Num(3)); got.AsString() != "ababab" {
		t.Errorf("repeat = %q", got.AsString())
	}
}

func TestSprintfCoercesVerbs(t *testing.T) {
	reg := registry.New()
	registerString(reg)

	got := callFn(t, reg, "sprintf", value.Str("%.2f"), value.Num(5.0/3.0))
	if got.AsString() != "1.67" {
		t.Errorf("sprintf(%%.2f, 5/3) = %q, want %q", got.AsString(), "1.67")
	}

	got = callFn(t, reg, "sprintf", value.Str("%d-%s"), value.Num(7), value.Str("ok"))
	if got.AsString() != "7-ok" {
		t.Errorf("sprintf(%%d-%%s, 7, ok) = %q, want %q", got.AsString(), "7-ok")
	}
}

package builtins

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func TestJSONGetScalarsAndNested(t *testing.T) {
	reg := registry.New()
	registerJSON(reg)

	doc := value.Str(`{"name":"ada","age":36,"tags":["x","y"]}`)

	if got := callFn(t, reg, "jsonget", doc, value.Str("name")); got.AsString() != "ada" {
		t.Errorf("jsonget name = %q", got.AsString())
	}
	if got := callFn(t, reg, "jsonget", doc, value.Str("age")); got.ToFloat() != 36 {
		t.Errorf("jsonget age = %v", got.ToFloat())
	}
	if got := callFn(t, reg, "jsonget", doc, value.Str("tags.1")); got.AsString() != "y" {
		t.Errorf("jsonget tags.1 = %q", got.AsString())
	}
}

func TestJSONSetPatchesDocument(t *testing.T) {
	reg := registry.New()
	registerJSON(reg)

	doc := value.Str(`{"name":"ada"}`)
	patched := callFn(t, reg, "jsonset", doc, value.Str("name"), value.Str("grace"))

	got := callFn(t, reg, "jsonget", patched, value.Str("name"))
	if got.AsString() != "grace" {
		t.Errorf("jsonget after jsonset = %q, want %q", got.AsString(), "grace")
	}
}

func TestJSONParseInvalidDocumentReturnsError(t *testing.T) {
	reg := registry.New()
	registerJSON(reg)

	got := callFn(t, reg, "jsonparse", value.Str("{not json"))
	if got.Tag != value.Error {
		t.Errorf("jsonparse on garbage = %v, want an error Value", got)
	}
}

func TestJSONStringifyRoundTripsArray(t *testing.T) {
	reg := registry.New()
	registerJSON(reg)

	arr := value.Arr([]value.Value{value.Num(1), value.Str("two"), value.Num(3)})
	doc := callFn(t, reg, "jsonstringify", arr)

	parsed := callFn(t, reg, "jsonparse", doc)
	if parsed.Tag != value.Array || len(parsed.AsArray()) != 3 {
		t.Fatalf("round trip through jsonstringify/jsonparse lost the array: %v", parsed)
	}
	if parsed.AsArray()[1].AsString() != "two" {
		t.Errorf("round trip element 1 = %q, want %q", parsed.AsArray()[1].AsString(), "two")
	}
}

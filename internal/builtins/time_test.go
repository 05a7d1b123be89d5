package builtins

import (
	"testing"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

func TestTimeFormatAndParseRoundTrip(t *testing.T) {
	reg := registry.New()
	registerTime(reg)

	layout := value.Str("2006-01-02")
	unix := value.Num(1700000000) // 2023-11-14 22:13:20 UTC

	formatted := callFn(t, reg, "formattime", unix, layout)
	if formatted.AsString() != "2023-11-14" {
		t.Fatalf("formattime = %q, want %q", formatted.AsString(), "2023-11-14")
	}

	parsed := callFn(t, reg, "parsetime", formatted, layout)
	reformatted := callFn(t, reg, "formattime", parsed, layout)
	if reformatted.AsString() != formatted.AsString() {
		t.Errorf("round trip mismatch: %q != %q", reformatted.AsString(), formatted.AsString())
	}
}

func TestTimeParseInvalidInputReturnsZero(t *testing.T) {
	reg := registry.New()
	registerTime(reg)

	got := callFn(t, reg, "parsetime", value.Str("not a date"), value.Str("2006-01-02"))
	if got.ToFloat() != 0 {
		t.Errorf("parsetime on garbage = %v, want 0", got.ToFloat())
	}
}

func TestTimeNowReturnsPositiveNumber(t *testing.T) {
	reg := registry.New()
	registerTime(reg)

	got := callFn(t, reg, "now")
	if got.Tag != value.Number || got.ToFloat() <= 0 {
		t.Errorf("now() = %v, want a positive number", got)
	}
}

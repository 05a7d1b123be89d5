package errors

import (
	"strings"
	"testing"
)

func TestFormatWithFileHeaderAndCaret(t *testing.T) {
	e := New(BadIndex, Position{Line: 2, Column: 5}, "index out of range", "a = 1\nb = [1,2][9]", "script.txt")
	out := e.Format(false)

	if !strings.Contains(out, "Error in script.txt:2:5") {
		t.Fatalf("Format() missing header:\n%s", out)
	}
	if !strings.Contains(out, "b = [1,2][9]") {
		t.Fatalf("Format() missing source line:\n%s", out)
	}
	if !strings.Contains(out, "^") {
		t.Fatalf("Format() missing caret:\n%s", out)
	}
	if !strings.Contains(out, "index out of range") {
		t.Fatalf("Format() missing message:\n%s", out)
	}
}

func TestFormatWithoutFileUsesAtLine(t *testing.T) {
	e := New(ParseFailure, Position{Line: 1, Column: 1}, "parse failure", "1 +", "")
	out := e.Format(false)
	if !strings.HasPrefix(out, "Error at line 1:1\n") {
		t.Fatalf("Format() = %q, want prefix \"Error at line 1:1\"", out)
	}
}

func TestFormatErrorsNumbersMultiple(t *testing.T) {
	errs := []*CompilerError{
		New(UnknownFunction, Position{Line: 1, Column: 1}, "unknown function foo", "", "x.txt"),
		New(BadArity, Position{Line: 2, Column: 1}, "bad arity for bar", "", "x.txt"),
	}
	out := FormatErrors(errs, false)
	if !strings.Contains(out, "2 error(s)") {
		t.Fatalf("FormatErrors() missing count:\n%s", out)
	}
	if !strings.Contains(out, "[Error 1 of 2]") || !strings.Contains(out, "[Error 2 of 2]") {
		t.Fatalf("FormatErrors() missing numbering:\n%s", out)
	}
}

func TestFormatErrorsSingleOmitsNumbering(t *testing.T) {
	errs := []*CompilerError{New(InvalidArgument, Position{Line: 1, Column: 1}, "bad arg", "", "")}
	out := FormatErrors(errs, false)
	if strings.Contains(out, "Error 1 of") {
		t.Fatalf("FormatErrors() with one error should not number it:\n%s", out)
	}
}

func TestStackTraceTopAndString(t *testing.T) {
	st := StackTrace{
		{Position: Position{Line: 1, Column: 1}, FunctionName: "outer", FileName: "a.txt"},
		{Position: Position{Line: 5, Column: 3}, FunctionName: "inner", FileName: "a.txt"},
	}
	if top := st.Top(); top == nil || top.FunctionName != "inner" {
		t.Fatalf("Top() = %v, want inner", top)
	}
	if st.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", st.Depth())
	}
	s := st.String()
	if strings.Index(s, "inner") > strings.Index(s, "outer") {
		t.Fatalf("String() should list most recent frame first:\n%s", s)
	}
}

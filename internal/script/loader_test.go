package script

import "testing"

func TestLoadComputesLevelsAndTypes(t *testing.T) {
	src := "if x > 0\n  y = 1\nelse\n  y = 2\n"
	p, err := Load(src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(p.Lines) != 4 {
		t.Fatalf("len(Lines) = %d, want 4", len(p.Lines))
	}
	if p.Lines[0].Type != TypeIf || p.Lines[0].Level != 0 {
		t.Errorf("line 1 = %+v, want if at level 0", p.Lines[0])
	}
	if p.Lines[1].Type != TypeExpr || p.Lines[1].Level != 1 {
		t.Errorf("line 2 = %+v, want expr at level 1", p.Lines[1])
	}
	if p.Lines[2].Type != TypeElse || p.Lines[2].Level != 0 {
		t.Errorf("line 3 = %+v, want else at level 0", p.Lines[2])
	}
}

func TestLoadRejectsBadIndentMultiple(t *testing.T) {
	_, err := Load("if x > 0\n   y = 1\n", 2)
	if err == nil {
		t.Fatal("Load() err = nil, want indentation error")
	}
}

func TestLoadRejectsEmptyBlock(t *testing.T) {
	_, err := Load("if x > 0\ny = 1\n", 2)
	if err == nil {
		t.Fatal("Load() err = nil, want empty-block error")
	}
}

func TestLoadToleratesBlankLineInsideBlock(t *testing.T) {
	src := "if x > 0\n\n  y = 1\n"
	p, err := Load(src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v, want blank line inside a block to be harmless", err)
	}
	if p.Lines[0].NumChildLines != 2 {
		t.Errorf("NumChildLines = %d, want 2 (blank + body)", p.Lines[0].NumChildLines)
	}
}

func TestLoadRejectsDefNotAtTopLevel(t *testing.T) {
	src := "if x > 0\n  def foo()\n    return 1\n"
	_, err := Load(src, 2)
	if err == nil {
		t.Fatal("Load() err = nil, want def-not-top-level error")
	}
}

func TestLoadParsesDefHeaderAndRegistersFunction(t *testing.T) {
	src := "def add(a, b)\n  return a + b\n"
	p, err := Load(src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	idx, ok := p.Functions["add"]
	if !ok || idx != 0 {
		t.Fatalf("Functions[add] = %d,%v, want 0,true", idx, ok)
	}
	if got := p.Lines[0].FuncArgs; len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("FuncArgs = %v, want [a b]", got)
	}
}

func TestLoadRejectsDuplicateFunctionNames(t *testing.T) {
	src := "def f()\n  return 1\ndef f()\n  return 2\n"
	_, err := Load(src, 2)
	if err == nil {
		t.Fatal("Load() err = nil, want duplicate-function error")
	}
}

func TestLoadRejectsDuplicateArgNames(t *testing.T) {
	_, err := Load("def f(a, a)\n  return a\n", 2)
	if err == nil {
		t.Fatal("Load() err = nil, want duplicate-argument error")
	}
}

func TestLoadParsesForHeader(t *testing.T) {
	src := "for i in 1:3\n  x = i\n"
	p, err := Load(src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if p.Lines[0].ForVar != "i" {
		t.Errorf("ForVar = %q, want i", p.Lines[0].ForVar)
	}
	if got := p.Lines[0].ExprText(3); got != "1:3" {
		t.Errorf("ExprText(3) = %q, want 1:3", got)
	}
}

func TestLoadRejectsGlobalOutsideDef(t *testing.T) {
	_, err := Load("global x\n", 2)
	if err == nil {
		t.Fatal("Load() err = nil, want global-outside-def error")
	}
}

func TestLoadAcceptsGlobalInsideDef(t *testing.T) {
	src := "def f()\n  global x, y\n  return x + y\n"
	_, err := Load(src, 2)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadRejectsElseifAfterElse(t *testing.T) {
	src := "if x > 0\n  y = 1\nelse\n  y = 2\nelseif x < 0\n  y = 3\n"
	_, err := Load(src, 2)
	if err == nil {
		t.Fatal("Load() err = nil, want elseif-after-else error")
	}
}

func TestLoadRejectsReservedWordAsArgName(t *testing.T) {
	_, err := Load("def f(for)\n  return 1\n", 2)
	if err == nil {
		t.Fatal("Load() err = nil, want reserved-word argument error")
	}
}

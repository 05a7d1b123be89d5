package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything it wrote, the way the teacher's cmd tests capture output
// around os.Exit-free command handlers.
func captureStdout(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() error = %v", err)
	}
	os.Stdout = w

	fnErr := fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String(), fnErr
}

func TestEvalCommandGoldenOutput(t *testing.T) {
	cases := []struct {
		name string
		expr string
	}{
		{"arithmetic", "1 + 2 * 3"},
		{"string_concat", `upper("hi") + "!"`},
		{"array_index", "[1,2,3][1]"},
		{"sprintf", `sprintf("%.2f", 5/3)`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := captureStdout(t, func() error {
				return runEval(evalCmd, []string{tc.expr})
			})
			if err != nil {
				t.Fatalf("runEval(%q) error = %v", tc.expr, err)
			}
			snaps.MatchSnapshot(t, tc.name+"_output", out)
		})
	}
}

func TestEvalCommandReportsFailureWithoutExiting(t *testing.T) {
	out, err := captureStdout(t, func() error {
		return runEval(evalCmd, []string{"1 +"})
	})
	if err == nil {
		t.Fatal("runEval(\"1 +\") error = nil, want evaluation failure")
	}
	snaps.MatchSnapshot(t, "eval_error_stdout", out)
}

func TestRunCommandGoldenOutput(t *testing.T) {
	src := "total = 0\n" +
		"for i in 1:5\n" +
		"  total = total + i\n" +
		"return total\n"

	oldInline := runInline
	runInline = src
	defer func() { runInline = oldInline }()

	out, err := captureStdout(t, func() error {
		return runScript(runCmd, nil)
	})
	if err != nil {
		t.Fatalf("runScript() error = %v", err)
	}
	snaps.MatchSnapshot(t, "run_output", out)
}

func TestLexCommandGoldenOutput(t *testing.T) {
	oldInline := lexInline
	oldShowLine := showLineNo
	lexInline = "x = 1 + 2\nreturn x\n"
	showLineNo = true
	defer func() {
		lexInline = oldInline
		showLineNo = oldShowLine
	}()

	out, err := captureStdout(t, func() error {
		return lexScript(lexCmd, nil)
	})
	if err != nil {
		t.Fatalf("lexScript() error = %v", err)
	}
	snaps.MatchSnapshot(t, "lex_output", out)
}

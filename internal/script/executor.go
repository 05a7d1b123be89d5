package script

import (
	"errors"
	"fmt"
	"time"

	"github.com/mtharden/vellum/internal/expr"
	cerrors "github.com/mtharden/vellum/pkg/errors"
	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// signal is what a block of lines hands back to its caller: either
// "keep going" or one of the control-flow exits a block can't resolve
// itself (§4.8's NEXT_LINE/ABORT_LOOP/CONTINUE_LOOP/END_OF_FN sentinels).
type signal int

const (
	sigNext signal = iota
	sigBreak
	sigContinue
	sigReturn
)

// maxCallDepth bounds script-function re-entrancy (component I); it
// exists to turn runaway recursion into a reported error instead of a
// stack overflow.
const maxCallDepth = 256

var (
	errScriptStopped    = errors.New("script stopped")
	errMaxLinesExceeded = errors.New("script exceeded its maximum executed-line count")
	errMaxTimeExceeded  = errors.New("script exceeded its maximum wall-clock budget")
)

// ScriptError wraps a runtime error with the call stack active when it
// was first detected (§6.4, §7): an unhandled script error surfaces the
// chain of script-defined function calls that led to it, the way a
// host debugging a failed run would want to see it.
type ScriptError struct {
	Err   error
	Line  int
	Stack cerrors.StackTrace
}

func (e *ScriptError) Error() string {
	msg := fmt.Sprintf("line %d: %s", e.Line, e.Err)
	if len(e.Stack) > 0 {
		msg += "\n" + e.Stack.String()
	}
	return msg
}

func (e *ScriptError) Unwrap() error { return e.Err }

// frame is one call's or block's variable bindings, plus the set of
// names this frame promoted to the outermost frame via `global` (§4.9).
// isDef marks a frame pushed by a function call (§4.8 "def frame"):
// variable lookups stop at a def frame instead of permeating into the
// caller, unless the name was promoted via `global`. Frames pushed for
// if/elseif/else/while/for bodies are not def frames, so a read that
// misses in a block frame keeps walking into its enclosing scope.
type frame struct {
	vars        map[string]*value.Value
	globalNames map[string]bool
	isDef       bool
}

func newFrame(isDef bool) *frame {
	return &frame{vars: make(map[string]*value.Value), globalNames: make(map[string]bool), isDef: isDef}
}

func (f *frame) ref(name string) *value.Value {
	p, ok := f.vars[name]
	if !ok {
		v := value.Num(0)
		p = &v
		f.vars[name] = p
	}
	return p
}

func (f *frame) check(name string) (*value.Value, bool) {
	p, ok := f.vars[name]
	return p, ok
}

// execScope adapts an Executor's current frame to expr.Scope.
type execScope struct{ ex *Executor }

func (s execScope) Ref(name string) *value.Value          { return s.ex.ref(name) }
func (s execScope) Check(name string) (*value.Value, bool) { return s.ex.check(name) }

// Executor walks a loaded Program's line array (§4.8), threading
// variable scope, resource bounds, and the call bridge back into the
// expression evaluator for every condition, assignment, and bare
// expression it runs.
type Executor struct {
	reg  *registry.Registry
	prog *Program
	file string

	frames []*frame

	// stack is the call chain of script-defined functions currently
	// active, pushed/popped in lockstep with the def frames CallFunction
	// installs; currentLine is the line most recently entered, used to
	// attribute each stack entry to its call site.
	stack       cerrors.StackTrace
	currentLine int

	linesExecuted int64
	startTime     time.Time
	stopRequested bool
	runtimeErr    error
}

// NewExecutor creates an Executor for prog, bound to reg for
// constants/functions/objects and resource limits. The outermost frame
// (index 0) holds top-level variables and survives function calls as
// the target of `global`.
func NewExecutor(reg *registry.Registry, prog *Program) *Executor {
	return &Executor{reg: reg, prog: prog, frames: []*frame{newFrame(false)}}
}

// SetFile names the source for positioned error headers in any
// CompilerError the expression evaluator records.
func (ex *Executor) SetFile(name string) { ex.file = name }

// Stop requests cooperative termination: checked at the start of each
// subsequent line, not mid-expression (§4.10 stop_script).
func (ex *Executor) Stop() { ex.stopRequested = true }

// LinesExecuted returns the number of statement lines run so far.
func (ex *Executor) LinesExecuted() int64 { return ex.linesExecuted }

func (ex *Executor) ref(name string) *value.Value {
	if p, ok := ex.find(name); ok {
		return p
	}
	return ex.frames[len(ex.frames)-1].ref(name)
}

func (ex *Executor) check(name string) (*value.Value, bool) {
	return ex.find(name)
}

// find implements §4.9's read rule: walk frames top-to-bottom, stopping
// at a def frame unless the name was promoted to it via `global`, in
// which case the search resumes at the outermost (bottom) frame.
func (ex *Executor) find(name string) (*value.Value, bool) {
	for i := len(ex.frames) - 1; i >= 0; i-- {
		f := ex.frames[i]
		if p, ok := f.check(name); ok {
			return p, true
		}
		if f.isDef {
			if f.globalNames[name] {
				return ex.frames[0].check(name)
			}
			return nil, false
		}
	}
	return nil, false
}

// pushBlock opens a new variable scope for an if/elseif/else/while/for
// body (§3.4, §4.8), nested lexically inside whatever frame is
// currently on top. popBlock discards it, so a name first assigned
// inside the block does not leak into the enclosing scope.
func (ex *Executor) pushBlock() { ex.frames = append(ex.frames, newFrame(false)) }

func (ex *Executor) popBlock() { ex.frames = ex.frames[:len(ex.frames)-1] }

// evaluator builds a fresh expression evaluator bound to this
// executor's current frame and call bridge. Evaluator carries no
// state of its own beyond one Eval call, so handing out a new one per
// line sidesteps any cursor aliasing between a re-entrant script-
// function call and the expression that invoked it (§5).
func (ex *Executor) evaluator() *expr.Evaluator {
	ev := expr.New(ex.reg, execScope{ex}, ex)
	ev.SetFile(ex.file)
	return ev
}

func (ex *Executor) checkLimits() error {
	if ex.runtimeErr != nil {
		return ex.runtimeErr
	}
	if ex.stopRequested {
		return errScriptStopped
	}
	if ex.linesExecuted >= ex.reg.MaxLines() {
		return errMaxLinesExceeded
	}
	if time.Since(ex.startTime) > time.Duration(ex.reg.MaxMicroseconds())*time.Microsecond {
		return errMaxTimeExceeded
	}
	return nil
}

// Run executes the program from its first top-level line through the
// end, returning the value of a top-level `return` if one ran, or the
// number 0 otherwise.
func (ex *Executor) Run() (value.Value, error) {
	ex.startTime = time.Now()
	ex.linesExecuted = 0
	ex.runtimeErr = nil
	ex.stack = nil

	if len(ex.prog.Lines) == 0 {
		return value.Num(0), nil
	}
	sig, rv, err := ex.runBlock(ex.prog.Lines, 0, len(ex.prog.Lines)-1)
	if err != nil {
		return value.Value{}, err
	}
	if ex.runtimeErr != nil {
		return value.Value{}, ex.runtimeErr
	}
	if sig == sigReturn {
		return rv, nil
	}
	return value.Num(0), nil
}

// CallByName invokes a loaded script function from host code, as
// opposed to CallFunction, which is the component-I hook the
// expression evaluator uses while parsing a call expression.
func (ex *Executor) CallByName(name string, args []value.Value) (value.Value, error) {
	v, ok := ex.CallFunction(name, args)
	if !ok {
		return value.Value{}, fmt.Errorf("script: no such function %q", name)
	}
	if ex.runtimeErr != nil {
		return value.Value{}, ex.runtimeErr
	}
	return v, nil
}

// CallFunction implements expr.FuncCaller: it re-enters the executor
// to run a user-defined function's body, binding args to its
// parameter names positionally (missing trailing args default to 0,
// §4.9) and yielding its `return` value, or 0 if none ran.
func (ex *Executor) CallFunction(name string, args []value.Value) (value.Value, bool) {
	idx, ok := ex.prog.Functions[name]
	if !ok {
		return value.Value{}, false
	}
	if len(ex.frames) >= maxCallDepth {
		if ex.runtimeErr == nil {
			ex.runtimeErr = fmt.Errorf("script: call depth exceeded calling %s", name)
		}
		ex.stopRequested = true
		return value.Num(0), true
	}

	def := ex.prog.Lines[idx]
	f := newFrame(true)
	for pos, argName := range def.FuncArgs {
		v := value.Num(0)
		if pos < len(args) {
			v = args[pos]
		}
		bound := v
		f.vars[argName] = &bound
	}
	ex.frames = append(ex.frames, f)
	ex.stack = append(ex.stack, cerrors.StackFrame{
		Position:     cerrors.Position{Line: ex.currentLine},
		FunctionName: name,
		FileName:     ex.file,
	})
	defer func() {
		ex.frames = ex.frames[:len(ex.frames)-1]
		ex.stack = ex.stack[:len(ex.stack)-1]
	}()

	bodyStart := idx + 1
	bodyEnd := idx + def.NumChildLines
	sig, rv, err := ex.runBlock(ex.prog.Lines, bodyStart, bodyEnd)
	if err != nil {
		if ex.runtimeErr == nil {
			ex.runtimeErr = err
		}
		return value.Num(0), true
	}
	if sig == sigReturn {
		return rv, true
	}
	return value.Num(0), true
}

// runBlock executes lines[start:end] inclusive in order, stopping
// early on any signal a contained break/continue/return produces.
func (ex *Executor) runBlock(lines []*Line, start, end int) (signal, value.Value, error) {
	i := start
	for i <= end {
		sig, rv, next, err := ex.runLine(lines, i)
		if err != nil {
			return sigNext, value.Value{}, ex.wrapError(err, lines[i])
		}
		if sig != sigNext {
			return sig, rv, nil
		}
		i = next
	}
	return sigNext, value.Value{}, nil
}

// wrapError attaches the call stack active when err was first detected
// (§6.4, §7), snapshotting ex.stack before any enclosing CallFunction's
// deferred pop has a chance to shrink it. Already-wrapped errors pass
// through unchanged, so the innermost call site wins.
func (ex *Executor) wrapError(err error, at *Line) error {
	if se, ok := err.(*ScriptError); ok {
		return se
	}
	stack := make(cerrors.StackTrace, len(ex.stack))
	copy(stack, ex.stack)
	return &ScriptError{Err: err, Line: at.LineNo, Stack: stack}
}

// runLine executes the single statement at lines[i], returning the
// index of the next line runBlock should visit (which, for a block
// header, is past its entire body and any elseif/else chain).
func (ex *Executor) runLine(lines []*Line, i int) (signal, value.Value, int, error) {
	if err := ex.checkLimits(); err != nil {
		return sigNext, value.Value{}, i, err
	}
	ex.linesExecuted++

	l := lines[i]
	ex.currentLine = l.LineNo
	bodyEnd := i + l.NumChildLines

	switch l.Type {
	case TypeBlank:
		return sigNext, value.Value{}, i + 1, nil

	case TypeExpr:
		ex.evaluator().Eval(Join(l.Tokens))
		return sigNext, value.Value{}, i + 1, nil

	case TypeGlobal:
		cur := ex.frames[len(ex.frames)-1]
		for _, name := range globalNames(l.Tokens) {
			cur.globalNames[name] = true
		}
		return sigNext, value.Value{}, i + 1, nil

	case TypeReturn:
		var rv value.Value
		if len(l.Tokens) > 1 {
			rv = ex.evaluator().Eval(l.ExprText(1))
		}
		return sigReturn, rv, i + 1, nil

	case TypeBreak:
		return sigBreak, value.Value{}, i + 1, nil

	case TypeContinue:
		return sigContinue, value.Value{}, i + 1, nil

	case TypeDef:
		// Encountered during ordinary execution, a def is only a
		// declaration — already indexed at load time — so its body is
		// skipped rather than run.
		return sigNext, value.Value{}, bodyEnd + 1, nil

	case TypeIf:
		return ex.runIfChain(lines, i)

	case TypeWhile:
		return ex.runWhile(lines, i)

	case TypeFor:
		return ex.runFor(lines, i)
	}

	return sigNext, value.Value{}, i + 1, nil
}

// runIfChain walks an if/elseif*/else* chain starting at i, running
// the first branch whose condition is truthy (else always matches),
// then skipping past the remainder of the chain (§4.8).
func (ex *Executor) runIfChain(lines []*Line, i int) (signal, value.Value, int, error) {
	idx := i
	for {
		l := lines[idx]
		bodyStart := idx + 1
		bodyEnd := idx + l.NumChildLines

		matched := l.Type == TypeElse
		if !matched {
			cond := ex.evaluator().Eval(l.ExprText(1))
			matched = cond.Truthy()
		}

		if matched {
			ex.pushBlock()
			sig, rv, err := ex.runBlock(lines, bodyStart, bodyEnd)
			ex.popBlock()
			if err != nil {
				return sigNext, value.Value{}, 0, err
			}
			return sig, rv, ex.skipRestOfChain(lines, bodyEnd+1), nil
		}

		next := bodyEnd + 1
		if next < len(lines) && (lines[next].Type == TypeElseIf || lines[next].Type == TypeElse) {
			idx = next
			continue
		}
		return sigNext, value.Value{}, next, nil
	}
}

// skipRestOfChain returns the index past any elseif/else siblings
// still following from (used once a branch earlier in the chain has
// already run).
func (ex *Executor) skipRestOfChain(lines []*Line, from int) int {
	idx := from
	for idx < len(lines) && (lines[idx].Type == TypeElseIf || lines[idx].Type == TypeElse) {
		idx = idx + 1 + lines[idx].NumChildLines
	}
	return idx
}

func (ex *Executor) runWhile(lines []*Line, i int) (signal, value.Value, int, error) {
	l := lines[i]
	bodyStart := i + 1
	bodyEnd := i + l.NumChildLines
	next := bodyEnd + 1

	for {
		if err := ex.checkLimits(); err != nil {
			return sigNext, value.Value{}, 0, err
		}
		cond := ex.evaluator().Eval(l.ExprText(1))
		if !cond.Truthy() {
			return sigNext, value.Value{}, next, nil
		}

		ex.pushBlock()
		sig, rv, err := ex.runBlock(lines, bodyStart, bodyEnd)
		ex.popBlock()
		if err != nil {
			return sigNext, value.Value{}, 0, err
		}
		switch sig {
		case sigBreak:
			return sigNext, value.Value{}, next, nil
		case sigReturn:
			return sigReturn, rv, next, nil
		}
	}
}

// runFor iterates l.ForVar over the iteration items of its `in`
// expression — elements for an array (including a `:` range), runes
// for a string, and values in insertion order for a dict (§4.8).
func (ex *Executor) runFor(lines []*Line, i int) (signal, value.Value, int, error) {
	l := lines[i]
	bodyStart := i + 1
	bodyEnd := i + l.NumChildLines
	next := bodyEnd + 1

	iterVal := ex.evaluator().Eval(l.ExprText(3))
	if iterVal.IsError() {
		return sigNext, value.Value{}, 0, fmt.Errorf("for %s in: %s", l.ForVar, iterVal.ErrorMessage())
	}
	items, ok := iterationItems(iterVal)
	if !ok {
		return sigNext, value.Value{}, 0, fmt.Errorf("for %s in: value of type %s is not iterable", l.ForVar, iterVal.Tag)
	}

	for _, item := range items {
		if err := ex.checkLimits(); err != nil {
			return sigNext, value.Value{}, 0, err
		}

		ex.pushBlock()
		*ex.ref(l.ForVar) = item
		sig, rv, err := ex.runBlock(lines, bodyStart, bodyEnd)
		ex.popBlock()
		if err != nil {
			return sigNext, value.Value{}, 0, err
		}
		switch sig {
		case sigBreak:
			return sigNext, value.Value{}, next, nil
		case sigReturn:
			return sigReturn, rv, next, nil
		}
	}
	return sigNext, value.Value{}, next, nil
}

// iterationItems flattens any of the four iterable tags into a plain
// slice of Values the for-loop can walk uniformly.
func iterationItems(v value.Value) ([]value.Value, bool) {
	switch v.Tag {
	case value.Array:
		return v.AsArray(), true
	case value.String:
		s := v.AsString()
		items := make([]value.Value, 0, len(s))
		for _, r := range s {
			items = append(items, value.Str(string(r)))
		}
		return items, true
	case value.Dict:
		entries := v.DictEntries()
		items := make([]value.Value, len(entries))
		for i, e := range entries {
			items[i] = e.Value
		}
		return items, true
	default:
		return nil, false
	}
}

// globalNames pulls the comma-separated name list out of a `global`
// line's tokens (["global", "x", ",", "y"] -> ["x", "y"]).
func globalNames(tokens []string) []string {
	var names []string
	for i := 1; i < len(tokens); i += 2 {
		names = append(names, tokens[i])
	}
	return names
}

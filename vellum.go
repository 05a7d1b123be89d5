// Package vellum is the embeddable tagged-value expression and script
// engine described by the specification: a single Value type flowing
// through a precedence-climbing expression evaluator and a tree-walking
// script interpreter, with a host-configurable registry of constants,
// functions, and objects (§2, §3.2).
package vellum

import (
	"github.com/mtharden/vellum/internal/builtins"
	"github.com/mtharden/vellum/internal/expr"
	"github.com/mtharden/vellum/internal/script"
	"github.com/mtharden/vellum/pkg/errors"
	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// Option configures an Engine at construction time; it is the
// registry's own Option type, re-exported here so callers need only
// import the top-level package (§6.1 configuration surface).
type Option = registry.Option

var (
	WithMathFns         = registry.WithMathFns
	WithTimeFns         = registry.WithTimeFns
	WithStringFns       = registry.WithStringFns
	WithMiscFns         = registry.WithMiscFns
	WithDisabledFns     = registry.WithDisabledFns
	WithVariableFn      = registry.WithVariableFn
	WithOverloadFn      = registry.WithOverloadFn
	WithLegacyBooleans  = registry.WithLegacyBooleans
	WithMaxLines        = registry.WithMaxLines
	WithMaxMicroseconds = registry.WithMaxMicroseconds
	WithIndentSpaces    = registry.WithIndentSpaces
)

// Engine is one configured instance of the interpreter: a registry plus
// the persistent top-level scope that successive Eval calls share, the
// way a host's REPL or long-lived script session would (§2).
type Engine struct {
	reg      *registry.Registry
	scope    *expr.MapScope
	file     string
	lastEval *expr.Evaluator
}

// New builds an Engine, installing whichever built-in function
// families opts enabled (§6.1 enablemathsfns/enabletimefns/
// enablestringfns/enablemiscfns) and then applying disabledfns.
func New(opts ...Option) *Engine {
	reg := registry.New(opts...)
	builtins.RegisterFromRegistry(reg)
	e := &Engine{reg: reg, scope: expr.NewMapScope()}
	reg.SetEngine(e)
	return e
}

// SetFile names the source file used in positioned error headers
// (§10.1); empty by default.
func (e *Engine) SetFile(name string) { e.file = name }

// Registry exposes the underlying registry for hosts that need direct
// access beyond RegisterFunction/RegisterConstant/RegisterObject, e.g.
// FunctionNames for a help command.
func (e *Engine) Registry() *registry.Registry { return e.reg }

// RegisterFunction installs a host function under name, callable from
// both expressions and scripts.
func (e *Engine) RegisterFunction(name string, call value.Callable, minArity, maxArity int) error {
	return e.reg.SetFunction(name, call, minArity, maxArity)
}

// RegisterConstant installs a named constant.
func (e *Engine) RegisterConstant(name string, v value.Value) error {
	return e.reg.SetConstant(name, v)
}

// RegisterObject installs a named host object (§3.3 object contract).
func (e *Engine) RegisterObject(name string, h value.ObjectHandle) error {
	return e.reg.SetObject(name, h)
}

// Eval evaluates a single expression (§4.3, §6.2) against the engine's
// persistent top-level scope: a prior Eval's assignments are visible to
// the next one, the way successive lines typed at a REPL would be.
// Failure is reported through the returned Value's error tag, not a Go
// error — the core never throws (§7).
func (e *Engine) Eval(source string) value.Value {
	ev := expr.New(e.reg, e.scope, nil)
	ev.SetFile(e.file)
	v := ev.Eval(source)
	e.lastEval = ev
	return v
}

// LastEvalError exposes the CompilerError behind the most recent
// Eval's error Value, for hosts that want the full positioned
// diagnostic (§10.1) rather than just an error code. Returns nil if
// Eval has not been called, or succeeded.
func (e *Engine) LastEvalError() *errors.CompilerError {
	if e.lastEval == nil {
		return nil
	}
	return e.lastEval.LastError()
}

// Load parses source into a Program without running it (§4.7), so a
// host can validate a script before deciding to execute it.
func (e *Engine) Load(source string) (*script.Program, error) {
	return script.Load(source, e.reg.IndentSpaces())
}

// Run loads and executes source as a script (§4.8), returning the
// top-level return value (or number 0 if the script fell off the end)
// and any load/runtime error.
func (e *Engine) Run(source string) (value.Value, error) {
	prog, err := e.Load(source)
	if err != nil {
		return value.Value{}, err
	}
	ex := script.NewExecutor(e.reg, prog)
	ex.SetFile(e.file)
	return ex.Run()
}

// NewExecutor builds a reusable Executor over prog, for hosts that
// want to call individual script functions (CallByName) rather than
// running the program's top level once and discarding it.
func (e *Engine) NewExecutor(prog *script.Program) *script.Executor {
	ex := script.NewExecutor(e.reg, prog)
	ex.SetFile(e.file)
	return ex
}

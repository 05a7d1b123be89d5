// Package registry holds the host-supplied bindings an engine instance
// consults while evaluating expressions and scripts: named constants,
// functions, objects, and the configuration hooks from §6.1 of the
// specification (variable callback, operator overloads, enabled
// built-in function families).
package registry

import (
	"fmt"
	"regexp"

	"github.com/mtharden/vellum/pkg/value"
)

// identPattern is the name grammar shared by constants, functions, and
// objects: [A-Za-z_][A-Za-z0-9_]*.
var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidName reports whether name matches the registry's identifier
// grammar.
func ValidName(name string) bool {
	return identPattern.MatchString(name)
}

// FunctionEntry is a registered function's metadata: its callable plus
// the arity bounds used for call-site validation (§3.2). MaxArity of -1
// means unbounded.
type FunctionEntry struct {
	Call     value.Callable
	MinArity int
	MaxArity int
}

// VariableOp identifies which variable-callback operation (§6.1) is in
// progress.
type VariableOp string

const (
	// OpRead is issued when the evaluator resolves an identifier atom.
	OpRead VariableOp = "read"
	// OpSet is issued when an assignment target is a host variable.
	OpSet VariableOp = "set"
	// OpCheck is issued to test existence without side effects.
	OpCheck VariableOp = "check"
)

// VariableFunc is the host callback consulted for names that are not
// constants; it is asked before script-local variables. engineArg is the opaque value supplied at
// registration time (variablefn_arg); engine is the handle set via
// SetEngine, letting a callback re-enter the engine that is calling it
// (e.g. to Eval a sub-expression) (§6.1 variablefn).
type VariableFunc func(op VariableOp, name string, val value.Value, engineArg any, engine any) (value.Value, bool)

// OverloadFunc is a host operator overload (§6.1, §4.5 dispatch step 1).
// Returning ok=false defers to the built-in operator semantics. engine
// is the handle set via SetEngine (§6.1 overloadfn[op]).
type OverloadFunc func(lhs value.Value, op string, rhs value.Value, engineArg any, engine any) (value.Value, bool)

// Registry is the mutable set of bindings an engine instance consults.
// It is not safe for concurrent use, matching the single-threaded
// scheduling model of §5.
type Registry struct {
	constants map[string]value.Value
	functions map[string]FunctionEntry
	objects   map[string]value.ObjectHandle

	variableFn    VariableFunc
	variableArg   any
	overloadFns   map[string]OverloadFunc
	overloadArgs  map[string]any
	legacyBoolean bool

	// engine is the handle an owning Engine installs via SetEngine,
	// passed through to VariableFunc/OverloadFunc so a host callback
	// can re-enter the engine that invoked it.
	engine any

	maxLines        int64
	maxMicroseconds int64
	indentSpaces    int

	mathFns     bool
	timeFns     bool
	stringFns   bool
	miscFns     bool
	disabledFns []string
}

// Option configures a Registry at construction time.
type Option func(*Registry)

// WithVariableFn registers the host variable callback (§6.1 variablefn)
// and its opaque argument.
func WithVariableFn(fn VariableFunc, arg any) Option {
	return func(r *Registry) {
		r.variableFn = fn
		r.variableArg = arg
	}
}

// WithOverloadFn registers a host operator overload for op (§6.1
// overloadfn[op]) and its opaque argument.
func WithOverloadFn(op string, fn OverloadFunc, arg any) Option {
	return func(r *Registry) {
		r.overloadFns[op] = fn
		r.overloadArgs[op] = arg
	}
}

// WithLegacyBooleans opts into the source's bug-compatible constant
// numbering where both true and false evaluate to 1 (§9 open question
// #1). Default is off: false is registered as 0.
func WithLegacyBooleans(enabled bool) Option {
	return func(r *Registry) { r.legacyBoolean = enabled }
}

// WithMaxLines overrides the executed-line resource bound (§4.10).
func WithMaxLines(n int64) Option {
	return func(r *Registry) { r.maxLines = n }
}

// WithMaxMicroseconds overrides the wall-clock resource bound (§4.10).
func WithMaxMicroseconds(n int64) Option {
	return func(r *Registry) { r.maxMicroseconds = n }
}

// WithIndentSpaces overrides the script loader's per-level indent width
// (§4.7, default 2).
func WithIndentSpaces(n int) Option {
	return func(r *Registry) { r.indentSpaces = n }
}

// WithMathFns enables the math built-in family (§6.1 enablemathsfns).
func WithMathFns() Option { return func(r *Registry) { r.mathFns = true } }

// WithTimeFns enables the time/date built-in family (§6.1 enabletimefns).
func WithTimeFns() Option { return func(r *Registry) { r.timeFns = true } }

// WithStringFns enables the string built-in family (§6.1 enablestringfns).
func WithStringFns() Option { return func(r *Registry) { r.stringFns = true } }

// WithMiscFns enables the miscellaneous built-in family (§6.1
// enablemiscfns: typeof, assert, print and friends).
func WithMiscFns() Option { return func(r *Registry) { r.miscFns = true } }

// WithDisabledFns removes the named functions after registration (§6.1
// disabledfns), regardless of which family registered them.
func WithDisabledFns(names ...string) Option {
	return func(r *Registry) { r.disabledFns = append(r.disabledFns, names...) }
}

// New creates a Registry with built-in constants (PI, e, true, false)
// and default resource limits, then applies opts.
func New(opts ...Option) *Registry {
	r := &Registry{
		constants:       make(map[string]value.Value),
		functions:       make(map[string]FunctionEntry),
		objects:         make(map[string]value.ObjectHandle),
		overloadFns:     make(map[string]OverloadFunc),
		overloadArgs:    make(map[string]any),
		maxLines:        10_000_000,
		maxMicroseconds: 10_000_000,
		indentSpaces:    2,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.installBuiltinConstants()
	return r
}

// MathFnsEnabled reports whether §6.1's enablemathsfns option was set.
func (r *Registry) MathFnsEnabled() bool { return r.mathFns }

// TimeFnsEnabled reports whether §6.1's enabletimefns option was set.
func (r *Registry) TimeFnsEnabled() bool { return r.timeFns }

// StringFnsEnabled reports whether §6.1's enablestringfns option was set.
func (r *Registry) StringFnsEnabled() bool { return r.stringFns }

// MiscFnsEnabled reports whether §6.1's enablemiscfns option was set.
func (r *Registry) MiscFnsEnabled() bool { return r.miscFns }

// DisabledFnNames returns the names passed to WithDisabledFns, applied
// by the caller after registering built-ins (§6.1 disabledfns).
func (r *Registry) DisabledFnNames() []string { return r.disabledFns }

func (r *Registry) installBuiltinConstants() {
	r.constants["PI"] = value.Num(3.14159265358979323846)
	r.constants["e"] = value.Num(2.71828182845904523536)
	r.constants["true"] = value.Num(1)
	if r.legacyBoolean {
		r.constants["false"] = value.Num(1)
	} else {
		r.constants["false"] = value.Num(0)
	}
}

// MaxLines returns the configured executed-line bound.
func (r *Registry) MaxLines() int64 { return r.maxLines }

// MaxMicroseconds returns the configured wall-clock bound.
func (r *Registry) MaxMicroseconds() int64 { return r.maxMicroseconds }

// IndentSpaces returns the configured per-level indent width.
func (r *Registry) IndentSpaces() int { return r.indentSpaces }

// SetConstant registers or overwrites a named constant. It returns an
// error if name does not match the identifier grammar.
func (r *Registry) SetConstant(name string, v value.Value) error {
	if !ValidName(name) {
		return fmt.Errorf("registry: invalid constant name %q", name)
	}
	r.constants[name] = v
	return nil
}

// Constant looks up a named constant.
func (r *Registry) Constant(name string) (value.Value, bool) {
	v, ok := r.constants[name]
	return v, ok
}

// SetFunction registers a named function with the given arity bounds.
// MaxArity of -1 means unbounded.
func (r *Registry) SetFunction(name string, call value.Callable, minArity, maxArity int) error {
	if !ValidName(name) {
		return fmt.Errorf("registry: invalid function name %q", name)
	}
	r.functions[name] = FunctionEntry{Call: call, MinArity: minArity, MaxArity: maxArity}
	return nil
}

// Function looks up a named function.
func (r *Registry) Function(name string) (FunctionEntry, bool) {
	f, ok := r.functions[name]
	return f, ok
}

// DisableFunctions removes the named functions from the registry
// (§6.1 disabledfns), ignoring names that were never registered.
func (r *Registry) DisableFunctions(names ...string) {
	for _, n := range names {
		delete(r.functions, n)
	}
}

// FunctionNames returns the currently registered function names, order
// unspecified.
func (r *Registry) FunctionNames() []string {
	names := make([]string, 0, len(r.functions))
	for n := range r.functions {
		names = append(names, n)
	}
	return names
}

// SetObject registers a host object under name.
func (r *Registry) SetObject(name string, h value.ObjectHandle) error {
	if !ValidName(name) {
		return fmt.Errorf("registry: invalid object name %q", name)
	}
	r.objects[name] = h
	return nil
}

// Object looks up a named host object.
func (r *Registry) Object(name string) (value.ObjectHandle, bool) {
	h, ok := r.objects[name]
	return h, ok
}

// SetEngine installs the handle passed as the final argument to
// VariableFunc/OverloadFunc callbacks. An owning Engine calls this once
// after constructing itself, so a callback can re-enter the engine
// (e.g. Eval a sub-expression) instead of being a dead end.
func (r *Registry) SetEngine(engine any) { r.engine = engine }

// ReadVariable invokes the host variable callback, if any, with op=read.
func (r *Registry) ReadVariable(name string) (value.Value, bool) {
	if r.variableFn == nil {
		return value.Value{}, false
	}
	return r.variableFn(OpRead, name, value.Value{}, r.variableArg, r.engine)
}

// SetVariable invokes the host variable callback with op=set.
func (r *Registry) SetVariable(name string, v value.Value) (value.Value, bool) {
	if r.variableFn == nil {
		return value.Value{}, false
	}
	return r.variableFn(OpSet, name, v, r.variableArg, r.engine)
}

// CheckVariable invokes the host variable callback with op=check (no
// side effects, no auto-vivification).
func (r *Registry) CheckVariable(name string) (value.Value, bool) {
	if r.variableFn == nil {
		return value.Value{}, false
	}
	return r.variableFn(OpCheck, name, value.Value{}, r.variableArg, r.engine)
}

// Overload invokes the host operator overload for op, if any (§4.5
// dispatch step 1). ok is false if no overload is registered, or if the
// overload itself reports "not handled".
func (r *Registry) Overload(lhs value.Value, op string, rhs value.Value) (value.Value, bool) {
	fn, ok := r.overloadFns[op]
	if !ok {
		return value.Value{}, false
	}
	return fn(lhs, op, rhs, r.overloadArgs[op], r.engine)
}

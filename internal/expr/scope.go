// Package expr implements components D and E: a precedence-climbing
// recursive-descent expression parser that evaluates inline (no AST is
// ever persisted) over a cursor.Cursor, plus the binary-operator
// dispatch, index/property access, and range generator it relies on.
package expr

import "github.com/mtharden/vellum/pkg/value"

// Scope resolves script-local variable bindings (§4.9). The script
// executor's frame stack implements this; a standalone evaluator with
// no running script uses a single flat map.
type Scope interface {
	// Ref returns a pointer to the binding for name, auto-creating a
	// `number 0` binding on the current frame if name is unbound
	// anywhere on the stack, so reads always succeed.
	Ref(name string) *value.Value
	// Check reports whether name is bound, without auto-creating it.
	Check(name string) (*value.Value, bool)
}

// FuncCaller invokes a user-defined script function by name (the call
// bridge, component I). ok is false if no such function exists, in
// which case the evaluator falls back to the registry.
type FuncCaller interface {
	CallFunction(name string, args []value.Value) (value.Value, bool)
}

// MapScope is the flat single-frame Scope used when expressions are
// evaluated outside any running script.
type MapScope struct {
	vars map[string]*value.Value
}

// NewMapScope creates an empty MapScope.
func NewMapScope() *MapScope {
	return &MapScope{vars: make(map[string]*value.Value)}
}

// Ref implements Scope.
func (s *MapScope) Ref(name string) *value.Value {
	if p, ok := s.vars[name]; ok {
		return p
	}
	p := new(value.Value)
	*p = value.Num(0)
	s.vars[name] = p
	return p
}

// Check implements Scope.
func (s *MapScope) Check(name string) (*value.Value, bool) {
	p, ok := s.vars[name]
	return p, ok
}

// ref is an assignable binding target: a variable slot, or a dict/array
// entry reached through the DOT chain (§4.4). Assignment mutates
// through it in place so every alias observes the write.
type ref interface {
	Get() value.Value
	Set(value.Value)
}

type varRef struct{ ptr *value.Value }

func (r varRef) Get() value.Value  { return *r.ptr }
func (r varRef) Set(v value.Value) { *r.ptr = v }

// hostVarRef bridges assignment to the host variable callback (§6.1
// variablefn), used when the host's variable callback reports the name
// on read; the callback is consulted before script locals.
type hostVarRef struct {
	name string
	ev   *Evaluator
}

func (r hostVarRef) Get() value.Value {
	v, _ := r.ev.reg.ReadVariable(r.name)
	return v
}
func (r hostVarRef) Set(v value.Value) { r.ev.reg.SetVariable(r.name, v) }

type dictRef struct {
	dict value.Value
	key  string
}

func (r dictRef) Get() value.Value {
	v, _ := r.dict.DictGet(r.key)
	return v
}
func (r dictRef) Set(v value.Value) { r.dict.DictSet(r.key, v) }

type arrayRef struct {
	arr   value.Value
	index int
}

func (r arrayRef) Get() value.Value {
	a := r.arr.AsArray()
	if r.index < 0 || r.index >= len(a) {
		return value.Str("")
	}
	return a[r.index]
}
func (r arrayRef) Set(v value.Value) { r.arr.ArraySet(r.index, v) }

// result is what every grammar level returns: a Value plus, where the
// production was an assignable atom or chain step, a ref that = and
// op= can mutate through.
type result struct {
	val value.Value
	ref ref
}

package expr

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/mtharden/vellum/internal/cursor"
	"github.com/mtharden/vellum/pkg/errors"
	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// Evaluator parses and evaluates one expression at a time over its own
// cursor (§4.1–§4.3). It is stateless across calls to Eval apart from
// that cursor, matching §2's data-flow note that the expression
// evaluator carries no persistent state of its own.
type Evaluator struct {
	reg    *registry.Registry
	scope  Scope
	caller FuncCaller

	cur    *cursor.Cursor
	failed *errors.CompilerError
	file   string
}

// New creates an Evaluator bound to reg (constants/functions/objects),
// scope (script-local variables, or nil outside a running script), and
// caller (the component-I bridge to user-defined script functions, or
// nil when no script is loaded).
func New(reg *registry.Registry, scope Scope, caller FuncCaller) *Evaluator {
	return &Evaluator{reg: reg, scope: scope, caller: caller}
}

// SetFile names the source for positioned error headers (§10.1); empty
// by default, which renders as "Error at line L:C" rather than
// "Error in FILE:L:C".
func (ev *Evaluator) SetFile(name string) { ev.file = name }

// LastError returns the CompilerError recorded by the most recent
// Eval call, or nil if it succeeded.
func (ev *Evaluator) LastError() *errors.CompilerError { return ev.failed }

func (ev *Evaluator) pos() errors.Position {
	return errors.Position{Line: 1, Column: utf8.RuneCountInString(ev.cur.Input()[:ev.cur.Pos()]) + 1}
}

// fail records the first error only (§7: "later errors do not
// overwrite").
func (ev *Evaluator) fail(code errors.Code, msg string) {
	if ev.failed != nil {
		return
	}
	ev.failed = errors.New(code, ev.pos(), msg, ev.cur.Input(), ev.file)
}

func (ev *Evaluator) errorValue() value.Value {
	return value.Err(int(ev.failed.Code), ev.failed.Message)
}

func (ev *Evaluator) skipWS() {
	for {
		if _, ok := ev.cur.ConsumeChar(" \t\n\r"); !ok {
			return
		}
	}
}

func (ev *Evaluator) matchOp(cands ...string) (string, bool) {
	for _, c := range cands {
		if ev.cur.ConsumeLiteral(c) {
			return c, true
		}
	}
	return "", false
}

// Eval parses and evaluates src against this Evaluator's registry and
// scope, returning an `error`-tagged Value on the first recorded
// failure and the value of the last `;`-separated expression
// otherwise (§4.2).
func (ev *Evaluator) Eval(src string) value.Value {
	ev.cur = cursor.New(src)
	ev.failed = nil

	ev.skipWS()
	if ev.cur.Eof() {
		ev.fail(errors.EmptyExpression, "empty expression")
		return ev.errorValue()
	}

	last := value.Num(0)
	for {
		r, ok := ev.parseOr()
		if !ok {
			if ev.failed == nil {
				ev.fail(errors.ParseFailure, "parse failure")
			}
			return ev.errorValue()
		}
		last = r.val

		ev.skipWS()
		if !ev.cur.ConsumeLiteral(";") {
			break
		}
		ev.skipWS()
		if ev.cur.Eof() {
			break
		}
	}

	if !ev.cur.Eof() {
		ev.fail(errors.JunkAfterExpression, "junk after expression: "+ev.cur.Rest())
		return ev.errorValue()
	}
	return last
}

// --- Precedence levels 1-4: binary loops, lowest precedence first ---

func (ev *Evaluator) parseOr() (result, bool) {
	lhs, ok := ev.parseAnd()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		if !ev.cur.ConsumeLiteral("||") {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseAnd()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}
		lhs = result{val: binOp(ev.reg, lhs.val, "||", rhs.val)}
	}
}

func (ev *Evaluator) parseAnd() (result, bool) {
	lhs, ok := ev.parseBitwise()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		if !ev.cur.ConsumeLiteral("&&") {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseBitwise()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}
		lhs = result{val: binOp(ev.reg, lhs.val, "&&", rhs.val)}
	}
}

func (ev *Evaluator) parseBitwise() (result, bool) {
	lhs, ok := ev.parseCompareAssign()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		op, ok := ev.matchOp("|", "&", "^")
		if !ok {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseCompareAssign()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}
		lhs = result{val: binOp(ev.reg, lhs.val, op, rhs.val)}
	}
}

// parseCompareAssign implements precedence level 4: comparisons and
// every assignment operator share one left-associative chain (§4.3).
// Compound assignment desugars to assign(L, binop(L, op, R)) (§4.4).
func (ev *Evaluator) parseCompareAssign() (result, bool) {
	lhs, ok := ev.parseAdditive()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		op, ok := ev.matchOp("===", "!==", "==", "!=", "<=", ">=",
			"+=", "-=", "*=", "/=", "&=", "|=", "^=", "<", ">", "=")
		if !ok {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseAdditive()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}

		if op == "=" || isCompoundOp(op) {
			if lhs.ref == nil {
				// Not an assignable target; treat as if the operator
				// never matched rather than inventing error semantics
				// the spec does not define for this case.
				ev.cur.SetPos(save)
				return lhs, true
			}
			var newVal value.Value
			if op == "=" {
				newVal = rhs.val
			} else {
				base, _ := compoundBase(op)
				newVal = binOp(ev.reg, lhs.val, base, rhs.val)
			}
			lhs.ref.Set(newVal)
			lhs = result{val: newVal, ref: lhs.ref}
			continue
		}

		lhs = result{val: binOp(ev.reg, lhs.val, op, rhs.val)}
	}
}

func isCompoundOp(op string) bool {
	_, ok := compoundBase(op)
	return ok
}

func (ev *Evaluator) parseAdditive() (result, bool) {
	lhs, ok := ev.parseMultiplicative()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		op, ok := ev.matchOp("+", "-")
		if !ok {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseMultiplicative()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}
		lhs = result{val: binOp(ev.reg, lhs.val, op, rhs.val)}
	}
}

// parseMultiplicative handles level 6 (`* / %`) plus the range
// constructor `:`, which fails the whole expression (rather than
// backtracking) when its operands are not both integral with a <= b
// (§3.1, §8).
func (ev *Evaluator) parseMultiplicative() (result, bool) {
	lhs, ok := ev.parseDotChain()
	if !ok {
		return result{}, false
	}
	for {
		save := ev.cur.Pos()
		ev.skipWS()
		op, ok := ev.matchOp("*", "/", "%", ":")
		if !ok {
			ev.cur.SetPos(save)
			return lhs, true
		}
		ev.skipWS()
		rhs, ok := ev.parseDotChain()
		if !ok {
			if ev.failed != nil {
				return result{}, false
			}
			ev.cur.SetPos(save)
			return lhs, true
		}
		if op == ":" {
			v, ok := rangeOp(lhs.val, rhs.val)
			if !ok {
				ev.fail(errors.InvalidArgument, "invalid range bounds")
				return result{}, false
			}
			lhs = result{val: v}
			continue
		}
		lhs = result{val: binOp(ev.reg, lhs.val, op, rhs.val)}
	}
}

// --- Level 7: DOT chain ---

func (ev *Evaluator) parseDotChain() (result, bool) {
	r, ok := ev.parseAtom()
	if !ok {
		return result{}, false
	}

	for r.val.Tag == value.Object || r.val.Tag == value.Dict || r.val.Tag == value.Array {
		save := ev.cur.Pos()
		ev.skipWS()

		switch {
		case ev.cur.ConsumeLiteral("."):
			ev.skipWS()
			name, ok := ev.cur.ConsumeRegex(cursor.IdentPattern)
			if !ok {
				ev.cur.SetPos(save)
				return r, true
			}
			next, ok := ev.resolveDotName(r.val, name)
			if !ok {
				if ev.failed != nil {
					return result{}, false
				}
				ev.cur.SetPos(save)
				return r, true
			}
			r = next

		case ev.cur.ConsumeLiteral("["):
			ev.skipWS()
			idx, ok := ev.parseOr()
			if !ok {
				if ev.failed == nil {
					ev.fail(errors.ParseFailure, "parse failure in index expression")
				}
				return result{}, false
			}
			ev.skipWS()
			if !ev.cur.ConsumeLiteral("]") {
				ev.fail(errors.BadIndex, "expected ']'")
				return result{}, false
			}
			next, ok := ev.resolveIndex(r.val, idx.val)
			if !ok {
				return result{}, false
			}
			r = next

		default:
			ev.cur.SetPos(save)
			return r, true
		}
	}
	return r, true
}

// resolveDotName implements `.name` on an object or dict (§4.3.2): on
// a dict it reads the keyed entry (missing key is ErrKey); on an
// object it looks up the property through the object contract (§3.3).
func (ev *Evaluator) resolveDotName(container value.Value, name string) (result, bool) {
	switch container.Tag {
	case value.Dict:
		v, ok := container.DictGet(name)
		if !ok {
			ev.fail(errors.KeyNotInDict, "key not in dict: "+name)
			return result{}, false
		}
		return ev.maybeCallMethod(result{val: v, ref: dictRef{dict: container, key: name}})
	case value.Object:
		h := container.AsObject()
		if h == nil {
			ev.fail(errors.InvalidObject, "invalid object")
			return result{}, false
		}
		v, ok := h.GetProperty(name)
		if !ok {
			ev.fail(errors.InvalidObject, "no such property: "+name)
			return result{}, false
		}
		return ev.maybeCallMethod(result{val: v})
	default:
		return result{}, false
	}
}

// maybeCallMethod consumes a trailing `(args)` when r is a function-
// typed property, invoking it; otherwise r is returned unchanged.
func (ev *Evaluator) maybeCallMethod(r result) (result, bool) {
	if r.val.Tag != value.Function {
		return r, true
	}
	save := ev.cur.Pos()
	ev.skipWS()
	if !ev.cur.ConsumeLiteral("(") {
		ev.cur.SetPos(save)
		return r, true
	}
	args, ok := ev.parseArgList()
	if !ok {
		return result{}, false
	}
	fn := r.val.AsFunction()
	if len(args) < fn.MinArity || (fn.MaxArity >= 0 && len(args) > fn.MaxArity) {
		ev.fail(errors.BadArity, "bad arity for method call")
		return result{}, false
	}
	return result{val: fn.Call(args)}, true
}

// resolveIndex implements `[expr]` on array or dict (§4.3.2): array
// indexing is bounds-checked with empty string on miss (documented
// quirk); dict indexing coerces idx to its display string as the key.
func (ev *Evaluator) resolveIndex(container, idx value.Value) (result, bool) {
	switch container.Tag {
	case value.Array:
		i := int(idx.ToInt())
		ar := arrayRef{arr: container, index: i}
		return result{val: ar.Get(), ref: ar}, true
	case value.Dict:
		key := idx.ToDisplayString()
		v, ok := container.DictGet(key)
		if !ok {
			ev.fail(errors.KeyNotInDict, "key not in dict: "+key)
			return result{}, false
		}
		return result{val: v, ref: dictRef{dict: container, key: key}}, true
	default:
		ev.fail(errors.BadIndex, "index on non-indexable value")
		return result{}, false
	}
}

// --- Level 8: atoms ---

func (ev *Evaluator) parseAtom() (result, bool) {
	ev.skipWS()
	if ev.cur.Eof() {
		return result{}, false
	}

	ch, _ := ev.cur.Peek()
	switch ch {
	case '"':
		v, ok := ev.parseStringLiteral()
		if !ok {
			return result{}, false
		}
		return result{val: v}, true
	case '[':
		v, ok := ev.parseArrayLiteral()
		if !ok {
			return result{}, false
		}
		return result{val: v}, true
	case '{':
		v, ok := ev.parseDictLiteral()
		if !ok {
			return result{}, false
		}
		return result{val: v}, true
	case '(':
		ev.cur.ConsumeLiteral("(")
		ev.skipWS()
		r, ok := ev.parseOr()
		if !ok {
			if ev.failed == nil {
				ev.fail(errors.ParseFailure, "parse failure inside parentheses")
			}
			return result{}, false
		}
		ev.skipWS()
		if !ev.cur.ConsumeLiteral(")") {
			ev.fail(errors.ParseFailure, "expected ')'")
			return result{}, false
		}
		return r, true
	}

	if v, ok := ev.parseNumberAtom(); ok {
		return result{val: v}, true
	}
	if r, ok := ev.parseFunctionCall(); ok {
		return r, true
	}
	if r, ok := ev.parseIdentAtom(); ok {
		return r, true
	}
	return result{}, false
}

func (ev *Evaluator) parseNumberAtom() (value.Value, bool) {
	m, ok := ev.cur.ConsumeRegex(cursor.NumberPattern)
	if !ok {
		return value.Value{}, false
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return value.Value{}, false
	}
	return value.Num(f), true
}

// parseStringLiteral parses a `"…"` literal, processing the escapes
// listed in §4.3.1 (n r t b " \\ and \uXXXX).
func (ev *Evaluator) parseStringLiteral() (value.Value, bool) {
	if !ev.cur.ConsumeLiteral(`"`) {
		return value.Value{}, false
	}
	var sb strings.Builder
	for {
		if ev.cur.Eof() {
			ev.fail(errors.DanglingQuote, "dangling quote: unterminated string literal")
			return value.Value{}, false
		}
		ch, _ := ev.cur.Peek()
		if ch == '"' {
			ev.cur.ConsumeRune()
			return value.Str(sb.String()), true
		}
		if ch == '\\' {
			ev.cur.ConsumeRune()
			if ev.cur.Eof() {
				ev.fail(errors.DanglingBackslash, "dangling backslash at end of string")
				return value.Value{}, false
			}
			esc, _ := ev.cur.Peek()
			switch esc {
			case 'n':
				ev.cur.ConsumeRune()
				sb.WriteByte('\n')
			case 'r':
				ev.cur.ConsumeRune()
				sb.WriteByte('\r')
			case 't':
				ev.cur.ConsumeRune()
				sb.WriteByte('\t')
			case 'b':
				ev.cur.ConsumeRune()
				sb.WriteByte('\b')
			case '"':
				ev.cur.ConsumeRune()
				sb.WriteByte('"')
			case '\\':
				ev.cur.ConsumeRune()
				sb.WriteByte('\\')
			case 'u':
				ev.cur.ConsumeRune()
				var hex strings.Builder
				for i := 0; i < 4; i++ {
					b, ok := ev.cur.ConsumeChar("0123456789abcdefABCDEF")
					if !ok {
						ev.fail(errors.DanglingQuote, "invalid \\u escape in string literal")
						return value.Value{}, false
					}
					hex.WriteByte(b)
				}
				cp, _ := strconv.ParseInt(hex.String(), 16, 32)
				sb.WriteRune(rune(cp))
			default:
				r, _ := ev.cur.ConsumeRune()
				sb.WriteRune(r)
			}
			continue
		}
		r, _ := ev.cur.ConsumeRune()
		sb.WriteRune(r)
	}
}

func (ev *Evaluator) parseArrayLiteral() (value.Value, bool) {
	if !ev.cur.ConsumeLiteral("[") {
		return value.Value{}, false
	}
	var elems []value.Value
	ev.skipWS()
	if ev.cur.ConsumeLiteral("]") {
		return value.Arr(elems), true
	}
	for {
		r, ok := ev.parseOr()
		if !ok {
			if ev.failed == nil {
				ev.fail(errors.ParseFailure, "parse failure in array literal")
			}
			return value.Value{}, false
		}
		elems = append(elems, r.val)
		ev.skipWS()
		if ev.cur.ConsumeLiteral(",") {
			ev.skipWS()
			continue
		}
		if ev.cur.ConsumeLiteral("]") {
			return value.Arr(elems), true
		}
		ev.fail(errors.ParseFailure, "expected ',' or ']' in array literal")
		return value.Value{}, false
	}
}

// parseDictLiteral parses `{ (name|number|string)":"expr, … }` (§4.3.1).
func (ev *Evaluator) parseDictLiteral() (value.Value, bool) {
	if !ev.cur.ConsumeLiteral("{") {
		return value.Value{}, false
	}
	d := value.NewDict()
	ev.skipWS()
	if ev.cur.ConsumeLiteral("}") {
		return d, true
	}
	for {
		key, ok := ev.parseDictKey()
		if !ok {
			ev.fail(errors.MissingDictName, "missing dict key")
			return value.Value{}, false
		}
		ev.skipWS()
		if !ev.cur.ConsumeLiteral(":") {
			ev.fail(errors.MissingDictColon, "missing ':' in dict literal")
			return value.Value{}, false
		}
		ev.skipWS()
		v, ok := ev.parseOr()
		if !ok {
			if ev.failed == nil {
				ev.fail(errors.ParseFailure, "parse failure in dict value")
			}
			return value.Value{}, false
		}
		d.DictSet(key, v.val)
		ev.skipWS()
		if ev.cur.ConsumeLiteral(",") {
			ev.skipWS()
			continue
		}
		if ev.cur.ConsumeLiteral("}") {
			return d, true
		}
		ev.fail(errors.ParseFailure, "expected ',' or '}' in dict literal")
		return value.Value{}, false
	}
}

func (ev *Evaluator) parseDictKey() (string, bool) {
	if ch, ok := ev.cur.Peek(); ok && ch == '"' {
		v, ok := ev.parseStringLiteral()
		if !ok {
			return "", false
		}
		return v.AsString(), true
	}
	if m, ok := ev.cur.ConsumeRegex(cursor.NumberPattern); ok {
		return m, true
	}
	if m, ok := ev.cur.ConsumeRegex(cursor.IdentPattern); ok {
		return m, true
	}
	return "", false
}

// parseFunctionCall matches `ident(` as a single lookahead (longest
// match per §4.1), then an argument list, then invokes (§4.3.1).
func (ev *Evaluator) parseFunctionCall() (result, bool) {
	m, ok := ev.cur.ConsumeRegex(cursor.FuncStartPattern)
	if !ok {
		return result{}, false
	}
	name := m[:len(m)-1]
	args, ok := ev.parseArgList()
	if !ok {
		return result{}, false
	}
	v, ok := ev.invoke(name, args)
	if !ok {
		return result{}, false
	}
	return result{val: v}, true
}

func (ev *Evaluator) parseArgList() ([]value.Value, bool) {
	var args []value.Value
	ev.skipWS()
	if ev.cur.ConsumeLiteral(")") {
		return args, true
	}
	for {
		r, ok := ev.parseOr()
		if !ok {
			if ev.failed == nil {
				ev.fail(errors.ParseFailure, "parse failure in argument list")
			}
			return nil, false
		}
		args = append(args, r.val)
		ev.skipWS()
		if ev.cur.ConsumeLiteral(",") {
			ev.skipWS()
			continue
		}
		if ev.cur.ConsumeLiteral(")") {
			return args, true
		}
		ev.fail(errors.ParseFailure, "expected ',' or ')' in argument list")
		return nil, false
	}
}

// invoke resolves name against the user-function call bridge first
// (component I), then the registry — letting script-defined functions
// shadow host built-ins of the same name.
func (ev *Evaluator) invoke(name string, args []value.Value) (value.Value, bool) {
	if ev.caller != nil {
		if v, ok := ev.caller.CallFunction(name, args); ok {
			return v, true
		}
	}
	entry, ok := ev.reg.Function(name)
	if !ok {
		ev.fail(errors.UnknownFunction, "unknown function: "+name)
		return value.Value{}, false
	}
	if len(args) < entry.MinArity || (entry.MaxArity >= 0 && len(args) > entry.MaxArity) {
		ev.fail(errors.BadArity, fmt.Sprintf("bad arity for %s: got %d argument(s)", name, len(args)))
		return value.Value{}, false
	}
	return entry.Call(args), true
}

// parseIdentAtom resolves a bare identifier: registered object, then
// constant, then the host variable callback, then the script scope
// (§4.3.1). Objects are checked first as a distinct namespace so an
// object name is never shadowed by a same-named variable.
func (ev *Evaluator) parseIdentAtom() (result, bool) {
	name, ok := ev.cur.ConsumeRegex(cursor.IdentPattern)
	if !ok {
		return result{}, false
	}

	if h, ok := ev.reg.Object(name); ok {
		return result{val: value.Obj(h)}, true
	}
	if v, ok := ev.reg.Constant(name); ok {
		return result{val: v}, true
	}
	if v, ok := ev.reg.ReadVariable(name); ok {
		return result{val: v, ref: hostVarRef{name: name, ev: ev}}, true
	}
	if ev.scope != nil {
		p := ev.scope.Ref(name)
		return result{val: *p, ref: varRef{ptr: p}}, true
	}
	ev.fail(errors.ParseFailure, "unbound name: "+name)
	return result{}, false
}

package expr

import (
	"math"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// numericTag reports whether t participates in arithmetic coercion
// (§4.5 dispatch step 3): number and string do, everything else forces
// the operation to `number 0`.
func numericTag(t value.Tag) bool {
	return t == value.Number || t == value.String
}

func boolNum(b bool) value.Value {
	if b {
		return value.Num(1)
	}
	return value.Num(0)
}

func stringCompare(a, op, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// divide implements `/` per §3.1 and §8: division by zero yields a
// signed INFINITY_SENTINEL matching the dividend's sign; 0/0 is 0.
func divide(a, b float64) value.Value {
	if b == 0 {
		switch {
		case a == 0:
			return value.Num(0)
		case a < 0:
			return value.Num(-float64(value.InfinitySentinel))
		default:
			return value.Num(float64(value.InfinitySentinel))
		}
	}
	return value.Num(a / b)
}

// binOp implements the binary-operator dispatch order of §4.5:
//  1. host overload (deferred by the caller before reaching here is
//     wrong — overload is consulted first, below).
//  2. string + string concatenates.
//  3. an operand outside {number,string} forces the result to number 0.
//  4. both operands convert to double (and to int for bitwise ops).
func binOp(reg *registry.Registry, l value.Value, op string, r value.Value) value.Value {
	if v, ok := reg.Overload(l, op, r); ok {
		return v
	}

	switch op {
	case "+":
		if l.Tag == value.String && r.Tag == value.String {
			return value.Str(l.AsString() + r.AsString())
		}
	case "==":
		return boolNum(value.Equal(l, r))
	case "!=":
		return boolNum(!value.Equal(l, r))
	case "===":
		return boolNum(value.StrictEqual(l, r))
	case "!==":
		return boolNum(!value.StrictEqual(l, r))
	case "<", "<=", ">", ">=":
		if l.Tag == value.String && r.Tag == value.String {
			return boolNum(stringCompare(l.AsString(), op, r.AsString()))
		}
	}

	if !numericTag(l.Tag) || !numericTag(r.Tag) {
		return value.Num(0)
	}

	switch op {
	case "+":
		return value.Num(l.ToFloat() + r.ToFloat())
	case "-":
		return value.Num(l.ToFloat() - r.ToFloat())
	case "*":
		return value.Num(l.ToFloat() * r.ToFloat())
	case "/":
		return divide(l.ToFloat(), r.ToFloat())
	case "%":
		rf := r.ToFloat()
		if rf == 0 {
			return value.Num(0)
		}
		return value.Num(math.Mod(l.ToFloat(), rf))
	case "&":
		return value.Num(float64(l.ToInt() & r.ToInt()))
	case "|":
		return value.Num(float64(l.ToInt() | r.ToInt()))
	case "^":
		return value.Num(float64(l.ToInt() ^ r.ToInt()))
	case "&&":
		return boolNum(l.ToInt() != 0 && r.ToInt() != 0)
	case "||":
		return boolNum(l.ToInt() != 0 || r.ToInt() != 0)
	case "<":
		return boolNum(l.ToFloat() < r.ToFloat())
	case "<=":
		return boolNum(l.ToFloat() <= r.ToFloat())
	case ">":
		return boolNum(l.ToFloat() > r.ToFloat())
	case ">=":
		return boolNum(l.ToFloat() >= r.ToFloat())
	default:
		return value.Num(0)
	}
}

// rangeOp implements `a:b` (§3.1, §4.5): both operands must be
// integral and a <= b; ok is false otherwise, signalling the caller to
// fail the expression.
func rangeOp(l, r value.Value) (value.Value, bool) {
	if !l.IsIntegral() || !r.IsIntegral() {
		return value.Value{}, false
	}
	a, b := l.ToInt(), r.ToInt()
	if a > b {
		return value.Value{}, false
	}
	elems := make([]value.Value, 0, b-a+1)
	for i := a; i <= b; i++ {
		elems = append(elems, value.Num(float64(i)))
	}
	return value.Arr(elems), true
}

// compoundBase strips a trailing '=' from a compound-assignment token
// (e.g. "+=" -> "+"), used to desugar op= to assign(L, binop(L,op,R)).
func compoundBase(op string) (string, bool) {
	switch op {
	case "+=":
		return "+", true
	case "-=":
		return "-", true
	case "*=":
		return "*", true
	case "/=":
		return "/", true
	case "&=":
		return "&", true
	case "|=":
		return "|", true
	case "^=":
		return "^", true
	default:
		return "", false
	}
}

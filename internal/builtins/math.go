package builtins

import (
	"math"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// registerMath installs the arithmetic helpers beyond what the core
// operators already cover (abs, rounding, trig, power).
func registerMath(r *registry.Registry) {
	r.SetFunction("abs", mathAbs, 1, 1)
	r.SetFunction("min", mathMin, 1, -1)
	r.SetFunction("max", mathMax, 1, -1)
	r.SetFunction("sign", mathSign, 1, 1)
	r.SetFunction("sqrt", unary(math.Sqrt), 1, 1)
	r.SetFunction("pow", mathPow, 2, 2)
	r.SetFunction("floor", unary(math.Floor), 1, 1)
	r.SetFunction("ceil", unary(math.Ceil), 1, 1)
	r.SetFunction("round", mathRound, 1, 1)
	r.SetFunction("trunc", unary(math.Trunc), 1, 1)
	r.SetFunction("sin", unary(math.Sin), 1, 1)
	r.SetFunction("cos", unary(math.Cos), 1, 1)
	r.SetFunction("tan", unary(math.Tan), 1, 1)
	r.SetFunction("log", unary(math.Log), 1, 1)
	r.SetFunction("exp", unary(math.Exp), 1, 1)
}

// unary lifts a plain float64->float64 function into a Callable,
// coercing its argument the way every numeric builtin does (§4.5).
func unary(f func(float64) float64) value.Callable {
	return func(args []value.Value) value.Value {
		return value.Num(f(args[0].ToFloat()))
	}
}

func mathAbs(args []value.Value) value.Value {
	return value.Num(math.Abs(args[0].ToFloat()))
}

func mathMin(args []value.Value) value.Value {
	m := args[0].ToFloat()
	for _, a := range args[1:] {
		if f := a.ToFloat(); f < m {
			m = f
		}
	}
	return value.Num(m)
}

func mathMax(args []value.Value) value.Value {
	m := args[0].ToFloat()
	for _, a := range args[1:] {
		if f := a.ToFloat(); f > m {
			m = f
		}
	}
	return value.Num(m)
}

func mathSign(args []value.Value) value.Value {
	f := args[0].ToFloat()
	switch {
	case f > 0:
		return value.Num(1)
	case f < 0:
		return value.Num(-1)
	default:
		return value.Num(0)
	}
}

func mathPow(args []value.Value) value.Value {
	return value.Num(math.Pow(args[0].ToFloat(), args[1].ToFloat()))
}

func mathRound(args []value.Value) value.Value {
	return value.Num(math.Round(args[0].ToFloat()))
}

package builtins

import (
	"fmt"
	"strings"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// registerString installs the string-manipulation helpers (§6.1
// string family): case folding, trimming, search, and splitting.
func registerString(r *registry.Registry) {
	r.SetFunction("len", strLen, 1, 1)
	r.SetFunction("upper", strUnary(strings.ToUpper), 1, 1)
	r.SetFunction("lower", strUnary(strings.ToLower), 1, 1)
	r.SetFunction("trim", strUnary(strings.TrimSpace), 1, 1)
	r.SetFunction("contains", strContains, 2, 2)
	r.SetFunction("indexof", strIndexOf, 2, 2)
	r.SetFunction("substr", strSubstring, 2, 3)
	r.SetFunction("replace", strReplace, 3, 3)
	r.SetFunction("split", strSplit, 2, 2)
	r.SetFunction("join", strJoin, 2, 2)
	r.SetFunction("repeat", strRepeat, 2, 2)
	r.SetFunction("sprintf", strSprintf, 1, -1)
}

func strUnary(f func(string) string) value.Callable {
	return func(args []value.Value) value.Value {
		return value.Str(f(args[0].ToDisplayString()))
	}
}

// strLen's dict case counts keys (§OQ3) and its object case returns 0
// rather than a display-string length, since length-of-object is
// undefined upstream and 0 is the least surprising default (§OQ3).
func strLen(args []value.Value) value.Value {
	v := args[0]
	switch v.Tag {
	case value.String:
		return value.Num(float64(len([]rune(v.AsString()))))
	case value.Array:
		return value.Num(float64(len(v.AsArray())))
	case value.Dict:
		return value.Num(float64(v.DictLen()))
	case value.Object:
		return value.Num(0)
	default:
		return value.Num(float64(len(v.ToDisplayString())))
	}
}

func strContains(args []value.Value) value.Value {
	if strings.Contains(args[0].ToDisplayString(), args[1].ToDisplayString()) {
		return value.Num(1)
	}
	return value.Num(0)
}

func strIndexOf(args []value.Value) value.Value {
	return value.Num(float64(strings.Index(args[0].ToDisplayString(), args[1].ToDisplayString())))
}

// strSubstring(s, start[, length]) extracts a rune-indexed slice of
// s, clamped to its bounds rather than erroring on overrun.
func strSubstring(args []value.Value) value.Value {
	runes := []rune(args[0].ToDisplayString())
	start := clampIndex(int(args[1].ToInt()), len(runes))
	end := len(runes)
	if len(args) == 3 {
		end = clampIndex(start+int(args[2].ToInt()), len(runes))
	}
	if end < start {
		end = start
	}
	return value.Str(string(runes[start:end]))
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func strReplace(args []value.Value) value.Value {
	s := args[0].ToDisplayString()
	old := args[1].ToDisplayString()
	newv := args[2].ToDisplayString()
	return value.Str(strings.ReplaceAll(s, old, newv))
}

func strSplit(args []value.Value) value.Value {
	parts := strings.Split(args[0].ToDisplayString(), args[1].ToDisplayString())
	out := make([]value.Value, len(parts))
	for i, p := range parts {
		out[i] = value.Str(p)
	}
	return value.Arr(out)
}

func strJoin(args []value.Value) value.Value {
	arr := args[0].AsArray()
	sep := args[1].ToDisplayString()
	parts := make([]string, len(arr))
	for i, e := range arr {
		parts[i] = e.ToDisplayString()
	}
	return value.Str(strings.Join(parts, sep))
}

func strRepeat(args []value.Value) value.Value {
	n := int(args[1].ToInt())
	if n < 0 {
		n = 0
	}
	return value.Str(strings.Repeat(args[0].ToDisplayString(), n))
}

// strSprintf implements a %-style formatter (§8's sprintf scenario),
// coercing each value to the Go-native type its verb expects so
// fmt.Sprintf renders it the way the verb intends rather than with
// Go's %!verb(type=value) fallback.
func strSprintf(args []value.Value) value.Value {
	format := args[0].ToDisplayString()
	rest := args[1:]
	converted := make([]any, 0, len(rest))

	argIdx := 0
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' {
			continue
		}
		i++
		if i >= len(runes) || runes[i] == '%' {
			continue
		}
		for i < len(runes) && strings.ContainsRune("+-# 0123456789.", runes[i]) {
			i++
		}
		if i >= len(runes) || argIdx >= len(rest) {
			break
		}
		converted = append(converted, sprintfArg(rest[argIdx], runes[i]))
		argIdx++
	}
	return value.Str(fmt.Sprintf(format, converted...))
}

func sprintfArg(v value.Value, verb rune) any {
	switch verb {
	case 'd', 'b', 'o', 'O', 'x', 'X', 'c':
		return v.ToInt()
	case 'f', 'F', 'e', 'E', 'g', 'G':
		return v.ToFloat()
	case 't':
		return v.Truthy()
	default:
		return v.ToDisplayString()
	}
}

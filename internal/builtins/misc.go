package builtins

import (
	"fmt"
	"os"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// registerMisc installs the small grab-bag of helpers that don't earn
// their own family: type introspection, assertion, and host output.
func registerMisc(r *registry.Registry) {
	r.SetFunction("typeof", miscTypeOf, 1, 1)
	r.SetFunction("assert", miscAssert, 1, 2)
	r.SetFunction("print", miscPrint, 1, -1)
}

func miscTypeOf(args []value.Value) value.Value {
	return value.Str(args[0].Tag.String())
}

// assert(cond[, message]) returns an error Value carrying message (or
// a default) when cond is falsy, and the number 1 otherwise.
func miscAssert(args []value.Value) value.Value {
	if args[0].Truthy() {
		return value.Num(1)
	}
	msg := "assertion failed"
	if len(args) == 2 {
		msg = args[1].ToDisplayString()
	}
	return value.Err(7, msg)
}

func miscPrint(args []value.Value) value.Value {
	parts := make([]any, len(args))
	for i, a := range args {
		parts[i] = a.ToDisplayString()
	}
	fmt.Fprintln(os.Stdout, parts...)
	return value.Num(0)
}

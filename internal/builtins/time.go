package builtins

import (
	"time"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// registerTime installs the clock helpers (§6.1 time family): Unix
// timestamps in, formatted strings out, nothing the core value model
// needs a dedicated tag for.
func registerTime(r *registry.Registry) {
	r.SetFunction("now", timeNow, 0, 0)
	r.SetFunction("formattime", timeFormat, 2, 2)
	r.SetFunction("parsetime", timeParse, 2, 2)
}

func timeNow(args []value.Value) value.Value {
	return value.Num(float64(time.Now().Unix()))
}

// timeFormat(unixSeconds, layout) renders a Unix timestamp with a
// Go reference-time layout string, e.g. "2006-01-02 15:04:05".
func timeFormat(args []value.Value) value.Value {
	t := time.Unix(args[0].ToInt(), 0).UTC()
	return value.Str(t.Format(args[1].ToDisplayString()))
}

// timeParse(s, layout) is timeFormat's inverse; a parse failure
// yields the zero timestamp rather than an error Value, since the
// stable error codes (§6.4) have no slot reserved for this family.
func timeParse(args []value.Value) value.Value {
	t, err := time.Parse(args[1].ToDisplayString(), args[0].ToDisplayString())
	if err != nil {
		return value.Num(0)
	}
	return value.Num(float64(t.Unix()))
}

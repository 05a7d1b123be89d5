// Package builtins implements the host-supplied function families a
// registry can enable or disable as a group (§6.1): math, string,
// time, and the JSON helpers built on gjson/sjson.
package builtins

import "github.com/mtharden/vellum/pkg/registry"

// Family names a group of built-in functions that can be installed or
// withheld independently, so a host embedding the engine can shrink
// its surface area (e.g. a sandboxed context with no JSON access).
type Family string

const (
	FamilyMath   Family = "math"
	FamilyString Family = "string"
	FamilyTime   Family = "time"
	FamilyJSON   Family = "json"
	FamilyMisc   Family = "misc"
)

// AllFamilies is every built-in family, in registration order.
var AllFamilies = []Family{FamilyMath, FamilyString, FamilyTime, FamilyJSON, FamilyMisc}

// RegisterAll installs every enabled family into reg. enabled is
// nil-safe: a nil or empty set installs everything, matching the
// engine's default of "all built-ins on" (§6.1 disabledfns works
// against the registered set afterwards, not against this gate).
func RegisterAll(reg *registry.Registry, enabled map[Family]bool) {
	for _, fam := range AllFamilies {
		if len(enabled) > 0 && !enabled[fam] {
			continue
		}
		switch fam {
		case FamilyMath:
			registerMath(reg)
		case FamilyString:
			registerString(reg)
		case FamilyTime:
			registerTime(reg)
		case FamilyJSON:
			registerJSON(reg)
		case FamilyMisc:
			registerMisc(reg)
		}
	}
}

// RegisterFromRegistry installs the families reg's own configuration
// options (§6.1 enablemathsfns/enabletimefns/enablestringfns/
// enablemiscfns) switched on, then applies disabledfns. The JSON
// helpers ride along with enablemiscfns: §6.1's table has no separate
// switch for them, and they are introduced by §11 as misc built-ins.
func RegisterFromRegistry(reg *registry.Registry) {
	RegisterAll(reg, map[Family]bool{
		FamilyMath:   reg.MathFnsEnabled(),
		FamilyString: reg.StringFnsEnabled(),
		FamilyTime:   reg.TimeFnsEnabled(),
		FamilyJSON:   reg.MiscFnsEnabled(),
		FamilyMisc:   reg.MiscFnsEnabled(),
	})
	reg.DisableFunctions(reg.DisabledFnNames()...)
}

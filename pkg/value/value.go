// Package value defines the tagged runtime value model shared by the
// expression evaluator and the script executor. A Value never changes
// its meaning independently of its Tag: the tag fully determines which
// payload field is live.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Tag identifies the kind of payload a Value carries.
type Tag uint8

const (
	// Number holds an IEEE-754 double.
	Number Tag = iota
	// String holds UTF-8 text.
	String
	// Array holds an ordered sequence of Values.
	Array
	// Dict holds an insertion-ordered mapping from string key to Value.
	Dict
	// Object is an opaque handle to a host-registered object.
	Object
	// Function is a bound invocable property discovered on an object.
	Function
	// Data is tagged structured output produced by helpers (chart, table, …).
	// Core operators do not interpret it.
	Data
	// Error is a terminal value carrying a numeric code and message.
	Error
)

// String returns a lower-case name for the tag, used in diagnostics.
func (t Tag) String() string {
	switch t {
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Dict:
		return "dict"
	case Object:
		return "object"
	case Function:
		return "function"
	case Data:
		return "data"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Callable is a host or user-defined function bound to a name. Args are
// already-evaluated Values; the call bridge (internal/script) supplies
// the implementation for script-defined functions, builtins supply it
// for registered ones.
type Callable func(args []Value) Value

// ObjectHandle is the capability interface a host object implements to
// expose named properties and, transitively, methods. A property whose
// Value carries tag Function is invocable as obj.Name(args...).
type ObjectHandle interface {
	// GetProperty returns the named property, or ok=false if the object
	// has no such property (and no dynamic hook willing to produce one).
	GetProperty(name string) (v Value, ok bool)
}

// FunctionPayload is the payload of a Function-tagged Value: a callable
// plus the arity bounds used for call-site checking.
type FunctionPayload struct {
	Call     Callable
	MinArity int
	MaxArity int // -1 means unbounded
}

// DictEntry is one insertion-ordered key/value pair of a Dict payload.
type DictEntry struct {
	Key   string
	Value Value
}

// Value is the tagged runtime datum threaded through the evaluator and
// the script executor. Only the field matching Tag is meaningful.
type Value struct {
	Tag Tag

	num  float64
	str  string
	arr  []Value
	dict *[]DictEntry // shared: dict assignment mutates in place, like the source's aliased object records
	obj  ObjectHandle
	fn   FunctionPayload
	data any

	errCode int
	errMsg  string
}

// InfinitySentinel is the value returned (signed to match the dividend)
// by integer division by zero, in place of IEEE infinity.
const InfinitySentinel = 2_100_776_655

// Num constructs a number Value.
func Num(n float64) Value { return Value{Tag: Number, num: n} }

// Str constructs a string Value.
func Str(s string) Value { return Value{Tag: String, str: s} }

// Arr constructs an array Value from a slice (copied by reference; callers
// should not mutate elems after this point unless mutation is intended to
// be visible, matching the source's aliasing behavior for bound arrays).
func Arr(elems []Value) Value { return Value{Tag: Array, arr: elems} }

// NewDict constructs an empty dict Value.
func NewDict() Value {
	entries := make([]DictEntry, 0)
	return Value{Tag: Dict, dict: &entries}
}

// Obj wraps a host object handle as an object Value.
func Obj(h ObjectHandle) Value { return Value{Tag: Object, obj: h} }

// Fn constructs a function Value bound to a callable with the given arity.
func Fn(call Callable, minArity, maxArity int) Value {
	return Value{Tag: Function, fn: FunctionPayload{Call: call, MinArity: minArity, MaxArity: maxArity}}
}

// DataValue wraps an opaque structured payload (chart, table, …) produced
// by a helper function. Core operators never interpret it.
func DataValue(payload any) Value { return Value{Tag: Data, data: payload} }

// Err constructs a terminal error Value.
func Err(code int, msg string) Value { return Value{Tag: Error, errCode: code, errMsg: msg} }

// IsError reports whether v is a terminal error Value.
func (v Value) IsError() bool { return v.Tag == Error }

// ErrorCode returns the numeric error code; only meaningful when IsError.
func (v Value) ErrorCode() int { return v.errCode }

// ErrorMessage returns the error message; only meaningful when IsError.
func (v Value) ErrorMessage() string { return v.errMsg }

// AsNumber returns the float64 payload; only meaningful for tag Number.
func (v Value) AsNumber() float64 { return v.num }

// AsString returns the string payload; only meaningful for tag String.
func (v Value) AsString() string { return v.str }

// AsArray returns the element slice; only meaningful for tag Array.
func (v Value) AsArray() []Value { return v.arr }

// ArraySet writes val at index i, bounds-checked. It returns false (and
// does nothing) if i is out of range. Because Go slices share their
// backing array across copies, this mutation is visible through every
// alias of the array, matching the source's reference semantics for
// bound arrays.
func (v Value) ArraySet(i int, val Value) bool {
	if i < 0 || i >= len(v.arr) {
		return false
	}
	v.arr[i] = val
	return true
}

// AsObject returns the object handle; only meaningful for tag Object.
func (v Value) AsObject() ObjectHandle { return v.obj }

// AsFunction returns the function payload; only meaningful for tag Function.
func (v Value) AsFunction() FunctionPayload { return v.fn }

// AsData returns the opaque structured payload; only meaningful for tag Data.
func (v Value) AsData() any { return v.data }

// DictLen returns the number of entries in a Dict value.
func (v Value) DictLen() int {
	if v.dict == nil {
		return 0
	}
	return len(*v.dict)
}

// DictEntries returns the dict's entries in insertion order. Callers must
// not mutate the returned slice.
func (v Value) DictEntries() []DictEntry {
	if v.dict == nil {
		return nil
	}
	return *v.dict
}

// DictGet reads a keyed entry; ok is false if the key is absent.
func (v Value) DictGet(key string) (Value, bool) {
	if v.dict == nil {
		return Value{}, false
	}
	for _, e := range *v.dict {
		if e.Key == key {
			return e.Value, true
		}
	}
	return Value{}, false
}

// DictSet writes key to val in place, preserving insertion order (an
// existing key is updated where it sits; a new key is appended). Because
// the dict payload is shared, every alias of this Value observes the
// write — this is what makes `d.key = v` on a variable-bound dict behave
// like the source's aliased object records.
func (v Value) DictSet(key string, val Value) {
	if v.dict == nil {
		return
	}
	for i, e := range *v.dict {
		if e.Key == key {
			(*v.dict)[i].Value = val
			return
		}
	}
	*v.dict = append(*v.dict, DictEntry{Key: key, Value: val})
}

// DictKeys returns the dict's keys in insertion order.
func (v Value) DictKeys() []string {
	if v.dict == nil {
		return nil
	}
	keys := make([]string, len(*v.dict))
	for i, e := range *v.dict {
		keys[i] = e.Key
	}
	return keys
}

// SortedDictKeys returns the dict's keys sorted lexicographically; used
// only by diagnostics, never by iteration order (which must stay
// insertion-ordered per §3.1).
func (v Value) SortedDictKeys() []string {
	keys := v.DictKeys()
	sort.Strings(keys)
	return keys
}

// Truthy implements the truthiness rule used by if/while (§4.8): only
// number and string are truthy-tested; every other tag is false.
func (v Value) Truthy() bool {
	switch v.Tag {
	case Number:
		return v.num != 0
	case String:
		return v.str != ""
	default:
		return false
	}
}

// ToFloat converts v to a double per the §4.5 coercion rule: number
// passes through; string parses (0 on failure); everything else is 0.
func (v Value) ToFloat() float64 {
	switch v.Tag {
	case Number:
		return v.num
	case String:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// ToInt truncates ToFloat toward zero, matching the reference's C-style
// integer coercion used for bitwise and range operators.
func (v Value) ToInt() int64 {
	return int64(v.ToFloat())
}

// IsIntegral reports whether v's numeric value has no fractional part
// and is representable without loss — used by the range operator.
func (v Value) IsIntegral() bool {
	if v.Tag != Number {
		return false
	}
	return v.num == math.Trunc(v.num) && !math.IsInf(v.num, 0) && !math.IsNaN(v.num)
}

// ToDisplayString renders v the way string-context coercion and
// diagnostics do: numbers use Go's shortest round-trip form, strings
// pass through, everything else uses a stable debug form.
func (v Value) ToDisplayString() string {
	switch v.Tag {
	case Number:
		return formatNumber(v.num)
	case String:
		return v.str
	case Array:
		out := "["
		for i, e := range v.arr {
			if i > 0 {
				out += ", "
			}
			out += e.ToDisplayString()
		}
		return out + "]"
	case Dict:
		out := "{"
		for i, e := range v.DictEntries() {
			if i > 0 {
				out += ", "
			}
			out += e.Key + ": " + e.Value.ToDisplayString()
		}
		return out + "}"
	case Object:
		return "<object>"
	case Function:
		return "<function>"
	case Data:
		return fmt.Sprintf("<data:%T>", v.data)
	case Error:
		return fmt.Sprintf("error %d: %s", v.errCode, v.errMsg)
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// round10 rounds to 10 decimal places, the precision §4.5 mandates for
// == / != comparisons between numbers.
func round10(f float64) float64 {
	const scale = 1e10
	return math.Round(f*scale) / scale
}

// NumericEqual implements the == / != comparison rule: numbers compared
// after rounding to 10 decimals.
func NumericEqual(a, b float64) bool {
	return round10(a) == round10(b)
}

// Equal implements the == operator per §4.5 dispatch step 4: both
// operands are coerced to number unless both are string (compared
// byte-for-byte) — mixed or non-comparable tags fall back to the
// number-0 coercion before comparing.
func Equal(a, b Value) bool {
	if a.Tag == String && b.Tag == String {
		return a.str == b.str
	}
	return NumericEqual(a.ToFloat(), b.ToFloat())
}

// StrictEqual implements === : identical tags and exact value equality
// (numbers still compared at 10-decimal precision; strings by byte
// equality; every other tag compares false since the source has no
// defined structural equality for containers/objects under ===).
func StrictEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case Number:
		return NumericEqual(a.num, b.num)
	case String:
		return a.str == b.str
	default:
		return false
	}
}

package builtins

import (
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mtharden/vellum/pkg/registry"
	"github.com/mtharden/vellum/pkg/value"
)

// registerJSON installs the JSON interop helpers (the json family, §11),
// built on gjson/sjson so scripts can read and patch JSON documents
// passed in as plain strings without a full parse/marshal round trip
// for a single field access.
func registerJSON(r *registry.Registry) {
	r.SetFunction("jsonget", jsonGet, 2, 2)
	r.SetFunction("jsonset", jsonSet, 3, 3)
	r.SetFunction("jsonparse", jsonParse, 1, 1)
	r.SetFunction("jsonstringify", jsonStringify, 1, 1)
}

// jsonGet(doc, path) reads a gjson path expression out of doc,
// returning the matched value's own type (string/number/bool/array/
// object) rather than always a string.
func jsonGet(args []value.Value) value.Value {
	res := gjson.Get(args[0].ToDisplayString(), args[1].ToDisplayString())
	return fromGJSON(res)
}

// jsonSet(doc, path, val) writes val at path in doc via sjson,
// returning the patched document. An invalid path returns doc
// unchanged.
func jsonSet(args []value.Value) value.Value {
	out, err := sjson.Set(args[0].ToDisplayString(), args[1].ToDisplayString(), toJSONInterface(args[2]))
	if err != nil {
		return args[0]
	}
	return value.Str(out)
}

func jsonParse(args []value.Value) value.Value {
	doc := args[0].ToDisplayString()
	if !gjson.Valid(doc) {
		return value.Err(7, "invalid JSON document")
	}
	return fromGJSON(gjson.Parse(doc))
}

func jsonStringify(args []value.Value) value.Value {
	return value.Str(toJSONString(args[0]))
}

func fromGJSON(res gjson.Result) value.Value {
	switch res.Type {
	case gjson.String:
		return value.Str(res.String())
	case gjson.Number:
		return value.Num(res.Float())
	case gjson.True:
		return value.Num(1)
	case gjson.False:
		return value.Num(0)
	case gjson.Null:
		return value.Str("")
	}
	if res.IsArray() {
		var elems []value.Value
		res.ForEach(func(_, v gjson.Result) bool {
			elems = append(elems, fromGJSON(v))
			return true
		})
		return value.Arr(elems)
	}
	if res.IsObject() {
		d := value.NewDict()
		res.ForEach(func(k, v gjson.Result) bool {
			d.DictSet(k.String(), fromGJSON(v))
			return true
		})
		return d
	}
	return value.Str(res.String())
}

// toJSONInterface converts a Value into a plain Go value sjson can
// encode, mirroring fromGJSON's tag mapping in reverse.
func toJSONInterface(v value.Value) any {
	switch v.Tag {
	case value.Number:
		return v.AsNumber()
	case value.String:
		return v.AsString()
	case value.Array:
		arr := v.AsArray()
		out := make([]any, len(arr))
		for i, e := range arr {
			out[i] = toJSONInterface(e)
		}
		return out
	case value.Dict:
		out := make(map[string]any, v.DictLen())
		for _, e := range v.DictEntries() {
			out[e.Key] = toJSONInterface(e.Value)
		}
		return out
	default:
		return v.ToDisplayString()
	}
}

// toJSONString renders v as a JSON document. sjson only patches an
// existing document, so a lone value is set under a throwaway key and
// then lifted back out with gjson.
func toJSONString(v value.Value) string {
	doc, _ := sjson.Set(`{}`, "v", toJSONInterface(v))
	return gjson.Get(doc, "v").Raw
}

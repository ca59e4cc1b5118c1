package phpser

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ============================================================
// JSON Bridge
// ============================================================
//
// Converts JSON documents to values the way PHP's json_decode does,
// keeping object member order:
//   - integers that fit in 64 bits become ints, other numbers floats
//   - objects become associative arrays, or stdClass objects when
//     BridgeOpts.ObjectsAsStdClass is set
//   - numeric object keys become integer array keys

// BridgeOpts configures the JSON and YAML bridges.
type BridgeOpts struct {
	// ObjectsAsStdClass decodes objects/mappings as stdClass instances
	// instead of associative arrays.
	ObjectsAsStdClass bool

	// MaxDepth bounds nesting of the input document; 0 means unlimited.
	MaxDepth int
}

// DefaultBridgeOpts returns the default options (associative arrays).
func DefaultBridgeOpts() BridgeOpts {
	return BridgeOpts{}
}

// ErrInvalidJSON is returned for malformed JSON input.
var ErrInvalidJSON = errors.New("phpser: invalid JSON")

// FromJSON converts a JSON document to a value using default options.
func FromJSON(data []byte) (*Value, error) {
	return FromJSONWithOpts(data, DefaultBridgeOpts())
}

// FromJSONWithOpts converts a JSON document to a value.
func FromJSONWithOpts(data []byte, opts BridgeOpts) (*Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromJSONResult(gjson.ParseBytes(data), opts, 0)
}

func fromJSONResult(r gjson.Result, opts BridgeOpts, depth int) (*Value, error) {
	switch r.Type {
	case gjson.Null:
		return Null(), nil

	case gjson.True:
		return Bool(true), nil

	case gjson.False:
		return Bool(false), nil

	case gjson.Number:
		return jsonNumber(r), nil

	case gjson.String:
		return Str(r.Str), nil

	case gjson.JSON:
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return nil, errors.Wrapf(ErrDepthExceeded, "JSON nesting limit %d", opts.MaxDepth)
		}
		if r.IsArray() {
			return jsonArray(r, opts, depth)
		}
		return jsonObject(r, opts, depth)

	default:
		return nil, errors.Wrapf(ErrInvalidJSON, "unexpected token %q", r.Raw)
	}
}

// jsonNumber keeps integer literals exact and falls back to float like PHP.
func jsonNumber(r gjson.Result) *Value {
	if !strings.ContainsAny(r.Raw, ".eE") {
		if n, err := strconv.ParseInt(r.Raw, 10, 64); err == nil {
			return Int(n)
		}
	}
	f, err := strconv.ParseFloat(r.Raw, 64)
	if err != nil {
		return Float(r.Num)
	}
	return Float(f)
}

func jsonArray(r gjson.Result, opts BridgeOpts, depth int) (*Value, error) {
	a := NewArray()
	var err error
	r.ForEach(func(_, elem gjson.Result) bool {
		var v *Value
		v, err = fromJSONResult(elem, opts, depth+1)
		if err != nil {
			err = errors.WithMessagef(err, "array[%d]", a.Len())
			return false
		}
		a.Append(v)
		return true
	})
	if err != nil {
		return nil, err
	}
	return Arr(a), nil
}

func jsonObject(r gjson.Result, opts BridgeOpts, depth int) (*Value, error) {
	var (
		a   *Array
		obj *Object
		err error
	)
	if opts.ObjectsAsStdClass {
		obj = NewStdClass()
	} else {
		a = NewArray()
	}

	r.ForEach(func(key, elem gjson.Result) bool {
		var v *Value
		v, err = fromJSONResult(elem, opts, depth+1)
		if err != nil {
			err = errors.WithMessagef(err, "object[%q]", key.Str)
			return false
		}
		if obj != nil {
			obj.Set(key.Str, v)
		} else {
			a.Set(StrKey(key.Str), v)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if obj != nil {
		return Obj(obj), nil
	}
	return Arr(a), nil
}

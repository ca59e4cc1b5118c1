package phpser

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind represents PHP value kinds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindArray
	KindObject
	KindResource
	KindClosure // Callable; never serializable
)

// String returns the kind name as PHP's gettype() spells it.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "double"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindResource:
		return "resource"
	case KindClosure:
		return "Closure"
	default:
		return "unknown"
	}
}

// Value represents a PHP value. A nil *Value is null.
type Value struct {
	kind Kind

	// Scalar values (only one valid based on kind)
	boolVal  bool
	intVal   int64
	floatVal float64
	strVal   string

	// Composite values
	arrVal *Array
	objVal Record
	resVal *Resource
	fnVal  any
}

// Resource is an opaque handle to an external resource such as a stream.
type Resource struct {
	Type   string
	closed bool
}

// NewResource creates an open resource of the given type ("stream", "curl", ...).
func NewResource(typ string) *Resource {
	return &Resource{Type: typ}
}

// Close marks the resource closed.
func (r *Resource) Close() {
	r.closed = true
}

// Closed reports whether Close was called.
func (r *Resource) Closed() bool {
	return r.closed
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool creates a boolean value.
func Bool(v bool) *Value {
	return &Value{kind: KindBool, boolVal: v}
}

// Int creates an integer value.
func Int(v int64) *Value {
	return &Value{kind: KindInt, intVal: v}
}

// Float creates a float value.
func Float(v float64) *Value {
	return &Value{kind: KindFloat, floatVal: v}
}

// Str creates a string value. The string holds raw bytes and need not be UTF-8.
func Str(v string) *Value {
	return &Value{kind: KindString, strVal: v}
}

// Bytes creates a string value from raw bytes.
func Bytes(v []byte) *Value {
	return &Value{kind: KindString, strVal: string(v)}
}

// Arr wraps an array.
func Arr(a *Array) *Value {
	if a == nil {
		a = NewArray()
	}
	return &Value{kind: KindArray, arrVal: a}
}

// List creates an array with sequential integer keys starting at 0.
func List(values ...*Value) *Value {
	a := NewArray()
	for _, v := range values {
		a.Append(v)
	}
	return Arr(a)
}

// Map creates an array from key-value pairs, in order.
func Map(entries ...MapEntry) *Value {
	a := NewArray()
	for _, e := range entries {
		a.Set(e.Key, e.Value)
	}
	return Arr(a)
}

// Obj wraps a record.
func Obj(r Record) *Value {
	return &Value{kind: KindObject, objVal: r}
}

// Res wraps a resource handle.
func Res(r *Resource) *Value {
	return &Value{kind: KindResource, resVal: r}
}

// Callable wraps a function value. Callables cannot be serialized.
func Callable(fn any) *Value {
	return &Value{kind: KindClosure, fnVal: fn}
}

// MapEntry represents a key-value pair in an array literal.
type MapEntry struct {
	Key   Key
	Value *Value
}

// Entry creates a MapEntry with a string key (normalized like PHP array keys).
func Entry(key string, value *Value) MapEntry {
	return MapEntry{Key: StrKey(key), Value: value}
}

// IndexEntry creates a MapEntry with an integer key.
func IndexEntry(key int64, value *Value) MapEntry {
	return MapEntry{Key: IntKey(key), Value: value}
}

// ============================================================
// Accessors
// ============================================================

// Kind returns the value kind.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// IsNull returns true if this is a null value.
func (v *Value) IsNull() bool {
	return v == nil || v.kind == KindNull
}

// AsBool returns the boolean value.
func (v *Value) AsBool() (bool, error) {
	if err := v.expect(KindBool); err != nil {
		return false, err
	}
	return v.boolVal, nil
}

// AsInt returns the integer value.
func (v *Value) AsInt() (int64, error) {
	if err := v.expect(KindInt); err != nil {
		return 0, err
	}
	return v.intVal, nil
}

// AsFloat returns the float value.
func (v *Value) AsFloat() (float64, error) {
	if err := v.expect(KindFloat); err != nil {
		return 0, err
	}
	return v.floatVal, nil
}

// AsStr returns the string value.
func (v *Value) AsStr() (string, error) {
	if err := v.expect(KindString); err != nil {
		return "", err
	}
	return v.strVal, nil
}

// AsArray returns the array.
func (v *Value) AsArray() (*Array, error) {
	if err := v.expect(KindArray); err != nil {
		return nil, err
	}
	return v.arrVal, nil
}

// AsRecord returns the record of an object value.
func (v *Value) AsRecord() (Record, error) {
	if err := v.expect(KindObject); err != nil {
		return nil, err
	}
	return v.objVal, nil
}

// AsResource returns the resource handle.
func (v *Value) AsResource() (*Resource, error) {
	if err := v.expect(KindResource); err != nil {
		return nil, err
	}
	return v.resVal, nil
}

func (v *Value) expect(k Kind) error {
	if v.Kind() != k {
		return errors.Errorf("phpser: expected %s, got %s", k, v.Kind())
	}
	return nil
}

// String returns a short debugging representation, not the serialized form.
func (v *Value) String() string {
	switch v.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("bool(%t)", v.boolVal)
	case KindInt:
		return fmt.Sprintf("int(%d)", v.intVal)
	case KindFloat:
		return "float(" + FormatFloat(v.floatVal) + ")"
	case KindString:
		return fmt.Sprintf("string(%d) %q", len(v.strVal), v.strVal)
	case KindArray:
		return fmt.Sprintf("array(%d)", v.arrVal.Len())
	case KindObject:
		if v.objVal == nil {
			return "null"
		}
		return "object(" + v.objVal.ClassName() + ")"
	case KindResource:
		if v.resVal == nil {
			return "resource"
		}
		return "resource(" + v.resVal.Type + ")"
	default:
		return v.Kind().String()
	}
}

package phpser

import (
	"strings"
)

// Class names with special handling.
const (
	StdClassName         = "stdClass"
	AnonymousClassPrefix = "class@anonymous"
)

// Visibility is a property's declared visibility.
type Visibility uint8

const (
	Public Visibility = iota
	Protected
	Private
)

// String returns the PHP keyword.
func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	default:
		return "unknown"
	}
}

// FieldDescriptor describes one declared property.
type FieldDescriptor struct {
	Name       string
	Visibility Visibility
	// DeclaringClass names the class that declared a private property.
	// Empty means the record's own class.
	DeclaringClass string
	// Static properties belong to the class and are never serialized.
	Static bool
}

// MangledName returns the serialized property name for a record of the
// given class: name, \0*\0name or \0Declaring\0name.
func (d FieldDescriptor) MangledName(class string) string {
	switch d.Visibility {
	case Protected:
		return "\x00*\x00" + d.Name
	case Private:
		return "\x00" + d.declaringClass(class) + "\x00" + d.Name
	default:
		return d.Name
	}
}

func (d FieldDescriptor) declaringClass(class string) string {
	if d.DeclaringClass == "" {
		return class
	}
	return d.DeclaringClass
}

// inherited reports whether d is a private property of an ancestor class,
// invisible to the record's own class.
func (d FieldDescriptor) inherited(class string) bool {
	return d.Visibility == Private && d.declaringClass(class) != class
}

// ============================================================
// Record Capabilities
// ============================================================

// Record is a structured value with a class name and declared properties.
//
// DescribeFields lists every property the instance carries, including
// properties declared by ancestor classes (with DeclaringClass set).
// ReadField returns the current value of one of those properties.
//
// Records are compared by pointer identity; records that are not pointers
// are never considered the same instance.
type Record interface {
	ClassName() string
	DescribeFields() []FieldDescriptor
	ReadField(FieldDescriptor) *Value
}

// CustomSerializer is implemented by records that produce their own opaque
// payload (PHP's Serializable interface). The record encodes as C:.
type CustomSerializer interface {
	SerializeCustom() ([]byte, error)
}

// FieldOverrider is implemented by records that supply the full property map
// to serialize (PHP's __serialize). Keys and values are emitted verbatim.
type FieldOverrider interface {
	SerializeFields() (*Array, error)
}

// FieldSelector is implemented by records that restrict serialization to a
// list of property names (PHP's __sleep). The result should be an array of
// strings naming properties visible to the record's own class.
type FieldSelector interface {
	SelectFields() *Value
}

// IsAnonymousClass reports whether name is a synthetic anonymous class name.
func IsAnonymousClass(name string) bool {
	return strings.HasPrefix(name, AnonymousClassPrefix)
}

// ============================================================
// Object
// ============================================================

// Object is a general-purpose Record: declared properties plus dynamic
// public properties, like a PHP object of a plain class.
type Object struct {
	class  string
	fields []FieldDescriptor
	cells  []*Cell
}

// NewObject creates an object of the named class with no properties.
func NewObject(class string) *Object {
	return &Object{class: class}
}

// NewStdClass creates an empty stdClass object.
func NewStdClass() *Object {
	return NewObject(StdClassName)
}

// Declare adds a property. It returns o for chaining.
func (o *Object) Declare(d FieldDescriptor, v *Value) *Object {
	o.fields = append(o.fields, d)
	o.cells = append(o.cells, NewCell(v))
	return o
}

// Set assigns a property visible to the object's own class by name, or adds
// a dynamic public property. It returns o for chaining.
func (o *Object) Set(name string, v *Value) *Object {
	if i := o.lookup(name); i >= 0 {
		o.cells[i].Set(v)
		return o
	}
	return o.Declare(FieldDescriptor{Name: name}, v)
}

// Get returns a property visible to the object's own class by name.
func (o *Object) Get(name string) (*Value, bool) {
	if i := o.lookup(name); i >= 0 {
		return o.cells[i].Get(), true
	}
	return nil, false
}

func (o *Object) lookup(name string) int {
	for i, d := range o.fields {
		if d.Name == name && !d.Static && !d.inherited(o.class) {
			return i
		}
	}
	return -1
}

// ClassName implements Record.
func (o *Object) ClassName() string {
	return o.class
}

// DescribeFields implements Record.
func (o *Object) DescribeFields() []FieldDescriptor {
	return o.fields
}

// ReadField implements Record.
func (o *Object) ReadField(d FieldDescriptor) *Value {
	for i, f := range o.fields {
		if f.Name == d.Name && f.Visibility == d.Visibility &&
			f.declaringClass(o.class) == d.declaringClass(o.class) {
			return o.cells[i].Get()
		}
	}
	return nil
}

// ============================================================
// Incomplete Objects
// ============================================================

// RawField is a property stored under its already-mangled name.
type RawField struct {
	Name  string
	Value *Value
}

// IncompleteObject is an object restored from a payload whose class is not
// known. It keeps the original class name and mangled properties, which are
// serialized back verbatim.
type IncompleteObject struct {
	class  string
	fields []RawField
}

// NewIncompleteObject creates an incomplete object.
func NewIncompleteObject(class string, fields ...RawField) *IncompleteObject {
	return &IncompleteObject{class: class, fields: fields}
}

// ClassName implements Record.
func (o *IncompleteObject) ClassName() string {
	return o.class
}

// DescribeFields implements Record. Mangled names are reported as public.
func (o *IncompleteObject) DescribeFields() []FieldDescriptor {
	out := make([]FieldDescriptor, len(o.fields))
	for i, f := range o.fields {
		out[i] = FieldDescriptor{Name: f.Name}
	}
	return out
}

// ReadField implements Record.
func (o *IncompleteObject) ReadField(d FieldDescriptor) *Value {
	for _, f := range o.fields {
		if f.Name == d.Name {
			return f.Value
		}
	}
	return nil
}

// RawFields returns the mangled properties in order.
func (o *IncompleteObject) RawFields() []RawField {
	return o.fields
}

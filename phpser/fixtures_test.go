package phpser

import (
	"github.com/pkg/errors"
)

// Test records modelled on common PHP class shapes.

const propertiesClass = "ClassWithProperties"

// classWithProperties mirrors
//
//	class ClassWithProperties {
//	    public $a = 1;
//	    protected $b = 'two';
//	    private $g = 1;
//	    private $c = ['three', 3];
//	    public static $d = 4;
//	}
func classWithProperties() *Object {
	return declareProperties(NewObject(propertiesClass), "")
}

func declareProperties(o *Object, declaring string) *Object {
	return o.
		Declare(FieldDescriptor{Name: "a"}, Int(1)).
		Declare(FieldDescriptor{Name: "b", Visibility: Protected}, Str("two")).
		Declare(FieldDescriptor{Name: "g", Visibility: Private, DeclaringClass: declaring}, Int(1)).
		Declare(FieldDescriptor{Name: "c", Visibility: Private, DeclaringClass: declaring}, List(Str("three"), Int(3))).
		Declare(FieldDescriptor{Name: "d", Static: true}, Int(4))
}

// classWithInheritedProperties mirrors
//
//	class ClassWithInheritedProperties extends ClassWithProperties {
//	    public $h = 'h';
//	}
func classWithInheritedProperties() *Object {
	o := NewObject("ClassWithInheritedProperties").
		Declare(FieldDescriptor{Name: "h"}, Str("h"))
	return declareProperties(o, propertiesClass)
}

// sleepy implements __sleep.
type sleepy struct {
	*Object
	names *Value
}

func (s *sleepy) SelectFields() *Value {
	return s.names
}

// classWithSleep mirrors a class with public $a, protected $b and private $c
// whose __sleep returns names.
func classWithSleep(names *Value) *sleepy {
	o := NewObject("ClassWithSleep").
		Declare(FieldDescriptor{Name: "a"}, Int(1)).
		Declare(FieldDescriptor{Name: "b", Visibility: Protected}, Str("two")).
		Declare(FieldDescriptor{Name: "c", Visibility: Private}, List(Str("three"), Int(3)))
	return &sleepy{Object: o, names: names}
}

func names(ss ...string) *Value {
	vals := make([]*Value, len(ss))
	for i, s := range ss {
		vals[i] = Str(s)
	}
	return List(vals...)
}

// magic implements __serialize.
type magic struct {
	*Object
	fields *Array
	err    error
}

func (m *magic) SerializeFields() (*Array, error) {
	return m.fields, m.err
}

func magicFields() *Array {
	return Map(Entry("foo", Str("bar")), IndexEntry(1, Int(2))).arrVal
}

// custom implements Serializable.
type custom struct {
	*Object
	payload string
	err     error
}

func (c *custom) SerializeCustom() ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}
	return []byte(c.payload), nil
}

// magicCustom implements both Serializable and __serialize.
type magicCustom struct {
	custom
}

func (m *magicCustom) SerializeFields() (*Array, error) {
	return magicFields(), nil
}

// magicSleepy implements both __serialize and __sleep.
type magicSleepy struct {
	magic
}

func (m *magicSleepy) SelectFields() *Value {
	return names("nope")
}

// sleepyCustom implements both __sleep and Serializable.
type sleepyCustom struct {
	custom
}

func (s *sleepyCustom) SelectFields() *Value {
	return names("nope")
}

var errHookFailed = errors.New("hook failed")

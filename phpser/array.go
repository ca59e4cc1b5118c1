package phpser

import (
	"math"
	"strconv"

	"github.com/ccoveille/go-safecast"
	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

// ErrInvalidKey is returned by KeyOf for values PHP cannot use as array keys.
var ErrInvalidKey = errors.New("phpser: illegal offset type")

// Key is a PHP array key: either an integer or a string.
type Key struct {
	isStr bool
	n     int64
	s     string
}

// IntKey creates an integer key.
func IntKey(n int64) Key {
	return Key{n: n}
}

// StrKey creates a string key. Decimal strings in canonical integer form
// ("7", "-3", but not "07" or "+3") become integer keys, as in PHP.
func StrKey(s string) Key {
	if n, ok := canonicalIntString(s); ok {
		return Key{n: n}
	}
	return Key{isStr: true, s: s}
}

// KeyOf converts a scalar value to an array key using PHP's key coercion:
// bools become 0/1, floats are truncated, null becomes "".
func KeyOf(v *Value) (Key, error) {
	switch v.Kind() {
	case KindNull:
		return Key{isStr: true}, nil
	case KindBool:
		if v.boolVal {
			return IntKey(1), nil
		}
		return IntKey(0), nil
	case KindInt:
		return IntKey(v.intVal), nil
	case KindFloat:
		if math.IsNaN(v.floatVal) || math.IsInf(v.floatVal, 0) {
			return Key{}, errors.Wrapf(ErrInvalidKey, "float %s", FormatFloat(v.floatVal))
		}
		n, err := safecast.ToInt64(math.Trunc(v.floatVal))
		if err != nil {
			return Key{}, errors.Wrapf(ErrInvalidKey, "float %s: %v", FormatFloat(v.floatVal), err)
		}
		return IntKey(n), nil
	case KindString:
		return StrKey(v.strVal), nil
	default:
		return Key{}, errors.Wrapf(ErrInvalidKey, "%s", v.Kind())
	}
}

// IsString reports whether the key is a string key.
func (k Key) IsString() bool {
	return k.isStr
}

// Int returns the integer key; zero for string keys.
func (k Key) Int() int64 {
	return k.n
}

// Str returns the string key; empty for integer keys.
func (k Key) Str() string {
	return k.s
}

// Value returns the key as a PHP value.
func (k Key) Value() *Value {
	if k.isStr {
		return Str(k.s)
	}
	return Int(k.n)
}

// Name returns the key as an object property name.
func (k Key) Name() string {
	if k.isStr {
		return k.s
	}
	return strconv.FormatInt(k.n, 10)
}

// String formats the key for diagnostics.
func (k Key) String() string {
	if k.isStr {
		return strconv.Quote(k.s)
	}
	return strconv.FormatInt(k.n, 10)
}

func canonicalIntString(s string) (int64, bool) {
	if s == "" || len(s) > 20 {
		return 0, false
	}
	digits := s
	if s[0] == '-' {
		digits = s[1:]
	}
	if digits == "" || (digits[0] == '0' && len(digits) > 1) || s == "-0" {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// ============================================================
// Storage Cells
// ============================================================

// Cell is a storage slot holding one value. Two array entries bound to the
// same *Cell are PHP references to each other; entries with merely equal
// values live in distinct cells.
type Cell struct {
	v *Value
}

// NewCell creates a cell holding v.
func NewCell(v *Value) *Cell {
	return &Cell{v: v}
}

// Get returns the held value.
func (c *Cell) Get() *Value {
	return c.v
}

// Set replaces the held value, visible through every entry bound to c.
func (c *Cell) Set(v *Value) {
	c.v = v
}

// ============================================================
// Array
// ============================================================

// Array is an ordered PHP array. Entries keep insertion order; overwriting a
// key keeps its position. The zero value is an empty array ready to use.
type Array struct {
	m         *orderedmap.OrderedMap[Key, *Cell]
	nextIndex int64
}

// NewArray creates an empty array.
func NewArray() *Array {
	return &Array{m: orderedmap.NewOrderedMap[Key, *Cell]()}
}

// Len returns the number of entries.
func (a *Array) Len() int {
	if a.m == nil {
		return 0
	}
	return a.m.Len()
}

// Get returns the value stored under k.
func (a *Array) Get(k Key) (*Value, bool) {
	c, ok := a.lookup(k)
	if !ok {
		return nil, false
	}
	return c.v, true
}

// Set assigns v to k. An existing entry is written through its cell, so
// entries referencing the same cell observe the change.
func (a *Array) Set(k Key, v *Value) {
	if c, ok := a.lookup(k); ok {
		c.v = v
		return
	}
	a.bind(k, NewCell(v))
}

// SetRef binds k to cell c, making it a reference to every other entry bound
// to c (PHP's $a[k] = &...).
func (a *Array) SetRef(k Key, c *Cell) {
	a.bind(k, c)
}

// Ref returns the cell bound to k, creating a null entry when k is absent.
func (a *Array) Ref(k Key) *Cell {
	if c, ok := a.lookup(k); ok {
		return c
	}
	c := NewCell(Null())
	a.bind(k, c)
	return c
}

// Append stores v under the next free integer key and returns that key.
func (a *Array) Append(v *Value) Key {
	k := IntKey(a.nextIndex)
	a.bind(k, NewCell(v))
	return k
}

// AppendRef binds the next free integer key to c and returns that key.
func (a *Array) AppendRef(c *Cell) Key {
	k := IntKey(a.nextIndex)
	a.bind(k, c)
	return k
}

// Delete removes k.
func (a *Array) Delete(k Key) bool {
	if a.m == nil {
		return false
	}
	return a.m.Delete(k)
}

// Keys returns the keys in order.
func (a *Array) Keys() []Key {
	if a.m == nil {
		return nil
	}
	return a.m.Keys()
}

// Each calls fn for every entry in order until fn returns false.
func (a *Array) Each(fn func(k Key, c *Cell) bool) {
	if a.m == nil {
		return
	}
	for el := a.m.Front(); el != nil; el = el.Next() {
		if !fn(el.Key, el.Value) {
			return
		}
	}
}

func (a *Array) lookup(k Key) (*Cell, bool) {
	if a.m == nil {
		return nil, false
	}
	return a.m.Get(k)
}

func (a *Array) bind(k Key, c *Cell) {
	if a.m == nil {
		a.m = orderedmap.NewOrderedMap[Key, *Cell]()
	}
	a.m.Set(k, c)
	if !k.isStr && k.n >= a.nextIndex && k.n < math.MaxInt64 {
		a.nextIndex = k.n + 1
	}
}

// entries returns parallel slices of keys and cells, in order.
func (a *Array) entries() ([]Key, []*Cell) {
	keys := make([]Key, 0, a.Len())
	cells := make([]*Cell, 0, a.Len())
	a.Each(func(k Key, c *Cell) bool {
		keys = append(keys, k)
		cells = append(cells, c)
		return true
	})
	return keys, cells
}

package phpser

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/ccoveille/go-safecast"
	"github.com/pkg/errors"
)

// ============================================================
// Go Value Adapter
// ============================================================
//
// FromGo builds a value graph from ordinary Go values:
//   - bool, ints, floats, strings, []byte map to scalars
//   - uint64 values beyond int64 range become floats, as PHP does
//   - slices and arrays become lists; maps become arrays with sorted keys
//   - structs become objects; embedded structs act as parent classes
//   - funcs become callables (and fail to serialize)
//   - a pointer seen twice maps to the same object instance
//   - *Value, Record and *Resource are used as-is
//
// Struct fields are described by the `php` tag:
//
//	Name  string `php:"name"`            public, renamed
//	Token string `php:"token,private"`   private to the declaring struct
//	Cache []int  `php:",protected"`      protected, Go name kept
//	Count int    `php:",static"`         never serialized
//	Skip  int    `php:"-"`               ignored

// ClassNamer lets a Go type choose its PHP class name. Without it the Go
// type name is used; unnamed struct types are anonymous classes.
type ClassNamer interface {
	PHPClassName() string
}

var classNamerType = reflect.TypeOf((*ClassNamer)(nil)).Elem()

// structMeta captures the PHP view of a Go struct type.
type structMeta struct {
	class  string
	fields []fieldMeta
}

type fieldMeta struct {
	desc  FieldDescriptor
	index []int
}

var structMetaCache sync.Map // map[reflect.Type]*structMeta

// FromGo converts a Go value to a *Value.
func FromGo(v any) (*Value, error) {
	c := &goConverter{
		seen:   make(map[visitKey]*Value),
		active: make(map[visitKey]bool),
	}
	return c.convert(reflect.ValueOf(v))
}

type visitKey struct {
	ptr uintptr
	typ reflect.Type
	len int // slices only; a sub-slice shares its parent's pointer
}

type goConverter struct {
	seen   map[visitKey]*Value
	active map[visitKey]bool // maps, slices and pointers still being converted
}

func (c *goConverter) convert(rv reflect.Value) (*Value, error) {
	if !rv.IsValid() {
		return Null(), nil
	}
	if isNilable(rv.Kind()) && rv.IsNil() {
		return Null(), nil
	}

	if rv.CanInterface() {
		switch x := rv.Interface().(type) {
		case *Value:
			return x, nil
		case *Resource:
			return Res(x), nil
		case Record:
			return Obj(x), nil
		}
	}

	switch rv.Kind() {
	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		n, err := safecast.ToInt64(u)
		if err != nil {
			return Float(float64(u)), nil
		}
		return Int(n), nil

	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil

	case reflect.String:
		return Str(rv.String()), nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Bytes(rv.Bytes()), nil
		}
		done, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer done()
		return c.list(rv)

	case reflect.Array:
		return c.list(rv)

	case reflect.Map:
		done, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer done()
		return c.assoc(rv)

	case reflect.Pointer:
		key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
		if v, ok := c.seen[key]; ok {
			return v, nil
		}
		if rv.Elem().Kind() == reflect.Struct {
			meta := getStructMeta(rv.Elem().Type())
			obj := NewObject(meta.class)
			v := Obj(obj)
			c.seen[key] = v
			if err := c.fill(obj, meta, rv.Elem()); err != nil {
				return nil, err
			}
			return v, nil
		}
		done, err := c.enter(rv)
		if err != nil {
			return nil, err
		}
		defer done()
		return c.convert(rv.Elem())

	case reflect.Interface:
		return c.convert(rv.Elem())

	case reflect.Struct:
		meta := getStructMeta(rv.Type())
		obj := NewObject(meta.class)
		if err := c.fill(obj, meta, rv); err != nil {
			return nil, err
		}
		return Obj(obj), nil

	case reflect.Func:
		if rv.CanInterface() {
			return Callable(rv.Interface()), nil
		}
		return Callable(nil), nil

	default:
		return nil, errors.Errorf("phpser: unsupported Go type %s", rv.Type())
	}
}

// enter marks a map, slice or pointer as open. Meeting it again before done
// is called means it contains itself.
func (c *goConverter) enter(rv reflect.Value) (done func(), err error) {
	if rv.Kind() != reflect.Pointer && rv.Len() == 0 {
		return func() {}, nil
	}
	key := visitKey{ptr: rv.Pointer(), typ: rv.Type()}
	if rv.Kind() == reflect.Slice {
		key.len = rv.Len()
	}
	if c.active[key] {
		return nil, errors.Wrapf(ErrCyclicValue, "Go %s", rv.Type())
	}
	c.active[key] = true
	return func() { delete(c.active, key) }, nil
}

func (c *goConverter) list(rv reflect.Value) (*Value, error) {
	a := NewArray()
	for i := 0; i < rv.Len(); i++ {
		v, err := c.convert(rv.Index(i))
		if err != nil {
			return nil, errors.WithMessagef(err, "index %d", i)
		}
		a.Append(v)
	}
	return Arr(a), nil
}

func (c *goConverter) assoc(rv reflect.Value) (*Value, error) {
	type pair struct {
		key Key
		val reflect.Value
	}
	pairs := make([]pair, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		kv, err := c.convert(iter.Key())
		if err != nil {
			return nil, err
		}
		k, err := KeyOf(kv)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, pair{key: k, val: iter.Value()})
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return keyLess(pairs[i].key, pairs[j].key)
	})

	a := NewArray()
	for _, p := range pairs {
		v, err := c.convert(p.val)
		if err != nil {
			return nil, errors.WithMessagef(err, "key %s", p.key)
		}
		a.Set(p.key, v)
	}
	return Arr(a), nil
}

func (c *goConverter) fill(obj *Object, meta *structMeta, rv reflect.Value) error {
	for _, f := range meta.fields {
		v, err := c.convert(rv.FieldByIndex(f.index))
		if err != nil {
			return errors.WithMessagef(err, "field %s of %s", f.desc.Name, meta.class)
		}
		obj.Declare(f.desc, v)
	}
	return nil
}

// keyLess orders integer keys before string keys.
func keyLess(a, b Key) bool {
	if a.isStr != b.isStr {
		return !a.isStr
	}
	if a.isStr {
		return a.s < b.s
	}
	return a.n < b.n
}

func isNilable(k reflect.Kind) bool {
	switch k {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}

// ============================================================
// Struct Metadata
// ============================================================

// getStructMeta returns cached metadata for a struct type, building it once.
func getStructMeta(t reflect.Type) *structMeta {
	if meta, ok := structMetaCache.Load(t); ok {
		return meta.(*structMeta)
	}
	meta := &structMeta{class: classNameOf(t)}
	collectFields(t, meta.class, nil, meta, map[reflect.Type]bool{t: true})
	actual, _ := structMetaCache.LoadOrStore(t, meta)
	return actual.(*structMeta)
}

// collectFields walks t's fields. Embedded struct values contribute their
// fields with their own type as the declaring class. Embedded pointers are
// skipped since they may be nil.
func collectFields(t reflect.Type, declaring string, prefix []int, meta *structMeta, visited map[reflect.Type]bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("php")
		if tag == "-" {
			continue
		}
		index := append(append([]int(nil), prefix...), i)

		if sf.Anonymous && tag == "" && sf.Type.Kind() == reflect.Struct {
			if !visited[sf.Type] {
				visited[sf.Type] = true
				collectFields(sf.Type, classNameOf(sf.Type), index, meta, visited)
			}
			continue
		}
		if sf.Anonymous && sf.Type.Kind() == reflect.Pointer {
			continue
		}
		if !sf.IsExported() {
			continue
		}

		name, opts, _ := strings.Cut(tag, ",")
		if name == "" {
			name = sf.Name
		}
		d := FieldDescriptor{Name: name}
		for _, opt := range strings.Split(opts, ",") {
			switch opt {
			case "protected":
				d.Visibility = Protected
			case "private":
				d.Visibility = Private
				d.DeclaringClass = declaring
			case "static":
				d.Static = true
			}
		}
		meta.fields = append(meta.fields, fieldMeta{desc: d, index: index})
	}
}

func classNameOf(t reflect.Type) string {
	if reflect.PointerTo(t).Implements(classNamerType) {
		return reflect.New(t).Interface().(ClassNamer).PHPClassName()
	}
	if t.Name() == "" {
		return AnonymousClassPrefix
	}
	return t.Name()
}

// ResetStructMetaCache clears computed struct metadata; intended for tests.
func ResetStructMetaCache() {
	structMetaCache.Range(func(key, _ any) bool {
		structMetaCache.Delete(key)
		return true
	})
}

package phpser

import (
	"github.com/pkg/errors"
)

// planMode selects how a record is written.
type planMode uint8

const (
	modeFields   planMode = iota // O: with plan entries
	modeCustom                   // C: with an opaque payload
	modeDegraded                 // N; after a malformed field selector
)

type planEntry struct {
	key   Key
	value *Value
}

// recordPlan is what the encoder emits for one record.
type recordPlan struct {
	class   string
	mode    planMode
	payload []byte
	entries []planEntry
	notice  *HookNotice
}

// introspect decides how rec is serialized. Hooks are consulted in order:
// custom payload, field override, then the default property walk filtered by
// a field selector.
func introspect(rec Record) (recordPlan, error) {
	class := rec.ClassName()
	plan := recordPlan{class: class}

	if IsAnonymousClass(class) {
		return plan, &DisallowedTypeError{Type: TypeAnonymous}
	}

	if cs, ok := rec.(CustomSerializer); ok {
		payload, err := cs.SerializeCustom()
		if err != nil {
			return plan, errors.Wrapf(err, "serialize %s", class)
		}
		plan.mode = modeCustom
		plan.payload = payload
		return plan, nil
	}

	if fo, ok := rec.(FieldOverrider); ok {
		arr, err := fo.SerializeFields()
		if err != nil {
			return plan, errors.Wrapf(err, "__serialize %s", class)
		}
		if arr != nil {
			arr.Each(func(k Key, c *Cell) bool {
				plan.entries = append(plan.entries, planEntry{key: k, value: c.Get()})
				return true
			})
		}
		return plan, nil
	}

	if inc, ok := rec.(*IncompleteObject); ok {
		for _, f := range inc.RawFields() {
			plan.entries = append(plan.entries, planEntry{key: Key{isStr: true, s: f.Name}, value: f.Value})
		}
		return plan, nil
	}

	own, inherited := partitionFields(class, rec.DescribeFields())

	if sel, ok := rec.(FieldSelector); ok {
		kept, notice := selectFields(class, own, sel.SelectFields())
		if notice != nil {
			plan.mode = modeDegraded
			plan.notice = notice
			return plan, nil
		}
		own, inherited = kept, nil
	}

	plan.entries = make([]planEntry, 0, len(own)+len(inherited))
	for _, list := range [][]FieldDescriptor{own, inherited} {
		for _, d := range list {
			plan.entries = append(plan.entries, planEntry{
				key:   Key{isStr: true, s: d.MangledName(class)},
				value: rec.ReadField(d),
			})
		}
	}
	return plan, nil
}

// partitionFields drops static properties and splits the rest into those
// visible to the class itself and private properties of ancestors.
func partitionFields(class string, fields []FieldDescriptor) (own, inherited []FieldDescriptor) {
	for _, d := range fields {
		switch {
		case d.Static:
		case d.inherited(class):
			inherited = append(inherited, d)
		default:
			own = append(own, d)
		}
	}
	return own, inherited
}

// selectFields keeps the properties named by a selector result, in
// declaration order. Names are matched unmangled.
func selectFields(class string, own []FieldDescriptor, names *Value) ([]FieldDescriptor, *HookNotice) {
	arr, err := names.AsArray()
	if err != nil {
		return nil, notArrayNotice(class)
	}

	wanted := make(map[string]struct{}, arr.Len())
	var notice *HookNotice
	arr.Each(func(_ Key, c *Cell) bool {
		name, err := c.Get().AsStr()
		if err != nil {
			notice = notArrayNotice(class)
			return false
		}
		if !declares(own, name) {
			notice = unknownFieldNotice(class, name)
			return false
		}
		wanted[name] = struct{}{}
		return true
	})
	if notice != nil {
		return nil, notice
	}

	kept := make([]FieldDescriptor, 0, len(wanted))
	for _, d := range own {
		if _, ok := wanted[d.Name]; ok {
			kept = append(kept, d)
		}
	}
	return kept, nil
}

func declares(fields []FieldDescriptor, name string) bool {
	for _, d := range fields {
		if d.Name == name {
			return true
		}
	}
	return false
}

package phpser

import (
	"fmt"
	"reflect"
)

// Slot numbering inside one container: slot 1 is the container itself and
// the value of entry i occupies slot i+2.
const (
	containerSlot = 1
	firstSlot     = 2
)

// slotOf returns the back-reference position of entry i.
func slotOf(i int) int {
	return firstSlot + i
}

// findAlias reports the slot of the first entry before cells[current] bound
// to the same storage cell. Only identity counts: a shared cell necessarily
// holds an equal value, while equal values in distinct cells are not aliases.
func findAlias(cells []*Cell, current int) (int, bool) {
	if current < 0 || current >= len(cells) {
		panic(fmt.Sprintf("phpser: alias lookup for entry %d of %d", current, len(cells)))
	}
	target := cells[current]
	for i := 0; i < current; i++ {
		if cells[i] == target {
			return slotOf(i), true
		}
	}
	return 0, false
}

// findRecordAlias reports the index of the first value before values[current]
// that is the same record instance. Object back-references count every value
// written in between, so the caller maps the index to a slot.
func findRecordAlias(values []*Value, current int) (int, bool) {
	if current < 0 || current >= len(values) {
		panic(fmt.Sprintf("phpser: record lookup for field %d of %d", current, len(values)))
	}
	target := values[current]
	if target.Kind() != KindObject {
		return 0, false
	}
	for i := 0; i < current; i++ {
		if values[i].Kind() == KindObject && sameRecord(values[i].objVal, target.objVal) {
			return i, true
		}
	}
	return 0, false
}

// sameRecord reports whether a and b are the same record instance.
func sameRecord(a, b Record) bool {
	if a == nil || b == nil {
		return false
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || ta.Kind() != reflect.Pointer {
		return false
	}
	return a == b
}

// isSelf reports whether v refers to the container being encoded.
func isSelf(v *Value, container any) bool {
	switch v.Kind() {
	case KindArray:
		a, ok := container.(*Array)
		return ok && v.arrVal == a
	case KindObject:
		r, ok := container.(Record)
		return ok && sameRecord(v.objVal, r)
	default:
		return false
	}
}

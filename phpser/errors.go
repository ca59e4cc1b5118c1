package phpser

import (
	"fmt"

	"github.com/pkg/errors"
)

// Encode errors.
var (
	// ErrDisallowedType matches every *DisallowedTypeError.
	ErrDisallowedType = errors.New("phpser: disallowed type")
	// ErrMalformedHook matches every *HookNotice.
	ErrMalformedHook = errors.New("phpser: malformed __sleep result")
	// ErrCyclicValue is returned for cycles that pass through more than one container.
	ErrCyclicValue = errors.New("phpser: cyclic value graph")
	// ErrDepthExceeded is returned when nesting exceeds Options.MaxDepth.
	ErrDepthExceeded = errors.New("phpser: maximum depth exceeded")
)

// Type names reported by DisallowedTypeError.
const (
	TypeClosure   = "Closure"
	TypeAnonymous = AnonymousClassPrefix
)

// DisallowedTypeError reports a value PHP refuses to serialize.
// It aborts the whole call.
type DisallowedTypeError struct {
	Type string
}

func (e *DisallowedTypeError) Error() string {
	return fmt.Sprintf("Serialization of '%s' is not allowed", e.Type)
}

// Is makes errors.Is(err, ErrDisallowedType) hold.
func (e *DisallowedTypeError) Is(target error) bool {
	return target == ErrDisallowedType
}

// HookNotice reports a field selector that returned something unusable.
// It is not returned from Serialize: the offending record encodes as N; and
// the notice goes to Options.OnNotice and Options.Logger.
type HookNotice struct {
	Class   string
	Field   string // first unknown field, empty when the result was not a name list
	Message string
}

func (e *HookNotice) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrMalformedHook) hold.
func (e *HookNotice) Is(target error) bool {
	return target == ErrMalformedHook
}

func notArrayNotice(class string) *HookNotice {
	return &HookNotice{
		Class:   class,
		Message: "__sleep should return an array only containing the names of instance-variables to serialize",
	}
}

func unknownFieldNotice(class, field string) *HookNotice {
	return &HookNotice{
		Class:   class,
		Field:   field,
		Message: fmt.Sprintf(`"%s" returned as member variable from __sleep() but does not exist`, field),
	}
}

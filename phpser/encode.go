package phpser

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"
	"go.uber.org/zap"
)

var defaultEncoder = NewEncoder(DefaultOptions())

// Serialize encodes v in PHP serialize() format using default options.
func Serialize(v *Value) (string, error) {
	return defaultEncoder.Serialize(v)
}

// Encoder converts values to PHP serialize() format.
// An Encoder holds no per-call state and is safe for concurrent use.
type Encoder struct {
	opts Options
	log  *zap.Logger
}

// NewEncoder creates an encoder with the given options.
func NewEncoder(opts Options) *Encoder {
	return &Encoder{opts: opts, log: opts.logger()}
}

// Serialize encodes v. On error nothing is returned; there is no partial output.
func (e *Encoder) Serialize(v *Value) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := e.encodeInto(buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Append appends the encoding of v to dst. On error dst is returned unchanged.
func (e *Encoder) Append(dst []byte, v *Value) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := e.encodeInto(buf, v); err != nil {
		return dst, err
	}
	return append(dst, buf.B...), nil
}

func (e *Encoder) encodeInto(buf *bytebufferpool.ByteBuffer, v *Value) error {
	s := &encodeState{enc: e, buf: buf}
	return s.encode(v)
}

// encodeState is the traversal state of one Serialize call.
type encodeState struct {
	enc   *Encoder
	buf   *bytebufferpool.ByteBuffer
	stack []any // containers being encoded, outermost first
	slots int   // values written so far, counted the way unserialize numbers them
}

func (s *encodeState) encode(v *Value) error {
	s.slots++
	switch v.Kind() {
	case KindClosure:
		return &DisallowedTypeError{Type: TypeClosure}
	case KindNull:
		s.buf.B = appendNull(s.buf.B)
	case KindBool:
		s.buf.B = appendBool(s.buf.B, v.boolVal)
	case KindString:
		s.buf.B = appendString(s.buf.B, v.strVal)
	case KindInt:
		s.buf.B = appendInt(s.buf.B, v.intVal)
	case KindFloat:
		s.buf.B = appendFloat(s.buf.B, v.floatVal)
	case KindArray:
		return s.encodeArray(v.arrVal)
	case KindObject:
		if v.objVal == nil {
			s.buf.B = appendNull(s.buf.B)
			return nil
		}
		return s.encodeObject(v.objVal)
	case KindResource:
		// Open and closed handles alike.
		s.buf.B = append(s.buf.B, tokenResource...)
	default:
		return errors.Errorf("phpser: unknown value kind %d", v.Kind())
	}
	return nil
}

func (s *encodeState) encodeArray(a *Array) error {
	if err := s.enter(a); err != nil {
		return err
	}
	defer s.leave()

	keys, cells := a.entries()
	s.buf.B = append(s.buf.B, "a:"...)
	s.buf.B = strconv.AppendInt(s.buf.B, int64(len(keys)), 10)
	s.buf.B = append(s.buf.B, ':', '{')

	for i, k := range keys {
		s.buf.B = appendKey(s.buf.B, k)

		if pos, ok := findAlias(cells, i); ok {
			s.buf.B = appendBackref(s.buf.B, 'R', pos)
			continue
		}
		v := cells[i].Get()
		if isSelf(v, a) {
			s.buf.B = appendBackref(s.buf.B, 'R', containerSlot)
			continue
		}
		if err := s.encode(v); err != nil {
			return errors.WithMessagef(err, "array key %s", k)
		}
	}

	s.buf.B = append(s.buf.B, '}')
	return nil
}

func (s *encodeState) encodeObject(rec Record) error {
	if err := s.enter(rec); err != nil {
		return err
	}
	defer s.leave()

	plan, err := introspect(rec)
	if err != nil {
		return err
	}

	switch plan.mode {
	case modeDegraded:
		s.notify(plan.notice)
		s.buf.B = appendNull(s.buf.B)

	case modeCustom:
		s.buf.B = appendHeader(s.buf.B, 'C', plan.class, len(plan.payload))
		s.buf.B = append(s.buf.B, plan.payload...)
		s.buf.B = append(s.buf.B, '}')

	default:
		values := make([]*Value, len(plan.entries))
		for i, e := range plan.entries {
			values[i] = e.value
		}
		// The record took its slot when encode counted it.
		base := s.slots - containerSlot
		fieldSlots := make([]int, len(plan.entries))

		s.buf.B = appendHeader(s.buf.B, 'O', plan.class, len(plan.entries))
		for i, e := range plan.entries {
			s.buf.B = appendKey(s.buf.B, e.key)
			fieldSlots[i] = s.slots + 1 - base

			if isSelf(e.value, rec) {
				s.slots++
				s.buf.B = appendBackref(s.buf.B, 'r', containerSlot)
				continue
			}
			if j, ok := findRecordAlias(values, i); ok {
				s.slots++
				s.buf.B = appendBackref(s.buf.B, 'r', fieldSlots[j])
				continue
			}
			if err := s.encode(e.value); err != nil {
				return errors.WithMessagef(err, "field %s of %s", e.key, plan.class)
			}
		}
		s.buf.B = append(s.buf.B, '}')
	}
	return nil
}

// enter pushes a container, rejecting cycles and excessive nesting.
func (s *encodeState) enter(c any) error {
	if limit := s.enc.opts.MaxDepth; limit > 0 && len(s.stack) >= limit {
		return errors.Wrapf(ErrDepthExceeded, "limit %d", limit)
	}
	for _, open := range s.stack {
		if sameContainer(open, c) {
			return ErrCyclicValue
		}
	}
	s.stack = append(s.stack, c)
	return nil
}

func (s *encodeState) leave() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *encodeState) notify(n *HookNotice) {
	s.enc.log.Warn("malformed __sleep result",
		zap.String("class", n.Class),
		zap.String("field", n.Field),
		zap.String("notice", n.Message))
	if s.enc.opts.OnNotice != nil {
		s.enc.opts.OnNotice(n)
	}
}

func sameContainer(a, b any) bool {
	switch x := a.(type) {
	case *Array:
		y, ok := b.(*Array)
		return ok && x == y
	case Record:
		y, ok := b.(Record)
		return ok && sameRecord(x, y)
	default:
		return false
	}
}

// Copyright (c) 2025 Neomantra Corp

package fbs

import "encoding/binary"

// writer is a bump allocator that fills a byte slice from its end
// backward, growing on demand. Every recorded reference point is
// tracked as offset(), the cumulative count of bytes written so far,
// rather than a raw slice index, so that a later grow (which
// reallocates and shifts every live byte) never invalidates an
// already-recorded position.
type writer struct {
	out []byte
	pos int
}

func newWriter(capacityHint int) *writer {
	if capacityHint < 64 {
		capacityHint = 64
	}
	return &writer{out: make([]byte, capacityHint), pos: capacityHint}
}

// offset returns the cumulative count of bytes written so far.
func (w *writer) offset() int { return len(w.out) - w.pos }

func (w *writer) grow(need int) {
	used := len(w.out) - w.pos
	newCap := len(w.out) * 2
	for newCap < used+need {
		newCap *= 2
	}
	nb := make([]byte, newCap)
	copy(nb[newCap-used:], w.out[w.pos:])
	w.out = nb
	w.pos = newCap - used
}

// reserve claims n bytes immediately below the current cursor and
// returns their raw start index, valid until the next grow.
func (w *writer) reserve(n int) int {
	if w.pos < n {
		w.grow(n)
	}
	w.pos -= n
	return w.pos
}

// alignDown pads (with already-zeroed bytes) until the cursor sits at
// a position whose cumulative offset is a multiple of a.
func (w *writer) alignDown(a int) {
	if a <= 1 {
		return
	}
	if w.pos < a {
		w.grow(a)
	}
	for w.offset()%a != 0 {
		w.pos--
	}
}

// placeForwardRef writes a 4-byte uoffset at a freshly aligned slot
// that resolves to the block previously recorded at childOffset
// (itself a cumulative offset).
func (w *writer) placeForwardRef(childOffset int) {
	w.alignDown(UOffsetSize)
	p := w.reserve(UOffsetSize)
	slotOffset := w.offset()
	value := slotOffset - childOffset
	binary.LittleEndian.PutUint32(w.out[p:p+4], uint32(value))
}

// rawIndexFor translates a previously recorded cumulative offset back
// into a raw index into the current backing array. Valid at any later
// point, including after intervening grows, since grow() preserves
// every live byte's cumulative-offset-from-the-end exactly.
func (w *writer) rawIndexFor(offset int) int { return len(w.out) - offset }

///////////////////////////////////////////////////////////////////////////////

// packStructBytes renders a struct value into its exact inline
// layout, recursing into nested structs. Missing scalar/enum fields
// fall back to the field's default, then the type's zero value; a
// struct field has no "absent" wire representation.
func packStructBytes(sk *StructSkeleton, m any) ([]byte, error) {
	buf := make([]byte, sk.InlineSize)
	for i, fsk := range sk.Fields {
		raw, ok := mapGet(m, fsk.Name)
		off := sk.FieldOffsets[i]
		switch fsk.Kind {
		case FieldScalar:
			v := raw
			if !ok {
				if fsk.Default != nil {
					v = fsk.Default
				} else {
					v = zeroScalar(fsk.Scalar)
				}
			}
			b, err := PackScalar(fsk.Scalar, v)
			if err != nil {
				return nil, badValueError(fsk.Name, raw, fsk.Scalar.String())
			}
			copy(buf[off:], b)
		case FieldEnum:
			v := raw
			if ok {
				cv, err := coerceEnumValue(fsk.Enum, raw)
				if err != nil {
					return nil, err
				}
				v = cv
			} else if fsk.Default != nil {
				v = fsk.Default
			} else {
				v = zeroScalar(fsk.Scalar)
			}
			b, err := PackScalar(fsk.Scalar, v)
			if err != nil {
				return nil, badValueError(fsk.Name, raw, fsk.Scalar.String())
			}
			copy(buf[off:], b)
		case FieldStruct:
			sm, _ := asFieldMap(raw)
			b, err := packStructBytes(fsk.Struct, sm)
			if err != nil {
				return nil, err
			}
			copy(buf[off:], b)
		default:
			return nil, badValueError(fsk.Name, raw, "scalar, enum, or struct")
		}
	}
	return buf, nil
}

///////////////////////////////////////////////////////////////////////////////

// estimateSize produces a generous (not exact) upper bound on the
// encoded size of a native value tree, used only to size the writer's
// initial allocation. The writer itself grows on demand, so an
// underestimate here costs a reallocation, not correctness.
func estimateSize(v any) int {
	switch t := v.(type) {
	case map[string]any:
		n := 64
		for _, vv := range t {
			n += 16 + estimateSize(vv)
		}
		return n
	case *OrderedMap:
		n := 64
		for _, k := range t.Keys() {
			vv, _ := t.Get(k)
			n += 16 + estimateSize(vv)
		}
		return n
	case []any:
		n := 32
		for _, vv := range t {
			n += estimateSize(vv)
		}
		return n
	case string:
		return len(t) + 8
	default:
		return 16
	}
}

func vectorElemStride(fsk *FieldSkeleton) int {
	switch fsk.ElemKind {
	case FieldScalar:
		return fsk.Scalar.Size()
	case FieldEnum:
		return fsk.Enum.InlineSize
	case FieldStruct:
		return fsk.Struct.InlineSize
	default:
		return UOffsetSize
	}
}

func vectorElemAlign(fsk *FieldSkeleton) int {
	switch fsk.ElemKind {
	case FieldScalar:
		return fsk.Scalar.Align()
	case FieldEnum:
		return fsk.Enum.InlineAlign
	case FieldStruct:
		return fsk.Struct.InlineAlign
	default:
		return UOffsetSize
	}
}

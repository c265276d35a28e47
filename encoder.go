// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"
	"sort"
)

// DefaultMaxEncodeDepth bounds the recursion depth of a single Encode
// call.
const DefaultMaxEncodeDepth = 64

// UnionInput is the native-value representation of a union field's
// payload: which member is set, and that member's own field map
// (a map[string]any or *OrderedMap).
type UnionInput struct {
	Member string
	Value  any
}

// Encode renders value as a complete FlatBuffers buffer rooted at
// typeName, or at the schema's declared root type if typeName is "".
// value is a map[string]any or *OrderedMap keyed by field name, or a
// decoded Table view (re-encoded through ToNative). Children are
// always fully written before the parent that references them; the
// trailing header carries the root uoffset and, when the root type
// declares one, its file identifier.
func Encode(reg *Registry, typeName string, value any) ([]byte, error) {
	var decl *TableDecl
	if typeName != "" {
		d, ok := reg.LookupType(typeName)
		if !ok {
			return nil, unknownTypeError(typeName)
		}
		td, ok := d.(*TableDecl)
		if !ok {
			return nil, badValueError(typeName, d, "table type")
		}
		decl = td
	} else {
		td, ok := reg.RootType()
		if !ok {
			return nil, missingRootTypeError([4]byte{})
		}
		decl = td
	}

	sk, err := reg.SkeletonFor(decl)
	if err != nil {
		return nil, err
	}
	tsk := sk.(*TableSkeleton)

	if tv, ok := value.(Table); ok {
		om, err := ToNative(tv)
		if err != nil {
			return nil, err
		}
		value = om
	}
	m, ok := asFieldMap(value)
	if !ok {
		return nil, badValueError(decl.Name, value, "map[string]any, *OrderedMap, or Table")
	}

	enc := &encoder{
		w:           newWriter(estimateSize(m)*2 + 256),
		maxDepth:    DefaultMaxEncodeDepth,
		tableCache:  make(map[uintptr]int),
		stringCache: make(map[string]int),
	}
	rootOffset, err := enc.emitTable(tsk, m)
	if err != nil {
		return nil, err
	}
	return enc.finish(tsk, rootOffset)
}

type encoder struct {
	w           *writer
	depth       int
	maxDepth    int
	tableCache  map[uintptr]int
	stringCache map[string]int
}

// finish pads the buffer to 8 bytes and prepends the root uoffset,
// plus the root type's 4-byte file identifier when it declares one.
func (e *encoder) finish(tsk *TableSkeleton, rootOffset int) ([]byte, error) {
	headerLen := UOffsetSize
	if tsk.Decl.HasFileIdentifier {
		headerLen += FileIdentifierSize
	}

	// Pad so the complete buffer (header included) is 8-byte aligned:
	// every block's offset-from-end alignment then holds as an absolute
	// address too, matching flatc's finish-time pre-alignment.
	for (e.w.offset()+headerLen)%8 != 0 {
		e.w.reserve(1)
	}
	dataLen := e.w.offset()

	out := make([]byte, headerLen+dataLen)
	copy(out[headerLen:], e.w.out[e.w.pos:])

	rootAbs := headerLen + (dataLen - rootOffset)
	binary.LittleEndian.PutUint32(out[0:4], uint32(rootAbs))
	if tsk.Decl.HasFileIdentifier {
		copy(out[UOffsetSize:headerLen], tsk.Decl.FileIdentifier[:])
	}
	return out, nil
}

// identityKey returns a stable identity for Go reference-typed values
// (maps, slices, and *OrderedMap pointers), used to dedup shared
// substructure. Scalars and other value types never dedup this way
// (ok is false).
func identityKey(v any) (uintptr, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Pointer:
		if rv.IsNil() {
			return 0, false
		}
		return rv.Pointer(), true
	default:
		return 0, false
	}
}

// asFieldMap reports whether v is one of the two field-map shapes the
// encoder walks: a plain map[string]any or a ToNative *OrderedMap.
func asFieldMap(v any) (any, bool) {
	switch v.(type) {
	case map[string]any, *OrderedMap:
		return v, true
	default:
		return nil, false
	}
}

// mapGet reads field name from either field-map shape.
func mapGet(m any, name string) (any, bool) {
	switch t := m.(type) {
	case map[string]any:
		v, ok := t[name]
		return v, ok
	case *OrderedMap:
		return t.Get(name)
	default:
		return nil, false
	}
}

// pendingField is a table field staged for emission: either raw bytes
// to copy inline, or a forward reference to an already-emitted child
// block.
type pendingField struct {
	slot        int
	align       int
	size        int
	bytes       []byte
	isRef       bool
	childOffset int
}

// emitTable recursively flattens and emits m (a field map) against sk,
// returning the cumulative offset of its soffset slot (the table's own
// reference point). Table values are deduplicated by map identity.
func (e *encoder) emitTable(sk *TableSkeleton, m any) (int, error) {
	if key, ok := identityKey(m); ok {
		if off, cached := e.tableCache[key]; cached {
			return off, nil
		}
	}

	e.depth++
	if e.depth > e.maxDepth {
		e.depth--
		return 0, recursionLimitError(e.maxDepth)
	}

	pendings := make([]pendingField, 0, len(sk.Fields))
	for _, fsk := range sk.Fields {
		if fsk.Synthetic {
			continue // derived alongside its FieldUnion sibling below
		}

		if fsk.Kind == FieldUnion {
			uv, present, err := e.resolveUnionValue(fsk, m)
			if err != nil {
				e.depth--
				return 0, err
			}
			if !present {
				continue
			}
			member := memberByName(fsk.Union.Decl, uv.Member)
			disc := fsk.Union.Decl.DiscriminantOf(member)
			if disc == 0 {
				e.depth--
				return 0, badDiscriminantError(fsk.Name, fmt.Sprintf("unknown union member %q", uv.Member))
			}
			variantSk := fsk.Union.Variants[disc]
			childOffset, err := e.emitTable(variantSk, uv.Value)
			if err != nil {
				e.depth--
				return 0, err
			}
			discFsk := sk.FieldMap[fsk.Name+"_type"]
			discBytes, err := PackScalar(discFsk.Scalar, uint8(disc))
			if err != nil {
				e.depth--
				return 0, err
			}
			pendings = append(pendings,
				pendingField{slot: discFsk.Slot, align: discFsk.InlineAlign, size: discFsk.InlineSize, bytes: discBytes},
				pendingField{slot: fsk.Slot, align: fsk.InlineAlign, size: fsk.InlineSize, isRef: true, childOffset: childOffset},
			)
			continue
		}

		raw, ok := mapGet(m, fsk.Name)
		if !ok || raw == nil || fsk.Deprecated {
			continue
		}
		pf, err := e.resolveFieldPending(fsk, raw)
		if err != nil {
			e.depth--
			return 0, err
		}
		if pf != nil {
			pendings = append(pendings, *pf)
		}
	}
	e.depth--

	sort.SliceStable(pendings, func(i, j int) bool {
		if pendings[i].size != pendings[j].size {
			return pendings[i].size > pendings[j].size
		}
		return pendings[i].slot < pendings[j].slot
	})

	bodyStart := e.w.offset()
	fieldSlotOffset := make(map[int]int, len(pendings))
	for _, pf := range pendings {
		if pf.isRef {
			e.w.alignDown(UOffsetSize)
			p := e.w.reserve(UOffsetSize)
			slotOffset := e.w.offset()
			binary.LittleEndian.PutUint32(e.w.out[p:p+4], uint32(slotOffset-pf.childOffset))
			fieldSlotOffset[pf.slot] = slotOffset
		} else {
			e.w.alignDown(pf.align)
			p := e.w.reserve(len(pf.bytes))
			copy(e.w.out[p:], pf.bytes)
			fieldSlotOffset[pf.slot] = e.w.offset()
		}
	}

	e.w.alignDown(SOffsetSize)
	e.w.reserve(SOffsetSize)
	tableOffset := e.w.offset()

	// Trailing absent slots are trimmed from the vtable, as flatc does:
	// a table with no present fields gets the minimal 4-byte vtable.
	numSlots := 0
	for slot := range fieldSlotOffset {
		if slot+1 > numSlots {
			numSlots = slot + 1
		}
	}
	vtBuf := make([]byte, 4+2*numSlots)
	binary.LittleEndian.PutUint16(vtBuf[0:2], uint16(len(vtBuf)))
	binary.LittleEndian.PutUint16(vtBuf[2:4], uint16(tableOffset-bodyStart))
	for slot := 0; slot < numSlots; slot++ {
		if fo, ok := fieldSlotOffset[slot]; ok {
			binary.LittleEndian.PutUint16(vtBuf[4+2*slot:4+2*slot+2], uint16(tableOffset-fo))
		}
	}
	e.w.alignDown(VOffsetSize)
	vtPos := e.w.reserve(len(vtBuf))
	copy(e.w.out[vtPos:], vtBuf)
	vtableOffset := e.w.offset()

	rawTablePos := e.w.rawIndexFor(tableOffset)
	binary.LittleEndian.PutUint32(e.w.out[rawTablePos:rawTablePos+4], uint32(vtableOffset-tableOffset))

	if key, ok := identityKey(m); ok {
		e.tableCache[key] = tableOffset
	}
	return tableOffset, nil
}

// resolveFieldPending stages one ordinary (non-union) table field.
// It returns a nil pending field when the value equals the field's
// default (or, absent a declared default, the type's zero value),
// since such fields are simply omitted from the vtable.
func (e *encoder) resolveFieldPending(fsk *FieldSkeleton, raw any) (*pendingField, error) {
	switch fsk.Kind {
	case FieldScalar:
		b, err := PackScalar(fsk.Scalar, raw)
		if err != nil {
			return nil, badValueError(fsk.Name, raw, fsk.Scalar.String())
		}
		if omit, err := equalsDefault(fsk, b); err != nil {
			return nil, err
		} else if omit {
			return nil, nil
		}
		return &pendingField{slot: fsk.Slot, align: fsk.InlineAlign, size: fsk.InlineSize, bytes: b}, nil

	case FieldEnum:
		v, err := coerceEnumValue(fsk.Enum, raw)
		if err != nil {
			return nil, err
		}
		b, err := PackScalar(fsk.Scalar, v)
		if err != nil {
			return nil, badValueError(fsk.Name, raw, fsk.Scalar.String())
		}
		if omit, err := equalsDefault(fsk, b); err != nil {
			return nil, err
		} else if omit {
			return nil, nil
		}
		return &pendingField{slot: fsk.Slot, align: fsk.InlineAlign, size: fsk.InlineSize, bytes: b}, nil

	case FieldString:
		s, ok := raw.(string)
		if !ok {
			return nil, badValueError(fsk.Name, raw, "string")
		}
		off, err := e.emitString(s)
		if err != nil {
			return nil, err
		}
		return &pendingField{slot: fsk.Slot, align: UOffsetSize, size: UOffsetSize, isRef: true, childOffset: off}, nil

	case FieldStruct:
		sm, ok := asFieldMap(raw)
		if !ok {
			return nil, badValueError(fsk.Name, raw, "struct value")
		}
		b, err := packStructBytes(fsk.Struct, sm)
		if err != nil {
			return nil, err
		}
		return &pendingField{slot: fsk.Slot, align: fsk.InlineAlign, size: fsk.InlineSize, bytes: b}, nil

	case FieldTable:
		tm, ok := asFieldMap(raw)
		if !ok {
			return nil, badValueError(fsk.Name, raw, "table value")
		}
		off, err := e.emitTable(fsk.Table, tm)
		if err != nil {
			return nil, err
		}
		return &pendingField{slot: fsk.Slot, align: UOffsetSize, size: UOffsetSize, isRef: true, childOffset: off}, nil

	case FieldVector:
		off, err := e.emitVector(fsk, raw)
		if err != nil {
			return nil, err
		}
		return &pendingField{slot: fsk.Slot, align: UOffsetSize, size: UOffsetSize, isRef: true, childOffset: off}, nil

	default:
		return nil, badValueError(fsk.Name, raw, "a supported field kind")
	}
}

func equalsDefault(fsk *FieldSkeleton, packed []byte) (bool, error) {
	defaultVal := fsk.Default
	if defaultVal == nil {
		defaultVal = zeroScalar(fsk.Scalar)
	}
	dv, err := PackScalar(fsk.Scalar, defaultVal)
	if err != nil {
		return false, err
	}
	return bytes.Equal(packed, dv), nil
}

// emitString emits a NUL-terminated UTF-8 string block, deduplicated
// by string value (a safe strengthening of identity-dedup, since Go
// strings are immutable value types).
func (e *encoder) emitString(s string) (int, error) {
	if off, ok := e.stringCache[s]; ok {
		return off, nil
	}
	data := []byte(s)
	// Pre-pad so the length prefix sits immediately below the first
	// data byte on a uoffset boundary; the pad lands after the NUL.
	for (e.w.offset()+len(data)+1)%UOffsetSize != 0 {
		e.w.reserve(1)
	}
	e.w.reserve(1) // trailing NUL; buffer bytes are already zero
	if len(data) > 0 {
		p := e.w.reserve(len(data))
		copy(e.w.out[p:], data)
	}
	lenPos := e.w.reserve(UOffsetSize)
	binary.LittleEndian.PutUint32(e.w.out[lenPos:lenPos+4], uint32(len(data)))
	off := e.w.offset()
	e.stringCache[s] = off
	return off, nil
}

type vecElem struct {
	bytes       []byte
	isRef       bool
	childOffset int
}

// emitVector emits a length-prefixed vector of fsk.ElemKind elements.
// Struct elements are packed inline; string and table elements are
// recursively emitted first and then referenced by forward uoffset.
func (e *encoder) emitVector(fsk *FieldSkeleton, raw any) (int, error) {
	items, ok := raw.([]any)
	if !ok {
		return 0, badValueError(fsk.Name, raw, "vector value")
	}

	resolved := make([]vecElem, len(items))
	for i, it := range items {
		switch fsk.ElemKind {
		case FieldScalar:
			b, err := PackScalar(fsk.Scalar, it)
			if err != nil {
				return 0, badValueError(fsk.Name, it, fsk.Scalar.String())
			}
			resolved[i] = vecElem{bytes: b}
		case FieldEnum:
			v, err := coerceEnumValue(fsk.Enum, it)
			if err != nil {
				return 0, err
			}
			b, err := PackScalar(fsk.Scalar, v)
			if err != nil {
				return 0, badValueError(fsk.Name, it, fsk.Scalar.String())
			}
			resolved[i] = vecElem{bytes: b}
		case FieldStruct:
			sm, ok := asFieldMap(it)
			if !ok {
				return 0, badValueError(fsk.Name, it, "struct value")
			}
			b, err := packStructBytes(fsk.Struct, sm)
			if err != nil {
				return 0, err
			}
			resolved[i] = vecElem{bytes: b}
		case FieldString:
			s, ok := it.(string)
			if !ok {
				return 0, badValueError(fsk.Name, it, "string")
			}
			off, err := e.emitString(s)
			if err != nil {
				return 0, err
			}
			resolved[i] = vecElem{isRef: true, childOffset: off}
		case FieldTable:
			tm, ok := asFieldMap(it)
			if !ok {
				return 0, badValueError(fsk.Name, it, "table value")
			}
			off, err := e.emitTable(fsk.Table, tm)
			if err != nil {
				return 0, err
			}
			resolved[i] = vecElem{isRef: true, childOffset: off}
		default:
			return 0, badValueError(fsk.Name, it, "a supported vector element kind")
		}
	}

	stride := vectorElemStride(fsk)
	elemAlign := vectorElemAlign(fsk)

	// Pre-pad so the first element lands on its own alignment AND the
	// length prefix sits immediately below element 0 on a uoffset
	// boundary. Elements then pack with no internal padding (stride is
	// always a multiple of elemAlign).
	totalElemBytes := len(resolved) * stride
	for e.w.offset()%elemAlign != 0 || (e.w.offset()+totalElemBytes)%UOffsetSize != 0 {
		e.w.reserve(1)
	}

	for i := len(resolved) - 1; i >= 0; i-- {
		r := resolved[i]
		if r.isRef {
			e.w.placeForwardRef(r.childOffset)
		} else {
			p := e.w.reserve(stride)
			copy(e.w.out[p:], r.bytes)
		}
	}

	lenPos := e.w.reserve(UOffsetSize)
	binary.LittleEndian.PutUint32(e.w.out[lenPos:lenPos+4], uint32(len(resolved)))
	return e.w.offset(), nil
}

// resolveUnionValue reads a union field's native value from m,
// accepting either the flatc JSON convention (a sibling "<name>_type"
// key naming the member beside the "<name>" payload) or a payload map
// carrying a nested "_type" key (toUnionInput).
// present is false when the field is absent or the discriminant is
// NONE; a discriminant without a payload, or vice versa, is a
// BadDiscriminant error.
func (e *encoder) resolveUnionValue(fsk *FieldSkeleton, m any) (UnionInput, bool, error) {
	raw, hasPayload := mapGet(m, fsk.Name)
	if raw == nil {
		hasPayload = false
	}
	discRaw, hasDisc := mapGet(m, fsk.Name+"_type")
	if discRaw == nil {
		hasDisc = false
	}

	if hasDisc {
		name, ok := discRaw.(string)
		if !ok {
			return UnionInput{}, false, badDiscriminantError(fsk.Name, fmt.Sprintf("discriminant must be a member name, got %T", discRaw))
		}
		if name == "NONE" {
			if hasPayload {
				return UnionInput{}, false, badDiscriminantError(fsk.Name, "payload provided with a NONE discriminant")
			}
			return UnionInput{}, false, nil
		}
		if !hasPayload {
			return UnionInput{}, false, badDiscriminantError(fsk.Name, "discriminant provided without a payload")
		}
		payload, ok := asFieldMap(raw)
		if !ok {
			return UnionInput{}, false, badValueError(fsk.Name, raw, "union payload map")
		}
		return UnionInput{Member: name, Value: payload}, true, nil
	}

	if !hasPayload {
		return UnionInput{}, false, nil
	}
	uv, err := toUnionInput(raw)
	if err != nil {
		return UnionInput{}, false, err
	}
	return uv, true, nil
}

// toUnionInput accepts either a UnionInput or a field map carrying a
// "_type" discriminator string alongside the member's own fields, the
// shape produced by decoding a JSON object into map[string]any.
func toUnionInput(raw any) (UnionInput, error) {
	switch v := raw.(type) {
	case UnionInput:
		return v, nil
	case map[string]any:
		t, ok := v["_type"].(string)
		if !ok {
			return UnionInput{}, badValueError("", raw, `union value with a "_type" member name`)
		}
		rest := make(map[string]any, len(v))
		for k, vv := range v {
			if k == "_type" {
				continue
			}
			rest[k] = vv
		}
		return UnionInput{Member: t, Value: rest}, nil
	case *OrderedMap:
		tv, _ := v.Get("_type")
		t, ok := tv.(string)
		if !ok {
			return UnionInput{}, badValueError("", raw, `union value with a "_type" member name`)
		}
		rest := make(map[string]any, v.Len())
		for _, k := range v.Keys() {
			if k == "_type" {
				continue
			}
			vv, _ := v.Get(k)
			rest[k] = vv
		}
		return UnionInput{Member: t, Value: rest}, nil
	default:
		return UnionInput{}, badValueError("", raw, "union value")
	}
}

func memberByName(u *UnionDecl, name string) *TableDecl {
	for _, m := range u.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// coerceEnumValue translates a native enum value (a member name, a
// list of member names for a bit_flags enum, or a passthrough numeric
// value) into the raw integer PackScalar expects.
func coerceEnumValue(esk *EnumSkeleton, raw any) (any, error) {
	disc := esk.Discriminant
	switch v := raw.(type) {
	case string:
		val, ok := disc.ByName[v]
		if !ok {
			return nil, badValueError("", raw, "enum member name")
		}
		return val, nil
	case []string:
		if !disc.BitFlags {
			return nil, badValueError("", raw, "a single enum member name")
		}
		var acc int64
		for _, name := range v {
			bit, ok := disc.ByName[name]
			if !ok {
				return nil, badValueError("", name, "enum member name")
			}
			acc |= bit
		}
		return acc, nil
	case []any:
		if !disc.BitFlags {
			return nil, badValueError("", raw, "a single enum member name")
		}
		var acc int64
		for _, el := range v {
			name, ok := el.(string)
			if !ok {
				return nil, badValueError("", el, "enum member name")
			}
			bit, ok := disc.ByName[name]
			if !ok {
				return nil, badValueError("", name, "enum member name")
			}
			acc |= bit
		}
		return acc, nil
	default:
		return raw, nil
	}
}

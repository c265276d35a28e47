// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Table is a lazy, buffer-borrowing view of a table value: a position
// within buf plus the precomputed skeleton that describes how to walk
// its vtable. Table views remain valid only while buf is held.
type Table struct {
	buf       []byte
	pos       UOffset
	skeleton  *TableSkeleton
	vtablePos int
	vtableLen int
	inlineLen int
}

// newTableView constructs a Table view at pos: it reads the soffset
// there, walks back to the vtable, and records the vtable's two
// length prefixes.
func newTableView(buf []byte, pos UOffset, sk *TableSkeleton) (Table, error) {
	if int(pos)+SOffsetSize > len(buf) {
		return Table{}, truncatedBufferError(SOffsetSize, len(buf)-int(pos))
	}
	soff := int32(binary.LittleEndian.Uint32(buf[pos : pos+4]))
	vtablePos := int(pos) - int(soff)
	if vtablePos < 0 || vtablePos+4 > len(buf) {
		return Table{}, truncatedBufferError(4, len(buf)-vtablePos)
	}
	vtableLen := int(binary.LittleEndian.Uint16(buf[vtablePos : vtablePos+2]))
	inlineLen := int(binary.LittleEndian.Uint16(buf[vtablePos+2 : vtablePos+4]))
	return Table{buf: buf, pos: pos, skeleton: sk, vtablePos: vtablePos, vtableLen: vtableLen, inlineLen: inlineLen}, nil
}

// Skeleton returns the table's layout record, for callers (the native
// converter, the TUI) that want to enumerate its fields.
func (t Table) Skeleton() *TableSkeleton { return t.skeleton }

// Bytes returns the table's inline body, delimited by the vtable's
// second length prefix; this is the region NativeEquals compares.
func (t Table) Bytes() []byte {
	return t.buf[t.pos : int(t.pos)+t.inlineLen]
}

func (t Table) slotVOffset(fsk *FieldSkeleton) (int, bool) {
	entryOff := 4 + fsk.Slot*2
	if entryOff+2 > t.vtableLen || t.vtablePos+entryOff+2 > len(t.buf) {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(t.buf[t.vtablePos+entryOff : t.vtablePos+entryOff+2])
	if v == 0 {
		return 0, false
	}
	return int(v), true
}

// GetField reads field name, dispatching on its FieldKind: slot
// lookup, absent means default, present unpacks at pos+slot.
func (t Table) GetField(name string) (any, error) {
	fsk, ok := t.skeleton.FieldMap[name]
	if !ok {
		return nil, unknownTypeError(name)
	}
	return t.readField(fsk)
}

func (t Table) readField(fsk *FieldSkeleton) (any, error) {
	switch fsk.Kind {
	case FieldScalar, FieldEnum:
		return t.readScalarField(fsk)
	case FieldString:
		return t.readStringField(fsk)
	case FieldStruct:
		return t.readStructField(fsk)
	case FieldTable:
		return t.readTableField(fsk)
	case FieldUnion:
		return t.readUnionField(fsk)
	case FieldVector:
		return t.readVectorField(fsk)
	default:
		return nil, fmt.Errorf("fbs: unhandled field kind %v", fsk.Kind)
	}
}

func (t Table) readScalarField(fsk *FieldSkeleton) (any, error) {
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		if fsk.Default != nil {
			return fsk.Default, nil
		}
		return zeroScalar(fsk.Scalar), nil
	}
	absOff := int(t.pos) + vo
	if absOff+fsk.InlineSize > len(t.buf) {
		return nil, truncatedBufferError(fsk.InlineSize, len(t.buf)-absOff)
	}
	return UnpackScalar(fsk.Scalar, t.buf[absOff:absOff+fsk.InlineSize])
}

func (t Table) readStringField(fsk *FieldSkeleton) (any, error) {
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		return "", nil
	}
	return readStringAt(t.buf, UOffset(int(t.pos)+vo))
}

func (t Table) readStructField(fsk *FieldSkeleton) (any, error) {
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		return nil, nil
	}
	absOff := int(t.pos) + vo
	if absOff+fsk.Struct.InlineSize > len(t.buf) {
		return nil, truncatedBufferError(fsk.Struct.InlineSize, len(t.buf)-absOff)
	}
	return newStructView(t.buf, UOffset(absOff), fsk.Struct), nil
}

func (t Table) readTableField(fsk *FieldSkeleton) (any, error) {
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		return nil, nil
	}
	absOff := int(t.pos) + vo
	if absOff+UOffsetSize > len(t.buf) {
		return nil, truncatedBufferError(UOffsetSize, len(t.buf)-absOff)
	}
	rel := binary.LittleEndian.Uint32(t.buf[absOff : absOff+4])
	tv, err := newTableView(t.buf, UOffset(absOff+int(rel)), fsk.Table)
	if err != nil {
		return nil, err
	}
	return tv, nil
}

func (t Table) readVectorField(fsk *FieldSkeleton) (any, error) {
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		return Vector{elemKind: fsk.ElemKind}, nil
	}
	absOff := int(t.pos) + vo
	if absOff+4 > len(t.buf) {
		return nil, truncatedBufferError(4, len(t.buf)-absOff)
	}
	rel := binary.LittleEndian.Uint32(t.buf[absOff : absOff+4])
	vecPos := absOff + int(rel)
	if vecPos+4 > len(t.buf) {
		return nil, truncatedBufferError(4, len(t.buf)-vecPos)
	}
	length := int(binary.LittleEndian.Uint32(t.buf[vecPos : vecPos+4]))
	return Vector{
		buf: t.buf, pos: UOffset(vecPos + 4), length: length,
		elemKind: fsk.ElemKind, elemScalar: fsk.Scalar,
		elemEnum: fsk.Enum, elemStruct: fsk.Struct, elemTable: fsk.Table,
	}, nil
}

// UnionValue is the decoded (discriminant, payload) pair of a union
// field: Present is false when the discriminant is NONE (0).
type UnionValue struct {
	Discriminant int
	MemberName   string
	Table        Table
	Present      bool
}

func (t Table) readUnionField(fsk *FieldSkeleton) (any, error) {
	return t.GetUnion(fsk.Name)
}

// GetUnion reads the discriminant and, if present, the payload table
// of the union-typed field name. A zero discriminant means the union
// is absent.
func (t Table) GetUnion(name string) (UnionValue, error) {
	fsk, ok := t.skeleton.FieldMap[name]
	if !ok || fsk.Kind != FieldUnion {
		return UnionValue{}, unknownTypeError(name)
	}
	discFsk, ok := t.skeleton.FieldMap[name+"_type"]
	if !ok {
		return UnionValue{}, fmt.Errorf("fbs: union field %q missing its discriminant slot", name)
	}
	rawDisc, err := t.readScalarField(discFsk)
	if err != nil {
		return UnionValue{}, err
	}
	disc := int(rawDisc.(uint8))
	if disc == 0 {
		return UnionValue{Discriminant: 0, Present: false}, nil
	}
	variant := fsk.Union.Decl.VariantByDiscriminant(disc)
	variantSk, ok := fsk.Union.Variants[disc]
	if !ok || variant == nil {
		return UnionValue{}, badDiscriminantError(name, fmt.Sprintf("no union variant for discriminant %d", disc))
	}
	vo, ok := t.slotVOffset(fsk)
	if !ok {
		return UnionValue{}, badDiscriminantError(name, "discriminant present but payload offset missing")
	}
	absOff := int(t.pos) + vo
	if absOff+UOffsetSize > len(t.buf) {
		return UnionValue{}, truncatedBufferError(UOffsetSize, len(t.buf)-absOff)
	}
	rel := binary.LittleEndian.Uint32(t.buf[absOff : absOff+4])
	tv, err := newTableView(t.buf, UOffset(absOff+int(rel)), variantSk)
	if err != nil {
		return UnionValue{}, err
	}
	return UnionValue{Discriminant: disc, MemberName: variant.Name, Table: tv, Present: true}, nil
}

///////////////////////////////////////////////////////////////////////////////
// Typed convenience getters, by Go kind. Each is a thin wrapper over GetField.

func (t Table) GetInt32(name string) (int32, error) {
	v, err := t.GetField(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int32)
	if !ok {
		return 0, badValueError(name, v, "int32")
	}
	return i, nil
}

func (t Table) GetUint32(name string) (uint32, error) {
	v, err := t.GetField(name)
	if err != nil {
		return 0, err
	}
	i, ok := v.(uint32)
	if !ok {
		return 0, badValueError(name, v, "uint32")
	}
	return i, nil
}

func (t Table) GetBool(name string) (bool, error) {
	v, err := t.GetField(name)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, badValueError(name, v, "bool")
	}
	return b, nil
}

func (t Table) GetFloat32(name string) (float32, error) {
	v, err := t.GetField(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float32)
	if !ok {
		return 0, badValueError(name, v, "float32")
	}
	return f, nil
}

func (t Table) GetFloat64(name string) (float64, error) {
	v, err := t.GetField(name)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, badValueError(name, v, "float64")
	}
	return f, nil
}

func (t Table) GetString(name string) (string, error) {
	v, err := t.GetField(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", badValueError(name, v, "string")
	}
	return s, nil
}

func (t Table) GetTable(name string) (Table, bool, error) {
	v, err := t.GetField(name)
	if err != nil {
		return Table{}, false, err
	}
	if v == nil {
		return Table{}, false, nil
	}
	tv, ok := v.(Table)
	if !ok {
		return Table{}, false, badValueError(name, v, "table")
	}
	return tv, true, nil
}

func (t Table) GetStruct(name string) (Struct, bool, error) {
	v, err := t.GetField(name)
	if err != nil {
		return Struct{}, false, err
	}
	if v == nil {
		return Struct{}, false, nil
	}
	sv, ok := v.(Struct)
	if !ok {
		return Struct{}, false, badValueError(name, v, "struct")
	}
	return sv, true, nil
}

func (t Table) GetVector(name string) (Vector, error) {
	v, err := t.GetField(name)
	if err != nil {
		return Vector{}, err
	}
	vec, ok := v.(Vector)
	if !ok {
		return Vector{}, badValueError(name, v, "vector")
	}
	return vec, nil
}

func zeroScalar(s Scalar) any {
	switch s {
	case ScalarBool:
		return false
	case ScalarInt8:
		return int8(0)
	case ScalarUint8:
		return uint8(0)
	case ScalarInt16:
		return int16(0)
	case ScalarUint16:
		return uint16(0)
	case ScalarInt32:
		return int32(0)
	case ScalarUint32:
		return uint32(0)
	case ScalarInt64:
		return int64(0)
	case ScalarUint64:
		return uint64(0)
	case ScalarFloat32:
		return float32(0)
	case ScalarFloat64:
		return float64(0)
	default:
		return nil
	}
}

///////////////////////////////////////////////////////////////////////////////

// Struct is a fixed-offset, inline, vtable-free view.
type Struct struct {
	buf      []byte
	pos      UOffset
	skeleton *StructSkeleton
}

func newStructView(buf []byte, pos UOffset, sk *StructSkeleton) Struct {
	return Struct{buf: buf, pos: pos, skeleton: sk}
}

// Skeleton returns the struct's layout record.
func (s Struct) Skeleton() *StructSkeleton { return s.skeleton }

// Bytes returns the struct's raw inline bytes.
func (s Struct) Bytes() []byte {
	return s.buf[s.pos : int(s.pos)+s.skeleton.InlineSize]
}

// GetField reads field name of a struct: scalars/enums unpack
// in-place; nested structs recurse to their own offset.
func (s Struct) GetField(name string) (any, error) {
	for i, fsk := range s.skeleton.Fields {
		if fsk.Name != name {
			continue
		}
		absOff := int(s.pos) + s.skeleton.FieldOffsets[i]
		switch fsk.Kind {
		case FieldScalar, FieldEnum:
			return UnpackScalar(fsk.Scalar, s.buf[absOff:absOff+fsk.InlineSize])
		case FieldStruct:
			return newStructView(s.buf, UOffset(absOff), fsk.Struct), nil
		default:
			return nil, fmt.Errorf("fbs: illegal struct field kind %v", fsk.Kind)
		}
	}
	return nil, unknownTypeError(name)
}

///////////////////////////////////////////////////////////////////////////////

// Vector is a lazy view over a homogeneous sequence of scalars,
// enums, structs, strings, or tables.
type Vector struct {
	buf        []byte
	pos        UOffset
	length     int
	elemKind   FieldKind
	elemScalar Scalar
	elemEnum   *EnumSkeleton
	elemStruct *StructSkeleton
	elemTable  *TableSkeleton
}

// Len returns the number of elements.
func (v Vector) Len() int { return v.length }

// ElemKind reports the kind of each element.
func (v Vector) ElemKind() FieldKind { return v.elemKind }

func (v Vector) elemStride() int {
	switch v.elemKind {
	case FieldScalar:
		return v.elemScalar.Size()
	case FieldEnum:
		return v.elemEnum.InlineSize
	case FieldStruct:
		return v.elemStruct.InlineSize
	default:
		return UOffsetSize
	}
}

// Get decodes the element at index i.
func (v Vector) Get(i int) (any, error) {
	if i < 0 || i >= v.length {
		return nil, fmt.Errorf("fbs: vector index %d out of range [0,%d)", i, v.length)
	}
	stride := v.elemStride()
	elemPos := int(v.pos) + i*stride
	switch v.elemKind {
	case FieldScalar:
		return UnpackScalar(v.elemScalar, v.buf[elemPos:elemPos+stride])
	case FieldEnum:
		return UnpackScalar(v.elemEnum.Underlying, v.buf[elemPos:elemPos+stride])
	case FieldStruct:
		return newStructView(v.buf, UOffset(elemPos), v.elemStruct), nil
	case FieldString:
		return readStringAt(v.buf, UOffset(elemPos))
	case FieldTable:
		rel := binary.LittleEndian.Uint32(v.buf[elemPos : elemPos+4])
		return newTableView(v.buf, UOffset(elemPos+int(rel)), v.elemTable)
	default:
		return nil, fmt.Errorf("fbs: unsupported vector element kind %v", v.elemKind)
	}
}

///////////////////////////////////////////////////////////////////////////////

func readStringAt(buf []byte, pos UOffset) (string, error) {
	if int(pos)+UOffsetSize > len(buf) {
		return "", truncatedBufferError(UOffsetSize, len(buf)-int(pos))
	}
	rel := binary.LittleEndian.Uint32(buf[pos : pos+4])
	strPos := int(pos) + int(rel)
	if strPos+UOffsetSize > len(buf) {
		return "", truncatedBufferError(UOffsetSize, len(buf)-strPos)
	}
	length := int(binary.LittleEndian.Uint32(buf[strPos : strPos+4]))
	start := strPos + 4
	end := start + length
	if end > len(buf) {
		return "", truncatedBufferError(length, len(buf)-start)
	}
	return string(buf[start:end]), nil
}

///////////////////////////////////////////////////////////////////////////////

// DecodeRoot reads the root header at buffer offset 0 and returns a
// lazy Table view of the root value. When typeName is empty, the
// buffer's file identifier (bytes [4:8]) is looked up in reg; decode
// fails with ErrMissingRootType if no declared table claims it.
func DecodeRoot(buf []byte, reg *Registry, typeName string) (Table, error) {
	if len(buf) < UOffsetSize {
		return Table{}, truncatedBufferError(UOffsetSize, len(buf))
	}
	rootRel := binary.LittleEndian.Uint32(buf[0:4])

	var decl *TableDecl
	if typeName != "" {
		d, ok := reg.LookupType(typeName)
		if !ok {
			return Table{}, unknownTypeError(typeName)
		}
		td, ok := d.(*TableDecl)
		if !ok {
			return Table{}, badValueError(typeName, d, "table")
		}
		decl = td
	} else {
		if len(buf) < 8 {
			return Table{}, missingRootTypeError([4]byte{})
		}
		var id [4]byte
		copy(id[:], buf[4:8])
		td, ok := reg.LookupByFileIdentifier(id)
		if !ok {
			return Table{}, missingRootTypeError(id)
		}
		decl = td
	}

	sk, err := reg.SkeletonFor(decl)
	if err != nil {
		return Table{}, err
	}
	return newTableView(buf, UOffset(rootRel), sk.(*TableSkeleton))
}

// NativeEquals compares two tables by the canonical byte content of
// the regions they reference: the exact vtable-delimited body bytes
// of the two tables' underlying slices.
func NativeEquals(a, b Table) bool {
	return bytes.Equal(a.Bytes(), b.Bytes())
}

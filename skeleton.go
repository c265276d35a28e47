// Copyright (c) 2025 Neomantra Corp

package fbs

import "fmt"

// Skeleton is implemented by every per-declaration layout record
// (ScalarSkeleton, StringSkeleton, EnumSkeleton, StructSkeleton,
// TableSkeleton, UnionSkeleton). It is a marker interface only: callers
// type-switch or use the concrete accessor returned by SkeletonFor.
type Skeleton interface {
	isSkeleton()
}

// FieldKind tags what kind of value a field (or a vector's element)
// holds. The decoder, encoder, and native converter each dispatch on
// it with a single switch.
type FieldKind uint8

const (
	FieldScalar FieldKind = iota
	FieldEnum
	FieldString
	FieldStruct
	FieldTable
	FieldUnion
	FieldVector
)

func (k FieldKind) String() string {
	switch k {
	case FieldScalar:
		return "scalar"
	case FieldEnum:
		return "enum"
	case FieldString:
		return "string"
	case FieldStruct:
		return "struct"
	case FieldTable:
		return "table"
	case FieldUnion:
		return "union"
	case FieldVector:
		return "vector"
	default:
		return "unknown"
	}
}

///////////////////////////////////////////////////////////////////////////////

// ScalarSkeleton is the layout record for a primitive scalar type.
type ScalarSkeleton struct {
	Type        Scalar
	InlineSize  int
	InlineAlign int
}

func (*ScalarSkeleton) isSkeleton() {}

// StringSkeleton is the layout record shared by every string-typed
// field: a uoffset pointer to a length-prefixed, NUL-terminated,
// 4-byte-aligned byte sequence.
type StringSkeleton struct{}

func (*StringSkeleton) isSkeleton() {}

// InlineSize of a string field is always the size of the uoffset that
// points at it.
func (StringSkeleton) InlineSize() int { return UOffsetSize }

// InlineAlign of a string field's pointer slot.
func (StringSkeleton) InlineAlign() int { return UOffsetSize }

// EnumSkeleton is the layout record for a declared enum: it shares its
// underlying scalar's wire layout and carries the materialized
// discriminant used to translate between stored values and member
// names.
type EnumSkeleton struct {
	Decl         *EnumDecl
	Underlying   Scalar
	Discriminant *EnumDiscriminant
	InlineSize   int
	InlineAlign  int
}

func (*EnumSkeleton) isSkeleton() {}

// TableSkeleton is the layout record for a Table declaration: its
// expanded field list (including synthetic union discriminants),
// ordered by vtable slot.
type TableSkeleton struct {
	Decl        *TableDecl
	Fields      []*FieldSkeleton
	FieldMap    map[string]*FieldSkeleton
	FieldCount  int
	InlineSize  int // always UOffsetSize: a table is always referenced by a uoffset
	InlineAlign int
}

func (*TableSkeleton) isSkeleton() {}

///////////////////////////////////////////////////////////////////////////////

// FieldSkeleton is one (possibly synthetic) field of a Struct or Table
// skeleton: declaration identity, resolved value-type references, and
// the coerced default.
type FieldSkeleton struct {
	Name        string
	SourceIndex int // AST field index, pre-union-expansion
	Slot        int // vtable slot / struct field order, post-expansion

	Kind     FieldKind // top-level tag; FieldVector if IsVector
	ElemKind FieldKind // meaningful only when Kind == FieldVector

	Scalar Scalar // meaningful when Kind (or ElemKind) == FieldScalar
	Enum   *EnumSkeleton
	Struct *StructSkeleton
	Table  *TableSkeleton
	Union  *UnionSkeleton

	InlineSize  int
	InlineAlign int

	Deprecated bool
	Synthetic  bool // true for an inserted "<field>_type" union discriminant slot
	Default    any  // coerced at build time; nil means "no default"
}

///////////////////////////////////////////////////////////////////////////////

// SkeletonFor builds (on first use) and returns the cached skeleton
// for decl. Table skeletons are inserted into the cache before their
// fields are filled in, so a table that (directly or transitively)
// refers back to itself resolves to the same cache entry instead of
// recursing forever. A struct cannot legally contain itself; the
// builder rejects such a cycle rather than looping.
func (r *Registry) SkeletonFor(decl Decl) (Skeleton, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.skeletonForLocked(decl, nil)
}

func (r *Registry) skeletonForLocked(decl Decl, structStack []Decl) (Skeleton, error) {
	if sk, ok := r.skeletons[decl]; ok {
		return sk, nil
	}
	switch d := decl.(type) {
	case *EnumDecl:
		sk := buildEnumSkeleton(d)
		r.skeletons[decl] = sk
		return sk, nil
	case *StructDecl:
		for _, anc := range structStack {
			if anc == decl {
				return nil, &SchemaSemanticError{Subject: d.Name, Message: "struct declaration cycle"}
			}
		}
		sk, err := r.buildStructSkeleton(d, append(structStack, decl))
		if err != nil {
			return nil, err
		}
		r.skeletons[decl] = sk
		return sk, nil
	case *TableDecl:
		placeholder := &TableSkeleton{Decl: d, FieldMap: map[string]*FieldSkeleton{}}
		r.skeletons[decl] = placeholder
		if err := r.fillTableSkeleton(placeholder, d); err != nil {
			delete(r.skeletons, decl)
			return nil, err
		}
		return placeholder, nil
	case *UnionDecl:
		placeholder := &UnionSkeleton{Decl: d, Variants: map[int]*TableSkeleton{}}
		r.skeletons[decl] = placeholder
		if err := r.fillUnionSkeleton(placeholder, d, structStack); err != nil {
			delete(r.skeletons, decl)
			return nil, err
		}
		return placeholder, nil
	default:
		return nil, fmt.Errorf("fbs: unknown declaration kind %T", decl)
	}
}

func buildEnumSkeleton(d *EnumDecl) *EnumSkeleton {
	return &EnumSkeleton{
		Decl:         d,
		Underlying:   d.Underlying,
		Discriminant: d.Discriminant(),
		InlineSize:   d.Underlying.Size(),
		InlineAlign:  d.Underlying.Align(),
	}
}

// resolveFieldSkeleton fills in the Kind/Scalar/Enum/Struct/Table/Union
// and inline size/align of fsk from ft, resolving nested skeletons
// through the registry (recursively, with the given struct-cycle
// guard). It does not handle vectors or unions specially beyond
// resolving the element/payload type; callers set IsVector/Union
// expansion themselves.
func (r *Registry) resolveFieldSkeleton(ft FieldType, structStack []Decl) (kind FieldKind, scalar Scalar, enumSk *EnumSkeleton, structSk *StructSkeleton, tableSk *TableSkeleton, unionSk *UnionSkeleton, inlineSize, inlineAlign int, err error) {
	switch ft.Kind {
	case TypeScalar:
		return FieldScalar, ft.Scalar, nil, nil, nil, nil, ft.Scalar.Size(), ft.Scalar.Align(), nil
	case TypeString:
		return FieldString, 0, nil, nil, nil, nil, UOffsetSize, UOffsetSize, nil
	case TypeEnum:
		sk, err := r.skeletonForLocked(ft.Enum, structStack)
		if err != nil {
			return 0, 0, nil, nil, nil, nil, 0, 0, err
		}
		esk := sk.(*EnumSkeleton)
		return FieldEnum, esk.Underlying, esk, nil, nil, nil, esk.InlineSize, esk.InlineAlign, nil
	case TypeStruct:
		sk, err := r.skeletonForLocked(ft.Struct, structStack)
		if err != nil {
			return 0, 0, nil, nil, nil, nil, 0, 0, err
		}
		ssk := sk.(*StructSkeleton)
		return FieldStruct, 0, nil, ssk, nil, nil, ssk.InlineSize, ssk.InlineAlign, nil
	case TypeTable:
		sk, err := r.skeletonForLocked(ft.Table, structStack)
		if err != nil {
			return 0, 0, nil, nil, nil, nil, 0, 0, err
		}
		tsk := sk.(*TableSkeleton)
		return FieldTable, 0, nil, nil, tsk, nil, UOffsetSize, UOffsetSize, nil
	case TypeUnion:
		sk, err := r.skeletonForLocked(ft.Union, structStack)
		if err != nil {
			return 0, 0, nil, nil, nil, nil, 0, 0, err
		}
		usk := sk.(*UnionSkeleton)
		return FieldUnion, 0, nil, nil, nil, usk, UOffsetSize, UOffsetSize, nil
	default:
		return 0, 0, nil, nil, nil, nil, 0, 0, fmt.Errorf("fbs: unresolved field type")
	}
}

func coerceScalarDefault(s Scalar, raw any) (any, error) {
	b, err := PackScalar(s, raw)
	if err != nil {
		return nil, err
	}
	return UnpackScalar(s, b)
}

// coerceFieldDefault resolves a FieldDecl's raw parsed default value
// (an int64/float64/bool/string straight from the parser) into the
// canonical Go value for its declared type, once, at build time.
func coerceFieldDefault(fd FieldDecl) (any, error) {
	if fd.Default == nil || fd.IsVector {
		return nil, nil
	}
	switch fd.Type.Kind {
	case TypeScalar:
		return coerceScalarDefault(fd.Type.Scalar, fd.Default)
	case TypeEnum:
		if name, ok := fd.Default.(string); ok {
			disc := fd.Type.Enum.Discriminant()
			v, ok := disc.ByName[name]
			if !ok {
				return nil, &SchemaSemanticError{Subject: fd.Name, Message: fmt.Sprintf("unknown enum member %q", name)}
			}
			return coerceScalarDefault(fd.Type.Enum.Underlying, v)
		}
		return coerceScalarDefault(fd.Type.Enum.Underlying, fd.Default)
	default:
		return nil, nil
	}
}

// Copyright (c) 2025 Neomantra Corp

package fbs

import "sync"

// Decl is implemented by every named top-level declaration
// (EnumDecl, UnionDecl, StructDecl, TableDecl). Registry and the
// skeleton cache key on the pointer identity of a Decl, not its name,
// so two schemas declaring the same name never collide as cache keys.
type Decl interface {
	DeclName() string
	DeclNamespace() string
}

// FieldTypeKind tags what a FieldDecl's value type resolves to. The
// skeleton builder derives a layout-level FieldKind from this plus
// IsVector.
type FieldTypeKind uint8

const (
	TypeScalar FieldTypeKind = iota
	TypeString
	TypeEnum
	TypeStruct
	TypeTable
	TypeUnion
)

func (k FieldTypeKind) String() string {
	switch k {
	case TypeScalar:
		return "scalar"
	case TypeString:
		return "string"
	case TypeEnum:
		return "enum"
	case TypeStruct:
		return "struct"
	case TypeTable:
		return "table"
	case TypeUnion:
		return "union"
	default:
		return "unknown"
	}
}

// FieldType names the resolved value type of a field. Exactly one of
// the reference fields is meaningful, selected by Kind.
type FieldType struct {
	Kind   FieldTypeKind
	Scalar Scalar
	Enum   *EnumDecl
	Struct *StructDecl
	Table  *TableDecl
	Union  *UnionDecl
}

// FieldDecl is one field of a Struct or Table declaration.
type FieldDecl struct {
	Name       string
	Index      int // declaration-index / vtable slot, monotonic within the owning decl
	Type       FieldType
	IsVector   bool
	Default    any // nil means "no default": strings/tables/structs/vectors
	Deprecated bool
	Attributes map[string]string
}

///////////////////////////////////////////////////////////////////////////////

// EnumMember is one named constant of an EnumDecl, in source order.
type EnumMember struct {
	Name  string
	Value int64 // for bit_flags enums, this is the bit position, not the mask
}

// EnumDecl is a named integer type with a finite, ordered member set.
type EnumDecl struct {
	Namespace  string
	Name       string
	Underlying Scalar
	BitFlags   bool
	Members    []EnumMember

	discOnce sync.Once
	disc     *EnumDiscriminant
}

func (e *EnumDecl) DeclName() string      { return e.Name }
func (e *EnumDecl) DeclNamespace() string { return e.Namespace }

// EnumDiscriminant is the materialized lookup form of an enum,
// computed once per declaration and cached.
type EnumDiscriminant struct {
	BitFlags bool
	Members  []EnumMember
	ByName   map[string]int64 // name -> stored wire value (mask bit for bit_flags)
	ByValue  map[int64]string // stored wire value -> name
	None     int64            // bit_flags only: 0
	All      int64            // bit_flags only: OR of every member's bit
}

// Discriminant lazily builds and caches this enum's discriminant form.
func (e *EnumDecl) Discriminant() *EnumDiscriminant {
	e.discOnce.Do(func() {
		d := &EnumDiscriminant{
			BitFlags: e.BitFlags,
			Members:  e.Members,
			ByName:   make(map[string]int64, len(e.Members)),
			ByValue:  make(map[int64]string, len(e.Members)),
		}
		if e.BitFlags {
			var all int64
			for _, m := range e.Members {
				bit := int64(1) << uint(m.Value)
				d.ByName[m.Name] = bit
				d.ByValue[bit] = m.Name
				all |= bit
			}
			d.ByName["NONE"] = 0
			d.ByValue[0] = "NONE"
			d.ByName["ALL"] = all
			d.All = all
			d.None = 0
		} else {
			for _, m := range e.Members {
				d.ByName[m.Name] = m.Value
				d.ByValue[m.Value] = m.Name
			}
		}
		e.disc = d
	})
	return e.disc
}

///////////////////////////////////////////////////////////////////////////////

// UnionDecl is a tagged sum over a set of Table declarations.
type UnionDecl struct {
	Namespace string
	Name      string
	Members   []*TableDecl // discriminant 0 is reserved for NONE; Members[i] has discriminant i+1
}

func (u *UnionDecl) DeclName() string      { return u.Name }
func (u *UnionDecl) DeclNamespace() string { return u.Namespace }

// VariantByDiscriminant returns the member table whose discriminant
// equals disc, or nil if disc is 0 (NONE) or out of range.
func (u *UnionDecl) VariantByDiscriminant(disc int) *TableDecl {
	if disc <= 0 || disc > len(u.Members) {
		return nil
	}
	return u.Members[disc-1]
}

// DiscriminantOf returns the 1-based discriminant of member, or 0 if
// member is not part of this union.
func (u *UnionDecl) DiscriminantOf(member *TableDecl) int {
	for i, m := range u.Members {
		if m == member {
			return i + 1
		}
	}
	return 0
}

///////////////////////////////////////////////////////////////////////////////

// StructDecl is a fixed-size, inline, vtable-free aggregate. Invariant
// 5 restricts its fields to scalars, enums, and nested structs.
type StructDecl struct {
	Namespace string
	Name      string
	Fields    []FieldDecl
}

func (s *StructDecl) DeclName() string      { return s.Name }
func (s *StructDecl) DeclNamespace() string { return s.Namespace }

///////////////////////////////////////////////////////////////////////////////

// TableDecl is a variable-layout, vtable-addressed aggregate.
type TableDecl struct {
	Namespace         string
	Name              string
	Fields            []FieldDecl
	IsRoot            bool
	FileIdentifier    [4]byte
	HasFileIdentifier bool
}

func (t *TableDecl) DeclName() string      { return t.Name }
func (t *TableDecl) DeclNamespace() string { return t.Namespace }

///////////////////////////////////////////////////////////////////////////////

// Schema is the normalized, immutable output of a parse: every
// declaration in the file (and namespace-matching includes merged in)
// plus schema-level metadata.
type Schema struct {
	Namespace         string
	FileIdentifier    [4]byte
	HasFileIdentifier bool
	FileExtension     string
	RootTypeName      string
	RootType          *TableDecl

	Enums      []*EnumDecl
	Unions     []*UnionDecl
	Structs    []*StructDecl
	Tables     []*TableDecl
	Attributes map[string]bool
}

// Copyright (c) 2025 Neomantra Corp

package fbs

// StructSkeleton is the layout record for a Struct declaration: a
// fixed-size, field-aligned, vtable-free inline aggregate.
type StructSkeleton struct {
	Decl         *StructDecl
	Fields       []*FieldSkeleton
	FieldOffsets []int // parallel to Fields: byte offset within the struct's inline bytes
	InlineSize   int
	InlineAlign  int
}

func (*StructSkeleton) isSkeleton() {}

// buildStructSkeleton lays fields out in declaration order: each
// field's offset is its predecessor's end padded up to its own
// alignment, and the whole struct is finally padded to the maximum
// field alignment.
func (r *Registry) buildStructSkeleton(d *StructDecl, stack []Decl) (*StructSkeleton, error) {
	fields := make([]*FieldSkeleton, 0, len(d.Fields))
	offsets := make([]int, 0, len(d.Fields))
	cursor := 0
	maxAlign := 1

	for _, f := range d.Fields {
		kind, scalar, enumSk, structSk, _, _, inlineSize, inlineAlign, err := r.resolveFieldSkeleton(f.Type, stack)
		if err != nil {
			return nil, err
		}
		cursor = AlignUp(cursor, inlineAlign)
		offset := cursor
		cursor += inlineSize
		maxAlign = maxInt(maxAlign, inlineAlign)

		def, err := coerceFieldDefault(f)
		if err != nil {
			return nil, err
		}
		fields = append(fields, &FieldSkeleton{
			Name:        f.Name,
			SourceIndex: f.Index,
			Slot:        f.Index,
			Kind:        kind,
			Scalar:      scalar,
			Enum:        enumSk,
			Struct:      structSk,
			InlineSize:  inlineSize,
			InlineAlign: inlineAlign,
			Deprecated:  f.Deprecated,
			Default:     def,
		})
		offsets = append(offsets, offset)
	}

	cursor = AlignUp(cursor, maxAlign)
	return &StructSkeleton{
		Decl:         d,
		Fields:       fields,
		FieldOffsets: offsets,
		InlineSize:   cursor,
		InlineAlign:  maxAlign,
	}, nil
}

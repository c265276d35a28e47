// Copyright (c) 2025 Neomantra Corp

package fbs

// UnionSkeleton is the layout record for a declared union: a
// synthetic discriminant enum (NONE=0, one member per union member in
// declaration order) plus the table skeleton each discriminant value
// resolves to.
type UnionSkeleton struct {
	Decl             *UnionDecl
	DiscriminantEnum *EnumSkeleton
	Variants         map[int]*TableSkeleton
}

func (*UnionSkeleton) isSkeleton() {}

// fillUnionSkeleton builds the synthetic discriminant enum and
// resolves every member's table skeleton. The discriminant is a ubyte
// on the wire regardless of the number of members.
func (r *Registry) fillUnionSkeleton(us *UnionSkeleton, d *UnionDecl, stack []Decl) error {
	members := make([]EnumMember, 0, len(d.Members)+1)
	members = append(members, EnumMember{Name: "NONE", Value: 0})
	for i, m := range d.Members {
		members = append(members, EnumMember{Name: m.Name, Value: int64(i + 1)})
	}
	discDecl := &EnumDecl{
		Namespace:  d.Namespace,
		Name:       d.Name + "_type",
		Underlying: ScalarUint8,
		BitFlags:   false,
		Members:    members,
	}
	us.DiscriminantEnum = buildEnumSkeleton(discDecl)

	for i, m := range d.Members {
		sk, err := r.skeletonForLocked(m, stack)
		if err != nil {
			return err
		}
		us.Variants[i+1] = sk.(*TableSkeleton)
	}
	return nil
}

// fillTableSkeleton builds a TableSkeleton's expanded field list in
// place: ordinary fields resolve directly; a union-typed field gets a
// synthetic "<field>_type" discriminant FieldSkeleton inserted
// immediately before it, consuming its own vtable slot.
func (r *Registry) fillTableSkeleton(ts *TableSkeleton, d *TableDecl) error {
	slot := 0
	for _, f := range d.Fields {
		if f.Type.Kind == TypeUnion {
			sk, err := r.skeletonForLocked(f.Type.Union, nil)
			if err != nil {
				return err
			}
			usk := sk.(*UnionSkeleton)

			discFsk := &FieldSkeleton{
				Name:        f.Name + "_type",
				SourceIndex: f.Index,
				Slot:        slot,
				Kind:        FieldEnum,
				Enum:        usk.DiscriminantEnum,
				Scalar:      usk.DiscriminantEnum.Underlying,
				InlineSize:  usk.DiscriminantEnum.InlineSize,
				InlineAlign: usk.DiscriminantEnum.InlineAlign,
				Deprecated:  f.Deprecated,
				Synthetic:   true,
			}
			ts.Fields = append(ts.Fields, discFsk)
			ts.FieldMap[discFsk.Name] = discFsk
			slot++

			unionFsk := &FieldSkeleton{
				Name:        f.Name,
				SourceIndex: f.Index,
				Slot:        slot,
				Kind:        FieldUnion,
				Union:       usk,
				InlineSize:  UOffsetSize,
				InlineAlign: UOffsetSize,
				Deprecated:  f.Deprecated,
			}
			ts.Fields = append(ts.Fields, unionFsk)
			ts.FieldMap[unionFsk.Name] = unionFsk
			slot++
			continue
		}

		kind, scalar, enumSk, structSk, tableSk, unionSk, inlineSize, inlineAlign, err := r.resolveFieldSkeleton(f.Type, nil)
		if err != nil {
			return err
		}
		def, err := coerceFieldDefault(f)
		if err != nil {
			return err
		}

		fsk := &FieldSkeleton{
			Name:        f.Name,
			SourceIndex: f.Index,
			Slot:        slot,
			Deprecated:  f.Deprecated,
			Default:     def,
		}
		if f.IsVector {
			fsk.Kind = FieldVector
			fsk.ElemKind = kind
			fsk.Scalar = scalar
			fsk.Enum = enumSk
			fsk.Struct = structSk
			fsk.Table = tableSk
			fsk.InlineSize = UOffsetSize
			fsk.InlineAlign = UOffsetSize
		} else {
			fsk.Kind = kind
			fsk.Scalar = scalar
			fsk.Enum = enumSk
			fsk.Struct = structSk
			fsk.Table = tableSk
			fsk.Union = unionSk
			fsk.InlineSize = inlineSize
			fsk.InlineAlign = inlineAlign
		}
		ts.Fields = append(ts.Fields, fsk)
		ts.FieldMap[fsk.Name] = fsk
		slot++
	}
	ts.FieldCount = slot
	ts.InlineSize = UOffsetSize
	ts.InlineAlign = UOffsetSize
	return nil
}

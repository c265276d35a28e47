// Copyright (c) 2025 Neomantra Corp

package fbs

// Visitor receives a depth-first walk of a decoded Table, one On*
// call per wire construct encountered. Callers that want streaming
// conversion implement it instead of materializing the whole tree
// through ToNative.
type Visitor interface {
	OnTableStart(name string, t Table) error
	OnTableEnd(name string) error
	OnField(name string, kind FieldKind, value any) error
	OnUnion(name string, member string, present bool) error
	OnVectorStart(name string, length int) error
	OnElement(name string, index int, value any) error
	OnVectorEnd(name string) error
}

// Walk drives v across t's fields in declaration order, recursing into
// nested tables and union payloads.
func (t Table) Walk(v Visitor) error {
	sk := t.skeleton
	if err := v.OnTableStart(sk.Decl.Name, t); err != nil {
		return err
	}
	for _, fsk := range sk.Fields {
		if fsk.Synthetic {
			continue
		}
		switch fsk.Kind {
		case FieldUnion:
			uv, err := t.GetUnion(fsk.Name)
			if err != nil {
				return err
			}
			if err := v.OnUnion(fsk.Name, uv.MemberName, uv.Present); err != nil {
				return err
			}
			if uv.Present {
				if err := uv.Table.Walk(v); err != nil {
					return err
				}
			}
		case FieldTable:
			raw, err := t.readField(fsk)
			if err != nil {
				return err
			}
			if err := v.OnField(fsk.Name, fsk.Kind, raw); err != nil {
				return err
			}
			if child, ok := raw.(Table); ok {
				if err := child.Walk(v); err != nil {
					return err
				}
			}
		case FieldVector:
			raw, err := t.readField(fsk)
			if err != nil {
				return err
			}
			vec, _ := raw.(Vector)
			if err := v.OnVectorStart(fsk.Name, vec.Len()); err != nil {
				return err
			}
			for i := 0; i < vec.Len(); i++ {
				el, err := vec.Get(i)
				if err != nil {
					return err
				}
				if err := v.OnElement(fsk.Name, i, el); err != nil {
					return err
				}
			}
			if err := v.OnVectorEnd(fsk.Name); err != nil {
				return err
			}
		default:
			raw, err := t.readField(fsk)
			if err != nil {
				return err
			}
			if err := v.OnField(fsk.Name, fsk.Kind, raw); err != nil {
				return err
			}
		}
	}
	return v.OnTableEnd(sk.Decl.Name)
}

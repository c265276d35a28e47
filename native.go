// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"fmt"

	"github.com/segmentio/encoding/json"
)

var jsonMarshal = json.Marshal

// OrderedMap is an insertion-ordered string-keyed map, used so that
// ToNative's JSON/YAML rendering preserves each table's field
// declaration order instead of Go's randomized map iteration order.
type OrderedMap struct {
	keys   []string
	values map[string]any
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap() *OrderedMap {
	return &OrderedMap{values: make(map[string]any)}
}

// Set assigns key, appending it to the key order on first use.
func (m *OrderedMap) Set(key string, value any) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns key's value and whether it was present.
func (m *OrderedMap) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the map's keys in insertion order.
func (m *OrderedMap) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *OrderedMap) Len() int { return len(m.keys) }

// MarshalJSON renders the map as a JSON object preserving key order,
// so segmentio/encoding/json's Marshal (used by the CLI/MCP JSON
// front-ends) produces field-declaration-ordered output.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 64*len(m.keys))
	buf = append(buf, '{')
	for i, k := range m.keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, err := jsonMarshal(k)
		if err != nil {
			return nil, err
		}
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := jsonMarshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// ToNative converts a decoded Table into a tree of plain Go values:
// *OrderedMap for tables and structs, []any for vectors, canonical
// member names for enums, and scalars/strings left as-is. A union
// field renders per the flatc JSON convention: a sibling
// "<name>_type" key holding the member name ("NONE" when absent)
// beside the "<name>" payload map (nil when absent).
func ToNative(t Table) (*OrderedMap, error) {
	return nativeTable(t)
}

func nativeTable(t Table) (*OrderedMap, error) {
	sk := t.Skeleton()
	om := NewOrderedMap()
	for _, fsk := range sk.Fields {
		if fsk.Synthetic {
			continue
		}
		if fsk.Kind == FieldUnion {
			uv, err := t.GetUnion(fsk.Name)
			if err != nil {
				return nil, err
			}
			if !uv.Present {
				om.Set(fsk.Name+"_type", "NONE")
				om.Set(fsk.Name, nil)
				continue
			}
			payload, err := nativeTable(uv.Table)
			if err != nil {
				return nil, err
			}
			om.Set(fsk.Name+"_type", uv.MemberName)
			om.Set(fsk.Name, payload)
			continue
		}
		raw, err := t.readField(fsk)
		if err != nil {
			return nil, err
		}
		nv, err := nativeFieldValue(fsk, raw)
		if err != nil {
			return nil, err
		}
		om.Set(fsk.Name, nv)
	}
	return om, nil
}

func nativeStruct(s Struct) (*OrderedMap, error) {
	sk := s.Skeleton()
	om := NewOrderedMap()
	for _, fsk := range sk.Fields {
		raw, err := s.GetField(fsk.Name)
		if err != nil {
			return nil, err
		}
		nv, err := nativeFieldValue(fsk, raw)
		if err != nil {
			return nil, err
		}
		om.Set(fsk.Name, nv)
	}
	return om, nil
}

func nativeFieldValue(fsk *FieldSkeleton, raw any) (any, error) {
	switch fsk.Kind {
	case FieldEnum:
		return nativeEnumValue(fsk.Enum, raw)
	case FieldStruct:
		if raw == nil {
			return nil, nil
		}
		s, ok := raw.(Struct)
		if !ok {
			return nil, fmt.Errorf("fbs: expected Struct for field %q", fsk.Name)
		}
		return nativeStruct(s)
	case FieldTable:
		if raw == nil {
			return nil, nil
		}
		tb, ok := raw.(Table)
		if !ok {
			return nil, fmt.Errorf("fbs: expected Table for field %q", fsk.Name)
		}
		return nativeTable(tb)
	case FieldVector:
		vec, ok := raw.(Vector)
		if !ok {
			return nil, fmt.Errorf("fbs: expected Vector for field %q", fsk.Name)
		}
		return nativeVector(fsk, vec)
	default:
		return raw, nil
	}
}

func nativeVector(fsk *FieldSkeleton, v Vector) ([]any, error) {
	n := v.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		el, err := v.Get(i)
		if err != nil {
			return nil, err
		}
		switch fsk.ElemKind {
		case FieldEnum:
			nv, err := nativeEnumValue(fsk.Enum, el)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		case FieldStruct:
			s, ok := el.(Struct)
			if !ok {
				return nil, fmt.Errorf("fbs: expected Struct element in vector %q", fsk.Name)
			}
			nv, err := nativeStruct(s)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		case FieldTable:
			tb, ok := el.(Table)
			if !ok {
				return nil, fmt.Errorf("fbs: expected Table element in vector %q", fsk.Name)
			}
			nv, err := nativeTable(tb)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		default:
			out[i] = el
		}
	}
	return out, nil
}

// nativeEnumValue renders a decoded enum value as its canonical member
// name(s): a single name for ordinary enums, a list of set member
// names for bit_flags enums ("NONE" when no bit is set), or the raw
// numeric value when it matches no declared member.
func nativeEnumValue(esk *EnumSkeleton, raw any) (any, error) {
	iv, err := scalarToInt64(raw)
	if err != nil {
		return nil, err
	}
	disc := esk.Discriminant
	if disc.BitFlags {
		if iv == 0 {
			return "NONE", nil
		}
		names := make([]string, 0, len(disc.Members))
		for _, m := range disc.Members {
			bit := int64(1) << uint(m.Value)
			if iv&bit == bit {
				names = append(names, m.Name)
			}
		}
		if len(names) == 0 {
			return iv, nil
		}
		return names, nil
	}
	if name, ok := disc.ByValue[iv]; ok {
		return name, nil
	}
	return iv, nil
}

func scalarToInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int8:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	default:
		return 0, fmt.Errorf("fbs: non-integer enum underlying value %T", raw)
	}
}

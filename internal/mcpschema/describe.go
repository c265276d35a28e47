// Copyright (c) 2025 Neomantra Corp

package mcpschema

import "github.com/flatgo-project/flatgo"

// typeSummary is a one-line description of a declared type, as
// returned by list_types.
type typeSummary struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Kind      string `json:"kind"` // enum, union, struct, table
}

func listTypes(schema *fbs.Schema) []typeSummary {
	summaries := make([]typeSummary, 0, len(schema.Enums)+len(schema.Unions)+len(schema.Structs)+len(schema.Tables))
	for _, e := range schema.Enums {
		summaries = append(summaries, typeSummary{Name: e.Name, Namespace: e.Namespace, Kind: "enum"})
	}
	for _, u := range schema.Unions {
		summaries = append(summaries, typeSummary{Name: u.Name, Namespace: u.Namespace, Kind: "union"})
	}
	for _, s := range schema.Structs {
		summaries = append(summaries, typeSummary{Name: s.Name, Namespace: s.Namespace, Kind: "struct"})
	}
	for _, t := range schema.Tables {
		summaries = append(summaries, typeSummary{Name: t.Name, Namespace: t.Namespace, Kind: "table"})
	}
	return summaries
}

// fieldSummary describes one field of a struct or table declaration.
type fieldSummary struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	IsVector   bool   `json:"is_vector"`
	Deprecated bool   `json:"deprecated"`
	HasDefault bool   `json:"has_default"`
}

func describeFields(fields []fbs.FieldDecl) []fieldSummary {
	out := make([]fieldSummary, 0, len(fields))
	for _, f := range fields {
		out = append(out, fieldSummary{
			Name:       f.Name,
			Type:       fieldTypeName(f.Type),
			IsVector:   f.IsVector,
			Deprecated: f.Deprecated,
			HasDefault: f.Default != nil,
		})
	}
	return out
}

func fieldTypeName(ft fbs.FieldType) string {
	switch ft.Kind {
	case fbs.TypeScalar:
		return ft.Scalar.String()
	case fbs.TypeString:
		return "string"
	case fbs.TypeEnum:
		return ft.Enum.Name
	case fbs.TypeStruct:
		return ft.Struct.Name
	case fbs.TypeTable:
		return ft.Table.Name
	case fbs.TypeUnion:
		return ft.Union.Name
	default:
		return ft.Kind.String()
	}
}

// typeDetail is the full shape of a declared type, as returned by
// describe_type.
type typeDetail struct {
	Name              string         `json:"name"`
	Namespace         string         `json:"namespace"`
	Kind              string         `json:"kind"`
	Fields            []fieldSummary `json:"fields,omitempty"`
	EnumUnderlying    string         `json:"enum_underlying,omitempty"`
	EnumBitFlags      bool           `json:"enum_bit_flags,omitempty"`
	EnumMembers       []string       `json:"enum_members,omitempty"`
	UnionMembers      []string       `json:"union_members,omitempty"`
	IsRoot            bool           `json:"is_root,omitempty"`
	HasFileIdentifier bool           `json:"has_file_identifier,omitempty"`
}

func describeType(decl fbs.Decl) typeDetail {
	switch d := decl.(type) {
	case *fbs.EnumDecl:
		members := make([]string, len(d.Members))
		for i, m := range d.Members {
			members[i] = m.Name
		}
		return typeDetail{
			Name: d.Name, Namespace: d.Namespace, Kind: "enum",
			EnumUnderlying: d.Underlying.String(), EnumBitFlags: d.BitFlags, EnumMembers: members,
		}
	case *fbs.UnionDecl:
		members := make([]string, len(d.Members))
		for i, m := range d.Members {
			members[i] = m.Name
		}
		return typeDetail{Name: d.Name, Namespace: d.Namespace, Kind: "union", UnionMembers: members}
	case *fbs.StructDecl:
		return typeDetail{Name: d.Name, Namespace: d.Namespace, Kind: "struct", Fields: describeFields(d.Fields)}
	case *fbs.TableDecl:
		return typeDetail{
			Name: d.Name, Namespace: d.Namespace, Kind: "table", Fields: describeFields(d.Fields),
			IsRoot: d.IsRoot, HasFileIdentifier: d.HasFileIdentifier,
		}
	default:
		return typeDetail{Name: decl.DeclName(), Namespace: decl.DeclNamespace(), Kind: "unknown"}
	}
}

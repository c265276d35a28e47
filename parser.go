// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// Raw (pre-resolution) intermediate representation, one per source file.

type rawField struct {
	Name       string
	TypeName   string
	IsVector   bool
	HasDefault bool
	DefaultTok Token
	Deprecated bool
	Attributes map[string]string
}

type rawEnumMember struct {
	Name     string
	HasValue bool
	Value    int64
}

type rawEnum struct {
	Namespace  string
	Name       string
	Underlying string
	BitFlags   bool
	Members    []rawEnumMember
}

type rawUnion struct {
	Namespace   string
	Name        string
	MemberNames []string
}

type rawStruct struct {
	Namespace string
	Name      string
	Fields    []rawField
}

type rawTable struct {
	Namespace string
	Name      string
	Fields    []rawField
}

type rawFile struct {
	Path          string
	Namespace     string
	Includes      []string
	Attributes    []string
	Enums         []*rawEnum
	Unions        []*rawUnion
	Structs       []*rawStruct
	Tables        []*rawTable
	RootTypeName  string
	FileIdent     string
	HasFileIdent  bool
	FileExtension string
}

///////////////////////////////////////////////////////////////////////////////
// Per-file recursive-descent parser.

type fileParser struct {
	lex *Lexer
	src string
	tok Token
}

func newFileParser(src string) (*fileParser, error) {
	p := &fileParser{lex: NewLexer(src), src: src}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *fileParser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return withContext(err, p.src)
	}
	p.tok = t
	return nil
}

func (p *fileParser) errf(format string, args ...any) error {
	return withContext(&SchemaSyntaxError{Line: p.tok.Line, Column: p.tok.Column, Message: fmt.Sprintf(format, args...)}, p.src)
}

func (p *fileParser) isPunct(s string) bool {
	return p.tok.Kind == TokPunct && p.tok.Text == s
}

func (p *fileParser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return p.errf("expected %q, got %q", s, p.tok.Text)
	}
	return p.advance()
}

func (p *fileParser) expectIdent() (string, error) {
	if p.tok.Kind != TokIdent {
		return "", p.errf("expected identifier, got %q", p.tok.Text)
	}
	s := p.tok.Text
	return s, p.advance()
}

func (p *fileParser) parseDottedIdent() (string, error) {
	first, err := p.expectIdent()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString(first)
	for p.isPunct(".") {
		if err := p.advance(); err != nil {
			return "", err
		}
		next, err := p.expectIdent()
		if err != nil {
			return "", err
		}
		sb.WriteByte('.')
		sb.WriteString(next)
	}
	return sb.String(), nil
}

func (p *fileParser) parseMetadata() (map[string]string, error) {
	meta := map[string]string{}
	if !p.isPunct("(") {
		return meta, nil
	}
	if err := p.advance(); err != nil {
		return nil, err
	}
	for {
		if p.isPunct(")") {
			return meta, p.advance()
		}
		key, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		val := ""
		if p.isPunct(":") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			val = p.tok.Text
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		meta[key] = val
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct(")") {
			return meta, p.advance()
		}
		return nil, p.errf("expected ',' or ')' in metadata, got %q", p.tok.Text)
	}
}

func (p *fileParser) parseField() (rawField, error) {
	name, err := p.expectIdent()
	if err != nil {
		return rawField{}, err
	}
	if err := p.expectPunct(":"); err != nil {
		return rawField{}, err
	}
	f := rawField{Name: name}
	if p.isPunct("[") {
		if err := p.advance(); err != nil {
			return rawField{}, err
		}
		tn, err := p.parseDottedIdent()
		if err != nil {
			return rawField{}, err
		}
		f.TypeName = tn
		f.IsVector = true
		if err := p.expectPunct("]"); err != nil {
			return rawField{}, err
		}
	} else {
		tn, err := p.parseDottedIdent()
		if err != nil {
			return rawField{}, err
		}
		f.TypeName = tn
	}
	if p.isPunct("=") {
		if err := p.advance(); err != nil {
			return rawField{}, err
		}
		f.HasDefault = true
		f.DefaultTok = p.tok
		if err := p.advance(); err != nil {
			return rawField{}, err
		}
	}
	meta, err := p.parseMetadata()
	if err != nil {
		return rawField{}, err
	}
	f.Attributes = meta
	if _, ok := meta["deprecated"]; ok {
		f.Deprecated = true
	}
	if err := p.expectPunct(";"); err != nil {
		return rawField{}, err
	}
	return f, nil
}

func (p *fileParser) parseEnum(namespace string) (*rawEnum, error) {
	if err := p.advance(); err != nil { // "enum"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct(":"); err != nil {
		return nil, err
	}
	underlying, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	meta, err := p.parseMetadata()
	if err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var members []rawEnumMember
	for {
		if p.isPunct("}") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		m := rawEnumMember{Name: mname}
		if p.isPunct("=") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if p.tok.Kind != TokInt {
				return nil, p.errf("expected integer enum value, got %q", p.tok.Text)
			}
			v, err := strconv.ParseInt(p.tok.Text, 10, 64)
			if err != nil {
				return nil, p.errf("invalid enum value %q: %s", p.tok.Text, err)
			}
			m.HasValue = true
			m.Value = v
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		members = append(members, m)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct("}") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		return nil, p.errf("expected ',' or '}' in enum body, got %q", p.tok.Text)
	}
	_, bitFlags := meta["bit_flags"]
	return &rawEnum{Namespace: namespace, Name: name, Underlying: underlying, BitFlags: bitFlags, Members: members}, nil
}

func (p *fileParser) parseUnion(namespace string) (*rawUnion, error) {
	if err := p.advance(); err != nil { // "union"
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.parseMetadata(); err != nil {
		return nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var members []string
	for {
		if p.isPunct("}") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		mname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		members = append(members, mname)
		if p.isPunct(",") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			continue
		}
		if p.isPunct("}") {
			if err := p.advance(); err != nil {
				return nil, err
			}
			break
		}
		return nil, p.errf("expected ',' or '}' in union body, got %q", p.tok.Text)
	}
	return &rawUnion{Namespace: namespace, Name: name, MemberNames: members}, nil
}

func (p *fileParser) parseFieldBlock() (string, []rawField, error) {
	if err := p.advance(); err != nil { // "struct" | "table"
		return "", nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return "", nil, err
	}
	if _, err := p.parseMetadata(); err != nil {
		return "", nil, err
	}
	if err := p.expectPunct("{"); err != nil {
		return "", nil, err
	}
	var fields []rawField
	for !p.isPunct("}") {
		f, err := p.parseField()
		if err != nil {
			return "", nil, err
		}
		fields = append(fields, f)
	}
	if err := p.advance(); err != nil {
		return "", nil, err
	}
	return name, fields, nil
}

func (p *fileParser) parseDecl(rf *rawFile) error {
	if p.tok.Kind != TokIdent {
		return p.errf("expected top-level declaration, got %q", p.tok.Text)
	}
	switch p.tok.Text {
	case "include":
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Kind != TokString {
			return p.errf("expected string literal after include")
		}
		rf.Includes = append(rf.Includes, p.tok.Text)
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectPunct(";")

	case "namespace":
		if err := p.advance(); err != nil {
			return err
		}
		ns, err := p.parseDottedIdent()
		if err != nil {
			return err
		}
		rf.Namespace = ns
		return p.expectPunct(";")

	case "attribute":
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Kind != TokString {
			return p.errf("expected string literal after attribute")
		}
		rf.Attributes = append(rf.Attributes, p.tok.Text)
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectPunct(";")

	case "root_type":
		if err := p.advance(); err != nil {
			return err
		}
		name, err := p.parseDottedIdent()
		if err != nil {
			return err
		}
		rf.RootTypeName = name
		return p.expectPunct(";")

	case "file_identifier":
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Kind != TokString {
			return p.errf("expected string literal after file_identifier")
		}
		rf.FileIdent = p.tok.Text
		rf.HasFileIdent = true
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectPunct(";")

	case "file_extension":
		if err := p.advance(); err != nil {
			return err
		}
		if p.tok.Kind != TokString {
			return p.errf("expected string literal after file_extension")
		}
		rf.FileExtension = p.tok.Text
		if err := p.advance(); err != nil {
			return err
		}
		return p.expectPunct(";")

	case "enum":
		e, err := p.parseEnum(rf.Namespace)
		if err != nil {
			return err
		}
		rf.Enums = append(rf.Enums, e)
		return nil

	case "union":
		u, err := p.parseUnion(rf.Namespace)
		if err != nil {
			return err
		}
		rf.Unions = append(rf.Unions, u)
		return nil

	case "struct":
		name, fields, err := p.parseFieldBlock()
		if err != nil {
			return err
		}
		rf.Structs = append(rf.Structs, &rawStruct{Namespace: rf.Namespace, Name: name, Fields: fields})
		return nil

	case "table":
		name, fields, err := p.parseFieldBlock()
		if err != nil {
			return err
		}
		rf.Tables = append(rf.Tables, &rawTable{Namespace: rf.Namespace, Name: name, Fields: fields})
		return nil

	default:
		return p.errf("unknown top-level declaration %q", p.tok.Text)
	}
}

func parseFile(filePath string, fsys fs.FS) (*rawFile, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("fbs: read schema %q: %w", filePath, err)
	}
	src := string(data)
	p, err := newFileParser(src)
	if err != nil {
		return nil, err
	}
	rf := &rawFile{Path: filePath}
	for p.tok.Kind != TokEOF {
		if err := p.parseDecl(rf); err != nil {
			return nil, err
		}
	}
	return rf, nil
}

///////////////////////////////////////////////////////////////////////////////
// Include resolution + cross-file assembly.

func resolveIncludePath(basePath, include string) string {
	return path.Clean(path.Join(path.Dir(basePath), include))
}

// Parse parses sourcePath (and, transitively, every schema it
// includes) from fsys into a normalized Schema. Include cycles are
// broken silently by the visited-path set.
func Parse(sourcePath string, fsys fs.FS) (*Schema, error) {
	visited := map[string]bool{}
	var order []*rawFile
	var rootFile *rawFile

	var load func(p string) error
	load = func(p string) error {
		clean := path.Clean(p)
		if visited[clean] {
			return nil
		}
		visited[clean] = true
		rf, err := parseFile(clean, fsys)
		if err != nil {
			return err
		}
		if rootFile == nil {
			rootFile = rf
		}
		order = append(order, rf)
		for _, inc := range rf.Includes {
			if err := load(resolveIncludePath(clean, inc)); err != nil {
				return err
			}
		}
		return nil
	}
	if err := load(sourcePath); err != nil {
		return nil, err
	}
	return buildSchema(order, rootFile)
}

// declKey identifies a declaration by (namespace, name): the same
// bare name may be declared once per namespace.
type declKey struct {
	namespace string
	name      string
}

// candidateKeys lists the declaration keys a type reference may
// resolve to, in priority order: the explicit namespace when the name
// is dot-qualified, otherwise the referencing namespace and then the
// root (empty) namespace.
func candidateKeys(name, ns string) []declKey {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return []declKey{{name[:i], name[i+1:]}}
	}
	if ns == "" {
		return []declKey{{"", name}}
	}
	return []declKey{{ns, name}, {"", name}}
}

func buildSchema(order []*rawFile, rootFile *rawFile) (*Schema, error) {
	enums := map[declKey]*EnumDecl{}
	unions := map[declKey]*UnionDecl{}
	structs := map[declKey]*StructDecl{}
	tables := map[declKey]*TableDecl{}

	// Phase A: enums (no forward references needed).
	for _, rf := range order {
		for _, re := range rf.Enums {
			k := declKey{re.Namespace, re.Name}
			if _, exists := enums[k]; exists {
				return nil, &SchemaSemanticError{Subject: re.Name, Message: "duplicate enum declaration"}
			}
			e, err := buildEnum(re)
			if err != nil {
				return nil, err
			}
			enums[k] = e
		}
	}

	// Phase B: struct/table shells (fields filled in after every shell exists).
	for _, rf := range order {
		for _, rs := range rf.Structs {
			k := declKey{rs.Namespace, rs.Name}
			if _, exists := structs[k]; exists {
				return nil, &SchemaSemanticError{Subject: rs.Name, Message: "duplicate struct declaration"}
			}
			structs[k] = &StructDecl{Namespace: rs.Namespace, Name: rs.Name}
		}
		for _, rt := range rf.Tables {
			k := declKey{rt.Namespace, rt.Name}
			if _, exists := tables[k]; exists {
				return nil, &SchemaSemanticError{Subject: rt.Name, Message: "duplicate table declaration"}
			}
			tables[k] = &TableDecl{Namespace: rt.Namespace, Name: rt.Name}
		}
	}

	// Phase C: unions, now that the table shells they may only refer to exist.
	for _, rf := range order {
		for _, ru := range rf.Unions {
			k := declKey{ru.Namespace, ru.Name}
			if _, exists := unions[k]; exists {
				return nil, &SchemaSemanticError{Subject: ru.Name, Message: "duplicate union declaration"}
			}
			u, err := buildUnion(ru, tables)
			if err != nil {
				return nil, err
			}
			unions[k] = u
		}
	}

	// Phase D: struct fields (no vectors/strings/tables/unions allowed).
	for _, rf := range order {
		for _, rs := range rf.Structs {
			decl := structs[declKey{rs.Namespace, rs.Name}]
			fields, err := buildStructFields(rs, enums, structs)
			if err != nil {
				return nil, err
			}
			decl.Fields = fields
		}
	}

	// Phase E: table fields.
	for _, rf := range order {
		for _, rt := range rf.Tables {
			decl := tables[declKey{rt.Namespace, rt.Name}]
			fields, err := buildTableFields(rt, enums, unions, structs, tables)
			if err != nil {
				return nil, err
			}
			decl.Fields = fields
		}
	}

	// Phase F: root type + file identifier.
	schema := &Schema{
		Namespace:     rootFile.Namespace,
		FileExtension: rootFile.FileExtension,
		RootTypeName:  rootFile.RootTypeName,
		Attributes:    map[string]bool{},
	}
	for _, rf := range order {
		for _, a := range rf.Attributes {
			schema.Attributes[a] = true
		}
	}
	if rootFile.HasFileIdent {
		if len(rootFile.FileIdent) != FileIdentifierSize {
			return nil, &SchemaSemanticError{Subject: rootFile.RootTypeName, Message: fmt.Sprintf("file_identifier must be exactly %d bytes, got %d", FileIdentifierSize, len(rootFile.FileIdent))}
		}
		copy(schema.FileIdentifier[:], rootFile.FileIdent)
		schema.HasFileIdentifier = true
	}
	if schema.RootTypeName != "" {
		var root *TableDecl
		for _, k := range candidateKeys(schema.RootTypeName, rootFile.Namespace) {
			if t, ok := tables[k]; ok {
				root = t
				break
			}
		}
		if root == nil {
			return nil, &SchemaSemanticError{Subject: schema.RootTypeName, Message: "root_type does not name a declared table"}
		}
		root.IsRoot = true
		if schema.HasFileIdentifier {
			root.FileIdentifier = schema.FileIdentifier
			root.HasFileIdentifier = true
		}
		schema.RootType = root
	}

	// Phase G: the schema owns every declaration of the root file, in
	// declaration order, plus those included declarations whose
	// namespace matches its own.
	for _, rf := range order {
		fromRoot := rf == rootFile
		for _, re := range rf.Enums {
			if fromRoot || re.Namespace == schema.Namespace {
				schema.Enums = append(schema.Enums, enums[declKey{re.Namespace, re.Name}])
			}
		}
		for _, ru := range rf.Unions {
			if fromRoot || ru.Namespace == schema.Namespace {
				schema.Unions = append(schema.Unions, unions[declKey{ru.Namespace, ru.Name}])
			}
		}
		for _, rs := range rf.Structs {
			if fromRoot || rs.Namespace == schema.Namespace {
				schema.Structs = append(schema.Structs, structs[declKey{rs.Namespace, rs.Name}])
			}
		}
		for _, rt := range rf.Tables {
			if fromRoot || rt.Namespace == schema.Namespace {
				schema.Tables = append(schema.Tables, tables[declKey{rt.Namespace, rt.Name}])
			}
		}
	}

	return schema, nil
}

func buildEnum(re *rawEnum) (*EnumDecl, error) {
	underlying, ok := lookupBuiltinScalar(re.Underlying)
	if !ok {
		return nil, &SchemaSemanticError{Subject: re.Name, Message: fmt.Sprintf("unknown underlying type %q", re.Underlying)}
	}
	if !isIntegerScalar(underlying) {
		return nil, &SchemaSemanticError{Subject: re.Name, Message: "enum underlying type must be an integer scalar"}
	}
	members := make([]EnumMember, 0, len(re.Members))
	var next int64
	for i, m := range re.Members {
		val := next
		if m.HasValue {
			if i > 0 && m.Value < next-1 {
				return nil, &SchemaSemanticError{Subject: re.Name, Message: fmt.Sprintf("enum member %q value must be non-decreasing", m.Name)}
			}
			val = m.Value
		}
		members = append(members, EnumMember{Name: m.Name, Value: val})
		next = val + 1
	}
	return &EnumDecl{Namespace: re.Namespace, Name: re.Name, Underlying: underlying, BitFlags: re.BitFlags, Members: members}, nil
}

func buildUnion(ru *rawUnion, tables map[declKey]*TableDecl) (*UnionDecl, error) {
	members := make([]*TableDecl, 0, len(ru.MemberNames))
	for _, name := range ru.MemberNames {
		var member *TableDecl
		for _, k := range candidateKeys(name, ru.Namespace) {
			if t, ok := tables[k]; ok {
				member = t
				break
			}
		}
		if member == nil {
			return nil, &SchemaSemanticError{Subject: ru.Name, Message: fmt.Sprintf("union member %q must be a declared table", name)}
		}
		members = append(members, member)
	}
	return &UnionDecl{Namespace: ru.Namespace, Name: ru.Name, Members: members}, nil
}

// resolveFieldType resolves a field's type reference from the
// namespace ns it was declared in: builtin scalars and "string" first,
// then declared types per candidateKeys' priority order.
func resolveFieldType(name, ns string, enums map[declKey]*EnumDecl, unions map[declKey]*UnionDecl, structs map[declKey]*StructDecl, tables map[declKey]*TableDecl) (FieldType, error) {
	if name == "string" {
		return FieldType{Kind: TypeString}, nil
	}
	if sc, ok := lookupBuiltinScalar(name); ok {
		return FieldType{Kind: TypeScalar, Scalar: sc}, nil
	}
	for _, k := range candidateKeys(name, ns) {
		if e, ok := enums[k]; ok {
			return FieldType{Kind: TypeEnum, Enum: e}, nil
		}
		if s, ok := structs[k]; ok {
			return FieldType{Kind: TypeStruct, Struct: s}, nil
		}
		if t, ok := tables[k]; ok {
			return FieldType{Kind: TypeTable, Table: t}, nil
		}
		if u, ok := unions[k]; ok {
			return FieldType{Kind: TypeUnion, Union: u}, nil
		}
	}
	return FieldType{}, unknownTypeError(name)
}

func buildStructFields(rs *rawStruct, enums map[declKey]*EnumDecl, structs map[declKey]*StructDecl) ([]FieldDecl, error) {
	fields := make([]FieldDecl, 0, len(rs.Fields))
	for i, f := range rs.Fields {
		ft, err := resolveFieldType(f.TypeName, rs.Namespace, enums, nil, structs, nil)
		if err != nil {
			return nil, err
		}
		if f.IsVector {
			return nil, &SchemaSemanticError{Subject: rs.Name + "." + f.Name, Message: "struct fields cannot be vectors"}
		}
		switch ft.Kind {
		case TypeString, TypeTable, TypeUnion:
			return nil, &SchemaSemanticError{Subject: rs.Name + "." + f.Name, Message: fmt.Sprintf("struct fields cannot be %s", ft.Kind)}
		}
		fd := FieldDecl{
			Name:       f.Name,
			Index:      i,
			Type:       ft,
			Default:    rawDefaultValue(f),
			Deprecated: f.Deprecated,
			Attributes: f.Attributes,
		}
		fields = append(fields, fd)
	}
	return fields, nil
}

func buildTableFields(rt *rawTable, enums map[declKey]*EnumDecl, unions map[declKey]*UnionDecl, structs map[declKey]*StructDecl, tables map[declKey]*TableDecl) ([]FieldDecl, error) {
	fields := make([]FieldDecl, 0, len(rt.Fields))
	for i, f := range rt.Fields {
		ft, err := resolveFieldType(f.TypeName, rt.Namespace, enums, unions, structs, tables)
		if err != nil {
			return nil, err
		}
		fd := FieldDecl{
			Name:       f.Name,
			Index:      i,
			Type:       ft,
			IsVector:   f.IsVector,
			Default:    rawDefaultValue(f),
			Deprecated: f.Deprecated,
			Attributes: f.Attributes,
		}
		fields = append(fields, fd)
	}
	return fields, nil
}

// rawDefaultValue converts a field's default-value token into its
// natural Go representation, left uncoerced against the field's
// declared type; the skeleton builder performs that coercion once, at
// build time.
func rawDefaultValue(f rawField) any {
	if !f.HasDefault {
		return nil
	}
	switch f.DefaultTok.Kind {
	case TokInt:
		v, err := strconv.ParseInt(f.DefaultTok.Text, 10, 64)
		if err != nil {
			return f.DefaultTok.Text
		}
		return v
	case TokFloat:
		v, err := strconv.ParseFloat(f.DefaultTok.Text, 64)
		if err != nil {
			return f.DefaultTok.Text
		}
		return v
	case TokString:
		return f.DefaultTok.Text
	case TokIdent:
		switch f.DefaultTok.Text {
		case "true":
			return true
		case "false":
			return false
		default:
			return f.DefaultTok.Text // enum member name, resolved at skeleton-build time
		}
	default:
		return f.DefaultTok.Text
	}
}

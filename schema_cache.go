// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// Every schema cache file begins with this fixed prefix: a magic stamp
// and a version, followed by a fixed-size header and then
// variable-length sections.
type cachePrefix struct {
	Magic   [4]byte
	Version uint32
}

const (
	schemaCacheVersion1 = 1
	schemaCacheHeaderV1 = sha256.Size + 4 // SourceHash + DeclCount
)

var schemaCacheMagic = [4]byte{'F', 'B', 'S', 'C'}

// SchemaCacheEntry is the decoded form of a schema cache file: a
// content hash of the schema source it was built from, and the list
// of top-level declaration names it defines. Enough for a CLI to
// answer "what types does this schema have" or "is this cache stale"
// without re-running the parser.
type SchemaCacheEntry struct {
	SourceHash [sha256.Size]byte
	Names      []string // "namespace.Name", in declaration order
}

// NewSchemaCacheEntry hashes source and records every declaration name
// in schema, in the order the parser produced them.
func NewSchemaCacheEntry(source []byte, schema *Schema) *SchemaCacheEntry {
	entry := &SchemaCacheEntry{SourceHash: sha256.Sum256(source)}
	add := func(d Decl) {
		ns := d.DeclNamespace()
		if ns != "" {
			entry.Names = append(entry.Names, ns+"."+d.DeclName())
		} else {
			entry.Names = append(entry.Names, d.DeclName())
		}
	}
	for _, d := range schema.Enums {
		add(d)
	}
	for _, d := range schema.Unions {
		add(d)
	}
	for _, d := range schema.Structs {
		add(d)
	}
	for _, d := range schema.Tables {
		add(d)
	}
	return entry
}

// Matches reports whether source hashes to the same content this
// cache entry was built from.
func (e *SchemaCacheEntry) Matches(source []byte) bool {
	return sha256.Sum256(source) == e.SourceHash
}

// SaveSchemaCache writes entry to w: prefix, fixed header, then the
// declaration names as a length-prefixed string array.
func SaveSchemaCache(w io.Writer, entry *SchemaCacheEntry) error {
	if err := binary.Write(w, binary.LittleEndian, cachePrefix{Magic: schemaCacheMagic, Version: schemaCacheVersion1}); err != nil {
		return err
	}
	if _, err := w.Write(entry.SourceHash[:]); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(entry.Names))); err != nil {
		return err
	}
	return writeStringArray(w, entry.Names)
}

// LoadSchemaCache reads back a cache file written by SaveSchemaCache.
func LoadSchemaCache(r io.Reader) (*SchemaCacheEntry, error) {
	var prefix cachePrefix
	if err := binary.Read(r, binary.LittleEndian, &prefix); err != nil {
		return nil, err
	}
	if prefix.Magic != schemaCacheMagic {
		return nil, fmt.Errorf("fbs: not a schema cache file (bad magic %q)", prefix.Magic)
	}
	if prefix.Version != schemaCacheVersion1 {
		return nil, fmt.Errorf("fbs: unsupported schema cache version %d", prefix.Version)
	}

	entry := &SchemaCacheEntry{}
	if _, err := io.ReadFull(r, entry.SourceHash[:]); err != nil {
		return nil, err
	}
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	names, err := readStringArray(r, int(count))
	if err != nil {
		return nil, err
	}
	entry.Names = names
	return entry, nil
}

func writeStringArray(w io.Writer, values []string) error {
	for _, s := range values {
		if err := binary.Write(w, binary.LittleEndian, uint16(len(s))); err != nil {
			return err
		}
		if _, err := io.WriteString(w, s); err != nil {
			return err
		}
	}
	return nil
}

func readStringArray(r io.Reader, count int) ([]string, error) {
	out := make([]string, count)
	for i := 0; i < count; i++ {
		var n uint16
		if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		out[i] = string(buf)
	}
	return out, nil
}

// Copyright (c) 2025 Neomantra Corp

// Package cliutil holds the schema-loading glue shared by flatgo's
// command-line front-ends.
package cliutil

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flatgo-project/flatgo"
)

// LoadRegistry parses the schema file at schemaPath and returns a
// Registry over it, using the schema's own directory as the filesystem
// root so that relative "include" statements resolve.
func LoadRegistry(schemaPath string) (*fbs.Registry, error) {
	dir := filepath.Dir(schemaPath)
	base := filepath.Base(schemaPath)
	schema, err := fbs.Parse(base, os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("parsing schema %s: %w", schemaPath, err)
	}
	return fbs.NewRegistry(schema), nil
}

// ResolveType picks the root table to decode or encode as: typeName if
// given, namespace-qualified validation is left to the caller, and
// falling back to the schema's declared root_type otherwise.
func ResolveType(reg *fbs.Registry, typeName string) (string, error) {
	if typeName != "" {
		if _, ok := reg.LookupType(typeName); !ok {
			return "", fmt.Errorf("unknown type %q", typeName)
		}
		return typeName, nil
	}
	root, ok := reg.RootType()
	if !ok {
		return "", fmt.Errorf("schema declares no root_type; pass -t/--type")
	}
	return root.Name, nil
}

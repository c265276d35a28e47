// Copyright (c) 2025 Neomantra Corp

package fbs

import "sync"

// Registry resolves declaration names and file identifiers against a
// parsed Schema, and owns the skeleton cache built from it. A single
// Registry can be shared across goroutines: its lazy maps and its
// skeleton cache are guarded by one RWMutex.
type Registry struct {
	schema *Schema

	mu               sync.RWMutex
	byName           map[declKey]Decl
	byFileIdentifier map[[4]byte]Decl
	mapsBuilt        bool

	skeletons map[Decl]Skeleton
}

// NewRegistry wraps a parsed Schema for lookup and skeleton building.
func NewRegistry(schema *Schema) *Registry {
	return &Registry{
		schema:    schema,
		skeletons: make(map[Decl]Skeleton),
	}
}

// Schema returns the Registry's underlying parsed schema.
func (r *Registry) Schema() *Schema { return r.schema }

func (r *Registry) ensureMapsLocked() {
	if r.mapsBuilt {
		return
	}
	r.byName = make(map[declKey]Decl)
	r.byFileIdentifier = make(map[[4]byte]Decl)
	for _, e := range r.schema.Enums {
		r.byName[declKey{e.Namespace, e.Name}] = e
	}
	for _, u := range r.schema.Unions {
		r.byName[declKey{u.Namespace, u.Name}] = u
	}
	for _, s := range r.schema.Structs {
		r.byName[declKey{s.Namespace, s.Name}] = s
	}
	for _, t := range r.schema.Tables {
		r.byName[declKey{t.Namespace, t.Name}] = t
		if t.HasFileIdentifier {
			r.byFileIdentifier[t.FileIdentifier] = t
		}
	}
	r.mapsBuilt = true
}

func (r *Registry) lookupLocked(name string) (Decl, bool) {
	for _, k := range candidateKeys(name, r.schema.Namespace) {
		if d, ok := r.byName[k]; ok {
			return d, true
		}
	}
	return nil, false
}

// LookupType resolves a declared type name (table, struct, union, or
// enum): either a bare name, resolved within the schema's own
// namespace, or a dot-qualified "Some.Namespace.Type".
func (r *Registry) LookupType(name string) (Decl, bool) {
	r.mu.RLock()
	if r.mapsBuilt {
		d, ok := r.lookupLocked(name)
		r.mu.RUnlock()
		return d, ok
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureMapsLocked()
	return r.lookupLocked(name)
}

// LookupByFileIdentifier resolves the table declaration whose
// file_identifier equals id.
func (r *Registry) LookupByFileIdentifier(id [4]byte) (*TableDecl, bool) {
	r.mu.RLock()
	if r.mapsBuilt {
		d, ok := r.byFileIdentifier[id]
		r.mu.RUnlock()
		if !ok {
			return nil, false
		}
		t, ok := d.(*TableDecl)
		return t, ok
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureMapsLocked()
	d, ok := r.byFileIdentifier[id]
	if !ok {
		return nil, false
	}
	t, ok := d.(*TableDecl)
	return t, ok
}

// RootType returns the schema's declared root_type table, if any.
func (r *Registry) RootType() (*TableDecl, bool) {
	if r.schema.RootType == nil {
		return nil, false
	}
	return r.schema.RootType, true
}

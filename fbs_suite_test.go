// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"testing"
	"testing/fstest"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// Test Launcher
func TestFbs(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "flatgo suite")
}

// testSchemaSource is the shared fixture schema exercised across the
// codec test files: an enum, a bit_flags enum, a struct, a couple of
// union member tables, and a root table touching every field kind.
const testSchemaSource = `
namespace flatgo.test;

enum Color : uint8 {
  Red,
  Green,
  Blue,
}

enum Flags : uint8 (bit_flags) {
  Read,
  Write,
  Exec,
}

struct Point {
  x:float32;
  y:float32;
}

table Dog {
  name:string;
  weight_kg:float32;
}

table Cat {
  name:string;
  lives:uint8 = 9;
}

union Pet { Dog, Cat }

table Pair {
  first:Dog;
  second:Dog;
}

table Person {
  name:string;
  age:uint32 = 0;
  color:Color = Blue;
  flags:Flags;
  origin:Point;
  tags:[string];
  scores:[int32];
  pet:Pet;
}

root_type Person;
file_identifier "PERS";
`

// mustTestRegistry parses testSchemaSource and returns a ready Registry.
func mustTestRegistry() *fbs.Registry {
	fsys := fstest.MapFS{
		"test.fbs": &fstest.MapFile{Data: []byte(testSchemaSource)},
	}
	schema, err := fbs.Parse("test.fbs", fsys)
	Expect(err).To(BeNil())
	return fbs.NewRegistry(schema)
}

// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"testing/fstest"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema parsing and registry", func() {
	Context("declarations", func() {
		It("resolves the root type and file identifier", func() {
			reg := mustTestRegistry()
			schema := reg.Schema()
			Expect(schema.RootTypeName).To(Equal("Person"))
			Expect(schema.HasFileIdentifier).To(BeTrue())
			Expect(string(schema.FileIdentifier[:])).To(Equal("PERS"))

			root, ok := reg.RootType()
			Expect(ok).To(BeTrue())
			Expect(root.Name).To(Equal("Person"))
		})

		It("looks up every declared type by name", func() {
			reg := mustTestRegistry()
			for _, name := range []string{"Color", "Flags", "Point", "Dog", "Cat", "Pet", "Person"} {
				_, ok := reg.LookupType(name)
				Expect(ok).To(BeTrue(), name)
			}
			_, ok := reg.LookupType("Nonexistent")
			Expect(ok).To(BeFalse())
		})

		It("looks up the root table by its file identifier", func() {
			reg := mustTestRegistry()
			td, ok := reg.LookupByFileIdentifier([4]byte{'P', 'E', 'R', 'S'})
			Expect(ok).To(BeTrue())
			Expect(td.Name).To(Equal("Person"))
		})
	})

	Context("enum discriminants", func() {
		It("maps an ordinary enum's members both ways", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Color")
			Expect(ok).To(BeTrue())
			disc := d.(*fbs.EnumDecl).Discriminant()
			Expect(disc.BitFlags).To(BeFalse())
			Expect(disc.ByName["Blue"]).To(Equal(int64(2)))
			Expect(disc.ByValue[int64(2)]).To(Equal("Blue"))
		})

		It("stores bit_flags members as bit positions and synthesizes NONE/ALL", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Flags")
			Expect(ok).To(BeTrue())
			disc := d.(*fbs.EnumDecl).Discriminant()
			Expect(disc.BitFlags).To(BeTrue())
			Expect(disc.ByName["Read"]).To(Equal(int64(1)))
			Expect(disc.ByName["Write"]).To(Equal(int64(2)))
			Expect(disc.ByName["Exec"]).To(Equal(int64(4)))
			Expect(disc.ByName["NONE"]).To(Equal(int64(0)))
			Expect(disc.ByName["ALL"]).To(Equal(int64(7)))
			Expect(disc.All).To(Equal(int64(7)))
		})
	})

	Context("namespaces", func() {
		const nsSource = `
namespace acme.red;

table Widget { size:int; }

namespace acme.blue;

table Widget { size:long; }

table Box {
  near:Widget;
  far:acme.red.Widget;
}

root_type Box;
`

		It("keeps same-named types in different namespaces distinct", func() {
			fsys := fstest.MapFS{"ns.fbs": &fstest.MapFile{Data: []byte(nsSource)}}
			schema, err := fbs.Parse("ns.fbs", fsys)
			Expect(err).To(BeNil())
			reg := fbs.NewRegistry(schema)

			d, ok := reg.LookupType("Box")
			Expect(ok).To(BeTrue())
			box := d.(*fbs.TableDecl)
			Expect(box.Fields[0].Type.Table.Namespace).To(Equal("acme.blue"))
			Expect(box.Fields[1].Type.Table.Namespace).To(Equal("acme.red"))

			d, ok = reg.LookupType("acme.red.Widget")
			Expect(ok).To(BeTrue())
			Expect(d.DeclNamespace()).To(Equal("acme.red"))

			d, ok = reg.LookupType("Widget")
			Expect(ok).To(BeTrue())
			Expect(d.DeclNamespace()).To(Equal("acme.blue"))
		})

		It("rejects a duplicate declaration within one namespace", func() {
			src := "table T { a:int; }\ntable T { b:int; }\n"
			fsys := fstest.MapFS{"dup.fbs": &fstest.MapFile{Data: []byte(src)}}
			_, err := fbs.Parse("dup.fbs", fsys)
			Expect(err).To(MatchError(fbs.ErrSchemaSemantic))
		})
	})

	Context("unions", func() {
		It("assigns member discriminants starting at 1, in declaration order", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Pet")
			Expect(ok).To(BeTrue())
			u := d.(*fbs.UnionDecl)
			Expect(len(u.Members)).To(Equal(2))
			Expect(u.Members[0].Name).To(Equal("Dog"))
			Expect(u.Members[1].Name).To(Equal("Cat"))
			Expect(u.DiscriminantOf(u.Members[0])).To(Equal(1))
			Expect(u.DiscriminantOf(u.Members[1])).To(Equal(2))
			Expect(u.VariantByDiscriminant(1)).To(Equal(u.Members[0]))
			Expect(u.VariantByDiscriminant(0)).To(BeNil())
		})
	})
})

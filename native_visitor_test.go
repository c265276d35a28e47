// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Native conversion and visiting", func() {
	Context("ToNative", func() {
		It("converts a decoded table into a declaration-ordered map", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{
				"name":  "Grace",
				"color": "Red",
				"flags": []string{"Write"},
				"pet": map[string]any{
					"_type": "Cat",
					"name":  "Whiskers",
				},
			})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())

			om, err := fbs.ToNative(root)
			Expect(err).To(BeNil())

			Expect(om.Keys()[0]).To(Equal("name"))

			name, ok := om.Get("name")
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Grace"))

			color, ok := om.Get("color")
			Expect(ok).To(BeTrue())
			Expect(color).To(Equal("Red"))

			flags, ok := om.Get("flags")
			Expect(ok).To(BeTrue())
			Expect(flags).To(Equal([]string{"Write"}))

			petType, ok := om.Get("pet_type")
			Expect(ok).To(BeTrue())
			Expect(petType).To(Equal("Cat"))
			pet, ok := om.Get("pet")
			Expect(ok).To(BeTrue())
			petMap, ok := pet.(*fbs.OrderedMap)
			Expect(ok).To(BeTrue())
			petName, _ := petMap.Get("name")
			Expect(petName).To(Equal("Whiskers"))

			lives, _ := petMap.Get("lives")
			Expect(lives).To(Equal(uint8(9))) // declared default, field omitted on the wire
		})

		It("reports NONE for a bit_flags field with no bits set", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{
				"name":  "Nobody",
				"flags": []string{},
			})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			om, err := fbs.ToNative(root)
			Expect(err).To(BeNil())
			flags, _ := om.Get("flags")
			Expect(flags).To(Equal("NONE"))
		})

		It("marshals to JSON preserving declaration order", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{"name": "Order"})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			om, err := fbs.ToNative(root)
			Expect(err).To(BeNil())
			b, err := om.MarshalJSON()
			Expect(err).To(BeNil())
			Expect(string(b)).To(HavePrefix(`{"name":"Order"`))
		})
	})

	Context("Walk", func() {
		It("visits every field and nested table", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{
				"name": "Walker",
				"tags": []any{"a", "b"},
				"pet": map[string]any{
					"_type": "Dog",
					"name":  "Fido",
				},
			})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())

			v := &recordingVisitor{}
			Expect(root.Walk(v)).To(BeNil())

			Expect(v.fields).To(ContainElement("name"))
			Expect(v.unions).To(ContainElement("pet"))
			Expect(v.tableStarts).To(ContainElement("Dog"))
			Expect(v.vectorElems).To(Equal(2))
		})
	})
})

type recordingVisitor struct {
	fields      []string
	unions      []string
	tableStarts []string
	vectorElems int
}

func (v *recordingVisitor) OnTableStart(name string, t fbs.Table) error {
	v.tableStarts = append(v.tableStarts, name)
	return nil
}
func (v *recordingVisitor) OnTableEnd(name string) error { return nil }
func (v *recordingVisitor) OnField(name string, kind fbs.FieldKind, value any) error {
	v.fields = append(v.fields, name)
	return nil
}
func (v *recordingVisitor) OnUnion(name string, member string, present bool) error {
	v.unions = append(v.unions, name)
	return nil
}
func (v *recordingVisitor) OnVectorStart(name string, length int) error { return nil }
func (v *recordingVisitor) OnElement(name string, index int, value any) error {
	v.vectorElems++
	return nil
}
func (v *recordingVisitor) OnVectorEnd(name string) error { return nil }

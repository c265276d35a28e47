// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Skeleton building", func() {
	Context("structs", func() {
		It("lays out fields in declaration order with natural alignment", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Point")
			Expect(ok).To(BeTrue())
			sk, err := reg.SkeletonFor(d)
			Expect(err).To(BeNil())
			ssk := sk.(*fbs.StructSkeleton)
			Expect(ssk.InlineSize).To(Equal(8))
			Expect(ssk.InlineAlign).To(Equal(4))
			Expect(len(ssk.Fields)).To(Equal(2))
			Expect(ssk.FieldOffsets).To(Equal([]int{0, 4}))
		})
	})

	Context("tables", func() {
		It("expands a union field into a synthetic discriminant plus the union slot", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Person")
			Expect(ok).To(BeTrue())
			sk, err := reg.SkeletonFor(d)
			Expect(err).To(BeNil())
			tsk := sk.(*fbs.TableSkeleton)

			discFsk, ok := tsk.FieldMap["pet_type"]
			Expect(ok).To(BeTrue())
			Expect(discFsk.Synthetic).To(BeTrue())
			Expect(discFsk.Kind).To(Equal(fbs.FieldEnum))

			petFsk, ok := tsk.FieldMap["pet"]
			Expect(ok).To(BeTrue())
			Expect(petFsk.Kind).To(Equal(fbs.FieldUnion))
			Expect(petFsk.Synthetic).To(BeFalse())
			Expect(petFsk.Slot).To(Equal(discFsk.Slot + 1))
		})

		It("resolves vector element kinds", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Person")
			Expect(ok).To(BeTrue())
			sk, err := reg.SkeletonFor(d)
			Expect(err).To(BeNil())
			tsk := sk.(*fbs.TableSkeleton)

			tagsFsk, ok := tsk.FieldMap["tags"]
			Expect(ok).To(BeTrue())
			Expect(tagsFsk.Kind).To(Equal(fbs.FieldVector))
			Expect(tagsFsk.ElemKind).To(Equal(fbs.FieldString))

			scoresFsk, ok := tsk.FieldMap["scores"]
			Expect(ok).To(BeTrue())
			Expect(scoresFsk.ElemKind).To(Equal(fbs.FieldScalar))
			Expect(scoresFsk.Scalar).To(Equal(fbs.ScalarInt32))
		})

		It("coerces a declared enum default to the enum's stored value", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Person")
			Expect(ok).To(BeTrue())
			sk, err := reg.SkeletonFor(d)
			Expect(err).To(BeNil())
			tsk := sk.(*fbs.TableSkeleton)

			colorFsk, ok := tsk.FieldMap["color"]
			Expect(ok).To(BeTrue())
			Expect(colorFsk.Default).ToNot(BeNil())
		})
	})

	Context("unions", func() {
		It("builds a variant skeleton per union member, keyed by discriminant", func() {
			reg := mustTestRegistry()
			d, ok := reg.LookupType("Pet")
			Expect(ok).To(BeTrue())
			sk, err := reg.SkeletonFor(d)
			Expect(err).To(BeNil())
			usk := sk.(*fbs.UnionSkeleton)
			Expect(len(usk.Variants)).To(Equal(2))
			Expect(usk.Variants[1].Decl.Name).To(Equal("Dog"))
			Expect(usk.Variants[2].Decl.Name).To(Equal("Cat"))
		})
	})
})

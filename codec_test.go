package fbs_test

import (
	"bytes"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Encode/Decode round trip", func() {
	Context("a table touching every field kind", func() {
		It("round-trips scalars, strings, enums, structs, vectors, and unions", func() {
			reg := mustTestRegistry()
			value := map[string]any{
				"name":  "Ada",
				"age":   int64(36),
				"color": "Green",
				"flags": []string{"Read", "Exec"},
				"origin": map[string]any{
					"x": float64(1.5),
					"y": float64(-2.5),
				},
				"tags":   []any{"admin", "staff"},
				"scores": []any{int64(10), int64(20), int64(30)},
				"pet": map[string]any{
					"_type":     "Dog",
					"name":      "Rex",
					"weight_kg": float64(12.5),
				},
			}

			buf, err := fbs.Encode(reg, "Person", value)
			Expect(err).To(BeNil())
			Expect(len(buf)).To(BeNumerically(">", 0))

			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())

			name, err := root.GetString("name")
			Expect(err).To(BeNil())
			Expect(name).To(Equal("Ada"))

			age, err := root.GetField("age")
			Expect(err).To(BeNil())
			Expect(age).To(Equal(uint32(36)))

			colorRaw, err := root.GetField("color")
			Expect(err).To(BeNil())
			Expect(colorRaw).To(Equal(uint8(1))) // Red=0, Green=1, Blue=2

			origin, present, err := root.GetStruct("origin")
			Expect(err).To(BeNil())
			Expect(present).To(BeTrue())
			x, err := origin.GetField("x")
			Expect(err).To(BeNil())
			Expect(x).To(Equal(float32(1.5)))

			tags, err := root.GetVector("tags")
			Expect(err).To(BeNil())
			Expect(tags.Len()).To(Equal(2))
			t0, err := tags.Get(0)
			Expect(err).To(BeNil())
			Expect(t0).To(Equal("admin"))

			scores, err := root.GetVector("scores")
			Expect(err).To(BeNil())
			Expect(scores.Len()).To(Equal(3))
			s1, err := scores.Get(1)
			Expect(err).To(BeNil())
			Expect(s1).To(Equal(int32(20)))

			uv, err := root.GetUnion("pet")
			Expect(err).To(BeNil())
			Expect(uv.Present).To(BeTrue())
			Expect(uv.MemberName).To(Equal("Dog"))
			petName, err := uv.Table.GetString("name")
			Expect(err).To(BeNil())
			Expect(petName).To(Equal("Rex"))
		})

		It("omits fields equal to their default", func() {
			reg := mustTestRegistry()
			value := map[string]any{
				"name":  "Default Guy",
				"age":   int64(0), // equals declared default
				"color": "Blue",   // equals declared default
			}
			buf, err := fbs.Encode(reg, "Person", value)
			Expect(err).To(BeNil())

			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())

			age, err := root.GetField("age")
			Expect(err).To(BeNil())
			Expect(age).To(Equal(uint32(0)))

			color, err := root.GetField("color")
			Expect(err).To(BeNil())
			Expect(color).To(Equal(uint8(2)))
		})

		It("leaves an absent union untagged", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{"name": "No Pet"})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			uv, err := root.GetUnion("pet")
			Expect(err).To(BeNil())
			Expect(uv.Present).To(BeFalse())
		})

		It("accepts the sibling <name>_type union key the flatc JSON form uses", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{
				"name":     "Sibling",
				"pet_type": "Cat",
				"pet":      map[string]any{"name": "Tom", "lives": int64(3)},
			})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			uv, err := root.GetUnion("pet")
			Expect(err).To(BeNil())
			Expect(uv.Present).To(BeTrue())
			Expect(uv.MemberName).To(Equal("Cat"))
			lives, err := uv.Table.GetField("lives")
			Expect(err).To(BeNil())
			Expect(lives).To(Equal(uint8(3)))
		})

		It("rejects a discriminant without a payload, and vice versa", func() {
			reg := mustTestRegistry()
			_, err := fbs.Encode(reg, "Person", map[string]any{
				"name":     "Half",
				"pet_type": "Cat",
			})
			Expect(err).To(MatchError(fbs.ErrBadDiscriminant))

			_, err = fbs.Encode(reg, "Person", map[string]any{
				"name":     "Other Half",
				"pet_type": "NONE",
				"pet":      map[string]any{"name": "Ghost"},
			})
			Expect(err).To(MatchError(fbs.ErrBadDiscriminant))
		})

		It("rejects an unresolvable union member name", func() {
			reg := mustTestRegistry()
			_, err := fbs.Encode(reg, "Person", map[string]any{
				"name": "Bad",
				"pet":  map[string]any{"_type": "Fish"},
			})
			Expect(err).ToNot(BeNil())
		})

		It("resolves the root type from the registry when typeName is empty", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "", map[string]any{"name": "Implicit Root"})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			name, err := root.GetString("name")
			Expect(err).To(BeNil())
			Expect(name).To(Equal("Implicit Root"))
		})
	})

	Context("wire-level properties", func() {
		It("encodes a field set to its default byte-identically to omitting it", func() {
			reg := mustTestRegistry()
			withDefault, err := fbs.Encode(reg, "Person", map[string]any{"age": int64(0), "color": "Blue"})
			Expect(err).To(BeNil())
			empty, err := fbs.Encode(reg, "Person", map[string]any{})
			Expect(err).To(BeNil())
			Expect(withDefault).To(Equal(empty))
		})

		It("selects the root type from the buffer's file identifier", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{"name": "By Ident"})
			Expect(err).To(BeNil())

			root, err := fbs.DecodeRoot(buf, reg, "")
			Expect(err).To(BeNil())
			name, err := root.GetString("name")
			Expect(err).To(BeNil())
			Expect(name).To(Equal("By Ident"))

			unidentified := make([]byte, len(buf))
			copy(unidentified, buf)
			copy(unidentified[4:8], "XXXX")
			_, err = fbs.DecodeRoot(unidentified, reg, "")
			Expect(err).To(MatchError(fbs.ErrMissingRootType))
		})

		It("is deterministic across repeated calls", func() {
			reg := mustTestRegistry()
			value := map[string]any{
				"name":   "Det",
				"age":    int64(7),
				"tags":   []any{"x", "y"},
				"scores": []any{int64(1), int64(2)},
			}
			a, err := fbs.Encode(reg, "Person", value)
			Expect(err).To(BeNil())
			b, err := fbs.Encode(reg, "Person", value)
			Expect(err).To(BeNil())
			Expect(a).To(Equal(b))
		})

		It("emits a table referenced twice through one shared block", func() {
			reg := mustTestRegistry()
			dog := map[string]any{"name": "Shared", "weight_kg": float64(4.5)}
			shared, err := fbs.Encode(reg, "Pair", map[string]any{"first": dog, "second": dog})
			Expect(err).To(BeNil())

			separate, err := fbs.Encode(reg, "Pair", map[string]any{
				"first":  map[string]any{"name": "Shared", "weight_kg": float64(4.5)},
				"second": map[string]any{"name": "Shared", "weight_kg": float64(4.5)},
			})
			Expect(err).To(BeNil())
			Expect(len(shared)).To(BeNumerically("<", len(separate)))

			root, err := fbs.DecodeRoot(shared, reg, "Pair")
			Expect(err).To(BeNil())
			first, ok, err := root.GetTable("first")
			Expect(err).To(BeNil())
			Expect(ok).To(BeTrue())
			second, ok, err := root.GetTable("second")
			Expect(err).To(BeNil())
			Expect(ok).To(BeTrue())
			Expect(fbs.NativeEquals(first, second)).To(BeTrue())
			n, err := second.GetString("name")
			Expect(err).To(BeNil())
			Expect(n).To(Equal("Shared"))
		})
	})

	Context("streaming", func() {
		It("round-trips several size-prefixed frames through Scanner", func() {
			reg := mustTestRegistry()
			var stream []byte
			for _, n := range []string{"Alice", "Bob", "Carol"} {
				buf, err := fbs.Encode(reg, "Person", map[string]any{"name": n})
				Expect(err).To(BeNil())
				var lenBuf [4]byte
				lenBuf[0] = byte(len(buf))
				lenBuf[1] = byte(len(buf) >> 8)
				lenBuf[2] = byte(len(buf) >> 16)
				lenBuf[3] = byte(len(buf) >> 24)
				stream = append(stream, lenBuf[:]...)
				stream = append(stream, buf...)
			}

			tables, err := fbs.ReadAllToSlice(bytes.NewReader(stream), reg, "Person")
			Expect(err).To(BeNil())
			Expect(len(tables)).To(Equal(3))
			n0, _ := tables[0].GetString("name")
			n2, _ := tables[2].GetString("name")
			Expect(n0).To(Equal("Alice"))
			Expect(n2).To(Equal("Carol"))
		})
	})
})

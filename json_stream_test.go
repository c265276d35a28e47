// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"bytes"
	"strings"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("JSON value streaming", func() {
	Context("JSONValueScanner", func() {
		It("parses one JSON object per line into Encode-ready maps", func() {
			input := "" +
				`{"name":"Ada","age":36}` + "\n" +
				"\n" + // blank lines are skipped
				`{"name":"Grace","tags":["admin","staff"]}` + "\n"

			s := fbs.NewJSONValueScanner(strings.NewReader(input))

			Expect(s.Next()).To(BeTrue())
			v1 := s.Value()
			Expect(v1["name"]).To(Equal("Ada"))
			Expect(v1["age"]).To(Equal(float64(36)))

			Expect(s.Next()).To(BeTrue())
			v2 := s.Value()
			Expect(v2["name"]).To(Equal("Grace"))
			tags, ok := v2["tags"].([]any)
			Expect(ok).To(BeTrue())
			Expect(tags).To(Equal([]any{"admin", "staff"}))

			Expect(s.Next()).To(BeFalse())
			Expect(s.Err()).To(BeNil())
		})

		It("feeds straight into Encode", func() {
			reg := mustTestRegistry()
			s := fbs.NewJSONValueScanner(strings.NewReader(`{"name":"Streamed"}` + "\n"))
			Expect(s.Next()).To(BeTrue())
			buf, err := fbs.Encode(reg, "Person", s.Value())
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())
			name, err := root.GetString("name")
			Expect(err).To(BeNil())
			Expect(name).To(Equal("Streamed"))
		})
	})

	Context("WriteNativeJSON", func() {
		It("writes a decoded table back out as one JSON line", func() {
			reg := mustTestRegistry()
			buf, err := fbs.Encode(reg, "Person", map[string]any{"name": "Round Trip"})
			Expect(err).To(BeNil())
			root, err := fbs.DecodeRoot(buf, reg, "Person")
			Expect(err).To(BeNil())

			var out bytes.Buffer
			Expect(fbs.WriteNativeJSON(&out, root)).To(BeNil())
			Expect(out.String()).To(HavePrefix(`{"name":"Round Trip"`))
			Expect(out.String()).To(HaveSuffix("}\n"))
		})
	})
})

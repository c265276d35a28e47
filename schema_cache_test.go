// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"bytes"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema cache", func() {
	It("round-trips declaration names and detects staleness", func() {
		reg := mustTestRegistry()
		source := []byte(testSchemaSource)
		entry := fbs.NewSchemaCacheEntry(source, reg.Schema())

		Expect(entry.Names).To(ContainElement("flatgo.test.Person"))
		Expect(entry.Names).To(ContainElement("flatgo.test.Color"))
		Expect(entry.Matches(source)).To(BeTrue())
		Expect(entry.Matches([]byte("different"))).To(BeFalse())

		var buf bytes.Buffer
		Expect(fbs.SaveSchemaCache(&buf, entry)).To(BeNil())

		loaded, err := fbs.LoadSchemaCache(&buf)
		Expect(err).To(BeNil())
		Expect(loaded.SourceHash).To(Equal(entry.SourceHash))
		Expect(loaded.Names).To(Equal(entry.Names))
	})

	It("rejects a buffer with the wrong magic", func() {
		_, err := fbs.LoadSchemaCache(bytes.NewReader(make([]byte, 16)))
		Expect(err).ToNot(BeNil())
	})
})

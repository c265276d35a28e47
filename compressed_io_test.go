// Copyright (c) 2025 Neomantra Corp

package fbs_test

import (
	"io"
	"os"
	"path/filepath"

	"github.com/flatgo-project/flatgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Compressed I/O", func() {
	Context("plain files", func() {
		It("round-trips uncompressed content", func() {
			path := filepath.Join(GinkgoT().TempDir(), "buf.fb")
			w, closeW, err := fbs.CreateBufferFile(path, false)
			Expect(err).To(BeNil())
			_, err = w.Write([]byte("hello flatgo"))
			Expect(err).To(BeNil())
			closeW()

			r, closer, err := fbs.OpenBufferFile(path, false)
			Expect(err).To(BeNil())
			defer closer.Close()
			got, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(got)).To(Equal("hello flatgo"))
		})
	})

	Context("zstd files", func() {
		It("round-trips content compressed via a .fb.zst suffix", func() {
			path := filepath.Join(GinkgoT().TempDir(), "buf.fb.zst")
			w, closeW, err := fbs.CreateBufferFile(path, false)
			Expect(err).To(BeNil())
			_, err = w.Write([]byte("compressed payload"))
			Expect(err).To(BeNil())
			closeW()

			info, err := os.Stat(path)
			Expect(err).To(BeNil())
			Expect(info.Size()).To(BeNumerically(">", 0))

			r, closer, err := fbs.OpenBufferFile(path, false)
			Expect(err).To(BeNil())
			defer closer.Close()
			got, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(got)).To(Equal("compressed payload"))
		})

		It("honors an explicit forceZstd flag regardless of filename", func() {
			path := filepath.Join(GinkgoT().TempDir(), "buf.bin")
			w, closeW, err := fbs.CreateBufferFile(path, true)
			Expect(err).To(BeNil())
			_, err = w.Write([]byte("forced zstd"))
			Expect(err).To(BeNil())
			closeW()

			r, closer, err := fbs.OpenBufferFile(path, true)
			Expect(err).To(BeNil())
			defer closer.Close()
			got, err := io.ReadAll(r)
			Expect(err).To(BeNil())
			Expect(string(got)).To(Equal("forced zstd"))
		})
	})
})

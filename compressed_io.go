// Copyright (c) 2025 Neomantra Corp

// Buffer-file open/create helpers with transparent zstd framing.
// Encoded FlatBuffers streams are conventionally stored as ".fb"
// (raw) or ".fb.zst" (compressed) files; "-" selects stdio.

package fbs

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// wantZstd reports whether filename (or the force flag) selects zstd
// framing.
func wantZstd(filename string, force bool) bool {
	return force || strings.HasSuffix(filename, ".zst") || strings.HasSuffix(filename, ".zstd")
}

// OpenBufferFile opens filename for reading, decompressing
// transparently when the name carries a zstd suffix or forceZstd is
// set. "-" reads from stdin, in which case the returned Closer is nil.
func OpenBufferFile(filename string, forceZstd bool) (io.Reader, io.Closer, error) {
	var src io.Reader = os.Stdin
	var closer io.Closer
	if filename != "-" {
		f, err := os.Open(filename)
		if err != nil {
			return nil, nil, err
		}
		src, closer = f, f
	}
	if !wantZstd(filename, forceZstd) {
		return src, closer, nil
	}
	dec, err := zstd.NewReader(src)
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, nil, err
	}
	return dec, closer, nil
}

// CreateBufferFile creates filename for writing, compressing
// transparently when the name carries a zstd suffix or forceZstd is
// set. "-" writes to stdout. The returned function flushes and closes
// whatever was opened; defer it.
func CreateBufferFile(filename string, forceZstd bool) (io.Writer, func(), error) {
	var dst io.Writer = os.Stdout
	var file *os.File
	if filename != "-" {
		f, err := os.Create(filename)
		if err != nil {
			return nil, nil, err
		}
		dst, file = f, f
	}
	closeFile := func() {
		if file != nil {
			file.Close()
		}
	}
	if !wantZstd(filename, forceZstd) {
		return dst, closeFile, nil
	}
	enc, err := zstd.NewWriter(dst)
	if err != nil {
		closeFile()
		return nil, nil, err
	}
	closeAll := func() {
		enc.Close()
		closeFile()
	}
	return enc, closeAll, nil
}

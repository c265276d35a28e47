// Copyright (c) 2025 Neomantra Corp

package fbs

import (
	"bufio"
	"encoding/binary"
	"io"
)

// DefaultScanBufferSize sizes the Scanner's underlying bufio.Reader.
const DefaultScanBufferSize = 16 * 1024

// Scanner reads a stream of size-prefixed FlatBuffers messages: each
// frame is a 4-byte little-endian length followed by that many bytes
// of a self-contained buffer.
type Scanner struct {
	srcReader  io.Reader
	buffReader *bufio.Reader
	reg        *Registry
	typeName   string

	lastFrame []byte
	lastSize  int
	lastError error
}

// NewScanner creates a Scanner over r. typeName selects the root table
// to decode each frame as; pass "" to resolve it per-frame from the
// frame's file identifier, per DecodeRoot.
func NewScanner(r io.Reader, reg *Registry, typeName string) *Scanner {
	return &Scanner{
		srcReader:  r,
		buffReader: bufio.NewReaderSize(r, DefaultScanBufferSize),
		reg:        reg,
		typeName:   typeName,
		lastFrame:  make([]byte, 0, DefaultScanBufferSize),
	}
}

// Error returns the last error from Next. May be io.EOF.
func (s *Scanner) Error() error { return s.lastError }

// Bytes returns the raw buffer bytes of the last frame read.
func (s *Scanner) Bytes() []byte { return s.lastFrame[:s.lastSize] }

// Next reads the next frame from the stream.
func (s *Scanner) Next() bool {
	var lenBuf [UOffsetSize]byte
	if _, err := io.ReadFull(s.buffReader, lenBuf[:]); err != nil {
		s.lastError = err
		s.lastSize = 0
		return false
	}
	frameLen := int(binary.LittleEndian.Uint32(lenBuf[:]))
	if cap(s.lastFrame) < frameLen {
		s.lastFrame = make([]byte, frameLen)
	} else {
		s.lastFrame = s.lastFrame[:frameLen]
	}
	if _, err := io.ReadFull(s.buffReader, s.lastFrame); err != nil {
		s.lastError = err
		s.lastSize = 0
		return false
	}
	s.lastError = nil
	s.lastSize = frameLen
	return true
}

// Table decodes the current frame as a root Table, per s.typeName (or
// the frame's file identifier when typeName is empty).
func (s *Scanner) Table() (Table, error) {
	return DecodeRoot(s.Bytes(), s.reg, s.typeName)
}

// ReadAllToSlice drains reader as a stream of size-prefixed frames,
// decoding each as typeName (or by file identifier when typeName is
// empty), and returns every decoded root Table. EOF is not propagated
// as an error.
func ReadAllToSlice(reader io.Reader, reg *Registry, typeName string) ([]Table, error) {
	tables := make([]Table, 0)
	scanner := NewScanner(reader, reg, typeName)
	for scanner.Next() {
		frame := make([]byte, len(scanner.Bytes()))
		copy(frame, scanner.Bytes())
		t, err := DecodeRoot(frame, reg, typeName)
		if err != nil {
			return tables, err
		}
		tables = append(tables, t)
	}
	err := scanner.Error()
	if err == io.EOF {
		err = nil
	}
	return tables, err
}

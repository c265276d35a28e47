// Copyright (c) 2025 Neomantra Corp

// Package fbs implements a schema-driven encoder/decoder for the
// FlatBuffers binary interchange format: a FlatBuffers IDL schema is
// parsed once into a Registry, which compiles per-type layout
// skeletons on demand; those skeletons drive a zero-copy decoder and a
// bottom-up encoder that both agree byte-for-byte with the reference
// `flatc` compiler.
package fbs

import (
	"encoding/binary"
	"fmt"
	"math"
)

///////////////////////////////////////////////////////////////////////////////

// UOffset is an unsigned 32-bit forward relative offset.
type UOffset uint32

// SOffset is a signed 32-bit offset, used for vtable back-pointers.
type SOffset int32

// VOffset is an unsigned 16-bit field-slot offset within a vtable.
type VOffset uint16

// VSize is the 16-bit length field that heads every vtable.
type VSize = VOffset

const (
	UOffsetSize = 4
	SOffsetSize = 4
	VOffsetSize = 2

	// FileIdentifierSize is the fixed length of a schema's file_identifier.
	FileIdentifierSize = 4
)

///////////////////////////////////////////////////////////////////////////////

// Scalar identifies a primitive FlatBuffers base type.
type Scalar uint8

const (
	ScalarBool Scalar = iota
	ScalarInt8
	ScalarUint8
	ScalarInt16
	ScalarUint16
	ScalarInt32
	ScalarUint32
	ScalarInt64
	ScalarUint64
	ScalarFloat32
	ScalarFloat64
)

// scalarInfo is the fixed size/alignment/name table behind Scalar's
// accessors.
var scalarInfo = [...]struct {
	name  string
	size  int
	align int
}{
	ScalarBool:    {"bool", 1, 1},
	ScalarInt8:    {"int8", 1, 1},
	ScalarUint8:   {"uint8", 1, 1},
	ScalarInt16:   {"int16", 2, 2},
	ScalarUint16:  {"uint16", 2, 2},
	ScalarInt32:   {"int32", 4, 4},
	ScalarUint32:  {"uint32", 4, 4},
	ScalarInt64:   {"int64", 8, 8},
	ScalarUint64:  {"uint64", 8, 8},
	ScalarFloat32: {"float32", 4, 4},
	ScalarFloat64: {"float64", 8, 8},
}

// Size returns the scalar's wire size in bytes.
func (s Scalar) Size() int {
	return scalarInfo[s].size
}

// Align returns the scalar's natural alignment in bytes (equal to its size).
func (s Scalar) Align() int {
	return scalarInfo[s].align
}

func (s Scalar) String() string {
	if int(s) >= len(scalarInfo) {
		return fmt.Sprintf("Scalar(%d)", uint8(s))
	}
	return scalarInfo[s].name
}

///////////////////////////////////////////////////////////////////////////////

// PackScalar encodes v as k's little-endian wire bytes. v need not
// have k's exact Go type: numeric values are converted (a float given
// for an integer kind is truncated). Integer overflow (v out of range
// for k) is an error; floats and bools never overflow.
func PackScalar(k Scalar, v any) ([]byte, error) {
	b := make([]byte, k.Size())
	switch k {
	case ScalarBool:
		bv, ok := v.(bool)
		if !ok {
			return nil, badValueError("", v, "bool")
		}
		if bv {
			b[0] = 1
		}
	case ScalarInt8:
		iv, err := coerceInt(v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return nil, err
		}
		b[0] = byte(int8(iv))
	case ScalarUint8:
		uv, err := coerceUint(v, math.MaxUint8)
		if err != nil {
			return nil, err
		}
		b[0] = byte(uint8(uv))
	case ScalarInt16:
		iv, err := coerceInt(v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(b, uint16(int16(iv)))
	case ScalarUint16:
		uv, err := coerceUint(v, math.MaxUint16)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint16(b, uint16(uv))
	case ScalarInt32:
		iv, err := coerceInt(v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(b, uint32(int32(iv)))
	case ScalarUint32:
		uv, err := coerceUint(v, math.MaxUint32)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(b, uint32(uv))
	case ScalarInt64:
		iv, err := coerceInt64(v)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(b, uint64(iv))
	case ScalarUint64:
		uv, err := coerceUint64(v)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(b, uv)
	case ScalarFloat32:
		fv, err := coerceFloat(v)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(b, math.Float32bits(float32(fv)))
	case ScalarFloat64:
		fv, err := coerceFloat(v)
		if err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint64(b, math.Float64bits(fv))
	default:
		return nil, fmt.Errorf("fbs: unknown scalar kind %v", k)
	}
	return b, nil
}

// UnpackScalar decodes a wire scalar of kind k from b[0:k.Size()].
// Per FlatBuffers convention this is unchecked: short or garbage input
// produces a garbage result, not an error, except for the length
// check needed to avoid a panic.
func UnpackScalar(k Scalar, b []byte) (any, error) {
	if len(b) < k.Size() {
		return nil, truncatedBufferError(k.Size(), len(b))
	}
	switch k {
	case ScalarBool:
		return b[0] != 0, nil
	case ScalarInt8:
		return int8(b[0]), nil
	case ScalarUint8:
		return uint8(b[0]), nil
	case ScalarInt16:
		return int16(binary.LittleEndian.Uint16(b)), nil
	case ScalarUint16:
		return binary.LittleEndian.Uint16(b), nil
	case ScalarInt32:
		return int32(binary.LittleEndian.Uint32(b)), nil
	case ScalarUint32:
		return binary.LittleEndian.Uint32(b), nil
	case ScalarInt64:
		return int64(binary.LittleEndian.Uint64(b)), nil
	case ScalarUint64:
		return binary.LittleEndian.Uint64(b), nil
	case ScalarFloat32:
		return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
	case ScalarFloat64:
		return math.Float64frombits(binary.LittleEndian.Uint64(b)), nil
	default:
		return nil, fmt.Errorf("fbs: unknown scalar kind %v", k)
	}
}

///////////////////////////////////////////////////////////////////////////////

func coerceInt(v any, lo, hi int64) (int64, error) {
	iv, err := coerceInt64(v)
	if err != nil {
		return 0, err
	}
	if iv < lo || iv > hi {
		return 0, badValueError("", v, fmt.Sprintf("value in [%d,%d]", lo, hi))
	}
	return iv, nil
}

func coerceInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, badValueError("", v, "int64")
		}
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	default:
		return 0, badValueError("", v, "integer")
	}
}

func coerceUint(v any, max uint64) (uint64, error) {
	uv, err := coerceUint64(v)
	if err != nil {
		return 0, err
	}
	if uv > max {
		return 0, badValueError("", v, fmt.Sprintf("value in [0,%d]", max))
	}
	return uv, nil
}

func coerceUint64(v any) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case int8:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case int16:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case int32:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case int64:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case uint:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case float32:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	case float64:
		if n < 0 {
			return 0, badValueError("", v, "unsigned integer")
		}
		return uint64(n), nil
	default:
		return 0, badValueError("", v, "unsigned integer")
	}
}

func coerceFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	default:
		return 0, badValueError("", v, "float")
	}
}

// Copyright (c) 2025 Neomantra Corp

package fbs

// builtinScalars maps every FlatBuffers scalar keyword, and its
// aliases, to its Scalar kind.
var builtinScalars = map[string]Scalar{
	"bool": ScalarBool,

	"int8": ScalarInt8,
	"byte": ScalarInt8,

	"uint8": ScalarUint8,
	"ubyte": ScalarUint8,

	"int16": ScalarInt16,
	"short": ScalarInt16,

	"uint16": ScalarUint16,
	"ushort": ScalarUint16,

	"int32": ScalarInt32,
	"int":   ScalarInt32,

	"uint32": ScalarUint32,
	"uint":   ScalarUint32,

	"int64": ScalarInt64,
	"long":  ScalarInt64,

	"uint64": ScalarUint64,
	"ulong":  ScalarUint64,

	"float32": ScalarFloat32,
	"float":   ScalarFloat32,

	"float64": ScalarFloat64,
	"double":  ScalarFloat64,
}

// lookupBuiltinScalar resolves a FlatBuffers scalar keyword (or one of
// its short aliases) without requiring a user declaration.
func lookupBuiltinScalar(name string) (Scalar, bool) {
	s, ok := builtinScalars[name]
	return s, ok
}

func isIntegerScalar(s Scalar) bool {
	switch s {
	case ScalarFloat32, ScalarFloat64:
		return false
	default:
		return true
	}
}

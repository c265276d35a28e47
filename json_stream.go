// Copyright (c) 2025 Neomantra Corp

// Line-delimited JSON value streaming: JSONValueScanner scans one
// native-value JSON literal per line and converts it into the
// map[string]any shape Encode expects, via fastjson on the read side
// and segmentio/encoding/json on the write side.

package fbs

import (
	"bufio"
	"fmt"
	"io"

	"github.com/valyala/fastjson"
)

// JSONValueScanner reads successive JSON values, one per line, from an
// underlying io.Reader, converting each into a map[string]any suitable
// for passing to Encode.
type JSONValueScanner struct {
	scanner *bufio.Scanner
	parser  fastjson.Parser
	value   map[string]any
	err     error
}

// NewJSONValueScanner wraps r in a JSONValueScanner.
func NewJSONValueScanner(r io.Reader) *JSONValueScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &JSONValueScanner{scanner: s}
}

// Next advances to the next non-blank line and parses it, reporting
// whether a value is available. Call Value to retrieve it, or Err
// after Next returns false to distinguish EOF from a parse failure.
func (s *JSONValueScanner) Next() bool {
	for s.scanner.Scan() {
		line := s.scanner.Bytes()
		if len(blankTrim(line)) == 0 {
			continue
		}
		jv, err := s.parser.ParseBytes(line)
		if err != nil {
			s.err = fmt.Errorf("fbs: parsing JSON line: %w", err)
			return false
		}
		native, err := fastjsonToNative(jv)
		if err != nil {
			s.err = err
			return false
		}
		m, ok := native.(map[string]any)
		if !ok {
			s.err = fmt.Errorf("fbs: JSON line is not an object")
			return false
		}
		s.value = m
		return true
	}
	s.err = s.scanner.Err()
	return false
}

// Value returns the most recently scanned object.
func (s *JSONValueScanner) Value() map[string]any { return s.value }

// Err returns the first error encountered, if any.
func (s *JSONValueScanner) Err() error { return s.err }

func blankTrim(b []byte) []byte {
	i, j := 0, len(b)
	for i < j && isSpaceByte(b[i]) {
		i++
	}
	for j > i && isSpaceByte(b[j-1]) {
		j--
	}
	return b[i:j]
}

func isSpaceByte(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// fastjsonToNative converts a parsed fastjson.Value into the plain Go
// shapes Encode understands: map[string]any, []any, string, float64,
// bool, or nil.
func fastjsonToNative(v *fastjson.Value) (any, error) {
	switch v.Type() {
	case fastjson.TypeObject:
		obj, err := v.Object()
		if err != nil {
			return nil, err
		}
		m := make(map[string]any, obj.Len())
		var visitErr error
		obj.Visit(func(key []byte, vv *fastjson.Value) {
			if visitErr != nil {
				return
			}
			nv, err := fastjsonToNative(vv)
			if err != nil {
				visitErr = err
				return
			}
			m[string(key)] = nv
		})
		if visitErr != nil {
			return nil, visitErr
		}
		return m, nil
	case fastjson.TypeArray:
		arr, err := v.Array()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(arr))
		for i, av := range arr {
			nv, err := fastjsonToNative(av)
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	case fastjson.TypeString:
		sb, err := v.StringBytes()
		if err != nil {
			return nil, err
		}
		return string(sb), nil
	case fastjson.TypeNumber:
		return v.Float64()
	case fastjson.TypeTrue:
		return true, nil
	case fastjson.TypeFalse:
		return false, nil
	case fastjson.TypeNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("fbs: unsupported JSON value type %v", v.Type())
	}
}

// WriteNativeJSON converts t to its native form and writes it to w as
// a single JSON line, mirroring JSONValueScanner's one-value-per-line
// convention on the write side.
func WriteNativeJSON(w io.Writer, t Table) error {
	om, err := ToNative(t)
	if err != nil {
		return err
	}
	b, err := jsonMarshal(om)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

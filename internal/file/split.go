// Copyright (c) 2025 Neomantra Corp

package file

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/flatgo-project/flatgo"
)

// SplitFile splits a size-prefixed source stream into one destination
// file per distinct value of splitField (a top-level native field name
// on the decoded type), writing "<destDir>/<key>.fb" (or ".fb.zst" when
// zstd-compressing). Records whose splitField is absent, or when
// splitField is "", fall into a single "records" bucket.
func SplitFile(sourceFile string, destDir string, forceZstdInput bool, reg *fbs.Registry, typeName string, splitField string, useZstd bool, verbose bool) error {
	sourceReader, sourceCloser, err := fbs.OpenBufferFile(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("failed to open '%s' for reading: %w", sourceFile, err)
	}
	if sourceCloser != nil {
		defer sourceCloser.Close()
	}

	writerMap := make(map[string]io.Writer)
	closerMap := make(map[string]func())
	defer func() {
		for _, closer := range closerMap {
			closer()
		}
	}()

	scanner := fbs.NewScanner(sourceReader, reg, typeName)
	for scanner.Next() {
		frame := scanner.Bytes()
		root, err := scanner.Table()
		if err != nil {
			return fmt.Errorf("failed to decode record: %w", err)
		}

		key, err := splitKey(root, splitField)
		if err != nil {
			return fmt.Errorf("failed to compute split key: %w", err)
		}

		writer, ok := writerMap[key]
		if !ok {
			suffix := ".fb"
			if useZstd {
				suffix = ".fb.zst"
			}
			destPath := filepath.Join(destDir, key+suffix)
			destWriter, destCloser, err := fbs.CreateBufferFile(destPath, useZstd)
			if err != nil {
				return fmt.Errorf("failed to create dest file '%s': %w", destPath, err)
			}
			writerMap[key] = destWriter
			closerMap[key] = destCloser
			writer = destWriter

			if verbose {
				fmt.Fprintf(os.Stderr, "writing to '%s'\n", destPath)
			}
		}

		if err := writeFrame(writer, frame); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}

	return scanErr(scanner.Error())
}

// splitKey derives a filesystem-safe bucket name from field on t. An
// empty field, an absent value, or a non-scalar value all fall back to
// the shared "records" bucket.
func splitKey(t fbs.Table, field string) (string, error) {
	if field == "" {
		return "records", nil
	}
	om, err := fbs.ToNative(t)
	if err != nil {
		return "", err
	}
	value, ok := om.Get(field)
	if !ok {
		return "records", nil
	}
	switch v := value.(type) {
	case string:
		if v == "" {
			return "records", nil
		}
		return strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(v), nil
	case nil, *fbs.OrderedMap, []any, []string:
		return "records", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// writeFrame writes buf as one size-prefixed frame, matching the
// 4-byte little-endian length convention Scanner reads.
func writeFrame(w io.Writer, buf []byte) error {
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(buf)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(buf)
	return err
}

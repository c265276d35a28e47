// Copyright (c) 2025 Neomantra Corp

// Package file implements bulk operations over size-prefixed FlatBuffer
// buffer streams: rendering a stream as newline-delimited JSON, and
// splitting one into many single-record files.
package file

import (
	"fmt"
	"io"

	"github.com/flatgo-project/flatgo"
)

func scanErr(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

// WriteBufferFileAsJSON scans every size-prefixed frame in sourceFile,
// decodes it as typeName against reg, and writes it to writer as one
// JSON object per line.
func WriteBufferFileAsJSON(sourceFile string, forceZstdInput bool, reg *fbs.Registry, typeName string, writer io.Writer) error {
	r, closer, err := fbs.OpenBufferFile(sourceFile, forceZstdInput)
	if err != nil {
		return fmt.Errorf("opening %s: %w", sourceFile, err)
	}
	if closer != nil {
		defer closer.Close()
	}

	scanner := fbs.NewScanner(r, reg, typeName)
	for scanner.Next() {
		root, err := scanner.Table()
		if err != nil {
			return fmt.Errorf("decoding record: %w", err)
		}
		if err := fbs.WriteNativeJSON(writer, root); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
	}
	return scanErr(scanner.Error())
}

// Copyright (c) 2025 Neomantra Corp

package fbs

import "strings"

// contextWindow renders a 4-line window of src centered on line
// (1-based), with a caret under column, for inclusion in a
// SchemaSyntaxError.
func contextWindow(src string, line, column int) string {
	lines := strings.Split(src, "\n")
	lo := line - 2
	if lo < 1 {
		lo = 1
	}
	hi := line + 1
	if hi > len(lines) {
		hi = len(lines)
	}
	var sb strings.Builder
	for i := lo; i <= hi; i++ {
		sb.WriteString(lines[i-1])
		sb.WriteByte('\n')
		if i == line {
			pad := column - 1
			if pad < 0 {
				pad = 0
			}
			sb.WriteString(strings.Repeat(" ", pad))
			sb.WriteString("^\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// withContext attaches a source-context window to a SchemaSyntaxError
// produced without one (e.g. raised deep inside the lexer).
func withContext(err error, src string) error {
	se, ok := err.(*SchemaSyntaxError)
	if !ok || se.Context != "" {
		return err
	}
	se.Context = contextWindow(src, se.Line, se.Column)
	return se
}

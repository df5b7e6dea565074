// Package style infers the whitespace conventions of a source file: the line
// ending in use, the indent character and the indent step width.
package style

import "strings"

// DefaultIndentSize is the indent step assumed when nothing can be inferred.
const DefaultIndentSize = 4

// Style carries the inferred conventions used when judging hanging indents
// and when synthesizing insertion edits.
type Style struct {
	// LineEnding is "\n" or "\r\n".
	LineEnding string
	// IndentChar is ' ' or '\t'.
	IndentChar byte
	// IndentSize is the configured indent step. It is independent of the
	// tab stop used to expand indentation into columns.
	IndentSize int
}

// Default returns the conventions assumed for an empty or unindented file.
func Default() Style {
	return Style{LineEnding: "\n", IndentChar: ' ', IndentSize: DefaultIndentSize}
}

// Infer detects the file's conventions from its text. The first line ending
// decides LineEnding; the first indented line decides IndentChar and, for
// space indentation, IndentSize.
func Infer(src string) Style {
	st := Default()

	if i := strings.IndexByte(src, '\n'); i >= 0 {
		if i > 0 && src[i-1] == '\r' {
			st.LineEnding = "\r\n"
		}
	}

	for _, line := range strings.SplitAfter(src, "\n") {
		if len(line) == 0 {
			continue
		}
		switch line[0] {
		case '\t':
			st.IndentChar = '\t'
			return st
		case ' ':
			n := 0
			for n < len(line) && line[n] == ' ' {
				n++
			}
			// A whitespace-only line says nothing about indentation.
			if n >= len(line) || line[n] == '\n' || line[n] == '\r' {
				continue
			}
			st.IndentChar = ' '
			if n > 0 && n <= maxInferredIndent {
				st.IndentSize = n
			}
			return st
		}
	}
	return st
}

// maxInferredIndent bounds plausible indent steps during inference.
const maxInferredIndent = 8

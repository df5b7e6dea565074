// Package source provides byte-offset based access to one file's text.
package source

import (
	"sort"
	"strings"

	"github.com/hoel-bagard/pyline/internal/token"
)

// TabSize is the tab stop used when expanding indentation to columns. It is
// deliberately distinct from the configured indent step: tabs always advance
// to the next multiple of 8 regardless of the indent width in use.
const TabSize = 8

// Locator maps byte offsets to physical lines and back. It handles both
// "\n" and "\r\n" line endings.
type Locator struct {
	text       string
	lineStarts []int
}

// NewLocator indexes the line starts of text.
func NewLocator(text string) *Locator {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Locator{text: text, lineStarts: starts}
}

// Text returns the full source text.
func (l *Locator) Text() string { return l.text }

// Slice returns the exact substring covered by r.
func (l *Locator) Slice(r token.Range) string { return l.text[r.Start:r.End] }

// RowOf returns the zero-based row of the line containing offset.
func (l *Locator) RowOf(offset int) int {
	return sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
}

// LineStart returns the start offset of the line containing offset.
func (l *Locator) LineStart(offset int) int {
	return l.lineStarts[l.RowOf(offset)]
}

// RowStart returns the start offset of the given row.
func (l *Locator) RowStart(row int) int { return l.lineStarts[row] }

// RowEnd returns the offset one past the given row, including its line
// ending. The last row ends at the end of the text.
func (l *Locator) RowEnd(row int) int {
	if row+1 < len(l.lineStarts) {
		return l.lineStarts[row+1]
	}
	return len(l.text)
}

// RowText returns the full text of the given row including its line ending.
func (l *Locator) RowText(row int) string {
	return l.text[l.RowStart(row):l.RowEnd(row)]
}

// RowCount returns the number of physical lines.
func (l *Locator) RowCount() int { return len(l.lineStarts) }

// ColumnOf returns the byte column of offset within its row.
func (l *Locator) ColumnOf(offset int) int { return offset - l.LineStart(offset) }

// ExpandIndent returns the column width of a line's leading whitespace, with
// tabs advancing to the next multiple of TabSize.
func ExpandIndent(line string) int {
	line = strings.TrimRight(line, "\r\n")
	if !strings.Contains(line, "\t") {
		return len(line) - len(strings.TrimLeft(line, " "))
	}
	indent := 0
	for _, ch := range line {
		switch ch {
		case '\t':
			indent = indent/TabSize*TabSize + TabSize
		case ' ':
			indent++
		default:
			return indent
		}
	}
	return indent
}

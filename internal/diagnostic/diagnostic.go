// Package diagnostic defines the finding format shared by all rule engines,
// together with the safe edits some findings carry as fixes.
package diagnostic

import (
	"sort"
	"strings"

	"github.com/hoel-bagard/pyline/internal/token"
)

// Code identifies a rule, using the pycodestyle numbering.
type Code string

const (
	// Continuation-line rules. Advisory only: none carries a fix.
	CodeUnexpectedIndentComment      Code = "E116"
	CodeUnderIndentedHanging         Code = "E121"
	CodeMissingOrOutdented           Code = "E122"
	CodeClosingBracketMismatchOpen   Code = "E123"
	CodeClosingBracketMismatchVisual Code = "E124"
	CodeSameIndentAsNextLine         Code = "E125"
	CodeOverIndentedHanging          Code = "E126"
	CodeOverIndentedVisual           Code = "E127"
	CodeUnderIndentedVisual          Code = "E128"
	CodeVisualSameIndentAsNextLine   Code = "E129"
	CodeUnalignedHanging             Code = "E131"
	CodeClosingBracketNotHanging     Code = "E133"

	// Blank-line rules. Every finding carries a safe fix.
	CodeBlankLineBetweenMethods    Code = "E301"
	CodeBlankLinesTopLevel         Code = "E302"
	CodeTooManyBlankLines          Code = "E303"
	CodeBlankLineAfterDecorator    Code = "E304"
	CodeBlankLinesAfterDefinition  Code = "E305"
	CodeBlankLineBeforeNestedDef   Code = "E306"
)

// EditKind distinguishes the two edit shapes.
type EditKind string

const (
	EditInsert EditKind = "insert"
	EditDelete EditKind = "delete"
)

// Edit is a single textual change: an insertion of literal text at an
// offset, or a deletion of a byte range.
type Edit struct {
	Kind  EditKind    `json:"kind"`
	Range token.Range `json:"range"`
	Text  string      `json:"text,omitempty"`
}

// Insertion returns an edit inserting text at offset.
func Insertion(text string, offset int) Edit {
	return Edit{Kind: EditInsert, Range: token.RangeAt(offset), Text: text}
}

// Deletion returns an edit removing the bytes in [start, end).
func Deletion(start, end int) Edit {
	return Edit{Kind: EditDelete, Range: token.Range{Start: start, End: end}}
}

// Diagnostic is one finding against a file.
type Diagnostic struct {
	Code    Code        `json:"code"`
	Message string      `json:"message"`
	Range   token.Range `json:"range"`
	// Fix, when present, is a safe edit: mechanically applicable in a
	// single pass together with every other fix of the same run.
	Fix *Edit `json:"fix,omitempty"`
}

// Sort orders diagnostics by position, then code.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Range.Start != diags[j].Range.Start {
			return diags[i].Range.Start < diags[j].Range.Start
		}
		return diags[i].Code < diags[j].Code
	})
}

// Apply rewrites src with the given edits in one pass. Edits must be
// non-overlapping; they are applied in position order.
func Apply(src string, edits []Edit) string {
	if len(edits) == 0 {
		return src
	}
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Range.Start < sorted[j].Range.Start
	})

	var sb strings.Builder
	pos := 0
	for _, e := range sorted {
		if e.Range.Start < pos {
			// Overlapping edit: the safe-edit contract was broken upstream.
			continue
		}
		sb.WriteString(src[pos:e.Range.Start])
		switch e.Kind {
		case EditInsert:
			sb.WriteString(e.Text)
			pos = e.Range.Start
		case EditDelete:
			pos = e.Range.End
		}
	}
	sb.WriteString(src[pos:])
	return sb.String()
}

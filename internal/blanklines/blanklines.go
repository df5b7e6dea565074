// Package blanklines implements the blank-line conventions around
// declarations: one blank line between methods, two around top-level
// definitions, none after a decorator (pycodestyle E301 through E306).
package blanklines

import (
	"fmt"
	"strings"

	"github.com/hoel-bagard/pyline/internal/diagnostic"
	"github.com/hoel-bagard/pyline/internal/logical"
	"github.com/hoel-bagard/pyline/internal/source"
	"github.com/hoel-bagard/pyline/internal/style"
	"github.com/hoel-bagard/pyline/internal/token"
)

const (
	// topLevelBlankLines is expected around top-level classes and functions.
	topLevelBlankLines = 2
	// methodBlankLines is expected around methods and nested definitions.
	methodBlankLines = 1
)

// follows records what the previous logical line was.
type follows int

const (
	followsOther follows = iota
	followsDecorator
	followsDef
	followsDocstring
)

type statusKind int

const (
	// outside of any class (or function) body.
	outside statusKind = iota
	// inside a body entered at the recorded indent.
	inside
	// commentAfter marks a dedented comment that provisionally exited the
	// body; the next non-comment line decides whether the exit was real.
	commentAfter
)

// status tracks whether the checker is inside a class or function body.
type status struct {
	kind   statusKind
	indent int // indent level where the nesting started
}

// transition updates the status at the start of a newly observed logical
// line. A commentAfter always resolves on the next non-comment line.
func (s status) transition(indentLength int, isCommentOnly bool) status {
	switch s.kind {
	case inside:
		if indentLength <= s.indent {
			if isCommentOnly {
				return status{kind: commentAfter, indent: s.indent}
			}
			return status{kind: outside}
		}
	case commentAfter:
		if !isCommentOnly {
			if indentLength > s.indent {
				return status{kind: inside, indent: s.indent}
			}
			return status{kind: outside}
		}
	}
	return s
}

// Checker holds the cross-line state of the blank-lines rules for one file.
// Create a fresh Checker per file; state is never shared.
type Checker struct {
	loc   *source.Locator
	style style.Style

	follows     follows
	fnStatus    status
	classStatus status
	// isNotFirstLogicalLine suppresses every rule on the first statement.
	isNotFirstLogicalLine bool
	// lastNonCommentLineEnd anchors insertion fixes so that a comment
	// separating two statements sticks to the second one.
	lastNonCommentLineEnd int
	prevUnindentedKind    logical.Kind
	hasPrevUnindented     bool
}

// NewChecker returns a checker for one file.
func NewChecker(loc *source.Locator, st style.Style) *Checker {
	return &Checker{loc: loc, style: st}
}

// CheckLines runs the rules over the logical-line sequence and returns the
// diagnostics in source order.
func (c *Checker) CheckLines(lines *logical.Lines) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	prevIndentLength := -1 // no previous non-comment line yet
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		c.checkLine(&line, prevIndentLength, &diags)
		if !line.IsCommentOnly {
			prevIndentLength = line.IndentLength
		}
	}
	return diags
}

func (c *Checker) checkLine(line *logical.Line, prevIndentLength int, diags *[]diagnostic.Diagnostic) {
	c.classStatus = c.classStatus.transition(line.IndentLength, line.IsCommentOnly)
	c.fnStatus = c.fnStatus.transition(line.IndentLength, line.IsCommentOnly)

	// Don't expect blank lines before the first non-comment line.
	if c.isNotFirstLogicalLine {
		if line.PrecedingBlankLines == 0 &&
			// Only applies to methods.
			line.Kind == logical.KindFunction &&
			c.classStatus.kind == inside &&
			// The class or parent method's docstring can directly precede
			// the def.
			c.follows != followsDocstring &&
			// Do not trigger when the def opens a new block (if/while/...).
			prevIndentLength >= line.IndentLength &&
			// Following a decorator is fine; an error would have been
			// raised on the first decorator already.
			c.follows != followsDecorator {
			// E301
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeBlankLineBetweenMethods,
				Message: fmt.Sprintf("Expected %d blank line, found %d", methodBlankLines, line.PrecedingBlankLines),
				Range:   line.FirstTokenRange,
			}
			fix := diagnostic.Insertion(c.style.LineEnding, c.loc.LineStart(c.lastNonCommentLineEnd))
			d.Fix = &fix
			*diags = append(*diags, d)
		}

		if line.PrecedingBlankLines < topLevelBlankLines &&
			c.follows != followsDecorator &&
			// Allow groups of one-liners.
			!(c.follows == followsDef && line.LastToken != token.Colon) &&
			// Only trigger on non-indented classes and functions.
			line.IndentLength == 0 &&
			line.Kind.IsTopLevel() {
			// E302
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeBlankLinesTopLevel,
				Message: fmt.Sprintf("Expected %d blank lines, found %d", topLevelBlankLines, line.PrecedingBlankLines),
				Range:   line.FirstTokenRange,
			}
			missing := topLevelBlankLines - line.PrecedingBlankLines
			fix := diagnostic.Insertion(strings.Repeat(c.style.LineEnding, missing), c.loc.LineStart(c.lastNonCommentLineEnd))
			d.Fix = &fix
			*diags = append(*diags, d)
		}

		if line.BlankLines > topLevelBlankLines ||
			(line.IndentLength > 0 && line.BlankLines > methodBlankLines) {
			// E303
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeTooManyBlankLines,
				Message: fmt.Sprintf("Too many blank lines (%d)", line.BlankLines),
				Range:   line.FirstTokenRange,
			}
			allowed := topLevelBlankLines
			if line.IndentLength > 0 {
				allowed = methodBlankLines
			}
			// The blank-character count must cover the allowed lines;
			// anything else is a counting bug upstream, so skip the fix
			// rather than underflow.
			if line.PrecedingBlankChars >= allowed {
				end := c.loc.LineStart(line.FirstTokenRange.Start)
				fix := diagnostic.Deletion(end-(line.PrecedingBlankChars-allowed), end)
				d.Fix = &fix
			}
			*diags = append(*diags, d)
		}

		if c.follows == followsDecorator && line.PrecedingBlankLines > 0 {
			// E304
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeBlankLineAfterDecorator,
				Message: "Blank lines found after function decorator",
				Range:   line.FirstTokenRange,
			}
			end := c.loc.LineStart(line.FirstTokenRange.Start)
			if end >= line.PrecedingBlankChars {
				fix := diagnostic.Deletion(end-line.PrecedingBlankChars, end)
				d.Fix = &fix
			}
			*diags = append(*diags, d)
		}

		if line.PrecedingBlankLines < topLevelBlankLines &&
			c.hasPrevUnindented && c.prevUnindentedKind.IsTopLevel() &&
			line.IndentLength == 0 &&
			!line.IsCommentOnly &&
			!line.Kind.IsTopLevel() {
			// E305
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeBlankLinesAfterDefinition,
				Message: fmt.Sprintf("Expected %d blank lines after class or function definition, found %d", topLevelBlankLines, line.BlankLines),
				Range:   line.FirstTokenRange,
			}
			missing := topLevelBlankLines - line.BlankLines
			fix := diagnostic.Insertion(strings.Repeat(c.style.LineEnding, missing), c.loc.LineStart(line.FirstTokenRange.Start))
			d.Fix = &fix
			*diags = append(*diags, d)
		}

		if line.PrecedingBlankLines == 0 &&
			// Only applies to nested definitions.
			c.fnStatus.kind == inside &&
			line.Kind.IsTopLevel() &&
			c.follows != followsDecorator &&
			// The parent's docstring can directly precede the first def.
			c.follows != followsDocstring &&
			// Do not trigger when the def opens a new block (if/while/...).
			prevIndentLength >= line.IndentLength &&
			// Allow groups of one-liners.
			!(c.follows == followsDef && line.LastToken != token.Colon) {
			// E306
			d := diagnostic.Diagnostic{
				Code:    diagnostic.CodeBlankLineBeforeNestedDef,
				Message: fmt.Sprintf("Expected %d blank line before a nested definition, found %d", methodBlankLines, line.BlankLines),
				Range:   line.FirstTokenRange,
			}
			fix := diagnostic.Insertion(c.style.LineEnding, c.loc.LineStart(line.FirstTokenRange.Start))
			d.Fix = &fix
			*diags = append(*diags, d)
		}
	}

	// Record this line, exactly once, after all checks.
	switch line.Kind {
	case logical.KindClass:
		if c.classStatus.kind == outside {
			c.classStatus = status{kind: inside, indent: line.IndentLength}
		}
		c.follows = followsOther
	case logical.KindDecorator:
		c.follows = followsDecorator
	case logical.KindFunction:
		if c.fnStatus.kind == outside {
			c.fnStatus = status{kind: inside, indent: line.IndentLength}
		}
		c.follows = followsDef
	case logical.KindComment:
		// Comments leave the state untouched.
	case logical.KindOther:
		c.follows = followsOther
	}

	if line.IsDocstring {
		c.follows = followsDocstring
	}

	if !line.IsCommentOnly {
		c.isNotFirstLogicalLine = true
		c.lastNonCommentLineEnd = line.End
		if line.IndentLength == 0 {
			c.prevUnindentedKind = line.Kind
			c.hasPrevUnindented = true
		}
	}
}

// Package continuation implements the continuation-line indentation rules
// (pycodestyle E121 through E131). For every logical line spanning at least
// two physical lines, the checker replays the classic visual/hanging-indent
// classification: bracket depth, per-depth indent and hang, and the set of
// columns a continuation may legitimately align to. The rules are advisory;
// no fix is ever attached.
package continuation

import (
	"strings"

	"github.com/hoel-bagard/pyline/internal/diagnostic"
	"github.com/hoel-bagard/pyline/internal/logical"
	"github.com/hoel-bagard/pyline/internal/source"
	"github.com/hoel-bagard/pyline/internal/style"
	"github.com/hoel-bagard/pyline/internal/token"
)

// chanceKind describes why a column is a legitimate alignment target.
type chanceKind int

const (
	// chanceVisual marks a verified visual-indent column.
	chanceVisual chanceKind = iota
	// chanceString marks a column opened by a string or comment, allowing
	// implicit string concatenation to line up.
	chanceString
	// chanceToken marks a column where an operator token started; only the
	// same token text may line up with it.
	chanceToken
)

type chance struct {
	kind chanceKind
	text string
}

// depthState is the per-bracket-depth record. Keeping indent, hang and the
// opening rows in one stack entry makes the depth+1 length invariant
// structural: entries are pushed and popped atomically.
type depthState struct {
	// indent is the fixed visual indent column, 0 while unset.
	indent int
	// hang is the established hanging indent, 0 while unset.
	hang int
	// openRows lists the rows at which this depth was opened.
	openRows []int
}

// Checker evaluates the continuation rules. It keeps no state across
// logical lines; a single value may check any number of lines in sequence.
type Checker struct {
	loc         *source.Locator
	style       style.Style
	hangClosing bool
}

// NewChecker returns a checker resolving offsets through loc. With
// hangClosing, closing brackets are expected on their own hanging line
// instead of matching the opening line's indent.
func NewChecker(loc *source.Locator, st style.Style, hangClosing bool) *Checker {
	return &Checker{loc: loc, style: st, hangClosing: hangClosing}
}

// CheckLines runs the rules over the logical-line sequence.
func (c *Checker) CheckLines(lines *logical.Lines) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for {
		line, ok := lines.Next()
		if !ok {
			break
		}
		c.checkLine(&line, &diags)
	}
	return diags
}

func (c *Checker) checkLine(line *logical.Line, diags *[]diagnostic.Diagnostic) {
	tokens := line.Tokens
	if len(tokens) == 0 {
		return
	}
	firstRow := c.loc.RowOf(tokens[0].Range.Start)
	nrows := 1 + c.loc.RowOf(tokens[len(tokens)-1].Range.Start) - firstRow
	if nrows == 1 {
		return
	}

	indentLevel := line.IndentLength
	// indentNext tells us whether this statement opens a block. If it does,
	// the final continuation line must not share the block body's indent,
	// while some other rows may take an extra step to compensate.
	indentNext := endsWithColon(tokens)

	validHangs := []int{c.style.IndentSize}
	if c.style.IndentChar == '\t' {
		validHangs = append(validHangs, 2*c.style.IndentSize)
	}

	row := 0
	depth := 0
	// How many brackets were opened on each row.
	parens := make([]int, nrows)
	// Indents of physical rows relative to the first row.
	relIndent := make([]int, nrows)
	firstCol := c.loc.ColumnOf(tokens[0].Range.Start)
	stack := []depthState{{indent: firstCol, openRows: []int{0}}}
	indentChances := make(map[int]chance)
	lastIndentCol := firstCol
	var visualIndent *chance
	lastTokenMultiline := false
	hang := 0
	lastStartRow := firstRow

	for _, tok := range tokens {
		startRow := c.loc.RowOf(tok.Range.Start)
		startCol := tok.Range.Start - c.loc.RowStart(startRow)
		endRow := startRow
		if !tok.Kind.IsAnyNewline() {
			endRow = c.loc.RowOf(tok.Range.End)
		}
		endCol := tok.Range.End - c.loc.RowStart(endRow)

		newline := row < startRow-firstRow
		if newline {
			row = startRow - firstRow
			newline = !lastTokenMultiline && !tok.Kind.IsAnyNewline()
		}

		if newline {
			// This is the beginning of a continuation line.
			lastIndentCol = startCol

			// Record the initial indent. The token is the first on its
			// row, so everything before it is the row's leading whitespace.
			ws := c.loc.Text()[c.loc.RowStart(startRow):tok.Range.Start]
			relIndent[row] = source.ExpandIndent(ws) - indentLevel

			closeBracket := tok.Kind.IsCloseBracket()

			// Is the indent relative to an opening bracket line?
			hangingIndent := false
			openRows := stack[depth].openRows
			for i := len(openRows) - 1; i >= 0; i-- {
				hang = relIndent[row] - relIndent[openRows[i]]
				hangingIndent = containsInt(validHangs, hang)
				if hangingIndent {
					break
				}
			}
			if stack[depth].hang != 0 {
				hangingIndent = hang == stack[depth].hang
			}

			// Is there any chance of visual indent?
			visualIndent = nil
			if !closeBracket && hang > 0 {
				if ch, ok := indentChances[startCol]; ok {
					visualIndent = &ch
				}
			}

			switch {
			case closeBracket && stack[depth].indent != 0:
				// Closing bracket for visual indent.
				if startCol != stack[depth].indent {
					c.report(diags, diagnostic.CodeClosingBracketMismatchVisual,
						"Closing bracket does not match visual indentation", tok)
				}
			case closeBracket && hang == 0:
				// Closing bracket matches the indent of the opening line's
				// bracket.
				if c.hangClosing {
					c.report(diags, diagnostic.CodeClosingBracketNotHanging,
						"Closing bracket does not match visual indentation", tok)
				}
			case stack[depth].indent != 0 && startCol < stack[depth].indent:
				if visualIndent == nil || visualIndent.kind != chanceVisual {
					// Visual indent is broken.
					c.report(diags, diagnostic.CodeUnderIndentedVisual,
						"Continuation line under-indented for visual indent", tok)
				}
			case hangingIndent || (indentNext && relIndent[row] == 2*c.style.IndentSize):
				// Hanging indent is verified.
				if closeBracket && !c.hangClosing {
					c.report(diags, diagnostic.CodeClosingBracketMismatchOpen,
						"Closing bracket does not match indentation of opening line's bracket", tok)
				}
				stack[depth].hang = hang
			case visualIndent != nil && visualIndent.kind == chanceVisual:
				// Visual indent is verified.
				stack[depth].indent = startCol
			case visualIndent != nil && (visualIndent.kind == chanceString ||
				(visualIndent.kind == chanceToken && visualIndent.text == c.loc.Slice(tok.Range))):
				// Ignore a token lined up with a matching one from a
				// previous line.
			default:
				// Indent is broken.
				var code diagnostic.Code
				var msg string
				switch {
				case hang <= 0:
					code = diagnostic.CodeMissingOrOutdented
					msg = "Continuation line missing indentation or outdented"
				case stack[depth].indent != 0:
					code = diagnostic.CodeOverIndentedVisual
					msg = "Continuation line over-indented for visual indent"
				case !closeBracket && stack[depth].hang != 0:
					code = diagnostic.CodeUnalignedHanging
					msg = "Continuation line unaligned for hanging indent"
				default:
					stack[depth].hang = hang
					if hang > c.style.IndentSize {
						code = diagnostic.CodeOverIndentedHanging
						msg = "Continuation line over-indented for hanging indent"
					} else {
						code = diagnostic.CodeUnderIndentedHanging
						msg = "Continuation line under-indented for hanging indent"
					}
				}
				if tok.Kind == token.Comment {
					code = diagnostic.CodeUnexpectedIndentComment
					msg = "Unexpected indentation (comment)"
				}
				c.report(diags, code, msg, tok)
			}
		}

		// Look for visual indenting.
		if parens[row] != 0 && tok.Kind != token.NonLogicalNewline &&
			tok.Kind != token.Comment && stack[depth].indent == 0 {
			stack[depth].indent = startCol
			indentChances[startCol] = chance{kind: chanceVisual}
		} else if tok.Kind == token.String || tok.Kind == token.Comment {
			// Implicit string concatenation may align here.
			indentChances[startCol] = chance{kind: chanceString}
		} else if row == 0 && depth == 0 &&
			(tok.Kind == token.Assert || tok.Kind == token.Raise || tok.Kind == token.With) {
			indentChances[endCol+1] = chance{kind: chanceVisual}
		} else if len(indentChances) == 0 && row == 0 && depth == 0 && tok.Kind == token.If {
			// Special case: len("if (") == len("elif").
			indentChances[endCol+1] = chance{kind: chanceVisual}
		} else if tok.Kind == token.Colon && restIsWhitespace(c.loc, endRow, tok.Range.End) {
			stack[depth].openRows = append(stack[depth].openRows, row)
		}

		// Keep track of bracket depth.
		if tok.Kind.IsOperator() {
			switch {
			case tok.Kind.IsOpenBracket():
				depth++
				stack = append(stack, depthState{openRows: []int{row}})
				parens[row]++
			case tok.Kind.IsCloseBracket() && depth > 0:
				// Parent indents should not be more than this one.
				prevIndent := stack[depth].indent
				if prevIndent == 0 {
					prevIndent = lastIndentCol
				}
				stack = stack[:depth]
				depth--
				for d := range stack {
					if stack[d].indent > prevIndent {
						stack[d].indent = 0
					}
				}
				for col := range indentChances {
					if col >= prevIndent {
						delete(indentChances, col)
					}
				}
				if depth > 0 {
					indentChances[stack[depth].indent] = chance{kind: chanceVisual}
				}
				for idx := row; idx >= 0; idx-- {
					if parens[idx] > 0 {
						parens[idx]--
						break
					}
				}
			}
			// Allow lining up tokens.
			if _, ok := indentChances[startCol]; !ok {
				indentChances[startCol] = chance{kind: chanceToken, text: c.loc.Slice(tok.Range)}
			}
		}

		lastTokenMultiline = startRow != endRow
		if lastTokenMultiline {
			relIndent[endRow-firstRow] = relIndent[row]
		}
		lastStartRow = startRow
	}

	if indentNext && source.ExpandIndent(c.loc.RowText(lastStartRow)) == indentLevel+c.style.IndentSize {
		pos := c.loc.RowStart(lastStartRow) + stack[0].indent + c.style.IndentSize
		if end := c.loc.RowEnd(lastStartRow); pos > end {
			pos = end
		}
		if visualIndent != nil {
			*diags = append(*diags, diagnostic.Diagnostic{
				Code:    diagnostic.CodeVisualSameIndentAsNextLine,
				Message: "Visually indented line with same indent as next logical line",
				Range:   token.RangeAt(pos),
			})
		} else {
			*diags = append(*diags, diagnostic.Diagnostic{
				Code:    diagnostic.CodeSameIndentAsNextLine,
				Message: "Continuation line with same indent as next logical line",
				Range:   token.RangeAt(pos),
			})
		}
	}
}

func (c *Checker) report(diags *[]diagnostic.Diagnostic, code diagnostic.Code, msg string, tok token.Token) {
	*diags = append(*diags, diagnostic.Diagnostic{Code: code, Message: msg, Range: tok.Range})
}

func containsInt(values []int, v int) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// endsWithColon reports whether the statement's last substantive token is a
// colon, i.e. the logical line opens a block.
func endsWithColon(tokens []token.Token) bool {
	for i := len(tokens) - 1; i >= 0; i-- {
		if !tokens[i].Kind.IsTrivia() {
			return tokens[i].Kind == token.Colon
		}
	}
	return false
}

// restIsWhitespace reports whether only whitespace follows offset on its row.
func restIsWhitespace(loc *source.Locator, row, offset int) bool {
	rest := loc.Text()[offset:loc.RowEnd(row)]
	return rest != "" && strings.TrimLeft(rest, " \t\r\n\f") == ""
}

// Package logical reconstructs logical lines from the classified token
// stream. A logical line is one statement or clause header, possibly
// spanning several physical lines via brackets or backslash continuation.
package logical

import (
	"github.com/hoel-bagard/pyline/internal/source"
	"github.com/hoel-bagard/pyline/internal/token"
)

// Kind classifies a logical line by its first substantive token.
type Kind int

const (
	KindOther Kind = iota
	// KindClass is the clause header of a class definition.
	KindClass
	// KindDecorator is a decorator line.
	KindDecorator
	// KindFunction is the clause header of a function, including async def.
	KindFunction
	// KindComment is a comment-only line.
	KindComment
)

// IsTopLevel reports whether the kind starts a class or function declaration
// group.
func (k Kind) IsTopLevel() bool {
	return k == KindClass || k == KindFunction || k == KindDecorator
}

// Line describes one logical line. It is immutable once produced.
type Line struct {
	Kind Kind
	// FirstTokenRange is the range of the first token on the line.
	FirstTokenRange token.Range
	// LastToken is the token kind right before the newline ending the line.
	LastToken token.Kind
	// End is the end offset of the line including its newline.
	End int
	// IsCommentOnly is true when the line holds nothing but trivia.
	IsCommentOnly bool
	// IsDocstring is true when every non-trivia token is a string literal.
	IsDocstring bool
	// IndentLength is the expanded column width of the leading whitespace,
	// tabs counted with the fixed 8-column tab stop.
	IndentLength int
	// BlankLines counts the blank physical lines immediately preceding.
	BlankLines int
	// PrecedingBlankLines is the maximum blank run since the last
	// non-comment logical line. Comment-only lines do not reset it, so a
	// comment directly before a def still counts as adjacent.
	PrecedingBlankLines int
	// PrecedingBlankChars is the raw character count of the counted blank
	// lines ("\n" and "\r\n" differ in width).
	PrecedingBlankChars int
	// Tokens are the line's tokens, trivia and terminating newline included.
	Tokens []token.Token
}

// Lines is a lazy, single-pass segmenter over a token stream.
type Lines struct {
	tokens              []token.Token
	pos                 int
	loc                 *source.Locator
	precedingBlankLines int
}

// New returns a segmenter over tokens resolved through loc.
func New(tokens []token.Token, loc *source.Locator) *Lines {
	return &Lines{tokens: tokens, loc: loc}
}

// Next produces the next logical line. End of input flushes no partial
// trailing line: a line must end in an observed newline token.
func (s *Lines) Next() (Line, bool) {
	isCommentOnly := true
	isDocstring := false
	blankLines := 0
	blankChars := 0
	started := false
	startIdx := 0
	var kind Kind
	var firstRange token.Range
	lastToken := token.EOF
	parens := 0

	for s.pos < len(s.tokens) {
		tok := s.tokens[s.pos]
		s.pos++

		if tok.Kind == token.Indent || tok.Kind == token.Dedent {
			continue
		}

		if !started {
			// An empty line.
			if tok.Kind == token.NonLogicalNewline {
				blankLines++
				blankChars += tok.Range.Len()
				continue
			}

			isDocstring = tok.Kind == token.String
			kind = startKind(tok.Kind, s.peekKind())
			firstRange = tok.Range
			started = true
			startIdx = s.pos - 1
		}

		if !tok.Kind.IsTrivia() {
			isCommentOnly = false
		}
		// A docstring line is composed only of string and trivia tokens; a
		// trailing comment does not stop the line from being a docstring.
		if tok.Kind != token.String && !tok.Kind.IsTrivia() {
			isDocstring = false
		}

		switch {
		case tok.Kind.IsOpenBracket():
			parens++
		case tok.Kind.IsCloseBracket():
			if parens > 0 {
				parens--
			}
		case tok.Kind.IsAnyNewline() && parens == 0:
			indent := token.Range{Start: s.loc.LineStart(firstRange.Start), End: firstRange.Start}
			if s.precedingBlankLines < blankLines {
				s.precedingBlankLines = blankLines
			}
			line := Line{
				Kind:                kind,
				FirstTokenRange:     firstRange,
				LastToken:           lastToken,
				End:                 tok.Range.End,
				IsCommentOnly:       isCommentOnly,
				IsDocstring:         isDocstring,
				IndentLength:        source.ExpandIndent(s.loc.Slice(indent)),
				BlankLines:          blankLines,
				PrecedingBlankLines: s.precedingBlankLines,
				PrecedingBlankChars: blankChars,
				Tokens:              s.tokens[startIdx:s.pos],
			}
			if !isCommentOnly {
				s.precedingBlankLines = 0
			}
			return line, true
		}

		lastToken = tok.Kind
	}

	return Line{}, false
}

func (s *Lines) peekKind() token.Kind {
	if s.pos < len(s.tokens) {
		return s.tokens[s.pos].Kind
	}
	return token.EOF
}

func startKind(first, next token.Kind) Kind {
	switch first {
	case token.Class:
		return KindClass
	case token.Comment:
		return KindComment
	case token.At:
		return KindDecorator
	case token.Def:
		return KindFunction
	case token.Async:
		if next == token.Def {
			return KindFunction
		}
	}
	return KindOther
}

// Package tokenize produces the classified token stream for one Python
// source file. It recognizes exactly what the style rules need: strings
// (with prefixes and triple quotes), comments, names and keywords, numbers,
// operators, brackets, and the newline distinction between logical-line
// terminators and non-logical newlines. Anything it cannot make sense of
// lexes as a one-byte Other token; the rules then simply ignore it.
package tokenize

import (
	"github.com/hoel-bagard/pyline/internal/token"
)

type lexer struct {
	src    string
	pos    int
	depth  int  // bracket nesting
	onCode bool // a non-trivia token was seen on the current physical line
	tokens []token.Token
}

// Tokenize lexes src into a finite, ordered token stream. The stream always
// ends a line of code with a Newline token, synthesizing an empty one at end
// of input when the final line has no terminator.
func Tokenize(src string) []token.Token {
	l := &lexer{src: src}
	for l.pos < len(l.src) {
		l.step()
	}
	if l.onCode {
		// The last line of code has no newline; end it anyway.
		l.emit(token.Newline, l.pos, l.pos)
	}
	return l.tokens
}

func (l *lexer) emit(kind token.Kind, start, end int) {
	l.tokens = append(l.tokens, token.Token{Kind: kind, Range: token.Range{Start: start, End: end}})
}

func (l *lexer) step() {
	c := l.src[l.pos]
	switch {
	case c == '\n' || c == '\r':
		l.newline()
	case c == ' ' || c == '\t' || c == '\f':
		l.pos++
	case c == '\\' && l.atLineJoin():
		l.lineJoin()
	case c == '#':
		l.comment()
	case isQuote(c):
		l.str(l.pos)
	case isNameStart(c):
		l.name()
	case c >= '0' && c <= '9':
		l.number()
	default:
		l.operator()
	}
}

// newlineEnd returns the offset one past the line ending starting at pos.
func (l *lexer) newlineEnd(pos int) int {
	if l.src[pos] == '\r' && pos+1 < len(l.src) && l.src[pos+1] == '\n' {
		return pos + 2
	}
	return pos + 1
}

func (l *lexer) newline() {
	start := l.pos
	l.pos = l.newlineEnd(l.pos)
	if l.depth == 0 && l.onCode {
		l.emit(token.Newline, start, l.pos)
	} else {
		l.emit(token.NonLogicalNewline, start, l.pos)
	}
	l.onCode = false
}

func (l *lexer) atLineJoin() bool {
	next := l.pos + 1
	return next < len(l.src) && (l.src[next] == '\n' || l.src[next] == '\r')
}

// lineJoin consumes a backslash continuation. No token is produced: the
// physical line ends but the logical line does not.
func (l *lexer) lineJoin() {
	l.pos = l.newlineEnd(l.pos + 1)
}

func (l *lexer) comment() {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
		l.pos++
	}
	l.emit(token.Comment, start, l.pos)
}

func isQuote(c byte) bool { return c == '\'' || c == '"' }

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isNameByte(c byte) bool {
	return isNameStart(c) || (c >= '0' && c <= '9')
}

// isStringPrefix reports whether the name at [start, end) is a string prefix
// and the next byte opens a quote.
func (l *lexer) isStringPrefix(start, end int) bool {
	if end-start > 2 || end >= len(l.src) || !isQuote(l.src[end]) {
		return false
	}
	for i := start; i < end; i++ {
		switch l.src[i] {
		case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		default:
			return false
		}
	}
	return true
}

func (l *lexer) name() {
	start := l.pos
	for l.pos < len(l.src) && isNameByte(l.src[l.pos]) {
		l.pos++
	}
	if l.isStringPrefix(start, l.pos) {
		l.str(start)
		return
	}
	l.emit(token.ClassifyName(l.src[start:l.pos]), start, l.pos)
	l.onCode = true
}

// str lexes a string literal whose opening quote is at l.pos; start marks
// the beginning of the token including any prefix letters. An unterminated
// single-quoted string degenerates at the end of its physical line.
func (l *lexer) str(start int) {
	quote := l.src[l.pos]
	triple := l.pos+2 < len(l.src) && l.src[l.pos+1] == quote && l.src[l.pos+2] == quote
	if triple {
		l.pos += 3
	} else {
		l.pos++
	}
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos += 2
			continue
		}
		if c == quote {
			if !triple {
				l.pos++
				break
			}
			if l.pos+2 < len(l.src) && l.src[l.pos+1] == quote && l.src[l.pos+2] == quote {
				l.pos += 3
				break
			} else if l.pos+2 >= len(l.src) {
				l.pos = len(l.src)
				break
			}
		}
		if !triple && (c == '\n' || c == '\r') {
			break
		}
		l.pos++
	}
	l.emit(token.String, start, l.pos)
	l.onCode = true
}

func (l *lexer) number() {
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c >= '0' && c <= '9', c == '_', c == '.':
		case c >= 'a' && c <= 'z' && c != 'e', c >= 'A' && c <= 'Z' && c != 'E':
			// hex digits, radix markers and the j suffix
		case c == 'e' || c == 'E':
			// exponent, possibly signed
			if l.pos+1 < len(l.src) && (l.src[l.pos+1] == '+' || l.src[l.pos+1] == '-') {
				l.pos++
			}
		default:
			l.emit(token.Other, start, l.pos)
			l.onCode = true
			return
		}
		l.pos++
	}
	l.emit(token.Other, start, l.pos)
	l.onCode = true
}

// multiByteOps lists multi-character operators, longest first.
var multiByteOps = []string{
	"**=", "//=", ">>=", "<<=", "...", "!=",
	"**", "//", ">>", "<<", "<=", ">=", "==", "->", ":=",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "@=",
}

func (l *lexer) operator() {
	start := l.pos
	for _, op := range multiByteOps {
		if len(l.src)-l.pos >= len(op) && l.src[l.pos:l.pos+len(op)] == op {
			l.pos += len(op)
			l.emit(token.Op, start, l.pos)
			l.onCode = true
			return
		}
	}
	kind := token.Op
	switch l.src[l.pos] {
	case '(':
		kind = token.Lpar
		l.depth++
	case '[':
		kind = token.Lsqb
		l.depth++
	case '{':
		kind = token.Lbrace
		l.depth++
	case ')':
		kind = token.Rpar
		l.decDepth()
	case ']':
		kind = token.Rsqb
		l.decDepth()
	case '}':
		kind = token.Rbrace
		l.decDepth()
	case ':':
		kind = token.Colon
	case '@':
		kind = token.At
	case '+', '-', '*', '/', '%', '&', '|', '^', '~', '<', '>', '=', ',', '.', ';', '!':
	default:
		kind = token.Other
	}
	l.pos++
	l.emit(kind, start, l.pos)
	l.onCode = true
}

func (l *lexer) decDepth() {
	if l.depth > 0 {
		l.depth--
	}
}

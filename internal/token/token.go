// Package token defines the classified token set consumed by the style rules.
package token

// Range is a half-open byte-offset interval into the source text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int { return r.End - r.Start }

// RangeAt returns an empty range anchored at offset.
func RangeAt(offset int) Range { return Range{Start: offset, End: offset} }

// Kind is the classified kind of a lexer token. Raw kinds the rules do not
// care about collapse into Other.
type Kind int

const (
	EOF Kind = iota
	Other
	Op
	String
	Comment
	// Newline ends a logical line; it only appears at bracket depth zero.
	Newline
	// NonLogicalNewline is a newline inside brackets or on a blank or
	// comment-only line.
	NonLogicalNewline
	Indent
	Dedent

	Lpar
	Rpar
	Lsqb
	Rsqb
	Lbrace
	Rbrace
	Colon
	At

	Class
	Def
	Async
	If
	Assert
	Raise
	With
)

// Token pairs a classified kind with its byte range in the source text.
type Token struct {
	Kind  Kind
	Range Range
}

// IsTrivia reports whether the kind carries no statement content.
func (k Kind) IsTrivia() bool {
	switch k {
	case Comment, Newline, NonLogicalNewline, Indent, Dedent:
		return true
	}
	return false
}

// IsAnyNewline reports whether the kind is a physical line terminator.
func (k Kind) IsAnyNewline() bool {
	return k == Newline || k == NonLogicalNewline
}

// IsOpenBracket reports whether the kind opens a bracket pair.
func (k Kind) IsOpenBracket() bool {
	return k == Lpar || k == Lsqb || k == Lbrace
}

// IsCloseBracket reports whether the kind closes a bracket pair.
func (k Kind) IsCloseBracket() bool {
	return k == Rpar || k == Rsqb || k == Rbrace
}

// IsOperator reports whether the kind belongs to the operator/punctuation
// class. The continuation rules record alignment chances for these tokens.
func (k Kind) IsOperator() bool {
	switch k {
	case Op, Lpar, Rpar, Lsqb, Rsqb, Lbrace, Rbrace, Colon, At:
		return true
	}
	return false
}

// classifiedNames maps the keywords the rules distinguish; every other name,
// keyword or not, classifies as Other.
var classifiedNames = map[string]Kind{
	"class":  Class,
	"def":    Def,
	"async":  Async,
	"if":     If,
	"assert": Assert,
	"raise":  Raise,
	"with":   With,
}

// ClassifyName returns the kind for an identifier-shaped token.
func ClassifyName(text string) Kind {
	if k, ok := classifiedNames[text]; ok {
		return k
	}
	return Other
}

package tokenize

import (
	"testing"

	"github.com/hoel-bagard/pyline/internal/token"
)

func kinds(tokens []token.Token) []token.Kind {
	ks := make([]token.Kind, len(tokens))
	for i, t := range tokens {
		ks[i] = t.Kind
	}
	return ks
}

func equalKinds(a, b []token.Kind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTokenizeKinds(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want []token.Kind
	}{
		{
			name: "assignment",
			src:  "x = 1\n",
			want: []token.Kind{token.Other, token.Op, token.Other, token.Newline},
		},
		{
			name: "def header",
			src:  "def f():\n",
			want: []token.Kind{token.Def, token.Other, token.Lpar, token.Rpar, token.Colon, token.Newline},
		},
		{
			name: "async def",
			src:  "async def f(): pass\n",
			want: []token.Kind{token.Async, token.Def, token.Other, token.Lpar, token.Rpar,
				token.Colon, token.Other, token.Newline},
		},
		{
			name: "blank lines are non-logical",
			src:  "\n\nx\n",
			want: []token.Kind{token.NonLogicalNewline, token.NonLogicalNewline, token.Other, token.Newline},
		},
		{
			name: "newline inside brackets is non-logical",
			src:  "f(\n1)\n",
			want: []token.Kind{token.Other, token.Lpar, token.NonLogicalNewline,
				token.Other, token.Rpar, token.Newline},
		},
		{
			name: "comment-only line",
			src:  "# hi\n",
			want: []token.Kind{token.Comment, token.NonLogicalNewline},
		},
		{
			name: "trailing comment keeps logical newline",
			src:  "x = 1  # hi\n",
			want: []token.Kind{token.Other, token.Op, token.Other, token.Comment, token.Newline},
		},
		{
			name: "backslash continuation produces no token",
			src:  "x = \\\n1\n",
			want: []token.Kind{token.Other, token.Op, token.Other, token.Newline},
		},
		{
			name: "decorator",
			src:  "@property\n",
			want: []token.Kind{token.At, token.Other, token.Newline},
		},
		{
			name: "classified keywords",
			src:  "assert x\n",
			want: []token.Kind{token.Assert, token.Other, token.Newline},
		},
		{
			name: "unclassified keyword is other",
			src:  "return x\n",
			want: []token.Kind{token.Other, token.Other, token.Newline},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := kinds(Tokenize(c.src))
			if !equalKinds(got, c.want) {
				t.Errorf("Tokenize(%q) kinds = %v, want %v", c.src, got, c.want)
			}
		})
	}
}

func TestTokenizeStrings(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want token.Range
	}{
		{"plain", `'abc'`, token.Range{Start: 0, End: 5}},
		{"double", `"abc"`, token.Range{Start: 0, End: 5}},
		{"raw prefix", `r'a\'`, token.Range{Start: 0, End: 5}},
		{"byte prefix", `rb'a'`, token.Range{Start: 0, End: 5}},
		{"fstring", `f"a"`, token.Range{Start: 0, End: 4}},
		{"escaped quote", `'a\'b'`, token.Range{Start: 0, End: 6}},
		{"triple", "'''a\nb'''", token.Range{Start: 0, End: 9}},
		{"triple with quotes inside", `"""a"b"""`, token.Range{Start: 0, End: 9}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tokens := Tokenize(c.src)
			if len(tokens) == 0 || tokens[0].Kind != token.String {
				t.Fatalf("Tokenize(%q) first token = %+v, want a string", c.src, tokens)
			}
			if tokens[0].Range != c.want {
				t.Errorf("Tokenize(%q) string range = %+v, want %+v", c.src, tokens[0].Range, c.want)
			}
		})
	}
}

func TestTokenizeSynthesizesFinalNewline(t *testing.T) {
	tokens := Tokenize("x = 1")
	last := tokens[len(tokens)-1]
	if last.Kind != token.Newline {
		t.Fatalf("last token kind = %v, want Newline", last.Kind)
	}
	if last.Range.Len() != 0 || last.Range.Start != 5 {
		t.Errorf("synthesized newline range = %+v, want empty at 5", last.Range)
	}
}

func TestTokenizeCRLF(t *testing.T) {
	tokens := Tokenize("x\r\n\r\ny\r\n")
	want := []token.Kind{token.Other, token.Newline, token.NonLogicalNewline, token.Other, token.Newline}
	if !equalKinds(kinds(tokens), want) {
		t.Fatalf("kinds = %v, want %v", kinds(tokens), want)
	}
	// Each line ending spans both bytes.
	if tokens[1].Range.Len() != 2 {
		t.Errorf("newline range = %+v, want length 2", tokens[1].Range)
	}
	if tokens[2].Range.Len() != 2 {
		t.Errorf("blank line range = %+v, want length 2", tokens[2].Range)
	}
}

func TestTokenizeMultiByteOperators(t *testing.T) {
	tokens := Tokenize("x **= 2\n")
	want := []token.Kind{token.Other, token.Op, token.Other, token.Newline}
	if !equalKinds(kinds(tokens), want) {
		t.Fatalf("kinds = %v, want %v", kinds(tokens), want)
	}
	if got := tokens[1].Range; got != (token.Range{Start: 2, End: 5}) {
		t.Errorf("operator range = %+v, want 2..5", got)
	}
}

func TestTokenizeUnknownByteDegenerates(t *testing.T) {
	tokens := Tokenize("x ? y\n")
	want := []token.Kind{token.Other, token.Other, token.Other, token.Newline}
	if !equalKinds(kinds(tokens), want) {
		t.Errorf("kinds = %v, want %v", kinds(tokens), want)
	}
}

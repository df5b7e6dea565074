// Package check wires the tokenizer, segmenter and rule engines into a
// whole-file style check. Every call builds fresh engine state, so
// independent files may be checked concurrently.
package check

import (
	"strings"

	"github.com/hoel-bagard/pyline/internal/blanklines"
	"github.com/hoel-bagard/pyline/internal/continuation"
	"github.com/hoel-bagard/pyline/internal/diagnostic"
	"github.com/hoel-bagard/pyline/internal/logical"
	"github.com/hoel-bagard/pyline/internal/source"
	"github.com/hoel-bagard/pyline/internal/style"
	"github.com/hoel-bagard/pyline/internal/tokenize"
)

// Options selects and parameterizes the rules for one check pass.
type Options struct {
	// IndentSize overrides the inferred indent step when positive.
	IndentSize int
	// HangClosing expects closing brackets on their own hanging line.
	HangClosing bool
	// Select keeps only diagnostics whose code starts with one of the given
	// prefixes ("E3", "E301", ...). Empty selects everything.
	Select []string
}

// Check runs both rule engines over src and returns the diagnostics in
// source order. The result is a pure function of src and opts.
func Check(src string, opts Options) []diagnostic.Diagnostic {
	tokens := tokenize.Tokenize(src)
	loc := source.NewLocator(src)
	st := style.Infer(src)
	if opts.IndentSize > 0 {
		st.IndentSize = opts.IndentSize
	}

	diags := blanklines.NewChecker(loc, st).CheckLines(logical.New(tokens, loc))
	diags = append(diags,
		continuation.NewChecker(loc, st, opts.HangClosing).CheckLines(logical.New(tokens, loc))...)

	if len(opts.Select) > 0 {
		diags = filter(diags, opts.Select)
	}
	diagnostic.Sort(diags)
	return diags
}

// Fix applies every safe fix proposed for src and returns the rewritten
// text together with the number of fixes applied.
func Fix(src string, opts Options) (string, int) {
	var edits []diagnostic.Edit
	for _, d := range Check(src, opts) {
		if d.Fix != nil {
			edits = append(edits, *d.Fix)
		}
	}
	return diagnostic.Apply(src, edits), len(edits)
}

func filter(diags []diagnostic.Diagnostic, prefixes []string) []diagnostic.Diagnostic {
	kept := diags[:0]
	for _, d := range diags {
		for _, p := range prefixes {
			if strings.HasPrefix(string(d.Code), p) {
				kept = append(kept, d)
				break
			}
		}
	}
	return kept
}

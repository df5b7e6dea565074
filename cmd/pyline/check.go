package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hoel-bagard/pyline/internal/check"
	"github.com/hoel-bagard/pyline/internal/diagnostic"
	"github.com/hoel-bagard/pyline/internal/source"
)

type checkFlags struct {
	fix         bool
	hangClosing bool
	indentSize  int
	format      string
	selects     []string
}

// fileFinding is one diagnostic resolved to a line/column position for
// output.
type fileFinding struct {
	File    string           `json:"file"`
	Line    int              `json:"line"`
	Column  int              `json:"column"`
	Code    diagnostic.Code  `json:"code"`
	Message string           `json:"message"`
	Fix     *diagnostic.Edit `json:"fix,omitempty"`
}

func newCheckCmd() *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Check blank-line and continuation-indentation conventions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, flags)
		},
	}
	cmd.Flags().BoolVar(&flags.fix, "fix", false, "apply safe fixes in place")
	cmd.Flags().BoolVar(&flags.hangClosing, "hang-closing", false, "expect closing brackets on their own hanging line")
	cmd.Flags().IntVar(&flags.indentSize, "indent-size", 0, "indent step width (0 infers it from the file)")
	cmd.Flags().StringVar(&flags.format, "format", "text", "output format: text or json")
	cmd.Flags().StringSliceVar(&flags.selects, "select", nil, "only report codes with these prefixes (e.g. E3,E121)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string, flags checkFlags) error {
	if flags.format != "text" && flags.format != "json" {
		return fmt.Errorf("check: unknown format %q", flags.format)
	}
	opts := check.Options{
		IndentSize:  flags.indentSize,
		HangClosing: flags.hangClosing,
		Select:      flags.selects,
	}

	var findings []fileFinding
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("check: %w", err)
		}
		src := string(data)

		if flags.fix {
			fixed, n := check.Fix(src, opts)
			if n > 0 {
				if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
					return fmt.Errorf("check: write fixed %s: %w", path, err)
				}
			}
			src = fixed
		}

		findings = append(findings, resolve(path, src, check.Check(src, opts))...)
	}

	out := cmd.OutOrStdout()
	switch flags.format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if findings == nil {
			findings = []fileFinding{}
		}
		if err := enc.Encode(findings); err != nil {
			return fmt.Errorf("check: encode: %w", err)
		}
	default:
		for _, f := range findings {
			fmt.Fprintf(out, "%s:%d:%d: %s %s\n", f.File, f.Line, f.Column, f.Code, f.Message)
		}
	}

	if len(findings) > 0 {
		return fmt.Errorf("found %d issue(s)", len(findings))
	}
	return nil
}

// resolve converts byte-offset diagnostics into 1-based line/column findings.
func resolve(path, src string, diags []diagnostic.Diagnostic) []fileFinding {
	loc := source.NewLocator(src)
	findings := make([]fileFinding, 0, len(diags))
	for _, d := range diags {
		row := loc.RowOf(d.Range.Start)
		findings = append(findings, fileFinding{
			File:    path,
			Line:    row + 1,
			Column:  d.Range.Start - loc.RowStart(row) + 1,
			Code:    d.Code,
			Message: d.Message,
			Fix:     d.Fix,
		})
	}
	return findings
}

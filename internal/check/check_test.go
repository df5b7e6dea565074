package check

import (
	"os"
	"reflect"
	"testing"

	"github.com/hoel-bagard/pyline/internal/diagnostic"
	"github.com/hoel-bagard/pyline/internal/source"
)

func codes(diags []diagnostic.Diagnostic) []diagnostic.Code {
	cs := make([]diagnostic.Code, len(diags))
	for i, d := range diags {
		cs[i] = d.Code
	}
	return cs
}

func TestCheckSampleFile(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.py")
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)

	diags := Check(src, Options{})
	want := []diagnostic.Code{
		diagnostic.CodeBlankLineBetweenMethods,
		diagnostic.CodeBlankLinesAfterDefinition,
	}
	if !reflect.DeepEqual(codes(diags), want) {
		t.Fatalf("Check = %v, want %v", codes(diags), want)
	}

	loc := source.NewLocator(src)
	wantRows := []int{7, 13} // 0-based rows of "def dump" and "main()"
	for i, w := range wantRows {
		if row := loc.RowOf(diags[i].Range.Start); row != w {
			t.Errorf("diags[%d] on row %d, want %d", i, row, w)
		}
	}
}

func TestCheckMergesEngines(t *testing.T) {
	src := "def f():\n    pass\nx = (\n  1)\n"
	diags := Check(src, Options{})
	want := []diagnostic.Code{
		diagnostic.CodeBlankLinesAfterDefinition,
		diagnostic.CodeUnderIndentedHanging,
	}
	if !reflect.DeepEqual(codes(diags), want) {
		t.Errorf("Check = %v, want %v", codes(diags), want)
	}
}

func TestCheckSelect(t *testing.T) {
	src := "def f():\n    pass\nx = (\n  1)\n"
	cases := []struct {
		selects []string
		want    []diagnostic.Code
	}{
		{[]string{"E3"}, []diagnostic.Code{diagnostic.CodeBlankLinesAfterDefinition}},
		{[]string{"E121"}, []diagnostic.Code{diagnostic.CodeUnderIndentedHanging}},
		{[]string{"E9"}, nil},
		{nil, []diagnostic.Code{diagnostic.CodeBlankLinesAfterDefinition, diagnostic.CodeUnderIndentedHanging}},
	}
	for _, c := range cases {
		got := codes(Check(src, Options{Select: c.selects}))
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("Check with Select=%v = %v, want %v", c.selects, got, c.want)
		}
	}
}

func TestCheckIndentSizeOverride(t *testing.T) {
	// The file body infers a four-space step, under which the two-space
	// hanging indent is short. Overriding the step makes it exact.
	src := "def g():\n    pass\n\n\nx = f(\n  1,\n)\n"
	if diags := Check(src, Options{IndentSize: 2}); len(diags) != 0 {
		t.Errorf("Check with IndentSize 2 = %v, want none", codes(diags))
	}
	diags := Check(src, Options{})
	if len(diags) != 1 || diags[0].Code != diagnostic.CodeUnderIndentedHanging {
		t.Errorf("Check with inferred indent = %v, want one E121", codes(diags))
	}
}

func TestFixReachesCleanState(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.py")
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)

	fixed, n := Fix(src, Options{})
	if n != 2 {
		t.Errorf("Fix applied %d edits, want 2", n)
	}
	if diags := Check(fixed, Options{}); len(diags) != 0 {
		t.Errorf("Check after Fix = %v, want none", codes(diags))
	}

	// A second pass changes nothing.
	again, n := Fix(fixed, Options{})
	if n != 0 || again != fixed {
		t.Errorf("second Fix applied %d edits and changed the text", n)
	}
}

func TestCheckDeterministic(t *testing.T) {
	data, err := os.ReadFile("testdata/sample.py")
	if err != nil {
		t.Fatal(err)
	}
	src := string(data)
	first := Check(src, Options{})
	second := Check(src, Options{})
	if !reflect.DeepEqual(first, second) {
		t.Errorf("runs differ: %v vs %v", first, second)
	}
}

func TestCheckEmptySource(t *testing.T) {
	if diags := Check("", Options{}); len(diags) != 0 {
		t.Errorf("Check(\"\") = %v, want none", codes(diags))
	}
}

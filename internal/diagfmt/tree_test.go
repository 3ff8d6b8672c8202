package diagfmt

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"sharpfix/internal/parser"
	"sharpfix/internal/source"
)

func TestTreeDump(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.cs", []byte("class C { }\n"))
	tree, err := parser.ParseFile(context.Background(), fs.Get(id))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := FormatTreePretty(&buf, tree, fs, TreeOpts{ShowTrivia: true}); err != nil {
		t.Fatalf("pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"compilation_unit 1:1", "class_declaration", `"class" (trailing: Whitespace)`, `"C"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("dump lacks %q:\n%s", want, out)
		}
	}

	root := BuildTreeOutput(tree, TreeOpts{})
	if root.Kind != "compilation_unit" || len(root.Children) == 0 {
		t.Fatalf("root: %+v", root)
	}
	if shallow := BuildTreeOutput(tree, TreeOpts{MaxDepth: 1}); len(shallow.Children) == 0 || len(shallow.Children[0].Children) != 0 {
		t.Fatalf("max depth not applied")
	}
}

func TestDiff(t *testing.T) {
	if d, err := UnifiedDiff("x.cs", []byte("a\n"), []byte("a\n"), 3); err != nil || d != "" {
		t.Fatalf("equal texts: %q %v", d, err)
	}
	d, err := UnifiedDiff("x.cs", []byte("a\nb\n"), []byte("a\nc\n"), 3)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	for _, want := range []string{"--- a/x.cs", "+++ b/x.cs", "-b", "+c"} {
		if !strings.Contains(d, want) {
			t.Fatalf("diff lacks %q:\n%s", want, d)
		}
	}
	var buf bytes.Buffer
	if err := WriteDiff(&buf, d, false); err != nil {
		t.Fatalf("write: %v", err)
	}
	if buf.String() != d {
		t.Fatalf("uncoloured diff changed:\n%q\n%q", buf.String(), d)
	}
}

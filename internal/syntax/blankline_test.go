package syntax

import "testing"

func TestEnsureBlankLineBeforeIsIdempotent(t *testing.T) {
	tree, _, ifStmt := sampleTree()
	once, err := tree.EnsureBlankLineBefore(ifStmt)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	want := "{\n    a;\n\n    // note\n    if (b) c;\n}\n"
	if got := once.Text(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	sp := once.Span(once.Root().Descendants(KindIf)[0])
	again, ok := once.FindNode(sp, KindIf)
	if !ok {
		t.Fatalf("if statement not found again")
	}
	twice, err := once.EnsureBlankLineBefore(again)
	if err != nil {
		t.Fatalf("ensure twice: %v", err)
	}
	if twice.Text() != once.Text() {
		t.Fatalf("second application changed text: %q", twice.Text())
	}
	if !once.HasBlankLineBefore(again) {
		t.Fatalf("HasBlankLineBefore should see the inserted line")
	}
}

func TestEnsureBlankLineBeforeSameLine(t *testing.T) {
	stmt := NewNode(KindExpressionStmt, ident("a", "", ""), tok(";", "", " "))
	ifStmt := NewNode(KindIf, tok("if", "", " "), tok("(", "", ""), ident("b", "", ""), tok(")", "", " "),
		NewNode(KindExpressionStmt, ident("c", "", ""), tok(";", "", "\n")))
	root := NewNode(KindCompilationUnit,
		NewNode(KindBlock, tok("{", "", "\n"), stmt, ifStmt, tok("}", "", "")), eof(""))

	withIndent := NewNode(KindCompilationUnit, NewNode(KindBlock, tok("{", "", "\n"),
		NewNode(KindExpressionStmt, ident("a", "    ", ""), tok(";", "", " ")), ifStmt, tok("}", "", "")), eof(""))

	tests := []struct {
		name string
		root *Node
		want string
	}{
		{"no indent", root, "{\na; \n\nif (b) c;\n}"},
		{"indent copied", withIndent, "{\n    a; \n\n    if (b) c;\n}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := NewTree(0, "same.cs", tt.root)
			target := tt.root.Descendants(KindIf)[0]
			got, err := tree.EnsureBlankLineBefore(target)
			if err != nil {
				t.Fatalf("ensure: %v", err)
			}
			if got.Text() != tt.want {
				t.Fatalf("got %q, want %q", got.Text(), tt.want)
			}
			again, _ := got.FindNode(got.Span(got.Root().Descendants(KindIf)[0]))
			twice, err := got.EnsureBlankLineBefore(again)
			if err != nil || twice.Text() != got.Text() {
				t.Fatalf("not idempotent: %q (%v)", twice.Text(), err)
			}
		})
	}
}

func TestEnsureBlankLineAfter(t *testing.T) {
	tree, first, _ := sampleTree()
	got, err := tree.EnsureBlankLineAfter(first)
	if err != nil {
		t.Fatalf("ensure after: %v", err)
	}
	want := "{\n    a;\n\n    // note\n    if (b) c;\n}\n"
	if got.Text() != want {
		t.Fatalf("got %q, want %q", got.Text(), want)
	}

	block := tree.Root().Child(0)
	same, err := tree.EnsureBlankLineAfter(block)
	if err != nil {
		t.Fatalf("ensure after block: %v", err)
	}
	if same != tree {
		t.Fatalf("nothing should be inserted before end of file")
	}
}

func TestEnsureBlankLineUsesFileEOL(t *testing.T) {
	stmt := NewNode(KindExpressionStmt, ident("a", "", ""), tok(";", "", "\r\n"))
	ifStmt := NewNode(KindIf, tok("if", "", " "), tok("(", "", ""), ident("b", "", ""), tok(")", "", " "),
		NewNode(KindExpressionStmt, ident("c", "", ""), tok(";", "", "\r\n")))
	tree := NewTree(0, "crlf.cs", NewNode(KindCompilationUnit, stmt, ifStmt, eof("")))
	got, err := tree.EnsureBlankLineBefore(ifStmt)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if want := "a;\r\n\r\nif (b) c;\r\n"; got.Text() != want {
		t.Fatalf("got %q, want %q", got.Text(), want)
	}
}

func TestEnsureBlankLineForeignNode(t *testing.T) {
	tree, _, _ := sampleTree()
	if _, err := tree.EnsureBlankLineBefore(ident("x", "", "")); err == nil {
		t.Fatalf("expected error for foreign node")
	}
}

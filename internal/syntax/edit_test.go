package syntax

import (
	"errors"
	"testing"
)

func TestReplaceSharesUntouchedSubtrees(t *testing.T) {
	tree, first, ifStmt := sampleTree()
	repl := NewNode(KindExpressionStmt, ident("z", "    ", ""), tok(";", "", "\n"))

	next, err := tree.Replace(first, repl)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	want := "{\n    z;\n    // note\n    if (b) c;\n}\n"
	if got := next.Text(); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
	if tree.Text() != sampleText {
		t.Fatalf("original tree changed")
	}
	if !next.Contains(ifStmt) {
		t.Fatalf("sibling subtree should be shared, not copied")
	}
	if next.Contains(first) {
		t.Fatalf("replaced node must be gone")
	}
}

func TestReplaceDeletes(t *testing.T) {
	tree, first, _ := sampleTree()
	next, err := tree.Replace(first)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, want := next.Text(), "{\n    // note\n    if (b) c;\n}\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplaceForeignNode(t *testing.T) {
	tree, _, _ := sampleTree()
	_, err := tree.Replace(ident("x", "", ""))
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := tree.Replace(tree.Root()); !errors.Is(err, ErrEmptyRoot) {
		t.Fatalf("expected ErrEmptyRoot, got %v", err)
	}
}

func TestReplaceInheritsFieldLabel(t *testing.T) {
	tree, _, ifStmt := sampleTree()
	cond := ifStmt.Field("condition")
	next, err := tree.Replace(cond, ident("d", "", ""))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	newIf := next.Root().Descendants(KindIf)[0]
	if got := newIf.Field("condition"); got == nil || got.Text() != "d" {
		t.Fatalf("replacement lost the condition label: %s", got)
	}
}

func TestReplaceAllDisjoint(t *testing.T) {
	tree, first, ifStmt := sampleTree()
	cond := ifStmt.Field("condition")
	next, err := tree.ReplaceAll(map[*Node][]*Node{
		first: nil,
		cond:  {ident("ok", "", "")},
	})
	if err != nil {
		t.Fatalf("replace all: %v", err)
	}
	if got, want := next.Text(), "{\n    // note\n    if (ok) c;\n}\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCarryTrivia(t *testing.T) {
	_, _, ifStmt := sampleTree()
	repl := NewNode(KindReturn, tok("return", "", ""), tok(";", "", ""))
	out := CarryTrivia(ifStmt, repl)
	if len(out) != 1 {
		t.Fatalf("expected one node, got %d", len(out))
	}
	if got, want := out[0].Render(), "    // note\n    return;\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestReplaceDescendant(t *testing.T) {
	_, _, ifStmt := sampleTree()
	cond := ifStmt.Field("condition")
	out, ok := ReplaceDescendant(ifStmt, cond, ident("q", "", ""))
	if !ok {
		t.Fatalf("condition is below the if statement")
	}
	if got := out.SignificantText(); got != "if (q) c;" {
		t.Fatalf("unexpected text %q", got)
	}
	if _, ok := ReplaceDescendant(ifStmt, ident("x", "", "")); ok {
		t.Fatalf("foreign target must not be replaced")
	}
	if got := StripOuterTrivia(ifStmt).Render(); got != "if (b) c;" {
		t.Fatalf("strip outer trivia: %q", got)
	}
}

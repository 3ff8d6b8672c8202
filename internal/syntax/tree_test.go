package syntax

import (
	"testing"

	"sharpfix/internal/source"
)

func TestSpansExcludeOuterTrivia(t *testing.T) {
	tree, first, ifStmt := sampleTree()

	sp := tree.Span(ifStmt)
	if got := sampleText[sp.Start:sp.End]; got != "if (b) c;" {
		t.Fatalf("span text %q", got)
	}
	full := tree.FullSpan(ifStmt)
	if got := sampleText[full.Start:full.End]; got != "    // note\n    if (b) c;\n" {
		t.Fatalf("full span text %q", got)
	}
	sp = tree.Span(first)
	if got := sampleText[sp.Start:sp.End]; got != "a;" {
		t.Fatalf("first statement span text %q", got)
	}
}

func TestFindNodeReturnsOutermost(t *testing.T) {
	tree, _, ifStmt := sampleTree()
	inner := ifStmt.Field("consequence")
	tok := inner.FirstToken()

	// у выражения c; и токена c разные спаны, у c; и ; тоже
	got, ok := tree.FindNode(tree.Span(inner))
	if !ok || got != inner {
		t.Fatalf("expected consequence statement, got %s", got)
	}
	got, ok = tree.FindNode(tree.Span(tok))
	if !ok || got != tok {
		t.Fatalf("expected token c, got %s", got)
	}
	if _, ok := tree.FindNode(tree.Span(ifStmt), KindBlock); ok {
		t.Fatalf("kind filter should reject if_statement")
	}
	if _, ok := tree.FindNode(source.Span{File: 0, Start: 1, End: 3}); ok {
		t.Fatalf("no node spans 1-3")
	}
	if _, ok := tree.FindNode(source.Span{File: 7, Start: 0, End: 1}); ok {
		t.Fatalf("foreign file span must not match")
	}
}

func TestParentsAndSiblings(t *testing.T) {
	tree, first, ifStmt := sampleTree()
	block := tree.Parent(first)
	if block == nil || block.Kind() != KindBlock {
		t.Fatalf("expected block parent, got %s", block)
	}
	if tree.NextSibling(first) != ifStmt || tree.PrevSibling(ifStmt) != first {
		t.Fatalf("sibling navigation broken")
	}
	inner := ifStmt.Field("consequence")
	if anc := tree.Ancestor(inner, KindBlock); anc != block {
		t.Fatalf("expected enclosing block, got %s", anc)
	}
	if n := len(tree.Ancestors(inner)); n != 3 {
		t.Fatalf("expected 3 ancestors, got %d", n)
	}
	if tree.Parent(tree.Root()) != nil || tree.Slot(tree.Root()) != -1 {
		t.Fatalf("root has no parent")
	}
}

func TestTokenNavigation(t *testing.T) {
	tree, first, ifStmt := sampleTree()
	semi := first.LastToken()
	if next := tree.NextToken(semi); next != ifStmt.FirstToken() {
		t.Fatalf("expected 'if' after ';', got %s", next)
	}
	if prev := tree.PrevToken(ifStmt.FirstToken()); prev != semi {
		t.Fatalf("expected ';' before 'if', got %s", prev)
	}
	if tree.PrevToken(tree.Root().FirstToken()) != nil {
		t.Fatalf("first token has no predecessor")
	}
	last := tree.Root().LastToken()
	if last.Kind() != KindEndOfFile || tree.NextToken(last) != nil {
		t.Fatalf("end_of_file must be the final token")
	}
	if tok := tree.TokenAt(6); tok == nil || tok.Text() != "a" {
		t.Fatalf("expected token a at offset 6, got %s", tok)
	}
}

func TestEachTriviaSpans(t *testing.T) {
	tree, _, _ := sampleTree()
	var comments []string
	tree.EachTrivia(func(_ *Node, tr Trivia, sp source.Span) bool {
		if got := sampleText[sp.Start:sp.End]; got != tr.Text {
			t.Fatalf("trivia %q has span text %q", tr.Text, got)
		}
		if tr.IsComment() {
			comments = append(comments, tr.Text)
		}
		return true
	})
	if len(comments) != 1 || comments[0] != "// note" {
		t.Fatalf("unexpected comments %v", comments)
	}
}

func TestEOLFollowsFile(t *testing.T) {
	tree, _, _ := sampleTree()
	if tree.EOL() != "\n" {
		t.Fatalf("expected LF")
	}
	crlf := NewTree(0, "crlf.cs", NewNode(KindCompilationUnit, ident("a", "", "\r\n"), eof("")))
	if crlf.EOL() != "\r\n" {
		t.Fatalf("expected CRLF, got %q", crlf.EOL())
	}
	none := NewTree(0, "none.cs", NewNode(KindCompilationUnit, ident("a", "", ""), eof("")))
	if none.EOL() != "\n" {
		t.Fatalf("expected LF default")
	}
}

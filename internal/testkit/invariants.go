package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// CheckTreeInvariants runs the structural invariants every freshly parsed tree must hold:
// 1) rendering the tree reproduces the file content byte for byte
// 2) every node span lies inside its full span and inside its parent's full span
// 3) trailing trivia never crosses a line: at most one line break, and only as the last item
// 4) the last token is a zero-width end_of_file token
func CheckTreeInvariants(tree *syntax.Tree, sf *source.File) error {
	if tree == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	if tree.File != sf.ID {
		return fmt.Errorf("tree points to different file id: got=%d want=%d", tree.File, sf.ID)
	}

	// 1) round trip
	if got := tree.Text(); got != string(sf.Content) {
		return fmt.Errorf("render mismatch: got %d bytes, want %d", len(got), len(sf.Content))
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if full := tree.FullSpan(tree.Root()); full.Start != 0 || full.End != lenContent {
		return fmt.Errorf("root full span %v does not cover content of %d bytes", full, lenContent)
	}

	// 2) spans nest
	for _, n := range tree.Descendants(tree.Root()) {
		sp, full := tree.Span(n), tree.FullSpan(n)
		if !full.Contains(sp) {
			return fmt.Errorf("%s: span %v is outside full span %v", n, sp, full)
		}
		parent := tree.Parent(n)
		if parent == nil {
			return fmt.Errorf("%s: detached descendant", n)
		}
		if pf := tree.FullSpan(parent); !pf.Contains(full) {
			return fmt.Errorf("%s: full span %v is outside parent %v", n, full, pf)
		}

		// 3) trailing trivia stays on one line
		if n.IsToken() {
			trailing := n.OwnTrailing()
			for i, tr := range trailing {
				if tr.Kind == syntax.TriviaEndOfLine && i != len(trailing)-1 {
					return fmt.Errorf("%s: trailing trivia continues after a line break", n)
				}
			}
		}
	}

	// 4) end of file
	last := tree.Root().LastToken()
	if last == nil || last.Kind() != syntax.KindEndOfFile || last.Text() != "" {
		return fmt.Errorf("missing end_of_file token, last token is %s", last)
	}
	return nil
}

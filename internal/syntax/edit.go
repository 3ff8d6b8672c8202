package syntax

import "fmt"

// Replace returns a new tree in which old is replaced by repl. Passing no
// replacement deletes old. Only the path from the root to old is rebuilt;
// every other subtree is shared with t, which stays valid.
func (t *Tree) Replace(old *Node, repl ...*Node) (*Tree, error) {
	if !t.Contains(old) {
		return nil, fmt.Errorf("replace %s: %w", old, ErrNodeNotFound)
	}
	if old == t.root {
		if len(repl) != 1 {
			return nil, ErrEmptyRoot
		}
		return NewTree(t.File, t.Path, repl[0]), nil
	}
	cur, with := old, repl
	for {
		info := t.index[cur]
		parent := info.parent
		children := splice(parent.children, info.slot, with)
		next := parent.withChildren(children)
		if parent == t.root {
			return NewTree(t.File, t.Path, next), nil
		}
		cur, with = parent, []*Node{next}
	}
}

// ReplaceAll applies several replacements on disjoint nodes of t in one
// rebuild. Targets must not be nested in each other.
func (t *Tree) ReplaceAll(edits map[*Node][]*Node) (*Tree, error) {
	for old := range edits {
		if !t.Contains(old) {
			return nil, fmt.Errorf("replace %s: %w", old, ErrNodeNotFound)
		}
	}
	if repl, ok := edits[t.root]; ok {
		if len(repl) != 1 {
			return nil, ErrEmptyRoot
		}
		return NewTree(t.File, t.Path, repl[0]), nil
	}
	return NewTree(t.File, t.Path, rebuild(t.root, edits)), nil
}

func rebuild(n *Node, edits map[*Node][]*Node) *Node {
	if n.IsToken() {
		return n
	}
	var out []*Node
	changed := false
	for i, c := range n.children {
		if repl, ok := edits[c]; ok {
			if !changed {
				out = append(make([]*Node, 0, len(n.children)), n.children[:i]...)
				changed = true
			}
			out = append(out, inherit(c, repl)...)
			continue
		}
		nc := rebuild(c, edits)
		if nc != c && !changed {
			out = append(make([]*Node, 0, len(n.children)), n.children[:i]...)
			changed = true
		}
		if changed {
			out = append(out, nc)
		}
	}
	if !changed {
		return n
	}
	return n.withChildren(out)
}

func splice(children []*Node, slot int, with []*Node) []*Node {
	out := make([]*Node, 0, len(children)-1+len(with))
	out = append(out, children[:slot]...)
	out = append(out, inherit(children[slot], with)...)
	out = append(out, children[slot+1:]...)
	return out
}

// inherit gives a single replacement the field label of the node it replaces.
func inherit(old *Node, with []*Node) []*Node {
	if len(with) != 1 || old.field == "" || with[0].field != "" {
		return with
	}
	return []*Node{Labeled(old.field, with[0])}
}

// ReplaceDescendant rebuilds the detached subtree root with target replaced
// by repl. It reports false when target is not below root (or root itself).
func ReplaceDescendant(root, target *Node, repl ...*Node) (*Node, bool) {
	if root == target {
		if len(repl) != 1 {
			return nil, false
		}
		return repl[0], true
	}
	out := rebuild(root, map[*Node][]*Node{target: repl})
	return out, out != root
}

// WithLeadingTrivia returns n with the leading trivia of its first token replaced.
func WithLeadingTrivia(n *Node, list []Trivia) *Node {
	first := n.FirstToken()
	if first == nil {
		return n
	}
	out, _ := ReplaceDescendant(n, first, first.WithLeading(list))
	return out
}

// WithTrailingTrivia returns n with the trailing trivia of its last token replaced.
func WithTrailingTrivia(n *Node, list []Trivia) *Node {
	last := n.LastToken()
	if last == nil {
		return n
	}
	out, _ := ReplaceDescendant(n, last, last.WithTrailing(list))
	return out
}

// StripOuterTrivia drops the outer leading and trailing trivia of n.
func StripOuterTrivia(n *Node) *Node {
	return WithTrailingTrivia(WithLeadingTrivia(n, nil), nil)
}

// CarryTrivia moves the outer trivia of old onto repl, which replaces it:
// the first replacement receives old's leading trivia, the last its trailing trivia.
func CarryTrivia(old *Node, repl ...*Node) []*Node {
	if len(repl) == 0 {
		return nil
	}
	out := append([]*Node(nil), repl...)
	out[0] = WithLeadingTrivia(out[0], cloneTrivia(old.Leading()))
	last := len(out) - 1
	out[last] = WithTrailingTrivia(out[last], cloneTrivia(old.Trailing()))
	return out
}

func cloneTrivia(list []Trivia) []Trivia {
	if len(list) == 0 {
		return nil
	}
	return append([]Trivia(nil), list...)
}

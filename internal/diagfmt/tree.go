package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// NodeOutput is one syntax node of a JSON tree dump.
type NodeOutput struct {
	Kind     string        `json:"kind"`
	Field    string        `json:"field,omitempty"`
	Span     source.Span   `json:"span"`
	Text     string        `json:"text,omitempty"`
	Missing  bool          `json:"missing,omitempty"`
	Leading  []string      `json:"leading,omitempty"`
	Trailing []string      `json:"trailing,omitempty"`
	Children []*NodeOutput `json:"children,omitempty"`
}

// FormatTreePretty выводит дерево с отступами: узел на строку, у токенов текст.
func FormatTreePretty(w io.Writer, tree *syntax.Tree, fs *source.FileSet, opts TreeOpts) error {
	var err error
	var walk func(n *syntax.Node, depth int)
	walk = func(n *syntax.Node, depth int) {
		if err != nil || (opts.MaxDepth > 0 && depth > opts.MaxDepth) {
			return
		}
		sp := tree.Span(n)
		start, end := fs.Resolve(sp)
		var b strings.Builder
		b.WriteString(strings.Repeat("  ", depth))
		if f := n.FieldName(); f != "" {
			b.WriteString(f + ": ")
		}
		b.WriteString(string(n.Kind()))
		fmt.Fprintf(&b, " %d:%d-%d:%d", start.Line, start.Col, end.Line, end.Col)
		if n.IsToken() {
			fmt.Fprintf(&b, " %q", n.Text())
			if n.IsMissing() {
				b.WriteString(" (missing)")
			}
			if opts.ShowTrivia {
				if l := triviaKinds(n.OwnLeading()); len(l) > 0 {
					fmt.Fprintf(&b, " (leading: %s)", strings.Join(l, ", "))
				}
				if t := triviaKinds(n.OwnTrailing()); len(t) > 0 {
					fmt.Fprintf(&b, " (trailing: %s)", strings.Join(t, ", "))
				}
			}
		}
		b.WriteByte('\n')
		if _, err = io.WriteString(w, b.String()); err != nil {
			return
		}
		for _, c := range n.Children() {
			walk(c, depth+1)
		}
	}
	walk(tree.Root(), 0)
	return err
}

// BuildTreeOutput converts tree into its JSON dump structure.
func BuildTreeOutput(tree *syntax.Tree, opts TreeOpts) *NodeOutput {
	var build func(n *syntax.Node, depth int) *NodeOutput
	build = func(n *syntax.Node, depth int) *NodeOutput {
		out := &NodeOutput{
			Kind:  string(n.Kind()),
			Field: n.FieldName(),
			Span:  tree.Span(n),
		}
		if n.IsToken() {
			out.Text = n.Text()
			out.Missing = n.IsMissing()
			if opts.ShowTrivia {
				out.Leading = triviaKinds(n.OwnLeading())
				out.Trailing = triviaKinds(n.OwnTrailing())
			}
			return out
		}
		if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
			return out
		}
		for _, c := range n.Children() {
			out.Children = append(out.Children, build(c, depth+1))
		}
		return out
	}
	return build(tree.Root(), 0)
}

// FormatTreeJSON выводит дерево в JSON формате
func FormatTreeJSON(w io.Writer, tree *syntax.Tree, opts TreeOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildTreeOutput(tree, opts))
}

func triviaKinds(list []syntax.Trivia) []string {
	if len(list) == 0 {
		return nil // убираем пустые массивы из JSON
	}
	out := make([]string, len(list))
	for i, tr := range list {
		out[i] = tr.Kind.String()
	}
	return out
}

package fix

import (
	"fmt"

	"sharpfix/internal/parser"
	"sharpfix/internal/syntax"
)

// Replace swaps the node at target for repl. The replaced node's leading and
// trailing trivia move onto the first and last replacement node.
func (c *Context) Replace(target *syntax.Node, repl ...*syntax.Node) Edit {
	return Edit{
		Target: c.Span(target),
		Kinds:  []syntax.Kind{target.Kind()},
		Rewrite: func(old *syntax.Node) ([]*syntax.Node, error) {
			return syntax.CarryTrivia(old, repl...), nil
		},
	}
}

// ReplaceExpression replaces target with the expression text parses to.
func (c *Context) ReplaceExpression(target *syntax.Node, text string) Edit {
	return c.Replace(target, parser.ParseExpression(text))
}

// ReplaceStatement replaces target with the statement text parses to.
func (c *Context) ReplaceStatement(target *syntax.Node, text string) Edit {
	return c.Replace(target, parser.ParseStatement(text))
}

// Delete removes target together with its own trivia, which drops a
// statement's whole line when it sits alone on it. Comments in the leading
// trivia are kept: they move to the token that follows.
func (c *Context) Delete(target *syntax.Node) Edit {
	return Edit{
		Target: c.Span(target),
		Kinds:  []syntax.Kind{target.Kind()},
		tree:   deleteKeepingComments,
	}
}

func deleteKeepingComments(t *syntax.Tree, n *syntax.Node) (*syntax.Tree, error) {
	var comments []syntax.Trivia
	for _, tr := range n.Leading() {
		if tr.IsComment() || tr.Kind == syntax.TriviaDirective {
			comments = append(comments, tr)
		}
	}
	if len(comments) == 0 {
		return t.Replace(n)
	}
	next := t.NextToken(n.LastToken())
	if next == nil {
		return t.Replace(n)
	}
	// комментарии идут перед отступом следующего токена, каждый на своей строке
	var moved []syntax.Trivia
	indent := leadingIndent(n.Leading())
	for _, tr := range comments {
		if indent != "" {
			moved = append(moved, syntax.Whitespace(indent))
		}
		moved = append(moved, tr)
		if tr.Kind != syntax.TriviaDirective || !endsLine(tr.Text) {
			moved = append(moved, syntax.EndOfLine(t.EOL()))
		}
	}
	moved = append(moved, next.Leading()...)
	withComments := syntax.WithLeadingTrivia(next, moved)
	return t.ReplaceAll(map[*syntax.Node][]*syntax.Node{
		n:    nil,
		next: {withComments},
	})
}

func leadingIndent(list []syntax.Trivia) string {
	indent := ""
	for _, tr := range list {
		switch tr.Kind {
		case syntax.TriviaWhitespace:
			indent = tr.Text
		case syntax.TriviaEndOfLine:
			indent = ""
		default:
			return indent
		}
	}
	return indent
}

func endsLine(s string) bool {
	return len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r')
}

// Rewrite builds an edit from an arbitrary node mapping. fn receives the node
// located in the tree being edited, which may be a copy of target.
func (c *Context) Rewrite(target *syntax.Node, fn func(old *syntax.Node) ([]*syntax.Node, error)) Edit {
	return Edit{Target: c.Span(target), Kinds: []syntax.Kind{target.Kind()}, Rewrite: fn}
}

// BlankLineBefore ensures a blank line separates target from what precedes it.
func (c *Context) BlankLineBefore(target *syntax.Node) Edit {
	return Edit{
		Target: c.Span(target),
		Kinds:  []syntax.Kind{target.Kind()},
		touch:  touchBefore,
		tree: func(t *syntax.Tree, n *syntax.Node) (*syntax.Tree, error) {
			return t.EnsureBlankLineBefore(n)
		},
	}
}

// BlankLineAfter ensures a blank line separates target from what follows it.
func (c *Context) BlankLineAfter(target *syntax.Node) Edit {
	return Edit{
		Target: c.Span(target),
		Kinds:  []syntax.Kind{target.Kind()},
		touch:  touchAfter,
		tree: func(t *syntax.Tree, n *syntax.Node) (*syntax.Tree, error) {
			return t.EnsureBlankLineAfter(n)
		},
	}
}

func (e Edit) String() string {
	return fmt.Sprintf("edit %s %v", e.Target, e.Kinds)
}

package syntax

import "strings"

// triv splits a literal into whitespace, line break and // comment trivia.
func triv(s string) []Trivia {
	var out []Trivia
	for s != "" {
		switch {
		case strings.HasPrefix(s, "\r\n"):
			out = append(out, EndOfLine("\r\n"))
			s = s[2:]
		case s[0] == '\n':
			out = append(out, EndOfLine("\n"))
			s = s[1:]
		case strings.HasPrefix(s, "//"):
			end := strings.IndexAny(s, "\r\n")
			if end < 0 {
				end = len(s)
			}
			out = append(out, Trivia{Kind: TriviaLineComment, Text: s[:end]})
			s = s[end:]
		default:
			end := strings.IndexAny(s, "\r\n/")
			if end < 0 {
				end = len(s)
			}
			out = append(out, Whitespace(s[:end]))
			s = s[end:]
		}
	}
	return out
}

func tok(text, leading, trailing string) *Node {
	return NewToken(Kind(text), text, 0, triv(leading), triv(trailing))
}

func ident(text, leading, trailing string) *Node {
	return NewToken(KindIdentifier, text, TokenNamed, triv(leading), triv(trailing))
}

func eof(leading string) *Node {
	return NewToken(KindEndOfFile, "", 0, triv(leading), nil)
}

// sampleTree builds
//
//	{
//	    a;
//	    // note
//	    if (b) c;
//	}
//
// and returns the tree with its first statement and the if statement.
func sampleTree() (tree *Tree, first, ifStmt *Node) {
	first = NewNode(KindExpressionStmt, ident("a", "    ", ""), tok(";", "", "\n"))
	inner := NewNode(KindExpressionStmt, ident("c", "", ""), tok(";", "", "\n"))
	ifStmt = NewNode(KindIf,
		tok("if", "    // note\n    ", " "),
		tok("(", "", ""),
		Labeled("condition", ident("b", "", "")),
		tok(")", "", " "),
		Labeled("consequence", inner),
	)
	block := NewNode(KindBlock, tok("{", "", "\n"), first, ifStmt, tok("}", "", "\n"))
	root := NewNode(KindCompilationUnit, block, eof(""))
	return NewTree(0, "sample.cs", root), first, ifStmt
}

const sampleText = "{\n    a;\n    // note\n    if (b) c;\n}\n"

package parser

import (
	"strings"

	"sharpfix/internal/syntax"
)

// splitGap turns source text no grammar node covers into trivia.
func splitGap(s string) []syntax.Trivia {
	var out []syntax.Trivia
	for s != "" {
		n := eolLen(s)
		if n > 0 {
			out = append(out, syntax.EndOfLine(s[:n]))
			s = s[n:]
			continue
		}
		if isSpace(s[0]) {
			n = 1
			for n < len(s) && isSpace(s[n]) {
				n++
			}
			out = append(out, syntax.Whitespace(s[:n]))
			s = s[n:]
			continue
		}
		n = 1
		for n < len(s) && !isSpace(s[n]) && eolLen(s[n:]) == 0 {
			n++
		}
		out = append(out, syntax.Trivia{Kind: syntax.TriviaSkipped, Text: s[:n]})
		s = s[n:]
	}
	return out
}

// extraTrivia converts a comment or preprocessor node. Line breaks the
// grammar folded into the node are split off so line attachment stays exact.
func extraTrivia(text string) []syntax.Trivia {
	body := strings.TrimRight(text, "\r\n")
	var out []syntax.Trivia
	if body != "" {
		out = append(out, syntax.Trivia{Kind: extraKind(body), Text: body})
	}
	if tail := text[len(body):]; tail != "" {
		out = append(out, splitGap(tail)...)
	}
	return out
}

func extraKind(text string) syntax.TriviaKind {
	switch {
	case strings.HasPrefix(text, "///"), strings.HasPrefix(text, "/**") && text != "/**/":
		return syntax.TriviaDocComment
	case strings.HasPrefix(text, "//"):
		return syntax.TriviaLineComment
	case strings.HasPrefix(text, "/*"):
		return syntax.TriviaBlockComment
	case strings.HasPrefix(strings.TrimLeft(text, " \t"), "#"):
		return syntax.TriviaDirective
	default:
		return syntax.TriviaSkipped
	}
}

func eolLen(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case s != "" && (s[0] == '\n' || s[0] == '\r'):
		return 1
	}
	return 0
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\f' || b == '\v'
}

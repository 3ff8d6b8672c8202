package syntax

// EnsureBlankLineBefore makes sure an empty line separates n from the
// preceding token. It inserts end-of-line trivia in front of the first leading
// trivia item of n and never removes comments. Applying it twice yields the
// same text as applying it once.
func (t *Tree) EnsureBlankLineBefore(n *Node) (*Tree, error) {
	if !t.Contains(n) {
		return nil, ErrNodeNotFound
	}
	first := n.FirstToken()
	if first == nil {
		return t, nil
	}
	prev := t.PrevToken(first)
	if prev == nil {
		// начало файла: пустая строка сверху не нужна
		return t, nil
	}
	repl := insertBlankLine(first, t.EOL(), endsWithEOL(prev.trailing), lineIndent(t, first))
	if repl == first {
		return t, nil
	}
	return t.Replace(first, repl)
}

// EnsureBlankLineAfter makes sure an empty line separates n from the
// following token. Nothing is inserted at the end of the file.
func (t *Tree) EnsureBlankLineAfter(n *Node) (*Tree, error) {
	if !t.Contains(n) {
		return nil, ErrNodeNotFound
	}
	last := n.LastToken()
	if last == nil {
		return t, nil
	}
	next := t.NextToken(last)
	if next == nil || next.kind == KindEndOfFile {
		return t, nil
	}
	repl := insertBlankLine(next, t.EOL(), endsWithEOL(last.trailing), lineIndent(t, next))
	if repl == next {
		return t, nil
	}
	return t.Replace(next, repl)
}

// HasBlankLineBefore reports whether an empty line already precedes n.
func (t *Tree) HasBlankLineBefore(n *Node) bool {
	first := n.FirstToken()
	if first == nil {
		return false
	}
	prev := t.PrevToken(first)
	if prev == nil {
		return true
	}
	return startsWithBlankLine(first.leading, blankNeed(endsWithEOL(prev.trailing)))
}

// HasBlankLineAfter reports whether an empty line already follows n.
func (t *Tree) HasBlankLineAfter(n *Node) bool {
	last := n.LastToken()
	if last == nil {
		return false
	}
	next := t.NextToken(last)
	if next == nil || next.kind == KindEndOfFile {
		return true
	}
	return startsWithBlankLine(next.leading, blankNeed(endsWithEOL(last.trailing)))
}

func blankNeed(lineEnded bool) int {
	if lineEnded {
		return 1
	}
	return 2
}

// insertBlankLine returns tok unchanged when its leading trivia already opens
// with a blank line, otherwise a copy with the missing line breaks prepended.
func insertBlankLine(tok *Node, eol string, lineEnded bool, indent string) *Node {
	need := blankNeed(lineEnded)
	if startsWithBlankLine(tok.leading, need) {
		return tok
	}
	lead := make([]Trivia, 0, len(tok.leading)+3)
	for range need {
		lead = append(lead, EndOfLine(eol))
	}
	rest := tok.leading
	if !lineEnded {
		// токен стоял на одной строке с предыдущим: переносим его с отступом строки
		for len(rest) > 0 && rest[0].Kind == TriviaWhitespace {
			rest = rest[1:]
		}
		if indent != "" {
			lead = append(lead, Whitespace(indent))
		}
	}
	lead = append(lead, rest...)
	return tok.WithLeading(lead)
}

// lineIndent returns the whitespace that opens the line on which tok starts.
func lineIndent(t *Tree, tok *Node) string {
	for cur := tok; cur != nil; cur = t.PrevToken(cur) {
		if cur != tok && endsWithEOL(cur.trailing) {
			return leadingWhitespace(t.NextToken(cur).leading)
		}
		if i := lastEOL(cur.leading); i >= 0 {
			return leadingWhitespace(cur.leading[i+1:])
		}
	}
	return ""
}

func lastEOL(list []Trivia) int {
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Kind == TriviaEndOfLine {
			return i
		}
	}
	return -1
}

func leadingWhitespace(list []Trivia) string {
	if len(list) > 0 && list[0].Kind == TriviaWhitespace {
		return list[0].Text
	}
	return ""
}

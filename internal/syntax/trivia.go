package syntax

type TriviaKind uint8

const (
	TriviaWhitespace TriviaKind = iota
	TriviaEndOfLine
	TriviaLineComment
	TriviaBlockComment
	TriviaDocComment
	TriviaDirective
	// TriviaSkipped holds gap text the parser left uncovered; it only exists to keep round-tripping exact.
	TriviaSkipped
)

func (k TriviaKind) String() string {
	switch k {
	case TriviaWhitespace:
		return "Whitespace"
	case TriviaEndOfLine:
		return "EndOfLine"
	case TriviaLineComment:
		return "LineComment"
	case TriviaBlockComment:
		return "BlockComment"
	case TriviaDocComment:
		return "DocComment"
	case TriviaDirective:
		return "Directive"
	case TriviaSkipped:
		return "Skipped"
	}
	return "Unknown"
}

// Trivia is formatting attached to a token: whitespace, line breaks, comments.
type Trivia struct {
	Kind TriviaKind
	Text string
}

// IsComment reports whether the trivia carries comment text.
func (t Trivia) IsComment() bool {
	switch t.Kind {
	case TriviaLineComment, TriviaBlockComment, TriviaDocComment:
		return true
	default:
		return false
	}
}

// Whitespace builds a whitespace trivia.
func Whitespace(text string) Trivia { return Trivia{Kind: TriviaWhitespace, Text: text} }

// EndOfLine builds a line break trivia.
func EndOfLine(text string) Trivia { return Trivia{Kind: TriviaEndOfLine, Text: text} }

func triviaWidth(list []Trivia) int {
	n := 0
	for _, tr := range list {
		n += len(tr.Text)
	}
	return n
}

func endsWithEOL(list []Trivia) bool {
	return len(list) > 0 && list[len(list)-1].Kind == TriviaEndOfLine
}

// startsWithBlankLine reports whether the trivia opens with enough line breaks
// (ignoring plain whitespace) to leave an empty line. need is 1 when the
// previous token already ended its line and 2 otherwise.
func startsWithBlankLine(list []Trivia, need int) bool {
	count := 0
	for _, tr := range list {
		switch tr.Kind {
		case TriviaWhitespace:
			continue
		case TriviaEndOfLine:
			count++
			if count >= need {
				return true
			}
		default:
			return false
		}
	}
	return false
}

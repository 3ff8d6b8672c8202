package rules

import (
	"fortio.org/safecast"

	"sharpfix/internal/diag"
	"sharpfix/internal/rule"
	"sharpfix/internal/source"
	"sharpfix/internal/syntax"
)

// DOC2001: colloquial contractions in comments and documentation.
func contractionRule(data *Data) *rule.Rule {
	phrases := append([]Contraction(nil), data.Contractions...)
	return &rule.Rule{
		Code:     ContractionInComment,
		Name:     "contraction-in-comment",
		Title:    "Do not use contractions in comments",
		Category: CategoryDocumentation,
		Severity: diag.SevInfo,
		Kinds:    []syntax.Kind{syntax.KindCompilationUnit},
		Check: func(ctx *rule.Context) error {
			var err error
			ctx.Tree.EachTrivia(func(_ *syntax.Node, tr syntax.Trivia, sp source.Span) bool {
				if !tr.IsComment() {
					return true
				}
				var taken [][]int
				for _, c := range phrases {
					for _, loc := range c.re.FindAllStringIndex(tr.Text, -1) {
						if overlapsTaken(taken, loc) {
							continue
						}
						taken = append(taken, loc)
						start, e1 := safecast.Conv[uint32](loc[0])
						size, e2 := safecast.Conv[uint32](loc[1] - loc[0])
						if e1 != nil || e2 != nil {
							err = e1
							if err == nil {
								err = e2
							}
							return false
						}
						at := source.NewSpan(sp.File, sp.Start+start, size)
						ctx.Report(at, "Use %q instead of %q", c.Use, tr.Text[loc[0]:loc[1]]).
							WithProp("use", c.Use).
							Emit()
					}
				}
				return true
			})
			return err
		},
	}
}

func overlapsTaken(taken [][]int, loc []int) bool {
	for _, t := range taken {
		if loc[0] < t[1] && t[0] < loc[1] {
			return true
		}
	}
	return false
}

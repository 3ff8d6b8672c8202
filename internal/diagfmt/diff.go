package diagfmt

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the change of path from before to after. An empty
// string means the texts are equal.
func UnifiedDiff(path string, before, after []byte, context int) (string, error) {
	if string(before) == string(after) {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	})
}

// WriteDiff prints a unified diff, colouring added and removed lines.
func WriteDiff(w io.Writer, diff string, useColor bool) error {
	add := color.New(color.FgGreen)
	del := color.New(color.FgRed)
	hunk := color.New(color.FgCyan)
	for _, c := range []*color.Color{add, del, hunk} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	sc := bufio.NewScanner(strings.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		line := sc.Text()
		var err error
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			_, err = fmt.Fprintln(w, line)
		case strings.HasPrefix(line, "+"):
			_, err = fmt.Fprintln(w, add.Sprint(line))
		case strings.HasPrefix(line, "-"):
			_, err = fmt.Fprintln(w, del.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			_, err = fmt.Fprintln(w, hunk.Sprint(line))
		default:
			_, err = fmt.Fprintln(w, line)
		}
		if err != nil {
			return err
		}
	}
	return sc.Err()
}

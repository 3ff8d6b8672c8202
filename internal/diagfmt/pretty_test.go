package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"sharpfix/internal/diag"
	"sharpfix/internal/source"
)

const sample = "class C\n{\n    bool M(string a) => a == \"x\";\n}\n"

// sampleBag: одна находка на `a == "x"` (3:25) и одна внутренняя.
func sampleBag(fs *source.FileSet, path string) *diag.Bag {
	id := fs.AddVirtual(path, []byte(sample))
	bag := diag.NewBag(10)
	d := diag.New(diag.SevWarning, "MNT3012", source.Span{File: id, Start: 34, End: 42}, "Use string.Equals")
	bag.Add(d.WithSecondary(source.Span{File: id, Start: 34, End: 35}))
	bag.Add(diag.Diagnostic{
		Code:     "TST9001",
		Severity: diag.SevInfo,
		Message:  "rule failed",
		Primary:  source.Span{File: id, Start: 0, End: 5},
		Props:    map[string]string{"error": "boom"},
		Internal: true,
	})
	bag.Sort()
	return bag
}

func TestPretty(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	want := "Test.cs:3:25: WARNING MNT3012: Use string.Equals\n" +
		"3 |     bool M(string a) => a == \"x\";\n" +
		"  | " + strings.Repeat(" ", 24) + "^" + strings.Repeat("~", 7) + "\n"
	if got := buf.String(); got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestPrettyOptions(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 2, PathMode: PathModeBasename, ShowSecondary: true, ShowInternal: true})
	out := buf.String()
	for _, want := range []string{
		"1 | class C\n",
		"2 | {\n",
		"note: related location Test.cs:3:25",
		"INFO TST9001: rule failed (boom)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
}

// TestPathModes проверяет различные режимы форматирования путей
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	bag := sampleBag(fs, "/home/user/project/src/Test.cs")

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"absolute", PathModeAbsolute, "/home/user/project/src/Test.cs:3:25"},
		{"relative", PathModeRelative, "src/Test.cs:3:25"},
		{"basename", PathModeBasename, "Test.cs:3:25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			if !strings.Contains(buf.String(), tt.contains) {
				t.Fatalf("expected %q in:\n%s", tt.contains, buf.String())
			}
		})
	}
}

func TestShort(t *testing.T) {
	fs := source.NewFileSet()
	bag := sampleBag(fs, "Test.cs")
	var buf bytes.Buffer
	Short(&buf, bag, fs, false)
	if !strings.Contains(buf.String(), "warning MNT3012 Test.cs:3:25 Use string.Equals") {
		t.Fatalf("got %q", buf.String())
	}
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sharpfix/internal/diag"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[rules]
disable = ["SPC6001"]

[rules.severity]
MNT3011 = "error"

[files]
exclude = ["**/Generated/**"]

[run]
jobs = 2
cache = true
ui = "off"
`), "/src")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	sel, err := cfg.Selection()
	if err != nil {
		t.Fatalf("Selection: %v", err)
	}
	if len(sel.Only) != 0 || len(sel.Disable) != 1 || sel.Disable[0] != "SPC6001" {
		t.Fatalf("selection = %+v", sel)
	}
	if sel.Severity["MNT3011"] != diag.SevError {
		t.Fatalf("severity override lost: %+v", sel.Severity)
	}
	if cfg.Run.Jobs != 2 || !cfg.Run.Cache || cfg.Run.UI != "off" {
		t.Fatalf("run = %+v", cfg.Run)
	}
	if len(cfg.Files.Include) != 1 || cfg.Files.Include[0] != "**/*.cs" {
		t.Fatalf("default include lost: %v", cfg.Files.Include)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", "[rules"},
		{"unknown section", "[output]\nformat = \"json\"\n"},
		{"unknown key", "[rules]\nenabled = []\n"},
		{"bad code", "[rules]\ndisable = [\"nope\"]\n"},
		{"bad severity", "[rules.severity]\nMNT3011 = \"fatal\"\n"},
		{"bad pattern", "[files]\ninclude = [\"[\"]\n"},
		{"negative jobs", "[run]\njobs = -1\n"},
		{"bad ui", "[run]\nui = \"fancy\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src), "/src"); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
	if _, err := Parse([]byte("[run]\nthreads = 4\n"), "/src"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("got %v, want ErrUnknownKey", err)
	}
}

func TestMatch(t *testing.T) {
	cfg := Default("/src")
	tests := []struct {
		path string
		want bool
	}{
		{"/src/App/Program.cs", true},
		{"App/Program.cs", true},
		{"/src/App/bin/Debug/Gen.cs", false},
		{"/src/obj/X.cs", false},
		{"/src/App/readme.md", false},
		{"/elsewhere/A.cs", false},
	}
	for _, tt := range tests {
		if got := cfg.Match(tt.path); got != tt.want {
			t.Fatalf("Match(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
	if !cfg.Excluded("/src/App/bin") || cfg.Excluded("/src/App") || cfg.Excluded("/src") {
		t.Fatalf("directory pruning is wrong")
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Discover(sub)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != "" || cfg.Root != sub {
		t.Fatalf("default config expected, got path=%q root=%q", cfg.Path, cfg.Root)
	}

	file := filepath.Join(root, FileName)
	if err := os.WriteFile(file, []byte("[run]\njobs = 3\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err = Discover(sub)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Path != file || cfg.Root != root || cfg.Run.Jobs != 3 {
		t.Fatalf("got path=%q root=%q jobs=%d", cfg.Path, cfg.Root, cfg.Run.Jobs)
	}
}

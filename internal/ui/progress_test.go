package ui

import (
	"strings"
	"testing"

	"sharpfix/internal/driver"
)

func TestApplyEvent(t *testing.T) {
	m := NewProgressModel("diag", []string{"a.cs", "b.cs"}, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.cs", Stage: driver.StageParse, Status: driver.StatusWorking})
	if m.items[0].status != "parsing" || m.percent() != 0.1 {
		t.Fatalf("after parse: %+v %v", m.items[0], m.percent())
	}
	m.applyEvent(driver.Event{File: "a.cs", Stage: driver.StageAnalyze, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "b.cs", Stage: driver.StageAnalyze, Status: driver.StatusCached})
	if m.items[1].status != "cached" || m.percent() != 1 {
		t.Fatalf("after done: %+v %v", m.items, m.percent())
	}
	m.applyEvent(driver.Event{File: "zzz.cs", Stage: driver.StageParse, Status: driver.StatusError})

	m.done = true
	view := m.View()
	for _, want := range []string{"done: diag", "a.cs", "cached", "b.cs"} {
		if !strings.Contains(view, want) {
			t.Fatalf("view misses %q:\n%s", want, view)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short.cs", 20, "short.cs"},
		{"src/very/long/path/File.cs", 10, "src/ver..."},
		{"abcdef", 3, "abc"},
		{"日本語のパス.cs", 7, "日本..."},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

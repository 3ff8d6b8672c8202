package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestDescribe(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	Version, GitCommit, BuildDate = "1.2.3-rc.1", "abc123", "2024-01-15"
	if got, want := Describe(false), "sharpfix 1.2.3-rc.1 (abc123) built 2024-01-15"; got != want {
		t.Fatalf("Describe = %q, want %q", got, want)
	}
	GitCommit, BuildDate = "", ""
	if got := Describe(false); got != "sharpfix 1.2.3-rc.1" {
		t.Fatalf("Describe = %q", got)
	}
}

func TestColored(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = origVersion, origNoColor }()

	color.NoColor = true
	tests := []string{"0.1.0-dev", "1.2.3", "2.0.0+build.7", "weird"}
	for _, v := range tests {
		Version = v
		if got := Colored(); got != v {
			t.Fatalf("Colored() without colour = %q, want %q", got, v)
		}
	}

	color.NoColor = false
	Version = "1.2.3"
	if got := Colored(); got == Version {
		t.Fatalf("Colored() did not colour %q", got)
	}
}

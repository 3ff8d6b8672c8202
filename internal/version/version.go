// Package version holds build information of the sharpfix CLI.
// These variables can be overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI. It also keys the disk cache.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with major, minor and patch in their own colours.
// Pre-release and build suffixes stay uncoloured.
func Colored() string {
	core, suffix := Version, ""
	if i := strings.IndexAny(core, "-+"); i >= 0 {
		core, suffix = core[:i], core[i:]
	}
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	return versionMajorColor.Sprint(parts[0]) + "." +
		versionMinorColor.Sprint(parts[1]) + "." +
		versionPatchColor.Sprint(parts[2]) + suffix
}

// Describe is the one-line text of `sharpfix version`.
func Describe(useColor bool) string {
	v := Version
	if useColor {
		v = Colored()
	}
	out := "sharpfix " + v
	if GitCommit != "" {
		out += fmt.Sprintf(" (%s)", GitCommit)
	}
	if BuildDate != "" {
		out += " built " + BuildDate
	}
	return out
}

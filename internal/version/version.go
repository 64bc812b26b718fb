package version

import "github.com/fatih/color"

// Version information for the flowfmt CLI.
// These variables can be overridden at build time via -ldflags, e.g.
//
//	go build -ldflags "-X flowfmt/internal/version.Version=0.2.0"
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-beta"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionRestColor  = color.New(color.FgGreen)
)

// Colored renders v with the major component highlighted. Colors follow
// color.NoColor, so the result is plain when output is not a terminal.
func Colored(v string) string {
	for i := 0; i < len(v); i++ {
		if v[i] == '.' {
			return versionMajorColor.Sprint(v[:i]) + versionRestColor.Sprint(v[i:])
		}
	}
	return versionMajorColor.Sprint(v)
}

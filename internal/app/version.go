package app

import "fmt"

// Build metadata, overridden at link time through cmd/mcal.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetBuildInfo records the linker-injected build metadata. Empty values
// keep the defaults so a plain `go build` still reports something.
func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

// BuildVersionString renders "version (commit) date" for the version
// command and the JSON envelope.
func BuildVersionString() string {
	return fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
}

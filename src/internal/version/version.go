// FILE: logship/src/internal/version/version.go
package version

import "fmt"

var (
	// Version is set at compile time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// PluginType and PluginVersion identify this shipper in every payload.
const (
	PluginType    = "s3-lambda"
	PluginVersion = "1.2.0"
)

// Returns a formatted version string
func String() string {
	if Version == "dev" {
		return fmt.Sprintf("dev (plugin %s, commit: %s, built: %s)", PluginVersion, GitCommit, BuildTime)
	}
	return fmt.Sprintf("%s (plugin %s, commit: %s, built: %s)", Version, PluginVersion, GitCommit, BuildTime)
}

// Returns just the version tag
func Short() string {
	return Version
}

// UserAgent is sent with every ingest request.
func UserAgent() string {
	return fmt.Sprintf("logship/%s (%s %s)", Short(), PluginType, PluginVersion)
}

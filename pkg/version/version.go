// Package version contains version information for addrsearch.
package version

var (
	// Version is the current version of addrsearch.
	Version = "dev"
	// BuildTime is the time when the binary was built.
	BuildTime = "unknown"
	// GitCommit is the git commit hash of the build.
	GitCommit = "unknown"
)

// UserAgent returns the User-Agent sent by the HTTP transport and the proxy.
func UserAgent() string {
	return "addrsearch/" + Version
}

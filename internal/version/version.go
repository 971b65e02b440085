// Package version reports build information injected at link time.
package version

import "fmt"

// These variables are set at build time via ldflags, e.g.
// -X github.com/example/orderbot/internal/version.Commit=$(git rev-parse HEAD)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// String returns the version line shown by `orderbot version`.
func String() string {
	return fmt.Sprintf("orderbot %s (commit: %s, built: %s)", Version, shortCommit(), BuildTime)
}

func shortCommit() string {
	if len(Commit) > 7 {
		return Commit[:7]
	}
	return Commit
}

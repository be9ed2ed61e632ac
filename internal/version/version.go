package version

import (
	"fmt"
	"runtime"
)

// These variables will be set at build time via -ldflags
var (
	// Version represents the application version (from git tags)
	Version = "dev"
	// BuildTime is the time when the binary was built
	BuildTime = "unknown"
	// CommitID is the git commit hash
	CommitID = "unknown"
)

// String returns the full version line
func String() string {
	return fmt.Sprintf("evidence %s (commit %s, built %s, %s/%s)",
		Version, CommitID, BuildTime, runtime.GOOS, runtime.GOARCH)
}

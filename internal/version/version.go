// Package version exposes build metadata stamped in with -ldflags "-X".
package version

import "fmt"

//nolint:gochecknoglobals,revive // overwritten by the linker at build time
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String formats the build metadata as "v1.2.3 (abc1234, 2026-01-02)".
func String() string {
	return fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
}

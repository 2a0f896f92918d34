// Package build holds build information set with -ldflags at release time, e.g.
//
//	go build -ldflags "-X github.com/armadaproject/expctl/internal/expctl/build.ReleaseVersion=v0.3.0"
package build

import "runtime"

var (
	ReleaseVersion = "UNKNOWN"
	GitCommit      = "UNKNOWN"
	GoVersion      = runtime.Version()
	BuildTime      = "UNKNOWN"
)

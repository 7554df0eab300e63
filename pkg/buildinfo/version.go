// Package buildinfo holds the version stamped into fusiongraph at build time.
//
//	go build -ldflags "-X github.com/matzehuels/fusiongraph/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/fusiongraph/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)" \
//	    ./cmd/fusiongraph
package buildinfo

import (
	"fmt"
	"runtime"
)

// Name is the program name reported to the API and in version output.
const Name = "fusiongraph"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies fusiongraph in API requests, for example
// "fusiongraph/v0.3.0 (linux/amd64)".
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s/%s)", Name, Version, runtime.GOOS, runtime.GOARCH)
}

// Template returns the cobra version template. endpoint is the GraphQL
// endpoint the build talks to by default.
func Template(endpoint string) string {
	return fmt.Sprintf("%s %s (commit %s, built %s)\napi: %s\n", Name, Version, Commit, Date, endpoint)
}

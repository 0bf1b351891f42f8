// Package buildinfo contains build-time metadata injected by the linker,
// separate from user configuration.
package buildinfo

import "fmt"

// Version and BuildDate are overridden at build time:
//
//	go build -ldflags "-X github.com/jlammi/troutpop-go/internal/buildinfo.Version=v1.2.0"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// String returns a single-line description for --version output and report
// headers.
func String() string {
	return fmt.Sprintf("troutpop %s (built %s)", Version, BuildDate)
}

// Package buildinfo carries version metadata stamped in at build time:
//
//	go build -ldflags "-X github.com/MJE43/pf-verify-go/internal/buildinfo.Version=v1.2.0"
package buildinfo

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// Info is the version triple reported by the API and the CLI.
type Info struct {
	Version   string `json:"engine_version"`
	GitCommit string `json:"git_commit"`
	BuildTime string `json:"build_time"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
	}
}

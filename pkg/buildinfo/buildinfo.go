// Package buildinfo reports the version of the matchmaker binary.
package buildinfo

import (
	"encoding/json"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"gopkg.in/yaml.v3"
)

// These vars are set at build time via ldflags:
// -X github.com/otherjamesbrown/matchmaker/pkg/buildinfo.Version=v0.3.0
// -X github.com/otherjamesbrown/matchmaker/pkg/buildinfo.Commit=b806fe7
// -X github.com/otherjamesbrown/matchmaker/pkg/buildinfo.BuildTime=2026-02-07T10:30:00Z
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info holds build information for a binary.
type Info struct {
	Name      string `json:"name" yaml:"name"`
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

// Get returns build info for the named binary. When no commit was stamped
// via ldflags, the VCS revision recorded by the Go toolchain is used.
func Get(name string) Info {
	info := Info{
		Name:      name,
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
	if info.Commit == "unknown" {
		if rev := vcsRevision(); rev != "" {
			info.Commit = rev
		}
	}
	return info
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			return s.Value[:7]
		}
	}
	return ""
}

// String returns a human-readable one-liner like "v0.3.0 (b806fe7, 2026-02-07T10:30:00Z)"
func String() string {
	return Version + " (" + Commit + ", " + BuildTime + ")"
}

// Write encodes info as "json" or "yaml"; any other format gets the one-liner.
func (i Info) Write(w io.Writer, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(i)
	case "yaml":
		return yaml.NewEncoder(w).Encode(i)
	default:
		_, err := fmt.Fprintf(w, "%s %s (%s, %s, %s)\n", i.Name, i.Version, i.Commit, i.BuildTime, i.GoVersion)
		return err
	}
}

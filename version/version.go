// Package version exposes the build's version string and VCS metadata
// for the minutes binaries.
//
// Version is set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/sitzungslab/minutes/version.Version=1.0.0"
package version

import "runtime/debug"

// Version is the release version, "dev" for untagged builds.
var Version = "dev"

// Info describes the running build.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Dirty   bool   `json:"dirty,omitempty"`
}

// Get returns the build's version plus, when the binary was built from
// a VCS checkout, its short commit hash and dirty flag.
func Get() Info {
	info := Info{Version: Version}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = s.Value
			if len(info.Commit) > 7 {
				info.Commit = info.Commit[:7]
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// String renders "version[-commit][-dirty]".
func (i Info) String() string {
	s := i.Version
	if i.Commit != "" {
		s += "-" + i.Commit
	}
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

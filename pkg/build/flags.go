// SPDX-License-Identifier: MIT
//
// Package build holds the metadata embedded in the binary at compile time:
// name, build time, commit and version. Values come from linker flags, e.g.
//
//	go build -ldflags "-X ringviz/pkg/build.buildVersion=v1.2.0 ..."
//
// and any flag left unset falls back to the Go toolchain's embedded VCS
// information.
package build

import (
	"errors"
	"fmt"
	"runtime/debug"
)

const (
	defaultName = "ringviz"
	description = "Audio-reactive ring visualiser"
	unknown     = "unknown"
)

type ldFlags struct {
	Name        string
	Description string
	Time        string
	Commit      string
	Version     string
}

// String formats the flags for the version command.
func (f ldFlags) String() string {
	return fmt.Sprintf("%s %s (commit %s, built %s)", f.Name, f.Version, f.Commit, f.Time)
}

// Populated by -ldflags.
var (
	buildName    string
	buildTime    string
	buildCommit  string
	buildVersion string
	buildFlags   = &ldFlags{
		Name:        defaultName,
		Description: description,
		Time:        unknown,
		Commit:      unknown,
		Version:     unknown,
	}
)

var readBuildInfo = debug.ReadBuildInfo

// Initialize copies the ldflags values into the build flags, filling any
// that are missing from the embedded build info. It fails only when a value
// is missing and no build info is embedded.
func Initialize() error {
	flags := ldFlags{
		Name:        buildName,
		Description: description,
		Time:        buildTime,
		Commit:      buildCommit,
		Version:     buildVersion,
	}
	if flags.Name == "" {
		flags.Name = defaultName
	}

	if flags.Time == "" || flags.Commit == "" || flags.Version == "" {
		info, ok := readBuildInfo()
		if !ok {
			return errors.New("build: no ldflags and no embedded build info")
		}
		fillFromBuildInfo(&flags, info)
	}

	*buildFlags = flags
	return nil
}

func fillFromBuildInfo(f *ldFlags, info *debug.BuildInfo) {
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if f.Version == "" {
		f.Version = info.Main.Version
	}
	if f.Commit == "" {
		f.Commit = settings["vcs.revision"]
		if len(f.Commit) > 12 {
			f.Commit = f.Commit[:12]
		}
		if settings["vcs.modified"] == "true" {
			f.Commit += "-dirty"
		}
	}
	if f.Time == "" {
		f.Time = settings["vcs.time"]
	}

	for _, v := range []*string{&f.Version, &f.Commit, &f.Time} {
		if *v == "" {
			*v = unknown
		}
	}
}

// GetBuildFlags returns the current build information. Initialize should
// be called first; before that every field but the name is "unknown".
func GetBuildFlags() *ldFlags {
	return buildFlags
}

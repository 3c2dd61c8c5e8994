// Package version provides build information for the hwtests harness
package version

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"time"
)

var (
	// These will be set at build time via -ldflags
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo contains detailed build information
type BuildInfo struct {
	Version    string `json:"version"`
	Module     string `json:"module"`
	GitCommit  string `json:"git_commit"`
	Modified   bool   `json:"modified"`
	BuildTime  string `json:"build_time"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	Arch       string `json:"arch"`
	CGOEnabled bool   `json:"cgo_enabled"`
	Headless   bool   `json:"headless"` // built with the headless tag, no window viewer
}

// GetBuildInfo returns detailed build information
func GetBuildInfo() BuildInfo {
	buildInfo := BuildInfo{
		Version:   Version,
		Module:    "hwtests",
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS,
		Arch:      runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return buildInfo
	}
	if info.Main.Path != "" {
		buildInfo.Module = info.Main.Path
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if GitCommit == "unknown" {
				buildInfo.GitCommit = setting.Value
			}
		case "vcs.time":
			if BuildTime == "unknown" {
				buildInfo.BuildTime = setting.Value
			}
		case "vcs.modified":
			buildInfo.Modified = setting.Value == "true"
		case "CGO_ENABLED":
			buildInfo.CGOEnabled = setting.Value == "1"
		case "-tags":
			buildInfo.Headless = hasTag(setting.Value, "headless")
		}
	}
	return buildInfo
}

func hasTag(tags, want string) bool {
	start := 0
	for i := 0; i <= len(tags); i++ {
		if i == len(tags) || tags[i] == ',' {
			if tags[start:i] == want {
				return true
			}
			start = i + 1
		}
	}
	return false
}

func shortCommit(c string) string {
	if len(c) >= 7 {
		return c[:7]
	}
	return c
}

// GetVersion returns a simple version string
func GetVersion() string {
	if Version == "dev" {
		buildInfo := GetBuildInfo()
		if buildInfo.GitCommit != "unknown" && len(buildInfo.GitCommit) >= 7 {
			return fmt.Sprintf("dev-%s", shortCommit(buildInfo.GitCommit))
		}
	}
	return Version
}

// GetDetailedVersion returns a detailed version string
func GetDetailedVersion() string {
	buildInfo := GetBuildInfo()

	versionStr := fmt.Sprintf("hwtests version %s", buildInfo.Version)

	if buildInfo.GitCommit != "unknown" {
		versionStr += fmt.Sprintf(" (commit %s", shortCommit(buildInfo.GitCommit))
		if buildInfo.Modified {
			versionStr += ", modified"
		}
		versionStr += ")"
	}

	if buildInfo.BuildTime != "unknown" {
		if parsedTime, err := time.Parse(time.RFC3339, buildInfo.BuildTime); err == nil {
			versionStr += fmt.Sprintf(" built on %s", parsedTime.Format("2006-01-02 15:04:05"))
		} else {
			versionStr += fmt.Sprintf(" built on %s", buildInfo.BuildTime)
		}
	}

	versionStr += fmt.Sprintf(" with %s for %s/%s", buildInfo.GoVersion, buildInfo.Platform, buildInfo.Arch)
	return versionStr
}

// WriteBuildInfo writes formatted build information to w
func WriteBuildInfo(w io.Writer) {
	buildInfo := GetBuildInfo()

	fmt.Fprintf(w, "hwtests - GPU pixel pipeline conformance harness\n")
	fmt.Fprintf(w, "Version:     %s\n", buildInfo.Version)
	fmt.Fprintf(w, "Module:      %s\n", buildInfo.Module)
	fmt.Fprintf(w, "Git Commit:  %s\n", buildInfo.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", buildInfo.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", buildInfo.GoVersion)
	fmt.Fprintf(w, "Platform:    %s/%s\n", buildInfo.Platform, buildInfo.Arch)
	fmt.Fprintf(w, "CGO Enabled: %t\n", buildInfo.CGOEnabled)
	fmt.Fprintf(w, "Headless:    %t\n", buildInfo.Headless)
}

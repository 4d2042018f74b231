/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

// Package version reports the build version of the site API binaries.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusLabel is the constant label with the build version added to the HTTP metrics.
const PrometheusLabel = "version"

const unknown = "unknown"

// Version and Commit may be set at link time:
//
//	go build -ldflags "-X github.com/vahairstudio/site-api/internal/version.Version=v1.2.3"
var (
	Version string
	Commit  string
)

// Info describes the build.
type Info struct {
	Version   string
	Commit    string
	GoVersion string
}

func (i Info) String() string {
	return fmt.Sprintf("%s (commit %s, %s)", i.Version, i.Commit, i.GoVersion)
}

var (
	info     Info
	infoOnce sync.Once
)

// Get returns the build info. Values set at link time take precedence over the embedded module and VCS data.
func Get() Info {
	infoOnce.Do(func() {
		buildInfo, _ := debug.ReadBuildInfo()
		info = extractInfo(buildInfo, Version, Commit)
	})
	return info
}

func extractInfo(buildInfo *debug.BuildInfo, version, commit string) Info {
	res := Info{Version: version, Commit: commit, GoVersion: unknown}
	if buildInfo != nil {
		res.GoVersion = buildInfo.GoVersion
		if res.Version == "" && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
			res.Version = buildInfo.Main.Version
		}
		if res.Commit == "" {
			for _, s := range buildInfo.Settings {
				if s.Key == "vcs.revision" {
					res.Commit = s.Value
				}
			}
		}
	}
	if res.Version == "" {
		res.Version = "v0.0.0-dev"
	}
	if res.Commit == "" {
		res.Commit = unknown
	}
	return res
}

// AddPrometheusLabel returns a copy of labels with the build version label added.
func AddPrometheusLabel(labels prometheus.Labels) prometheus.Labels {
	labelsCopy := make(prometheus.Labels, len(labels)+1)
	for k, v := range labels {
		labelsCopy[k] = v
	}
	labelsCopy[PrometheusLabel] = Get().Version
	return labelsCopy
}

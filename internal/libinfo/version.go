/*
Copyright © 2024 Acronis International GmbH.

Released under MIT license.
*/

package libinfo

import (
	"debug/buildinfo"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const libShortName = "go-cachekit"

const moduleName = "github.com/acronis/" + libShortName

// PrometheusLibVersionLabel is the name of the Prometheus label carrying the library version.
const PrometheusLibVersionLabel = "go_cachekit_version"

// AddPrometheusLibVersionLabel returns a copy of the labels with the library version label added.
func AddPrometheusLibVersionLabel(labels prometheus.Labels) prometheus.Labels {
	withVersion := make(prometheus.Labels, len(labels)+1)
	for k, v := range labels {
		withVersion[k] = v
	}
	withVersion[PrometheusLibVersionLabel] = GetLibVersion()
	return withVersion
}

var (
	libVersion     string
	libVersionOnce sync.Once
)

// GetLibVersion returns the version of this library as recorded in the build info
// of the binary depending on it, or "v0.0.0" when the build info is unavailable.
func GetLibVersion() string {
	libVersionOnce.Do(func() {
		if buildInfo, ok := debug.ReadBuildInfo(); ok {
			libVersion = extractLibVersion(buildInfo, moduleName)
		}
		if libVersion == "" {
			libVersion = "v0.0.0"
		}
	})
	return libVersion
}

func extractLibVersion(buildInfo *buildinfo.BuildInfo, modName string) string {
	if buildInfo == nil {
		return ""
	}
	for _, dep := range buildInfo.Deps {
		if isModulePath(dep.Path, modName) {
			return dep.Version
		}
	}
	return ""
}

// isModulePath reports whether path is modName itself or one of its
// major-version forms "modName/vN", as used by Go modules starting from v2.
func isModulePath(path, modName string) bool {
	if path == modName {
		return true
	}
	rest, ok := strings.CutPrefix(path, modName+"/v")
	if !ok || rest == "" {
		return false
	}
	for _, r := range rest {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

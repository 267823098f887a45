// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports the build of labscan. Release builds stamp the
// variables with -ldflags, for example
//
//	-X labscan/internal/version.Version=1.2.0 -X labscan/internal/version.GitCommit=abc123
package version

import (
	"fmt"
	"runtime"
)

// Stamped at release; the defaults mark a local build.
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Toolchain and target of the running binary.
var (
	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info is the one-line banner printed by `labscan version`.
func Info() string {
	return fmt.Sprintf("labscan %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, GitCommit, BuildDate, GoVersion, Platform)
}

// Short is the bare version, used by --version.
func Short() string {
	return Version
}

// Full is the build_info block of the /health response.
func Full() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
	}
}

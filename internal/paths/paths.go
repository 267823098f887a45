// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package paths

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ConfigDirEnv overrides the configuration directory on every platform.
const ConfigDirEnv = "LABSCAN_CONFIG_DIR"

// GetConfigDir returns the labscan configuration directory
func GetConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	// XDG_CONFIG_HOME or ~/.config on Unix, %AppData% on Windows
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "labscan")
	}

	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".labscan")
	}
	return ".labscan"
}

// GetConfigFile returns the path to the main config file
func GetConfigFile() string {
	return filepath.Join(GetConfigDir(), "config.yaml")
}

// GetKnowledgeBaseFile returns the default location of an operator supplied
// reference table
func GetKnowledgeBaseFile() string {
	return filepath.Join(GetConfigDir(), "reference.yaml")
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

// NormalizePath expands ~ and cleans the path for the current platform
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Clean(ExpandHome(path))
}

// ValidatePath validates a path for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return nil // Empty path is valid
	}

	if strings.ContainsRune(path, 0) {
		return &PathValidationError{Path: path, Reason: "contains null byte"}
	}

	if runtime.GOOS == "windows" {
		for i, char := range path {
			if strings.ContainsRune(`<>"|?*`, char) || (char == ':' && i != 1) {
				return &PathValidationError{
					Path:   path,
					Reason: "contains invalid character: " + string(char),
				}
			}
		}
	}

	return nil
}

// PathValidationError represents a path validation error
type PathValidationError struct {
	Path   string
	Reason string
}

func (e *PathValidationError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Reason
}

// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// DefaultDataPath is where the snapshot database lives unless overridden by
// flag or config.
const DefaultDataPath = "~/.local/share/chestkeeper/chestkeeper.db"

// ExpandPath expands ~ and environment variables in a file path.
// It handles both ~ for home directory and $VAR style environment variables.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	// First expand tilde if present
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	// Then expand environment variables
	return os.ExpandEnv(path)
}

// DataPath resolves the snapshot database location, falling back to the
// default when the configured value is empty.
func DataPath(configured string) string {
	if configured == "" {
		configured = DefaultDataPath
	}
	return ExpandPath(configured)
}

package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "SENTINEL_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "sentinel.yaml"
	// ConfigDirName is the per-user and system config directory
	ConfigDirName = "sentinel"
)

// FindConfigPath returns the first existing config file, or "" if none.
// See the package doc for the search order.
func FindConfigPath() string {
	for _, path := range searchPaths() {
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// searchPaths lists candidates in priority order; unset variables drop out
func searchPaths() []string {
	var paths []string
	if env := os.Getenv(EnvConfigPath); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, ConfigFileName)

	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		paths = append(paths, filepath.Join(xdg, ConfigDirName, "config.yaml"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, "config.yaml"))
	}
	return append(paths, filepath.Join("/etc", ConfigDirName, "config.yaml"))
}

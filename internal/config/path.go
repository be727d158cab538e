// Package config loads the desk's workflow definitions and catalog settings and
// resolves where its files live.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

const appDir = "propostas"

// Files the desk keeps under its XDG directories.
const (
	ConfigFileName = "config.yaml"
	TokenFileName  = "sheets-token.json"
	DBFileName     = "propostas.db"
	LogFileName    = "propostas.log"
)

// ExpandPath resolves a leading ~ and $VAR references in path.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return os.ExpandEnv(path)
}

// ConfigDir is $XDG_CONFIG_HOME/propostas, falling back to ~/.config/propostas.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir is $XDG_DATA_HOME/propostas, falling back to ~/.local/share/propostas.
// The database and the desk's log file live here.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// ConfigFile returns name inside ConfigDir.
func ConfigFile(name string) string {
	return filepath.Join(ConfigDir(), name)
}

// DataFile returns name inside DataDir.
func DataFile(name string) string {
	return filepath.Join(DataDir(), name)
}

func xdgDir(env, fallback string) string {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(ExpandPath(base), appDir)
	}
	return filepath.Join(ExpandPath("~"), fallback, appDir)
}

package config

import (
	"os"
	"path/filepath"
)

// AppName names the directories flowlayout keeps its files in.
const AppName = "flowlayout"

// Path returns the configuration file location,
// $XDG_CONFIG_HOME/flowlayout/config.toml (~/.config/flowlayout/config.toml).
func Path() (string, error) {
	dir, err := xdgDir("XDG_CONFIG_HOME", ".config")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// CacheDir returns the layout cache directory using XDG standard
// (~/.cache/flowlayout/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache")
}

// DataDir returns the data directory using XDG standard
// (~/.local/share/flowlayout/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// HistoryPath returns the file history store location.
func HistoryPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.json"), nil
}

func xdgDir(env, fallback string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// Package paths resolves the configuration and data directories and the
// well-known files inside them.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user directories.
const AppName = "takeoff"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "TAKEOFF_CONFIG_DIR"
	EnvDataDir   = "TAKEOFF_DATA_DIR"
)

// Files in the configuration directory.
const (
	ConfigFileName          = "config.yaml"
	MaterialLibraryFileName = "materials.txt"
	PresetFileName          = "colors.csv"
)

// platformDir holds platform lookups that tests replace.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/takeoff (fallback ~/.config/takeoff)
// macOS:   ~/Library/Application Support/takeoff
// Windows: %APPDATA%/takeoff
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultDataDir returns the platform data directory. Outside Linux it is
// the configuration directory.
//
// Linux:   $XDG_DATA_HOME/takeoff (fallback ~/.local/share/takeoff)
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
	}
	return DefaultConfigDir()
}

func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// TAKEOFF_CONFIG_DIR, then DefaultConfigDir. Overrides are made absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag, then TAKEOFF_DATA_DIR,
// then the data_dir value from config.yaml, then DefaultDataDir.
func ResolveDataDir(flag, configValue string) (string, error) {
	for _, dir := range []string{flag, os.Getenv(EnvDataDir), configValue} {
		if dir != "" {
			return filepath.Abs(dir)
		}
	}
	return DefaultDataDir()
}

// ConfigFile returns the path of config.yaml inside configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// MaterialLibraryFile returns the optional material library in configDir.
func MaterialLibraryFile(configDir string) string {
	return filepath.Join(configDir, MaterialLibraryFileName)
}

// PresetFile returns the default color preset path in dataDir.
func PresetFile(dataDir string) string {
	return filepath.Join(dataDir, PresetFileName)
}

// Package config persists the small set of panel settings that
// survive restarts.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devdeck/devdeck/internal/platform"
)

// Settings is the persisted configuration.
type Settings struct {
	// WindowsShell records the user's PowerShell/cmd preference. Kept
	// on every platform so a config written on Windows round-trips.
	WindowsShell platform.ShellChoice `json:"windows_shell,omitempty"`
	// LastBrowseDir is where the add-project browser reopens.
	LastBrowseDir string `json:"last_browse_dir,omitempty"`
}

// DefaultPath returns the per-user settings location.
func DefaultPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "devdeck", "settings.json"), nil
}

// Load reads settings from path. A missing file yields zero settings,
// not an error; first launch has nothing to load.
func Load(path string) (Settings, error) {
	var s Settings
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// Save writes settings to path atomically via a sibling temp file, so
// a crash mid-write never leaves a truncated config behind.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("create temp settings: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close settings: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod settings: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

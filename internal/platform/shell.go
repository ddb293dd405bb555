// Package platform resolves the user's shell and the platform-specific
// invocation syntax around it.
package platform

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// ShellChoice selects between the two configurable Windows shells.
// Ignored on POSIX, where $SHELL wins.
type ShellChoice string

const (
	ShellPowerShell ShellChoice = "powershell"
	ShellCmd        ShellChoice = "cmd"
)

// Toggle flips between the two Windows shell choices.
func (c ShellChoice) Toggle() ShellChoice {
	if c == ShellCmd {
		return ShellPowerShell
	}
	return ShellCmd
}

// ShellName returns the bare shell name without its directory, for
// display and for shell-family detection.
func ShellName(shell string) string {
	if name := filepath.Base(shell); name != "." && name != string(filepath.Separator) {
		return name
	}
	return shell
}

// IsPowerShell reports whether shell is any PowerShell flavor.
func IsPowerShell(shell string) bool {
	lower := strings.ToLower(shell)
	return strings.Contains(lower, "powershell") || strings.Contains(lower, "pwsh")
}

// CommandExists reports whether name resolves on PATH.
func CommandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

//go:build windows

package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultShell returns the configured Windows shell, preferring
// PowerShell Core when asked for PowerShell.
func DefaultShell(choice ShellChoice) string {
	if choice == ShellCmd {
		return cmdPath()
	}
	if shell, ok := powershellPath(); ok {
		return shell
	}
	return "powershell.exe"
}

// LoginShellArgs is empty on Windows; neither shell has a login-shell
// concept worth invoking.
func LoginShellArgs() []string {
	return nil
}

// ShellCommandArgs wraps command in the shell family's execute-and-exit
// syntax: -Command for PowerShell, /C for cmd.exe.
func ShellCommandArgs(shell, command string) []string {
	if IsPowerShell(shell) {
		return []string{"-Command", command}
	}
	return []string{"/C", command}
}

// PackageManagerCommand appends the .cmd shim extension Windows
// package-manager launchers use.
func PackageManagerCommand(pm string) string {
	return pm + ".cmd"
}

func cmdPath() string {
	if shell := os.Getenv("COMSPEC"); shell != "" {
		return shell
	}
	if root := os.Getenv("SYSTEMROOT"); root != "" {
		path := filepath.Join(root, "System32", "cmd.exe")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "cmd.exe"
}

func powershellPath() (string, bool) {
	if CommandExists("pwsh") {
		return "pwsh", true
	}
	if root := os.Getenv("SYSTEMROOT"); root != "" {
		path := fmt.Sprintf(`%s\System32\WindowsPowerShell\v1.0\powershell.exe`, root)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	if CommandExists("powershell.exe") {
		return "powershell.exe", true
	}
	return "", false
}

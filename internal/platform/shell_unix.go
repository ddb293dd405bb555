//go:build !windows

package platform

import "os"

// DefaultShell returns the user's preferred interactive shell. The
// choice parameter only matters on Windows.
func DefaultShell(_ ShellChoice) string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/zsh"
}

// LoginShellArgs makes the shell load its full configuration
// (.zshrc, prompt theming) by starting it as a login interactive
// shell.
func LoginShellArgs() []string {
	return []string{"-l", "-i"}
}

// ShellCommandArgs wraps command in the shell's execute-and-exit
// syntax.
func ShellCommandArgs(_ string, command string) []string {
	return []string{"-c", command}
}

// PackageManagerCommand returns the executable name for a package
// manager. POSIX installs use the bare name.
func PackageManagerCommand(pm string) string {
	return pm
}

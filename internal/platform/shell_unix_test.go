//go:build !windows

package platform

import "testing"

func TestDefaultShell_UsesEnv(t *testing.T) {
	t.Setenv("SHELL", "/usr/local/bin/fish")
	if got := DefaultShell(ShellPowerShell); got != "/usr/local/bin/fish" {
		t.Errorf("DefaultShell() = %q, want /usr/local/bin/fish", got)
	}
}

func TestDefaultShell_FallsBack(t *testing.T) {
	t.Setenv("SHELL", "")
	if got := DefaultShell(ShellPowerShell); got != "/bin/zsh" {
		t.Errorf("DefaultShell() = %q, want /bin/zsh", got)
	}
}

func TestShellCommandArgs(t *testing.T) {
	got := ShellCommandArgs("/bin/zsh", "npm run dev")
	if len(got) != 2 || got[0] != "-c" || got[1] != "npm run dev" {
		t.Errorf("ShellCommandArgs() = %v, want [-c, npm run dev]", got)
	}
}

func TestLoginShellArgs(t *testing.T) {
	got := LoginShellArgs()
	if len(got) != 2 || got[0] != "-l" || got[1] != "-i" {
		t.Errorf("LoginShellArgs() = %v, want [-l -i]", got)
	}
}

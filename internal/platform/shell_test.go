package platform

import "testing"

func TestShellName(t *testing.T) {
	tests := []struct {
		shell string
		want  string
	}{
		{"/bin/zsh", "zsh"},
		{"/usr/bin/bash", "bash"},
		{"powershell.exe", "powershell.exe"},
	}
	for _, tt := range tests {
		if got := ShellName(tt.shell); got != tt.want {
			t.Errorf("ShellName(%q) = %q, want %q", tt.shell, got, tt.want)
		}
	}
}

func TestIsPowerShell(t *testing.T) {
	tests := []struct {
		shell string
		want  bool
	}{
		{"pwsh", true},
		{`C:\Windows\System32\WindowsPowerShell\v1.0\powershell.exe`, true},
		{"/bin/zsh", false},
		{"cmd.exe", false},
	}
	for _, tt := range tests {
		if got := IsPowerShell(tt.shell); got != tt.want {
			t.Errorf("IsPowerShell(%q) = %v, want %v", tt.shell, got, tt.want)
		}
	}
}

func TestShellChoiceToggle(t *testing.T) {
	if got := ShellPowerShell.Toggle(); got != ShellCmd {
		t.Errorf("Toggle() = %v, want %v", got, ShellCmd)
	}
	if got := ShellCmd.Toggle(); got != ShellPowerShell {
		t.Errorf("Toggle() = %v, want %v", got, ShellPowerShell)
	}
}

//go:build windows

package pty

import (
	"errors"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/devdeck/devdeck/internal/retry"
	"golang.org/x/sys/windows"
)

// statusDLLInitFailed (0xC0000142) is what a ConPTY child dies with
// when the console host has not finished settling from a previous
// creation. Always worth retrying.
const statusDLLInitFailed = 0xC0000142

func preSpawnSettle() {
	// Small fixed pause before touching ConPTY at all; back-to-back
	// creations are the main trigger for the DLL-init failure.
	time.Sleep(10 * time.Millisecond)
}

func openPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 3,
		Backoff: func(attempt int, _ error) time.Duration {
			return time.Duration(attempt) * 50 * time.Millisecond
		},
	}
}

func spawnPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: 5,
		Backoff: func(attempt int, err error) time.Duration {
			base := 50 * time.Millisecond
			if isDLLInitFailure(err) {
				base = 100 * time.Millisecond
			}
			return time.Duration(attempt) * base
		},
		Retryable: func(attempt int, err error) bool {
			// The DLL-init race gets the full attempt budget; other
			// spawn errors are usually deterministic and stop early.
			if isDLLInitFailure(err) {
				return true
			}
			return attempt < 3
		},
	}
}

func isDLLInitFailure(err error) bool {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return uint32(errno) == statusDLLInitFailed
	}
	return false
}

// buildEnv inherits the full environment, then re-injects the system
// variables ConPTY children cannot start without when the parent was
// launched from a stripped environment.
func buildEnv() []string {
	env := os.Environ()

	systemRoot := envValue(env, "SystemRoot")
	if systemRoot == "" {
		systemRoot = `C:\Windows`
		env = append(env, "SystemRoot="+systemRoot)
	}
	if envValue(env, "SystemDrive") == "" {
		env = append(env, "SystemDrive=C:")
	}
	if envValue(env, "COMSPEC") == "" {
		env = append(env, "COMSPEC="+systemRoot+`\System32\cmd.exe`)
	}
	if envValue(env, "WINDIR") == "" {
		env = append(env, "WINDIR="+systemRoot)
	}

	system32 := systemRoot + `\System32`
	path := envValue(env, "PATH")
	if !strings.Contains(strings.ToLower(path), strings.ToLower(system32)) {
		env = setEnvValue(env, "PATH", path+";"+system32)
	}

	return append(env, "TERM=xterm-256color", "COLORTERM=truecolor")
}

// envValue does a case-insensitive lookup in a k=v slice; Windows
// environment names are case-preserving but not case-sensitive.
func envValue(env []string, key string) string {
	for _, kv := range env {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func setEnvValue(env []string, key, value string) []string {
	for i, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && strings.EqualFold(k, key) {
			env[i] = k + "=" + value
			return env
		}
	}
	return append(env, key+"="+value)
}

// isHangup matches the broken-pipe family ConPTY's output pipe reports
// once the console tears down after child exit.
func isHangup(err error) bool {
	return errors.Is(err, windows.ERROR_BROKEN_PIPE) || errors.Is(err, windows.ERROR_HANDLE_EOF)
}

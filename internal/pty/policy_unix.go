//go:build !windows

package pty

import (
	"errors"
	"os"

	"github.com/devdeck/devdeck/internal/retry"
	"golang.org/x/sys/unix"
)

// allowedEnv is the minimal environment passed to children. Everything
// else is dropped so panel sessions behave the same regardless of what
// the launching terminal had exported.
var allowedEnv = []string{"HOME", "USER", "SHELL", "PATH", "LANG", "LC_ALL", "STARSHIP_SHELL"}

func preSpawnSettle() {}

// POSIX pty allocation does not flake; one attempt each.
func openPolicy() retry.Policy  { return retry.Policy{MaxAttempts: 1} }
func spawnPolicy() retry.Policy { return retry.Policy{MaxAttempts: 1} }

func buildEnv() []string {
	env := []string{"TERM=xterm-256color", "COLORTERM=truecolor"}
	for _, key := range allowedEnv {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}
	return env
}

// isHangup matches the EIO a pty master returns once the slave side
// has no more users, which on Linux is how child exit surfaces.
func isHangup(err error) bool {
	return errors.Is(err, unix.EIO)
}

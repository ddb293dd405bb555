//go:build !windows

package pty

import (
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
)

// signalTarget prefers the negative process-group id so the signal
// reaches every descendant; a process that never became a group leader
// falls back to the single pid.
func signalTarget(pid int) int {
	if pgid, err := unix.Getpgid(pid); err == nil && pgid > 0 {
		return -pgid
	}
	return pid
}

// signalTree delivers sig to the group, falling back to the single
// process when the group signal fails. Returns false when both fail,
// which for an exited process (ESRCH) callers treat as "nothing to
// signal" rather than an error.
func signalTree(pid int, sig unix.Signal) bool {
	target := signalTarget(pid)
	if err := unix.Kill(target, sig); err == nil {
		return true
	}
	if target == pid {
		return false
	}
	if err := unix.Kill(pid, sig); err != nil {
		log.Debug("signal failed", "pid", pid, "sig", sig, "err", err)
		return false
	}
	return true
}

// suspendTree stops the process tree rooted at pid.
func suspendTree(pid int) bool {
	return signalTree(pid, unix.SIGSTOP)
}

// resumeTree continues a stopped tree.
func resumeTree(pid int) bool {
	return signalTree(pid, unix.SIGCONT)
}

// terminateTree runs the kill ladder: resume first so a stopped tree
// can handle signals at all, then SIGTERM with a short grace window,
// then SIGKILL. The final single-pid SIGKILL covers a root that left
// its group. Errors are ignored throughout; a missing process is the
// desired outcome.
func terminateTree(pid int, suspended bool) {
	target := signalTarget(pid)

	if suspended {
		_ = unix.Kill(target, unix.SIGCONT)
	}
	_ = unix.Kill(target, unix.SIGTERM)
	time.Sleep(100 * time.Millisecond)
	_ = unix.Kill(target, unix.SIGKILL)
	_ = unix.Kill(pid, unix.SIGKILL)
}

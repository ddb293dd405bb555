package pty

import (
	"runtime"
	"sync"

	"github.com/devdeck/devdeck/internal/proc"
	"github.com/devdeck/devdeck/internal/vterm"
)

// Session is the handle for one live PTY: the child process bound to
// it, the screen its output feeds, and the control surface for
// suspend, resume, resize and kill. The reader goroutine does not hold
// the session; it owns the device's read side independently, so a
// session can be killed (or collected) while the reader drains.
type Session struct {
	id string

	mu        sync.Mutex
	running   bool
	suspended bool
	pid       int
	dev       device
	usage     proc.Usage

	screen *vterm.Screen
}

func newSession(id string, dev device, screen *vterm.Screen, pid int) *Session {
	s := &Session{
		id:      id,
		running: true,
		pid:     pid,
		dev:     dev,
		screen:  screen,
	}
	// A discarded handle must not leak its process tree.
	runtime.SetFinalizer(s, func(s *Session) { s.Kill() })
	return s
}

// ID returns the session identifier assigned at creation.
func (s *Session) ID() string { return s.id }

// Screen returns the shared terminal screen fed by the reader
// goroutine. Safe for concurrent use.
func (s *Session) Screen() *vterm.Screen { return s.screen }

// Running reports whether the session still has a live child.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Suspended reports whether the child's tree is currently stopped.
func (s *Session) Suspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suspended
}

// Pid returns the child's process id, or 0 after kill.
func (s *Session) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

// Usage returns the last recorded resource sample for the session's
// process tree.
func (s *Session) Usage() proc.Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// SetUsage records a resource sample taken by the monitoring tick.
func (s *Session) SetUsage(u proc.Usage) {
	s.mu.Lock()
	s.usage = u
	s.mu.Unlock()
}

// MarkExited clears the running flag. Called by the bridge when the
// session's terminal event arrives.
func (s *Session) MarkExited() {
	s.mu.Lock()
	s.running = false
	s.suspended = false
	s.pid = 0
	s.mu.Unlock()
}

// SendInput writes data to the child's terminal. After kill or exit
// the input side is gone and the write is silently dropped, so that
// keystrokes racing a teardown never surface as errors.
func (s *Session) SendInput(data []byte) error {
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()
	if dev == nil {
		return nil
	}
	_, err := dev.Write(data)
	return err
}

// Resize changes both the PTY dimensions and the screen grid.
func (s *Session) Resize(rows, cols uint16) error {
	s.mu.Lock()
	dev := s.dev
	s.mu.Unlock()

	s.screen.Resize(int(cols), int(rows))
	if dev == nil {
		return nil
	}
	return dev.Resize(rows, cols)
}

// Suspend stops the child's whole process tree. Returns true when the
// session transitioned to suspended, false when there was nothing to
// suspend (already suspended, not running, or the process is gone).
func (s *Session) Suspend() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.suspended || s.pid == 0 {
		return false, nil
	}
	if !suspendTree(s.pid) {
		return false, nil
	}
	s.suspended = true
	return true, nil
}

// Resume continues a suspended tree. Returns true on the transition
// back to running.
func (s *Session) Resume() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.suspended || s.pid == 0 {
		return false, nil
	}
	if !resumeTree(s.pid) {
		// The tree vanished while suspended; drop the flag anyway so
		// the session is not stuck in a state kill would have to undo.
		s.suspended = false
		return false, nil
	}
	s.suspended = false
	return true, nil
}

// ToggleSuspend suspends a running session and resumes a suspended
// one. Returns the new suspended state.
func (s *Session) ToggleSuspend() (bool, error) {
	if s.Suspended() {
		_, err := s.Resume()
		return s.Suspended(), err
	}
	_, err := s.Suspend()
	return s.Suspended(), err
}

// Kill tears the session down: resumes a suspended tree first so
// termination signals are delivered, escalates through the platform
// kill ladder, then releases the PTY. Idempotent; a second call finds
// no pid and no device and does nothing.
func (s *Session) Kill() {
	s.mu.Lock()
	pid := s.pid
	suspended := s.suspended
	dev := s.dev
	s.pid = 0
	s.running = false
	s.suspended = false
	s.dev = nil
	s.mu.Unlock()

	if pid != 0 {
		terminateTree(pid, suspended)
	}
	if dev != nil {
		_ = dev.Close()
	}
}

// Close releases the session. The process tree is killed if still
// alive and the screen's response bridge is shut down.
func (s *Session) Close() error {
	runtime.SetFinalizer(s, nil)
	s.Kill()
	return s.screen.Close()
}

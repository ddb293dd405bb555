package pty

import "io"

// device abstracts the OS pseudo-terminal pair plus the child process
// bound to its slave side. The Unix implementation sits on creack/pty;
// the Windows one on ConPTY. Reads and writes go through the master
// side.
type device interface {
	io.Reader
	io.Writer

	// Spawn starts program inside the PTY and returns its process id.
	// May be called again after a failed attempt.
	Spawn(program string, args []string, dir string, env []string) (pid int, err error)

	// Resize changes the PTY dimensions.
	Resize(rows, cols uint16) error

	// Wait reaps the child and returns its exit code. Called exactly
	// once, from the reader goroutine, after the read stream ends. A
	// negative code means the code is unknown (e.g. signal-killed).
	Wait() (int, error)

	// Close releases the master side and any OS console resources.
	// Safe to call more than once.
	Close() error
}

//go:build !windows

package pty

import (
	"errors"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// unixDevice is a POSIX pty pair. The master stays with us; the slave
// becomes the child's controlling terminal and is closed on our side
// once the child holds it.
type unixDevice struct {
	ptmx *os.File
	tty  *os.File
	cmd  *exec.Cmd

	closeOnce sync.Once
	closeErr  error
}

// openDevice allocates the pty pair before any process exists, so that
// an allocation failure never leaves an orphaned child behind.
func openDevice(rows, cols uint16) (device, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, err
	}
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: rows, Cols: cols}); err != nil {
		ptmx.Close()
		tty.Close()
		return nil, err
	}
	return &unixDevice{ptmx: ptmx, tty: tty}, nil
}

func (d *unixDevice) Spawn(program string, args []string, dir string, env []string) (int, error) {
	if d.tty == nil {
		return 0, errors.New("pty: slave side already consumed")
	}

	cmd := exec.Command(program, args...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = d.tty
	cmd.Stdout = d.tty
	cmd.Stderr = d.tty
	// New session with the pty as controlling terminal, so signals sent
	// to the negative pgid reach the whole tree.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		return 0, err
	}
	d.cmd = cmd

	// The child owns the slave now; keeping it open here would mask EOF
	// on the master after the child exits.
	d.tty.Close()
	d.tty = nil

	return cmd.Process.Pid, nil
}

func (d *unixDevice) Read(p []byte) (int, error)  { return d.ptmx.Read(p) }
func (d *unixDevice) Write(p []byte) (int, error) { return d.ptmx.Write(p) }

func (d *unixDevice) Resize(rows, cols uint16) error {
	return pty.Setsize(d.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

func (d *unixDevice) Wait() (int, error) {
	if d.cmd == nil {
		return -1, errors.New("pty: no child to wait for")
	}
	err := d.cmd.Wait()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			// ExitCode is -1 for signal-killed children, which callers
			// treat as unknown.
			return ee.ExitCode(), nil
		}
		return -1, err
	}
	return d.cmd.ProcessState.ExitCode(), nil
}

func (d *unixDevice) Close() error {
	d.closeOnce.Do(func() {
		d.closeErr = d.ptmx.Close()
		if d.tty != nil {
			d.tty.Close()
			d.tty = nil
		}
	})
	return d.closeErr
}

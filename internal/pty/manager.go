package pty

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/charmbracelet/log"

	"github.com/devdeck/devdeck/internal/platform"
	"github.com/devdeck/devdeck/internal/vterm"
)

// Manager creates sessions and wires their reader goroutines to a
// shared event queue. It keeps no session registry; ownership lives
// with whoever holds the returned handle.
type Manager struct {
	queue *Queue
}

// NewManager returns a manager publishing to queue.
func NewManager(queue *Queue) *Manager {
	return &Manager{queue: queue}
}

// Queue returns the event queue the manager's sessions publish to.
func (m *Manager) Queue() *Queue { return m.queue }

// CreateShell starts an interactive login shell session.
func (m *Manager) CreateShell(id, workingDir string, rows, cols uint16, choice platform.ShellChoice) (*Session, error) {
	shell := platform.DefaultShell(choice)
	return m.create(id, shell, platform.LoginShellArgs(), workingDir, rows, cols)
}

// RunShellCommand starts a session running a single shell command line,
// for dev servers and one-shot project commands.
func (m *Manager) RunShellCommand(id, command, workingDir string, rows, cols uint16, choice platform.ShellChoice) (*Session, error) {
	shell := platform.DefaultShell(choice)
	return m.create(id, shell, platform.ShellCommandArgs(shell, command), workingDir, rows, cols)
}

// CreateCommand starts a session running program directly, without a
// shell in between.
func (m *Manager) CreateCommand(id, program string, args []string, workingDir string, rows, cols uint16) (*Session, error) {
	return m.create(id, program, args, workingDir, rows, cols)
}

func (m *Manager) create(id, program string, args []string, workingDir string, rows, cols uint16) (*Session, error) {
	preSpawnSettle()

	var dev device
	openErr := openPolicy().Do(func() error {
		d, err := openDevice(rows, cols)
		if err != nil {
			log.Warn("pty open failed", "session", id, "err", err)
			return err
		}
		dev = d
		return nil
	})
	if openErr != nil {
		log.Error("pty open gave up", "session", id, "err", openErr)
		return nil, fmt.Errorf("open pty: %w", openErr)
	}

	env := buildEnv()
	attempt := 0
	var pid int
	spawnErr := spawnPolicy().Do(func() error {
		attempt++
		p, err := dev.Spawn(program, args, workingDir, env)
		if err != nil {
			log.Warn("pty spawn failed", "session", id, "program", program, "attempt", attempt, "err", err)
			return err
		}
		if attempt > 1 {
			log.Info("pty spawn recovered", "session", id, "program", program, "attempt", attempt)
		}
		pid = p
		return nil
	})
	if spawnErr != nil {
		dev.Close()
		log.Error("pty spawn gave up", "session", id, "program", program, "err", spawnErr)
		return nil, fmt.Errorf("spawn %s: %w", program, spawnErr)
	}

	screen := vterm.New(int(cols), int(rows))
	session := newSession(id, dev, screen, pid)

	// Responses to terminal queries (DA1, cursor position) flow back
	// into the child's terminal.
	go screen.ForwardResponses(dev)
	go m.readLoop(id, dev, screen)

	log.Debug("pty session started", "session", id, "program", program, "pid", pid)
	return session, nil
}

// readLoop is the session's dedicated reader. It applies every chunk
// to the screen before publishing it, so a consumer that sees an
// output event can already render the bytes it carries. Exactly one
// terminal event is emitted, then the goroutine exits.
func (m *Manager) readLoop(id string, dev device, screen *vterm.Screen) {
	buf := make([]byte, 4096)
	for {
		n, err := dev.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			screen.Write(data)
			m.queue.Push(Event{Type: EventOutput, SessionID: id, Data: data})
		}
		if err == nil {
			continue
		}

		if isExitRead(err) {
			ev := Event{Type: EventExited, SessionID: id}
			if code, werr := dev.Wait(); werr == nil && code >= 0 {
				ev.ExitCode = &code
			}
			m.queue.Push(ev)
		} else {
			log.Warn("pty read failed", "session", id, "err", err)
			m.queue.Push(Event{Type: EventError, SessionID: id, Message: err.Error()})
		}
		return
	}
}

// isExitRead reports whether a read error means the child exited. EOF
// and the platform's hangup errno are the normal end of stream; a
// closed master (kill racing the reader) counts too, since the process
// is gone either way.
func isExitRead(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, fs.ErrClosed) {
		return true
	}
	return isHangup(err)
}

// Package vterm owns the shared virtual-screen state behind each
// terminal panel. Emulation itself is delegated to charmbracelet/x/vt;
// this package's job is safe concurrent access: one reader goroutine
// feeds bytes in while render passes read the grid out.
package vterm

import (
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/x/vt"
)

// Screen is a lock-protected virtual-screen buffer. It is shared
// between the session handle that owns it and the session's reader
// goroutine, which is the only writer.
type Screen struct {
	// mu serializes the reader goroutine's writes against render
	// reads. Renders that cannot take the lock immediately use
	// TryRender and degrade instead of blocking the UI loop.
	mu  sync.Mutex
	emu *vt.SafeEmulator

	version atomic.Uint64

	// Response bridge: a goroutine pumps terminal query responses
	// (DA1, cursor position, ...) from the emulator to respPW so that
	// ForwardResponses can relay them into the PTY master. Going
	// through an intermediate pipe avoids a data race in the emulator
	// between Read and Close.
	respPR     *io.PipeReader
	respPW     *io.PipeWriter
	bridgeDone chan struct{}
	closeOnce  sync.Once
}

// New returns a Screen sized cols x rows.
func New(cols, rows int) *Screen {
	pr, pw := io.Pipe()
	s := &Screen{
		emu:        vt.NewSafeEmulator(cols, rows),
		respPR:     pr,
		respPW:     pw,
		bridgeDone: make(chan struct{}),
	}
	go s.pumpResponses()
	return s
}

// Write feeds raw PTY output into the emulator. Called only from the
// owning session's reader goroutine.
func (s *Screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.emu.Write(p)
	if n > 0 {
		s.version.Add(1)
	}
	return n, err
}

// Render returns the ANSI-styled screen content, blocking until the
// grid is available.
func (s *Screen) Render() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return normalize(s.emu.Render())
}

// TryRender returns the styled screen content if the grid lock is
// immediately available. ok is false when the reader goroutine holds
// the lock; the renderer should show its placeholder and try again
// next frame rather than stall the event loop.
func (s *Screen) TryRender() (content string, ok bool) {
	if !s.mu.TryLock() {
		return "", false
	}
	defer s.mu.Unlock()
	return normalize(s.emu.Render()), true
}

// String returns the plain-text screen content with line endings
// normalized and trailing blank lines removed.
func (s *Screen) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := strings.ReplaceAll(s.emu.String(), "\r\n", "\n")
	out = strings.ReplaceAll(out, "\r", "")
	return trimTrailingEmptyLines(out)
}

// Resize changes the emulator grid dimensions.
func (s *Screen) Resize(cols, rows int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.emu.Resize(cols, rows)
}

// Version increases on every write; renderers compare it against the
// last version they painted to skip unchanged frames.
func (s *Screen) Version() uint64 {
	return s.version.Load()
}

// Close releases the emulator. Safe to call more than once.
func (s *Screen) Close() error {
	s.closeOnce.Do(func() {
		s.respPR.Close()

		// Closing the emulator's input pipe unblocks pumpResponses
		// (its Read returns EOF) without racing emu.Close against a
		// concurrent emu.Read.
		if pw, ok := s.emu.InputPipe().(io.Closer); ok {
			pw.Close()
		}
		<-s.bridgeDone

		s.mu.Lock()
		s.emu.Close()
		s.mu.Unlock()
	})
	return nil
}

// pumpResponses moves terminal query responses from the emulator's
// internal pipe onto the intermediate pipe. Exits when the emulator is
// closed.
func (s *Screen) pumpResponses() {
	defer close(s.bridgeDone)
	buf := make([]byte, 1024)
	for {
		n, err := s.emu.Read(buf)
		if n > 0 {
			if _, werr := s.respPW.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			s.respPW.CloseWithError(err)
			return
		}
	}
}

// ForwardResponses copies terminal query responses to w, typically the
// PTY master, so programs that interrogate their terminal keep working.
// Run as a goroutine; returns when the screen is closed.
func (s *Screen) ForwardResponses(w io.Writer) {
	buf := make([]byte, 1024)
	for {
		n, err := s.respPR.Read(buf)
		if n > 0 {
			w.Write(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func normalize(out string) string {
	out = strings.ReplaceAll(out, "\r\n", "\n")
	return strings.ReplaceAll(out, "\r", "")
}

func trimTrailingEmptyLines(s string) string {
	lines := strings.Split(s, "\n")
	last := len(lines) - 1
	for last >= 0 && strings.TrimRight(lines[last], " ") == "" {
		last--
	}
	if last < 0 {
		return ""
	}
	return strings.Join(lines[:last+1], "\n")
}

package workspace

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/devdeck/devdeck/internal/pty"
)

// Bridge folds queued PTY events into workspace state. Drain runs on
// the main loop each tick, so slot mutation here never races a render.
type Bridge struct {
	queue *pty.Queue
	out   io.Writer
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithOutput additionally copies session output bytes to w as they
// drain. Used by the CLI harness; the full panel reads the screens
// instead.
func WithOutput(w io.Writer) BridgeOption {
	return func(b *Bridge) { b.out = w }
}

// NewBridge returns a bridge consuming queue.
func NewBridge(queue *pty.Queue, opts ...BridgeOption) *Bridge {
	b := &Bridge{queue: queue}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Drain applies all pending events to state without blocking. Output
// events are already on the session's screen and need no state change;
// exits clear the owning slot and post a status; read errors post a
// status but leave the slot alone so its last screen stays visible.
func (b *Bridge) Drain(state *State) {
	for _, ev := range b.queue.Drain() {
		slot, isDev := state.SlotFor(ev.SessionID)

		switch ev.Type {
		case pty.EventOutput:
			// Already applied to the screen by the reader.
			if b.out != nil {
				b.out.Write(ev.Data)
			}

		case pty.EventExited:
			if slot == nil {
				log.Debug("exit for unknown session", "session", ev.SessionID)
				continue
			}
			name := slot.Project.Name
			if isDev {
				session := slot.Dev
				slot.Dev = nil
				session.MarkExited()
				session.Close()
				state.SetStatus(fmt.Sprintf("%s: dev server exited%s", name, exitSuffix(ev.ExitCode)))
			} else {
				session := slot.Shell
				slot.Shell = nil
				session.MarkExited()
				session.Close()
				state.SetStatus(fmt.Sprintf("%s: shell exited%s", name, exitSuffix(ev.ExitCode)))
			}

		case pty.EventError:
			log.Warn("pty read error", "session", ev.SessionID, "err", ev.Message)
			if slot != nil {
				state.SetStatus(fmt.Sprintf("%s: terminal error: %s", slot.Project.Name, ev.Message))
			}
		}
	}
}

func exitSuffix(code *int) string {
	if code == nil {
		return ""
	}
	return fmt.Sprintf(" (code %d)", *code)
}

//go:build !windows

package workspace

import (
	"strings"
	"testing"
	"time"

	"github.com/devdeck/devdeck/internal/project"
	"github.com/devdeck/devdeck/internal/pty"
)

func TestBridge_ExitClearsDevSlotAndPostsStatus(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	q := pty.NewQueue()
	m := pty.NewManager(q)
	state := NewState()
	bridge := NewBridge(q)

	slot := state.AddProject(&project.Project{Name: "api", Dir: t.TempDir()})
	session, err := m.RunShellCommand("dev-1", "exit 3", slot.Project.Dir, 24, 80, "")
	if err != nil {
		t.Fatalf("RunShellCommand: %v", err)
	}
	slot.Dev = session

	deadline := time.Now().Add(5 * time.Second)
	for slot.Dev != nil && time.Now().Before(deadline) {
		bridge.Drain(state)
		time.Sleep(10 * time.Millisecond)
	}
	if slot.Dev != nil {
		t.Fatal("dev session still attached after exit")
	}

	text, ok := state.Status()
	if !ok {
		t.Fatal("no status message after dev exit")
	}
	if !strings.Contains(text, "api") || !strings.Contains(text, "code 3") {
		t.Errorf("status = %q, want project name and exit code", text)
	}
}

func TestBridge_ErrorKeepsSlot(t *testing.T) {
	q := pty.NewQueue()
	m := pty.NewManager(q)
	state := NewState()
	bridge := NewBridge(q)

	slot := state.AddProject(&project.Project{Name: "api", Dir: t.TempDir()})
	session, err := m.CreateCommand("shell-1", "/bin/sleep", []string{"30"}, slot.Project.Dir, 24, 80)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	defer session.Close()
	slot.Shell = session

	// Swallow startup output, then inject a read failure.
	q.Drain()
	q.Push(pty.Event{Type: pty.EventError, SessionID: "shell-1", Message: "read: boom"})
	bridge.Drain(state)

	if slot.Shell == nil {
		t.Fatal("shell slot cleared by an error event")
	}
	if text, ok := state.Status(); !ok || !strings.Contains(text, "boom") {
		t.Errorf("status = (%q, %v), want the error surfaced", text, ok)
	}
}

func TestBridge_ExitForUnknownSessionIsIgnored(t *testing.T) {
	q := pty.NewQueue()
	state := NewState()
	bridge := NewBridge(q)

	code := 0
	q.Push(pty.Event{Type: pty.EventExited, SessionID: "ghost", ExitCode: &code})
	bridge.Drain(state)

	if _, ok := state.Status(); ok {
		t.Error("status set for a session no slot owns")
	}
}

func TestTick_SamplesRunningDevSessions(t *testing.T) {
	q := pty.NewQueue()
	m := pty.NewManager(q)
	state := NewState()

	slot := state.AddProject(&project.Project{Name: "api", Dir: t.TempDir()})
	session, err := m.CreateCommand("dev-1", "/bin/sleep", []string{"30"}, slot.Project.Dir, 24, 80)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	defer session.Close()
	slot.Dev = session

	for i := 0; i < 30; i++ {
		state.Tick()
	}

	if state.Snapshot() == nil {
		t.Fatal("no snapshot after a full sampling interval")
	}
	if !state.Snapshot().Contains(int32(session.Pid())) {
		t.Errorf("snapshot does not contain the dev session pid %d", session.Pid())
	}
}

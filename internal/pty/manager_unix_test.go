//go:build !windows

package pty

import (
	"strings"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// drainUntilTerminal polls the queue until a session's terminal event
// arrives, returning all events seen.
func drainUntilTerminal(t *testing.T, q *Queue, timeout time.Duration) []Event {
	t.Helper()
	deadline := time.Now().Add(timeout)
	var all []Event
	for time.Now().Before(deadline) {
		for _, ev := range q.Drain() {
			all = append(all, ev)
			if ev.Type == EventExited || ev.Type == EventError {
				return all
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no terminal event within %v; saw %d events", timeout, len(all))
	return nil
}

func TestRunShellCommand_OutputThenSingleExit(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	q := NewQueue()
	m := NewManager(q)

	s, err := m.RunShellCommand("echo-test", "echo hello", t.TempDir(), 24, 80, "")
	if err != nil {
		t.Fatalf("RunShellCommand: %v", err)
	}
	defer s.Close()

	events := drainUntilTerminal(t, q, 5*time.Second)

	var output strings.Builder
	exits := 0
	for _, ev := range events {
		switch ev.Type {
		case EventOutput:
			if exits > 0 {
				t.Error("output event arrived after the exit event")
			}
			output.Write(ev.Data)
		case EventExited:
			exits++
			if ev.ExitCode == nil {
				t.Error("exit code missing for a clean exit")
			} else if *ev.ExitCode != 0 {
				t.Errorf("exit code = %d, want 0", *ev.ExitCode)
			}
		case EventError:
			t.Fatalf("unexpected error event: %s", ev.Message)
		}
	}
	if exits != 1 {
		t.Errorf("saw %d exit events, want exactly 1", exits)
	}
	if !strings.Contains(output.String(), "hello") {
		t.Errorf("output %q does not contain hello", output.String())
	}
	if !strings.Contains(s.Screen().String(), "hello") {
		t.Errorf("screen %q does not contain hello", s.Screen().String())
	}
}

func TestRunShellCommand_NonzeroExitCode(t *testing.T) {
	t.Setenv("SHELL", "/bin/sh")
	q := NewQueue()
	m := NewManager(q)

	s, err := m.RunShellCommand("exit-test", "exit 7", t.TempDir(), 24, 80, "")
	if err != nil {
		t.Fatalf("RunShellCommand: %v", err)
	}
	defer s.Close()

	events := drainUntilTerminal(t, q, 5*time.Second)
	last := events[len(events)-1]
	if last.Type != EventExited {
		t.Fatalf("terminal event type = %d, want exited", last.Type)
	}
	if last.ExitCode == nil || *last.ExitCode != 7 {
		t.Errorf("exit code = %v, want 7", last.ExitCode)
	}
}

func TestCreateCommand_SpawnFailure(t *testing.T) {
	q := NewQueue()
	m := NewManager(q)

	if _, err := m.CreateCommand("bad", "/nonexistent/definitely-not-here", nil, t.TempDir(), 24, 80); err == nil {
		t.Fatal("CreateCommand succeeded for a nonexistent program")
	}
}

func TestKill_IsIdempotentAndReapsTheProcess(t *testing.T) {
	q := NewQueue()
	m := NewManager(q)

	s, err := m.CreateCommand("sleeper", "/bin/sleep", []string{"30"}, t.TempDir(), 24, 80)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	pid := s.Pid()
	if pid == 0 {
		t.Fatal("session has no pid")
	}

	s.Kill()
	s.Kill()

	if s.Pid() != 0 {
		t.Errorf("pid = %d after kill, want 0", s.Pid())
	}
	if s.Running() {
		t.Error("session still marked running after kill")
	}

	// Reader reaps via Wait; after that signal 0 must find nothing.
	drainUntilTerminal(t, q, 5*time.Second)
	if err := unix.Kill(pid, 0); err == nil {
		t.Errorf("process %d still alive after kill", pid)
	}
}

func TestSuspendResume_Symmetry(t *testing.T) {
	q := NewQueue()
	m := NewManager(q)

	s, err := m.CreateCommand("sleeper", "/bin/sleep", []string{"30"}, t.TempDir(), 24, 80)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	defer s.Close()

	if ok, err := s.Suspend(); err != nil || !ok {
		t.Fatalf("Suspend = (%v, %v), want (true, nil)", ok, err)
	}
	if !s.Suspended() {
		t.Fatal("session not marked suspended")
	}
	if ok, _ := s.Suspend(); ok {
		t.Error("second Suspend reported a transition")
	}

	if ok, err := s.Resume(); err != nil || !ok {
		t.Fatalf("Resume = (%v, %v), want (true, nil)", ok, err)
	}
	if s.Suspended() {
		t.Error("session still marked suspended after resume")
	}
	if ok, _ := s.Resume(); ok {
		t.Error("second Resume reported a transition")
	}
}

func TestSendInput_DroppedAfterKill(t *testing.T) {
	q := NewQueue()
	m := NewManager(q)

	s, err := m.CreateCommand("sleeper", "/bin/sleep", []string{"30"}, t.TempDir(), 24, 80)
	if err != nil {
		t.Fatalf("CreateCommand: %v", err)
	}
	s.Kill()

	if err := s.SendInput([]byte("q")); err != nil {
		t.Errorf("SendInput after kill = %v, want nil", err)
	}
}

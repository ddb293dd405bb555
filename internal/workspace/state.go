// Package workspace holds the mutable panel state: one slot per
// project, each with an optional dev-server session and an optional
// interactive shell, plus the bridge that folds PTY events back into
// that state on the main loop.
package workspace

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/devdeck/devdeck/internal/proc"
	"github.com/devdeck/devdeck/internal/project"
	"github.com/devdeck/devdeck/internal/pty"
)

// snapshotEvery is how many ticks pass between process-table refreshes.
// At the ~33ms poll cadence this samples resource usage about once a
// second.
const snapshotEvery = 30

// statusTTL is how long a status message stays visible.
const statusTTL = 5 * time.Second

// Slot pairs a project with its running sessions.
type Slot struct {
	Project *project.Project

	// Dev is the long-running dev-server session, Shell the
	// interactive one. Either may be nil.
	Dev   *pty.Session
	Shell *pty.Session
}

// StatusMessage is a transient line shown in the panel footer.
type StatusMessage struct {
	Text      string
	CreatedAt time.Time
}

// State is the panel's single mutable root. It is owned by the main
// loop and never shared across goroutines; everything concurrent goes
// through the pty event queue.
type State struct {
	slots  []*Slot
	status *StatusMessage

	now      func() time.Time
	provider *proc.Provider
	snapshot *proc.Snapshot
	tick     int
}

// Option configures a State.
type Option func(*State)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

// NewState returns an empty workspace.
func NewState(opts ...Option) *State {
	s := &State{
		now:      time.Now,
		provider: proc.NewProvider(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddProject appends a slot for p and returns it.
func (s *State) AddProject(p *project.Project) *Slot {
	slot := &Slot{Project: p}
	s.slots = append(s.slots, slot)
	return slot
}

// RemoveProject drops the slot at index, closing any sessions it still
// holds.
func (s *State) RemoveProject(index int) {
	if index < 0 || index >= len(s.slots) {
		return
	}
	slot := s.slots[index]
	if slot.Dev != nil {
		slot.Dev.Close()
	}
	if slot.Shell != nil {
		slot.Shell.Close()
	}
	s.slots = append(s.slots[:index], s.slots[index+1:]...)
}

// Slots returns the live slot list. Callers must not retain it across
// mutations.
func (s *State) Slots() []*Slot { return s.slots }

// SlotFor finds the slot owning the session with the given id,
// reporting which of its sessions matched.
func (s *State) SlotFor(sessionID string) (slot *Slot, isDev bool) {
	for _, sl := range s.slots {
		if sl.Dev != nil && sl.Dev.ID() == sessionID {
			return sl, true
		}
		if sl.Shell != nil && sl.Shell.ID() == sessionID {
			return sl, false
		}
	}
	return nil, false
}

// SetStatus replaces the current status message.
func (s *State) SetStatus(text string) {
	s.status = &StatusMessage{Text: text, CreatedAt: s.now()}
}

// Status returns the current message, expiring it lazily.
func (s *State) Status() (string, bool) {
	if s.status == nil {
		return "", false
	}
	if s.now().Sub(s.status.CreatedAt) >= statusTTL {
		s.status = nil
		return "", false
	}
	return s.status.Text, true
}

// Snapshot returns the most recent process-table snapshot, which may
// be nil before the first sampling tick.
func (s *State) Snapshot() *proc.Snapshot { return s.snapshot }

// Tick advances the workspace clock one poll iteration. Every
// snapshotEvery ticks it refreshes the process table and re-samples
// each running dev session's tree.
func (s *State) Tick() {
	s.tick++
	if s.tick%snapshotEvery != 0 {
		return
	}

	snap, err := s.provider.Refresh()
	if err != nil {
		log.Debug("process snapshot refresh failed", "err", err)
		return
	}
	s.snapshot = snap

	for _, slot := range s.slots {
		dev := slot.Dev
		if dev == nil || !dev.Running() || dev.Pid() == 0 {
			continue
		}
		root := int32(dev.Pid())
		tree := snap.Tree(root)
		dev.SetUsage(proc.Sample(root, tree, snap))
	}
}

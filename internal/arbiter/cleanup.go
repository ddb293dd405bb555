package arbiter

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/devdeck/devdeck/internal/proc"
)

// DefaultCleanupTimeout caps how long a cleanup wait may block new
// work before proceeding anyway. Empirically tuned; override per
// Cleanup if the host behaves differently.
const DefaultCleanupTimeout = 3000 * time.Millisecond

// Cleanup tracks a killed session's old process id until it disappears
// from a process snapshot. A just-freed console subsystem may refuse
// immediate re-creation, so commands issued for the slot are cached
// (see Arbiter.CacheCommand) and replayed once this resolves.
type Cleanup struct {
	oldPID  int32
	target  string
	maxWait time.Duration
	now     Clock

	started time.Time
	polls   int
}

// CleanupOption configures a Cleanup.
type CleanupOption func(*Cleanup)

// WithCleanupClock substitutes the time source.
func WithCleanupClock(now Clock) CleanupOption {
	return func(c *Cleanup) { c.now = now }
}

// NewCleanup starts tracking oldPID for the given slot. maxWait <= 0
// selects DefaultCleanupTimeout.
func NewCleanup(oldPID int32, target string, maxWait time.Duration, opts ...CleanupOption) *Cleanup {
	c := &Cleanup{
		oldPID:  oldPID,
		target:  target,
		maxWait: maxWait,
		now:     time.Now,
	}
	if c.maxWait <= 0 {
		c.maxWait = DefaultCleanupTimeout
	}
	for _, opt := range opts {
		opt(c)
	}
	c.started = c.now()
	return c
}

// Poll checks the snapshot for the old process. It returns true when
// the wait has resolved: the process is gone, or the cap elapsed and
// the panel proceeds anyway with a logged warning.
func (c *Cleanup) Poll(snap *proc.Snapshot) bool {
	c.polls++

	if elapsed := c.Elapsed(); elapsed > c.maxWait {
		log.Warn("pty cleanup timed out, proceeding anyway",
			"pid", c.oldPID, "target", c.target, "elapsed", elapsed)
		return true
	}

	if !snap.Contains(c.oldPID) {
		log.Info("pty process released",
			"pid", c.oldPID, "target", c.target,
			"elapsed", c.Elapsed(), "polls", c.polls)
		return true
	}
	return false
}

// Elapsed returns how long the wait has been active.
func (c *Cleanup) Elapsed() time.Duration {
	return c.now().Sub(c.started)
}

// Target returns the slot identifier this wait belongs to.
func (c *Cleanup) Target() string { return c.target }

// OldPID returns the process id being waited on.
func (c *Cleanup) OldPID() int32 { return c.oldPID }

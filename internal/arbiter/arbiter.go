// Package arbiter serializes PTY creation and teardown around the
// ConPTY settling races. Creating two PTYs in rapid succession, or
// recreating one before the previous process tree has fully released
// its console resources, produces unpredictable spawn failures; the
// arbiter spaces those operations out with a cooldown token and a
// single-slot queue of deferred work.
//
// All state here is mutated only from the single-threaded event loop,
// so the package carries no internal synchronization.
package arbiter

import (
	"time"

	"github.com/charmbracelet/log"
)

// Clock abstracts time.Now so cooldown expiry is testable with a fixed
// offset clock.
type Clock func() time.Time

// Token records who holds the creation lock and since when. The token
// expires on its own once the cooldown window has elapsed; it is never
// released early except on creation failure.
type Token struct {
	AcquiredAt time.Time
	Reason     string
}

// Request is a deferred creation request for one slot. At most one is
// held; a newer request overwrites an older one because the most
// recent user action reflects current intent.
type Request struct {
	Target string
}

// Command is a deferred run-command request cached while cleanup for
// its slot is still pending.
type Command struct {
	Target      string
	CommandText string
}

// Arbiter gates every call into the PTY creation paths.
type Arbiter struct {
	cooldown time.Duration
	now      Clock

	token      *Token
	pending    *Request
	pendingCmd *Command
}

// Option configures an Arbiter.
type Option func(*Arbiter)

// WithClock substitutes the time source.
func WithClock(now Clock) Option {
	return func(a *Arbiter) { a.now = now }
}

// New returns an Arbiter with the given cooldown window. Zero is valid
// and means tokens expire immediately, which is the behavior on OSes
// without the settling race.
func New(cooldown time.Duration, opts ...Option) *Arbiter {
	a := &Arbiter{
		cooldown: cooldown,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Held reports whether an unexpired token is currently held.
func (a *Arbiter) Held() bool {
	return a.token != nil && !a.expired(a.token)
}

// CanCreate reports whether a creation attempt may proceed right now.
func (a *Arbiter) CanCreate() bool {
	return !a.Held()
}

// TryAcquire takes the creation token. It fails when an unexpired
// token is already held; the caller must queue its request and retry
// after Poll reports the window has passed.
func (a *Arbiter) TryAcquire(reason string) bool {
	if a.token != nil && !a.expired(a.token) {
		log.Debug("pty creation locked",
			"held_by", a.token.Reason,
			"elapsed", a.now().Sub(a.token.AcquiredAt),
			"wanted_by", reason)
		return false
	}
	a.token = &Token{AcquiredAt: a.now(), Reason: reason}
	log.Debug("pty creation lock acquired", "reason", reason)
	return true
}

// MarkCreated restarts the cooldown window once a creation attempt has
// concretely succeeded. The token is replaced, not cleared: the OS
// subsystem needs settling time after a PTY exists, not merely while
// one is being requested, so the danger window begins here.
func (a *Arbiter) MarkCreated(reason string) {
	a.token = &Token{AcquiredAt: a.now(), Reason: reason}
	log.Debug("pty created, cooldown restarted", "reason", reason)
}

// ReleaseOnFailure clears the token immediately after a failed
// creation attempt, so the failure does not block a legitimate retry
// for the rest of the cooldown.
func (a *Arbiter) ReleaseOnFailure() {
	if a.token != nil {
		log.Debug("pty creation lock released after failure", "reason", a.token.Reason)
		a.token = nil
	}
}

// Poll lazily expires the token and reports whether the caller should
// pop and re-attempt a pending request: either the token just expired,
// or no token is held and a request is waiting.
func (a *Arbiter) Poll() bool {
	if a.token != nil {
		if !a.expired(a.token) {
			return false
		}
		log.Debug("pty creation lock expired",
			"reason", a.token.Reason,
			"held_for", a.now().Sub(a.token.AcquiredAt))
		a.token = nil
		return true
	}
	return a.pending != nil
}

// QueueRequest records a deferred creation request for target,
// overwriting any previous one.
func (a *Arbiter) QueueRequest(target string) {
	if a.pending != nil && a.pending.Target != target {
		log.Debug("pending pty request overwritten",
			"old", a.pending.Target, "new", target)
	}
	a.pending = &Request{Target: target}
	log.Info("pty request queued", "target", target)
}

// TakeRequest pops the pending request, if any. The caller re-attempts
// it exactly once and drops it if its slot has since become invalid.
func (a *Arbiter) TakeRequest() (Request, bool) {
	if a.pending == nil {
		return Request{}, false
	}
	req := *a.pending
	a.pending = nil
	return req, true
}

// HasRequest reports whether a deferred creation request is waiting.
func (a *Arbiter) HasRequest() bool {
	return a.pending != nil
}

// CacheCommand stores a command to run once cleanup for its slot
// resolves, overwriting any previously cached command.
func (a *Arbiter) CacheCommand(target, commandText string) {
	a.pendingCmd = &Command{Target: target, CommandText: commandText}
	log.Info("command cached until cleanup resolves", "target", target)
}

// TakeCommand pops the cached command, if any.
func (a *Arbiter) TakeCommand() (Command, bool) {
	if a.pendingCmd == nil {
		return Command{}, false
	}
	cmd := *a.pendingCmd
	a.pendingCmd = nil
	return cmd, true
}

func (a *Arbiter) expired(t *Token) bool {
	return a.now().Sub(t.AcquiredAt) >= a.cooldown
}

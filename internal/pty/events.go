// Package pty owns the PTY lifecycle: spawning shells and commands
// inside pseudo-terminals, streaming their output into shared screen
// state, and controlling the resulting process trees.
package pty

import "sync"

// EventType tags the variants of Event.
type EventType uint8

const (
	// EventOutput carries bytes read from the PTY. The bytes have
	// already been applied to the session's screen by the reader
	// goroutine before the event is published.
	EventOutput EventType = iota
	// EventExited is the terminal event for a session whose child
	// exited. Exactly one terminal event is emitted per session.
	EventExited
	// EventError is the terminal event for a read failure that is not
	// an exit.
	EventError
)

// Event is a one-shot message from a session's reader goroutine to the
// bridge. Within one session events preserve production order (single
// producer); no ordering holds across sessions.
type Event struct {
	Type      EventType
	SessionID string

	// Data is set for EventOutput.
	Data []byte
	// ExitCode is set for EventExited; nil when the code is unknown
	// (signal-killed child, torn-down PTY).
	ExitCode *int
	// Message is set for EventError.
	Message string
}

// Queue is the unbounded multi-producer single-consumer event channel
// between reader goroutines and the bridge. A bounded channel could
// block a reader on a stalled UI, which the event loop must never
// cause, so this is a mutex-guarded slice drained wholesale each tick.
type Queue struct {
	mu     sync.Mutex
	events []Event
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event. Never blocks.
func (q *Queue) Push(ev Event) {
	q.mu.Lock()
	q.events = append(q.events, ev)
	q.mu.Unlock()
}

// Drain removes and returns all queued events in FIFO order. Never
// blocks waiting for more; returns nil when empty.
func (q *Queue) Drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.events) == 0 {
		return nil
	}
	drained := q.events
	q.events = nil
	return drained
}

// Len reports how many events are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}

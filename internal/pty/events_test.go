package pty

import (
	"sync"
	"testing"
)

func TestQueue_DrainPreservesOrder(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Type: EventOutput, SessionID: "s", Data: []byte("abc")})
	q.Push(Event{Type: EventOutput, SessionID: "s", Data: []byte("def")})

	events := q.Drain()
	if len(events) != 2 {
		t.Fatalf("drained %d events, want 2", len(events))
	}
	if got := string(events[0].Data) + string(events[1].Data); got != "abcdef" {
		t.Errorf("concatenated output = %q, want abcdef", got)
	}
	if q.Len() != 0 {
		t.Errorf("queue holds %d events after drain, want 0", q.Len())
	}
}

func TestQueue_DrainEmptyReturnsNil(t *testing.T) {
	q := NewQueue()
	if events := q.Drain(); events != nil {
		t.Errorf("drain on empty queue = %v, want nil", events)
	}
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue()
	const producers = 8
	const perProducer = 100

	var wg sync.WaitGroup
	for i := 0; i < producers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				q.Push(Event{Type: EventOutput, SessionID: "s"})
			}
		}()
	}
	wg.Wait()

	if got := len(q.Drain()); got != producers*perProducer {
		t.Errorf("drained %d events, want %d", got, producers*perProducer)
	}
}

package dstream

import "sync"

// Serial runs tasks one at a time, in submission order,
// without dedicating a goroutine to the purpose.
//
// The first caller of [*Serial.Do] to find the Serial idle
// runs its own task and then every task queued in the meantime,
// whether those were queued re-entrantly from inside a running task
// or concurrently from other goroutines.
// Any other caller only enqueues its task and returns immediately.
//
// This gives an event-driven component single-threaded semantics:
// state touched only from within tasks needs no further locking,
// and a synchronous producer that emits while being subscribed
// cannot deadlock against its consumer.
//
// The zero value is ready to use.
type Serial struct {
	mu      sync.Mutex
	queue   []func()
	running bool
}

// Do runs fn now if s is idle, or queues it behind the running task.
func (s *Serial) Do(fn func()) {
	s.mu.Lock()
	s.queue = append(s.queue, fn)
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.drain()
}

func (s *Serial) drain() {
	ok := false
	defer func() {
		if ok {
			return
		}

		// A task panicked.
		// Release the Serial so the panic does not also wedge later callers.
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.running = false
			s.mu.Unlock()
			ok = true
			return
		}
		next := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.mu.Unlock()

		next()
	}
}
